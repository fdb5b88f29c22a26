package report

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
)

var errTooManyRows = errors.New("report is too large, narrow down the filters")

type (
	// Sheet is a single worksheet: a header row followed by data rows of string and int cells.
	Sheet struct {
		Name    string          `json:"name"`
		Headers []string        `json:"headers"`
		Rows    [][]interface{} `json:"rows"`
	}

	Report struct {
		Type        Type      `json:"type"`
		Title       string    `json:"title"`
		FileName    string    `json:"file_name"`
		Sheet       Sheet     `json:"sheet"`
		GeneratedAt time.Time `json:"generated_at"`
	}

	// File is an exported workbook.
	File struct {
		Name        string    `json:"name"`
		Title       string    `json:"title"`
		Rows        int       `json:"rows"`
		Content     []byte    `json:"content"`
		GeneratedAt time.Time `json:"generated_at"`
	}

	// Cache stores exported workbooks under a generation. Invalidate starts a new generation;
	// entries set for an older one are never read again.
	Cache interface {
		Generation(ctx context.Context) (int64, error)
		Get(ctx context.Context, gen int64, key string) ([]byte, bool, error)
		Set(ctx context.Context, gen int64, key string, value []byte, ttl time.Duration) error
		Invalidate(ctx context.Context) error
	}

	Options struct {
		CacheTTL time.Duration
		MaxRows  int // 0 means unlimited
	}

	Service interface {
		Types() []TypeInfo
		Generate(ctx context.Context, params Params) (Report, error)
		Export(ctx context.Context, params Params) (File, error)
		Email(ctx context.Context, params Params, recipients ...mail.Address) error
		// Invalidate drops the cached workbooks. It is called after every data change.
		Invalidate(ctx context.Context) error
	}

	service struct {
		store  Store
		cache  Cache
		mailer core.EmailService
		logger core.Logger
		opts   Options
		now    func() time.Time
	}
)

var _ Service = (*service)(nil)

func NewService(store Store, cache Cache, mailer core.EmailService, logger core.Logger, opts Options) Service {
	return &service{
		store:  store,
		cache:  cache,
		mailer: mailer,
		logger: logger,
		opts:   opts,
		now:    time.Now,
	}
}

func (svc *service) Types() []TypeInfo {
	return Types()
}

func (svc *service) resolve(params Params) (definition, Filter, error) {
	params.Clean()
	def, ok := lookup(params.Type)
	if !ok {
		return definition{}, Filter{}, ErrInvalidType
	}
	f, err := params.filter(def)
	return def, f, err
}

func (svc *service) generate(ctx context.Context, def definition, f Filter) (Report, error) {
	rows, err := def.rows(ctx, svc.store, f)
	if err != nil {
		return Report{}, errors.Wrapf(err, "querying %s report", def.typ)
	}
	if svc.opts.MaxRows > 0 && len(rows) > svc.opts.MaxRows {
		return Report{}, core.NewValidationError(errTooManyRows)
	}
	return Report{
		Type:        def.typ,
		Title:       def.title,
		FileName:    def.fileName,
		Sheet:       Sheet{Name: def.title, Headers: def.headers, Rows: rows},
		GeneratedAt: svc.now().UTC(),
	}, nil
}

func (svc *service) Generate(ctx context.Context, params Params) (Report, error) {
	def, f, err := svc.resolve(params)
	if err != nil {
		return Report{}, err
	}
	return svc.generate(ctx, def, f)
}

// cacheKey hashes the normalized params.
func cacheKey(p Params) (string, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return "report:" + hex.EncodeToString(sum[:]), nil
}

func (svc *service) fromCache(ctx context.Context, gen int64, key string) (File, bool) {
	b, ok, err := svc.cache.Get(ctx, gen, key)
	if err != nil {
		svc.logger.Warn(fmt.Sprintf("reading report cache: %v", err), err)
		return File{}, false
	}
	if !ok {
		return File{}, false
	}
	var file File
	if err = json.Unmarshal(b, &file); err != nil {
		svc.logger.Warn(fmt.Sprintf("decoding cached report: %v", err), err)
		return File{}, false
	}
	return file, true
}

func (svc *service) toCache(ctx context.Context, gen int64, key string, file File) {
	b, err := json.Marshal(file)
	if err == nil {
		err = svc.cache.Set(ctx, gen, key, b, svc.opts.CacheTTL)
	}
	if err != nil {
		svc.logger.Warn(fmt.Sprintf("writing report cache: %v", err), err)
	}
}

func (svc *service) Export(ctx context.Context, params Params) (File, error) {
	params.Clean()
	def, f, err := svc.resolve(params)
	if err != nil {
		return File{}, err
	}

	key, err := cacheKey(params.normalized(def, f))
	if err != nil {
		return File{}, errors.Wrap(err, "hashing report params")
	}

	// the generation is read before querying so a write landing mid-export
	// leaves the workbook under the stale generation
	var gen int64
	cached := svc.cache != nil
	if cached {
		if gen, err = svc.cache.Generation(ctx); err != nil {
			svc.logger.Warn(fmt.Sprintf("reading report cache generation: %v", err), err)
			cached = false
		}
	}
	if cached {
		if file, ok := svc.fromCache(ctx, gen, key); ok {
			return file, nil
		}
	}

	rep, err := svc.generate(ctx, def, f)
	if err != nil {
		return File{}, err
	}
	content, err := WriteWorkbook(rep.Sheet)
	if err != nil {
		return File{}, errors.Wrapf(err, "exporting %s report", def.typ)
	}

	file := File{
		Name:        rep.FileName,
		Title:       rep.Title,
		Rows:        len(rep.Sheet.Rows),
		Content:     content,
		GeneratedAt: rep.GeneratedAt,
	}
	if cached {
		svc.toCache(ctx, gen, key, file)
	}
	return file, nil
}

func (svc *service) Email(ctx context.Context, params Params, recipients ...mail.Address) error {
	if len(recipients) == 0 {
		return core.NewValidationError(nil, core.FieldError{Field: "recipients", Error: "this field is required"})
	}
	file, err := svc.Export(ctx, params)
	if err != nil {
		return err
	}

	msg := &core.EmailMessage{
		To:           recipients,
		Subject:      file.Title,
		TemplateName: "report",
		TemplateData: map[string]interface{}{
			"Title":       file.Title,
			"GeneratedAt": file.GeneratedAt.Format(time.RFC1123),
			"Rows":        file.Rows,
		},
	}
	if err = msg.Attach(bytes.NewReader(file.Content), file.Name, ContentType); err != nil {
		return errors.Wrap(err, "attaching report")
	}
	svc.mailer.SendMessages(msg)
	return nil
}

func (svc *service) Invalidate(ctx context.Context) error {
	if svc.cache == nil {
		return nil
	}
	return errors.Wrap(svc.cache.Invalidate(ctx), "invalidating report cache")
}
