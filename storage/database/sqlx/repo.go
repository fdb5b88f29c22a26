package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
)

// postgres error codes
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
	checkViolation      = "23514"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// constraintFields overrides the API field reported for a constraint.
var constraintFields = map[string]string{
	"subject_teachers_teacher_id_fkey": "teacher_ids",
	"subject_teachers_subject_id_fkey": "subject_ids",
}

type baseRepo struct {
	exec core.DBExecutor
}

func (repo baseRepo) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 && svcExec[0] != nil {
		return svcExec[0]
	}
	return repo.exec
}

// constraintField derives the field name from a constraint named <table>_<field>_key or <table>_<field>_fkey.
func constraintField(table, constraint string) string {
	if fld, ok := constraintFields[constraint]; ok {
		return fld
	}
	fld := strings.TrimPrefix(constraint, table+"_")
	fld = strings.TrimSuffix(fld, "_fkey")
	fld = strings.TrimSuffix(fld, "_key")
	return fld
}

// trapNoRowsErr maps psql "no rows" err to core.ErrNotFound
func trapNoRowsErr(err error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return core.ErrNotFound
	}
	return trapWriteErr(err, msg)
}

// trapWriteErr maps constraint violations raised by inserts & updates to validation errors.
func trapWriteErr(err error, msg string) error {
	if err == nil {
		return nil
	}
	pqErr, ok := errors.Cause(err).(*pq.Error)
	if !ok {
		return errors.Wrap(err, msg)
	}
	switch pqErr.Code {
	case uniqueViolation:
		return core.NewValidationError(nil, core.FieldError{
			Field: constraintField(pqErr.Table, pqErr.Constraint),
			Error: "already exists",
		})
	case foreignKeyViolation:
		return core.NewValidationError(nil, core.FieldError{
			Field: constraintField(pqErr.Table, pqErr.Constraint),
			Error: "not found",
		})
	case checkViolation:
		return core.NewValidationError(errors.New("invalid value: " + pqErr.Constraint))
	}
	return errors.Wrap(err, msg)
}

// trapDeleteErr maps restricted deletes to a validation error.
func trapDeleteErr(err error, msg string) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := errors.Cause(err).(*pq.Error); ok && pqErr.Code == foreignKeyViolation {
		return core.NewValidationError(errors.Errorf("cannot delete: still referenced by %s", pqErr.Table))
	}
	return errors.Wrap(err, msg)
}

// orderBy applies the allowed orderings, then def as a tie-breaker.
func orderBy(b sq.SelectBuilder, ordering []core.DBOrdering, columns map[string]string, def ...string) sq.SelectBuilder {
	ords := core.CleanOrderings(ordering, columns)
	clauses := make([]string, 0, len(ords)+len(def))
	for _, ord := range ords {
		clauses = append(clauses, ord.String())
	}
	return b.OrderBy(append(clauses, def...)...)
}

func paginate(b sq.SelectBuilder, page core.Pagination) sq.SelectBuilder {
	page.Clean()
	return b.Limit(uint64(page.Limit)).Offset(page.Offset())
}

func search(term string, columns ...string) sq.Or {
	val := "%" + term + "%"
	or := make(sq.Or, 0, len(columns))
	for _, col := range columns {
		or = append(or, sq.ILike{col: val})
	}
	return or
}

func selectAll(ctx context.Context, exec core.DBExecutor, dest interface{}, b sq.Sqlizer) error {
	q, args, err := b.ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	return exec.SelectContext(ctx, dest, q, args...)
}

func getOne(ctx context.Context, exec core.DBExecutor, dest interface{}, b sq.Sqlizer) error {
	q, args, err := b.ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	return exec.GetContext(ctx, dest, q, args...)
}

func count(ctx context.Context, exec core.DBExecutor, b sq.SelectBuilder) (int, error) {
	var n int
	err := getOne(ctx, exec, &n, b)
	return n, err
}

func execute(ctx context.Context, exec core.DBExecutor, b sq.Sqlizer) (int64, error) {
	q, args, err := b.ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "building query")
	}
	res, err := exec.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// queryPage runs the list query (ordered & paginated) and its count query.
func queryPage(
	ctx context.Context,
	exec core.DBExecutor,
	dest interface{},
	list, cnt sq.SelectBuilder,
	page core.Pagination,
) (int, error) {
	if err := selectAll(ctx, exec, dest, paginate(list, page)); err != nil {
		return 0, err
	}
	return count(ctx, exec, cnt)
}

func joinColumns(cols []string) string {
	return strings.Join(cols, ", ")
}
