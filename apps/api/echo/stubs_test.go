package echoapi_test

import (
	"context"
	"net/mail"
	"sync"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/report"
	"github.com/trezcool/darasa/core/school"
)

// schoolStub only implements grades; any other call panics.
type schoolStub struct {
	school.Service

	mu     sync.Mutex
	grades []school.Grade
}

func (s *schoolStub) CreateGrade(_ context.Context, ng school.NewGrade) (school.Grade, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	grd := school.Grade{ID: len(s.grades) + 1, Name: ng.Name, Level: ng.Level}
	s.grades = append(s.grades, grd)
	return grd, nil
}

func (s *schoolStub) QueryGrades(context.Context, []core.DBOrdering) ([]school.Grade, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]school.Grade{}, s.grades...), nil
}

type emailCall struct {
	params     report.Params
	recipients []mail.Address
}

// reportStub records the calls it receives.
type reportStub struct {
	mu          sync.Mutex
	exported    []report.Params
	emailed     []emailCall
	invalidated int

	file report.File
	err  error
}

var _ report.Service = (*reportStub)(nil)

func (s *reportStub) Types() []report.TypeInfo {
	return report.Types()
}

func (s *reportStub) Generate(_ context.Context, params report.Params) (report.Report, error) {
	if s.err != nil {
		return report.Report{}, s.err
	}
	return report.Report{
		Type:     params.Type,
		Title:    s.file.Title,
		FileName: s.file.Name,
		Sheet:    report.Sheet{Name: s.file.Title, Headers: []string{"Name"}, Rows: [][]interface{}{{"Ada"}}},
	}, nil
}

func (s *reportStub) Export(_ context.Context, params report.Params) (report.File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exported = append(s.exported, params)
	if s.err != nil {
		return report.File{}, s.err
	}
	return s.file, nil
}

func (s *reportStub) Email(_ context.Context, params report.Params, recipients ...mail.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emailed = append(s.emailed, emailCall{params: params, recipients: recipients})
	return s.err
}

func (s *reportStub) Invalidate(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invalidated++
	return nil
}

func (s *reportStub) invalidations() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.invalidated
}
