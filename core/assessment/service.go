package assessment

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
)

type (
	Repository interface {
		CreateExam(ctx context.Context, exm Exam, exec ...core.DBExecutor) (Exam, error)
		// QueryExams applies AND operation on available WorkFilter fields.
		// WorkFilter.Search does a case-insensitive match on Exam.Title.
		QueryExams(ctx context.Context, filter *WorkFilter, ordering []core.DBOrdering, page core.Pagination, exec ...core.DBExecutor) ([]Exam, int, error)
		GetExam(ctx context.Context, id int, exec ...core.DBExecutor) (Exam, error)
		UpdateExam(ctx context.Context, exm Exam, exec ...core.DBExecutor) (Exam, error)
		DeleteExams(ctx context.Context, ids []int, exec ...core.DBExecutor) error

		CreateAssignment(ctx context.Context, asg Assignment, exec ...core.DBExecutor) (Assignment, error)
		QueryAssignments(ctx context.Context, filter *WorkFilter, ordering []core.DBOrdering, page core.Pagination, exec ...core.DBExecutor) ([]Assignment, int, error)
		GetAssignment(ctx context.Context, id int, exec ...core.DBExecutor) (Assignment, error)
		UpdateAssignment(ctx context.Context, asg Assignment, exec ...core.DBExecutor) (Assignment, error)
		DeleteAssignments(ctx context.Context, ids []int, exec ...core.DBExecutor) error

		CreateResult(ctx context.Context, res Result, exec ...core.DBExecutor) (Result, error)
		QueryResults(ctx context.Context, filter *ResultFilter, ordering []core.DBOrdering, page core.Pagination, exec ...core.DBExecutor) ([]Result, int, error)
		GetResult(ctx context.Context, id int, exec ...core.DBExecutor) (Result, error)
		UpdateResult(ctx context.Context, res Result, exec ...core.DBExecutor) (Result, error)
		DeleteResults(ctx context.Context, ids []int, exec ...core.DBExecutor) error
	}

	Service interface {
		CreateExam(ctx context.Context, ne NewExam) (Exam, error)
		QueryExams(ctx context.Context, filter *WorkFilter, ordering []core.DBOrdering, page core.Pagination) ([]Exam, int, error)
		GetExam(ctx context.Context, id int) (Exam, error)
		UpdateExam(ctx context.Context, id int, ne NewExam) (Exam, error)
		DeleteExams(ctx context.Context, ids ...int) error

		CreateAssignment(ctx context.Context, na NewAssignment) (Assignment, error)
		QueryAssignments(ctx context.Context, filter *WorkFilter, ordering []core.DBOrdering, page core.Pagination) ([]Assignment, int, error)
		GetAssignment(ctx context.Context, id int) (Assignment, error)
		UpdateAssignment(ctx context.Context, id int, na NewAssignment) (Assignment, error)
		DeleteAssignments(ctx context.Context, ids ...int) error

		CreateResult(ctx context.Context, nr NewResult) (Result, error)
		QueryResults(ctx context.Context, filter *ResultFilter, ordering []core.DBOrdering, page core.Pagination) ([]Result, int, error)
		GetResult(ctx context.Context, id int) (Result, error)
		UpdateResult(ctx context.Context, id int, nr NewResult) (Result, error)
		DeleteResults(ctx context.Context, ids ...int) error
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) CreateExam(ctx context.Context, ne NewExam) (Exam, error) {
	exm, err := svc.repo.CreateExam(ctx, Exam{
		Title:     ne.Title,
		StartTime: ne.StartTime,
		EndTime:   ne.EndTime,
		LessonID:  ne.LessonID,
	})
	return exm, errors.Wrap(err, "creating exam")
}

func (svc *service) QueryExams(ctx context.Context, filter *WorkFilter, ordering []core.DBOrdering, page core.Pagination) ([]Exam, int, error) {
	return svc.repo.QueryExams(ctx, filter, ordering, page)
}

func (svc *service) GetExam(ctx context.Context, id int) (Exam, error) {
	return svc.repo.GetExam(ctx, id)
}

func (svc *service) UpdateExam(ctx context.Context, id int, ne NewExam) (Exam, error) {
	exm, err := svc.repo.UpdateExam(ctx, Exam{
		ID:        id,
		Title:     ne.Title,
		StartTime: ne.StartTime,
		EndTime:   ne.EndTime,
		LessonID:  ne.LessonID,
	})
	return exm, errors.Wrap(err, "updating exam")
}

func (svc *service) DeleteExams(ctx context.Context, ids ...int) error {
	return svc.repo.DeleteExams(ctx, ids)
}

func (svc *service) CreateAssignment(ctx context.Context, na NewAssignment) (Assignment, error) {
	asg, err := svc.repo.CreateAssignment(ctx, Assignment{
		Title:     na.Title,
		StartDate: na.StartDate,
		DueDate:   na.DueDate,
		LessonID:  na.LessonID,
	})
	return asg, errors.Wrap(err, "creating assignment")
}

func (svc *service) QueryAssignments(ctx context.Context, filter *WorkFilter, ordering []core.DBOrdering, page core.Pagination) ([]Assignment, int, error) {
	return svc.repo.QueryAssignments(ctx, filter, ordering, page)
}

func (svc *service) GetAssignment(ctx context.Context, id int) (Assignment, error) {
	return svc.repo.GetAssignment(ctx, id)
}

func (svc *service) UpdateAssignment(ctx context.Context, id int, na NewAssignment) (Assignment, error) {
	asg, err := svc.repo.UpdateAssignment(ctx, Assignment{
		ID:        id,
		Title:     na.Title,
		StartDate: na.StartDate,
		DueDate:   na.DueDate,
		LessonID:  na.LessonID,
	})
	return asg, errors.Wrap(err, "updating assignment")
}

func (svc *service) DeleteAssignments(ctx context.Context, ids ...int) error {
	return svc.repo.DeleteAssignments(ctx, ids)
}

func (svc *service) CreateResult(ctx context.Context, nr NewResult) (Result, error) {
	res, err := svc.repo.CreateResult(ctx, Result{
		Score:        nr.Score,
		ExamID:       nr.ExamID,
		AssignmentID: nr.AssignmentID,
		StudentID:    nr.StudentID,
	})
	return res, errors.Wrap(err, "creating result")
}

func (svc *service) QueryResults(ctx context.Context, filter *ResultFilter, ordering []core.DBOrdering, page core.Pagination) ([]Result, int, error) {
	return svc.repo.QueryResults(ctx, filter, ordering, page)
}

func (svc *service) GetResult(ctx context.Context, id int) (Result, error) {
	return svc.repo.GetResult(ctx, id)
}

func (svc *service) UpdateResult(ctx context.Context, id int, nr NewResult) (Result, error) {
	res, err := svc.repo.UpdateResult(ctx, Result{
		ID:           id,
		Score:        nr.Score,
		ExamID:       nr.ExamID,
		AssignmentID: nr.AssignmentID,
		StudentID:    nr.StudentID,
	})
	return res, errors.Wrap(err, "updating result")
}

func (svc *service) DeleteResults(ctx context.Context, ids ...int) error {
	return svc.repo.DeleteResults(ctx, ids)
}
