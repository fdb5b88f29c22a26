package school

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
)

type (
	Repository interface {
		CreateGrade(ctx context.Context, grd Grade, exec ...core.DBExecutor) (Grade, error)
		QueryGrades(ctx context.Context, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Grade, error)

		CreateClass(ctx context.Context, cls Class, exec ...core.DBExecutor) (Class, error)
		// QueryClasses applies AND operation on available ClassFilter fields.
		// ClassFilter.Search does a case-insensitive match on Class.Name.
		QueryClasses(ctx context.Context, filter *ClassFilter, ordering []core.DBOrdering, page core.Pagination, exec ...core.DBExecutor) ([]Class, int, error)
		GetClass(ctx context.Context, id int, exec ...core.DBExecutor) (Class, error)
		UpdateClass(ctx context.Context, cls Class, exec ...core.DBExecutor) (Class, error)
		DeleteClasses(ctx context.Context, ids []int, exec ...core.DBExecutor) error

		CreateSubject(ctx context.Context, sub Subject, exec ...core.DBExecutor) (Subject, error)
		QuerySubjects(ctx context.Context, filter *SubjectFilter, ordering []core.DBOrdering, page core.Pagination, exec ...core.DBExecutor) ([]Subject, int, error)
		GetSubject(ctx context.Context, id int, exec ...core.DBExecutor) (Subject, error)
		UpdateSubject(ctx context.Context, sub Subject, exec ...core.DBExecutor) (Subject, error)
		DeleteSubjects(ctx context.Context, ids []int, exec ...core.DBExecutor) error

		CreateLesson(ctx context.Context, lsn Lesson, exec ...core.DBExecutor) (Lesson, error)
		QueryLessons(ctx context.Context, filter *LessonFilter, ordering []core.DBOrdering, page core.Pagination, exec ...core.DBExecutor) ([]Lesson, int, error)
		GetLesson(ctx context.Context, id int, exec ...core.DBExecutor) (Lesson, error)
		UpdateLesson(ctx context.Context, lsn Lesson, exec ...core.DBExecutor) (Lesson, error)
		DeleteLessons(ctx context.Context, ids []int, exec ...core.DBExecutor) error
	}

	Service interface {
		CreateGrade(ctx context.Context, ng NewGrade) (Grade, error)
		QueryGrades(ctx context.Context, ordering []core.DBOrdering) ([]Grade, error)

		CreateClass(ctx context.Context, nc NewClass) (Class, error)
		QueryClasses(ctx context.Context, filter *ClassFilter, ordering []core.DBOrdering, page core.Pagination) ([]Class, int, error)
		GetClass(ctx context.Context, id int) (Class, error)
		UpdateClass(ctx context.Context, id int, nc NewClass) (Class, error)
		DeleteClasses(ctx context.Context, ids ...int) error

		CreateSubject(ctx context.Context, ns NewSubject) (Subject, error)
		QuerySubjects(ctx context.Context, filter *SubjectFilter, ordering []core.DBOrdering, page core.Pagination) ([]Subject, int, error)
		GetSubject(ctx context.Context, id int) (Subject, error)
		UpdateSubject(ctx context.Context, id int, ns NewSubject) (Subject, error)
		DeleteSubjects(ctx context.Context, ids ...int) error

		CreateLesson(ctx context.Context, nl NewLesson) (Lesson, error)
		QueryLessons(ctx context.Context, filter *LessonFilter, ordering []core.DBOrdering, page core.Pagination) ([]Lesson, int, error)
		GetLesson(ctx context.Context, id int) (Lesson, error)
		UpdateLesson(ctx context.Context, id int, nl NewLesson) (Lesson, error)
		DeleteLessons(ctx context.Context, ids ...int) error
	}

	service struct {
		db   core.DB
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(db core.DB, repo Repository) Service {
	return &service{db: db, repo: repo}
}

func (svc *service) CreateGrade(ctx context.Context, ng NewGrade) (Grade, error) {
	grd, err := svc.repo.CreateGrade(ctx, Grade{Name: ng.Name, Level: ng.Level})
	return grd, errors.Wrap(err, "creating grade")
}

func (svc *service) QueryGrades(ctx context.Context, ordering []core.DBOrdering) ([]Grade, error) {
	return svc.repo.QueryGrades(ctx, ordering)
}

func (svc *service) CreateClass(ctx context.Context, nc NewClass) (Class, error) {
	cls, err := svc.repo.CreateClass(ctx, Class{
		Name:         nc.Name,
		Capacity:     nc.Capacity,
		SupervisorID: nc.SupervisorID,
		GradeID:      nc.GradeID,
	})
	return cls, errors.Wrap(err, "creating class")
}

func (svc *service) QueryClasses(ctx context.Context, filter *ClassFilter, ordering []core.DBOrdering, page core.Pagination) ([]Class, int, error) {
	return svc.repo.QueryClasses(ctx, filter, ordering, page)
}

func (svc *service) GetClass(ctx context.Context, id int) (Class, error) {
	return svc.repo.GetClass(ctx, id)
}

// UpdateClass replaces the Class. Shrinking its capacity below the current number of students is rejected.
func (svc *service) UpdateClass(ctx context.Context, id int, nc NewClass) (Class, error) {
	var cls Class
	err := core.WithTx(ctx, svc.db, func(exec core.DBExecutor) error {
		orig, err := svc.repo.GetClass(ctx, id, exec)
		if err != nil {
			return err
		}
		if nc.Capacity < orig.StudentCount {
			return core.NewValidationError(nil, core.FieldError{
				Field: "capacity",
				Error: "capacity cannot be lower than the number of students in the class",
			})
		}
		cls, err = svc.repo.UpdateClass(ctx, Class{
			ID:           id,
			Name:         nc.Name,
			Capacity:     nc.Capacity,
			SupervisorID: nc.SupervisorID,
			GradeID:      nc.GradeID,
		}, exec)
		return err
	})
	return cls, errors.Wrap(err, "updating class")
}

func (svc *service) DeleteClasses(ctx context.Context, ids ...int) error {
	return svc.repo.DeleteClasses(ctx, ids)
}

func (svc *service) CreateSubject(ctx context.Context, ns NewSubject) (Subject, error) {
	var sub Subject
	err := core.WithTx(ctx, svc.db, func(exec core.DBExecutor) error {
		var err error
		sub, err = svc.repo.CreateSubject(ctx, Subject{Name: ns.Name, TeacherIDs: ns.TeacherIDs}, exec)
		return err
	})
	return sub, errors.Wrap(err, "creating subject")
}

func (svc *service) QuerySubjects(ctx context.Context, filter *SubjectFilter, ordering []core.DBOrdering, page core.Pagination) ([]Subject, int, error) {
	return svc.repo.QuerySubjects(ctx, filter, ordering, page)
}

func (svc *service) GetSubject(ctx context.Context, id int) (Subject, error) {
	return svc.repo.GetSubject(ctx, id)
}

func (svc *service) UpdateSubject(ctx context.Context, id int, ns NewSubject) (Subject, error) {
	var sub Subject
	err := core.WithTx(ctx, svc.db, func(exec core.DBExecutor) error {
		var err error
		sub, err = svc.repo.UpdateSubject(ctx, Subject{ID: id, Name: ns.Name, TeacherIDs: ns.TeacherIDs}, exec)
		return err
	})
	return sub, errors.Wrap(err, "updating subject")
}

func (svc *service) DeleteSubjects(ctx context.Context, ids ...int) error {
	return svc.repo.DeleteSubjects(ctx, ids)
}

func (svc *service) CreateLesson(ctx context.Context, nl NewLesson) (Lesson, error) {
	lsn, err := svc.repo.CreateLesson(ctx, Lesson{
		Name:      nl.Name,
		Day:       nl.Day,
		StartTime: nl.StartTime,
		EndTime:   nl.EndTime,
		SubjectID: nl.SubjectID,
		ClassID:   nl.ClassID,
		TeacherID: nl.TeacherID,
	})
	return lsn, errors.Wrap(err, "creating lesson")
}

func (svc *service) QueryLessons(ctx context.Context, filter *LessonFilter, ordering []core.DBOrdering, page core.Pagination) ([]Lesson, int, error) {
	return svc.repo.QueryLessons(ctx, filter, ordering, page)
}

func (svc *service) GetLesson(ctx context.Context, id int) (Lesson, error) {
	return svc.repo.GetLesson(ctx, id)
}

func (svc *service) UpdateLesson(ctx context.Context, id int, nl NewLesson) (Lesson, error) {
	lsn, err := svc.repo.UpdateLesson(ctx, Lesson{
		ID:        id,
		Name:      nl.Name,
		Day:       nl.Day,
		StartTime: nl.StartTime,
		EndTime:   nl.EndTime,
		SubjectID: nl.SubjectID,
		ClassID:   nl.ClassID,
		TeacherID: nl.TeacherID,
	})
	return lsn, errors.Wrap(err, "updating lesson")
}

func (svc *service) DeleteLessons(ctx context.Context, ids ...int) error {
	return svc.repo.DeleteLessons(ctx, ids)
}
