package attendance

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
)

type Attendance struct {
	ID        int       `json:"id" db:"id"`
	Date      time.Time `json:"date" db:"date"` // UTC
	Present   bool      `json:"present" db:"present"`
	StudentID string    `json:"student_id" db:"student_id"`
	LessonID  int       `json:"lesson_id" db:"lesson_id"`
}

// NewAttendance contains information needed to create or replace an Attendance.
type NewAttendance struct {
	Date      time.Time `json:"date" validate:"required"`
	Present   bool      `json:"present"`
	StudentID string    `json:"student_id" validate:"required,notblank"`
	LessonID  int       `json:"lesson_id" validate:"required,min=1"`
}

func (na *NewAttendance) Validate(validate *validator.Validate) error {
	na.StudentID = core.CleanString(na.StudentID)
	na.Date = na.Date.UTC()
	return validate.Struct(na)
}

type QueryFilter struct {
	StudentID string    `query:"student_id"`
	LessonID  int       `query:"lesson_id"`
	ClassID   int       `query:"class_id"`
	Present   *bool     `query:"-"` // bound from present
	DateFrom  time.Time `query:"-"` // bound from date_from
	DateTo    time.Time `query:"-"` // bound from date_to
}

func (qf *QueryFilter) Clean() {
	qf.StudentID = core.CleanString(qf.StudentID)
}

type (
	Repository interface {
		CreateAttendance(ctx context.Context, att Attendance, exec ...core.DBExecutor) (Attendance, error)
		// QueryAttendances applies AND operation on available QueryFilter fields.
		QueryAttendances(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, page core.Pagination, exec ...core.DBExecutor) ([]Attendance, int, error)
		GetAttendance(ctx context.Context, id int, exec ...core.DBExecutor) (Attendance, error)
		UpdateAttendance(ctx context.Context, att Attendance, exec ...core.DBExecutor) (Attendance, error)
		DeleteAttendances(ctx context.Context, ids []int, exec ...core.DBExecutor) error
	}

	Service interface {
		Create(ctx context.Context, na NewAttendance) (Attendance, error)
		Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, page core.Pagination) ([]Attendance, int, error)
		Get(ctx context.Context, id int) (Attendance, error)
		Update(ctx context.Context, id int, na NewAttendance) (Attendance, error)
		Delete(ctx context.Context, ids ...int) error
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) Create(ctx context.Context, na NewAttendance) (Attendance, error) {
	att, err := svc.repo.CreateAttendance(ctx, Attendance{
		Date:      na.Date,
		Present:   na.Present,
		StudentID: na.StudentID,
		LessonID:  na.LessonID,
	})
	return att, errors.Wrap(err, "creating attendance")
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, page core.Pagination) ([]Attendance, int, error) {
	return svc.repo.QueryAttendances(ctx, filter, ordering, page)
}

func (svc *service) Get(ctx context.Context, id int) (Attendance, error) {
	return svc.repo.GetAttendance(ctx, id)
}

func (svc *service) Update(ctx context.Context, id int, na NewAttendance) (Attendance, error) {
	att, err := svc.repo.UpdateAttendance(ctx, Attendance{
		ID:        id,
		Date:      na.Date,
		Present:   na.Present,
		StudentID: na.StudentID,
		LessonID:  na.LessonID,
	})
	return att, errors.Wrap(err, "updating attendance")
}

func (svc *service) Delete(ctx context.Context, ids ...int) error {
	return svc.repo.DeleteAttendances(ctx, ids)
}
