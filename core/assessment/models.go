package assessment

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core"
)

const (
	TypeExam       = "Exam"
	TypeAssignment = "Assignment"
)

type Exam struct {
	ID        int       `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	StartTime time.Time `json:"start_time" db:"start_time"` // UTC
	EndTime   time.Time `json:"end_time" db:"end_time"`     // UTC
	LessonID  int       `json:"lesson_id" db:"lesson_id"`
}

// NewExam contains information needed to create or replace an Exam.
type NewExam struct {
	Title     string    `json:"title" validate:"required,notblank,max=255"`
	StartTime time.Time `json:"start_time" validate:"required"`
	EndTime   time.Time `json:"end_time" validate:"required,gtfield=StartTime"`
	LessonID  int       `json:"lesson_id" validate:"required,min=1"`
}

func (ne *NewExam) Validate(validate *validator.Validate) error {
	ne.Title = core.CleanString(ne.Title)
	ne.StartTime = ne.StartTime.UTC()
	ne.EndTime = ne.EndTime.UTC()
	return validate.Struct(ne)
}

type Assignment struct {
	ID        int       `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	StartDate time.Time `json:"start_date" db:"start_date"` // UTC
	DueDate   time.Time `json:"due_date" db:"due_date"`     // UTC
	LessonID  int       `json:"lesson_id" db:"lesson_id"`
}

// NewAssignment contains information needed to create or replace an Assignment.
type NewAssignment struct {
	Title     string    `json:"title" validate:"required,notblank,max=255"`
	StartDate time.Time `json:"start_date" validate:"required"`
	DueDate   time.Time `json:"due_date" validate:"required,gtfield=StartDate"`
	LessonID  int       `json:"lesson_id" validate:"required,min=1"`
}

func (na *NewAssignment) Validate(validate *validator.Validate) error {
	na.Title = core.CleanString(na.Title)
	na.StartDate = na.StartDate.UTC()
	na.DueDate = na.DueDate.UTC()
	return validate.Struct(na)
}

// WorkFilter filters exams & assignments.
type WorkFilter struct {
	Search    string `query:"search"`
	LessonID  int    `query:"lesson_id"`
	ClassID   int    `query:"class_id"`
	TeacherID string `query:"teacher_id"`
}

func (qf *WorkFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.TeacherID = core.CleanString(qf.TeacherID)
}

type Result struct {
	ID           int      `json:"id" db:"id"`
	Score        int      `json:"score" db:"score"`
	ExamID       null.Int `json:"exam_id" db:"exam_id"`
	AssignmentID null.Int `json:"assignment_id" db:"assignment_id"`
	StudentID    string   `json:"student_id" db:"student_id"`
}

// Type tells whether the Result grades an exam or an assignment.
func (r Result) Type() string {
	if r.ExamID.Valid {
		return TypeExam
	}
	return TypeAssignment
}

// NewResult contains information needed to create or replace a Result.
// Exactly one of ExamID or AssignmentID must be set.
type NewResult struct {
	Score        int      `json:"score" validate:"min=0"`
	ExamID       null.Int `json:"exam_id" validate:"omitempty,min=1"`
	AssignmentID null.Int `json:"assignment_id" validate:"omitempty,min=1"`
	StudentID    string   `json:"student_id" validate:"required,notblank"`
}

func (nr *NewResult) Validate(validate *validator.Validate) error {
	nr.StudentID = core.CleanString(nr.StudentID)
	return validate.Struct(nr)
}

type ResultFilter struct {
	StudentID    string `query:"student_id"`
	ExamID       int    `query:"exam_id"`
	AssignmentID int    `query:"assignment_id"`
	ClassID      int    `query:"class_id"`
}

func (qf *ResultFilter) Clean() {
	qf.StudentID = core.CleanString(qf.StudentID)
}
