package school

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core"
)

type Grade struct {
	ID    int    `json:"id" db:"id"`
	Name  string `json:"name" db:"name"`
	Level int    `json:"level" db:"level"`
}

// NewGrade contains information needed to create a new Grade.
type NewGrade struct {
	Name  string `json:"name" validate:"required,notblank"`
	Level int    `json:"level" validate:"required,min=1"`
}

func (ng *NewGrade) Validate(validate *validator.Validate) error {
	ng.Name = core.CleanString(ng.Name)
	return validate.Struct(ng)
}

type Class struct {
	ID           int         `json:"id" db:"id"`
	Name         string      `json:"name" db:"name"`
	Capacity     int         `json:"capacity" db:"capacity"`
	SupervisorID null.String `json:"supervisor_id" db:"supervisor_id"`
	GradeID      int         `json:"grade_id" db:"grade_id"`
	StudentCount int         `json:"student_count" db:"student_count"` // read-only
}

// NewClass contains information needed to create or replace a Class.
type NewClass struct {
	Name         string      `json:"name" validate:"required,notblank,max=50"`
	Capacity     int         `json:"capacity" validate:"required,min=1"`
	SupervisorID null.String `json:"supervisor_id"`
	GradeID      int         `json:"grade_id" validate:"required,min=1"`
}

func (nc *NewClass) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	nc.SupervisorID = core.CleanNullString(nc.SupervisorID)
	return validate.Struct(nc)
}

type ClassFilter struct {
	Search       string `query:"search"`
	GradeID      int    `query:"grade_id"`
	SupervisorID string `query:"supervisor_id"`
}

func (qf *ClassFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.SupervisorID = core.CleanString(qf.SupervisorID)
}

type Subject struct {
	ID         int      `json:"id" db:"id"`
	Name       string   `json:"name" db:"name"`
	TeacherIDs []string `json:"teacher_ids" db:"-"`
}

// NewSubject contains information needed to create or replace a Subject.
type NewSubject struct {
	Name       string   `json:"name" validate:"required,notblank,max=50"`
	TeacherIDs []string `json:"teacher_ids" validate:"omitempty,dive,required"`
}

func (ns *NewSubject) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	ids := make([]string, 0, len(ns.TeacherIDs))
	seen := make(map[string]bool, len(ns.TeacherIDs))
	for _, id := range ns.TeacherIDs {
		id = core.CleanString(id)
		if id != "" && !seen[id] {
			ids = append(ids, id)
			seen[id] = true
		}
	}
	ns.TeacherIDs = ids
	return validate.Struct(ns)
}

type SubjectFilter struct {
	Search    string `query:"search"`
	TeacherID string `query:"teacher_id"`
}

func (qf *SubjectFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.TeacherID = core.CleanString(qf.TeacherID)
}

type Lesson struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Day       string    `json:"day" db:"day"`
	StartTime time.Time `json:"start_time" db:"start_time"` // UTC
	EndTime   time.Time `json:"end_time" db:"end_time"`     // UTC
	SubjectID int       `json:"subject_id" db:"subject_id"`
	ClassID   int       `json:"class_id" db:"class_id"`
	TeacherID string    `json:"teacher_id" db:"teacher_id"`
}

// NewLesson contains information needed to create or replace a Lesson.
type NewLesson struct {
	Name      string    `json:"name" validate:"required,notblank"`
	Day       string    `json:"day" validate:"required,weekday"`
	StartTime time.Time `json:"start_time" validate:"required"`
	EndTime   time.Time `json:"end_time" validate:"required,gtfield=StartTime"`
	SubjectID int       `json:"subject_id" validate:"required,min=1"`
	ClassID   int       `json:"class_id" validate:"required,min=1"`
	TeacherID string    `json:"teacher_id" validate:"required,notblank"`
}

func (nl *NewLesson) Validate(validate *validator.Validate) error {
	nl.Name = core.CleanString(nl.Name)
	nl.Day = core.CleanString(nl.Day)
	nl.TeacherID = core.CleanString(nl.TeacherID)
	nl.StartTime = nl.StartTime.UTC()
	nl.EndTime = nl.EndTime.UTC()
	return validate.Struct(nl)
}

type LessonFilter struct {
	Search    string `query:"search"`
	ClassID   int    `query:"class_id"`
	TeacherID string `query:"teacher_id"`
	SubjectID int    `query:"subject_id"`
	Day       string `query:"day"`
}

func (qf *LessonFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.TeacherID = core.CleanString(qf.TeacherID)
	qf.Day = core.CleanString(qf.Day)
}
