package people

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core"
)

// Person holds the profile fields shared by teachers, students and parents.
type Person struct {
	ID        string      `json:"id" db:"id"` // identity provider user ID
	Username  string      `json:"username" db:"username"`
	Name      string      `json:"name" db:"name"`
	Surname   string      `json:"surname" db:"surname"`
	Email     null.String `json:"email" db:"email"`
	Phone     null.String `json:"phone" db:"phone"`
	Address   string      `json:"address" db:"address"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"` // UTC
}

func (p Person) FullName() string {
	return p.Name + " " + p.Surname
}

type Teacher struct {
	Person
	Img        null.String `json:"img" db:"img"`
	BloodType  string      `json:"blood_type" db:"blood_type"`
	Sex        string      `json:"sex" db:"sex"`
	Birthday   time.Time   `json:"birthday" db:"birthday"` // UTC
	SubjectIDs []int       `json:"subject_ids" db:"-"`

	// read-only
	SubjectCount int `json:"subject_count" db:"subject_count"`
	LessonCount  int `json:"lesson_count" db:"lesson_count"`
	ClassCount   int `json:"class_count" db:"class_count"`
}

type Student struct {
	Person
	Img       null.String `json:"img" db:"img"`
	BloodType string      `json:"blood_type" db:"blood_type"`
	Sex       string      `json:"sex" db:"sex"`
	Birthday  time.Time   `json:"birthday" db:"birthday"` // UTC
	ParentID  string      `json:"parent_id" db:"parent_id"`
	ClassID   int         `json:"class_id" db:"class_id"`
	GradeID   int         `json:"grade_id" db:"grade_id"`
}

type Parent struct {
	Person
	StudentCount int `json:"student_count" db:"student_count"` // read-only
}

// NewPerson contains the profile information needed to create or replace a teacher, student or parent.
type NewPerson struct {
	ID       string      `json:"id" validate:"omitempty,max=64"`
	Username string      `json:"username" validate:"required,min=3,max=20,alphanum_"`
	Name     string      `json:"name" validate:"required,notblank,max=50"`
	Surname  string      `json:"surname" validate:"required,notblank,max=50"`
	Email    null.String `json:"email" validate:"omitempty,email"`
	Phone    null.String `json:"phone" validate:"omitempty,max=20"`
	Address  string      `json:"address" validate:"required,notblank,max=255"`
}

func (np *NewPerson) clean() {
	np.ID = core.CleanString(np.ID)
	np.Username = core.CleanString(np.Username, true /* lower */)
	np.Name = core.CleanString(np.Name)
	np.Surname = core.CleanString(np.Surname)
	np.Email = core.CleanNullString(np.Email, true /* lower */)
	np.Phone = core.CleanNullString(np.Phone)
	np.Address = core.CleanString(np.Address)
}

// NewTeacher contains information needed to create or replace a Teacher.
type NewTeacher struct {
	NewPerson
	Img        null.String `json:"img" validate:"omitempty,url"`
	BloodType  string      `json:"blood_type" validate:"required,bloodtype"`
	Sex        string      `json:"sex" validate:"required,sex"`
	Birthday   time.Time   `json:"birthday" validate:"required"`
	SubjectIDs []int       `json:"subject_ids" validate:"omitempty,dive,min=1"`
}

func (nt *NewTeacher) Validate(validate *validator.Validate) error {
	nt.clean()
	nt.Img = core.CleanNullString(nt.Img)
	nt.BloodType = core.CleanString(nt.BloodType)
	nt.Sex = core.CleanString(nt.Sex)
	nt.Birthday = nt.Birthday.UTC()
	return validate.Struct(nt)
}

// NewStudent contains information needed to create or replace a Student.
// GradeID defaults to the grade of the Class.
type NewStudent struct {
	NewPerson
	Img       null.String `json:"img" validate:"omitempty,url"`
	BloodType string      `json:"blood_type" validate:"required,bloodtype"`
	Sex       string      `json:"sex" validate:"required,sex"`
	Birthday  time.Time   `json:"birthday" validate:"required"`
	ParentID  string      `json:"parent_id" validate:"required,notblank"`
	ClassID   int         `json:"class_id" validate:"required,min=1"`
	GradeID   int         `json:"grade_id" validate:"omitempty,min=1"`
}

func (ns *NewStudent) Validate(validate *validator.Validate) error {
	ns.clean()
	ns.Img = core.CleanNullString(ns.Img)
	ns.BloodType = core.CleanString(ns.BloodType)
	ns.Sex = core.CleanString(ns.Sex)
	ns.ParentID = core.CleanString(ns.ParentID)
	ns.Birthday = ns.Birthday.UTC()
	return validate.Struct(ns)
}

// NewParent contains information needed to create or replace a Parent.
type NewParent struct {
	NewPerson
}

func (np *NewParent) Validate(validate *validator.Validate) error {
	np.clean()
	return validate.Struct(np)
}

type TeacherFilter struct {
	Search    string `query:"search"`
	SubjectID int    `query:"subject_id"`
	ClassID   int    `query:"class_id"`
}

func (qf *TeacherFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}

type StudentFilter struct {
	Search    string `query:"search"`
	ClassID   int    `query:"class_id"`
	GradeID   int    `query:"grade_id"`
	ParentID  string `query:"parent_id"`
	TeacherID string `query:"teacher_id"`
}

func (qf *StudentFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.ParentID = core.CleanString(qf.ParentID)
	qf.TeacherID = core.CleanString(qf.TeacherID)
}

type ParentFilter struct {
	Search string `query:"search"`
}

func (qf *ParentFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}

// ClassSeats is a snapshot of a class occupancy.
type ClassSeats struct {
	Capacity     int `db:"capacity"`
	StudentCount int `db:"student_count"`
	GradeID      int `db:"grade_id"`
}

func (cs ClassSeats) IsFull() bool {
	return cs.StudentCount >= cs.Capacity
}
