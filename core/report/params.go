package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
)

const dateLayout = "2006-01-02"

var (
	ErrInvalidType   = core.NewValidationError(errors.New("Invalid report type"))
	errRangeRequired = errors.New("Start date and end date are required.")
	errInvalidDate   = errors.New("must be an RFC3339 timestamp or a YYYY-MM-DD date")
)

// Date is a point in time that remembers whether it was given without a time part.
type Date struct {
	time.Time
	DateOnly bool
}

// ParseDate accepts RFC3339 timestamps and YYYY-MM-DD dates.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return Date{Time: t.UTC()}, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, errInvalidDate
	}
	return Date{Time: t, DateOnly: true}, nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return errInvalidDate
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	if d.DateOnly {
		return json.Marshal(d.Format(dateLayout))
	}
	return json.Marshal(d.UTC().Format(time.RFC3339))
}

// UnmarshalParam lets echo bind dates from query params.
func (d *Date) UnmarshalParam(param string) error {
	parsed, err := ParseDate(param)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// LowerBound is the first instant covered by the date.
func (d Date) LowerBound() time.Time {
	return d.UTC()
}

// UpperBound is the last instant covered by the date: the whole day for date-only values.
func (d Date) UpperBound() time.Time {
	if d.DateOnly {
		return d.UTC().AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return d.UTC()
}

// Params are the report request parameters. Which ones are used depends on the report Type.
type Params struct {
	Type      Type   `json:"type"`
	StartDate Date   `json:"start_date"`
	EndDate   Date   `json:"end_date"`
	ClassID   int    `json:"class_id,omitempty"`
	GradeID   int    `json:"grade_id,omitempty"`
	StudentID string `json:"student_id,omitempty"`
	TeacherID string `json:"teacher_id,omitempty"`
	LessonID  int    `json:"lesson_id,omitempty"`
	Present   *bool  `json:"present,omitempty"`
}

func (p *Params) Clean() {
	p.Type = Type(core.CleanString(string(p.Type), true /* lower */))
	p.StudentID = core.CleanString(p.StudentID)
	p.TeacherID = core.CleanString(p.TeacherID)
}

// Filter is the resolved query filter handed to the Store. Zero values mean "no filter".
type Filter struct {
	From      time.Time
	To        time.Time
	ClassID   int
	GradeID   int // grade of the class
	StudentID string
	TeacherID string
	LessonID  int
	Present   *bool
}

func (f Filter) HasRange() bool {
	return !f.From.IsZero() || !f.To.IsZero()
}

// filter checks p against the definition of its report type and resolves it into a Filter.
// Parameters the report type does not use are dropped.
func (p Params) filter(def definition) (Filter, error) {
	var fldErrs []core.FieldError
	var f Filter

	hasStart, hasEnd := !p.StartDate.IsZero(), !p.EndDate.IsZero()
	switch {
	case def.rangeRequired && !(hasStart && hasEnd):
		if !hasStart {
			fldErrs = append(fldErrs, core.FieldError{Field: "start_date", Error: "this field is required"})
		}
		if !hasEnd {
			fldErrs = append(fldErrs, core.FieldError{Field: "end_date", Error: "this field is required"})
		}
		return Filter{}, core.NewValidationError(errRangeRequired, fldErrs...)
	case def.usesRange:
		if hasStart {
			f.From = p.StartDate.LowerBound()
		}
		if hasEnd {
			f.To = p.EndDate.UpperBound()
		}
		if hasStart && hasEnd && f.To.Before(f.From) {
			fldErrs = append(fldErrs, core.FieldError{Field: "end_date", Error: "must be after the start"})
		}
	}

	for _, param := range def.params {
		switch param {
		case paramClass:
			f.ClassID = p.ClassID
		case paramGrade:
			f.GradeID = p.GradeID
		case paramStudent:
			f.StudentID = p.StudentID
		case paramTeacher:
			f.TeacherID = p.TeacherID
		case paramLesson:
			f.LessonID = p.LessonID
		case paramPresent:
			f.Present = p.Present
		}
	}
	for _, param := range def.required {
		var missing bool
		switch param {
		case paramClass:
			missing = f.ClassID <= 0
		case paramStudent:
			missing = f.StudentID == ""
		}
		if missing {
			fldErrs = append(fldErrs, core.FieldError{Field: param, Error: "this field is required"})
		}
	}

	if len(fldErrs) > 0 {
		return Filter{}, core.NewValidationError(nil, fldErrs...)
	}
	return f, nil
}

// normalized drops the parameters the report type does not use, so equivalent requests share a cache entry.
func (p Params) normalized(def definition, f Filter) Params {
	n := Params{
		Type:      p.Type,
		ClassID:   f.ClassID,
		GradeID:   f.GradeID,
		StudentID: f.StudentID,
		TeacherID: f.TeacherID,
		LessonID:  f.LessonID,
		Present:   f.Present,
	}
	if def.usesRange {
		n.StartDate = p.StartDate
		n.EndDate = p.EndDate
	}
	return n
}
