package bulletin

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core"
)

// Announcement is addressed to a class, or to the whole school when ClassID is null.
type Announcement struct {
	ID          int       `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Date        time.Time `json:"date" db:"date"` // UTC
	ClassID     null.Int  `json:"class_id" db:"class_id"`
}

// NewAnnouncement contains information needed to create or replace an Announcement.
type NewAnnouncement struct {
	Title       string    `json:"title" validate:"required,notblank,max=255"`
	Description string    `json:"description" validate:"required,notblank"`
	Date        time.Time `json:"date" validate:"required"`
	ClassID     null.Int  `json:"class_id" validate:"omitempty,min=1"`
}

func (na *NewAnnouncement) Validate(validate *validator.Validate) error {
	na.Title = core.CleanString(na.Title)
	na.Description = core.CleanString(na.Description)
	na.Date = na.Date.UTC()
	return validate.Struct(na)
}

// Event is addressed to a class, or to the whole school when ClassID is null.
type Event struct {
	ID          int       `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	StartTime   time.Time `json:"start_time" db:"start_time"` // UTC
	EndTime     time.Time `json:"end_time" db:"end_time"`     // UTC
	ClassID     null.Int  `json:"class_id" db:"class_id"`
}

// NewEvent contains information needed to create or replace an Event.
type NewEvent struct {
	Title       string    `json:"title" validate:"required,notblank,max=255"`
	Description string    `json:"description" validate:"required,notblank"`
	StartTime   time.Time `json:"start_time" validate:"required"`
	EndTime     time.Time `json:"end_time" validate:"required,gtfield=StartTime"`
	ClassID     null.Int  `json:"class_id" validate:"omitempty,min=1"`
}

func (ne *NewEvent) Validate(validate *validator.Validate) error {
	ne.Title = core.CleanString(ne.Title)
	ne.Description = core.CleanString(ne.Description)
	ne.StartTime = ne.StartTime.UTC()
	ne.EndTime = ne.EndTime.UTC()
	return validate.Struct(ne)
}

// QueryFilter filters announcements (on their date) and events (on their start time).
type QueryFilter struct {
	Search   string    `query:"search"`
	ClassID  int       `query:"class_id"`
	DateFrom time.Time `query:"-"` // bound from date_from
	DateTo   time.Time `query:"-"` // bound from date_to
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}
