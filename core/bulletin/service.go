package bulletin

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
)

type (
	Repository interface {
		CreateAnnouncement(ctx context.Context, ann Announcement, exec ...core.DBExecutor) (Announcement, error)
		// QueryAnnouncements applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on the title or the description.
		QueryAnnouncements(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, page core.Pagination, exec ...core.DBExecutor) ([]Announcement, int, error)
		GetAnnouncement(ctx context.Context, id int, exec ...core.DBExecutor) (Announcement, error)
		UpdateAnnouncement(ctx context.Context, ann Announcement, exec ...core.DBExecutor) (Announcement, error)
		DeleteAnnouncements(ctx context.Context, ids []int, exec ...core.DBExecutor) error

		CreateEvent(ctx context.Context, evt Event, exec ...core.DBExecutor) (Event, error)
		QueryEvents(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, page core.Pagination, exec ...core.DBExecutor) ([]Event, int, error)
		GetEvent(ctx context.Context, id int, exec ...core.DBExecutor) (Event, error)
		UpdateEvent(ctx context.Context, evt Event, exec ...core.DBExecutor) (Event, error)
		DeleteEvents(ctx context.Context, ids []int, exec ...core.DBExecutor) error
	}

	Service interface {
		CreateAnnouncement(ctx context.Context, na NewAnnouncement) (Announcement, error)
		QueryAnnouncements(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, page core.Pagination) ([]Announcement, int, error)
		GetAnnouncement(ctx context.Context, id int) (Announcement, error)
		UpdateAnnouncement(ctx context.Context, id int, na NewAnnouncement) (Announcement, error)
		DeleteAnnouncements(ctx context.Context, ids ...int) error

		CreateEvent(ctx context.Context, ne NewEvent) (Event, error)
		QueryEvents(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, page core.Pagination) ([]Event, int, error)
		GetEvent(ctx context.Context, id int) (Event, error)
		UpdateEvent(ctx context.Context, id int, ne NewEvent) (Event, error)
		DeleteEvents(ctx context.Context, ids ...int) error
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) CreateAnnouncement(ctx context.Context, na NewAnnouncement) (Announcement, error) {
	ann, err := svc.repo.CreateAnnouncement(ctx, Announcement{
		Title:       na.Title,
		Description: na.Description,
		Date:        na.Date,
		ClassID:     na.ClassID,
	})
	return ann, errors.Wrap(err, "creating announcement")
}

func (svc *service) QueryAnnouncements(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, page core.Pagination) ([]Announcement, int, error) {
	return svc.repo.QueryAnnouncements(ctx, filter, ordering, page)
}

func (svc *service) GetAnnouncement(ctx context.Context, id int) (Announcement, error) {
	return svc.repo.GetAnnouncement(ctx, id)
}

func (svc *service) UpdateAnnouncement(ctx context.Context, id int, na NewAnnouncement) (Announcement, error) {
	ann, err := svc.repo.UpdateAnnouncement(ctx, Announcement{
		ID:          id,
		Title:       na.Title,
		Description: na.Description,
		Date:        na.Date,
		ClassID:     na.ClassID,
	})
	return ann, errors.Wrap(err, "updating announcement")
}

func (svc *service) DeleteAnnouncements(ctx context.Context, ids ...int) error {
	return svc.repo.DeleteAnnouncements(ctx, ids)
}

func (svc *service) CreateEvent(ctx context.Context, ne NewEvent) (Event, error) {
	evt, err := svc.repo.CreateEvent(ctx, Event{
		Title:       ne.Title,
		Description: ne.Description,
		StartTime:   ne.StartTime,
		EndTime:     ne.EndTime,
		ClassID:     ne.ClassID,
	})
	return evt, errors.Wrap(err, "creating event")
}

func (svc *service) QueryEvents(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, page core.Pagination) ([]Event, int, error) {
	return svc.repo.QueryEvents(ctx, filter, ordering, page)
}

func (svc *service) GetEvent(ctx context.Context, id int) (Event, error) {
	return svc.repo.GetEvent(ctx, id)
}

func (svc *service) UpdateEvent(ctx context.Context, id int, ne NewEvent) (Event, error) {
	evt, err := svc.repo.UpdateEvent(ctx, Event{
		ID:          id,
		Title:       ne.Title,
		Description: ne.Description,
		StartTime:   ne.StartTime,
		EndTime:     ne.EndTime,
		ClassID:     ne.ClassID,
	})
	return evt, errors.Wrap(err, "updating event")
}

func (svc *service) DeleteEvents(ctx context.Context, ids ...int) error {
	return svc.repo.DeleteEvents(ctx, ids)
}
