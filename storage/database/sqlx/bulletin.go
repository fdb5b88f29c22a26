package sqlxrepos

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/bulletin"
)

var (
	announcementColumns  = []string{"id", "title", "description", "date", "class_id"}
	announcementOrdering = map[string]string{"id": "id", "title": "title", "date": "date"}
	eventColumns         = []string{"id", "title", "description", "start_time", "end_time", "class_id"}
	eventOrdering        = map[string]string{"id": "id", "title": "title", "start_time": "start_time", "end_time": "end_time"}
)

type bulletinRepository struct {
	baseRepo
}

var _ bulletin.Repository = (*bulletinRepository)(nil) // interface compliance check

func NewBulletinRepository(exec core.DBExecutor) *bulletinRepository {
	return &bulletinRepository{baseRepo{exec: exec}}
}

// filterBulletin filters on dateCol within the filter's date range.
func filterBulletin(b sq.SelectBuilder, filter *bulletin.QueryFilter, dateCol string) sq.SelectBuilder {
	if filter == nil {
		return b
	}
	if filter.Search != "" {
		b = b.Where(search(filter.Search, "title", "description"))
	}
	if filter.ClassID > 0 {
		b = b.Where(sq.Eq{"class_id": filter.ClassID})
	}
	if !filter.DateFrom.IsZero() {
		b = b.Where(sq.GtOrEq{dateCol: filter.DateFrom.UTC()})
	}
	if !filter.DateTo.IsZero() {
		b = b.Where(sq.LtOrEq{dateCol: filter.DateTo.UTC()})
	}
	return b
}

// announcements

func (repo bulletinRepository) CreateAnnouncement(ctx context.Context, ann bulletin.Announcement, exec ...core.DBExecutor) (bulletin.Announcement, error) {
	q := psql.Insert("announcements").
		Columns("title", "description", "date", "class_id").
		Values(ann.Title, ann.Description, ann.Date.UTC(), ann.ClassID).
		Suffix("RETURNING id")
	if err := getOne(ctx, repo.getExec(exec), &ann.ID, q); err != nil {
		return bulletin.Announcement{}, trapWriteErr(err, "inserting announcement")
	}
	return ann, nil
}

func (repo bulletinRepository) QueryAnnouncements(
	ctx context.Context,
	filter *bulletin.QueryFilter,
	ordering []core.DBOrdering,
	page core.Pagination,
	exec ...core.DBExecutor,
) ([]bulletin.Announcement, int, error) {
	list := orderBy(
		filterBulletin(psql.Select(announcementColumns...).From("announcements"), filter, "date"),
		ordering, announcementOrdering, "date DESC", "id",
	)
	cnt := filterBulletin(psql.Select("COUNT(*)").From("announcements"), filter, "date")

	anns := make([]bulletin.Announcement, 0)
	total, err := queryPage(ctx, repo.getExec(exec), &anns, list, cnt, page)
	if err != nil {
		return nil, 0, errors.Wrap(err, "querying announcements")
	}
	return anns, total, nil
}

func (repo bulletinRepository) GetAnnouncement(ctx context.Context, id int, exec ...core.DBExecutor) (bulletin.Announcement, error) {
	var ann bulletin.Announcement
	q := psql.Select(announcementColumns...).From("announcements").Where(sq.Eq{"id": id})
	if err := getOne(ctx, repo.getExec(exec), &ann, q); err != nil {
		return bulletin.Announcement{}, trapNoRowsErr(err, "getting announcement")
	}
	return ann, nil
}

func (repo bulletinRepository) UpdateAnnouncement(ctx context.Context, ann bulletin.Announcement, exec ...core.DBExecutor) (bulletin.Announcement, error) {
	q := psql.Update("announcements").
		SetMap(map[string]interface{}{
			"title":       ann.Title,
			"description": ann.Description,
			"date":        ann.Date.UTC(),
			"class_id":    ann.ClassID,
		}).
		Where(sq.Eq{"id": ann.ID}).
		Suffix("RETURNING " + joinColumns(announcementColumns))
	var updated bulletin.Announcement
	if err := getOne(ctx, repo.getExec(exec), &updated, q); err != nil {
		return bulletin.Announcement{}, trapNoRowsErr(err, "updating announcement")
	}
	return updated, nil
}

func (repo bulletinRepository) DeleteAnnouncements(ctx context.Context, ids []int, exec ...core.DBExecutor) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := execute(ctx, repo.getExec(exec), psql.Delete("announcements").Where(sq.Eq{"id": ids}))
	return trapDeleteErr(err, "deleting announcements")
}

// events

func (repo bulletinRepository) CreateEvent(ctx context.Context, evt bulletin.Event, exec ...core.DBExecutor) (bulletin.Event, error) {
	q := psql.Insert("events").
		Columns("title", "description", "start_time", "end_time", "class_id").
		Values(evt.Title, evt.Description, evt.StartTime.UTC(), evt.EndTime.UTC(), evt.ClassID).
		Suffix("RETURNING id")
	if err := getOne(ctx, repo.getExec(exec), &evt.ID, q); err != nil {
		return bulletin.Event{}, trapWriteErr(err, "inserting event")
	}
	return evt, nil
}

func (repo bulletinRepository) QueryEvents(
	ctx context.Context,
	filter *bulletin.QueryFilter,
	ordering []core.DBOrdering,
	page core.Pagination,
	exec ...core.DBExecutor,
) ([]bulletin.Event, int, error) {
	list := orderBy(
		filterBulletin(psql.Select(eventColumns...).From("events"), filter, "start_time"),
		ordering, eventOrdering, "start_time DESC", "id",
	)
	cnt := filterBulletin(psql.Select("COUNT(*)").From("events"), filter, "start_time")

	evts := make([]bulletin.Event, 0)
	total, err := queryPage(ctx, repo.getExec(exec), &evts, list, cnt, page)
	if err != nil {
		return nil, 0, errors.Wrap(err, "querying events")
	}
	return evts, total, nil
}

func (repo bulletinRepository) GetEvent(ctx context.Context, id int, exec ...core.DBExecutor) (bulletin.Event, error) {
	var evt bulletin.Event
	q := psql.Select(eventColumns...).From("events").Where(sq.Eq{"id": id})
	if err := getOne(ctx, repo.getExec(exec), &evt, q); err != nil {
		return bulletin.Event{}, trapNoRowsErr(err, "getting event")
	}
	return evt, nil
}

func (repo bulletinRepository) UpdateEvent(ctx context.Context, evt bulletin.Event, exec ...core.DBExecutor) (bulletin.Event, error) {
	q := psql.Update("events").
		SetMap(map[string]interface{}{
			"title":       evt.Title,
			"description": evt.Description,
			"start_time":  evt.StartTime.UTC(),
			"end_time":    evt.EndTime.UTC(),
			"class_id":    evt.ClassID,
		}).
		Where(sq.Eq{"id": evt.ID}).
		Suffix("RETURNING " + joinColumns(eventColumns))
	var updated bulletin.Event
	if err := getOne(ctx, repo.getExec(exec), &updated, q); err != nil {
		return bulletin.Event{}, trapNoRowsErr(err, "updating event")
	}
	return updated, nil
}

func (repo bulletinRepository) DeleteEvents(ctx context.Context, ids []int, exec ...core.DBExecutor) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := execute(ctx, repo.getExec(exec), psql.Delete("events").Where(sq.Eq{"id": ids}))
	return trapDeleteErr(err, "deleting events")
}
