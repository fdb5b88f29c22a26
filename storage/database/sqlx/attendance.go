package sqlxrepos

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/attendance"
)

var (
	attendanceColumns  = []string{"id", "date", "present", "student_id", "lesson_id"}
	attendanceOrdering = map[string]string{
		"id": "id", "date": "date", "present": "present", "student_id": "student_id", "lesson_id": "lesson_id",
	}
)

type attendanceRepository struct {
	baseRepo
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(exec core.DBExecutor) *attendanceRepository {
	return &attendanceRepository{baseRepo{exec: exec}}
}

func filterAttendances(b sq.SelectBuilder, filter *attendance.QueryFilter) sq.SelectBuilder {
	if filter == nil {
		return b
	}
	if filter.StudentID != "" {
		b = b.Where(sq.Eq{"student_id": filter.StudentID})
	}
	if filter.LessonID > 0 {
		b = b.Where(sq.Eq{"lesson_id": filter.LessonID})
	}
	if filter.ClassID > 0 {
		b = b.Where(sq.Expr("lesson_id IN (SELECT id FROM lessons WHERE class_id = ?)", filter.ClassID))
	}
	if filter.Present != nil {
		b = b.Where(sq.Eq{"present": *filter.Present})
	}
	if !filter.DateFrom.IsZero() {
		b = b.Where(sq.GtOrEq{"date": filter.DateFrom.UTC()})
	}
	if !filter.DateTo.IsZero() {
		b = b.Where(sq.LtOrEq{"date": filter.DateTo.UTC()})
	}
	return b
}

func (repo attendanceRepository) CreateAttendance(ctx context.Context, att attendance.Attendance, exec ...core.DBExecutor) (attendance.Attendance, error) {
	q := psql.Insert("attendances").
		Columns("date", "present", "student_id", "lesson_id").
		Values(att.Date.UTC(), att.Present, att.StudentID, att.LessonID).
		Suffix("RETURNING id")
	if err := getOne(ctx, repo.getExec(exec), &att.ID, q); err != nil {
		return attendance.Attendance{}, trapWriteErr(err, "inserting attendance")
	}
	return att, nil
}

func (repo attendanceRepository) QueryAttendances(
	ctx context.Context,
	filter *attendance.QueryFilter,
	ordering []core.DBOrdering,
	page core.Pagination,
	exec ...core.DBExecutor,
) ([]attendance.Attendance, int, error) {
	list := orderBy(filterAttendances(psql.Select(attendanceColumns...).From("attendances"), filter), ordering, attendanceOrdering, "date DESC", "id")
	cnt := filterAttendances(psql.Select("COUNT(*)").From("attendances"), filter)

	atts := make([]attendance.Attendance, 0)
	total, err := queryPage(ctx, repo.getExec(exec), &atts, list, cnt, page)
	if err != nil {
		return nil, 0, errors.Wrap(err, "querying attendances")
	}
	return atts, total, nil
}

func (repo attendanceRepository) GetAttendance(ctx context.Context, id int, exec ...core.DBExecutor) (attendance.Attendance, error) {
	var att attendance.Attendance
	q := psql.Select(attendanceColumns...).From("attendances").Where(sq.Eq{"id": id})
	if err := getOne(ctx, repo.getExec(exec), &att, q); err != nil {
		return attendance.Attendance{}, trapNoRowsErr(err, "getting attendance")
	}
	return att, nil
}

func (repo attendanceRepository) UpdateAttendance(ctx context.Context, att attendance.Attendance, exec ...core.DBExecutor) (attendance.Attendance, error) {
	q := psql.Update("attendances").
		SetMap(map[string]interface{}{
			"date":       att.Date.UTC(),
			"present":    att.Present,
			"student_id": att.StudentID,
			"lesson_id":  att.LessonID,
		}).
		Where(sq.Eq{"id": att.ID}).
		Suffix("RETURNING " + joinColumns(attendanceColumns))
	var updated attendance.Attendance
	if err := getOne(ctx, repo.getExec(exec), &updated, q); err != nil {
		return attendance.Attendance{}, trapNoRowsErr(err, "updating attendance")
	}
	return updated, nil
}

func (repo attendanceRepository) DeleteAttendances(ctx context.Context, ids []int, exec ...core.DBExecutor) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := execute(ctx, repo.getExec(exec), psql.Delete("attendances").Where(sq.Eq{"id": ids}))
	return trapDeleteErr(err, "deleting attendances")
}
