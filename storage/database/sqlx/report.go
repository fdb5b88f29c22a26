package sqlxrepos

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/report"
)

const dayPosition = "array_position(ARRAY['MONDAY','TUESDAY','WEDNESDAY','THURSDAY','FRIDAY'], l.day)"

type reportStore struct {
	baseRepo
}

var _ report.Store = (*reportStore)(nil) // interface compliance check

func NewReportStore(exec core.DBExecutor) *reportStore {
	return &reportStore{baseRepo{exec: exec}}
}

// since & until bound col by the filter range; zero bounds are open.
func since(b sq.SelectBuilder, col string, f report.Filter) sq.SelectBuilder {
	if !f.From.IsZero() {
		b = b.Where(sq.GtOrEq{col: f.From})
	}
	return b
}

func until(b sq.SelectBuilder, col string, f report.Filter) sq.SelectBuilder {
	if !f.To.IsZero() {
		b = b.Where(sq.LtOrEq{col: f.To})
	}
	return b
}

func (s reportStore) Announcements(ctx context.Context, f report.Filter) ([]report.AnnouncementRecord, error) {
	q := psql.Select("a.date", "a.title", "a.description", "c.name AS class_name").
		From("announcements a").
		LeftJoin("classes c ON c.id = a.class_id").
		OrderBy("a.date", "a.id")
	q = until(since(q, "a.date", f), "a.date", f)
	if f.ClassID > 0 {
		q = q.Where(sq.Eq{"a.class_id": f.ClassID})
	}

	recs := make([]report.AnnouncementRecord, 0)
	return recs, errors.Wrap(selectAll(ctx, s.exec, &recs, q), "querying announcement report")
}

func (s reportStore) Attendances(ctx context.Context, f report.Filter) ([]report.AttendanceRecord, error) {
	q := psql.Select(
		"at.date", "at.present",
		"s.name AS student_name", "s.surname AS student_surname",
		"l.name AS lesson_name", "c.name AS class_name",
		"t.name AS teacher_name", "t.surname AS teacher_surname",
	).
		From("attendances at").
		Join("students s ON s.id = at.student_id").
		Join("lessons l ON l.id = at.lesson_id").
		LeftJoin("classes c ON c.id = l.class_id").
		LeftJoin("teachers t ON t.id = l.teacher_id").
		OrderBy("at.date", "s.name", "s.surname", "at.id")
	q = until(since(q, "at.date", f), "at.date", f)
	if f.StudentID != "" {
		q = q.Where(sq.Eq{"at.student_id": f.StudentID})
	}
	if f.ClassID > 0 {
		q = q.Where(sq.Eq{"l.class_id": f.ClassID})
	}
	if f.LessonID > 0 {
		q = q.Where(sq.Eq{"at.lesson_id": f.LessonID})
	}
	if f.Present != nil {
		q = q.Where(sq.Eq{"at.present": *f.Present})
	}

	recs := make([]report.AttendanceRecord, 0)
	return recs, errors.Wrap(selectAll(ctx, s.exec, &recs, q), "querying attendance report")
}

func (s reportStore) Assignments(ctx context.Context, f report.Filter) ([]report.AssignmentRecord, error) {
	q := psql.Select(
		"a.title", "a.start_date", "a.due_date",
		"t.name AS teacher_name", "t.surname AS teacher_surname",
	).
		From("assignments a").
		Join("lessons l ON l.id = a.lesson_id").
		Join("teachers t ON t.id = l.teacher_id").
		OrderBy("a.start_date", "a.id")
	q = until(since(q, "a.start_date", f), "a.due_date", f)
	if f.TeacherID != "" {
		q = q.Where(sq.Eq{"l.teacher_id": f.TeacherID})
	}

	recs := make([]report.AssignmentRecord, 0)
	return recs, errors.Wrap(selectAll(ctx, s.exec, &recs, q), "querying assignments report")
}

func (s reportStore) Events(ctx context.Context, f report.Filter) ([]report.EventRecord, error) {
	q := psql.Select("e.title", "e.description", "e.start_time", "e.end_time", "c.name AS class_name").
		From("events e").
		LeftJoin("classes c ON c.id = e.class_id").
		OrderBy("e.start_time", "e.id")
	q = until(since(q, "e.start_time", f), "e.end_time", f)
	if f.ClassID > 0 {
		q = q.Where(sq.Eq{"e.class_id": f.ClassID})
	}

	recs := make([]report.EventRecord, 0)
	return recs, errors.Wrap(selectAll(ctx, s.exec, &recs, q), "querying events report")
}

func (s reportStore) Results(ctx context.Context, f report.Filter) ([]report.ResultRecord, error) {
	const when = "COALESCE(e.start_time, a.due_date)"
	q := psql.Select(
		"r.score", "r.exam_id",
		"e.title AS exam_title", "e.start_time AS exam_start",
		"a.title AS assignment_title", "a.due_date AS assignment_due",
		"s.name AS student_name", "s.surname AS student_surname",
	).
		From("results r").
		Join("students s ON s.id = r.student_id").
		LeftJoin("exams e ON e.id = r.exam_id").
		LeftJoin("assignments a ON a.id = r.assignment_id").
		Where(sq.Eq{"r.student_id": f.StudentID}).
		OrderBy(when, "r.id")
	q = until(since(q, when, f), when, f)

	recs := make([]report.ResultRecord, 0)
	return recs, errors.Wrap(selectAll(ctx, s.exec, &recs, q), "querying results report")
}

func (s reportStore) Parents(ctx context.Context, _ report.Filter) ([]report.ParentRecord, error) {
	q := psql.Select(
		"p.username", "p.name", "p.surname", "p.email", "p.phone", "p.address", "p.created_at",
		"(SELECT COUNT(*) FROM students s WHERE s.parent_id = p.id) AS student_count",
	).
		From("parents p").
		OrderBy("p.name", "p.surname", "p.id")

	recs := make([]report.ParentRecord, 0)
	return recs, errors.Wrap(selectAll(ctx, s.exec, &recs, q), "querying parents report")
}

func (s reportStore) Students(ctx context.Context, f report.Filter) ([]report.StudentRecord, error) {
	q := psql.Select(
		"s.username", "s.name", "s.surname", "s.email", "s.phone", "s.address",
		"s.blood_type", "s.sex", "s.birthday",
		"p.name AS parent_name", "p.surname AS parent_surname",
		"c.name AS class_name", "g.name AS grade_name",
	).
		From("students s").
		Join("parents p ON p.id = s.parent_id").
		Join("classes c ON c.id = s.class_id").
		Join("grades g ON g.id = s.grade_id").
		OrderBy("s.name", "s.surname", "s.id")
	if f.ClassID > 0 {
		q = q.Where(sq.Eq{"s.class_id": f.ClassID})
	}
	if f.GradeID > 0 {
		q = q.Where(sq.Eq{"c.grade_id": f.GradeID})
	}

	recs := make([]report.StudentRecord, 0)
	return recs, errors.Wrap(selectAll(ctx, s.exec, &recs, q), "querying students report")
}

func (s reportStore) Teachers(ctx context.Context, _ report.Filter) ([]report.TeacherRecord, error) {
	q := psql.Select(
		"t.username", "t.name", "t.surname", "t.email", "t.phone", "t.address",
		"t.blood_type", "t.sex", "t.birthday",
		"(SELECT COUNT(*) FROM subject_teachers st WHERE st.teacher_id = t.id) AS subject_count",
		"(SELECT COUNT(*) FROM lessons l WHERE l.teacher_id = t.id) AS lesson_count",
		"(SELECT COUNT(*) FROM classes c WHERE c.supervisor_id = t.id) AS class_count",
	).
		From("teachers t").
		OrderBy("t.name", "t.surname", "t.id")

	recs := make([]report.TeacherRecord, 0)
	return recs, errors.Wrap(selectAll(ctx, s.exec, &recs, q), "querying teachers report")
}

func (s reportStore) Classes(ctx context.Context, _ report.Filter) ([]report.ClassRecord, error) {
	q := psql.Select(
		"c.name", "c.capacity",
		"t.name AS supervisor_name", "t.surname AS supervisor_surname",
		"(SELECT COUNT(*) FROM students st WHERE st.class_id = c.id) AS student_count",
		"g.name AS grade_name",
	).
		From("classes c").
		Join("grades g ON g.id = c.grade_id").
		LeftJoin("teachers t ON t.id = c.supervisor_id").
		OrderBy("g.level", "c.name")

	recs := make([]report.ClassRecord, 0)
	return recs, errors.Wrap(selectAll(ctx, s.exec, &recs, q), "querying classes report")
}

func (s reportStore) Subjects(ctx context.Context, _ report.Filter) ([]report.SubjectRecord, error) {
	q := psql.Select(
		"s.name",
		"COALESCE(array_agg(t.name || ' ' || t.surname ORDER BY t.name, t.surname) FILTER (WHERE t.id IS NOT NULL), '{}') AS teacher_names",
	).
		From("subjects s").
		LeftJoin("subject_teachers st ON st.subject_id = s.id").
		LeftJoin("teachers t ON t.id = st.teacher_id").
		GroupBy("s.id", "s.name").
		OrderBy("s.name")

	var rows []struct {
		Name         string         `db:"name"`
		TeacherNames pq.StringArray `db:"teacher_names"`
	}
	if err := selectAll(ctx, s.exec, &rows, q); err != nil {
		return nil, errors.Wrap(err, "querying subjects report")
	}
	recs := make([]report.SubjectRecord, 0, len(rows))
	for _, r := range rows {
		recs = append(recs, report.SubjectRecord{Name: r.Name, TeacherNames: r.TeacherNames})
	}
	return recs, nil
}

func (s reportStore) Lessons(ctx context.Context, f report.Filter) ([]report.LessonRecord, error) {
	q := psql.Select(
		"l.name", "l.day", "l.start_time", "l.end_time",
		"sub.name AS subject_name", "c.name AS class_name",
		"t.name AS teacher_name", "t.surname AS teacher_surname",
	).
		From("lessons l").
		Join("subjects sub ON sub.id = l.subject_id").
		Join("classes c ON c.id = l.class_id").
		Join("teachers t ON t.id = l.teacher_id").
		OrderBy(dayPosition, "l.start_time", "c.name", "l.id")
	if f.ClassID > 0 {
		q = q.Where(sq.Eq{"l.class_id": f.ClassID})
	}
	if f.TeacherID != "" {
		q = q.Where(sq.Eq{"l.teacher_id": f.TeacherID})
	}

	recs := make([]report.LessonRecord, 0)
	return recs, errors.Wrap(selectAll(ctx, s.exec, &recs, q), "querying lessons report")
}
