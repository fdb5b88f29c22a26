package sqlxrepos

import (
	"context"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/school"
)

var (
	gradeOrdering = map[string]string{"id": "id", "name": "name", "level": "level"}
	classOrdering = map[string]string{
		"id":            "c.id",
		"name":          "c.name",
		"capacity":      "c.capacity",
		"grade_id":      "c.grade_id",
		"student_count": "student_count",
	}
	subjectOrdering = map[string]string{"id": "s.id", "name": "s.name"}
	lessonOrdering  = map[string]string{
		"id":         "l.id",
		"name":       "l.name",
		"day":        "l.day",
		"start_time": "l.start_time",
		"end_time":   "l.end_time",
	}
)

type schoolRepository struct {
	baseRepo
}

var _ school.Repository = (*schoolRepository)(nil) // interface compliance check

func NewSchoolRepository(exec core.DBExecutor) *schoolRepository {
	return &schoolRepository{baseRepo{exec: exec}}
}

func (repo schoolRepository) CreateGrade(ctx context.Context, grd school.Grade, exec ...core.DBExecutor) (school.Grade, error) {
	q := psql.Insert("grades").
		Columns("name", "level").
		Values(grd.Name, grd.Level).
		Suffix("RETURNING id")
	if err := getOne(ctx, repo.getExec(exec), &grd.ID, q); err != nil {
		return school.Grade{}, trapWriteErr(err, "inserting grade")
	}
	return grd, nil
}

func (repo schoolRepository) QueryGrades(ctx context.Context, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]school.Grade, error) {
	q := orderBy(psql.Select("id", "name", "level").From("grades"), ordering, gradeOrdering, "level", "id")
	grades := make([]school.Grade, 0)
	if err := selectAll(ctx, repo.getExec(exec), &grades, q); err != nil {
		return nil, errors.Wrap(err, "querying grades")
	}
	return grades, nil
}

func classSelect() sq.SelectBuilder {
	return psql.Select(
		"c.id", "c.name", "c.capacity", "c.supervisor_id", "c.grade_id",
		"(SELECT COUNT(*) FROM students st WHERE st.class_id = c.id) AS student_count",
	).From("classes c")
}

func filterClasses(b sq.SelectBuilder, filter *school.ClassFilter) sq.SelectBuilder {
	if filter == nil {
		return b
	}
	if filter.Search != "" {
		b = b.Where(search(filter.Search, "c.name"))
	}
	if filter.GradeID > 0 {
		b = b.Where(sq.Eq{"c.grade_id": filter.GradeID})
	}
	if filter.SupervisorID != "" {
		b = b.Where(sq.Eq{"c.supervisor_id": filter.SupervisorID})
	}
	return b
}

func (repo schoolRepository) CreateClass(ctx context.Context, cls school.Class, exec ...core.DBExecutor) (school.Class, error) {
	q := psql.Insert("classes").
		Columns("name", "capacity", "supervisor_id", "grade_id").
		Values(cls.Name, cls.Capacity, cls.SupervisorID, cls.GradeID).
		Suffix("RETURNING id")
	exe := repo.getExec(exec)
	if err := getOne(ctx, exe, &cls.ID, q); err != nil {
		return school.Class{}, trapWriteErr(err, "inserting class")
	}
	return repo.GetClass(ctx, cls.ID, exe)
}

func (repo schoolRepository) QueryClasses(
	ctx context.Context,
	filter *school.ClassFilter,
	ordering []core.DBOrdering,
	page core.Pagination,
	exec ...core.DBExecutor,
) ([]school.Class, int, error) {
	list := orderBy(filterClasses(classSelect(), filter), ordering, classOrdering, "c.name", "c.id")
	cnt := filterClasses(psql.Select("COUNT(*)").From("classes c"), filter)

	classes := make([]school.Class, 0)
	total, err := queryPage(ctx, repo.getExec(exec), &classes, list, cnt, page)
	if err != nil {
		return nil, 0, errors.Wrap(err, "querying classes")
	}
	return classes, total, nil
}

func (repo schoolRepository) GetClass(ctx context.Context, id int, exec ...core.DBExecutor) (school.Class, error) {
	var cls school.Class
	if err := getOne(ctx, repo.getExec(exec), &cls, classSelect().Where(sq.Eq{"c.id": id})); err != nil {
		return school.Class{}, trapNoRowsErr(err, "getting class")
	}
	return cls, nil
}

func (repo schoolRepository) UpdateClass(ctx context.Context, cls school.Class, exec ...core.DBExecutor) (school.Class, error) {
	q := psql.Update("classes").
		SetMap(map[string]interface{}{
			"name":          cls.Name,
			"capacity":      cls.Capacity,
			"supervisor_id": cls.SupervisorID,
			"grade_id":      cls.GradeID,
		}).
		Where(sq.Eq{"id": cls.ID}).
		Suffix("RETURNING id")
	exe := repo.getExec(exec)
	if err := getOne(ctx, exe, &cls.ID, q); err != nil {
		return school.Class{}, trapNoRowsErr(err, "updating class")
	}
	return repo.GetClass(ctx, cls.ID, exe)
}

func (repo schoolRepository) DeleteClasses(ctx context.Context, ids []int, exec ...core.DBExecutor) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := execute(ctx, repo.getExec(exec), psql.Delete("classes").Where(sq.Eq{"id": ids}))
	return trapDeleteErr(err, "deleting classes")
}

func filterSubjects(b sq.SelectBuilder, filter *school.SubjectFilter) sq.SelectBuilder {
	if filter == nil {
		return b
	}
	if filter.Search != "" {
		b = b.Where(search(filter.Search, "s.name"))
	}
	if filter.TeacherID != "" {
		b = b.Where(sq.Expr("s.id IN (SELECT subject_id FROM subject_teachers WHERE teacher_id = ?)", filter.TeacherID))
	}
	return b
}

// loadSubjectTeachers sets the TeacherIDs of subjects.
func (repo schoolRepository) loadSubjectTeachers(ctx context.Context, exe core.DBExecutor, subjects []school.Subject) error {
	if len(subjects) == 0 {
		return nil
	}
	ids := make([]int, 0, len(subjects))
	for _, s := range subjects {
		ids = append(ids, s.ID)
	}

	var links []struct {
		SubjectID int    `db:"subject_id"`
		TeacherID string `db:"teacher_id"`
	}
	q := psql.Select("subject_id", "teacher_id").
		From("subject_teachers").
		Where(sq.Eq{"subject_id": ids}).
		OrderBy("teacher_id")
	if err := selectAll(ctx, exe, &links, q); err != nil {
		return errors.Wrap(err, "querying subject teachers")
	}

	teachers := make(map[int][]string, len(subjects))
	for _, l := range links {
		teachers[l.SubjectID] = append(teachers[l.SubjectID], l.TeacherID)
	}
	for i := range subjects {
		subjects[i].TeacherIDs = teachers[subjects[i].ID]
		if subjects[i].TeacherIDs == nil {
			subjects[i].TeacherIDs = []string{}
		}
	}
	return nil
}

func (repo schoolRepository) setSubjectTeachers(ctx context.Context, exe core.DBExecutor, subjectID int, teacherIDs []string) error {
	if _, err := execute(ctx, exe, psql.Delete("subject_teachers").Where(sq.Eq{"subject_id": subjectID})); err != nil {
		return errors.Wrap(err, "clearing subject teachers")
	}
	if len(teacherIDs) == 0 {
		return nil
	}
	q := psql.Insert("subject_teachers").Columns("subject_id", "teacher_id")
	for _, tid := range teacherIDs {
		q = q.Values(subjectID, tid)
	}
	_, err := execute(ctx, exe, q)
	return trapWriteErr(err, "setting subject teachers")
}

func (repo schoolRepository) CreateSubject(ctx context.Context, sub school.Subject, exec ...core.DBExecutor) (school.Subject, error) {
	exe := repo.getExec(exec)
	q := psql.Insert("subjects").Columns("name").Values(sub.Name).Suffix("RETURNING id")
	if err := getOne(ctx, exe, &sub.ID, q); err != nil {
		return school.Subject{}, trapWriteErr(err, "inserting subject")
	}
	if err := repo.setSubjectTeachers(ctx, exe, sub.ID, sub.TeacherIDs); err != nil {
		return school.Subject{}, err
	}
	return repo.GetSubject(ctx, sub.ID, exe)
}

func (repo schoolRepository) QuerySubjects(
	ctx context.Context,
	filter *school.SubjectFilter,
	ordering []core.DBOrdering,
	page core.Pagination,
	exec ...core.DBExecutor,
) ([]school.Subject, int, error) {
	exe := repo.getExec(exec)
	list := orderBy(filterSubjects(psql.Select("s.id", "s.name").From("subjects s"), filter), ordering, subjectOrdering, "s.name", "s.id")
	cnt := filterSubjects(psql.Select("COUNT(*)").From("subjects s"), filter)

	subjects := make([]school.Subject, 0)
	total, err := queryPage(ctx, exe, &subjects, list, cnt, page)
	if err != nil {
		return nil, 0, errors.Wrap(err, "querying subjects")
	}
	if err = repo.loadSubjectTeachers(ctx, exe, subjects); err != nil {
		return nil, 0, err
	}
	return subjects, total, nil
}

func (repo schoolRepository) GetSubject(ctx context.Context, id int, exec ...core.DBExecutor) (school.Subject, error) {
	exe := repo.getExec(exec)
	var sub school.Subject
	if err := getOne(ctx, exe, &sub, psql.Select("s.id", "s.name").From("subjects s").Where(sq.Eq{"s.id": id})); err != nil {
		return school.Subject{}, trapNoRowsErr(err, "getting subject")
	}
	subjects := []school.Subject{sub}
	if err := repo.loadSubjectTeachers(ctx, exe, subjects); err != nil {
		return school.Subject{}, err
	}
	return subjects[0], nil
}

func (repo schoolRepository) UpdateSubject(ctx context.Context, sub school.Subject, exec ...core.DBExecutor) (school.Subject, error) {
	exe := repo.getExec(exec)
	q := psql.Update("subjects").Set("name", sub.Name).Where(sq.Eq{"id": sub.ID}).Suffix("RETURNING id")
	if err := getOne(ctx, exe, &sub.ID, q); err != nil {
		return school.Subject{}, trapNoRowsErr(err, "updating subject")
	}
	if err := repo.setSubjectTeachers(ctx, exe, sub.ID, sub.TeacherIDs); err != nil {
		return school.Subject{}, err
	}
	return repo.GetSubject(ctx, sub.ID, exe)
}

func (repo schoolRepository) DeleteSubjects(ctx context.Context, ids []int, exec ...core.DBExecutor) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := execute(ctx, repo.getExec(exec), psql.Delete("subjects").Where(sq.Eq{"id": ids}))
	return trapDeleteErr(err, "deleting subjects")
}

func lessonSelect() sq.SelectBuilder {
	return psql.Select("l.id", "l.name", "l.day", "l.start_time", "l.end_time", "l.subject_id", "l.class_id", "l.teacher_id").
		From("lessons l")
}

func filterLessons(b sq.SelectBuilder, filter *school.LessonFilter) sq.SelectBuilder {
	if filter == nil {
		return b
	}
	if filter.Search != "" {
		b = b.Where(search(filter.Search, "l.name"))
	}
	if filter.ClassID > 0 {
		b = b.Where(sq.Eq{"l.class_id": filter.ClassID})
	}
	if filter.TeacherID != "" {
		b = b.Where(sq.Eq{"l.teacher_id": filter.TeacherID})
	}
	if filter.SubjectID > 0 {
		b = b.Where(sq.Eq{"l.subject_id": filter.SubjectID})
	}
	if filter.Day != "" {
		b = b.Where(sq.Eq{"l.day": strings.ToUpper(filter.Day)})
	}
	return b
}

func (repo schoolRepository) CreateLesson(ctx context.Context, lsn school.Lesson, exec ...core.DBExecutor) (school.Lesson, error) {
	q := psql.Insert("lessons").
		Columns("name", "day", "start_time", "end_time", "subject_id", "class_id", "teacher_id").
		Values(lsn.Name, lsn.Day, lsn.StartTime.UTC(), lsn.EndTime.UTC(), lsn.SubjectID, lsn.ClassID, lsn.TeacherID).
		Suffix("RETURNING id")
	exe := repo.getExec(exec)
	if err := getOne(ctx, exe, &lsn.ID, q); err != nil {
		return school.Lesson{}, trapWriteErr(err, "inserting lesson")
	}
	return repo.GetLesson(ctx, lsn.ID, exe)
}

func (repo schoolRepository) QueryLessons(
	ctx context.Context,
	filter *school.LessonFilter,
	ordering []core.DBOrdering,
	page core.Pagination,
	exec ...core.DBExecutor,
) ([]school.Lesson, int, error) {
	list := orderBy(filterLessons(lessonSelect(), filter), ordering, lessonOrdering, "l.id")
	cnt := filterLessons(psql.Select("COUNT(*)").From("lessons l"), filter)

	lessons := make([]school.Lesson, 0)
	total, err := queryPage(ctx, repo.getExec(exec), &lessons, list, cnt, page)
	if err != nil {
		return nil, 0, errors.Wrap(err, "querying lessons")
	}
	return lessons, total, nil
}

func (repo schoolRepository) GetLesson(ctx context.Context, id int, exec ...core.DBExecutor) (school.Lesson, error) {
	var lsn school.Lesson
	if err := getOne(ctx, repo.getExec(exec), &lsn, lessonSelect().Where(sq.Eq{"l.id": id})); err != nil {
		return school.Lesson{}, trapNoRowsErr(err, "getting lesson")
	}
	return lsn, nil
}

func (repo schoolRepository) UpdateLesson(ctx context.Context, lsn school.Lesson, exec ...core.DBExecutor) (school.Lesson, error) {
	q := psql.Update("lessons").
		SetMap(map[string]interface{}{
			"name":       lsn.Name,
			"day":        lsn.Day,
			"start_time": lsn.StartTime.UTC(),
			"end_time":   lsn.EndTime.UTC(),
			"subject_id": lsn.SubjectID,
			"class_id":   lsn.ClassID,
			"teacher_id": lsn.TeacherID,
		}).
		Where(sq.Eq{"id": lsn.ID}).
		Suffix("RETURNING id")
	exe := repo.getExec(exec)
	if err := getOne(ctx, exe, &lsn.ID, q); err != nil {
		return school.Lesson{}, trapNoRowsErr(err, "updating lesson")
	}
	return repo.GetLesson(ctx, lsn.ID, exe)
}

func (repo schoolRepository) DeleteLessons(ctx context.Context, ids []int, exec ...core.DBExecutor) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := execute(ctx, repo.getExec(exec), psql.Delete("lessons").Where(sq.Eq{"id": ids}))
	return trapDeleteErr(err, "deleting lessons")
}
