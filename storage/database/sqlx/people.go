package sqlxrepos

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/people"
)

var (
	personOrdering = map[string]string{
		"username":   "username",
		"name":       "name",
		"surname":    "surname",
		"created_at": "created_at",
	}
	teacherOrdering = merge(personOrdering, map[string]string{
		"birthday":      "birthday",
		"subject_count": "subject_count",
		"lesson_count":  "lesson_count",
		"class_count":   "class_count",
	})
	studentOrdering = merge(personOrdering, map[string]string{
		"birthday": "birthday",
		"class_id": "class_id",
		"grade_id": "grade_id",
	})
	parentOrdering = merge(personOrdering, map[string]string{"student_count": "student_count"})
)

func merge(maps ...map[string]string) map[string]string {
	merged := make(map[string]string)
	for _, m := range maps {
		for k, v := range m {
			merged[k] = v
		}
	}
	return merged
}

var personColumns = []string{"id", "username", "name", "surname", "email", "phone", "address", "created_at"}

func concat(cols ...[]string) []string {
	var all []string
	for _, c := range cols {
		all = append(all, c...)
	}
	return all
}

type peopleRepository struct {
	baseRepo
}

var _ people.Repository = (*peopleRepository)(nil) // interface compliance check

func NewPeopleRepository(exec core.DBExecutor) *peopleRepository {
	return &peopleRepository{baseRepo{exec: exec}}
}

func personValues(p people.Person) map[string]interface{} {
	return map[string]interface{}{
		"username": p.Username,
		"name":     p.Name,
		"surname":  p.Surname,
		"email":    p.Email,
		"phone":    p.Phone,
		"address":  p.Address,
	}
}

func insertMap(table string, id string, createdAt interface{}, values map[string]interface{}) sq.InsertBuilder {
	values["id"] = id
	values["created_at"] = createdAt
	return psql.Insert(table).SetMap(values)
}

// teachers

func teacherSelect() sq.SelectBuilder {
	return psql.Select(concat(personColumns, []string{
		"img", "blood_type", "sex", "birthday",
		"(SELECT COUNT(*) FROM subject_teachers st WHERE st.teacher_id = t.id) AS subject_count",
		"(SELECT COUNT(*) FROM lessons l WHERE l.teacher_id = t.id) AS lesson_count",
		"(SELECT COUNT(*) FROM classes c WHERE c.supervisor_id = t.id) AS class_count",
	})...).From("teachers t")
}

func filterTeachers(b sq.SelectBuilder, filter *people.TeacherFilter) sq.SelectBuilder {
	if filter == nil {
		return b
	}
	if filter.Search != "" {
		b = b.Where(search(filter.Search, "t.name", "t.surname", "t.username", "t.email"))
	}
	if filter.SubjectID > 0 {
		b = b.Where(sq.Expr("t.id IN (SELECT teacher_id FROM subject_teachers WHERE subject_id = ?)", filter.SubjectID))
	}
	if filter.ClassID > 0 {
		b = b.Where(sq.Expr(
			"(t.id IN (SELECT teacher_id FROM lessons WHERE class_id = ?) OR t.id IN (SELECT supervisor_id FROM classes WHERE id = ?))",
			filter.ClassID, filter.ClassID,
		))
	}
	return b
}

func (repo peopleRepository) loadTeacherSubjects(ctx context.Context, exe core.DBExecutor, teachers []people.Teacher) error {
	if len(teachers) == 0 {
		return nil
	}
	ids := make([]string, 0, len(teachers))
	for _, t := range teachers {
		ids = append(ids, t.ID)
	}

	var links []struct {
		TeacherID string `db:"teacher_id"`
		SubjectID int    `db:"subject_id"`
	}
	q := psql.Select("teacher_id", "subject_id").
		From("subject_teachers").
		Where(sq.Eq{"teacher_id": ids}).
		OrderBy("subject_id")
	if err := selectAll(ctx, exe, &links, q); err != nil {
		return errors.Wrap(err, "querying teacher subjects")
	}

	subjects := make(map[string][]int, len(teachers))
	for _, l := range links {
		subjects[l.TeacherID] = append(subjects[l.TeacherID], l.SubjectID)
	}
	for i := range teachers {
		teachers[i].SubjectIDs = subjects[teachers[i].ID]
		if teachers[i].SubjectIDs == nil {
			teachers[i].SubjectIDs = []int{}
		}
	}
	return nil
}

func (repo peopleRepository) setTeacherSubjects(ctx context.Context, exe core.DBExecutor, teacherID string, subjectIDs []int) error {
	if _, err := execute(ctx, exe, psql.Delete("subject_teachers").Where(sq.Eq{"teacher_id": teacherID})); err != nil {
		return errors.Wrap(err, "clearing teacher subjects")
	}
	if len(subjectIDs) == 0 {
		return nil
	}
	seen := make(map[int]bool, len(subjectIDs))
	q := psql.Insert("subject_teachers").Columns("subject_id", "teacher_id")
	for _, sid := range subjectIDs {
		if !seen[sid] {
			q = q.Values(sid, teacherID)
			seen[sid] = true
		}
	}
	_, err := execute(ctx, exe, q)
	return trapWriteErr(err, "setting teacher subjects")
}

func (repo peopleRepository) CreateTeacher(ctx context.Context, tch people.Teacher, exec ...core.DBExecutor) (people.Teacher, error) {
	exe := repo.getExec(exec)
	values := personValues(tch.Person)
	values["img"] = tch.Img
	values["blood_type"] = tch.BloodType
	values["sex"] = tch.Sex
	values["birthday"] = tch.Birthday.UTC()

	if _, err := execute(ctx, exe, insertMap("teachers", tch.ID, tch.CreatedAt.UTC(), values)); err != nil {
		return people.Teacher{}, trapWriteErr(err, "inserting teacher")
	}
	if err := repo.setTeacherSubjects(ctx, exe, tch.ID, tch.SubjectIDs); err != nil {
		return people.Teacher{}, err
	}
	return repo.GetTeacher(ctx, tch.ID, exe)
}

func (repo peopleRepository) QueryTeachers(
	ctx context.Context,
	filter *people.TeacherFilter,
	ordering []core.DBOrdering,
	page core.Pagination,
	exec ...core.DBExecutor,
) ([]people.Teacher, int, error) {
	exe := repo.getExec(exec)
	list := orderBy(filterTeachers(teacherSelect(), filter), ordering, teacherOrdering, "name", "surname", "id")
	cnt := filterTeachers(psql.Select("COUNT(*)").From("teachers t"), filter)

	teachers := make([]people.Teacher, 0)
	total, err := queryPage(ctx, exe, &teachers, list, cnt, page)
	if err != nil {
		return nil, 0, errors.Wrap(err, "querying teachers")
	}
	if err = repo.loadTeacherSubjects(ctx, exe, teachers); err != nil {
		return nil, 0, err
	}
	return teachers, total, nil
}

func (repo peopleRepository) GetTeacher(ctx context.Context, id string, exec ...core.DBExecutor) (people.Teacher, error) {
	exe := repo.getExec(exec)
	var tch people.Teacher
	if err := getOne(ctx, exe, &tch, teacherSelect().Where(sq.Eq{"t.id": id})); err != nil {
		return people.Teacher{}, trapNoRowsErr(err, "getting teacher")
	}
	teachers := []people.Teacher{tch}
	if err := repo.loadTeacherSubjects(ctx, exe, teachers); err != nil {
		return people.Teacher{}, err
	}
	return teachers[0], nil
}

func (repo peopleRepository) UpdateTeacher(ctx context.Context, tch people.Teacher, exec ...core.DBExecutor) (people.Teacher, error) {
	exe := repo.getExec(exec)
	values := personValues(tch.Person)
	values["img"] = tch.Img
	values["blood_type"] = tch.BloodType
	values["sex"] = tch.Sex
	values["birthday"] = tch.Birthday.UTC()

	q := psql.Update("teachers").SetMap(values).Where(sq.Eq{"id": tch.ID}).Suffix("RETURNING id")
	if err := getOne(ctx, exe, &tch.ID, q); err != nil {
		return people.Teacher{}, trapNoRowsErr(err, "updating teacher")
	}
	if err := repo.setTeacherSubjects(ctx, exe, tch.ID, tch.SubjectIDs); err != nil {
		return people.Teacher{}, err
	}
	return repo.GetTeacher(ctx, tch.ID, exe)
}

func (repo peopleRepository) DeleteTeachers(ctx context.Context, ids []string, exec ...core.DBExecutor) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := execute(ctx, repo.getExec(exec), psql.Delete("teachers").Where(sq.Eq{"id": ids}))
	return trapDeleteErr(err, "deleting teachers")
}

// students

func studentSelect() sq.SelectBuilder {
	return psql.Select(concat(personColumns, []string{
		"img", "blood_type", "sex", "birthday", "parent_id", "class_id", "grade_id",
	})...).From("students s")
}

func filterStudents(b sq.SelectBuilder, filter *people.StudentFilter) sq.SelectBuilder {
	if filter == nil {
		return b
	}
	if filter.Search != "" {
		b = b.Where(search(filter.Search, "s.name", "s.surname", "s.username", "s.email"))
	}
	if filter.ClassID > 0 {
		b = b.Where(sq.Eq{"s.class_id": filter.ClassID})
	}
	if filter.GradeID > 0 {
		b = b.Where(sq.Eq{"s.grade_id": filter.GradeID})
	}
	if filter.ParentID != "" {
		b = b.Where(sq.Eq{"s.parent_id": filter.ParentID})
	}
	if filter.TeacherID != "" {
		b = b.Where(sq.Expr("s.class_id IN (SELECT class_id FROM lessons WHERE teacher_id = ?)", filter.TeacherID))
	}
	return b
}

func studentValues(std people.Student) map[string]interface{} {
	values := personValues(std.Person)
	values["img"] = std.Img
	values["blood_type"] = std.BloodType
	values["sex"] = std.Sex
	values["birthday"] = std.Birthday.UTC()
	values["parent_id"] = std.ParentID
	values["class_id"] = std.ClassID
	values["grade_id"] = std.GradeID
	return values
}

func (repo peopleRepository) CreateStudent(ctx context.Context, std people.Student, exec ...core.DBExecutor) (people.Student, error) {
	exe := repo.getExec(exec)
	if _, err := execute(ctx, exe, insertMap("students", std.ID, std.CreatedAt.UTC(), studentValues(std))); err != nil {
		return people.Student{}, trapWriteErr(err, "inserting student")
	}
	return repo.GetStudent(ctx, std.ID, exe)
}

func (repo peopleRepository) QueryStudents(
	ctx context.Context,
	filter *people.StudentFilter,
	ordering []core.DBOrdering,
	page core.Pagination,
	exec ...core.DBExecutor,
) ([]people.Student, int, error) {
	list := orderBy(filterStudents(studentSelect(), filter), ordering, studentOrdering, "name", "surname", "id")
	cnt := filterStudents(psql.Select("COUNT(*)").From("students s"), filter)

	students := make([]people.Student, 0)
	total, err := queryPage(ctx, repo.getExec(exec), &students, list, cnt, page)
	if err != nil {
		return nil, 0, errors.Wrap(err, "querying students")
	}
	return students, total, nil
}

func (repo peopleRepository) GetStudent(ctx context.Context, id string, exec ...core.DBExecutor) (people.Student, error) {
	var std people.Student
	if err := getOne(ctx, repo.getExec(exec), &std, studentSelect().Where(sq.Eq{"s.id": id})); err != nil {
		return people.Student{}, trapNoRowsErr(err, "getting student")
	}
	return std, nil
}

func (repo peopleRepository) UpdateStudent(ctx context.Context, std people.Student, exec ...core.DBExecutor) (people.Student, error) {
	exe := repo.getExec(exec)
	q := psql.Update("students").SetMap(studentValues(std)).Where(sq.Eq{"id": std.ID}).Suffix("RETURNING id")
	if err := getOne(ctx, exe, &std.ID, q); err != nil {
		return people.Student{}, trapNoRowsErr(err, "updating student")
	}
	return repo.GetStudent(ctx, std.ID, exe)
}

func (repo peopleRepository) DeleteStudents(ctx context.Context, ids []string, exec ...core.DBExecutor) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := execute(ctx, repo.getExec(exec), psql.Delete("students").Where(sq.Eq{"id": ids}))
	return trapDeleteErr(err, "deleting students")
}

func (repo peopleRepository) LockClassSeats(ctx context.Context, classID int, exec ...core.DBExecutor) (people.ClassSeats, error) {
	exe := repo.getExec(exec)
	var seats people.ClassSeats
	lock := psql.Select("capacity", "grade_id").From("classes").Where(sq.Eq{"id": classID}).Suffix("FOR UPDATE")
	if err := getOne(ctx, exe, &seats, lock); err != nil {
		return people.ClassSeats{}, trapNoRowsErr(err, "locking class")
	}
	n, err := count(ctx, exe, psql.Select("COUNT(*)").From("students").Where(sq.Eq{"class_id": classID}))
	if err != nil {
		return people.ClassSeats{}, errors.Wrap(err, "counting class students")
	}
	seats.StudentCount = n
	return seats, nil
}

// parents

func parentSelect() sq.SelectBuilder {
	return psql.Select(concat(personColumns, []string{
		"(SELECT COUNT(*) FROM students s WHERE s.parent_id = p.id) AS student_count",
	})...).From("parents p")
}

func filterParents(b sq.SelectBuilder, filter *people.ParentFilter) sq.SelectBuilder {
	if filter != nil && filter.Search != "" {
		b = b.Where(search(filter.Search, "p.name", "p.surname", "p.username", "p.email", "p.phone"))
	}
	return b
}

func (repo peopleRepository) CreateParent(ctx context.Context, prt people.Parent, exec ...core.DBExecutor) (people.Parent, error) {
	exe := repo.getExec(exec)
	if _, err := execute(ctx, exe, insertMap("parents", prt.ID, prt.CreatedAt.UTC(), personValues(prt.Person))); err != nil {
		return people.Parent{}, trapWriteErr(err, "inserting parent")
	}
	return repo.GetParent(ctx, prt.ID, exe)
}

func (repo peopleRepository) QueryParents(
	ctx context.Context,
	filter *people.ParentFilter,
	ordering []core.DBOrdering,
	page core.Pagination,
	exec ...core.DBExecutor,
) ([]people.Parent, int, error) {
	list := orderBy(filterParents(parentSelect(), filter), ordering, parentOrdering, "name", "surname", "id")
	cnt := filterParents(psql.Select("COUNT(*)").From("parents p"), filter)

	parents := make([]people.Parent, 0)
	total, err := queryPage(ctx, repo.getExec(exec), &parents, list, cnt, page)
	if err != nil {
		return nil, 0, errors.Wrap(err, "querying parents")
	}
	return parents, total, nil
}

func (repo peopleRepository) GetParent(ctx context.Context, id string, exec ...core.DBExecutor) (people.Parent, error) {
	var prt people.Parent
	if err := getOne(ctx, repo.getExec(exec), &prt, parentSelect().Where(sq.Eq{"p.id": id})); err != nil {
		return people.Parent{}, trapNoRowsErr(err, "getting parent")
	}
	return prt, nil
}

func (repo peopleRepository) UpdateParent(ctx context.Context, prt people.Parent, exec ...core.DBExecutor) (people.Parent, error) {
	exe := repo.getExec(exec)
	q := psql.Update("parents").SetMap(personValues(prt.Person)).Where(sq.Eq{"id": prt.ID}).Suffix("RETURNING id")
	if err := getOne(ctx, exe, &prt.ID, q); err != nil {
		return people.Parent{}, trapNoRowsErr(err, "updating parent")
	}
	return repo.GetParent(ctx, prt.ID, exe)
}

func (repo peopleRepository) DeleteParents(ctx context.Context, ids []string, exec ...core.DBExecutor) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := execute(ctx, repo.getExec(exec), psql.Delete("parents").Where(sq.Eq{"id": ids}))
	return trapDeleteErr(err, "deleting parents")
}
