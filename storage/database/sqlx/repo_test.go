package sqlxrepos

import (
	"database/sql"
	"testing"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/attendance"
	"github.com/trezcool/darasa/core/bulletin"
	"github.com/trezcool/darasa/core/people"
	"github.com/trezcool/darasa/core/school"
)

func toSql(t *testing.T, b sq.Sqlizer) (string, []interface{}) {
	q, args, err := b.ToSql()
	require.NoError(t, err)
	return q, args
}

func Test_constraintField(t *testing.T) {
	tests := []struct {
		table, constraint, want string
	}{
		{"classes", "classes_name_key", "name"},
		{"students", "students_class_id_fkey", "class_id"},
		{"students", "students_username_key", "username"},
		{"subject_teachers", "subject_teachers_teacher_id_fkey", "teacher_ids"},
		{"subject_teachers", "subject_teachers_subject_id_fkey", "subject_ids"},
	}
	for _, tt := range tests {
		t.Run(tt.constraint, func(t *testing.T) {
			if got := constraintField(tt.table, tt.constraint); got != tt.want {
				t.Errorf("failed! constraintField() = %v; want %v", got, tt.want)
			}
		})
	}
}

func fieldErrors(t *testing.T, err error) []core.FieldError {
	vErr, ok := errors.Cause(err).(*core.ValidationError)
	require.True(t, ok, "want *core.ValidationError; got %T", err)
	return vErr.Fields
}

func Test_trapWriteErr(t *testing.T) {
	assert.NoError(t, trapWriteErr(nil, "inserting"))

	err := trapWriteErr(&pq.Error{Code: uniqueViolation, Table: "classes", Constraint: "classes_name_key"}, "inserting class")
	assert.Equal(t, []core.FieldError{{Field: "name", Error: "already exists"}}, fieldErrors(t, err))

	err = trapWriteErr(&pq.Error{Code: foreignKeyViolation, Table: "lessons", Constraint: "lessons_teacher_id_fkey"}, "inserting lesson")
	assert.Equal(t, []core.FieldError{{Field: "teacher_id", Error: "not found"}}, fieldErrors(t, err))

	err = trapWriteErr(&pq.Error{Code: checkViolation, Constraint: "classes_capacity_check"}, "inserting class")
	assert.EqualError(t, err, "invalid value: classes_capacity_check")

	boom := errors.New("boom")
	err = trapWriteErr(boom, "inserting class")
	assert.EqualError(t, err, "inserting class: boom")
	assert.Equal(t, boom, errors.Cause(err))
}

func Test_trapNoRowsErr(t *testing.T) {
	assert.Equal(t, core.ErrNotFound, trapNoRowsErr(errors.Wrap(sql.ErrNoRows, "get"), "getting class"))
	assert.NoError(t, trapNoRowsErr(nil, "getting class"))
}

func Test_trapDeleteErr(t *testing.T) {
	assert.NoError(t, trapDeleteErr(nil, "deleting"))

	err := trapDeleteErr(&pq.Error{Code: foreignKeyViolation, Table: "students"}, "deleting classes")
	_, ok := errors.Cause(err).(*core.ValidationError)
	assert.True(t, ok)
	assert.EqualError(t, err, "cannot delete: still referenced by students")

	err = trapDeleteErr(&pq.Error{Code: uniqueViolation}, "deleting classes")
	_, ok = errors.Cause(err).(*core.ValidationError)
	assert.False(t, ok)
}

func Test_orderBy(t *testing.T) {
	b := psql.Select("id").From("classes c")
	ordering := []core.DBOrdering{
		{Field: "name", Ascending: true},
		{Field: "password", Ascending: true}, // not whitelisted
		{Field: "capacity"},
	}
	q, _ := toSql(t, orderBy(b, ordering, classOrdering, "c.id"))
	assert.Equal(t, "SELECT id FROM classes c ORDER BY c.name ASC, c.capacity DESC, c.id", q)

	q, _ = toSql(t, orderBy(b, nil, classOrdering, "c.name", "c.id"))
	assert.Equal(t, "SELECT id FROM classes c ORDER BY c.name, c.id", q)
}

func Test_paginate(t *testing.T) {
	b := psql.Select("id").From("grades")

	q, _ := toSql(t, paginate(b, core.Pagination{}))
	assert.Equal(t, "SELECT id FROM grades LIMIT 10 OFFSET 0", q)

	q, _ = toSql(t, paginate(b, core.Pagination{Page: 3, Limit: 500}))
	assert.Equal(t, "SELECT id FROM grades LIMIT 100 OFFSET 200", q)
}

func Test_search(t *testing.T) {
	q, args := toSql(t, psql.Select("id").From("teachers t").Where(search("jo", "t.name", "t.surname")))
	assert.Equal(t, "SELECT id FROM teachers t WHERE (t.name ILIKE $1 OR t.surname ILIKE $2)", q)
	assert.Equal(t, []interface{}{"%jo%", "%jo%"}, args)
}

func Test_filters(t *testing.T) {
	present := false
	tests := []struct {
		name     string
		builder  sq.SelectBuilder
		wantSQL  string
		wantArgs []interface{}
	}{
		{
			name:    "no class filter",
			builder: filterClasses(psql.Select("c.id").From("classes c"), nil),
			wantSQL: "SELECT c.id FROM classes c",
		},
		{
			name:     "classes",
			builder:  filterClasses(psql.Select("c.id").From("classes c"), &school.ClassFilter{GradeID: 2, SupervisorID: "t1"}),
			wantSQL:  "SELECT c.id FROM classes c WHERE c.grade_id = $1 AND c.supervisor_id = $2",
			wantArgs: []interface{}{2, "t1"},
		},
		{
			name:     "lessons day",
			builder:  filterLessons(psql.Select("l.id").From("lessons l"), &school.LessonFilter{Day: "monday"}),
			wantSQL:  "SELECT l.id FROM lessons l WHERE l.day = $1",
			wantArgs: []interface{}{"MONDAY"},
		},
		{
			name:     "subjects teacher",
			builder:  filterSubjects(psql.Select("s.id").From("subjects s"), &school.SubjectFilter{TeacherID: "t1"}),
			wantSQL:  "SELECT s.id FROM subjects s WHERE s.id IN (SELECT subject_id FROM subject_teachers WHERE teacher_id = $1)",
			wantArgs: []interface{}{"t1"},
		},
		{
			name:     "students teacher",
			builder:  filterStudents(psql.Select("s.id").From("students s"), &people.StudentFilter{ClassID: 1, TeacherID: "t1"}),
			wantSQL:  "SELECT s.id FROM students s WHERE s.class_id = $1 AND s.class_id IN (SELECT class_id FROM lessons WHERE teacher_id = $2)",
			wantArgs: []interface{}{1, "t1"},
		},
		{
			name:     "attendances",
			builder:  filterAttendances(psql.Select("id").From("attendances"), &attendance.QueryFilter{ClassID: 4, Present: &present}),
			wantSQL:  "SELECT id FROM attendances WHERE lesson_id IN (SELECT id FROM lessons WHERE class_id = $1) AND present = $2",
			wantArgs: []interface{}{4, false},
		},
		{
			name:     "events",
			builder:  filterBulletin(psql.Select("id").From("events"), &bulletin.QueryFilter{ClassID: 3}, "start_time"),
			wantSQL:  "SELECT id FROM events WHERE class_id = $1",
			wantArgs: []interface{}{3},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, args := toSql(t, tt.builder)
			assert.Equal(t, tt.wantSQL, q)
			if len(tt.wantArgs) > 0 || len(args) > 0 {
				assert.Equal(t, tt.wantArgs, args)
			}
		})
	}
}
