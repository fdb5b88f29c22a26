package testutil

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/people"
	"github.com/trezcool/darasa/core/school"
	"github.com/trezcool/darasa/storage/database"
)

const dbURLEnv = "TEST_DATABASE_URL"

var (
	migrateOnce sync.Once
	migrateErr  error
)

// OpenDB connects to the database at $TEST_DATABASE_URL and migrates it.
// The test is skipped when the variable is not set.
func OpenDB(t *testing.T) *sqlx.DB {
	t.Helper()
	dsn := os.Getenv(dbURLEnv)
	if dsn == "" {
		t.Skipf("%s not set", dbURLEnv)
	}

	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("OpenDB() failed: %v", err)
	}
	if err = database.Ping(context.Background(), db); err != nil {
		t.Fatalf("OpenDB() failed: %v", err)
	}
	migrateOnce.Do(func() { migrateErr = database.Migrate(db) })
	if migrateErr != nil {
		t.Fatalf("OpenDB() failed: %v", migrateErr)
	}

	t.Cleanup(func() { _ = db.Close() })
	ResetDB(t, db)
	return db
}

// ResetDB empties every table.
func ResetDB(t *testing.T, db *sqlx.DB) {
	t.Helper()
	q := `TRUNCATE events, announcements, attendances, results, assignments, exams, lessons,
		students, subject_teachers, subjects, classes, parents, teachers, grades RESTART IDENTITY CASCADE`
	if _, err := db.Exec(q); err != nil {
		t.Fatalf("ResetDB() failed: %v", err)
	}
}

var birthday = time.Date(1990, 1, 2, 0, 0, 0, 0, time.UTC)

func CreateGrade(t *testing.T, repo school.Repository, name string, level int) school.Grade {
	t.Helper()
	grd, err := repo.CreateGrade(context.Background(), school.Grade{Name: name, Level: level})
	if err != nil {
		t.Fatalf("CreateGrade() failed: %v", err)
	}
	return grd
}

func CreateClass(t *testing.T, repo school.Repository, name string, capacity, gradeID int, supervisorID ...string) school.Class {
	t.Helper()
	cls := school.Class{Name: name, Capacity: capacity, GradeID: gradeID}
	if len(supervisorID) > 0 {
		cls.SupervisorID = null.StringFrom(supervisorID[0])
	}
	cls, err := repo.CreateClass(context.Background(), cls)
	if err != nil {
		t.Fatalf("CreateClass() failed: %v", err)
	}
	return cls
}

func CreateSubject(t *testing.T, repo school.Repository, name string, teacherIDs ...string) school.Subject {
	t.Helper()
	sub, err := repo.CreateSubject(context.Background(), school.Subject{Name: name, TeacherIDs: teacherIDs})
	if err != nil {
		t.Fatalf("CreateSubject() failed: %v", err)
	}
	return sub
}

func CreateLesson(t *testing.T, repo school.Repository, name, day string, start time.Time, subjectID, classID int, teacherID string) school.Lesson {
	t.Helper()
	lsn, err := repo.CreateLesson(context.Background(), school.Lesson{
		Name:      name,
		Day:       day,
		StartTime: start,
		EndTime:   start.Add(time.Hour),
		SubjectID: subjectID,
		ClassID:   classID,
		TeacherID: teacherID,
	})
	if err != nil {
		t.Fatalf("CreateLesson() failed: %v", err)
	}
	return lsn
}

func person(id, uname, name, surname string) people.Person {
	return people.Person{
		ID:        id,
		Username:  uname,
		Name:      name,
		Surname:   surname,
		Address:   "1 School Rd",
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
}

func CreateTeacher(t *testing.T, repo people.Repository, id, name, surname string) people.Teacher {
	t.Helper()
	tch, err := repo.CreateTeacher(context.Background(), people.Teacher{
		Person:    person(id, "t_"+id, name, surname),
		BloodType: "O+",
		Sex:       core.SexFemale,
		Birthday:  birthday,
	})
	if err != nil {
		t.Fatalf("CreateTeacher() failed: %v", err)
	}
	return tch
}

func CreateParent(t *testing.T, repo people.Repository, id, name, surname, phone string) people.Parent {
	t.Helper()
	p := person(id, "p_"+id, name, surname)
	p.Phone = null.StringFrom(phone)
	prt, err := repo.CreateParent(context.Background(), people.Parent{Person: p})
	if err != nil {
		t.Fatalf("CreateParent() failed: %v", err)
	}
	return prt
}

func CreateStudent(t *testing.T, repo people.Repository, id, name, surname, parentID string, classID, gradeID int) people.Student {
	t.Helper()
	std, err := repo.CreateStudent(context.Background(), people.Student{
		Person:    person(id, "s_"+id, name, surname),
		BloodType: "A+",
		Sex:       core.SexMale,
		Birthday:  birthday,
		ParentID:  parentID,
		ClassID:   classID,
		GradeID:   gradeID,
	})
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return std
}
