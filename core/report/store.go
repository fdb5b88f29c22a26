package report

import (
	"context"
	"time"

	"github.com/volatiletech/null/v8"
)

// Store runs the joined report queries. Every method applies the non-zero Filter fields it supports.
type Store interface {
	// Announcements in [From, To], optionally for ClassID.
	Announcements(ctx context.Context, f Filter) ([]AnnouncementRecord, error)
	// Attendances in [From, To], optionally for StudentID, ClassID (of the lesson), LessonID and Present.
	Attendances(ctx context.Context, f Filter) ([]AttendanceRecord, error)
	// Assignments starting at or after From and due at or before To, optionally for TeacherID.
	Assignments(ctx context.Context, f Filter) ([]AssignmentRecord, error)
	// Events starting at or after From and ending at or before To, optionally for ClassID.
	Events(ctx context.Context, f Filter) ([]EventRecord, error)
	// Results of StudentID. With a range, only exams starting or assignments due in [From, To].
	Results(ctx context.Context, f Filter) ([]ResultRecord, error)
	Parents(ctx context.Context, f Filter) ([]ParentRecord, error)
	// Students, optionally of ClassID.
	Students(ctx context.Context, f Filter) ([]StudentRecord, error)
	Teachers(ctx context.Context, f Filter) ([]TeacherRecord, error)
	Classes(ctx context.Context, f Filter) ([]ClassRecord, error)
	Subjects(ctx context.Context, f Filter) ([]SubjectRecord, error)
	// Lessons, optionally of ClassID and TeacherID.
	Lessons(ctx context.Context, f Filter) ([]LessonRecord, error)
}

type (
	AnnouncementRecord struct {
		Date        time.Time   `db:"date"`
		Title       string      `db:"title"`
		Description string      `db:"description"`
		ClassName   null.String `db:"class_name"`
	}

	AttendanceRecord struct {
		Date           time.Time   `db:"date"`
		Present        bool        `db:"present"`
		StudentName    string      `db:"student_name"`
		StudentSurname string      `db:"student_surname"`
		LessonName     string      `db:"lesson_name"`
		ClassName      null.String `db:"class_name"`
		TeacherName    null.String `db:"teacher_name"`
		TeacherSurname null.String `db:"teacher_surname"`
	}

	AssignmentRecord struct {
		Title          string    `db:"title"`
		StartDate      time.Time `db:"start_date"`
		DueDate        time.Time `db:"due_date"`
		TeacherName    string    `db:"teacher_name"`
		TeacherSurname string    `db:"teacher_surname"`
	}

	EventRecord struct {
		Title       string      `db:"title"`
		Description string      `db:"description"`
		StartTime   time.Time   `db:"start_time"`
		EndTime     time.Time   `db:"end_time"`
		ClassName   null.String `db:"class_name"`
	}

	ResultRecord struct {
		Score           int         `db:"score"`
		ExamID          null.Int    `db:"exam_id"`
		ExamTitle       null.String `db:"exam_title"`
		ExamStart       null.Time   `db:"exam_start"`
		AssignmentTitle null.String `db:"assignment_title"`
		AssignmentDue   null.Time   `db:"assignment_due"`
		StudentName     string      `db:"student_name"`
		StudentSurname  string      `db:"student_surname"`
	}

	ParentRecord struct {
		Username     string      `db:"username"`
		Name         string      `db:"name"`
		Surname      string      `db:"surname"`
		Email        null.String `db:"email"`
		Phone        string      `db:"phone"`
		Address      string      `db:"address"`
		CreatedAt    time.Time   `db:"created_at"`
		StudentCount int         `db:"student_count"`
	}

	StudentRecord struct {
		Username      string      `db:"username"`
		Name          string      `db:"name"`
		Surname       string      `db:"surname"`
		Email         null.String `db:"email"`
		Phone         null.String `db:"phone"`
		Address       string      `db:"address"`
		BloodType     string      `db:"blood_type"`
		Sex           string      `db:"sex"`
		Birthday      time.Time   `db:"birthday"`
		ParentName    string      `db:"parent_name"`
		ParentSurname string      `db:"parent_surname"`
		ClassName     string      `db:"class_name"`
		GradeName     string      `db:"grade_name"`
	}

	TeacherRecord struct {
		Username     string      `db:"username"`
		Name         string      `db:"name"`
		Surname      string      `db:"surname"`
		Email        null.String `db:"email"`
		Phone        null.String `db:"phone"`
		Address      string      `db:"address"`
		BloodType    string      `db:"blood_type"`
		Sex          string      `db:"sex"`
		Birthday     time.Time   `db:"birthday"`
		SubjectCount int         `db:"subject_count"`
		LessonCount  int         `db:"lesson_count"`
		ClassCount   int         `db:"class_count"`
	}

	ClassRecord struct {
		Name              string      `db:"name"`
		Capacity          int         `db:"capacity"`
		SupervisorName    null.String `db:"supervisor_name"`
		SupervisorSurname null.String `db:"supervisor_surname"`
		StudentCount      int         `db:"student_count"`
		GradeName         string      `db:"grade_name"`
	}

	SubjectRecord struct {
		Name         string   `db:"name"`
		TeacherNames []string `db:"-"` // "Name Surname"
	}

	LessonRecord struct {
		Name           string    `db:"name"`
		Day            string    `db:"day"`
		StartTime      time.Time `db:"start_time"`
		EndTime        time.Time `db:"end_time"`
		SubjectName    string    `db:"subject_name"`
		ClassName      string    `db:"class_name"`
		TeacherName    string    `db:"teacher_name"`
		TeacherSurname string    `db:"teacher_surname"`
	}
)
