package report

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/volatiletech/null/v8"
)

// Type identifies a report kind.
type Type string

const (
	TypeAnnouncement     Type = "announcement"
	TypeAttendance       Type = "attendance"
	TypeClassComposition Type = "class-composition"
	TypeAssignments      Type = "assignments"
	TypeEvents           Type = "events"
	TypePerformance      Type = "performance"
	TypeStudentResults   Type = "student-results"
	TypeParents          Type = "parents"
	TypeStudents         Type = "students"
	TypeTeachers         Type = "teachers"
	TypeClasses          Type = "classes"
	TypeSubjects         Type = "subjects"
	TypeLessons          Type = "lessons"
)

// request parameters a report type can use
const (
	paramClass   = "class_id"
	paramGrade   = "grade_id"
	paramStudent = "student_id"
	paramTeacher = "teacher_id"
	paramLesson  = "lesson_id"
	paramPresent = "present"
)

const (
	notAvailable = "N/A"
	general      = "General"
	clockLayout  = "15:04"
)

type rowsFunc func(ctx context.Context, store Store, f Filter) ([][]interface{}, error)

type definition struct {
	typ           Type
	title         string
	fileName      string
	description   string
	rangeRequired bool
	usesRange     bool
	params        []string
	required      []string
	headers       []string
	rows          rowsFunc
}

// TypeInfo describes a report type to API clients.
type TypeInfo struct {
	Type          Type     `json:"type"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	RangeRequired bool     `json:"range_required"`
	Params        []string `json:"params"`
	Required      []string `json:"required"`
	Columns       []string `json:"columns"`
}

func (def definition) info() TypeInfo {
	params := def.params
	if def.usesRange {
		params = append([]string{"start_date", "end_date"}, params...)
	}
	required := def.required
	if def.rangeRequired {
		required = append([]string{"start_date", "end_date"}, required...)
	}
	return TypeInfo{
		Type:          def.typ,
		Title:         def.title,
		Description:   def.description,
		RangeRequired: def.rangeRequired,
		Params:        nonNil(params),
		Required:      nonNil(required),
		Columns:       def.headers,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

var registry = map[Type]definition{}

func register(def definition) {
	if def.rangeRequired {
		def.usesRange = true
	}
	registry[def.typ] = def
}

func lookup(t Type) (definition, bool) {
	def, ok := registry[t]
	return def, ok
}

// Types lists the registered report types, sorted by type.
func Types() []TypeInfo {
	infos := make([]TypeInfo, 0, len(registry))
	for _, def := range registry {
		infos = append(infos, def.info())
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Type < infos[j].Type })
	return infos
}

// ValidType reports whether t is a registered report type.
func ValidType(t Type) bool {
	_, ok := registry[t]
	return ok
}

func init() {
	register(definition{
		typ:           TypeAnnouncement,
		title:         "Announcement Report",
		fileName:      "AnnouncementReport.xlsx",
		description:   "Announcements published within a date range.",
		rangeRequired: true,
		params:        []string{paramClass},
		headers:       []string{"Date", "Title", "Description", "Class"},
		rows:          announcementRows,
	})
	register(definition{
		typ:           TypeAttendance,
		title:         "Attendance Report",
		fileName:      "AttendanceReport.xlsx",
		description:   "Attendance records within a date range.",
		rangeRequired: true,
		params:        []string{paramClass, paramStudent, paramLesson, paramPresent},
		headers:       []string{"Date", "Student", "Lesson", "Class", "Teacher", "Present"},
		rows:          attendanceRows,
	})
	register(definition{
		typ:         TypeClassComposition,
		title:       "Class Composition Report",
		fileName:    "ClassCompositionReport.xlsx",
		description: "Students enrolled in a class.",
		params:      []string{paramClass},
		required:    []string{paramClass},
		headers:     []string{"Name", "Email", "Phone", "Address", "Blood Type", "Sex", "Class"},
		rows:        classCompositionRows,
	})
	register(definition{
		typ:           TypeAssignments,
		title:         "Assignments Report",
		fileName:      "AssignmentsReport.xlsx",
		description:   "Assignments starting and due within a date range.",
		rangeRequired: true,
		params:        []string{paramTeacher},
		headers:       []string{"Title", "Start Date", "Due Date", "Teacher"},
		rows:          assignmentRows,
	})
	register(definition{
		typ:           TypeEvents,
		title:         "Events Report",
		fileName:      "EventsReport.xlsx",
		description:   "Events held within a date range.",
		rangeRequired: true,
		params:        []string{paramClass},
		headers:       []string{"Title", "Description", "Start", "End", "Class"},
		rows:          eventRows,
	})
	register(definition{
		typ:         TypePerformance,
		title:       "Performance Report",
		fileName:    "PerformanceReport.xlsx",
		description: "Exam and assignment results of a student.",
		usesRange:   true,
		params:      []string{paramStudent},
		required:    []string{paramStudent},
		headers:     []string{"Type", "Title", "Score", "Date"},
		rows:        performanceRows,
	})
	register(definition{
		typ:         TypeStudentResults,
		title:       "Student Results Report",
		fileName:    "StudentResultsReport.xlsx",
		description: "Results of a student, one row per exam or assignment.",
		params:      []string{paramStudent},
		required:    []string{paramStudent},
		headers:     []string{"Student", "Type", "Title", "Score"},
		rows:        studentResultRows,
	})
	register(definition{
		typ:         TypeParents,
		title:       "Parent Report",
		fileName:    "ParentReport.xlsx",
		description: "All parents with their number of students.",
		headers:     []string{"Username", "Name", "Email", "Phone", "Address", "Created At", "Students"},
		rows:        parentRows,
	})
	register(definition{
		typ:         TypeStudents,
		title:       "Student Report",
		fileName:    "StudentReport.xlsx",
		description: "All students with their parent, class and grade.",
		params:      []string{paramClass, paramGrade},
		headers:     []string{"Username", "Name", "Email", "Phone", "Address", "Blood Type", "Sex", "Birthday", "Parent", "Class", "Grade"},
		rows:        studentRows,
	})
	register(definition{
		typ:         TypeTeachers,
		title:       "Teacher Report",
		fileName:    "TeacherReport.xlsx",
		description: "All teachers with their workload.",
		headers:     []string{"Username", "Name", "Email", "Phone", "Address", "Blood Type", "Sex", "Birthday", "Subjects", "Lessons", "Classes"},
		rows:        teacherRows,
	})
	register(definition{
		typ:         TypeClasses,
		title:       "Class Report",
		fileName:    "ClassReport.xlsx",
		description: "All classes with their supervisor and occupancy.",
		headers:     []string{"Name", "Capacity", "Supervisor", "Students", "Grade"},
		rows:        classRows,
	})
	register(definition{
		typ:         TypeSubjects,
		title:       "Subject Report",
		fileName:    "SubjectReport.xlsx",
		description: "All subjects with their teachers.",
		headers:     []string{"Name", "Teacher Count", "Teachers"},
		rows:        subjectRows,
	})
	register(definition{
		typ:         TypeLessons,
		title:       "Lesson Report",
		fileName:    "LessonReport.xlsx",
		description: "The weekly lesson timetable.",
		params:      []string{paramClass, paramTeacher},
		headers:     []string{"Name", "Day", "Start Time", "End Time", "Subject", "Class", "Teacher"},
		rows:        lessonRows,
	})
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return notAvailable
	}
	return t.UTC().Format(dateLayout)
}

func formatClock(t time.Time) string {
	return t.UTC().Format(clockLayout)
}

func fullName(name, surname string) string {
	return strings.TrimSpace(name + " " + surname)
}

func orNA(s null.String) string {
	if !s.Valid || strings.TrimSpace(s.String) == "" {
		return notAvailable
	}
	return s.String
}

func orGeneral(s null.String) string {
	if !s.Valid || s.String == "" {
		return general
	}
	return s.String
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func announcementRows(ctx context.Context, store Store, f Filter) ([][]interface{}, error) {
	recs, err := store.Announcements(ctx, f)
	if err != nil {
		return nil, err
	}
	rows := make([][]interface{}, 0, len(recs))
	for _, r := range recs {
		rows = append(rows, []interface{}{formatDate(r.Date), r.Title, r.Description, orGeneral(r.ClassName)})
	}
	return rows, nil
}

func attendanceRows(ctx context.Context, store Store, f Filter) ([][]interface{}, error) {
	recs, err := store.Attendances(ctx, f)
	if err != nil {
		return nil, err
	}
	rows := make([][]interface{}, 0, len(recs))
	for _, r := range recs {
		rows = append(rows, []interface{}{
			formatDate(r.Date),
			fullName(r.StudentName, r.StudentSurname),
			r.LessonName,
			orNA(r.ClassName),
			orNA(r.TeacherName) + " " + orNA(r.TeacherSurname),
			yesNo(r.Present),
		})
	}
	return rows, nil
}

func classCompositionRows(ctx context.Context, store Store, f Filter) ([][]interface{}, error) {
	recs, err := store.Students(ctx, f)
	if err != nil {
		return nil, err
	}
	rows := make([][]interface{}, 0, len(recs))
	for _, r := range recs {
		rows = append(rows, []interface{}{
			fullName(r.Name, r.Surname),
			orNA(r.Email),
			orNA(r.Phone),
			r.Address,
			r.BloodType,
			r.Sex,
			r.ClassName,
		})
	}
	return rows, nil
}

func assignmentRows(ctx context.Context, store Store, f Filter) ([][]interface{}, error) {
	recs, err := store.Assignments(ctx, f)
	if err != nil {
		return nil, err
	}
	rows := make([][]interface{}, 0, len(recs))
	for _, r := range recs {
		rows = append(rows, []interface{}{
			r.Title,
			formatDate(r.StartDate),
			formatDate(r.DueDate),
			fullName(r.TeacherName, r.TeacherSurname),
		})
	}
	return rows, nil
}

func eventRows(ctx context.Context, store Store, f Filter) ([][]interface{}, error) {
	recs, err := store.Events(ctx, f)
	if err != nil {
		return nil, err
	}
	rows := make([][]interface{}, 0, len(recs))
	for _, r := range recs {
		rows = append(rows, []interface{}{
			r.Title,
			r.Description,
			formatDate(r.StartTime),
			formatDate(r.EndTime),
			orGeneral(r.ClassName),
		})
	}
	return rows, nil
}

// resultKind returns the result type and title. A result belongs to exactly one exam or assignment.
func resultKind(r ResultRecord) (typ, title string, date time.Time) {
	if r.ExamID.Valid {
		return "Exam", orNA(r.ExamTitle), r.ExamStart.Time
	}
	return "Assignment", orNA(r.AssignmentTitle), r.AssignmentDue.Time
}

func performanceRows(ctx context.Context, store Store, f Filter) ([][]interface{}, error) {
	recs, err := store.Results(ctx, f)
	if err != nil {
		return nil, err
	}
	rows := make([][]interface{}, 0, len(recs))
	for _, r := range recs {
		typ, title, date := resultKind(r)
		rows = append(rows, []interface{}{typ, title, r.Score, formatDate(date)})
	}
	return rows, nil
}

func studentResultRows(ctx context.Context, store Store, f Filter) ([][]interface{}, error) {
	recs, err := store.Results(ctx, f)
	if err != nil {
		return nil, err
	}
	rows := make([][]interface{}, 0, len(recs))
	for _, r := range recs {
		typ, title, _ := resultKind(r)
		rows = append(rows, []interface{}{fullName(r.StudentName, r.StudentSurname), typ, title, r.Score})
	}
	return rows, nil
}

func parentRows(ctx context.Context, store Store, f Filter) ([][]interface{}, error) {
	recs, err := store.Parents(ctx, f)
	if err != nil {
		return nil, err
	}
	rows := make([][]interface{}, 0, len(recs))
	for _, r := range recs {
		rows = append(rows, []interface{}{
			r.Username,
			fullName(r.Name, r.Surname),
			orNA(r.Email),
			r.Phone,
			r.Address,
			formatDate(r.CreatedAt),
			r.StudentCount,
		})
	}
	return rows, nil
}

func studentRows(ctx context.Context, store Store, f Filter) ([][]interface{}, error) {
	recs, err := store.Students(ctx, f)
	if err != nil {
		return nil, err
	}
	rows := make([][]interface{}, 0, len(recs))
	for _, r := range recs {
		rows = append(rows, []interface{}{
			r.Username,
			fullName(r.Name, r.Surname),
			orNA(r.Email),
			orNA(r.Phone),
			r.Address,
			r.BloodType,
			r.Sex,
			formatDate(r.Birthday),
			fullName(r.ParentName, r.ParentSurname),
			r.ClassName,
			r.GradeName,
		})
	}
	return rows, nil
}

func teacherRows(ctx context.Context, store Store, f Filter) ([][]interface{}, error) {
	recs, err := store.Teachers(ctx, f)
	if err != nil {
		return nil, err
	}
	rows := make([][]interface{}, 0, len(recs))
	for _, r := range recs {
		rows = append(rows, []interface{}{
			r.Username,
			fullName(r.Name, r.Surname),
			orNA(r.Email),
			orNA(r.Phone),
			r.Address,
			r.BloodType,
			r.Sex,
			formatDate(r.Birthday),
			r.SubjectCount,
			r.LessonCount,
			r.ClassCount,
		})
	}
	return rows, nil
}

func classRows(ctx context.Context, store Store, f Filter) ([][]interface{}, error) {
	recs, err := store.Classes(ctx, f)
	if err != nil {
		return nil, err
	}
	rows := make([][]interface{}, 0, len(recs))
	for _, r := range recs {
		supervisor := notAvailable
		if r.SupervisorName.Valid {
			supervisor = fullName(r.SupervisorName.String, r.SupervisorSurname.String)
		}
		rows = append(rows, []interface{}{r.Name, r.Capacity, supervisor, r.StudentCount, r.GradeName})
	}
	return rows, nil
}

func subjectRows(ctx context.Context, store Store, f Filter) ([][]interface{}, error) {
	recs, err := store.Subjects(ctx, f)
	if err != nil {
		return nil, err
	}
	rows := make([][]interface{}, 0, len(recs))
	for _, r := range recs {
		rows = append(rows, []interface{}{r.Name, len(r.TeacherNames), strings.Join(r.TeacherNames, ", ")})
	}
	return rows, nil
}

func lessonRows(ctx context.Context, store Store, f Filter) ([][]interface{}, error) {
	recs, err := store.Lessons(ctx, f)
	if err != nil {
		return nil, err
	}
	rows := make([][]interface{}, 0, len(recs))
	for _, r := range recs {
		rows = append(rows, []interface{}{
			r.Name,
			r.Day,
			formatClock(r.StartTime),
			formatClock(r.EndTime),
			r.SubjectName,
			r.ClassName,
			fullName(r.TeacherName, r.TeacherSurname),
		})
	}
	return rows, nil
}
