package report

import (
	"bytes"
	"context"
	"net/mail"
	"strconv"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/darasa/core"
)

var (
	day1 = time.Date(2024, 3, 4, 8, 30, 0, 0, time.UTC)
	day2 = time.Date(2024, 3, 5, 14, 0, 0, 0, time.UTC)
)

type fakeStore struct {
	calls   int
	filters []Filter
	onQuery func() // runs once the records of a query are read

	announcements []AnnouncementRecord
	attendances   []AttendanceRecord
	assignments   []AssignmentRecord
	events        []EventRecord
	results       []ResultRecord
	parents       []ParentRecord
	students      []StudentRecord
	teachers      []TeacherRecord
	classes       []ClassRecord
	subjects      []SubjectRecord
	lessons       []LessonRecord
	err           error
}

func (s *fakeStore) seen(f Filter) {
	s.calls++
	s.filters = append(s.filters, f)
	if s.onQuery != nil {
		s.onQuery()
	}
}

func (s *fakeStore) Announcements(_ context.Context, f Filter) ([]AnnouncementRecord, error) {
	s.seen(f)
	return s.announcements, s.err
}

func (s *fakeStore) Attendances(_ context.Context, f Filter) ([]AttendanceRecord, error) {
	s.seen(f)
	return s.attendances, s.err
}

func (s *fakeStore) Assignments(_ context.Context, f Filter) ([]AssignmentRecord, error) {
	s.seen(f)
	return s.assignments, s.err
}

func (s *fakeStore) Events(_ context.Context, f Filter) ([]EventRecord, error) {
	s.seen(f)
	return s.events, s.err
}

func (s *fakeStore) Results(_ context.Context, f Filter) ([]ResultRecord, error) {
	s.seen(f)
	return s.results, s.err
}

func (s *fakeStore) Parents(_ context.Context, f Filter) ([]ParentRecord, error) {
	recs := s.parents
	s.seen(f)
	return recs, s.err
}

func (s *fakeStore) Students(_ context.Context, f Filter) ([]StudentRecord, error) {
	s.seen(f)
	return s.students, s.err
}

func (s *fakeStore) Teachers(_ context.Context, f Filter) ([]TeacherRecord, error) {
	s.seen(f)
	return s.teachers, s.err
}

func (s *fakeStore) Classes(_ context.Context, f Filter) ([]ClassRecord, error) {
	s.seen(f)
	return s.classes, s.err
}

func (s *fakeStore) Subjects(_ context.Context, f Filter) ([]SubjectRecord, error) {
	s.seen(f)
	return s.subjects, s.err
}

func (s *fakeStore) Lessons(_ context.Context, f Filter) ([]LessonRecord, error) {
	s.seen(f)
	return s.lessons, s.err
}

type mapCache struct {
	gen         int64
	entries     map[string][]byte
	invalidated int
}

func (c *mapCache) Generation(context.Context) (int64, error) {
	return c.gen, nil
}

func (c *mapCache) Get(_ context.Context, gen int64, key string) ([]byte, bool, error) {
	v, ok := c.entries[strconv.FormatInt(gen, 10)+":"+key]
	return v, ok, nil
}

func (c *mapCache) Set(_ context.Context, gen int64, key string, value []byte, _ time.Duration) error {
	if c.entries == nil {
		c.entries = make(map[string][]byte)
	}
	c.entries[strconv.FormatInt(gen, 10)+":"+key] = value
	return nil
}

func (c *mapCache) Invalidate(context.Context) error {
	c.invalidated++
	c.gen++
	return nil
}

type outbox struct {
	sent []*core.EmailMessage
}

func (o *outbox) SendMessages(messages ...*core.EmailMessage) {
	o.sent = append(o.sent, messages...)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

func newTestService(store Store, cache Cache, mailer core.EmailService, opts ...Options) *service {
	var o Options
	if len(opts) > 0 {
		o = opts[0]
	}
	svc := NewService(store, cache, mailer, nopLogger{}, o).(*service)
	svc.now = func() time.Time { return day2 }
	return svc
}

func mustDate(t *testing.T, s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		t.Fatalf("ParseDate(%q) failed: %v", s, err)
	}
	return d
}

func fieldsOf(err error) map[string]string {
	vErr, ok := errors.Cause(err).(*core.ValidationError)
	if !ok {
		return nil
	}
	flds := make(map[string]string, len(vErr.Fields))
	for _, f := range vErr.Fields {
		flds[f.Field] = f.Error
	}
	return flds
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		want     time.Time
		dateOnly bool
		wantErr  bool
	}{
		{name: "empty", in: ""},
		{name: "date only", in: "2024-03-04", want: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), dateOnly: true},
		{name: "rfc3339", in: "2024-03-04T08:30:00Z", want: day1},
		{name: "rfc3339 offset", in: "2024-03-04T10:30:00+02:00", want: day1},
		{name: "garbage", in: "04/03/2024", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got.Time), "got %v; want %v", got.Time, tt.want)
			assert.Equal(t, tt.dateOnly, got.DateOnly)
		})
	}
}

func TestParams_filter(t *testing.T) {
	present := true
	tests := []struct {
		name       string
		params     Params
		wantFields []string
		wantErr    error
		check      func(t *testing.T, f Filter)
	}{
		{
			name:       "range required",
			params:     Params{Type: TypeAttendance},
			wantFields: []string{"start_date", "end_date"},
			wantErr:    errRangeRequired,
		},
		{
			name:       "end missing",
			params:     Params{Type: TypeEvents, StartDate: mustDate(t, "2024-03-01")},
			wantFields: []string{"end_date"},
			wantErr:    errRangeRequired,
		},
		{
			name: "end before start",
			params: Params{
				Type: TypeAnnouncement, StartDate: mustDate(t, "2024-03-05"), EndDate: mustDate(t, "2024-03-01"),
			},
			wantFields: []string{"end_date"},
		},
		{
			name:   "same day is a valid range",
			params: Params{Type: TypeAnnouncement, StartDate: mustDate(t, "2024-03-04"), EndDate: mustDate(t, "2024-03-04")},
			check: func(t *testing.T, f Filter) {
				assert.Equal(t, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), f.From)
				assert.Equal(t, time.Date(2024, 3, 4, 23, 59, 59, 999999999, time.UTC), f.To)
			},
		},
		{
			name:   "timestamp end is exact",
			params: Params{Type: TypeAnnouncement, StartDate: mustDate(t, "2024-03-01"), EndDate: mustDate(t, "2024-03-04T08:30:00Z")},
			check: func(t *testing.T, f Filter) {
				assert.Equal(t, day1, f.To)
			},
		},
		{name: "class required", params: Params{Type: TypeClassComposition}, wantFields: []string{"class_id"}},
		{name: "student required", params: Params{Type: TypePerformance}, wantFields: []string{"student_id"}},
		{
			name: "unused params are dropped",
			params: Params{
				Type: TypeAttendance, StartDate: mustDate(t, "2024-03-01"), EndDate: mustDate(t, "2024-03-31"),
				ClassID: 2, StudentID: "s1", TeacherID: "t1", LessonID: 3, Present: &present,
			},
			check: func(t *testing.T, f Filter) {
				assert.Equal(t, 2, f.ClassID)
				assert.Equal(t, "s1", f.StudentID)
				assert.Equal(t, "", f.TeacherID)
				assert.Equal(t, 3, f.LessonID)
				assert.Equal(t, &present, f.Present)
			},
		},
		{
			name:   "students by grade",
			params: Params{Type: TypeStudents, GradeID: 4, StudentID: "s1"},
			check: func(t *testing.T, f Filter) {
				assert.Equal(t, 4, f.GradeID)
				assert.Equal(t, "", f.StudentID)
			},
		},
		{
			name:   "grade unused by classes",
			params: Params{Type: TypeClasses, GradeID: 4},
			check: func(t *testing.T, f Filter) {
				assert.Zero(t, f.GradeID)
			},
		},
		{
			name:   "range ignored when unused",
			params: Params{Type: TypeTeachers, StartDate: mustDate(t, "2024-03-01")},
			check: func(t *testing.T, f Filter) {
				assert.False(t, f.HasRange())
			},
		},
		{
			name:   "optional range",
			params: Params{Type: TypePerformance, StudentID: "s1", StartDate: mustDate(t, "2024-03-01")},
			check: func(t *testing.T, f Filter) {
				assert.True(t, f.HasRange())
				assert.True(t, f.To.IsZero())
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def, ok := lookup(tt.params.Type)
			require.True(t, ok)

			f, err := tt.params.filter(def)
			if len(tt.wantFields) > 0 {
				require.Error(t, err)
				flds := fieldsOf(err)
				assert.Len(t, flds, len(tt.wantFields))
				for _, fld := range tt.wantFields {
					assert.Contains(t, flds, fld)
				}
				if tt.wantErr != nil {
					assert.Equal(t, tt.wantErr, errors.Cause(err).(*core.ValidationError).Err)
				}
				return
			}
			require.NoError(t, err)
			if tt.check != nil {
				tt.check(t, f)
			}
		})
	}
}

func Test_service_Generate(t *testing.T) {
	store := &fakeStore{
		announcements: []AnnouncementRecord{
			{Date: day1, Title: "Trip", Description: "Zoo", ClassName: null.StringFrom("1A")},
			{Date: day2, Title: "Holiday", Description: "No school"},
		},
		attendances: []AttendanceRecord{
			{Date: day1, Present: true, StudentName: "Ada", StudentSurname: "Lovelace", LessonName: "Math",
				ClassName: null.StringFrom("1A"), TeacherName: null.StringFrom("Alan"), TeacherSurname: null.StringFrom("Turing")},
			{Date: day2, StudentName: "Bob", StudentSurname: "Ross", LessonName: "Art"},
		},
		events: []EventRecord{
			{Title: "Fair", Description: "Science", StartTime: day1, EndTime: day1.Add(26 * time.Hour)},
		},
		results: []ResultRecord{
			{Score: 90, ExamID: null.IntFrom(1), ExamTitle: null.StringFrom("Midterm"), ExamStart: null.TimeFrom(day1),
				StudentName: "Ada", StudentSurname: "Lovelace"},
			{Score: 75, AssignmentDue: null.TimeFrom(day2), StudentName: "Ada", StudentSurname: "Lovelace"},
		},
		classes: []ClassRecord{
			{Name: "1A", Capacity: 30, StudentCount: 2, GradeName: "First",
				SupervisorName: null.StringFrom("Alan"), SupervisorSurname: null.StringFrom("Turing")},
			{Name: "1B", Capacity: 25, GradeName: "First"},
		},
		subjects: []SubjectRecord{
			{Name: "Math", TeacherNames: []string{"Alan Turing", "Emmy Noether"}},
			{Name: "Art"},
		},
		lessons: []LessonRecord{
			{Name: "Math 1A", Day: core.Monday, StartTime: day1, EndTime: day1.Add(time.Hour),
				SubjectName: "Math", ClassName: "1A", TeacherName: "Alan", TeacherSurname: "Turing"},
		},
		parents: []ParentRecord{
			{Username: "p1", Name: "Mary", Surname: "Ross", Phone: "123", Address: "Here", CreatedAt: day1, StudentCount: 2},
		},
	}
	svc := newTestService(store, nil, nil)
	rng := func(typ Type) Params {
		return Params{Type: typ, StartDate: mustDate(t, "2024-03-01"), EndDate: mustDate(t, "2024-03-31")}
	}

	tests := []struct {
		name     string
		params   Params
		wantFile string
		wantRows [][]interface{}
	}{
		{
			name:     "announcement",
			params:   rng(TypeAnnouncement),
			wantFile: "AnnouncementReport.xlsx",
			wantRows: [][]interface{}{
				{"2024-03-04", "Trip", "Zoo", "1A"},
				{"2024-03-05", "Holiday", "No school", "General"},
			},
		},
		{
			name:     "attendance",
			params:   rng(TypeAttendance),
			wantFile: "AttendanceReport.xlsx",
			wantRows: [][]interface{}{
				{"2024-03-04", "Ada Lovelace", "Math", "1A", "Alan Turing", "Yes"},
				{"2024-03-05", "Bob Ross", "Art", "N/A", "N/A N/A", "No"},
			},
		},
		{
			name:     "events",
			params:   rng(TypeEvents),
			wantFile: "EventsReport.xlsx",
			wantRows: [][]interface{}{{"Fair", "Science", "2024-03-04", "2024-03-05", "General"}},
		},
		{
			name:     "performance",
			params:   Params{Type: TypePerformance, StudentID: "s1"},
			wantFile: "PerformanceReport.xlsx",
			wantRows: [][]interface{}{
				{"Exam", "Midterm", 90, "2024-03-04"},
				{"Assignment", "N/A", 75, "2024-03-05"},
			},
		},
		{
			name:     "student results",
			params:   Params{Type: TypeStudentResults, StudentID: "s1"},
			wantFile: "StudentResultsReport.xlsx",
			wantRows: [][]interface{}{
				{"Ada Lovelace", "Exam", "Midterm", 90},
				{"Ada Lovelace", "Assignment", "N/A", 75},
			},
		},
		{
			name:     "classes",
			params:   Params{Type: TypeClasses},
			wantFile: "ClassReport.xlsx",
			wantRows: [][]interface{}{
				{"1A", 30, "Alan Turing", 2, "First"},
				{"1B", 25, "N/A", 0, "First"},
			},
		},
		{
			name:     "subjects",
			params:   Params{Type: TypeSubjects},
			wantFile: "SubjectReport.xlsx",
			wantRows: [][]interface{}{
				{"Math", 2, "Alan Turing, Emmy Noether"},
				{"Art", 0, ""},
			},
		},
		{
			name:     "lessons",
			params:   Params{Type: TypeLessons},
			wantFile: "LessonReport.xlsx",
			wantRows: [][]interface{}{{"Math 1A", core.Monday, "08:30", "09:30", "Math", "1A", "Alan Turing"}},
		},
		{
			name:     "parents",
			params:   Params{Type: TypeParents},
			wantFile: "ParentReport.xlsx",
			wantRows: [][]interface{}{{"p1", "Mary Ross", "N/A", "123", "Here", "2024-03-04", 2}},
		},
		{
			name:     "type is case insensitive",
			params:   Params{Type: " Subjects "},
			wantFile: "SubjectReport.xlsx",
			wantRows: [][]interface{}{
				{"Math", 2, "Alan Turing, Emmy Noether"},
				{"Art", 0, ""},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rep, err := svc.Generate(context.Background(), tt.params)
			require.NoError(t, err)
			assert.Equal(t, tt.wantFile, rep.FileName)
			assert.Equal(t, rep.Title, rep.Sheet.Name)
			assert.Equal(t, tt.wantRows, rep.Sheet.Rows)
			for _, row := range rep.Sheet.Rows {
				assert.Len(t, row, len(rep.Sheet.Headers))
			}
			assert.Equal(t, day2, rep.GeneratedAt)
		})
	}
}

func Test_service_Generate_errors(t *testing.T) {
	t.Run("unknown type never touches the store", func(t *testing.T) {
		store := &fakeStore{}
		svc := newTestService(store, nil, nil)
		_, err := svc.Generate(context.Background(), Params{Type: "grades"})
		assert.Equal(t, ErrInvalidType, err)
		assert.Equal(t, "Invalid report type", err.Error())
		assert.Zero(t, store.calls)
	})

	t.Run("store error is wrapped", func(t *testing.T) {
		boom := errors.New("boom")
		svc := newTestService(&fakeStore{err: boom}, nil, nil)
		_, err := svc.Generate(context.Background(), Params{Type: TypeTeachers})
		assert.Equal(t, boom, errors.Cause(err))
	})

	t.Run("max rows", func(t *testing.T) {
		store := &fakeStore{parents: make([]ParentRecord, 3)}
		svc := newTestService(store, nil, nil, Options{MaxRows: 2})
		_, err := svc.Generate(context.Background(), Params{Type: TypeParents})
		assert.Equal(t, errTooManyRows, errors.Cause(err).(*core.ValidationError).Err)
	})
}

func TestWriteWorkbook(t *testing.T) {
	tests := []struct {
		name  string
		sheet Sheet
		want  [][]string
	}{
		{
			name:  "header only",
			sheet: Sheet{Name: "Empty Report", Headers: []string{"A", "B"}},
			want:  [][]string{{"A", "B"}},
		},
		{
			name: "rows",
			sheet: Sheet{
				Name:    "Class Report",
				Headers: []string{"Name", "Capacity"},
				Rows:    [][]interface{}{{"1A", 30}, {"1B", 25}},
			},
			want: [][]string{{"Name", "Capacity"}, {"1A", "30"}, {"1B", "25"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content, err := WriteWorkbook(tt.sheet)
			require.NoError(t, err)

			f, err := excelize.OpenReader(bytes.NewReader(content))
			require.NoError(t, err)
			defer f.Close()

			assert.Equal(t, []string{tt.sheet.Name}, f.GetSheetList())
			rows, err := f.GetRows(tt.sheet.Name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, rows)
		})
	}
}

func Test_sheetName(t *testing.T) {
	assert.Equal(t, "Report", sheetName("  "))
	assert.Equal(t, "Class Composition Report", sheetName("Class Composition Report"))
	assert.Equal(t, "a b", sheetName("a/b"))
	assert.Len(t, []rune(sheetName("An Exceptionally Long Report Name Indeed")), maxSheetName)
}

func Test_service_Export(t *testing.T) {
	store := &fakeStore{teachers: []TeacherRecord{
		{Username: "t1", Name: "Alan", Surname: "Turing", Address: "Here", BloodType: "O+", Sex: core.SexMale, Birthday: day1,
			SubjectCount: 2, LessonCount: 5, ClassCount: 1},
	}}
	cache := &mapCache{}
	svc := newTestService(store, cache, nil)
	ctx := context.Background()

	file, err := svc.Export(ctx, Params{Type: TypeTeachers})
	require.NoError(t, err)
	assert.Equal(t, "TeacherReport.xlsx", file.Name)
	assert.Equal(t, 1, file.Rows)
	assert.NotEmpty(t, file.Content)
	assert.Equal(t, 1, store.calls)

	// params unused by the type do not change the cache key
	cached, err := svc.Export(ctx, Params{Type: TypeTeachers, ClassID: 9})
	require.NoError(t, err)
	assert.Equal(t, 1, store.calls)
	assert.Equal(t, file.Content, cached.Content)

	require.NoError(t, svc.Invalidate(ctx))
	assert.Equal(t, 1, cache.invalidated)

	_, err = svc.Export(ctx, Params{Type: TypeTeachers})
	require.NoError(t, err)
	assert.Equal(t, 2, store.calls)
}

func Test_service_Export_invalidatedWhileQuerying(t *testing.T) {
	store := &fakeStore{parents: []ParentRecord{{Username: "p1", CreatedAt: day1}}}
	cache := &mapCache{}
	svc := newTestService(store, cache, nil)
	ctx := context.Background()

	// a parent is added while the first export is running
	store.onQuery = func() {
		store.onQuery = nil
		store.parents = append(store.parents, ParentRecord{Username: "p2", CreatedAt: day2})
		require.NoError(t, svc.Invalidate(ctx))
	}
	file, err := svc.Export(ctx, Params{Type: TypeParents})
	require.NoError(t, err)
	assert.Equal(t, 1, file.Rows)

	file, err = svc.Export(ctx, Params{Type: TypeParents})
	require.NoError(t, err)
	assert.Equal(t, 2, file.Rows, "the stale workbook must not be served")
	assert.Equal(t, 2, store.calls)

	file, err = svc.Export(ctx, Params{Type: TypeParents})
	require.NoError(t, err)
	assert.Equal(t, 2, file.Rows)
	assert.Equal(t, 2, store.calls)
}

func Test_service_Export_empty(t *testing.T) {
	svc := newTestService(&fakeStore{}, nil, nil)
	file, err := svc.Export(context.Background(), Params{
		Type: TypeAssignments, StartDate: mustDate(t, "2024-03-01"), EndDate: mustDate(t, "2024-03-31"),
	})
	require.NoError(t, err)
	assert.Equal(t, 0, file.Rows)

	f, err := excelize.OpenReader(bytes.NewReader(file.Content))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Assignments Report")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Title", "Start Date", "Due Date", "Teacher"}}, rows)
}

func Test_service_Email(t *testing.T) {
	box := &outbox{}
	svc := newTestService(&fakeStore{subjects: []SubjectRecord{{Name: "Math"}}}, nil, box)
	ctx := context.Background()

	err := svc.Email(ctx, Params{Type: TypeSubjects})
	assert.Contains(t, fieldsOf(err), "recipients")
	assert.Empty(t, box.sent)

	to := mail.Address{Name: "Admin", Address: "admin@test.cd"}
	require.NoError(t, svc.Email(ctx, Params{Type: TypeSubjects}, to))
	require.Len(t, box.sent, 1)

	msg := box.sent[0]
	assert.Equal(t, []mail.Address{to}, msg.To)
	assert.Equal(t, "Subject Report", msg.Subject)
	assert.Equal(t, "report", msg.TemplateName)
	require.Len(t, msg.Attachments, 1)
	assert.Equal(t, "SubjectReport.xlsx", msg.Attachments[0].Filename)
	assert.Equal(t, ContentType, msg.Attachments[0].ContentType)
}

func TestTypes(t *testing.T) {
	infos := Types()
	assert.Len(t, infos, 13)
	for i := 1; i < len(infos); i++ {
		assert.Less(t, string(infos[i-1].Type), string(infos[i].Type))
	}
	for _, info := range infos {
		assert.True(t, ValidType(info.Type))
		assert.NotEmpty(t, info.Columns)
		if info.RangeRequired {
			assert.Subset(t, info.Required, []string{"start_date", "end_date"})
		}
	}
	assert.False(t, ValidType("grades"))
}
