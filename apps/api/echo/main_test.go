package echoapi_test

import (
	"bytes"
	"encoding/json"
	"io/ioutil"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"reflect"
	"testing"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/trezcool/darasa/apps/api/echo"
	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/assessment"
	"github.com/trezcool/darasa/core/attendance"
	"github.com/trezcool/darasa/core/bulletin"
	"github.com/trezcool/darasa/core/people"
	"github.com/trezcool/darasa/core/report"
	"github.com/trezcool/darasa/core/school"
	"github.com/trezcool/darasa/services/cache"
	"github.com/trezcool/darasa/services/email"
	"github.com/trezcool/darasa/services/logger"
	"github.com/trezcool/darasa/storage/database/sqlx"
	"github.com/trezcool/darasa/tests"
)

var (
	conf       *core.Config
	logger     core.Logger
	validate   *validator.Validate
	translator ut.Translator

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
	errInvalidToken = httpErr{Error: "invalid or expired jwt"}
	errForbidden    = httpErr{Error: "permission denied"}
	errNotFound     = httpErr{Error: "not found"}
)

func TestMain(m *testing.M) {
	conf = core.NewConfig()
	conf.Debug = false
	conf.TestMode = true
	conf.Server.DisableReqLogs = true

	rlog := logsvc.NewRollbarLogger(log.New(ioutil.Discard, "", 0), conf)
	rlog.Enable(false)
	logger = rlog

	validate = validator.New()
	translator = core.NewTranslator()
	core.InitValidators(validate, translator)
	people.InitValidators(validate, translator)
	assessment.InitValidators(validate, translator)
	core.ParseEmailTemplates(logger)

	os.Exit(m.Run())
}

// testApp is a Server backed by the test database.
type testApp struct {
	*Server
	db         core.DB
	schoolRepo school.Repository
	peopleRepo people.Repository
	mailer     *emailsvc.ConsoleServiceMock
}

func setup(t *testing.T) *testApp {
	db := testutil.OpenDB(t)
	app := &testApp{
		db:         db,
		schoolRepo: sqlxrepos.NewSchoolRepository(db),
		peopleRepo: sqlxrepos.NewPeopleRepository(db),
		mailer:     emailsvc.NewConsoleServiceMock(conf, logger),
	}

	app.Server = NewServer(ServerDeps{
		Conf:          conf,
		Logger:        logger,
		Validate:      validate,
		Translator:    translator,
		SchoolSvc:     school.NewService(db, app.schoolRepo),
		PeopleSvc:     people.NewService(db, app.peopleRepo, validate, translator),
		AssessmentSvc: assessment.NewService(sqlxrepos.NewAssessmentRepository(db)),
		AttendanceSvc: attendance.NewService(sqlxrepos.NewAttendanceRepository(db)),
		BulletinSvc:   bulletin.NewService(sqlxrepos.NewBulletinRepository(db)),
		ReportSvc: report.NewService(
			sqlxrepos.NewReportStore(db),
			cachesvc.NewMemoryCache(),
			app.mailer,
			logger,
			report.Options{CacheTTL: time.Minute},
		),
	})
	return app
}

// newStubServer serves the given (partial) services without any database.
func newStubServer(deps ServerDeps) *Server {
	deps.Conf = conf
	deps.Logger = logger
	deps.Validate = validate
	deps.Translator = translator
	return NewServer(deps)
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, role, subject string, ttl ...time.Duration) string {
	d := time.Hour
	if len(ttl) > 0 {
		d = ttl[0]
	}
	token, err := GenerateToken(conf, NewClaims(conf, subject, "u_"+subject, role, d))
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func marchallPage(t *testing.T, count int, results ...interface{}) []byte {
	if results == nil {
		results = []interface{}{}
	}
	return marchallObj(t, core.Page{Count: count, Page: 1, Limit: core.DefaultPageLimit, Results: results})
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runHTTPTests(t *testing.T, srv http.Handler, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			req, rec := newAuthRequest(method, tt.path, tt.token, tt.body)
			srv.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

// mustCreate POSTs body to path and decodes the created object into dest.
func mustCreate(t *testing.T, srv http.Handler, path, token string, body []byte, dest interface{}) {
	t.Helper()
	req, rec := newAuthRequest(http.MethodPost, path, token, body)
	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dest))
}

// listIDs GETs a list page, returning its count and the ids of its results.
func listIDs(t *testing.T, srv http.Handler, path, token string) (int, []int) {
	t.Helper()
	req, rec := newAuthRequest(http.MethodGet, path, token)
	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var page struct {
		Count   int `json:"count"`
		Results []struct {
			ID int `json:"id"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	ids := make([]int, 0, len(page.Results))
	for _, r := range page.Results {
		ids = append(ids, r.ID)
	}
	return page.Count, ids
}
