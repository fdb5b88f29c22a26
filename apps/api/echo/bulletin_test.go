package echoapi_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/bulletin"
	"github.com/trezcool/darasa/storage/database/sqlx"
	"github.com/trezcool/darasa/tests"
)

func Test_bulletinApi_announcements(t *testing.T) {
	app := setup(t)
	grd := testutil.CreateGrade(t, app.schoolRepo, "First", 1)
	cls := testutil.CreateClass(t, app.schoolRepo, "1A", 20, grd.ID)

	repo := sqlxrepos.NewBulletinRepository(app.db)
	announce := func(title string, date time.Time, classID null.Int) bulletin.Announcement {
		ann, err := repo.CreateAnnouncement(context.Background(), bulletin.Announcement{
			Title: title, Description: "See the office", Date: date, ClassID: classID,
		})
		require.NoError(t, err)
		return ann
	}
	holiday := announce("Holiday", monday, null.Int{})
	trip := announce("Class trip", time.Date(2021, 3, 2, 22, 30, 0, 0, time.UTC), null.IntFrom(int(cls.ID)))
	fees := announce("School fees", time.Date(2021, 3, 3, 7, 0, 0, 0, time.UTC), null.Int{})

	adminToken := getToken(t, core.RoleAdmin, "a1")
	body := marchallObj(t, bulletin.NewAnnouncement{Title: "Sports day", Description: "Bring shoes", Date: monday})

	tests := []httpTest{
		{
			name: "admin required", method: http.MethodPost, path: "/v1/announcements", body: body,
			token: getToken(t, core.RoleTeacher, "t1"), wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "blank description", method: http.MethodPost, path: "/v1/announcements", token: adminToken,
			body:     []byte(`{"title": "Sports day", "description": "   ", "date": "2021-03-01T08:00:00Z"}`),
			wantCode: http.StatusBadRequest, wantData: []byte(`{"description": "this field is required"}`),
		},
		{
			name: "unknown class", method: http.MethodPost, path: "/v1/announcements", token: adminToken,
			body:     marchallObj(t, bulletin.NewAnnouncement{Title: "Trip", Description: "Bus at 8", Date: monday, ClassID: null.IntFrom(999)}),
			wantCode: http.StatusBadRequest, wantData: []byte(`{"class_id": "not found"}`),
		},
		{
			name: "invalid date_to", path: "/v1/announcements?date_to=2021-13-01", token: adminToken,
			wantCode: http.StatusBadRequest, wantData: []byte(`{"date_to": "must be an RFC3339 timestamp or a YYYY-MM-DD date"}`),
		},
	}
	runHTTPTests(t, app, tests)

	studentToken := getToken(t, core.RoleStudent, "s1")
	filters := []struct {
		name    string
		query   string
		wantIDs []int
	}{
		{"latest first", "", []int{fees.ID, trip.ID, holiday.ID}},
		{"to covers the whole day", "date_to=2021-03-02", []int{trip.ID, holiday.ID}},
		{"range", "date_from=2021-03-02&date_to=2021-03-02", []int{trip.ID}},
		{"from timestamp", "date_from=2021-03-02T23:00:00Z", []int{fees.ID}},
		{"class", fmt.Sprintf("class_id=%d", cls.ID), []int{trip.ID}},
		{"search", "search=fees", []int{fees.ID}},
		{"by title", "ordering=title", []int{trip.ID, holiday.ID, fees.ID}},
	}
	for _, tt := range filters {
		t.Run(tt.name, func(t *testing.T) {
			count, ids := listIDs(t, app, "/v1/announcements?"+tt.query, studentToken)
			assert.Equal(t, len(tt.wantIDs), count)
			assert.Equal(t, tt.wantIDs, ids)
		})
	}

	t.Run("admin creates, updates & deletes", func(t *testing.T) {
		var ann bulletin.Announcement
		mustCreate(t, app, "/v1/announcements", adminToken, body, &ann)
		assert.Equal(t, "Sports day", ann.Title)
		assert.False(t, ann.ClassID.Valid)

		path := fmt.Sprintf("/v1/announcements/%d", ann.ID)
		moved := marchallObj(t, bulletin.NewAnnouncement{
			Title: "Sports day", Description: "Bring shoes", Date: monday, ClassID: null.IntFrom(int(cls.ID)),
		})
		req, rec := newAuthRequest(http.MethodPut, path, adminToken, moved)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Contains(t, rec.Body.String(), fmt.Sprintf(`"class_id":%d`, cls.ID))

		req, rec = newAuthRequest(http.MethodDelete, path, getToken(t, core.RoleTeacher, "t1"))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)

		req, rec = newAuthRequest(http.MethodDelete, path, adminToken)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)

		req, rec = newAuthRequest(http.MethodGet, path, studentToken)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func Test_bulletinApi_events(t *testing.T) {
	app := setup(t)
	grd := testutil.CreateGrade(t, app.schoolRepo, "First", 1)
	cls := testutil.CreateClass(t, app.schoolRepo, "1A", 20, grd.ID)
	adminToken := getToken(t, core.RoleAdmin, "a1")

	event := func(start, end time.Time, classID null.Int) []byte {
		return marchallObj(t, bulletin.NewEvent{
			Title: "Science fair", Description: "Main hall", StartTime: start, EndTime: end, ClassID: classID,
		})
	}

	tests := []httpTest{
		{
			name: "admin required", method: http.MethodPost, path: "/v1/events",
			body:  event(monday, monday.Add(time.Hour), null.Int{}),
			token: getToken(t, core.RoleTeacher, "t1"), wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "end before start", method: http.MethodPost, path: "/v1/events", token: adminToken,
			body:     event(monday, monday.Add(-time.Hour), null.Int{}),
			wantCode: http.StatusBadRequest, wantData: []byte(`{"end_time": "must be after the start"}`),
		},
		{
			name: "end on start", method: http.MethodPost, path: "/v1/events", token: adminToken,
			body:     event(monday, monday, null.Int{}),
			wantCode: http.StatusBadRequest, wantData: []byte(`{"end_time": "must be after the start"}`),
		},
	}
	runHTTPTests(t, app, tests)

	var fair, trip bulletin.Event
	mustCreate(t, app, "/v1/events", adminToken, event(monday, monday.Add(26*time.Hour), null.Int{}), &fair)
	mustCreate(t, app, "/v1/events", adminToken,
		event(time.Date(2021, 3, 4, 9, 0, 0, 0, time.UTC), time.Date(2021, 3, 4, 15, 0, 0, 0, time.UTC), null.IntFrom(int(cls.ID))), &trip)

	parentToken := getToken(t, core.RoleParent, "p1")
	count, ids := listIDs(t, app, "/v1/events", parentToken)
	assert.Equal(t, 2, count)
	assert.Equal(t, []int{trip.ID, fair.ID}, ids)

	// filtered on the start time only
	count, ids = listIDs(t, app, "/v1/events?date_from=2021-03-02", parentToken)
	assert.Equal(t, 1, count)
	assert.Equal(t, []int{trip.ID}, ids)

	count, ids = listIDs(t, app, fmt.Sprintf("/v1/events?class_id=%d&date_to=2021-03-04", cls.ID), parentToken)
	assert.Equal(t, 1, count)
	assert.Equal(t, []int{trip.ID}, ids)

	req, rec := newAuthRequest(http.MethodDelete, fmt.Sprintf("/v1/events?id=%d&id=%d", fair.ID, trip.ID), adminToken)
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	count, _ = listIDs(t, app, "/v1/events", parentToken)
	assert.Zero(t, count)
}
