package echoapi_test

import (
	"bytes"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/tests"
)

func readSheet(t *testing.T, content []byte) [][]string {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	return rows
}

func Test_reportApi_exportWorkbook(t *testing.T) {
	app := setup(t)

	grd := testutil.CreateGrade(t, app.schoolRepo, "First", 1)
	testutil.CreateClass(t, app.schoolRepo, "1A", 20, grd.ID)
	adminToken := getToken(t, core.RoleAdmin, "a1")

	export := func() [][]string {
		req, rec := newAuthRequest(http.MethodPost, "/v1/reports", adminToken, []byte(`{"type": "classes"}`))
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		return readSheet(t, rec.Body.Bytes())
	}

	rows := export()
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Name", "Capacity", "Supervisor", "Students", "Grade"}, rows[0])
	assert.Equal(t, []string{"1A", "20", "N/A", "0", "First"}, rows[1])

	// served from the cache until some data changes
	testutil.CreateClass(t, app.schoolRepo, "1B", 20, grd.ID)
	assert.Len(t, export(), 2)

	req, rec := newAuthRequest(http.MethodPost, "/v1/grades", adminToken, []byte(`{"name": "Second", "level": 2}`))
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Len(t, export(), 3)
}

func Test_reportApi_emailWorkbook(t *testing.T) {
	app := setup(t)
	testutil.CreateGrade(t, app.schoolRepo, "First", 1)

	body := []byte(`{"type": "classes", "recipients": ["principal@school.cd"]}`)
	req, rec := newAuthRequest(http.MethodPost, "/v1/reports/email", getToken(t, core.RoleAdmin, "a1"), body)
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	sent := app.mailer.SentMessages()
	require.Len(t, sent, 1)
	msg := sent[0]
	assert.Equal(t, "principal@school.cd", msg.To[0].Address)
	require.Len(t, msg.Attachments, 1)
	assert.Equal(t, "ClassReport.xlsx", msg.Attachments[0].Filename)
}
