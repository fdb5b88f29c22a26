package echoapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/darasa/core"
)

func newTestContext(query string) echo.Context {
	req := httptest.NewRequest(http.MethodGet, "/?"+query, nil)
	return echo.New().NewContext(req, httptest.NewRecorder())
}

func TestOrdering_Bind(t *testing.T) {
	tests := []struct {
		query string
		want  []core.DBOrdering
	}{
		{query: "", want: nil},
		{query: "ordering=name", want: []core.DBOrdering{{Field: "name", Ascending: true}}},
		{
			query: "ordering=-level,%20name,,-",
			want:  []core.DBOrdering{{Field: "level", Ascending: false}, {Field: "name", Ascending: true}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			ord := new(Ordering)
			ord.Bind(newTestContext(tt.query))
			assert.Equal(t, tt.want, ord.Orderings)
		})
	}
}

func Test_bindPage(t *testing.T) {
	assert.Equal(t, core.Pagination{Page: 1, Limit: core.DefaultPageLimit}, bindPage(newTestContext("")))
	assert.Equal(t, core.Pagination{Page: 1, Limit: core.DefaultPageLimit}, bindPage(newTestContext("page=lol&limit=-3")))
	assert.Equal(t, core.Pagination{Page: 3, Limit: 5}, bindPage(newTestContext("page=3&limit=5")))
}

func Test_bindDateRange(t *testing.T) {
	from, to, err := bindDateRange(newTestContext(""))
	require.NoError(t, err)
	assert.True(t, from.IsZero())
	assert.True(t, to.IsZero())

	from, to, err = bindDateRange(newTestContext("date_from=2021-03-01&date_to=2021-03-02"))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2021, 3, 3, 0, 0, 0, 0, time.UTC).Add(-time.Nanosecond), to, "date-only end covers the whole day")

	_, to, err = bindDateRange(newTestContext("date_to=2021-03-02T10:00:00%2B02:00"))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2021, 3, 2, 8, 0, 0, 0, time.UTC), to)

	_, _, err = bindDateRange(newTestContext("date_to=tomorrow"))
	require.Error(t, err)
	vErr, ok := errors.Cause(err).(*core.ValidationError)
	require.True(t, ok)
	assert.Equal(t, "date_to", vErr.Fields[0].Field)
}

func Test_bindBool(t *testing.T) {
	b, err := bindBool(newTestContext(""), "present")
	require.NoError(t, err)
	assert.Nil(t, b)

	b, err = bindBool(newTestContext("present=false"), "present")
	require.NoError(t, err)
	require.NotNil(t, b)
	assert.False(t, *b)

	_, err = bindBool(newTestContext("present=maybe"), "present")
	assert.Error(t, err)
}

func Test_bindIDs(t *testing.T) {
	ids, err := bindIntIDs(newTestContext("id=1&id=%202&id=3"))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, ids)

	_, err = bindIntIDs(newTestContext("id=1&id=x"))
	assert.Error(t, err)

	assert.Equal(t, []string{"a", "b"}, bindStringIDs(newTestContext("id=a&id=&id=b")))
	assert.Equal(t, []string{}, bindStringIDs(newTestContext("")))
}
