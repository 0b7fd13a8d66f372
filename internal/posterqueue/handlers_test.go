package posterqueue

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slipstream/posterd/internal/media"
	"github.com/slipstream/posterd/internal/release"
)

func newQueueContext(method, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, "/posters/queue", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestHandlers_Enqueue(t *testing.T) {
	q := NewQueue(2)
	releases := fakeReleases{
		1: {ID: 1, Title: "Heat.1995.1080p", TitleClean: "Heat", Year: 1995, Category: media.CategoryFilm},
		2: {ID: 2, Title: "Ronin", Category: media.CategoryFilm},
		3: {ID: 3, Title: "Collateral", Category: media.CategoryFilm},
	}
	h := NewHandlers(q, releases)

	c, rec := newQueueContext(http.MethodPost, `{"ids":[1,2,3,99],"force":true}`)
	require.NoError(t, h.Enqueue(c))
	assert.Equal(t, http.StatusAccepted, rec.Code)

	var resp EnqueueResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Queued)
	assert.Equal(t, 1, resp.Rejected)
	assert.Equal(t, []int64{99}, resp.Missing)
	assert.Equal(t, 2, resp.Pending)

	job, err := q.Dequeue(c.Request().Context())
	require.NoError(t, err)
	assert.Equal(t, FetchJob{ItemID: 1, Title: "Heat", Year: 1995, Category: media.CategoryFilm, ForceRefresh: true}, job)
}

func TestHandlers_EnqueueQueueFull(t *testing.T) {
	q := NewQueue(1)
	require.True(t, q.Enqueue(FetchJob{ItemID: 50}))
	h := NewHandlers(q, fakeReleases{2: {ID: 2, Title: "Ronin"}})

	c, _ := newQueueContext(http.MethodPost, `{"ids":[2]}`)
	err := h.Enqueue(c)

	var he *echo.HTTPError
	require.True(t, errors.As(err, &he))
	assert.Equal(t, http.StatusServiceUnavailable, he.Code)
}

func TestHandlers_EnqueueRequiresIDs(t *testing.T) {
	h := NewHandlers(NewQueue(1), fakeReleases{})

	c, _ := newQueueContext(http.MethodPost, `{"ids":[]}`)
	err := h.Enqueue(c)

	var he *echo.HTTPError
	require.True(t, errors.As(err, &he))
	assert.Equal(t, http.StatusBadRequest, he.Code)
}

func TestHandlers_StatusAndClear(t *testing.T) {
	q := NewQueue(5)
	q.Enqueue(FetchJob{ItemID: 1})
	q.Enqueue(FetchJob{ItemID: 2})
	h := NewHandlers(q, fakeReleases{})

	c, rec := newQueueContext(http.MethodGet, "")
	require.NoError(t, h.Status(c))
	assert.JSONEq(t, `{"pending":2}`, rec.Body.String())

	c, rec = newQueueContext(http.MethodDelete, "")
	require.NoError(t, h.Clear(c))
	assert.JSONEq(t, `{"cleared":2}`, rec.Body.String())
	assert.Zero(t, q.Count())
}

var _ ReleaseReader = (*release.Store)(nil)
