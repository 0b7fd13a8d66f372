package poster

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slipstream/posterd/internal/metadata/igdb"
	"github.com/slipstream/posterd/internal/release"
)

func newHandlerContext(method, target string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func httpErrorCode(t *testing.T, err error) int {
	t.Helper()
	var he *echo.HTTPError
	require.True(t, errors.As(err, &he), "expected echo.HTTPError, got %v", err)
	return he.Code
}

func TestHandlers_FetchPoster(t *testing.T) {
	games := &fakeIGDB{}
	env := newTestEnv(t, func(images string) Providers {
		games.games = []igdb.GameResult{{ID: 1942, Title: "The Witcher 3", CoverURL: images + "/w3.jpg"}}
		return Providers{IGDB: games}
	})
	handlers := NewHandlers(env.svc)
	rel := env.create(t, release.CreateInput{Title: "The.Witcher.3.Wild.Hunt-GOG", Category: "Game"})

	c, rec := newHandlerContext(http.MethodPost, "/releases/1/poster?log=true")
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.Equal(t, int64(1), rel.ID)

	require.NoError(t, handlers.FetchPoster(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var body Body
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.OK)
	assert.Equal(t, "igdb", body.Provider)
	assert.Equal(t, "igdb-1942-cover.jpg", body.File)
}

func TestHandlers_FetchPoster_Failures(t *testing.T) {
	env := newTestEnv(t, nil)
	handlers := NewHandlers(env.svc)

	c, _ := newHandlerContext(http.MethodPost, "/releases/abc/poster")
	c.SetParamNames("id")
	c.SetParamValues("abc")
	assert.Equal(t, http.StatusBadRequest, httpErrorCode(t, handlers.FetchPoster(c)))

	c, rec := newHandlerContext(http.MethodPost, "/releases/42/poster")
	c.SetParamNames("id")
	c.SetParamValues("42")
	require.NoError(t, handlers.FetchPoster(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "release not found")
}

func TestHandlers_ClearAll(t *testing.T) {
	env := newTestEnv(t, nil)
	handlers := NewHandlers(env.svc)

	c, rec := newHandlerContext(http.MethodDelete, "/posters")
	require.NoError(t, handlers.ClearAll(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"cleared":0}`, rec.Body.String())
}

func TestHandlers_GetCacheEntry_NotFound(t *testing.T) {
	env := newTestEnv(t, nil)
	handlers := NewHandlers(env.svc)

	c, _ := newHandlerContext(http.MethodGet, "/posters/cache/nope")
	c.SetParamNames("fingerprint")
	c.SetParamValues("nope")
	assert.Equal(t, http.StatusNotFound, httpErrorCode(t, handlers.GetCacheEntry(c)))
}

func TestHandlers_GetFile(t *testing.T) {
	env := newTestEnv(t, nil)
	handlers := NewHandlers(env.svc)

	stored, err := env.artwork.Store("tmdb", "603", "w500", ".jpg", posterBytes)
	require.NoError(t, err)

	c, rec := newHandlerContext(http.MethodGet, "/posters/file/"+stored.File)
	c.SetParamNames("name")
	c.SetParamValues(stored.File)
	require.NoError(t, handlers.GetFile(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, posterBytes, rec.Body.Bytes())
	assert.Contains(t, rec.Header().Get("Cache-Control"), "immutable")

	c, _ = newHandlerContext(http.MethodGet, "/posters/file/missing.jpg")
	c.SetParamNames("name")
	c.SetParamValues("missing.jpg")
	assert.Equal(t, http.StatusNotFound, httpErrorCode(t, handlers.GetFile(c)))

	c, _ = newHandlerContext(http.MethodGet, "/posters/file/x")
	c.SetParamNames("name")
	c.SetParamValues("../etc/passwd")
	assert.Equal(t, http.StatusBadRequest, httpErrorCode(t, handlers.GetFile(c)))
}
