package poster

import (
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/labstack/echo/v4"
)

// Handlers provides HTTP handlers for poster operations.
type Handlers struct {
	service *Service
}

// NewHandlers creates new poster handlers.
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// RegisterRoutes registers the poster routes.
func (h *Handlers) RegisterRoutes(api *echo.Group) {
	api.POST("/releases/:id/poster", h.FetchPoster)
	api.DELETE("/posters", h.ClearAll)
	api.GET("/posters/cache/:fingerprint", h.GetCacheEntry)
	api.GET("/posters/file/:name", h.GetFile)
}

// FetchPoster resolves a poster synchronously.
// POST /api/v1/releases/:id/poster?skipIfExists=true&log=true
func (h *Handlers) FetchPoster(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	opts := FetchOptions{
		SkipIfExists: queryBool(c, "skipIfExists"),
		LogSingle:    queryBool(c, "log"),
	}
	res, err := h.service.FetchPoster(c.Request().Context(), id, opts)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	status := res.StatusCode
	if status == 0 {
		status = http.StatusBadGateway
	}
	return c.JSON(status, res.Body)
}

// ClearAll removes every poster reference from releases.
// DELETE /api/v1/posters
func (h *Handlers) ClearAll(c echo.Context) error {
	n, err := h.service.ClearAll(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]int64{"cleared": n})
}

// GetCacheEntry returns a match cache entry.
// GET /api/v1/posters/cache/:fingerprint
func (h *Handlers) GetCacheEntry(c echo.Context) error {
	entry, err := h.service.Cache().TryGet(c.Request().Context(), c.Param("fingerprint"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if entry == nil {
		return echo.NewHTTPError(http.StatusNotFound, "cache entry not found")
	}
	return c.JSON(http.StatusOK, entry)
}

// GetFile serves a stored poster.
// GET /api/v1/posters/file/:name
func (h *Handlers) GetFile(c echo.Context) error {
	name := c.Param("name")
	if name == "" || name != filepath.Base(name) {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid file name")
	}
	artwork := h.service.Artwork()
	if !artwork.Exists(name) {
		return echo.NewHTTPError(http.StatusNotFound, "poster not found")
	}

	// File names are keyed by provider id, so content never changes.
	c.Response().Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	return c.File(artwork.Path(name))
}

func queryBool(c echo.Context, name string) bool {
	v, err := strconv.ParseBool(c.QueryParam(name))
	return err == nil && v
}
