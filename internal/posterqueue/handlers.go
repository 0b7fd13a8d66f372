package posterqueue

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// EnqueueRequest lists the releases to fetch in the background.
type EnqueueRequest struct {
	IDs   []int64 `json:"ids"`
	Force bool    `json:"force"`
}

// EnqueueResponse reports what happened to an EnqueueRequest.
type EnqueueResponse struct {
	Queued   int     `json:"queued"`
	Rejected int     `json:"rejected"`
	Missing  []int64 `json:"missing,omitempty"`
	Pending  int     `json:"pending"`
}

// Handlers provides HTTP handlers for the poster queue.
type Handlers struct {
	queue    *Queue
	releases ReleaseReader
}

// NewHandlers creates new queue handlers.
func NewHandlers(queue *Queue, releases ReleaseReader) *Handlers {
	return &Handlers{queue: queue, releases: releases}
}

// RegisterRoutes registers the queue routes.
func (h *Handlers) RegisterRoutes(api *echo.Group) {
	api.POST("/posters/queue", h.Enqueue)
	api.GET("/posters/queue", h.Status)
	api.DELETE("/posters/queue", h.Clear)
}

// Enqueue queues releases for background poster fetches.
// POST /api/v1/posters/queue
func (h *Handlers) Enqueue(c echo.Context) error {
	var req EnqueueRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if len(req.IDs) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "ids is required")
	}

	ctx := c.Request().Context()
	resp := EnqueueResponse{}
	for _, id := range req.IDs {
		rec, err := h.releases.GetForPoster(ctx, id)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		if rec == nil {
			resp.Missing = append(resp.Missing, id)
			continue
		}
		if h.queue.Enqueue(JobFor(rec, req.Force, "")) {
			resp.Queued++
		} else {
			resp.Rejected++
		}
	}
	resp.Pending = h.queue.Count()

	if resp.Queued == 0 && resp.Rejected > 0 {
		return echo.NewHTTPError(http.StatusServiceUnavailable, ErrQueueFull.Error())
	}
	return c.JSON(http.StatusAccepted, resp)
}

// Status returns the number of pending jobs.
// GET /api/v1/posters/queue
func (h *Handlers) Status(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]int{"pending": h.queue.Count()})
}

// Clear drops every pending job.
// DELETE /api/v1/posters/queue
func (h *Handlers) Clear(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]int{"cleared": h.queue.ClearPending()})
}
