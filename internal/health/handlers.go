package health

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Handlers exposes the health report.
type Handlers struct {
	service *Service
}

// NewHandlers creates new health handlers.
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// RegisterRoutes registers the health routes.
func (h *Handlers) RegisterRoutes(g *echo.Group) {
	g.GET("/health", h.GetHealth)
}

// GetHealth returns the health report. An error status answers 503 so
// load balancers can act on it.
// GET /api/v1/health
func (h *Handlers) GetHealth(c echo.Context) error {
	report := h.service.Check(c.Request().Context())
	code := http.StatusOK
	if report.Status == StatusError {
		code = http.StatusServiceUnavailable
	}
	return c.JSON(code, report)
}
