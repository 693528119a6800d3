package integrity

import (
	"cal-sync/core/logger"
	"cal-sync/feature/sync"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for integrity checks.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the integrity routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/integrity")
	group.Get("/", h.HandleIntegrityCheck)
	group.Get("/backend", h.HandleBackendCheck)
	group.Get("/markers", h.HandleMarkerCheck)
}

// HandleIntegrityCheck triggers all integrity checks.
// @Summary Run All Integrity Checks
// @Description Checks backend access and the markers of the destination calendar.
// @Tags integrity
// @Produce json
// @Success 200 {object} Report "Combined Report"
// @Router /integrity [get]
func (h *Handler) HandleIntegrityCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	l.Info("Triggering all integrity checks")

	return c.JSON(h.service.CheckAll(c.Context()))
}

// HandleBackendCheck checks backend access.
// @Summary Check Backend
// @Description Acquires access to the calendar backend and counts its calendars.
// @Tags integrity
// @Produce json
// @Success 200 {object} checks.BackendReport "Backend Report"
// @Failure 503 {object} checks.BackendReport "Backend Unavailable"
// @Router /integrity/backend [get]
func (h *Handler) HandleBackendCheck(c *fiber.Ctx) error {
	report := h.service.CheckBackend(c.Context())
	if report.Status != "ok" {
		logger.WithRayID(h.service.logger, c).Warn("Backend check failed", zap.String("error", report.Error))
		return c.Status(fiber.StatusServiceUnavailable).JSON(report)
	}
	return c.JSON(report)
}

// HandleMarkerCheck classifies the synced copies of the destination.
// @Summary Check Markers
// @Description Reports stale, orphaned, malformed and duplicate copies in the destination window.
// @Tags integrity
// @Produce json
// @Success 200 {object} checks.MarkerReport "Marker Report"
// @Failure 400 {object} map[string]string "Invalid Configuration"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /integrity/markers [get]
func (h *Handler) HandleMarkerCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	report, err := h.service.CheckMarkers(c.Context())
	if err != nil {
		l.Error("Marker check failed", zap.Error(err))
		return c.Status(sync.StatusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(report)
}
