package sync

import (
	"errors"

	"cal-sync/core/calendar"
	"cal-sync/core/logger"
	"cal-sync/core/syncconf"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for sync runs.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the sync routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/sync")
	group.Post("/", h.HandleRun)
	group.Get("/plan", h.HandlePlan)
}

// HandleRun performs a sync run.
// @Summary Run Sync
// @Description Mirrors the source calendar into the destination calendar and returns the executed actions.
// @Tags sync
// @Produce json
// @Success 200 {object} Report "Run Report"
// @Failure 400 {object} map[string]string "Invalid Configuration"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /sync [post]
func (h *Handler) HandleRun(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	l.Info("Triggering sync run")

	report, err := h.service.Run(c.Context())
	if err != nil {
		l.Error("Sync run failed", zap.Error(err))
		return c.Status(StatusFor(err)).JSON(fiber.Map{
			"error":  err.Error(),
			"report": report,
		})
	}
	return c.JSON(report)
}

// HandlePlan returns the actions a run would perform.
// @Summary Plan Sync
// @Description Computes the create, update and delete actions without applying them.
// @Tags sync
// @Produce json
// @Success 200 {object} Report "Plan Report"
// @Failure 400 {object} map[string]string "Invalid Configuration"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /sync/plan [get]
func (h *Handler) HandlePlan(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	report, err := h.service.Plan(c.Context())
	if err != nil {
		l.Error("Sync plan failed", zap.Error(err))
		return c.Status(StatusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(report)
}

// StatusFor maps a run error to an HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, syncconf.ErrNoSource),
		errors.Is(err, syncconf.ErrNoDestination),
		errors.Is(err, syncconf.ErrNoPrefix),
		errors.Is(err, syncconf.ErrInvalidPrefix),
		errors.Is(err, syncconf.ErrInvalidWindow),
		errors.Is(err, calendar.ErrIdenticalCollections):
		return fiber.StatusBadRequest
	case errors.Is(err, calendar.ErrInvalidSourceCollection),
		errors.Is(err, calendar.ErrInvalidDestinationCollection):
		return fiber.StatusNotFound
	case errors.Is(err, calendar.ErrAuthorizationDenied):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}
