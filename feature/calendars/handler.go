package calendars

import (
	"context"
	"errors"

	"cal-sync/core/calendar"
	"cal-sync/core/logger"
	"cal-sync/feature/sync"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Lister lists the calendars visible to the backend.
type Lister interface {
	ListCalendars(ctx context.Context) ([]sync.Account, error)
}

// Handler handles HTTP requests for calendar discovery.
type Handler struct {
	lister Lister
	logger *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(lister Lister, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{lister: lister, logger: logger}
}

// RegisterRoutes registers the calendar routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Get("/calendars", h.HandleList)
}

// HandleList returns every visible calendar grouped by account.
// @Summary List Calendars
// @Description Lists the calendars of every account, sorted by account and title.
// @Tags calendars
// @Produce json
// @Success 200 {array} sync.Account "Accounts"
// @Failure 503 {object} map[string]string "Backend Unavailable"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /calendars [get]
func (h *Handler) HandleList(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	accounts, err := h.lister.ListCalendars(c.Context())
	if err != nil {
		l.Error("Failed to list calendars", zap.Error(err))
		status := fiber.StatusInternalServerError
		if errors.Is(err, calendar.ErrAuthorizationDenied) {
			status = fiber.StatusServiceUnavailable
		}
		return c.Status(status).JSON(fiber.Map{"error": err.Error()})
	}
	if accounts == nil {
		accounts = []sync.Account{}
	}
	return c.JSON(accounts)
}
