package calendars

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	handler *Handler
}

// NewFeature creates the calendars feature.
func NewFeature(lister Lister, logger *zap.Logger) *Feature {
	return &Feature{handler: NewHandler(lister, logger)}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "calendars"
}

// IsEnabled returns true; discovery needs no configuration.
func (f *Feature) IsEnabled() bool {
	return true
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}
