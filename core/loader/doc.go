// Package loader provides the plugin-like feature loading system.
//
// Each feature implements the Feature interface:
//
//	type Feature interface {
//	    Name() string
//	    IsEnabled() bool
//	    Load(app fiber.Router) error
//	}
//
// The Manager holds the registry. Register adds a feature, LoadAll loads the
// enabled ones in registration order. The serve command registers the sync and
// calendars features this way.
package loader
