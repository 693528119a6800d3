// Package logger provides a structured logging facility based on Zap.
//
// New builds a logger from Config: "debug" selects the development preset,
// every other level the production preset. Format "json" selects the JSON
// encoder; anything else the colored console encoder used by the CLI.
//
// WithRayID attaches the request ID stored by the rayid middleware so all logs
// of one HTTP request can be correlated.
//
//	log, _ := logger.New(&logger.Config{Level: "info"})
//	log.Info("Sync finished", zap.Int("actions", n))
package logger
