// Package server holds the HTTP server configuration.
//
// The serve command builds the Fiber application; this package only defines
// the listen port, the API key and the optional cron schedule of automatic
// sync runs.
package server
