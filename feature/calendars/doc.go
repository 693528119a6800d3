// Package calendars exposes calendar discovery over HTTP.
//
// GET /calendars returns the visible collections grouped by account. The
// storage backends live in the sqlstore and icsstore subpackages.
package calendars
