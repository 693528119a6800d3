// Package icsstore keeps calendars as iCalendar objects in S3 compatible
// storage.
//
// Collection id lives at <prefix>/<id>.ics and its title is the X-WR-CALNAME
// property. Entries map to VEVENTs: the marker is stored in URL and the
// availability in TRANSP plus X-MICROSOFT-CDO-BUSYSTATUS. Events the sync does
// not touch, and unknown properties of those it does, survive a rewrite.
package icsstore
