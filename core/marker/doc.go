// Package marker parses and renders the ownership marker embedded in synced
// destination entries.
//
// The external form is "prefix:fingerprint:sourceID". The source ID is the
// remainder after the second separator, so source identifiers may contain ':'.
//
// # Ownership
//
// Ownership is stricter than a plain prefix match: the prefix must be
// followed by the separator or end the marker. A relationship named
// "cal-sync" therefore never claims, updates or deletes entries whose marker
// starts with "cal-sync-work:".
package marker
