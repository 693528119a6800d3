// Package fingerprint derives the change-detection digest of a calendar entry.
//
// The digest covers the time range and all-day flag of an entry plus the
// optional fields enabled in Fields. A disabled field contributes a fixed
// sentinel instead of its value, so toggling a field always changes the digest
// and re-enabling it restores the previous one. Times are hashed in UTC, so
// the zone an entry is expressed in does not affect the digest.
package fingerprint
