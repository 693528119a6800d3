// Package integrity inspects a sync relationship without changing it.
//
// The backend check acquires access and counts calendars. The marker check
// compares the copies found in the destination window with the live source
// entries and lists the copies a run would repair:
//
//   - stale: the source changed since the copy was written
//   - orphaned: the source entry no longer exists in the source window
//   - malformed: the marker carries the prefix but cannot be parsed
//   - duplicates: a second copy claims an already claimed source entry
//
// # Routes
//
//	GET /integrity
//	GET /integrity/backend
//	GET /integrity/markers
package integrity
