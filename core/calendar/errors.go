package calendar

import "errors"

var (
	// ErrAuthorizationDenied is returned when backend access is not granted
	// within the configured wait.
	ErrAuthorizationDenied = errors.New("access denied to calendar data")
	// ErrInvalidSourceCollection is returned when the source does not resolve.
	ErrInvalidSourceCollection = errors.New("specified source calendar does not exist")
	// ErrInvalidDestinationCollection is returned when the destination does not resolve.
	ErrInvalidDestinationCollection = errors.New("specified destination calendar does not exist")
	// ErrIdenticalCollections guards against syncing a calendar into itself.
	ErrIdenticalCollections = errors.New("same calendar id provided for source and destination")
	// ErrBackendCommunication wraps failures talking to the backend.
	ErrBackendCommunication = errors.New("calendar backend communication failed")
	// ErrEntryNotFound is returned when a mutation targets an unknown entry.
	ErrEntryNotFound = errors.New("calendar entry not found")
)
