package domain

import "errors"

var (
	// ErrUnauthenticated marks a 401 from the backend. Transport observers
	// react by clearing the cached session.
	ErrUnauthenticated = errors.New("not authenticated")

	// ErrUserNotFound is returned when a target user id is absent from the
	// local roster snapshot or the backend.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidPayload marks a malformed mutation payload rejected before
	// or by the backend.
	ErrInvalidPayload = errors.New("invalid payload")

	// ErrBackendUnavailable marks a transport failure reaching the backend.
	// Wrapped with the underlying cause.
	ErrBackendUnavailable = errors.New("backend unavailable")

	// ErrStorage marks a persistence read/write/parse failure. Caches
	// swallow it and degrade to nil reads / no-op writes.
	ErrStorage = errors.New("storage failure")
)
