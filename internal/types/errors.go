package types

import "errors"

// Error taxonomy for the data and chat paths. Remote failures are always
// downgraded to a fallback at their call site; these sentinels let the
// HTTP layer pick a status code and a localized message without ever
// exposing the underlying error text.
var (
	// ErrTransport marks a network or remote-store level failure.
	ErrTransport = errors.New("transport failure")

	// ErrParse marks a malformed or empty response from a remote service.
	ErrParse = errors.New("malformed response")

	// ErrNotFound marks a referenced landmark or record that is absent.
	ErrNotFound = errors.New("not found")

	// ErrValidation marks empty or invalid required input.
	ErrValidation = errors.New("validation failed")

	// ErrConfiguration marks missing credentials for an external service.
	ErrConfiguration = errors.New("missing configuration")

	// ErrChatBusy is returned when a question arrives while another is
	// still in flight. The second request is dropped, not queued.
	ErrChatBusy = errors.New("chat request already in flight")

	// ErrRemoteUnavailable marks the remote tier as not authoritative for
	// this session; callers defer to the local cache.
	ErrRemoteUnavailable = errors.New("remote store unavailable")

	// ErrUnauthorized marks a failed credential or session check.
	ErrUnauthorized = errors.New("unauthorized")
)
