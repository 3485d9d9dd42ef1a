package adapter

import "errors"

// Sentinel errors mapped from HTTP responses by mapHTTPError so callers
// can use [errors.Is] for transport-agnostic error handling.
var (
	ErrBadRequest          = errors.New("bad request")
	ErrUnauthorized        = errors.New("client unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("document conflict")
	ErrBadGateway          = errors.New("bad gateway")
	ErrInternalServerError = errors.New("internal server error")

	// ErrRemoteUnavailable is returned when the request never produced an
	// HTTP response (connection refused, DNS failure, timeout). The sync
	// coordinator treats it as a network outage rather than a data error.
	ErrRemoteUnavailable = errors.New("remote store unavailable")
)
