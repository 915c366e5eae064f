package model

import (
	"errors"

	"github.com/m-mizutani/goerr/v2"
)

// Failure taxonomy shared by lookup handlers, LLM backends and the memory
// store. Callers match with errors.Is through the goerr unwrap chain.
var (
	ErrInvalidArgument   = goerr.New("invalid argument")
	ErrUnauthorized      = goerr.New("unauthorized")
	ErrAuthMissing       = goerr.New("credential not configured")
	ErrRateLimited       = goerr.New("rate limited")
	ErrUnreachable       = goerr.New("unreachable")
	ErrNotFound          = goerr.New("not found")
	ErrMalformed         = goerr.New("malformed response")
	ErrMemoryUnavailable = goerr.New("memory unavailable")
)

// ErrKind is the serializable name of a taxonomy error, carried by
// LookupResult so the router can compose user-facing failure summaries
// without inspecting error chains.
type ErrKind string

const (
	ErrKindNone            ErrKind = ""
	ErrKindInvalidArgument ErrKind = "invalid_argument"
	ErrKindUnauthorized    ErrKind = "unauthorized"
	ErrKindAuthMissing     ErrKind = "auth_missing"
	ErrKindRateLimited     ErrKind = "rate_limited"
	ErrKindUnreachable     ErrKind = "unreachable"
	ErrKindNotFound        ErrKind = "not_found"
	ErrKindMalformed       ErrKind = "malformed"
	ErrKindMemory          ErrKind = "memory_unavailable"
	ErrKindUnknown         ErrKind = "unknown"
)

// KindOfError classifies an error into its taxonomy kind.
func KindOfError(err error) ErrKind {
	switch {
	case err == nil:
		return ErrKindNone
	case errors.Is(err, ErrInvalidArgument):
		return ErrKindInvalidArgument
	case errors.Is(err, ErrUnauthorized):
		return ErrKindUnauthorized
	case errors.Is(err, ErrAuthMissing):
		return ErrKindAuthMissing
	case errors.Is(err, ErrRateLimited):
		return ErrKindRateLimited
	case errors.Is(err, ErrUnreachable):
		return ErrKindUnreachable
	case errors.Is(err, ErrNotFound):
		return ErrKindNotFound
	case errors.Is(err, ErrMalformed):
		return ErrKindMalformed
	case errors.Is(err, ErrMemoryUnavailable):
		return ErrKindMemory
	default:
		return ErrKindUnknown
	}
}

// Describe returns a short human-readable phrase for the kind, used in
// user-facing failure summaries.
func (k ErrKind) Describe() string {
	switch k {
	case ErrKindInvalidArgument:
		return "the argument was invalid"
	case ErrKindUnauthorized:
		return "the API credential is missing or invalid"
	case ErrKindAuthMissing:
		return "no API credential is configured"
	case ErrKindRateLimited:
		return "the service rate limit was exceeded"
	case ErrKindUnreachable:
		return "the service could not be reached"
	case ErrKindNotFound:
		return "nothing was found"
	case ErrKindMalformed:
		return "the service returned an unusable response"
	case ErrKindMemory:
		return "the memory store is unavailable"
	default:
		return "an unexpected error occurred"
	}
}
