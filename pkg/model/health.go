package model

import (
	"sync/atomic"
	"time"
)

// BackendHealth tracks per-backend availability as an ordering hint for the
// fallback chain. Fields are updated atomically so concurrent turns never
// lose an update; staleness is acceptable. It is not a circuit breaker:
// the router attempts backends in configured order regardless.
type BackendHealth struct {
	available   atomic.Bool
	lastFailure atomic.Int64 // unix nanoseconds, 0 = never failed
}

// NewBackendHealth returns health state marked available.
func NewBackendHealth() *BackendHealth {
	h := &BackendHealth{}
	h.available.Store(true)
	return h
}

// MarkSuccess resets the health state after a successful call.
func (h *BackendHealth) MarkSuccess() {
	h.available.Store(true)
}

// MarkFailure records a failed call at the given time.
func (h *BackendHealth) MarkFailure(at time.Time) {
	h.available.Store(false)
	h.lastFailure.Store(at.UnixNano())
}

// Available reports whether the last call succeeded.
func (h *BackendHealth) Available() bool {
	return h.available.Load()
}

// LastFailure returns the time of the most recent failure, or the zero time
// if the backend has never failed.
func (h *BackendHealth) LastFailure() time.Time {
	ns := h.lastFailure.Load()
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}
