// Package lookup implements the structured lookup handlers: weather,
// host intelligence, IP geolocation and encyclopedia summaries. Each handler
// turns a normalized query into a short human-readable summary, classifying
// any failure into the shared taxonomy. Handlers never touch the memory
// store; persisting turns is the router's job alone.
package lookup

import (
	"context"
	"errors"
	"io"
	"net/http"
	"regexp"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/jarvis-assistant/jarvis/pkg/model"
)

const defaultTimeout = 10 * time.Second

// Handler resolves one lookup kind.
type Handler interface {
	Kind() model.CommandKind
	Resolve(ctx context.Context, query string) *model.LookupResult
}

// Registry maps command kinds to their handlers.
type Registry struct {
	handlers map[model.CommandKind]Handler
}

// NewRegistry builds a registry from the given handlers.
func NewRegistry(handlers ...Handler) *Registry {
	r := &Registry{handlers: make(map[model.CommandKind]Handler, len(handlers))}
	for _, h := range handlers {
		r.handlers[h.Kind()] = h
	}
	return r
}

// Lookup returns the handler for the kind, or nil if none is registered.
func (r *Registry) Lookup(kind model.CommandKind) Handler {
	return r.handlers[kind]
}

var ipv4Re = regexp.MustCompile(`^\d{1,3}(?:\.\d{1,3}){3}$`)

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// doWithRetry performs the request, retrying exactly once if the transport
// fails or times out. Repeated failures surface as ErrUnreachable.
func doWithRetry(client *http.Client, req *http.Request) (*http.Response, error) {
	resp, err := client.Do(req)
	if err == nil {
		return resp, nil
	}
	if ctxErr := req.Context().Err(); ctxErr != nil && errors.Is(ctxErr, context.Canceled) {
		return nil, goerr.Wrap(model.ErrUnreachable, "request canceled")
	}

	resp, err = client.Do(req.Clone(req.Context()))
	if err != nil {
		return nil, goerr.Wrap(model.ErrUnreachable, "request failed after retry", goerr.V("url", req.URL.Redacted()))
	}
	return resp, nil
}

// classifyStatus maps a non-200 HTTP status to a taxonomy error.
func classifyStatus(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	status := goerr.V("status", resp.StatusCode)
	detail := goerr.V("body", string(body))

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return goerr.Wrap(model.ErrUnauthorized, "credential rejected", status, detail)
	case resp.StatusCode == http.StatusNotFound:
		return goerr.Wrap(model.ErrNotFound, "resource not found", status, detail)
	case resp.StatusCode == http.StatusTooManyRequests:
		return goerr.Wrap(model.ErrRateLimited, "rate limit exceeded", status, detail)
	case resp.StatusCode >= http.StatusInternalServerError:
		return goerr.Wrap(model.ErrUnreachable, "server error", status, detail)
	default:
		return goerr.Wrap(model.ErrMalformed, "unexpected status", status, detail)
	}
}
