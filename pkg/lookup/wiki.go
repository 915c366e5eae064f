package lookup

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/jarvis-assistant/jarvis/pkg/model"
)

const wikipediaBaseURL = "https://en.wikipedia.org/api/rest_v1"

type wiki struct {
	baseURL    string
	httpClient *http.Client
}

type WikiOption func(*wiki)

// WithWikiBaseURL overrides the API endpoint, mainly for tests.
func WithWikiBaseURL(baseURL string) WikiOption {
	return func(w *wiki) {
		w.baseURL = baseURL
	}
}

// NewWiki creates a Wikipedia page-summary handler. No credential needed.
func NewWiki(timeout time.Duration, opts ...WikiOption) Handler {
	w := &wiki{
		baseURL:    wikipediaBaseURL,
		httpClient: newHTTPClient(timeout),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *wiki) Kind() model.CommandKind {
	return model.KindEncyclopedia
}

type wikiSummaryResponse struct {
	Title   string `json:"title"`
	Extract string `json:"extract"`
}

func (w *wiki) Resolve(ctx context.Context, query string) *model.LookupResult {
	text, err := w.resolve(ctx, query)
	if err != nil {
		return model.NewLookupFailure(model.KindEncyclopedia, query, err)
	}
	return model.NewLookupResult(model.KindEncyclopedia, query, text)
}

func (w *wiki) resolve(ctx context.Context, topic string) (string, error) {
	if topic == "" {
		return "", goerr.Wrap(model.ErrInvalidArgument, "topic is empty")
	}

	// Wikipedia page titles use underscores for spaces.
	title := strings.ReplaceAll(topic, " ", "_")
	reqURL := w.baseURL + "/page/summary/" + url.PathEscape(title)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", goerr.Wrap(err, "failed to create request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := doWithRetry(w.httpClient, req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", classifyStatus(resp)
	}

	var data wikiSummaryResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", goerr.Wrap(model.ErrMalformed, "failed to decode summary response")
	}
	if data.Extract == "" {
		return "", goerr.Wrap(model.ErrNotFound, "no summary available", goerr.V("topic", topic))
	}

	return data.Extract, nil
}
