package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/jarvis-assistant/jarvis/pkg/model"
)

const shodanBaseURL = "https://api.shodan.io"

type shodan struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

type ShodanOption func(*shodan)

// WithShodanBaseURL overrides the API endpoint, mainly for tests.
func WithShodanBaseURL(baseURL string) ShodanOption {
	return func(s *shodan) {
		s.baseURL = baseURL
	}
}

// NewShodan creates a Shodan host-intelligence handler.
func NewShodan(apiKey string, timeout time.Duration, opts ...ShodanOption) Handler {
	s := &shodan{
		apiKey:     apiKey,
		baseURL:    shodanBaseURL,
		httpClient: newHTTPClient(timeout),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *shodan) Kind() model.CommandKind {
	return model.KindHostIntel
}

type shodanHostResponse struct {
	IPStr     string   `json:"ip_str"`
	Org       string   `json:"org"`
	ISP       string   `json:"isp"`
	Country   string   `json:"country_name"`
	Ports     []int    `json:"ports"`
	Hostnames []string `json:"hostnames"`
}

func (s *shodan) Resolve(ctx context.Context, query string) *model.LookupResult {
	text, err := s.resolve(ctx, query)
	if err != nil {
		return model.NewLookupFailure(model.KindHostIntel, query, err)
	}
	return model.NewLookupResult(model.KindHostIntel, query, text)
}

func (s *shodan) resolve(ctx context.Context, ip string) (string, error) {
	if !ipv4Re.MatchString(ip) {
		return "", goerr.Wrap(model.ErrInvalidArgument, "not a valid IPv4 address", goerr.V("query", ip))
	}
	if s.apiKey == "" {
		return "", goerr.Wrap(model.ErrUnauthorized, "Shodan API key is not configured")
	}

	reqURL := fmt.Sprintf("%s/shodan/host/%s?key=%s", s.baseURL, ip, url.QueryEscape(s.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", goerr.Wrap(err, "failed to create request")
	}

	resp, err := doWithRetry(s.httpClient, req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", classifyStatus(resp)
	}

	var data shodanHostResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", goerr.Wrap(model.ErrMalformed, "failed to decode Shodan response")
	}

	summary := fmt.Sprintf("Host %s: organization %s, country %s", data.IPStr, orUnknown(data.Org), orUnknown(data.Country))
	if len(data.Ports) > 0 {
		summary += fmt.Sprintf(", open ports %s", joinInts(data.Ports))
	}
	if len(data.Hostnames) > 0 {
		summary += fmt.Sprintf(", hostnames %s", strings.Join(data.Hostnames, ", "))
	}
	return summary, nil
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("%d", v)
	}
	return strings.Join(parts, ", ")
}
