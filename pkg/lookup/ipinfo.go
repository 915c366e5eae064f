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

const ipinfoBaseURL = "https://ipinfo.io"

type ipinfo struct {
	token      string
	baseURL    string
	httpClient *http.Client
}

type IPInfoOption func(*ipinfo)

// WithIPInfoBaseURL overrides the API endpoint, mainly for tests.
func WithIPInfoBaseURL(baseURL string) IPInfoOption {
	return func(i *ipinfo) {
		i.baseURL = baseURL
	}
}

// NewIPInfo creates an ipinfo.io geolocation handler. The token is optional;
// ipinfo serves unauthenticated requests at a reduced rate.
func NewIPInfo(token string, timeout time.Duration, opts ...IPInfoOption) Handler {
	i := &ipinfo{
		token:      token,
		baseURL:    ipinfoBaseURL,
		httpClient: newHTTPClient(timeout),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

func (i *ipinfo) Kind() model.CommandKind {
	return model.KindIPInfo
}

type ipinfoResponse struct {
	IP      string `json:"ip"`
	City    string `json:"city"`
	Region  string `json:"region"`
	Country string `json:"country"`
	Org     string `json:"org"`
}

func (i *ipinfo) Resolve(ctx context.Context, query string) *model.LookupResult {
	text, err := i.resolve(ctx, query)
	if err != nil {
		return model.NewLookupFailure(model.KindIPInfo, query, err)
	}
	return model.NewLookupResult(model.KindIPInfo, query, text)
}

func (i *ipinfo) resolve(ctx context.Context, ip string) (string, error) {
	if !ipv4Re.MatchString(ip) {
		return "", goerr.Wrap(model.ErrInvalidArgument, "not a valid IPv4 address", goerr.V("query", ip))
	}

	reqURL := fmt.Sprintf("%s/%s", i.baseURL, ip)
	if i.token != "" {
		reqURL += "?token=" + url.QueryEscape(i.token)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", goerr.Wrap(err, "failed to create request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := doWithRetry(i.httpClient, req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", classifyStatus(resp)
	}

	var data ipinfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", goerr.Wrap(model.ErrMalformed, "failed to decode ipinfo response")
	}

	parts := []string{fmt.Sprintf("IP %s", data.IP)}
	if data.City != "" {
		parts = append(parts, fmt.Sprintf("located in %s, %s, %s", data.City, data.Region, data.Country))
	} else if data.Country != "" {
		parts = append(parts, fmt.Sprintf("located in %s", data.Country))
	}
	if data.Org != "" {
		parts = append(parts, fmt.Sprintf("operated by %s", data.Org))
	}
	return strings.Join(parts, ", "), nil
}
