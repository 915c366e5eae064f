package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/jarvis-assistant/jarvis/pkg/model"
)

const openWeatherBaseURL = "https://api.openweathermap.org/data/2.5"

type weather struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

type WeatherOption func(*weather)

// WithWeatherBaseURL overrides the API endpoint, mainly for tests.
func WithWeatherBaseURL(baseURL string) WeatherOption {
	return func(w *weather) {
		w.baseURL = baseURL
	}
}

// NewWeather creates an OpenWeather current-conditions handler.
func NewWeather(apiKey string, timeout time.Duration, opts ...WeatherOption) Handler {
	w := &weather{
		apiKey:     apiKey,
		baseURL:    openWeatherBaseURL,
		httpClient: newHTTPClient(timeout),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *weather) Kind() model.CommandKind {
	return model.KindWeather
}

type openWeatherResponse struct {
	Name    string `json:"name"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
}

func (w *weather) Resolve(ctx context.Context, query string) *model.LookupResult {
	text, err := w.resolve(ctx, query)
	if err != nil {
		return model.NewLookupFailure(model.KindWeather, query, err)
	}
	return model.NewLookupResult(model.KindWeather, query, text)
}

func (w *weather) resolve(ctx context.Context, city string) (string, error) {
	if city == "" {
		return "", goerr.Wrap(model.ErrInvalidArgument, "city is empty")
	}
	if w.apiKey == "" {
		return "", goerr.Wrap(model.ErrUnauthorized, "OpenWeather API key is not configured")
	}

	q := url.Values{}
	q.Set("q", city)
	q.Set("appid", w.apiKey)
	q.Set("units", "metric")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.baseURL+"/weather?"+q.Encode(), nil)
	if err != nil {
		return "", goerr.Wrap(err, "failed to create request")
	}

	resp, err := doWithRetry(w.httpClient, req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", classifyStatus(resp)
	}

	var data openWeatherResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", goerr.Wrap(model.ErrMalformed, "failed to decode weather response")
	}
	if len(data.Weather) == 0 {
		return "", goerr.Wrap(model.ErrMalformed, "weather response has no conditions", goerr.V("city", city))
	}

	return fmt.Sprintf("Weather in %s: %s, %.1f°C (feels like %.1f°C), humidity %d%%",
		city, data.Weather[0].Description, data.Main.Temp, data.Main.FeelsLike, data.Main.Humidity), nil
}
