package lookup_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/jarvis-assistant/jarvis/pkg/lookup"
	"github.com/jarvis-assistant/jarvis/pkg/model"
)

const testTimeout = 2 * time.Second

func TestWeatherSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gt.Equal(t, r.URL.Query().Get("q"), "London")
		gt.Equal(t, r.URL.Query().Get("units"), "metric")
		w.Write([]byte(`{
			"name": "London",
			"weather": [{"description": "scattered clouds"}],
			"main": {"temp": 18.2, "feels_like": 17.8, "humidity": 72}
		}`))
	}))
	defer srv.Close()

	h := lookup.NewWeather("test-key", testTimeout, lookup.WithWeatherBaseURL(srv.URL))
	res := h.Resolve(context.Background(), "London")

	gt.True(t, res.Succeeded)
	gt.Equal(t, res.Kind, model.KindWeather)
	gt.S(t, res.Text).Contains("London")
	gt.S(t, res.Text).Contains("scattered clouds")
	gt.S(t, res.Text).Contains("18.2")
}

func TestWeatherMissingKey(t *testing.T) {
	h := lookup.NewWeather("", testTimeout)
	res := h.Resolve(context.Background(), "London")

	gt.False(t, res.Succeeded)
	gt.Equal(t, res.ErrKind, model.ErrKindUnauthorized)
}

func TestWeatherUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	h := lookup.NewWeather("bad-key", testTimeout, lookup.WithWeatherBaseURL(srv.URL))
	res := h.Resolve(context.Background(), "London")

	gt.False(t, res.Succeeded)
	gt.Equal(t, res.ErrKind, model.ErrKindUnauthorized)
}

func TestWeatherUnreachable(t *testing.T) {
	// A closed server simulates a network failure; the handler must classify
	// it as unreachable after its single retry, never hang or panic.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	h := lookup.NewWeather("key", testTimeout, lookup.WithWeatherBaseURL(srv.URL))
	res := h.Resolve(context.Background(), "London")

	gt.False(t, res.Succeeded)
	gt.Equal(t, res.ErrKind, model.ErrKindUnreachable)
}

func TestWeatherRetriesOnceOnTransportFailure(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			// Drop the first connection mid-request.
			hj, ok := w.(http.Hijacker)
			gt.True(t, ok)
			conn, _, err := hj.Hijack()
			gt.NoError(t, err)
			conn.Close()
			return
		}
		w.Write([]byte(`{"weather":[{"description":"clear sky"}],"main":{"temp":20,"feels_like":19,"humidity":50}}`))
	}))
	defer srv.Close()

	h := lookup.NewWeather("key", testTimeout, lookup.WithWeatherBaseURL(srv.URL))
	res := h.Resolve(context.Background(), "Paris")

	gt.True(t, res.Succeeded)
	gt.Equal(t, calls.Load(), int32(2))
}

func TestWeatherRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	h := lookup.NewWeather("key", testTimeout, lookup.WithWeatherBaseURL(srv.URL))
	res := h.Resolve(context.Background(), "London")

	gt.False(t, res.Succeeded)
	gt.Equal(t, res.ErrKind, model.ErrKindRateLimited)
}

func TestShodanSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gt.S(t, r.URL.Path).Contains("/shodan/host/8.8.8.8")
		w.Write([]byte(`{
			"ip_str": "8.8.8.8",
			"org": "Google LLC",
			"country_name": "United States",
			"ports": [53, 443],
			"hostnames": ["dns.google"]
		}`))
	}))
	defer srv.Close()

	h := lookup.NewShodan("test-key", testTimeout, lookup.WithShodanBaseURL(srv.URL))
	res := h.Resolve(context.Background(), "8.8.8.8")

	gt.True(t, res.Succeeded)
	gt.S(t, res.Text).Contains("8.8.8.8")
	gt.S(t, res.Text).Contains("Google LLC")
	gt.S(t, res.Text).Contains("53, 443")
	gt.S(t, res.Text).Contains("dns.google")
}

func TestShodanInvalidArgument(t *testing.T) {
	h := lookup.NewShodan("test-key", testTimeout)

	for _, query := range []string{"not-an-ip", "example.com", "999.1.2", ""} {
		res := h.Resolve(context.Background(), query)
		gt.False(t, res.Succeeded)
		gt.Equal(t, res.ErrKind, model.ErrKindInvalidArgument)
	}
}

func TestShodanMissingKey(t *testing.T) {
	h := lookup.NewShodan("", testTimeout)
	res := h.Resolve(context.Background(), "8.8.8.8")

	gt.False(t, res.Succeeded)
	gt.Equal(t, res.ErrKind, model.ErrKindUnauthorized)
}

func TestIPInfoSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gt.Equal(t, r.URL.Path, "/1.1.1.1")
		w.Write([]byte(`{
			"ip": "1.1.1.1",
			"city": "Sydney",
			"region": "New South Wales",
			"country": "AU",
			"org": "AS13335 Cloudflare, Inc."
		}`))
	}))
	defer srv.Close()

	h := lookup.NewIPInfo("", testTimeout, lookup.WithIPInfoBaseURL(srv.URL))
	res := h.Resolve(context.Background(), "1.1.1.1")

	gt.True(t, res.Succeeded)
	gt.S(t, res.Text).Contains("1.1.1.1")
	gt.S(t, res.Text).Contains("Sydney")
	gt.S(t, res.Text).Contains("Cloudflare")
}

func TestIPInfoNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	h := lookup.NewIPInfo("", testTimeout, lookup.WithIPInfoBaseURL(srv.URL))
	res := h.Resolve(context.Background(), "10.0.0.1")

	gt.False(t, res.Succeeded)
	gt.Equal(t, res.ErrKind, model.ErrKindNotFound)
}

func TestWikiSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gt.S(t, r.URL.Path).Contains("/page/summary/Alan_Turing")
		w.Write([]byte(`{"title": "Alan Turing", "extract": "Alan Turing was an English mathematician."}`))
	}))
	defer srv.Close()

	h := lookup.NewWiki(testTimeout, lookup.WithWikiBaseURL(srv.URL))
	res := h.Resolve(context.Background(), "Alan Turing")

	gt.True(t, res.Succeeded)
	gt.Equal(t, res.Text, "Alan Turing was an English mathematician.")
}

func TestWikiNoSummary(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"title": "Something", "extract": ""}`))
	}))
	defer srv.Close()

	h := lookup.NewWiki(testTimeout, lookup.WithWikiBaseURL(srv.URL))
	res := h.Resolve(context.Background(), "Something")

	gt.False(t, res.Succeeded)
	gt.Equal(t, res.ErrKind, model.ErrKindNotFound)
}

func TestRegistryLookup(t *testing.T) {
	weather := lookup.NewWeather("key", testTimeout)
	reg := lookup.NewRegistry(weather, lookup.NewWiki(testTimeout))

	gt.Equal(t, reg.Lookup(model.KindWeather), weather)
	gt.Nil(t, reg.Lookup(model.KindHostIntel))
}
