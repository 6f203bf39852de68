package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newGeocodeTestServer(t *testing.T, searchBody, reverseBody string, status int, hits *int) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*hits++
		if r.URL.Query().Get("format") != "jsonv2" {
			t.Errorf("expected jsonv2 format parameter, got %q", r.URL.Query().Get("format"))
		}
		w.WriteHeader(status)
		switch r.URL.Path {
		case "/search":
			w.Write([]byte(searchBody))
		case "/reverse":
			w.Write([]byte(reverseBody))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func newTestGeocodeService(t *testing.T, baseURL string) *GeocodeService {
	t.Helper()
	svc, err := NewGeocodeService(GeocodeServiceConfig{
		BaseURL:   baseURL,
		UserAgent: "tablefolk-test/1.0",
	})
	if err != nil {
		t.Fatalf("NewGeocodeService failed: %v", err)
	}
	return svc
}

func TestGeocodeService_Search(t *testing.T) {
	hits := 0
	body := `[{"display_name":"Amsterdam, Netherlands","lat":"52.3676","lon":"4.9041"},
	          {"display_name":"Amsterdam, NY, USA","lat":"42.9387","lon":"-74.1907"}]`
	server := newGeocodeTestServer(t, body, "{}", http.StatusOK, &hits)
	svc := newTestGeocodeService(t, server.URL)

	results, err := svc.Search(context.Background(), "Amsterdam", 5)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Label != "Amsterdam, Netherlands" {
		t.Errorf("unexpected label %q", results[0].Label)
	}
	if results[0].Lat != 52.3676 || results[0].Lng != 4.9041 {
		t.Errorf("unexpected coordinates %f, %f", results[0].Lat, results[0].Lng)
	}
}

func TestGeocodeService_Search_CachesResults(t *testing.T) {
	hits := 0
	body := `[{"display_name":"Utrecht, Netherlands","lat":"52.0907","lon":"5.1214"}]`
	server := newGeocodeTestServer(t, body, "{}", http.StatusOK, &hits)
	svc := newTestGeocodeService(t, server.URL)

	for i := 0; i < 3; i++ {
		if _, err := svc.Search(context.Background(), "Utrecht", 5); err != nil {
			t.Fatalf("Search failed: %v", err)
		}
	}
	if hits != 1 {
		t.Errorf("expected 1 upstream request, got %d", hits)
	}
	if svc.CacheLen() != 1 {
		t.Errorf("expected 1 cache entry, got %d", svc.CacheLen())
	}

	// A different limit is a different cache key
	if _, err := svc.Search(context.Background(), "Utrecht", 3); err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if hits != 2 {
		t.Errorf("expected 2 upstream requests, got %d", hits)
	}
}

func TestGeocodeService_Search_NoResults(t *testing.T) {
	hits := 0
	server := newGeocodeTestServer(t, "[]", "{}", http.StatusOK, &hits)
	svc := newTestGeocodeService(t, server.URL)

	if _, err := svc.Search(context.Background(), "xzzqqv", 5); err != ErrNoGeocodeResults {
		t.Errorf("expected ErrNoGeocodeResults, got %v", err)
	}
	if _, err := svc.Search(context.Background(), "   ", 5); err != ErrNoGeocodeResults {
		t.Errorf("expected ErrNoGeocodeResults for blank query, got %v", err)
	}
}

func TestGeocodeService_Search_UpstreamError(t *testing.T) {
	hits := 0
	server := newGeocodeTestServer(t, "", "", http.StatusServiceUnavailable, &hits)
	svc := newTestGeocodeService(t, server.URL)

	if _, err := svc.Search(context.Background(), "Amsterdam", 5); err != ErrGeocodeUnavailable {
		t.Errorf("expected ErrGeocodeUnavailable, got %v", err)
	}
}

func TestGeocodeService_Reverse(t *testing.T) {
	hits := 0
	reverseBody := `{"display_name":"Dam Square, Amsterdam","lat":"52.3731","lon":"4.8926"}`
	server := newGeocodeTestServer(t, "[]", reverseBody, http.StatusOK, &hits)
	svc := newTestGeocodeService(t, server.URL)

	result, err := svc.Reverse(context.Background(), 52.3731, 4.8926)
	if err != nil {
		t.Fatalf("Reverse failed: %v", err)
	}
	if result.Label != "Dam Square, Amsterdam" {
		t.Errorf("unexpected label %q", result.Label)
	}

	// Second lookup at the same coordinates comes from the cache
	if _, err := svc.Reverse(context.Background(), 52.3731, 4.8926); err != nil {
		t.Fatalf("cached Reverse failed: %v", err)
	}
	if hits != 1 {
		t.Errorf("expected 1 upstream request, got %d", hits)
	}
}
