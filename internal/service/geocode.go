package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/tablefolk/api/internal/model"
)

// GeocodeService resolves free-form place queries to coordinates and
// coordinates back to labels through a Nominatim-style endpoint. Results
// are cached in an LRU keyed by the normalized query, since clients tend
// to look up the same venues repeatedly.
type GeocodeService struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	cache      *lru.Cache[string, []model.GeocodeResult]
}

// GeocodeServiceConfig holds configuration for the geocode service
type GeocodeServiceConfig struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
	CacheSize int
}

// NewGeocodeService creates a new geocode service
func NewGeocodeService(cfg GeocodeServiceConfig) (*GeocodeService, error) {
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = 512
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}

	cache, err := lru.New[string, []model.GeocodeResult](cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating geocode cache: %w", err)
	}

	return &GeocodeService{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		cache: cache,
	}, nil
}

// nominatimResult is the upstream response shape
type nominatimResult struct {
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
}

// Search resolves a free-form query to candidate locations
func (s *GeocodeService) Search(ctx context.Context, query string, limit int) ([]model.GeocodeResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrNoGeocodeResults
	}
	if limit <= 0 || limit > 10 {
		limit = 5
	}

	cacheKey := fmt.Sprintf("s:%d:%s", limit, strings.ToLower(query))
	if cached, ok := s.cache.Get(cacheKey); ok {
		return cached, nil
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "jsonv2")
	params.Set("limit", strconv.Itoa(limit))

	results, err := s.fetch(ctx, s.baseURL+"/search?"+params.Encode())
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, ErrNoGeocodeResults
	}

	s.cache.Add(cacheKey, results)
	return results, nil
}

// Reverse resolves coordinates to the nearest labeled place
func (s *GeocodeService) Reverse(ctx context.Context, lat, lng float64) (*model.GeocodeResult, error) {
	cacheKey := fmt.Sprintf("r:%.5f:%.5f", lat, lng)
	if cached, ok := s.cache.Get(cacheKey); ok && len(cached) > 0 {
		return &cached[0], nil
	}

	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(lat, 'f', 6, 64))
	params.Set("lon", strconv.FormatFloat(lng, 'f', 6, 64))
	params.Set("format", "jsonv2")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/reverse?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeocodeUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, ErrGeocodeUnavailable
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeocodeUnavailable, err)
	}

	var raw nominatimResult
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, ErrGeocodeUnavailable
	}
	result, ok := convertNominatim(raw)
	if !ok {
		return nil, ErrNoGeocodeResults
	}

	s.cache.Add(cacheKey, []model.GeocodeResult{result})
	return &result, nil
}

// fetch runs a search request and converts the result list
func (s *GeocodeService) fetch(ctx context.Context, fullURL string) ([]model.GeocodeResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeocodeUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, ErrGeocodeUnavailable
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeocodeUnavailable, err)
	}

	var raw []nominatimResult
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, ErrGeocodeUnavailable
	}

	results := make([]model.GeocodeResult, 0, len(raw))
	for _, item := range raw {
		if result, ok := convertNominatim(item); ok {
			results = append(results, result)
		}
	}
	return results, nil
}

// convertNominatim parses the upstream string coordinates
func convertNominatim(raw nominatimResult) (model.GeocodeResult, bool) {
	lat, errLat := strconv.ParseFloat(raw.Lat, 64)
	lng, errLng := strconv.ParseFloat(raw.Lon, 64)
	if errLat != nil || errLng != nil || raw.DisplayName == "" {
		return model.GeocodeResult{}, false
	}
	return model.GeocodeResult{
		Label: raw.DisplayName,
		Lat:   lat,
		Lng:   lng,
	}, true
}

// CacheLen reports how many entries the cache holds (used in tests)
func (s *GeocodeService) CacheLen() int {
	return s.cache.Len()
}
