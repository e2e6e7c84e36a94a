package geocoding

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/Pratham722007/Hackout-25/internal/config"
	"github.com/cenkalti/backoff/v4"
)

// Geocoder resolves coordinates into a human-readable place name.
type Geocoder interface {
	ReverseGeocode(latitude, longitude float64) (string, error)
}

type nominatimResponse struct {
	DisplayName string `json:"display_name"`
	Address     struct {
		City    string `json:"city"`
		Town    string `json:"town"`
		Village string `json:"village"`
		State   string `json:"state"`
		Country string `json:"country"`
	} `json:"address"`
}

// HTTPGeocoder queries a Nominatim-compatible reverse geocoding endpoint.
type HTTPGeocoder struct {
	baseURL   string
	userAgent string
	client    *http.Client
}

func NewHTTPGeocoder(cfg *config.Config) *HTTPGeocoder {
	return &HTTPGeocoder{
		baseURL:   cfg.GeocodingURL,
		userAgent: cfg.GeocodingUserAgent,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (g *HTTPGeocoder) ReverseGeocode(latitude, longitude float64) (string, error) {
	params := url.Values{}
	params.Set("lat", fmt.Sprintf("%.6f", latitude))
	params.Set("lon", fmt.Sprintf("%.6f", longitude))
	params.Set("format", "json")

	var result nominatimResponse
	operation := func() error {
		httpReq, err := http.NewRequest("GET", g.baseURL+"?"+params.Encode(), nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		httpReq.Header.Set("User-Agent", g.userAgent)

		httpResp, err := g.client.Do(httpReq)
		if err != nil {
			return err
		}
		defer httpResp.Body.Close()

		if httpResp.StatusCode != http.StatusOK {
			return fmt.Errorf("geocoding error (status %d)", httpResp.StatusCode)
		}
		return json.NewDecoder(httpResp.Body).Decode(&result)
	}

	policy := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 2)
	if err := backoff.Retry(operation, policy); err != nil {
		return "", err
	}

	name := placeName(result)
	slog.Debug("coordinates resolved", "lat", latitude, "lon", longitude, "place", name)
	return name, nil
}

func placeName(r nominatimResponse) string {
	locality := r.Address.City
	if locality == "" {
		locality = r.Address.Town
	}
	if locality == "" {
		locality = r.Address.Village
	}
	if locality != "" && r.Address.Country != "" {
		return locality + ", " + r.Address.Country
	}
	return r.DisplayName
}

// NoopGeocoder leaves location names empty.
type NoopGeocoder struct{}

func (NoopGeocoder) ReverseGeocode(latitude, longitude float64) (string, error) {
	return "", nil
}
