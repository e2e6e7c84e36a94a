package classifier

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/Pratham722007/Hackout-25/internal/config"
	"github.com/cenkalti/backoff/v4"
)

// Scorer estimates how severe an environmental report is from its text.
// Scores are 0-100.
type Scorer interface {
	Score(description, reportType string) (float64, error)
}

type scoreRequest struct {
	Description string `json:"description"`
	ReportType  string `json:"report_type"`
}

type scoreResponse struct {
	Confidence float64 `json:"confidence"`
	Label      string  `json:"label"`
}

// HTTPScorer calls the external ML classification service. Transient
// failures are retried with exponential backoff before giving up.
type HTTPScorer struct {
	url    string
	apiKey string
	client *http.Client
}

func NewHTTPScorer(cfg *config.Config) *HTTPScorer {
	return &HTTPScorer{
		url:    cfg.ClassifierURL,
		apiKey: cfg.ClassifierAPIKey,
		client: &http.Client{Timeout: cfg.ClassifierTimeout},
	}
}

func (s *HTTPScorer) Score(description, reportType string) (float64, error) {
	if s.url == "" {
		return 0, fmt.Errorf("classifier not configured")
	}

	reqBody, err := json.Marshal(scoreRequest{Description: description, ReportType: reportType})
	if err != nil {
		return 0, fmt.Errorf("failed to encode classifier request: %w", err)
	}

	var result scoreResponse
	operation := func() error {
		httpReq, err := http.NewRequest("POST", s.url, bytes.NewBuffer(reqBody))
		if err != nil {
			return backoff.Permanent(err)
		}
		httpReq.Header.Set("Content-Type", "application/json")
		if s.apiKey != "" {
			httpReq.Header.Set("Authorization", "Bearer "+s.apiKey)
		}

		httpResp, err := s.client.Do(httpReq)
		if err != nil {
			return err
		}
		defer httpResp.Body.Close()

		if httpResp.StatusCode >= 500 {
			bodyBytes, _ := io.ReadAll(httpResp.Body)
			return fmt.Errorf("classifier error (status %d): %s", httpResp.StatusCode, string(bodyBytes))
		}
		if httpResp.StatusCode != http.StatusOK {
			bodyBytes, _ := io.ReadAll(httpResp.Body)
			return backoff.Permanent(fmt.Errorf("classifier rejected request (status %d): %s", httpResp.StatusCode, string(bodyBytes)))
		}
		return json.NewDecoder(httpResp.Body).Decode(&result)
	}

	policy := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3)
	if err := backoff.Retry(operation, policy); err != nil {
		return 0, err
	}

	slog.Debug("report classified", "label", result.Label, "confidence", result.Confidence)
	return result.Confidence, nil
}

// NoopScorer is used when no classifier endpoint is configured.
type NoopScorer struct{}

func (NoopScorer) Score(description, reportType string) (float64, error) {
	return 0, nil
}

// FromConfig picks an implementation based on whether the endpoint is set.
func FromConfig(cfg *config.Config) Scorer {
	if cfg.ClassifierURL == "" {
		slog.Warn("classifier endpoint not configured, confidence scoring disabled")
		return NoopScorer{}
	}
	return NewHTTPScorer(cfg)
}
