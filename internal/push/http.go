package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/riverwatchhq/riverwatch/pkg/metrics"
)

const defaultSendTimeout = 10 * time.Second

// Config holds push gateway connection settings.
type Config struct {
	GatewayURL string
	APIKey     string
	Timeout    time.Duration
}

// HTTPSender posts notifications to the push gateway.
type HTTPSender struct {
	gatewayURL string
	apiKey     string
	httpClient *http.Client
}

// NewHTTPSender builds a sender against the configured gateway.
func NewHTTPSender(cfg Config) (*HTTPSender, error) {
	if strings.TrimSpace(cfg.GatewayURL) == "" {
		return nil, fmt.Errorf("push: gateway url is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}
	return &HTTPSender{
		gatewayURL: strings.TrimRight(cfg.GatewayURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// Send delivers one notification. Gateway rejections surface as errors so
// callers can record the failure against the alert.
func (s *HTTPSender) Send(ctx context.Context, token, title, body string, data map[string]string) error {
	payload, err := json.Marshal(sendRequest{
		Token: token,
		Title: title,
		Body:  body,
		Data:  data,
	})
	if err != nil {
		return fmt.Errorf("push: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.gatewayURL+"/v1/send", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("push: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if s.apiKey != "" {
		req.Header.Set("X-Api-Key", s.apiKey)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		metrics.PushSends.WithLabelValues("error").Inc()
		return fmt.Errorf("push: send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.PushSends.WithLabelValues("error").Inc()
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("push: gateway returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	metrics.PushSends.WithLabelValues("ok").Inc()
	return nil
}

type sendRequest struct {
	Token string            `json:"token"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}
