// Package notify delivers notifications produced by background tasks.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const defaultTimeout = 10 * time.Second

// Notifier posts notifications to a webhook. Without a webhook URL it only
// logs them.
type Notifier struct {
	url        string
	secret     string
	httpClient *http.Client
	log        zerolog.Logger
}

// New creates a Notifier. An empty url selects log-only delivery.
func New(url, secret string, httpClient *http.Client, log zerolog.Logger) *Notifier {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Notifier{
		url:        strings.TrimSpace(url),
		secret:     strings.TrimSpace(secret),
		httpClient: httpClient,
		log:        log.With().Str("component", "notifier").Logger(),
	}
}

type message struct {
	Event   string    `json:"event"`
	Payload any       `json:"payload"`
	SentAt  time.Time `json:"sent_at"`
}

// Notify delivers event. A non-2xx webhook response is an error.
func (n *Notifier) Notify(ctx context.Context, event string, payload any) error {
	if n.url == "" {
		n.log.Info().Str("type", event).Interface("payload", payload).Msg("notification.simulated")
		return nil
	}

	body, err := json.Marshal(message{Event: event, Payload: payload, SentAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-HireTrack-Event", event)
	if n.secret != "" {
		req.Header.Set("Authorization", "Bearer "+n.secret)
	}

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("send notification: webhook responded %d", resp.StatusCode)
	}
	n.log.Debug().Str("type", event).Msg("notification delivered")
	return nil
}
