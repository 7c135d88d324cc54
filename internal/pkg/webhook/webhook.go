// Package webhook posts dossier events to an external automation endpoint.
//
// Delivery is best effort: one attempt, no retry, and failures are logged and
// swallowed so they can never affect the transition that produced the event.
package webhook

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

// Party is a named participant of a dossier
type Party struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// University is the host institution of a dossier
type University struct {
	Name    string `json:"name"`
	City    string `json:"city"`
	Country string `json:"country"`
}

// Data is the application snapshot carried by an event
type Data struct {
	ApplicationID       string     `json:"application_id"`
	Status              string     `json:"status"`
	University          University `json:"university"`
	Student             Party      `json:"student"`
	MajorHead           Party      `json:"major_head"`
	InternationalEmails []string   `json:"international_emails"`
	MessagePreview      string     `json:"message_preview,omitempty"`
}

// Payload is the JSON body posted to the webhook URL
type Payload struct {
	Event     string `json:"event"`
	Timestamp string `json:"timestamp"`
	Data      Data   `json:"data"`
}

// NewPayload stamps data with event and the current time in ISO-8601
func NewPayload(event string, data Data, now time.Time) Payload {
	if data.InternationalEmails == nil {
		data.InternationalEmails = []string{}
	}
	return Payload{
		Event:     event,
		Timestamp: now.UTC().Format(time.RFC3339Nano),
		Data:      data,
	}
}

// Client sends payloads to the configured URL. A client without URL is a no-op.
type Client struct {
	url    string
	http   *resty.Client
	logger zerolog.Logger
}

// NewClient creates a webhook client with the given request timeout
func NewClient(url string, timeout time.Duration, logger zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		url: url,
		http: resty.New().
			SetTimeout(timeout).
			SetHeader("Content-Type", "application/json").
			SetRetryCount(0),
		logger: logger.With().Str("component", "webhook").Logger(),
	}
}

// Configured reports whether an outbound URL is set
func (c *Client) Configured() bool {
	return c != nil && c.url != ""
}

// Send posts payload once. It never returns an error; the outcome is only logged.
// It reports whether the endpoint accepted the payload.
func (c *Client) Send(ctx context.Context, payload Payload) bool {
	if !c.Configured() {
		return false
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(payload).
		Post(c.url)
	if err != nil {
		c.logger.Error().Err(err).Str("event", payload.Event).Msg("Failed to send webhook")
		return false
	}
	if resp.IsError() {
		c.logger.Warn().
			Int("status", resp.StatusCode()).
			Str("event", payload.Event).
			Str("applicationID", payload.Data.ApplicationID).
			Msg("Webhook endpoint returned an error")
		return false
	}

	c.logger.Debug().Str("event", payload.Event).Str("applicationID", payload.Data.ApplicationID).Msg("Webhook delivered")
	return true
}
