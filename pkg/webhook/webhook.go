// Package webhook delivers analysis reports to HTTP endpoints.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ccollicutt/logdigest/pkg/config"
	"github.com/ccollicutt/logdigest/pkg/output"
)

// EventAnalysisCompleted is the event name carried by every payload.
const EventAnalysisCompleted = "analysis.completed"

// maxResponseBody bounds how much of an endpoint's reply is kept.
const maxResponseBody = 1 << 20

// Payload is the JSON body POSTed to an endpoint.
type Payload struct {
	Event      string         `json:"event"`
	Source     string         `json:"source,omitempty"`
	ErrorLines int            `json:"error_lines"`
	Report     string         `json:"report"`
	Analysis   *output.Report `json:"analysis"`
}

// NewPayload wraps a report for delivery.
func NewPayload(report *output.Report) *Payload {
	return &Payload{
		Event:      EventAnalysisCompleted,
		Source:     report.Metadata.Source,
		ErrorLines: report.ErrorLines(),
		Report:     output.Render(report),
		Analysis:   report,
	}
}

// Client sends payloads to webhook endpoints.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a new webhook client.
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{},
	}
}

// Delivery is the outcome of one POST.
type Delivery struct {
	Name       string
	StatusCode int
	Body       string
	Duration   time.Duration
	Error      error
}

// Success returns true if the endpoint answered with a 2xx status.
func (d *Delivery) Success() bool {
	return d.Error == nil && d.StatusCode >= 200 && d.StatusCode < 300
}

// ShouldFire reports whether a webhook with the given trigger fires for report.
// An unknown trigger behaves like on_errors.
func ShouldFire(trigger config.WebhookTrigger, report *output.Report) bool {
	switch trigger {
	case config.WebhookTriggerAlways:
		return true
	case config.WebhookTriggerNever:
		return false
	default:
		return report.HasErrors()
	}
}

// Notify sends report to every target whose trigger fires and returns one
// Delivery per attempted target, in order.
func (c *Client) Notify(ctx context.Context, report *output.Report, targets []config.WebhookConfig) []*Delivery {
	payload := NewPayload(report)

	var deliveries []*Delivery
	for _, t := range targets {
		if !ShouldFire(t.Trigger, report) {
			continue
		}
		d := c.Send(ctx, payload, t)
		deliveries = append(deliveries, d)
	}
	return deliveries
}

// Send posts payload to a single target.
func (c *Client) Send(ctx context.Context, payload *Payload, target config.WebhookConfig) *Delivery {
	start := time.Now()
	d := &Delivery{Name: target.Name}
	if d.Name == "" {
		d.Name = target.URL
	}
	fail := func(err error) *Delivery {
		d.Error = err
		d.Duration = time.Since(start)
		return d
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fail(fmt.Errorf("marshaling payload: %w", err))
	}

	timeout := target.Timeout
	if timeout <= 0 {
		timeout = config.DefaultWebhookTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.URL, bytes.NewReader(body))
	if err != nil {
		return fail(fmt.Errorf("creating request: %w", err))
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "logdigest-webhook")
	if target.Token != "" {
		req.Header.Set("Authorization", "Bearer "+target.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fail(fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	reply, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return fail(fmt.Errorf("reading response: %w", err))
	}

	d.StatusCode = resp.StatusCode
	d.Body = string(reply)
	d.Duration = time.Since(start)

	if d.StatusCode >= 400 {
		d.Error = fmt.Errorf("webhook returned status %d", d.StatusCode)
	}

	return d
}
