package test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/ccollicutt/logdigest/pkg/config"
	"github.com/ccollicutt/logdigest/pkg/digest"
	"github.com/ccollicutt/logdigest/pkg/parser"
	"github.com/ccollicutt/logdigest/pkg/webhook"
)

// TestIntegration_WebhookSite delivers a real report to webhook.site.
// This test is skipped by default. Set WEBHOOK_INTEGRATION_TEST=1 to run.
func TestIntegration_WebhookSite(t *testing.T) {
	if os.Getenv("WEBHOOK_INTEGRATION_TEST") != "1" {
		t.Skip("Skipping webhook.site integration test. Set WEBHOOK_INTEGRATION_TEST=1 to run")
	}

	chdir(t)
	requireFile(t, sampleLog)

	t.Log("Creating webhook.site token...")
	token, err := createWebhookSiteToken()
	if err != nil {
		t.Fatalf("Failed to create webhook.site token: %v", err)
	}
	t.Logf("Created webhook URL: https://webhook.site/%s", token.UUID)

	defer func() {
		if err := deleteWebhookSiteToken(token.UUID); err != nil {
			t.Logf("Warning: failed to delete token: %v", err)
		}
	}()

	ctx := context.Background()
	res, err := digest.Analyze(ctx, parser.NewFileSource(sampleLog), digest.DefaultTop)
	if err != nil {
		t.Fatalf("Analysis failed: %v", err)
	}

	target := config.WebhookConfig{
		Name:    "webhook.site",
		URL:     fmt.Sprintf("https://webhook.site/%s", token.UUID),
		Trigger: config.WebhookTriggerAlways,
		Timeout: 10 * time.Second,
	}
	deliveries := webhook.NewClient().Notify(ctx, res.Report, []config.WebhookConfig{target})
	if len(deliveries) != 1 || !deliveries[0].Success() {
		t.Fatalf("delivery failed: %+v", deliveries)
	}

	t.Log("Waiting for webhook delivery...")
	time.Sleep(2 * time.Second)

	requests, err := getWebhookSiteRequests(token.UUID)
	if err != nil {
		t.Fatalf("Failed to get webhook requests: %v", err)
	}
	if len(requests.Data) == 0 {
		t.Fatal("No webhook requests received at webhook.site")
	}

	req := requests.Data[0]
	if req.Method != http.MethodPost {
		t.Errorf("Expected POST method, got %s", req.Method)
	}
	if ct := req.GetHeader("content-type"); !strings.Contains(ct, "application/json") {
		t.Errorf("Expected application/json content-type, got %s", ct)
	}
	if ua := req.GetHeader("user-agent"); ua != "logdigest-webhook" {
		t.Errorf("User-Agent = %q", ua)
	}

	var payload webhook.Payload
	if err := json.Unmarshal([]byte(req.Content), &payload); err != nil {
		t.Fatalf("Failed to parse webhook payload: %v", err)
	}
	if payload.Event != webhook.EventAnalysisCompleted {
		t.Errorf("Event = %q", payload.Event)
	}
	if payload.ErrorLines != 4 {
		t.Errorf("ErrorLines = %d, want 4", payload.ErrorLines)
	}
	if payload.Report != res.Text {
		t.Errorf("payload report differs from local report:\n%s", payload.Report)
	}
}

// webhook.site API types
type webhookSiteToken struct {
	UUID string `json:"uuid"`
}

type webhookSiteRequests struct {
	Data []webhookSiteRequest `json:"data"`
}

type webhookSiteRequest struct {
	UUID      string          `json:"uuid"`
	Method    string          `json:"method"`
	Content   string          `json:"content"`
	Headers   json.RawMessage `json:"headers"`
	CreatedAt string          `json:"created_at"`
}

func (r *webhookSiteRequest) GetHeader(name string) string {
	var headers map[string]interface{}
	if err := json.Unmarshal(r.Headers, &headers); err != nil {
		return ""
	}
	if val, ok := headers[name]; ok {
		switch v := val.(type) {
		case string:
			return v
		case []interface{}:
			if len(v) > 0 {
				if s, ok := v[0].(string); ok {
					return s
				}
			}
		}
	}
	return ""
}

func createWebhookSiteToken() (*webhookSiteToken, error) {
	resp, err := http.Post("https://webhook.site/token", "application/json", nil)
	if err != nil {
		return nil, fmt.Errorf("POST /token failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var token webhookSiteToken
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &token, nil
}

func getWebhookSiteRequests(uuid string) (*webhookSiteRequests, error) {
	url := fmt.Sprintf("https://webhook.site/token/%s/requests", uuid)
	resp, err := http.Get(url)
	if err != nil {
		return nil, fmt.Errorf("GET requests failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var requests webhookSiteRequests
	if err := json.NewDecoder(resp.Body).Decode(&requests); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &requests, nil
}

func deleteWebhookSiteToken(uuid string) error {
	req, err := http.NewRequest(http.MethodDelete, fmt.Sprintf("https://webhook.site/token/%s", uuid), nil)
	if err != nil {
		return err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return nil
}
