package notify

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/fenilsonani/dupsweep/internal/config"
	"github.com/fenilsonani/dupsweep/internal/models"
)

func report(dryRun bool, failures int) *models.DeletionReport {
	r := &models.DeletionReport{ID: "r1", DryRun: dryRun, Duration: 1500 * time.Millisecond}
	r.Outcomes = append(r.Outcomes,
		models.DeletionOutcome{ItemID: "p2", Category: models.CategoryPhoto, Succeeded: true},
		models.DeletionOutcome{ItemID: "c2", Category: models.CategoryContact, Succeeded: true},
	)
	for i := 0; i < failures; i++ {
		r.Outcomes = append(r.Outcomes, models.DeletionOutcome{
			ItemID: "p9", Category: models.CategoryPhoto, Err: errors.New("gone"),
		})
	}
	return r
}

type capture struct {
	calls  int
	method string
	header http.Header
	msg    Message
}

func newServer(t *testing.T, status int) (*httptest.Server, *capture) {
	t.Helper()
	c := &capture{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.calls++
		c.method = r.Method
		c.header = r.Header.Clone()
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &c.msg); err != nil {
			t.Errorf("bad payload: %v", err)
		}
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv, c
}

func enabled(url string) config.NotificationConfig {
	return config.NotificationConfig{
		Enabled:   true,
		OnSuccess: true,
		OnFailure: true,
		Webhook: config.WebhookConfig{
			URL:     url,
			Headers: map[string]string{"X-Token": "abc"},
		},
	}
}

func TestDeletionFinished(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*config.NotificationConfig)
		report    *models.DeletionReport
		wantCalls int
		wantType  string
	}{
		{"success", nil, report(false, 0), 1, "deletion_success"},
		{"failure", nil, report(false, 1), 1, "deletion_failure"},
		{"dry run skipped", nil, report(true, 0), 0, ""},
		{"disabled", func(c *config.NotificationConfig) { c.Enabled = false }, report(false, 0), 0, ""},
		{"success muted", func(c *config.NotificationConfig) { c.OnSuccess = false }, report(false, 0), 0, ""},
		{"failure muted", func(c *config.NotificationConfig) { c.OnFailure = false }, report(false, 2), 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, got := newServer(t, http.StatusOK)
			cfg := enabled(srv.URL)
			if tt.mutate != nil {
				tt.mutate(&cfg)
			}

			New(cfg, nil).DeletionFinished(context.Background(), tt.report)

			if got.calls != tt.wantCalls {
				t.Fatalf("calls = %d, want %d", got.calls, tt.wantCalls)
			}
			if tt.wantCalls == 0 {
				return
			}
			if got.msg.Type != tt.wantType {
				t.Errorf("type = %q, want %q", got.msg.Type, tt.wantType)
			}
			if got.method != http.MethodPost {
				t.Errorf("method = %s, want POST", got.method)
			}
			if got.header.Get("X-Token") != "abc" {
				t.Error("custom header not sent")
			}
			if got.header.Get("Content-Type") != "application/json" {
				t.Error("content type not set")
			}
			if got.msg.Data["report_id"] != "r1" {
				t.Errorf("report_id = %v", got.msg.Data["report_id"])
			}
		})
	}
}

func TestSendStatusError(t *testing.T) {
	srv, _ := newServer(t, http.StatusBadGateway)
	n := New(enabled(srv.URL), nil)

	err := n.Send(context.Background(), &Message{Title: "x"})
	if err == nil {
		t.Fatal("expected an error for a 502 response")
	}
}

func TestSendHonorsContext(t *testing.T) {
	srv, got := newServer(t, http.StatusOK)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := New(enabled(srv.URL), nil).Send(ctx, &Message{}); err == nil {
		t.Error("expected an error for a cancelled context")
	}
	if got.calls != 0 {
		t.Errorf("calls = %d, want 0", got.calls)
	}
}

func TestNilNotifier(t *testing.T) {
	var n *Notifier
	n.DeletionFinished(context.Background(), report(false, 0))
}
