// Package notify posts deletion summaries to a webhook.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/fenilsonani/dupsweep/internal/config"
	"github.com/fenilsonani/dupsweep/internal/models"
)

// Message is the webhook payload
type Message struct {
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	Timestamp time.Time      `json:"timestamp"`
	Type      string         `json:"type"` // "deletion_success" or "deletion_failure"
	Data      map[string]any `json:"data,omitempty"`
}

// Notifier sends deletion notifications
type Notifier struct {
	config config.NotificationConfig
	client *http.Client
	log    *zap.Logger
}

// New creates a notifier. A nil logger discards output.
func New(cfg config.NotificationConfig, log *zap.Logger) *Notifier {
	if log == nil {
		log = zap.NewNop()
	}
	timeout := cfg.Webhook.Timeout.Std()
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Notifier{
		config: cfg,
		client: &http.Client{Timeout: timeout},
		log:    log.Named("notify"),
	}
}

// DeletionFinished notifies about a completed delete request. Dry runs are
// never reported. Send failures are logged, not returned.
func (n *Notifier) DeletionFinished(ctx context.Context, report *models.DeletionReport) {
	if n == nil || !n.config.Enabled || report == nil || report.DryRun {
		return
	}

	msg := n.buildMessage(report)
	if msg == nil {
		return
	}

	if err := n.Send(ctx, msg); err != nil {
		n.log.Error("Failed to send webhook notification", zap.Error(err))
		return
	}
	n.log.Info("Webhook notification sent", zap.String("title", msg.Title))
}

func (n *Notifier) buildMessage(report *models.DeletionReport) *Message {
	failed := report.FailedCount()
	if failed > 0 && !n.config.OnFailure {
		return nil
	}
	if failed == 0 && !n.config.OnSuccess {
		return nil
	}

	perCategory := make(map[string]map[string]int)
	for category, c := range report.ByCategory() {
		perCategory[category.String()] = map[string]int{"deleted": c[0], "failed": c[1]}
	}

	msg := &Message{
		Timestamp: time.Now(),
		Data: map[string]any{
			"report_id":  report.ID,
			"requested":  len(report.Outcomes),
			"deleted":    report.SucceededCount(),
			"failed":     failed,
			"duration":   report.Duration.String(),
			"categories": perCategory,
		},
	}

	if failed > 0 {
		msg.Type = "deletion_failure"
		msg.Title = "Duplicate cleanup finished with errors"
		msg.Message = fmt.Sprintf("Deleted %d of %d duplicates, %d failed",
			report.SucceededCount(), len(report.Outcomes), failed)
	} else {
		msg.Type = "deletion_success"
		msg.Title = "Duplicate cleanup completed"
		msg.Message = fmt.Sprintf("Deleted %d duplicates in %s",
			report.SucceededCount(), report.Duration.Round(time.Millisecond))
	}
	return msg
}

// Send delivers one message to the configured webhook
func (n *Notifier) Send(ctx context.Context, msg *Message) error {
	cfg := n.config.Webhook

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	method := cfg.Method
	if method == "" {
		method = http.MethodPost
	}

	req, err := http.NewRequestWithContext(ctx, method, cfg.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for key, value := range cfg.Headers {
		req.Header.Set(key, value)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
