// Package notify delivers alerts to an external channel. Delivery failure
// is the caller's to log; it must never block alert persistence.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/valmer/pricetracker/internal/tracker"
)

// Notifier publishes a persisted alert to its delivery channel.
type Notifier interface {
	Publish(ctx context.Context, alert *tracker.Alert) error
}

// LogNotifier writes alerts to the application log. The default channel
// when no webhook is configured.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Publish(_ context.Context, alert *tracker.Alert) error {
	n.logger.Info("price alert",
		zap.String("product_id", alert.ProductID),
		zap.String("alert_type", string(alert.AlertType)),
		zap.Float64("previous_price", alert.PreviousPrice),
		zap.Float64("current_price", alert.CurrentPrice),
		zap.Float64("price_change_percent", alert.PriceChangePercent))
	return nil
}

// WebhookNotifier POSTs the alert as JSON to a configured endpoint.
type WebhookNotifier struct {
	url    string
	client *http.Client
}

func NewWebhookNotifier(url string, timeout time.Duration) *WebhookNotifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WebhookNotifier{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

func (n *WebhookNotifier) Publish(ctx context.Context, alert *tracker.Alert) error {
	body, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("encode alert: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("deliver alert: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook responded with status %d", resp.StatusCode)
	}
	return nil
}
