package monitoring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/fba-resolver/internal/config"
)

// AlertType identifies the kind of alert.
type AlertType string

const (
	AlertProviderFailures AlertType = "provider_failures"
	AlertDegradedRate     AlertType = "degraded_rate"
)

// Alert represents a single alert to be sent.
type Alert struct {
	Type      AlertType      `json:"type"`
	Severity  string         `json:"severity"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Key identifies the breach an alert reports, so a still-open breach is not
// alerted twice.
func (a Alert) Key() string {
	if src, ok := a.Details["source"].(string); ok {
		return string(a.Type) + ":" + src
	}
	return string(a.Type)
}

// Alerter evaluates a MetricsSnapshot against configured thresholds
// and sends alerts via webhook when thresholds are breached.
type Alerter struct {
	cfg    config.MonitoringConfig
	client *http.Client
}

// NewAlerter creates a new Alerter with the given monitoring config.
func NewAlerter(cfg config.MonitoringConfig) *Alerter {
	return &Alerter{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Evaluate checks the snapshot against thresholds and returns any alerts.
// A zero threshold disables its check.
func (a *Alerter) Evaluate(snap *MetricsSnapshot) []Alert {
	var alerts []Alert
	now := time.Now().UTC()

	if a.cfg.ProviderFailures > 0 {
		for _, ph := range snap.Providers {
			if ph.Failures < a.cfg.ProviderFailures {
				continue
			}
			alerts = append(alerts, Alert{
				Type:     AlertProviderFailures,
				Severity: "high",
				Message: fmt.Sprintf(
					"Provider %s failed %d times in last %dh (threshold %d)",
					ph.Source, ph.Failures, snap.LookbackHours, a.cfg.ProviderFailures,
				),
				Details: map[string]any{
					"source":     string(ph.Source),
					"failures":   ph.Failures,
					"transient":  ph.Transient,
					"permanent":  ph.Permanent,
					"last_error": ph.LastError,
					"threshold":  a.cfg.ProviderFailures,
				},
				Timestamp: now,
			})
		}
	}

	answered := snap.Found + snap.NotFound
	if a.cfg.DegradedRate > 0 && answered >= a.cfg.MinLookups && snap.DegradedRate > a.cfg.DegradedRate {
		alerts = append(alerts, Alert{
			Type:     AlertDegradedRate,
			Severity: "medium",
			Message: fmt.Sprintf(
				"Degraded not-found rate %.1f%% exceeds threshold %.1f%% (%d degraded / %d lookups in last %dh)",
				snap.DegradedRate*100, a.cfg.DegradedRate*100,
				snap.Degraded, answered, snap.LookbackHours,
			),
			Details: map[string]any{
				"degraded_rate": snap.DegradedRate,
				"threshold":     a.cfg.DegradedRate,
				"degraded":      snap.Degraded,
				"lookups":       answered,
			},
			Timestamp: now,
		})
	}

	return alerts
}

// SendAlerts delivers alerts to the configured webhook URL.
// Returns the number of alerts successfully sent.
func (a *Alerter) SendAlerts(ctx context.Context, alerts []Alert) int {
	if a.cfg.WebhookURL == "" || len(alerts) == 0 {
		return 0
	}

	sent := 0
	for _, alert := range alerts {
		if err := a.sendWebhook(ctx, alert); err != nil {
			zap.L().Error("monitoring: failed to send alert",
				zap.String("type", string(alert.Type)),
				zap.Error(err),
			)
			continue
		}
		zap.L().Info("monitoring: alert sent",
			zap.String("type", string(alert.Type)),
			zap.String("severity", alert.Severity),
		)
		sent++
	}
	return sent
}

// sendWebhook posts a single alert to the webhook URL.
func (a *Alerter) sendWebhook(ctx context.Context, alert Alert) error {
	payload, err := json.Marshal(alert)
	if err != nil {
		return eris.Wrap(err, "monitoring: marshal alert")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.WebhookURL, bytes.NewReader(payload))
	if err != nil {
		return eris.Wrap(err, "monitoring: create webhook request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return eris.Wrap(err, "monitoring: webhook request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode >= 400 {
		return eris.Errorf("monitoring: webhook returned status %d", resp.StatusCode)
	}
	return nil
}
