package monitoring

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/fba-resolver/internal/config"
)

const defaultCheckInterval = 5 * time.Minute

// Checker periodically collects provider health and alerts on breaches.
// An alert is sent once when a breach opens; it is sent again only after
// a check finds the breach closed.
type Checker struct {
	collector *Collector
	alerter   *Alerter
	cfg       config.MonitoringConfig

	mu   sync.Mutex
	open map[string]bool
}

// NewChecker creates a background health checker.
func NewChecker(collector *Collector, alerter *Alerter, cfg config.MonitoringConfig) *Checker {
	return &Checker{
		collector: collector,
		alerter:   alerter,
		cfg:       cfg,
		open:      make(map[string]bool),
	}
}

// Run checks once, then on every interval until ctx is cancelled.
func (c *Checker) Run(ctx context.Context) {
	interval := time.Duration(c.cfg.CheckIntervalSecs) * time.Second
	if interval <= 0 {
		interval = defaultCheckInterval
	}

	log := zap.L().With(zap.String("component", "monitoring.checker"))
	log.Info("monitoring: checker started",
		zap.Duration("interval", interval),
		zap.Int("lookback_hours", c.cfg.LookbackWindowHours),
		zap.Bool("webhook", c.cfg.WebhookURL != ""),
	)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if ctx.Err() == nil {
			_, _ = c.check(ctx, log)
		}
		select {
		case <-ctx.Done():
			log.Info("monitoring: checker stopped")
			return
		case <-ticker.C:
		}
	}
}

// Check runs one collect, evaluate and send cycle and returns the snapshot
// it evaluated.
func (c *Checker) Check(ctx context.Context) (*MetricsSnapshot, error) {
	return c.check(ctx, zap.L().With(zap.String("component", "monitoring.checker")))
}

func (c *Checker) check(ctx context.Context, log *zap.Logger) (*MetricsSnapshot, error) {
	snap, err := c.collector.Collect(ctx, c.cfg.LookbackWindowHours)
	if err != nil {
		log.Error("monitoring: collect failed", zap.Error(err))
		return nil, err
	}

	fresh := c.newBreaches(c.alerter.Evaluate(snap))
	if len(fresh) == 0 {
		log.Debug("monitoring: no new breaches",
			zap.Int("lookups", snap.Lookups),
			zap.Float64("degraded_rate", snap.DegradedRate),
		)
		return snap, nil
	}

	for _, a := range fresh {
		log.Warn("monitoring: threshold breached",
			zap.String("type", string(a.Type)),
			zap.String("message", a.Message),
		)
	}
	sent := c.alerter.SendAlerts(ctx, fresh)
	log.Info("monitoring: check complete",
		zap.Int("breaches", len(fresh)),
		zap.Int("alerts_sent", sent),
	)
	return snap, nil
}

// newBreaches returns the alerts whose breach was not already open, and
// forgets breaches that no longer fire.
func (c *Checker) newBreaches(alerts []Alert) []Alert {
	c.mu.Lock()
	defer c.mu.Unlock()

	firing := make(map[string]bool, len(alerts))
	var fresh []Alert
	for _, a := range alerts {
		k := a.Key()
		firing[k] = true
		if !c.open[k] {
			fresh = append(fresh, a)
		}
	}
	c.open = firing
	return fresh
}
