// Package monitor polls the selected printer in the background and publishes
// what it finds.
package monitor

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"

	"zebraprint/pkg/browserprint"
	"zebraprint/pkg/metrics"
)

const (
	defaultInterval = 5 * time.Second
	maxBackoff      = 30 * time.Second
)

// StatusChecker is the part of the printer client the monitor needs.
type StatusChecker interface {
	Printer() browserprint.Device
	CheckConnection(ctx context.Context) browserprint.ConnectionResult
	CheckPrinterStatus(ctx context.Context) (browserprint.StatusResult, error)
}

var _ StatusChecker = (*browserprint.Client)(nil)

// Publisher receives every snapshot the monitor produces.
type Publisher interface {
	Publish(ctx context.Context, snap Snapshot) error
}

type Monitor struct {
	client    StatusChecker
	store     *Store
	publisher Publisher
	interval  time.Duration
	logger    log.FieldLogger
}

type Option func(*Monitor)

func WithInterval(d time.Duration) Option {
	return func(m *Monitor) {
		if d > 0 {
			m.interval = d
		}
	}
}

func WithPublisher(p Publisher) Option {
	return func(m *Monitor) {
		m.publisher = p
	}
}

func WithLogger(logger log.FieldLogger) Option {
	return func(m *Monitor) {
		if logger != nil {
			m.logger = logger
		}
	}
}

func New(client StatusChecker, opts ...Option) *Monitor {
	m := &Monitor{
		client:   client,
		store:    &Store{},
		interval: defaultInterval,
		logger:   log.StandardLogger(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.WithField("component", "monitor")
	return m
}

// Snapshot returns the latest state.
func (m *Monitor) Snapshot() Snapshot {
	return m.store.Snapshot()
}

// Run polls until ctx is cancelled. Consecutive failures stretch the wait
// between polls.
func (m *Monitor) Run(ctx context.Context) {
	m.logger.Infof("Monitoring printer every %s", m.interval)
	for {
		snap := m.Poll(ctx)

		t := time.NewTimer(calculateBackoff(snap.ConsecutiveFailures, m.interval))
		select {
		case <-ctx.Done():
			t.Stop()
			m.logger.Debug("Monitor stopped")
			return
		case <-t.C:
		}
	}
}

// Poll probes the printer once, records the result and publishes it.
func (m *Monitor) Poll(ctx context.Context) Snapshot {
	printer := m.client.Printer()

	conn := m.client.CheckConnection(ctx)
	metrics.SetBool(metrics.PrinterConnected, conn.IsConnected)

	if !conn.IsConnected {
		metrics.SetBool(metrics.PrinterReady, false)
		m.store.Update(printer, conn, nil, errors.New(conn.Message))
		m.logger.Debugf("Printer %q offline: %s", printer.Name, conn.Message)
	} else if status, err := m.client.CheckPrinterStatus(ctx); err != nil {
		metrics.SetBool(metrics.PrinterReady, false)
		m.store.Update(printer, conn, nil, err)
		m.logger.Warnf("Status poll failed: %v", err)
	} else {
		metrics.SetBool(metrics.PrinterReady, status.IsReadyToPrint)
		m.store.Update(printer, conn, &status, nil)
		if !status.IsReadyToPrint {
			m.logger.Warnf("Printer %q not ready: %v", printer.Name, status.Errors)
		}
	}

	snap := m.store.Snapshot()
	if m.publisher != nil {
		if err := m.publisher.Publish(ctx, snap); err != nil {
			m.logger.Errorf("Failed to publish status: %v", err)
		}
	}
	return snap
}

func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 || base >= maxBackoff {
		return base
	}
	backoff := base
	for i := 0; i < failures; i++ {
		backoff *= 2
		if backoff >= maxBackoff {
			return maxBackoff
		}
	}
	return backoff
}
