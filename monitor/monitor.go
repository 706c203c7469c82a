// Package monitor periodically probes the upstream label source and
// records a reachability snapshot surfaced by the health endpoint. The API
// itself never depends on the probe result; a down source still serves
// requests and fails them per call.
package monitor

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rxlabel/dosage-api/logging"
	"github.com/rxlabel/dosage-api/metrics"
)

// Prober is the minimal surface the monitor needs from the source client.
type Prober interface {
	Probe(ctx context.Context) error
}

// Status is an immutable snapshot of the last probe.
type Status struct {
	Up          bool      `json:"up"`
	LastChecked time.Time `json:"last_checked"`
	LastError   string    `json:"last_error,omitempty"`
}

const probeTimeout = 15 * time.Second

// Monitor schedules source probes and keeps the latest Status behind an
// atomic pointer for lock-free reads.
type Monitor struct {
	prober    Prober
	interval  time.Duration
	scheduler *gocron.Scheduler
	status    atomic.Value // Status
	stopWatch chan struct{}
}

// New creates a monitor probing at the given interval.
func New(prober Prober, interval time.Duration) *Monitor {
	m := &Monitor{
		prober:    prober,
		interval:  interval,
		scheduler: gocron.NewScheduler(time.Local),
		stopWatch: make(chan struct{}),
	}
	m.status.Store(Status{})
	return m
}

// Start runs an initial probe and schedules recurring ones. An unreachable
// source is a recorded condition, not a startup failure.
func (m *Monitor) Start() error {
	m.probe()

	_, err := m.scheduler.Every(int(m.interval.Minutes())).Minutes().Do(m.probe)
	if err != nil {
		return fmt.Errorf("failed to schedule source probes: %w", err)
	}

	m.scheduler.StartAsync()
	m.startStalenessWatchdog()

	return nil
}

// Stop stops the scheduler and the watchdog.
func (m *Monitor) Stop() {
	m.scheduler.Stop()
	close(m.stopWatch)
}

// Snapshot returns the most recent probe result.
func (m *Monitor) Snapshot() Status {
	return m.status.Load().(Status)
}

func (m *Monitor) probe() {
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	status := Status{Up: true, LastChecked: time.Now()}
	if err := m.prober.Probe(ctx); err != nil {
		status.Up = false
		status.LastError = err.Error()
		logging.Warn("Source probe failed", "error", err)
	}

	m.status.Store(status)
	metrics.SetSourceUp(status.Up)
}

// startStalenessWatchdog warns when the source has been unreachable or
// unchecked for over an hour.
func (m *Monitor) startStalenessWatchdog() {
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		for {
			select {
			case <-m.stopWatch:
				return
			case <-ticker.C:
				status := m.Snapshot()
				if !status.Up || time.Since(status.LastChecked) > time.Hour {
					logging.Warn("Upstream source has not been reachable for over an hour",
						"last_checked", status.LastChecked,
						"last_error", status.LastError)
				}
			}
		}
	}()
}
