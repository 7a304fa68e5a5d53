// ATW Sync - Notion Synchronization Engine for All Time Wrestling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atwsync

package sync

import (
	"context"
	"sync"
	"time"

	"github.com/tomtom215/atwsync/internal/logging"
)

// Health statuses.
const (
	HealthUp   = "UP"
	HealthDown = "DOWN"
)

const (
	recentMetricsSize       = 50
	defaultFailureThreshold = 3
	defaultStaleAfter       = 24 * time.Hour
	defaultHealthInterval   = 5 * time.Minute
)

// HealthConfig configures a HealthMonitor.
type HealthConfig struct {
	// Enabled is false when sync is switched off; health is then always UP.
	Enabled bool
	// TokenConfigured reports whether Notion credentials are present.
	TokenConfigured bool
	// FailureThreshold consecutive failures mark health DOWN. Default 3.
	FailureThreshold int
	// StaleAfter without a successful run marks health DOWN. Default 24h.
	StaleAfter time.Duration
	// CheckInterval is the period of Serve's log check. Default 5m.
	CheckInterval time.Duration
	// ActiveOperations reports running operations; optional.
	ActiveOperations func() int
}

// SyncMetric is one recorded run.
type SyncMetric struct {
	Kind       string        `json:"kind"`
	Direction  Direction     `json:"direction"`
	Success    bool          `json:"success"`
	Duration   time.Duration `json:"duration_ns"`
	ItemCount  int           `json:"item_count"`
	Error      string        `json:"error,omitempty"`
	RecordedAt time.Time     `json:"recorded_at"`
}

// HealthReport is a point-in-time health snapshot.
type HealthReport struct {
	Status              string       `json:"status"`
	Message             string       `json:"message,omitempty"`
	Warning             string       `json:"warning,omitempty"`
	SuccessfulSyncs     int64        `json:"successful_syncs"`
	FailedSyncs         int64        `json:"failed_syncs"`
	ConsecutiveFailures int          `json:"consecutive_failures"`
	SuccessRate         float64      `json:"success_rate"`
	AverageSyncTime     string       `json:"average_sync_time"`
	ActiveOperations    int          `json:"active_operations"`
	LastSuccessfulSync  *time.Time   `json:"last_successful_sync,omitempty"`
	LastFailedSync      *time.Time   `json:"last_failed_sync,omitempty"`
	LastError           string       `json:"last_error,omitempty"`
	RecentMetrics       []SyncMetric `json:"recent_metrics,omitempty"`
	Session             *SessionInfo `json:"session,omitempty"`
}

// SessionInfo describes the current inbound session: when it began and the
// kinds it has already synced.
type SessionInfo struct {
	Started     time.Time `json:"started"`
	SyncedKinds []string  `json:"synced_kinds"`
}

// Up reports whether the status is UP.
func (r HealthReport) Up() bool { return r.Status == HealthUp }

// HealthMonitor aggregates run outcomes into a health status.
type HealthMonitor struct {
	cfg     HealthConfig
	now     func() time.Time
	created time.Time

	mu                  sync.Mutex
	successes           int64
	failures            int64
	totalTime           time.Duration
	consecutiveFailures int
	lastSuccess         time.Time
	lastFailure         time.Time
	lastError           string
	recent              []SyncMetric
}

// NewHealthMonitor creates a monitor. Zero thresholds take defaults.
func NewHealthMonitor(cfg HealthConfig) *HealthMonitor {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = defaultFailureThreshold
	}
	if cfg.StaleAfter <= 0 {
		cfg.StaleAfter = defaultStaleAfter
	}
	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = defaultHealthInterval
	}
	h := &HealthMonitor{cfg: cfg, now: time.Now}
	h.created = h.now()
	return h
}

// Record folds one result into the monitor.
func (h *HealthMonitor) Record(kind string, dir Direction, result SyncResult, duration time.Duration) {
	if result.Success {
		h.RecordSuccess(kind, dir, duration, result.Synced())
		return
	}
	h.RecordFailure(kind, dir, result.ErrorMessage)
}

// RecordSuccess records a successful run of kind.
func (h *HealthMonitor) RecordSuccess(kind string, dir Direction, duration time.Duration, items int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	now := h.now()
	h.successes++
	h.totalTime += duration
	h.consecutiveFailures = 0
	h.lastSuccess = now
	h.push(SyncMetric{Kind: kind, Direction: dir, Success: true, Duration: duration, ItemCount: items, RecordedAt: now})
}

// RecordFailure records a failed run of kind.
func (h *HealthMonitor) RecordFailure(kind string, dir Direction, message string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	now := h.now()
	h.failures++
	h.consecutiveFailures++
	h.lastFailure = now
	h.lastError = message
	h.push(SyncMetric{Kind: kind, Direction: dir, Error: message, RecordedAt: now})
	logging.Warn().Str("kind", kind).Str("error", message).Msg("Recorded failed sync")
}

func (h *HealthMonitor) push(m SyncMetric) {
	h.recent = append(h.recent, m)
	if over := len(h.recent) - recentMetricsSize; over > 0 {
		h.recent = append(h.recent[:0:0], h.recent[over:]...)
	}
}

// RecentMetrics returns a copy of the last recorded runs, oldest first.
func (h *HealthMonitor) RecentMetrics() []SyncMetric {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]SyncMetric(nil), h.recent...)
}

// Reset clears every counter.
func (h *HealthMonitor) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.successes, h.failures, h.totalTime = 0, 0, 0
	h.consecutiveFailures = 0
	h.lastSuccess, h.lastFailure = time.Time{}, time.Time{}
	h.lastError = ""
	h.recent = nil
	h.created = h.now()
}

// Check builds the current health report.
func (h *HealthMonitor) Check() HealthReport {
	if !h.cfg.Enabled {
		return HealthReport{Status: HealthUp, Message: "Notion sync is disabled"}
	}
	if !h.cfg.TokenConfigured {
		return HealthReport{Status: HealthDown, Message: "Invalid configuration: Notion token missing"}
	}

	active := 0
	if h.cfg.ActiveOperations != nil {
		active = h.cfg.ActiveOperations()
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	report := HealthReport{
		Status:              HealthUp,
		SuccessfulSyncs:     h.successes,
		FailedSyncs:         h.failures,
		ConsecutiveFailures: h.consecutiveFailures,
		SuccessRate:         h.successRateLocked(),
		AverageSyncTime:     h.averageLocked().String(),
		ActiveOperations:    active,
		LastError:           h.lastError,
		RecentMetrics:       append([]SyncMetric(nil), h.recent...),
	}
	if !h.lastSuccess.IsZero() {
		t := h.lastSuccess
		report.LastSuccessfulSync = &t
	}
	if !h.lastFailure.IsZero() {
		t := h.lastFailure
		report.LastFailedSync = &t
	}

	switch {
	case h.consecutiveFailures >= h.cfg.FailureThreshold:
		report.Status = HealthDown
		report.Warning = "Repeated sync failures"
	case h.staleLocked():
		report.Status = HealthDown
		report.Warning = "No recent successful sync"
	}
	return report
}

func (h *HealthMonitor) staleLocked() bool {
	since := h.lastSuccess
	if since.IsZero() {
		since = h.created
	}
	return h.now().Sub(since) > h.cfg.StaleAfter
}

func (h *HealthMonitor) successRateLocked() float64 {
	total := h.successes + h.failures
	if total == 0 {
		return 100
	}
	return float64(h.successes) / float64(total) * 100
}

func (h *HealthMonitor) averageLocked() time.Duration {
	if h.successes == 0 {
		return 0
	}
	return h.totalTime / time.Duration(h.successes)
}

// Serve logs the health status every CheckInterval until ctx ends.
// It implements suture.Service.
func (h *HealthMonitor) Serve(ctx context.Context) error {
	ticker := time.NewTicker(h.cfg.CheckInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			h.logCheck()
		}
	}
}

func (h *HealthMonitor) logCheck() {
	if !h.cfg.Enabled {
		return
	}
	r := h.Check()
	switch {
	case r.Up():
		logging.Debug().Float64("success_rate", r.SuccessRate).Msg("Sync health OK")
	case r.ConsecutiveFailures >= h.cfg.FailureThreshold:
		logging.Warn().Int("consecutive_failures", r.ConsecutiveFailures).Msg("Sync health degraded")
	default:
		logging.Warn().Str("warning", r.Warning).Msg("Sync health warning")
	}
}

// String names the service for the supervisor.
func (h *HealthMonitor) String() string { return "sync-health" }
