// ATW Sync - Notion Synchronization Engine for All Time Wrestling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atwsync

package progress

import (
	"fmt"
	"time"
)

// Status is the lifecycle state of one operation.
type Status string

const (
	StatusRunning   Status = "RUNNING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
)

// Log levels used by AddLog.
const (
	LevelInfo    = "INFO"
	LevelWarning = "WARNING"
	LevelError   = "ERROR"
	LevelSuccess = "SUCCESS"
)

// LogLine is one entry in an operation's log.
type LogLine struct {
	Time    time.Time `json:"time"`
	Level   string    `json:"level"`
	Message string    `json:"message"`
}

// SyncProgress is a snapshot of one sync operation. Values returned by the
// Tracker are copies and safe to retain.
type SyncProgress struct {
	OperationID            string     `json:"operation_id"`
	Label                  string     `json:"label"`
	CurrentStep            int        `json:"current_step"`
	TotalSteps             int        `json:"total_steps"`
	CurrentStepDescription string     `json:"current_step_description,omitempty"`
	Status                 Status     `json:"status"`
	Message                string     `json:"message,omitempty"`
	ResultCount            int        `json:"result_count"`
	LogLines               []LogLine  `json:"log_lines"`
	StartedAt              time.Time  `json:"started_at"`
	LastUpdated            time.Time  `json:"last_updated"`
	CompletedAt            *time.Time `json:"completed_at,omitempty"`
}

// Done reports whether the operation reached a terminal state.
func (p SyncProgress) Done() bool {
	return p.Status == StatusCompleted || p.Status == StatusFailed
}

// Percent returns completion between 0 and 100.
func (p SyncProgress) Percent() float64 {
	if p.Status == StatusCompleted {
		return 100
	}
	if p.TotalSteps <= 0 {
		return 0
	}
	pct := float64(p.CurrentStep) / float64(p.TotalSteps) * 100
	if pct > 100 {
		return 100
	}
	return pct
}

// EstimatedRemaining extrapolates the time left from the average step
// duration so far. It is zero when nothing can be estimated.
func (p SyncProgress) EstimatedRemaining(now time.Time) time.Duration {
	if p.Done() || p.CurrentStep <= 0 || p.TotalSteps <= p.CurrentStep {
		return 0
	}
	elapsed := now.Sub(p.StartedAt)
	if elapsed <= 0 {
		return 0
	}
	perStep := elapsed / time.Duration(p.CurrentStep)
	return perStep * time.Duration(p.TotalSteps-p.CurrentStep)
}

// StatusText renders the status for operators.
func (p SyncProgress) StatusText() string {
	switch p.Status {
	case StatusCompleted:
		return "Completed Successfully"
	case StatusFailed:
		return "Failed"
	default:
		return fmt.Sprintf("In Progress (%d/%d)", p.CurrentStep, p.TotalSteps)
	}
}

func (p SyncProgress) clone() SyncProgress {
	cp := p
	cp.LogLines = append([]LogLine(nil), p.LogLines...)
	if p.CompletedAt != nil {
		t := *p.CompletedAt
		cp.CompletedAt = &t
	}
	return cp
}
