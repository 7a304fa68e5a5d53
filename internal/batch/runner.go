// ATW Sync - Notion Synchronization Engine for All Time Wrestling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atwsync

package batch

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/atwsync/internal/logging"
	"github.com/tomtom215/atwsync/internal/metrics"
	"github.com/tomtom215/atwsync/internal/ratelimit"
)

// Defaults applied to zero-valued Options fields.
const (
	DefaultBatchSize   = 10
	DefaultItemTimeout = 2 * time.Minute
)

// ProgressReporter receives one update per finished batch.
// *progress.Tracker satisfies it.
type ProgressReporter interface {
	Update(id string, step int, message string)
}

// Options configures Run.
type Options struct {
	// BatchSize bounds both the batch length and the worker count.
	BatchSize int
	// OperationID and Progress enable per-batch progress updates at
	// ProgressStep, rendered as "<MessageTemplate> n/total items (p%)".
	OperationID     string
	Progress        ProgressReporter
	ProgressStep    int
	MessageTemplate string
	// Limiter, when set, is waited on before every item.
	Limiter *ratelimit.Limiter
	// ItemTimeout bounds each work call; zero means DefaultItemTimeout and
	// a negative value disables the per-item deadline.
	ItemTimeout time.Duration
	// BatchPause is slept between batches.
	BatchPause time.Duration
	// Messages receives one diagnostic line per failed item.
	Messages func(string)
	// Label names the work in logs and metrics ("wrestler.fetch").
	Label string
}

// Outcome is the result slot for items[Index]. Exactly one of Value or Err
// is meaningful.
type Outcome[R any] struct {
	Index int
	Value R
	Err   error
}

// OK reports whether the item succeeded.
func (o Outcome[R]) OK() bool { return o.Err == nil }

// PanicError wraps a panic recovered from a work function.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string { return fmt.Sprintf("panic: %v", e.Value) }

// Run applies work to every item in batches of at most opts.BatchSize
// items processed concurrently. It always returns len(items) outcomes in
// input order. A failing or panicking item only sets its own Err; Run
// itself never fails. Once ctx is done, remaining items fail with ctx.Err().
func Run[T, R any](ctx context.Context, items []T, work func(ctx context.Context, item T) (R, error), opts Options) []Outcome[R] {
	size := opts.BatchSize
	if size <= 0 {
		size = DefaultBatchSize
	}
	timeout := opts.ItemTimeout
	if timeout == 0 {
		timeout = DefaultItemTimeout
	}

	total := len(items)
	outcomes := make([]Outcome[R], total)
	for i := range outcomes {
		outcomes[i].Index = i
	}
	if total == 0 {
		return outcomes
	}

	log := logging.Ctx(ctx)
	processed := 0

	for start := 0; start < total; start += size {
		end := start + size
		if end > total {
			end = total
		}

		if start > 0 && opts.BatchPause > 0 {
			select {
			case <-time.After(opts.BatchPause):
			case <-ctx.Done():
			}
		}

		metrics.SyncBatchSize.Observe(float64(end - start))

		g := new(errgroup.Group)
		g.SetLimit(size)
		for i := start; i < end; i++ {
			g.Go(func() error {
				outcomes[i].Value, outcomes[i].Err = runItem(ctx, items[i], work, opts.Limiter, timeout)
				return nil
			})
		}
		_ = g.Wait()

		for i := start; i < end; i++ {
			if err := outcomes[i].Err; err != nil {
				metrics.SyncItemFailures.WithLabelValues(opts.Label).Inc()
				msg := fmt.Sprintf("item %d failed: %v", i, err)
				if opts.Label != "" {
					msg = opts.Label + ": " + msg
				}
				log.Warn().Str("label", opts.Label).Int("index", i).Err(err).Msg("Batch item failed")
				if opts.Messages != nil {
					opts.Messages(msg)
				}
			}
		}

		processed = end
		if opts.Progress != nil && opts.OperationID != "" {
			opts.Progress.Update(opts.OperationID, opts.ProgressStep, ProgressMessage(opts.MessageTemplate, processed, total))
		}
	}

	return outcomes
}

// ProgressMessage renders "<template> n/total items (p%)".
func ProgressMessage(template string, processed, total int) string {
	pct := 0.0
	if total > 0 {
		pct = float64(processed) / float64(total) * 100
	}
	if template == "" {
		template = "Processed"
	}
	return fmt.Sprintf("%s %d/%d items (%.1f%%)", template, processed, total, pct)
}

func runItem[T, R any](ctx context.Context, item T, work func(context.Context, T) (R, error), limiter *ratelimit.Limiter, timeout time.Duration) (result R, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
			logging.Error().Interface("panic", r).Msg("Recovered panic in batch item")
		}
	}()

	if err := ctx.Err(); err != nil {
		return result, err
	}
	if limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			return result, err
		}
	}

	itemCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		itemCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return work(itemCtx, item)
}

// Values returns the successful results in input order.
func Values[R any](outcomes []Outcome[R]) []R {
	out := make([]R, 0, len(outcomes))
	for _, o := range outcomes {
		if o.Err == nil {
			out = append(out, o.Value)
		}
	}
	return out
}

// Failures counts failed outcomes.
func Failures[R any](outcomes []Outcome[R]) int {
	n := 0
	for _, o := range outcomes {
		if o.Err != nil {
			n++
		}
	}
	return n
}
