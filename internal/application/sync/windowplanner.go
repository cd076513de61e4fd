package sync

import (
	"context"
	"fmt"
	"time"

	"opsdesk/internal/domain/syncrun"
	"opsdesk/internal/infrastructure/helpdesk"
	"opsdesk/internal/shared/biztime"
	"opsdesk/internal/shared/config"
)

const (
	defaultDaysToSync   = 30
	defaultSafetyBuffer = 5 * time.Minute
)

// Window is the time range a sync run requests from the upstream API.
// Until is only set for explicit range resyncs; the upstream filter is
// open-ended, so a closed range is enforced by post-filtering.
type Window struct {
	Since time.Time
	Until *time.Time
}

// WindowPlanner decides the window to request based on prior run history.
type WindowPlanner struct {
	runs         syncrun.Repository
	daysToSync   int
	safetyBuffer time.Duration
	now          func() time.Time
}

func NewWindowPlanner(runs syncrun.Repository, cfg *config.SyncConfig) *WindowPlanner {
	days := defaultDaysToSync
	buffer := defaultSafetyBuffer
	if cfg != nil {
		if cfg.DaysToSync > 0 {
			days = cfg.DaysToSync
		}
		if cfg.SafetyBufferMinutes > 0 {
			buffer = cfg.SafetyBuffer()
		}
	}
	return &WindowPlanner{
		runs:         runs,
		daysToSync:   days,
		safetyBuffer: buffer,
		now:          biztime.NowUTC,
	}
}

// PlanWindow computes the fetch window for the given run kind.
//
// Incremental windows start at the last successful run's completion time
// minus a safety buffer: the buffer trades a little redundant refetching
// for never skipping records due to clock drift or in-flight writes at the
// boundary. With no prior successful run, incremental degrades to full.
func (p *WindowPlanner) PlanWindow(ctx context.Context, kind syncrun.Kind, opts TriggerOptions) (Window, error) {
	switch kind {
	case syncrun.KindFull:
		return Window{Since: p.now().AddDate(0, 0, -p.daysToSync)}, nil

	case syncrun.KindIncremental:
		last, err := p.runs.FindLastSuccessful(ctx)
		if err != nil {
			return Window{}, fmt.Errorf("look up last successful run: %w", err)
		}
		if last == nil || last.CompletedAt() == nil {
			return Window{Since: p.now().AddDate(0, 0, -p.daysToSync)}, nil
		}
		return Window{Since: last.CompletedAt().Add(-p.safetyBuffer)}, nil

	case syncrun.KindRange:
		if opts.RangeStart == nil || opts.RangeEnd == nil {
			return Window{}, fmt.Errorf("range sync requires explicit start and end")
		}
		if opts.RangeEnd.Before(*opts.RangeStart) {
			return Window{}, fmt.Errorf("range end %s is before start %s",
				opts.RangeEnd.Format(time.RFC3339), opts.RangeStart.Format(time.RFC3339))
		}
		end := opts.RangeEnd.UTC()
		return Window{Since: opts.RangeStart.UTC(), Until: &end}, nil

	default:
		return Window{}, fmt.Errorf("unknown sync kind: %s", kind)
	}
}

// FilterToWindow post-filters fetched tickets to the closed range when the
// window carries an explicit end.
func FilterToWindow(tickets []helpdesk.Ticket, w Window) []helpdesk.Ticket {
	if w.Until == nil {
		return tickets
	}
	filtered := make([]helpdesk.Ticket, 0, len(tickets))
	for _, t := range tickets {
		if t.UpdatedAt.Before(w.Since) || t.UpdatedAt.After(*w.Until) {
			continue
		}
		filtered = append(filtered, t)
	}
	return filtered
}
