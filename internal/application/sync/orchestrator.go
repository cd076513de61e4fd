package sync

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"opsdesk/internal/domain/requester"
	"opsdesk/internal/domain/satisfaction"
	"opsdesk/internal/domain/syncrun"
	"opsdesk/internal/domain/technician"
	"opsdesk/internal/domain/ticket"
	vo "opsdesk/internal/domain/ticket/value_objects"
	"opsdesk/internal/infrastructure/helpdesk"
	"opsdesk/internal/shared/biztime"
	"opsdesk/internal/shared/goroutine"
	"opsdesk/internal/shared/logger"
)

const totalSteps = 5

// TriggerOptions carries the optional parameters of a sync trigger.
// RangeStart/RangeEnd are only consulted for range syncs; ForceReenrich
// re-derives assignment provenance even for tickets that already have it.
type TriggerOptions struct {
	RangeStart    *time.Time
	RangeEnd      *time.Time
	ForceReenrich bool
}

// RunSummary is the outcome of one trigger attempt. Skipped is set when a
// run was already in flight; no run record is written in that case.
type RunSummary struct {
	RunUID      string         `json:"run_uid"`
	Kind        syncrun.Kind   `json:"kind"`
	Status      syncrun.Status `json:"status"`
	Skipped     bool           `json:"skipped"`
	Counts      syncrun.Counts `json:"counts"`
	StartedAt   time.Time      `json:"started_at"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
	Error       string         `json:"error,omitempty"`
}

// Orchestrator drives a complete sync run through its phases: technicians,
// tickets with enrichment, requester backfill, satisfaction responses,
// finalization. At most one run is in flight per process.
type Orchestrator struct {
	client       HelpdeskClient
	planner      *WindowPlanner
	enricher     *Enricher
	upserter     *Upserter
	tickets      ticket.Repository
	technicians  technician.Repository
	requesters   requester.Repository
	satisfaction satisfaction.Repository
	runs         syncrun.Repository
	publisher    EventPublisher
	tracker      *ProgressTracker
	pacing       helpdesk.PacingPolicy
	logger       logger.Interface

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
}

func NewOrchestrator(
	client HelpdeskClient,
	planner *WindowPlanner,
	enricher *Enricher,
	upserter *Upserter,
	tickets ticket.Repository,
	technicians technician.Repository,
	requesters requester.Repository,
	satisfactionRepo satisfaction.Repository,
	runs syncrun.Repository,
	publisher EventPublisher,
	tracker *ProgressTracker,
	pacing helpdesk.PacingPolicy,
	log logger.Interface,
) *Orchestrator {
	return &Orchestrator{
		client:       client,
		planner:      planner,
		enricher:     enricher,
		upserter:     upserter,
		tickets:      tickets,
		technicians:  technicians,
		requesters:   requesters,
		satisfaction: satisfactionRepo,
		runs:         runs,
		publisher:    publisher,
		tracker:      tracker,
		pacing:       pacing,
		logger:       log,
	}
}

// TriggerSync runs one complete sync. When a run is already in flight the
// trigger is skipped, not queued; the caller gets a summary with Skipped
// set and no run record is written.
func (o *Orchestrator) TriggerSync(ctx context.Context, kind syncrun.Kind, opts TriggerOptions) (RunSummary, error) {
	o.mu.Lock()
	if o.running {
		o.mu.Unlock()
		o.logger.Infow("sync already in progress, skipping trigger", "kind", kind)
		return RunSummary{Kind: kind, Skipped: true}, nil
	}
	runCtx, cancel := context.WithCancel(ctx)
	o.running = true
	o.cancel = cancel
	o.mu.Unlock()

	defer func() {
		cancel()
		o.mu.Lock()
		o.running = false
		o.cancel = nil
		o.mu.Unlock()
		o.tracker.End()
	}()

	startedAt := biztime.NowUTC()
	run, err := syncrun.Start(uuid.NewString(), kind, startedAt)
	if err != nil {
		return RunSummary{Kind: kind}, err
	}
	if err := o.runs.Save(runCtx, run); err != nil {
		return RunSummary{Kind: kind}, fmt.Errorf("record run start: %w", err)
	}

	o.logger.Infow("sync run started", "run_uid", run.RunUID(), "kind", kind)
	o.tracker.Begin(totalSteps)

	counts, runErr := o.execute(runCtx, kind, opts)
	completedAt := biztime.NowUTC()

	if runErr != nil {
		if err := run.Fail(runErr.Error(), completedAt); err != nil {
			o.logger.Errorw("finalize failed run", "run_uid", run.RunUID(), "error", err)
		}
		if err := o.runs.Update(runCtx, run); err != nil {
			o.logger.Errorw("persist failed run record", "run_uid", run.RunUID(), "error", err)
		}
		o.logger.Errorw("sync run failed",
			"run_uid", run.RunUID(),
			"kind", kind,
			"error", runErr,
		)
		o.publish(run)
		return o.summarize(run), runErr
	}

	if err := run.Complete(counts, completedAt); err != nil {
		return o.summarize(run), err
	}
	if err := o.runs.Update(runCtx, run); err != nil {
		return o.summarize(run), fmt.Errorf("persist completed run record: %w", err)
	}

	o.logger.Infow("sync run completed",
		"run_uid", run.RunUID(),
		"kind", kind,
		"technicians", counts.Technicians,
		"tickets", counts.Tickets,
		"requesters", counts.Requesters,
		"satisfaction", counts.Satisfaction,
		"enriched", counts.Enriched,
		"failed", counts.Failed,
		"duration", completedAt.Sub(startedAt).String(),
	)
	o.publish(run)
	return o.summarize(run), nil
}

func (o *Orchestrator) execute(ctx context.Context, kind syncrun.Kind, opts TriggerOptions) (syncrun.Counts, error) {
	var counts syncrun.Counts

	window, err := o.planner.PlanWindow(ctx, kind, opts)
	if err != nil {
		return counts, err
	}
	o.logger.Infow("sync window planned",
		"kind", kind,
		"since", biztime.FormatRFC3339(window.Since),
	)

	idmap, techCounts, err := o.syncTechnicians(ctx)
	if err != nil {
		return counts, err
	}
	counts.Technicians = techCounts.Created + techCounts.Updated
	counts.Failed += techCounts.Failed
	o.tracker.UpdateCounts(counts)

	ticketResult, enriched, enrichFailed, err := o.syncTickets(ctx, window, idmap, opts.ForceReenrich)
	if err != nil {
		return counts, err
	}
	counts.Tickets = ticketResult.Created + ticketResult.Updated
	counts.Enriched = enriched
	counts.Failed += ticketResult.Failed + enrichFailed
	o.tracker.UpdateCounts(counts)

	requesterCount, requesterFailed, err := o.syncRequesters(ctx)
	if err != nil {
		return counts, err
	}
	counts.Requesters = requesterCount
	counts.Failed += requesterFailed
	o.tracker.UpdateCounts(counts)

	satisfactionCount, satisfactionFailed := o.syncSatisfaction(ctx, ticketResult.Tickets)
	counts.Satisfaction = satisfactionCount
	counts.Failed += satisfactionFailed
	o.tracker.UpdateCounts(counts)

	if err := ctx.Err(); err != nil {
		return counts, err
	}

	o.tracker.Step("finalizing", 5)
	return counts, nil
}

func (o *Orchestrator) syncTechnicians(ctx context.Context) (IdentityMap, UpsertResult, error) {
	o.tracker.Step("syncing technicians", 1)

	agents, err := o.client.ListAgents(ctx, func(pages, records int) {
		o.logger.Debugw("agent fetch progress", "pages", pages, "records", records)
	})
	if err != nil {
		return nil, UpsertResult{}, fmt.Errorf("fetch agents: %w", err)
	}

	normalized := make([]*technician.Technician, 0, len(agents))
	var result UpsertResult
	for _, raw := range agents {
		t, err := NormalizeTechnician(raw)
		if err != nil {
			result.Failed++
			o.logger.Warnw("agent normalization failed, skipping record",
				"agent_id", raw.ID,
				"error", err,
			)
			continue
		}
		normalized = append(normalized, t)
	}

	upserted := o.upserter.UpsertTechnicians(ctx, normalized)
	result.Created = upserted.Created
	result.Updated = upserted.Updated
	result.Failed += upserted.Failed

	// The identity map is rebuilt from the persisted active set every run
	// so internal ids are always populated and inactive agents drop out.
	active, err := o.technicians.ListActive(ctx)
	if err != nil {
		return nil, result, fmt.Errorf("load active technicians: %w", err)
	}
	return BuildIdentityMap(active), result, nil
}

func (o *Orchestrator) syncTickets(
	ctx context.Context,
	window Window,
	idmap IdentityMap,
	force bool,
) (UpsertResult, int, int, error) {
	o.tracker.Step("syncing tickets", 2)

	raw, err := o.client.ListTickets(ctx, window.Since, func(pages, records int) {
		o.logger.Debugw("ticket fetch progress", "pages", pages, "records", records)
	})
	if err != nil {
		return UpsertResult{}, 0, 0, fmt.Errorf("fetch tickets: %w", err)
	}
	raw = FilterToWindow(raw, window)

	normalized := make([]*ticket.Ticket, 0, len(raw))
	normalizeFailed := 0
	for _, r := range raw {
		t, err := NormalizeTicket(r)
		if err != nil {
			normalizeFailed++
			o.logger.Warnw("ticket normalization failed, skipping record",
				"ticket_id", r.ID,
				"error", err,
			)
			continue
		}
		normalized = append(normalized, t)
	}
	ResolveAssignments(normalized, idmap)

	externalIDs := make([]int64, 0, len(normalized))
	for _, t := range normalized {
		externalIDs = append(externalIDs, t.ExternalID())
	}
	existing, err := o.tickets.FindByExternalIDs(ctx, externalIDs)
	if err != nil {
		return UpsertResult{}, 0, 0, fmt.Errorf("load existing tickets: %w", err)
	}

	o.tracker.Step("enriching assignments", 3)
	selected := SelectForEnrichment(normalized, existing, force)
	o.logger.Infow("enrichment selection",
		"total", len(normalized),
		"selected", len(selected),
	)
	batch, err := o.enricher.Enrich(ctx, selected, func(processed, total int) {
		o.logger.Infow("enrichment progress", "processed", processed, "total", total)
		if total > 0 {
			o.tracker.SetPercent(40 + processed*20/total)
		}
	})
	if err != nil {
		return UpsertResult{}, 0, 0, fmt.Errorf("enrich tickets: %w", err)
	}

	result := o.upserter.UpsertTickets(ctx, normalized, batch.Results, force)
	result.Failed += normalizeFailed
	return result, len(batch.Results), batch.Failed, nil
}

// syncRequesters backfills the requester cache: every requester id
// referenced by a ticket and not yet cached is fetched once, then all
// tickets referencing it are linked.
func (o *Orchestrator) syncRequesters(ctx context.Context) (int, int, error) {
	o.tracker.Step("syncing requesters", 4)

	refs, err := o.tickets.UnlinkedRequesterRefs(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("load unlinked requester refs: %w", err)
	}
	if len(refs) == 0 {
		return 0, 0, nil
	}

	cached, err := o.requesters.ExistingExternalIDs(ctx, refs)
	if err != nil {
		return 0, 0, fmt.Errorf("check cached requesters: %w", err)
	}

	fetched := 0
	failed := 0
	for _, ref := range refs {
		if _, ok := cached[ref]; ok {
			continue
		}
		if err := sleepCtx(ctx, o.pacing.PageDelay); err != nil {
			return fetched, failed, err
		}

		raw, err := o.client.FetchRequester(ctx, ref)
		if err != nil {
			failed++
			o.logger.Warnw("requester fetch failed, skipping",
				"requester_id", ref,
				"error", err,
			)
			continue
		}
		if raw == nil {
			continue
		}

		r, err := requester.NewRequester(raw.ID, raw.Name, raw.Email)
		if err != nil {
			failed++
			continue
		}
		if err := o.requesters.Save(ctx, r); err != nil {
			failed++
			o.logger.Warnw("requester save failed, skipping",
				"requester_id", ref,
				"error", err,
			)
			continue
		}
		cached[ref] = r.ID()
		fetched++
	}

	for ref, id := range cached {
		if err := o.tickets.LinkRequesterRef(ctx, ref, id); err != nil {
			failed++
			o.logger.Warnw("requester link failed",
				"requester_id", ref,
				"error", err,
			)
		}
	}
	return fetched, failed, nil
}

// syncSatisfaction fetches CSAT responses for resolved and closed tickets
// written this run. Best-effort throughout: a 404 upstream means the
// requester has not responded, and any failure is counted, logged and
// skipped.
func (o *Orchestrator) syncSatisfaction(ctx context.Context, tickets []*ticket.Ticket) (int, int) {
	saved := 0
	failed := 0
	for _, t := range tickets {
		if t.Status() != vo.StatusResolved && t.Status() != vo.StatusClosed {
			continue
		}

		existing, err := o.satisfaction.FindByTicketID(ctx, t.ID())
		if err != nil {
			failed++
			continue
		}
		if existing != nil {
			continue
		}

		if err := sleepCtx(ctx, o.pacing.PageDelay); err != nil {
			return saved, failed
		}

		raw, err := o.client.FetchSatisfactionRating(ctx, t.ExternalID())
		if err != nil {
			failed++
			o.logger.Warnw("satisfaction fetch failed, skipping",
				"ticket_external_id", t.ExternalID(),
				"error", err,
			)
			continue
		}
		if raw == nil {
			continue
		}

		response, err := satisfaction.NewResponse(t.ID(), t.ExternalID(), raw.Rating, raw.Feedback, raw.RespondedAt)
		if err != nil {
			failed++
			continue
		}
		if err := o.satisfaction.Save(ctx, response); err != nil {
			failed++
			o.logger.Warnw("satisfaction save failed, skipping",
				"ticket_external_id", t.ExternalID(),
				"error", err,
			)
			continue
		}
		saved++
	}
	return saved, failed
}

// GetSyncStatus reports whether a run is in flight, the in-flight
// progress, and the last successful completion time.
func (o *Orchestrator) GetSyncStatus(ctx context.Context) (Status, error) {
	o.mu.Lock()
	running := o.running
	o.mu.Unlock()

	status := Status{
		IsRunning: running,
		Progress:  o.tracker.Snapshot(),
	}

	last, err := o.runs.FindLastSuccessful(ctx)
	if err != nil {
		return status, err
	}
	if last != nil {
		status.LastSyncTime = last.CompletedAt()
	}
	return status, nil
}

// ListRuns returns the most recent run records, newest first.
func (o *Orchestrator) ListRuns(ctx context.Context, limit int) ([]*syncrun.SyncRun, error) {
	return o.runs.List(ctx, limit)
}

// ForceStop cancels the in-flight run, if any. The run finalizes as
// failed through the normal path once the cancellation propagates.
func (o *Orchestrator) ForceStop() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.running || o.cancel == nil {
		return false
	}
	o.cancel()
	return true
}

func (o *Orchestrator) publish(run *syncrun.SyncRun) {
	if o.publisher == nil {
		return
	}
	event := CompletedEvent{
		RunUID: run.RunUID(),
		Kind:   string(run.Kind()),
		Status: string(run.Status()),
		Counts: run.Counts(),
	}
	if run.CompletedAt() != nil {
		event.CompletedAt = *run.CompletedAt()
	}
	goroutine.SafeGo(o.logger, "publish-sync-completed", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := o.publisher.PublishSyncCompleted(ctx, event); err != nil {
			o.logger.Warnw("sync completion event publish failed", "run_uid", run.RunUID(), "error", err)
		}
	})
}

func (o *Orchestrator) summarize(run *syncrun.SyncRun) RunSummary {
	return RunSummary{
		RunUID:      run.RunUID(),
		Kind:        run.Kind(),
		Status:      run.Status(),
		Counts:      run.Counts(),
		StartedAt:   run.StartedAt(),
		CompletedAt: run.CompletedAt(),
		Error:       run.ErrorMessage(),
	}
}
