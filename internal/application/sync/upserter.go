package sync

import (
	"context"
	"fmt"
	"strconv"

	"opsdesk/internal/domain/technician"
	"opsdesk/internal/domain/ticket"
	"opsdesk/internal/shared/biztime"
	"opsdesk/internal/shared/db"
	"opsdesk/internal/shared/logger"
)

// UpsertResult aggregates a batch of idempotent merge-upserts. A non-zero
// Failed count does not fail the surrounding run; per-record failures are
// logged and skipped.
type UpsertResult struct {
	Created int
	Updated int
	Failed  int
	// Tickets holds the successfully written ticket entities with their
	// internal ids populated.
	Tickets []*ticket.Ticket
}

// Upserter performs idempotent merge-upserts keyed by external id and
// emits the transition audit trail. Each record's
// read-compare-write-log sequence runs inside one transaction so it is
// atomic with respect to other writers of the same row.
type Upserter struct {
	tickets      ticket.Repository
	technicians  technician.Repository
	activityLogs ticket.ActivityLogRepository
	tx           db.TxRunner
	logger       logger.Interface
}

func NewUpserter(
	tickets ticket.Repository,
	technicians technician.Repository,
	activityLogs ticket.ActivityLogRepository,
	tx db.TxRunner,
	log logger.Interface,
) *Upserter {
	return &Upserter{
		tickets:      tickets,
		technicians:  technicians,
		activityLogs: activityLogs,
		tx:           tx,
		logger:       log,
	}
}

// UpsertTechnician inserts or updates one technician. Updates touch only
// sync-owned fields; location, timezone and map visibility are set on
// first creation and never overwritten afterwards.
func (u *Upserter) UpsertTechnician(ctx context.Context, incoming *technician.Technician) (bool, error) {
	created := false
	err := u.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		existing, err := u.technicians.FindByExternalID(ctx, incoming.ExternalID())
		if err != nil {
			return err
		}

		if existing == nil {
			if err := u.technicians.Save(ctx, incoming); err != nil {
				return err
			}
			created = true
			return nil
		}

		existing.UpdateFromSync(incoming.Name(), incoming.Email(), incoming.Active())
		return u.technicians.Update(ctx, existing)
	})
	return created, err
}

// UpsertTechnicians merges a batch of technicians with partial-failure
// semantics.
func (u *Upserter) UpsertTechnicians(ctx context.Context, incoming []*technician.Technician) UpsertResult {
	var result UpsertResult
	for _, t := range incoming {
		created, err := u.UpsertTechnician(ctx, t)
		if err != nil {
			result.Failed++
			u.logger.Errorw("technician upsert failed, skipping record",
				"external_id", t.ExternalID(),
				"error", err,
			)
			continue
		}
		if created {
			result.Created++
		} else {
			result.Updated++
		}
	}
	return result
}

// UpsertTicket inserts or updates one ticket, folding in an enrichment
// result when available and otherwise preserving the existing row's
// enrichment-owned fields. When an existing row's assignee or status
// differs from the incoming value, a transition entry is appended after
// the write succeeds.
func (u *Upserter) UpsertTicket(
	ctx context.Context,
	incoming *ticket.Ticket,
	enrichment *EnrichmentResult,
	force bool,
) (*ticket.Ticket, bool, error) {
	created := false
	var written *ticket.Ticket

	err := u.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		existing, err := u.tickets.FindByExternalID(ctx, incoming.ExternalID())
		if err != nil {
			return err
		}

		if existing == nil {
			if enrichment != nil {
				incoming.ApplyEnrichment(
					enrichment.AssignedBy,
					enrichment.IsSelfPicked,
					enrichment.FirstAssignedAt,
					enrichment.FirstPublicReplyAt,
					force,
				)
			}
			if err := u.tickets.Save(ctx, incoming); err != nil {
				return err
			}
			created = true
			written = incoming
			return nil
		}

		prevAssignee := existing.AssignedTechID()
		prevStatus := existing.Status()

		if err := incoming.SetID(existing.ID()); err != nil {
			return err
		}
		incoming.PreserveEnrichmentFrom(existing)
		if enrichment != nil {
			incoming.ApplyEnrichment(
				enrichment.AssignedBy,
				enrichment.IsSelfPicked,
				enrichment.FirstAssignedAt,
				enrichment.FirstPublicReplyAt,
				force,
			)
		}

		if err := u.tickets.Update(ctx, incoming); err != nil {
			return err
		}
		written = incoming

		if !assigneeEqual(prevAssignee, incoming.AssignedTechID()) {
			if err := u.appendTransition(ctx, existing.ID(), ticket.ChangeReassigned,
				assigneeValue(prevAssignee), assigneeValue(incoming.AssignedTechID())); err != nil {
				return err
			}
		}
		if prevStatus != incoming.Status() {
			if err := u.appendTransition(ctx, existing.ID(), ticket.ChangeStatusChanged,
				prevStatus.String(), incoming.Status().String()); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return written, created, nil
}

// UpsertTickets merges a batch of tickets with partial-failure semantics,
// folding in enrichment results where available.
func (u *Upserter) UpsertTickets(
	ctx context.Context,
	incoming []*ticket.Ticket,
	enrichments map[int64]EnrichmentResult,
	force bool,
) UpsertResult {
	var result UpsertResult
	for _, t := range incoming {
		var enrichment *EnrichmentResult
		if e, ok := enrichments[t.ExternalID()]; ok {
			enrichment = &e
		}

		written, created, err := u.UpsertTicket(ctx, t, enrichment, force)
		if err != nil {
			result.Failed++
			u.logger.Errorw("ticket upsert failed, skipping record",
				"external_id", t.ExternalID(),
				"error", err,
			)
			continue
		}
		if created {
			result.Created++
		} else {
			result.Updated++
		}
		result.Tickets = append(result.Tickets, written)
	}
	return result
}

func (u *Upserter) appendTransition(ctx context.Context, ticketID uint, kind ticket.ChangeKind, from, to string) error {
	entry, err := ticket.NewActivityLog(ticketID, kind, from, to, biztime.NowUTC())
	if err != nil {
		return fmt.Errorf("build transition entry: %w", err)
	}
	return u.activityLogs.Save(ctx, entry)
}

func assigneeEqual(a, b *uint) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func assigneeValue(id *uint) string {
	if id == nil {
		return "unassigned"
	}
	return strconv.FormatUint(uint64(*id), 10)
}
