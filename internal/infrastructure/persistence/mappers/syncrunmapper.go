package mappers

import (
	"opsdesk/internal/domain/syncrun"
	"opsdesk/internal/infrastructure/persistence/models"
	"opsdesk/internal/shared/biztime"
)

// SyncRunMapper handles the conversion between SyncRun domain entities and persistence models.
type SyncRunMapper interface {
	ToModel(run *syncrun.SyncRun) *models.SyncRunModel
	ToDomain(model *models.SyncRunModel) (*syncrun.SyncRun, error)
}

type SyncRunMapperImpl struct{}

func NewSyncRunMapper() SyncRunMapper {
	return &SyncRunMapperImpl{}
}

func (m *SyncRunMapperImpl) ToModel(run *syncrun.SyncRun) *models.SyncRunModel {
	counts := run.Counts()
	return &models.SyncRunModel{
		ID:                run.ID(),
		RunUID:            run.RunUID(),
		Kind:              string(run.Kind()),
		Status:            string(run.Status()),
		StartedAt:         run.StartedAt().UnixMilli(),
		CompletedAt:       biztime.TimePtrToMillis(run.CompletedAt()),
		TechnicianCount:   counts.Technicians,
		TicketCount:       counts.Tickets,
		RequesterCount:    counts.Requesters,
		SatisfactionCount: counts.Satisfaction,
		EnrichedCount:     counts.Enriched,
		FailedCount:       counts.Failed,
		ErrorMessage:      run.ErrorMessage(),
	}
}

func (m *SyncRunMapperImpl) ToDomain(model *models.SyncRunModel) (*syncrun.SyncRun, error) {
	return syncrun.Reconstruct(
		model.ID,
		model.RunUID,
		syncrun.Kind(model.Kind),
		syncrun.Status(model.Status),
		biztime.MillisToTime(model.StartedAt),
		biztime.MillisToTimePtr(model.CompletedAt),
		syncrun.Counts{
			Technicians:  model.TechnicianCount,
			Tickets:      model.TicketCount,
			Requesters:   model.RequesterCount,
			Satisfaction: model.SatisfactionCount,
			Enriched:     model.EnrichedCount,
			Failed:       model.FailedCount,
		},
		model.ErrorMessage,
	)
}
