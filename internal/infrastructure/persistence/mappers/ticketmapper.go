package mappers

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"opsdesk/internal/domain/ticket"
	vo "opsdesk/internal/domain/ticket/value_objects"
	"opsdesk/internal/infrastructure/persistence/models"
	"opsdesk/internal/shared/biztime"
)

// TicketMapper handles the conversion between Ticket domain entities and persistence models.
type TicketMapper interface {
	// ToModel converts a ticket domain entity to a persistence model.
	ToModel(t *ticket.Ticket) *models.TicketModel

	// ToDomain converts a ticket persistence model to a domain entity.
	ToDomain(model *models.TicketModel) (*ticket.Ticket, error)

	// ActivityLogToModel converts a transition audit entry to a persistence model.
	ActivityLogToModel(entry *ticket.ActivityLog) *models.ActivityLogModel

	// ActivityLogToDomain converts an audit persistence model to a domain entity.
	ActivityLogToDomain(model *models.ActivityLogModel) *ticket.ActivityLog
}

// TicketMapperImpl is the concrete implementation of TicketMapper.
type TicketMapperImpl struct{}

// NewTicketMapper creates a new TicketMapper.
func NewTicketMapper() TicketMapper {
	return &TicketMapperImpl{}
}

// ToModel converts a ticket domain entity to a persistence model.
func (m *TicketMapperImpl) ToModel(t *ticket.Ticket) *models.TicketModel {
	model := &models.TicketModel{
		ID:                  t.ID(),
		ExternalID:          t.ExternalID(),
		Subject:             t.Subject(),
		Status:              t.Status().String(),
		Priority:            t.Priority().String(),
		ResponderExternalID: t.ResponderExternalID(),
		AssignedTechID:      t.AssignedTechID(),
		AssignedBy:          t.AssignedBy(),
		IsSelfPicked:        t.IsSelfPicked(),
		FirstAssignedAt:     biztime.TimePtrToMillis(t.FirstAssignedAt()),
		FirstPublicReplyAt:  biztime.TimePtrToMillis(t.FirstPublicReplyAt()),
		RequesterExternalID: t.RequesterExternalID(),
		RequesterID:         t.RequesterID(),
		TicketCreatedAt:     t.CreatedAt().UnixMilli(),
		TicketUpdatedAt:     t.UpdatedAt().UnixMilli(),
		ResolvedAt:          biztime.TimePtrToMillis(t.ResolvedAt()),
		ClosedAt:            biztime.TimePtrToMillis(t.ClosedAt()),
	}

	if fields := t.CustomFields(); len(fields) > 0 {
		fieldsJSON, _ := json.Marshal(fields)
		model.CustomFields = datatypes.JSON(fieldsJSON)
	}

	return model
}

// ToDomain converts a ticket persistence model to a domain entity.
func (m *TicketMapperImpl) ToDomain(model *models.TicketModel) (*ticket.Ticket, error) {
	status, err := vo.NewStatus(model.Status)
	if err != nil {
		return nil, fmt.Errorf("invalid ticket status (id=%d): %w", model.ID, err)
	}
	priority, err := vo.NewPriority(model.Priority)
	if err != nil {
		return nil, fmt.Errorf("invalid ticket priority (id=%d): %w", model.ID, err)
	}

	var customFields map[string]interface{}
	if len(model.CustomFields) > 0 {
		if err := json.Unmarshal(model.CustomFields, &customFields); err != nil {
			return nil, fmt.Errorf("failed to unmarshal ticket custom fields (id=%d): %w", model.ID, err)
		}
	}

	return ticket.ReconstructTicket(
		model.ID,
		model.ExternalID,
		model.Subject,
		status,
		priority,
		model.ResponderExternalID,
		model.AssignedTechID,
		model.AssignedBy,
		model.IsSelfPicked,
		biztime.MillisToTimePtr(model.FirstAssignedAt),
		biztime.MillisToTimePtr(model.FirstPublicReplyAt),
		model.RequesterExternalID,
		model.RequesterID,
		customFields,
		biztime.MillisToTime(model.TicketCreatedAt),
		biztime.MillisToTime(model.TicketUpdatedAt),
		biztime.MillisToTimePtr(model.ResolvedAt),
		biztime.MillisToTimePtr(model.ClosedAt),
	)
}

// ActivityLogToModel converts a transition audit entry to a persistence model.
func (m *TicketMapperImpl) ActivityLogToModel(entry *ticket.ActivityLog) *models.ActivityLogModel {
	return &models.ActivityLogModel{
		ID:         entry.ID(),
		TicketID:   entry.TicketID(),
		Kind:       string(entry.Kind()),
		FromValue:  entry.FromValue(),
		ToValue:    entry.ToValue(),
		DetectedAt: entry.DetectedAt().UnixMilli(),
	}
}

// ActivityLogToDomain converts an audit persistence model to a domain entity.
func (m *TicketMapperImpl) ActivityLogToDomain(model *models.ActivityLogModel) *ticket.ActivityLog {
	return ticket.ReconstructActivityLog(
		model.ID,
		model.TicketID,
		ticket.ChangeKind(model.Kind),
		model.FromValue,
		model.ToValue,
		biztime.MillisToTime(model.DetectedAt),
	)
}
