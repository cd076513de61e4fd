package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"opsdesk/internal/domain/ticket"
	"opsdesk/internal/infrastructure/persistence/mappers"
	"opsdesk/internal/infrastructure/persistence/models"
	"opsdesk/internal/shared/db"
)

type ActivityLogRepository struct {
	db     *gorm.DB
	mapper mappers.TicketMapper
}

func NewActivityLogRepository(db *gorm.DB) *ActivityLogRepository {
	return &ActivityLogRepository{
		db:     db,
		mapper: mappers.NewTicketMapper(),
	}
}

func (r *ActivityLogRepository) Save(ctx context.Context, entry *ticket.ActivityLog) error {
	model := r.mapper.ActivityLogToModel(entry)
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.Create(model).Error; err != nil {
		return fmt.Errorf("failed to save activity log: %w", err)
	}

	return entry.SetID(model.ID)
}

func (r *ActivityLogRepository) ListByTicketID(ctx context.Context, ticketID uint) ([]*ticket.ActivityLog, error) {
	var modelList []models.ActivityLogModel
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.
		Where("ticket_id = ?", ticketID).
		Order("detected_at ASC").
		Find(&modelList).Error; err != nil {
		return nil, fmt.Errorf("failed to list activity logs: %w", err)
	}

	entries := make([]*ticket.ActivityLog, 0, len(modelList))
	for i := range modelList {
		entries = append(entries, r.mapper.ActivityLogToDomain(&modelList[i]))
	}
	return entries, nil
}

func (r *ActivityLogRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.Model(&models.ActivityLogModel{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count activity logs: %w", err)
	}
	return count, nil
}
