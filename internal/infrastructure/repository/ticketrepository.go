package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"opsdesk/internal/domain/ticket"
	"opsdesk/internal/infrastructure/persistence/mappers"
	"opsdesk/internal/infrastructure/persistence/models"
	"opsdesk/internal/shared/db"
)

type TicketRepository struct {
	db     *gorm.DB
	mapper mappers.TicketMapper
}

func NewTicketRepository(db *gorm.DB) *TicketRepository {
	return &TicketRepository{
		db:     db,
		mapper: mappers.NewTicketMapper(),
	}
}

func (r *TicketRepository) Save(ctx context.Context, t *ticket.Ticket) error {
	model := r.mapper.ToModel(t)
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.Create(model).Error; err != nil {
		return fmt.Errorf("failed to save ticket: %w", err)
	}

	return t.SetID(model.ID)
}

func (r *TicketRepository) Update(ctx context.Context, t *ticket.Ticket) error {
	model := r.mapper.ToModel(t)
	tx := db.GetTxFromContext(ctx, r.db)

	// Select("*") forces nil pointer columns through; Updates would
	// otherwise skip zero values and a cleared assignee would survive.
	result := tx.
		Model(&models.TicketModel{}).
		Where("id = ?", model.ID).
		Select("*").
		Omit("id", "created_at").
		Updates(model)

	if result.Error != nil {
		return fmt.Errorf("failed to update ticket: %w", result.Error)
	}

	return nil
}

func (r *TicketRepository) FindByExternalID(ctx context.Context, externalID int64) (*ticket.Ticket, error) {
	var model models.TicketModel
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.
		Where("external_id = ?", externalID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find ticket: %w", err)
	}

	return r.mapper.ToDomain(&model)
}

func (r *TicketRepository) FindByExternalIDs(ctx context.Context, externalIDs []int64) (map[int64]*ticket.Ticket, error) {
	result := make(map[int64]*ticket.Ticket, len(externalIDs))
	if len(externalIDs) == 0 {
		return result, nil
	}

	var modelList []models.TicketModel
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.
		Where("external_id IN ?", externalIDs).
		Find(&modelList).Error; err != nil {
		return nil, fmt.Errorf("failed to find tickets: %w", err)
	}

	for i := range modelList {
		t, err := r.mapper.ToDomain(&modelList[i])
		if err != nil {
			return nil, err
		}
		result[t.ExternalID()] = t
	}
	return result, nil
}

func (r *TicketRepository) UnlinkedRequesterRefs(ctx context.Context) ([]int64, error) {
	var refs []int64
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.
		Model(&models.TicketModel{}).
		Distinct("requester_external_id").
		Where("requester_external_id IS NOT NULL AND requester_id IS NULL").
		Pluck("requester_external_id", &refs).Error; err != nil {
		return nil, fmt.Errorf("failed to list unlinked requester refs: %w", err)
	}
	return refs, nil
}

func (r *TicketRepository) LinkRequesterRef(ctx context.Context, requesterExternalID int64, requesterID uint) error {
	tx := db.GetTxFromContext(ctx, r.db)

	result := tx.
		Model(&models.TicketModel{}).
		Where("requester_external_id = ? AND requester_id IS NULL", requesterExternalID).
		Update("requester_id", requesterID)

	if result.Error != nil {
		return fmt.Errorf("failed to link requester: %w", result.Error)
	}
	return nil
}
