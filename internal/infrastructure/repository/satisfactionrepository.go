package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"opsdesk/internal/domain/satisfaction"
	"opsdesk/internal/infrastructure/persistence/mappers"
	"opsdesk/internal/infrastructure/persistence/models"
	"opsdesk/internal/shared/db"
)

type SatisfactionRepository struct {
	db     *gorm.DB
	mapper mappers.SatisfactionMapper
}

func NewSatisfactionRepository(db *gorm.DB) *SatisfactionRepository {
	return &SatisfactionRepository{
		db:     db,
		mapper: mappers.NewSatisfactionMapper(),
	}
}

func (r *SatisfactionRepository) Save(ctx context.Context, response *satisfaction.Response) error {
	model := r.mapper.ToModel(response)
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.Create(model).Error; err != nil {
		return fmt.Errorf("failed to save satisfaction response: %w", err)
	}

	return response.SetID(model.ID)
}

func (r *SatisfactionRepository) FindByTicketID(ctx context.Context, ticketID uint) (*satisfaction.Response, error) {
	var model models.SatisfactionResponseModel
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.
		Where("ticket_id = ?", ticketID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find satisfaction response: %w", err)
	}

	return r.mapper.ToDomain(&model)
}
