package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"opsdesk/internal/domain/requester"
	"opsdesk/internal/infrastructure/persistence/mappers"
	"opsdesk/internal/infrastructure/persistence/models"
	"opsdesk/internal/shared/db"
)

type RequesterRepository struct {
	db     *gorm.DB
	mapper mappers.RequesterMapper
}

func NewRequesterRepository(db *gorm.DB) *RequesterRepository {
	return &RequesterRepository{
		db:     db,
		mapper: mappers.NewRequesterMapper(),
	}
}

func (r *RequesterRepository) Save(ctx context.Context, req *requester.Requester) error {
	model := r.mapper.ToModel(req)
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.Create(model).Error; err != nil {
		return fmt.Errorf("failed to save requester: %w", err)
	}

	return req.SetID(model.ID)
}

func (r *RequesterRepository) FindByExternalID(ctx context.Context, externalID int64) (*requester.Requester, error) {
	var model models.RequesterModel
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.
		Where("external_id = ?", externalID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find requester: %w", err)
	}

	return r.mapper.ToDomain(&model)
}

func (r *RequesterRepository) ExistingExternalIDs(ctx context.Context, externalIDs []int64) (map[int64]uint, error) {
	result := make(map[int64]uint, len(externalIDs))
	if len(externalIDs) == 0 {
		return result, nil
	}

	var modelList []models.RequesterModel
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.
		Select("id", "external_id").
		Where("external_id IN ?", externalIDs).
		Find(&modelList).Error; err != nil {
		return nil, fmt.Errorf("failed to check cached requesters: %w", err)
	}

	for _, m := range modelList {
		result[m.ExternalID] = m.ID
	}
	return result, nil
}
