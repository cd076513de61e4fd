package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"opsdesk/internal/domain/technician"
	"opsdesk/internal/infrastructure/persistence/mappers"
	"opsdesk/internal/infrastructure/persistence/models"
	"opsdesk/internal/shared/db"
)

type TechnicianRepository struct {
	db     *gorm.DB
	mapper mappers.TechnicianMapper
}

func NewTechnicianRepository(db *gorm.DB) *TechnicianRepository {
	return &TechnicianRepository{
		db:     db,
		mapper: mappers.NewTechnicianMapper(),
	}
}

func (r *TechnicianRepository) Save(ctx context.Context, t *technician.Technician) error {
	model := r.mapper.ToModel(t)
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.Create(model).Error; err != nil {
		return fmt.Errorf("failed to save technician: %w", err)
	}

	return t.SetID(model.ID)
}

// Update writes only the sync-owned columns. Location, timezone and map
// visibility are owned by manual dashboard edits and are never part of
// this statement.
func (r *TechnicianRepository) Update(ctx context.Context, t *technician.Technician) error {
	model := r.mapper.ToModel(t)
	tx := db.GetTxFromContext(ctx, r.db)

	result := tx.
		Model(&models.TechnicianModel{}).
		Where("id = ?", model.ID).
		Select("name", "email", "active", "updated_at").
		Updates(model)

	if result.Error != nil {
		return fmt.Errorf("failed to update technician: %w", result.Error)
	}
	return nil
}

func (r *TechnicianRepository) FindByExternalID(ctx context.Context, externalID int64) (*technician.Technician, error) {
	var model models.TechnicianModel
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.
		Where("external_id = ?", externalID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find technician: %w", err)
	}

	return r.mapper.ToDomain(&model)
}

func (r *TechnicianRepository) ListActive(ctx context.Context) ([]*technician.Technician, error) {
	var modelList []models.TechnicianModel
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.
		Where("active = ?", true).
		Order("id ASC").
		Find(&modelList).Error; err != nil {
		return nil, fmt.Errorf("failed to list active technicians: %w", err)
	}

	technicians := make([]*technician.Technician, 0, len(modelList))
	for i := range modelList {
		t, err := r.mapper.ToDomain(&modelList[i])
		if err != nil {
			return nil, err
		}
		technicians = append(technicians, t)
	}
	return technicians, nil
}
