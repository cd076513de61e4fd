package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"opsdesk/internal/domain/syncrun"
	"opsdesk/internal/infrastructure/persistence/mappers"
	"opsdesk/internal/infrastructure/persistence/models"
	"opsdesk/internal/shared/db"
)

type SyncRunRepository struct {
	db     *gorm.DB
	mapper mappers.SyncRunMapper
}

func NewSyncRunRepository(db *gorm.DB) *SyncRunRepository {
	return &SyncRunRepository{
		db:     db,
		mapper: mappers.NewSyncRunMapper(),
	}
}

func (r *SyncRunRepository) Save(ctx context.Context, run *syncrun.SyncRun) error {
	model := r.mapper.ToModel(run)
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.Create(model).Error; err != nil {
		return fmt.Errorf("failed to save sync run: %w", err)
	}

	return run.SetID(model.ID)
}

func (r *SyncRunRepository) Update(ctx context.Context, run *syncrun.SyncRun) error {
	model := r.mapper.ToModel(run)
	tx := db.GetTxFromContext(ctx, r.db)

	result := tx.
		Model(&models.SyncRunModel{}).
		Where("id = ?", model.ID).
		Select("*").
		Omit("id", "run_uid", "created_at").
		Updates(model)

	if result.Error != nil {
		return fmt.Errorf("failed to update sync run: %w", result.Error)
	}
	return nil
}

func (r *SyncRunRepository) FindLastSuccessful(ctx context.Context) (*syncrun.SyncRun, error) {
	var model models.SyncRunModel
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.
		Where("status = ?", string(syncrun.StatusCompleted)).
		Order("completed_at DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find last successful run: %w", err)
	}

	return r.mapper.ToDomain(&model)
}

func (r *SyncRunRepository) List(ctx context.Context, limit int) ([]*syncrun.SyncRun, error) {
	if limit <= 0 {
		limit = 20
	}

	var modelList []models.SyncRunModel
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.
		Order("started_at DESC").
		Limit(limit).
		Find(&modelList).Error; err != nil {
		return nil, fmt.Errorf("failed to list sync runs: %w", err)
	}

	runs := make([]*syncrun.SyncRun, 0, len(modelList))
	for i := range modelList {
		run, err := r.mapper.ToDomain(&modelList[i])
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, nil
}
