package mappers

import (
	"opsdesk/internal/domain/technician"
	"opsdesk/internal/infrastructure/persistence/models"
	"opsdesk/internal/shared/biztime"
)

// TechnicianMapper handles the conversion between Technician domain entities and persistence models.
type TechnicianMapper interface {
	ToModel(t *technician.Technician) *models.TechnicianModel
	ToDomain(model *models.TechnicianModel) (*technician.Technician, error)
}

type TechnicianMapperImpl struct{}

func NewTechnicianMapper() TechnicianMapper {
	return &TechnicianMapperImpl{}
}

func (m *TechnicianMapperImpl) ToModel(t *technician.Technician) *models.TechnicianModel {
	return &models.TechnicianModel{
		ID:         t.ID(),
		ExternalID: t.ExternalID(),
		Name:       t.Name(),
		Email:      t.Email(),
		Active:     t.Active(),
		Location:   t.Location(),
		Timezone:   t.Timezone(),
		ShowOnMap:  t.ShowOnMap(),
		CreatedAt:  t.CreatedAt().UnixMilli(),
		UpdatedAt:  t.UpdatedAt().UnixMilli(),
	}
}

func (m *TechnicianMapperImpl) ToDomain(model *models.TechnicianModel) (*technician.Technician, error) {
	return technician.ReconstructTechnician(
		model.ID,
		model.ExternalID,
		model.Name,
		model.Email,
		model.Active,
		model.Location,
		model.Timezone,
		model.ShowOnMap,
		biztime.MillisToTime(model.CreatedAt),
		biztime.MillisToTime(model.UpdatedAt),
	)
}
