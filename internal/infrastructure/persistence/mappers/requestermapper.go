package mappers

import (
	"opsdesk/internal/domain/requester"
	"opsdesk/internal/infrastructure/persistence/models"
	"opsdesk/internal/shared/biztime"
)

// RequesterMapper handles the conversion between Requester domain entities and persistence models.
type RequesterMapper interface {
	ToModel(r *requester.Requester) *models.RequesterModel
	ToDomain(model *models.RequesterModel) (*requester.Requester, error)
}

type RequesterMapperImpl struct{}

func NewRequesterMapper() RequesterMapper {
	return &RequesterMapperImpl{}
}

func (m *RequesterMapperImpl) ToModel(r *requester.Requester) *models.RequesterModel {
	return &models.RequesterModel{
		ID:         r.ID(),
		ExternalID: r.ExternalID(),
		Name:       r.Name(),
		Email:      r.Email(),
		CreatedAt:  r.CreatedAt().UnixMilli(),
	}
}

func (m *RequesterMapperImpl) ToDomain(model *models.RequesterModel) (*requester.Requester, error) {
	return requester.ReconstructRequester(
		model.ID,
		model.ExternalID,
		model.Name,
		model.Email,
		biztime.MillisToTime(model.CreatedAt),
	)
}
