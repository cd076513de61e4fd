package mappers

import (
	"opsdesk/internal/domain/satisfaction"
	"opsdesk/internal/infrastructure/persistence/models"
	"opsdesk/internal/shared/biztime"
)

// SatisfactionMapper handles the conversion between satisfaction Response entities and persistence models.
type SatisfactionMapper interface {
	ToModel(r *satisfaction.Response) *models.SatisfactionResponseModel
	ToDomain(model *models.SatisfactionResponseModel) (*satisfaction.Response, error)
}

type SatisfactionMapperImpl struct{}

func NewSatisfactionMapper() SatisfactionMapper {
	return &SatisfactionMapperImpl{}
}

func (m *SatisfactionMapperImpl) ToModel(r *satisfaction.Response) *models.SatisfactionResponseModel {
	return &models.SatisfactionResponseModel{
		ID:               r.ID(),
		TicketID:         r.TicketID(),
		ExternalTicketID: r.ExternalTicketID(),
		Rating:           r.Rating(),
		Feedback:         r.Feedback(),
		RespondedAt:      r.RespondedAt().UnixMilli(),
	}
}

func (m *SatisfactionMapperImpl) ToDomain(model *models.SatisfactionResponseModel) (*satisfaction.Response, error) {
	return satisfaction.ReconstructResponse(
		model.ID,
		model.TicketID,
		model.ExternalTicketID,
		model.Rating,
		model.Feedback,
		biztime.MillisToTime(model.RespondedAt),
	)
}
