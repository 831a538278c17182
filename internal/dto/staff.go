package dto

import (
	"time"

	"github.com/yukikurage/hoc-admin-api/internal/models"
)

// RelazioneDTO is a manager-operator link with its operator.
type RelazioneDTO struct {
	ID             string            `json:"id"`
	IDOperatore    string            `json:"idOperatore"`
	IDResponsabile string            `json:"idResponsabile"`
	CreatedAt      time.Time         `json:"createdAt"`
	Operatore      *models.Operatore `json:"operatore,omitempty"`
}

// CreatorLinkDTO is a manager-creator link.
type CreatorLinkDTO struct {
	ID             string               `json:"id"`
	IDCreator      string               `json:"idCreator"`
	IDResponsabile string               `json:"idResponsabile"`
	CreatedAt      time.Time            `json:"createdAt"`
	Responsabile   *models.Responsabile `json:"responsabile,omitempty"`
	Creator        *models.Creator      `json:"creator,omitempty"`
}

func ToRelazioneDTO(rel models.ResponsabileOperatore) RelazioneDTO {
	return RelazioneDTO{
		ID:             rel.ID,
		IDOperatore:    rel.IDOperatore,
		IDResponsabile: rel.IDResponsabile,
		CreatedAt:      rel.CreatedAt,
		Operatore:      rel.Operatore,
	}
}

func ToRelazioneDTOs(rels []models.ResponsabileOperatore) []RelazioneDTO {
	out := make([]RelazioneDTO, len(rels))
	for i, rel := range rels {
		out[i] = ToRelazioneDTO(rel)
	}
	return out
}

func ToCreatorLinkDTOs(links []models.ResponsabileCreator) []CreatorLinkDTO {
	out := make([]CreatorLinkDTO, len(links))
	for i, l := range links {
		out[i] = CreatorLinkDTO{
			ID:             l.ID,
			IDCreator:      l.IDCreator,
			IDResponsabile: l.IDResponsabile,
			CreatedAt:      l.CreatedAt,
			Responsabile:   l.Responsabile,
			Creator:        l.Creator,
		}
	}
	return out
}
