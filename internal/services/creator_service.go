package services

import (
	"context"
	"errors"
	"strings"

	apierrors "github.com/yukikurage/hoc-admin-api/internal/errors"
	"github.com/yukikurage/hoc-admin-api/internal/models"
	"github.com/yukikurage/hoc-admin-api/internal/repository"
	"gorm.io/gorm"
)

var ErrCreatorLinkExists = apierrors.Conflict("Responsabile already linked to this creator")

// CreatorService provides business logic for creators and their managers.
type CreatorService struct {
	repo         repository.CreatorRepository
	responsabili repository.ResponsabileRepository
	relations    repository.RelationRepository
}

func NewCreatorService(repo repository.CreatorRepository, responsabili repository.ResponsabileRepository, relations repository.RelationRepository) *CreatorService {
	return &CreatorService{repo: repo, responsabili: responsabili, relations: relations}
}

func (s *CreatorService) List(ctx context.Context, search string) ([]models.Creator, error) {
	creators, err := s.repo.List(ctx, repository.StaffFilter{Search: search})
	if err != nil {
		return nil, storeError(err, "Creator", "list creator")
	}
	return creators, nil
}

func (s *CreatorService) Get(ctx context.Context, id string) (*models.Creator, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "Creator", "load creator")
	}
	return c, nil
}

func (s *CreatorService) Create(ctx context.Context, input PersonInput) (*models.Creator, error) {
	in, err := input.validate(false)
	if err != nil {
		return nil, err
	}

	c := &models.Creator{Nome: in.Nome, Cognome: in.Cognome}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, storeError(err, "Creator", "create creator")
	}
	return c, nil
}

func (s *CreatorService) Update(ctx context.Context, id string, input PersonInput) (*models.Creator, error) {
	in, err := input.validate(false)
	if err != nil {
		return nil, err
	}

	c := &models.Creator{ID: id, Nome: in.Nome, Cognome: in.Cognome}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, storeError(err, "Creator", "update creator")
	}
	return s.Get(ctx, id)
}

// Delete removes the creator with its manager links and bookings.
func (s *CreatorService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return storeError(err, "Creator", "delete creator")
	}
	return nil
}

// ListResponsabili returns the manager links of a creator, newest first.
func (s *CreatorService) ListResponsabili(ctx context.Context, creatorID string) ([]models.ResponsabileCreator, error) {
	if _, err := s.Get(ctx, creatorID); err != nil {
		return nil, err
	}
	links, err := s.relations.ListCreatorLinksByCreator(ctx, creatorID)
	if err != nil {
		return nil, storeError(err, "Relazione", "list creator links")
	}
	return links, nil
}

// LinkResponsabile assigns a manager to a creator. A pair can be linked once.
func (s *CreatorService) LinkResponsabile(ctx context.Context, creatorID, responsabileID string) (*models.ResponsabileCreator, error) {
	responsabileID = strings.TrimSpace(responsabileID)
	if responsabileID == "" {
		return nil, apierrors.Validation("Invalid request body", apierrors.FieldError{Field: "idResponsabile", Rule: "required", Message: "is required"})
	}
	if _, err := s.Get(ctx, creatorID); err != nil {
		return nil, err
	}
	if _, err := s.responsabili.FindByID(ctx, responsabileID); err != nil {
		return nil, storeError(err, "Responsabile", "load responsabile")
	}

	link := &models.ResponsabileCreator{IDCreator: creatorID, IDResponsabile: responsabileID}
	if err := s.relations.CreateCreatorLink(ctx, link); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrCreatorLinkExists
		}
		return nil, storeError(err, "Relazione", "link creator")
	}
	return link, nil
}
