package services

import (
	"context"

	"github.com/yukikurage/hoc-admin-api/internal/models"
	"github.com/yukikurage/hoc-admin-api/internal/repository"
)

// ResponsabileService provides business logic for manager records.
type ResponsabileService struct {
	repo repository.ResponsabileRepository
}

func NewResponsabileService(repo repository.ResponsabileRepository) *ResponsabileService {
	return &ResponsabileService{repo: repo}
}

func (s *ResponsabileService) List(ctx context.Context, search string) ([]models.Responsabile, error) {
	responsabili, err := s.repo.List(ctx, repository.StaffFilter{Search: search})
	if err != nil {
		return nil, storeError(err, "Responsabile", "list responsabili")
	}
	return responsabili, nil
}

func (s *ResponsabileService) Get(ctx context.Context, id string) (*models.Responsabile, error) {
	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "Responsabile", "load responsabile")
	}
	return r, nil
}

func (s *ResponsabileService) Create(ctx context.Context, input PersonInput) (*models.Responsabile, error) {
	in, err := input.validate(true)
	if err != nil {
		return nil, err
	}

	r := &models.Responsabile{Nome: in.Nome, Cognome: in.Cognome, Email: in.Email}
	if err := s.repo.Create(ctx, r); err != nil {
		return nil, storeError(err, "Responsabile", "create responsabile")
	}
	return r, nil
}

func (s *ResponsabileService) Update(ctx context.Context, id string, input PersonInput) (*models.Responsabile, error) {
	in, err := input.validate(true)
	if err != nil {
		return nil, err
	}

	r := &models.Responsabile{ID: id, Nome: in.Nome, Cognome: in.Cognome, Email: in.Email}
	if err := s.repo.Update(ctx, r); err != nil {
		return nil, storeError(err, "Responsabile", "update responsabile")
	}
	return s.Get(ctx, id)
}

// Delete removes the manager together with its operator and creator links.
func (s *ResponsabileService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return storeError(err, "Responsabile", "delete responsabile")
	}
	return nil
}
