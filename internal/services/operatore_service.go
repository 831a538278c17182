package services

import (
	"context"

	apierrors "github.com/yukikurage/hoc-admin-api/internal/errors"
	"github.com/yukikurage/hoc-admin-api/internal/models"
	"github.com/yukikurage/hoc-admin-api/internal/repository"
)

// OperatoreService provides business logic for operator records.
type OperatoreService struct {
	repo repository.OperatoreRepository
}

// NewOperatoreService creates a new OperatoreService.
func NewOperatoreService(repo repository.OperatoreRepository) *OperatoreService {
	return &OperatoreService{repo: repo}
}

// List returns the operators visible to the caller ordered by surname:
// administrators see all, a manager those linked to it, an operator itself.
func (s *OperatoreService) List(ctx context.Context, caller Caller, search string) ([]models.Operatore, error) {
	filter := repository.StaffFilter{Search: search}

	switch caller.Role {
	case models.RoleAdmin, models.RoleAmministratore:
	case models.RoleResponsabile:
		filter.LinkedToResponsabile = &caller.UserID
	case models.RoleOperatore:
		filter.OnlyID = &caller.UserID
	default:
		return nil, apierrors.Forbidden("Access denied")
	}

	operatori, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, storeError(err, "Operatore", "list operatori")
	}
	return operatori, nil
}

func (s *OperatoreService) Get(ctx context.Context, id string) (*models.Operatore, error) {
	op, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "Operatore", "load operatore")
	}
	return op, nil
}

// Create stores a new operator. When a manager creates it, the operator is
// linked to that manager in the same transaction.
func (s *OperatoreService) Create(ctx context.Context, caller Caller, input PersonInput) (*models.Operatore, error) {
	in, err := input.validate(true)
	if err != nil {
		return nil, err
	}

	op := &models.Operatore{Nome: in.Nome, Cognome: in.Cognome, Email: in.Email}

	if caller.Role == models.RoleResponsabile {
		if _, err := s.repo.CreateWithRelation(ctx, op, caller.UserID); err != nil {
			return nil, storeError(err, "Operatore", "create operatore")
		}
		return op, nil
	}

	if err := s.repo.Create(ctx, op); err != nil {
		return nil, storeError(err, "Operatore", "create operatore")
	}
	return op, nil
}

func (s *OperatoreService) Update(ctx context.Context, id string, input PersonInput) (*models.Operatore, error) {
	in, err := input.validate(true)
	if err != nil {
		return nil, err
	}

	op := &models.Operatore{ID: id, Nome: in.Nome, Cognome: in.Cognome, Email: in.Email}
	if err := s.repo.Update(ctx, op); err != nil {
		return nil, storeError(err, "Operatore", "update operatore")
	}
	return s.Get(ctx, id)
}

func (s *OperatoreService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return storeError(err, "Operatore", "delete operatore")
	}
	return nil
}
