package services

import (
	"context"
	"errors"
	"strings"

	apierrors "github.com/yukikurage/hoc-admin-api/internal/errors"
	"github.com/yukikurage/hoc-admin-api/internal/models"
	"github.com/yukikurage/hoc-admin-api/internal/policy"
	"github.com/yukikurage/hoc-admin-api/internal/repository"
	"gorm.io/gorm"
)

// RelationService manages manager-operator links.
type RelationService struct {
	relations    repository.RelationRepository
	operatori    repository.OperatoreRepository
	responsabili repository.ResponsabileRepository
	users        repository.UserRepository
}

func NewRelationService(relations repository.RelationRepository, operatori repository.OperatoreRepository, responsabili repository.ResponsabileRepository, users repository.UserRepository) *RelationService {
	return &RelationService{relations: relations, operatori: operatori, responsabili: responsabili, users: users}
}

// List returns links newest first. Managers see rows carrying their id,
// operators rows carrying theirs.
func (s *RelationService) List(ctx context.Context, caller Caller) ([]models.ResponsabileOperatore, error) {
	var filter repository.RelationFilter

	switch caller.Role {
	case models.RoleAdmin, models.RoleAmministratore:
	case models.RoleResponsabile:
		filter.ResponsabileID = &caller.UserID
	case models.RoleOperatore:
		filter.OperatoreID = &caller.UserID
	default:
		return nil, apierrors.Forbidden("Access denied")
	}

	links, err := s.relations.ListOperatorLinks(ctx, filter)
	if err != nil {
		return nil, storeError(err, "Relazione", "list relazioni")
	}
	return links, nil
}

// CreateRelationInput links an operator to a manager. IDResponsabile defaults to the
// caller for managers, who may only link operators to themselves.
type CreateRelationInput struct {
	IDOperatore    string
	IDResponsabile string
}

// Create appends a link and makes it current for both sides.
func (s *RelationService) Create(ctx context.Context, caller Caller, input CreateRelationInput) (*models.ResponsabileOperatore, error) {
	var v fieldCheck
	opID := v.required("idOperatore", input.IDOperatore)
	respID := strings.TrimSpace(input.IDResponsabile)
	if respID == "" && caller.Role == models.RoleResponsabile {
		respID = caller.UserID
	}
	if respID == "" {
		v.add("idResponsabile", "required", "", "is required")
	}
	if err := v.err(); err != nil {
		return nil, err
	}

	if !caller.IsAdmin() && respID != caller.UserID {
		return nil, apierrors.Forbidden("Managers can only link operators to themselves")
	}

	if _, err := s.operatori.FindByID(ctx, opID); err != nil {
		return nil, storeError(err, "Operatore", "load operatore")
	}
	if err := s.ensureManager(ctx, respID); err != nil {
		return nil, err
	}

	rel := &models.ResponsabileOperatore{IDOperatore: opID, IDResponsabile: respID}
	if err := s.relations.CreateOperatorLink(ctx, rel); err != nil {
		return nil, storeError(err, "Relazione", "create relazione")
	}
	return s.Get(ctx, rel.ID)
}

// Authorize applies the policy to a link creation whose target operator is
// carried in the body.
func (s *RelationService) Authorize(ctx context.Context, caller Caller, operatoreID string) error {
	return policy.Decide(ctx, policy.Request{
		Role:     caller.Role,
		CallerID: caller.UserID,
		Action:   policy.ActionCreate,
		Resource: policy.ResourceRelation,
		TargetID: strings.TrimSpace(operatoreID),
	}, s.relations)
}

func (s *RelationService) Get(ctx context.Context, id string) (*models.ResponsabileOperatore, error) {
	rel, err := s.relations.FindOperatorLink(ctx, id)
	if err != nil {
		return nil, storeError(err, "Relazione", "load relazione")
	}
	return rel, nil
}

func (s *RelationService) Delete(ctx context.Context, id string) error {
	if err := s.relations.DeleteOperatorLink(ctx, id); err != nil {
		return storeError(err, "Relazione", "delete relazione")
	}
	return nil
}

// ensureManager accepts a manager record id or the id of a RESPONSABILE account.
func (s *RelationService) ensureManager(ctx context.Context, id string) error {
	_, err := s.responsabili.FindByID(ctx, id)
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return storeError(err, "Responsabile", "load responsabile")
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return storeError(err, "Responsabile", "load responsabile")
	}
	if user.Role != models.RoleResponsabile {
		return apierrors.NotFound("Responsabile not found")
	}
	return nil
}
