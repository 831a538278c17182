// Package policy decides whether a caller may perform an action on a
// resource. Decisions depend only on their inputs and the ownership lookup,
// and are recomputed on every request.
package policy

import (
	"context"
	"fmt"

	apierrors "github.com/yukikurage/hoc-admin-api/internal/errors"
	"github.com/yukikurage/hoc-admin-api/internal/models"
)

type Action string

const (
	ActionList   Action = "list"
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

var AllActions = []Action{ActionList, ActionRead, ActionCreate, ActionUpdate, ActionDelete}

type Resource string

const (
	ResourceAccount      Resource = "account"
	ResourceOperatore    Resource = "operatore"
	ResourceResponsabile Resource = "responsabile"
	ResourceRelation     Resource = "relation"
	ResourceCreator      Resource = "creator"
	ResourceBooking      Resource = "booking"
	ResourceUtente       Resource = "utente"
	ResourceRichiesta    Resource = "richiesta"
)

var AllResources = []Resource{
	ResourceAccount, ResourceOperatore, ResourceResponsabile, ResourceRelation,
	ResourceCreator, ResourceBooking, ResourceUtente, ResourceRichiesta,
}

// Request is one authorization question.
//
// TargetID is the id the action addresses: a path id, or for relation
// creation the operator id carried in the body. It is empty for list and for
// creates that address no existing record.
type Request struct {
	Role     models.Role
	CallerID string
	Action   Action
	Resource Resource
	TargetID string
}

// OwnershipLookup answers whether a manager is linked to an operator through
// any manager-operator relation row.
type OwnershipLookup interface {
	IsLinked(ctx context.Context, responsabileID, operatoreID string) (bool, error)
}

var (
	ErrDenied       = apierrors.Forbidden("Access denied")
	ErrNotLinked    = apierrors.Forbidden("Not authorized to access this operator")
	ErrNotOwnRecord = apierrors.Forbidden("Not authorized to access this data")
)

// Decide returns nil when req is allowed, a Forbidden error when it is not,
// or an internal error when the ownership lookup fails.
func Decide(ctx context.Context, req Request, owners OwnershipLookup) error {
	if req.Action == ActionDelete {
		switch req.Role {
		case models.RoleAdmin, models.RoleAmministratore:
			return nil
		case models.RoleResponsabile, models.RoleOperatore:
			return ErrDenied
		default:
			return unknownRole(req.Role)
		}
	}

	switch req.Role {
	case models.RoleAdmin:
		return nil
	case models.RoleAmministratore:
		if req.Resource == ResourceAccount && req.Action == ActionCreate {
			return ErrDenied
		}
		return nil
	case models.RoleResponsabile:
		return decideResponsabile(ctx, req, owners)
	case models.RoleOperatore:
		return decideOperatore(req)
	default:
		return unknownRole(req.Role)
	}
}

func decideResponsabile(ctx context.Context, req Request, owners OwnershipLookup) error {
	switch req.Resource {
	case ResourceOperatore:
		if req.Action == ActionList || (req.Action == ActionCreate && req.TargetID == "") {
			return nil
		}
		return requireLink(ctx, req, owners)
	case ResourceRelation:
		switch req.Action {
		case ActionList:
			return nil
		case ActionCreate:
			if req.TargetID == "" {
				return nil
			}
			return requireLink(ctx, req, owners)
		}
		return ErrDenied
	case ResourceResponsabile:
		switch req.Action {
		case ActionList, ActionCreate:
			return nil
		case ActionRead, ActionUpdate:
			return requireSelf(req)
		}
		return ErrDenied
	case ResourceCreator:
		return allowActions(req, ActionList, ActionRead)
	case ResourceBooking:
		return allowActions(req, ActionList, ActionRead, ActionCreate)
	case ResourceUtente, ResourceRichiesta:
		return allowActions(req, ActionList, ActionRead, ActionCreate, ActionUpdate)
	case ResourceAccount:
		return ErrDenied
	}
	return unknownResource(req.Resource)
}

func decideOperatore(req Request) error {
	switch req.Resource {
	case ResourceOperatore, ResourceResponsabile:
		switch req.Action {
		case ActionList:
			return nil
		case ActionRead, ActionUpdate:
			return requireSelf(req)
		}
		return ErrDenied
	case ResourceCreator:
		return allowActions(req, ActionList, ActionRead)
	case ResourceBooking:
		return allowActions(req, ActionList, ActionRead, ActionCreate)
	case ResourceUtente, ResourceRichiesta:
		return allowActions(req, ActionList, ActionRead, ActionCreate)
	case ResourceRelation:
		return allowActions(req, ActionList)
	case ResourceAccount:
		return ErrDenied
	}
	return unknownResource(req.Resource)
}

func requireLink(ctx context.Context, req Request, owners OwnershipLookup) error {
	if req.TargetID == "" {
		return ErrDenied
	}
	linked, err := owners.IsLinked(ctx, req.CallerID, req.TargetID)
	if err != nil {
		return apierrors.Internal("Failed to verify authorization", err)
	}
	if !linked {
		return ErrNotLinked
	}
	return nil
}

func requireSelf(req Request) error {
	if req.TargetID == "" || req.TargetID != req.CallerID {
		return ErrNotOwnRecord
	}
	return nil
}

func allowActions(req Request, allowed ...Action) error {
	for _, a := range allowed {
		if req.Action == a {
			return nil
		}
	}
	return ErrDenied
}

func unknownRole(r models.Role) error {
	return apierrors.Forbidden(fmt.Sprintf("Unknown role %q", r))
}

func unknownResource(r Resource) error {
	return apierrors.Forbidden(fmt.Sprintf("Unknown resource %q", r))
}
