package policy

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "github.com/yukikurage/hoc-admin-api/internal/errors"
	"github.com/yukikurage/hoc-admin-api/internal/models"
)

type fakeLinks map[[2]string]bool

func (f fakeLinks) IsLinked(_ context.Context, responsabileID, operatoreID string) (bool, error) {
	return f[[2]string{responsabileID, operatoreID}], nil
}

type failingLinks struct{}

func (failingLinks) IsLinked(context.Context, string, string) (bool, error) {
	return false, errors.New("connection reset")
}

func TestDecide_DeleteOnlyAdmins(t *testing.T) {
	ctx := context.Background()
	links := fakeLinks{{"m1", "o1"}: true}

	for _, res := range AllResources {
		for _, role := range models.AllRoles {
			err := Decide(ctx, Request{Role: role, CallerID: "o1", Action: ActionDelete, Resource: res, TargetID: "o1"}, links)
			if role == models.RoleAdmin || role == models.RoleAmministratore {
				assert.NoError(t, err, "%s delete %s", role, res)
			} else {
				assert.Equal(t, apierrors.KindForbidden, apierrors.KindOf(err), "%s delete %s", role, res)
			}
		}
	}
}

func TestDecide_ResponsabileOperatorOwnership(t *testing.T) {
	ctx := context.Background()
	links := fakeLinks{{"m1", "o1"}: true}

	read := func(caller, target string) error {
		return Decide(ctx, Request{Role: models.RoleResponsabile, CallerID: caller, Action: ActionRead, Resource: ResourceOperatore, TargetID: target}, links)
	}

	assert.NoError(t, read("m1", "o1"))
	assert.ErrorIs(t, read("m1", "o2"), ErrNotLinked)
	assert.ErrorIs(t, read("m2", "o1"), ErrNotLinked)

	err := Decide(ctx, Request{Role: models.RoleResponsabile, CallerID: "m1", Action: ActionUpdate, Resource: ResourceOperatore, TargetID: "o1"}, links)
	assert.NoError(t, err)

	err = Decide(ctx, Request{Role: models.RoleResponsabile, CallerID: "m1", Action: ActionCreate, Resource: ResourceOperatore}, links)
	assert.NoError(t, err)

	err = Decide(ctx, Request{Role: models.RoleResponsabile, CallerID: "m1", Action: ActionCreate, Resource: ResourceRelation, TargetID: "o2"}, links)
	assert.ErrorIs(t, err, ErrNotLinked)
}

func TestDecide_OperatoreOwnRecordOnly(t *testing.T) {
	ctx := context.Background()

	for _, action := range []Action{ActionRead, ActionUpdate} {
		for _, res := range []Resource{ResourceOperatore, ResourceResponsabile} {
			own := Request{Role: models.RoleOperatore, CallerID: "o1", Action: action, Resource: res, TargetID: "o1"}
			assert.NoError(t, Decide(ctx, own, fakeLinks{}))

			other := own
			other.TargetID = "o2"
			assert.ErrorIs(t, Decide(ctx, other, fakeLinks{}), ErrNotOwnRecord)
		}
	}

	err := Decide(ctx, Request{Role: models.RoleOperatore, CallerID: "o1", Action: ActionCreate, Resource: ResourceOperatore}, fakeLinks{})
	assert.ErrorIs(t, err, ErrDenied)
}

func TestDecide_RegisterIsAdminOnly(t *testing.T) {
	ctx := context.Background()
	req := Request{Action: ActionCreate, Resource: ResourceAccount}

	for _, role := range models.AllRoles {
		req.Role = role
		err := Decide(ctx, req, fakeLinks{})
		if role == models.RoleAdmin {
			assert.NoError(t, err)
		} else {
			assert.Error(t, err, "%s must not register accounts", role)
		}
	}
}

func TestDecide_UnknownRoleIsForbidden(t *testing.T) {
	ctx := context.Background()
	for _, action := range AllActions {
		err := Decide(ctx, Request{Role: models.Role("SUPERUSER"), CallerID: "x", Action: action, Resource: ResourceOperatore, TargetID: "x"}, fakeLinks{})
		assert.Equal(t, apierrors.KindForbidden, apierrors.KindOf(err))
	}
}

func TestDecide_LookupFailureIsInternal(t *testing.T) {
	err := Decide(context.Background(), Request{Role: models.RoleResponsabile, CallerID: "m1", Action: ActionRead, Resource: ResourceOperatore, TargetID: "o1"}, failingLinks{})
	require.Error(t, err)
	assert.Equal(t, apierrors.KindInternal, apierrors.KindOf(err))
}

// Every combination yields either nil or a Forbidden error, and admins are
// never refused anything but account registration.
func TestDecide_Total(t *testing.T) {
	ctx := context.Background()
	links := fakeLinks{{"c", "t"}: true}

	for _, role := range models.AllRoles {
		for _, action := range AllActions {
			for _, res := range AllResources {
				for _, target := range []string{"", "c", "t", "z"} {
					req := Request{Role: role, CallerID: "c", Action: action, Resource: res, TargetID: target}
					err := Decide(ctx, req, links)
					if err != nil {
						assert.Equal(t, apierrors.KindForbidden, apierrors.KindOf(err), "%+v", req)
					}
					if role == models.RoleAdmin {
						assert.NoError(t, err, "%+v", req)
					}
				}
			}
		}
	}
}
