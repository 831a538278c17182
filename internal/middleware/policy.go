package middleware

import (
	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/hoc-admin-api/internal/errors"
	"github.com/yukikurage/hoc-admin-api/internal/policy"
)

// PolicyGate runs the authorization policy in front of a route.
type PolicyGate struct {
	owners         policy.OwnershipLookup
	exposeInternal bool
}

func NewPolicyGate(owners policy.OwnershipLookup, exposeInternal bool) *PolicyGate {
	return &PolicyGate{owners: owners, exposeInternal: exposeInternal}
}

// Require asks the policy whether the caller may perform action on resource.
// The target is the :id path parameter when the route has one.
func (g *PolicyGate) Require(resource policy.Resource, action policy.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := CallerFrom(c)
		if !ok {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		err := policy.Decide(c.Request.Context(), policy.Request{
			Role:     caller.Role,
			CallerID: caller.UserID,
			Action:   action,
			Resource: resource,
			TargetID: c.Param("id"),
		}, g.owners)
		if err != nil {
			apierrors.Respond(c, err, g.exposeInternal)
			c.Abort()
			return
		}
		c.Next()
	}
}
