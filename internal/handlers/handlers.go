package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/hoc-admin-api/internal/errors"
	"github.com/yukikurage/hoc-admin-api/internal/middleware"
	"github.com/yukikurage/hoc-admin-api/internal/services"
)

// base carries what every handler needs to answer errors.
type base struct {
	exposeInternal bool
}

func (b base) fail(c *gin.Context, err error) {
	apierrors.Respond(c, err, b.exposeInternal)
}

// caller returns the authenticated caller or answers 401.
func (b base) caller(c *gin.Context) (services.Caller, bool) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return services.Caller{}, false
	}
	return caller, true
}

func deleted(c *gin.Context, what string) {
	c.JSON(http.StatusOK, gin.H{"message": what + " deleted successfully"})
}
