package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/materiku/materiku-backend/internal/authz"
	"github.com/materiku/materiku-backend/internal/model"
	"github.com/materiku/materiku-backend/internal/response"
)

// RequireCapability gates a route group behind a single capability. The
// check runs against the actor loaded this request, never against anything
// baked into the token. Ownership-scoped decisions stay in the services;
// this is for admin surfaces where the capability alone settles it.
func RequireCapability(perms *authz.PermissionService, cap model.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := GetActor(c)
		if actor == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		if !perms.HasCapability(actor, cap) {
			response.AbortFail(c, http.StatusForbidden, response.ErrPermissionDenied)
			return
		}

		c.Next()
	}
}

// RequireAnyCapability gates a route group behind at least one of the given
// capabilities.
func RequireAnyCapability(perms *authz.PermissionService, caps ...model.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := GetActor(c)
		if actor == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		for _, cap := range caps {
			if perms.HasCapability(actor, cap) {
				c.Next()
				return
			}
		}

		response.AbortFail(c, http.StatusForbidden, response.ErrPermissionDenied)
	}
}
