package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/materiku/materiku-backend/internal/model"
	"github.com/materiku/materiku-backend/internal/repository"
	"github.com/materiku/materiku-backend/internal/response"
	"github.com/materiku/materiku-backend/internal/service"
)

const (
	// ContextKeyActor is the Gin context key for the authenticated user.
	ContextKeyActor = "actor"
)

// RequireAuth validates the JWT, checks the Redis session, and loads the
// actor with roles and capabilities from the database. The token carries
// identity only, so role changes apply on the holder's next request.
func RequireAuth(authService *service.AuthService, userRepo *repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, err := resolveActor(c, authService, userRepo)
		if err != nil || actor == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
			return
		}

		c.Set(ContextKeyActor, actor)
		c.Next()
	}
}

// OptionalAuth loads the actor when a valid token is present but lets
// anonymous requests through with no actor set. Used on world-readable
// routes where an authenticated caller may still see more (own pending
// materials, moderation queues).
func OptionalAuth(authService *service.AuthService, userRepo *repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenFromRequest(c) == "" {
			c.Next()
			return
		}

		actor, err := resolveActor(c, authService, userRepo)
		if err != nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
			return
		}

		c.Set(ContextKeyActor, actor)
		c.Next()
	}
}

// GetActor retrieves the authenticated user from the Gin context. Returns
// nil for anonymous requests; authorization treats a nil actor as holding
// only the universal read capability.
func GetActor(c *gin.Context) *model.User {
	val, exists := c.Get(ContextKeyActor)
	if !exists {
		return nil
	}
	actor, ok := val.(*model.User)
	if !ok {
		return nil
	}
	return actor
}

func resolveActor(c *gin.Context, authService *service.AuthService, userRepo *repository.UserRepository) (*model.User, error) {
	tokenStr := tokenFromRequest(c)
	if tokenStr == "" {
		return nil, fmt.Errorf("authorization header or token query required")
	}

	claims, err := authService.ValidateToken(tokenStr)
	if err != nil {
		return nil, err
	}

	if err := authService.ValidateSession(c.Request.Context(), claims.UserID, claims.ID); err != nil {
		return nil, err
	}

	actor, err := userRepo.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("token subject no longer exists")
		}
		return nil, err
	}
	return actor, nil
}

func tokenFromRequest(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
	}

	// Fallback for WebSocket upgrades, which cannot send headers from the
	// browser API.
	return c.Query("token")
}
