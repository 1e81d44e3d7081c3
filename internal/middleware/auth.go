package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"context" // context carries request deadlines into store lookups
	"errors"  // errors.Is for sentinel checks
	"strings" // string utilities for prefix checking and trimming

	"github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

	"github.com/iliyamo/task-manager/internal/model"
	"github.com/iliyamo/task-manager/internal/repository"
	"github.com/iliyamo/task-manager/internal/response"
	"github.com/iliyamo/task-manager/internal/utils"
)

// Context keys under which the authenticated identity is stored. The actor
// is threaded through the request context explicitly; handlers read it via
// Actor() instead of consulting any global state.
const (
	actorKey     = "actor"
	tokenHashKey = "token_hash"
)

// TokenValidator resolves an access token hash to the bound user id.
// Satisfied by repository.TokenRepo.
type TokenValidator interface {
	Validate(ctx context.Context, tokenHash string) (uint64, error)
}

// UserSource loads a user by id. Satisfied by repository.UserRepo.
type UserSource interface {
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// Auth returns an Echo middleware that authenticates the bearer credential
// on every protected route. The raw token from the Authorization header is
// hashed and looked up in the token store; when a live binding exists the
// owning user is loaded and stored in the request context as the actor.
// Every failure mode, missing header, unknown token, revoked token, or a
// user deleted since issuance, renders the same 401 envelope.
func Auth(tokens TokenValidator, users UserSource) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return response.Unauthenticated(c)
			}
			raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			if raw == "" {
				return response.Unauthenticated(c)
			}
			hash := utils.HashToken(raw)

			ctx := c.Request().Context()
			userID, err := tokens.Validate(ctx, hash)
			if err != nil {
				if errors.Is(err, repository.ErrTokenNotFound) {
					return response.Unauthenticated(c)
				}
				return response.ServerError(c, err)
			}
			actor, err := users.GetByID(ctx, userID)
			if err != nil {
				if errors.Is(err, repository.ErrUserNotFound) {
					// Token row survived its user; treat as revoked.
					return response.Unauthenticated(c)
				}
				return response.ServerError(c, err)
			}

			c.Set(actorKey, actor)
			c.Set(tokenHashKey, hash)
			return next(c)
		}
	}
}

// Actor returns the authenticated user stored by Auth. The boolean is false
// on routes where the middleware did not run.
func Actor(c echo.Context) (model.User, bool) {
	u, ok := c.Get(actorKey).(model.User)
	return u, ok
}

// TokenHash returns the hash of the bearer token presented on this request.
func TokenHash(c echo.Context) string {
	h, _ := c.Get(tokenHashKey).(string)
	return h
}
