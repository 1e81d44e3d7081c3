package handler

import (
	"context"
	"errors"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/task-manager/internal/config"
	"github.com/iliyamo/task-manager/internal/middleware"
	"github.com/iliyamo/task-manager/internal/repository"
	"github.com/iliyamo/task-manager/internal/response"
	"github.com/iliyamo/task-manager/internal/utils"
)

// dbTimeout bounds every store call made from a handler.
const dbTimeout = 5 * time.Second

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg    config.Config
	Users  UserStore
	Tokens TokenStore
}

func NewAuthHandler(cfg config.Config, u UserStore, t TokenStore) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Tokens: t}
}

// Register handles POST /api/register: create the account and hand back a
// bearer token right away. The role is always member no matter what the
// client sent.
func (h *AuthHandler) Register(c echo.Context) error {
	var in registerInput
	if err := c.Bind(&in); err != nil {
		return response.BadRequest(c)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	errs := in.Validate()
	// The uniqueness check joins the other field errors so the client gets
	// the complete map in one response.
	if !errs.Has("email") {
		taken, err := h.Users.EmailExists(ctx, in.Email)
		if err != nil {
			return response.ServerError(c, err)
		}
		if taken {
			errs.Add("email", "The email has already been taken.")
		}
	}
	if !errs.Empty() {
		return response.ValidationFailed(c, errs)
	}

	u, err := h.Users.Create(ctx, in.Name, in.Email, in.Password, "member", h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			// Lost the race with a concurrent registration.
			errs.Add("email", "The email has already been taken.")
			return response.ValidationFailed(c, errs)
		}
		return response.ServerError(c, err)
	}

	token, err := h.issueToken(ctx, u.ID)
	if err != nil {
		return response.ServerError(c, err)
	}

	return response.Created(c, "User registered successfully", echo.Map{
		"user":  newUserResponse(u),
		"token": token,
	})
}

// Login handles POST /api/login. An unknown email and a wrong password
// produce the same 401 so a caller cannot probe which emails exist.
func (h *AuthHandler) Login(c echo.Context) error {
	var in loginInput
	if err := c.Bind(&in); err != nil {
		return response.BadRequest(c)
	}
	if errs := in.Validate(); !errs.Empty() {
		return response.ValidationFailed(c, errs)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return response.InvalidCredentials(c)
		}
		return response.ServerError(c, err)
	}
	if !utils.VerifyPassword(u.PasswordHash, in.Password) {
		return response.InvalidCredentials(c)
	}

	token, err := h.issueToken(ctx, u.ID)
	if err != nil {
		return response.ServerError(c, err)
	}

	return response.OK(c, "Login successful", echo.Map{
		"user":  newUserResponse(u),
		"token": token,
	})
}

// Logout handles POST /api/logout: revoke exactly the token that was
// presented. Other sessions of the same user stay live. A second logout
// with the same token never reaches this handler; the auth middleware
// rejects it with 401 because the binding is gone.
func (h *AuthHandler) Logout(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Tokens.Revoke(ctx, middleware.TokenHash(c)); err != nil {
		return response.ServerError(c, err)
	}
	return response.OK(c, "Logged out successfully", nil)
}

// Me handles GET /api/me and returns the authenticated user.
func (h *AuthHandler) Me(c echo.Context) error {
	actor, ok := middleware.Actor(c)
	if !ok {
		return response.Unauthenticated(c)
	}
	return response.OK(c, "User retrieved successfully", newUserResponse(actor))
}

// issueToken mints an opaque token and stores its hash bound to the user.
func (h *AuthHandler) issueToken(ctx context.Context, userID uint64) (string, error) {
	raw, err := utils.NewAccessToken(h.Cfg.TokenBytes)
	if err != nil {
		return "", err
	}
	if err := h.Tokens.Store(ctx, userID, utils.HashToken(raw)); err != nil {
		return "", err
	}
	return raw, nil
}
