package handler

import (
	"context"
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/task-manager/internal/repository"
	"github.com/iliyamo/task-manager/internal/response"
)

// UserHandler bundles dependencies for the admin-only user management
// endpoints. The admin gate itself sits in the route middleware; by the
// time a request reaches these handlers the actor is known to be an admin.
type UserHandler struct {
	Users UserStore
	Cache CacheInvalidator
}

func NewUserHandler(users UserStore, cache CacheInvalidator) *UserHandler {
	return &UserHandler{Users: users, Cache: cache}
}

// List handles GET /api/users with page/per_page pagination, newest first.
func (h *UserHandler) List(c echo.Context) error {
	page, perPage := pageParams(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	users, total, err := h.Users.List(ctx, page, perPage)
	if err != nil {
		return response.ServerError(c, err)
	}
	pageData := response.NewPage(newUserList(users), len(users), total, page, perPage, c.Request().URL.Path)
	return response.OK(c, "Users retrieved successfully", pageData)
}

// Get handles GET /api/users/:id.
func (h *UserHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return response.NotFound(c)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return response.NotFound(c)
		}
		return response.ServerError(c, err)
	}
	return response.OK(c, "User retrieved successfully", newUserResponse(u))
}

// Delete handles DELETE /api/users/:id. The user's tasks and access tokens
// go with the account in one transaction, so all of the user's sessions die
// at the same moment the account does.
func (h *UserHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return response.NotFound(c)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Users.DeleteCascade(ctx, id); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return response.NotFound(c)
		}
		return response.ServerError(c, err)
	}
	// Cached task listings may embed the deleted user's tasks.
	if h.Cache != nil {
		h.Cache.Invalidate(ctx)
	}
	return response.OK(c, "User deleted successfully", nil)
}
