// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/task-manager/internal/handler"
	"github.com/iliyamo/task-manager/internal/middleware"
	"github.com/iliyamo/task-manager/internal/policy"
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance. Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAPI wires the whole /api surface. auth is the bearer middleware
// produced by middleware.Auth; cache is the (possibly disabled) task read
// cache. Unauthenticated operations are register and login, everything else
// runs behind the bearer check. The admin-only user-management routes and
// the task routes consult the policy evaluator: resource-free actions at
// the route level, ownership-dependent ones inside the handlers.
func RegisterAPI(e *echo.Echo, a *handler.AuthHandler, t *handler.TaskHandler, u *handler.UserHandler, auth echo.MiddlewareFunc, cache echo.MiddlewareFunc) {
	api := e.Group("/api")

	// Public routes
	api.POST("/register", a.Register)
	api.POST("/login", a.Login)

	// Everything below requires a valid bearer token.
	priv := api.Group("", auth)
	priv.POST("/logout", a.Logout)
	priv.GET("/me", a.Me)

	// Tasks. Reads are cacheable because every authenticated user sees the
	// same payload; the cache middleware runs after the authorization check.
	priv.GET("/tasks", t.List, middleware.Authorize(policy.TaskView), cache)
	priv.GET("/tasks/:id", t.Get, middleware.Authorize(policy.TaskView), cache)
	priv.POST("/tasks", t.Create, middleware.Authorize(policy.TaskCreate))
	priv.PUT("/tasks/:id", t.Update)
	priv.DELETE("/tasks/:id", t.Delete)
	priv.PATCH("/tasks/:id/status", t.UpdateStatus)

	// User management (admin only).
	priv.GET("/users", u.List, middleware.Authorize(policy.UserList))
	priv.GET("/users/:id", u.Get, middleware.Authorize(policy.UserView))
	priv.DELETE("/users/:id", u.Delete, middleware.Authorize(policy.UserDelete))
}
