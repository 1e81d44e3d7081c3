package middleware // middleware provides shared request processing for handlers

import (
	"github.com/labstack/echo/v4" // echo provides middleware chaining and context

	"github.com/iliyamo/task-manager/internal/policy"
	"github.com/iliyamo/task-manager/internal/response"
)

// Authorize returns a middleware that consults the policy evaluator for an
// action that needs no resource context (list/create and the admin-only
// user-management routes). Actions whose rule also depends on resource
// ownership are checked inside the handler once the resource is loaded.
// A denied request is rejected with a 403 envelope; the user-management
// actions get the admin-specific wording.
func Authorize(action policy.Action) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor, ok := Actor(c)
			if !ok {
				// Auth middleware did not run or failed to set an actor.
				return response.Unauthenticated(c)
			}
			if policy.Authorize(actor, action, nil) == policy.Deny {
				switch action {
				case policy.UserList, policy.UserView, policy.UserDelete:
					return response.AdminOnly(c)
				default:
					return response.Forbidden(c, "")
				}
			}
			return next(c)
		}
	}
}
