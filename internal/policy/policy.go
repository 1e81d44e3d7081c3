// Package policy decides whether an authenticated user may perform an
// action on a resource. The evaluator is a pure function over the actor's
// role and the resource's ownership: it holds no state and is safe to call
// from any number of concurrent requests.
package policy

import "github.com/iliyamo/task-manager/internal/model"

// Action enumerates everything the API can be asked to do. Any action not
// listed here is denied.
type Action string

const (
	TaskView   Action = "task.view"
	TaskCreate Action = "task.create"
	TaskUpdate Action = "task.update"
	TaskDelete Action = "task.delete"
	UserList   Action = "user.list"
	UserView   Action = "user.view"
	UserDelete Action = "user.delete"
)

// Decision is the outcome of an authorization check.
type Decision bool

const (
	Allow Decision = true
	Deny  Decision = false
)

// Authorize evaluates whether actor may perform action. task carries the
// resource for task-scoped actions and may be nil for everything else.
//
// Rules:
//   - viewing and creating tasks is open to every authenticated user
//   - updating or deleting a task requires admin role or strict identity
//     equality between actor and task owner
//   - user management is admin only
//   - anything unrecognized is denied
func Authorize(actor model.User, action Action, task *model.Task) Decision {
	switch action {
	case TaskView, TaskCreate:
		return Allow
	case TaskUpdate, TaskDelete:
		if task == nil {
			return Deny
		}
		if actor.IsAdmin() || actor.ID == task.UserID {
			return Allow
		}
		return Deny
	case UserList, UserView, UserDelete:
		if actor.IsAdmin() {
			return Allow
		}
		return Deny
	default:
		return Deny
	}
}
