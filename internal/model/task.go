package model

import "time"

// Task statuses. Any other value is rejected at validation time.
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

// ValidStatus reports whether s is one of the three known task statuses.
func ValidStatus(s string) bool {
	return s == StatusPending || s == StatusInProgress || s == StatusCompleted
}

// Task represents a row in the `tasks` table. Every task belongs to exactly
// one user; deleting that user removes the task. DueDate is a calendar date
// without a time component and may be absent.
//
// Fields:
//
//	ID          – primary key identifier of the task.
//	UserID      – owner of the task (references users.id).
//	Title       – required short description.
//	Description – optional free text (nullable).
//	Status      – one of pending, in_progress, completed.
//	DueDate     – optional due date (nullable DATE).
//	CreatedAt   – timestamp of creation.
//	UpdatedAt   – timestamp of last update.
type Task struct {
	ID          uint64     // tasks.id
	UserID      uint64     // tasks.user_id
	Title       string     // tasks.title
	Description *string    // tasks.description (nullable)
	Status      string     // tasks.status
	DueDate     *time.Time // tasks.due_date (nullable)
	CreatedAt   time.Time  // tasks.created_at
	UpdatedAt   time.Time  // tasks.updated_at

	// User is the owning user, populated by list/get queries that join on
	// users so responses can embed the owner without a second round trip.
	User *User
}

// IsOverdue reports whether the task's due date lies strictly in the past
// while the task is not completed. Tasks without a due date are never
// overdue. The comparison is by calendar day in UTC, not by instant, so a
// task due today is not overdue.
func (t Task) IsOverdue() bool {
	return t.overdueAt(time.Now().UTC())
}

func (t Task) overdueAt(now time.Time) bool {
	if t.DueDate == nil || t.Status == StatusCompleted {
		return false
	}
	due := t.DueDate.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return due.Before(today)
}
