// Package queue defines message payloads exchanged over the message broker.
package queue

// TaskCompletedEvent is published when a task transitions into the
// completed status. It carries enough information for downstream consumers
// to notify or aggregate without querying the primary database.
type TaskCompletedEvent struct {
	TaskID      uint64 `json:"task_id"`
	UserID      uint64 `json:"user_id"`
	Title       string `json:"title"`
	CompletedAt string `json:"completed_at"`
}
