package handler_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/iliyamo/task-manager/internal/queue"
)

func TestCreateTask(t *testing.T) {
	app := newApp()
	_, token := app.seedUser(t, "Jane", "jane@example.com", "member")

	due := futureDate(7)
	code, env := app.request(t, http.MethodPost, "/api/tasks", map[string]any{
		"title":       "Write report",
		"description": "quarterly numbers",
		"status":      "pending",
		"due_date":    due,
	}, token)

	if code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %v", code, env)
	}
	if env["message"] != "Task created successfully" {
		t.Fatalf("message = %v", env["message"])
	}
	d := data(t, env)
	if d["title"] != "Write report" || d["status"] != "pending" {
		t.Fatalf("task payload = %v", d)
	}
	if d["due_date"] != due {
		t.Fatalf("due_date = %v, want %s", d["due_date"], due)
	}
	if d["is_overdue"] != false {
		t.Fatalf("is_overdue = %v", d["is_overdue"])
	}

	stored, ok := app.storedTask(t, uint64(d["id"].(float64)))
	if !ok {
		t.Fatal("task not persisted")
	}
	if stored.UserID != 1 {
		t.Fatalf("owner = %d, want the actor", stored.UserID)
	}
}

func TestCreateTaskValidation(t *testing.T) {
	app := newApp()
	_, token := app.seedUser(t, "Jane", "jane@example.com", "member")

	tests := []struct {
		name  string
		body  map[string]any
		field string
		msg   string
	}{
		{"missing title", map[string]any{"status": "pending"}, "title", "The title field is required."},
		{"missing status", map[string]any{"title": "x"}, "status", "The status field is required."},
		{"invalid status", map[string]any{"title": "x", "status": "done"}, "status", "The selected status is invalid."},
		{"past due date", map[string]any{"title": "x", "status": "pending", "due_date": "2020-01-01"}, "due_date", "The due date field must be a date after or equal to today."},
		{"garbage due date", map[string]any{"title": "x", "status": "pending", "due_date": "not-a-date"}, "due_date", "The due date field must be a valid date."},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			code, env := app.request(t, http.MethodPost, "/api/tasks", tc.body, token)
			if code != http.StatusUnprocessableEntity {
				t.Fatalf("status = %d, want 422: %v", code, env)
			}
			msgs, ok := errorsMap(t, env)[tc.field].([]any)
			if !ok || len(msgs) == 0 || msgs[0] != tc.msg {
				t.Fatalf("errors.%s = %v, want %q", tc.field, errorsMap(t, env), tc.msg)
			}
		})
	}
}

func TestCreateTaskMalformedBody(t *testing.T) {
	app := newApp()
	_, token := app.seedUser(t, "Jane", "jane@example.com", "member")

	// A JSON string is valid JSON but cannot bind to the input struct.
	code, env := app.request(t, http.MethodPost, "/api/tasks", "not an object", token)
	if code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %v", code, env)
	}
	if env["message"] != "Invalid request body" {
		t.Fatalf("message = %v", env["message"])
	}
}

func TestGetTaskVisibleToAnyMember(t *testing.T) {
	app := newApp()
	owner, _ := app.seedUser(t, "Owner", "owner@example.com", "member")
	_, otherToken := app.seedUser(t, "Other", "other@example.com", "member")
	task := app.seedTask(t, owner.ID, "Shared task", "pending")

	code, env := app.request(t, http.MethodGet, fmt.Sprintf("/api/tasks/%d", task.ID), nil, otherToken)
	if code != http.StatusOK {
		t.Fatalf("status = %d: %v", code, env)
	}
	if env["message"] != "Task retrieved successfully" {
		t.Fatalf("message = %v", env["message"])
	}
	d := data(t, env)
	if d["title"] != "Shared task" {
		t.Fatalf("title = %v", d["title"])
	}
	u, ok := d["user"].(map[string]any)
	if !ok || u["email"] != "owner@example.com" {
		t.Fatalf("embedded owner = %v", d["user"])
	}
}

func TestGetTaskNotFound(t *testing.T) {
	app := newApp()
	_, token := app.seedUser(t, "Jane", "jane@example.com", "member")

	for _, id := range []string{"999", "abc"} {
		code, env := app.request(t, http.MethodGet, "/api/tasks/"+id, nil, token)
		if code != http.StatusNotFound {
			t.Errorf("id %q: status = %d, want 404", id, code)
		}
		if env["message"] != "Resource not found" {
			t.Errorf("id %q: message = %v", id, env["message"])
		}
	}
}

func TestListTasksPagination(t *testing.T) {
	app := newApp()
	owner, token := app.seedUser(t, "Jane", "jane@example.com", "member")
	for i := 1; i <= 20; i++ {
		app.seedTask(t, owner.ID, fmt.Sprintf("task %d", i), "pending")
	}

	code, env := app.request(t, http.MethodGet, "/api/tasks?page=2&per_page=5", nil, token)
	if code != http.StatusOK {
		t.Fatalf("status = %d: %v", code, env)
	}
	if env["message"] != "Tasks retrieved successfully" {
		t.Fatalf("message = %v", env["message"])
	}
	d := data(t, env)
	items := d["data"].([]any)
	if len(items) != 5 {
		t.Fatalf("page size = %d, want 5", len(items))
	}
	// Newest first: page 2 of 20 starts at the 15th task.
	if first := items[0].(map[string]any); first["title"] != "task 15" {
		t.Fatalf("first item = %v", first["title"])
	}

	meta := d["meta"].(map[string]any)
	want := map[string]float64{"current_page": 2, "per_page": 5, "total": 20, "last_page": 4, "from": 6, "to": 10}
	for k, v := range want {
		if meta[k] != v {
			t.Errorf("meta.%s = %v, want %v", k, meta[k], v)
		}
	}

	links := d["links"].(map[string]any)
	if links["next"] == nil || links["prev"] == nil {
		t.Fatalf("middle page must link both ways: %v", links)
	}
}

func TestListTasksDefaults(t *testing.T) {
	app := newApp()
	owner, token := app.seedUser(t, "Jane", "jane@example.com", "member")
	app.seedTask(t, owner.ID, "only one", "pending")

	code, env := app.request(t, http.MethodGet, "/api/tasks", nil, token)
	if code != http.StatusOK {
		t.Fatalf("status = %d: %v", code, env)
	}
	meta := data(t, env)["meta"].(map[string]any)
	if meta["per_page"] != float64(15) || meta["current_page"] != float64(1) {
		t.Fatalf("default paging meta = %v", meta)
	}
}

func TestUpdateTaskOwnership(t *testing.T) {
	app := newApp()
	owner, ownerToken := app.seedUser(t, "Owner", "owner@example.com", "member")
	_, otherToken := app.seedUser(t, "Other", "other@example.com", "member")
	_, adminToken := app.seedUser(t, "Admin", "admin@example.com", "admin")
	task := app.seedTask(t, owner.ID, "original", "pending")
	path := fmt.Sprintf("/api/tasks/%d", task.ID)

	// A stranger is refused and the record stays untouched.
	code, env := app.request(t, http.MethodPut, path, map[string]any{"title": "hijacked"}, otherToken)
	if code != http.StatusForbidden {
		t.Fatalf("stranger update: status = %d: %v", code, env)
	}
	if env["message"] != "Unauthorized" {
		t.Fatalf("stranger update message = %v", env["message"])
	}
	if stored, _ := app.storedTask(t, task.ID); stored.Title != "original" {
		t.Fatalf("store changed by a forbidden update: %v", stored)
	}

	// The owner updates partially: status stays pending.
	code, env = app.request(t, http.MethodPut, path, map[string]any{"title": "renamed"}, ownerToken)
	if code != http.StatusOK {
		t.Fatalf("owner update: status = %d: %v", code, env)
	}
	if env["message"] != "Task updated successfully" {
		t.Fatalf("owner update message = %v", env["message"])
	}
	if stored, _ := app.storedTask(t, task.ID); stored.Title != "renamed" || stored.Status != "pending" {
		t.Fatalf("partial update wrong: %v", stored)
	}

	// An admin may update any task.
	if code, _ := app.request(t, http.MethodPut, path, map[string]any{"status": "in_progress"}, adminToken); code != http.StatusOK {
		t.Fatalf("admin update: status = %d", code)
	}
	if stored, _ := app.storedTask(t, task.ID); stored.Status != "in_progress" {
		t.Fatal("admin update not applied")
	}
}

func TestDeleteTaskOwnership(t *testing.T) {
	app := newApp()
	owner, ownerToken := app.seedUser(t, "Owner", "owner@example.com", "member")
	_, otherToken := app.seedUser(t, "Other", "other@example.com", "member")
	task := app.seedTask(t, owner.ID, "doomed", "pending")
	path := fmt.Sprintf("/api/tasks/%d", task.ID)

	code, env := app.request(t, http.MethodDelete, path, nil, otherToken)
	if code != http.StatusForbidden {
		t.Fatalf("stranger delete: status = %d: %v", code, env)
	}
	if _, ok := app.storedTask(t, task.ID); !ok {
		t.Fatal("forbidden delete removed the task")
	}

	code, env = app.request(t, http.MethodDelete, path, nil, ownerToken)
	if code != http.StatusOK || env["message"] != "Task deleted successfully" {
		t.Fatalf("owner delete: %d %v", code, env)
	}
	if _, ok := app.storedTask(t, task.ID); ok {
		t.Fatal("task still present after delete")
	}

	// Deleting again is a 404, not an error.
	if code, env = app.request(t, http.MethodDelete, path, nil, ownerToken); code != http.StatusNotFound || env["message"] != "Resource not found" {
		t.Fatalf("second delete: %d %v", code, env)
	}
}

func TestUpdateStatus(t *testing.T) {
	app := newApp()
	owner, token := app.seedUser(t, "Jane", "jane@example.com", "member")
	task := app.seedTask(t, owner.ID, "todo", "pending")
	path := fmt.Sprintf("/api/tasks/%d/status", task.ID)

	code, env := app.request(t, http.MethodPatch, path, map[string]any{"status": "in_progress"}, token)
	if code != http.StatusOK {
		t.Fatalf("status = %d: %v", code, env)
	}
	if env["message"] != "Task status updated successfully" {
		t.Fatalf("message = %v", env["message"])
	}
	if stored, _ := app.storedTask(t, task.ID); stored.Status != "in_progress" {
		t.Fatalf("stored status = %s", stored.Status)
	}

	code, env = app.request(t, http.MethodPatch, path, map[string]any{"status": "done"}, token)
	if code != http.StatusUnprocessableEntity {
		t.Fatalf("invalid status: %d %v", code, env)
	}
}

func TestCompletionEventPublished(t *testing.T) {
	app := newApp()
	owner, token := app.seedUser(t, "Jane", "jane@example.com", "member")
	task := app.seedTask(t, owner.ID, "ship it", "in_progress")

	events := make(chan queue.TaskCompletedEvent, 4)
	app.tasks.Publish = func(_ context.Context, ev queue.TaskCompletedEvent) error {
		events <- ev
		return nil
	}

	path := fmt.Sprintf("/api/tasks/%d/status", task.ID)
	if code, env := app.request(t, http.MethodPatch, path, map[string]any{"status": "completed"}, token); code != http.StatusOK {
		t.Fatalf("patch: %d %v", code, env)
	}

	select {
	case ev := <-events:
		if ev.TaskID != task.ID || ev.UserID != owner.ID || ev.Title != "ship it" {
			t.Fatalf("event = %+v", ev)
		}
		if _, err := time.Parse(time.RFC3339, ev.CompletedAt); err != nil {
			t.Fatalf("completed_at %q: %v", ev.CompletedAt, err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no task.completed event published")
	}

	// Re-saving an already completed task must not publish again.
	if code, _ := app.request(t, http.MethodPut, fmt.Sprintf("/api/tasks/%d", task.ID), map[string]any{"title": "shipped"}, token); code != http.StatusOK {
		t.Fatal("update after completion failed")
	}
	select {
	case ev := <-events:
		t.Fatalf("unexpected second event: %+v", ev)
	case <-time.After(100 * time.Millisecond):
	}
}
