package handler

import (
	"context"
	"errors"
	"log"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/task-manager/internal/middleware"
	"github.com/iliyamo/task-manager/internal/model"
	"github.com/iliyamo/task-manager/internal/policy"
	"github.com/iliyamo/task-manager/internal/queue"
	"github.com/iliyamo/task-manager/internal/repository"
	"github.com/iliyamo/task-manager/internal/response"
)

// TaskHandler bundles dependencies for task endpoints. Cache and Publish
// are optional: a nil cache skips invalidation and a nil Publish skips the
// task.completed event.
type TaskHandler struct {
	Tasks   TaskStore
	Cache   CacheInvalidator
	Publish func(ctx context.Context, ev queue.TaskCompletedEvent) error
}

func NewTaskHandler(tasks TaskStore, cache CacheInvalidator) *TaskHandler {
	return &TaskHandler{Tasks: tasks, Cache: cache}
}

// List handles GET /api/tasks with page/per_page pagination, newest first.
func (h *TaskHandler) List(c echo.Context) error {
	page, perPage := pageParams(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	tasks, total, err := h.Tasks.List(ctx, page, perPage)
	if err != nil {
		return response.ServerError(c, err)
	}
	pageData := response.NewPage(newTaskList(tasks), len(tasks), total, page, perPage, c.Request().URL.Path)
	return response.OK(c, "Tasks retrieved successfully", pageData)
}

// Get handles GET /api/tasks/:id. Any authenticated user may view any task.
func (h *TaskHandler) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	t, ok, err := h.load(ctx, c)
	if err != nil {
		return response.ServerError(c, err)
	}
	if !ok {
		return response.NotFound(c)
	}
	return response.OK(c, "Task retrieved successfully", newTaskResponse(t))
}

// Create handles POST /api/tasks. The created task is always owned by the
// actor; there is no way to create a task for someone else.
func (h *TaskHandler) Create(c echo.Context) error {
	actor, ok := middleware.Actor(c)
	if !ok {
		return response.Unauthenticated(c)
	}
	var in createTaskInput
	if err := c.Bind(&in); err != nil {
		return response.BadRequest(c)
	}
	if errs := in.Validate(); !errs.Empty() {
		return response.ValidationFailed(c, errs)
	}

	t := model.Task{
		UserID:      actor.ID,
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		DueDate:     in.dueDate,
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Tasks.Create(ctx, &t); err != nil {
		return response.ServerError(c, err)
	}
	h.invalidate(ctx)
	return response.Created(c, "Task created successfully", newTaskResponse(t))
}

// Update handles PUT /api/tasks/:id as a partial update: absent fields keep
// their stored value. Only the owner or an admin may update.
func (h *TaskHandler) Update(c echo.Context) error {
	actor, ok := middleware.Actor(c)
	if !ok {
		return response.Unauthenticated(c)
	}
	var in updateTaskInput
	if err := c.Bind(&in); err != nil {
		return response.BadRequest(c)
	}
	if errs := in.Validate(); !errs.Empty() {
		return response.ValidationFailed(c, errs)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	t, found, err := h.load(ctx, c)
	if err != nil {
		return response.ServerError(c, err)
	}
	if !found {
		return response.NotFound(c)
	}
	if policy.Authorize(actor, policy.TaskUpdate, &t) == policy.Deny {
		return response.Forbidden(c, "")
	}

	wasCompleted := t.Status == model.StatusCompleted
	in.apply(&t)
	if err := h.Tasks.Update(ctx, &t); err != nil {
		return response.ServerError(c, err)
	}
	h.invalidate(ctx)
	h.announceCompletion(t, wasCompleted)
	return response.OK(c, "Task updated successfully", newTaskResponse(t))
}

// Delete handles DELETE /api/tasks/:id. Only the owner or an admin may
// delete.
func (h *TaskHandler) Delete(c echo.Context) error {
	actor, ok := middleware.Actor(c)
	if !ok {
		return response.Unauthenticated(c)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	t, found, err := h.load(ctx, c)
	if err != nil {
		return response.ServerError(c, err)
	}
	if !found {
		return response.NotFound(c)
	}
	if policy.Authorize(actor, policy.TaskDelete, &t) == policy.Deny {
		return response.Forbidden(c, "")
	}

	if err := h.Tasks.Delete(ctx, t.ID); err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return response.NotFound(c)
		}
		return response.ServerError(c, err)
	}
	h.invalidate(ctx)
	return response.OK(c, "Task deleted successfully", nil)
}

// UpdateStatus handles PATCH /api/tasks/:id/status, mutating only the
// status field. Same authorization rule as a full update.
func (h *TaskHandler) UpdateStatus(c echo.Context) error {
	actor, ok := middleware.Actor(c)
	if !ok {
		return response.Unauthenticated(c)
	}
	var in updateStatusInput
	if err := c.Bind(&in); err != nil {
		return response.BadRequest(c)
	}
	if errs := in.Validate(); !errs.Empty() {
		return response.ValidationFailed(c, errs)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	t, found, err := h.load(ctx, c)
	if err != nil {
		return response.ServerError(c, err)
	}
	if !found {
		return response.NotFound(c)
	}
	if policy.Authorize(actor, policy.TaskUpdate, &t) == policy.Deny {
		return response.Forbidden(c, "")
	}

	wasCompleted := t.Status == model.StatusCompleted
	t.Status = in.Status
	if err := h.Tasks.Update(ctx, &t); err != nil {
		return response.ServerError(c, err)
	}
	h.invalidate(ctx)
	h.announceCompletion(t, wasCompleted)
	return response.OK(c, "Task status updated successfully", newTaskResponse(t))
}

// load fetches the task addressed by the :id route param. The bool reports
// whether a task was found; a malformed id counts as not found.
func (h *TaskHandler) load(ctx context.Context, c echo.Context) (model.Task, bool, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return model.Task{}, false, nil
	}
	t, err := h.Tasks.GetByID(ctx, id)
	if errors.Is(err, repository.ErrTaskNotFound) {
		return model.Task{}, false, nil
	}
	if err != nil {
		return model.Task{}, false, err
	}
	return t, true, nil
}

func (h *TaskHandler) invalidate(ctx context.Context) {
	if h.Cache != nil {
		h.Cache.Invalidate(ctx)
	}
}

// announceCompletion publishes a task.completed event when the task just
// transitioned into the completed status. Publishing is best effort and
// runs off the request path; a broker outage never fails the request.
func (h *TaskHandler) announceCompletion(t model.Task, wasCompleted bool) {
	if h.Publish == nil || wasCompleted || t.Status != model.StatusCompleted {
		return
	}
	ev := queue.TaskCompletedEvent{
		TaskID:      t.ID,
		UserID:      t.UserID,
		Title:       t.Title,
		CompletedAt: time.Now().UTC().Format(time.RFC3339),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := h.Publish(ctx, ev); err != nil {
			log.Printf("task-events: publish task.completed failed: %v", err)
		}
	}()
}

// pageParams reads page/per_page query values, falling back to sane bounds.
func pageParams(c echo.Context) (int, int) {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	perPage, _ := strconv.Atoi(c.QueryParam("per_page"))
	return response.PageParams(page, perPage)
}
