package handler

import (
	"time"

	"github.com/iliyamo/task-manager/internal/model"
)

// Response shapes returned inside the envelope's data field. These are
// separate from the repository models so internal columns (most importantly
// the password hash) can never leak into a response.

const dateLayout = "2006-01-02"

type userResponse struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newUserResponse(u model.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func newUserList(users []model.User) []userResponse {
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, newUserResponse(u))
	}
	return out
}

type taskResponse struct {
	ID          uint64        `json:"id"`
	Title       string        `json:"title"`
	Description *string       `json:"description"`
	Status      string        `json:"status"`
	DueDate     *string       `json:"due_date"`
	IsOverdue   bool          `json:"is_overdue"`
	User        *userResponse `json:"user,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

func newTaskResponse(t model.Task) taskResponse {
	resp := taskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		IsOverdue:   t.IsOverdue(),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if t.DueDate != nil {
		d := t.DueDate.Format(dateLayout)
		resp.DueDate = &d
	}
	if t.User != nil {
		u := newUserResponse(*t.User)
		resp.User = &u
	}
	return resp
}

func newTaskList(tasks []model.Task) []taskResponse {
	out := make([]taskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, newTaskResponse(t))
	}
	return out
}
