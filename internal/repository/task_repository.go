package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/task-manager/internal/model"
)

// TaskRepo persists tasks in the 'tasks' table. Read queries join the
// owning user so responses can embed it without a second round trip.
type TaskRepo struct{ DB *sql.DB }

func NewTaskRepo(db *sql.DB) *TaskRepo { return &TaskRepo{DB: db} }

const taskSelect = `SELECT t.id, t.user_id, t.title, t.description, t.status, t.due_date,
       t.created_at, t.updated_at,
       u.id, u.name, u.email, u.role, u.created_at, u.updated_at
FROM tasks t
JOIN users u ON u.id = t.user_id`

// Create inserts a task and populates it with the stored row, owner
// included.
func (r *TaskRepo) Create(ctx context.Context, t *model.Task) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO tasks (user_id, title, description, status, due_date) VALUES (?,?,?,?,?)",
		t.UserID, t.Title, t.Description, t.Status, t.DueDate)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	stored, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*t = stored
	return nil
}

// GetByID fetches a single task with its owner. Returns ErrTaskNotFound
// when no row matches.
func (r *TaskRepo) GetByID(ctx context.Context, id uint64) (model.Task, error) {
	row := r.DB.QueryRowContext(ctx, taskSelect+" WHERE t.id = ?", id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Task{}, ErrTaskNotFound
	}
	return t, err
}

// List returns one page of tasks, newest first, plus the total row count.
func (r *TaskRepo) List(ctx context.Context, page, perPage int) ([]model.Task, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM tasks").Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.DB.QueryContext(ctx,
		taskSelect+" ORDER BY t.created_at DESC, t.id DESC LIMIT ? OFFSET ?",
		perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []model.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Update writes the mutable columns of the task and refreshes it from the
// stored row. Returns ErrTaskNotFound when no row matches the id.
func (r *TaskRepo) Update(ctx context.Context, t *model.Task) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE tasks SET title=?, description=?, status=?, due_date=?, updated_at=CURRENT_TIMESTAMP WHERE id=?",
		t.Title, t.Description, t.Status, t.DueDate, t.ID)
	if err != nil {
		return err
	}
	// RowsAffected is zero both for a missing row and for a no-op update,
	// so existence was checked by the caller's preceding GetByID.
	_ = res
	stored, err := r.GetByID(ctx, t.ID)
	if err != nil {
		return err
	}
	*t = stored
	return nil
}

// Delete removes a task. Returns ErrTaskNotFound when nothing was deleted.
func (r *TaskRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM tasks WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface{ Scan(dest ...any) error }

func scanTask(s scanner) (model.Task, error) {
	var (
		t    model.Task
		u    model.User
		desc sql.NullString
		due  sql.NullTime
	)
	err := s.Scan(
		&t.ID, &t.UserID, &t.Title, &desc, &t.Status, &due,
		&t.CreatedAt, &t.UpdatedAt,
		&u.ID, &u.Name, &u.Email, &u.Role, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return model.Task{}, err
	}
	if desc.Valid {
		t.Description = &desc.String
	}
	if due.Valid {
		d := due.Time
		t.DueDate = &d
	}
	t.User = &u
	return t, nil
}
