package handler

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/iliyamo/task-manager/internal/model"
	"github.com/iliyamo/task-manager/internal/response"
)

// Per-operation input structs. Each struct is an explicit allow-list: only
// the listed fields can ever reach a record, and each Validate reports every
// failing field in one pass so the client sees the complete error map at
// once. Message wording follows the conventional "The <field> field ..."
// style clients of this API already parse.

const maxStringLen = 255

type registerInput struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
	// Role is accepted in the payload but deliberately never read: every
	// registration produces a member.
	Role string `json:"role"`
}

func (in *registerInput) Validate() *response.FieldErrors {
	errs := response.NewFieldErrors()
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	if in.Name == "" {
		errs.Add("name", "The name field is required.")
	} else if len(in.Name) > maxStringLen {
		errs.Add("name", fmt.Sprintf("The name field must not be greater than %d characters.", maxStringLen))
	}

	if in.Email == "" {
		errs.Add("email", "The email field is required.")
	} else if !validEmail(in.Email) {
		errs.Add("email", "The email field must be a valid email address.")
	} else if len(in.Email) > maxStringLen {
		errs.Add("email", fmt.Sprintf("The email field must not be greater than %d characters.", maxStringLen))
	}

	if in.Password == "" {
		errs.Add("password", "The password field is required.")
	} else {
		if len(in.Password) < 8 {
			errs.Add("password", "The password field must be at least 8 characters.")
		}
		if in.Password != in.PasswordConfirmation {
			errs.Add("password", "The password field confirmation does not match.")
		}
	}
	return errs
}

type loginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (in *loginInput) Validate() *response.FieldErrors {
	errs := response.NewFieldErrors()
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	if in.Email == "" {
		errs.Add("email", "The email field is required.")
	} else if !validEmail(in.Email) {
		errs.Add("email", "The email field must be a valid email address.")
	}
	if in.Password == "" {
		errs.Add("password", "The password field is required.")
	}
	return errs
}

// createTaskInput covers POST /api/tasks. Status is required here; the
// due date, when present, must not lie in the past.
type createTaskInput struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Status      string  `json:"status"`
	DueDate     *string `json:"due_date"`

	dueDate *time.Time // parsed by Validate
}

func (in *createTaskInput) Validate() *response.FieldErrors {
	errs := response.NewFieldErrors()
	in.Title = strings.TrimSpace(in.Title)

	if in.Title == "" {
		errs.Add("title", "The title field is required.")
	} else if len(in.Title) > maxStringLen {
		errs.Add("title", fmt.Sprintf("The title field must not be greater than %d characters.", maxStringLen))
	}

	if in.Status == "" {
		errs.Add("status", "The status field is required.")
	} else if !model.ValidStatus(in.Status) {
		errs.Add("status", "The selected status is invalid.")
	}

	in.dueDate = validateDueDate(in.DueDate, errs)
	return errs
}

// updateTaskInput covers PUT /api/tasks/:id. Every field is optional;
// absent fields leave the stored value untouched. A field that is present
// is held to the same rules as at creation.
type updateTaskInput struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	DueDate     *string `json:"due_date"`

	dueDate *time.Time
}

func (in *updateTaskInput) Validate() *response.FieldErrors {
	errs := response.NewFieldErrors()

	if in.Title != nil {
		t := strings.TrimSpace(*in.Title)
		in.Title = &t
		if t == "" {
			errs.Add("title", "The title field is required.")
		} else if len(t) > maxStringLen {
			errs.Add("title", fmt.Sprintf("The title field must not be greater than %d characters.", maxStringLen))
		}
	}
	if in.Status != nil && !model.ValidStatus(*in.Status) {
		errs.Add("status", "The selected status is invalid.")
	}
	in.dueDate = validateDueDate(in.DueDate, errs)
	return errs
}

// apply merges the present fields onto the task.
func (in *updateTaskInput) apply(t *model.Task) {
	if in.Title != nil {
		t.Title = *in.Title
	}
	if in.Description != nil {
		t.Description = in.Description
	}
	if in.Status != nil {
		t.Status = *in.Status
	}
	if in.DueDate != nil {
		t.DueDate = in.dueDate
	}
}

// updateStatusInput covers PATCH /api/tasks/:id/status.
type updateStatusInput struct {
	Status string `json:"status"`
}

func (in *updateStatusInput) Validate() *response.FieldErrors {
	errs := response.NewFieldErrors()
	if in.Status == "" {
		errs.Add("status", "The status field is required.")
	} else if !model.ValidStatus(in.Status) {
		errs.Add("status", "The selected status is invalid.")
	}
	return errs
}

// validateDueDate parses an optional YYYY-MM-DD value and enforces that it
// is today or later. The comparison is by calendar day in UTC.
func validateDueDate(raw *string, errs *response.FieldErrors) *time.Time {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil
	}
	d, err := time.ParseInLocation(dateLayout, strings.TrimSpace(*raw), time.UTC)
	if err != nil {
		errs.Add("due_date", "The due date field must be a valid date.")
		return nil
	}
	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if d.Before(today) {
		errs.Add("due_date", "The due date field must be a date after or equal to today.")
		return nil
	}
	return &d
}

func validEmail(s string) bool {
	a, err := mail.ParseAddress(s)
	return err == nil && a.Address == s
}
