// Package forms models the task-creation, submission and registration inputs
// as explicit state machines: fields, a validation result, and
// submit/cancel transitions. This replaces blocking input prompts so the
// behavior is testable without simulating a dialog.
package forms

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/okian/mahara/internal/domain/model"
)

// QuestionCount is the fixed size of a task's question list.
const QuestionCount = 3

// dueDateLayout is the wire format of task due dates.
const dueDateLayout = "2006-01-02"

// State is a form's lifecycle position.
type State string

// Form states. editing -> submitting -> done; cancel is legal until done.
const (
	StateEditing    State = "editing"
	StateSubmitting State = "submitting"
	StateDone       State = "done"
	StateCancelled  State = "cancelled"
)

// FieldError names a field that failed and the rule it broke.
type FieldError struct {
	Field string
	Rule  string
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// check runs struct validation and flattens the result.
func check(v any) []FieldError {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Rule: "invalid"}}
	}
	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fe.Field(), Rule: fe.Tag()})
	}
	return out
}

// machine is the shared transition core embedded by every form.
type machine struct {
	state State
}

// State returns the current lifecycle position.
func (m *machine) State() State { return m.state }

// Cancel abandons the form. Legal until the form is done.
func (m *machine) Cancel() bool {
	if m.state == StateDone {
		return false
	}
	m.state = StateCancelled
	return true
}

func (m *machine) begin(errs []FieldError) bool {
	if m.state != StateEditing || len(errs) > 0 {
		return false
	}
	m.state = StateSubmitting
	return true
}

// Finish marks a successful server round trip.
func (m *machine) Finish() bool {
	if m.state != StateSubmitting {
		return false
	}
	m.state = StateDone
	return true
}

// Fail returns a rejected form to editing.
func (m *machine) Fail() bool {
	if m.state != StateSubmitting {
		return false
	}
	m.state = StateEditing
	return true
}

// TaskForm collects the teacher's task-creation input.
type TaskForm struct {
	machine

	Title       string   `validate:"required,min=3,max=200"`
	Description string   `validate:"max=2000"`
	Questions   []string `validate:"len=3,dive,required"`
	DueDate     string   `validate:"required"`
}

// NewTaskForm starts an empty form in editing state.
func NewTaskForm() *TaskForm {
	return &TaskForm{
		machine:   machine{state: StateEditing},
		Questions: make([]string, QuestionCount),
	}
}

// Validate returns the field errors, empty when the form may be submitted.
// The due date must parse and lie in the future.
func (f *TaskForm) Validate() []FieldError {
	errs := check(f)
	if f.DueDate != "" {
		due, err := time.Parse(dueDateLayout, f.DueDate)
		switch {
		case err != nil:
			errs = append(errs, FieldError{Field: "DueDate", Rule: "datetime"})
		case !due.After(time.Now()):
			errs = append(errs, FieldError{Field: "DueDate", Rule: "future"})
		}
	}
	return errs
}

// Begin moves editing -> submitting iff the form validates. An invalid form
// stays editing and no request may be issued for it.
func (f *TaskForm) Begin() bool {
	return f.begin(f.Validate())
}

// SubmissionForm collects a student's solution content.
type SubmissionForm struct {
	machine

	Content string `validate:"required"`
}

// NewSubmissionForm starts an empty form in editing state.
func NewSubmissionForm() *SubmissionForm {
	return &SubmissionForm{machine: machine{state: StateEditing}}
}

// Validate returns the field errors. Empty content is the abort signal.
func (f *SubmissionForm) Validate() []FieldError {
	return check(f)
}

// Begin moves editing -> submitting iff the form validates.
func (f *SubmissionForm) Begin() bool {
	return f.begin(f.Validate())
}

// RegisterForm collects registration input.
type RegisterForm struct {
	machine

	Email      string     `validate:"required,email"`
	Password   string     `validate:"required,min=8"`
	FullName   string     `validate:"required"`
	Role       model.Role `validate:"required,oneof=student teacher"`
	SchoolCode string     `validate:"required"`
}

// NewRegisterForm starts an empty form in editing state.
func NewRegisterForm() *RegisterForm {
	return &RegisterForm{machine: machine{state: StateEditing}}
}

// Validate returns the field errors.
func (f *RegisterForm) Validate() []FieldError {
	return check(f)
}

// Begin moves editing -> submitting iff the form validates.
func (f *RegisterForm) Begin() bool {
	return f.begin(f.Validate())
}
