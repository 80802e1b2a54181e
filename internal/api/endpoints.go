package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/okian/mahara/internal/domain/model"
)

// Endpoint names used as metrics labels.
const (
	endpointLogin       = "login"
	endpointRegister    = "register"
	endpointTasksStu    = "tasks_student"
	endpointTasksTea    = "tasks_teacher"
	endpointTaskCreate  = "task_create"
	endpointTaskCancel  = "task_cancel"
	endpointSubmission  = "submission_create"
	endpointPerformance = "performance_student"
)

// AuthResult is the typed outcome of login and registration. A response with
// Success=false is a legitimate outcome, not an error: the caller stays on
// the login page with no session established.
type AuthResult struct {
	Success bool           `json:"success"`
	User    model.Identity `json:"user"`
	Token   string         `json:"token,omitempty"`
}

// RegisterRequest mirrors POST /auth/register.
type RegisterRequest struct {
	Email      string     `json:"email"`
	Password   string     `json:"password"`
	FullName   string     `json:"full_name"`
	Role       model.Role `json:"role"`
	SchoolCode string     `json:"school_code"`
}

// CreateTaskRequest mirrors POST /tasks.
type CreateTaskRequest struct {
	TeacherID   string   `json:"teacher_id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Questions   []string `json:"questions"`
	DueDate     string   `json:"due_date"`
}

// SubmitRequest mirrors POST /submissions.
type SubmitRequest struct {
	TaskID    string `json:"task_id"`
	StudentID string `json:"student_id"`
	Content   string `json:"content"`
}

// taskList is the wire shape of the task collection endpoints.
type taskList struct {
	Tasks []model.Task `json:"tasks"`
}

// cancelPatch is the wire shape of the status transition.
type cancelPatch struct {
	Status model.TaskStatus `json:"status"`
}

// Login exchanges an email for an identity.
func (c *Client) Login(ctx context.Context, email string) (AuthResult, error) {
	var out AuthResult
	body := map[string]string{"email": email}
	if err := c.do(ctx, endpointLogin, http.MethodPost, "/auth/login", body, &out); err != nil {
		return AuthResult{}, err
	}
	return out, nil
}

// Register creates an account and returns the resulting identity.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (AuthResult, error) {
	var out AuthResult
	if err := c.do(ctx, endpointRegister, http.MethodPost, "/auth/register", req, &out); err != nil {
		return AuthResult{}, err
	}
	return out, nil
}

// StudentTasks lists a student's tasks with per-task submission status.
func (c *Client) StudentTasks(ctx context.Context, studentID string) ([]model.Task, error) {
	var out taskList
	path := "/tasks/student/" + url.PathEscape(studentID)
	if err := c.do(ctx, endpointTasksStu, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Tasks, nil
}

// TeacherTasks lists a teacher's tasks with embedded submission aggregates.
func (c *Client) TeacherTasks(ctx context.Context, teacherID string) ([]model.Task, error) {
	var out taskList
	path := "/tasks/teacher/" + url.PathEscape(teacherID)
	if err := c.do(ctx, endpointTasksTea, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Tasks, nil
}

// CreateTask creates a task and returns the created object.
func (c *Client) CreateTask(ctx context.Context, req CreateTaskRequest) (model.Task, error) {
	var out model.Task
	if err := c.do(ctx, endpointTaskCreate, http.MethodPost, "/tasks", req, &out); err != nil {
		return model.Task{}, err
	}
	return out, nil
}

// CancelTask transitions a task to cancelled. The transition is one-way;
// the backend rejects any further status change.
func (c *Client) CancelTask(ctx context.Context, taskID string) (model.Task, error) {
	var out model.Task
	path := "/tasks/" + url.PathEscape(taskID)
	body := cancelPatch{Status: model.TaskCancelled}
	if err := c.do(ctx, endpointTaskCancel, http.MethodPatch, path, body, &out); err != nil {
		return model.Task{}, err
	}
	return out, nil
}

// SubmitSolution uploads a student's solution for a task.
func (c *Client) SubmitSolution(ctx context.Context, req SubmitRequest) error {
	return c.do(ctx, endpointSubmission, http.MethodPost, "/submissions", req, nil)
}

// StudentPerformance fetches the server-computed performance summary.
func (c *Client) StudentPerformance(ctx context.Context, studentID string) (model.PerformanceSummary, error) {
	var out model.PerformanceSummary
	path := "/performance/student/" + url.PathEscape(studentID)
	if err := c.do(ctx, endpointPerformance, http.MethodGet, path, nil, &out); err != nil {
		return model.PerformanceSummary{}, err
	}
	return out, nil
}
