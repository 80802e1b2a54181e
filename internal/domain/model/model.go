// Package model contains the entities exchanged with the skills platform backend.
package model

// Role selects the dashboard variant and the permitted action set.
// There are exactly two roles; anything else is rejected at the boundary.
type Role string

// Known roles.
const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
)

// Valid reports whether r is one of the two known roles.
func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleTeacher
}

// TaskStatus is the teacher-controlled lifecycle marker. The only legal
// transition is active -> cancelled; cancelled is terminal.
type TaskStatus string

// Task lifecycle states.
const (
	TaskActive    TaskStatus = "active"
	TaskCancelled TaskStatus = "cancelled"
)

// SubmissionStatus tracks a student's progress on a task. Progression is
// monotonic: pending -> submitted -> graded, never backwards.
type SubmissionStatus string

// Submission progress states.
const (
	SubmissionPending   SubmissionStatus = "pending"
	SubmissionSubmitted SubmissionStatus = "submitted"
	SubmissionGraded    SubmissionStatus = "graded"
)

// Badge is the single label a task row renders with.
type Badge string

// Badge values, in precedence order.
const (
	BadgeCancelled Badge = "cancelled"
	BadgeGraded    Badge = "graded"
	BadgeSubmitted Badge = "submitted"
	BadgePending   Badge = "pending"
)

// School is the identity's school reference.
type School struct {
	Name string `json:"name"`
	Code string `json:"code,omitempty"`
}

// Identity is the authenticated user's profile held client-side.
type Identity struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
	School   School `json:"school"`
}

// Task mirrors the backend task object. Student-facing lists carry
// SubmissionStatus; teacher-facing lists carry the aggregate counters.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Questions   []string   `json:"questions"`
	DueDate     string     `json:"due_date"`
	Status      TaskStatus `json:"status"`
	TeacherID   string     `json:"teacher_id"`

	SubmissionStatus SubmissionStatus `json:"submission_status,omitempty"`

	TotalSubmissions int `json:"total_submissions"`
	PendingCount     int `json:"pending"`
	GradedCount      int `json:"graded"`
}

// Badge maps the task to exactly one badge. A cancelled task is always
// badged cancelled regardless of submission progress; otherwise the
// submission status decides, defaulting to pending.
func (t Task) Badge() Badge {
	if t.Status == TaskCancelled {
		return BadgeCancelled
	}
	switch t.SubmissionStatus {
	case SubmissionGraded:
		return BadgeGraded
	case SubmissionSubmitted:
		return BadgeSubmitted
	default:
		return BadgePending
	}
}

// CanSubmit reports whether a student may submit a solution for the task:
// only while the task is active and the student has not submitted yet.
func (t Task) CanSubmit() bool {
	return t.Status == TaskActive && (t.SubmissionStatus == SubmissionPending || t.SubmissionStatus == "")
}

// ScorePoint is one sample of the performance-over-time series.
type ScorePoint struct {
	Date  string  `json:"date"`
	Score float64 `json:"score"`
}

// PerformanceSummary is the server-computed read model for the performance
// tab. The client renders it as-is and never recomputes the split.
type PerformanceSummary struct {
	SkillAverages map[string]float64 `json:"skill_averages"`
	Strengths     []string           `json:"strengths"`
	Weaknesses    []string           `json:"weaknesses"`
	Timeline      []ScorePoint       `json:"timeline"`
}
