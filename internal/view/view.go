// Package view selects the dashboard variant for a role and projects fetched
// data into renderable values. Everything here is a pure function of its
// inputs, recomputed on every render and never cached.
package view

import (
	"sort"

	"github.com/okian/mahara/internal/domain/model"
)

// Variant is the dashboard a role is routed to.
type Variant string

// Dashboard variants. Exactly one per role.
const (
	StudentDashboard Variant = "student_dashboard"
	TeacherDashboard Variant = "teacher_dashboard"
)

// VariantFor routes a role to its dashboard. The teacher role gets the
// teacher view; everything else falls through to the student view, matching
// the platform's routing rule.
func VariantFor(role model.Role) Variant {
	if role == model.RoleTeacher {
		return TeacherDashboard
	}
	return StudentDashboard
}

// MenuItem is one sidebar entry.
type MenuItem struct {
	ID    string
	Label string
}

// Menu returns the role's sidebar entries.
func Menu(role model.Role) []MenuItem {
	if role == model.RoleTeacher {
		return []MenuItem{
			{ID: "overview", Label: "Overview"},
			{ID: "tasks", Label: "Tasks"},
			{ID: "students", Label: "Students"},
		}
	}
	return []MenuItem{
		{ID: "overview", Label: "Overview"},
		{ID: "tasks", Label: "My Tasks"},
		{ID: "performance", Label: "My Results"},
	}
}

// Action is a user-triggerable operation exposed on a view.
type Action string

// Actions.
const (
	ActionSubmit     Action = "submit"
	ActionCreateTask Action = "create_task"
	ActionCancelTask Action = "cancel_task"
)

// TaskActions returns the actions rendered on a task row for the role.
// Actions outside the permitted set are simply absent, which makes illegal
// operations a no-op at the UI boundary.
func TaskActions(role model.Role, t model.Task) []Action {
	switch role {
	case model.RoleStudent:
		if t.CanSubmit() {
			return []Action{ActionSubmit}
		}
	case model.RoleTeacher:
		if t.Status == model.TaskActive {
			return []Action{ActionCancelTask}
		}
	}
	return nil
}

// GlobalActions returns the actions rendered outside any task row.
func GlobalActions(role model.Role) []Action {
	if role == model.RoleTeacher {
		return []Action{ActionCreateTask}
	}
	return nil
}

// BadgeColor maps a badge to its render color.
func BadgeColor(b model.Badge) string {
	switch b {
	case model.BadgeCancelled:
		return "red"
	case model.BadgeGraded:
		return "green"
	case model.BadgeSubmitted:
		return "blue"
	default:
		return "yellow"
	}
}

// StudentStats are the student overview aggregate counts.
type StudentStats struct {
	Total     int
	Submitted int
	Graded    int
	Pending   int
}

// StudentStatsFor derives the overview counters from the task list.
// Pending counts tasks still open for submission.
func StudentStatsFor(tasks []model.Task) StudentStats {
	s := StudentStats{Total: len(tasks)}
	for _, t := range tasks {
		switch {
		case t.SubmissionStatus == model.SubmissionGraded:
			s.Graded++
		case t.SubmissionStatus == model.SubmissionSubmitted:
			s.Submitted++
		case t.CanSubmit():
			s.Pending++
		}
	}
	return s
}

// TeacherStats are the teacher board aggregate counts.
type TeacherStats struct {
	ActiveTasks      int
	CancelledTasks   int
	TotalSubmissions int
	PendingReview    int
}

// TeacherStatsFor derives the board counters from the task list's embedded
// submission aggregates.
func TeacherStatsFor(tasks []model.Task) TeacherStats {
	var s TeacherStats
	for _, t := range tasks {
		if t.Status == model.TaskCancelled {
			s.CancelledTasks++
		} else {
			s.ActiveTasks++
		}
		s.TotalSubmissions += t.TotalSubmissions
		s.PendingReview += t.PendingCount
	}
	return s
}

// SkillRow is one line of the strengths/weaknesses table.
type SkillRow struct {
	Skill    string
	Average  float64
	Strength bool
	Weakness bool
}

// SkillRows flattens the server-computed summary into stable rows, ordered
// by skill name. The strength/weakness split is passed through untouched.
func SkillRows(sum model.PerformanceSummary) []SkillRow {
	strengths := make(map[string]bool, len(sum.Strengths))
	for _, s := range sum.Strengths {
		strengths[s] = true
	}
	weaknesses := make(map[string]bool, len(sum.Weaknesses))
	for _, w := range sum.Weaknesses {
		weaknesses[w] = true
	}

	rows := make([]SkillRow, 0, len(sum.SkillAverages))
	for skill, avg := range sum.SkillAverages {
		rows = append(rows, SkillRow{
			Skill:    skill,
			Average:  avg,
			Strength: strengths[skill],
			Weakness: weaknesses[skill],
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Skill < rows[j].Skill })
	return rows
}

// ChartSeries returns the score-over-time series in render order. The server
// emits the timeline ordered; the copy keeps renders independent of the
// fetched value.
func ChartSeries(sum model.PerformanceSummary) []model.ScorePoint {
	out := make([]model.ScorePoint, len(sum.Timeline))
	copy(out, sum.Timeline)
	return out
}
