package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/okian/mahara/internal/domain/model"
	"github.com/okian/mahara/internal/nav"
	"github.com/okian/mahara/internal/view"
)

// renderPage prints the current page.
func (t *Terminal) renderPage() {
	switch t.svc.Page() {
	case nav.PageLanding:
		t.renderLanding()
	case nav.PageLogin:
		t.renderLogin()
	case nav.PageDashboard:
		t.renderDashboard()
	}
	t.printf("> ")
}

// renderAlert blocks on a pending failure alert until the user acknowledges.
func (t *Terminal) renderAlert() {
	msg, ok := t.svc.Alert()
	if !ok {
		return
	}
	t.printf("\n!! %s\nPress enter to continue.", msg)
	t.readLine()
	t.printf("> ")
}

func (t *Terminal) renderLanding() {
	t.printf(`
Mahara — 21st Century Skills
============================
Develop creativity, critical thinking, collaboration and communication
through real project-based tasks.

Type "login" to get started, or "help" for all commands.
`)
}

func (t *Terminal) renderLogin() {
	t.printf(`
Sign in
-------
  email <address>         sign in with your email
  demo student            try the student demo account
  demo teacher            try the teacher demo account
  register                create a new account
`)
}

func (t *Terminal) renderDashboard() {
	ident, ok := t.svc.Identity()
	if !ok {
		return
	}

	t.printf("\n%s — %s", ident.FullName, ident.School.Name)
	if t.svc.Loading() {
		t.printf("  (loading...)")
	}
	t.printf("\n")
	t.renderMenu(ident.Role)

	variant, _ := t.svc.Variant()
	if variant == view.TeacherDashboard {
		t.renderTeacherBoard()
		return
	}
	t.renderStudentTab()
}

func (t *Terminal) renderMenu(role model.Role) {
	items := view.Menu(role)
	labels := make([]string, 0, len(items))
	for _, it := range items {
		labels = append(labels, it.Label)
	}
	t.printf("[ %s ]\n", strings.Join(labels, " | "))
}

func (t *Terminal) renderStudentTab() {
	switch t.svc.Tab() {
	case nav.TabTasks:
		t.renderTaskTable(model.RoleStudent, t.svc.StudentTasksCached())
	case nav.TabPerformance:
		t.renderPerformance()
	default:
		t.renderStudentOverview()
	}
}

func (t *Terminal) renderStudentOverview() {
	stats := view.StudentStatsFor(t.svc.StudentTasksCached())
	t.printf("Tasks: %d total, %d pending, %d submitted, %d graded\n",
		stats.Total, stats.Pending, stats.Submitted, stats.Graded)

	if sum, ok := t.svc.Performance(); ok {
		rows := view.SkillRows(sum)
		if len(rows) > 0 {
			t.printf("Skills:\n")
			for _, r := range rows {
				marker := ""
				if r.Strength {
					marker = "  (strength)"
				}
				if r.Weakness {
					marker = "  (needs work)"
				}
				t.printf("  %-20s %5.1f%s\n", r.Skill, r.Average, marker)
			}
		}
	}
}

func (t *Terminal) renderPerformance() {
	sum, ok := t.svc.Performance()
	if !ok {
		t.printf("No performance data yet. Run \"overview\" to fetch it.\n")
		return
	}

	for _, r := range view.SkillRows(sum) {
		t.printf("  %-20s %5.1f\n", r.Skill, r.Average)
	}
	series := view.ChartSeries(sum)
	if len(series) > 0 {
		t.printf("Score over time:\n")
		for _, p := range series {
			t.printf("  %s  %s %.0f\n", p.Date, strings.Repeat("#", barLength(p.Score)), p.Score)
		}
	}
}

func (t *Terminal) renderTeacherBoard() {
	tasks := t.svc.TeacherTasksCached()
	stats := view.TeacherStatsFor(tasks)
	t.printf("Board: %d active, %d cancelled, %d submissions, %d pending review\n",
		stats.ActiveTasks, stats.CancelledTasks, stats.TotalSubmissions, stats.PendingReview)
	t.renderTaskTable(model.RoleTeacher, tasks)
}

// renderTaskTable prints one row per task with its badge and the actions the
// role may take on it.
func (t *Terminal) renderTaskTable(role model.Role, tasks []model.Task) {
	if len(tasks) == 0 {
		t.printf("No tasks.\n")
		return
	}

	w := tabwriter.NewWriter(t.out, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tDUE\tBADGE\tACTIONS")
	for _, task := range tasks {
		badge := task.Badge()
		actions := make([]string, 0, 1)
		for _, a := range view.TaskActions(role, task) {
			actions = append(actions, string(a))
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s (%s)\t%s\n",
			task.ID, task.Title, task.DueDate,
			badge, view.BadgeColor(badge), strings.Join(actions, ","))
	}
	_ = w.Flush()

	for _, a := range view.GlobalActions(role) {
		t.printf("Global action: %s\n", a)
	}
}

// barLength scales a 0-100 score onto a 20-column bar.
func barLength(score float64) int {
	n := int(score / 5)
	if n < 0 {
		return 0
	}
	if n > 20 {
		return 20
	}
	return n
}
