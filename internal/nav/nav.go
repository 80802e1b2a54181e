// Package nav holds the page and tab state machines.
//
// Pages move landing -> login -> dashboard on explicit user actions only;
// dashboard is terminal until logout resets to landing. The tab sub-state
// exists for the student role alone. Illegal transitions are no-ops.
//
// The machine is not safe for concurrent use; the orchestrator drives it
// from a single goroutine.
package nav

import (
	"github.com/okian/mahara/internal/domain/model"
	"github.com/okian/mahara/pkg/metrics"
)

// Page identifies the visible page.
type Page string

// Pages.
const (
	PageLanding   Page = "landing"
	PageLogin     Page = "login"
	PageDashboard Page = "dashboard"
)

// Tab identifies the active student dashboard tab.
type Tab string

// Student tabs.
const (
	TabOverview    Tab = "overview"
	TabTasks       Tab = "tasks"
	TabPerformance Tab = "performance"
)

func validTab(t Tab) bool {
	return t == TabOverview || t == TabTasks || t == TabPerformance
}

// Machine is the router state.
type Machine struct {
	page Page
	tab  Tab
	role model.Role
}

// New starts on the landing page.
func New() *Machine {
	return &Machine{page: PageLanding, tab: TabOverview}
}

// Page returns the visible page.
func (m *Machine) Page() Page { return m.page }

// Tab returns the active tab. Meaningful only on the student dashboard.
func (m *Machine) Tab() Tab { return m.tab }

// Role returns the role the dashboard was entered with.
func (m *Machine) Role() model.Role { return m.role }

// GoLogin moves landing -> login. Reports whether the transition happened.
func (m *Machine) GoLogin() bool {
	if m.page != PageLanding {
		return false
	}
	m.page = PageLogin
	metrics.RecordPageTransition(string(PageLogin))
	return true
}

// Enter moves to the dashboard for the given role. Legal from landing (a
// restored session skips the login page) and from login; a no-op once on
// the dashboard or for an unknown role.
func (m *Machine) Enter(role model.Role) bool {
	if m.page == PageDashboard || !role.Valid() {
		return false
	}
	m.page = PageDashboard
	m.role = role
	m.tab = TabOverview
	metrics.RecordPageTransition(string(PageDashboard))
	return true
}

// SelectTab switches the student tab. A no-op off the dashboard, for the
// teacher role, and for unknown tabs.
func (m *Machine) SelectTab(t Tab) bool {
	if m.page != PageDashboard || m.role != model.RoleStudent || !validTab(t) {
		return false
	}
	m.tab = t
	return true
}

// Reset returns to the landing page on logout.
func (m *Machine) Reset() {
	m.page = PageLanding
	m.tab = TabOverview
	m.role = ""
	metrics.RecordPageTransition(string(PageLanding))
}
