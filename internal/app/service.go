// Package app orchestrates the client: it owns the session store, the
// gateway client and the navigation state, and binds fetched data to the
// views. Session state is injected explicitly; no view reaches for it
// through a global.
package app

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/google/uuid"

	"github.com/okian/mahara/internal/api"
	"github.com/okian/mahara/internal/domain/model"
	"github.com/okian/mahara/internal/forms"
	"github.com/okian/mahara/internal/nav"
	"github.com/okian/mahara/internal/session"
	"github.com/okian/mahara/internal/view"
	"github.com/okian/mahara/pkg/logger"
	"github.com/okian/mahara/pkg/metrics"
)

// Service drives the client's view state.
type Service struct {
	mu sync.Mutex

	session *session.Store
	client  *api.Client
	nav     *nav.Machine

	// Fetched view state. Each dashboard owns its copy; there is no shared
	// cache across views.
	loading      bool
	gen          int
	studentTasks []model.Task
	tasksLoaded  bool
	performance  *model.PerformanceSummary
	teacherTasks []model.Task

	// One pending blocking alert, consumed by the renderer.
	alert string

	logger logger.Logger
}

// New constructs a Service with default collaborators.
func New(opts ...Option) *Service {
	s := &Service{
		nav: nav.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.session == nil {
		s.session = session.New()
	}
	if s.client == nil {
		s.client = api.New()
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	return s
}

// Start restores a persisted session. With a session present the dashboard
// is entered directly; otherwise the landing page stays visible.
func (s *Service) Start(ctx context.Context) {
	s.session.Load(ctx)
	if ident, ok := s.session.Current(); ok {
		s.mu.Lock()
		s.nav.Enter(ident.Role)
		s.mu.Unlock()
		s.logger.Info(ctx, "session restored",
			logger.String("user", ident.ID),
			logger.String("role", string(ident.Role)))
	}
}

// Page returns the visible page.
func (s *Service) Page() nav.Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nav.Page()
}

// Tab returns the active student tab.
func (s *Service) Tab() nav.Tab {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nav.Tab()
}

// Identity returns the authenticated identity, if any.
func (s *Service) Identity() (model.Identity, bool) {
	return s.session.Current()
}

// Variant returns the dashboard variant for the active session.
func (s *Service) Variant() (view.Variant, bool) {
	ident, ok := s.session.Current()
	if !ok {
		return "", false
	}
	return view.VariantFor(ident.Role), true
}

// Loading reports whether a dashboard load is in flight.
func (s *Service) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Alert consumes the pending blocking alert, if any.
func (s *Service) Alert() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg := s.alert
	s.alert = ""
	return msg, msg != ""
}

// BeginLogin moves from the landing page to the login page.
func (s *Service) BeginLogin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nav.GoLogin()
}

// LoginWithEmail exchanges credentials for a session. A declined login
// (success=false) leaves the identity unset, the persisted state untouched
// and the view on the login page; transport and persistence failures alert.
func (s *Service) LoginWithEmail(ctx context.Context, email string) (bool, error) {
	res, err := s.client.Login(ctx, email)
	if err != nil {
		s.raiseAlert(ctx, err)
		return false, err
	}
	if !res.Success {
		return false, nil
	}
	if err := s.establish(ctx, res); err != nil {
		s.raiseAlert(ctx, err)
		return false, err
	}
	return true, nil
}

// Register creates an account through the register form. An invalid form
// issues no request at all.
func (s *Service) Register(ctx context.Context, form *forms.RegisterForm) (bool, error) {
	if !form.Begin() {
		return false, nil
	}
	res, err := s.client.Register(ctx, api.RegisterRequest{
		Email:      form.Email,
		Password:   form.Password,
		FullName:   form.FullName,
		Role:       form.Role,
		SchoolCode: form.SchoolCode,
	})
	if err != nil {
		form.Fail()
		s.raiseAlert(ctx, err)
		return false, err
	}
	if !res.Success {
		form.Fail()
		return false, nil
	}
	form.Finish()
	if err := s.establish(ctx, res); err != nil {
		s.raiseAlert(ctx, err)
		return false, err
	}
	return true, nil
}

// DemoLogin builds a canned identity for the role without a backend call.
func (s *Service) DemoLogin(ctx context.Context, role model.Role) error {
	if !role.Valid() {
		return session.ErrInvalidIdentity
	}
	ident := model.Identity{
		ID:     uuid.NewString(),
		Role:   role,
		School: model.School{Name: "Al Noor Secondary"},
	}
	if role == model.RoleTeacher {
		ident.FullName = "Dr. Sarah Ahmed"
		ident.Email = "teacher@school.com"
	} else {
		ident.FullName = "Ahmed Mohamed"
		ident.Email = "student@school.com"
	}
	return s.establish(ctx, api.AuthResult{Success: true, User: ident})
}

func (s *Service) establish(ctx context.Context, res api.AuthResult) error {
	if err := s.session.Login(ctx, res.User); err != nil {
		return err
	}
	if res.Token != "" {
		if err := s.session.SetToken(ctx, res.Token); err != nil {
			s.logger.Warn(ctx, "failed to persist token", logger.Error(err))
		}
	}
	s.mu.Lock()
	s.nav.Enter(res.User.Role)
	s.mu.Unlock()
	return nil
}

// Logout clears the session and returns to the landing page. Any in-flight
// fetch finishes on its own and its result is dropped.
func (s *Service) Logout(ctx context.Context) {
	s.session.Logout(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.nav.Reset()
	s.gen++
	s.loading = false
	s.studentTasks = nil
	s.tasksLoaded = false
	s.performance = nil
	s.teacherTasks = nil
}

// SelectTab switches the student tab.
func (s *Service) SelectTab(t nav.Tab) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nav.SelectTab(t)
}

// beginLoad bumps the load generation and raises the loading gate.
func (s *Service) beginLoad() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.loading = true
	return s.gen
}

// endLoad lowers the gate if the load is still current.
func (s *Service) endLoad(g int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if g != s.gen {
		return false
	}
	s.loading = false
	return true
}

// LoadStudentDashboard fetches the task list and performance summary
// concurrently. The loading flag clears only after both settle; either
// failure surfaces one blocking alert and no retry is attempted.
func (s *Service) LoadStudentDashboard(ctx context.Context) error {
	ident, err := s.require(model.RoleStudent)
	if err != nil {
		return err
	}

	g := s.beginLoad()

	var (
		tasks []model.Task
		sum   model.PerformanceSummary
	)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		tasks, err = s.client.StudentTasks(egCtx, ident.ID)
		return err
	})
	eg.Go(func() error {
		var err error
		sum, err = s.client.StudentPerformance(egCtx, ident.ID)
		return err
	})
	err = eg.Wait()

	if !s.endLoad(g) {
		// The view moved on; apply nothing.
		return nil
	}
	if err != nil {
		s.raiseAlert(ctx, err)
		return err
	}

	s.mu.Lock()
	s.studentTasks = tasks
	s.tasksLoaded = true
	s.performance = &sum
	s.mu.Unlock()
	return nil
}

// StudentTasks returns the task list, reusing an earlier dashboard fetch
// when one is present.
func (s *Service) StudentTasks(ctx context.Context) ([]model.Task, error) {
	ident, err := s.require(model.RoleStudent)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.tasksLoaded {
		out := make([]model.Task, len(s.studentTasks))
		copy(out, s.studentTasks)
		s.mu.Unlock()
		return out, nil
	}
	s.mu.Unlock()

	g := s.beginLoad()
	tasks, err := s.client.StudentTasks(ctx, ident.ID)
	if !s.endLoad(g) {
		return nil, nil
	}
	if err != nil {
		s.raiseAlert(ctx, err)
		return nil, err
	}

	s.mu.Lock()
	s.studentTasks = tasks
	s.tasksLoaded = true
	s.mu.Unlock()
	return tasks, nil
}

// Performance returns the fetched summary, if any.
func (s *Service) Performance() (model.PerformanceSummary, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.performance == nil {
		return model.PerformanceSummary{}, false
	}
	return *s.performance, true
}

// LoadTeacherBoard fetches the teacher's task list with embedded
// submission aggregates.
func (s *Service) LoadTeacherBoard(ctx context.Context) ([]model.Task, error) {
	ident, err := s.require(model.RoleTeacher)
	if err != nil {
		return nil, err
	}

	g := s.beginLoad()
	tasks, err := s.client.TeacherTasks(ctx, ident.ID)
	if !s.endLoad(g) {
		return nil, nil
	}
	if err != nil {
		s.raiseAlert(ctx, err)
		return nil, err
	}

	s.mu.Lock()
	s.teacherTasks = tasks
	s.mu.Unlock()
	return tasks, nil
}

// TeacherTasksCached returns the last fetched teacher board.
func (s *Service) TeacherTasksCached() []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Task, len(s.teacherTasks))
	copy(out, s.teacherTasks)
	return out
}

// StudentTasksCached returns the last fetched student task list.
func (s *Service) StudentTasksCached() []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Task, len(s.studentTasks))
	copy(out, s.studentTasks)
	return out
}

// SubmitSolution uploads a solution for a task. Empty content silently
// aborts; a task outside the permitted set is a no-op.
func (s *Service) SubmitSolution(ctx context.Context, taskID, content string) error {
	ident, err := s.require(model.RoleStudent)
	if err != nil {
		return err
	}

	task, ok := s.findStudentTask(taskID)
	if !ok || len(view.TaskActions(ident.Role, task)) == 0 {
		return nil
	}

	form := forms.NewSubmissionForm()
	form.Content = content
	if !form.Begin() {
		// Empty input aborts client-side; no request is issued.
		return nil
	}

	if err := s.client.SubmitSolution(ctx, api.SubmitRequest{
		TaskID:    taskID,
		StudentID: ident.ID,
		Content:   content,
	}); err != nil {
		form.Fail()
		s.raiseAlert(ctx, err)
		return err
	}
	form.Finish()

	s.mu.Lock()
	for i := range s.studentTasks {
		if s.studentTasks[i].ID == taskID {
			s.studentTasks[i].SubmissionStatus = model.SubmissionSubmitted
		}
	}
	s.mu.Unlock()
	return nil
}

// CreateTask issues the task creation for a validated form. An invalid form
// never reaches the wire.
func (s *Service) CreateTask(ctx context.Context, form *forms.TaskForm) (*model.Task, error) {
	ident, err := s.require(model.RoleTeacher)
	if err != nil {
		return nil, err
	}

	if !form.Begin() {
		return nil, nil
	}

	created, err := s.client.CreateTask(ctx, api.CreateTaskRequest{
		TeacherID:   ident.ID,
		Title:       form.Title,
		Description: form.Description,
		Questions:   form.Questions,
		DueDate:     form.DueDate,
	})
	if err != nil {
		form.Fail()
		s.raiseAlert(ctx, err)
		return nil, err
	}
	form.Finish()

	s.mu.Lock()
	s.teacherTasks = append(s.teacherTasks, created)
	s.mu.Unlock()
	return &created, nil
}

// CancelTask transitions a task to cancelled. The transition requires an
// explicit confirmation and is one-way; cancelling a cancelled task is a
// no-op.
func (s *Service) CancelTask(ctx context.Context, taskID string, confirmed bool) error {
	_, err := s.require(model.RoleTeacher)
	if err != nil {
		return err
	}
	if !confirmed {
		return nil
	}

	task, ok := s.findTeacherTask(taskID)
	if !ok || task.Status != model.TaskActive {
		return nil
	}

	updated, err := s.client.CancelTask(ctx, taskID)
	if err != nil {
		s.raiseAlert(ctx, err)
		return err
	}

	s.mu.Lock()
	for i := range s.teacherTasks {
		if s.teacherTasks[i].ID == taskID {
			s.teacherTasks[i] = updated
		}
	}
	s.mu.Unlock()
	return nil
}

// require returns the identity when the session holds the wanted role.
func (s *Service) require(role model.Role) (model.Identity, error) {
	ident, ok := s.session.Current()
	if !ok {
		return model.Identity{}, ErrNoSession
	}
	if ident.Role != role {
		return model.Identity{}, ErrNotPermitted
	}
	return ident, nil
}

func (s *Service) findStudentTask(taskID string) (model.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.studentTasks {
		if t.ID == taskID {
			return t, true
		}
	}
	return model.Task{}, false
}

func (s *Service) findTeacherTask(taskID string) (model.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.teacherTasks {
		if t.ID == taskID {
			return t, true
		}
	}
	return model.Task{}, false
}

// raiseAlert records one generic blocking alert for the renderer.
func (s *Service) raiseAlert(ctx context.Context, err error) {
	s.logger.Warn(ctx, "request failed", logger.Error(err))
	metrics.RecordAlert()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.alert = "The request could not be completed. Please try again later."
}
