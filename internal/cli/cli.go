// Package cli is the terminal renderer: a read-eval-print loop that renders
// the current page as text and drives the app service from typed commands.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/okian/mahara/internal/app"
	"github.com/okian/mahara/internal/domain/model"
	"github.com/okian/mahara/internal/forms"
	"github.com/okian/mahara/internal/nav"
	"github.com/okian/mahara/pkg/logger"
)

// Terminal is the interactive client shell.
type Terminal struct {
	svc    *app.Service
	in     *bufio.Scanner
	out    io.Writer
	logger logger.Logger
}

// New builds a terminal around the service. Input defaults to stdin and
// output to stdout.
func New(svc *app.Service, opts ...Option) *Terminal {
	t := &Terminal{svc: svc}
	for _, opt := range opts {
		opt(t)
	}
	if t.in == nil {
		t.in = bufio.NewScanner(os.Stdin)
	}
	if t.out == nil {
		t.out = os.Stdout
	}
	if t.logger == nil {
		t.logger = logger.Get()
	}
	return t
}

// Run starts the session and loops until quit, EOF or context cancellation.
func (t *Terminal) Run(ctx context.Context) error {
	t.svc.Start(ctx)
	t.logger.Debug(ctx, "terminal started")

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		t.renderPage()
		t.renderAlert()

		line, ok := t.readLine()
		if !ok {
			return nil
		}
		if quit := t.dispatch(ctx, line); quit {
			return nil
		}
	}
}

// dispatch routes one command line. Returns true on quit.
func (t *Terminal) dispatch(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "quit", "exit":
		return true
	case "help":
		ShowHelp(t.out)
		return false
	}

	switch t.svc.Page() {
	case nav.PageLanding:
		t.dispatchLanding(cmd)
	case nav.PageLogin:
		t.dispatchLogin(ctx, cmd, args)
	case nav.PageDashboard:
		t.dispatchDashboard(ctx, cmd, args)
	}
	return false
}

func (t *Terminal) dispatchLanding(cmd string) {
	switch cmd {
	case "login", "start":
		t.svc.BeginLogin()
	default:
		t.printf("unknown command %q; try: login, help, quit\n", cmd)
	}
}

func (t *Terminal) dispatchLogin(ctx context.Context, cmd string, args []string) {
	switch cmd {
	case "email":
		if len(args) != 1 {
			t.printf("usage: email <address>\n")
			return
		}
		ok, err := t.svc.LoginWithEmail(ctx, args[0])
		if err == nil && !ok {
			t.printf("Login failed. Check your email and try again.\n")
		}
	case "demo":
		if len(args) != 1 {
			t.printf("usage: demo <student|teacher>\n")
			return
		}
		if err := t.svc.DemoLogin(ctx, model.Role(args[0])); err != nil {
			t.printf("unknown role %q\n", args[0])
		}
	case "register":
		t.runRegister(ctx)
	default:
		t.printf("unknown command %q; try: email, demo, register, quit\n", cmd)
	}
}

func (t *Terminal) dispatchDashboard(ctx context.Context, cmd string, args []string) {
	if cmd == "logout" {
		t.svc.Logout(ctx)
		return
	}

	ident, ok := t.svc.Identity()
	if !ok {
		return
	}
	if ident.Role == model.RoleTeacher {
		t.dispatchTeacher(ctx, cmd, args)
		return
	}
	t.dispatchStudent(ctx, cmd, args)
}

func (t *Terminal) dispatchStudent(ctx context.Context, cmd string, args []string) {
	switch cmd {
	case "overview":
		if t.svc.SelectTab(nav.TabOverview) {
			_ = t.svc.LoadStudentDashboard(ctx)
		}
	case "tasks":
		t.svc.SelectTab(nav.TabTasks)
		_, _ = t.svc.StudentTasks(ctx)
	case "performance", "results":
		if t.svc.SelectTab(nav.TabPerformance) {
			_ = t.svc.LoadStudentDashboard(ctx)
		}
	case "submit":
		if len(args) != 1 {
			t.printf("usage: submit <task-id>\n")
			return
		}
		t.printf("Solution content (empty line aborts): ")
		content, ok := t.readLine()
		if !ok {
			return
		}
		_ = t.svc.SubmitSolution(ctx, args[0], strings.TrimSpace(content))
	default:
		t.printf("unknown command %q; try: overview, tasks, performance, submit, logout\n", cmd)
	}
}

func (t *Terminal) dispatchTeacher(ctx context.Context, cmd string, args []string) {
	switch cmd {
	case "board", "tasks", "overview":
		_, _ = t.svc.LoadTeacherBoard(ctx)
	case "create":
		t.runCreateTask(ctx)
	case "cancel":
		if len(args) != 1 {
			t.printf("usage: cancel <task-id>\n")
			return
		}
		t.printf("Cancel task %s? This cannot be undone. [y/N]: ", args[0])
		answer, ok := t.readLine()
		if !ok {
			return
		}
		confirmed := strings.EqualFold(strings.TrimSpace(answer), "y")
		_ = t.svc.CancelTask(ctx, args[0], confirmed)
	default:
		t.printf("unknown command %q; try: board, create, cancel, logout\n", cmd)
	}
}

// runRegister walks the register form field by field, then submits once.
func (t *Terminal) runRegister(ctx context.Context) {
	form := forms.NewRegisterForm()
	form.Email = t.prompt("Email: ")
	form.Password = t.prompt("Password: ")
	form.FullName = t.prompt("Full name: ")
	form.Role = model.Role(t.prompt("Role (student/teacher): "))
	form.SchoolCode = t.prompt("School code: ")

	if errs := form.Validate(); len(errs) > 0 {
		t.renderFieldErrors(errs)
		return
	}
	ok, err := t.svc.Register(ctx, form)
	if err == nil && !ok {
		t.printf("Registration was not accepted.\n")
	}
}

// runCreateTask walks the task form. Validation failures keep the form out of
// flight entirely.
func (t *Terminal) runCreateTask(ctx context.Context) {
	form := forms.NewTaskForm()
	form.Title = t.prompt("Title: ")
	form.Description = t.prompt("Description: ")
	for i := 0; i < forms.QuestionCount; i++ {
		form.Questions[i] = t.prompt(fmt.Sprintf("Question %d: ", i+1))
	}
	form.DueDate = t.prompt("Due date (YYYY-MM-DD): ")

	if errs := form.Validate(); len(errs) > 0 {
		t.renderFieldErrors(errs)
		return
	}
	created, err := t.svc.CreateTask(ctx, form)
	if err == nil && created != nil {
		t.printf("Task %q created.\n", created.Title)
	}
}

func (t *Terminal) prompt(label string) string {
	t.printf("%s", label)
	line, _ := t.readLine()
	return strings.TrimSpace(line)
}

func (t *Terminal) readLine() (string, bool) {
	if !t.in.Scan() {
		return "", false
	}
	return t.in.Text(), true
}

func (t *Terminal) printf(format string, args ...any) {
	fmt.Fprintf(t.out, format, args...)
}

func (t *Terminal) renderFieldErrors(errs []forms.FieldError) {
	t.printf("The form has problems:\n")
	for _, fe := range errs {
		t.printf("  - %s: %s\n", fe.Field, fe.Rule)
	}
}

// ShowHelp prints usage information for the terminal client.
func ShowHelp(w io.Writer) {
	_, _ = io.WriteString(w, `Mahara Terminal Client
======================

A terminal client for the 21st-century-skills learning platform.

Global commands:
  help                  Show this message
  quit                  Exit the client

Landing page:
  login                 Go to the login page

Login page:
  email <address>       Sign in with an email address
  demo <student|teacher> Sign in with a demo account
  register              Create a new account

Student dashboard:
  overview              Show stats and recent performance
  tasks                 List tasks with status badges
  performance           Show the performance summary
  submit <task-id>      Submit a solution for an active task
  logout                Sign out

Teacher dashboard:
  board                 Show the task board with submission counts
  create                Create a new task
  cancel <task-id>      Cancel an active task (asks for confirmation)
  logout                Sign out
`)
}
