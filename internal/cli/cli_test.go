package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/okian/mahara/internal/api"
	"github.com/okian/mahara/internal/app"
	"github.com/okian/mahara/internal/cli"
	"github.com/okian/mahara/internal/domain/model"
	"github.com/okian/mahara/internal/session"
	"github.com/okian/mahara/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	_ = logger.Init()
	os.Exit(m.Run())
}

// run feeds a command script to a fresh terminal and returns the rendered
// output.
func run(t *testing.T, handler http.Handler, script ...string) string {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	svc := app.New(
		app.WithSession(session.New(session.WithPath(filepath.Join(t.TempDir(), "session.json")))),
		app.WithClient(api.New(api.WithBaseURL(srv.URL), api.WithTimeout(2*time.Second))),
	)

	var out bytes.Buffer
	term := cli.New(svc,
		cli.WithInput(strings.NewReader(strings.Join(script, "\n")+"\n")),
		cli.WithOutput(&out),
	)
	if err := term.Run(context.Background()); err != nil {
		t.Fatalf("terminal run: %v", err)
	}
	return out.String()
}

func backendWith(studentTasks []model.Task, sum model.PerformanceSummary) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /tasks/student/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"tasks": studentTasks})
	})
	mux.HandleFunc("GET /performance/student/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(sum)
	})
	mux.HandleFunc("GET /tasks/teacher/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"tasks": []model.Task{}})
	})
	return mux
}

func TestTerminal(t *testing.T) {
	Convey("Given the terminal client", t, func() {
		Convey("When started without a session", func() {
			out := run(t, backendWith(nil, model.PerformanceSummary{}), "quit")

			Convey("Then the landing copy renders", func() {
				So(out, ShouldContainSubstring, "21st Century Skills")
			})
		})

		Convey("When asked for help", func() {
			out := run(t, backendWith(nil, model.PerformanceSummary{}), "help", "quit")
			So(out, ShouldContainSubstring, "Mahara Terminal Client")
			So(out, ShouldContainSubstring, "submit <task-id>")
		})

		Convey("When logging in as the demo student", func() {
			tasks := []model.Task{
				{ID: "t-1", Title: "Water quality study", DueDate: "2026-10-01",
					Status: model.TaskActive, SubmissionStatus: model.SubmissionPending},
				{ID: "t-2", Title: "Robotics sprint", DueDate: "2026-09-01",
					Status: model.TaskCancelled},
			}
			out := run(t, backendWith(tasks, model.PerformanceSummary{}),
				"login", "demo student", "tasks", "quit")

			Convey("Then the task table shows badges and gated actions", func() {
				So(out, ShouldContainSubstring, "Ahmed Mohamed")
				So(out, ShouldContainSubstring, "Water quality study")
				So(out, ShouldContainSubstring, "pending (yellow)")
				So(out, ShouldContainSubstring, "submit")
				So(out, ShouldContainSubstring, "cancelled (red)")
			})
		})

		Convey("When viewing the performance tab", func() {
			sum := model.PerformanceSummary{
				SkillAverages: map[string]float64{"creativity": 72.5, "collaboration": 88},
				Strengths:     []string{"collaboration"},
				Timeline:      []model.ScorePoint{{Date: "2026-08-01", Score: 80}},
			}
			out := run(t, backendWith(nil, sum),
				"login", "demo student", "performance", "quit")

			So(out, ShouldContainSubstring, "collaboration")
			So(out, ShouldContainSubstring, "creativity")
			So(out, ShouldContainSubstring, "2026-08-01")
		})

		Convey("When an unknown role is given to demo", func() {
			out := run(t, backendWith(nil, model.PerformanceSummary{}),
				"login", "demo admin", "quit")
			So(out, ShouldContainSubstring, `unknown role "admin"`)
		})

		Convey("When the teacher cancels without confirming", func() {
			out := run(t, backendWith(nil, model.PerformanceSummary{}),
				"login", "demo teacher", "board", "cancel t-1", "n", "quit")

			Convey("Then the prompt rendered and nothing broke", func() {
				So(out, ShouldContainSubstring, "Dr. Sarah Ahmed")
				So(out, ShouldContainSubstring, "Cancel task t-1?")
			})
		})

		Convey("When a backend request fails", func() {
			mux := http.NewServeMux()
			mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, `{"error":"boom"}`, http.StatusInternalServerError)
			})
			out := run(t, mux,
				"login", "demo student", "tasks", "", "quit")

			Convey("Then a blocking alert renders", func() {
				So(out, ShouldContainSubstring, "Press enter to continue.")
				So(out, ShouldContainSubstring, "The request could not be completed")
			})
		})

		Convey("When logging out", func() {
			out := run(t, backendWith(nil, model.PerformanceSummary{}),
				"login", "demo student", "logout", "quit")

			Convey("Then the landing page renders again", func() {
				So(strings.Count(out, "21st Century Skills"), ShouldBeGreaterThanOrEqualTo, 2)
			})
		})
	})
}
