package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/okian/mahara/internal/api"
	"github.com/okian/mahara/internal/domain/model"
	"github.com/okian/mahara/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	_ = logger.Init()
	os.Exit(m.Run())
}

// recorded captures the last request a fake backend saw.
type recorded struct {
	method string
	path   string
	header http.Header
	body   map[string]any
}

func fakeBackend(t *testing.T, status int, response any) (*httptest.Server, *recorded) {
	t.Helper()
	rec := &recorded{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.method = r.Method
		rec.path = r.URL.Path
		rec.header = r.Header.Clone()
		rec.body = map[string]any{}
		_ = json.NewDecoder(r.Body).Decode(&rec.body)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if response != nil {
			_ = json.NewEncoder(w).Encode(response)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, rec
}

func TestClientHeaders(t *testing.T) {
	ctx := context.Background()

	Convey("Given a client with a custom header", t, func() {
		srv, rec := fakeBackend(t, http.StatusOK, api.AuthResult{Success: true, User: model.Identity{ID: "u-1", Role: model.RoleStudent}})
		c := api.New(
			api.WithBaseURL(srv.URL),
			api.WithHeader("X-Client", "terminal"),
		)

		Convey("When issuing a request", func() {
			_, err := c.Login(ctx, "student@school.com")
			So(err, ShouldBeNil)

			Convey("Then JSON content type and merged headers are attached", func() {
				So(rec.header.Get("Content-Type"), ShouldEqual, "application/json")
				So(rec.header.Get("X-Client"), ShouldEqual, "terminal")
				So(rec.header.Get("X-Request-ID"), ShouldNotBeEmpty)
			})
		})
	})
}

func TestClientAuth(t *testing.T) {
	ctx := context.Background()

	Convey("Given the auth endpoints", t, func() {
		Convey("When logging in successfully", func() {
			srv, rec := fakeBackend(t, http.StatusOK, api.AuthResult{
				Success: true,
				User: model.Identity{
					ID:       "u-1",
					FullName: "Ahmed Mohamed",
					Email:    "student@school.com",
					Role:     model.RoleStudent,
				},
			})
			c := api.New(api.WithBaseURL(srv.URL))

			res, err := c.Login(ctx, "student@school.com")

			Convey("Then the identity comes back typed", func() {
				So(err, ShouldBeNil)
				So(res.Success, ShouldBeTrue)
				So(res.User.Role, ShouldEqual, model.RoleStudent)
				So(rec.method, ShouldEqual, http.MethodPost)
				So(rec.path, ShouldEqual, "/auth/login")
				So(rec.body["email"], ShouldEqual, "student@school.com")
			})
		})

		Convey("When the backend declines the login with 200 success=false", func() {
			srv, _ := fakeBackend(t, http.StatusOK, api.AuthResult{Success: false})
			c := api.New(api.WithBaseURL(srv.URL))

			res, err := c.Login(ctx, "nobody@school.com")

			Convey("Then it is a non-error outcome", func() {
				So(err, ShouldBeNil)
				So(res.Success, ShouldBeFalse)
				So(res.User.ID, ShouldBeEmpty)
			})
		})

		Convey("When registering", func() {
			srv, rec := fakeBackend(t, http.StatusOK, api.AuthResult{
				Success: true,
				User:    model.Identity{ID: "u-9", Role: model.RoleTeacher},
			})
			c := api.New(api.WithBaseURL(srv.URL))

			res, err := c.Register(ctx, api.RegisterRequest{
				Email:      "teacher@school.com",
				Password:   "s3cret-pw",
				FullName:   "Dr. Sarah Ahmed",
				Role:       model.RoleTeacher,
				SchoolCode: "SCH-1",
			})

			Convey("Then the request mirrors the contract", func() {
				So(err, ShouldBeNil)
				So(res.User.ID, ShouldEqual, "u-9")
				So(rec.path, ShouldEqual, "/auth/register")
				So(rec.body["full_name"], ShouldEqual, "Dr. Sarah Ahmed")
				So(rec.body["role"], ShouldEqual, "teacher")
				So(rec.body["school_code"], ShouldEqual, "SCH-1")
			})
		})
	})
}

func TestClientTasks(t *testing.T) {
	ctx := context.Background()

	Convey("Given the task endpoints", t, func() {
		Convey("When listing student tasks", func() {
			srv, rec := fakeBackend(t, http.StatusOK, map[string]any{
				"tasks": []model.Task{
					{ID: "t-1", Title: "Renewable energy project", Status: model.TaskActive, SubmissionStatus: model.SubmissionPending},
					{ID: "t-2", Title: "AI presentation", Status: model.TaskActive, SubmissionStatus: model.SubmissionGraded},
				},
			})
			c := api.New(api.WithBaseURL(srv.URL))

			tasks, err := c.StudentTasks(ctx, "u-1")

			Convey("Then the list decodes from the wrapper", func() {
				So(err, ShouldBeNil)
				So(len(tasks), ShouldEqual, 2)
				So(tasks[0].ID, ShouldEqual, "t-1")
				So(rec.method, ShouldEqual, http.MethodGet)
				So(rec.path, ShouldEqual, "/tasks/student/u-1")
			})
		})

		Convey("When listing teacher tasks with aggregates", func() {
			srv, rec := fakeBackend(t, http.StatusOK, map[string]any{
				"tasks": []model.Task{
					{ID: "t-1", Status: model.TaskActive, TotalSubmissions: 45, PendingCount: 5, GradedCount: 40},
				},
			})
			c := api.New(api.WithBaseURL(srv.URL))

			tasks, err := c.TeacherTasks(ctx, "u-9")

			So(err, ShouldBeNil)
			So(tasks[0].TotalSubmissions, ShouldEqual, 45)
			So(rec.path, ShouldEqual, "/tasks/teacher/u-9")
		})

		Convey("When creating a task", func() {
			srv, rec := fakeBackend(t, http.StatusCreated, model.Task{ID: "t-3", Title: "New task", Status: model.TaskActive})
			c := api.New(api.WithBaseURL(srv.URL))

			task, err := c.CreateTask(ctx, api.CreateTaskRequest{
				TeacherID:   "u-9",
				Title:       "New task",
				Description: "desc",
				Questions:   []string{"q1", "q2", "q3"},
				DueDate:     "2026-09-15",
			})

			Convey("Then the created object comes back", func() {
				So(err, ShouldBeNil)
				So(task.ID, ShouldEqual, "t-3")
				So(rec.method, ShouldEqual, http.MethodPost)
				So(rec.path, ShouldEqual, "/tasks")
				So(rec.body["teacher_id"], ShouldEqual, "u-9")
			})
		})

		Convey("When cancelling a task", func() {
			srv, rec := fakeBackend(t, http.StatusOK, model.Task{ID: "t-1", Status: model.TaskCancelled})
			c := api.New(api.WithBaseURL(srv.URL))

			task, err := c.CancelTask(ctx, "t-1")

			Convey("Then a PATCH carries the one-way transition", func() {
				So(err, ShouldBeNil)
				So(task.Status, ShouldEqual, model.TaskCancelled)
				So(rec.method, ShouldEqual, http.MethodPatch)
				So(rec.path, ShouldEqual, "/tasks/t-1")
				So(rec.body["status"], ShouldEqual, "cancelled")
			})
		})

		Convey("When submitting a solution", func() {
			srv, rec := fakeBackend(t, http.StatusNoContent, nil)
			c := api.New(api.WithBaseURL(srv.URL))

			err := c.SubmitSolution(ctx, api.SubmitRequest{TaskID: "t-1", StudentID: "u-1", Content: "my answer"})

			So(err, ShouldBeNil)
			So(rec.path, ShouldEqual, "/submissions")
			So(rec.body["content"], ShouldEqual, "my answer")
		})

		Convey("When fetching performance", func() {
			srv, rec := fakeBackend(t, http.StatusOK, model.PerformanceSummary{
				SkillAverages: map[string]float64{"critical_thinking": 82.5},
				Strengths:     []string{"critical_thinking"},
				Weaknesses:    []string{"collaboration"},
				Timeline:      []model.ScorePoint{{Date: "2026-08-01", Score: 80}},
			})
			c := api.New(api.WithBaseURL(srv.URL))

			sum, err := c.StudentPerformance(ctx, "u-1")

			So(err, ShouldBeNil)
			So(sum.SkillAverages["critical_thinking"], ShouldEqual, 82.5)
			So(rec.path, ShouldEqual, "/performance/student/u-1")
		})
	})
}

func TestClientConcurrentUse(t *testing.T) {
	ctx := context.Background()

	Convey("Given a default client shared by concurrent fetches", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{"tasks": []model.Task{{ID: "t-1"}}})
		}))
		defer srv.Close()
		c := api.New(api.WithBaseURL(srv.URL))

		Convey("When two goroutines issue requests at once", func() {
			errs := make(chan error, 2)
			var wg sync.WaitGroup
			for i := 0; i < 2; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, err := c.StudentTasks(ctx, "u-1")
					errs <- err
				}()
			}
			wg.Wait()
			close(errs)

			Convey("Then both complete cleanly", func() {
				for err := range errs {
					So(err, ShouldBeNil)
				}
			})
		})
	})
}

func TestClientFailureKinds(t *testing.T) {
	ctx := context.Background()

	Convey("Given failing backends", t, func() {
		Convey("When the backend answers 4xx", func() {
			srv, _ := fakeBackend(t, http.StatusBadRequest, map[string]string{"message": "missing title"})
			c := api.New(api.WithBaseURL(srv.URL))

			_, err := c.CreateTask(ctx, api.CreateTaskRequest{})

			Convey("Then the error is a validation kind with the server message", func() {
				So(err, ShouldNotBeNil)
				var apiErr *api.Error
				So(errors.As(err, &apiErr), ShouldBeTrue)
				So(apiErr.Kind, ShouldEqual, api.KindValidation)
				So(apiErr.Status, ShouldEqual, http.StatusBadRequest)
				So(apiErr.Message, ShouldEqual, "missing title")
			})
		})

		Convey("When the backend answers 5xx", func() {
			srv, _ := fakeBackend(t, http.StatusInternalServerError, map[string]string{"error": "boom"})
			c := api.New(api.WithBaseURL(srv.URL))

			_, err := c.StudentTasks(ctx, "u-1")

			var apiErr *api.Error
			So(errors.As(err, &apiErr), ShouldBeTrue)
			So(apiErr.Kind, ShouldEqual, api.KindServer)
			So(apiErr.Message, ShouldEqual, "boom")
		})

		Convey("When the backend is unreachable", func() {
			srv, _ := fakeBackend(t, http.StatusOK, nil)
			base := srv.URL
			srv.Close()
			c := api.New(api.WithBaseURL(base), api.WithTimeout(500*time.Millisecond))

			_, err := c.StudentTasks(ctx, "u-1")

			var apiErr *api.Error
			So(errors.As(err, &apiErr), ShouldBeTrue)
			So(apiErr.Kind, ShouldEqual, api.KindNetwork)
			So(apiErr.Status, ShouldEqual, 0)
		})

		Convey("When a 2xx body does not decode", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write([]byte("<html>not json</html>"))
			}))
			defer srv.Close()
			c := api.New(api.WithBaseURL(srv.URL))

			_, err := c.StudentTasks(ctx, "u-1")

			var apiErr *api.Error
			So(errors.As(err, &apiErr), ShouldBeTrue)
			So(apiErr.Kind, ShouldEqual, api.KindDecode)
		})
	})
}
