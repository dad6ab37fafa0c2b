package api_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/taskboard/taskboard-api/internal/api"
	"github.com/taskboard/taskboard-api/internal/api/middleware"
	"github.com/taskboard/taskboard-api/internal/domain"
	"github.com/taskboard/taskboard-api/internal/mocks"
	"github.com/taskboard/taskboard-api/internal/service"
	"github.com/taskboard/taskboard-api/internal/service/auth"
)

// testServer wires the full HTTP stack against in-memory stores so handler
// tests exercise routing, authentication and the policy end to end.
type testServer struct {
	router http.Handler
	users  *mocks.MockUserStore
	tasks  *mocks.MockTaskStore
	jwt    *mocks.MockJWTService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	users := mocks.NewMockUserStore()
	tasks := mocks.NewMockTaskStore(users)
	jwt := &mocks.MockJWTService{}

	verifier := auth.NewBcryptVerifier()

	userService, err := service.NewUserService(users, verifier, verifier, nil, log)
	require.NoError(t, err)
	taskService, err := service.NewTaskService(tasks, users, log)
	require.NoError(t, err)

	authHandler := api.NewAuthHandler(userService, jwt, log)
	taskHandler := api.NewTaskHandler(taskService, log)
	userHandler := api.NewUserHandler(userService, log)
	authMiddleware := middleware.NewAuthMiddleware(jwt, users)

	r := chi.NewRouter()
	r.Use(middleware.Trace)
	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Get("/auth/profile", authHandler.Profile)

			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", taskHandler.List)
				r.Post("/", taskHandler.Create)
				r.Get("/{id}", taskHandler.Get)
				r.Put("/{id}", taskHandler.Update)
				r.Patch("/{id}/status", taskHandler.UpdateStatus)
				r.Patch("/{id}/priority", taskHandler.UpdatePriority)
				r.Delete("/{id}", taskHandler.Delete)
			})

			r.Route("/users", func(r chi.Router) {
				r.Use(middleware.RequireAdmin)

				r.Get("/", userHandler.List)
				r.Put("/{id}/role", userHandler.SetRole)
				r.Put("/{id}/active", userHandler.SetActive)
				r.Delete("/{id}", userHandler.Delete)
			})
		})
	})

	return &testServer{router: r, users: users, tasks: tasks, jwt: jwt}
}

// seedUser inserts a user directly into the store and returns it with a
// bearer token accepted by the mock JWT service.
func (s *testServer) seedUser(t *testing.T, username string, role domain.Role) (*domain.User, string) {
	t.Helper()

	user, err := domain.NewUser(username, username+"@example.com", "password123")
	require.NoError(t, err)
	user.Role = role
	user.HashedPassword = "hash"
	user.Password = ""
	s.users.AddUser(user)

	return user, "token-" + user.ID.String()
}

func (s *testServer) seedTask(t *testing.T, creator, assignee *domain.User) *domain.Task {
	t.Helper()

	task, err := domain.NewTask(
		"Seeded task",
		"Fixture for handler tests",
		time.Now().UTC().Add(24*time.Hour),
		domain.PriorityMedium,
		assignee.ID,
		creator.ID,
	)
	require.NoError(t, err)
	s.tasks.AddTask(task)
	return task
}

// do performs a request against the router. A non-empty token is attached as
// a bearer credential; a non-nil body is JSON encoded.
func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(buf)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

// decode unmarshals the recorded JSON body into out.
func decode(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
}
