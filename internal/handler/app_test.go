package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/task-manager/internal/config"
	"github.com/iliyamo/task-manager/internal/handler"
	"github.com/iliyamo/task-manager/internal/middleware"
	"github.com/iliyamo/task-manager/internal/model"
	"github.com/iliyamo/task-manager/internal/response"
	"github.com/iliyamo/task-manager/internal/router"
	"github.com/iliyamo/task-manager/internal/utils"
)

// testApp wires the full HTTP surface (routes, auth middleware, error
// handler) over in-memory stores, exactly as cmd/server does over MySQL.
type testApp struct {
	e     *echo.Echo
	db    *memDB
	tasks *handler.TaskHandler
}

func newApp() *testApp {
	db := newMemDB()
	cfg := config.Config{Env: "test", BcryptCost: 4, TokenBytes: 16}
	users := &memUsers{db}
	tasks := &memTasks{db}
	tokens := &memTokens{db}

	authHandler := handler.NewAuthHandler(cfg, users, tokens)
	taskHandler := handler.NewTaskHandler(tasks, nil)
	userHandler := handler.NewUserHandler(users, nil)

	e := echo.New()
	e.HTTPErrorHandler = response.ErrorHandler
	router.RegisterRoutes(e)
	cache := middleware.NewTaskCache(config.CacheConfig{}, nil) // disabled
	router.RegisterAPI(e, authHandler, taskHandler, userHandler,
		middleware.Auth(tokens, users), cache.Middleware())

	return &testApp{e: e, db: db, tasks: taskHandler}
}

// request performs an HTTP round trip and decodes the envelope body.
func (a *testApp) request(t *testing.T, method, path string, body any, token string) (int, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)

	var env map[string]any
	if len(rec.Body.Bytes()) > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("response is not JSON: %v: %s", err, rec.Body.String())
		}
	}
	return rec.Code, env
}

// seedUser inserts a user directly and issues a live token for it.
func (a *testApp) seedUser(t *testing.T, name, email, role string) (model.User, string) {
	t.Helper()
	u, err := (&memUsers{a.db}).Create(context.Background(), name, email, "password123", role, 4)
	if err != nil {
		t.Fatal(err)
	}
	raw, err := utils.NewAccessToken(16)
	if err != nil {
		t.Fatal(err)
	}
	if err := (&memTokens{a.db}).Store(context.Background(), u.ID, utils.HashToken(raw)); err != nil {
		t.Fatal(err)
	}
	return u, raw
}

// seedTask inserts a task owned by the given user.
func (a *testApp) seedTask(t *testing.T, userID uint64, title, status string) model.Task {
	t.Helper()
	task := model.Task{UserID: userID, Title: title, Status: status}
	if err := (&memTasks{a.db}).Create(context.Background(), &task); err != nil {
		t.Fatal(err)
	}
	return task
}

// storedTask reads a task straight from the backing map, bypassing HTTP.
func (a *testApp) storedTask(t *testing.T, id uint64) (model.Task, bool) {
	t.Helper()
	a.db.mu.Lock()
	defer a.db.mu.Unlock()
	task, ok := a.db.tasks[id]
	return task, ok
}

func data(t *testing.T, env map[string]any) map[string]any {
	t.Helper()
	d, ok := env["data"].(map[string]any)
	if !ok {
		t.Fatalf("envelope data missing or wrong shape: %v", env)
	}
	return d
}

func errorsMap(t *testing.T, env map[string]any) map[string]any {
	t.Helper()
	e, ok := env["errors"].(map[string]any)
	if !ok {
		t.Fatalf("envelope errors missing: %v", env)
	}
	return e
}

func futureDate(days int) string {
	return time.Now().UTC().AddDate(0, 0, days).Format("2006-01-02")
}
