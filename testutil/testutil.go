// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/danielhkuo/quickly-stake/auth"
	"github.com/danielhkuo/quickly-stake/cliparse"
	"github.com/danielhkuo/quickly-stake/db"
	"github.com/danielhkuo/quickly-stake/engine"
	"github.com/danielhkuo/quickly-stake/middleware"
	"github.com/danielhkuo/quickly-stake/models"
	"github.com/danielhkuo/quickly-stake/store"
)

// TestDBURL is an in-memory SQLite database, private to one connection
const TestDBURL = ":memory:"

// TestStart is the fixed time test clocks start at
var TestStart = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// SetupTestDB creates a fresh test database with the full schema
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open(db.TypeSQLite, TestDBURL)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:           3318,
		DatabaseURL:    TestDBURL,
		DatabaseType:   db.TypeSQLite,
		SessionSecret:  "test-session-secret",
		ProviderSecret: "test-provider-secret",
		ProviderIssuer: "test-provider",
		SessionTTL:     time.Hour,
		InitialPoints:  engine.DefaultInitialPoints,
	}
}

// Clock is a manually advanced time source
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Env bundles everything a handler or router test needs
type Env struct {
	DB       *sql.DB
	Store    *store.Store
	Engine   *engine.Engine
	Issuer   *auth.Issuer
	Provider *auth.HMACProvider
	Clock    *Clock
	Config   cliparse.Config
}

// NewTestEnv wires an engine and issuer to a fresh database and a clock
// starting at TestStart
func NewTestEnv(t *testing.T) *Env {
	t.Helper()

	cfg := GetTestConfig()
	conn := SetupTestDB(t)
	clock := NewClock(TestStart)
	st := store.New(conn, cfg.DatabaseType)

	eng, err := engine.New(context.Background(), st,
		engine.WithClock(clock.Now),
		engine.WithInitialPoints(cfg.InitialPoints),
	)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	issuer, err := auth.NewIssuer(cfg.SessionSecret, cfg.SessionTTL)
	if err != nil {
		t.Fatalf("Failed to create issuer: %v", err)
	}
	issuer.WithClock(clock.Now)
	if err := issuer.UseStore(context.Background(), st); err != nil {
		t.Fatalf("Failed to attach revocation store: %v", err)
	}

	provider, err := auth.NewHMACProvider(cfg.ProviderSecret, cfg.ProviderIssuer)
	if err != nil {
		t.Fatalf("Failed to create identity provider: %v", err)
	}
	provider.WithClock(clock.Now)

	return &Env{DB: conn, Store: st, Engine: eng, Issuer: issuer, Provider: provider, Clock: clock, Config: cfg}
}

// Assertion returns a provider-signed identity assertion for uid
func (e *Env) Assertion(t *testing.T, uid, displayName string) string {
	t.Helper()

	a, err := auth.SignAssertion(e.Config.ProviderSecret, e.Config.ProviderIssuer,
		models.Identity{UID: uid, DisplayName: displayName}, e.Clock.Now().Add(5*time.Minute))
	if err != nil {
		t.Fatalf("Failed to sign assertion for %s: %v", uid, err)
	}
	return a
}

// CreateTestUser authenticates uid and returns its identity and a session token
func (e *Env) CreateTestUser(t *testing.T, uid string) (models.Identity, string) {
	t.Helper()

	id, _, err := e.Engine.Authenticate(context.Background(), models.Identity{UID: uid, DisplayName: uid})
	if err != nil {
		t.Fatalf("Failed to authenticate %s: %v", uid, err)
	}
	token, err := e.Issuer.Issue(id)
	if err != nil {
		t.Fatalf("Failed to issue token for %s: %v", uid, err)
	}
	return id, token
}

// CreateTestProject creates a project by creator that closes in one day
func (e *Env) CreateTestProject(t *testing.T, creator models.Identity, maxPoints int64) models.Project {
	t.Helper()

	p, err := e.Engine.CreateProject(context.Background(), creator, engine.CreateProjectInput{
		Title:       "Rain?",
		Description: "Will it rain tomorrow",
		EndTime:     e.Clock.Now().Add(24 * time.Hour),
		MaxPoints:   maxPoints,
	})
	if err != nil {
		t.Fatalf("Failed to create test project: %v", err)
	}
	return p
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AsUser attaches id to the request context, as middleware.RequireSession does
func AsUser(req *http.Request, id models.Identity) *http.Request {
	return req.WithContext(middleware.WithIdentity(req.Context(), id))
}

// BearerHeader returns the Authorization header for token
func BearerHeader(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}

// AssertErrorCode checks the machine-readable code of an error response
func AssertErrorCode(t *testing.T, w *httptest.ResponseRecorder, code string) {
	t.Helper()
	var resp models.ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}
	if resp.Code != code {
		t.Errorf("Expected error code '%s', got '%s' (%s)", code, resp.Code, resp.Message)
	}
}
