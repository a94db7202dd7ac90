package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zapponejosh/discernment180-api/internal/config"
	"github.com/zapponejosh/discernment180-api/internal/database"
	"github.com/zapponejosh/discernment180-api/internal/progress"
)

// =============================================================================
// TEST SETUP HELPERS
// =============================================================================

// testEnv holds a migrated in-memory database and the full router.
type testEnv struct {
	db       *database.DB
	cfg      *config.Config
	router   http.Handler
	adminKey string
}

func setupTest(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))

	db, err := database.Open(database.DefaultConfig(":memory:"), logger)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	if _, err := db.Migrate(ctx); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	adminKey := "admin-test-key-32-characters-minimum-length"
	cfg := &config.Config{
		Port:         8080,
		Env:          config.EnvDevelopment,
		DatabasePath: ":memory:",
		AdminAPIKey:  adminKey,
		LogLevel:     "error",
		LogFormat:    "text",
	}

	return &testEnv{
		db:       db,
		cfg:      cfg,
		router:   SetupRoutes(NewHandlers(db, cfg, logger), cfg, logger),
		adminKey: adminKey,
	}
}

func intPtr(v int) *int { return &v }

// seedProgram loads a short sequence: intro, two days, an excursus, a
// weekly review, a weekly preview and one more day.
func (env *testEnv) seedProgram(t *testing.T) {
	t.Helper()
	items := []database.ContentItem{
		{CurriculumOrder: 1, Day: intPtr(0), Title: "Welcome", Body: "Begin here."},
		{CurriculumOrder: 2, Day: intPtr(1), Title: "Day 1", Body: "First day."},
		{CurriculumOrder: 3, Day: intPtr(2), Title: "Day 2", Body: "Second day."},
		{CurriculumOrder: 4, Day: intPtr(0), Title: "Excursus: Silence", Body: "On silence."},
		{CurriculumOrder: 5, Day: intPtr(-1), Title: "Week 1 Review", Body: "Look back."},
		{CurriculumOrder: 6, Title: "Week 1: Preview of Next Week", Body: "Look ahead."},
		{CurriculumOrder: 7, Day: intPtr(3), Title: "Day 3", Body: "Third day."},
	}
	for i := range items {
		if err := env.db.UpsertContentItem(context.Background(), &items[i]); err != nil {
			t.Fatalf("seed content: %v", err)
		}
	}
}

// createTestUser creates a user and returns their API key.
func (env *testEnv) createTestUser(t *testing.T, name string) (*database.User, string) {
	t.Helper()
	ctx := context.Background()

	user, err := env.db.CreateUser(ctx, name+"@example.com", "Test User: "+name)
	if err != nil {
		t.Fatalf("create test user: %v", err)
	}

	key, err := env.db.CreateAPIKey(ctx, user.ID, name+" phone")
	if err != nil {
		t.Fatalf("create test api key: %v", err)
	}
	return user, key.PlaintextKey
}

// do sends a request through the router.
func (env *testEnv) do(method, path string, body any, apiKey string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, makeRequest(method, path, body, apiKey))
	return rr
}

// makeRequest builds a JSON request with an optional API key.
func makeRequest(method, path string, body any, apiKey string) *http.Request {
	var bodyReader io.Reader
	if body != nil {
		jsonData, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(jsonData)
	}

	req := httptest.NewRequest(method, path, bodyReader)
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}
	return req
}

// envelope is the decoded form of Response with a typed payload.
type envelope[T any] struct {
	Success bool       `json:"success"`
	Data    T          `json:"data"`
	Error   *ErrorInfo `json:"error"`
}

func parseResponse[T any](t *testing.T, rr *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var env envelope[T]
	if err := json.NewDecoder(rr.Body).Decode(&env); err != nil {
		t.Fatalf("decode response: %v, body: %s", err, rr.Body.String())
	}
	return env
}

// =============================================================================
// MIDDLEWARE TESTS
// =============================================================================

func TestAuthMiddleware_ValidKey(t *testing.T) {
	env := setupTest(t)
	user, apiKey := env.createTestUser(t, "authuser")

	handler := AuthMiddleware(env.db, slog.Default())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u := GetUser(r)
			if u == nil {
				t.Error("user not found in context")
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			if u.ID != user.ID {
				t.Errorf("User.ID = %d, want %d", u.ID, user.ID)
			}
			if s := GetSession(r); s.UserID != user.ID {
				t.Errorf("Session.UserID = %d, want %d", s.UserID, user.ID)
			}
			w.WriteHeader(http.StatusOK)
		}),
	)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, makeRequest("GET", "/test", nil, apiKey))

	if rr.Code != http.StatusOK {
		t.Errorf("Status = %d, want %d", rr.Code, http.StatusOK)
	}
}

func TestAuthMiddleware_MissingKey(t *testing.T) {
	env := setupTest(t)

	handler := AuthMiddleware(env.db, slog.Default())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}),
	)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, makeRequest("GET", "/test", nil, ""))

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("Status = %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestAuthMiddleware_InvalidKey(t *testing.T) {
	env := setupTest(t)

	handler := AuthMiddleware(env.db, slog.Default())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}),
	)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, makeRequest("GET", "/test", nil, "d180_invalid123456789"))

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("Status = %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestAdminOnlyMiddleware(t *testing.T) {
	env := setupTest(t)
	_, userKey := env.createTestUser(t, "notadmin")

	tests := []struct {
		name     string
		adminKey string
		key      string
		want     int
	}{
		{"admin key", env.adminKey, env.adminKey, http.StatusOK},
		{"user key", env.adminKey, userKey, http.StatusForbidden},
		{"missing key", env.adminKey, "", http.StatusUnauthorized},
		{"no admin key configured", "", userKey, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := *env.cfg
			cfg.AdminAPIKey = tt.adminKey
			handler := AdminOnlyMiddleware(&cfg, slog.Default())(
				http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(http.StatusOK)
				}),
			)

			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, makeRequest("GET", "/admin/test", nil, tt.key))

			if rr.Code != tt.want {
				t.Errorf("Status = %d, want %d", rr.Code, tt.want)
			}
		})
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	env := setupTest(t)

	rr := env.do("GET", "/health", nil, "")
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header not set")
	}

	req := makeRequest("GET", "/health", nil, "")
	req.Header.Set("X-Request-ID", "client-chosen-id")
	rr = httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)
	if got := rr.Header().Get("X-Request-ID"); got != "client-chosen-id" {
		t.Errorf("X-Request-ID = %q, want client-chosen-id", got)
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	handler := RecoveryMiddleware(slog.Default())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("boom")
		}),
	)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, makeRequest("GET", "/", nil, ""))

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("Status = %d, want %d", rr.Code, http.StatusInternalServerError)
	}
}

func TestCORSMiddleware_Preflight(t *testing.T) {
	env := setupTest(t)

	rr := env.do("OPTIONS", "/api/v1/progress", nil, "")
	if rr.Code != http.StatusNoContent {
		t.Errorf("Status = %d, want %d", rr.Code, http.StatusNoContent)
	}
	if rr.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing Access-Control-Allow-Origin")
	}
}

// =============================================================================
// PUBLIC ENDPOINT TESTS
// =============================================================================

func TestHealthCheck(t *testing.T) {
	env := setupTest(t)

	rr := env.do("GET", "/health", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)

	resp := parseResponse[map[string]string](t, rr)
	assert.True(t, resp.Success)
	assert.Equal(t, "healthy", resp.Data["status"])
}

func TestListContent(t *testing.T) {
	env := setupTest(t)
	env.seedProgram(t)

	rr := env.do("GET", "/api/v1/content", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)

	resp := parseResponse[struct {
		Items []tocEntry `json:"items"`
		Count int        `json:"count"`
	}](t, rr)
	require.Equal(t, 7, resp.Data.Count)

	kinds := make([]string, 0, len(resp.Data.Items))
	for _, it := range resp.Data.Items {
		kinds = append(kinds, string(it.Kind))
	}
	assert.Equal(t, []string{
		"intro", "daily", "daily", "excursus", "weekly_review", "weekly_preview", "daily",
	}, kinds)
	assert.Equal(t, 1, resp.Data.Items[4].Week)
}

// =============================================================================
// CONTENT ENDPOINT TESTS
// =============================================================================

func TestGetCurrentContent(t *testing.T) {
	env := setupTest(t)
	env.seedProgram(t)
	_, apiKey := env.createTestUser(t, "reader")

	rr := env.do("GET", "/api/v1/content/current", nil, apiKey)
	require.Equal(t, http.StatusOK, rr.Code)

	resp := parseResponse[progress.Content](t, rr)
	assert.Equal(t, 1, resp.Data.Item.CurriculumOrder)
	assert.Equal(t, "Begin here.", resp.Data.Item.Body)
	assert.EqualValues(t, "intro", resp.Data.Kind)
	assert.True(t, resp.Data.IsCurrent)
}

func TestGetCurrentContent_RequiresAuth(t *testing.T) {
	env := setupTest(t)

	rr := env.do("GET", "/api/v1/content/current", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestGetCurrentContent_Empty(t *testing.T) {
	env := setupTest(t)
	_, apiKey := env.createTestUser(t, "early")

	rr := env.do("GET", "/api/v1/content/current", nil, apiKey)
	require.Equal(t, http.StatusNotFound, rr.Code)

	resp := parseResponse[any](t, rr)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "NO_CONTENT", resp.Error.Code)
}

func TestGetDayContent(t *testing.T) {
	env := setupTest(t)
	env.seedProgram(t)
	_, apiKey := env.createTestUser(t, "reader")

	rr := env.do("GET", "/api/v1/content/day/2", nil, apiKey)
	require.Equal(t, http.StatusOK, rr.Code)

	resp := parseResponse[progress.Content](t, rr)
	assert.Equal(t, 3, resp.Data.Item.CurriculumOrder)
	assert.Equal(t, 2, resp.Data.Day)
	assert.Equal(t, 1, resp.Data.Week)
	assert.False(t, resp.Data.IsCurrent)
}

func TestGetDayContent_Invalid(t *testing.T) {
	env := setupTest(t)
	env.seedProgram(t)
	_, apiKey := env.createTestUser(t, "reader")

	tests := []struct {
		path string
		want int
	}{
		{"/api/v1/content/day/abc", http.StatusBadRequest},
		{"/api/v1/content/day/0", http.StatusBadRequest},
		{"/api/v1/content/day/181", http.StatusBadRequest},
		{"/api/v1/content/day/50", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rr := env.do("GET", tt.path, nil, apiKey)
			assert.Equal(t, tt.want, rr.Code, rr.Body.String())
		})
	}
}

// =============================================================================
// PROGRESS ENDPOINT TESTS
// =============================================================================

func TestSetDayCompletion(t *testing.T) {
	env := setupTest(t)
	env.seedProgram(t)
	_, apiKey := env.createTestUser(t, "walker")

	rr := env.do("PUT", "/api/v1/progress/days/1", map[string]bool{"complete": true}, apiKey)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	resp := parseResponse[database.Progress](t, rr)
	assert.Equal(t, database.DaySet{1}, resp.Data.CompletedDays)
	assert.Equal(t, 3, resp.Data.CurriculumOrder)
	assert.Equal(t, 2, resp.Data.CurrentDay)

	rr = env.do("PUT", "/api/v1/progress/days/1", map[string]bool{"complete": false}, apiKey)
	require.Equal(t, http.StatusOK, rr.Code)

	resp = parseResponse[database.Progress](t, rr)
	assert.Empty(t, resp.Data.CompletedDays)
	assert.Equal(t, 2, resp.Data.CurriculumOrder)
	assert.Equal(t, 1, resp.Data.CurrentDay)
}

func TestSetDayCompletion_BadRequests(t *testing.T) {
	env := setupTest(t)
	env.seedProgram(t)
	_, apiKey := env.createTestUser(t, "walker")

	tests := []struct {
		name string
		path string
		body any
		want int
	}{
		{"missing complete", "/api/v1/progress/days/1", map[string]any{}, http.StatusBadRequest},
		{"bad day", "/api/v1/progress/days/x", map[string]bool{"complete": true}, http.StatusBadRequest},
		{"out of range", "/api/v1/progress/days/200", map[string]bool{"complete": true}, http.StatusBadRequest},
		{"no content", "/api/v1/progress/days/90", map[string]bool{"complete": true}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.do("PUT", tt.path, tt.body, apiKey)
			assert.Equal(t, tt.want, rr.Code, rr.Body.String())
		})
	}
}

func TestAdvanceProgress(t *testing.T) {
	env := setupTest(t)
	env.seedProgram(t)
	_, apiKey := env.createTestUser(t, "walker")

	rr := env.do("POST", "/api/v1/progress/advance", nil, apiKey)
	require.Equal(t, http.StatusOK, rr.Code)

	resp := parseResponse[database.Progress](t, rr)
	assert.Equal(t, 2, resp.Data.CurriculumOrder)
	assert.Equal(t, 1, resp.Data.CurrentDay)
}

func TestAdvanceProgress_PastEnd(t *testing.T) {
	env := setupTest(t)
	env.seedProgram(t)
	user, apiKey := env.createTestUser(t, "finisher")

	err := env.db.SaveProgress(context.Background(), user.ID, database.Progress{
		CurriculumOrder: 8,
		CurrentDay:      181,
	})
	require.NoError(t, err)

	rr := env.do("POST", "/api/v1/progress/advance", nil, apiKey)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAdvanceProgress_RefusesDaily(t *testing.T) {
	env := setupTest(t)
	env.seedProgram(t)
	user, apiKey := env.createTestUser(t, "skipper")

	err := env.db.SaveProgress(context.Background(), user.ID, database.Progress{
		CurriculumOrder: 2,
		CurrentDay:      1,
	})
	require.NoError(t, err)

	rr := env.do("POST", "/api/v1/progress/advance", nil, apiKey)
	require.Equal(t, http.StatusConflict, rr.Code)

	resp := parseResponse[any](t, rr)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "NOT_SKIPPABLE", resp.Error.Code)
}

func TestGetCurrentContent_ImportedAfterSignup(t *testing.T) {
	env := setupTest(t)
	_, apiKey := env.createTestUser(t, "early")

	ctx := context.Background()
	for _, it := range []database.ContentItem{
		{CurriculumOrder: 10, Day: intPtr(0), Title: "Welcome"},
		{CurriculumOrder: 20, Day: intPtr(1), Title: "Day 1"},
	} {
		require.NoError(t, env.db.UpsertContentItem(ctx, &it))
	}

	rr := env.do("GET", "/api/v1/content/current", nil, apiKey)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	resp := parseResponse[progress.Content](t, rr)
	assert.Equal(t, 10, resp.Data.Item.CurriculumOrder)
	assert.True(t, resp.Data.IsCurrent)
}

func TestBeginProgress(t *testing.T) {
	env := setupTest(t)
	env.seedProgram(t)
	_, apiKey := env.createTestUser(t, "restart")

	env.do("PUT", "/api/v1/progress/days/1", map[string]bool{"complete": true}, apiKey)

	rr := env.do("POST", "/api/v1/progress/begin", nil, apiKey)
	require.Equal(t, http.StatusOK, rr.Code)

	resp := parseResponse[database.Progress](t, rr)
	assert.Equal(t, 1, resp.Data.CurriculumOrder)
	assert.Equal(t, database.DaySet{1}, resp.Data.CompletedDays)
}

func TestGetProgressAndStats(t *testing.T) {
	env := setupTest(t)
	env.seedProgram(t)
	_, apiKey := env.createTestUser(t, "stats")

	env.do("PUT", "/api/v1/progress/days/1", map[string]bool{"complete": true}, apiKey)
	env.do("PUT", "/api/v1/progress/days/2", map[string]bool{"complete": true}, apiKey)

	rr := env.do("GET", "/api/v1/progress", nil, apiKey)
	require.Equal(t, http.StatusOK, rr.Code)
	p := parseResponse[database.Progress](t, rr)
	assert.Equal(t, database.DaySet{1, 2}, p.Data.CompletedDays)

	rr = env.do("GET", "/api/v1/progress/stats", nil, apiKey)
	require.Equal(t, http.StatusOK, rr.Code)
	stats := parseResponse[progress.Stats](t, rr)
	assert.Equal(t, 2, stats.Data.CompletedDays)
	assert.Equal(t, 180, stats.Data.TotalDays)
	assert.False(t, stats.Data.Finished)
}

// =============================================================================
// REVIEW ENDPOINT TESTS
// =============================================================================

func TestWeeklyReview_SaveAndGet(t *testing.T) {
	env := setupTest(t)
	_, apiKey := env.createTestUser(t, "reviewer")

	rr := env.do("GET", "/api/v1/reviews/1", nil, apiKey)
	require.Equal(t, http.StatusNotFound, rr.Code)

	body := map[string]any{
		"consolations": "Morning prayer",
		"prayer_days":  []int{3, 1, 1},
		"confession":   true,
	}
	rr = env.do("PUT", "/api/v1/reviews/1", body, apiKey)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = env.do("GET", "/api/v1/reviews/1", nil, apiKey)
	require.Equal(t, http.StatusOK, rr.Code)

	resp := parseResponse[database.WeeklyReview](t, rr)
	assert.Equal(t, "Morning prayer", resp.Data.Consolations)
	assert.Equal(t, database.DaySet{1, 3}, resp.Data.PrayerDays)
	assert.Equal(t, database.DaySet{}, resp.Data.MassDays)
	assert.True(t, resp.Data.Confession)
}

func TestWeeklyReview_Validation(t *testing.T) {
	env := setupTest(t)
	_, apiKey := env.createTestUser(t, "reviewer")

	rr := env.do("PUT", "/api/v1/reviews/27", map[string]any{}, apiKey)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = env.do("PUT", "/api/v1/reviews/2", map[string]any{"fasting_days": []int{7}}, apiKey)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSaveWeeklyPlan_Advances(t *testing.T) {
	env := setupTest(t)
	env.seedProgram(t)
	user, apiKey := env.createTestUser(t, "planner")

	err := env.db.SaveProgress(context.Background(), user.ID, database.Progress{
		CurriculumOrder: 6,
		CurrentDay:      3,
	})
	require.NoError(t, err)

	rr := env.do("POST", "/api/v1/reviews/2/plan", map[string]any{
		"next_week_plan": "Daily rosary",
		"mass_days":      []int{0},
	}, apiKey)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	resp := parseResponse[struct {
		Review   database.WeeklyReview `json:"review"`
		Progress database.Progress     `json:"progress"`
	}](t, rr)
	assert.Equal(t, "Daily rosary", resp.Data.Review.NextWeekPlan)
	assert.Equal(t, 7, resp.Data.Progress.CurriculumOrder)
	assert.Equal(t, 3, resp.Data.Progress.CurrentDay)
}

func TestRuleOfLife(t *testing.T) {
	env := setupTest(t)
	_, apiKey := env.createTestUser(t, "ruler")

	rr := env.do("GET", "/api/v1/rule-of-life", nil, apiKey)
	require.Equal(t, http.StatusNotFound, rr.Code)

	rr = env.do("PUT", "/api/v1/rule-of-life", map[string]string{"prayer": "Holy hour"}, apiKey)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = env.do("PUT", "/api/v1/rule-of-life", map[string]string{"prayer": "Two holy hours"}, apiKey)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = env.do("GET", "/api/v1/rule-of-life", nil, apiKey)
	require.Equal(t, http.StatusOK, rr.Code)
	resp := parseResponse[database.RuleOfLife](t, rr)
	assert.Equal(t, "Two holy hours", resp.Data.Prayer)
}

// =============================================================================
// ADMIN ENDPOINT TESTS
// =============================================================================

func TestCreateUser_Success(t *testing.T) {
	env := setupTest(t)

	rr := env.do("POST", "/api/v1/admin/users", map[string]string{
		"email": "newuser@example.com",
		"name":  "New User",
	}, env.adminKey)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	resp := parseResponse[database.User](t, rr)
	assert.Equal(t, "newuser@example.com", resp.Data.Email)
	assert.Equal(t, 1, resp.Data.CurriculumOrder)
	assert.Equal(t, 1, resp.Data.CurrentDay)
	assert.Equal(t, database.DaySet{}, resp.Data.CompletedDays)
}

func TestCreateUser_Errors(t *testing.T) {
	env := setupTest(t)
	env.createTestUser(t, "taken")

	tests := []struct {
		name string
		body any
		want int
	}{
		{"missing email", map[string]string{"name": "No Email"}, http.StatusBadRequest},
		{"bad email", map[string]string{"email": "not-an-email"}, http.StatusBadRequest},
		{"duplicate", map[string]string{"email": "TAKEN@example.com"}, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.do("POST", "/api/v1/admin/users", tt.body, env.adminKey)
			assert.Equal(t, tt.want, rr.Code, rr.Body.String())
		})
	}
}

func TestCreateUser_RequiresAdmin(t *testing.T) {
	env := setupTest(t)
	_, userKey := env.createTestUser(t, "sneaky")

	rr := env.do("POST", "/api/v1/admin/users", map[string]string{"email": "x@example.com"}, userKey)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestCreateAPIKey_AuthenticatesUser(t *testing.T) {
	env := setupTest(t)
	user, _ := env.createTestUser(t, "keyed")

	rr := env.do("POST", "/api/v1/admin/users/"+strconv.FormatInt(user.ID, 10)+"/keys", map[string]string{"name": "tablet"}, env.adminKey)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	resp := parseResponse[struct {
		APIKey database.APIKeyWithPlaintext `json:"api_key"`
	}](t, rr)
	require.NotEmpty(t, resp.Data.APIKey.PlaintextKey)

	rr = env.do("GET", "/api/v1/me", nil, resp.Data.APIKey.PlaintextKey)
	require.Equal(t, http.StatusOK, rr.Code)
	me := parseResponse[database.User](t, rr)
	assert.Equal(t, user.ID, me.Data.ID)

	rr = env.do("GET", "/api/v1/me/keys", nil, resp.Data.APIKey.PlaintextKey)
	require.Equal(t, http.StatusOK, rr.Code)
	keys := parseResponse[struct {
		Count int `json:"count"`
	}](t, rr)
	assert.Equal(t, 2, keys.Data.Count)
}

func TestCreateAPIKey_UnknownUser(t *testing.T) {
	env := setupTest(t)

	rr := env.do("POST", "/api/v1/admin/users/999/keys", map[string]string{"name": "x"}, env.adminKey)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestListUsers(t *testing.T) {
	env := setupTest(t)
	env.createTestUser(t, "one")
	env.createTestUser(t, "two")

	rr := env.do("GET", "/api/v1/admin/users", nil, env.adminKey)
	require.Equal(t, http.StatusOK, rr.Code)

	resp := parseResponse[struct {
		Users []database.User `json:"users"`
		Count int             `json:"count"`
	}](t, rr)
	assert.Equal(t, 2, resp.Data.Count)
}
