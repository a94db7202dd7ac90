// Command apitest runs a smoke test against a running API server. It
// creates a throwaway user with the admin key, then walks that user
// through the program endpoints.
//
// Usage:
//
//	go run ./cmd/apitest -url http://localhost:8080 -admin-key $ADMIN_API_KEY
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zapponejosh/discernment180-api/internal/database"
	"github.com/zapponejosh/discernment180-api/internal/progress"
)

// =============================================================================
// Response Types
// =============================================================================

type APIResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   *ErrorInfo      `json:"error,omitempty"`
}

type ErrorInfo struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

type TOCResponse struct {
	Count int `json:"count"`
}

type KeyResponse struct {
	APIKey database.APIKeyWithPlaintext `json:"api_key"`
}

// =============================================================================
// Test Runner
// =============================================================================

type TestRunner struct {
	baseURL      string
	adminKey     string
	userKey      string
	client       *http.Client
	verbose      bool
	successCount int
	errorCount   int
	errors       []string
}

func NewTestRunner(baseURL, adminKey string, verbose bool) *TestRunner {
	return &TestRunner{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		adminKey: adminKey,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		verbose: verbose,
	}
}

func (tr *TestRunner) Run() {
	fmt.Println("==============================================")
	fmt.Println("Discernment 180 API Smoke Test")
	fmt.Println("==============================================")
	fmt.Printf("Base URL: %s\n", tr.baseURL)

	tr.testHealth()
	tr.testTableOfContents()
	if tr.testCreateUser() {
		tr.testCurrentContent()
		tr.testCompletion()
		tr.testWeeklyReview()
		tr.testAuthErrors()
	}

	tr.printSummary()
}

// =============================================================================
// Test Groups
// =============================================================================

func (tr *TestRunner) testHealth() {
	tr.printSection("Health Check")

	var health HealthResponse
	if err := tr.call("GET", "/health", "", nil, &health); err != nil {
		tr.recordError("Health", err.Error())
		return
	}
	if health.Status == "healthy" {
		tr.recordSuccess("Health check passed")
	} else {
		tr.recordError("Health", fmt.Sprintf("Unexpected status: %s", health.Status))
	}
}

func (tr *TestRunner) testTableOfContents() {
	tr.printSection("Table of Contents")

	var toc TOCResponse
	if err := tr.call("GET", "/api/v1/content", "", nil, &toc); err != nil {
		tr.recordError("Content", err.Error())
		return
	}
	if toc.Count == 0 {
		tr.recordError("Content", "no content loaded; run cmd/import first")
		return
	}
	tr.recordSuccess(fmt.Sprintf("%d content items", toc.Count))
}

func (tr *TestRunner) testCreateUser() bool {
	tr.printSection("Admin: Create User")

	if tr.adminKey == "" {
		tr.recordError("Admin", "no -admin-key given; skipping user tests")
		return false
	}

	email := fmt.Sprintf("smoke-%s@example.com", uuid.NewString()[:8])
	var user database.User
	if err := tr.call("POST", "/api/v1/admin/users", tr.adminKey, map[string]string{
		"email": email,
		"name":  "Smoke Test",
	}, &user); err != nil {
		tr.recordError("Create user", err.Error())
		return false
	}
	tr.recordSuccess(fmt.Sprintf("Created user %d (%s)", user.ID, email))

	var key KeyResponse
	path := fmt.Sprintf("/api/v1/admin/users/%d/keys", user.ID)
	if err := tr.call("POST", path, tr.adminKey, map[string]string{"name": "apitest"}, &key); err != nil {
		tr.recordError("Create key", err.Error())
		return false
	}
	tr.userKey = key.APIKey.PlaintextKey
	tr.recordSuccess(fmt.Sprintf("Issued key %s...", key.APIKey.KeyPrefix))
	return true
}

func (tr *TestRunner) testCurrentContent() {
	tr.printSection("Current Content")

	var c progress.Content
	if err := tr.call("GET", "/api/v1/content/current", tr.userKey, nil, &c); err != nil {
		tr.recordError("Current", err.Error())
		return
	}
	tr.recordSuccess(fmt.Sprintf("Order %d: %s (%s)", c.Item.CurriculumOrder, c.Item.Title, c.Kind))
	if tr.verbose && c.Item.Subtitle != nil {
		fmt.Printf("    Subtitle: %s\n", *c.Item.Subtitle)
	}
}

func (tr *TestRunner) testCompletion() {
	tr.printSection("Completion")

	var p database.Progress
	if err := tr.call("PUT", "/api/v1/progress/days/1", tr.userKey, map[string]bool{"complete": true}, &p); err != nil {
		tr.recordError("Complete day 1", err.Error())
		return
	}
	if !p.CompletedDays.Contains(1) {
		tr.recordError("Complete day 1", fmt.Sprintf("completed_days = %v", p.CompletedDays))
		return
	}
	tr.recordSuccess(fmt.Sprintf("Day 1 complete, current day %d", p.CurrentDay))

	if err := tr.call("PUT", "/api/v1/progress/days/1", tr.userKey, map[string]bool{"complete": false}, &p); err != nil {
		tr.recordError("Uncomplete day 1", err.Error())
		return
	}
	if p.CompletedDays.Contains(1) {
		tr.recordError("Uncomplete day 1", fmt.Sprintf("completed_days = %v", p.CompletedDays))
		return
	}
	tr.recordSuccess(fmt.Sprintf("Day 1 un-marked, current day %d", p.CurrentDay))

	var stats progress.Stats
	if err := tr.call("GET", "/api/v1/progress/stats", tr.userKey, nil, &stats); err != nil {
		tr.recordError("Stats", err.Error())
		return
	}
	tr.recordSuccess(fmt.Sprintf("Stats: %d/%d days", stats.CompletedDays, stats.TotalDays))
}

func (tr *TestRunner) testWeeklyReview() {
	tr.printSection("Weekly Review")

	if err := tr.call("PUT", "/api/v1/reviews/1", tr.userKey, map[string]any{
		"graces":      "Smoke test grace",
		"prayer_days": []int{0, 2, 4},
	}, nil); err != nil {
		tr.recordError("Save review", err.Error())
		return
	}

	var r database.WeeklyReview
	if err := tr.call("GET", "/api/v1/reviews/1", tr.userKey, nil, &r); err != nil {
		tr.recordError("Get review", err.Error())
		return
	}
	tr.recordSuccess(fmt.Sprintf("Week 1 review saved, prayer days %v", r.PrayerDays))
}

func (tr *TestRunner) testAuthErrors() {
	tr.printSection("Auth Errors")

	resp, err := tr.do("GET", "/api/v1/progress", "d180_not_a_real_key", nil)
	if err != nil {
		tr.recordError("Bad key", err.Error())
		return
	}
	resp.Body.Close()
	if resp.StatusCode == http.StatusUnauthorized {
		tr.recordSuccess("Unknown key rejected with 401")
	} else {
		tr.recordError("Bad key", fmt.Sprintf("status %d, want 401", resp.StatusCode))
	}
}

// =============================================================================
// Helper Methods
// =============================================================================

// call sends a request and decodes a successful envelope's data into out.
func (tr *TestRunner) call(method, path, apiKey string, body, out any) error {
	resp, err := tr.do(method, path, apiKey, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read error: %w", err)
	}

	var apiResp APIResponse
	if err := json.Unmarshal(raw, &apiResp); err != nil {
		return fmt.Errorf("parse error: %w", err)
	}
	if !apiResp.Success {
		errMsg := "unknown error"
		if apiResp.Error != nil {
			errMsg = apiResp.Error.Message
		}
		return fmt.Errorf("API error (%d): %s", resp.StatusCode, errMsg)
	}

	if out == nil {
		return nil
	}
	return json.Unmarshal(apiResp.Data, out)
}

func (tr *TestRunner) do(method, path, apiKey string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, tr.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}
	return tr.client.Do(req)
}

func (tr *TestRunner) printSection(name string) {
	fmt.Println()
	fmt.Printf("--- %s ---\n", name)
	fmt.Println()
}

func (tr *TestRunner) recordSuccess(msg string) {
	tr.successCount++
	fmt.Printf("  ✓ %s\n", msg)
}

func (tr *TestRunner) recordError(context, msg string) {
	tr.errorCount++
	errStr := fmt.Sprintf("%s: %s", context, msg)
	tr.errors = append(tr.errors, errStr)
	fmt.Printf("  ✗ %s\n", errStr)
}

func (tr *TestRunner) printSummary() {
	fmt.Println()
	fmt.Println("==============================================")
	fmt.Println("Summary")
	fmt.Println("==============================================")
	fmt.Printf("  Passed: %d\n", tr.successCount)
	fmt.Printf("  Failed: %d\n", tr.errorCount)
	fmt.Println()

	if tr.errorCount > 0 {
		fmt.Println("Failures:")
		for _, err := range tr.errors {
			fmt.Printf("  • %s\n", err)
		}
		fmt.Println()
		fmt.Printf("Smoke test completed with %d failure(s)\n", tr.errorCount)
		return
	}
	fmt.Println("All checks passed! ✓")
}

// =============================================================================
// Main
// =============================================================================

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "Base URL of the API")
	adminKey := flag.String("admin-key", os.Getenv("ADMIN_API_KEY"), "Admin API key used to create a test user")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(*baseURL + "/health")
	if err != nil {
		fmt.Printf("Error: Cannot connect to %s\n", *baseURL)
		fmt.Println("Make sure the API server is running.")
		os.Exit(1)
	}
	resp.Body.Close()

	runner := NewTestRunner(*baseURL, *adminKey, *verbose)
	runner.Run()

	if runner.errorCount > 0 {
		os.Exit(1)
	}
}
