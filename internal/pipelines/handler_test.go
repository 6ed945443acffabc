package pipelines_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"vela-dashboard-backend/internal/bootstrap"
	"vela-dashboard-backend/internal/shared/config"
)

func buildTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	app, err := bootstrap.Build(config.Config{Env: "dev"})
	if err != nil {
		t.Fatalf("bootstrap.Build: %v", err)
	}
	return app.Router
}

func doJSON(t *testing.T, router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSeedDemoAndList(t *testing.T) {
	router := buildTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/pipelines/demo", "")
	if w.Code != http.StatusCreated {
		t.Fatalf("seed demo: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var seeded struct {
		Created int `json:"created"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &seeded); err != nil {
		t.Fatalf("decode seed response: %v", err)
	}
	if seeded.Created != 15 {
		t.Fatalf("expected 15 seeded runs, got %d", seeded.Created)
	}

	w = doJSON(t, router, http.MethodGet, "/api/v1/pipelines", "")
	if w.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var listed struct {
		Pipelines []struct {
			ID        string `json:"id"`
			RepoName  string `json:"repoName"`
			Status    string `json:"status"`
			CreatedAt string `json:"createdAt"`
		} `json:"pipelines"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode list response: %v", err)
	}
	if len(listed.Pipelines) != 15 {
		t.Fatalf("expected 15 runs, got %d", len(listed.Pipelines))
	}
	counts := map[string]int{}
	for _, run := range listed.Pipelines {
		if run.ID == "" || run.RepoName == "" || run.CreatedAt == "" {
			t.Fatalf("incomplete run in response: %+v", run)
		}
		counts[run.Status]++
	}
	if counts["failed"] != 2 {
		t.Fatalf("expected 2 failed runs, got %d", counts["failed"])
	}
}

func TestCreatePipeline(t *testing.T) {
	router := buildTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/pipelines",
		`{"repoName":"target/mobile-app","branch":"main","status":"running","currentStep":"Run Tests"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var created struct {
		Pipeline struct {
			ID       string `json:"id"`
			RepoName string `json:"repoName"`
			Status   string `json:"status"`
		} `json:"pipeline"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if created.Pipeline.ID == "" {
		t.Fatal("expected a generated run ID")
	}
	if created.Pipeline.RepoName != "target/mobile-app" || created.Pipeline.Status != "running" {
		t.Fatalf("unexpected created run: %+v", created.Pipeline)
	}

	cases := []struct {
		name string
		body string
	}{
		{"missing repoName", `{"branch":"main","status":"running"}`},
		{"missing branch", `{"repoName":"target/mobile-app","status":"running"}`},
		{"unknown status", `{"repoName":"target/mobile-app","branch":"main","status":"paused"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doJSON(t, router, http.MethodPost, "/api/v1/pipelines", tc.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestAnalyzeFailedRun(t *testing.T) {
	router := buildTestRouter(t)

	if w := doJSON(t, router, http.MethodPost, "/api/v1/pipelines/demo", ""); w.Code != http.StatusCreated {
		t.Fatalf("seed demo: expected 201, got %d", w.Code)
	}

	w := doJSON(t, router, http.MethodGet, "/api/v1/pipelines", "")
	var listed struct {
		Pipelines []struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"pipelines"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode list response: %v", err)
	}

	var failedID, successID string
	for _, run := range listed.Pipelines {
		switch run.Status {
		case "failed":
			failedID = run.ID
		case "success":
			successID = run.ID
		}
	}
	if failedID == "" || successID == "" {
		t.Fatal("demo data should contain failed and success runs")
	}

	body := `{"logs":"npm ERR! EACCES: permission denied, mkdir /app/node_modules","error":"Install Dependencies failed"}`
	w = doJSON(t, router, http.MethodPost, "/api/v1/pipelines/"+failedID+"/analyze", body)
	if w.Code != http.StatusOK {
		t.Fatalf("analyze: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var result struct {
		Analysis string `json:"analysis"`
		Sections struct {
			RootCause string `json:"rootCause"`
		} `json:"sections"`
		VelaDocs   []string `json:"velaDocs"`
		AIProvider string   `json:"aiProvider"`
		Timestamp  string   `json:"timestamp"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode analyze response: %v", err)
	}
	if result.AIProvider != "Basic Analysis" {
		t.Fatalf("expected fallback provider without credentials, got %q", result.AIProvider)
	}
	if result.Analysis == "" || result.Sections.RootCause == "" {
		t.Fatal("expected populated analysis and sections")
	}
	if result.VelaDocs == nil {
		t.Fatal("expected velaDocs to be an array, not null")
	}
	if result.Timestamp == "" {
		t.Fatal("expected a timestamp")
	}

	// Analyzing a run that did not fail is rejected.
	w = doJSON(t, router, http.MethodPost, "/api/v1/pipelines/"+successID+"/analyze", body)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 for non-failed run, got %d: %s", w.Code, w.Body.String())
	}
}

func TestGetPipeline(t *testing.T) {
	router := buildTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/pipelines",
		`{"repoName":"target/analytics-platform","branch":"develop","status":"pending"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var created struct {
		Pipeline struct {
			ID string `json:"id"`
		} `json:"pipeline"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}

	w = doJSON(t, router, http.MethodGet, "/api/v1/pipelines/"+created.Pipeline.ID, "")
	if w.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var fetched struct {
		Pipeline struct {
			ID       string `json:"id"`
			RepoName string `json:"repoName"`
		} `json:"pipeline"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &fetched); err != nil {
		t.Fatalf("decode get response: %v", err)
	}
	if fetched.Pipeline.RepoName != "target/analytics-platform" {
		t.Fatalf("unexpected run: %+v", fetched.Pipeline)
	}

	w = doJSON(t, router, http.MethodGet, "/api/v1/pipelines/no-such-id", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown run, got %d", w.Code)
	}
}

func TestAnalyzeLatestFailure(t *testing.T) {
	router := buildTestRouter(t)

	body := `{"logs":"go: module lookup disabled by GOFLAGS=-mod=vendor","error":"Build Application failed"}`

	// No failed runs yet.
	w := doJSON(t, router, http.MethodPost, "/api/v1/pipelines/failures/latest/analyze", body)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 without failed runs, got %d: %s", w.Code, w.Body.String())
	}

	if w := doJSON(t, router, http.MethodPost, "/api/v1/pipelines/demo", ""); w.Code != http.StatusCreated {
		t.Fatalf("seed demo: expected 201, got %d", w.Code)
	}

	w = doJSON(t, router, http.MethodPost, "/api/v1/pipelines/failures/latest/analyze", body)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var result struct {
		AIProvider string `json:"aiProvider"`
		Sections   struct {
			RootCause string `json:"rootCause"`
		} `json:"sections"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode analyze response: %v", err)
	}
	if result.AIProvider != "Basic Analysis" {
		t.Fatalf("expected fallback provider, got %q", result.AIProvider)
	}
	if result.Sections.RootCause == "" {
		t.Fatal("expected populated rootCause")
	}
}

func TestAnalyzeValidation(t *testing.T) {
	router := buildTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/pipelines/no-such-id/analyze",
		`{"logs":"log text","error":"step failed"}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown run, got %d: %s", w.Code, w.Body.String())
	}

	if w := doJSON(t, router, http.MethodPost, "/api/v1/pipelines/demo", ""); w.Code != http.StatusCreated {
		t.Fatalf("seed demo: expected 201, got %d", w.Code)
	}
	w = doJSON(t, router, http.MethodGet, "/api/v1/pipelines", "")
	var listed struct {
		Pipelines []struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"pipelines"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode list response: %v", err)
	}
	var failedID string
	for _, run := range listed.Pipelines {
		if run.Status == "failed" {
			failedID = run.ID
			break
		}
	}

	cases := []struct {
		name string
		body string
	}{
		{"missing logs", `{"error":"step failed"}`},
		{"missing error", `{"logs":"log text"}`},
		{"malformed body", `{"logs": `},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doJSON(t, router, http.MethodPost, "/api/v1/pipelines/"+failedID+"/analyze", tc.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
			}
			if !strings.Contains(w.Body.String(), "validation_error") {
				t.Fatalf("expected validation_error code, got %s", w.Body.String())
			}
		})
	}
}
