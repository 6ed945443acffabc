package configopt

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func newHandlerRouter(svc *Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(svc).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func postConfig(t *testing.T, router *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/config/analyze", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandlerAnalyzeDefaultsType(t *testing.T) {
	client := &fakeClient{response: "## Recommendations"}
	router := newHandlerRouter(&Service{LLM: client})

	payload, _ := json.Marshal(map[string]string{"config": validConfig})
	w := postConfig(t, router, string(payload))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Result string `json:"result"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Result != "## Recommendations" {
		t.Fatalf("unexpected result: %q", resp.Result)
	}
	if len(client.prompts) != 1 || !strings.Contains(client.prompts[0].User, "provide optimization recommendations") {
		t.Fatalf("expected analyze prompt by default, got %+v", client.prompts)
	}
}

func TestHandlerValidation(t *testing.T) {
	router := newHandlerRouter(&Service{LLM: &fakeClient{response: "ok"}})

	cases := []struct {
		name string
		body string
	}{
		{"missing config", `{}`},
		{"malformed body", `{"config": `},
		{"invalid yaml", `{"config":"steps:\n  - name: a\n   image: b"}`},
		{"unknown type", `{"config":"version: \"1\"","analysisType":"summarize"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := postConfig(t, router, tc.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestHandlerWithoutProvider(t *testing.T) {
	router := newHandlerRouter(&Service{})

	payload, _ := json.Marshal(map[string]string{"config": validConfig})
	w := postConfig(t, router, string(payload))
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "provider_unconfigured") {
		t.Fatalf("expected provider_unconfigured code, got %s", w.Body.String())
	}
}
