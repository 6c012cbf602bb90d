package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/hpungsan/degreeplan/internal/audit"
	"github.com/hpungsan/degreeplan/internal/config"
	"github.com/hpungsan/degreeplan/internal/db"
	"github.com/hpungsan/degreeplan/internal/ops"
)

const testCatalogJSON = `[
  {
    "major": "Computer Sciences",
    "degreeType": "BS",
    "requirementGroups": [
      {"groupId": "1", "ruleType": "choose_n_courses", "requiredCount": 2,
       "courses": ["MATH 221", "MATH 222", "MATH 234"]},
      {"groupId": "2", "ruleType": "min_credits", "requiredCredits": 6,
       "courses": ["COMP SCI 400", "COMP SCI 407", "COMP SCI 536"]},
      {"groupId": "3", "ruleType": "manual_review", "courses": ["COMP SCI 699"]}
    ]
  },
  {
    "major": "History",
    "degreeType": "BA",
    "requirementGroups": [
      {"groupId": "1", "ruleType": "choose_n_courses", "requiredCount": 1, "courses": ["HIST 101"]}
    ]
  }
]`

const studentCoursesJSON = `[
  {"subject": "MATH", "number": "221", "grade": "A", "credits": 4},
  {"subject": "MATH", "number": "222", "grade": "B", "credits": 4},
  {"subject": "comp  sci", "number": "400", "grade": "AB", "credits": 3},
  {"courseId": "COMP SCI 536", "grade": "", "credits": 3}
]`

func newTestServer(t *testing.T) *http.Server {
	t.Helper()
	database, err := db.Init(t.TempDir())
	if err != nil {
		t.Fatalf("db.Init: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	path := filepath.Join(t.TempDir(), "catalog.json")
	if err := os.WriteFile(path, []byte(testCatalogJSON), 0600); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	if _, err := ops.ImportCatalog(context.Background(), database, ops.ImportInput{Path: path}); err != nil {
		t.Fatalf("ImportCatalog: %v", err)
	}

	cfg := config.DefaultConfig()
	cfg.Web.Port = 0

	srv, err := NewServer(database, cfg, nil, zaptest.NewLogger(t), "test")
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return srv
}

func do(t *testing.T, srv *http.Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	srv.Handler.ServeHTTP(w, req)
	return w
}

func decodeJSON[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return v
}

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Status  int    `json:"status"`
	} `json:"error"`
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	w := do(t, srv, "GET", "/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	got := decodeJSON[map[string]string](t, w)
	if got["status"] != "ok" || got["version"] != "test" {
		t.Errorf("body = %v", got)
	}
}

func TestRootRedirects(t *testing.T) {
	srv := newTestServer(t)
	w := do(t, srv, "GET", "/", "")
	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/evaluations" {
		t.Errorf("Location = %q", loc)
	}
}

func TestMajors_ReturnsSortedNames(t *testing.T) {
	srv := newTestServer(t)
	w := do(t, srv, "GET", "/api/majors", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	got := decodeJSON[map[string][]string](t, w)
	want := []string{"Computer Sciences", "History"}
	if strings.Join(got["majors"], "|") != strings.Join(want, "|") {
		t.Errorf("majors = %v, want %v", got["majors"], want)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS header on API route")
	}
}

func TestMajorProgress(t *testing.T) {
	srv := newTestServer(t)
	body := `{"major": "computer  sciences", "studentCourses": ` + studentCoursesJSON + `}`
	w := do(t, srv, "POST", "/api/major-progress", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	got := decodeJSON[audit.MajorProgress](t, w)
	if got.Major != "Computer Sciences" {
		t.Errorf("Major = %q", got.Major)
	}
	if got.DegreeType != "BS" {
		t.Errorf("DegreeType = %q, want BS", got.DegreeType)
	}
	if got.MajorCompletionPercent != 50 {
		t.Errorf("MajorCompletionPercent = %v, want 50", got.MajorCompletionPercent)
	}
	if w.Header().Get("X-Evaluation-Id") != "" {
		t.Error("unsaved evaluation should not set X-Evaluation-Id")
	}
}

func TestMajorProgress_SaveSetsHeader(t *testing.T) {
	srv := newTestServer(t)
	body := `{"major": "History", "studentCourses": [], "save": true}`
	w := do(t, srv, "POST", "/api/major-progress", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	id := w.Header().Get("X-Evaluation-Id")
	if id == "" {
		t.Fatal("expected X-Evaluation-Id")
	}

	w = do(t, srv, "GET", "/api/evaluations/"+id, "")
	if w.Code != http.StatusOK {
		t.Fatalf("fetch status = %d: %s", w.Code, w.Body.String())
	}
	rec := decodeJSON[ops.EvaluationRecord](t, w)
	if rec.Major != "History" || rec.Percent != 0 {
		t.Errorf("record = %+v", rec)
	}
}

func TestMajorProgress_Errors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"empty body", "", http.StatusBadRequest, "INVALID_REQUEST"},
		{"malformed", `{"major":`, http.StatusBadRequest, "INVALID_REQUEST"},
		{"missing major", `{"studentCourses": []}`, http.StatusBadRequest, "INVALID_REQUEST"},
		{"missing courses", `{"major": "History"}`, http.StatusBadRequest, "INVALID_REQUEST"},
		{"unknown major", `{"major": "Astrology", "studentCourses": []}`, http.StatusNotFound, "MAJOR_NOT_FOUND"},
	}
	srv := newTestServer(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, srv, "POST", "/api/major-progress", tt.body)
			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d: %s", w.Code, tt.status, w.Body.String())
			}
			got := decodeJSON[errorBody](t, w)
			if got.Error.Code != tt.code {
				t.Errorf("code = %q, want %q", got.Error.Code, tt.code)
			}
		})
	}
}

func TestMajorProgress_BodyTooLarge(t *testing.T) {
	srv := newTestServer(t)
	body := `{"major": "` + strings.Repeat("x", maxBodyBytes) + `", "studentCourses": []}`
	w := do(t, srv, "POST", "/api/major-progress", body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	got := decodeJSON[errorBody](t, w)
	if !strings.Contains(got.Error.Message, "exceeds") {
		t.Errorf("message = %q", got.Error.Message)
	}
}

func TestSuggestions(t *testing.T) {
	srv := newTestServer(t)
	body := `{"major": "Computer Sciences", "studentCourses": ` + studentCoursesJSON + `}`
	w := do(t, srv, "POST", "/api/suggestions", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	got := decodeJSON[ops.SuggestOutput](t, w)
	want := []string{"MATH 234", "COMP SCI 407", "COMP SCI 536", "COMP SCI 699"}
	if strings.Join(got.Suggestions, "|") != strings.Join(want, "|") {
		t.Errorf("suggestions = %v, want %v", got.Suggestions, want)
	}
}

func TestAdvisor_FallsBackWithoutGenerator(t *testing.T) {
	srv := newTestServer(t)
	body := `{"major": "Computer Sciences", "studentCourses": ` + studentCoursesJSON + `}`
	w := do(t, srv, "POST", "/api/advisor", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	got := decodeJSON[ops.AdviseOutput](t, w)
	if got.Advice.Source != "fallback" {
		t.Errorf("source = %q, want fallback", got.Advice.Source)
	}
	if got.Advice.Text == "" {
		t.Error("expected fallback text")
	}
}

func TestAdvisor_RequireGeneratedFails(t *testing.T) {
	srv := newTestServer(t)
	body := `{"major": "History", "studentCourses": [], "requireGenerated": true}`
	w := do(t, srv, "POST", "/api/advisor", body)
	got := decodeJSON[errorBody](t, w)
	if got.Error.Code != "ADVISOR_UNAVAILABLE" {
		t.Errorf("code = %q, want ADVISOR_UNAVAILABLE (status %d)", got.Error.Code, w.Code)
	}
}

func TestPreview(t *testing.T) {
	srv := newTestServer(t)
	body := `{"studentCourses": ` + studentCoursesJSON + `, "topN": 1}`
	w := do(t, srv, "POST", "/api/preview", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	got := decodeJSON[ops.PreviewOutput](t, w)
	if !got.Approximate {
		t.Error("preview should be marked approximate")
	}
	if len(got.Results) != 1 || got.Results[0].Major != "Computer Sciences" {
		t.Errorf("results = %+v", got.Results)
	}
}

func TestPreview_TopNOutOfRange(t *testing.T) {
	srv := newTestServer(t)
	w := do(t, srv, "POST", "/api/preview", `{"studentCourses": [], "topN": 51}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestEvaluationsAPI_ListAndPurge(t *testing.T) {
	srv := newTestServer(t)
	for _, major := range []string{"History", "History", "Computer Sciences"} {
		w := do(t, srv, "POST", "/api/major-progress", `{"major": "`+major+`", "studentCourses": [], "save": true}`)
		if w.Code != http.StatusOK {
			t.Fatalf("save %s: %d", major, w.Code)
		}
	}

	w := do(t, srv, "GET", "/api/evaluations?major=history&limit=1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	list := decodeJSON[ops.ListOutput](t, w)
	if len(list.Items) != 1 || list.Pagination.Total != 2 || !list.Pagination.HasMore {
		t.Errorf("list = %+v", list)
	}

	w = do(t, srv, "POST", "/api/evaluations/purge", `{"major": "History"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("purge status = %d: %s", w.Code, w.Body.String())
	}
	purged := decodeJSON[ops.PurgeOutput](t, w)
	if purged.Purged != 2 {
		t.Errorf("purged = %d, want 2", purged.Purged)
	}

	w = do(t, srv, "GET", "/api/evaluations", "")
	list = decodeJSON[ops.ListOutput](t, w)
	if list.Pagination.Total != 1 {
		t.Errorf("remaining = %d, want 1", list.Pagination.Total)
	}
}

func TestPurge_NegativeDays(t *testing.T) {
	srv := newTestServer(t)
	w := do(t, srv, "POST", "/api/evaluations/purge", `{"olderThanDays": -1}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestEvaluationAPI_NotFound(t *testing.T) {
	srv := newTestServer(t)
	w := do(t, srv, "GET", "/api/evaluations/01HZZZZZZZZZZZZZZZZZZZZZZZ", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	got := decodeJSON[errorBody](t, w)
	if got.Error.Code != "NOT_FOUND" {
		t.Errorf("code = %q", got.Error.Code)
	}
}

func TestOptionsPreflight(t *testing.T) {
	srv := newTestServer(t)
	w := do(t, srv, "OPTIONS", "/api/major-progress", "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", w.Code)
	}
}

func TestPages(t *testing.T) {
	srv := newTestServer(t)
	w := do(t, srv, "POST", "/api/advisor", `{"major": "Computer Sciences", "studentCourses": `+studentCoursesJSON+`, "save": true}`)
	if w.Code != http.StatusOK {
		t.Fatalf("advise status = %d: %s", w.Code, w.Body.String())
	}
	saved := decodeJSON[ops.AdviseOutput](t, w)

	tests := []struct {
		name   string
		target string
		want   []string
	}{
		{"majors", "/majors", []string{"Computer Sciences", "History", "BS"}},
		{"evaluations", "/evaluations", []string{"Computer Sciences", "50%", "fallback"}},
		{"evaluation", "/evaluations/" + saved.ID, []string{"Computer Sciences", "MATH 221", "COMP SCI 407", "Needs manual review"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, srv, "GET", tt.target, "")
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d: %s", w.Code, w.Body.String())
			}
			if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
				t.Errorf("Content-Type = %q", ct)
			}
			if w.Header().Get("X-Frame-Options") != "DENY" {
				t.Error("missing security headers")
			}
			body := w.Body.String()
			for _, s := range tt.want {
				if !strings.Contains(body, s) {
					t.Errorf("page missing %q", s)
				}
			}
		})
	}
}

func TestEvaluationPage_NotFoundRendersHTML(t *testing.T) {
	srv := newTestServer(t)
	w := do(t, srv, "GET", "/evaluations/missing", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q, want html", ct)
	}
}

func TestStatic(t *testing.T) {
	srv := newTestServer(t)
	w := do(t, srv, "GET", "/static/style.css", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestFormatPercent(t *testing.T) {
	tests := map[float64]string{0: "0%", 50: "50%", 100: "100%", 33.33: "33.33%", 12.5: "12.5%"}
	for in, want := range tests {
		if got := formatPercent(in); got != want {
			t.Errorf("formatPercent(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestRenderMarkdown_DropsRawHTML(t *testing.T) {
	got := string(renderMarkdown("**Next:** take MATH 234\n\n<script>alert(1)</script>"))
	if !strings.Contains(got, "<strong>Next:</strong>") {
		t.Errorf("markdown not rendered: %s", got)
	}
	if strings.Contains(got, "<script>") {
		t.Errorf("raw HTML passed through: %s", got)
	}
}

func TestRun_ShutsDownOnCancel(t *testing.T) {
	srv := newTestServer(t)
	srv.Addr = "127.0.0.1:0"
	ignore := goleak.IgnoreCurrent()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Run(ctx, srv, zaptest.NewLogger(t)) }()
	cancel()

	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}
	goleak.VerifyNone(t, ignore)
}
