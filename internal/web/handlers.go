package web

import (
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/hpungsan/degreeplan/internal/advisor"
	"github.com/hpungsan/degreeplan/internal/config"
	"github.com/hpungsan/degreeplan/internal/course"
	"github.com/hpungsan/degreeplan/internal/errors"
	"github.com/hpungsan/degreeplan/internal/ops"
)

// Handlers contains HTTP route handlers.
type Handlers struct {
	db       *sql.DB
	cfg      *config.Config
	advisor  *advisor.Advisor
	logger   *zap.Logger
	validate *validator.Validate
	renderer *Renderer
}

// ProgressRequest is the body of /api/major-progress and /api/advisor.
type ProgressRequest struct {
	Major            string       `json:"major" validate:"required"`
	DegreeType       string       `json:"degreeType"`
	StudentCourses   []course.Row `json:"studentCourses" validate:"required"`
	Save             bool         `json:"save"`
	RequireGenerated bool         `json:"requireGenerated"`
}

// SuggestionsRequest is the body of /api/suggestions.
type SuggestionsRequest struct {
	Major          string       `json:"major" validate:"required"`
	StudentCourses []course.Row `json:"studentCourses" validate:"required"`
}

// PreviewRequest is the body of /api/preview.
type PreviewRequest struct {
	StudentCourses []course.Row `json:"studentCourses" validate:"required"`
	DegreeType     string       `json:"degreeType"`
	TopN           int          `json:"topN" validate:"gte=0,lte=50"`
}

// PurgeRequest is the body of /api/evaluations/purge.
type PurgeRequest struct {
	Major         *string `json:"major"`
	OlderThanDays *int    `json:"olderThanDays" validate:"omitempty,gte=0"`
}

// HandleHealth handles GET /health.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if err := h.db.PingContext(r.Context()); err != nil {
		renderJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "unavailable"})
		return
	}
	renderJSON(w, http.StatusOK, map[string]any{"status": "ok", "version": h.renderer.version})
}

// HandleMajors handles GET /api/majors: the sorted list of major names.
func (h *Handlers) HandleMajors(w http.ResponseWriter, r *http.Request) {
	result, err := ops.ListMajors(r.Context(), h.db)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	names := make([]string, 0, len(result.Majors))
	for _, m := range result.Majors {
		names = append(names, m.Name)
	}
	renderJSON(w, http.StatusOK, map[string]any{"majors": names})
}

// HandleMajorProgress handles POST /api/major-progress. The body is the
// progress object; a saved evaluation's id is returned in X-Evaluation-Id.
func (h *Handlers) HandleMajorProgress(w http.ResponseWriter, r *http.Request) {
	var req ProgressRequest
	if err := h.decodeBody(w, r, &req); err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	result, err := ops.Evaluate(r.Context(), h.db, ops.EvaluateInput{
		Major:          req.Major,
		DegreeType:     req.DegreeType,
		StudentCourses: req.StudentCourses,
		Save:           req.Save,
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if result.ID != "" {
		w.Header().Set("X-Evaluation-Id", result.ID)
	}
	renderJSON(w, http.StatusOK, result.Progress)
}

// HandleSuggestions handles POST /api/suggestions.
func (h *Handlers) HandleSuggestions(w http.ResponseWriter, r *http.Request) {
	var req SuggestionsRequest
	if err := h.decodeBody(w, r, &req); err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	result, err := ops.Suggest(r.Context(), h.db, ops.SuggestInput{
		Major:          req.Major,
		StudentCourses: req.StudentCourses,
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, result)
}

// HandleAdvisor handles POST /api/advisor.
func (h *Handlers) HandleAdvisor(w http.ResponseWriter, r *http.Request) {
	var req ProgressRequest
	if err := h.decodeBody(w, r, &req); err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	result, err := ops.Advise(r.Context(), h.db, h.advisor, ops.AdviseInput{
		Major:            req.Major,
		DegreeType:       req.DegreeType,
		StudentCourses:   req.StudentCourses,
		Save:             req.Save,
		RequireGenerated: req.RequireGenerated,
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, result)
}

// HandlePreview handles POST /api/preview.
func (h *Handlers) HandlePreview(w http.ResponseWriter, r *http.Request) {
	var req PreviewRequest
	if err := h.decodeBody(w, r, &req); err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	result, err := ops.Preview(r.Context(), h.db, ops.PreviewInput{
		StudentCourses: req.StudentCourses,
		DegreeType:     req.DegreeType,
		TopN:           req.TopN,
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, result)
}

// HandleEvaluationsAPI handles GET /api/evaluations.
func (h *Handlers) HandleEvaluationsAPI(w http.ResponseWriter, r *http.Request) {
	result, err := ops.ListEvaluations(r.Context(), h.db, listInput(r))
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, result)
}

// HandleEvaluationAPI handles GET /api/evaluations/{id}.
func (h *Handlers) HandleEvaluationAPI(w http.ResponseWriter, r *http.Request) {
	result, err := ops.FetchEvaluation(r.Context(), h.db, ops.FetchInput{ID: r.PathValue("id")})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, result)
}

// HandlePurge handles POST /api/evaluations/purge.
func (h *Handlers) HandlePurge(w http.ResponseWriter, r *http.Request) {
	var req PurgeRequest
	if err := h.decodeBody(w, r, &req); err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	result, err := ops.PurgeEvaluations(r.Context(), h.db, ops.PurgeInput{
		Major:         req.Major,
		OlderThanDays: req.OlderThanDays,
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, result)
}

// HandleMajorsPage handles GET /majors.
func (h *Handlers) HandleMajorsPage(w http.ResponseWriter, r *http.Request) {
	result, err := ops.ListMajors(r.Context(), h.db)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	h.renderer.renderPage(w, "majors", MajorsPageData{
		PageData: h.renderer.page("Majors", "majors"),
		Majors:   result.Majors,
	})
}

// HandleEvaluationsPage handles GET /evaluations.
func (h *Handlers) HandleEvaluationsPage(w http.ResponseWriter, r *http.Request) {
	input := listInput(r)
	result, err := ops.ListEvaluations(r.Context(), h.db, input)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	h.renderer.renderPage(w, "evaluations", EvaluationsPageData{
		PageData:   h.renderer.page("Evaluations", "evaluations"),
		Items:      result.Items,
		Pagination: result.Pagination,
		Major:      input.Major,
	})
}

// HandleEvaluationPage handles GET /evaluations/{id}.
func (h *Handlers) HandleEvaluationPage(w http.ResponseWriter, r *http.Request) {
	rec, err := ops.FetchEvaluation(r.Context(), h.db, ops.FetchInput{ID: r.PathValue("id")})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	data := EvaluationPageData{
		PageData:   h.renderer.page(rec.Major, "evaluations"),
		Evaluation: rec,
	}
	if rec.Advice != nil {
		data.AdviceHTML = renderMarkdown(*rec.Advice)
	}
	h.renderer.renderPage(w, "evaluation", data)
}

// decodeBody reads a bounded JSON body into dst and validates it.
func (h *Handlers) decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case stderrors.As(err, &tooLarge):
			return errors.NewInvalidRequest(fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
		case stderrors.Is(err, io.EOF):
			return errors.NewInvalidRequest("request body is required")
		default:
			return errors.NewInvalidRequest(fmt.Sprintf("invalid JSON: %v", err))
		}
	}

	if err := h.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if stderrors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s: %s", jsonFieldName(fe.Field()), fe.Tag()))
			}
			return errors.NewInvalidRequest(strings.Join(fields, "; "))
		}
		return errors.NewInvalidRequest(err.Error())
	}
	return nil
}

// jsonFieldName lowercases the first letter of a Go field name.
func jsonFieldName(field string) string {
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}

func listInput(r *http.Request) ops.ListInput {
	return ops.ListInput{
		Major:  r.URL.Query().Get("major"),
		Limit:  parseIntParam(r, "limit", ops.DefaultListLimit),
		Offset: parseIntParam(r, "offset", 0),
	}
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}
