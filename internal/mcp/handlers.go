package mcp

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/degreeplan/internal/advisor"
	"github.com/hpungsan/degreeplan/internal/config"
	"github.com/hpungsan/degreeplan/internal/course"
	"github.com/hpungsan/degreeplan/internal/errors"
	"github.com/hpungsan/degreeplan/internal/ops"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	db      *sql.DB
	cfg     *config.Config
	advisor *advisor.Advisor
}

// NewHandlers creates a new Handlers instance. A nil advisor always falls back.
func NewHandlers(db *sql.DB, cfg *config.Config, adv *advisor.Advisor) *Handlers {
	return &Handlers{db: db, cfg: cfg, advisor: adv}
}

// Request types for each tool

// ImportRequest represents the arguments for catalog_import.
type ImportRequest struct {
	Path string `json:"path"`
	Mode string `json:"mode,omitempty"`
}

// ExportRequest represents the arguments for catalog_export.
type ExportRequest struct {
	Path string `json:"path,omitempty"`
}

// EvaluateRequest represents the arguments for progress_evaluate.
type EvaluateRequest struct {
	Major          string       `json:"major"`
	DegreeType     string       `json:"degree_type,omitempty"`
	StudentCourses []course.Row `json:"student_courses"`
	Save           bool         `json:"save,omitempty"`
}

// SuggestRequest represents the arguments for progress_suggest.
type SuggestRequest struct {
	Major          string       `json:"major"`
	StudentCourses []course.Row `json:"student_courses"`
}

// AdviseRequest represents the arguments for progress_advise.
type AdviseRequest struct {
	Major            string       `json:"major"`
	DegreeType       string       `json:"degree_type,omitempty"`
	StudentCourses   []course.Row `json:"student_courses"`
	Save             bool         `json:"save,omitempty"`
	RequireGenerated bool         `json:"require_generated,omitempty"`
}

// PreviewRequest represents the arguments for progress_preview.
type PreviewRequest struct {
	StudentCourses []course.Row `json:"student_courses"`
	DegreeType     string       `json:"degree_type,omitempty"`
	TopN           int          `json:"top_n,omitempty"`
}

// FetchRequest represents the arguments for evaluation_fetch.
type FetchRequest struct {
	ID string `json:"id"`
}

// ListRequest represents the arguments for evaluation_list.
type ListRequest struct {
	Major  string `json:"major,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
}

// PurgeRequest represents the arguments for evaluation_purge.
type PurgeRequest struct {
	Major         *string `json:"major,omitempty"`
	OlderThanDays *int    `json:"older_than_days,omitempty"`
}

// Handler implementations

// HandleMajorList handles the major_list tool call.
func (h *Handlers) HandleMajorList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if _, err := decode[struct{}](req); err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.ListMajors(ctx, h.db)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleImport handles the catalog_import tool call.
func (h *Handlers) HandleImport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ImportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.ImportCatalog(ctx, h.db, ops.ImportInput{
		Path: input.Path,
		Mode: ops.ImportMode(input.Mode),
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleExport handles the catalog_export tool call.
func (h *Handlers) HandleExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ExportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.ExportCatalog(ctx, h.db, ops.ExportInput{Path: input.Path})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleEvaluate handles the progress_evaluate tool call.
func (h *Handlers) HandleEvaluate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[EvaluateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Evaluate(ctx, h.db, ops.EvaluateInput{
		Major:          input.Major,
		DegreeType:     input.DegreeType,
		StudentCourses: input.StudentCourses,
		Save:           input.Save,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleSuggest handles the progress_suggest tool call.
func (h *Handlers) HandleSuggest(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SuggestRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Suggest(ctx, h.db, ops.SuggestInput{
		Major:          input.Major,
		StudentCourses: input.StudentCourses,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleAdvise handles the progress_advise tool call.
func (h *Handlers) HandleAdvise(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[AdviseRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Advise(ctx, h.db, h.advisor, ops.AdviseInput{
		Major:            input.Major,
		DegreeType:       input.DegreeType,
		StudentCourses:   input.StudentCourses,
		Save:             input.Save,
		RequireGenerated: input.RequireGenerated,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandlePreview handles the progress_preview tool call.
func (h *Handlers) HandlePreview(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[PreviewRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Preview(ctx, h.db, ops.PreviewInput{
		StudentCourses: input.StudentCourses,
		DegreeType:     input.DegreeType,
		TopN:           input.TopN,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleFetch handles the evaluation_fetch tool call.
func (h *Handlers) HandleFetch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[FetchRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.FetchEvaluation(ctx, h.db, ops.FetchInput{ID: input.ID})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleList handles the evaluation_list tool call.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.ListEvaluations(ctx, h.db, ops.ListInput{
		Major:  input.Major,
		Limit:  input.Limit,
		Offset: input.Offset,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandlePurge handles the evaluation_purge tool call.
func (h *Handlers) HandlePurge(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[PurgeRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.PurgeEvaluations(ctx, h.db, ops.PurgeInput{
		Major:         input.Major,
		OlderThanDays: input.OlderThanDays,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Internal error details are never exposed; they may carry file paths or SQL.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if pErr, ok := errors.As(err); ok {
		errorObj := map[string]any{
			"code":    pErr.Code,
			"message": pErr.Message,
			"status":  pErr.Status,
		}
		// Keep wrapper context such as "items[2]: ..." in the message.
		if wrapped := err.Error(); wrapped != pErr.Error() {
			errorObj["message"] = wrapped
		}
		if pErr.Code != errors.ErrInternal && pErr.Details != nil {
			errorObj["details"] = pErr.Details
		}
		if pErr.Code == errors.ErrInternal {
			errorObj["message"] = "an internal error occurred"
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
