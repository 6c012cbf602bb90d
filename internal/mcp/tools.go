package mcp

import "github.com/mark3labs/mcp-go/mcp"

// courseRowSchema describes one uploaded student course row.
var courseRowSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"courseId": map[string]any{"type": "string", "description": "Full course id, e.g. \"COMP SCI 400\""},
		"subject":  map[string]any{"type": "string", "description": "Subject, used with number when courseId is absent"},
		"number":   map[string]any{"type": "string", "description": "Catalog number"},
		"grade":    map[string]any{"type": "string", "description": "Letter grade; empty, IP, INP, W or UW mean not completed"},
		"credits":  map[string]any{"type": "number", "description": "Credits earned"},
	},
}

func studentCoursesArg() mcp.ToolOption {
	return mcp.WithArray("student_courses",
		mcp.Required(),
		mcp.Description("Student course rows from a degree audit. May be empty."),
		mcp.Items(courseRowSchema),
	)
}

var majorListToolDef = mcp.NewTool("major_list",
	mcp.WithDescription("List imported majors with their degree type and number of requirement groups."),
	mcp.WithReadOnlyHintAnnotation(true),
)

var catalogImportToolDef = mcp.NewTool("catalog_import",
	mcp.WithDescription("Import a normalized major requirements file (.json, .yaml or .yml)."),
	mcp.WithString("path", mcp.Required(), mcp.Description("Path to the catalog file")),
	mcp.WithString("mode",
		mcp.Description("Collision handling: error aborts on any existing major, replace overwrites"),
		mcp.Enum("error", "replace"),
	),
)

var catalogExportToolDef = mcp.NewTool("catalog_export",
	mcp.WithDescription("Write every imported major to a catalog file that catalog_import can read."),
	mcp.WithString("path", mcp.Description("Destination (.json, .yaml or .yml). Default: ~/.degreeplan/exports/catalog-<timestamp>.json")),
)

var progressEvaluateToolDef = mcp.NewTool("progress_evaluate",
	mcp.WithDescription("Evaluate a student's completion of one major. Each course counts toward at most one requirement group."),
	mcp.WithString("major", mcp.Required(), mcp.Description("Major name, matched case- and whitespace-insensitively")),
	mcp.WithString("degree_type", mcp.Description("Degree type to report. Default: the catalog's, then BA")),
	studentCoursesArg(),
	mcp.WithBoolean("save", mcp.Description("Store the result in evaluation history")),
)

var progressSuggestToolDef = mcp.NewTool("progress_suggest",
	mcp.WithDescription("Suggest up to 20 next courses for a major from unmet requirement options."),
	mcp.WithString("major", mcp.Required(), mcp.Description("Major name")),
	studentCoursesArg(),
	mcp.WithReadOnlyHintAnnotation(true),
)

var progressAdviseToolDef = mcp.NewTool("progress_advise",
	mcp.WithDescription("Evaluate a major and write advising text. Falls back to a deterministic summary when no model answers."),
	mcp.WithString("major", mcp.Required(), mcp.Description("Major name")),
	mcp.WithString("degree_type", mcp.Description("Degree type to report")),
	studentCoursesArg(),
	mcp.WithBoolean("save", mcp.Description("Store the evaluation and advice in history")),
	mcp.WithBoolean("require_generated", mcp.Description("Fail with ADVISOR_UNAVAILABLE instead of falling back")),
)

var progressPreviewToolDef = mcp.NewTool("progress_preview",
	mcp.WithDescription("Rank majors by an approximate satisfied-groups estimate. Not comparable with progress_evaluate."),
	studentCoursesArg(),
	mcp.WithString("degree_type", mcp.Description("Only rank majors with this degree type")),
	mcp.WithNumber("top_n", mcp.Description("Number of majors to return (default 5, max 50)"), mcp.Min(1), mcp.Max(50)),
	mcp.WithReadOnlyHintAnnotation(true),
)

var evaluationFetchToolDef = mcp.NewTool("evaluation_fetch",
	mcp.WithDescription("Fetch a saved evaluation by id, including stored advice."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Evaluation id")),
	mcp.WithReadOnlyHintAnnotation(true),
)

var evaluationListToolDef = mcp.NewTool("evaluation_list",
	mcp.WithDescription("List saved evaluations, newest first."),
	mcp.WithString("major", mcp.Description("Only list evaluations for this major")),
	mcp.WithNumber("limit", mcp.Description("Page size (default 20, max 100)")),
	mcp.WithNumber("offset", mcp.Description("Items to skip")),
	mcp.WithReadOnlyHintAnnotation(true),
)

var evaluationPurgeToolDef = mcp.NewTool("evaluation_purge",
	mcp.WithDescription("Permanently delete saved evaluations."),
	mcp.WithString("major", mcp.Description("Only purge evaluations for this major")),
	mcp.WithNumber("older_than_days", mcp.Description("Only purge evaluations created more than N days ago")),
	mcp.WithDestructiveHintAnnotation(true),
)
