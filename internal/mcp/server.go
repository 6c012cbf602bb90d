package mcp

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/hpungsan/degreeplan/internal/advisor"
	"github.com/hpungsan/degreeplan/internal/config"
)

// KnownTypes lists all valid type names.
var KnownTypes = []string{"major", "catalog", "progress", "evaluation"}

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"major_list": {
		def:     majorListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleMajorList },
	},
	"catalog_import": {
		def:     catalogImportToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleImport },
	},
	"catalog_export": {
		def:     catalogExportToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleExport },
	},
	"progress_evaluate": {
		def:     progressEvaluateToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleEvaluate },
	},
	"progress_suggest": {
		def:     progressSuggestToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSuggest },
	},
	"progress_advise": {
		def:     progressAdviseToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleAdvise },
	},
	"progress_preview": {
		def:     progressPreviewToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandlePreview },
	},
	"evaluation_fetch": {
		def:     evaluationFetchToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleFetch },
	},
	"evaluation_list": {
		def:     evaluationListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleList },
	},
	"evaluation_purge": {
		def:     evaluationPurgeToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandlePurge },
	},
}

// AllToolNames returns a list of all valid tool names.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	return names
}

// ValidateDisabledTools returns a list of unknown tool names from the given list.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// ValidateDisabledTypes returns a list of unknown type names from the given list.
func ValidateDisabledTypes(names []string) []string {
	known := make(map[string]bool, len(KnownTypes))
	for _, t := range KnownTypes {
		known[t] = true
	}

	unknown := make([]string, 0)
	for _, name := range names {
		if !known[name] {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// GetTypeForTool extracts the type name from a tool name.
// Tool names follow the pattern "type_action" (e.g., "progress_evaluate" → "progress").
func GetTypeForTool(toolName string) string {
	if idx := strings.Index(toolName, "_"); idx > 0 {
		return toolName[:idx]
	}
	return ""
}

// ExpandTypesToTools returns all tool names belonging to the given types.
func ExpandTypesToTools(types []string) []string {
	if len(types) == 0 {
		return nil
	}

	typeSet := make(map[string]bool, len(types))
	for _, t := range types {
		typeSet[t] = true
	}

	tools := make([]string, 0)
	for name := range toolRegistry {
		if typeSet[GetTypeForTool(name)] {
			tools = append(tools, name)
		}
	}
	return tools
}

// NewServer creates a new MCP server with degreeplan tools registered.
// Tools listed in cfg.DisabledTools or belonging to cfg.DisabledTypes
// are excluded from registration.
func NewServer(db *sql.DB, cfg *config.Config, adv *advisor.Advisor, logger *zap.Logger, version string) *server.MCPServer {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := server.NewMCPServer(
		"degreeplan",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(db, cfg, adv)

	disabled := make(map[string]bool)
	for _, tool := range ExpandTypesToTools(cfg.DisabledTypes) {
		disabled[tool] = true
	}
	for _, name := range cfg.DisabledTools {
		disabled[name] = true
	}

	for name, entry := range toolRegistry {
		if disabled[name] {
			continue
		}
		s.AddTool(entry.def, logged(logger, name, entry.handler(h)))
	}

	return s
}

// logged records each tool call at debug level, and failures at warn.
func logged(logger *zap.Logger, name string, next server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		result, err := next(ctx, req)

		fields := []zap.Field{zap.String("tool", name), zap.Duration("elapsed", time.Since(start))}
		switch {
		case err != nil:
			logger.Warn("tool call failed", append(fields, zap.Error(err))...)
		case result != nil && result.IsError:
			logger.Warn("tool returned error", fields...)
		default:
			logger.Debug("tool call", fields...)
		}
		return result, err
	}
}

// Run starts the MCP server using stdio transport.
func Run(db *sql.DB, cfg *config.Config, adv *advisor.Advisor, logger *zap.Logger, version string) error {
	s := NewServer(db, cfg, adv, logger, version)
	return server.ServeStdio(s)
}
