package mcp

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// decode unmarshals MCP request arguments into a typed struct.
// Unknown top-level argument names are rejected so misspelled options are not
// silently ignored. Nested values such as student course rows stay lenient.
func decode[T any](req mcp.CallToolRequest) (T, error) {
	var result T
	args := req.GetArguments()
	if args == nil {
		args = map[string]any{}
	}
	if err := checkArgNames(args, reflect.TypeOf(result)); err != nil {
		return result, err
	}
	b, err := json.Marshal(args)
	if err != nil {
		return result, fmt.Errorf("marshal args: %w", err)
	}
	if err := json.Unmarshal(b, &result); err != nil {
		return result, fmt.Errorf("unmarshal args: %w", err)
	}
	return result, nil
}

// checkArgNames reports the first argument, in name order, that matches no
// json field of t. Matching is case-insensitive like encoding/json.
func checkArgNames(args map[string]any, t reflect.Type) error {
	names := argNames(t)
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if !names[strings.ToLower(k)] {
			return fmt.Errorf("unmarshal args: unknown argument %q", k)
		}
	}
	return nil
}

// argNames returns the lowercased json names of t's exported fields.
func argNames(t reflect.Type) map[string]bool {
	names := make(map[string]bool)
	if t.Kind() != reflect.Struct {
		return names
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			continue
		}
		if name == "" {
			name = f.Name
		}
		names[strings.ToLower(name)] = true
	}
	return names
}
