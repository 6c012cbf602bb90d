package catalog

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/hpungsan/degreeplan/internal/course"
	"github.com/hpungsan/degreeplan/internal/errors"
)

// Format is a catalog file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks a format by file extension. Anything that is not
// .yaml or .yml is read as JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// LoadFile reads a catalog from disk.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewFileNotFound(path)
		}
		return nil, errors.NewInternal(err)
	}
	defer f.Close()

	return Load(f, FormatFromPath(path))
}

// Load decodes and validates a catalog. The document is an array of majors
// in the normalized requirements layout.
func Load(r io.Reader, format Format) (*Catalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.NewCatalogInvalid([]string{"catalog is empty"})
	}

	var majors []Major
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &majors)
	default:
		err = json.Unmarshal(data, &majors)
	}
	if err != nil {
		return nil, errors.NewCatalogInvalid([]string{fmt.Sprintf("decode %s: %v", format, err)})
	}

	cat := New(majors...)
	if problems := Validate(cat); len(problems) > 0 {
		return nil, errors.NewCatalogInvalid(problems)
	}
	return cat, nil
}

// Validate checks catalog structure and returns one message per problem.
// Non-positive required counts or credits are not problems; those groups
// evaluate to zero with a diagnostic.
func Validate(c *Catalog) []string {
	var problems []string
	seen := make(map[string]int, len(c.Majors))

	for i, m := range c.Majors {
		if err := validate.Struct(m); err != nil {
			var verrs validator.ValidationErrors
			if stderrors.As(err, &verrs) {
				for _, fe := range verrs {
					problems = append(problems, fmt.Sprintf("majors[%d].%s: %s", i, trimRoot(fe.Namespace()), fe.Tag()))
				}
			} else {
				problems = append(problems, fmt.Sprintf("majors[%d]: %v", i, err))
			}
		}

		key := course.Canon(m.Major)
		if key == "" {
			continue
		}
		if prev, dup := seen[key]; dup {
			problems = append(problems, fmt.Sprintf("majors[%d].major: duplicate of majors[%d] (%q)", i, prev, m.Major))
			continue
		}
		seen[key] = i
	}
	return problems
}

// trimRoot drops the leading struct name from a validator namespace.
func trimRoot(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

// Write encodes a catalog as an array of majors in the given format.
func Write(w io.Writer, c *Catalog, format Format) error {
	majors := []Major{}
	if c != nil && c.Majors != nil {
		majors = c.Majors
	}

	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(majors); err != nil {
			return err
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(majors)
	}
}
