package ops

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/hpungsan/degreeplan/internal/catalog"
	"github.com/hpungsan/degreeplan/internal/course"
	"github.com/hpungsan/degreeplan/internal/db"
	"github.com/hpungsan/degreeplan/internal/errors"
)

// ImportMode controls collision behavior during import.
type ImportMode string

const (
	ImportModeError   ImportMode = "error"   // fail on collision (atomic)
	ImportModeReplace ImportMode = "replace" // overwrite on collision
)

// ImportInput contains parameters for the ImportCatalog operation.
type ImportInput struct {
	Path string     // required, .json or .yaml/.yml
	Mode ImportMode // default: error
}

// ImportOutput contains the result of the ImportCatalog operation.
type ImportOutput struct {
	Imported int           `json:"imported"`
	Replaced int           `json:"replaced"`
	Skipped  int           `json:"skipped"`
	Errors   []ImportError `json:"errors"`
}

// ImportError represents a major that could not be imported.
type ImportError struct {
	Index   int    `json:"index"`
	Major   string `json:"major"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ImportCatalog loads a normalized requirements file into the database.
// In error mode any name collision aborts the whole import; in replace mode
// colliding majors are overwritten in place.
func ImportCatalog(ctx context.Context, database *sql.DB, input ImportInput) (*ImportOutput, error) {
	if input.Mode == "" {
		input.Mode = ImportModeError
	}
	if input.Mode != ImportModeError && input.Mode != ImportModeReplace {
		return nil, errors.NewInvalidRequest("mode must be one of: error, replace")
	}

	if err := ValidatePath(input.Path, PathCheckRead); err != nil {
		return nil, err
	}

	file, err := openCatalogFile(input.Path, os.O_RDONLY, 0)
	if err != nil {
		if _, ok := errors.As(err); ok {
			return nil, err
		}
		return nil, errors.NewInternal(fmt.Errorf("failed to open catalog file: %w", err))
	}
	defer file.Close()

	cat, err := catalog.Load(file, catalog.FormatFromPath(input.Path))
	if err != nil {
		return nil, err
	}

	existing, err := db.ListMajors(ctx, database)
	if err != nil {
		return nil, err
	}
	known := make(map[string]bool, len(existing))
	for _, m := range existing {
		known[m.NameNorm] = true
	}

	output := &ImportOutput{Errors: []ImportError{}}

	// mode:error is all-or-nothing: report every collision and write nothing.
	if input.Mode == ImportModeError {
		for i, m := range cat.Majors {
			if known[course.Canon(m.Major)] {
				output.Errors = append(output.Errors, ImportError{
					Index:   i,
					Major:   m.Major,
					Code:    string(errors.ErrNameAlreadyExists),
					Message: fmt.Sprintf("major %q already exists", m.Major),
				})
			}
		}
		if len(output.Errors) > 0 {
			output.Skipped = len(cat.Majors)
			return output, nil
		}
	}

	now := time.Now().Unix()
	for i, m := range cat.Majors {
		norm := course.Canon(m.Major)
		stored := &db.StoredMajor{
			ID:         newID(),
			NameNorm:   norm,
			Major:      m,
			ImportedAt: now,
		}

		if input.Mode == ImportModeReplace {
			err = db.UpsertMajor(ctx, database, stored)
		} else {
			err = db.InsertMajor(ctx, database, stored)
		}
		if err != nil {
			pErr, _ := errors.As(err)
			code := string(errors.ErrInternal)
			if pErr != nil {
				code = string(pErr.Code)
			}
			output.Errors = append(output.Errors, ImportError{Index: i, Major: m.Major, Code: code, Message: err.Error()})
			output.Skipped++
			continue
		}

		if known[norm] {
			output.Replaced++
		} else {
			output.Imported++
		}
	}

	return output, nil
}
