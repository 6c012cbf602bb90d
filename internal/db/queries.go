package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/hpungsan/degreeplan/internal/catalog"
	"github.com/hpungsan/degreeplan/internal/errors"
)

// ErrUniqueConstraint is returned when an insert violates a UNIQUE constraint.
var ErrUniqueConstraint = &errors.PlannerError{
	Code:    "UNIQUE_CONSTRAINT",
	Status:  409,
	Message: "unique constraint violation",
}

// StoredMajor is a catalog major as persisted.
type StoredMajor struct {
	ID         string
	NameNorm   string
	Major      catalog.Major
	ImportedAt int64
}

// InsertMajor stores a new major. Returns ErrUniqueConstraint if a major with
// the same normalized name exists.
func InsertMajor(ctx context.Context, db *sql.DB, m *StoredMajor) error {
	groupsJSON, err := json.Marshal(groupsOf(m.Major))
	if err != nil {
		return errors.NewInternal(err)
	}

	query := `
		INSERT INTO majors (id, name, name_norm, degree_type, groups_json, imported_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err = db.ExecContext(ctx, query,
		m.ID, m.Major.Major, m.NameNorm, toNullString(m.Major.DegreeType),
		string(groupsJSON), m.ImportedAt,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrUniqueConstraint
		}
		return errors.NewInternal(err)
	}
	return nil
}

// UpsertMajor inserts a major or replaces the one with the same normalized
// name. The existing row keeps its id.
func UpsertMajor(ctx context.Context, db *sql.DB, m *StoredMajor) error {
	groupsJSON, err := json.Marshal(groupsOf(m.Major))
	if err != nil {
		return errors.NewInternal(err)
	}

	query := `
		INSERT INTO majors (id, name, name_norm, degree_type, groups_json, imported_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(name_norm) DO UPDATE SET
			name = excluded.name,
			degree_type = excluded.degree_type,
			groups_json = excluded.groups_json,
			imported_at = excluded.imported_at
	`

	_, err = db.ExecContext(ctx, query,
		m.ID, m.Major.Major, m.NameNorm, toNullString(m.Major.DegreeType),
		string(groupsJSON), m.ImportedAt,
	)
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// ListMajors returns every stored major ordered by normalized name.
// Requirement groups keep their stored order.
func ListMajors(ctx context.Context, db *sql.DB) ([]StoredMajor, error) {
	query := `
		SELECT id, name, name_norm, degree_type, groups_json, imported_at
		FROM majors
		ORDER BY name_norm ASC
	`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var majors []StoredMajor
	for rows.Next() {
		var (
			m          StoredMajor
			degreeType sql.NullString
			groupsJSON string
		)
		if err := rows.Scan(&m.ID, &m.Major.Major, &m.NameNorm, &degreeType, &groupsJSON, &m.ImportedAt); err != nil {
			return nil, errors.NewInternal(err)
		}
		m.Major.DegreeType = degreeType.String
		if err := json.Unmarshal([]byte(groupsJSON), &m.Major.RequirementGroups); err != nil {
			return nil, errors.NewInternal(err)
		}
		majors = append(majors, m)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return majors, nil
}

// LoadCatalog materializes every stored major into a catalog.
func LoadCatalog(ctx context.Context, db *sql.DB) (*catalog.Catalog, error) {
	stored, err := ListMajors(ctx, db)
	if err != nil {
		return nil, err
	}
	majors := make([]catalog.Major, 0, len(stored))
	for _, m := range stored {
		majors = append(majors, m.Major)
	}
	return catalog.New(majors...), nil
}

func groupsOf(m catalog.Major) []catalog.Group {
	if m.RequirementGroups == nil {
		return []catalog.Group{}
	}
	return m.RequirementGroups
}

// isUniqueConstraintError checks if the error is a SQLite UNIQUE constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	// SQLite returns "UNIQUE constraint failed: ..." for unique violations
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// toNullString maps "" to NULL.
func toNullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// fromNullString converts a sql.NullString to *string.
func fromNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}
