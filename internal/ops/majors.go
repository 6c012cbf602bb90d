package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/degreeplan/internal/db"
)

// MajorSummary is the list view of a stored major.
type MajorSummary struct {
	Name       string `json:"name"`
	DegreeType string `json:"degree_type,omitempty"`
	Groups     int    `json:"groups"`
	ImportedAt int64  `json:"imported_at"`
}

// ListMajorsOutput contains the result of the ListMajors operation.
type ListMajorsOutput struct {
	Majors []MajorSummary `json:"majors"`
}

// ListMajors returns every imported major in name order.
func ListMajors(ctx context.Context, database *sql.DB) (*ListMajorsOutput, error) {
	stored, err := db.ListMajors(ctx, database)
	if err != nil {
		return nil, err
	}

	out := &ListMajorsOutput{Majors: make([]MajorSummary, 0, len(stored))}
	for _, m := range stored {
		out.Majors = append(out.Majors, MajorSummary{
			Name:       m.Major.Major,
			DegreeType: m.Major.DegreeType,
			Groups:     len(m.Major.RequirementGroups),
			ImportedAt: m.ImportedAt,
		})
	}
	return out, nil
}
