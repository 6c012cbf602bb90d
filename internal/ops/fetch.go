package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/degreeplan/internal/audit"
	"github.com/hpungsan/degreeplan/internal/db"
	"github.com/hpungsan/degreeplan/internal/errors"
)

// FetchInput contains parameters for the FetchEvaluation operation.
type FetchInput struct {
	ID string // required
}

// EvaluationRecord is the full view of a saved evaluation.
type EvaluationRecord struct {
	ID           string               `json:"id"`
	Major        string               `json:"major"`
	DegreeType   string               `json:"degree_type"`
	Percent      float64              `json:"percent"`
	Progress     *audit.MajorProgress `json:"progress"`
	Suggestions  []string             `json:"suggestions,omitempty"`
	Advice       *string              `json:"advice,omitempty"`
	AdviceSource *string              `json:"advice_source,omitempty"`
	CreatedAt    int64                `json:"created_at"`
}

// FetchEvaluation retrieves a saved evaluation by ID.
func FetchEvaluation(ctx context.Context, database *sql.DB, input FetchInput) (*EvaluationRecord, error) {
	if input.ID == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}

	e, err := db.GetEvaluation(ctx, database, input.ID)
	if err != nil {
		return nil, err
	}

	return &EvaluationRecord{
		ID:           e.ID,
		Major:        e.Major,
		DegreeType:   e.DegreeType,
		Percent:      e.Percent,
		Progress:     e.Progress,
		Suggestions:  e.Suggestions,
		Advice:       e.AdviceText,
		AdviceSource: e.AdviceSource,
		CreatedAt:    e.CreatedAt,
	}, nil
}
