package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/degreeplan/internal/course"
	"github.com/hpungsan/degreeplan/internal/db"
)

// ListInput contains parameters for the ListEvaluations operation.
type ListInput struct {
	Major  string // optional filter, canonicalized
	Limit  int    // default: 20, max: 100
	Offset int    // default: 0
}

// EvaluationItem is the list view of a saved evaluation.
type EvaluationItem struct {
	ID           string  `json:"id"`
	Major        string  `json:"major"`
	DegreeType   string  `json:"degree_type"`
	Percent      float64 `json:"percent"`
	AdviceSource *string `json:"advice_source,omitempty"`
	CreatedAt    int64   `json:"created_at"`
}

// ListOutput contains the result of the ListEvaluations operation.
type ListOutput struct {
	Items      []EvaluationItem `json:"items"`
	Pagination Pagination       `json:"pagination"`
	Sort       string           `json:"sort"`
}

// ListEvaluations retrieves saved evaluation summaries with pagination.
func ListEvaluations(ctx context.Context, database *sql.DB, input ListInput) (*ListOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	offset := max(input.Offset, 0)

	filter := db.EvaluationFilter{MajorNorm: course.Canon(input.Major)}
	summaries, total, err := db.ListEvaluations(ctx, database, filter, limit, offset)
	if err != nil {
		return nil, err
	}

	items := make([]EvaluationItem, 0, len(summaries))
	for _, s := range summaries {
		items = append(items, EvaluationItem{
			ID:           s.ID,
			Major:        s.Major,
			DegreeType:   s.DegreeType,
			Percent:      s.Percent,
			AdviceSource: s.AdviceSource,
			CreatedAt:    s.CreatedAt,
		})
	}

	return &ListOutput{
		Items: items,
		Pagination: Pagination{
			Limit:   limit,
			Offset:  offset,
			HasMore: offset+len(items) < total,
			Total:   total,
		},
		Sort: "created_at_desc",
	}, nil
}
