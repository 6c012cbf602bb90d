package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/degreeplan/internal/audit"
	"github.com/hpungsan/degreeplan/internal/course"
)

// SuggestInput contains parameters for the Suggest operation.
type SuggestInput struct {
	Major          string       // required
	StudentCourses []course.Row // required, may be empty
}

// SuggestOutput contains the result of the Suggest operation.
type SuggestOutput struct {
	Suggestions []string `json:"suggestions"`
}

// Suggest lists up to 20 next-course candidates for a major.
func Suggest(ctx context.Context, database *sql.DB, input SuggestInput) (*SuggestOutput, error) {
	if err := requireCourses(input.StudentCourses); err != nil {
		return nil, err
	}
	cat, err := requireMajor(ctx, database, input.Major)
	if err != nil {
		return nil, err
	}

	suggestions, err := audit.SuggestNextCourses(cat, input.Major, input.StudentCourses)
	if err != nil {
		return nil, err
	}
	return &SuggestOutput{Suggestions: suggestions}, nil
}
