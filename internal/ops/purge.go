package ops

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hpungsan/degreeplan/internal/course"
	"github.com/hpungsan/degreeplan/internal/db"
	"github.com/hpungsan/degreeplan/internal/errors"
)

// PurgeInput contains parameters for the PurgeEvaluations operation.
type PurgeInput struct {
	Major         *string // optional filter by major
	OlderThanDays *int    // optional, only purge if created_at < (now - N days)
}

// PurgeOutput contains the result of the PurgeEvaluations operation.
type PurgeOutput struct {
	Purged  int    `json:"purged"`
	Message string `json:"message"`
}

// PurgeEvaluations permanently deletes saved evaluations.
func PurgeEvaluations(ctx context.Context, database *sql.DB, input PurgeInput) (*PurgeOutput, error) {
	if input.OlderThanDays != nil && *input.OlderThanDays < 0 {
		return nil, errors.NewInvalidRequest("older_than_days must be non-negative")
	}

	var filter db.EvaluationFilter
	if input.Major != nil {
		filter.MajorNorm = course.Canon(*input.Major)
	}

	// Without a cutoff everything up to now matches.
	before := time.Now().Unix() + 1
	if input.OlderThanDays != nil {
		before = time.Now().Add(-time.Duration(*input.OlderThanDays) * 24 * time.Hour).Unix()
	}

	count, err := db.PurgeEvaluations(ctx, database, filter, before)
	if err != nil {
		return nil, err
	}

	return &PurgeOutput{
		Purged:  count,
		Message: formatPurgeMessage(count, input.Major, input.OlderThanDays),
	}, nil
}

// formatPurgeMessage creates a human-readable message for the purge result.
func formatPurgeMessage(count int, major *string, olderThanDays *int) string {
	if count == 0 {
		return "No evaluations to purge"
	}

	word := "evaluation"
	if count > 1 {
		word = "evaluations"
	}

	msg := fmt.Sprintf("Permanently deleted %d %s", count, word)

	if major != nil {
		msg += fmt.Sprintf(" for major %q", *major)
	}

	if olderThanDays != nil {
		msg += fmt.Sprintf(" (created more than %d days ago)", *olderThanDays)
	}

	return msg
}
