package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/degreeplan/internal/audit"
	"github.com/hpungsan/degreeplan/internal/course"
)

// EvaluateInput contains parameters for the Evaluate operation.
type EvaluateInput struct {
	Major          string       // required
	DegreeType     string       // default: catalog degree type, then BA
	StudentCourses []course.Row // required, may be empty
	Save           bool         // store the result in history
}

// EvaluateOutput contains the result of the Evaluate operation.
type EvaluateOutput struct {
	ID       string               `json:"id,omitempty"`
	Progress *audit.MajorProgress `json:"progress"`
}

// Evaluate scores a student's courses against one major.
func Evaluate(ctx context.Context, database *sql.DB, input EvaluateInput) (*EvaluateOutput, error) {
	if err := requireCourses(input.StudentCourses); err != nil {
		return nil, err
	}
	cat, err := requireMajor(ctx, database, input.Major)
	if err != nil {
		return nil, err
	}

	progress, err := audit.EvaluateMajorProgress(cat, input.Major, input.DegreeType, input.StudentCourses)
	if err != nil {
		return nil, err
	}

	out := &EvaluateOutput{Progress: progress}
	if input.Save {
		out.ID, err = saveEvaluation(ctx, database, progress, nil, nil, nil)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
