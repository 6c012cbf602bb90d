package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/degreeplan/internal/advisor"
	"github.com/hpungsan/degreeplan/internal/audit"
	"github.com/hpungsan/degreeplan/internal/course"
	"github.com/hpungsan/degreeplan/internal/errors"
)

// AdviseInput contains parameters for the Advise operation.
type AdviseInput struct {
	Major          string       // required
	DegreeType     string       // default: catalog degree type, then BA
	StudentCourses []course.Row // required, may be empty
	Save           bool         // store the evaluation and advice in history
	// RequireGenerated fails with ADVISOR_UNAVAILABLE instead of falling back.
	RequireGenerated bool
}

// AdviseOutput contains the result of the Advise operation.
type AdviseOutput struct {
	ID       string               `json:"id,omitempty"`
	Progress *audit.MajorProgress `json:"progress"`
	Advice   advisor.Advice       `json:"advice"`
}

// Advise evaluates a major, collects suggestions and writes advice text.
// A nil adv always produces the fallback summary.
func Advise(ctx context.Context, database *sql.DB, adv *advisor.Advisor, input AdviseInput) (*AdviseOutput, error) {
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
	suggestions, err := audit.SuggestNextCourses(cat, input.Major, input.StudentCourses)
	if err != nil {
		return nil, err
	}

	if adv == nil {
		adv = advisor.New(nil)
	}
	in := advisor.Input{
		Major:          progress.Major,
		DegreeType:     progress.DegreeType,
		Progress:       progress,
		StudentCourses: input.StudentCourses,
		Suggestions:    suggestions,
	}

	var advice advisor.Advice
	if input.RequireGenerated {
		advice, err = adv.Generate(ctx, in)
		if err != nil {
			return nil, errors.NewAdvisorUnavailable(err)
		}
	} else {
		advice = adv.Advise(ctx, in)
	}

	out := &AdviseOutput{Progress: progress, Advice: advice}
	if input.Save {
		out.ID, err = saveEvaluation(ctx, database, progress, suggestions, &advice.Text, &advice.Source)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
