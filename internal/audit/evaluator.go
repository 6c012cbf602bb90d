package audit

import (
	"github.com/hpungsan/degreeplan/internal/catalog"
	"github.com/hpungsan/degreeplan/internal/course"
)

// Diagnostic reasons attached to a group's Detail.
const (
	ReasonInvalidRequiredCount   = "invalid_required_count"
	ReasonInvalidRequiredCredits = "invalid_required_credits"
	ReasonManualReview           = "manual_review"
)

// Detail is the rule-specific diagnostic payload of a group result.
// Only the fields relevant to the group's rule are set.
type Detail struct {
	Reason string `json:"reason,omitempty"`

	// choose_n_courses
	PickedOptions []string `json:"pickedOptions,omitempty"`
	RawScore      *float64 `json:"rawScore,omitempty"`
	Required      *int     `json:"required,omitempty"`

	// min_credits
	EarnedCredits   *float64 `json:"earnedCredits,omitempty"`
	RequiredCredits *float64 `json:"requiredCredits,omitempty"`
}

// Outcome is what an evaluator reports for one group.
// Used is sorted and is always a subset of the available courses.
type Outcome struct {
	Ratio  float64
	Used   []string
	Detail Detail
}

// Evaluator scores one requirement group against the unclaimed courses.
// Implementations must not retain or mutate available.
type Evaluator interface {
	Evaluate(group catalog.Group, available course.Available) Outcome
}

var evaluators = map[catalog.RuleType]Evaluator{
	catalog.ChooseNCourses: chooseNEvaluator{},
	catalog.MinCredits:     minCreditsEvaluator{},
	catalog.ManualReview:   manualReviewEvaluator{},
}

// EvaluatorFor returns the evaluator for a rule type. Unknown or empty
// rule types get the manual-review evaluator.
func EvaluatorFor(rt catalog.RuleType) Evaluator {
	if ev, ok := evaluators[rt]; ok {
		return ev
	}
	return evaluators[catalog.ManualReview]
}

func ptr[T any](v T) *T { return &v }
