package audit

import (
	"github.com/hpungsan/degreeplan/internal/catalog"
	"github.com/hpungsan/degreeplan/internal/course"
)

// manualReviewEvaluator handles rules that need a human. It never claims
// courses and always scores 0; see PreviewMajor for the lenient reading.
type manualReviewEvaluator struct{}

func (manualReviewEvaluator) Evaluate(catalog.Group, course.Available) Outcome {
	return Outcome{Used: []string{}, Detail: Detail{Reason: ReasonManualReview}}
}
