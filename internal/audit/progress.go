// Package audit scores a student's completed courses against a major's
// requirement groups.
//
// Every function here is pure: inputs are fully materialized values and each
// call owns its own course.Pool, so concurrent calls need no coordination.
package audit

import (
	"math"

	"github.com/hpungsan/degreeplan/internal/catalog"
	"github.com/hpungsan/degreeplan/internal/course"
	"github.com/hpungsan/degreeplan/internal/errors"
)

// GroupResult is the scored outcome of one requirement group.
type GroupResult struct {
	GroupID         string           `json:"groupId"`
	RuleType        catalog.RuleType `json:"ruleType"`
	CompletionRatio float64          `json:"completionRatio"`
	UsedCourses     []string         `json:"usedCourses"`
	Detail          Detail           `json:"detail"`
}

// MajorProgress is the result of evaluating one major.
type MajorProgress struct {
	Major                  string        `json:"major"`
	DegreeType             string        `json:"degreeType"`
	MajorCompletionPercent float64       `json:"majorCompletionPercent"`
	EvaluatedGroups        int           `json:"evaluatedGroups"`
	GroupResults           []GroupResult `json:"groupResults"`
	// ManualReviewGroups lists groups that need a human to check.
	ManualReviewGroups []string `json:"manualReviewGroups,omitempty"`
}

// EvaluateMajorProgress evaluates a major's groups in catalog order. Courses
// used by a group are removed from the pool before the next group runs, so a
// course counts toward at most one group.
func EvaluateMajorProgress(cat *catalog.Catalog, major, degreeType string, rows []course.Row) (*MajorProgress, error) {
	m, ok := cat.Find(major)
	if !ok {
		return nil, errors.NewMajorNotFound(major)
	}
	return evaluateMajor(m, degreeType, rows), nil
}

func evaluateMajor(m *catalog.Major, degreeType string, rows []course.Row) *MajorProgress {
	pool := course.NewPool(course.CompletedRecords(rows))

	progress := &MajorProgress{
		Major:        m.Major,
		DegreeType:   catalog.ResolveDegreeType(degreeType, m),
		GroupResults: make([]GroupResult, 0, len(m.RequirementGroups)),
	}

	var sum float64
	for _, g := range m.RequirementGroups {
		out := EvaluatorFor(g.RuleType).Evaluate(g, pool)
		pool.Remove(out.Used...)

		sum += out.Ratio
		progress.GroupResults = append(progress.GroupResults, GroupResult{
			GroupID:         g.GroupID,
			RuleType:        ruleTypeOf(g),
			CompletionRatio: Round(out.Ratio, 4),
			UsedCourses:     out.Used,
			Detail:          out.Detail,
		})
		if out.Detail.Reason == ReasonManualReview {
			progress.ManualReviewGroups = append(progress.ManualReviewGroups, g.GroupID)
		}
	}

	progress.EvaluatedGroups = len(progress.GroupResults)
	if progress.EvaluatedGroups > 0 {
		progress.MajorCompletionPercent = Round(sum/float64(progress.EvaluatedGroups)*100, 2)
	}
	return progress
}

func ruleTypeOf(g catalog.Group) catalog.RuleType {
	if _, ok := evaluators[g.RuleType]; ok {
		return g.RuleType
	}
	return catalog.ManualReview
}

// Round rounds x half away from zero to the given number of decimal places.
func Round(x float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(x*scale) / scale
}
