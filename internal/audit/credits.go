package audit

import (
	"math"
	"sort"

	"github.com/hpungsan/degreeplan/internal/catalog"
	"github.com/hpungsan/degreeplan/internal/course"
)

type minCreditsEvaluator struct{}

type creditMatch struct {
	id      string
	credits float64
}

// Evaluate treats every option as a single course, takes matches by
// descending credit value and stops as soon as the requirement is met.
func (minCreditsEvaluator) Evaluate(group catalog.Group, available course.Available) Outcome {
	required := group.Credits()
	if required <= 0 || math.IsNaN(required) {
		return Outcome{Used: []string{}, Detail: Detail{Reason: ReasonInvalidRequiredCredits}}
	}

	seen := make(map[string]struct{}, len(group.Courses))
	var matches []creditMatch
	for _, opt := range group.Courses {
		id := course.Canon(opt)
		if id == "" || !available.Has(id) {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		matches = append(matches, creditMatch{id: id, credits: available.Credits(id)})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].credits > matches[j].credits
	})

	var total float64
	used := make(map[string]struct{})
	for _, m := range matches {
		used[m.id] = struct{}{}
		total += m.credits
		if total >= required {
			break
		}
	}

	return Outcome{
		Ratio: math.Min(total/required, 1),
		Used:  sortedKeys(used),
		Detail: Detail{
			EarnedCredits:   ptr(total),
			RequiredCredits: ptr(required),
		},
	}
}
