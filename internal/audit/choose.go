package audit

import (
	"math"
	"sort"

	"github.com/hpungsan/degreeplan/internal/catalog"
	"github.com/hpungsan/degreeplan/internal/course"
)

type chooseNEvaluator struct{}

type scoredOption struct {
	option  string
	matched []string
	score   float64
	full    bool
}

// scoreOption returns the fraction of an option's distinct parts that are
// available. Options with no valid parts are inert and reported as !ok.
func scoreOption(option string, available course.Available) (scoredOption, bool) {
	parts := distinct(course.SplitOption(option))
	if len(parts) == 0 {
		return scoredOption{}, false
	}
	var matched []string
	for _, p := range parts {
		if available.Has(p) {
			matched = append(matched, p)
		}
	}
	return scoredOption{
		option:  option,
		matched: matched,
		score:   float64(len(matched)) / float64(len(parts)),
		full:    len(matched) == len(parts),
	}, true
}

// Evaluate ranks options full-first then by descending score, keeps the top
// requiredCount and credits only the parts matched by those options.
func (chooseNEvaluator) Evaluate(group catalog.Group, available course.Available) Outcome {
	required := group.Count()
	if required <= 0 {
		return Outcome{Used: []string{}, Detail: Detail{Reason: ReasonInvalidRequiredCount}}
	}

	candidates := make([]scoredOption, 0, len(group.Courses))
	for _, opt := range group.Courses {
		if s, ok := scoreOption(opt, available); ok {
			candidates = append(candidates, s)
		}
	}

	// Stable so catalog order breaks ties.
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].full != candidates[j].full {
			return candidates[i].full
		}
		return candidates[i].score > candidates[j].score
	})

	picked := candidates
	if len(picked) > required {
		picked = picked[:required]
	}

	var rawScore float64
	pickedOptions := make([]string, 0, len(picked))
	used := make(map[string]struct{})
	for _, p := range picked {
		rawScore += p.score
		pickedOptions = append(pickedOptions, p.option)
		for _, m := range p.matched {
			used[m] = struct{}{}
		}
	}

	return Outcome{
		Ratio: math.Min(rawScore/float64(required), 1),
		Used:  sortedKeys(used),
		Detail: Detail{
			PickedOptions: pickedOptions,
			RawScore:      ptr(rawScore),
			Required:      ptr(required),
		},
	}
}

func distinct(ids []string) []string {
	if len(ids) < 2 {
		return ids
	}
	seen := make(map[string]struct{}, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
