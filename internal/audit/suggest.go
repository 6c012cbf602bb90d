package audit

import (
	"github.com/hpungsan/degreeplan/internal/catalog"
	"github.com/hpungsan/degreeplan/internal/course"
	"github.com/hpungsan/degreeplan/internal/errors"
)

// MaxSuggestions caps SuggestNextCourses.
const MaxSuggestions = 20

// SuggestNextCourses walks every option of every group in catalog order and
// proposes the first part of each option the student has not completed.
//
// It does not share the allocation pool used by EvaluateMajorProgress, so it
// may propose a course another group already claims.
func SuggestNextCourses(cat *catalog.Catalog, major string, rows []course.Row) ([]string, error) {
	m, ok := cat.Find(major)
	if !ok {
		return nil, errors.NewMajorNotFound(major)
	}
	return suggestForMajor(m, course.CompletedSet(rows)), nil
}

func suggestForMajor(m *catalog.Major, completed map[string]bool) []string {
	suggestions := make([]string, 0, MaxSuggestions)
	seen := make(map[string]struct{}, MaxSuggestions)

	for _, g := range m.RequirementGroups {
		for _, opt := range g.Courses {
			for _, part := range course.SplitOption(opt) {
				if completed[part] {
					continue
				}
				if _, dup := seen[part]; !dup {
					seen[part] = struct{}{}
					suggestions = append(suggestions, part)
					if len(suggestions) >= MaxSuggestions {
						return suggestions
					}
				}
				break
			}
		}
	}
	return suggestions
}
