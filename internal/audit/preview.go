package audit

import (
	"sort"

	"github.com/hpungsan/degreeplan/internal/catalog"
	"github.com/hpungsan/degreeplan/internal/course"
)

// DefaultTopN is the number of previews RankPreviews keeps when topN <= 0.
const DefaultTopN = 5

// Preview is a coarse, lenient completion estimate for a major.
//
// It counts whole groups as satisfied or not, does not deplete a shared pool,
// and treats a manual-review group as satisfied when any option is fully
// complete. It is never comparable with MajorProgress.
type Preview struct {
	Major           string  `json:"major"`
	DegreeType      string  `json:"degreeType"`
	Percent         float64 `json:"percent"`
	SatisfiedGroups int     `json:"satisfiedGroups"`
	TotalGroups     int     `json:"totalGroups"`
	Approximate     bool    `json:"approximate"`
}

// taken maps completed course ids to their greatest recorded credits.
type taken map[string]float64

func takenFromRows(rows []course.Row) taken {
	t := make(taken, len(rows))
	for _, rec := range course.CompletedRecords(rows) {
		if prev, ok := t[rec.ID]; !ok || rec.Credits > prev {
			t[rec.ID] = rec.Credits
		}
	}
	return t
}

func (t taken) allPresent(parts []string) bool {
	if len(parts) == 0 {
		return false
	}
	for _, p := range parts {
		if _, ok := t[p]; !ok {
			return false
		}
	}
	return true
}

// PreviewMajor computes the lenient preview for one major.
func PreviewMajor(m *catalog.Major, degreeType string, rows []course.Row) Preview {
	return previewMajor(m, degreeType, takenFromRows(rows))
}

func previewMajor(m *catalog.Major, degreeType string, t taken) Preview {
	p := Preview{
		Major:       m.Major,
		DegreeType:  catalog.ResolveDegreeType(degreeType, m),
		TotalGroups: len(m.RequirementGroups),
		Approximate: true,
	}
	for _, g := range m.RequirementGroups {
		if groupSatisfied(g, t) {
			p.SatisfiedGroups++
		}
	}
	if p.TotalGroups > 0 {
		p.Percent = Round(float64(p.SatisfiedGroups)/float64(p.TotalGroups)*100, 2)
	}
	return p
}

func groupSatisfied(g catalog.Group, t taken) bool {
	switch g.RuleType {
	case catalog.ChooseNCourses:
		required := g.Count()
		if required <= 0 {
			return false
		}
		satisfied := 0
		for _, opt := range g.Courses {
			if t.allPresent(course.SplitOption(opt)) {
				satisfied++
			}
		}
		return satisfied >= required

	case catalog.MinCredits:
		required := g.Credits()
		if required <= 0 {
			return false
		}
		var earned float64
		counted := make(map[string]struct{})
		for _, opt := range g.Courses {
			parts := course.SplitOption(opt)
			if !t.allPresent(parts) {
				continue
			}
			for _, p := range parts {
				if _, ok := counted[p]; ok {
					continue
				}
				counted[p] = struct{}{}
				earned += t[p]
			}
			if earned >= required {
				return true
			}
		}
		return false

	default:
		for _, opt := range g.Courses {
			if t.allPresent(course.SplitOption(opt)) {
				return true
			}
		}
		return false
	}
}

// RankPreviews previews every major in the catalog and returns the topN by
// percent. A non-empty degreeFilter keeps only majors whose catalog degree
// type matches canonically. Ties are ordered by canonical major name.
func RankPreviews(cat *catalog.Catalog, rows []course.Row, degreeFilter string, topN int) []Preview {
	if topN <= 0 {
		topN = DefaultTopN
	}
	t := takenFromRows(rows)

	previews := make([]Preview, 0, len(cat.Majors))
	for i := range cat.Majors {
		m := &cat.Majors[i]
		if !m.MatchesDegreeType(degreeFilter) {
			continue
		}
		previews = append(previews, previewMajor(m, "", t))
	}

	SortPreviews(previews)
	if len(previews) > topN {
		previews = previews[:topN]
	}
	return previews
}

// SortPreviews orders previews by descending percent, then by canonical
// major name.
func SortPreviews(previews []Preview) {
	sort.SliceStable(previews, func(i, j int) bool {
		if previews[i].Percent != previews[j].Percent {
			return previews[i].Percent > previews[j].Percent
		}
		return course.Canon(previews[i].Major) < course.Canon(previews[j].Major)
	})
}
