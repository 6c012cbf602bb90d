package catalog

import (
	"encoding/json"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hpungsan/degreeplan/internal/course"
)

// DefaultDegreeType is used when neither the caller nor the catalog names one.
const DefaultDegreeType = "BA"

// RuleType identifies how a requirement group is scored.
type RuleType string

const (
	ChooseNCourses RuleType = "choose_n_courses"
	MinCredits     RuleType = "min_credits"
	// ManualReview covers every rule that cannot be checked by machine.
	ManualReview RuleType = "manual_review"
)

// ParseRuleType normalizes a raw rule tag. Unrecognized tags map to ManualReview.
func ParseRuleType(s string) RuleType {
	switch RuleType(strings.ToLower(strings.TrimSpace(s))) {
	case ChooseNCourses:
		return ChooseNCourses
	case MinCredits:
		return MinCredits
	default:
		return ManualReview
	}
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *RuleType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		// Non-string tags (null, numbers) are treated as unclassified.
		*r = ManualReview
		return nil
	}
	*r = ParseRuleType(s)
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (r *RuleType) UnmarshalYAML(value *yaml.Node) error {
	*r = ParseRuleType(value.Value)
	return nil
}

// Group is one scorable unit of a major's requirements.
type Group struct {
	GroupID              string   `json:"groupId" yaml:"groupId" validate:"required"`
	RuleType             RuleType `json:"ruleType" yaml:"ruleType"`
	RequiredCount        *int     `json:"requiredCount" yaml:"requiredCount"`
	RequiredCredits      *float64 `json:"requiredCredits" yaml:"requiredCredits"`
	Courses              []string `json:"courses" yaml:"courses"`
	RawRequirementTokens []string `json:"rawRequirementTokens,omitempty" yaml:"rawRequirementTokens,omitempty"`
}

// Count returns the required option count, or 0 when unset.
func (g Group) Count() int {
	if g.RequiredCount == nil {
		return 0
	}
	return *g.RequiredCount
}

// Credits returns the required credit total, or 0 when unset.
func (g Group) Credits() float64 {
	if g.RequiredCredits == nil {
		return 0
	}
	return *g.RequiredCredits
}

// Major is a named major with its requirement groups in declared order.
type Major struct {
	Major             string  `json:"major" yaml:"major" validate:"required"`
	DegreeType        string  `json:"degreeType,omitempty" yaml:"degreeType,omitempty"`
	RequirementGroups []Group `json:"requirementGroups" yaml:"requirementGroups" validate:"dive"`
}

// Catalog is a fully materialized set of majors.
type Catalog struct {
	Majors []Major
}

// New builds a catalog from majors, preserving their order.
func New(majors ...Major) *Catalog {
	return &Catalog{Majors: majors}
}

// Find resolves a major by canonical name. The first match wins.
func (c *Catalog) Find(name string) (*Major, bool) {
	if c == nil {
		return nil, false
	}
	key := course.Canon(name)
	if key == "" {
		return nil, false
	}
	for i := range c.Majors {
		if course.Canon(c.Majors[i].Major) == key {
			return &c.Majors[i], true
		}
	}
	return nil, false
}

// Names returns the major names in sorted order.
func (c *Catalog) Names() []string {
	if c == nil {
		return nil
	}
	names := make([]string, 0, len(c.Majors))
	for _, m := range c.Majors {
		names = append(names, m.Major)
	}
	sort.Strings(names)
	return names
}

// ResolveDegreeType picks the caller's degree type, then the major's, then DefaultDegreeType.
func ResolveDegreeType(requested string, m *Major) string {
	if dt := strings.TrimSpace(requested); dt != "" {
		return dt
	}
	if m != nil {
		if dt := strings.TrimSpace(m.DegreeType); dt != "" {
			return dt
		}
	}
	return DefaultDegreeType
}

// MatchesDegreeType reports whether the major's resolved degree type equals
// filter canonically. An empty filter matches every major.
func (m *Major) MatchesDegreeType(filter string) bool {
	want := course.Canon(filter)
	return want == "" || course.Canon(ResolveDegreeType("", m)) == want
}
