// Package advisor writes human-readable progress summaries from an
// evaluation, using a text generation backend when one answers and a
// deterministic summary otherwise.
package advisor

import (
	"fmt"
	"strings"

	"github.com/hpungsan/degreeplan/internal/audit"
	"github.com/hpungsan/degreeplan/internal/course"
)

// Prompt limits.
const (
	maxPromptCompleted   = 50
	maxPromptInProgress  = 20
	maxPromptSuggestions = 12
	maxFallbackNext      = 8
)

// Input is everything the advisor needs. Progress may be nil.
type Input struct {
	Major          string
	DegreeType     string
	Progress       *audit.MajorProgress
	StudentCourses []course.Row
	Suggestions    []string
}

func (in Input) percent() float64 {
	if in.Progress == nil {
		return 0
	}
	return in.Progress.MajorCompletionPercent
}

func (in Input) evaluatedGroups() int {
	if in.Progress == nil {
		return 0
	}
	return in.Progress.EvaluatedGroups
}

func (in Input) manualReviewGroups() []string {
	if in.Progress == nil {
		return nil
	}
	return in.Progress.ManualReviewGroups
}

func splitRows(rows []course.Row) (completed, pending []course.Row) {
	for _, r := range rows {
		if r.Completed() {
			completed = append(completed, r)
		} else {
			pending = append(pending, r)
		}
	}
	return completed, pending
}

func courseLine(r course.Row, blankGrade string) string {
	grade := strings.TrimSpace(string(r.Grade))
	if grade == "" {
		grade = blankGrade
	}
	return fmt.Sprintf("- %s (%s)", r.ID(), grade)
}

// BuildPrompt renders the generation prompt.
func BuildPrompt(in Input) string {
	completed, pending := splitRows(in.StudentCourses)

	var b strings.Builder
	b.WriteString("You are an academic degree planning assistant.\n")
	b.WriteString("Write a concise response with two sections:\n")
	b.WriteString("1) Overview: what the student has already done\n")
	b.WriteString("2) Recommended Next Classes: practical next courses from remaining major requirements\n")
	b.WriteString("Use bullet points and plain language. Mention uncertainty when requirements are manual-review.\n")
	b.WriteString("Do not invent classes outside the provided suggestions list unless clearly marked as examples.\n")
	b.WriteString("\n")
	fmt.Fprintf(&b, "Major: %s\n", in.Major)
	fmt.Fprintf(&b, "Degree Type: %s\n", in.DegreeType)
	fmt.Fprintf(&b, "Major completion: %.2f%%\n", in.percent())
	fmt.Fprintf(&b, "Evaluated requirement groups: %d\n", in.evaluatedGroups())
	if manual := in.manualReviewGroups(); len(manual) > 0 {
		fmt.Fprintf(&b, "Manual-review requirement groups: %s\n", strings.Join(manual, ", "))
	}

	b.WriteString("\nCompleted courses:\n")
	writeLines(&b, completed, maxPromptCompleted, "NA", "- None parsed")

	b.WriteString("\nIn-progress / not-completed courses:\n")
	writeLines(&b, pending, maxPromptInProgress, "INP", "- None")

	b.WriteString("\nBest candidate next classes from requirements:\n")
	suggestions := limit(in.Suggestions, maxPromptSuggestions)
	if len(suggestions) == 0 {
		b.WriteString("- No direct suggestions available\n")
	}
	for _, s := range suggestions {
		fmt.Fprintf(&b, "- %s\n", s)
	}

	return strings.TrimRight(b.String(), "\n")
}

func writeLines(b *strings.Builder, rows []course.Row, n int, blankGrade, empty string) {
	if len(rows) == 0 {
		b.WriteString(empty + "\n")
		return
	}
	for i, r := range rows {
		if i == n {
			break
		}
		b.WriteString(courseLine(r, blankGrade) + "\n")
	}
}

func limit(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
