package advisor

import (
	"fmt"
	"strings"
)

const meetAdvisorLine = "Meet with your advisor to review manual-review requirements and identify next classes."

// FallbackAdvice renders a deterministic summary for when no generator answers.
func FallbackAdvice(in Input) string {
	completed, pending := splitRows(in.StudentCourses)

	next := limit(in.Suggestions, maxFallbackNext)
	if len(next) == 0 {
		next = []string{meetAdvisorLine}
	}

	var b strings.Builder
	b.WriteString("Overview\n")
	fmt.Fprintf(&b, "- You've completed %d courses from your uploaded records and currently have %d courses still in progress or not completed.\n",
		len(completed), len(pending))
	fmt.Fprintf(&b, "- For %s (%s), your current major completion is about %.2f%% based on machine-evaluable requirement groups.\n",
		in.Major, in.DegreeType, in.percent())
	if manual := in.manualReviewGroups(); len(manual) > 0 {
		fmt.Fprintf(&b, "- %d requirement group(s) need manual review: %s.\n", len(manual), strings.Join(manual, ", "))
	}

	b.WriteString("\nRecommended Next Classes\n")
	for _, s := range next {
		fmt.Fprintf(&b, "- %s\n", s)
	}

	b.WriteString("\nNote: This is a fallback summary because the text generation backend was unavailable.")
	return b.String()
}
