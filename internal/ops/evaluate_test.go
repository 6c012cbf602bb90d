package ops

import (
	"context"
	stderrors "errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/hpungsan/degreeplan/internal/advisor"
	"github.com/hpungsan/degreeplan/internal/course"
	"github.com/hpungsan/degreeplan/internal/errors"
)

type stubGenerator struct {
	text  string
	err   error
	calls int
}

func (s *stubGenerator) Generate(context.Context, string) (string, error) {
	s.calls++
	return s.text, s.err
}

func (s *stubGenerator) Name() string { return "stub" }

func TestEvaluate(t *testing.T) {
	out, err := Evaluate(context.Background(), seededDB(t), EvaluateInput{
		Major:          "computer sciences",
		StudentCourses: studentRows(),
	})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if out.ID != "" {
		t.Errorf("ID = %q, want empty when not saved", out.ID)
	}

	p := out.Progress
	if p.Major != "Computer Sciences" || p.DegreeType != "BS" {
		t.Errorf("Major=%q DegreeType=%q", p.Major, p.DegreeType)
	}
	if p.MajorCompletionPercent != 50 {
		t.Errorf("MajorCompletionPercent = %v, want 50", p.MajorCompletionPercent)
	}
	if p.EvaluatedGroups != 3 {
		t.Errorf("EvaluatedGroups = %d, want 3", p.EvaluatedGroups)
	}
	if diff := cmp.Diff([]string{"MATH 221", "MATH 222"}, p.GroupResults[0].UsedCourses); diff != "" {
		t.Errorf("group 1 used (-want +got):\n%s", diff)
	}
	if p.GroupResults[1].CompletionRatio != 0.5 {
		t.Errorf("group 2 ratio = %v, want 0.5", p.GroupResults[1].CompletionRatio)
	}
	if diff := cmp.Diff([]string{"3"}, p.ManualReviewGroups); diff != "" {
		t.Errorf("ManualReviewGroups (-want +got):\n%s", diff)
	}
}

func TestEvaluate_DegreeTypeOverride(t *testing.T) {
	out, err := Evaluate(context.Background(), seededDB(t), EvaluateInput{
		Major:          "Mathematics",
		DegreeType:     "BS",
		StudentCourses: studentRows(),
	})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if out.Progress.DegreeType != "BS" {
		t.Errorf("DegreeType = %q, want BS", out.Progress.DegreeType)
	}
	if out.Progress.MajorCompletionPercent != 100 {
		t.Errorf("MajorCompletionPercent = %v, want 100", out.Progress.MajorCompletionPercent)
	}
}

func TestEvaluate_Errors(t *testing.T) {
	ctx := context.Background()
	database := seededDB(t)

	tests := []struct {
		name  string
		input EvaluateInput
		code  errors.ErrorCode
	}{
		{"missing major", EvaluateInput{StudentCourses: studentRows()}, errors.ErrInvalidRequest},
		{"blank major", EvaluateInput{Major: "  ", StudentCourses: studentRows()}, errors.ErrInvalidRequest},
		{"missing courses", EvaluateInput{Major: "History"}, errors.ErrInvalidRequest},
		{"unknown major", EvaluateInput{Major: "Astrology", StudentCourses: studentRows()}, errors.ErrMajorNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Evaluate(ctx, database, tc.input)
			if !errors.Is(err, tc.code) {
				t.Errorf("expected %s, got %v", tc.code, err)
			}
		})
	}
}

func TestEvaluate_EmptyCoursesAllowed(t *testing.T) {
	out, err := Evaluate(context.Background(), seededDB(t), EvaluateInput{
		Major:          "History",
		StudentCourses: []course.Row{},
	})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if out.Progress.MajorCompletionPercent != 0 {
		t.Errorf("MajorCompletionPercent = %v, want 0", out.Progress.MajorCompletionPercent)
	}
}

func TestSuggest(t *testing.T) {
	out, err := Suggest(context.Background(), seededDB(t), SuggestInput{
		Major:          "Computer Sciences",
		StudentCourses: studentRows(),
	})
	if err != nil {
		t.Fatalf("Suggest failed: %v", err)
	}
	want := []string{"MATH 234", "COMP SCI 407", "COMP SCI 536", "COMP SCI 699"}
	if diff := cmp.Diff(want, out.Suggestions); diff != "" {
		t.Errorf("Suggestions (-want +got):\n%s", diff)
	}
}

func TestSuggest_UnknownMajor(t *testing.T) {
	_, err := Suggest(context.Background(), seededDB(t), SuggestInput{
		Major:          "Astrology",
		StudentCourses: studentRows(),
	})
	if !errors.Is(err, errors.ErrMajorNotFound) {
		t.Errorf("expected MAJOR_NOT_FOUND, got %v", err)
	}
}

func TestAdvise_Generated(t *testing.T) {
	gen := &stubGenerator{text: "  Take MATH 234 next.  "}
	out, err := Advise(context.Background(), seededDB(t), advisor.New(gen), AdviseInput{
		Major:          "Computer Sciences",
		StudentCourses: studentRows(),
	})
	if err != nil {
		t.Fatalf("Advise failed: %v", err)
	}
	if out.Advice.Text != "Take MATH 234 next." || out.Advice.Source != "stub" {
		t.Errorf("Advice = %+v", out.Advice)
	}
	if len(out.Advice.Suggestions) != 4 {
		t.Errorf("len(Suggestions) = %d, want 4", len(out.Advice.Suggestions))
	}
	if out.Progress.MajorCompletionPercent != 50 {
		t.Errorf("MajorCompletionPercent = %v, want 50", out.Progress.MajorCompletionPercent)
	}
}

func TestAdvise_FallsBackWithoutGenerator(t *testing.T) {
	out, err := Advise(context.Background(), seededDB(t), nil, AdviseInput{
		Major:          "Computer Sciences",
		StudentCourses: studentRows(),
	})
	if err != nil {
		t.Fatalf("Advise failed: %v", err)
	}
	if out.Advice.Source != advisor.SourceFallback {
		t.Errorf("Source = %q, want fallback", out.Advice.Source)
	}
	if !strings.Contains(out.Advice.Text, "MATH 234") {
		t.Errorf("fallback text should list suggestions:\n%s", out.Advice.Text)
	}
}

func TestAdvise_RequireGenerated(t *testing.T) {
	gen := &stubGenerator{err: stderrors.New("connection refused")}
	_, err := Advise(context.Background(), seededDB(t), advisor.New(gen), AdviseInput{
		Major:            "Computer Sciences",
		StudentCourses:   studentRows(),
		RequireGenerated: true,
	})
	if !errors.Is(err, errors.ErrAdvisorUnavailable) {
		t.Errorf("expected ADVISOR_UNAVAILABLE, got %v", err)
	}
}

func TestPreview(t *testing.T) {
	ctx := context.Background()
	database := seededDB(t)

	out, err := Preview(ctx, database, PreviewInput{StudentCourses: studentRows()})
	if err != nil {
		t.Fatalf("Preview failed: %v", err)
	}
	if !out.Approximate {
		t.Error("Approximate = false, want true")
	}

	var got []string
	for _, p := range out.Results {
		got = append(got, p.Major)
	}
	if diff := cmp.Diff([]string{"Mathematics", "Computer Sciences", "History"}, got); diff != "" {
		t.Errorf("ranking (-want +got):\n%s", diff)
	}
	if out.Results[1].Percent != 33.33 {
		t.Errorf("Computer Sciences percent = %v, want 33.33", out.Results[1].Percent)
	}
}

func TestPreview_FilterAndTopN(t *testing.T) {
	ctx := context.Background()
	database := seededDB(t)

	out, err := Preview(ctx, database, PreviewInput{StudentCourses: studentRows(), DegreeType: "bs"})
	if err != nil {
		t.Fatalf("Preview failed: %v", err)
	}
	if len(out.Results) != 1 || out.Results[0].Major != "Computer Sciences" {
		t.Errorf("BS filter results = %+v", out.Results)
	}

	out, err = Preview(ctx, database, PreviewInput{StudentCourses: studentRows(), TopN: 1})
	if err != nil {
		t.Fatalf("Preview failed: %v", err)
	}
	if len(out.Results) != 1 || out.Results[0].Major != "Mathematics" {
		t.Errorf("TopN=1 results = %+v", out.Results)
	}
}

func TestPreview_RequiresCourses(t *testing.T) {
	_, err := Preview(context.Background(), seededDB(t), PreviewInput{})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("expected INVALID_REQUEST, got %v", err)
	}
}
