package ops

import (
	"context"
	"database/sql"
	"testing"

	"github.com/hpungsan/degreeplan/internal/advisor"
	"github.com/hpungsan/degreeplan/internal/errors"
)

func saveEvaluation(t *testing.T, database *sql.DB, major string) string {
	t.Helper()
	out, err := Evaluate(context.Background(), database, EvaluateInput{
		Major:          major,
		StudentCourses: studentRows(),
		Save:           true,
	})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if out.ID == "" {
		t.Fatal("saved evaluation has no id")
	}
	return out.ID
}

func TestFetchEvaluation(t *testing.T) {
	ctx := context.Background()
	database := seededDB(t)
	id := saveEvaluation(t, database, "Computer Sciences")

	rec, err := FetchEvaluation(ctx, database, FetchInput{ID: id})
	if err != nil {
		t.Fatalf("FetchEvaluation failed: %v", err)
	}
	if rec.Major != "Computer Sciences" || rec.Percent != 50 || rec.DegreeType != "BS" {
		t.Errorf("record = %+v", rec)
	}
	if rec.Progress == nil || len(rec.Progress.GroupResults) != 3 {
		t.Errorf("progress not restored: %+v", rec.Progress)
	}
	if rec.Advice != nil {
		t.Errorf("Advice = %q, want nil for a plain evaluation", *rec.Advice)
	}
}

func TestFetchEvaluation_Errors(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)

	if _, err := FetchEvaluation(ctx, database, FetchInput{}); !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("empty id: expected INVALID_REQUEST, got %v", err)
	}
	if _, err := FetchEvaluation(ctx, database, FetchInput{ID: "01MISSING"}); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("missing id: expected NOT_FOUND, got %v", err)
	}
}

func TestAdvise_SaveStoresAdvice(t *testing.T) {
	ctx := context.Background()
	database := seededDB(t)

	out, err := Advise(ctx, database, advisor.New(&stubGenerator{text: "Plan ahead."}), AdviseInput{
		Major:          "Computer Sciences",
		StudentCourses: studentRows(),
		Save:           true,
	})
	if err != nil {
		t.Fatalf("Advise failed: %v", err)
	}

	rec, err := FetchEvaluation(ctx, database, FetchInput{ID: out.ID})
	if err != nil {
		t.Fatalf("FetchEvaluation failed: %v", err)
	}
	if rec.Advice == nil || *rec.Advice != "Plan ahead." {
		t.Errorf("Advice = %v, want stored text", rec.Advice)
	}
	if rec.AdviceSource == nil || *rec.AdviceSource != "stub" {
		t.Errorf("AdviceSource = %v, want stub", rec.AdviceSource)
	}
	if len(rec.Suggestions) != 4 {
		t.Errorf("len(Suggestions) = %d, want 4", len(rec.Suggestions))
	}
}

func TestListEvaluations_Pagination(t *testing.T) {
	ctx := context.Background()
	database := seededDB(t)
	for range 3 {
		saveEvaluation(t, database, "Computer Sciences")
	}
	saveEvaluation(t, database, "History")

	out, err := ListEvaluations(ctx, database, ListInput{Limit: 2})
	if err != nil {
		t.Fatalf("ListEvaluations failed: %v", err)
	}
	if len(out.Items) != 2 {
		t.Errorf("len(Items) = %d, want 2", len(out.Items))
	}
	if !out.Pagination.HasMore || out.Pagination.Total != 4 {
		t.Errorf("Pagination = %+v, want has_more with total 4", out.Pagination)
	}
	if out.Sort != "created_at_desc" {
		t.Errorf("Sort = %q", out.Sort)
	}

	out, err = ListEvaluations(ctx, database, ListInput{Major: "computer sciences", Offset: 2})
	if err != nil {
		t.Fatalf("ListEvaluations failed: %v", err)
	}
	if len(out.Items) != 1 || out.Pagination.HasMore || out.Pagination.Total != 3 {
		t.Errorf("filtered page = %d items, %+v", len(out.Items), out.Pagination)
	}
}

func TestListEvaluations_ClampsLimits(t *testing.T) {
	out, err := ListEvaluations(context.Background(), openTestDB(t), ListInput{Limit: 1000, Offset: -5})
	if err != nil {
		t.Fatalf("ListEvaluations failed: %v", err)
	}
	if out.Pagination.Limit != MaxListLimit || out.Pagination.Offset != 0 {
		t.Errorf("Pagination = %+v", out.Pagination)
	}
	if out.Items == nil {
		t.Error("Items should be empty, not nil")
	}
}

func TestPurgeEvaluations(t *testing.T) {
	ctx := context.Background()
	database := seededDB(t)
	saveEvaluation(t, database, "Computer Sciences")
	saveEvaluation(t, database, "Computer Sciences")
	keep := saveEvaluation(t, database, "History")

	days := 30
	out, err := PurgeEvaluations(ctx, database, PurgeInput{OlderThanDays: &days})
	if err != nil {
		t.Fatalf("PurgeEvaluations failed: %v", err)
	}
	if out.Purged != 0 || out.Message != "No evaluations to purge" {
		t.Errorf("recent evaluations purged: %+v", out)
	}

	major := "Computer Sciences"
	out, err = PurgeEvaluations(ctx, database, PurgeInput{Major: &major})
	if err != nil {
		t.Fatalf("PurgeEvaluations failed: %v", err)
	}
	if out.Purged != 2 {
		t.Errorf("Purged = %d, want 2", out.Purged)
	}
	if out.Message != `Permanently deleted 2 evaluations for major "Computer Sciences"` {
		t.Errorf("Message = %q", out.Message)
	}

	if _, err := FetchEvaluation(ctx, database, FetchInput{ID: keep}); err != nil {
		t.Errorf("History evaluation should survive: %v", err)
	}
}

func TestPurgeEvaluations_NegativeDays(t *testing.T) {
	days := -1
	_, err := PurgeEvaluations(context.Background(), openTestDB(t), PurgeInput{OlderThanDays: &days})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("expected INVALID_REQUEST, got %v", err)
	}
}

func TestFormatPurgeMessage(t *testing.T) {
	days := 7
	major := "History"
	if got := formatPurgeMessage(1, &major, &days); got != `Permanently deleted 1 evaluation for major "History" (created more than 7 days ago)` {
		t.Errorf("formatPurgeMessage = %q", got)
	}
}
