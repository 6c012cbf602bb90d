package ops

import (
	"context"
	"database/sql"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/hpungsan/degreeplan/internal/audit"
	"github.com/hpungsan/degreeplan/internal/catalog"
	"github.com/hpungsan/degreeplan/internal/course"
	"github.com/hpungsan/degreeplan/internal/db"
)

// PreviewInput contains parameters for the Preview operation.
type PreviewInput struct {
	StudentCourses []course.Row // required, may be empty
	DegreeType     string       // optional filter on the catalog degree type
	TopN           int          // default: 5, max: 50
}

// PreviewOutput contains the result of the Preview operation.
type PreviewOutput struct {
	Approximate bool            `json:"approximate"`
	Results     []audit.Preview `json:"results"`
}

// Preview ranks every stored major by the lenient satisfied-groups estimate.
// Results are approximate and never comparable with Evaluate.
func Preview(ctx context.Context, database *sql.DB, input PreviewInput) (*PreviewOutput, error) {
	if err := requireCourses(input.StudentCourses); err != nil {
		return nil, err
	}

	topN := input.TopN
	if topN <= 0 {
		topN = DefaultTopN
	}
	if topN > MaxTopN {
		topN = MaxTopN
	}

	cat, err := db.LoadCatalog(ctx, database)
	if err != nil {
		return nil, err
	}

	var majors []*catalog.Major
	for i := range cat.Majors {
		if cat.Majors[i].MatchesDegreeType(input.DegreeType) {
			majors = append(majors, &cat.Majors[i])
		}
	}

	// Each major is independent; results are sorted once all slots fill.
	previews := make([]audit.Preview, len(majors))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, m := range majors {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			previews[i] = audit.PreviewMajor(m, "", input.StudentCourses)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	audit.SortPreviews(previews)
	if len(previews) > topN {
		previews = previews[:topN]
	}
	return &PreviewOutput{Approximate: true, Results: previews}, nil
}
