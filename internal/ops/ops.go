package ops

import (
	"context"
	"crypto/rand"
	"database/sql"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hpungsan/degreeplan/internal/audit"
	"github.com/hpungsan/degreeplan/internal/catalog"
	"github.com/hpungsan/degreeplan/internal/course"
	"github.com/hpungsan/degreeplan/internal/db"
	"github.com/hpungsan/degreeplan/internal/errors"
)

// Pagination limits
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
	DefaultTopN      = audit.DefaultTopN
	MaxTopN          = 50
)

// Pagination contains pagination metadata for list operations.
type Pagination struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
	Total   int  `json:"total"`
}

// newID returns a new ULID string.
func newID() string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// requireMajor validates the major name and loads the stored catalog.
func requireMajor(ctx context.Context, database *sql.DB, major string) (*catalog.Catalog, error) {
	if strings.TrimSpace(major) == "" {
		return nil, errors.NewInvalidRequest("major is required")
	}
	return db.LoadCatalog(ctx, database)
}

// requireCourses rejects a missing course list. An empty list is allowed.
func requireCourses(rows []course.Row) error {
	if rows == nil {
		return errors.NewInvalidRequest("studentCourses is required")
	}
	return nil
}

// saveEvaluation persists an evaluation and returns its id.
func saveEvaluation(ctx context.Context, database *sql.DB, progress *audit.MajorProgress, suggestions []string, advice, source *string) (string, error) {
	e := &db.Evaluation{
		ID:           newID(),
		Major:        progress.Major,
		MajorNorm:    course.Canon(progress.Major),
		DegreeType:   progress.DegreeType,
		Percent:      progress.MajorCompletionPercent,
		Progress:     progress,
		Suggestions:  suggestions,
		AdviceText:   advice,
		AdviceSource: source,
		CreatedAt:    time.Now().Unix(),
	}
	if err := db.InsertEvaluation(ctx, database, e); err != nil {
		return "", err
	}
	return e.ID, nil
}
