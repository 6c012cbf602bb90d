package db

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/hpungsan/degreeplan/internal/audit"
	"github.com/hpungsan/degreeplan/internal/errors"
)

// Evaluation is a saved evaluation with optional advice.
type Evaluation struct {
	ID           string
	Major        string
	MajorNorm    string
	DegreeType   string
	Percent      float64
	Progress     *audit.MajorProgress
	Suggestions  []string
	AdviceText   *string
	AdviceSource *string
	CreatedAt    int64
}

// EvaluationSummary is the list view of an Evaluation.
type EvaluationSummary struct {
	ID           string
	Major        string
	DegreeType   string
	Percent      float64
	AdviceSource *string
	CreatedAt    int64
}

// InsertEvaluation stores an evaluation.
func InsertEvaluation(ctx context.Context, db *sql.DB, e *Evaluation) error {
	progressJSON, err := json.Marshal(e.Progress)
	if err != nil {
		return errors.NewInternal(err)
	}

	var suggestionsJSON sql.NullString
	if len(e.Suggestions) > 0 {
		data, err := json.Marshal(e.Suggestions)
		if err != nil {
			return errors.NewInternal(err)
		}
		suggestionsJSON = sql.NullString{String: string(data), Valid: true}
	}

	query := `
		INSERT INTO evaluations (
			id, major, major_norm, degree_type, percent, progress_json,
			suggestions_json, advice_text, advice_source, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = db.ExecContext(ctx, query,
		e.ID, e.Major, e.MajorNorm, e.DegreeType, e.Percent, string(progressJSON),
		suggestionsJSON, ptrToNull(e.AdviceText), ptrToNull(e.AdviceSource), e.CreatedAt,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrUniqueConstraint
		}
		return errors.NewInternal(err)
	}
	return nil
}

// GetEvaluation retrieves an evaluation by its ULID.
func GetEvaluation(ctx context.Context, db *sql.DB, id string) (*Evaluation, error) {
	query := `
		SELECT id, major, major_norm, degree_type, percent, progress_json,
			suggestions_json, advice_text, advice_source, created_at
		FROM evaluations
		WHERE id = ?
	`

	var (
		e               Evaluation
		progressJSON    string
		suggestionsJSON sql.NullString
		adviceText      sql.NullString
		adviceSource    sql.NullString
	)
	err := db.QueryRowContext(ctx, query, id).Scan(
		&e.ID, &e.Major, &e.MajorNorm, &e.DegreeType, &e.Percent, &progressJSON,
		&suggestionsJSON, &adviceText, &adviceSource, &e.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	e.AdviceText = fromNullString(adviceText)
	e.AdviceSource = fromNullString(adviceSource)

	e.Progress = &audit.MajorProgress{}
	if err := json.Unmarshal([]byte(progressJSON), e.Progress); err != nil {
		return nil, errors.NewInternal(err)
	}
	if suggestionsJSON.Valid && suggestionsJSON.String != "" {
		if err := json.Unmarshal([]byte(suggestionsJSON.String), &e.Suggestions); err != nil {
			return nil, errors.NewInternal(err)
		}
	}

	return &e, nil
}

// EvaluationFilter narrows ListEvaluations. Zero values match everything.
type EvaluationFilter struct {
	MajorNorm string
}

// ListEvaluations returns summaries newest first, plus the total matching count.
func ListEvaluations(ctx context.Context, db *sql.DB, filter EvaluationFilter, limit, offset int) ([]EvaluationSummary, int, error) {
	where := ""
	var args []any
	if filter.MajorNorm != "" {
		where = " WHERE major_norm = ?"
		args = append(args, filter.MajorNorm)
	}

	var total int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM evaluations"+where, args...).Scan(&total); err != nil {
		return nil, 0, errors.NewInternal(err)
	}

	query := `
		SELECT id, major, degree_type, percent, advice_source, created_at
		FROM evaluations` + where + `
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`
	rows, err := db.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, errors.NewInternal(err)
	}
	defer rows.Close()

	summaries := []EvaluationSummary{}
	for rows.Next() {
		var (
			s            EvaluationSummary
			adviceSource sql.NullString
		)
		if err := rows.Scan(&s.ID, &s.Major, &s.DegreeType, &s.Percent, &adviceSource, &s.CreatedAt); err != nil {
			return nil, 0, errors.NewInternal(err)
		}
		s.AdviceSource = fromNullString(adviceSource)
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.NewInternal(err)
	}

	return summaries, total, nil
}

// PurgeEvaluations permanently deletes evaluations created before the given
// unix time, optionally limited to one major. Returns the number deleted.
func PurgeEvaluations(ctx context.Context, db *sql.DB, filter EvaluationFilter, before int64) (int, error) {
	query := "DELETE FROM evaluations WHERE created_at < ?"
	args := []any{before}
	if filter.MajorNorm != "" {
		query += " AND major_norm = ?"
		args = append(args, filter.MajorNorm)
	}

	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	return int(n), nil
}

func ptrToNull(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
