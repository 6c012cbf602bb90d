package course

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// inProgressGrades are grade markers that do not count as a completed course.
var inProgressGrades = map[string]bool{
	"INP": true,
	"IP":  true,
	"W":   true,
	"UW":  true,
}

// Text is a string field that also accepts JSON numbers and null.
// Degree audit exports are inconsistent about quoting course numbers.
type Text string

// UnmarshalJSON implements json.Unmarshaler.
func (t *Text) UnmarshalJSON(data []byte) error {
	*t = ""
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	switch v := raw.(type) {
	case string:
		*t = Text(v)
	case float64:
		*t = Text(strconv.FormatFloat(v, 'f', -1, 64))
	case bool:
		*t = Text(strconv.FormatBool(v))
	}
	return nil
}

// Credits is a credit count that decodes permissively: numbers and numeric
// strings are accepted, anything else (null, garbage, negative, NaN) is 0.
type Credits float64

// UnmarshalJSON implements json.Unmarshaler.
func (c *Credits) UnmarshalJSON(data []byte) error {
	*c = 0
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	switch v := raw.(type) {
	case float64:
		*c = Credits(sanitizeCredits(v))
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			*c = Credits(sanitizeCredits(f))
		}
	}
	return nil
}

func sanitizeCredits(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	return f
}

// Row is one raw student course row, as uploaded from a degree audit report.
// Either CourseID or Subject+Number identifies the course.
type Row struct {
	CourseID Text    `json:"courseId,omitempty"`
	Subject  Text    `json:"subject,omitempty"`
	Number   Text    `json:"number,omitempty"`
	Grade    Text    `json:"grade,omitempty"`
	Credits  Credits `json:"credits,omitempty"`
}

// ID returns the canonical course identifier for the row.
func (r Row) ID() string {
	if id := Canon(string(r.CourseID)); id != "" {
		return id
	}
	subject := strings.TrimSpace(string(r.Subject))
	number := strings.TrimSpace(string(r.Number))
	return Canon(subject + " " + number)
}

// Completed reports whether the row's grade counts as a completed course.
func (r Row) Completed() bool {
	return IsCompletedGrade(string(r.Grade))
}

// IsCompletedGrade reports whether a grade marks a finished course.
// Blank grades and the in-progress/withdrawal markers INP, IP, W and UW do not.
func IsCompletedGrade(grade string) bool {
	g := strings.ToUpper(strings.TrimSpace(grade))
	return g != "" && !inProgressGrades[g]
}

// Record is a parsed, immutable view of a Row.
type Record struct {
	ID        string
	Credits   float64
	Completed bool
}

// ParseRow converts a raw row into a Record.
func ParseRow(r Row) Record {
	return Record{
		ID:        r.ID(),
		Credits:   float64(r.Credits),
		Completed: r.Completed(),
	}
}

// CompletedRecords parses rows and keeps completed records with a usable identifier.
func CompletedRecords(rows []Row) []Record {
	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		rec := ParseRow(row)
		if !rec.Completed || rec.ID == "" {
			continue
		}
		records = append(records, rec)
	}
	return records
}

// CompletedSet returns the set of completed canonical identifiers in rows.
func CompletedSet(rows []Row) map[string]bool {
	set := make(map[string]bool, len(rows))
	for _, rec := range CompletedRecords(rows) {
		set[rec.ID] = true
	}
	return set
}
