package reviews

import (
	"database/sql"
	"net/url"

	"github.com/JaimeStill/verdict/pkg/query"
	"github.com/JaimeStill/verdict/pkg/repository"
)

var defaultSort = query.SortField{
	Field:      "LogID",
	Descending: true,
}

func newProjection(t Table) *query.ProjectionMap {
	return query.
		NewProjectionMap(t.Schema, t.Name, "l").
		Project("log_id", "LogID").
		Project("user_query", "Query").
		Project("classification", "Classification").
		Project("confidence", "Confidence").
		Project("created_at", "CreatedAt")
}

// Filters contains optional filtering criteria for log queries.
// Nil fields are ignored.
type Filters struct {
	Classification *Label `json:"classification,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	var classification *string
	if f.Classification != nil {
		c := string(*f.Classification)
		classification = &c
	}
	return b.WhereEquals("Classification", classification)
}

// FiltersFromQuery extracts filter values from URL query parameters.
// Unknown classification values are ignored.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	switch l := Label(values.Get("classification")); l {
	case Positive, Negative:
		f.Classification = &l
	}

	return f
}

func scanLogEntry(s repository.Scanner) (LogEntry, error) {
	var e LogEntry
	var confidence sql.NullFloat64

	err := s.Scan(
		&e.LogID,
		&e.Query,
		&e.Classification,
		&confidence,
		&e.CreatedAt,
	)
	if err != nil {
		return e, err
	}

	if confidence.Valid {
		e.Confidence = &confidence.Float64
	}

	return e, nil
}
