package reviews

import "time"

// StatusAccepted marks an outcome whose classification succeeded.
// Rejected submissions return an error instead of an Outcome.
const StatusAccepted = "accepted"

// Outcome reports a classified submission.
// Persisted is false whenever the log entry was not written, and PersistError
// then names the reason. LogID is set only when Persisted is true.
type Outcome struct {
	Status       string  `json:"status"`
	Label        Label   `json:"label"`
	Display      string  `json:"display"`
	Confidence   float64 `json:"confidence"`
	Persisted    bool    `json:"persisted"`
	PersistError string  `json:"persist_error,omitempty"`
	LogID        *int64  `json:"log_id,omitempty"`
}

// LogEntry is one row of the append-only classification log.
// Confidence is nil for rows written without one.
type LogEntry struct {
	LogID          int64     `json:"log_id"`
	Query          string    `json:"user_query"`
	Classification Label     `json:"classification"`
	Confidence     *float64  `json:"confidence,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// ClassifyRequest is the body of a classify call.
type ClassifyRequest struct {
	Text string `json:"text"`
}
