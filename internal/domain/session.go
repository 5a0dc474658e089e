package domain

import "time"

// Session is one end-to-end run for a single topic. It is created on the
// first /process call, mutated by feedback calls, and frozen once the
// status becomes terminal.
type Session struct {
	SessionID     string        `json:"session_id"`
	Topic         string        `json:"topic"`
	Taste         Taste         `json:"taste"`
	Stage         Stage         `json:"stage"`
	Status        SessionStatus `json:"status"`
	Iteration     int           `json:"iteration"`
	MaxIterations int           `json:"max_iterations"`

	// Accumulated outputs per stage. Re-running a stage replaces its output.
	Research          string     `json:"research"`
	ResearchCitations []Citation `json:"research_citations,omitempty"`
	Article           string     `json:"article"`
	Review            string     `json:"review"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Citation is a source reference attached to research output. DisplayText
// is expected to appear verbatim in the research text; for url citations
// the URL must be present for link rendering to apply.
type Citation struct {
	Kind        CitationKind `json:"kind"`
	DisplayText string       `json:"display_text"`
	URL         string       `json:"url,omitempty"`
	Title       string       `json:"title,omitempty"`
	FileID      string       `json:"file_id,omitempty"`
}
