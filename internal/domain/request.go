package domain

// ProcessRequest starts a new session for a topic.
type ProcessRequest struct {
	Topic string `json:"topic"`
	Taste Taste  `json:"taste,omitempty"`
}

// FeedbackRequest advances or retries an existing session.
type FeedbackRequest struct {
	SessionID string `json:"session_id"`
	Approved  bool   `json:"approved"`
	Feedback  string `json:"feedback,omitempty"`
}

// SessionView is the response shape for both process and feedback calls.
// It is a transient copy; the backend owns the session for its lifetime.
type SessionView struct {
	SessionID         string             `json:"session_id"`
	Status            SessionStatus      `json:"status"`
	Stage             Stage              `json:"stage"`
	Iteration         int                `json:"iteration,omitempty"`
	MaxIterations     int                `json:"max_iterations,omitempty"`
	Message           string             `json:"message,omitempty"`
	Topic             string             `json:"topic"`
	Taste             Taste              `json:"taste,omitempty"`
	Research          string             `json:"research"`
	ResearchCitations []Citation         `json:"research_citations,omitempty"`
	Article           string             `json:"article"`
	Review            string             `json:"review"`
	Visualization     *VisualizationData `json:"visualization,omitempty"`
}
