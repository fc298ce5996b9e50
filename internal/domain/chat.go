package domain

import "time"

// Session represents a chat session
type Session struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Message represents a chat message
type Message struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Role      string    `json:"role"` // user, assistant
	Content   string    `json:"content"`
	Intent    string    `json:"intent,omitempty"`
	Sources   []Source  `json:"sources,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Source represents a citation source returned alongside an answer
type Source struct {
	DocumentID string  `json:"document_id"`
	Content    string  `json:"content"`
	Score      float64 `json:"score"`
}

// ChatRequest is the request to send a chat message
type ChatRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Message   string `json:"message" binding:"required"`
}

// ChatResponse is the response from a chat message
type ChatResponse struct {
	SessionID string    `json:"session_id"`
	Intent    string    `json:"intent"`
	Answer    string    `json:"answer"`
	Sources   []Source  `json:"sources,omitempty"`
	Artifact  *Artifact `json:"artifact,omitempty"`
	Warning   string    `json:"warning,omitempty"`
}

// Artifact carries simulation output for the UI to render. The core never
// draws anything itself; it hands the raw series over.
type Artifact struct {
	Kind   string       `json:"kind"` // logistic_series, lorenz_trajectory
	Series []float64    `json:"series,omitempty"`
	Points [][3]float64 `json:"points,omitempty"`
}

// SimulateRequest is the request for a direct simulation run, bypassing the
// conversational route.
type SimulateRequest struct {
	Model    string   `json:"model" binding:"required"` // logistic, lorenz
	R        *float64 `json:"r,omitempty"`
	Steps    int      `json:"steps,omitempty"`
	Duration float64  `json:"duration,omitempty"`
}

// SimulateResponse is the response from a direct simulation run
type SimulateResponse struct {
	Summary  string    `json:"summary"`
	Artifact *Artifact `json:"artifact"`
}

// Stats represents system statistics
type Stats struct {
	TotalSessions  int  `json:"total_sessions"`
	TotalMessages  int  `json:"total_messages"`
	TotalDocuments int  `json:"total_documents"`
	IndexReady     bool `json:"index_ready"`
}
