package internal

import "time"

// Role identifies the author of a conversation entry.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Document is the text extracted from an uploaded file together with the
// language detected from its leading excerpt.
type Document struct {
	Name     string    `json:"name"`
	Text     string    `json:"-"`
	Language string    `json:"language"`
	Loaded   time.Time `json:"loaded"`
}

// ConversationEntry is one turn of the session's chat log. Entries are
// appended and never mutated.
type ConversationEntry struct {
	Role    Role      `json:"role"`
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

// ModelAnswer is the output of one generation backend for one query.
type ModelAnswer struct {
	Model    string `json:"model"`
	Label    string `json:"label"`
	Text     string `json:"text"`
	Language string `json:"language"`
	// Degraded is set when Text is the sentinel rather than a model answer.
	Degraded bool `json:"degraded"`
}

// Verdict is derived per query from the two raw answers.
type Verdict struct {
	Score  float64 `json:"score"`
	Winner string  `json:"winner"`
}

// QueryRecord is the persisted audit entry for an answered query.
type QueryRecord struct {
	ID            string    `json:"id"`
	SessionID     string    `json:"session_id"`
	DocumentName  string    `json:"document_name"`
	Question      string    `json:"question"`
	QueryLang     string    `json:"query_lang"`
	TargetLang    string    `json:"target_lang"`
	PrimaryText   string    `json:"primary_text"`
	SecondaryText string    `json:"secondary_text"`
	Score         float64   `json:"score"`
	Winner        string    `json:"winner"`
	Timestamp     time.Time `json:"timestamp"`
}
