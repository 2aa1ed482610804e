package assistant

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/valpere/legalease/internal"
	"github.com/valpere/legalease/internal/extractor"
)

type State int

const (
	StateNoDocument State = iota
	StateDocumentLoaded
	StateAwaitingQuery
	StateAnswering
	StateAnswered
)

func (s State) String() string {
	switch s {
	case StateNoDocument:
		return "no_document"
	case StateDocumentLoaded:
		return "document_loaded"
	case StateAwaitingQuery:
		return "awaiting_query"
	case StateAnswering:
		return "answering"
	case StateAnswered:
		return "answered"
	default:
		return "unknown"
	}
}

// Session is one user's document and conversation. It is safe for
// concurrent use; operations on one session are serialised.
type Session struct {
	ID string

	mu           sync.Mutex
	pipeline     *Pipeline
	state        State
	doc          *internal.Document
	conversation []internal.ConversationEntry
	lastActive   time.Time
	now          func() time.Time
}

func NewSession(id string, p *Pipeline) *Session {
	s := &Session{ID: id, pipeline: p, state: StateNoDocument, now: time.Now}
	s.lastActive = s.now()
	return s
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LastActive is the time of the most recent operation on the session.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// LoadDocument replaces the session's document and clears the
// conversation. Text without content is rejected with extractor.ErrNoText
// and leaves the session untouched.
func (s *Session) LoadDocument(name, text string) (internal.Document, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return internal.Document{}, extractor.ErrNoText
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc := &internal.Document{Name: name, Text: text, Loaded: s.now()}
	s.doc = doc
	s.conversation = nil
	s.state = StateDocumentLoaded

	doc.Language = s.pipeline.DocumentLanguage(text)
	s.state = StateAwaitingQuery
	s.lastActive = s.now()
	return *doc, nil
}

// Document returns the loaded document, if any.
func (s *Session) Document() (internal.Document, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return internal.Document{}, false
	}
	return *s.doc, true
}

// Ask answers question against the loaded document and appends the
// question and the composite reply to the conversation.
func (s *Session) Ask(ctx context.Context, question string) (*Reply, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.doc == nil {
		return nil, ErrNoDocument
	}
	if strings.TrimSpace(question) == "" {
		return nil, ErrEmptyQuery
	}

	s.state = StateAnswering
	reply, err := s.pipeline.Answer(ctx, *s.doc, question)
	if err != nil {
		s.state = StateAwaitingQuery
		return nil, err
	}

	now := s.now()
	s.conversation = append(s.conversation,
		internal.ConversationEntry{Role: internal.RoleUser, Content: reply.Question, At: now},
		internal.ConversationEntry{Role: internal.RoleAssistant, Content: reply.Markdown(), At: now},
	)
	s.state = StateAnswered
	s.pipeline.logQuery(ctx, s.ID, *s.doc, reply)

	s.state = StateAwaitingQuery
	s.lastActive = now
	return reply, nil
}

// Reset clears the conversation and keeps the document.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversation = nil
	if s.doc != nil {
		s.state = StateAwaitingQuery
	}
	s.lastActive = s.now()
}

// Conversation returns a copy of the conversation log.
func (s *Session) Conversation() []internal.ConversationEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]internal.ConversationEntry, len(s.conversation))
	copy(out, s.conversation)
	return out
}
