package assistant

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/valpere/legalease/internal"
	"github.com/valpere/legalease/internal/extractor"
	"github.com/valpere/legalease/internal/generator"
	"github.com/valpere/legalease/internal/orchestrator"
	"github.com/valpere/legalease/internal/validator"
	"github.com/valpere/legalease/internal/verdict"
)

// prefixDetector reports "fr" for texts starting with "FR:", "uk" for
// "UK:" and "en" otherwise.
type prefixDetector struct{}

func (prefixDetector) Detect(text string) string {
	switch {
	case strings.HasPrefix(text, "FR:"):
		return "fr"
	case strings.HasPrefix(text, "UK:"):
		return "uk"
	default:
		return "en"
	}
}

type fakeTranslator struct {
	mu    sync.Mutex
	err   error
	calls []string
}

func (f *fakeTranslator) Translate(_ context.Context, text, target, source string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if text == "" || source == target {
		return text, nil
	}
	f.calls = append(f.calls, source+">"+target+":"+text)
	if f.err != nil {
		return "", f.err
	}
	if target == "en" {
		return "EN(" + text + ")", nil
	}
	return strings.ToUpper(target) + ":" + text, nil
}

type scriptedGenerator struct {
	mu       sync.Mutex
	answers  map[string]string
	failing  map[string]bool
	requests []string
}

func (g *scriptedGenerator) Generate(_ context.Context, model, docContext, question, outputLang string) (string, error) {
	g.mu.Lock()
	g.requests = append(g.requests, model+"|"+outputLang+"|"+question)
	g.mu.Unlock()
	if g.failing[model] {
		return "", generator.ErrNoValidResponse
	}
	return g.answers[model], nil
}

type memoryLog struct {
	records []internal.QueryRecord
}

func (m *memoryLog) LogQuery(_ context.Context, rec internal.QueryRecord) error {
	m.records = append(m.records, rec)
	return nil
}

var testModels = []orchestrator.Model{
	{Name: "llama3", Label: verdict.PrimaryLabel},
	{Name: "gemma", Label: verdict.SecondaryLabel},
}

const (
	shortAnswer = "the court held the tenant liable"
	longAnswer  = "the court held the tenant liable and the tenant must pay damages"
	document    = "Contract dated 2020. The tenant is liable and shall pay damages."
)

type fixture struct {
	gen      *scriptedGenerator
	tr       *fakeTranslator
	log      *memoryLog
	pipeline *Pipeline
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		gen: &scriptedGenerator{answers: map[string]string{
			"llama3": shortAnswer,
			"gemma":  longAnswer,
		}},
		tr:  &fakeTranslator{},
		log: &memoryLog{},
	}
	det := prefixDetector{}
	orch := orchestrator.New(f.gen, testModels, orchestrator.Config{Timeout: time.Second})

	p, err := NewPipeline(det, f.tr, orch, validator.New(det, f.tr),
		WithQueryLog(f.log),
		WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	f.pipeline = p
	return f
}

func TestSession_EndToEnd(t *testing.T) {
	f := newFixture(t)
	s := NewSession("s1", f.pipeline)
	assert.Equal(t, StateNoDocument, s.State())

	doc, err := s.LoadDocument("contract.pdf", "  "+document+"\n")
	require.NoError(t, err)
	assert.Equal(t, "en", doc.Language)
	assert.Equal(t, document, doc.Text)
	assert.Equal(t, StateAwaitingQuery, s.State())

	reply, err := s.Ask(context.Background(), "What is the verdict?")
	require.NoError(t, err)

	assert.Equal(t, "en", reply.QueryLang)
	assert.Equal(t, "en", reply.TargetLang)
	assert.Equal(t, "What is the verdict?", reply.EnglishQuery)
	assert.Empty(t, f.tr.calls)

	assert.Equal(t, shortAnswer, reply.Primary.Text)
	assert.Equal(t, longAnswer, reply.Secondary.Text)
	assert.Equal(t, "Gemma", reply.Verdict.Winner)
	// Shared terms weigh 1, the four unique terms 1+ln(1.5):
	// cos = 11 / sqrt(8 * (16 + 4w^2)) = 0.79549
	assert.Equal(t, 79.55, reply.Verdict.Score)

	md := reply.Markdown()
	assert.Contains(t, md, "Reliability Score: 79.55%")
	assert.Contains(t, md, "Final Judgment: Gemma's answer is more informative and reliable.")
	assert.Contains(t, md, "#### LLaMA 3 Answer:")

	conv := s.Conversation()
	require.Len(t, conv, 2)
	assert.Equal(t, internal.RoleUser, conv[0].Role)
	assert.Equal(t, "What is the verdict?", conv[0].Content)
	assert.Equal(t, internal.RoleAssistant, conv[1].Role)
	assert.Equal(t, md, conv[1].Content)

	require.Len(t, f.log.records, 1)
	assert.Equal(t, "s1", f.log.records[0].SessionID)
	assert.Equal(t, "contract.pdf", f.log.records[0].DocumentName)
	assert.Equal(t, "Gemma", f.log.records[0].Winner)
}

func TestSession_AskWithoutDocument(t *testing.T) {
	f := newFixture(t)
	s := NewSession("s1", f.pipeline)

	_, err := s.Ask(context.Background(), "What is the verdict?")
	assert.ErrorIs(t, err, ErrNoDocument)
	assert.Empty(t, f.gen.requests)
	assert.Empty(t, s.Conversation())
}

func TestSession_EmptyQuestion(t *testing.T) {
	f := newFixture(t)
	s := NewSession("s1", f.pipeline)
	_, err := s.LoadDocument("a.pdf", document)
	require.NoError(t, err)

	_, err = s.Ask(context.Background(), "   \n")
	assert.ErrorIs(t, err, ErrEmptyQuery)
	assert.Empty(t, f.gen.requests)
	assert.Equal(t, StateAwaitingQuery, s.State())
}

func TestSession_LoadEmptyDocument(t *testing.T) {
	f := newFixture(t)
	s := NewSession("s1", f.pipeline)

	_, err := s.LoadDocument("scan.pdf", " \n\t ")
	assert.ErrorIs(t, err, extractor.ErrNoText)
	assert.Equal(t, StateNoDocument, s.State())

	_, err = s.LoadDocument("a.pdf", document)
	require.NoError(t, err)
	_, err = s.LoadDocument("scan.pdf", "")
	assert.ErrorIs(t, err, extractor.ErrNoText)

	doc, ok := s.Document()
	require.True(t, ok)
	assert.Equal(t, "a.pdf", doc.Name)
}

func TestSession_ResetKeepsDocument(t *testing.T) {
	f := newFixture(t)
	s := NewSession("s1", f.pipeline)
	_, err := s.LoadDocument("contrat.pdf", "FR: Le locataire est responsable.")
	require.NoError(t, err)
	_, err = s.Ask(context.Background(), "Who pays?")
	require.NoError(t, err)
	require.Len(t, s.Conversation(), 2)

	s.Reset()

	assert.Empty(t, s.Conversation())
	doc, ok := s.Document()
	require.True(t, ok)
	assert.Equal(t, "contrat.pdf", doc.Name)
	assert.Equal(t, "fr", doc.Language)
	assert.Equal(t, StateAwaitingQuery, s.State())

	_, err = s.Ask(context.Background(), "Who pays now?")
	require.NoError(t, err)
	assert.Len(t, s.Conversation(), 2)
}

func TestSession_NewUploadResetsConversation(t *testing.T) {
	f := newFixture(t)
	s := NewSession("s1", f.pipeline)
	_, err := s.LoadDocument("a.pdf", document)
	require.NoError(t, err)
	_, err = s.Ask(context.Background(), "What is the verdict?")
	require.NoError(t, err)

	doc, err := s.LoadDocument("b.pdf", "UK: Орендар сплачує збитки.")
	require.NoError(t, err)
	assert.Equal(t, "uk", doc.Language)
	assert.Empty(t, s.Conversation())
}

func TestPipeline_DocumentLanguageTarget(t *testing.T) {
	f := newFixture(t)
	s := NewSession("s1", f.pipeline)
	_, err := s.LoadDocument("contrat.pdf", "FR: Le locataire est responsable.")
	require.NoError(t, err)

	reply, err := s.Ask(context.Background(), "Who is liable?")
	require.NoError(t, err)

	assert.Equal(t, "en", reply.QueryLang)
	assert.Equal(t, "fr", reply.TargetLang)
	// Answers come back in English and are enforced into French.
	assert.Equal(t, "FR:"+shortAnswer, reply.Primary.Text)
	assert.Equal(t, "FR:"+longAnswer, reply.Secondary.Text)
	assert.Equal(t, "fr", reply.Primary.Language)

	// The verdict uses the answers before enforcement.
	assert.Equal(t, shortAnswer, reply.RawPrimary)
	assert.Equal(t, 79.55, reply.Verdict.Score)

	for _, r := range f.gen.requests {
		assert.Contains(t, r, "|fr|")
	}
}

func TestPipeline_ExplicitLanguageRequest(t *testing.T) {
	f := newFixture(t)
	doc := internal.Document{Name: "a.pdf", Text: document, Language: "en"}

	reply, err := f.pipeline.Answer(context.Background(), doc, "Who is liable? Please answer in German")
	require.NoError(t, err)

	assert.Equal(t, "de", reply.TargetLang)
	// An English question is already in English; only the output changes.
	assert.Equal(t, "Who is liable? Please answer in German", reply.EnglishQuery)
	assert.Equal(t, "DE:"+shortAnswer, reply.Primary.Text)
}

func TestPipeline_NonEnglishQuestion(t *testing.T) {
	f := newFixture(t)
	doc := internal.Document{Name: "a.pdf", Text: document, Language: "en"}

	reply, err := f.pipeline.Answer(context.Background(), doc, "UK: Хто відповідає?")
	require.NoError(t, err)

	assert.Equal(t, "uk", reply.QueryLang)
	assert.Equal(t, "en", reply.TargetLang)
	assert.Equal(t, "EN(UK: Хто відповідає?)", reply.EnglishQuery)
	assert.Contains(t, f.tr.calls, "uk>en:UK: Хто відповідає?")
}

func TestPipeline_QuestionTranslationFails(t *testing.T) {
	f := newFixture(t)
	f.tr.err = errors.New("quota exceeded")
	doc := internal.Document{Name: "a.pdf", Text: document, Language: "en"}

	reply, err := f.pipeline.Answer(context.Background(), doc, "UK: Хто відповідає?")
	require.NoError(t, err)

	assert.Equal(t, "UK: Хто відповідає?", reply.EnglishQuery)
	require.Len(t, reply.Notices, 1)
	assert.Equal(t, "Translation to en failed: quota exceeded", reply.Notices[0])
}

func TestPipeline_EnforcementFailureShowsDiagnostic(t *testing.T) {
	f := newFixture(t)
	f.tr.err = errors.New("no backend")
	doc := internal.Document{Name: "a.pdf", Text: document, Language: "fr"}

	reply, err := f.pipeline.Answer(context.Background(), doc, "Who is liable?")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(reply.Primary.Text, "Translation to fr failed: "), reply.Primary.Text)
	assert.Contains(t, reply.Primary.Text, "no backend")
	assert.Equal(t, 79.55, reply.Verdict.Score)
}

func TestPipeline_DegradedModel(t *testing.T) {
	f := newFixture(t)
	f.gen.failing = map[string]bool{"gemma": true}
	doc := internal.Document{Name: "a.pdf", Text: document, Language: "fr"}

	reply, err := f.pipeline.Answer(context.Background(), doc, "Who is liable?")
	require.NoError(t, err)

	assert.True(t, reply.Secondary.Degraded)
	assert.Equal(t, generator.Sentinel, reply.Secondary.Text)
	assert.Equal(t, generator.Sentinel, reply.RawSecondary)
	// The sentinel is never sent for translation.
	for _, c := range f.tr.calls {
		assert.NotContains(t, c, generator.Sentinel)
	}
	assert.Equal(t, "LLaMA 3", reply.Verdict.Winner)
	assert.Equal(t, 0.0, reply.Verdict.Score)
	assert.Contains(t, reply.Markdown(), "Reliability Score: 0.0%")
}

func TestPipeline_BothModelsFail(t *testing.T) {
	f := newFixture(t)
	f.gen.failing = map[string]bool{"llama3": true, "gemma": true}
	doc := internal.Document{Name: "a.pdf", Text: document, Language: "en"}

	reply, err := f.pipeline.Answer(context.Background(), doc, "Who is liable?")
	require.NoError(t, err)

	assert.Equal(t, 100.0, reply.Verdict.Score)
	assert.Equal(t, "LLaMA 3", reply.Verdict.Winner)
}

func TestNewPipeline_RequiresTwoModels(t *testing.T) {
	orch := orchestrator.New(&scriptedGenerator{}, testModels[:1], orchestrator.Config{})
	_, err := NewPipeline(prefixDetector{}, &fakeTranslator{}, orch, nil)
	assert.Error(t, err)
}

func TestPipeline_DocumentLanguageSample(t *testing.T) {
	var seen string
	det := detectorFunc(func(text string) string { seen = text; return "de" })
	orch := orchestrator.New(&scriptedGenerator{}, testModels, orchestrator.Config{})
	p, err := NewPipeline(det, &fakeTranslator{}, orch, nil, WithSampleSize(5))
	require.NoError(t, err)

	assert.Equal(t, "de", p.DocumentLanguage("Schadensersatz"))
	assert.Equal(t, "Schad", seen)
}

type detectorFunc func(string) string

func (f detectorFunc) Detect(text string) string { return f(text) }

func TestFormatScore(t *testing.T) {
	assert.Equal(t, "60.3", FormatScore(60.3))
	assert.Equal(t, "100.0", FormatScore(100))
	assert.Equal(t, "0.0", FormatScore(0))
	assert.Equal(t, "79.55", FormatScore(79.55))
}

func TestPipeline_LogsAnsweredModels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	gen := &scriptedGenerator{
		answers: map[string]string{"llama3": shortAnswer},
		failing: map[string]bool{"gemma": true},
	}
	orch := orchestrator.New(gen, testModels, orchestrator.Config{Timeout: time.Second})
	det, tr := prefixDetector{}, &fakeTranslator{}
	p, err := NewPipeline(det, tr, orch, validator.New(det, tr), WithLogger(zap.New(core)))
	require.NoError(t, err)

	_, err = p.Answer(context.Background(), internal.Document{Text: document, Language: "en"}, "Who is liable?")
	require.NoError(t, err)

	entries := logs.FilterMessage("models answered").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.EqualValues(t, 1, fields["succeeded"])
	assert.EqualValues(t, 2, fields["total"])
}
