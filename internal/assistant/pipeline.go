// Package assistant answers questions about a loaded legal document. A
// Session holds the document and conversation; the Pipeline runs one
// question through translation, both models, output-language enforcement,
// scoring and the verdict.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/valpere/legalease/internal"
	"github.com/valpere/legalease/internal/detector"
	"github.com/valpere/legalease/internal/generator"
	"github.com/valpere/legalease/internal/intent"
	"github.com/valpere/legalease/internal/logging"
	"github.com/valpere/legalease/internal/metrics"
	"github.com/valpere/legalease/internal/orchestrator"
	"github.com/valpere/legalease/internal/scorer"
	"github.com/valpere/legalease/internal/translator"
	"github.com/valpere/legalease/internal/verdict"
)

var (
	ErrNoDocument = errors.New("no document loaded")
	ErrEmptyQuery = errors.New("question is empty")
)

// DefaultSampleSize is how many leading runes of a document are used to
// detect its language.
const DefaultSampleSize = 1000

type Detector interface {
	Detect(text string) string
}

type Translator interface {
	Translate(ctx context.Context, text, target, source string) (string, error)
}

// Answerer fans a question out to the models, results in model order.
type Answerer interface {
	Models() []orchestrator.Model
	Execute(ctx context.Context, req orchestrator.Request) []orchestrator.Result
}

// Enforcer returns text in the target language and the language detected
// before any translation.
type Enforcer interface {
	Enforce(ctx context.Context, text, target string) (string, string, error)
}

type QueryLogger interface {
	LogQuery(ctx context.Context, rec internal.QueryRecord) error
}

type Pipeline struct {
	detector   Detector
	translator Translator
	answerer   Answerer
	enforcer   Enforcer
	intents    intent.Table
	queryLog   QueryLogger
	sampleSize int
	logger     *zap.Logger
}

type PipelineOption func(*Pipeline)

func WithQueryLog(l QueryLogger) PipelineOption {
	return func(p *Pipeline) { p.queryLog = l }
}

func WithIntentTable(t intent.Table) PipelineOption {
	return func(p *Pipeline) { p.intents = t }
}

func WithSampleSize(n int) PipelineOption {
	return func(p *Pipeline) {
		if n > 0 {
			p.sampleSize = n
		}
	}
}

func WithLogger(l *zap.Logger) PipelineOption {
	return func(p *Pipeline) { p.logger = logging.OrNop(l) }
}

// NewPipeline wires the answering steps. The answerer must serve exactly
// two models: the primary answer and the comparison answer.
func NewPipeline(det Detector, tr Translator, ans Answerer, enf Enforcer, opts ...PipelineOption) (*Pipeline, error) {
	if n := len(ans.Models()); n != 2 {
		return nil, fmt.Errorf("pipeline needs exactly 2 models, got %d", n)
	}
	p := &Pipeline{
		detector:   det,
		translator: tr,
		answerer:   ans,
		enforcer:   enf,
		intents:    intent.DefaultTable,
		sampleSize: DefaultSampleSize,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// DocumentLanguage detects the language of the leading sample of text.
func (p *Pipeline) DocumentLanguage(text string) string {
	return p.detector.Detect(detector.Sample(text, p.sampleSize))
}

// TargetLanguage is the language explicitly requested in question, or the
// document's language.
func (p *Pipeline) TargetLanguage(question, docLang string) string {
	if code, ok := p.intents.Extract(question); ok {
		return code
	}
	if docLang == "" {
		return detector.DefaultLanguage
	}
	return docLang
}

// Answer runs one question against doc. It fails only on an empty question;
// model and translation failures degrade to display text in the Reply.
func (p *Pipeline) Answer(ctx context.Context, doc internal.Document, question string) (*Reply, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrEmptyQuery
	}

	reply := &Reply{
		Question:  question,
		QueryLang: p.detector.Detect(question),
	}
	reply.TargetLang = p.TargetLanguage(question, doc.Language)

	reply.EnglishQuery = question
	if reply.QueryLang != "en" || reply.TargetLang != "en" {
		q, err := p.translator.Translate(ctx, question, "en", reply.QueryLang)
		if err != nil {
			reply.Notices = append(reply.Notices, translator.Diagnostic("en", err))
			p.logger.Warn("question translation failed, asking in the original language", zap.Error(err))
		} else {
			reply.EnglishQuery = q
		}
	}

	results := p.answerer.Execute(ctx, orchestrator.Request{
		Context:    doc.Text,
		Question:   reply.EnglishQuery,
		OutputLang: reply.TargetLang,
	})

	answers := make([]internal.ModelAnswer, len(results))
	raw := make([]string, len(results))
	for i, r := range results {
		answers[i] = internal.ModelAnswer{Model: r.Model.Name, Label: r.Model.Label, Text: r.Text}
		if r.Err != nil {
			p.logger.Warn("model gave no valid answer", zap.String("model", r.Model.Name), zap.Error(r.Err))
			answers[i].Text = generator.Sentinel
			answers[i].Degraded = true
		}
		raw[i] = answers[i].Text
	}
	p.logger.Debug("models answered",
		zap.Int("succeeded", orchestrator.Succeeded(results)),
		zap.Int("total", len(results)))

	for i := range answers {
		if answers[i].Degraded {
			continue
		}
		text, detected, err := p.enforcer.Enforce(ctx, answers[i].Text, reply.TargetLang)
		if err != nil {
			p.logger.Warn("output language enforcement failed",
				zap.String("model", answers[i].Model),
				zap.String("detected", detected),
				zap.Error(err))
			answers[i].Text = translator.Diagnostic(reply.TargetLang, err)
			answers[i].Language = detected
			continue
		}
		answers[i].Text = text
		answers[i].Language = reply.TargetLang
	}

	reply.Primary, reply.Secondary = answers[0], answers[1]
	reply.RawPrimary, reply.RawSecondary = raw[0], raw[1]
	reply.Verdict = internal.Verdict{
		Score:  scorer.Score(raw[0], raw[1]),
		Winner: verdict.SelectLabels(raw[0], raw[1], answers[0].Label, answers[1].Label),
	}

	metrics.QueriesAnswered.Inc()
	metrics.VerdictWinners.WithLabelValues(reply.Verdict.Winner).Inc()
	metrics.ReliabilityScore.Observe(reply.Verdict.Score)

	return reply, nil
}

func (p *Pipeline) logQuery(ctx context.Context, sessionID string, doc internal.Document, reply *Reply) {
	if p.queryLog == nil {
		return
	}
	err := p.queryLog.LogQuery(ctx, internal.QueryRecord{
		SessionID:     sessionID,
		DocumentName:  doc.Name,
		Question:      reply.Question,
		QueryLang:     reply.QueryLang,
		TargetLang:    reply.TargetLang,
		PrimaryText:   reply.RawPrimary,
		SecondaryText: reply.RawSecondary,
		Score:         reply.Verdict.Score,
		Winner:        reply.Verdict.Winner,
		Timestamp:     time.Now(),
	})
	if err != nil {
		p.logger.Warn("failed to log query", zap.Error(err))
	}
}
