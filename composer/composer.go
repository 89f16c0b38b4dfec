package composer

import (
	"go.uber.org/zap"

	"github.com/agriq-org/agriq/engine"
	"github.com/agriq-org/agriq/query"
)

// ============================================================================
// COMPOSER — Question In, Composed Answer Out
// ============================================================================
// The composer is the one front door: it segments and parses the
// question, executes each bound intent, and assembles the fragments in
// the order the sub-questions appeared. Parse failures become failed
// fragments here, so the caller sees one uniform shape.
// ============================================================================

// Status summarizes a composed answer.
type Status string

const (
	StatusComplete Status = "complete" // every fragment answered
	StatusPartial  Status = "partial"  // some fragments answered
	StatusFailed   Status = "failed"   // no fragment answered
)

// ComposedAnswer is the full response to one free-text question.
// Fragments appear in sub-question order.
type ComposedAnswer struct {
	Question  string             `json:"question"`
	Status    Status             `json:"status"`
	Fragments []*engine.Fragment `json:"fragments"`
}

// Composer wires the parser to the executor.
type Composer struct {
	parser *query.Parser
	exec   *engine.Executor
	log    *zap.Logger
}

// Option configures a Composer.
type Option func(*Composer)

// WithLogger sets the composition logger. Defaults to a no-op logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *Composer) { c.log = log }
}

// New creates a composer.
func New(parser *query.Parser, exec *engine.Executor, opts ...Option) *Composer {
	c := &Composer{parser: parser, exec: exec, log: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Answer parses and executes a free-text question. Per-fragment
// problems degrade only their fragment; the returned error is non-nil
// only when the dataset itself cannot be built, which no fragment can
// survive.
func (c *Composer) Answer(question string) (*ComposedAnswer, error) {
	parsed := c.parser.Parse(question)

	out := &ComposedAnswer{Question: question}
	answered := 0
	for _, p := range parsed {
		if p.Err != nil {
			out.Fragments = append(out.Fragments,
				engine.Failed(p.Segment, "", failureCode(p.Err.Kind), p.Err.Reason))
			continue
		}
		frag, err := c.exec.Execute(p.Intent)
		if err != nil {
			return nil, err
		}
		if frag.OK {
			answered++
		}
		out.Fragments = append(out.Fragments, frag)
	}

	switch {
	case answered == len(out.Fragments):
		out.Status = StatusComplete
	case answered == 0:
		out.Status = StatusFailed
	default:
		out.Status = StatusPartial
	}

	c.log.Info("question answered",
		zap.String("question", question),
		zap.String("status", string(out.Status)),
		zap.Int("fragments", len(out.Fragments)),
		zap.Int("answered", answered))
	return out, nil
}

// failureCode maps a parse failure onto the engine's failure codes.
func failureCode(kind query.ErrKind) engine.FailureCode {
	if kind == query.ErrUnresolvedEntity {
		return engine.FailUnresolvedEntity
	}
	return engine.FailUnrecognizedIntent
}
