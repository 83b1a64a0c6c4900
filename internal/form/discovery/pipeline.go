// Package discovery produces the best available field catalog for a
// template through a cascade of increasingly aggressive strategies: the
// AcroForm catalog read, a raw-byte pattern scan, a configurable domain
// lexicon, and finally synthetic numbered placeholders. Stages run in a
// fixed order and the first stage yielding a sufficient field set wins;
// stage outputs are never merged.
package discovery

import (
	"fmt"

	"github.com/docuform/pdf-form-filler/internal/form"
)

// DefaultSufficiencyThreshold is the minimum field count a stage must
// produce to stop the cascade. Deliberately a tunable, not a constant:
// the right value is a product decision.
const DefaultSufficiencyThreshold = 5

// Strategy is one extraction stage. Attempt returns the fields it could
// recover, possibly none. A strategy error is not fatal to discovery;
// the pipeline records it and escalates.
type Strategy interface {
	Name() string
	Attempt(tpl *form.Template, cls form.Classification) ([]form.FieldDescriptor, error)
}

// Pipeline runs the strategy cascade. The placeholder stage sits apart
// from the ordered strategies: it runs only when every real stage came
// back empty, so synthetic fields can never shadow recovered ones.
type Pipeline struct {
	strategies  []Strategy
	placeholder Strategy
	sufficiency int
	reporter    form.Reporter
}

// PipelineOption customizes a Pipeline.
type PipelineOption func(*Pipeline)

// WithSufficiencyThreshold overrides the stage sufficiency gate.
func WithSufficiencyThreshold(n int) PipelineOption {
	return func(p *Pipeline) {
		if n > 0 {
			p.sufficiency = n
		}
	}
}

// WithReporter routes stage diagnostics to the given reporter.
func WithReporter(r form.Reporter) PipelineOption {
	return func(p *Pipeline) {
		if r != nil {
			p.reporter = r
		}
	}
}

// WithLexicon configures the domain-lexicon fallback stage with the
// given field name list. An empty list disables the stage.
func WithLexicon(names []string) PipelineOption {
	return func(p *Pipeline) {
		for i, s := range p.strategies {
			if _, ok := s.(*LexiconStrategy); ok {
				p.strategies[i] = NewLexiconStrategy(names)
			}
		}
	}
}

// NewPipeline builds the standard four-stage cascade.
func NewPipeline(opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		strategies: []Strategy{
			NewAcroFormStrategy(),
			NewPatternScanStrategy(),
			NewLexiconStrategy(DefaultFieldLexicon()),
		},
		placeholder: NewPlaceholderStrategy(),
		sufficiency: DefaultSufficiencyThreshold,
		reporter:    form.NopReporter{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Discover runs the cascade and returns the chosen catalog. It never
// returns an empty catalog and never fails: when no stage reaches the
// sufficiency gate, the largest output wins, with earlier stages winning
// ties, and the placeholder stage guarantees there is always something
// for the mapping UI to show.
func (p *Pipeline) Discover(tpl *form.Template, cls form.Classification) []form.FieldDescriptor {
	var best []form.FieldDescriptor

	for _, strategy := range p.strategies {
		fields, err := strategy.Attempt(tpl, cls)
		if err != nil {
			p.reporter.Diagnostic(fmt.Sprintf("discovery stage %s: %v", strategy.Name(), err))
			continue
		}
		p.reporter.Diagnostic(fmt.Sprintf("discovery stage %s: %d field(s)", strategy.Name(), len(fields)))
		if len(fields) >= p.sufficiency {
			return fields
		}
		if len(fields) > len(best) {
			best = fields
		}
	}
	if len(best) > 0 {
		return best
	}

	fields, err := p.placeholder.Attempt(tpl, cls)
	if err != nil || len(fields) == 0 {
		// The placeholder stage cannot fail in practice; this keeps the
		// no-empty-catalog guarantee even if it somehow does.
		return []form.FieldDescriptor{{Name: "field_1", Type: form.SemanticText}}
	}
	p.reporter.Diagnostic(fmt.Sprintf("discovery stage %s: %d field(s)", p.placeholder.Name(), len(fields)))
	return fields
}
