package receipt

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// Parser runs strategies in priority order and returns the first candidate
// that passes Validate. Priority is the only tie-break.
type Parser struct {
	strategies []Strategy
	logger     zerolog.Logger
}

// Option configures a Parser.
type Option func(*Parser)

// WithStrategies replaces the default strategy order.
func WithStrategies(strategies ...Strategy) Option {
	return func(p *Parser) {
		p.strategies = strategies
	}
}

// WithLogger sets the logger used for per-strategy trace events.
func WithLogger(logger zerolog.Logger) Option {
	return func(p *Parser) {
		p.logger = logger
	}
}

// NewParser creates a parser with the standard, alternative, generic cascade.
func NewParser(opts ...Option) *Parser {
	p := &Parser{
		strategies: DefaultStrategies(),
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// StrategyNames returns the cascade order.
func (p *Parser) StrategyNames() []string {
	names := make([]string, 0, len(p.strategies))
	for _, s := range p.strategies {
		names = append(names, s.Name())
	}
	return names
}

// Parse returns the first validated candidate. If none validates the error
// is a *NoStrategySucceededError listing every attempt.
func (p *Parser) Parse(ctx context.Context, text string) (*ParsedReceipt, error) {
	attempts := make([]Attempt, 0, len(p.strategies))
	for _, s := range p.strategies {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		log := p.logger.With().Str("strategy", s.Name()).Logger()
		log.Debug().Msg("receipt strategy attempt")

		candidate, err := runStrategy(s, text)
		if err != nil {
			log.Warn().Err(err).Msg("receipt strategy errored")
			attempts = append(attempts, Attempt{Strategy: s.Name(), Err: err})
			continue
		}
		if problems := Problems(candidate); len(problems) > 0 {
			log.Debug().Strs("problems", problems).Msg("receipt candidate rejected")
			attempts = append(attempts, Attempt{Strategy: s.Name(), Problems: problems})
			continue
		}

		log.Debug().
			Str("store", candidate.StoreName).
			Float64("total", candidate.TotalAmount).
			Int("items", len(candidate.Items)).
			Msg("receipt candidate accepted")
		return candidate, nil
	}
	return nil, &NoStrategySucceededError{Attempts: attempts}
}

// runStrategy isolates a strategy so that a panic or error inside it only
// costs that strategy its turn.
func runStrategy(s Strategy, text string) (candidate *ParsedReceipt, err error) {
	defer func() {
		if r := recover(); r != nil {
			candidate = nil
			err = &StrategyError{Strategy: s.Name(), Cause: fmt.Errorf("panic: %v", r)}
		}
	}()

	candidate, err = s.Extract(text)
	if err != nil {
		return nil, &StrategyError{Strategy: s.Name(), Cause: err}
	}
	if candidate == nil {
		return nil, &StrategyError{Strategy: s.Name(), Cause: fmt.Errorf("no candidate returned")}
	}
	return candidate, nil
}
