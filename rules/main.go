// Package rules checks a track plan for geometric and topological plausibility.
//
// Each rule is a Checker: a pure function of the plan that returns a score in [0, 1] and a list of messages.
// An Engine runs its checkers in a fixed order and merges their outcomes into one Result.
package rules

import (
	"fmt"

	"github.com/sourcegraph/conc/iter"
	"go.uber.org/zap"
	"nyiyui.ca/hato/kensa/catalog"
	"nyiyui.ca/hato/kensa/plan"
)

// Kind decides where a checker's messages end up.
type Kind int

const (
	// Blocking messages are violations; any violation makes a plan invalid.
	Blocking Kind = iota
	// Advisory messages are suggestions and never make a plan invalid.
	Advisory
)

func (k Kind) String() string {
	switch k {
	case Blocking:
		return "blocking"
	case Advisory:
		return "advisory"
	default:
		return fmt.Sprint(int(k))
	}
}

type Checker interface {
	Name() string
	Kind() Kind
	Check(p *plan.Plan) Outcome
}

type Outcome struct {
	// Score is in [0, 1].
	Score    float64
	Messages []string
}

// Result is the verdict on one plan. Its JSON form is the output record.
type Result struct {
	IsValid     bool     `json:"is_valid"`
	Score       float64  `json:"score"`
	Violations  []string `json:"violations"`
	Suggestions []string `json:"suggestions"`
	// Rules has one entry per checker, in dispatch order.
	Rules []RuleScore `json:"-"`
}

type RuleScore struct {
	Name     string
	Kind     Kind
	Score    float64
	Messages int
}

type Engine struct {
	checkers   []Checker
	concurrent bool
}

type Option func(e *Engine)

// WithCheckers replaces the default rule set.
func WithCheckers(checkers ...Checker) Option {
	return func(e *Engine) {
		e.checkers = checkers
	}
}

// Concurrent makes the engine run its checkers in parallel. The result is the same as a sequential run.
func Concurrent() Option {
	return func(e *Engine) {
		e.concurrent = true
	}
}

// Default returns the built-in rules in dispatch order.
func Default(c catalog.Catalog) []Checker {
	return []Checker{
		Alignment{Catalog: c},
		Overlap{Catalog: c},
		Connectivity{},
		LoopClosure{},
		AngleQuantization{Catalog: c},
	}
}

func New(c catalog.Catalog, opts ...Option) (*Engine, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{checkers: Default(c.Clone())}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

func (e *Engine) Checkers() []Checker {
	return e.checkers
}

func (e *Engine) Evaluate(p *plan.Plan) Result {
	var outcomes []Outcome
	if e.concurrent {
		outcomes = iter.Map(e.checkers, func(c *Checker) Outcome {
			return (*c).Check(p)
		})
	} else {
		outcomes = make([]Outcome, len(e.checkers))
		for i, c := range e.checkers {
			outcomes[i] = c.Check(p)
		}
	}

	r := Result{
		Violations:  []string{},
		Suggestions: []string{},
		Rules:       make([]RuleScore, 0, len(e.checkers)),
	}
	var sum float64
	for i, c := range e.checkers {
		o := outcomes[i]
		zap.S().Debugw("rule evaluated",
			"rule", c.Name(),
			"score", o.Score,
			"messages", len(o.Messages))
		sum += o.Score
		switch c.Kind() {
		case Advisory:
			r.Suggestions = append(r.Suggestions, o.Messages...)
		default:
			r.Violations = append(r.Violations, o.Messages...)
		}
		r.Rules = append(r.Rules, RuleScore{
			Name:     c.Name(),
			Kind:     c.Kind(),
			Score:    o.Score,
			Messages: len(o.Messages),
		})
	}
	if len(e.checkers) > 0 {
		r.Score = sum / float64(len(e.checkers))
	}
	r.IsValid = len(r.Violations) == 0
	return r
}
