package rules

import (
	"fmt"

	"nyiyui.ca/hato/kensa/plan"
)

const (
	closedLoopScore = 1.0
	openPathScore   = 0.8
	openEndsScore   = 0.5
)

// LoopClosure classifies a plan by its number of open ports (ports used by exactly one connection).
// It is a topological proxy only: it does not follow the geometry around a loop.
type LoopClosure struct{}

func (LoopClosure) Name() string { return "loop-closure" }
func (LoopClosure) Kind() Kind   { return Advisory }

// OpenPorts returns the "edge:port" keys used by exactly one connection, in first-seen order.
func OpenPorts(p *plan.Plan) []string {
	counts := map[string]int{}
	var order []string
	count := func(key string) {
		if _, ok := counts[key]; !ok {
			order = append(order, key)
		}
		counts[key]++
	}
	for _, c := range p.ConnectionList() {
		count(c.Key1())
		count(c.Key2())
	}
	open := make([]string, 0, len(order))
	for _, key := range order {
		if counts[key] == 1 {
			open = append(open, key)
		}
	}
	return open
}

func (LoopClosure) Check(p *plan.Plan) Outcome {
	open := OpenPorts(p)
	switch len(open) {
	case 0:
		// A plan without connections lands here too.
		return Outcome{
			Score:    closedLoopScore,
			Messages: []string{"closed loop detected; a geometric closure check is recommended"},
		}
	case 2:
		return Outcome{
			Score:    openPathScore,
			Messages: []string{fmt.Sprintf("two open ends: %s, %s; they could be joined", open[0], open[1])},
		}
	default:
		return Outcome{
			Score:    openEndsScore,
			Messages: []string{fmt.Sprintf("%d open ends found", len(open))},
		}
	}
}
