package rules

import (
	"fmt"
	"strings"

	"nyiyui.ca/hato/kensa/plan"
)

// isolatedShown is how many unreachable edges a message names.
const isolatedShown = 3

// Connectivity checks that all edges form one connected component.
// Connections naming unknown edges are ignored.
type Connectivity struct{}

func (Connectivity) Name() string { return "connectivity" }
func (Connectivity) Kind() Kind   { return Blocking }

func (Connectivity) Check(p *plan.Plan) Outcome {
	ids := p.EdgeIDs()
	if len(ids) == 0 {
		return Outcome{Score: 1}
	}
	adjacency := make(map[string][]string, len(ids))
	for _, id := range ids {
		adjacency[id] = nil
	}
	for _, c := range p.ConnectionList() {
		_, ok1 := adjacency[c.Edge1ID]
		_, ok2 := adjacency[c.Edge2ID]
		if !ok1 || !ok2 {
			continue
		}
		adjacency[c.Edge1ID] = append(adjacency[c.Edge1ID], c.Edge2ID)
		adjacency[c.Edge2ID] = append(adjacency[c.Edge2ID], c.Edge1ID)
	}

	visited := reachable(adjacency, ids[0])

	var isolated []string
	seen := map[string]bool{}
	for _, id := range ids {
		if visited[id] || seen[id] {
			continue
		}
		seen[id] = true
		isolated = append(isolated, id)
	}
	var msgs []string
	if len(isolated) > 0 {
		shown := isolated
		more := ""
		if len(shown) > isolatedShown {
			shown = shown[:isolatedShown]
			more = "..."
		}
		msgs = append(msgs, fmt.Sprintf(
			"not connected: %d edge(s) are isolated: %s%s",
			len(isolated), strings.Join(shown, ", "), more,
		))
	}
	return Outcome{
		Score:    float64(len(visited)) / float64(len(ids)),
		Messages: msgs,
	}
}

// reachable runs a breadth-first search from start.
func reachable(adjacency map[string][]string, start string) map[string]bool {
	visited := map[string]bool{start: true}
	queue := make([]string, 0, len(adjacency))
	queue = append(queue, start)
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, next := range adjacency[current] {
			if visited[next] {
				continue
			}
			visited[next] = true
			queue = append(queue, next)
		}
	}
	return visited
}
