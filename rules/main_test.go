package rules

import (
	"encoding/json"
	"math/rand"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"nyiyui.ca/hato/kensa/catalog"
	"nyiyui.ca/hato/kensa/catalog/preset/kato"
	"nyiyui.ca/hato/kensa/catalog/preset/pikoa"
	"nyiyui.ca/hato/kensa/plan"
)

func mustEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	e, err := New(pikoa.Catalog(), opts...)
	if err != nil {
		t.Fatalf("New: %s", err)
	}
	return e
}

// ringPlan is a connected plan with every rule passing except loop closure.
func ringPlan() *plan.Plan {
	return &plan.Plan{
		Edges: edges("a", "b", "c", "d"),
		Positions: map[string]plan.Position{
			"a": {X: 0, Y: 0},
			"b": {X: 231, Y: 0},
			"c": {X: 231, Y: 231},
			"d": {X: 0, Y: 231},
		},
		Rotations: map[string]float64{"a": 0, "b": 180, "c": 0, "d": 180},
		Connections: []plan.Connection{
			conn("a", "A", "b", "A"),
			conn("b", "A", "c", "A"),
			conn("c", "A", "d", "A"),
		},
	}
}

func TestScenarioA(t *testing.T) {
	p := &plan.Plan{
		Edges: edges("edge1", "edge2"),
		Positions: map[string]plan.Position{
			"edge1": {X: 0, Y: 0},
			"edge2": {X: 100, Y: 0},
		},
		Rotations:   map[string]float64{"edge1": 0, "edge2": 180},
		Connections: []plan.Connection{conn("edge1", "B", "edge2", "A")},
	}
	r := mustEngine(t).Evaluate(p)
	expected := []string{"port alignment: edge1.B (30.0°) and edge2.A (180.0°) do not face each other (off by 30.0°, tolerance 5.0°)"}
	if diff := cmp.Diff(expected, r.Violations); diff != "" {
		t.Fatalf("violations diff: %s", diff)
	}
	if r.IsValid {
		t.Fatal("expected invalid")
	}
	if diff := cmp.Diff([]string{"two open ends: edge1:B, edge2:A; they could be joined"}, r.Suggestions); diff != "" {
		t.Fatalf("suggestions diff: %s", diff)
	}
	// (0 + 1 + 1 + 0.8 + 1) / 5
	if r.Score < 0.7599 || r.Score > 0.7601 {
		t.Fatalf("expected score 0.76, got %g", r.Score)
	}
}

func TestScenarioB(t *testing.T) {
	r := mustEngine(t).Evaluate(&plan.Plan{Edges: edges("only")})
	if !r.IsValid || r.Score != 1 {
		t.Fatalf("expected valid with score 1, got %#v", r)
	}
	expected := []RuleScore{
		{"port-alignment", Blocking, 1, 0},
		{"overlap", Blocking, 1, 0},
		{"connectivity", Blocking, 1, 0},
		{"loop-closure", Advisory, 1, 1},
		{"angle-quantization", Blocking, 1, 0},
	}
	if diff := cmp.Diff(expected, r.Rules); diff != "" {
		t.Fatalf("rules diff: %s", diff)
	}
	if len(r.Suggestions) != 1 || !strings.HasPrefix(r.Suggestions[0], "closed loop detected") {
		t.Fatalf("expected closed-loop advisory, got %#v", r.Suggestions)
	}
}

func TestScenarioC(t *testing.T) {
	p := &plan.Plan{
		Edges: edges("e1", "e2"),
		Positions: map[string]plan.Position{
			"e1": {X: 0, Y: 0},
			"e2": {X: 10, Y: 0},
		},
	}
	o := Overlap{Catalog: pikoa.Catalog()}.Check(p)
	if len(o.Messages) != 1 {
		t.Fatalf("expected 1 overlap violation, got %#v", o.Messages)
	}
	r := mustEngine(t).Evaluate(p)
	if r.IsValid {
		t.Fatal("expected invalid")
	}
	if r.Violations[0] != o.Messages[0] {
		t.Fatalf("expected overlap violation first, got %#v", r.Violations)
	}
}

func TestScenarioD(t *testing.T) {
	e := mustEngine(t)
	if r := e.Evaluate(&plan.Plan{Rotations: map[string]float64{"e1": 17}}); !r.IsValid {
		t.Fatalf("17° must be accepted: %#v", r.Violations)
	}
	if r := e.Evaluate(&plan.Plan{Rotations: map[string]float64{"e1": 22}}); r.IsValid {
		t.Fatal("22° must be rejected")
	}
}

func TestEmptyPlan(t *testing.T) {
	e := mustEngine(t)
	for _, p := range []*plan.Plan{nil, {}} {
		r := e.Evaluate(p)
		if !r.IsValid || r.Score != 1 {
			t.Fatalf("expected valid with score 1, got %#v", r)
		}
		data, err := json.Marshal(r)
		if err != nil {
			t.Fatalf("marshal: %s", err)
		}
		if !strings.Contains(string(data), `"violations":[]`) {
			t.Fatalf("violations must encode as an empty list: %s", data)
		}
	}
}

func TestViolationOrder(t *testing.T) {
	p := &plan.Plan{
		Edges: edges("a", "b", "c"),
		Positions: map[string]plan.Position{
			"a": {X: 0, Y: 0},
			"b": {X: 10, Y: 0},
		},
		Rotations:   map[string]float64{"a": 0, "b": 0, "c": 22},
		Connections: []plan.Connection{conn("a", "A", "b", "A")},
	}
	r := mustEngine(t).Evaluate(p)
	prefixes := []string{"port alignment:", "overlap:", "not connected:", "invalid angle:"}
	if len(r.Violations) != len(prefixes) {
		t.Fatalf("expected %d violations, got %#v", len(prefixes), r.Violations)
	}
	for i, prefix := range prefixes {
		if !strings.HasPrefix(r.Violations[i], prefix) {
			t.Fatalf("violation %d: expected prefix %q, got %q", i, prefix, r.Violations[i])
		}
	}
}

func TestDeterministic(t *testing.T) {
	p := randomPlan(rand.New(rand.NewSource(1)), 40)
	seq := mustEngine(t)
	par := mustEngine(t, Concurrent())
	first, err := json.Marshal(seq.Evaluate(p))
	if err != nil {
		t.Fatalf("marshal: %s", err)
	}
	for i := 0; i < 5; i++ {
		for _, e := range []*Engine{seq, par} {
			again, err := json.Marshal(e.Evaluate(p))
			if err != nil {
				t.Fatalf("marshal: %s", err)
			}
			if string(first) != string(again) {
				t.Fatalf("output changed between runs:\n%s\n%s", first, again)
			}
		}
	}
}

func TestPermutedEdges(t *testing.T) {
	e := mustEngine(t)
	p := ringPlan()
	expected := e.Evaluate(p)
	rnd := rand.New(rand.NewSource(7))
	for i := 0; i < 10; i++ {
		q := p.Clone()
		rnd.Shuffle(len(q.Edges), func(i, j int) { q.Edges[i], q.Edges[j] = q.Edges[j], q.Edges[i] })
		got := e.Evaluate(q)
		if got.IsValid != expected.IsValid || got.Score != expected.Score {
			t.Fatalf("permutation %v changed the verdict: %#v vs %#v", q.EdgeIDs(), got, expected)
		}
	}
}

func TestScoreBounds(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	for _, c := range []catalog.Catalog{pikoa.Catalog(), kato.Catalog()} {
		e, err := New(c)
		if err != nil {
			t.Fatalf("New: %s", err)
		}
		for i := 0; i < 50; i++ {
			r := e.Evaluate(randomPlan(rnd, rnd.Intn(30)))
			if r.Score < 0 || r.Score > 1 {
				t.Fatalf("aggregate score %g out of range", r.Score)
			}
			for _, rs := range r.Rules {
				if rs.Score < 0 || rs.Score > 1 {
					t.Fatalf("%s score %g out of range", rs.Name, rs.Score)
				}
			}
			if r.IsValid != (len(r.Violations) == 0) {
				t.Fatalf("validity does not follow violations: %#v", r)
			}
		}
	}
}

type fixedChecker struct {
	kind  Kind
	score float64
	msg   string
}

func (f fixedChecker) Name() string { return "fixed" }
func (f fixedChecker) Kind() Kind   { return f.kind }
func (f fixedChecker) Check(*plan.Plan) Outcome {
	return Outcome{Score: f.score, Messages: []string{f.msg}}
}

func TestWithCheckers(t *testing.T) {
	e := mustEngine(t, WithCheckers(
		fixedChecker{Advisory, 0.2, "hint"},
		fixedChecker{Blocking, 0.6, "problem"},
	))
	r := e.Evaluate(ringPlan())
	if r.IsValid {
		t.Fatal("expected invalid")
	}
	if diff := cmp.Diff([]string{"problem"}, r.Violations); diff != "" {
		t.Fatalf("violations diff: %s", diff)
	}
	if diff := cmp.Diff([]string{"hint"}, r.Suggestions); diff != "" {
		t.Fatalf("suggestions diff: %s", diff)
	}
	if r.Score < 0.3999 || r.Score > 0.4001 {
		t.Fatalf("expected score 0.4, got %g", r.Score)
	}

	r = mustEngine(t, WithCheckers()).Evaluate(ringPlan())
	if !r.IsValid || r.Score != 0 {
		t.Fatalf("no checkers: expected valid with score 0, got %#v", r)
	}
}

func TestAdvisoryKeepsValid(t *testing.T) {
	r := mustEngine(t).Evaluate(ringPlan())
	if !r.IsValid {
		t.Fatalf("expected valid, got %#v", r.Violations)
	}
	if r.Score >= 1 {
		t.Fatalf("expected loop closure to lower the score, got %g", r.Score)
	}
}

func TestNewInvalidCatalog(t *testing.T) {
	c := pikoa.Catalog()
	c.AngleStep = 0
	if _, err := New(c); err == nil {
		t.Fatal("expected error")
	}
}

func randomPlan(rnd *rand.Rand, n int) *plan.Plan {
	p := &plan.Plan{
		Positions: map[string]plan.Position{},
		Rotations: map[string]float64{},
	}
	ids := make([]string, n)
	for i := range ids {
		ids[i] = string(rune('a'+i%26)) + strings.Repeat("x", i/26)
		p.Edges = append(p.Edges, plan.Edge{ID: ids[i]})
		if rnd.Intn(4) != 0 {
			p.Positions[ids[i]] = plan.Position{X: rnd.Float64() * 500, Y: rnd.Float64() * 500}
		}
		if rnd.Intn(4) != 0 {
			p.Rotations[ids[i]] = float64(rnd.Intn(720) - 360)
		}
	}
	for i := 0; n > 0 && i < n+rnd.Intn(n+1); i++ {
		p.Connections = append(p.Connections, conn(
			ids[rnd.Intn(n)], []string{"A", "B"}[rnd.Intn(2)],
			ids[rnd.Intn(n)], []string{"A", "B"}[rnd.Intn(2)],
		))
	}
	return p
}
