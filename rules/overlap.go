package rules

import (
	"fmt"
	"math"

	"nyiyui.ca/hato/kensa/catalog"
	"nyiyui.ca/hato/kensa/plan"
)

// Overlap checks that edge anchors keep the catalog's minimum clearance.
// Every pair of positioned edges is compared, which is fine for plans of a few hundred pieces.
type Overlap struct {
	Catalog catalog.Catalog
}

func (Overlap) Name() string { return "overlap" }
func (Overlap) Kind() Kind   { return Blocking }

func (o Overlap) Check(p *plan.Plan) Outcome {
	ids := p.PositionedIDs()
	clearance := o.Catalog.MinClearance
	var msgs []string
	for i, id1 := range ids {
		pos1, _ := p.Position(id1)
		for _, id2 := range ids[i+1:] {
			pos2, _ := p.Position(id2)
			distance := math.Hypot(pos2.X-pos1.X, pos2.Y-pos1.Y)
			if distance < clearance {
				msgs = append(msgs, fmt.Sprintf(
					"overlap: %s and %s are too close (distance %.1fmm, minimum %.1fmm)",
					shortID(id1), shortID(id2), distance, clearance,
				))
			}
		}
	}
	return Outcome{
		Score:    ratioScore(len(msgs), len(ids)),
		Messages: msgs,
	}
}
