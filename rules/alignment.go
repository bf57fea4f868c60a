package rules

import (
	"fmt"
	"math"

	"nyiyui.ca/hato/kensa/catalog"
	"nyiyui.ca/hato/kensa/plan"
)

// Alignment checks that connected ports face each other.
type Alignment struct {
	Catalog catalog.Catalog
}

func (Alignment) Name() string { return "port-alignment" }
func (Alignment) Kind() Kind   { return Blocking }

// portAngle is the direction a port faces, in degrees.
func (a Alignment) portAngle(p *plan.Plan, edgeID, portID string) float64 {
	return p.Rotation(edgeID) + a.Catalog.PortOffset(portID)
}

// opposition is how far angle1 is from pointing opposite to angle2, in [0, 180].
func opposition(angle1, angle2 float64) float64 {
	return math.Abs(floorMod(angle1-angle2, 360) - 180)
}

func (a Alignment) Check(p *plan.Plan) Outcome {
	conns := p.ConnectionList()
	tol := a.Catalog.AngularTolerance
	var msgs []string
	for _, c := range conns {
		angle1 := a.portAngle(p, c.Edge1ID, c.Port1ID)
		angle2 := a.portAngle(p, c.Edge2ID, c.Port2ID)
		diff := opposition(angle1, angle2)
		// diff never exceeds 180, so only the lower bound can trigger.
		if diff > tol && diff < 360-tol {
			msgs = append(msgs, fmt.Sprintf(
				"port alignment: %s.%s (%.1f°) and %s.%s (%.1f°) do not face each other (off by %.1f°, tolerance %.1f°)",
				shortID(c.Edge1ID), c.Port1ID, angle1,
				shortID(c.Edge2ID), c.Port2ID, angle2,
				diff, tol,
			))
		}
	}
	return Outcome{
		Score:    ratioScore(len(msgs), len(conns)),
		Messages: msgs,
	}
}
