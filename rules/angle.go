package rules

import (
	"fmt"

	"nyiyui.ca/hato/kensa/catalog"
	"nyiyui.ca/hato/kensa/plan"
)

// AngleQuantization checks that every rotation is (within tolerance) a multiple of the catalog's angle step.
type AngleQuantization struct {
	Catalog catalog.Catalog
}

func (AngleQuantization) Name() string { return "angle-quantization" }
func (AngleQuantization) Kind() Kind   { return Blocking }

func (a AngleQuantization) Check(p *plan.Plan) Outcome {
	ids := p.RotatedIDs()
	step := a.Catalog.AngleStep
	tol := a.Catalog.AngularTolerance
	var msgs []string
	for _, id := range ids {
		normalized := floorMod(p.Rotation(id), 360)
		remainder := floorMod(normalized, step)
		if remainder > tol && remainder < step-tol {
			msgs = append(msgs, fmt.Sprintf(
				"invalid angle: %s has %.1f° (should be a multiple of %g°)",
				shortID(id), normalized, step,
			))
		}
	}
	return Outcome{
		Score:    ratioScore(len(msgs), len(ids)),
		Messages: msgs,
	}
}
