// Package kato contains the geometry of the KATO Unitrack series of model railroad tracks.
package kato

import "nyiyui.ca/hato/kensa/catalog"

const (
	R481 = 481.0
	R718 = 718.0
	// EP481_15S is the straight side of a EP481-15L/R switch track.
	EP481_15S = 126.0
	// S60 is commonly found in EP481 sets.
	S60 = 60.0
	// S62 is commonly found in EP481 sets.
	S62 = 62.0
	// S62F is the common feeeder track (product #20-041)
	S62F = S62
	S64  = 64.0
	S124 = 124.0
	S248 = 248.0
)

func Catalog() catalog.Catalog {
	return catalog.Catalog{
		Name:  "kato",
		Radii: []float64{216, 249, 282, 315, 348, 381, 414, R481, R718},
		// R481-15 and R718-15 are the common curves, so a curve's far port turns by 15°.
		Angles:              []float64{15, 30, 45},
		Lengths:             []float64{S248, S124, S64, S62, S60, EP481_15S},
		AngleStep:           15,
		CurveAngle:          15,
		FarPort:             "B",
		MinClearance:        50,
		AngularTolerance:    5,
		PositionalTolerance: 1,
	}
}
