// Package pikoa contains the geometry of the Piko A series of model railroad tracks.
package pikoa

import "nyiyui.ca/hato/kensa/catalog"

const (
	R1 = 358.0
	R2 = 421.6
	R3 = 484.5
	R9 = 888.0

	G231  = 231.0
	G119  = 119.2
	G62   = 62.0
	G55   = 55.5
	G31   = 31.0
	Curve = 30.0
)

func Catalog() catalog.Catalog {
	return catalog.Catalog{
		Name:                "pikoa",
		Radii:               []float64{R1, R2, R3, R9},
		Angles:              []float64{15, 30, 90},
		Lengths:             []float64{G231, G119, G62, G55, G31},
		AngleStep:           15,
		CurveAngle:          Curve,
		FarPort:             "B",
		MinClearance:        50,
		AngularTolerance:    5,
		PositionalTolerance: 1,
	}
}
