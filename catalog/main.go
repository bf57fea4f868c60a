// Package catalog describes the geometry of one track system (radii, angles, lengths and tolerances).
package catalog

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

var ErrInvalid = errors.New("invalid catalog")

// Catalog is the fixed geometry of a track system.
// It is read-only once handed to an engine; copy it to derive a variant.
type Catalog struct {
	Name string `yaml:"name" json:"name"`
	// Radii of the available curves in mm.
	Radii []float64 `yaml:"radii" json:"radii"`
	// Angles are the canonical arc angles in degrees.
	Angles []float64 `yaml:"angles" json:"angles"`
	// Lengths of the available straight pieces in mm.
	Lengths []float64 `yaml:"lengths" json:"lengths"`
	// AngleStep is the angular grid every rotation must sit on, in degrees.
	AngleStep float64 `yaml:"angle-step" json:"angle-step"`
	// CurveAngle is the offset of FarPort relative to an edge's rotation, in degrees.
	CurveAngle float64 `yaml:"curve-angle" json:"curve-angle"`
	// FarPort is the port id that carries CurveAngle. Usually B.
	FarPort string `yaml:"far-port" json:"far-port"`
	// MinClearance between two edge anchors in mm.
	MinClearance float64 `yaml:"min-clearance" json:"min-clearance"`
	// AngularTolerance in degrees.
	AngularTolerance float64 `yaml:"angular-tolerance" json:"angular-tolerance"`
	// PositionalTolerance in mm. Reserved; no rule reads it yet.
	PositionalTolerance float64 `yaml:"positional-tolerance" json:"positional-tolerance"`
}

// PortOffset returns the angular offset of port relative to the edge rotation.
func (c Catalog) PortOffset(port string) float64 {
	if port == c.FarPort {
		return c.CurveAngle
	}
	return 0
}

func (c Catalog) Validate() error {
	finite := func(name string, v float64) error {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s is not finite", ErrInvalid, name)
		}
		if v < 0 {
			return fmt.Errorf("%w: %s must not be negative (got %g)", ErrInvalid, name, v)
		}
		return nil
	}
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"angle-step", c.AngleStep},
		{"curve-angle", c.CurveAngle},
		{"min-clearance", c.MinClearance},
		{"angular-tolerance", c.AngularTolerance},
		{"positional-tolerance", c.PositionalTolerance},
	} {
		if err := finite(f.name, f.v); err != nil {
			return err
		}
	}
	if c.AngleStep == 0 {
		return fmt.Errorf("%w: angle-step must be positive", ErrInvalid)
	}
	if c.AngularTolerance*2 >= c.AngleStep {
		return fmt.Errorf("%w: angular-tolerance %g covers the whole angle-step %g", ErrInvalid, c.AngularTolerance, c.AngleStep)
	}
	if c.FarPort == "" {
		return fmt.Errorf("%w: far-port is empty", ErrInvalid)
	}
	for i, r := range c.Radii {
		if r <= 0 {
			return fmt.Errorf("%w: radius %d must be positive (got %g)", ErrInvalid, i, r)
		}
	}
	for i, l := range c.Lengths {
		if l <= 0 {
			return fmt.Errorf("%w: length %d must be positive (got %g)", ErrInvalid, i, l)
		}
	}
	return nil
}

// LoadFile reads a YAML catalog from path. Fields missing from the file keep their value from base.
func LoadFile(path string, base Catalog) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("read catalog: %w", err)
	}
	c := base.Clone()
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Catalog{}, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return Catalog{}, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

// Clone returns a copy that shares no slices with c.
func (c Catalog) Clone() Catalog {
	c.Radii = append([]float64(nil), c.Radii...)
	c.Angles = append([]float64(nil), c.Angles...)
	c.Lengths = append([]float64(nil), c.Lengths...)
	return c
}
