// Package plan is the data model of a track plan: edges (track pieces), their positions and rotations, and the
// connections between their ports.
//
// All accessors are total: absent entries read as zero values and a nil *Plan reads as an empty plan.
// Rules read the plan only through these accessors so the leniency policy lives in one place.
package plan

import (
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

const (
	PortA = "A"
	PortB = "B"
)

type Edge struct {
	ID   string `json:"id" yaml:"id"`
	Type string `json:"type" yaml:"type"`
}

// Position of an edge's anchor point in mm, in the plan-global frame.
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Connection joins a port of one edge with a port of another. It is undirected.
type Connection struct {
	Edge1ID string `json:"edge1_id" yaml:"edge1_id"`
	Port1ID string `json:"port1_id" yaml:"port1_id"`
	Edge2ID string `json:"edge2_id" yaml:"edge2_id"`
	Port2ID string `json:"port2_id" yaml:"port2_id"`
}

// PortKey identifies one side of a connection as "edge:port".
func PortKey(edgeID, portID string) string {
	return edgeID + ":" + portID
}

func (c Connection) Key1() string { return PortKey(c.Edge1ID, c.Port1ID) }
func (c Connection) Key2() string { return PortKey(c.Edge2ID, c.Port2ID) }

type Plan struct {
	Edges []Edge `json:"edges"`
	// Positions may be sparse.
	Positions map[string]Position `json:"positions"`
	// Rotations (in degrees) may be sparse.
	Rotations   map[string]float64 `json:"rotations"`
	Connections []Connection       `json:"connections"`
}

// EdgeIDs returns the edge ids in document order.
func (p *Plan) EdgeIDs() []string {
	if p == nil {
		return nil
	}
	ids := make([]string, len(p.Edges))
	for i, e := range p.Edges {
		ids[i] = e.ID
	}
	return ids
}

func (p *Plan) HasEdge(id string) bool {
	if p == nil {
		return false
	}
	return slices.IndexFunc(p.Edges, func(e Edge) bool { return e.ID == id }) != -1
}

// Rotation returns the rotation of an edge, or 0 if it has none.
func (p *Plan) Rotation(id string) float64 {
	if p == nil {
		return 0
	}
	return p.Rotations[id]
}

func (p *Plan) Position(id string) (pos Position, ok bool) {
	if p == nil {
		return Position{}, false
	}
	pos, ok = p.Positions[id]
	return
}

// PositionedIDs returns the ids with a position, sorted.
func (p *Plan) PositionedIDs() []string {
	if p == nil {
		return nil
	}
	return sortedKeys(p.Positions)
}

// RotatedIDs returns the ids with a rotation, sorted.
func (p *Plan) RotatedIDs() []string {
	if p == nil {
		return nil
	}
	return sortedKeys(p.Rotations)
}

func (p *Plan) ConnectionList() []Connection {
	if p == nil {
		return nil
	}
	return p.Connections
}

func (p *Plan) Clone() *Plan {
	if p == nil {
		return nil
	}
	return &Plan{
		Edges:       slices.Clone(p.Edges),
		Positions:   maps.Clone(p.Positions),
		Rotations:   maps.Clone(p.Rotations),
		Connections: slices.Clone(p.Connections),
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := maps.Keys(m)
	slices.Sort(keys)
	return keys
}
