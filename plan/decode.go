package plan

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	// ErrMalformed is wrapped by every error caused by the contents of a plan document.
	ErrMalformed = errors.New("malformed plan")
	ErrFormat    = errors.New("unsupported plan format")
)

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatOf picks the format from the extension of path.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrFormat, path)
	}
}

// document mirrors the wire shape. Pointers tell absent values apart from zeros.
type document struct {
	Edges       []Edge                  `json:"edges" yaml:"edges"`
	Positions   map[string]*rawPosition `json:"positions" yaml:"positions"`
	Rotations   map[string]*float64     `json:"rotations" yaml:"rotations"`
	Connections []Connection            `json:"connections" yaml:"connections"`
}

type rawPosition struct {
	X *float64 `json:"x" yaml:"x"`
	Y *float64 `json:"y" yaml:"y"`
}

func Decode(r io.Reader, f Format) (*Plan, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read plan: %w", err)
	}
	var doc *document
	switch f {
	case FormatJSON:
		err = json.Unmarshal(data, &doc)
	case FormatYAML:
		err = yaml.Unmarshal(data, &doc)
	default:
		return nil, fmt.Errorf("%w: %q", ErrFormat, f)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: empty document", ErrMalformed)
	}
	return doc.plan()
}

// ReadFile reads and decodes the plan at path.
func ReadFile(path string) (*Plan, error) {
	f, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open plan: %w", err)
	}
	defer file.Close()
	p, err := Decode(file, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

func (d *document) plan() (*Plan, error) {
	p := &Plan{
		Edges:       d.Edges,
		Positions:   make(map[string]Position, len(d.Positions)),
		Rotations:   make(map[string]float64, len(d.Rotations)),
		Connections: d.Connections,
	}
	for id, raw := range d.Positions {
		// null and {} are treated as no position at all
		if raw == nil || (raw.X == nil && raw.Y == nil) {
			continue
		}
		var pos Position
		if raw.X != nil {
			pos.X = *raw.X
		}
		if raw.Y != nil {
			pos.Y = *raw.Y
		}
		if !finite(pos.X) || !finite(pos.Y) {
			return nil, fmt.Errorf("%w: position of %s is not finite", ErrMalformed, id)
		}
		p.Positions[id] = pos
	}
	for id, r := range d.Rotations {
		if r == nil {
			continue
		}
		if !finite(*r) {
			return nil, fmt.Errorf("%w: rotation of %s is not finite", ErrMalformed, id)
		}
		p.Rotations[id] = *r
	}
	return p, nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
