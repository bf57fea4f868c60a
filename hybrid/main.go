// Package hybrid blends an external image-confidence score into a rule-based Result.
//
// The rules engine never depends on this package; callers compose the two.
package hybrid

import (
	"context"
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"
	"nyiyui.ca/hato/kensa/rules"
)

const (
	RuleWeight = 0.7
	AIWeight   = 0.3
	// Threshold is the confidence a plan must exceed to stay valid.
	Threshold = 0.5
)

// ErrUnavailable is returned by a Scorer that has no trained model or no image to look at.
var ErrUnavailable = errors.New("image confidence unavailable")

// Scorer returns the confidence, in [0, 1], that the rendered plan at image is plausible.
type Scorer interface {
	Score(ctx context.Context, image string) (float64, error)
}

// Blend combines r with the confidence from s.
// When s is nil or unavailable, r is returned unchanged.
func Blend(ctx context.Context, r rules.Result, s Scorer, image string) (rules.Result, error) {
	if s == nil {
		return r, nil
	}
	ai, err := s.Score(ctx, image)
	if errors.Is(err, ErrUnavailable) {
		zap.S().Infow("image confidence skipped", "image", image, "reason", err)
		return r, nil
	}
	if err != nil {
		return rules.Result{}, fmt.Errorf("score image %s: %w", image, err)
	}
	if math.IsNaN(ai) || ai < 0 || ai > 1 {
		return rules.Result{}, fmt.Errorf("score image %s: confidence %g out of range", image, ai)
	}
	blended := r
	blended.Score = RuleWeight*r.Score + AIWeight*ai
	blended.IsValid = r.IsValid && ai > Threshold
	blended.Suggestions = append(append([]string{}, r.Suggestions...), fmt.Sprintf("AI confidence: %.2f%%", ai*100))
	zap.S().Debugw("blended image confidence",
		"image", image,
		"ai", ai,
		"rules", r.Score,
		"score", blended.Score)
	return blended, nil
}

// Fixed is a Scorer that reports a confidence computed elsewhere (e.g. by a classifier run out of process).
type Fixed float64

func (f Fixed) Score(ctx context.Context, image string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if image == "" {
		return 0, fmt.Errorf("%w: no image", ErrUnavailable)
	}
	return float64(f), nil
}

// None is a Scorer without a model.
var None Scorer = none{}

type none struct{}

func (none) Score(context.Context, string) (float64, error) {
	return 0, fmt.Errorf("%w: no trained model", ErrUnavailable)
}
