// Package transition drives the timed, animated state changes between
// visual states: the multi-region slideshow and the per-region randomizer.
// Both are tick-driven; the engine loop feeds them the current time, so no
// wall-clock reads or timer handles hide inside the logic.
package transition

import "math"

// Strategy selects how a transition animates.
type Strategy uint8

const (
	// StrategyNone swaps visibility instantly.
	StrategyNone Strategy = iota
	// StrategyFade drives complementary fade opacities.
	StrategyFade
	// StrategyZoom drives complementary render scales.
	StrategyZoom
)

func (s Strategy) String() string {
	switch s {
	case StrategyNone:
		return "none"
	case StrategyFade:
		return "fade"
	case StrategyZoom:
		return "zoom"
	}
	return "unknown"
}

// kind is the stored transition tag on a region.
func (s Strategy) kind() string {
	switch s {
	case StrategyFade:
		return "fade"
	case StrategyZoom:
		return "zoom"
	}
	return ""
}

// ease is the raised-cosine curve applied to every progress scalar. Its
// midpoint is exactly 0.5, which the randomizer relies on for the
// mode-swap instant.
func ease(t float64) float64 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	return 0.5 - 0.5*math.Cos(math.Pi*t)
}

// fold maps progress 0..1 onto 0->1->0, peaking at the midpoint. The
// randomizer subtracts it from 1 so opacity/scale bottoms out exactly when
// the mode swap fires.
func fold(t float64) float64 {
	return ease(1 - math.Abs(2*t-1))
}

func ptr(v float64) *float64 { return &v }

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
