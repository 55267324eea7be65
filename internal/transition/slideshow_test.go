package transition

import (
	"math"
	"testing"
	"time"

	"github.com/vjkit/stagectl/internal/stage"
)

func newSlideshowFixture(strategy Strategy) (*stage.Store, *Slideshow, time.Time) {
	store := stage.NewStore(3)
	s := NewSlideshow(store, []int{0, 1, 2}, strategy, 5*time.Second, 1*time.Second)
	return store, s, time.Unix(1000, 0)
}

func TestSlideshowStartShowsFirstRegion(t *testing.T) {
	store, s, now := newSlideshowFixture(StrategyFade)
	s.Start(now)

	if !s.Running() {
		t.Fatal("slideshow should be running")
	}
	if !store.RegionVisible(0) || store.RegionVisible(1) || store.RegionVisible(2) {
		t.Error("start should show region 0 and hide the rest")
	}
}

func TestSlideshowInertBelowTwoRegions(t *testing.T) {
	store := stage.NewStore(1)
	s := NewSlideshow(store, []int{0}, StrategyFade, time.Second, time.Second)
	s.Start(time.Unix(1000, 0))
	if s.Running() {
		t.Error("a single-region slideshow must stay inert")
	}
}

func TestSlideshowInstantAdvance(t *testing.T) {
	store, s, now := newSlideshowFixture(StrategyNone)
	s.Start(now)

	s.Tick(now.Add(5 * time.Second))
	if store.RegionVisible(0) || !store.RegionVisible(1) {
		t.Error("instant advance should swap visibility with no animation")
	}
	if store.Region(0).FadeOpacity != nil || store.Region(1).FadeOpacity != nil {
		t.Error("instant advance must not leave opacity overrides")
	}
}

// TestFadeComplementarity samples the crossfade and checks outgoing plus
// incoming opacity is 1 at every instant.
func TestFadeComplementarity(t *testing.T) {
	store, s, now := newSlideshowFixture(StrategyFade)
	s.Start(now)

	start := now.Add(5 * time.Second)
	s.Tick(start) // begins the fade from region 0 to region 1

	for _, frac := range []float64{0.1, 0.25, 0.5, 0.75, 0.9} {
		at := start.Add(time.Duration(frac * float64(time.Second)))
		s.Tick(at)
		out := store.Region(0).FadeOpacity
		in := store.Region(1).FadeOpacity
		if out == nil || in == nil {
			t.Fatalf("at %.2f: overrides missing mid-fade", frac)
		}
		if sum := *out + *in; math.Abs(sum-1) > 1e-9 {
			t.Errorf("at %.2f: out+in = %v, want 1", frac, sum)
		}
		if !store.RegionVisible(0) || !store.RegionVisible(1) {
			t.Errorf("at %.2f: both regions must stay visible mid-fade", frac)
		}
	}
}

func TestFadeCompletion(t *testing.T) {
	store, s, now := newSlideshowFixture(StrategyFade)
	s.Start(now)

	s.Tick(now.Add(5 * time.Second))
	s.Tick(now.Add(6500 * time.Millisecond)) // well past the 1s duration

	if store.RegionVisible(0) {
		t.Error("outgoing region should be hidden at completion")
	}
	if !store.RegionVisible(1) {
		t.Error("incoming region should remain visible")
	}
	if store.Region(0).FadeOpacity != nil || store.Region(1).FadeOpacity != nil {
		t.Error("opacity overrides should be cleared at completion")
	}
	if store.Region(0).Frozen || store.Region(1).Frozen {
		t.Error("freeze flags should be cleared at completion")
	}
}

func TestZoomDrivesComplementaryScale(t *testing.T) {
	store, s, now := newSlideshowFixture(StrategyZoom)
	s.Start(now)

	start := now.Add(5 * time.Second)
	s.Tick(start)
	s.Tick(start.Add(500 * time.Millisecond))

	out := store.Region(0).MorphProgress
	in := store.Region(1).MorphProgress
	if out == nil || in == nil {
		t.Fatal("morph overrides missing mid-zoom")
	}
	if math.Abs((*out+*in)-1) > 1e-9 {
		t.Errorf("morph out+in = %v, want 1", *out+*in)
	}
}

// TestRestartCancelsInFlight verifies a new session never inherits partial
// state from the previous one.
func TestRestartCancelsInFlight(t *testing.T) {
	store, s, now := newSlideshowFixture(StrategyFade)
	s.Start(now)
	s.Tick(now.Add(5 * time.Second))
	s.Tick(now.Add(5200 * time.Millisecond)) // mid-fade

	s.Start(now.Add(6 * time.Second))
	if s.Index() != 0 {
		t.Errorf("restart index = %d, want 0", s.Index())
	}
	for i := 0; i < 3; i++ {
		r := store.Region(i)
		if r.FadeOpacity != nil || r.MorphProgress != nil || r.Frozen {
			t.Errorf("region %d carries partial state across sessions", i)
		}
	}
	if !store.RegionVisible(0) || store.RegionVisible(1) {
		t.Error("restart should reset to region 0")
	}
}

func TestStopMidFadeRestoresVisibility(t *testing.T) {
	store, s, now := newSlideshowFixture(StrategyFade)
	s.Start(now)
	s.Tick(now.Add(5 * time.Second))
	s.Tick(now.Add(5300 * time.Millisecond))

	s.Stop()
	if s.Running() {
		t.Fatal("slideshow should stop")
	}
	for i := 0; i < 3; i++ {
		r := store.Region(i)
		if !r.Visible {
			t.Errorf("region %d should be restored to visible", i)
		}
		if r.FadeOpacity != nil || r.MorphProgress != nil {
			t.Errorf("region %d overrides should be cleared on stop", i)
		}
	}
}

func TestSlideshowWrapsAround(t *testing.T) {
	store, s, now := newSlideshowFixture(StrategyNone)
	s.Start(now)

	for i := 1; i <= 3; i++ {
		s.Tick(now.Add(time.Duration(i) * 5 * time.Second))
	}
	if s.Index() != 0 {
		t.Errorf("after 3 advances over 3 regions index = %d, want 0", s.Index())
	}
	if !store.RegionVisible(0) {
		t.Error("wrap-around should land back on region 0")
	}
}
