package transition

import (
	"math/rand"
	"testing"
	"time"

	"github.com/vjkit/stagectl/internal/stage"
)

var testModes = []string{"points", "wireframe", "solid", "xray"}

func newRandomizerFixture(strategy Strategy) (*stage.Store, *Randomizer, time.Time) {
	store := stage.NewStore(4)
	r := NewRandomizer(store, testModes, strategy, time.Second, rand.NewSource(1))
	return store, r, time.Unix(2000, 0)
}

func TestRandomizerFiresOnInterval(t *testing.T) {
	store, r, now := newRandomizerFixture(StrategyFade)
	store.SetRegionRandomize(0, true, 2*time.Second)

	r.Tick(now) // arms the timer
	r.Tick(now.Add(time.Second))
	if store.Region(0).FadeOpacity != nil {
		t.Fatal("transition must not start before the interval elapses")
	}

	r.Tick(now.Add(2 * time.Second))
	if store.Region(0).FadeOpacity == nil {
		t.Fatal("transition should start once the interval elapses")
	}
	if !store.RegionFrozen(0) {
		t.Error("region should be frozen while transitioning")
	}
}

// TestModeSwapAtMidpoint verifies the swap happens at the opacity minimum
// and fires exactly once despite per-tick progress callbacks.
func TestModeSwapAtMidpoint(t *testing.T) {
	store, r, now := newRandomizerFixture(StrategyFade)
	store.SetRegionRandomize(0, true, 2*time.Second)
	before := store.RegionMode(0)

	r.Tick(now)
	start := now.Add(2 * time.Second)
	r.Tick(start)

	r.Tick(start.Add(400 * time.Millisecond)) // p=0.4, before the midpoint
	if store.RegionMode(0) != before {
		t.Fatal("mode must not swap before the midpoint")
	}

	r.Tick(start.Add(500 * time.Millisecond)) // p=0.5
	after := store.RegionMode(0)
	if after == before {
		t.Fatal("mode should swap at the midpoint")
	}
	if op := store.Region(0).FadeOpacity; op == nil || *op > 1e-9 {
		t.Error("opacity should bottom out at the swap instant")
	}

	// The swap already fired; later ticks must not re-apply it.
	store.SetRegionMode(0, "sentinel")
	r.Tick(start.Add(700 * time.Millisecond))
	if store.RegionMode(0) != "sentinel" {
		t.Error("mode swap fired more than once")
	}
}

func TestRandomizerCompletionClearsOverrides(t *testing.T) {
	store, r, now := newRandomizerFixture(StrategyFade)
	store.SetRegionRandomize(0, true, 2*time.Second)

	r.Tick(now)
	start := now.Add(2 * time.Second)
	r.Tick(start)
	r.Tick(start.Add(1100 * time.Millisecond))

	reg := store.Region(0)
	if reg.FadeOpacity != nil || reg.MorphProgress != nil || reg.Frozen {
		t.Error("completion should clear overrides and the freeze flag")
	}
	if !reg.Visible {
		t.Error("region should be visible after the swap completes")
	}
}

// TestNeverPicksCurrentMode verifies a re-roll is never a no-op across
// many transitions.
func TestNeverPicksCurrentMode(t *testing.T) {
	store, r, now := newRandomizerFixture(StrategyNone)
	store.SetRegionRandomize(0, true, time.Second)

	r.Tick(now) // arm
	for i := 1; i <= 50; i++ {
		before := store.RegionMode(0)
		r.Tick(now.Add(time.Duration(i) * time.Second))
		if after := store.RegionMode(0); after == before {
			t.Fatalf("roll %d kept mode %q", i, before)
		}
	}
}

// TestDisableMidFadeRestores verifies that disabling randomization
// mid-fade restores full opacity and cancels the pending swap.
func TestDisableMidFadeRestores(t *testing.T) {
	store, r, now := newRandomizerFixture(StrategyFade)
	store.SetRegionRandomize(0, true, 2*time.Second)
	before := store.RegionMode(0)

	r.Tick(now)
	start := now.Add(2 * time.Second)
	r.Tick(start)
	r.Tick(start.Add(300 * time.Millisecond)) // mid-fade, before the swap

	store.SetRegionRandomize(0, false, 0)
	r.Tick(start.Add(400 * time.Millisecond))

	reg := store.Region(0)
	if reg.FadeOpacity != nil {
		t.Error("disable mid-fade should clear the opacity override")
	}
	if snap := store.Snapshots()[0]; snap.Opacity != 1 {
		t.Errorf("snapshot opacity = %v, want 1 after disable", snap.Opacity)
	}
	if store.RegionMode(0) != before {
		t.Error("pending mode swap should be cancelled")
	}
	if reg.Frozen {
		t.Error("freeze flag should clear on disable")
	}

	// The timer is disarmed too: nothing fires later.
	r.Tick(start.Add(10 * time.Second))
	if store.Region(0).FadeOpacity != nil {
		t.Error("disabled region must not retrigger")
	}
}

// TestFrozenRegionNotRetriggered verifies a region mid-transition (for
// example inside a slideshow crossfade) is skipped when its timer fires.
func TestFrozenRegionNotRetriggered(t *testing.T) {
	store, r, now := newRandomizerFixture(StrategyFade)
	store.SetRegionRandomize(0, true, time.Second)
	store.SetTransition(0, "fade", true) // someone else is animating it

	r.Tick(now)
	r.Tick(now.Add(time.Second))
	if _, ok := r.active[0]; ok {
		t.Error("frozen region must not start a randomizer transition")
	}
}

func TestZoomSwapDrivesScale(t *testing.T) {
	store, r, now := newRandomizerFixture(StrategyZoom)
	store.SetRegionRandomize(2, true, time.Second)

	r.Tick(now)
	start := now.Add(time.Second)
	r.Tick(start)
	r.Tick(start.Add(500 * time.Millisecond))

	if m := store.Region(2).MorphProgress; m == nil || *m > 1e-9 {
		t.Error("render scale should bottom out at the midpoint of a zoom swap")
	}
	snap := store.Snapshots()[2]
	if snap.Scale > 1e-9 {
		t.Errorf("snapshot scale = %v, want 0 at the midpoint", snap.Scale)
	}
}
