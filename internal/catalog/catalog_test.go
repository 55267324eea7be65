package catalog

import (
	"testing"

	"github.com/vjkit/stagectl/internal/midisession"
)

func TestCatalogIDsAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for _, c := range Controls() {
		if seen[c.ID] {
			t.Errorf("duplicate control ID %q", c.ID)
		}
		seen[c.ID] = true
	}
}

func TestRotationControlsDefaultRelative(t *testing.T) {
	for _, c := range Controls() {
		if c.Target.Rotational() && !c.Relative {
			t.Errorf("%s: rotation control should default to relative", c.ID)
		}
	}
}

func TestByTargetResolvesRegionalControls(t *testing.T) {
	ctl, ok := ByTarget(TargetRegionSlider, "", "scale", 3)
	if !ok {
		t.Fatal("region 3 scale control should resolve")
	}
	if ctl.ID != "region-3-scale" {
		t.Errorf("resolved %q", ctl.ID)
	}

	if _, ok := ByTarget(TargetRegionSlider, "", "scale", 99); ok {
		t.Error("out-of-range region should not resolve")
	}
}

func TestByTargetSeparatesGlobalAndRegionalFavorites(t *testing.T) {
	global, ok := ByTarget(TargetFavoriteNav, "next", "", -1)
	if !ok || global.ID != "favorite-next" {
		t.Fatalf("global favorite resolve = %+v ok=%v", global, ok)
	}
	regional, ok := ByTarget(TargetFavoriteNav, "next", "", 0)
	if !ok || regional.ID != "region-0-favorite-next" {
		t.Fatalf("regional favorite resolve = %+v ok=%v", regional, ok)
	}
}

// TestRegionalFavoritesComeInPairs verifies every region carries both
// navigation directions, like the global pair.
func TestRegionalFavoritesComeInPairs(t *testing.T) {
	for i := 0; i < RegionCount; i++ {
		for _, key := range []string{"next", "prev"} {
			if _, ok := ByTarget(TargetFavoriteNav, key, "", i); !ok {
				t.Errorf("region %d has no %q favorite control", i, key)
			}
		}
	}
}

func TestCrossfadePairsCoverAdjacentRegions(t *testing.T) {
	pairs := 0
	for _, c := range Controls() {
		if c.Target != TargetCrossfade {
			if c.PairWith != -1 {
				t.Errorf("%s: non-crossfade control carries a pair", c.ID)
			}
			continue
		}
		pairs++
		if c.PairWith != c.Region+1 {
			t.Errorf("%s: pair = %d, want %d", c.ID, c.PairWith, c.Region+1)
		}
		if c.Preferred != midisession.ControlChange {
			t.Errorf("%s: crossfade should prefer control change", c.ID)
		}
	}
	if pairs != RegionCount/2 {
		t.Errorf("found %d crossfade pairs, want %d", pairs, RegionCount/2)
	}
}

func TestSliderRangesAreOrdered(t *testing.T) {
	for _, c := range Controls() {
		if c.Target != TargetSlider && c.Target != TargetRegionSlider {
			continue
		}
		if c.Max <= c.Min {
			t.Errorf("%s: range [%v,%v] is not ordered", c.ID, c.Min, c.Max)
		}
	}
}
