package stage

import (
	"testing"
	"time"
)

func TestSnapshotFoldsOverrides(t *testing.T) {
	s := NewStore(2)
	s.Region(0).BaseScale = 2
	s.Region(0).MIDIScale = 0.5
	half := 0.5
	s.SetFadeOpacity(0, &half)
	s.SetMorphProgress(0, &half)

	snaps := s.Snapshots()
	if snaps[0].Opacity != 0.5 {
		t.Errorf("opacity = %v, want 0.5", snaps[0].Opacity)
	}
	if snaps[0].Scale != 0.5 { // 2 * 0.5 * 0.5
		t.Errorf("scale = %v, want 0.5", snaps[0].Scale)
	}
	// No overrides: opacity 1, scale is base*midi.
	if snaps[1].Opacity != 1 || snaps[1].Scale != 1 {
		t.Errorf("clean region snapshot = %+v", snaps[1])
	}
}

func TestUpdateRegionAppliesPartialFields(t *testing.T) {
	s := NewStore(1)
	vis := false
	scale := 1.5
	s.UpdateRegion(0, RegionPatch{Visible: &vis, MIDIScale: &scale})

	r := s.Region(0)
	if r.Visible || r.MIDIScale != 1.5 {
		t.Errorf("region = visible=%v midiScale=%v", r.Visible, r.MIDIScale)
	}
	if r.Mode != "points" {
		t.Errorf("untouched field changed: mode = %q", r.Mode)
	}

	// Out-of-range index is a no-op, not a panic.
	s.UpdateRegion(9, RegionPatch{Visible: &vis})
}

func TestNestedSettings(t *testing.T) {
	s := NewStore(1)
	s.SetSetting("background", "hue", 210.0)
	s.SetSetting("background", "lightness", 0.3)

	if v, ok := s.Setting("background", "hue"); !ok || v.(float64) != 210.0 {
		t.Errorf("background.hue = %v ok=%v", v, ok)
	}
	if v, ok := s.Setting("background", "lightness"); !ok || v.(float64) != 0.3 {
		t.Errorf("background.lightness = %v ok=%v", v, ok)
	}
	if _, ok := s.Setting("background", "missing"); ok {
		t.Error("missing subkey should not resolve")
	}
}

func TestFavoriteNavigationWraps(t *testing.T) {
	s := NewStore(2)
	s.Region(0).Favorites = []string{"solid", "xray", "ribbon"}

	s.NavigateFavorite(0, 1)
	s.NavigateFavorite(0, 1)
	s.NavigateFavorite(0, 1)
	if got := s.RegionMode(0); got != "solid" {
		t.Errorf("after 3 steps over 3 favorites mode = %q, want solid", got)
	}

	s.NavigateFavorite(0, -1)
	if got := s.RegionMode(0); got != "ribbon" {
		t.Errorf("backward wrap mode = %q, want ribbon", got)
	}

	// A region with no favorites is untouched.
	before := s.RegionMode(1)
	s.NavigateFavorite(-1, 1)
	if s.RegionMode(1) != before {
		t.Error("favorite nav mutated a region with no favorites")
	}
}

func TestVisibleCentroid(t *testing.T) {
	s := NewStore(3)
	s.Region(0).Position = Vec3{2, 0, 0}
	s.Region(1).Position = Vec3{4, 2, 0}
	s.Region(2).Position = Vec3{100, 100, 100}
	s.SetRegionVisible(2, false)

	c, ok := s.VisibleCentroid()
	if !ok {
		t.Fatal("expected a centroid with visible regions present")
	}
	if c != (Vec3{3, 1, 0}) {
		t.Errorf("centroid = %v, want {3 1 0}", c)
	}

	s.SetRegionVisible(0, false)
	s.SetRegionVisible(1, false)
	if _, ok := s.VisibleCentroid(); ok {
		t.Error("no visible regions should yield no centroid")
	}
}

func TestAutoRotateTriState(t *testing.T) {
	s := NewStore(1)
	if s.AutoRotate(0) != nil {
		t.Fatal("flag should start unset")
	}
	on := true
	s.SetAutoRotate(0, &on)
	if v := s.AutoRotate(0); v == nil || !*v {
		t.Error("flag should read back true")
	}
	s.SetAutoRotate(0, nil)
	if s.AutoRotate(0) != nil {
		t.Error("flag should restore to unset verbatim")
	}
}

func TestRegionRandomizeDefaults(t *testing.T) {
	s := NewStore(1)
	on, every := s.RegionRandomize(0)
	if on {
		t.Error("randomize should default off")
	}
	if every != 10*time.Second {
		t.Errorf("default interval = %v", every)
	}

	s.SetRegionRandomize(0, true, 3*time.Second)
	on, every = s.RegionRandomize(0)
	if !on || every != 3*time.Second {
		t.Errorf("randomize = %v/%v after enable", on, every)
	}
}
