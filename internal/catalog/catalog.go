// Package catalog defines the fixed list of controllable targets a MIDI
// mapping can point at. The catalog is pure data: it carries no state and
// defines the legal range and default encoder semantics for each target.
package catalog

import (
	"fmt"

	"github.com/vjkit/stagectl/internal/midisession"
)

// TargetKind enumerates what a mappable control drives. The set is closed;
// the dispatcher switches exhaustively over it.
type TargetKind uint8

const (
	TargetSlider TargetKind = iota
	TargetToggle
	TargetModeSelect
	TargetRegionVisibility
	TargetRegionSlider
	TargetRegionTrigger
	TargetCameraRotation
	TargetRegionRotation
	TargetFavoriteNav
	TargetCrossfade
	TargetAction
)

func (t TargetKind) String() string {
	switch t {
	case TargetSlider:
		return "slider"
	case TargetToggle:
		return "toggle"
	case TargetModeSelect:
		return "mode-select"
	case TargetRegionVisibility:
		return "region-visibility"
	case TargetRegionSlider:
		return "region-slider"
	case TargetRegionTrigger:
		return "region-trigger"
	case TargetCameraRotation:
		return "camera-rotation"
	case TargetRegionRotation:
		return "region-rotation"
	case TargetFavoriteNav:
		return "favorite-nav"
	case TargetCrossfade:
		return "crossfade"
	case TargetAction:
		return "action"
	}
	return "unknown"
}

// Rotational reports whether the target accumulates an angle and so
// defaults to relative-encoder semantics when learned.
func (t TargetKind) Rotational() bool {
	return t == TargetCameraRotation || t == TargetRegionRotation
}

// Control describes one mappable target.
type Control struct {
	ID        string
	Name      string
	Target    TargetKind
	Key       string // settings key or action name for global targets
	SubKey    string // nested settings key for composite settings
	Region    int    // region index; -1 for global targets
	PairWith  int    // crossfade partner region; -1 otherwise
	Preferred midisession.Kind
	Min, Max  float64
	Step      float64
	Options   []string // mode-select choices
	Relative  bool     // relative-encoder default for newly learned mappings
}

// RenderModes are the per-region visual modes the randomizer and
// mode-select controls choose between.
var RenderModes = []string{"points", "wireframe", "solid", "xray", "ribbon"}

// RegionCount is the fixed number of addressable regions.
const RegionCount = 8

// Controls returns the full catalog: global settings first, then the
// per-region entries for every region index.
func Controls() []Control {
	controls := []Control{
		{ID: "speed", Name: "Rotation Speed", Target: TargetSlider, Key: "speed", Region: -1,
			Preferred: midisession.ControlChange, Min: 0, Max: 2},
		{ID: "brightness", Name: "Brightness", Target: TargetSlider, Key: "brightness", Region: -1,
			Preferred: midisession.ControlChange, Min: 0, Max: 1},
		{ID: "audio-gain", Name: "Audio Gain", Target: TargetSlider, Key: "audio-gain", Region: -1,
			Preferred: midisession.ControlChange, Min: 0, Max: 4},
		{ID: "camera-distance", Name: "Camera Distance", Target: TargetSlider, Key: "camera-distance", Region: -1,
			Preferred: midisession.ControlChange, Min: 1, Max: 20, Step: 0.5},
		{ID: "background-hue", Name: "Background Hue", Target: TargetSlider, Key: "background", SubKey: "hue", Region: -1,
			Preferred: midisession.ControlChange, Min: 0, Max: 360},
		{ID: "background-lightness", Name: "Background Lightness", Target: TargetSlider, Key: "background", SubKey: "lightness", Region: -1,
			Preferred: midisession.ControlChange, Min: 0, Max: 1},
		{ID: "auto-rotate", Name: "Auto Rotate", Target: TargetToggle, Key: "auto-rotate", Region: -1,
			Preferred: midisession.NoteOn},
		{ID: "mirror", Name: "Mirror", Target: TargetToggle, Key: "mirror", Region: -1,
			Preferred: midisession.NoteOn},
		{ID: "render-mode", Name: "Render Mode", Target: TargetModeSelect, Key: "render-mode", Region: -1,
			Preferred: midisession.NoteOn, Options: RenderModes},
		{ID: "camera-rotation", Name: "Camera Rotation", Target: TargetCameraRotation, Key: "camera", Region: -1,
			Preferred: midisession.ControlChange, Min: 0, Max: 6.28318530717958647692, Relative: true},
		{ID: "favorite-next", Name: "All Regions: Next Favorite", Target: TargetFavoriteNav, Key: "next", Region: -1,
			Preferred: midisession.NoteOn},
		{ID: "favorite-prev", Name: "All Regions: Previous Favorite", Target: TargetFavoriteNav, Key: "prev", Region: -1,
			Preferred: midisession.NoteOn},
		{ID: "capture-snapshot", Name: "Capture Snapshot", Target: TargetAction, Key: "capture-snapshot", Region: -1,
			Preferred: midisession.NoteOn},
		{ID: "clear-all", Name: "Clear All Regions", Target: TargetAction, Key: "clear-all", Region: -1,
			Preferred: midisession.NoteOn},
	}

	for i := 0; i < RegionCount; i++ {
		controls = append(controls,
			Control{ID: fmt.Sprintf("region-%d-visible", i), Name: fmt.Sprintf("Region %d Visibility", i+1),
				Target: TargetRegionVisibility, Region: i, Preferred: midisession.NoteOn},
			Control{ID: fmt.Sprintf("region-%d-scale", i), Name: fmt.Sprintf("Region %d Scale", i+1),
				Target: TargetRegionSlider, Region: i, SubKey: "scale",
				Preferred: midisession.ControlChange, Min: 0, Max: 2},
			Control{ID: fmt.Sprintf("region-%d-rotation", i), Name: fmt.Sprintf("Region %d Rotation", i+1),
				Target: TargetRegionRotation, Region: i,
				Preferred: midisession.ControlChange, Min: 0, Max: 6.28318530717958647692, Relative: true},
			Control{ID: fmt.Sprintf("region-%d-trigger", i), Name: fmt.Sprintf("Region %d Retrigger", i+1),
				Target: TargetRegionTrigger, Region: i, Key: "retrigger", Preferred: midisession.NoteOn},
			Control{ID: fmt.Sprintf("region-%d-favorite-next", i), Name: fmt.Sprintf("Region %d Next Favorite", i+1),
				Target: TargetFavoriteNav, Region: i, Key: "next", Preferred: midisession.NoteOn},
			Control{ID: fmt.Sprintf("region-%d-favorite-prev", i), Name: fmt.Sprintf("Region %d Previous Favorite", i+1),
				Target: TargetFavoriteNav, Region: i, Key: "prev", Preferred: midisession.NoteOn},
		)
	}

	// Crossfade pairs over adjacent regions: one fader drives both scales.
	for i := 0; i+1 < RegionCount; i += 2 {
		controls = append(controls, Control{
			ID:        fmt.Sprintf("crossfade-%d-%d", i, i+1),
			Name:      fmt.Sprintf("Crossfade Regions %d/%d", i+1, i+2),
			Target:    TargetCrossfade,
			Region:    i,
			PairWith:  i + 1,
			Preferred: midisession.ControlChange,
			Min:       0,
			Max:       1,
		})
	}

	for i := range controls {
		if controls[i].Target.Rotational() {
			controls[i].Relative = true
		}
		if controls[i].Target != TargetCrossfade {
			controls[i].PairWith = -1
		}
	}
	return controls
}

// ByID returns the catalog entry with the given ID, or false when the
// catalog no longer defines it.
func ByID(id string) (Control, bool) {
	for _, c := range Controls() {
		if c.ID == id {
			return c, true
		}
	}
	return Control{}, false
}

// ByTarget resolves a catalog entry from its target reference
// (kind + key + subkey + region). This is the lookup dispatch uses to map
// a stored mapping back onto the live catalog.
func ByTarget(target TargetKind, key, subKey string, region int) (Control, bool) {
	for _, c := range Controls() {
		if c.Target == target && c.Key == key && c.SubKey == subKey && c.Region == region {
			return c, true
		}
	}
	return Control{}, false
}
