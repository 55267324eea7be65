// Package stage holds the live show state: per-region visual fields and
// the global settings map. Every other component reads the latest value
// through this store rather than a captured copy, because MIDI messages
// and ticks can arrive between update cycles.
package stage

import (
	"fmt"
	"sync"
	"time"

	"github.com/vjkit/stagectl/internal/catalog"
)

// Vec3 is a world-space position. Only the arbiter's centroid math needs
// it; projection belongs to the renderer.
type Vec3 [3]float64

// Region is one addressable visual region.
type Region struct {
	Index    int
	Name     string
	Visible  bool
	Mode     string
	Position Vec3

	// BaseScale is the user-set scale; MIDIScale is the secondary
	// multiplicative factor MIDI writes. Kept separate so MIDI never
	// silently clobbers a manually-set base value.
	BaseScale float64
	MIDIScale float64

	// Transition overrides. nil means "no override"; the renderer treats
	// a nil opacity as fully opaque and a nil morph as unit scale.
	FadeOpacity    *float64
	MorphProgress  *float64
	TransitionKind string // "", "fade" or "zoom"
	Frozen         bool

	AutoRotate     *bool // nil inherits the global auto-rotate setting
	Randomize      bool
	RandomizeEvery time.Duration

	Favorites     []string
	FavoriteIndex int
}

// RegionPatch is a partial region update, applied field by field.
type RegionPatch struct {
	Visible   *bool
	Mode      *string
	MIDIScale *float64
}

// Snapshot is the per-region view the renderer consumes each frame.
type Snapshot struct {
	Index   int
	Visible bool
	Mode    string
	Opacity float64
	Scale   float64
}

// Store owns the regions and the nested settings map.
type Store struct {
	mu       sync.RWMutex
	regions  []*Region
	settings map[string]any
}

// NewStore creates a store with n regions carrying render defaults.
func NewStore(n int) *Store {
	s := &Store{settings: map[string]any{
		"speed":       1.0,
		"brightness":  1.0,
		"auto-rotate": true,
	}}
	for i := 0; i < n; i++ {
		s.regions = append(s.regions, &Region{
			Index:          i,
			Name:           fmt.Sprintf("Region %d", i+1),
			Visible:        true,
			Mode:           catalog.RenderModes[0],
			BaseScale:      1,
			MIDIScale:      1,
			RandomizeEvery: 10 * time.Second,
		})
	}
	return s
}

// RegionCount returns the number of regions.
func (s *Store) RegionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.regions)
}

// Region returns the region at index, or nil when out of range. The
// pointer is live; mutate it only through the store's setters.
func (s *Store) Region(i int) *Region {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i < 0 || i >= len(s.regions) {
		return nil
	}
	return s.regions[i]
}

// UpdateRegion applies a partial update to one region.
func (s *Store) UpdateRegion(i int, patch RegionPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.regions) {
		return
	}
	r := s.regions[i]
	if patch.Visible != nil {
		r.Visible = *patch.Visible
	}
	if patch.Mode != nil {
		r.Mode = *patch.Mode
	}
	if patch.MIDIScale != nil {
		r.MIDIScale = *patch.MIDIScale
	}
}

// RegionVisible reports the region's visibility flag.
func (s *Store) RegionVisible(i int) bool {
	if r := s.Region(i); r != nil {
		return r.Visible
	}
	return false
}

// SetRegionVisible sets the region's visibility flag.
func (s *Store) SetRegionVisible(i int, v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i >= 0 && i < len(s.regions) {
		s.regions[i].Visible = v
	}
}

// RegionMode returns the region's current visual mode.
func (s *Store) RegionMode(i int) string {
	if r := s.Region(i); r != nil {
		return r.Mode
	}
	return ""
}

// SetRegionMode sets the region's visual mode.
func (s *Store) SetRegionMode(i int, mode string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i >= 0 && i < len(s.regions) {
		s.regions[i].Mode = mode
	}
}

// SetFadeOpacity sets or clears the region's fade override.
func (s *Store) SetFadeOpacity(i int, v *float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i >= 0 && i < len(s.regions) {
		s.regions[i].FadeOpacity = v
	}
}

// SetMorphProgress sets or clears the region's morph override.
func (s *Store) SetMorphProgress(i int, v *float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i >= 0 && i < len(s.regions) {
		s.regions[i].MorphProgress = v
	}
}

// SetTransition records the region's in-flight transition style and
// positional freeze. An empty kind clears both.
func (s *Store) SetTransition(i int, kind string, frozen bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i >= 0 && i < len(s.regions) {
		s.regions[i].TransitionKind = kind
		s.regions[i].Frozen = frozen
	}
}

// RegionFrozen reports whether the region is mid-transition.
func (s *Store) RegionFrozen(i int) bool {
	if r := s.Region(i); r != nil {
		return r.Frozen
	}
	return false
}

// RegionRandomize reports whether the region's randomizer is enabled and
// its interval.
func (s *Store) RegionRandomize(i int) (bool, time.Duration) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i < 0 || i >= len(s.regions) {
		return false, 0
	}
	return s.regions[i].Randomize, s.regions[i].RandomizeEvery
}

// SetRegionRandomize toggles the region's randomizer.
func (s *Store) SetRegionRandomize(i int, on bool, every time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.regions) {
		return
	}
	s.regions[i].Randomize = on
	if every > 0 {
		s.regions[i].RandomizeEvery = every
	}
}

// AutoRotate returns the region's tri-state auto-rotate flag. nil means
// the region inherits the global setting.
func (s *Store) AutoRotate(i int) *bool {
	if r := s.Region(i); r != nil {
		return r.AutoRotate
	}
	return nil
}

// SetAutoRotate sets the region's tri-state auto-rotate flag verbatim,
// including nil for "unset".
func (s *Store) SetAutoRotate(i int, v *bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i >= 0 && i < len(s.regions) {
		s.regions[i].AutoRotate = v
	}
}

// NavigateFavorite steps one region (or all regions when index is
// negative) through its favorite list, applying the favorite's mode.
func (s *Store) NavigateFavorite(i int, step int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i >= 0 {
		if i < len(s.regions) {
			s.regions[i].stepFavorite(step)
		}
		return
	}
	for _, r := range s.regions {
		r.stepFavorite(step)
	}
}

func (r *Region) stepFavorite(step int) {
	n := len(r.Favorites)
	if n == 0 {
		return
	}
	r.FavoriteIndex = ((r.FavoriteIndex+step)%n + n) % n
	r.Mode = r.Favorites[r.FavoriteIndex]
}

// Snapshots returns the per-region render view. Opacity folds in the fade
// override; scale folds base, MIDI factor and morph together.
func (s *Store) Snapshots() []Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Snapshot, len(s.regions))
	for i, r := range s.regions {
		snap := Snapshot{Index: i, Visible: r.Visible, Mode: r.Mode, Opacity: 1, Scale: r.BaseScale * r.MIDIScale}
		if r.FadeOpacity != nil {
			snap.Opacity = *r.FadeOpacity
		}
		if r.MorphProgress != nil {
			snap.Scale *= *r.MorphProgress
		}
		out[i] = snap
	}
	return out
}

// VisibleCentroid returns the mean position of visible regions and whether
// any region is visible.
func (s *Store) VisibleCentroid() (Vec3, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var sum Vec3
	n := 0
	for _, r := range s.regions {
		if !r.Visible {
			continue
		}
		for k := 0; k < 3; k++ {
			sum[k] += r.Position[k]
		}
		n++
	}
	if n == 0 {
		return Vec3{}, false
	}
	for k := 0; k < 3; k++ {
		sum[k] /= float64(n)
	}
	return sum, true
}
