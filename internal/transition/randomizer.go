package transition

import (
	"math/rand"
	"time"

	"github.com/vjkit/stagectl/internal/stage"
)

// modeSwap is one in-flight single-region transition: the region dips out,
// swaps mode at the midpoint of progress, and comes back.
type modeSwap struct {
	strategy Strategy
	start    time.Time
	duration time.Duration
	mode     string
	swapped  bool
}

// Randomizer replaces each enabled region's visual mode on that region's
// own interval, with a fade or zoom scoped to the single region.
type Randomizer struct {
	store    *stage.Store
	modes    []string
	strategy Strategy
	duration time.Duration
	rand     *rand.Rand

	active   map[int]*modeSwap
	nextFire map[int]time.Time
}

// NewRandomizer creates a randomizer choosing uniformly from modes. A nil
// source seeds from the clock.
func NewRandomizer(store *stage.Store, modes []string, strategy Strategy, duration time.Duration, src rand.Source) *Randomizer {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	return &Randomizer{
		store:    store,
		modes:    append([]string(nil), modes...),
		strategy: strategy,
		duration: duration,
		rand:     rand.New(src),
		active:   make(map[int]*modeSwap),
		nextFire: make(map[int]time.Time),
	}
}

// Strategy returns the current transition style.
func (r *Randomizer) Strategy() Strategy { return r.strategy }

// SetStrategy changes the transition style for subsequent swaps.
func (r *Randomizer) SetStrategy(strategy Strategy) { r.strategy = strategy }

// Tick drives every in-flight swap and fires due per-region timers.
// Enable/disable is read from the store each tick, so toggling a region's
// randomize flag takes effect immediately.
func (r *Randomizer) Tick(now time.Time) {
	for i := 0; i < r.store.RegionCount(); i++ {
		on, every := r.store.RegionRandomize(i)

		if anim, ok := r.active[i]; ok {
			if !on {
				r.cancel(i)
				continue
			}
			r.drive(i, anim, now, every)
			continue
		}

		if !on {
			delete(r.nextFire, i)
			continue
		}
		due, ok := r.nextFire[i]
		if !ok {
			r.nextFire[i] = now.Add(every)
			continue
		}
		if now.Before(due) {
			continue
		}
		r.nextFire[i] = now.Add(every)
		r.begin(i, now)
	}
}

// begin starts one swap, picking a mode distinct from the current one so a
// re-roll is never a no-op. Regions already mid-transition are not
// retriggered.
func (r *Randomizer) begin(i int, now time.Time) {
	if r.store.RegionFrozen(i) {
		return
	}
	current := r.store.RegionMode(i)
	candidates := make([]string, 0, len(r.modes))
	for _, m := range r.modes {
		if m != current {
			candidates = append(candidates, m)
		}
	}
	if len(candidates) == 0 {
		return
	}
	mode := candidates[r.rand.Intn(len(candidates))]

	if r.strategy == StrategyNone {
		r.store.SetRegionMode(i, mode)
		return
	}

	r.store.SetTransition(i, r.strategy.kind(), true)
	switch r.strategy {
	case StrategyFade:
		r.store.SetFadeOpacity(i, ptr(1))
	case StrategyZoom:
		r.store.SetMorphProgress(i, ptr(1))
	}
	r.active[i] = &modeSwap{strategy: r.strategy, start: now, duration: r.duration, mode: mode}
}

// drive advances one swap. The mode flips exactly once, at the midpoint of
// progress where opacity/scale bottoms out, even though this runs every
// animation tick.
func (r *Randomizer) drive(i int, anim *modeSwap, now time.Time, every time.Duration) {
	p := clamp01(now.Sub(anim.start).Seconds() / anim.duration.Seconds())

	if p >= 0.5 && !anim.swapped {
		r.store.SetRegionMode(i, anim.mode)
		anim.swapped = true
	}

	level := 1 - fold(p)
	switch anim.strategy {
	case StrategyFade:
		r.store.SetFadeOpacity(i, ptr(level))
	case StrategyZoom:
		r.store.SetMorphProgress(i, ptr(level))
	}

	if p < 1 {
		return
	}
	r.clear(i)
	delete(r.active, i)
	r.nextFire[i] = now.Add(every)
}

// cancel aborts an in-flight swap without applying the pending mode: the
// region returns to full visibility, overrides cleared.
func (r *Randomizer) cancel(i int) {
	r.clear(i)
	delete(r.active, i)
	delete(r.nextFire, i)
}

func (r *Randomizer) clear(i int) {
	r.store.SetRegionVisible(i, true)
	r.store.SetFadeOpacity(i, nil)
	r.store.SetMorphProgress(i, nil)
	r.store.SetTransition(i, "", false)
}

// Stop cancels every in-flight swap and pending timer.
func (r *Randomizer) Stop() {
	for i := range r.active {
		r.clear(i)
	}
	r.active = make(map[int]*modeSwap)
	r.nextFire = make(map[int]time.Time)
}
