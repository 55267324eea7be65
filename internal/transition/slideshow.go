package transition

import (
	"time"

	"github.com/vjkit/stagectl/internal/stage"
)

// crossfade is one in-flight two-region animation. Outgoing and incoming
// values are complementary functions of the same progress scalar, never
// independently inconsistent.
type crossfade struct {
	outgoing, incoming int
	strategy           Strategy
	start              time.Time
	duration           time.Duration
}

// Slideshow advances visibility across an ordered region list on a fixed
// interval, animating each advance with the chosen strategy.
type Slideshow struct {
	store    *stage.Store
	strategy Strategy
	interval time.Duration
	duration time.Duration

	order       []int
	index       int
	running     bool
	nextAdvance time.Time
	active      *crossfade
}

// NewSlideshow creates a slideshow over the given region order. The
// transition duration applies to fade and zoom strategies.
func NewSlideshow(store *stage.Store, order []int, strategy Strategy, interval, duration time.Duration) *Slideshow {
	return &Slideshow{
		store:    store,
		strategy: strategy,
		interval: interval,
		duration: duration,
		order:    append([]int(nil), order...),
	}
}

// Running reports whether the slideshow is active.
func (s *Slideshow) Running() bool { return s.running }

// Index returns the position of the currently shown region in the order.
func (s *Slideshow) Index() int { return s.index }

// Strategy returns the current transition style.
func (s *Slideshow) Strategy() Strategy { return s.strategy }

// SetStrategy changes the transition style for subsequent advances.
func (s *Slideshow) SetStrategy(strategy Strategy) { s.strategy = strategy }

// Start begins a session at region 0. Any in-flight animation from a
// previous session is cancelled first so partial state never straddles
// two sessions. Fewer than two regions leaves the slideshow inert.
func (s *Slideshow) Start(now time.Time) {
	s.cancelActive()
	s.running = false
	if len(s.order) < 2 {
		return
	}

	s.index = 0
	for pos, region := range s.order {
		s.store.SetRegionVisible(region, pos == 0)
		s.store.SetFadeOpacity(region, nil)
		s.store.SetMorphProgress(region, nil)
		s.store.SetTransition(region, "", false)
	}
	s.running = true
	s.nextAdvance = now.Add(s.interval)
}

// Stop ends the session. An in-flight animation is cancelled and every
// participating region is restored to fully visible with overrides
// cleared. Safe to call when already stopped.
func (s *Slideshow) Stop() {
	if s.active != nil {
		for _, region := range s.order {
			s.store.SetRegionVisible(region, true)
			s.store.SetFadeOpacity(region, nil)
			s.store.SetMorphProgress(region, nil)
			s.store.SetTransition(region, "", false)
		}
	}
	s.active = nil
	s.running = false
}

func (s *Slideshow) cancelActive() {
	if s.active == nil {
		return
	}
	for _, region := range []int{s.active.outgoing, s.active.incoming} {
		s.store.SetRegionVisible(region, true)
		s.store.SetFadeOpacity(region, nil)
		s.store.SetMorphProgress(region, nil)
		s.store.SetTransition(region, "", false)
	}
	s.active = nil
}

// Tick drives the in-flight animation and fires the advance timer.
func (s *Slideshow) Tick(now time.Time) {
	if !s.running {
		return
	}
	if s.active != nil {
		s.driveActive(now)
		return
	}
	if now.Before(s.nextAdvance) {
		return
	}
	s.nextAdvance = now.Add(s.interval)
	s.advance(now)
}

func (s *Slideshow) advance(now time.Time) {
	next := (s.index + 1) % len(s.order)
	out, in := s.order[s.index], s.order[next]
	s.index = next

	if s.strategy == StrategyNone {
		s.store.SetRegionVisible(out, false)
		s.store.SetRegionVisible(in, true)
		return
	}

	// Both regions stay visible for the whole animation; positional
	// animation is frozen so neither jumps mid-transition.
	s.store.SetRegionVisible(out, true)
	s.store.SetRegionVisible(in, true)
	s.store.SetTransition(out, s.strategy.kind(), true)
	s.store.SetTransition(in, s.strategy.kind(), true)
	switch s.strategy {
	case StrategyFade:
		s.store.SetFadeOpacity(out, ptr(1))
		s.store.SetFadeOpacity(in, ptr(0))
	case StrategyZoom:
		s.store.SetMorphProgress(out, ptr(1))
		s.store.SetMorphProgress(in, ptr(0))
	}
	s.active = &crossfade{outgoing: out, incoming: in, strategy: s.strategy, start: now, duration: s.duration}
}

func (s *Slideshow) driveActive(now time.Time) {
	cf := s.active
	p := clamp01(now.Sub(cf.start).Seconds() / cf.duration.Seconds())
	e := ease(p)

	switch cf.strategy {
	case StrategyFade:
		s.store.SetFadeOpacity(cf.outgoing, ptr(1-e))
		s.store.SetFadeOpacity(cf.incoming, ptr(e))
	case StrategyZoom:
		s.store.SetMorphProgress(cf.outgoing, ptr(1-e))
		s.store.SetMorphProgress(cf.incoming, ptr(e))
	}

	if p < 1 {
		return
	}
	// Completion: hide the outgoing region and clear both overrides.
	s.store.SetRegionVisible(cf.outgoing, false)
	for _, region := range []int{cf.outgoing, cf.incoming} {
		s.store.SetFadeOpacity(region, nil)
		s.store.SetMorphProgress(region, nil)
		s.store.SetTransition(region, "", false)
	}
	s.active = nil
}
