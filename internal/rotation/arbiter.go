// Package rotation reconciles the competing drivers of every rotatable
// entity (autonomous auto-rotation, user drag, MIDI override) into a
// single continuous angle with physically-plausible deceleration.
package rotation

import (
	"math"
	"sync"
	"time"
)

// Camera is the entity ID of the camera's rotation state. Regions use
// their non-negative index.
const Camera = -1

// Config carries the arbitration tunables.
type Config struct {
	// Sensitivity is radians per relative-encoder detent.
	Sensitivity float64
	// Debounce is how long after the last MIDI message the override holds
	// before autonomous rotation resumes.
	Debounce time.Duration
	// AngularSpeed is radians per second at full velocity.
	AngularSpeed float64
	// CoastFriction filters velocity while coasting; DragFriction is the
	// faster rate used while the user is dragging.
	CoastFriction float64
	DragFriction  float64
	// CentroidRate interpolates the camera orbit centroid per tick.
	CentroidRate float64
}

// DefaultConfig returns the stock feel: a gentle turntable stop while
// coasting and a near-immediate halt under drag.
func DefaultConfig() Config {
	return Config{
		Sensitivity:   0.05,
		Debounce:      150 * time.Millisecond,
		AngularSpeed:  0.9,
		CoastFriction: 0.06,
		DragFriction:  0.35,
		CentroidRate:  0.08,
	}
}

// Below this, a velocity headed for zero snaps to exactly zero so the
// low-pass filter has no infinite tail.
const velocityEpsilon = 0.01

// Flags are the always-current accessors for the auto-rotate state the
// arbiter suspends and restores. They read through the live store, never
// a captured copy.
type Flags struct {
	// AutoRotate returns the entity's tri-state flag; nil means unset.
	AutoRotate func(id int) *bool
	// SetAutoRotate writes the flag verbatim, including nil.
	SetAutoRotate func(id int, v *bool)
	// GlobalAutoRotate is the fallback when the entity flag is unset.
	GlobalAutoRotate func() bool
	// Speed scales angular speed; nil means 1.
	Speed func() float64
}

// state is one entity's accumulator. The override lifecycle is an explicit
// Free -> Overridden(saved) -> Free machine: the prior auto-rotate flag is
// saved once on entry and restored exactly once on exit.
type state struct {
	angle    float64
	velocity float64
	dragging bool

	overridden    bool
	overrideUntil time.Time
	saved         *bool
}

// Arbiter owns the rotation state of every entity plus the camera's orbit
// centroid. All methods are called from the engine loop.
type Arbiter struct {
	mu     sync.Mutex
	cfg    Config
	flags  Flags
	states map[int]*state

	centroid       [3]float64
	centroidTarget [3]float64
}

// NewArbiter creates an arbiter with the given tunables and flag accessors.
func NewArbiter(cfg Config, flags Flags) *Arbiter {
	return &Arbiter{cfg: cfg, flags: flags, states: make(map[int]*state)}
}

func (a *Arbiter) ensure(id int) *state {
	st, ok := a.states[id]
	if !ok {
		st = &state{}
		a.states[id] = st
	}
	return st
}

// ApplyMIDI feeds one rotation-mapped MIDI value into the entity's
// accumulator. Relative mode adds the signed offset around center 64;
// absolute mode maps the value onto [min,max]. Either way the entity
// becomes MIDI-authoritative for the debounce window.
func (a *Arbiter) ApplyMIDI(id int, value uint8, relative bool, min, max float64, now time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()

	st := a.ensure(id)
	if relative {
		st.angle += (float64(value) - 64) * a.cfg.Sensitivity
	} else {
		st.angle = min + float64(value)/127*(max-min)
	}

	if !st.overridden {
		st.overridden = true
		st.saved = a.flags.AutoRotate(id)
		off := false
		a.flags.SetAutoRotate(id, &off)
	}
	st.overrideUntil = now.Add(a.cfg.Debounce)
}

// SetDragging marks the entity as under a user drag. The drag gesture
// supplies orientation externally; the arbiter only stops autonomous
// motion quickly and leaves the angle alone.
func (a *Arbiter) SetDragging(id int, dragging bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.ensure(id).dragging = dragging
}

// SetCentroidTarget sets the point the camera centroid drifts toward,
// typically the mean position of visible regions.
func (a *Arbiter) SetCentroidTarget(target [3]float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.centroidTarget = target
}

// Centroid returns the smoothed camera orbit centroid.
func (a *Arbiter) Centroid() [3]float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.centroid
}

// Tick advances every entity by dt seconds. Priority per entity: an
// unexpired MIDI override, then drag, then autonomous rotation. Override
// expiry restores the saved auto-rotate flag and resumes from the current
// angle, never from zero.
func (a *Arbiter) Tick(now time.Time, dt float64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	speed := 1.0
	if a.flags.Speed != nil {
		speed = a.flags.Speed()
	}

	for id, st := range a.states {
		if st.overridden && now.After(st.overrideUntil) {
			a.flags.SetAutoRotate(id, st.saved)
			st.overridden = false
			st.saved = nil
		}

		target := 0.0
		friction := a.cfg.CoastFriction
		switch {
		case st.dragging:
			friction = a.cfg.DragFriction
		case st.overridden:
			// MIDI owns the angle; auto-rotate stays suspended.
		case a.effectiveAuto(id):
			target = 1
		}

		st.velocity += (target - st.velocity) * friction
		if target == 0 && math.Abs(st.velocity) < velocityEpsilon {
			st.velocity = 0
		}
		st.angle += dt * st.velocity * a.cfg.AngularSpeed * speed
	}

	// Centroid interpolation is independent of angle advancement.
	for k := 0; k < 3; k++ {
		a.centroid[k] += (a.centroidTarget[k] - a.centroid[k]) * a.cfg.CentroidRate
	}
}

func (a *Arbiter) effectiveAuto(id int) bool {
	if flag := a.flags.AutoRotate(id); flag != nil {
		return *flag
	}
	if a.flags.GlobalAutoRotate != nil {
		return a.flags.GlobalAutoRotate()
	}
	return false
}

// Angle returns the entity's accumulated angle in radians.
func (a *Arbiter) Angle(id int) float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ensure(id).angle
}

// SetAngle sets the entity's angle directly, without touching velocity or
// the override state.
func (a *Arbiter) SetAngle(id int, angle float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.ensure(id).angle = angle
}

// Velocity returns the entity's current velocity throttle in [0,1].
func (a *Arbiter) Velocity(id int) float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ensure(id).velocity
}

// Overridden reports whether the entity is currently MIDI-authoritative.
func (a *Arbiter) Overridden(id int) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ensure(id).overridden
}
