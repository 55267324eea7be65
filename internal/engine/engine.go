// Package engine runs the single authoritative update loop. MIDI arrival,
// timer fires and per-frame ticks all serialize through one goroutine, so
// there is no parallel mutation anywhere in the core: callbacks enqueue
// commands, the loop consumes them, and every component reads shared state
// through the live store.
package engine

import (
	"context"
	"log"
	"time"

	"github.com/vjkit/stagectl/internal/catalog"
	"github.com/vjkit/stagectl/internal/config"
	"github.com/vjkit/stagectl/internal/dispatch"
	"github.com/vjkit/stagectl/internal/mapping"
	"github.com/vjkit/stagectl/internal/midisession"
	"github.com/vjkit/stagectl/internal/rotation"
	"github.com/vjkit/stagectl/internal/stage"
	"github.com/vjkit/stagectl/internal/transition"
)

// Hooks are the host-supplied outward callbacks: actions the engine
// triggers but does not implement (capture, per-region retrigger, camera
// pushes to the renderer).
type Hooks struct {
	TriggerAction  func(name string)
	TriggerRegion  func(index int, name string)
	SetCameraAngle func(angle float64)
}

// RegionFrame is one region's render state for a frame.
type RegionFrame struct {
	stage.Snapshot
	Angle float64
}

// Frame is the per-tick snapshot the renderer consumes.
type Frame struct {
	Regions        []RegionFrame
	CameraAngle    float64
	CameraCentroid [3]float64
}

// Engine owns the loop and the wiring between store, dispatcher, arbiter
// and sequencers.
type Engine struct {
	cfg      config.Config
	store    *stage.Store
	mappings *mapping.Store

	dispatcher *dispatch.Dispatcher
	arbiter    *rotation.Arbiter
	slideshow  *transition.Slideshow
	randomizer *transition.Randomizer

	cmds chan func()
	done chan struct{}
}

// New wires an engine over the given stores. A non-positive tick rate
// falls back to the default so a zero-value config still runs.
func New(cfg config.Config, store *stage.Store, mappings *mapping.Store, hooks Hooks) *Engine {
	if cfg.TickRate <= 0 {
		cfg.TickRate = config.Default().TickRate
	}
	e := &Engine{
		cfg:      cfg,
		store:    store,
		mappings: mappings,
		cmds:     make(chan func(), 64),
		done:     make(chan struct{}),
	}

	e.arbiter = rotation.NewArbiter(cfg.RotationConfig(), rotation.Flags{
		AutoRotate:       e.autoRotateFlag,
		SetAutoRotate:    e.setAutoRotateFlag,
		GlobalAutoRotate: func() bool { return store.BoolSetting("auto-rotate") },
		Speed:            func() float64 { return store.FloatSetting("speed", 1) },
	})

	cb := dispatch.Callbacks{
		UpdateSetting: store.SetSetting,
		UpdateRegion:  store.UpdateRegion,
		TriggerAction: func(name string) {
			if hooks.TriggerAction != nil {
				hooks.TriggerAction(name)
			}
		},
		TriggerRegion: func(index int, name string) {
			if hooks.TriggerRegion != nil {
				hooks.TriggerRegion(index, name)
			}
		},
		NavigateFavorite: store.NavigateFavorite,
		SetCameraAngle:   hooks.SetCameraAngle,
	}
	e.dispatcher = dispatch.NewDispatcher(mappings, store, e.arbiter, cb)

	strategy := StrategyFromString(cfg.Transition.Strategy)
	interval := time.Duration(cfg.Transition.IntervalSeconds * float64(time.Second))
	duration := time.Duration(cfg.Transition.DurationSeconds * float64(time.Second))
	order := make([]int, store.RegionCount())
	for i := range order {
		order[i] = i
	}
	e.slideshow = transition.NewSlideshow(store, order, strategy, interval, duration)
	e.randomizer = transition.NewRandomizer(store, catalog.RenderModes,
		StrategyFromString(cfg.Transition.RandomizerStrategy), duration, nil)

	return e
}

// StrategyFromString parses a configured strategy name, defaulting to fade.
func StrategyFromString(s string) transition.Strategy {
	switch s {
	case "none":
		return transition.StrategyNone
	case "zoom":
		return transition.StrategyZoom
	default:
		return transition.StrategyFade
	}
}

// autoRotateFlag reads the tri-state auto-rotate flag through the live
// store: regions carry their own, the camera's lives in settings.
func (e *Engine) autoRotateFlag(id int) *bool {
	if id == rotation.Camera {
		v, ok := e.store.Setting("camera-auto-rotate", "")
		if !ok {
			return nil
		}
		if b, ok := v.(bool); ok {
			return &b
		}
		return nil
	}
	return e.store.AutoRotate(id)
}

func (e *Engine) setAutoRotateFlag(id int, v *bool) {
	if id == rotation.Camera {
		if v == nil {
			e.store.SetSetting("camera-auto-rotate", "", nil)
			return
		}
		e.store.SetSetting("camera-auto-rotate", "", *v)
		return
	}
	e.store.SetAutoRotate(id, v)
}

// Dispatch enqueues one MIDI message onto the loop. Called from the MIDI
// driver goroutine; returns immediately after engine shutdown.
func (e *Engine) Dispatch(msg midisession.Message) {
	select {
	case e.cmds <- func() { e.dispatcher.Dispatch(msg) }:
	case <-e.done:
	}
}

// Do runs fn on the engine loop. Used by hosts to poke sequencers and drag
// state from UI callbacks.
func (e *Engine) Do(fn func()) {
	select {
	case e.cmds <- fn:
	case <-e.done:
	}
}

// StartSlideshow begins a slideshow session from region 0.
func (e *Engine) StartSlideshow() {
	e.Do(func() { e.slideshow.Start(time.Now()) })
}

// StopSlideshow ends the session and restores visibility.
func (e *Engine) StopSlideshow() {
	e.Do(func() { e.slideshow.Stop() })
}

// SetDragging marks a rotatable entity as under a user drag.
func (e *Engine) SetDragging(id int, dragging bool) {
	e.arbiter.SetDragging(id, dragging)
}

// Arbiter exposes the rotation arbiter for hosts that read angles directly.
func (e *Engine) Arbiter() *rotation.Arbiter { return e.arbiter }

// Snapshot assembles the current frame for the renderer.
func (e *Engine) Snapshot() Frame {
	snaps := e.store.Snapshots()
	frame := Frame{
		Regions:        make([]RegionFrame, len(snaps)),
		CameraAngle:    e.arbiter.Angle(rotation.Camera),
		CameraCentroid: e.arbiter.Centroid(),
	}
	for i, s := range snaps {
		frame.Regions[i] = RegionFrame{Snapshot: s, Angle: e.arbiter.Angle(s.Index)}
	}
	return frame
}

// Run drives the loop until ctx is cancelled, then tears down: sequencers
// stopped, pending mapping writes flushed, and no callback can fire after
// return because everything executes on this goroutine.
func (e *Engine) Run(ctx context.Context) {
	tick := time.Second / time.Duration(e.cfg.TickRate)
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			close(e.done)
			e.slideshow.Stop()
			e.randomizer.Stop()
			if err := e.mappings.Flush(); err != nil {
				log.Printf("engine: flush mappings: %v", err)
			}
			return
		case fn := <-e.cmds:
			fn()
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now
			e.tick(now, dt)
		}
	}
}

func (e *Engine) tick(now time.Time, dt float64) {
	if centroid, ok := e.store.VisibleCentroid(); ok {
		e.arbiter.SetCentroidTarget(centroid)
	}
	e.arbiter.Tick(now, dt)
	e.slideshow.Tick(now)
	e.randomizer.Tick(now)
}
