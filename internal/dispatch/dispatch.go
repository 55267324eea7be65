// Package dispatch turns parsed MIDI messages into parameter updates. It
// owns no state of its own: every side effect goes through the injected
// callbacks, and every read goes through the live state reader.
package dispatch

import (
	"time"

	"github.com/vjkit/stagectl/internal/catalog"
	"github.com/vjkit/stagectl/internal/mapping"
	"github.com/vjkit/stagectl/internal/midisession"
	"github.com/vjkit/stagectl/internal/rotation"
	"github.com/vjkit/stagectl/internal/stage"
)

// Crossfade plateau thresholds: region A holds 100% while the fader value
// stays at or below T1, region B holds 100% at or above T2. Between its
// threshold and the end of travel each side ramps linearly.
const (
	crossfadeT1 = 90
	crossfadeT2 = 40
)

// Callbacks is the write surface the host supplies. All of them are called
// synchronously from within Dispatch.
type Callbacks struct {
	UpdateSetting    func(key, subKey string, value any)
	UpdateRegion     func(index int, patch stage.RegionPatch)
	TriggerAction    func(name string)
	TriggerRegion    func(index int, name string)
	NavigateFavorite func(index int, step int)
	SetCameraAngle   func(angle float64)
}

// State exposes the live values flip and cycle semantics read. Reads go
// through the host store so they always observe the latest value, not one
// captured at registration time.
type State interface {
	Setting(key, subKey string) (any, bool)
	RegionVisible(index int) bool
}

// Rotator is the slice of the rotation arbiter dispatch drives.
type Rotator interface {
	ApplyMIDI(id int, value uint8, relative bool, min, max float64, now time.Time)
	Angle(id int) float64
}

// Dispatcher matches incoming messages against the mapping store and
// applies every match.
type Dispatcher struct {
	store *mapping.Store
	state State
	rot   Rotator
	cb    Callbacks
}

// NewDispatcher wires the dispatcher to its collaborators.
func NewDispatcher(store *mapping.Store, state State, rot Rotator, cb Callbacks) *Dispatcher {
	return &Dispatcher{store: store, state: state, rot: rot, cb: cb}
}

// Dispatch consumes one physical MIDI event. While a learn session is
// open the message is routed to the store instead of being applied.
func (d *Dispatcher) Dispatch(msg midisession.Message) {
	if d.store.Learning() != "" {
		d.store.HandleLearn(msg)
		return
	}
	for _, m := range d.store.Matches(msg) {
		d.apply(m, msg)
	}
}

// apply executes one matched mapping. The switch is exhaustive over the
// closed target set; a mapping whose kind we no longer know is skipped,
// not an error.
func (d *Dispatcher) apply(m mapping.Mapping, msg midisession.Message) {
	switch m.Target {
	case catalog.TargetSlider:
		d.cb.UpdateSetting(m.Key, m.SubKey, normalize(msg.Value, m.Min, m.Max, m.Step))

	case catalog.TargetToggle:
		if msg.Kind != midisession.NoteOn {
			return
		}
		cur := false
		if v, ok := d.state.Setting(m.Key, ""); ok {
			cur, _ = v.(bool)
		}
		d.cb.UpdateSetting(m.Key, "", !cur)

	case catalog.TargetModeSelect:
		d.applyModeSelect(m, msg)

	case catalog.TargetRegionVisibility:
		vis := !d.state.RegionVisible(m.Region)
		d.cb.UpdateRegion(m.Region, stage.RegionPatch{Visible: &vis})

	case catalog.TargetRegionSlider:
		// Written as the secondary multiplicative factor so MIDI never
		// clobbers the user-set base value.
		v := normalize(msg.Value, m.Min, m.Max, m.Step)
		d.cb.UpdateRegion(m.Region, stage.RegionPatch{MIDIScale: &v})

	case catalog.TargetRegionTrigger:
		d.cb.TriggerRegion(m.Region, m.Key)

	case catalog.TargetAction:
		d.cb.TriggerAction(m.Key)

	case catalog.TargetCameraRotation:
		d.rot.ApplyMIDI(rotation.Camera, msg.Value, m.Relative, m.Min, m.Max, msg.Timestamp)
		if d.cb.SetCameraAngle != nil {
			d.cb.SetCameraAngle(d.rot.Angle(rotation.Camera))
		}

	case catalog.TargetRegionRotation:
		d.rot.ApplyMIDI(m.Region, msg.Value, m.Relative, m.Min, m.Max, msg.Timestamp)

	case catalog.TargetFavoriteNav:
		step := 1
		if m.Key == "prev" {
			step = -1
		}
		d.cb.NavigateFavorite(m.Region, step)

	case catalog.TargetCrossfade:
		d.applyCrossfade(m, msg)
	}
}

// applyModeSelect cycles on NoteOn and maps a CC value onto the option
// list index, clamped. The option list comes from the catalog; a stale
// mapping whose target dropped out of the catalog is ignored.
func (d *Dispatcher) applyModeSelect(m mapping.Mapping, msg midisession.Message) {
	ctl, ok := catalog.ByTarget(m.Target, m.Key, m.SubKey, m.Region)
	if !ok || len(ctl.Options) == 0 {
		return
	}

	current := ""
	if v, ok := d.state.Setting(m.Key, ""); ok {
		current, _ = v.(string)
	}
	idx := 0
	for i, opt := range ctl.Options {
		if opt == current {
			idx = i
			break
		}
	}

	switch msg.Kind {
	case midisession.NoteOn:
		idx = (idx + 1) % len(ctl.Options)
	case midisession.ControlChange:
		idx = int(float64(msg.Value) / 127 * float64(len(ctl.Options)))
		if idx >= len(ctl.Options) {
			idx = len(ctl.Options) - 1
		}
	default:
		return
	}
	d.cb.UpdateSetting(m.Key, "", ctl.Options[idx])
}

// applyCrossfade treats the CC value as a single fader over two regions'
// scale factors with a plateau at each end of travel.
func (d *Dispatcher) applyCrossfade(m mapping.Mapping, msg midisession.Message) {
	ctl, ok := catalog.ByTarget(m.Target, m.Key, m.SubKey, m.Region)
	if !ok || ctl.PairWith < 0 {
		return
	}

	v := float64(msg.Value)
	a := 1.0
	if v > crossfadeT1 {
		a = 1 - (v-crossfadeT1)/(127-crossfadeT1)
	}
	b := 1.0
	if v < crossfadeT2 {
		b = v / crossfadeT2
	}
	a, b = clamp01(a), clamp01(b)

	d.cb.UpdateRegion(m.Region, stage.RegionPatch{MIDIScale: &a})
	d.cb.UpdateRegion(ctl.PairWith, stage.RegionPatch{MIDIScale: &b})
}

// normalize maps a 0-127 value into [min,max], rounded to step when set
// and clamped so dispatch never writes an out-of-range number.
func normalize(value uint8, min, max, step float64) float64 {
	v := min + float64(value)/127*(max-min)
	if step > 0 {
		steps := (v - min) / step
		v = min + float64(int(steps+0.5))*step
	}
	if max > min {
		if v < min {
			v = min
		}
		if v > max {
			v = max
		}
	}
	return v
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
