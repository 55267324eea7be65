// Package mapping stores the learned associations between catalog entries
// and physical MIDI signals, and runs the learn workflow that creates them.
package mapping

import (
	"github.com/google/uuid"

	"github.com/vjkit/stagectl/internal/catalog"
	"github.com/vjkit/stagectl/internal/midisession"
)

// Mapping is one learned association between a catalog target and a
// physical MIDI signal. Multiple mappings may point at the same target
// (many physical controls driving one parameter) and one signal may match
// multiple mappings; the dispatcher applies every match.
type Mapping struct {
	ID       string             `json:"id"`
	Target   catalog.TargetKind `json:"target"`
	Key      string             `json:"key,omitempty"`
	SubKey   string             `json:"sub_key,omitempty"`
	Region   int                `json:"region"`
	Kind     midisession.Kind   `json:"kind"`
	Channel  uint8              `json:"channel"`
	Number   uint8              `json:"number"`
	Min      float64            `json:"min"`
	Max      float64            `json:"max"`
	Step     float64            `json:"step,omitempty"`
	Relative bool               `json:"relative,omitempty"`
}

// newMapping builds a mapping for a catalog entry from the learned signal.
// Rotation targets default to relative-encoder semantics because endless
// encoders report values centered near 64, not an absolute position.
func newMapping(ctl catalog.Control, msg midisession.Message) Mapping {
	return Mapping{
		ID:       uuid.New().String(),
		Target:   ctl.Target,
		Key:      ctl.Key,
		SubKey:   ctl.SubKey,
		Region:   ctl.Region,
		Kind:     msg.Kind,
		Channel:  msg.Channel,
		Number:   msg.Number,
		Min:      ctl.Min,
		Max:      ctl.Max,
		Step:     ctl.Step,
		Relative: ctl.Relative || ctl.Target.Rotational(),
	}
}

// MatchesMessage reports whether the mapping's learned signal is the one
// the message carries.
func (m Mapping) MatchesMessage(msg midisession.Message) bool {
	return m.Kind == msg.Kind && m.Channel == msg.Channel && m.Number == msg.Number
}

// SameSignal reports whether two mappings listen to the same physical signal.
func (m Mapping) SameSignal(other Mapping) bool {
	return m.Kind == other.Kind && m.Channel == other.Channel && m.Number == other.Number
}

// SameTarget reports whether two mappings point at the same catalog target.
func (m Mapping) SameTarget(other Mapping) bool {
	return m.Target == other.Target && m.Key == other.Key &&
		m.SubKey == other.SubKey && m.Region == other.Region
}

// ForControl reports whether the mapping points at the given catalog entry.
func (m Mapping) ForControl(ctl catalog.Control) bool {
	return m.Target == ctl.Target && m.Key == ctl.Key &&
		m.SubKey == ctl.SubKey && m.Region == ctl.Region
}
