package midisession

import (
	"fmt"
	"time"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register rtmidi driver
)

// Session manages the connection to one MIDI input port and feeds parsed
// messages into the engine. Port-level failures (device unplugged, no
// permission) are reported through the error callback as a string and are
// never fatal; dispatch simply stops receiving messages.
type Session struct {
	stop func()
}

// NewSession creates an idle session.
func NewSession() *Session {
	return &Session{}
}

// ListInPorts returns the names of available MIDI input ports.
func ListInPorts() []string {
	ins := midi.GetInPorts()
	names := make([]string, 0, len(ins))
	for _, in := range ins {
		names = append(names, in.String())
	}
	return names
}

func findInPort(name string) drivers.In {
	for _, in := range midi.GetInPorts() {
		if in.String() == name {
			return in
		}
	}
	return nil
}

// Start begins listening on the named input port. Every decoded
// NoteOn/NoteOff/ControlChange is handed to dispatch; other message kinds
// are dropped at the driver boundary.
func (s *Session) Start(portName string, dispatch func(Message), onError func(string)) error {
	if portName == "" {
		return nil
	}

	inPort := findInPort(portName)
	if inPort == nil {
		err := fmt.Sprintf("input port not found: %s", portName)
		if onError != nil {
			onError(err)
		}
		return fmt.Errorf("%s", err)
	}

	stop, err := midi.ListenTo(inPort, func(msg midi.Message, timestampms int32) {
		var channel, key, value uint8
		now := time.Now()

		switch {
		case msg.GetNoteOn(&channel, &key, &value):
			kind := NoteOn
			if value == 0 {
				// Running-status note off
				kind = NoteOff
			}
			dispatch(Message{Kind: kind, Channel: channel + 1, Number: key, Value: value, Timestamp: now})
		case msg.GetNoteOff(&channel, &key, &value):
			dispatch(Message{Kind: NoteOff, Channel: channel + 1, Number: key, Value: value, Timestamp: now})
		case msg.GetControlChange(&channel, &key, &value):
			dispatch(Message{Kind: ControlChange, Channel: channel + 1, Number: key, Value: value, Timestamp: now})
		}
	})
	if err != nil {
		if onError != nil {
			onError(fmt.Sprintf("failed to start listening: %v", err))
		}
		return fmt.Errorf("failed to start listening: %w", err)
	}

	s.stop = stop
	return nil
}

// Stop ends listening. Safe to call repeatedly or before Start.
func (s *Session) Stop() {
	if s.stop != nil {
		s.stop()
		s.stop = nil
	}
}

// Close tears down the session and the MIDI driver.
func (s *Session) Close() {
	s.Stop()
	midi.CloseDriver()
}
