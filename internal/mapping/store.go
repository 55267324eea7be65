package mapping

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vjkit/stagectl/internal/catalog"
	"github.com/vjkit/stagectl/internal/midisession"
)

// SchemaVersion is the on-disk mapping schema version. Files carrying an
// unknown version load as an empty mapping set, never as an error.
const SchemaVersion = 1

// storeFile is the persisted shape.
type storeFile struct {
	Version  int       `json:"version"`
	Mappings []Mapping `json:"mappings"`
}

const defaultSaveDelay = 250 * time.Millisecond

// Store holds the live mapping list and the learn state machine.
//
// The in-memory slice is authoritative and is mutated synchronously, so the
// dispatcher sees a newly learned mapping before the next message arrives;
// only the disk write behind it is debounced.
type Store struct {
	mu       sync.Mutex
	path     string
	mappings []Mapping

	learning   string // control ID while in the learn state, "" when idle
	learnHooks []func(Mapping)

	saveDelay time.Duration
	saveTimer *time.Timer
}

// NewStore creates an in-memory store with no persistence. Used by tests
// and by hosts that manage durability themselves.
func NewStore() *Store {
	return &Store{saveDelay: defaultSaveDelay}
}

// DefaultPath returns the platform-appropriate mapping file location.
func DefaultPath() (string, error) {
	configHome, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configHome, "stagectl", "mappings.json"), nil
}

// Open loads the store backed by the file at path. A missing, corrupt or
// wrong-version file degrades to an empty mapping set.
func Open(path string) *Store {
	s := &Store{path: path, saveDelay: defaultSaveDelay}
	s.mappings = loadFile(path)
	return s
}

func loadFile(path string) []Mapping {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		log.Printf("mapping: read %s: %v, starting empty", path, err)
		return nil
	}

	var f storeFile
	if err := json.Unmarshal(data, &f); err != nil {
		log.Printf("mapping: parse %s: %v, starting empty", path, err)
		return nil
	}
	if f.Version != SchemaVersion {
		log.Printf("mapping: %s has schema version %d, starting empty", path, f.Version)
		return nil
	}
	return f.Mappings
}

// All returns a copy of the current mapping list.
func (s *Store) All() []Mapping {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Mapping, len(s.mappings))
	copy(out, s.mappings)
	return out
}

// Matches returns every mapping whose learned signal matches the message,
// in stored order. Fan-out is deliberate: all of them get applied.
func (s *Store) Matches(msg midisession.Message) []Mapping {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Mapping
	for _, m := range s.mappings {
		if m.MatchesMessage(msg) {
			out = append(out, m)
		}
	}
	return out
}

// ForControl returns the mappings pointing at the given catalog entry.
func (s *Store) ForControl(ctl catalog.Control) []Mapping {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Mapping
	for _, m := range s.mappings {
		if m.ForControl(ctl) {
			out = append(out, m)
		}
	}
	return out
}

// StartLearn enters the learn state for the given control. The next
// accepted message commits or absorbs a mapping for it.
func (s *Store) StartLearn(controlID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.learning = controlID
}

// CancelLearn returns to idle without mutating the mapping list.
func (s *Store) CancelLearn() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.learning = ""
}

// Learning returns the control ID being learned, or "" when idle.
func (s *Store) Learning() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.learning
}

// OnLearn registers a hook invoked after a mapping is committed by a learn
// session. Hooks run outside the store lock.
func (s *Store) OnLearn(fn func(Mapping)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.learnHooks = append(s.learnHooks, fn)
}

// HandleLearn consumes one message while in the learn state. NoteOff and
// anything that is not NoteOn/ControlChange is ignored and leaves the
// session open. A signal already mapped to the same target closes the
// session without creating a duplicate. Returns the committed mapping and
// whether one was created.
func (s *Store) HandleLearn(msg midisession.Message) (Mapping, bool) {
	if msg.Kind != midisession.NoteOn && msg.Kind != midisession.ControlChange {
		return Mapping{}, false
	}

	s.mu.Lock()
	if s.learning == "" {
		s.mu.Unlock()
		return Mapping{}, false
	}

	ctl, ok := catalog.ByID(s.learning)
	if !ok {
		// Catalog no longer defines the target; nothing to learn.
		s.learning = ""
		s.mu.Unlock()
		return Mapping{}, false
	}

	candidate := newMapping(ctl, msg)
	for _, m := range s.mappings {
		if m.SameSignal(candidate) && m.SameTarget(candidate) {
			// Idempotent re-learn: close the session, keep one mapping.
			s.learning = ""
			s.mu.Unlock()
			return Mapping{}, false
		}
	}

	s.mappings = append(s.mappings, candidate)
	s.learning = ""
	hooks := s.learnHooks
	s.scheduleSaveLocked()
	s.mu.Unlock()

	for _, fn := range hooks {
		fn(candidate)
	}
	return candidate, true
}

// Remove deletes one mapping by ID.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, m := range s.mappings {
		if m.ID == id {
			s.mappings = append(s.mappings[:i], s.mappings[i+1:]...)
			s.scheduleSaveLocked()
			return true
		}
	}
	return false
}

// Clear empties the store.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mappings = nil
	s.scheduleSaveLocked()
}

// scheduleSaveLocked coalesces disk writes behind the synchronous
// in-memory mutation. Callers hold s.mu.
func (s *Store) scheduleSaveLocked() {
	if s.path == "" {
		return
	}
	if s.saveTimer != nil {
		s.saveTimer.Stop()
	}
	s.saveTimer = time.AfterFunc(s.saveDelay, func() {
		if err := s.Flush(); err != nil {
			log.Printf("mapping: save: %v", err)
		}
	})
}

// Flush writes the current mapping list to disk immediately and cancels
// any pending debounced write. No-op for in-memory stores.
func (s *Store) Flush() error {
	s.mu.Lock()
	if s.saveTimer != nil {
		s.saveTimer.Stop()
		s.saveTimer = nil
	}
	path := s.path
	// Snapshot the slice: Remove shifts elements of the live backing array
	// in place, and marshalling happens after the lock is released.
	f := storeFile{Version: SchemaVersion, Mappings: append([]Mapping(nil), s.mappings...)}
	if f.Mappings == nil {
		f.Mappings = []Mapping{}
	}
	s.mu.Unlock()

	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
