package stage

// SetSetting writes a global setting, nested under subKey for composite
// settings. Values written by dispatch are already clamped.
func (s *Store) SetSetting(key, subKey string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if subKey == "" {
		s.settings[key] = value
		return
	}
	nested, ok := s.settings[key].(map[string]any)
	if !ok {
		nested = map[string]any{}
		s.settings[key] = nested
	}
	nested[subKey] = value
}

// Setting reads a global setting, nested under subKey when non-empty.
func (s *Store) Setting(key, subKey string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.settings[key]
	if !ok {
		return nil, false
	}
	if subKey == "" {
		return v, true
	}
	nested, ok := v.(map[string]any)
	if !ok {
		return nil, false
	}
	nv, ok := nested[subKey]
	return nv, ok
}

// BoolSetting reads a boolean setting, false when unset.
func (s *Store) BoolSetting(key string) bool {
	v, ok := s.Setting(key, "")
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// FloatSetting reads a numeric setting with a fallback default.
func (s *Store) FloatSetting(key string, def float64) float64 {
	v, ok := s.Setting(key, "")
	if !ok {
		return def
	}
	if f, ok := v.(float64); ok {
		return f
	}
	return def
}

// StringSetting reads a string setting, "" when unset.
func (s *Store) StringSetting(key string) string {
	v, ok := s.Setting(key, "")
	if !ok {
		return ""
	}
	str, _ := v.(string)
	return str
}
