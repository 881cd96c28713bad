package main

import (
	"encoding/json"
	"fmt"
)

// Settings are the per-profile preferences. On the wire and in storage they
// are a flat key/value object; a partial object only overwrites the keys it
// carries.
type Settings struct {
	VolMaster    float64 `json:"volMaster"`
	VolMusic     float64 `json:"volMusic"`
	VolSfx       float64 `json:"volSfx"`
	Autofire     bool    `json:"autofire"`
	HUDCollapsed bool    `json:"hudCollapsed"`
}

// DefaultSettings returns the settings of a fresh profile
func DefaultSettings() Settings {
	return Settings{VolMaster: 0.8, VolMusic: 0.5, VolSfx: 0.8}
}

// Merge overlays a partial JSON object onto s. Volumes are clamped to [0, 1].
func (s Settings) Merge(partial []byte) (Settings, error) {
	if len(partial) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(partial, &s); err != nil {
		return s, fmt.Errorf("merge settings: %w", err)
	}
	s.VolMaster = Clamp(s.VolMaster, 0, 1)
	s.VolMusic = Clamp(s.VolMusic, 0, 1)
	s.VolSfx = Clamp(s.VolSfx, 0, 1)
	return s, nil
}

// Pairs flattens the settings into key -> JSON value pairs for storage
func (s Settings) Pairs() (map[string]string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		out[k] = string(v)
	}
	return out, nil
}

// SettingsFromPairs rebuilds settings from stored pairs on top of the
// defaults. Unknown keys are ignored.
func SettingsFromPairs(pairs map[string]string) Settings {
	s := DefaultSettings()
	for k, v := range pairs {
		partial, err := json.Marshal(map[string]json.RawMessage{k: json.RawMessage(v)})
		if err != nil {
			continue
		}
		if merged, err := s.Merge(partial); err == nil {
			s = merged
		}
	}
	return s
}
