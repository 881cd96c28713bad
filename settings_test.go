package main

import "testing"

func TestSettingsMergePartial(t *testing.T) {
	s := DefaultSettings()
	merged, err := s.Merge([]byte(`{"volMusic":0.1,"autofire":true}`))
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if merged.VolMusic != 0.1 || !merged.Autofire {
		t.Errorf("expected merged keys applied, got %+v", merged)
	}
	if merged.VolMaster != s.VolMaster || merged.VolSfx != s.VolSfx || merged.HUDCollapsed {
		t.Errorf("expected untouched keys kept, got %+v", merged)
	}
	if s.VolMusic != 0.5 {
		t.Error("merge must not mutate the receiver")
	}
}

func TestSettingsMergeClampsVolumes(t *testing.T) {
	merged, err := DefaultSettings().Merge([]byte(`{"volMaster":3,"volSfx":-1}`))
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if merged.VolMaster != 1 || merged.VolSfx != 0 {
		t.Errorf("expected volumes clamped to 1 and 0, got %f and %f", merged.VolMaster, merged.VolSfx)
	}
}

func TestSettingsMergeEmptyAndInvalid(t *testing.T) {
	s := DefaultSettings()
	if merged, err := s.Merge(nil); err != nil || merged != s {
		t.Errorf("expected empty merge to be a no-op, got %+v %v", merged, err)
	}
	if _, err := s.Merge([]byte(`{"volMaster":"loud"}`)); err == nil {
		t.Error("expected type error")
	}
}

func TestSettingsPairsRoundTrip(t *testing.T) {
	s := Settings{VolMaster: 0.3, VolMusic: 0, VolSfx: 1, Autofire: true, HUDCollapsed: true}
	pairs, err := s.Pairs()
	if err != nil {
		t.Fatalf("pairs: %v", err)
	}
	if len(pairs) != 5 {
		t.Errorf("expected 5 keys, got %d", len(pairs))
	}
	if pairs["autofire"] != "true" || pairs["volMaster"] != "0.3" {
		t.Errorf("unexpected pairs %v", pairs)
	}
	if got := SettingsFromPairs(pairs); got != s {
		t.Errorf("expected %+v, got %+v", s, got)
	}
}

func TestSettingsFromPairsIgnoresJunk(t *testing.T) {
	got := SettingsFromPairs(map[string]string{"volSfx": "0.2", "theme": `"dark"`, "volMusic": "nope"})
	want := DefaultSettings()
	want.VolSfx = 0.2
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}
