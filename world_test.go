package main

import (
	"math"
	"testing"
)

func newTestWorld() *World {
	cfg := DefaultWorldConfig()
	cfg.Seed = 42
	return NewWorld(cfg)
}

// placeEnemy adds an enemy of type t at (x, y) with the given hp
func placeEnemy(w *World, t EnemyType, x, y, hp float64) *Enemy {
	e := w.newEnemy(t, x, y)
	e.HP, e.MaxHP = hp, hp
	w.Enemies = append(w.Enemies, e)
	return e
}

func TestNewWorldDefaults(t *testing.T) {
	w := NewWorld(WorldConfig{Seed: 1})
	if w.Cfg.Width != 1280 || w.Cfg.MaxEnemies != 400 {
		t.Errorf("expected defaults filled in, got %+v", w.Cfg)
	}
	if w.Player.X != 640 || w.Player.Y != 360 {
		t.Errorf("expected centered player, got (%f,%f)", w.Player.X, w.Player.Y)
	}
	if w.Run.Level != 1 || w.Run.XPNext != XPFirstLevel {
		t.Errorf("expected level 1 / %d xp, got %d / %d", XPFirstLevel, w.Run.Level, w.Run.XPNext)
	}
}

func TestStepClampsDT(t *testing.T) {
	w := newTestWorld()
	w.Step(5, Input{})
	if math.Abs(w.Run.Seconds-MaxFrameDT) > 1e-9 {
		t.Errorf("expected %f simulated seconds, got %f", MaxFrameDT, w.Run.Seconds)
	}
}

func TestStepZeroDTDoesNothing(t *testing.T) {
	w := newTestWorld()
	w.Step(0, Input{Fire: true})
	if w.Frame != 0 || len(w.Bullets) != 0 {
		t.Error("expected zero dt to be a no-op")
	}
}

func TestStepPausedFreezes(t *testing.T) {
	w := newTestWorld()
	w.SetPaused(true)
	w.Step(0.016, Input{MoveX: 1, Fire: true})
	if w.Player.X != 640 || len(w.Bullets) != 0 || w.Run.Seconds != 0 {
		t.Error("expected paused world to stay frozen")
	}
	w.SetPaused(false)
	w.Step(0.016, Input{MoveX: 1})
	if w.Player.X <= 640 {
		t.Error("expected movement after resume")
	}
}

func TestStepFiresAtFireRate(t *testing.T) {
	w := newTestWorld()
	for i := 0; i < 60; i++ {
		w.Step(1.0/60, Input{Fire: true, HasAim: true, Aim: 0})
	}
	shots := 0
	for _, ev := range w.Events {
		if ev.Kind == EventShoot {
			shots++
		}
	}
	// 4.5 shots per second
	if shots < 4 || shots > 5 {
		t.Errorf("expected 4-5 shots in one second, got %d", shots)
	}
}

func TestStepAutoAimTargetsNearest(t *testing.T) {
	w := newTestWorld()
	placeEnemy(w, EnemyChaser, 640, 100, 50)
	placeEnemy(w, EnemyChaser, 1200, 360, 50)
	w.Step(0.001, Input{AutoAim: true, HasAim: true, Aim: 0})
	if math.Abs(w.Player.Aim-(-math.Pi/2)) > 0.05 {
		t.Errorf("expected aim straight up, got %f", w.Player.Aim)
	}
}

func TestStepEventsCapped(t *testing.T) {
	w := newTestWorld()
	for i := 0; i < 200; i++ {
		w.emit(EventHit, 0, 0, 1)
	}
	if len(w.Events) != w.Cfg.MaxEvents {
		t.Errorf("expected %d events, got %d", w.Cfg.MaxEvents, len(w.Events))
	}
	if got := w.DrainEvents(); len(got) != w.Cfg.MaxEvents || len(w.Events) != 0 {
		t.Error("expected drain to return and clear events")
	}
}

func TestLevelUpEventSurvivesFullBuffer(t *testing.T) {
	w := newTestWorld()
	for i := 0; i < w.Cfg.MaxEvents; i++ {
		w.emit(EventHit, 0, 0, 1)
	}
	p := w.Player
	w.dropGem(p.X, p.Y, XPFirstLevel)
	w.Step(0.016, Input{})

	if w.Run.Phase != PhaseAwaitingUpgrade {
		t.Fatalf("expected awaiting upgrade, got %s", w.Run.Phase)
	}
	hits, levelUps := 0, 0
	for _, ev := range w.DrainEvents() {
		switch ev.Kind {
		case EventHit:
			hits++
		case EventLevelUp:
			levelUps++
		}
	}
	if levelUps != 1 {
		t.Errorf("expected 1 level_up event with a full buffer, got %d", levelUps)
	}
	if hits != w.Cfg.MaxEvents {
		t.Errorf("expected hit events to stay capped at %d, got %d", w.Cfg.MaxEvents, hits)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	w := newTestWorld()
	placeEnemy(w, EnemyTank, 100, 100, 5)
	w.Player.Skill(SkillOrbital).Level = 2
	w.Step(1.0/60, Input{Fire: true})

	data, err := EncodeSnapshot(w.Snapshot())
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	s, err := DecodeSnapshot(data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if s.Frame != w.Frame || s.Phase != "running" {
		t.Errorf("expected frame %d running, got %d %s", w.Frame, s.Frame, s.Phase)
	}
	if len(s.Enemies) == 0 || s.Enemies[0].T != uint8(EnemyTank) {
		t.Errorf("expected tank in snapshot, got %+v", s.Enemies)
	}
	if len(s.Orbitals) != OrbitalCount(2) {
		t.Errorf("expected %d orbitals, got %d", OrbitalCount(2), len(s.Orbitals))
	}
	if s.Player.Skills["orbital"].Level != 2 {
		t.Errorf("expected orbital level 2 in player skills, got %+v", s.Player.Skills)
	}
}

func TestSoftCapEnemies(t *testing.T) {
	cfg := DefaultWorldConfig()
	cfg.Seed = 3
	cfg.MaxEnemies = 5
	w := NewWorld(cfg)
	for i := 0; i < 20; i++ {
		w.spawnEnemy(EnemyChaser)
	}
	if len(w.Enemies) != 5 {
		t.Errorf("expected 5 enemies at cap, got %d", len(w.Enemies))
	}
}

func TestParticleCapDropsOldest(t *testing.T) {
	cfg := DefaultWorldConfig()
	cfg.Seed = 3
	cfg.MaxParticles = 20
	w := NewWorld(cfg)
	w.burst(1, 1, "a")
	w.burst(2, 2, "b")
	w.burst(3, 3, "c")
	if len(w.Particles) != 20 {
		t.Fatalf("expected 20 particles, got %d", len(w.Particles))
	}
	if w.Particles[len(w.Particles)-1].Color != "c" {
		t.Error("expected newest burst kept")
	}
	olds := 0
	for _, p := range w.Particles {
		if p.Color == "a" {
			olds++
		}
	}
	if olds != 4 {
		t.Errorf("expected 4 of the oldest burst left, got %d", olds)
	}
}
