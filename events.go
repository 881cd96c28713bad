package main

// EventKind names a discrete notification for audio/HUD collaborators
type EventKind string

const (
	EventShoot     EventKind = "shoot"
	EventHit       EventKind = "hit"
	EventKill      EventKind = "kill"
	EventPickup    EventKind = "pickup"
	EventHeal      EventKind = "heal"
	EventLevelUp   EventKind = "level_up"
	EventExplosion EventKind = "explosion"
	EventCast      EventKind = "cast"
	EventPulse     EventKind = "pulse"
	EventPlayerHit EventKind = "player_hit"
	EventBossSpawn EventKind = "boss_spawn"
	EventBossDown  EventKind = "boss_down"
	EventWeapon    EventKind = "weapon"
	EventGameOver  EventKind = "game_over"
)

// Event is one fire-and-forget notification produced during a step
type Event struct {
	Kind  EventKind `msgpack:"k" json:"k"`
	X     float64   `msgpack:"x" json:"x"`
	Y     float64   `msgpack:"y" json:"y"`
	Value float64   `msgpack:"v" json:"v"`
	Tag   string    `msgpack:"s,omitempty" json:"s,omitempty"`
}

// lifecycle kinds happen a handful of times per run and bypass the cap
func (k EventKind) lifecycle() bool {
	switch k {
	case EventLevelUp, EventGameOver, EventBossSpawn, EventBossDown, EventWeapon:
		return true
	}
	return false
}

// emit records an event. Once the buffer holds MaxEvents only lifecycle
// events are still recorded.
func (w *World) emit(kind EventKind, x, y, value float64) {
	w.emitTag(kind, x, y, value, "")
}

func (w *World) emitTag(kind EventKind, x, y, value float64, tag string) {
	if len(w.Events) >= w.Cfg.MaxEvents && !kind.lifecycle() {
		return
	}
	w.Events = append(w.Events, Event{Kind: kind, X: round1(x), Y: round1(y), Value: value, Tag: tag})
}

// DrainEvents returns the events of the last steps and clears the buffer
func (w *World) DrainEvents() []Event {
	if len(w.Events) == 0 {
		return nil
	}
	out := make([]Event, len(w.Events))
	copy(out, w.Events)
	w.Events = w.Events[:0]
	return out
}
