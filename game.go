package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	TickRate       = 60 // simulation steps per second
	BroadcastRate  = 30 // state frames per second
	TickDuration   = time.Second / TickRate
	BroadcastEvery = TickRate / BroadcastRate
)

// ErrSessionFaulted is returned for operations on a run halted by a fault
var ErrSessionFaulted = errors.New("session halted after an internal error")

// Broadcaster sends messages to one connected client
type Broadcaster interface {
	SendJSON(msg interface{})
	SendBinary(data []byte)
}

// Game runs one World in real time for its owner. A phone controller may be
// attached as a second input source.
type Game struct {
	mu         sync.Mutex
	id         string
	cfg        WorldConfig
	world      *World
	clock      *Clock
	input      Input // accumulated since the last step
	owner      Broadcaster
	controller Broadcaster
	profileID  int64
	settings   Settings
	faulted    bool
	recorded   bool
	last       Snapshot
	lastActive time.Time
	tick       uint64

	db        *DB
	analytics *Analytics

	stop chan struct{}
}

// NewGame creates a session runner with a fresh world
func NewGame(id string, cfg WorldConfig, db *DB, analytics *Analytics) *Game {
	g := &Game{
		id:         id,
		cfg:        cfg,
		settings:   DefaultSettings(),
		db:         db,
		analytics:  analytics,
		lastActive: time.Now(),
		stop:       make(chan struct{}),
	}
	g.reset()
	return g
}

// reset starts a new run. Caller must hold mu (or own g exclusively).
func (g *Game) reset() {
	g.world = NewWorld(g.cfg)
	g.clock = NewClock(g.cfg.MaxDT)
	g.input = Input{}
	g.faulted = false
	g.recorded = false
	g.last = g.world.Snapshot()
	g.log().WithFields(logrus.Fields{
		"seed":       g.world.Cfg.Seed,
		"difficulty": GetDifficultyDef(g.cfg.Difficulty).Name,
	}).Info("run started")
	g.analytics.Track(EvtRunStart, g.profileID, g.id, "")
}

func (g *Game) log() *logrus.Entry {
	return Log.WithField("session", g.id)
}

// Run steps the world at TickRate until ctx is done or Stop is called
func (g *Game) Run(ctx context.Context) {
	ticker := time.NewTicker(TickDuration)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			g.update(now)
		case <-ctx.Done():
			return
		case <-g.stop:
			return
		}
	}
}

// Stop terminates the game loop. An unfinished run is recorded as it stands.
func (g *Game) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	select {
	case <-g.stop:
		return
	default:
		close(g.stop)
	}
	if !g.recorded && !g.faulted && g.world.Run.Seconds > 0 {
		g.finishRun()
	}
}

// update runs one frame: clamp the wall-clock delta, step, then publish
func (g *Game) update(now time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.faulted {
		return
	}

	dt := g.clock.Advance(now)
	// triggers wait for a step that actually runs
	var in Input
	if dt > 0 && !g.world.Run.Frozen() {
		in = g.takeInput()
	}
	prevPhase := g.world.Run.Phase
	prevBoss := g.world.Run.BossKills

	if err := g.safeStep(dt, in); err != nil {
		g.faulted = true
		g.analytics.Track(EvtFault, g.profileID, g.id, "")
		g.sendOwner(Envelope{T: MsgFault, Data: FaultMsg{Frame: g.world.Frame}})
		return
	}
	g.tick++

	run := &g.world.Run
	if run.BossKills > prevBoss {
		g.analytics.Track(EvtBossDown, g.profileID, g.id, fmt.Sprintf(`{"seconds":%.1f}`, run.Seconds))
	}
	if prevPhase == PhaseRunning && run.Phase == PhaseAwaitingUpgrade {
		g.log().WithField("level", run.Level).Info("level up")
		g.analytics.Track(EvtLevelUp, g.profileID, g.id, fmt.Sprintf(`{"level":%d}`, run.Level))
		g.last = g.world.Snapshot()
		g.sendOwner(Envelope{T: MsgLevelUp, Data: LevelUpMsg{Level: run.Level, Offers: g.last.Offers}})
	}
	if run.Phase == PhaseGameOver && !g.recorded {
		g.finishRun()
	}

	if g.tick%BroadcastEvery == 0 {
		g.broadcastState()
	}
}

// safeStep steps the world, turning a panic into an error
func (g *Game) safeStep(dt float64, in Input) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("step panic: %v", r)
			g.log().WithFields(logrus.Fields{
				"frame": g.world.Frame,
				"panic": r,
				"stack": string(debug.Stack()),
			}).Error("simulation fault, session halted")
		}
	}()
	g.world.Step(dt, in)
	return nil
}

// takeInput returns the accumulated input and clears its triggers
func (g *Game) takeInput() Input {
	in := g.input
	in.AutoFire = in.AutoFire || g.settings.Autofire
	g.input.Pulse = false
	g.input.CycleWeapon = false
	g.input.Cast = [3]bool{}
	return in
}

// HandleInput merges one input sample. Held state is replaced; triggers are
// OR-ed until the next step consumes them.
func (g *Game) HandleInput(m InputMsg) {
	g.mu.Lock()
	defer g.mu.Unlock()
	next := m.ToInput()
	next.Pulse = next.Pulse || g.input.Pulse
	next.CycleWeapon = next.CycleWeapon || g.input.CycleWeapon
	for i := range next.Cast {
		next.Cast[i] = next.Cast[i] || g.input.Cast[i]
	}
	g.input = next
	g.lastActive = time.Now()
}

// ChooseUpgrade applies the offered card at index i
func (g *Game) ChooseUpgrade(i int) (UpgradeID, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.faulted {
		return "", ErrSessionFaulted
	}
	id, err := g.world.ChooseUpgrade(i)
	if err != nil {
		return "", err
	}
	g.log().WithField("upgrade", id).Debug("upgrade chosen")
	g.lastActive = time.Now()
	return id, nil
}

// SetPaused pauses or resumes the run. Returns the resulting pause state.
// Pausing is ignored while an upgrade choice is pending.
func (g *Game) SetPaused(paused bool) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.setPausedLocked(paused)
}

func (g *Game) setPausedLocked(paused bool) bool {
	if g.world.SetPaused(paused) {
		g.clock.SetPaused(paused)
	}
	state := g.world.Run.Paused
	g.sendOwner(Envelope{T: MsgPaused, Data: PauseMsg{Paused: state}})
	return state
}

// TogglePause flips the pause state
func (g *Game) TogglePause() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.setPausedLocked(!g.world.Run.Paused)
}

// Restart discards the current run and starts a new one. An unfinished run
// is recorded first.
func (g *Game) Restart() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.recorded && !g.faulted && g.world.Run.Seconds > 0 {
		g.finishRun()
	}
	g.reset()
}

// Snapshot returns the latest view. After a fault it is the last view
// produced before the fault.
func (g *Game) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.faulted {
		g.last = g.world.Snapshot()
	}
	return g.last
}

// Seed returns the seed of the current run
func (g *Game) Seed() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.world.Cfg.Seed
}

// DifficultyName returns the difficulty the session was created with
func (g *Game) DifficultyName() string {
	return GetDifficultyDef(g.cfg.Difficulty).Name
}

// Faulted reports whether the run halted on a panic
func (g *Game) Faulted() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.faulted
}

// SetOwner attaches the owning client, the profile its runs belong to and
// the settings it plays with
func (g *Game) SetOwner(b Broadcaster, profileID int64, s Settings) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.owner = b
	g.profileID = profileID
	g.settings = s
	g.lastActive = time.Now()
}

// DetachOwner removes the owner and pauses the run until it rejoins
func (g *Game) DetachOwner() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.owner = nil
	g.lastActive = time.Now()
	if g.world.SetPaused(true) {
		g.clock.SetPaused(true)
	}
}

// HasOwner reports whether a client currently owns the run
func (g *Game) HasOwner() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.owner != nil
}

// SetController attaches a phone controller and notifies the owner
func (g *Game) SetController(b Broadcaster) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.controller = b
	g.sendOwner(Envelope{T: MsgCtrlOn})
}

// RemoveController detaches the controller
func (g *Game) RemoveController() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.controller == nil {
		return
	}
	g.controller = nil
	g.sendOwner(Envelope{T: MsgCtrlOff})
}

// IdleSince returns when the session last saw its owner act
func (g *Game) IdleSince() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastActive
}

// Settings returns the active settings
func (g *Game) Settings() Settings {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.settings
}

// UpdateSettings merges a partial settings object. It is persisted right away
// for a logged-in owner; runs in progress only pick up autofire.
func (g *Game) UpdateSettings(partial json.RawMessage) (Settings, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	s, err := g.settings.Merge(partial)
	if err != nil {
		return g.settings, err
	}
	g.settings = s
	g.saveSettings()
	return s, nil
}

func (g *Game) saveSettings() {
	if g.db == nil || g.profileID == 0 {
		return
	}
	if err := g.db.SaveSettings(g.profileID, g.settings); err != nil {
		g.log().WithError(err).Warn("save settings failed")
	}
}

// finishRun records the run once, checks achievements and tells the owner
func (g *Game) finishRun() {
	g.recorded = true
	r := g.world.Run
	rec := RunRecord{
		ProfileID:  g.profileID,
		SessionID:  g.id,
		Seconds:    r.Seconds,
		Score:      r.Score,
		Level:      r.Level,
		Kills:      r.Kills,
		BossKills:  r.BossKills,
		Upgrades:   r.UpgradesUsed,
		Difficulty: GetDifficultyDef(g.cfg.Difficulty).Name,
		Weapon:     string(g.world.Player.Weapon),
	}
	g.log().WithFields(logrus.Fields{
		"score":   rec.Score,
		"level":   rec.Level,
		"seconds": round1(rec.Seconds),
		"kills":   rec.Kills,
	}).Info("run ended")

	data, _ := json.Marshal(map[string]interface{}{
		"difficulty": rec.Difficulty, "seconds": rec.Seconds, "level": rec.Level, "score": rec.Score,
	})
	g.analytics.Track(EvtRunEnd, g.profileID, g.id, string(data))

	var names []string
	if g.db != nil {
		if _, err := g.db.RecordRun(rec); err != nil {
			g.log().WithError(err).Warn("record run failed")
		} else {
			for _, a := range CheckAchievements(g.db, g.profileID, rec) {
				names = append(names, a.Name)
				g.analytics.Track(EvtAchievement, g.profileID, g.id, fmt.Sprintf(`{"id":%q}`, a.ID))
			}
		}
		g.saveSettings()
	}

	if r.Phase == PhaseGameOver {
		g.sendOwner(Envelope{T: MsgGameOver, Data: GameOverMsg{
			Score:        rec.Score,
			Level:        rec.Level,
			Seconds:      round1(rec.Seconds),
			Kills:        rec.Kills,
			BossKills:    rec.BossKills,
			Weapon:       rec.Weapon,
			Achievements: names,
		}})
	}
}

// broadcastState sends the snapshot and pending events to the owner
func (g *Game) broadcastState() {
	g.last = g.world.Snapshot()
	if g.owner == nil {
		g.world.DrainEvents()
		return
	}
	data, err := EncodeSnapshot(g.last)
	if err != nil {
		g.log().WithError(err).Warn("snapshot encode failed")
		return
	}
	g.owner.SendBinary(data)
	if events := g.world.DrainEvents(); len(events) > 0 {
		g.owner.SendJSON(Envelope{T: MsgEvents, Data: events})
	}
}

func (g *Game) sendOwner(msg Envelope) {
	if g.owner != nil {
		g.owner.SendJSON(msg)
	}
}
