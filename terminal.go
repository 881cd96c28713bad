package main

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

const (
	termFrame = time.Second / 30
	// terminals report key presses only; a movement key counts as held
	// until this long after its last repeat
	termHoldWindow = 180 * time.Millisecond
)

var (
	stylePlayer  = tcell.StyleDefault.Foreground(tcell.ColorAqua).Bold(true)
	styleEnemy   = tcell.StyleDefault.Foreground(tcell.ColorRed)
	styleBoss    = tcell.StyleDefault.Foreground(tcell.ColorFuchsia).Bold(true)
	styleShot    = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	styleHostile = tcell.StyleDefault.Foreground(tcell.ColorOrange)
	styleGem     = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleHeart   = tcell.StyleDefault.Foreground(tcell.ColorPink)
	styleFx      = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleHUD     = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorNavy)
)

var enemyGlyphs = map[uint8]rune{
	uint8(EnemyChaser):   'c',
	uint8(EnemyRunner):   'r',
	uint8(EnemyTank):     'T',
	uint8(EnemyShooter):  's',
	uint8(EnemySplitter): 'x',
	uint8(EnemyBoss):     'B',
}

// keyState tracks which keys count as held
type keyState struct {
	held map[rune]time.Time
	aim  float64
	has  bool
	// toggles
	autoFire bool
	autoAim  bool
	autoCast bool
}

func newKeyState(s Settings) *keyState {
	return &keyState{held: make(map[rune]time.Time), autoFire: s.Autofire}
}

func (k *keyState) press(r rune, now time.Time) {
	k.held[r] = now
}

func (k *keyState) down(r rune, now time.Time) bool {
	t, ok := k.held[r]
	return ok && now.Sub(t) <= termHoldWindow
}

// sample builds the held part of an input sample
func (k *keyState) sample(now time.Time) InputMsg {
	var m InputMsg
	if k.down('w', now) {
		m.MY--
	}
	if k.down('s', now) {
		m.MY++
	}
	if k.down('a', now) {
		m.MX--
	}
	if k.down('d', now) {
		m.MX++
	}
	m.Aim, m.HasAim = k.aim, k.has
	m.Fire = k.down(' ', now)
	m.AutoFire, m.AutoAim, m.AutoCast = k.autoFire, k.autoAim, k.autoCast
	return m
}

// arrowAim maps an arrow key to an aim angle
func arrowAim(key tcell.Key) (float64, bool) {
	switch key {
	case tcell.KeyRight:
		return 0, true
	case tcell.KeyDown:
		return math.Pi / 2, true
	case tcell.KeyLeft:
		return math.Pi, true
	case tcell.KeyUp:
		return -math.Pi / 2, true
	}
	return 0, false
}

// termAction is what one key press asks the runner to do
type termAction int

const (
	actNone termAction = iota
	actQuit
	actPause
	actRestart
	actTrigger // one-shot input flags in the returned sample
	actChoose
)

// handleKey updates key state and returns the action for a key press. For
// actTrigger the trigger sample is returned, for actChoose the card index.
func (k *keyState) handleKey(ev *tcell.EventKey, now time.Time) (termAction, InputMsg, int) {
	if a, ok := arrowAim(ev.Key()); ok {
		k.aim, k.has = a, true
		return actNone, InputMsg{}, 0
	}
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return actQuit, InputMsg{}, 0
	case tcell.KeyTab:
		m := k.sample(now)
		m.Cycle = true
		return actTrigger, m, 0
	case tcell.KeyEnter:
		return actRestart, InputMsg{}, 0
	case tcell.KeyRune:
	default:
		return actNone, InputMsg{}, 0
	}

	r := ev.Rune()
	switch r {
	case 'w', 's', 'a', 'd', ' ':
		k.press(r, now)
	case 'W', 'S', 'A', 'D':
		k.press(r+('a'-'A'), now)
	case 'x':
		m := k.sample(now)
		m.Pulse = true
		return actTrigger, m, 0
	case 'q', 'e', 'r':
		m := k.sample(now)
		m.Cast[strings.IndexRune("qer", r)] = true
		return actTrigger, m, 0
	case '1', '2', '3':
		return actChoose, InputMsg{}, int(r - '1')
	case 'p':
		return actPause, InputMsg{}, 0
	case 'f':
		k.autoFire = !k.autoFire
	case 'g':
		k.autoAim = !k.autoAim
	case 'c':
		k.autoCast = !k.autoCast
	}
	return actNone, InputMsg{}, 0
}

// Terminal runs one session locally on a tcell screen
type Terminal struct {
	screen tcell.Screen
	game   *Game
	keys   *keyState
	status string
}

// NewTerminal wires a screen to a session runner
func NewTerminal(screen tcell.Screen, game *Game) *Terminal {
	return &Terminal{
		screen: screen,
		game:   game,
		keys:   newKeyState(game.Settings()),
	}
}

// RunTerminal plays one session in the current terminal until quit
func RunTerminal(ctx context.Context, cfg WorldConfig, db *DB, analytics *Analytics) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("terminal: %w", err)
	}
	return playTerminal(ctx, screen, "local-"+GenerateUUID()[:8], cfg, db, analytics)
}

// playTerminal runs one private session on screen until quit or ctx is done.
// The screen is initialised here and finalised on return.
func playTerminal(ctx context.Context, screen tcell.Screen, id string, cfg WorldConfig, db *DB, analytics *Analytics) error {
	if err := screen.Init(); err != nil {
		return fmt.Errorf("terminal: %w", err)
	}
	defer screen.Fini()

	game := NewGame(id, cfg, db, analytics)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go game.Run(ctx)
	defer game.Stop()

	return NewTerminal(screen, game).Loop(ctx)
}

// Loop polls keys and redraws until quit or ctx is done
func (t *Terminal) Loop(ctx context.Context) error {
	events := make(chan tcell.Event, 32)
	go func() {
		for {
			ev := t.screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	ticker := time.NewTicker(termFrame)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			switch ev := ev.(type) {
			case *tcell.EventResize:
				t.screen.Sync()
			case *tcell.EventKey:
				if t.onKey(ev, time.Now()) {
					return nil
				}
			}
		case now := <-ticker.C:
			t.game.HandleInput(t.keys.sample(now))
			t.Draw(t.game.Snapshot())
		}
	}
}

// onKey applies one key press. Returns true to quit.
func (t *Terminal) onKey(ev *tcell.EventKey, now time.Time) bool {
	act, msg, idx := t.keys.handleKey(ev, now)
	switch act {
	case actQuit:
		return true
	case actPause:
		t.game.TogglePause()
	case actRestart:
		if t.game.Snapshot().Phase == PhaseGameOver.String() {
			t.game.Restart()
			t.status = ""
		}
	case actTrigger:
		t.game.HandleInput(msg)
	case actChoose:
		if id, err := t.game.ChooseUpgrade(idx); err != nil {
			t.status = err.Error()
		} else {
			t.status = "took " + string(id)
		}
	}
	return false
}

// Draw renders a snapshot scaled into the screen, HUD on the last row
func (t *Terminal) Draw(s Snapshot) {
	t.screen.Clear()
	w, h := t.screen.Size()
	fieldH := h - 1
	if w <= 0 || fieldH <= 0 {
		return
	}
	cell := func(x, y float64) (int, int, bool) {
		if s.Width <= 0 || s.Height <= 0 {
			return 0, 0, false
		}
		cx := int(x / s.Width * float64(w))
		cy := int(y / s.Height * float64(fieldH))
		return cx, cy, cx >= 0 && cx < w && cy >= 0 && cy < fieldH
	}
	put := func(x, y float64, r rune, st tcell.Style) {
		if cx, cy, ok := cell(x, y); ok {
			t.screen.SetContent(cx, cy, r, nil, st)
		}
	}

	for _, p := range s.Particles {
		if p.A > 0.3 {
			put(p.X, p.Y, '\'', styleFx)
		}
	}
	for _, b := range s.Blasts {
		put(b.X, b.Y, 'O', styleFx)
	}
	if s.Beam != nil {
		steps := int(Distance(s.Beam.X1, s.Beam.Y1, s.Beam.X2, s.Beam.Y2)/s.Width*float64(w)) + 1
		for i := 0; i <= steps; i++ {
			f := float64(i) / float64(steps)
			put(s.Beam.X1+(s.Beam.X2-s.Beam.X1)*f, s.Beam.Y1+(s.Beam.Y2-s.Beam.Y1)*f, '=', styleShot)
		}
	}
	for _, g := range s.Gems {
		put(g.X, g.Y, '+', styleGem)
	}
	for _, hr := range s.Hearts {
		put(hr.X, hr.Y, 'v', styleHeart)
	}
	for _, b := range s.EnemyBullets {
		put(b.X, b.Y, '*', styleHostile)
	}
	for _, b := range s.Bullets {
		put(b.X, b.Y, '.', styleShot)
	}
	for _, e := range s.Enemies {
		st := styleEnemy
		if e.T == uint8(EnemyBoss) {
			st = styleBoss
		}
		put(e.X, e.Y, enemyGlyphs[e.T], st)
	}
	for _, o := range s.Orbitals {
		put(o[0], o[1], 'o', stylePlayer)
	}
	for _, j := range s.Jets {
		put(j[0], j[1], '^', stylePlayer)
	}
	if s.Player.Alive {
		put(s.Player.X, s.Player.Y, '@', stylePlayer)
	}

	row := fieldH
	for x := 0; x < w; x++ {
		t.screen.SetContent(x, row, ' ', nil, styleHUD)
	}
	putText(t.screen, 0, row, clipText(hudLine(s, t.status), w), styleHUD)

	if s.Phase == PhaseAwaitingUpgrade.String() {
		for i, o := range s.Offers {
			line := fmt.Sprintf(" %d) %s - %s ", i+1, o.Title, o.Desc)
			putText(t.screen, 1, 1+i, clipText(line, w-2), styleHUD)
		}
	}
	if s.Phase == PhaseGameOver.String() {
		putText(t.screen, 1, 1, clipText(" GAME OVER - enter to restart, esc to quit ", w-2), styleHUD)
	}
	t.screen.Show()
}

// hudLine formats the one-line status bar
func hudLine(s Snapshot, status string) string {
	state := ""
	switch {
	case s.Paused:
		state = " PAUSED"
	case s.BossActive:
		state = " BOSS"
	}
	line := fmt.Sprintf("HP %.0f/%.0f  LV %d  XP %d/%d  SC %d  K %d  %s  %02d:%02d  %s%s",
		math.Max(0, s.Player.HP), s.Player.MaxHP, s.Level, s.XP, s.XPNext, s.Score, s.Kills,
		s.Player.Weapon, int(s.Seconds)/60, int(s.Seconds)%60, pulseLabel(s.PulseCD), state)
	if status != "" {
		line += "  " + status
	}
	return line
}

func pulseLabel(cd float64) string {
	if cd <= 0 {
		return "PULSE"
	}
	return fmt.Sprintf("pulse %.1f", cd)
}

// clipText truncates s to at most width display columns
func clipText(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "")
}

// putText writes a string at (x, y), advancing by each rune's display width
func putText(screen tcell.Screen, x, y int, s string, style tcell.Style) {
	for _, r := range s {
		screen.SetContent(x, y, r, nil, style)
		x += runewidth.RuneWidth(r)
	}
}
