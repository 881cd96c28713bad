package main

import (
	"encoding/json"
	"math"
)

// Client -> Server message types
const (
	MsgCreate      = "create" // start a new run
	MsgJoin        = "join"   // reattach to an existing run
	MsgLeave       = "leave"
	MsgInput       = "input"
	MsgChoose      = "choose" // pick an upgrade card
	MsgPause       = "pause"
	MsgRestart     = "restart"
	MsgSettings    = "settings" // merge and persist settings
	MsgCheck       = "check"    // check if session exists
	MsgControl     = "control"  // phone controller attach
	MsgRegister    = "register"
	MsgLogin       = "login"
	MsgAuth        = "auth"
	MsgProfile     = "profile"
	MsgLeaderboard = "leaderboard"
)

// Server -> Client message types
const (
	MsgCreated     = "created"
	MsgJoined      = "joined"
	MsgEvents      = "events"
	MsgLevelUp     = "level_up"
	MsgPaused      = "paused"
	MsgGameOver    = "game_over"
	MsgFault       = "fault"
	MsgError       = "error"
	MsgChecked     = "checked"
	MsgControlOK   = "control_ok"
	MsgCtrlOn      = "ctrl_on"  // notify owner: controller attached
	MsgCtrlOff     = "ctrl_off" // notify owner: controller detached
	MsgAuthOK      = "auth_ok"
	MsgProfileData = "profile_data"
	MsgBoard       = "board"
	MsgSettingsOK  = "settings_ok"
)

// Envelope wraps all outgoing messages with a type field
type Envelope struct {
	T    string      `json:"t"`
	Data interface{} `json:"d,omitempty"`
}

// InEnvelope is used for incoming messages; RawMessage avoids a double unmarshal
type InEnvelope struct {
	T string          `json:"t"`
	D json.RawMessage `json:"d,omitempty"`
}

// InputMsg is the JSON form of one input sample. Trigger fields are edges and
// are OR-ed until the next simulation step.
type InputMsg struct {
	MX       float64 `json:"mx"`
	MY       float64 `json:"my"`
	Aim      float64 `json:"aim"`
	HasAim   bool    `json:"ha"`
	Fire     bool    `json:"fire"`
	Pulse    bool    `json:"pulse,omitempty"`
	Cycle    bool    `json:"cycle,omitempty"`
	Cast     [3]bool `json:"cast"`
	AutoFire bool    `json:"af"`
	AutoAim  bool    `json:"aa"`
	AutoCast bool    `json:"ac"`
}

// ToInput converts to the simulation input, clamping the move vector
func (m InputMsg) ToInput() Input {
	mx, my := m.MX, m.MY
	if l := math.Hypot(mx, my); l > 1 {
		mx /= l
		my /= l
	}
	return Input{
		MoveX: mx, MoveY: my,
		Aim: m.Aim, HasAim: m.HasAim,
		Fire: m.Fire, Pulse: m.Pulse, CycleWeapon: m.Cycle,
		Cast:     m.Cast,
		AutoFire: m.AutoFire, AutoAim: m.AutoAim, AutoCast: m.AutoCast,
	}
}

// Binary input frame: [0x01, mx, my, aim_hi, aim_lo, flags, flags2]
// mx/my are int8 scaled by 127, aim is a uint16 fraction of a full turn.
const (
	binaryInputTag = 0x01
	binaryInputLen = 7
)

const (
	flagFire     = 0x01
	flagPulse    = 0x02
	flagCycle    = 0x04
	flagCast0    = 0x08
	flagCast1    = 0x10
	flagCast2    = 0x20
	flagHasAim   = 0x40
	flagAutoFire = 0x80

	flag2AutoAim  = 0x01
	flag2AutoCast = 0x02
)

// EncodeBinaryInput packs an input sample into the compact frame
func EncodeBinaryInput(m InputMsg) []byte {
	aim := math.Mod(m.Aim, 2*math.Pi)
	if aim < 0 {
		aim += 2 * math.Pi
	}
	a := uint16(int(math.Round(aim/(2*math.Pi)*65536)) & 0xFFFF)
	var f, f2 byte
	set := func(cond bool, bit byte, dst *byte) {
		if cond {
			*dst |= bit
		}
	}
	set(m.Fire, flagFire, &f)
	set(m.Pulse, flagPulse, &f)
	set(m.Cycle, flagCycle, &f)
	set(m.Cast[0], flagCast0, &f)
	set(m.Cast[1], flagCast1, &f)
	set(m.Cast[2], flagCast2, &f)
	set(m.HasAim, flagHasAim, &f)
	set(m.AutoFire, flagAutoFire, &f)
	set(m.AutoAim, flag2AutoAim, &f2)
	set(m.AutoCast, flag2AutoCast, &f2)
	return []byte{
		binaryInputTag,
		byte(int8(math.Round(Clamp(m.MX, -1, 1) * 127))),
		byte(int8(math.Round(Clamp(m.MY, -1, 1) * 127))),
		byte(a >> 8), byte(a),
		f, f2,
	}
}

// DecodeBinaryInput unpacks a compact frame. ok is false for anything that is
// not a well-formed input frame.
func DecodeBinaryInput(msg []byte) (InputMsg, bool) {
	if len(msg) != binaryInputLen || msg[0] != binaryInputTag {
		return InputMsg{}, false
	}
	a := uint16(msg[3])<<8 | uint16(msg[4])
	f, f2 := msg[5], msg[6]
	return InputMsg{
		MX:       float64(int8(msg[1])) / 127,
		MY:       float64(int8(msg[2])) / 127,
		Aim:      NormalizeAngle(float64(a) / 65536 * 2 * math.Pi),
		HasAim:   f&flagHasAim != 0,
		Fire:     f&flagFire != 0,
		Pulse:    f&flagPulse != 0,
		Cycle:    f&flagCycle != 0,
		Cast:     [3]bool{f&flagCast0 != 0, f&flagCast1 != 0, f&flagCast2 != 0},
		AutoFire: f&flagAutoFire != 0,
		AutoAim:  f2&flag2AutoAim != 0,
		AutoCast: f2&flag2AutoCast != 0,
	}, true
}

// CreateMsg starts a new run
type CreateMsg struct {
	Difficulty string `json:"difficulty"`
	Seed       int64  `json:"seed,omitempty"`
}

// JoinMsg reattaches to a run by session ID
type JoinMsg struct {
	SessionID string `json:"sid"`
}

// ChooseMsg picks the upgrade card at index I
type ChooseMsg struct {
	I int `json:"i"`
}

// PauseMsg sets the pause state
type PauseMsg struct {
	Paused bool `json:"paused"`
}

// SessionMsg confirms create/join
type SessionMsg struct {
	SID        string `json:"sid"`
	Difficulty string `json:"difficulty"`
	Seed       int64  `json:"seed"`
}

// LevelUpMsg announces an upgrade offer
type LevelUpMsg struct {
	Level  int         `json:"level"`
	Offers []OfferView `json:"offers"`
}

// GameOverMsg carries the final stats of a run
type GameOverMsg struct {
	Score        int      `json:"score"`
	Level        int      `json:"level"`
	Seconds      float64  `json:"seconds"`
	Kills        int      `json:"kills"`
	BossKills    int      `json:"boss_kills"`
	Weapon       string   `json:"weapon"`
	Achievements []string `json:"achievements,omitempty"`
}

// FaultMsg reports that a run halted on an internal error
type FaultMsg struct {
	Frame uint64 `json:"frame"`
}

// ErrorMsg sends error to client
type ErrorMsg struct {
	Msg string `json:"msg"`
}

// ControlMsg is sent by a phone controller to attach to a run
type ControlMsg struct {
	SID string `json:"sid"`
}

// CheckMsg is sent by client to check if a session exists
type CheckMsg struct {
	SID string `json:"sid"`
}

// CheckedMsg is the response to a session check
type CheckedMsg struct {
	SID    string `json:"sid"`
	Exists bool   `json:"exists"`
	Phase  string `json:"phase,omitempty"`
	Level  int    `json:"level,omitempty"`
}

// RegisterMsg / LoginMsg carry credentials
type RegisterMsg struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginMsg = RegisterMsg

// AuthMsg resumes a profile from a stored token
type AuthMsg struct {
	Token string `json:"token"`
}

// AuthOKMsg confirms a profile login
type AuthOKMsg struct {
	Token     string   `json:"token"`
	Username  string   `json:"username"`
	ProfileID int64    `json:"pid"`
	Settings  Settings `json:"settings"`
}

// ProfileDataMsg answers a profile request
type ProfileDataMsg struct {
	Username     string        `json:"username"`
	Stats        *ProfileStats `json:"stats"`
	Achievements []string      `json:"achievements"`
}

// LeaderboardMsg requests a leaderboard page
type LeaderboardMsg struct {
	By    string `json:"by"`
	Limit int    `json:"limit"`
}
