package main

import "github.com/vmihailenco/msgpack/v5"

// SkillView is the HUD view of one owned skill
type SkillView struct {
	Level int     `msgpack:"l" json:"l"`
	CD    float64 `msgpack:"cd" json:"cd"`
	Beam  bool    `msgpack:"b,omitempty" json:"b,omitempty"`
}

// PlayerState is the render view of the player
type PlayerState struct {
	X           float64              `msgpack:"x" json:"x"`
	Y           float64              `msgpack:"y" json:"y"`
	R           float64              `msgpack:"r" json:"r"`
	HP          float64              `msgpack:"hp" json:"hp"`
	MaxHP       float64              `msgpack:"mhp" json:"mhp"`
	Aim         float64              `msgpack:"aim" json:"aim"`
	Alive       bool                 `msgpack:"a" json:"a"`
	Weapon      string               `msgpack:"w" json:"w"`
	Damage      float64              `msgpack:"dmg" json:"dmg"`
	FireRate    float64              `msgpack:"fr" json:"fr"`
	Projectiles int                  `msgpack:"pj" json:"pj"`
	Piercing    int                  `msgpack:"pc" json:"pc"`
	Skills      map[string]SkillView `msgpack:"sk,omitempty" json:"sk,omitempty"`
}

// EnemyState is the render view of an enemy
type EnemyState struct {
	ID    uint32  `msgpack:"id" json:"id"`
	T     uint8   `msgpack:"t" json:"t"`
	X     float64 `msgpack:"x" json:"x"`
	Y     float64 `msgpack:"y" json:"y"`
	R     float64 `msgpack:"r" json:"r"`
	HP    float64 `msgpack:"hp" json:"hp"`
	MaxHP float64 `msgpack:"mhp" json:"mhp"`
	Slow  bool    `msgpack:"s,omitempty" json:"s,omitempty"`
}

// BulletState is the render view of a projectile
type BulletState struct {
	X float64 `msgpack:"x" json:"x"`
	Y float64 `msgpack:"y" json:"y"`
	R float64 `msgpack:"r" json:"r"`
	C string  `msgpack:"c" json:"c"`
}

// GemState is the render view of a gem
type GemState struct {
	X float64 `msgpack:"x" json:"x"`
	Y float64 `msgpack:"y" json:"y"`
	V int     `msgpack:"v" json:"v"`
}

// HeartState is the render view of a heart
type HeartState struct {
	X float64 `msgpack:"x" json:"x"`
	Y float64 `msgpack:"y" json:"y"`
}

// ParticleState is the render view of a spark
type ParticleState struct {
	X float64 `msgpack:"x" json:"x"`
	Y float64 `msgpack:"y" json:"y"`
	A float64 `msgpack:"a" json:"a"`
	S float64 `msgpack:"s" json:"s"`
	C string  `msgpack:"c" json:"c"`
}

// BlastState is the render view of an area ring
type BlastState struct {
	X float64 `msgpack:"x" json:"x"`
	Y float64 `msgpack:"y" json:"y"`
	R float64 `msgpack:"r" json:"r"`
	L float64 `msgpack:"l" json:"l"`
	C string  `msgpack:"c" json:"c"`
}

// BeamState is the render view of the active laser
type BeamState struct {
	X1 float64 `msgpack:"x1" json:"x1"`
	Y1 float64 `msgpack:"y1" json:"y1"`
	X2 float64 `msgpack:"x2" json:"x2"`
	Y2 float64 `msgpack:"y2" json:"y2"`
	W  float64 `msgpack:"w" json:"w"`
}

// OfferView describes one upgrade card on offer
type OfferView struct {
	ID    string `msgpack:"id" json:"id"`
	Title string `msgpack:"t" json:"t"`
	Desc  string `msgpack:"d,omitempty" json:"d,omitempty"`
	Tag   string `msgpack:"g" json:"g"`
}

// Snapshot is the read-only view of a World handed to render and HUD collaborators
type Snapshot struct {
	Frame        uint64          `msgpack:"f" json:"f"`
	Phase        string          `msgpack:"ph" json:"ph"`
	Paused       bool            `msgpack:"pa,omitempty" json:"pa,omitempty"`
	Level        int             `msgpack:"lv" json:"lv"`
	XP           int             `msgpack:"xp" json:"xp"`
	XPNext       int             `msgpack:"xn" json:"xn"`
	Score        int             `msgpack:"sc" json:"sc"`
	Kills        int             `msgpack:"k" json:"k"`
	Seconds      float64         `msgpack:"sec" json:"sec"`
	Width        float64         `msgpack:"ww" json:"ww"`
	Height       float64         `msgpack:"wh" json:"wh"`
	Player       PlayerState     `msgpack:"p" json:"p"`
	Enemies      []EnemyState    `msgpack:"e" json:"e"`
	Bullets      []BulletState   `msgpack:"b" json:"b"`
	EnemyBullets []BulletState   `msgpack:"eb" json:"eb"`
	Gems         []GemState      `msgpack:"g" json:"g"`
	Hearts       []HeartState    `msgpack:"h" json:"h"`
	Particles    []ParticleState `msgpack:"pt,omitempty" json:"pt,omitempty"`
	Blasts       []BlastState    `msgpack:"bl,omitempty" json:"bl,omitempty"`
	Orbitals     [][2]float64    `msgpack:"ob,omitempty" json:"ob,omitempty"`
	Jets         [][2]float64    `msgpack:"jt,omitempty" json:"jt,omitempty"`
	Beam         *BeamState      `msgpack:"bm,omitempty" json:"bm,omitempty"`
	Shake        float64         `msgpack:"sh" json:"sh"`
	Flash        float64         `msgpack:"fl" json:"fl"`
	PulseCD      float64         `msgpack:"pcd" json:"pcd"`
	BossActive   bool            `msgpack:"boss,omitempty" json:"boss,omitempty"`
	Offers       []OfferView     `msgpack:"of,omitempty" json:"of,omitempty"`
}

// Snapshot copies the current world state into a render view
func (w *World) Snapshot() Snapshot {
	s := Snapshot{
		Frame:        w.Frame,
		Phase:        w.Run.Phase.String(),
		Paused:       w.Run.Paused,
		Level:        w.Run.Level,
		XP:           w.Run.XP,
		XPNext:       w.Run.XPNext,
		Score:        w.Run.Score,
		Kills:        w.Run.Kills,
		Seconds:      round1(w.Run.Seconds),
		Width:        w.Cfg.Width,
		Height:       w.Cfg.Height,
		Player:       w.Player.ToState(),
		Enemies:      make([]EnemyState, 0, len(w.Enemies)),
		Bullets:      make([]BulletState, 0, len(w.Bullets)),
		EnemyBullets: make([]BulletState, 0, len(w.EnemyBullets)),
		Gems:         make([]GemState, 0, len(w.Gems)),
		Hearts:       make([]HeartState, 0, len(w.Hearts)),
		Shake:        round1(w.Shake),
		Flash:        w.Flash,
		PulseCD:      round1(w.Pulse.Timer),
		BossActive:   w.Run.BossActive,
	}
	for _, e := range w.Enemies {
		if e.Alive {
			s.Enemies = append(s.Enemies, e.ToState())
		}
	}
	for _, b := range w.Bullets {
		if b.Alive {
			s.Bullets = append(s.Bullets, b.ToState())
		}
	}
	for _, b := range w.EnemyBullets {
		if b.Alive {
			s.EnemyBullets = append(s.EnemyBullets, b.ToState())
		}
	}
	for _, g := range w.Gems {
		if g.Alive {
			s.Gems = append(s.Gems, g.ToState())
		}
	}
	for _, h := range w.Hearts {
		if h.Alive {
			s.Hearts = append(s.Hearts, h.ToState())
		}
	}
	for _, pt := range w.Particles {
		s.Particles = append(s.Particles, ParticleState{X: round1(pt.X), Y: round1(pt.Y), A: pt.Alpha, S: pt.Size, C: pt.Color})
	}
	for _, b := range w.Blasts {
		s.Blasts = append(s.Blasts, BlastState{X: round1(b.X), Y: round1(b.Y), R: b.Radius, L: b.Life / BlastLife, C: b.Color})
	}
	if orb := w.Player.Skill(SkillOrbital); orb.Level > 0 {
		s.Orbitals = orbitalPositions(w.Player, orb)
	}
	for _, j := range w.Player.Skill(SkillOmega).Jets {
		s.Jets = append(s.Jets, [2]float64{round1(j.X), round1(j.Y)})
	}
	if w.Beam.Active {
		s.Beam = &BeamState{X1: w.Beam.X1, Y1: w.Beam.Y1, X2: w.Beam.X2, Y2: w.Beam.Y2, W: w.Beam.Width}
	}
	for _, id := range w.Run.Offers {
		if u, ok := GetUpgrade(id); ok {
			s.Offers = append(s.Offers, OfferView{ID: string(u.ID), Title: u.Title, Desc: u.Desc, Tag: u.Tag})
		}
	}
	return s
}

// EncodeSnapshot serializes a snapshot for a binary state frame
func EncodeSnapshot(s Snapshot) ([]byte, error) {
	return msgpack.Marshal(&s)
}

// DecodeSnapshot parses a binary state frame
func DecodeSnapshot(data []byte) (Snapshot, error) {
	var s Snapshot
	err := msgpack.Unmarshal(data, &s)
	return s, err
}
