package main

import "math"

// EnemyType identifies an enemy archetype
type EnemyType uint8

const (
	EnemyChaser   EnemyType = 0
	EnemyRunner   EnemyType = 1
	EnemyTank     EnemyType = 2
	EnemyShooter  EnemyType = 3
	EnemySplitter EnemyType = 4
	EnemyBoss     EnemyType = 5
)

const (
	EnemySpawnOffset    = 60.0
	BossSpawnOffset     = 80.0
	BossInterval        = 60.0 // seconds between boss checks
	BossRadius          = 46.0
	BossScore           = 250
	BossFirstShot       = 1.2
	BossGemCount        = 18
	BossGemValue        = 35
	EnemyBulletRadius   = 4.0
	EnemyBulletScale    = 0.12 // fraction of enemy bullet damage applied to the player
	SplitterChildren    = 3
	SplitterChildRadius = 10.0
	SplitterJitter      = 20.0
	SlowMultiplier      = 0.55
	SpawnChanceBase     = 0.028
	SpawnChancePerLevel = 0.004
)

// EnemyArchetype holds the relative multipliers for one enemy type
type EnemyArchetype struct {
	Name       string
	Radius     float64
	SpeedMul   float64
	HPMul      float64
	Score      int
	ContactMul float64
	Color      string
}

var EnemyArchetypes = [6]EnemyArchetype{
	{Name: "chaser", Radius: 14, SpeedMul: 1, HPMul: 1, Score: 10, ContactMul: 1, Color: "#ff416c"},
	{Name: "runner", Radius: 12, SpeedMul: 1.75, HPMul: 0.7, Score: 12, ContactMul: 0.7, Color: "#ff8a00"},
	{Name: "tank", Radius: 24, SpeedMul: 0.65, HPMul: 2.6, Score: 20, ContactMul: 1.4, Color: "#8a2be2"},
	{Name: "shooter", Radius: 16, SpeedMul: 0.9, HPMul: 1.2, Score: 18, ContactMul: 1, Color: "#00e676"},
	{Name: "splitter", Radius: 18, SpeedMul: 0.85, HPMul: 1.5, Score: 22, ContactMul: 1, Color: "#00bcd4"},
	{Name: "boss", Radius: BossRadius, SpeedMul: 1, HPMul: 1, Score: BossScore, ContactMul: 2, Color: "#ff1744"},
}

// GetArchetype returns the archetype for t, chaser when out of range
func GetArchetype(t EnemyType) EnemyArchetype {
	if int(t) >= len(EnemyArchetypes) {
		return EnemyArchetypes[EnemyChaser]
	}
	return EnemyArchetypes[t]
}

func (t EnemyType) String() string {
	return GetArchetype(t).Name
}

// Enemy is a hostile entity owned by the World
type Enemy struct {
	ID      uint32
	Type    EnemyType
	X, Y    float64
	Radius  float64
	Speed   float64 // units/s
	HP      float64
	MaxHP   float64
	Score   int
	ShootCD float64
	SlowT   float64
	Alive   bool
}

// EnemyBaseSpeed returns the chaser speed at a level in units/s
func EnemyBaseSpeed(level int) float64 {
	return (1.35 + float64(level)*0.12) * 60
}

// EnemyBaseHP returns the chaser hp at a level before archetype scaling
func EnemyBaseHP(level int) float64 {
	return float64(2+level/2) * 0.5
}

// ContactDamage returns the level-scaled contact damage before type scaling
func ContactDamage(level int) float64 {
	return 10 + float64(level)*0.5
}

// EnemyBulletDamage returns nominal enemy bullet damage at a level
func EnemyBulletDamage(level int) float64 {
	return 6 + math.Min(10, float64(level)*0.25)
}

// SpawnChance returns the per-frame Bernoulli probability of a regular spawn
func SpawnChance(level int, diff DifficultyDef) float64 {
	return (SpawnChanceBase + float64(level)*SpawnChancePerLevel) * diff.SpawnMul
}

// PickEnemyType maps a uniform [0,1) draw to an unlocked type
func PickEnemyType(level int, r float64) EnemyType {
	switch {
	case level >= 3 && r < 0.20:
		return EnemyRunner
	case level >= 5 && r >= 0.20 && r < 0.34:
		return EnemyTank
	case level >= 7 && r >= 0.34 && r < 0.50:
		return EnemyShooter
	case level >= 9 && r >= 0.50 && r < 0.62:
		return EnemySplitter
	}
	return EnemyChaser
}

// TakeDamage reduces HP and returns true the first time the enemy dies
func (e *Enemy) TakeDamage(dmg float64) bool {
	if !e.Alive || dmg <= 0 {
		return false
	}
	e.HP -= dmg
	if e.HP <= 0 {
		e.HP = 0
		e.Alive = false
		return true
	}
	return false
}

// ToState converts to snapshot state
func (e *Enemy) ToState() EnemyState {
	return EnemyState{
		ID:    e.ID,
		T:     uint8(e.Type),
		X:     round1(e.X),
		Y:     round1(e.Y),
		R:     e.Radius,
		HP:    round1(e.HP),
		MaxHP: e.MaxHP,
		Slow:  e.SlowT > 0,
	}
}

// newEnemy builds an enemy of type t at (x, y) scaled for the current level
func (w *World) newEnemy(t EnemyType, x, y float64) *Enemy {
	level := w.Run.Level
	diff := GetDifficultyDef(w.Cfg.Difficulty)
	arch := GetArchetype(t)
	w.nextID++
	e := &Enemy{
		ID:     w.nextID,
		Type:   t,
		X:      x,
		Y:      y,
		Radius: arch.Radius,
		Speed:  EnemyBaseSpeed(level) * arch.SpeedMul * diff.SpeedMul,
		HP:     math.Max(1, math.Floor(EnemyBaseHP(level)*arch.HPMul*diff.HPMul)),
		Score:  arch.Score,
		Alive:  true,
	}
	switch t {
	case EnemyShooter:
		e.ShootCD = 0.6 + w.Rand.Float64()*0.5
	case EnemyBoss:
		e.Speed = (1.0 + float64(level)*0.04) * 60 * diff.SpeedMul
		e.HP = math.Floor((120 + float64(level)*35) * diff.HPMul)
		e.ShootCD = BossFirstShot
	}
	e.MaxHP = e.HP
	return e
}

// addEnemy appends e unless the enemy cap is reached
func (w *World) addEnemy(e *Enemy) bool {
	if len(w.Enemies) >= w.Cfg.MaxEnemies {
		return false
	}
	w.Enemies = append(w.Enemies, e)
	return true
}

// spawnEnemy places a new enemy of type t just outside a random arena edge
func (w *World) spawnEnemy(t EnemyType) *Enemy {
	var x, y float64
	switch w.Rand.Intn(4) {
	case 0:
		x, y = -EnemySpawnOffset, w.Rand.Float64()*w.Cfg.Height
	case 1:
		x, y = w.Cfg.Width+EnemySpawnOffset, w.Rand.Float64()*w.Cfg.Height
	case 2:
		x, y = w.Rand.Float64()*w.Cfg.Width, -EnemySpawnOffset
	default:
		x, y = w.Rand.Float64()*w.Cfg.Width, w.Cfg.Height+EnemySpawnOffset
	}
	e := w.newEnemy(t, x, y)
	if !w.addEnemy(e) {
		return nil
	}
	return e
}

// spawnBoss adds the boss at the left or right edge. Only one may be active.
func (w *World) spawnBoss() *Enemy {
	if w.Run.BossActive {
		return nil
	}
	x := -BossSpawnOffset
	if w.Rand.Float64() >= 0.5 {
		x = w.Cfg.Width + BossSpawnOffset
	}
	e := w.newEnemy(EnemyBoss, x, w.Rand.Float64()*w.Cfg.Height)
	// the boss ignores the soft cap
	w.Enemies = append(w.Enemies, e)
	w.Run.BossActive = true
	w.emit(EventBossSpawn, e.X, e.Y, 0)
	return e
}

// trySpawn runs the per-frame spawn trial
func (w *World) trySpawn() {
	diff := GetDifficultyDef(w.Cfg.Difficulty)
	if w.Rand.Float64() >= SpawnChance(w.Run.Level, diff) {
		return
	}
	w.spawnEnemy(PickEnemyType(w.Run.Level, w.Rand.Float64()))
}

// moveEnemy steers an enemy straight at the player, slowed while SlowT > 0
func (w *World) moveEnemy(e *Enemy, dt float64) {
	nx, ny, _ := unitVector(e.X, e.Y, w.Player.X, w.Player.Y)
	mul := 1.0
	if e.Type != EnemyBoss && e.SlowT > 0 {
		mul = SlowMultiplier
	}
	if e.SlowT > 0 {
		e.SlowT = math.Max(0, e.SlowT-dt)
	}
	e.X += nx * e.Speed * mul * dt
	e.Y += ny * e.Speed * mul * dt
}

// enemyShoot fires the periodic attack of shooters and the boss
func (w *World) enemyShoot(e *Enemy, dt float64) {
	level := w.Run.Level
	switch e.Type {
	case EnemyShooter:
		e.ShootCD -= dt
		if e.ShootCD <= 0 {
			e.ShootCD = 0.9 + w.Rand.Float64()*0.6
			a := math.Atan2(w.Player.Y-e.Y, w.Player.X-e.X)
			w.shootEnemyBullet(e.X, e.Y, a, (5.4+float64(level)*0.05)*60)
		}
	case EnemyBoss:
		e.ShootCD -= dt
		if e.ShootCD <= 0 {
			e.ShootCD = math.Max(0.7, 1.25-float64(level)*0.01)
			n := 10 + min(10, level/2)
			for i := 0; i < n; i++ {
				a := 2 * math.Pi * float64(i) / float64(n)
				w.shootEnemyBullet(e.X, e.Y, a, 4.2*60)
			}
			w.shake(10)
			w.emit(EventExplosion, e.X, e.Y, float64(n))
		}
	}
}

func (w *World) shootEnemyBullet(x, y, angle, speed float64) {
	if len(w.EnemyBullets) >= w.Cfg.MaxEnemyBullets {
		return
	}
	w.EnemyBullets = append(w.EnemyBullets, &Bullet{
		X:      x,
		Y:      y,
		VX:     math.Cos(angle) * speed,
		VY:     math.Sin(angle) * speed,
		Radius: EnemyBulletRadius,
		Damage: EnemyBulletDamage(w.Run.Level),
		Color:  "rgba(255,255,255,0.85)",
		Alive:  true,
	})
}

// onEnemyDeath applies the type-specific death side effect
func (w *World) onEnemyDeath(e *Enemy) {
	switch e.Type {
	case EnemySplitter:
		for i := 0; i < SplitterChildren; i++ {
			x := e.X + (w.Rand.Float64()-0.5)*SplitterJitter
			y := e.Y + (w.Rand.Float64()-0.5)*SplitterJitter
			mini := w.newEnemy(EnemyRunner, x, y)
			mini.Radius = SplitterChildRadius
			mini.HP = math.Max(1, float64(w.Run.Level/2))
			mini.MaxHP = mini.HP
			mini.Speed *= 1.1
			w.addEnemy(mini)
		}
	case EnemyBoss:
		w.Run.BossActive = false
		w.Run.BossKills++
		for i := 0; i < BossGemCount; i++ {
			w.dropGem(e.X+(w.Rand.Float64()-0.5)*40, e.Y+(w.Rand.Float64()-0.5)*40, BossGemValue)
		}
	}
}
