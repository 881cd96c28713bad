package main

// RunPhase represents the lifecycle of a run
type RunPhase int

const (
	PhaseRunning         RunPhase = 0
	PhaseAwaitingUpgrade RunPhase = 1
	PhaseGameOver        RunPhase = 2
)

func (p RunPhase) String() string {
	switch p {
	case PhaseRunning:
		return "running"
	case PhaseAwaitingUpgrade:
		return "awaiting_upgrade"
	case PhaseGameOver:
		return "game_over"
	}
	return "unknown"
}

// Difficulty scales spawn pressure and enemy toughness
type Difficulty int

const (
	DifficultyEasy   Difficulty = 0
	DifficultyNormal Difficulty = 1
	DifficultyHard   Difficulty = 2
)

// DifficultyDef holds the multipliers for one difficulty
type DifficultyDef struct {
	Name     string
	SpawnMul float64
	HPMul    float64
	SpeedMul float64
}

var Difficulties = [3]DifficultyDef{
	{Name: "easy", SpawnMul: 0.75, HPMul: 0.8, SpeedMul: 0.9},
	{Name: "normal", SpawnMul: 1, HPMul: 1, SpeedMul: 1},
	{Name: "hard", SpawnMul: 1.35, HPMul: 1.3, SpeedMul: 1.1},
}

// GetDifficultyDef returns the definition for a difficulty, Normal when out of range
func GetDifficultyDef(d Difficulty) DifficultyDef {
	if d < 0 || int(d) >= len(Difficulties) {
		return Difficulties[DifficultyNormal]
	}
	return Difficulties[d]
}

// ParseDifficulty maps a name to a Difficulty, defaulting to Normal
func ParseDifficulty(name string) Difficulty {
	for i, d := range Difficulties {
		if d.Name == name {
			return Difficulty(i)
		}
	}
	return DifficultyNormal
}

// WorldConfig holds settings for a run
type WorldConfig struct {
	Width, Height   float64
	MaxDT           float64
	Seed            int64
	Difficulty      Difficulty
	MaxEnemies      int
	MaxBullets      int
	MaxEnemyBullets int
	MaxParticles    int
	MaxGems         int
	MaxEvents       int
}

// DefaultWorldConfig returns the standard arena and caps
func DefaultWorldConfig() WorldConfig {
	return WorldConfig{
		Width:           1280,
		Height:          720,
		MaxDT:           MaxFrameDT,
		Difficulty:      DifficultyNormal,
		MaxEnemies:      400,
		MaxBullets:      1500,
		MaxEnemyBullets: 600,
		MaxParticles:    800,
		MaxGems:         600,
		MaxEvents:       64,
	}
}

// RunState tracks progression and timers for the current run
type RunState struct {
	Phase        RunPhase
	Paused       bool
	Level        int
	XP           int
	XPNext       int
	Score        int
	Kills        int
	BossKills    int
	Seconds      float64
	BossTimer    float64
	HeartTimer   float64
	BossActive   bool
	Offers       []UpgradeID
	UpgradesUsed int
}

// NewRunState returns the state at the start of a run
func NewRunState() RunState {
	return RunState{
		Phase:  PhaseRunning,
		Level:  1,
		XPNext: XPFirstLevel,
	}
}

// Frozen reports whether the simulation must not advance
func (r *RunState) Frozen() bool {
	return r.Paused || r.Phase != PhaseRunning
}
