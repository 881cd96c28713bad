package main

import (
	"math"
	"testing"
)

func collect(w *World) {
	w.Grid.Rebuild(w)
	w.collectPickups(0.016)
}

func TestNextXP(t *testing.T) {
	if NextXP(100) != 120 || NextXP(120) != 144 || NextXP(144) != 172 {
		t.Errorf("unexpected thresholds %d %d %d", NextXP(100), NextXP(120), NextXP(144))
	}
}

func TestGemLevelsUp(t *testing.T) {
	w := newTestWorld()
	p := w.Player
	w.dropGem(p.X, p.Y, XPFirstLevel)
	collect(w)

	if w.Run.Level != 2 || w.Run.XP != 0 || w.Run.XPNext != 120 {
		t.Errorf("expected level 2 xp 0/120, got %d xp %d/%d", w.Run.Level, w.Run.XP, w.Run.XPNext)
	}
	if p.MaxHP != PlayerMaxHP+LevelUpMaxHP || p.HP != p.MaxHP {
		t.Errorf("expected hp %f/%f, got %f/%f", p.MaxHP, PlayerMaxHP+LevelUpMaxHP, p.HP, p.MaxHP)
	}
	if w.Run.Phase != PhaseAwaitingUpgrade {
		t.Fatalf("expected awaiting upgrade, got %s", w.Run.Phase)
	}
	if len(w.Run.Offers) != OfferCount {
		t.Fatalf("expected %d offers, got %d", OfferCount, len(w.Run.Offers))
	}
	seen := map[UpgradeID]bool{}
	for _, id := range w.Run.Offers {
		if seen[id] {
			t.Errorf("duplicate offer %s", id)
		}
		seen[id] = true
	}
}

func TestLevelUpHealCapped(t *testing.T) {
	w := newTestWorld()
	p := w.Player
	p.HP = 50
	w.dropGem(p.X, p.Y, XPFirstLevel)
	collect(w)
	if p.HP != 50+LevelUpHeal {
		t.Errorf("expected hp %f, got %f", 50+LevelUpHeal, p.HP)
	}
}

func TestCollectionStopsWhileAwaitingUpgrade(t *testing.T) {
	w := newTestWorld()
	p := w.Player
	w.dropGem(p.X, p.Y, XPFirstLevel)
	w.dropGem(p.X+1, p.Y, XPFirstLevel)
	collect(w)
	alive := 0
	for _, g := range w.Gems {
		if g.Alive {
			alive++
		}
	}
	if alive != 1 {
		t.Errorf("expected one gem left for later, got %d", alive)
	}
	if w.Run.Level != 2 {
		t.Errorf("expected a single level-up, got level %d", w.Run.Level)
	}
}

func TestAwaitingUpgradeFreezesStep(t *testing.T) {
	w := newTestWorld()
	w.dropGem(w.Player.X, w.Player.Y, XPFirstLevel)
	collect(w)
	secs := w.Run.Seconds
	w.Step(0.016, Input{MoveX: 1})
	if w.Run.Seconds != secs || w.Player.X != 640 {
		t.Error("expected world frozen while awaiting a choice")
	}
	if _, err := w.ChooseUpgrade(0); err != nil {
		t.Fatal(err)
	}
	w.Step(0.016, Input{MoveX: 1})
	if w.Player.X <= 640 {
		t.Error("expected movement after choosing")
	}
}

func TestZeroOffersKeepsRunning(t *testing.T) {
	saved := upgradePool
	upgradePool = nil
	defer func() { upgradePool = saved }()

	w := newTestWorld()
	w.dropGem(w.Player.X, w.Player.Y, XPFirstLevel)
	collect(w)
	if w.Run.Level != 2 {
		t.Errorf("expected level 2, got %d", w.Run.Level)
	}
	if w.Run.Phase != PhaseRunning {
		t.Errorf("expected running with nothing to offer, got %s", w.Run.Phase)
	}
}

func TestGemHomesInsideMagnet(t *testing.T) {
	p := NewPlayer(0, 0)
	g := &Gem{X: 50, Y: 0, Value: 1, Alive: true}
	g.Update(0.1, p)
	if math.Abs(g.X-(50-GemHomingSpeed*0.1)) > 1e-9 {
		t.Errorf("expected gem at %f, got %f", 50-GemHomingSpeed*0.1, g.X)
	}
	far := &Gem{X: 300, Y: 0, Value: 1, Alive: true}
	far.Update(0.1, p)
	if far.X != 300 {
		t.Error("expected gem outside magnet to stay put")
	}
	g.Update(10, p)
	if g.X != 0 {
		t.Errorf("expected gem not to overshoot, got %f", g.X)
	}
}

func TestGemOutsideReachNotCollected(t *testing.T) {
	w := newTestWorld()
	w.dropGem(w.Player.X+300, w.Player.Y, 10)
	collect(w)
	if w.Run.XP != 0 || !w.Gems[0].Alive {
		t.Error("expected distant gem left alone")
	}
}

func TestBossTimer(t *testing.T) {
	w := newTestWorld()
	w.Run.BossTimer = BossInterval - 0.01
	w.advanceTimers(0.02)
	if !w.Run.BossActive || len(w.Enemies) != 1 || w.Enemies[0].Type != EnemyBoss {
		t.Fatal("expected boss spawned at the interval")
	}
	w.Run.BossTimer = BossInterval
	w.advanceTimers(0.02)
	if len(w.Enemies) != 1 {
		t.Errorf("expected one boss at a time, got %d enemies", len(w.Enemies))
	}
}

func TestBossDeathDropsGems(t *testing.T) {
	w := newTestWorld()
	b := w.spawnBoss()
	b.HP = 1
	w.damageEnemy(b, 5, "")
	if w.Run.BossActive || w.Run.BossKills != 1 {
		t.Error("expected boss cleared")
	}
	if len(w.Gems) != BossGemCount+1 {
		t.Errorf("expected %d gems, got %d", BossGemCount+1, len(w.Gems))
	}
	if w.Gems[0].Value != BossKillGemValue {
		t.Errorf("expected kill gem worth %d, got %d", BossKillGemValue, w.Gems[0].Value)
	}
	if w.Run.Score != BossScore {
		t.Errorf("expected score %d, got %d", BossScore, w.Run.Score)
	}
}

func TestHeartTimerAndCap(t *testing.T) {
	w := newTestWorld()
	w.Run.HeartTimer = HeartInterval - 0.01
	w.advanceTimers(0.02)
	if len(w.Hearts) != 1 {
		t.Fatalf("expected a heart, got %d", len(w.Hearts))
	}
	h := w.Hearts[0]
	if h.X < HeartMargin || h.X > w.Cfg.Width-HeartMargin {
		t.Errorf("expected heart away from the edge, got x=%f", h.X)
	}
	for i := 0; i < 5; i++ {
		w.spawnHeart()
	}
	if len(w.Hearts) != MaxHearts {
		t.Errorf("expected %d hearts, got %d", MaxHearts, len(w.Hearts))
	}
}

func TestHeartPickupHeals(t *testing.T) {
	w := newTestWorld()
	p := w.Player
	p.HP = 50
	w.Hearts = append(w.Hearts, &Heart{X: p.X + 5, Y: p.Y, Heal: HeartHeal, Alive: true})
	collect(w)
	if p.HP != 50+HeartHeal {
		t.Errorf("expected hp %f, got %f", 50+HeartHeal, p.HP)
	}
	if w.Hearts[0].Alive {
		t.Error("expected heart consumed")
	}
}

func TestGemCapFoldsIntoOldest(t *testing.T) {
	cfg := DefaultWorldConfig()
	cfg.Seed = 3
	cfg.MaxGems = 3
	w := NewWorld(cfg)
	for i := 0; i < 5; i++ {
		w.dropGem(float64(100+i*10), 100, 10)
	}
	if len(w.Gems) != 3 {
		t.Fatalf("expected 3 gems at cap, got %d", len(w.Gems))
	}
	total := 0
	for _, g := range w.Gems {
		total += g.Value
	}
	if total != 50 {
		t.Errorf("expected no experience lost, got total %d", total)
	}
	if w.Gems[0].Value != 30 {
		t.Errorf("expected overflow folded into the oldest gem, got %d", w.Gems[0].Value)
	}

	w.Gems[0].Alive = false
	w.dropGem(1, 1, 10)
	if w.Gems[1].Value != 20 {
		t.Errorf("expected a dead gem skipped when folding, got %d", w.Gems[1].Value)
	}
}
