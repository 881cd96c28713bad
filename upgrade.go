package main

import "errors"

// UpgradeID identifies an entry of the upgrade pool
type UpgradeID string

// UpgradeDef is one card that can be offered on level-up
type UpgradeDef struct {
	ID    UpgradeID
	Title string
	Desc  string
	Tag   string
	Gate  func(w *World) bool // nil means always available
	Apply func(w *World)
}

// OfferCount is how many cards a level-up presents at most
const OfferCount = 3

var (
	ErrNotAwaitingUpgrade = errors.New("not awaiting an upgrade choice")
	ErrBadChoice          = errors.New("invalid upgrade choice")
)

var upgradePool []UpgradeDef

// buildUpgradePool assembles the stat cards followed by one card per skill and
// per unlockable weapon. Called once skillOrder is set.
func buildUpgradePool() {
	upgradePool = []UpgradeDef{
		{ID: "more_projectiles", Title: "Dispersion Module", Desc: "+1 projectile per shot.", Tag: "OFFENSE",
			Apply: func(w *World) { w.Player.Projectiles++ }},
		{ID: "fire_rate", Title: "Pulse Condenser", Desc: "+18% fire rate.", Tag: "OFFENSE",
			Apply: func(w *World) { w.Player.FireRate *= 1.18 }},
		{ID: "damage", Title: "Impact Amplifier", Desc: "+1 damage.", Tag: "OFFENSE",
			Apply: func(w *World) { w.Player.Damage++ }},
		{ID: "bullet_speed", Title: "Ion Cannon", Desc: "+15% projectile speed.", Tag: "OFFENSE",
			Apply: func(w *World) { w.Player.BulletSpeed *= 1.15 }},
		{ID: "bullet_size", Title: "Expanded Core", Desc: "+25% projectile radius.", Tag: "OFFENSE",
			Apply: func(w *World) { w.Player.BulletRadius *= 1.25 }},
		{ID: "piercing", Title: "Phasing", Desc: "Projectiles pass through +1 enemy.", Tag: "TACTICAL",
			Apply: func(w *World) { w.Player.Piercing++ }},
		{ID: "move_speed", Title: "Auxiliary Thrusters", Desc: "+12% movement speed.", Tag: "MOBILITY",
			Apply: func(w *World) { w.Player.Speed *= 1.12 }},
		{ID: "max_hp", Title: "Suit Plating", Desc: "+20 max HP and heal 20.", Tag: "DEFENSE",
			Apply: func(w *World) {
				w.Player.MaxHP += 20
				w.Player.Heal(20)
			}},
		{ID: "regen", Title: "Nano Regeneration", Desc: "Regenerate +1.2 HP per second.", Tag: "DEFENSE",
			Apply: func(w *World) { w.Player.Regen += 1.2 }},
		{ID: "magnet", Title: "Ether Magnet", Desc: "+35% XP pickup range.", Tag: "UTILITY",
			Apply: func(w *World) { w.Player.Magnet *= 1.35 }},
	}

	for _, def := range skillOrder {
		id := def.ID
		minLevel := def.MinLevel
		upgradePool = append(upgradePool, UpgradeDef{
			ID:    UpgradeID("skill_" + string(id)),
			Title: def.Title,
			Tag:   def.Tag,
			Gate:  func(w *World) bool { return w.Run.Level >= minLevel },
			Apply: func(w *World) { w.Player.Skill(id).Level++ },
		})
	}

	for _, wd := range Weapons[1:] {
		id := wd.ID
		upgradePool = append(upgradePool, UpgradeDef{
			ID:    UpgradeID("weapon_" + string(id)),
			Title: wd.Name,
			Tag:   "WEAPON",
			Gate:  func(w *World) bool { return w.Run.Level >= 2 && !w.Player.HasWeapon(id) },
			Apply: func(w *World) { w.Player.UnlockWeapon(id) },
		})
	}
}

// GetUpgrade looks up an upgrade definition
func GetUpgrade(id UpgradeID) (UpgradeDef, bool) {
	for _, u := range upgradePool {
		if u.ID == id {
			return u, true
		}
	}
	return UpgradeDef{}, false
}

// availableUpgrades returns every pool entry whose gate is satisfied
func (w *World) availableUpgrades() []UpgradeID {
	out := make([]UpgradeID, 0, len(upgradePool))
	for _, u := range upgradePool {
		if u.Gate == nil || u.Gate(w) {
			out = append(out, u.ID)
		}
	}
	return out
}

// pickUpgrades samples up to count distinct available upgrades without replacement
func (w *World) pickUpgrades(count int) []UpgradeID {
	avail := w.availableUpgrades()
	picks := make([]UpgradeID, 0, count)
	for len(picks) < count && len(avail) > 0 {
		i := w.Rand.Intn(len(avail))
		picks = append(picks, avail[i])
		avail = append(avail[:i], avail[i+1:]...)
	}
	return picks
}

// ChooseUpgrade applies the offer at index and resumes the run
func (w *World) ChooseUpgrade(index int) (UpgradeID, error) {
	if w.Run.Phase != PhaseAwaitingUpgrade {
		return "", ErrNotAwaitingUpgrade
	}
	if index < 0 || index >= len(w.Run.Offers) {
		return "", ErrBadChoice
	}
	id := w.Run.Offers[index]
	u, ok := GetUpgrade(id)
	if !ok {
		return "", ErrBadChoice
	}
	u.Apply(w)
	w.Run.UpgradesUsed++
	w.Run.Offers = nil
	w.Run.Phase = PhaseRunning
	return id, nil
}
