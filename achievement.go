package main

// AchievementDef describes one unlockable achievement
type AchievementDef struct {
	ID          string
	Name        string
	Description string
}

var Achievements = []AchievementDef{
	{"first_blood", "First Blood", "Destroy your first enemy"},
	{"exterminator", "Exterminator", "Destroy 500 enemies in a single run"},
	{"centurion", "Centurion", "Destroy 5000 enemies in total"},
	{"giant_slayer", "Giant Slayer", "Defeat a boss"},
	{"survivor", "Survivor", "Survive 5 minutes in a single run"},
	{"veteran", "Veteran", "Reach level 10 in a single run"},
	{"ascendant", "Ascendant", "Reach level 25 in a single run"},
	{"nightmare", "Nightmare", "Survive 3 minutes on hard"},
	{"regular", "Regular", "Finish 25 runs"},
}

// achievementMet reports whether a finished run (and the profile totals it
// was already added to) satisfy an achievement
func achievementMet(id string, run RunRecord, stats *ProfileStats) bool {
	switch id {
	case "first_blood":
		return stats.Kills >= 1
	case "exterminator":
		return run.Kills >= 500
	case "centurion":
		return stats.Kills >= 5000
	case "giant_slayer":
		return stats.BossKills >= 1
	case "survivor":
		return run.Seconds >= 300
	case "veteran":
		return run.Level >= 10
	case "ascendant":
		return run.Level >= 25
	case "nightmare":
		return run.Difficulty == GetDifficultyDef(DifficultyHard).Name && run.Seconds >= 180
	case "regular":
		return stats.Runs >= 25
	}
	return false
}

// CheckAchievements unlocks every achievement the run earned and returns the
// newly unlocked ones. The run must already be recorded.
func CheckAchievements(db *DB, profileID int64, run RunRecord) []AchievementDef {
	if db == nil || profileID == 0 {
		return nil
	}

	stats, err := db.GetProfileStats(profileID)
	if err != nil {
		Log.WithError(err).WithField("profile", profileID).Warn("achievement check skipped")
		return nil
	}
	existing, err := db.GetAchievements(profileID)
	if err != nil {
		return nil
	}
	has := make(map[string]bool, len(existing))
	for _, id := range existing {
		has[id] = true
	}

	var unlocked []AchievementDef
	for _, def := range Achievements {
		if has[def.ID] || !achievementMet(def.ID, run, stats) {
			continue
		}
		if ok, err := db.UnlockAchievement(profileID, def.ID); err == nil && ok {
			unlocked = append(unlocked, def)
		}
	}
	return unlocked
}
