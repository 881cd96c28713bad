package main

import "testing"

func TestAchievementMet(t *testing.T) {
	stats := &ProfileStats{Runs: 25, Kills: 5000, BossKills: 1}
	hard := GetDifficultyDef(DifficultyHard).Name
	cases := []struct {
		id   string
		run  RunRecord
		want bool
	}{
		{"exterminator", RunRecord{Kills: 500}, true},
		{"exterminator", RunRecord{Kills: 499}, false},
		{"survivor", RunRecord{Seconds: 300}, true},
		{"veteran", RunRecord{Level: 9}, false},
		{"ascendant", RunRecord{Level: 25}, true},
		{"nightmare", RunRecord{Seconds: 200, Difficulty: hard}, true},
		{"nightmare", RunRecord{Seconds: 200, Difficulty: "normal"}, false},
		{"centurion", RunRecord{}, true},
		{"regular", RunRecord{}, true},
		{"unknown", RunRecord{Kills: 1e6}, false},
	}
	for _, c := range cases {
		if got := achievementMet(c.id, c.run, stats); got != c.want {
			t.Errorf("%s %+v: expected %v, got %v", c.id, c.run, c.want, got)
		}
	}
}

func TestCheckAchievementsUnlocksOnce(t *testing.T) {
	db := openTestDB(t)
	pid, _ := db.CreateProfile("nova", "h")
	run := RunRecord{ProfileID: pid, Seconds: 320, Level: 11, Kills: 40, BossKills: 1}
	db.RecordRun(run)

	got := CheckAchievements(db, pid, run)
	want := map[string]bool{"first_blood": true, "giant_slayer": true, "survivor": true, "veteran": true}
	if len(got) != len(want) {
		t.Fatalf("expected %d unlocks, got %v", len(want), got)
	}
	for _, a := range got {
		if !want[a.ID] {
			t.Errorf("unexpected unlock %s", a.ID)
		}
	}

	db.RecordRun(run)
	if again := CheckAchievements(db, pid, run); len(again) != 0 {
		t.Errorf("expected no repeat unlocks, got %v", again)
	}
}

func TestCheckAchievementsGuest(t *testing.T) {
	if got := CheckAchievements(nil, 1, RunRecord{Kills: 10}); got != nil {
		t.Errorf("expected nil without database, got %v", got)
	}
	db := openTestDB(t)
	if got := CheckAchievements(db, 0, RunRecord{Kills: 10}); got != nil {
		t.Errorf("expected nil for guest, got %v", got)
	}
}
