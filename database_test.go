package main

import (
	"path/filepath"
	"testing"
)

func TestOpenDBMigratesTwice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "twice.db")
	db, err := OpenDB(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	db.Close()
	db, err = OpenDB(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	db.Close()
}

func TestProfileCreateAndLookup(t *testing.T) {
	db := openTestDB(t)
	id, err := db.CreateProfile("nova", "hash")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := db.CreateProfile("nova", "other"); err == nil {
		t.Error("expected duplicate username to fail")
	}

	p, err := db.GetProfileByUsername("nova")
	if err != nil || p == nil {
		t.Fatalf("lookup: %v", err)
	}
	if p.ID != id || p.PassHash != "hash" {
		t.Errorf("expected id %d hash, got %d %q", id, p.ID, p.PassHash)
	}
	if p, err := db.GetProfileByUsername("ghost"); err != nil || p != nil {
		t.Errorf("expected nil profile for unknown user, got %v %v", p, err)
	}

	exists, _ := db.UsernameExists("nova")
	if !exists {
		t.Error("expected username to exist")
	}
}

func TestServerSetting(t *testing.T) {
	db := openTestDB(t)
	if v := db.GetSetting("k"); v != "" {
		t.Errorf("expected empty, got %q", v)
	}
	db.SetSetting("k", "1")
	db.SetSetting("k", "2")
	if v := db.GetSetting("k"); v != "2" {
		t.Errorf("expected 2, got %q", v)
	}
}

func TestSettingsPersistence(t *testing.T) {
	db := openTestDB(t)
	pid, _ := db.CreateProfile("nova", "hash")

	s, err := db.LoadSettings(pid)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s != DefaultSettings() {
		t.Errorf("expected defaults for a new profile, got %+v", s)
	}

	s.VolMusic = 0.25
	s.Autofire = true
	if err := db.SaveSettings(pid, s); err != nil {
		t.Fatalf("save: %v", err)
	}
	s.HUDCollapsed = true
	if err := db.SaveSettings(pid, s); err != nil {
		t.Fatalf("resave: %v", err)
	}

	got, err := db.LoadSettings(pid)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != s {
		t.Errorf("expected %+v, got %+v", s, got)
	}
}

func TestRunHistoryAndStats(t *testing.T) {
	db := openTestDB(t)
	pid, _ := db.CreateProfile("nova", "hash")

	runs := []RunRecord{
		{ProfileID: pid, Seconds: 60, Score: 300, Level: 4, Kills: 30, Difficulty: "normal"},
		{ProfileID: pid, Seconds: 130, Score: 900, Level: 8, Kills: 95, BossKills: 1, Difficulty: "hard"},
	}
	for _, r := range runs {
		if _, err := db.RecordRun(r); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	// guest runs are kept without a profile
	if _, err := db.RecordRun(RunRecord{Score: 5000}); err != nil {
		t.Fatalf("record guest run: %v", err)
	}

	st, err := db.GetProfileStats(pid)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.Runs != 2 || st.BestScore != 900 || st.BestLevel != 8 || st.Kills != 125 || st.BossKills != 1 {
		t.Errorf("unexpected stats %+v", st)
	}
	if st.Longest != 130 || st.Playtime != 190 {
		t.Errorf("expected longest 130 playtime 190, got %v %v", st.Longest, st.Playtime)
	}
}

func TestLeaderboardOrdering(t *testing.T) {
	db := openTestDB(t)
	a, _ := db.CreateProfile("alpha", "h")
	b, _ := db.CreateProfile("bravo", "h")
	db.RecordRun(RunRecord{ProfileID: a, Score: 500, Level: 9, Seconds: 100, Kills: 10})
	db.RecordRun(RunRecord{ProfileID: a, Score: 100, Level: 2, Seconds: 20, Kills: 5})
	db.RecordRun(RunRecord{ProfileID: b, Score: 800, Level: 5, Seconds: 300, Kills: 50})

	board, err := db.GetLeaderboard("score", 10)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(board) != 2 {
		t.Fatalf("expected one entry per profile, got %d", len(board))
	}
	if board[0].Username != "bravo" || board[0].Rank != 1 || board[1].Username != "alpha" || board[1].Rank != 2 {
		t.Errorf("unexpected score order %+v", board)
	}
	if board[1].BestScore != 500 || board[1].Runs != 2 || board[1].Kills != 15 {
		t.Errorf("expected alpha best 500 over 2 runs with 15 kills, got %+v", board[1])
	}

	board, _ = db.GetLeaderboard("level", 10)
	if board[0].Username != "alpha" {
		t.Errorf("expected alpha first by level, got %s", board[0].Username)
	}

	// unknown columns fall back to score
	board, _ = db.GetLeaderboard("1; DROP TABLE runs", 1)
	if len(board) != 1 || board[0].Username != "bravo" {
		t.Errorf("expected score fallback, got %+v", board)
	}
}

func TestUnlockAchievementOnce(t *testing.T) {
	db := openTestDB(t)
	pid, _ := db.CreateProfile("nova", "hash")

	ok, err := db.UnlockAchievement(pid, "first_blood")
	if err != nil || !ok {
		t.Fatalf("expected first unlock, got %v %v", ok, err)
	}
	ok, err = db.UnlockAchievement(pid, "first_blood")
	if err != nil || ok {
		t.Errorf("expected repeat unlock to report false, got %v %v", ok, err)
	}
	ids, _ := db.GetAchievements(pid)
	if len(ids) != 1 || ids[0] != "first_blood" {
		t.Errorf("expected [first_blood], got %v", ids)
	}
}
