package main

import (
	"context"
	"sync"
	"time"
)

const (
	maxSessions     = 100
	sessionIdleTTL  = 10 * time.Minute
	janitorInterval = 30 * time.Second
)

// Session is one single-player run reachable by its ID
type Session struct {
	ID        string
	ProfileID int64
	Created   time.Time
	Game      *Game
	cancel    context.CancelFunc
}

// SessionInfo is the public summary of a session
type SessionInfo struct {
	ID      string  `json:"id"`
	Phase   string  `json:"phase"`
	Level   int     `json:"level"`
	Seconds float64 `json:"seconds"`
	Owned   bool    `json:"owned"`
}

// SessionManager handles creation, lookup and cleanup of sessions
type SessionManager struct {
	mu        sync.RWMutex
	sessions  map[string]*Session
	db        *DB
	analytics *Analytics
}

// NewSessionManager creates a new SessionManager
func NewSessionManager(db *DB, analytics *Analytics) *SessionManager {
	return &SessionManager{
		sessions:  make(map[string]*Session),
		db:        db,
		analytics: analytics,
	}
}

// CreateSession creates a session and starts its runner. Returns nil if the
// limit is reached.
func (sm *SessionManager) CreateSession(cfg WorldConfig, profileID int64) *Session {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if len(sm.sessions) >= maxSessions {
		return nil
	}

	id := GenerateUUID()
	ctx, cancel := context.WithCancel(context.Background())
	sess := &Session{
		ID:        id,
		ProfileID: profileID,
		Created:   time.Now(),
		Game:      NewGame(id, cfg, sm.db, sm.analytics),
		cancel:    cancel,
	}
	sm.sessions[id] = sess
	sm.analytics.Track(EvtSessionStart, profileID, id, "")
	sm.publishCount()
	go sess.Game.Run(ctx)
	return sess
}

// GetSession returns a session by ID
func (sm *SessionManager) GetSession(id string) *Session {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.sessions[id]
}

// RemoveSession stops a session and forgets it
func (sm *SessionManager) RemoveSession(id string) {
	sm.mu.Lock()
	sess, ok := sm.sessions[id]
	if ok {
		delete(sm.sessions, id)
	}
	sm.publishCount()
	sm.mu.Unlock()
	if !ok {
		return
	}
	sess.cancel()
	sess.Game.Stop()
	sm.analytics.Track(EvtSessionEnd, sess.ProfileID, id, "")
	Log.WithField("session", id).Debug("session removed")
}

// Count returns the number of live sessions
func (sm *SessionManager) Count() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}

// ListSessions returns info about all active sessions
func (sm *SessionManager) ListSessions() []SessionInfo {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	list := make([]SessionInfo, 0, len(sm.sessions))
	for _, sess := range sm.sessions {
		snap := sess.Game.Snapshot()
		list = append(list, SessionInfo{
			ID:      sess.ID,
			Phase:   snap.Phase,
			Level:   snap.Level,
			Seconds: round1(snap.Seconds),
			Owned:   sess.Game.HasOwner(),
		})
	}
	return list
}

// CleanupIdle removes ownerless sessions idle for longer than maxIdle and
// returns how many were removed
func (sm *SessionManager) CleanupIdle(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)
	var stale []string
	sm.mu.RLock()
	for id, sess := range sm.sessions {
		if !sess.Game.HasOwner() && sess.Game.IdleSince().Before(cutoff) {
			stale = append(stale, id)
		}
	}
	sm.mu.RUnlock()

	for _, id := range stale {
		sm.RemoveSession(id)
	}
	if len(stale) > 0 {
		Log.WithField("count", len(stale)).Info("idle sessions cleaned up")
	}
	return len(stale)
}

// Run sweeps idle sessions until ctx is done, then stops every session
func (sm *SessionManager) Run(ctx context.Context) {
	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			sm.CleanupIdle(sessionIdleTTL)
		case <-ctx.Done():
			sm.mu.RLock()
			ids := make([]string, 0, len(sm.sessions))
			for id := range sm.sessions {
				ids = append(ids, id)
			}
			sm.mu.RUnlock()
			for _, id := range ids {
				sm.RemoveSession(id)
			}
			return
		}
	}
}

// publishCount updates live metrics. Caller holds mu.
func (sm *SessionManager) publishCount() {
	if sm.analytics != nil {
		sm.analytics.SetActiveSessions(len(sm.sessions))
	}
}
