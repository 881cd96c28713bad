package main

import (
	"database/sql"
	"sync"
	"time"
)

// Event types for analytics tracking
const (
	EvtRunStart     = "run_start"
	EvtRunEnd       = "run_end"
	EvtLevelUp      = "level_up"
	EvtBossDown     = "boss_down"
	EvtAchievement  = "achievement"
	EvtSessionStart = "session_start"
	EvtSessionEnd   = "session_end"
	EvtFault        = "fault"
)

const (
	analyticsQueue    = 1024
	analyticsBatch    = 50
	analyticsInterval = 5 * time.Second
)

// AnalyticsEvent represents a single trackable event
type AnalyticsEvent struct {
	Type      string
	ProfileID int64
	SessionID string
	Data      string // JSON metadata (optional)
	Timestamp time.Time
}

// Analytics handles event tracking with batched background writes. A nil
// database turns it into a sink.
type Analytics struct {
	db     *DB
	events chan AnalyticsEvent
	stop   chan struct{}
	once   sync.Once
	wg     sync.WaitGroup

	mu             sync.RWMutex
	connected      int
	activeSessions int
}

// NewAnalytics creates and starts the analytics background writer
func NewAnalytics(db *DB) *Analytics {
	a := &Analytics{
		db:     db,
		events: make(chan AnalyticsEvent, analyticsQueue),
		stop:   make(chan struct{}),
	}
	a.wg.Add(1)
	go a.writer()
	return a
}

// Track enqueues an event for async persistence (non-blocking)
func (a *Analytics) Track(evtType string, profileID int64, sessionID, data string) {
	if a == nil {
		return
	}
	select {
	case a.events <- AnalyticsEvent{
		Type:      evtType,
		ProfileID: profileID,
		SessionID: sessionID,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}:
	default:
		// full: drop rather than stall a session runner
	}
}

// SetConnected updates the live connection count
func (a *Analytics) SetConnected(n int) {
	a.mu.Lock()
	a.connected = n
	a.mu.Unlock()
}

// SetActiveSessions updates the live session count
func (a *Analytics) SetActiveSessions(n int) {
	a.mu.Lock()
	a.activeSessions = n
	a.mu.Unlock()
}

// GetLiveMetrics returns (connections, sessions)
func (a *Analytics) GetLiveMetrics() (int, int) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.connected, a.activeSessions
}

// Stop flushes pending events and shuts down the writer
func (a *Analytics) Stop() {
	a.once.Do(func() {
		close(a.stop)
		a.wg.Wait()
	})
}

// writer is the background goroutine that batches and writes events to DB
func (a *Analytics) writer() {
	defer a.wg.Done()

	batch := make([]AnalyticsEvent, 0, analyticsBatch)
	ticker := time.NewTicker(analyticsInterval)
	defer ticker.Stop()

	for {
		select {
		case evt := <-a.events:
			batch = append(batch, evt)
			if len(batch) >= analyticsBatch {
				a.flush(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				a.flush(batch)
				batch = batch[:0]
			}
		case <-a.stop:
		drain:
			for {
				select {
				case evt := <-a.events:
					batch = append(batch, evt)
				default:
					break drain
				}
			}
			a.flush(batch)
			return
		}
	}
}

// flush writes a batch of events to the database
func (a *Analytics) flush(events []AnalyticsEvent) {
	if a.db == nil || len(events) == 0 {
		return
	}
	tx, err := a.db.conn.Begin()
	if err != nil {
		Log.WithError(err).Warn("analytics: begin tx")
		return
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO analytics_events (event_type, profile_id, session_id, data, created_at) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		Log.WithError(err).Warn("analytics: prepare")
		return
	}
	defer stmt.Close()

	for _, evt := range events {
		pid := sql.NullInt64{Int64: evt.ProfileID, Valid: evt.ProfileID > 0}
		sid := sql.NullString{String: evt.SessionID, Valid: evt.SessionID != ""}
		data := sql.NullString{String: evt.Data, Valid: evt.Data != ""}
		if _, err := stmt.Exec(evt.Type, pid, sid, data, evt.Timestamp.Format(time.RFC3339)); err != nil {
			Log.WithError(err).WithField("event", evt.Type).Warn("analytics: insert")
		}
	}
	if err := tx.Commit(); err != nil {
		Log.WithError(err).Warn("analytics: commit")
	}
}

// EventCounts returns counts of each event type for the last N days
func (a *Analytics) EventCounts(days int) (map[string]int, error) {
	if a.db == nil {
		return nil, nil
	}
	rows, err := a.db.conn.Query(`
		SELECT event_type, COUNT(*) FROM analytics_events
		WHERE created_at >= date('now', '-' || ? || ' days')
		GROUP BY event_type ORDER BY COUNT(*) DESC
	`, days)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]int)
	for rows.Next() {
		var evtType string
		var count int
		if err := rows.Scan(&evtType, &count); err != nil {
			continue
		}
		result[evtType] = count
	}
	return result, rows.Err()
}

// RunStats returns finished-run aggregates per difficulty for the last N days
func (a *Analytics) RunStats(days int) ([]RunAnalytics, error) {
	if a.db == nil {
		return nil, nil
	}
	rows, err := a.db.conn.Query(`
		SELECT COALESCE(json_extract(data, '$.difficulty'), 'unknown') AS diff, COUNT(*) AS cnt,
			AVG(CAST(json_extract(data, '$.seconds') AS REAL)),
			AVG(CAST(json_extract(data, '$.level') AS REAL))
		FROM analytics_events
		WHERE event_type = ? AND json_valid(data) AND created_at >= date('now', '-' || ? || ' days')
		GROUP BY diff
		ORDER BY cnt DESC
	`, EvtRunEnd, days)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []RunAnalytics
	for rows.Next() {
		var r RunAnalytics
		var avgSec, avgLvl sql.NullFloat64
		if err := rows.Scan(&r.Difficulty, &r.Count, &avgSec, &avgLvl); err != nil {
			continue
		}
		r.AvgSeconds = avgSec.Float64
		r.AvgLevel = avgLvl.Float64
		result = append(result, r)
	}
	return result, rows.Err()
}

// RunAnalytics holds aggregated run statistics
type RunAnalytics struct {
	Difficulty string  `json:"difficulty"`
	Count      int     `json:"count"`
	AvgSeconds float64 `json:"avg_seconds"`
	AvgLevel   float64 `json:"avg_level"`
}
