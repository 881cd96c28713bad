package main

import (
	"encoding/json"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/gorilla/websocket"
	"github.com/skip2/go-qrcode"
)

var uuidPathRe = regexp.MustCompile(`^/[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

const qrSize = 256

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true // Non-browser clients don't send Origin
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return u.Host == r.Host
	},
}

func extractIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		Log.WithError(err).Debug("write json")
	}
}

// SetupRoutes configures HTTP routes. An empty or missing clientDir serves
// the API and WebSocket only.
func SetupRoutes(hub *Hub, clientDir string) *http.ServeMux {
	mux := http.NewServeMux()

	if clientDir != "" {
		if _, err := os.Stat(clientDir); err != nil {
			Log.WithField("dir", clientDir).Warn("client directory not found, static files disabled")
		} else {
			// Serve static files with no-cache so browsers always revalidate
			fs := http.FileServer(http.Dir(clientDir))
			mux.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Cache-Control", "no-cache")
				// SPA: serve index.html for root and session paths
				if r.URL.Path == "/" || uuidPathRe.MatchString(r.URL.Path) {
					http.ServeFile(w, r, filepath.Join(clientDir, "index.html"))
					return
				}
				fs.ServeHTTP(w, r)
			}))
		}
	}

	// WebSocket endpoint
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		ip := extractIP(r)
		if !hub.CanAccept(ip) {
			http.Error(w, "too many connections", http.StatusServiceUnavailable)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			Log.WithError(err).WithField("ip", ip).Warn("upgrade error")
			return
		}

		hub.TrackConnect(ip)

		client := NewClient(hub, conn, ip)
		hub.register <- client

		go client.WritePump()
		go client.ReadPump()
	})

	// QR code linking a phone controller to a session
	mux.HandleFunc("GET /qr/{sid}", func(w http.ResponseWriter, r *http.Request) {
		sid := r.PathValue("sid")
		if hub.sessions.GetSession(sid) == nil {
			http.NotFound(w, r)
			return
		}
		scheme := "http"
		if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
			scheme = "https"
		}
		link := scheme + "://" + r.Host + "/" + sid + "?control=1"
		png, err := qrcode.Encode(link, qrcode.Medium, qrSize)
		if err != nil {
			Log.WithError(err).Error("qr encode")
			http.Error(w, "qr failed", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "no-cache")
		w.Write(png)
	})

	mux.HandleFunc("GET /api/leaderboard", func(w http.ResponseWriter, r *http.Request) {
		if hub.db == nil {
			writeJSON(w, []LeaderboardEntry{})
			return
		}
		limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
		if err != nil || limit <= 0 || limit > maxBoardLimit {
			limit = 10
		}
		entries, err := hub.db.GetLeaderboard(r.URL.Query().Get("by"), limit)
		if err != nil {
			Log.WithError(err).Warn("leaderboard query failed")
			http.Error(w, "leaderboard unavailable", http.StatusInternalServerError)
			return
		}
		writeJSON(w, entries)
	})

	mux.HandleFunc("GET /api/stats", func(w http.ResponseWriter, r *http.Request) {
		conns, sessions := 0, hub.sessions.Count()
		if hub.analytics != nil {
			conns, _ = hub.analytics.GetLiveMetrics()
		}
		resp := map[string]interface{}{
			"connections": conns,
			"sessions":    sessions,
			"list":        hub.sessions.ListSessions(),
		}
		if hub.analytics != nil && hub.db != nil {
			if counts, err := hub.analytics.EventCounts(7); err == nil {
				resp["events"] = counts
			}
			if runs, err := hub.analytics.RunStats(7); err == nil {
				resp["runs"] = runs
			}
		}
		writeJSON(w, resp)
	})

	return mux
}
