package main

import (
	"context"
	"sync"
)

const (
	maxConnsPerIP = 5
	maxTotalConns = 1000
)

// Hub manages all connected clients and routes them to sessions
type Hub struct {
	mu         sync.RWMutex
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	sessions   *SessionManager
	// Connection limiting (mutex-protected, accessed from HTTP handlers)
	connMu     sync.Mutex
	ipConns    map[string]int
	totalConns int
	// Persistence; all nil in guest mode
	db        *DB
	auth      *Auth
	analytics *Analytics

	// seed for created runs that do not ask for one; 0 = random
	defaultSeed int64
}

// NewHub creates a new Hub. A nil db runs the server in guest mode: no
// profiles, no run history.
func NewHub(db *DB, analytics *Analytics) *Hub {
	h := &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client, 64),
		unregister: make(chan *Client, 64),
		sessions:   NewSessionManager(db, analytics),
		ipConns:    make(map[string]int),
		db:         db,
		analytics:  analytics,
	}
	if db != nil {
		h.auth = NewAuth(db)
	}
	return h
}

func (h *Hub) CanAccept(ip string) bool {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	if h.totalConns >= maxTotalConns {
		return false
	}
	if h.ipConns[ip] >= maxConnsPerIP {
		return false
	}
	return true
}

func (h *Hub) TrackConnect(ip string) {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	h.ipConns[ip]++
	h.totalConns++
}

func (h *Hub) TrackDisconnect(ip string) {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	h.ipConns[ip]--
	if h.ipConns[ip] <= 0 {
		delete(h.ipConns, ip)
	}
	h.totalConns--
}

// Run processes register/unregister events until ctx is done
func (h *Hub) Run(ctx context.Context) {
	go h.sessions.Run(ctx)
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			n := len(h.clients)
			h.mu.Unlock()
			h.publishConnected(n)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			n := len(h.clients)
			h.mu.Unlock()
			h.publishConnected(n)
			h.detach(client)

		case <-ctx.Done():
			return
		}
	}
}

// detach releases whatever session role the client held. An owner's run is
// paused and kept until idle cleanup so the player can rejoin.
func (h *Hub) detach(client *Client) {
	sid := client.SessionID()
	if sid == "" {
		return
	}
	sess := h.sessions.GetSession(sid)
	if sess == nil {
		return
	}
	if client.IsController() {
		sess.Game.RemoveController()
	} else {
		sess.Game.DetachOwner()
	}
}

func (h *Hub) publishConnected(n int) {
	if h.analytics != nil {
		h.analytics.SetConnected(n)
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// TotalConns returns the tracked connection count
func (h *Hub) TotalConns() int {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	return h.totalConns
}
