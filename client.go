package main

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeWait         = 10 * time.Second
	pongWait          = 60 * time.Second
	pingPeriod        = (pongWait * 9) / 10
	maxMessageSize    = 4096
	sendBufSize       = 256
	maxMessagesPerSec = 90 // input streams at up to 60/s
	maxBoardLimit     = 50
)

// Client represents a WebSocket connection
type Client struct {
	hub        *Hub
	conn       *websocket.Conn
	send       chan []byte
	remoteAddr string
	msgCount   int
	msgResetAt time.Time

	mu           sync.Mutex // guards session role, read by the hub on disconnect
	sessionID    string
	isController bool

	// Auth state
	profileID int64  // 0 = guest
	username  string // "" = guest
	settings  Settings
}

// NewClient creates a new Client
func NewClient(hub *Hub, conn *websocket.Conn, remoteAddr string) *Client {
	return &Client{
		hub:        hub,
		conn:       conn,
		send:       make(chan []byte, sendBufSize),
		remoteAddr: remoteAddr,
		settings:   DefaultSettings(),
	}
}

func (c *Client) log() *logrus.Entry {
	return Log.WithFields(logrus.Fields{"ip": c.remoteAddr, "session": c.SessionID()})
}

// SessionID returns the session the client owns or controls
func (c *Client) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

// IsController reports whether the client is a phone controller
func (c *Client) IsController() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isController
}

func (c *Client) setSession(id string, controller bool) {
	c.mu.Lock()
	c.sessionID = id
	c.isController = controller
	c.mu.Unlock()
}

// releaseSession gives up the role held in a session other than next. An
// owned run is paused and kept for rejoin.
func (c *Client) releaseSession(next string) {
	if old := c.SessionID(); old != "" && old != next {
		c.hub.detach(c)
	}
}

// session returns the live session of the client, nil when none
func (c *Client) session() *Session {
	id := c.SessionID()
	if id == "" {
		return nil
	}
	return c.hub.sessions.GetSession(id)
}

// ReadPump reads messages from the WebSocket connection
func (c *Client) ReadPump() {
	defer func() {
		c.hub.TrackDisconnect(c.remoteAddr)
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		msgType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log().WithError(err).Warn("ws error")
			}
			break
		}

		// Rate limiting
		now := time.Now()
		if now.After(c.msgResetAt) {
			c.msgCount = 0
			c.msgResetAt = now.Add(time.Second)
		}
		c.msgCount++
		if c.msgCount > maxMessagesPerSec {
			c.log().Warn("rate limit exceeded, disconnecting")
			break
		}

		if msgType == websocket.BinaryMessage {
			c.handleBinaryInput(message)
		} else {
			c.handleMessage(message)
		}
	}
}

// WritePump writes messages to the WebSocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			// Check for binary marker (0xFF prefix from SendBinary)
			var err error
			if len(message) > 0 && message[0] == 0xFF {
				err = c.conn.WriteMessage(websocket.BinaryMessage, message[1:])
			} else {
				err = c.conn.WriteMessage(websocket.TextMessage, message)
			}
			if err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendJSON sends a JSON message to the client
func (c *Client) SendJSON(msg interface{}) {
	data, err := json.Marshal(msg)
	if err != nil {
		c.log().WithError(err).Error("marshal error")
		return
	}
	c.SendRaw(data)
}

// SendRaw sends pre-marshaled bytes as a text message to the client
func (c *Client) SendRaw(data []byte) {
	defer func() { recover() }()
	select {
	case c.send <- data:
	default:
		// Client too slow, drop message
	}
}

// SendBinary sends pre-marshaled bytes as a binary WebSocket message
// Prefixes with 0xFF marker byte so WritePump can distinguish from text
func (c *Client) SendBinary(data []byte) {
	defer func() { recover() }()
	msg := make([]byte, len(data)+1)
	msg[0] = 0xFF // binary marker
	copy(msg[1:], data)
	select {
	case c.send <- msg:
	default:
	}
}

func (c *Client) sendError(msg string) {
	c.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Msg: msg}})
}

// handleMessage routes incoming messages (single-pass decode via InEnvelope)
func (c *Client) handleMessage(raw []byte) {
	var env InEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		c.log().WithError(err).Debug("unmarshal error")
		return
	}

	switch env.T {
	case MsgCreate:
		c.handleCreate(env.D)
	case MsgJoin:
		c.handleJoin(env.D)
	case MsgLeave:
		c.handleLeave()
	case MsgInput:
		c.handleInput(env.D)
	case MsgChoose:
		c.handleChoose(env.D)
	case MsgPause:
		c.handlePause(env.D)
	case MsgRestart:
		c.handleRestart()
	case MsgSettings:
		c.handleSettings(env.D)
	case MsgCheck:
		c.handleCheck(env.D)
	case MsgControl:
		c.handleControl(env.D)
	case MsgRegister:
		c.handleRegister(env.D)
	case MsgLogin:
		c.handleLogin(env.D)
	case MsgAuth:
		c.handleAuth(env.D)
	case MsgProfile:
		c.handleProfile()
	case MsgLeaderboard:
		c.handleLeaderboard(env.D)
	}
}

func (c *Client) handleCreate(data json.RawMessage) {
	var msg CreateMsg
	if len(data) > 0 {
		if err := json.Unmarshal(data, &msg); err != nil {
			return
		}
	}
	if old := c.SessionID(); old != "" {
		if c.IsController() {
			c.hub.detach(c)
		} else {
			c.hub.sessions.RemoveSession(old)
		}
	}

	cfg := DefaultWorldConfig()
	cfg.Difficulty = ParseDifficulty(msg.Difficulty)
	cfg.Seed = msg.Seed
	if cfg.Seed == 0 {
		cfg.Seed = c.hub.defaultSeed
	}
	sess := c.hub.sessions.CreateSession(cfg, c.profileID)
	if sess == nil {
		c.sendError("too many active sessions")
		return
	}
	c.setSession(sess.ID, false)
	sess.Game.SetOwner(c, c.profileID, c.settings)

	snap := sess.Game.Snapshot()
	c.log().WithField("difficulty", GetDifficultyDef(cfg.Difficulty).Name).Info("session created")
	c.SendJSON(Envelope{T: MsgCreated, Data: SessionMsg{
		SID:        sess.ID,
		Difficulty: GetDifficultyDef(cfg.Difficulty).Name,
		Seed:       sess.Game.Seed(),
	}})
	c.SendJSON(Envelope{T: MsgPaused, Data: PauseMsg{Paused: snap.Paused}})
}

// handleJoin reattaches an owner to a detached run. The run stays paused
// until the owner resumes it.
func (c *Client) handleJoin(data json.RawMessage) {
	var msg JoinMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	sess := c.hub.sessions.GetSession(msg.SessionID)
	if sess == nil {
		c.sendError("session not found")
		return
	}
	if sess.Game.HasOwner() {
		c.sendError("session already has a player")
		return
	}
	if sess.ProfileID != 0 && sess.ProfileID != c.profileID {
		c.sendError("session belongs to another profile")
		return
	}
	c.releaseSession(sess.ID)
	c.setSession(sess.ID, false)
	sess.Game.SetOwner(c, sess.ProfileID, c.settings)

	c.log().Info("session rejoined")
	c.SendJSON(Envelope{T: MsgJoined, Data: SessionMsg{
		SID:        sess.ID,
		Difficulty: sess.Game.DifficultyName(),
		Seed:       sess.Game.Seed(),
	}})
	snap := sess.Game.Snapshot()
	if snap.Phase == PhaseAwaitingUpgrade.String() {
		c.SendJSON(Envelope{T: MsgLevelUp, Data: LevelUpMsg{Level: snap.Level, Offers: snap.Offers}})
	}
	c.SendJSON(Envelope{T: MsgPaused, Data: PauseMsg{Paused: snap.Paused}})
}

// handleLeave ends the owned run, or detaches a controller
func (c *Client) handleLeave() {
	sid := c.SessionID()
	if sid == "" {
		return
	}
	if c.IsController() {
		if sess := c.hub.sessions.GetSession(sid); sess != nil {
			sess.Game.RemoveController()
		}
	} else {
		c.hub.sessions.RemoveSession(sid)
	}
	c.setSession("", false)
}

// handleBinaryInput decodes a compact binary input frame
func (c *Client) handleBinaryInput(msg []byte) {
	input, ok := DecodeBinaryInput(msg)
	if !ok {
		return
	}
	if sess := c.session(); sess != nil {
		sess.Game.HandleInput(input)
	}
}

func (c *Client) handleInput(data json.RawMessage) {
	var input InputMsg
	if err := json.Unmarshal(data, &input); err != nil {
		return
	}
	if sess := c.session(); sess != nil {
		sess.Game.HandleInput(input)
	}
}

func (c *Client) handleChoose(data json.RawMessage) {
	var msg ChooseMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	sess := c.session()
	if sess == nil {
		return
	}
	if _, err := sess.Game.ChooseUpgrade(msg.I); err != nil {
		c.sendError(err.Error())
	}
}

func (c *Client) handlePause(data json.RawMessage) {
	sess := c.session()
	if sess == nil {
		return
	}
	if len(data) == 0 {
		sess.Game.TogglePause()
		return
	}
	var msg PauseMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	sess.Game.SetPaused(msg.Paused)
}

func (c *Client) handleRestart() {
	if c.IsController() {
		return
	}
	if sess := c.session(); sess != nil {
		sess.Game.Restart()
		c.log().Info("run restarted")
	}
}

// handleSettings merges a partial settings object. The running session
// persists it; without one it is kept on the connection and saved for a
// logged-in profile.
func (c *Client) handleSettings(data json.RawMessage) {
	if sess := c.session(); sess != nil && !c.IsController() {
		s, err := sess.Game.UpdateSettings(data)
		if err != nil {
			c.sendError("invalid settings")
			return
		}
		c.settings = s
		c.SendJSON(Envelope{T: MsgSettingsOK, Data: s})
		return
	}

	s, err := c.settings.Merge(data)
	if err != nil {
		c.sendError("invalid settings")
		return
	}
	c.settings = s
	if c.hub.db != nil && c.profileID != 0 {
		if err := c.hub.db.SaveSettings(c.profileID, s); err != nil {
			c.log().WithError(err).Warn("save settings failed")
		}
	}
	c.SendJSON(Envelope{T: MsgSettingsOK, Data: s})
}

func (c *Client) handleCheck(data json.RawMessage) {
	var msg CheckMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	sess := c.hub.sessions.GetSession(msg.SID)
	if sess == nil {
		c.SendJSON(Envelope{T: MsgChecked, Data: CheckedMsg{SID: msg.SID, Exists: false}})
		return
	}
	snap := sess.Game.Snapshot()
	c.SendJSON(Envelope{T: MsgChecked, Data: CheckedMsg{
		SID:    msg.SID,
		Exists: true,
		Phase:  snap.Phase,
		Level:  snap.Level,
	}})
}

// handleControl attaches this connection as a phone controller
func (c *Client) handleControl(data json.RawMessage) {
	var msg ControlMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	sess := c.hub.sessions.GetSession(msg.SID)
	if sess == nil {
		c.sendError("session not found")
		return
	}
	c.releaseSession(msg.SID)
	c.setSession(msg.SID, true)
	sess.Game.SetController(c)
	c.log().Info("controller attached")
	c.SendJSON(Envelope{T: MsgControlOK, Data: map[string]string{"sid": msg.SID}})
}

func (c *Client) handleRegister(data json.RawMessage) {
	if c.hub.auth == nil {
		c.sendError("profiles are disabled")
		return
	}
	var msg RegisterMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	id, token, err := c.hub.auth.Register(msg.Username, msg.Password)
	if err != nil {
		c.sendError(err.Error())
		return
	}
	// a fresh profile starts from whatever the guest had set
	if err := c.hub.db.SaveSettings(id, c.settings); err != nil {
		c.log().WithError(err).Warn("save settings failed")
	}
	c.log().WithField("profile", id).Info("profile registered")
	c.authenticated(id, msg.Username, token)
}

func (c *Client) handleLogin(data json.RawMessage) {
	if c.hub.auth == nil {
		c.sendError("profiles are disabled")
		return
	}
	var msg LoginMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	id, token, err := c.hub.auth.Login(msg.Username, msg.Password, c.remoteAddr)
	if err != nil {
		c.sendError(err.Error())
		return
	}
	c.authenticated(id, msg.Username, token)
}

func (c *Client) handleAuth(data json.RawMessage) {
	if c.hub.auth == nil {
		c.sendError("profiles are disabled")
		return
	}
	var msg AuthMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	id, username, err := c.hub.auth.ValidateToken(msg.Token)
	if err != nil {
		c.sendError(ErrBadToken.Error())
		return
	}
	c.authenticated(id, username, msg.Token)
}

// authenticated switches the connection to a profile and loads its settings
func (c *Client) authenticated(id int64, username, token string) {
	c.profileID = id
	c.username = username
	if s, err := c.hub.db.LoadSettings(id); err == nil {
		c.settings = s
	} else {
		c.log().WithError(err).Warn("load settings failed")
	}
	if sess := c.session(); sess != nil && !c.IsController() && sess.ProfileID == 0 {
		sess.ProfileID = id
		sess.Game.SetOwner(c, id, c.settings)
	}
	c.SendJSON(Envelope{T: MsgAuthOK, Data: AuthOKMsg{
		Token:     token,
		Username:  username,
		ProfileID: id,
		Settings:  c.settings,
	}})
}

func (c *Client) handleProfile() {
	if c.hub.db == nil || c.profileID == 0 {
		c.sendError("not authenticated")
		return
	}
	stats, err := c.hub.db.GetProfileStats(c.profileID)
	if err != nil {
		c.sendError("profile not found")
		return
	}
	ids, err := c.hub.db.GetAchievements(c.profileID)
	if err != nil {
		c.log().WithError(err).Warn("load achievements failed")
	}
	c.SendJSON(Envelope{T: MsgProfileData, Data: ProfileDataMsg{
		Username:     c.username,
		Stats:        stats,
		Achievements: ids,
	}})
}

func (c *Client) handleLeaderboard(data json.RawMessage) {
	if c.hub.db == nil {
		c.SendJSON(Envelope{T: MsgBoard, Data: []LeaderboardEntry{}})
		return
	}
	msg := LeaderboardMsg{By: "score", Limit: 10}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &msg); err != nil {
			return
		}
	}
	if msg.Limit <= 0 || msg.Limit > maxBoardLimit {
		msg.Limit = 10
	}
	entries, err := c.hub.db.GetLeaderboard(msg.By, msg.Limit)
	if err != nil {
		c.log().WithError(err).Warn("leaderboard query failed")
		c.sendError("leaderboard unavailable")
		return
	}
	c.SendJSON(Envelope{T: MsgBoard, Data: entries})
}
