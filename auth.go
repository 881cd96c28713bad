package main

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	jwtExpiry        = 30 * 24 * time.Hour
	bcryptCost       = 12
	minPasswordLen   = 4
	minUsernameLen   = 2
	maxUsernameLen   = 16
	loginRateWindow  = 60 * time.Second
	maxLoginAttempts = 10
)

// User-facing auth errors, sent verbatim to the client
var (
	ErrBadUsername   = fmt.Errorf("username must be %d-%d characters", minUsernameLen, maxUsernameLen)
	ErrBadPassword   = fmt.Errorf("password must be at least %d characters", minPasswordLen)
	ErrUsernameTaken = errors.New("username already taken")
	ErrBadLogin      = errors.New("invalid username or password")
	ErrRateLimited   = errors.New("too many login attempts, try again later")
	ErrBadToken      = errors.New("invalid token")
)

// Auth issues and validates profile tokens. A token owns the settings and
// run history of its profile.
type Auth struct {
	db        *DB
	jwtSecret []byte
	cost      int

	rateMu  sync.Mutex
	rateMap map[string]*rateEntry
}

type rateEntry struct {
	Count   int
	ResetAt time.Time
}

// NewAuth creates a new Auth handler
func NewAuth(db *DB) *Auth {
	return &Auth{
		db:        db,
		jwtSecret: loadOrCreateSecret(db),
		cost:      bcryptCost,
		rateMap:   make(map[string]*rateEntry),
	}
}

// loadOrCreateSecret loads the JWT secret from the database, or generates
// and persists a new one if none exists.
func loadOrCreateSecret(db *DB) []byte {
	if h := db.GetSetting("jwt_secret"); h != "" {
		if b, err := hex.DecodeString(h); err == nil && len(b) == 32 {
			return b
		}
	}
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		panic("failed to generate JWT secret: " + err.Error())
	}
	if err := db.SetSetting("jwt_secret", hex.EncodeToString(secret)); err != nil {
		Log.WithError(err).Warn("could not persist JWT secret")
	}
	return secret
}

// Register creates a new profile and returns its ID and a token
func (a *Auth) Register(username, password string) (int64, string, error) {
	username = strings.TrimSpace(username)
	if len(username) < minUsernameLen || len(username) > maxUsernameLen {
		return 0, "", ErrBadUsername
	}
	if len(password) < minPasswordLen {
		return 0, "", ErrBadPassword
	}

	exists, err := a.db.UsernameExists(username)
	if err != nil {
		return 0, "", fmt.Errorf("register: %w", err)
	}
	if exists {
		return 0, "", ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.cost)
	if err != nil {
		return 0, "", fmt.Errorf("register: %w", err)
	}
	id, err := a.db.CreateProfile(username, string(hash))
	if err != nil {
		return 0, "", fmt.Errorf("register: %w", err)
	}
	token, err := a.generateToken(id, username)
	if err != nil {
		return 0, "", fmt.Errorf("register: %w", err)
	}
	return id, token, nil
}

// Login checks a password and returns the profile ID and a fresh token
func (a *Auth) Login(username, password, ip string) (int64, string, error) {
	if !a.checkRate(ip) {
		return 0, "", ErrRateLimited
	}

	profile, err := a.db.GetProfileByUsername(username)
	if err != nil {
		return 0, "", fmt.Errorf("login: %w", err)
	}
	if profile == nil || profile.PassHash == "" {
		return 0, "", ErrBadLogin
	}
	if err := bcrypt.CompareHashAndPassword([]byte(profile.PassHash), []byte(password)); err != nil {
		return 0, "", ErrBadLogin
	}

	token, err := a.generateToken(profile.ID, profile.Username)
	if err != nil {
		return 0, "", fmt.Errorf("login: %w", err)
	}
	return profile.ID, token, nil
}

// ValidateToken validates a JWT and returns (profileID, username, error)
func (a *Auth) ValidateToken(tokenStr string) (int64, string, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.jwtSecret, nil
	})
	if err != nil {
		return 0, "", fmt.Errorf("%w: %w", ErrBadToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return 0, "", ErrBadToken
	}
	pid, ok := claims["pid"].(float64)
	if !ok {
		return 0, "", ErrBadToken
	}
	username, ok := claims["usr"].(string)
	if !ok {
		return 0, "", ErrBadToken
	}
	return int64(pid), username, nil
}

func (a *Auth) generateToken(profileID int64, username string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"pid": profileID,
		"usr": username,
		"exp": now.Add(jwtExpiry).Unix(),
		"iat": now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.jwtSecret)
}

func (a *Auth) checkRate(ip string) bool {
	a.rateMu.Lock()
	defer a.rateMu.Unlock()

	now := time.Now()
	entry, ok := a.rateMap[ip]
	if !ok || now.After(entry.ResetAt) {
		a.rateMap[ip] = &rateEntry{Count: 1, ResetAt: now.Add(loginRateWindow)}
		return true
	}
	entry.Count++
	return entry.Count <= maxLoginAttempts
}
