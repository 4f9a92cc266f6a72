package session

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/example/storefront/internal/storage"
)

const (
	tokenKey        = "token"
	refreshTokenKey = "refresh_token"
	userKey         = "user"
)

// ErrNoSession is returned by Establish when required pieces are missing.
var ErrNoSession = errors.New("session: token and user are both required")

// User is the profile the remote API returns alongside a token.
type User struct {
	ID    string `json:"_id,omitempty"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
}

func (u User) valid() bool {
	return u.Name != "" && u.Email != ""
}

// Manager holds the single active session for this client instance: either
// fully authenticated (token and user) or fully anonymous, never in between.
// The access credential itself is issued and validated by the remote API;
// this side only stores it and reads its expiry claim.
type Manager struct {
	mu           sync.RWMutex
	token        string
	refreshToken string
	user         *User
	kv           storage.KV
}

func NewManager(kv storage.KV) *Manager {
	return &Manager{kv: kv}
}

// Hydrate restores a persisted session on startup. A missing token, a missing
// user, or a malformed legacy user profile all leave the manager anonymous
// and wipe the partial remains.
func (m *Manager) Hydrate() {
	m.mu.Lock()
	defer m.mu.Unlock()

	var token string
	var user User
	haveToken := storage.GetJSON(m.kv, tokenKey, &token) && token != ""
	haveUser := storage.GetJSON(m.kv, userKey, &user) && user.valid()

	if !haveToken || !haveUser {
		if haveToken || haveUser {
			log.Println("[Session] Discarding partial persisted session")
		}
		m.clearLocked()
		return
	}

	m.token = token
	m.user = &user

	var refresh string
	if storage.GetJSON(m.kv, refreshTokenKey, &refresh) {
		m.refreshToken = refresh
	}
	log.Printf("[Session] Restored session for %s", user.Email)
}

// Establish activates a new session after login or registration. The refresh
// token is optional; token and user are not.
func (m *Manager) Establish(token, refreshToken string, user User) error {
	if token == "" || !user.valid() {
		return ErrNoSession
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.token = token
	m.refreshToken = refreshToken
	m.user = &user

	m.persist(tokenKey, token)
	m.persist(userKey, user)
	if refreshToken != "" {
		m.persist(refreshTokenKey, refreshToken)
	} else {
		m.kv.Delete(refreshTokenKey)
	}
	return nil
}

// SetAccessToken swaps the access credential after a successful refresh.
func (m *Manager) SetAccessToken(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.token = token
	m.persist(tokenKey, token)
}

// Clear tears the session down: in-memory state and persisted keys.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.clearLocked()
}

func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

func (m *Manager) RefreshToken() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.refreshToken
}

// User returns a copy of the profile, or nil when anonymous.
func (m *Manager) User() *User {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.user == nil {
		return nil
	}
	u := *m.user
	return &u
}

func (m *Manager) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token != "" && m.user != nil
}

// TokenExpiresAt reads the exp claim of the stored access token without
// verifying the signature; verification is the remote API's business, this is
// only a hint for proactive UI behavior.
func (m *Manager) TokenExpiresAt() (time.Time, bool) {
	m.mu.RLock()
	token := m.token
	m.mu.RUnlock()

	if token == "" {
		return time.Time{}, false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// UserFromToken derives a minimal profile from the token's claims, for signin
// responses that return a token without a user object.
func UserFromToken(token string) *User {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil
	}

	u := &User{}
	if id, ok := claims["id"].(string); ok {
		u.ID = id
	}
	if name, ok := claims["name"].(string); ok {
		u.Name = name
	}
	if email, ok := claims["email"].(string); ok {
		u.Email = email
	}
	if role, ok := claims["role"].(string); ok {
		u.Role = role
	}
	return u
}

func (m *Manager) clearLocked() {
	m.token = ""
	m.refreshToken = ""
	m.user = nil
	m.kv.Delete(tokenKey)
	m.kv.Delete(refreshTokenKey)
	m.kv.Delete(userKey)
}

func (m *Manager) persist(key string, v any) {
	if err := storage.SetJSON(m.kv, key, v); err != nil {
		log.Printf("[Session] Failed to persist %q: %v", key, err)
	}
}
