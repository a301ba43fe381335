package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/jingletube/jingletube/db"
	"github.com/jingletube/jingletube/db/apikey"
	"github.com/jingletube/jingletube/util/jwtgen"
)

// Session is a browser login tied to a user
type Session struct {
	ID        string
	UserID    int64
	Provider  string // auth service that created the session
	CreatedAt time.Time
	ExpiresAt time.Time
}

type SessionManager struct {
	db        *db.DB
	sessions  map[string]*Session // in-memory cache over the sessions table
	apiKeyMgr *apikey.Manager
	signer    *jwtgen.Signer
	mu        sync.RWMutex
}

func NewSessionManager(database *db.DB, signer *jwtgen.Signer) *SessionManager {
	_, err := database.Exec(`
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		user_id INTEGER NOT NULL,
		provider TEXT NOT NULL,
		created_at TIMESTAMP,
		expires_at TIMESTAMP,
		FOREIGN KEY (user_id) REFERENCES users(id)
	)`)

	if err != nil {
		log.Printf("Error creating sessions table: %v", err)
	}

	return &SessionManager{
		db:        database,
		sessions:  make(map[string]*Session),
		apiKeyMgr: apikey.NewManager(database),
		signer:    signer,
	}
}

// CreateSession creates a new session for a user
func (sm *SessionManager) CreateSession(userID int64, provider string) *Session {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	// random session id
	b := make([]byte, 32)
	rand.Read(b)
	sessionID := base64.URLEncoding.EncodeToString(b)

	now := time.Now().UTC()
	expiresAt := now.Add(24 * time.Hour) // 24-hour session

	session := &Session{
		ID:        sessionID,
		UserID:    userID,
		Provider:  provider,
		CreatedAt: now,
		ExpiresAt: expiresAt,
	}

	sm.sessions[sessionID] = session

	if sm.db != nil {
		_, err := sm.db.Exec(`
		INSERT INTO sessions (id, user_id, provider, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?)`,
			sessionID, userID, provider, now, expiresAt)

		if err != nil {
			log.Printf("Error storing session in database: %v", err)
		}
	}

	return session
}

// GetSession retrieves a session by ID
func (sm *SessionManager) GetSession(sessionID string) (*Session, bool) {
	// First check in-memory cache
	sm.mu.RLock()
	session, exists := sm.sessions[sessionID]
	sm.mu.RUnlock()

	if exists {
		if time.Now().UTC().After(session.ExpiresAt) {
			sm.DeleteSession(sessionID)
			return nil, false
		}
		return session, true
	}

	// if not in memory and we have a database, check there
	if sm.db != nil {
		session = &Session{ID: sessionID}

		err := sm.db.QueryRow(`
		SELECT user_id, provider, created_at, expires_at
		FROM sessions WHERE id = ?`, sessionID).Scan(
			&session.UserID, &session.Provider, &session.CreatedAt, &session.ExpiresAt)

		if err != nil {
			return nil, false
		}

		if time.Now().UTC().After(session.ExpiresAt) {
			sm.DeleteSession(sessionID)
			return nil, false
		}

		sm.mu.Lock()
		sm.sessions[sessionID] = session
		sm.mu.Unlock()

		return session, true
	}

	return nil, false
}

// DeleteSession removes a session
func (sm *SessionManager) DeleteSession(sessionID string) {
	sm.mu.Lock()
	delete(sm.sessions, sessionID)
	sm.mu.Unlock()

	if sm.db != nil {
		_, err := sm.db.Exec("DELETE FROM sessions WHERE id = ?", sessionID)
		if err != nil {
			log.Printf("Error deleting session from database: %v", err)
		}
	}
}

// SetSessionCookie sets a session cookie for the user
func (sm *SessionManager) SetSessionCookie(w http.ResponseWriter, session *Session) {
	cookie := &http.Cookie{
		Name:     "session",
		Value:    session.ID,
		Path:     "/",
		HttpOnly: true,
		Secure:   false,
		Expires:  session.ExpiresAt,
	}
	http.SetCookie(w, cookie)
}

// ClearSessionCookie clears the session cookie
func (sm *SessionManager) ClearSessionCookie(w http.ResponseWriter) {
	cookie := &http.Cookie{
		Name:     "session",
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   false,
		MaxAge:   -1,
	}
	http.SetCookie(w, cookie)
}

func (sm *SessionManager) HandleLogout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie("session")
	if err == nil {
		sm.DeleteSession(cookie.Value)
	}

	sm.ClearSessionCookie(w)

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (sm *SessionManager) GetAPIKeyManager() *apikey.Manager {
	return sm.apiKeyMgr
}

func (sm *SessionManager) CreateAPIKey(userID int64, name string, validityDays int) (*apikey.ApiKey, error) {
	return sm.apiKeyMgr.CreateApiKey(userID, name, validityDays)
}

// bearerUserID resolves an Authorization bearer value that is either an
// API key or a signed access token.
func (sm *SessionManager) bearerUserID(token string) (int64, bool) {
	if key, valid := sm.apiKeyMgr.GetApiKey(token); valid {
		return key.UserID, true
	}

	if sm.signer != nil {
		if userID, err := sm.signer.VerifyToken(token); err == nil {
			return userID, true
		}
	}

	return 0, false
}

// WithAuth is middleware that checks if a user is authenticated via
// cookies, an API key, or an access token
func WithAuth(handler http.HandlerFunc, sm *SessionManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// first: check bearer credentials
		token, tokenErr := apikey.ExtractApiKey(r)
		if tokenErr == nil && token != "" {
			if userID, ok := sm.bearerUserID(token); ok {
				ctx := WithUserID(r.Context(), userID)
				ctx = WithAPIRequest(ctx, true)
				handler(w, r.WithContext(ctx))
				return
			}
		}

		// if not found, check cookies for session value
		cookie, err := r.Cookie("session")
		if err != nil {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}

		session, exists := sm.GetSession(cookie.Value)
		if !exists {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}

		ctx := WithUserID(r.Context(), session.UserID)
		handler(w, r.WithContext(ctx))
	}
}

// WithPossibleAuth is middleware that checks if a user is authenticated
// but doesn't error out if not
func WithPossibleAuth(handler http.HandlerFunc, sm *SessionManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		authenticated := false

		token, tokenErr := apikey.ExtractApiKey(r)
		if tokenErr == nil && token != "" {
			if userID, ok := sm.bearerUserID(token); ok {
				ctx = WithUserID(ctx, userID)
				ctx = WithAPIRequest(ctx, true)
				authenticated = true
				handler(w, r.WithContext(WithAuthStatus(ctx, authenticated)))
				return
			}
		}

		if !authenticated {
			cookie, err := r.Cookie("session")
			if err == nil {
				session, exists := sm.GetSession(cookie.Value)
				if exists {
					ctx = WithUserID(ctx, session.UserID)
					authenticated = true
				}
			}
		}

		handler(w, r.WithContext(WithAuthStatus(ctx, authenticated)))
	}
}

// WithAPIAuth is middleware for API routes. It accepts bearer
// credentials (API key or access token) or a session cookie, and
// answers 401 JSON instead of redirecting.
func WithAPIAuth(handler http.HandlerFunc, sm *SessionManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, tokenErr := apikey.ExtractApiKey(r)
		if tokenErr == nil && token != "" {
			userID, ok := sm.bearerUserID(token)
			if !ok {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error": "Invalid or expired credentials"}`))
				return
			}

			ctx := WithUserID(r.Context(), userID)
			ctx = WithAPIRequest(ctx, true)

			handler(w, r.WithContext(ctx))
			return
		}

		// browser clients: fall back to the session cookie
		cookie, err := r.Cookie("session")
		if err == nil {
			if session, exists := sm.GetSession(cookie.Value); exists {
				ctx := WithUserID(r.Context(), session.UserID)
				handler(w, r.WithContext(ctx))
				return
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": "API key, access token or login session is required"}`))
	}
}

type contextKey int

const (
	userIDKey contextKey = iota
	apiRequestKey
	authStatusKey
)

func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

func GetUserID(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(userIDKey).(int64)
	return userID, ok
}

func WithAuthStatus(ctx context.Context, isAuthed bool) context.Context {
	return context.WithValue(ctx, authStatusKey, isAuthed)
}

func IsAuthenticated(ctx context.Context) bool {
	authed, ok := ctx.Value(authStatusKey).(bool)
	return ok && authed
}

func WithAPIRequest(ctx context.Context, isAPI bool) context.Context {
	return context.WithValue(ctx, apiRequestKey, isAPI)
}

func IsAPIRequest(ctx context.Context) bool {
	isAPI, ok := ctx.Value(apiRequestKey).(bool)
	return ok && isAPI
}
