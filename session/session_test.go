package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jingletube/jingletube/db"
	"github.com/jingletube/jingletube/util/jwtgen"
)

func newTestManager(t *testing.T) *SessionManager {
	t.Helper()

	database, err := db.New(":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	if err := database.Initialize(); err != nil {
		t.Fatalf("failed to initialize test database: %v", err)
	}

	key, err := jwtgen.GenerateKey(nil)
	if err != nil {
		t.Fatalf("GenerateKey() failed: %v", err)
	}
	signer, err := jwtgen.NewSigner(key, "jingletube-test", time.Hour)
	if err != nil {
		t.Fatalf("NewSigner() failed: %v", err)
	}

	return NewSessionManager(database, signer)
}

func TestCreateAndGetSession(t *testing.T) {
	sm := newTestManager(t)

	sess := sm.CreateSession(7, "dev")
	if sess.ID == "" {
		t.Fatal("CreateSession() returned empty session ID")
	}
	if sess.UserID != 7 || sess.Provider != "dev" {
		t.Errorf("CreateSession() = %+v, want UserID 7 provider dev", sess)
	}

	got, ok := sm.GetSession(sess.ID)
	if !ok {
		t.Fatal("GetSession() did not find a fresh session")
	}
	if got.UserID != 7 {
		t.Errorf("GetSession() UserID = %d, want 7", got.UserID)
	}

	if _, ok := sm.GetSession("no-such-session"); ok {
		t.Error("GetSession() found a session that was never created")
	}
}

func TestGetSessionExpired(t *testing.T) {
	sm := newTestManager(t)

	sess := sm.CreateSession(7, "dev")
	sess.ExpiresAt = time.Now().UTC().Add(-time.Minute)

	if _, ok := sm.GetSession(sess.ID); ok {
		t.Error("GetSession() returned an expired session")
	}
}

func TestDeleteSession(t *testing.T) {
	sm := newTestManager(t)

	sess := sm.CreateSession(7, "dev")
	sm.DeleteSession(sess.ID)

	if _, ok := sm.GetSession(sess.ID); ok {
		t.Error("GetSession() found a deleted session")
	}
}

func TestWithAPIAuthToken(t *testing.T) {
	sm := newTestManager(t)

	token, err := sm.signer.IssueToken(42)
	if err != nil {
		t.Fatalf("IssueToken() failed: %v", err)
	}

	var gotUserID int64
	handler := WithAPIAuth(func(w http.ResponseWriter, r *http.Request) {
		gotUserID, _ = GetUserID(r.Context())
		if !IsAPIRequest(r.Context()) {
			t.Error("handler context is not marked as an API request")
		}
	}, sm)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("WithAPIAuth status = %d, want %d", rec.Code, http.StatusOK)
	}
	if gotUserID != 42 {
		t.Errorf("handler user ID = %d, want 42", gotUserID)
	}
}

func TestWithAPIAuthRejects(t *testing.T) {
	sm := newTestManager(t)

	handler := WithAPIAuth(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler ran without credentials")
	}, sm)

	// no credentials at all
	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("WithAPIAuth without credentials status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}

	// nonsense bearer value
	req = httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.Header.Set("Authorization", "Bearer nonsense")
	rec = httptest.NewRecorder()
	handler(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("WithAPIAuth with bad token status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestWithAPIAuthApiKey(t *testing.T) {
	sm := newTestManager(t)

	key, err := sm.CreateAPIKey(42, "test key", 30)
	if err != nil {
		t.Fatalf("CreateAPIKey() failed: %v", err)
	}

	var gotUserID int64
	handler := WithAPIAuth(func(w http.ResponseWriter, r *http.Request) {
		gotUserID, _ = GetUserID(r.Context())
	}, sm)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.Header.Set("Authorization", "Bearer "+key.ID)
	rec := httptest.NewRecorder()

	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("WithAPIAuth status = %d, want %d", rec.Code, http.StatusOK)
	}
	if gotUserID != 42 {
		t.Errorf("handler user ID = %d, want 42", gotUserID)
	}

	// the api_key query parameter works too
	gotUserID = 0
	req = httptest.NewRequest(http.MethodGet, "/api/v1/me?api_key="+key.ID, nil)
	rec = httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("WithAPIAuth query param status = %d, want %d", rec.Code, http.StatusOK)
	}
	if gotUserID != 42 {
		t.Errorf("handler user ID via query param = %d, want 42", gotUserID)
	}
}

func TestWithAPIAuthSessionCookie(t *testing.T) {
	sm := newTestManager(t)

	sess := sm.CreateSession(7, "dev")

	var gotUserID int64
	handler := WithAPIAuth(func(w http.ResponseWriter, r *http.Request) {
		gotUserID, _ = GetUserID(r.Context())
	}, sm)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: sess.ID})
	rec := httptest.NewRecorder()

	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("WithAPIAuth with session cookie status = %d, want %d", rec.Code, http.StatusOK)
	}
	if gotUserID != 7 {
		t.Errorf("handler user ID = %d, want 7", gotUserID)
	}

	// stale cookies still get a 401
	req = httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: "no-such-session"})
	rec = httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("WithAPIAuth with stale cookie status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestWithPossibleAuth(t *testing.T) {
	sm := newTestManager(t)

	// anonymous request still reaches the handler
	var authed bool
	handler := WithPossibleAuth(func(w http.ResponseWriter, r *http.Request) {
		authed = IsAuthenticated(r.Context())
	}, sm)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("WithPossibleAuth anonymous status = %d, want %d", rec.Code, http.StatusOK)
	}
	if authed {
		t.Error("anonymous request reported as authenticated")
	}

	// request with a session cookie is authenticated
	sess := sm.CreateSession(7, "dev")
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: sess.ID})
	rec = httptest.NewRecorder()
	handler(rec, req)

	if !authed {
		t.Error("session cookie request not reported as authenticated")
	}
}
