package account

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jingletube/jingletube/db"
	"github.com/jingletube/jingletube/util/jwtgen"
)

func newTestService(t *testing.T) *Service {
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
		t.Fatalf("failed to generate signing key: %v", err)
	}

	signer, err := jwtgen.NewSigner(key, "jingletube-test", time.Hour)
	if err != nil {
		t.Fatalf("failed to create signer: %v", err)
	}

	return NewService(database, signer)
}

func TestRegister(t *testing.T) {
	svc := newTestService(t)

	resp, err := svc.Register("Alice@Example.com", "correcthorse", "")
	if err != nil {
		t.Fatalf("Register() unexpected error: %v", err)
	}

	if resp.Token == "" {
		t.Error("Register() returned empty token")
	}
	// username defaults to the email local part, email is lowercased
	if resp.User.Username != "alice" {
		t.Errorf("Register() Username = %v, want alice", resp.User.Username)
	}
	if resp.User.Email == nil || *resp.User.Email != "alice@example.com" {
		t.Errorf("Register() Email = %v, want alice@example.com", resp.User.Email)
	}

	_, err = svc.Register("alice@example.com", "correcthorse", "")
	if !errors.Is(err, db.ErrDuplicateEmail) {
		t.Errorf("Register() duplicate error = %v, want ErrDuplicateEmail", err)
	}

	_, err = svc.Register("not-an-email", "correcthorse", "")
	if !errors.Is(err, ErrInvalidEmail) {
		t.Errorf("Register() bad email error = %v, want ErrInvalidEmail", err)
	}

	_, err = svc.Register("bob@example.com", "short", "")
	if !errors.Is(err, ErrWeakPassword) {
		t.Errorf("Register() short password error = %v, want ErrWeakPassword", err)
	}
}

func TestLogin(t *testing.T) {
	svc := newTestService(t)

	if _, err := svc.Register("alice@example.com", "correcthorse", "alice"); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}

	resp, err := svc.Login("alice@example.com", "correcthorse")
	if err != nil {
		t.Fatalf("Login() unexpected error: %v", err)
	}
	if resp.Token == "" {
		t.Error("Login() returned empty token")
	}

	// wrong password and unknown email produce the same error
	if _, err := svc.Login("alice@example.com", "wrongpassword"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Login() wrong password error = %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Login("nobody@example.com", "correcthorse"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Login() unknown email error = %v, want ErrInvalidCredentials", err)
	}
}

func TestHandleRegister(t *testing.T) {
	svc := newTestService(t)

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{
			name:       "valid registration",
			body:       `{"email": "alice@example.com", "password": "correcthorse"}`,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "duplicate email",
			body:       `{"email": "alice@example.com", "password": "correcthorse"}`,
			wantStatus: http.StatusConflict,
		},
		{
			name:       "invalid email",
			body:       `{"email": "nope", "password": "correcthorse"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "malformed body",
			body:       `{"email": `,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()

			svc.HandleRegister(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("HandleRegister() status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestHandleLogin(t *testing.T) {
	svc := newTestService(t)

	if _, err := svc.Register("alice@example.com", "correcthorse", ""); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"email": "alice@example.com", "password": "correcthorse"}`))
	rec := httptest.NewRecorder()

	svc.HandleLogin(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("HandleLogin() status = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp struct {
		Token string `json:"token"`
		User  struct {
			Username string `json:"username"`
		} `json:"user"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Token == "" {
		t.Error("HandleLogin() returned empty token")
	}
	if resp.User.Username != "alice" {
		t.Errorf("HandleLogin() username = %v, want alice", resp.User.Username)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"email": "alice@example.com", "password": "badpass"}`))
	rec = httptest.NewRecorder()

	svc.HandleLogin(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("HandleLogin() wrong password status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}
