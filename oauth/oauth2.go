package oauth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/spotify"

	"github.com/jingletube/jingletube/db"
	"github.com/jingletube/jingletube/models"
)

// Identity is the normalized profile returned by a provider's userinfo endpoint
type Identity struct {
	ProviderID string
	Username   string
	Email      string
}

// loginAttempt holds the PKCE verifier for an in-flight authorization,
// keyed by the state parameter.
type loginAttempt struct {
	codeVerifier string
	expiresAt    time.Time
}

// OAuth2Service represents an OAuth2 login service with PKCE support
type OAuth2Service struct {
	config      oauth2.Config
	provider    string
	userInfoURL string
	database    *db.DB

	attempts map[string]loginAttempt
	mu       sync.Mutex
}

// NewOAuth2Service creates a new OAuth2Service with PKCE support
func NewOAuth2Service(database *db.DB, clientID, clientSecret, redirectURI string, scopes []string, provider string) *OAuth2Service {
	var endpoint oauth2.Endpoint
	var userInfoURL string

	// Select the appropriate provider endpoint
	switch strings.ToLower(provider) {
	case "spotify":
		endpoint = spotify.Endpoint
		userInfoURL = "https://api.spotify.com/v1/me"
	case "github":
		endpoint = github.Endpoint
		userInfoURL = "https://api.github.com/user"
	case "google":
		endpoint = google.Endpoint
		userInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
	default:
		// Use custom endpoints if not a predefined provider
		endpoint = oauth2.Endpoint{
			AuthURL:  "https://example.com/auth",
			TokenURL: "https://example.com/token",
		}
	}

	return &OAuth2Service{
		config: oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURI,
			Scopes:       scopes,
			Endpoint:     endpoint,
		},
		provider:    strings.ToLower(provider),
		userInfoURL: userInfoURL,
		database:    database,
		attempts:    make(map[string]loginAttempt),
	}
}

// generateRandomState creates a random state string for CSRF protection
func generateRandomState() string {
	b := make([]byte, 16)
	rand.Read(b)
	return base64.URLEncoding.EncodeToString(b)
}

// generateCodeVerifier creates a random code verifier for PKCE
func generateCodeVerifier() string {
	// Generate a random string of 32-96 bytes as per RFC 7636
	b := make([]byte, 64)
	rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

// generateCodeChallenge creates a code challenge from the code verifier using S256 method
func generateCodeChallenge(verifier string) string {
	h := sha256.New()
	h.Write([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}

// beginAttempt records a state/verifier pair and prunes stale attempts
func (o *OAuth2Service) beginAttempt() (state, verifier string) {
	state = generateRandomState()
	verifier = generateCodeVerifier()

	o.mu.Lock()
	defer o.mu.Unlock()

	now := time.Now()
	for s, a := range o.attempts {
		if now.After(a.expiresAt) {
			delete(o.attempts, s)
		}
	}

	o.attempts[state] = loginAttempt{
		codeVerifier: verifier,
		expiresAt:    now.Add(10 * time.Minute),
	}

	return state, verifier
}

// takeAttempt consumes the verifier associated with a state, if any
func (o *OAuth2Service) takeAttempt(state string) (string, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	attempt, ok := o.attempts[state]
	if !ok || time.Now().After(attempt.expiresAt) {
		delete(o.attempts, state)
		return "", false
	}

	delete(o.attempts, state)
	return attempt.codeVerifier, true
}

// HandleLogin redirects the user to the authorization page with PKCE
func (o *OAuth2Service) HandleLogin(w http.ResponseWriter, r *http.Request) {
	state, verifier := o.beginAttempt()

	opts := []oauth2.AuthCodeOption{
		oauth2.SetAuthURLParam("code_challenge", generateCodeChallenge(verifier)),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	}

	authURL := o.config.AuthCodeURL(state, opts...)
	http.Redirect(w, r, authURL, http.StatusSeeOther)
}

// HandleCallback processes the callback from the OAuth provider using PKCE
func (o *OAuth2Service) HandleCallback(w http.ResponseWriter, r *http.Request) (int64, error) {
	state := r.URL.Query().Get("state")
	verifier, ok := o.takeAttempt(state)
	if !ok {
		http.Error(w, "State mismatch", http.StatusBadRequest)
		return 0, fmt.Errorf("unknown or expired state parameter")
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "No code provided", http.StatusBadRequest)
		return 0, fmt.Errorf("no code provided")
	}

	opts := []oauth2.AuthCodeOption{
		oauth2.SetAuthURLParam("code_verifier", verifier),
	}

	token, err := o.config.Exchange(r.Context(), code, opts...)
	if err != nil {
		return 0, fmt.Errorf("error exchanging code for token: %w", err)
	}

	identity, err := o.fetchIdentity(r.Context(), token)
	if err != nil {
		return 0, fmt.Errorf("error fetching user info: %w", err)
	}

	return o.upsertUser(identity)
}

// fetchIdentity calls the provider's userinfo endpoint with the fresh token
func (o *OAuth2Service) fetchIdentity(ctx context.Context, token *oauth2.Token) (*Identity, error) {
	client := o.config.Client(ctx, token)

	resp, err := client.Get(o.userInfoURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo endpoint returned status %d", resp.StatusCode)
	}

	switch o.provider {
	case "github":
		var payload struct {
			ID    int64  `json:"id"`
			Login string `json:"login"`
			Email string `json:"email"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return nil, err
		}
		return &Identity{
			ProviderID: strconv.FormatInt(payload.ID, 10),
			Username:   payload.Login,
			Email:      payload.Email,
		}, nil
	case "spotify":
		var payload struct {
			ID          string `json:"id"`
			DisplayName string `json:"display_name"`
			Email       string `json:"email"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return nil, err
		}
		username := payload.DisplayName
		if username == "" {
			username = payload.ID
		}
		return &Identity{
			ProviderID: payload.ID,
			Username:   username,
			Email:      payload.Email,
		}, nil
	default: // google and compatible openid userinfo endpoints
		var payload struct {
			ID    string `json:"id"`
			Sub   string `json:"sub"`
			Name  string `json:"name"`
			Email string `json:"email"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return nil, err
		}
		id := payload.ID
		if id == "" {
			id = payload.Sub
		}
		return &Identity{
			ProviderID: id,
			Username:   payload.Name,
			Email:      payload.Email,
		}, nil
	}
}

// upsertUser finds or creates the local user for a provider identity
func (o *OAuth2Service) upsertUser(identity *Identity) (int64, error) {
	if identity.ProviderID == "" {
		return 0, fmt.Errorf("provider returned an empty user ID")
	}

	existing, err := o.database.GetUserByProvider(o.provider, identity.ProviderID)
	if err != nil {
		return 0, err
	}

	if existing != nil {
		if err := o.database.TouchUserLogin(existing.ID); err != nil {
			return 0, err
		}
		return existing.ID, nil
	}

	username := identity.Username
	if username == "" {
		username = fmt.Sprintf("%s_%s", o.provider, identity.ProviderID)
	}

	user := &models.User{
		Username:   username,
		Provider:   &o.provider,
		ProviderID: &identity.ProviderID,
	}
	if identity.Email != "" {
		user.Email = &identity.Email
	}

	return o.database.CreateUser(user)
}
