package apikey

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/jingletube/jingletube/db"
	dbapikey "github.com/jingletube/jingletube/db/apikey"
	"github.com/jingletube/jingletube/pages"
	"github.com/jingletube/jingletube/session"
)

// Service serves the API key management surface: an HTML page for
// browser sessions and a JSON API for bearer-authenticated requests.
type Service struct {
	db       *db.DB
	sessions *session.SessionManager
	pages    *pages.Pages
}

func NewService(database *db.DB, sessionManager *session.SessionManager, pg *pages.Pages) *Service {
	return &Service{
		db:       database,
		sessions: sessionManager,
		pages:    pg,
	}
}

func jsonResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Printf("Error encoding JSON response: %v", err)
		}
	}
}

func jsonError(w http.ResponseWriter, message string, statusCode int) {
	jsonResponse(w, statusCode, map[string]string{"error": message})
}

func (s *Service) HandleAPIKeyManagement(w http.ResponseWriter, r *http.Request) {
	userID, ok := session.GetUserID(r.Context())
	if !ok {
		if session.IsAPIRequest(r.Context()) {
			jsonError(w, "Unauthorized", http.StatusUnauthorized)
		} else {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
		}
		return
	}

	if session.IsAPIRequest(r.Context()) {
		s.handleAPI(w, r, userID)
		return
	}

	s.handleWeb(w, r, userID)
}

// handleAPI is the JSON surface for bearer-authenticated clients
func (s *Service) handleAPI(w http.ResponseWriter, r *http.Request, userID int64) {
	mgr := s.sessions.GetAPIKeyManager()

	switch r.Method {
	case http.MethodGet:
		keys, err := mgr.GetUserApiKeys(userID)
		if err != nil {
			jsonError(w, fmt.Sprintf("Error fetching API keys: %v", err), http.StatusInternalServerError)
			return
		}
		jsonResponse(w, http.StatusOK, map[string]any{"api_keys": keys})

	case http.MethodPost:
		var reqBody struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
			jsonError(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
			return
		}
		keyName := reqBody.Name
		if keyName == "" {
			keyName = fmt.Sprintf("API Key (via API) - %s", time.Now().Format(time.RFC3339))
		}

		apiKey, err := s.sessions.CreateAPIKey(userID, keyName, 30)
		if err != nil {
			jsonError(w, fmt.Sprintf("Error creating API key: %v", err), http.StatusInternalServerError)
			return
		}

		jsonResponse(w, http.StatusCreated, map[string]any{
			"id":         apiKey.ID,
			"name":       apiKey.Name,
			"created_at": apiKey.CreatedAt,
			"expires_at": apiKey.ExpiresAt,
		})

	case http.MethodDelete:
		keyID := r.URL.Query().Get("key_id")
		if keyID == "" {
			jsonError(w, "Query parameter 'key_id' is required", http.StatusBadRequest)
			return
		}

		key, exists := mgr.GetApiKey(keyID)
		if !exists || key.UserID != userID {
			jsonError(w, "API key not found or not owned by user", http.StatusNotFound)
			return
		}

		if err := mgr.DeleteApiKey(keyID); err != nil {
			jsonError(w, fmt.Sprintf("Error deleting API key: %v", err), http.StatusInternalServerError)
			return
		}
		jsonResponse(w, http.StatusOK, map[string]string{"message": "API key deleted successfully"})

	default:
		jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleWeb is the HTML surface for browser sessions
func (s *Service) handleWeb(w http.ResponseWriter, r *http.Request, userID int64) {
	mgr := s.sessions.GetAPIKeyManager()

	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		keyName := r.FormValue("name")
		if keyName == "" {
			keyName = fmt.Sprintf("API Key - %s", time.Now().Format(time.RFC3339))
		}

		apiKey, err := s.sessions.CreateAPIKey(userID, keyName, 365)
		if err != nil {
			http.Error(w, fmt.Sprintf("Error creating API key: %v", err), http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, "/api-keys?created="+apiKey.ID, http.StatusSeeOther)
		return
	}

	if r.Method == http.MethodDelete {
		keyID := r.URL.Query().Get("key_id")
		if keyID == "" {
			jsonError(w, "Key ID is required", http.StatusBadRequest)
			return
		}

		key, exists := mgr.GetApiKey(keyID)
		if !exists || key.UserID != userID {
			jsonError(w, "Invalid API key or not owned by user", http.StatusBadRequest)
			return
		}

		if err := mgr.DeleteApiKey(keyID); err != nil {
			jsonError(w, fmt.Sprintf("Error deleting API key: %v", err), http.StatusInternalServerError)
			return
		}
		jsonResponse(w, http.StatusOK, map[string]any{"success": true})
		return
	}

	keys, err := mgr.GetUserApiKeys(userID)
	if err != nil {
		http.Error(w, fmt.Sprintf("Error fetching API keys: %v", err), http.StatusInternalServerError)
		return
	}

	params := struct {
		NavBar   pages.NavBar
		Keys     []*dbapikey.ApiKey
		NewKeyID string
	}{
		NavBar:   pages.NavBar{IsLoggedIn: true},
		Keys:     keys,
		NewKeyID: r.URL.Query().Get("created"),
	}

	w.Header().Set("Content-Type", "text/html")
	if err := s.pages.Execute("apiKeys", w, params); err != nil {
		log.Printf("Error executing template: %v", err)
	}
}
