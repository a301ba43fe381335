package account

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/mail"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/jingletube/jingletube/db"
	"github.com/jingletube/jingletube/models"
	"github.com/jingletube/jingletube/util/jwtgen"
)

var (
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// Service handles password accounts: registration, login, token issuance.
type Service struct {
	database *db.DB
	signer   *jwtgen.Signer
}

func NewService(database *db.DB, signer *jwtgen.Signer) *Service {
	return &Service{
		database: database,
		signer:   signer,
	}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username,omitempty"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Register creates a password account and returns the new user and a token.
func (s *Service) Register(email, password, username string) (*authResponse, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmail
	}
	if len(password) < 8 {
		return nil, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	if username == "" {
		username = strings.SplitN(email, "@", 2)[0]
	}

	hashStr := string(hash)
	user := &models.User{
		Username:     username,
		Email:        &email,
		PasswordHash: &hashStr,
	}

	userID, err := s.database.CreateUser(user)
	if err != nil {
		return nil, err
	}
	user.ID = userID

	token, err := s.signer.IssueToken(userID)
	if err != nil {
		return nil, err
	}

	return &authResponse{Token: token, User: user}, nil
}

// Login checks a password account's credentials and returns a token.
// Unknown email and wrong password produce the same error.
func (s *Service) Login(email, password string) (*authResponse, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.database.GetUserByEmail(email)
	if err != nil {
		return nil, err
	}
	if user == nil || user.PasswordHash == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := s.database.TouchUserLogin(user.ID); err != nil {
		return nil, err
	}

	token, err := s.signer.IssueToken(user.ID)
	if err != nil {
		return nil, err
	}

	return &authResponse{Token: token, User: user}, nil
}

func jsonResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func jsonError(w http.ResponseWriter, statusCode int, msg string) {
	jsonResponse(w, statusCode, map[string]string{"error": msg})
}

// HandleRegister serves POST /api/auth/register
func (s *Service) HandleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := s.Register(req.Email, req.Password, req.Username)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidEmail), errors.Is(err, ErrWeakPassword):
			jsonError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, db.ErrDuplicateEmail):
			jsonError(w, http.StatusConflict, err.Error())
		default:
			log.Printf("Error registering user: %v", err)
			jsonError(w, http.StatusInternalServerError, "registration failed")
		}
		return
	}

	jsonResponse(w, http.StatusCreated, resp)
}

// HandleLogin serves POST /api/auth/login
func (s *Service) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := s.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			jsonError(w, http.StatusUnauthorized, err.Error())
			return
		}
		log.Printf("Error logging in user: %v", err)
		jsonError(w, http.StatusInternalServerError, "login failed")
		return
	}

	jsonResponse(w, http.StatusOK, resp)
}
