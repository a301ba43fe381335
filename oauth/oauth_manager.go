package oauth

import (
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/jingletube/jingletube/session"
)

// Manager manages multiple auth services behind a single login/callback surface
type Manager struct {
	services       map[string]AuthService
	sessionManager *session.SessionManager
	mu             sync.RWMutex
}

func NewManager(sessionManager *session.SessionManager) *Manager {
	return &Manager{
		services:       make(map[string]AuthService),
		sessionManager: sessionManager,
	}
}

// RegisterService registers any service that impls AuthService
func (m *Manager) RegisterService(name string, service AuthService) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.services[name] = service
	log.Printf("Registered auth service: %s", name)
}

// GetService gets an AuthService by registered name
func (m *Manager) GetService(name string) (AuthService, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	service, exists := m.services[name]
	return service, exists
}

// Providers lists the registered service names
func (m *Manager) Providers() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.services))
	for name := range m.services {
		names = append(names, name)
	}
	return names
}

func (m *Manager) HandleLogin(serviceName string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m.mu.RLock()
		service, exists := m.services[serviceName]
		m.mu.RUnlock()

		if exists {
			service.HandleLogin(w, r)
			return
		}

		log.Printf("Auth service '%s' not found for login request", serviceName)
		http.Error(w, fmt.Sprintf("Auth service '%s' not found", serviceName), http.StatusNotFound)
	}
}

func (m *Manager) HandleCallback(serviceName string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m.mu.RLock()
		service, exists := m.services[serviceName]
		m.mu.RUnlock()

		if !exists {
			log.Printf("Auth service '%s' not found for callback request", serviceName)
			http.Error(w, fmt.Sprintf("Auth service '%s' not found", serviceName), http.StatusNotFound)
			return
		}

		userID, err := service.HandleCallback(w, r)

		if err != nil {
			log.Printf("Error handling callback for service '%s': %v", serviceName, err)
			http.Error(w, fmt.Sprintf("Error handling callback for service '%s'", serviceName), http.StatusInternalServerError)
			return
		}

		if userID > 0 {
			sess := m.sessionManager.CreateSession(userID, serviceName)
			m.sessionManager.SetSessionCookie(w, sess)

			log.Printf("Created session for user %d via service %s", userID, serviceName)

			http.Redirect(w, r, "/", http.StatusSeeOther)
		} else {
			log.Printf("Callback for service '%s' did not result in a valid user ID.", serviceName)
			http.Redirect(w, r, "/", http.StatusSeeOther)
		}
	}
}
