package oauth

import (
	"log"
	"net/http"

	"github.com/jingletube/jingletube/db"
	"github.com/jingletube/jingletube/models"
)

const devProviderID = "dev_user_1"

// DevAuthService is a development-only auth service that logs in a fixed
// local user without talking to any provider. It must only be registered
// when dev mode is enabled in configuration.
type DevAuthService struct {
	database *db.DB
	username string
}

func NewDevAuthService(database *db.DB, username string) *DevAuthService {
	return &DevAuthService{
		database: database,
		username: username,
	}
}

// HandleLogin skips the authorization hop entirely and goes straight to
// the callback.
func (d *DevAuthService) HandleLogin(w http.ResponseWriter, r *http.Request) {
	log.Printf("Dev auth: logging in fixed user %q", d.username)
	http.Redirect(w, r, "/callback/dev", http.StatusSeeOther)
}

// HandleCallback finds or creates the dev user and reports success.
func (d *DevAuthService) HandleCallback(w http.ResponseWriter, r *http.Request) (int64, error) {
	existing, err := d.database.GetUserByProvider("dev", devProviderID)
	if err != nil {
		return 0, err
	}

	if existing != nil {
		if err := d.database.TouchUserLogin(existing.ID); err != nil {
			return 0, err
		}
		return existing.ID, nil
	}

	provider := "dev"
	providerID := devProviderID
	user := &models.User{
		Username:   d.username,
		Provider:   &provider,
		ProviderID: &providerID,
	}

	return d.database.CreateUser(user)
}
