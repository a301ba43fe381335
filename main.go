package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/jingletube/jingletube/config"
	"github.com/jingletube/jingletube/db"
	"github.com/jingletube/jingletube/oauth"
	"github.com/jingletube/jingletube/pages"
	accountService "github.com/jingletube/jingletube/service/account"
	apikeyService "github.com/jingletube/jingletube/service/apikey"
	"github.com/jingletube/jingletube/service/library"
	scoreService "github.com/jingletube/jingletube/service/score"
	spotifyService "github.com/jingletube/jingletube/service/spotify"
	"github.com/jingletube/jingletube/service/youtube"
	"github.com/jingletube/jingletube/session"
	"github.com/jingletube/jingletube/util/jwtgen"
)

type application struct {
	logger         *slog.Logger
	database       *db.DB
	sessionManager *session.SessionManager
	oauthManager   *oauth.Manager
	signer         *jwtgen.Signer
	accountService *accountService.Service
	apiKeyService  *apikeyService.Service
	library        *library.Service
	scores         *scoreService.Service
	catalog        *spotifyService.Service
	pages          *pages.Pages
}

func main() {
	config.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// create data folder if not exists with proper perms
	os.MkdirAll("./data", 0o755)

	database, err := db.New(viper.GetString("db.path"))
	if err != nil {
		log.Fatalf("Error connecting to database: %v", err)
	}

	if err := database.Initialize(); err != nil {
		log.Fatalf("Error initializing database: %v", err)
	}

	key, err := jwtgen.LoadOrCreateKey(viper.GetString("auth.signing_key_path"))
	if err != nil {
		log.Fatalf("Error loading signing key: %v", err)
	}

	tokenTTL := time.Duration(viper.GetInt("auth.token_ttl_hours")) * time.Hour
	signer, err := jwtgen.NewSigner(key, viper.GetString("auth.issuer"), tokenTTL)
	if err != nil {
		log.Fatalf("Error creating token signer: %v", err)
	}

	sessionManager := session.NewSessionManager(database, signer)

	// --- Service Initializations ---

	cacheTTL := time.Duration(viper.GetInt("youtube.cache_ttl_minutes")) * time.Minute
	metadataService := youtube.NewMetadataService(cacheTTL)

	libraryService := library.NewService(database, metadataService)
	scores := scoreService.NewService(database, libraryService)
	account := accountService.NewService(database, signer)
	catalog := spotifyService.NewService(context.Background(),
		viper.GetString("spotify.client_id"),
		viper.GetString("spotify.client_secret"))
	if !catalog.Enabled() {
		logger.Info("Spotify credentials not configured, catalog search disabled")
	}

	oauthManager := oauth.NewManager(sessionManager)

	for _, provider := range []string{"spotify", "github", "google"} {
		if !config.OAuthConfigured(provider) {
			logger.Info("OAuth provider not configured, login disabled", "provider", provider)
			continue
		}

		svc := oauth.NewOAuth2Service(
			database,
			viper.GetString(provider+".client_id"),
			viper.GetString(provider+".client_secret"),
			viper.GetString("callback."+provider),
			strings.Fields(viper.GetString(provider+".scopes")),
			provider,
		)
		oauthManager.RegisterService(provider, svc)
	}

	if viper.GetBool("auth.dev_mode") {
		logger.Warn("dev mode enabled: /login/dev logs in a fixed local user")
		oauthManager.RegisterService("dev", oauth.NewDevAuthService(database, viper.GetString("auth.dev_username")))
	}

	pg := pages.NewPages()
	apiKeys := apikeyService.NewService(database, sessionManager, pg)

	app := &application{
		logger:         logger,
		database:       database,
		sessionManager: sessionManager,
		oauthManager:   oauthManager,
		signer:         signer,
		accountService: account,
		apiKeyService:  apiKeys,
		library:        libraryService,
		scores:         scores,
		catalog:        catalog,
		pages:          pg,
	}

	serverAddr := fmt.Sprintf("%s:%s", viper.GetString("server.host"), viper.GetString("server.port"))
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      app.routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	logger.Info("server running", "addr", fmt.Sprintf("http://%s", serverAddr))
	log.Fatal(server.ListenAndServe())
}
