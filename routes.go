package main

import (
	"net/http"

	"github.com/justinas/alice"

	"github.com/jingletube/jingletube/session"
)

func (app *application) routes() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("GET /static/", app.pages.Static())

	// pages
	mux.HandleFunc("GET /{$}", session.WithPossibleAuth(app.handleHome, app.sessionManager))
	mux.HandleFunc("GET /rankings", session.WithPossibleAuth(app.handleRankingsPage, app.sessionManager))
	mux.HandleFunc("/api-keys", session.WithAuth(app.apiKeyService.HandleAPIKeyManagement, app.sessionManager))
	mux.HandleFunc("GET /logout", app.sessionManager.HandleLogout)

	// auth
	authLimiter := newIPRateLimiter(authRateEvery, authRateBurst)
	mux.HandleFunc("POST /api/auth/register", app.rateLimit(authLimiter, app.accountService.HandleRegister))
	mux.HandleFunc("POST /api/auth/login", app.rateLimit(authLimiter, app.accountService.HandleLogin))
	mux.HandleFunc("GET /login/{provider}", app.handleOAuthLogin)
	mux.HandleFunc("GET /callback/{provider}", app.handleOAuthCallback)
	mux.HandleFunc("GET /.well-known/jwks.json", app.handleJwks)

	// public api
	mux.HandleFunc("GET /api/health", app.handleHealth)
	mux.HandleFunc("GET /api/v1/rankings", app.handleRankings)

	// authenticated api
	mux.HandleFunc("GET /api/v1/me", session.WithAPIAuth(app.handleMe, app.sessionManager))
	mux.HandleFunc("GET /api/v1/songs", session.WithAPIAuth(app.handleListSongs, app.sessionManager))
	mux.HandleFunc("POST /api/v1/songs", session.WithAPIAuth(app.handleAddSong, app.sessionManager))
	mux.HandleFunc("GET /api/v1/songs/search", session.WithAPIAuth(app.handleSearchSongs, app.sessionManager))
	mux.HandleFunc("POST /api/v1/scores", session.WithAPIAuth(app.handleRegisterScore, app.sessionManager))
	mux.HandleFunc("GET /api/v1/scores/me", session.WithAPIAuth(app.handleMyScores, app.sessionManager))
	mux.HandleFunc("GET /api/v1/players/{name}/stats", session.WithAPIAuth(app.handlePlayerStats, app.sessionManager))
	mux.HandleFunc("GET /api/v1/catalog/search", session.WithAPIAuth(app.handleCatalogSearch, app.sessionManager))

	mux.HandleFunc("GET /api/v1/playlists", session.WithAPIAuth(app.handleListPlaylists, app.sessionManager))
	mux.HandleFunc("POST /api/v1/playlists", session.WithAPIAuth(app.handleCreatePlaylist, app.sessionManager))
	mux.HandleFunc("GET /api/v1/playlists/{id}", session.WithAPIAuth(app.handleGetPlaylist, app.sessionManager))
	mux.HandleFunc("DELETE /api/v1/playlists/{id}", session.WithAPIAuth(app.handleDeletePlaylist, app.sessionManager))
	mux.HandleFunc("POST /api/v1/playlists/{id}/songs", session.WithAPIAuth(app.handleAddPlaylistSong, app.sessionManager))
	mux.HandleFunc("DELETE /api/v1/playlists/{id}/songs/{songID}", session.WithAPIAuth(app.handleRemovePlaylistSong, app.sessionManager))

	mux.HandleFunc("GET /api/v1/favorites", session.WithAPIAuth(app.handleListFavorites, app.sessionManager))
	mux.HandleFunc("GET /api/v1/favorites/{songID}", session.WithAPIAuth(app.handleIsFavorite, app.sessionManager))
	mux.HandleFunc("PUT /api/v1/favorites/{songID}", session.WithAPIAuth(app.handleAddFavorite, app.sessionManager))
	mux.HandleFunc("DELETE /api/v1/favorites/{songID}", session.WithAPIAuth(app.handleRemoveFavorite, app.sessionManager))

	standard := alice.New(app.recoverPanic, app.logRequest, commonHeaders)
	return standard.Then(mux)
}

func (app *application) handleOAuthLogin(w http.ResponseWriter, r *http.Request) {
	app.oauthManager.HandleLogin(r.PathValue("provider"))(w, r)
}

func (app *application) handleOAuthCallback(w http.ResponseWriter, r *http.Request) {
	app.oauthManager.HandleCallback(r.PathValue("provider"))(w, r)
}
