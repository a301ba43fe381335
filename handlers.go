package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/jingletube/jingletube/db"
	"github.com/jingletube/jingletube/models"
	"github.com/jingletube/jingletube/service/library"
	scoreService "github.com/jingletube/jingletube/service/score"
	"github.com/jingletube/jingletube/service/youtube"
	"github.com/jingletube/jingletube/session"
)

func (app *application) writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(value); err != nil {
		app.logger.Error("failed to encode response", "error", err)
	}
}

func (app *application) writeError(w http.ResponseWriter, status int, message string) {
	app.writeJSON(w, status, map[string]string{"error": message})
}

func (app *application) serverError(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Error("internal error", "method", r.Method, "uri", r.URL.RequestURI(), "error", err)
	app.writeError(w, http.StatusInternalServerError, "internal server error")
}

func queryLimit(r *http.Request) int {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	return limit
}

// handleHealth reports server and database liveness. Auth is not
// required so load balancers and the frontend can check it.
func (app *application) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := app.database.Ping(); err != nil {
		app.logger.Error("health check failed", "error", err)
		app.writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":   "degraded",
			"database": "unreachable",
		})
		return
	}

	app.writeJSON(w, http.StatusOK, map[string]string{
		"status":   "ok",
		"database": "ok",
	})
}

func (app *application) handleJwks(w http.ResponseWriter, r *http.Request) {
	app.writeJSON(w, http.StatusOK, app.signer.Jwks())
}

func (app *application) handleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := session.GetUserID(r.Context())
	if !ok {
		app.writeError(w, http.StatusUnauthorized, "not logged in")
		return
	}

	user, err := app.database.GetUserByID(userID)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	if user == nil {
		app.writeError(w, http.StatusNotFound, "user not found")
		return
	}

	app.writeJSON(w, http.StatusOK, user)
}

// songs

func (app *application) handleListSongs(w http.ResponseWriter, r *http.Request) {
	songs, err := app.library.ListSongs(queryLimit(r))
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	app.writeJSON(w, http.StatusOK, map[string]any{"songs": songs, "count": len(songs)})
}

func (app *application) handleAddSong(w http.ResponseWriter, r *http.Request) {
	userID, _ := session.GetUserID(r.Context())

	var input library.AddSongInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		app.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	song, err := app.library.AddSong(r.Context(), userID, input)
	switch {
	case errors.Is(err, library.ErrMissingFields), errors.Is(err, youtube.ErrInvalidVideoID):
		app.writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, db.ErrDuplicateSong):
		app.writeError(w, http.StatusConflict, "song already in library")
		return
	case err != nil:
		app.serverError(w, r, err)
		return
	}

	app.writeJSON(w, http.StatusCreated, song)
}

func (app *application) handleSearchSongs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		app.writeError(w, http.StatusBadRequest, "missing query parameter 'q'")
		return
	}

	songs, err := app.library.Search(query, queryLimit(r))
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	app.writeJSON(w, http.StatusOK, map[string]any{"songs": songs, "count": len(songs)})
}

// scores

func (app *application) handleRegisterScore(w http.ResponseWriter, r *http.Request) {
	userID, _ := session.GetUserID(r.Context())

	var input scoreService.RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		app.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	record, err := app.scores.Register(userID, input)
	switch {
	case errors.Is(err, scoreService.ErrMissingPlayer),
		errors.Is(err, scoreService.ErrMissingSong),
		errors.Is(err, scoreService.ErrInvalidScore):
		app.writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		app.serverError(w, r, err)
		return
	}

	app.writeJSON(w, http.StatusCreated, record)
}

func (app *application) handleRankings(w http.ResponseWriter, r *http.Request) {
	scores, err := app.scores.Rankings(queryLimit(r))
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	app.writeJSON(w, http.StatusOK, map[string]any{"rankings": scores, "count": len(scores)})
}

func (app *application) handleMyScores(w http.ResponseWriter, r *http.Request) {
	userID, _ := session.GetUserID(r.Context())

	scores, err := app.scores.UserScores(userID, queryLimit(r))
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	app.writeJSON(w, http.StatusOK, map[string]any{"scores": scores, "count": len(scores)})
}

func (app *application) handlePlayerStats(w http.ResponseWriter, r *http.Request) {
	stats, err := app.scores.PlayerStats(r.PathValue("name"))
	if errors.Is(err, scoreService.ErrMissingPlayer) {
		app.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	app.writeJSON(w, http.StatusOK, stats)
}

// catalog

func (app *application) handleCatalogSearch(w http.ResponseWriter, r *http.Request) {
	if !app.catalog.Enabled() {
		app.writeError(w, http.StatusServiceUnavailable, "catalog search is not configured")
		return
	}

	query := r.URL.Query().Get("q")
	if query == "" {
		app.writeError(w, http.StatusBadRequest, "missing query parameter 'q'")
		return
	}

	tracks, err := app.catalog.Search(r.Context(), query, queryLimit(r))
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	app.writeJSON(w, http.StatusOK, map[string]any{"tracks": tracks, "count": len(tracks)})
}

// playlists

// ownedPlaylist loads a playlist and enforces that it belongs to the
// requesting user. It writes the error response itself on failure.
func (app *application) ownedPlaylist(w http.ResponseWriter, r *http.Request, userID int64) *models.Playlist {
	playlist, err := app.database.GetPlaylist(r.PathValue("id"))
	if errors.Is(err, db.ErrPlaylistNotFound) {
		app.writeError(w, http.StatusNotFound, "playlist not found")
		return nil
	}
	if err != nil {
		app.serverError(w, r, err)
		return nil
	}
	if playlist.UserID != userID {
		app.writeError(w, http.StatusForbidden, db.ErrNotPlaylistOwner.Error())
		return nil
	}
	return playlist
}

func (app *application) handleListPlaylists(w http.ResponseWriter, r *http.Request) {
	userID, _ := session.GetUserID(r.Context())

	playlists, err := app.database.ListPlaylists(userID)
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	app.writeJSON(w, http.StatusOK, map[string]any{"playlists": playlists, "count": len(playlists)})
}

func (app *application) handleCreatePlaylist(w http.ResponseWriter, r *http.Request) {
	userID, _ := session.GetUserID(r.Context())

	var input struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.Name == "" {
		app.writeError(w, http.StatusBadRequest, "playlist name is required")
		return
	}

	playlist := &models.Playlist{
		ID:     uuid.NewString(),
		UserID: userID,
		Name:   input.Name,
	}

	if err := app.database.CreatePlaylist(playlist); err != nil {
		app.serverError(w, r, err)
		return
	}

	app.writeJSON(w, http.StatusCreated, playlist)
}

func (app *application) handleGetPlaylist(w http.ResponseWriter, r *http.Request) {
	userID, _ := session.GetUserID(r.Context())

	playlist := app.ownedPlaylist(w, r, userID)
	if playlist == nil {
		return
	}

	app.writeJSON(w, http.StatusOK, playlist)
}

func (app *application) handleDeletePlaylist(w http.ResponseWriter, r *http.Request) {
	userID, _ := session.GetUserID(r.Context())

	if app.ownedPlaylist(w, r, userID) == nil {
		return
	}

	if err := app.database.DeletePlaylist(r.PathValue("id")); err != nil {
		app.serverError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (app *application) handleAddPlaylistSong(w http.ResponseWriter, r *http.Request) {
	userID, _ := session.GetUserID(r.Context())

	playlist := app.ownedPlaylist(w, r, userID)
	if playlist == nil {
		return
	}

	var input struct {
		SongID string `json:"songId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.SongID == "" {
		app.writeError(w, http.StatusBadRequest, "songId is required")
		return
	}

	if _, err := app.library.GetSong(input.SongID); err != nil {
		if errors.Is(err, db.ErrSongNotFound) {
			app.writeError(w, http.StatusNotFound, "song not found")
			return
		}
		app.serverError(w, r, err)
		return
	}

	if err := app.database.AddSongToPlaylist(playlist.ID, input.SongID); err != nil {
		app.serverError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (app *application) handleRemovePlaylistSong(w http.ResponseWriter, r *http.Request) {
	userID, _ := session.GetUserID(r.Context())

	playlist := app.ownedPlaylist(w, r, userID)
	if playlist == nil {
		return
	}

	if err := app.database.RemoveSongFromPlaylist(playlist.ID, r.PathValue("songID")); err != nil {
		app.serverError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// favorites

func (app *application) handleListFavorites(w http.ResponseWriter, r *http.Request) {
	userID, _ := session.GetUserID(r.Context())

	songs, err := app.library.ListFavorites(userID)
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	app.writeJSON(w, http.StatusOK, map[string]any{"favorites": songs, "count": len(songs)})
}

func (app *application) handleIsFavorite(w http.ResponseWriter, r *http.Request) {
	userID, _ := session.GetUserID(r.Context())
	songID := r.PathValue("songID")

	favorite, err := app.library.IsFavorite(userID, songID)
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	app.writeJSON(w, http.StatusOK, map[string]any{"songId": songID, "favorite": favorite})
}

func (app *application) handleAddFavorite(w http.ResponseWriter, r *http.Request) {
	userID, _ := session.GetUserID(r.Context())

	err := app.library.AddFavorite(userID, r.PathValue("songID"))
	if errors.Is(err, db.ErrSongNotFound) {
		app.writeError(w, http.StatusNotFound, "song not found")
		return
	}
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (app *application) handleRemoveFavorite(w http.ResponseWriter, r *http.Request) {
	userID, _ := session.GetUserID(r.Context())

	if err := app.library.RemoveFavorite(userID, r.PathValue("songID")); err != nil {
		app.serverError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
