package main

import (
	"net/http"

	"github.com/jingletube/jingletube/models"
	"github.com/jingletube/jingletube/pages"
	"github.com/jingletube/jingletube/session"
)

// navBar builds the shared nav fragment state from the request context
func (app *application) navBar(r *http.Request) pages.NavBar {
	nav := pages.NavBar{IsLoggedIn: session.IsAuthenticated(r.Context())}

	if userID, ok := session.GetUserID(r.Context()); ok {
		user, err := app.database.GetUserByID(userID)
		if err == nil && user != nil {
			nav.Username = user.Username
		}
	}

	return nav
}

type homeParams struct {
	NavBar    pages.NavBar
	SongCount int64
}

func (app *application) handleHome(w http.ResponseWriter, r *http.Request) {
	count, err := app.database.CountSongs()
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	params := homeParams{
		NavBar:    app.navBar(r),
		SongCount: count,
	}

	if err := app.pages.Execute("home", w, params); err != nil {
		app.serverError(w, r, err)
	}
}

type rankingsParams struct {
	NavBar pages.NavBar
	Scores []*models.Score
}

func (app *application) handleRankingsPage(w http.ResponseWriter, r *http.Request) {
	scores, err := app.scores.Rankings(queryLimit(r))
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	params := rankingsParams{
		NavBar: app.navBar(r),
		Scores: scores,
	}

	if err := app.pages.Execute("rankings", w, params); err != nil {
		app.serverError(w, r, err)
	}
}
