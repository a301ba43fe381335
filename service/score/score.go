package score

import (
	"errors"
	"strings"

	"github.com/jingletube/jingletube/db"
	"github.com/jingletube/jingletube/models"
	"github.com/jingletube/jingletube/service/library"
)

var (
	ErrMissingPlayer = errors.New("player name is required")
	ErrMissingSong   = errors.New("song title is required")
	ErrInvalidScore  = errors.New("invalid score values")
)

const (
	defaultRankingLimit = 10
	maxRankingLimit     = 50
)

// Service handles performance scores and rankings
type Service struct {
	database *db.DB
	library  *library.Service
}

func NewService(database *db.DB, lib *library.Service) *Service {
	return &Service{
		database: database,
		library:  lib,
	}
}

// RegisterInput is a submitted karaoke performance
type RegisterInput struct {
	Player     string `json:"player"`
	SongTitle  string `json:"songTitle"`
	Score      int64  `json:"score"`
	NotesHit   int64  `json:"notesHit"`
	NotesTotal int64  `json:"notesTotal"`
}

// Register validates and stores a performance score. The song title is
// fuzzily matched against the library; a hit links the score to the song.
func (s *Service) Register(userID int64, input RegisterInput) (*models.Score, error) {
	player := strings.TrimSpace(input.Player)
	songTitle := strings.TrimSpace(input.SongTitle)

	if player == "" {
		return nil, ErrMissingPlayer
	}
	if songTitle == "" {
		return nil, ErrMissingSong
	}
	if input.Score < 0 || input.NotesHit < 0 || input.NotesTotal <= 0 || input.NotesHit > input.NotesTotal {
		return nil, ErrInvalidScore
	}

	accuracy := float64(input.NotesHit) / float64(input.NotesTotal) * 100

	record := &models.Score{
		UserID:     userID,
		Player:     player,
		SongTitle:  songTitle,
		Score:      input.Score,
		NotesHit:   input.NotesHit,
		NotesTotal: input.NotesTotal,
		Accuracy:   accuracy,
	}

	if s.library != nil {
		matched, err := s.library.MatchTitle(songTitle)
		if err != nil {
			return nil, err
		}
		if matched != nil {
			record.SongID = &matched.ID
		}
	}

	id, err := s.database.SaveScore(record)
	if err != nil {
		return nil, err
	}
	record.ID = id

	return record, nil
}

// Rankings returns the top performances, best score first.
// A non-positive limit falls back to the default; the cap keeps the
// rankings page bounded.
func (s *Service) Rankings(limit int) ([]*models.Score, error) {
	if limit <= 0 {
		limit = defaultRankingLimit
	}
	if limit > maxRankingLimit {
		limit = maxRankingLimit
	}

	return s.database.TopScores(limit)
}

// UserScores returns a user's own performances, newest first
func (s *Service) UserScores(userID int64, limit int) ([]*models.Score, error) {
	if limit <= 0 {
		limit = defaultRankingLimit
	}
	if limit > maxRankingLimit {
		limit = maxRankingLimit
	}

	return s.database.GetScoresByUser(userID, limit)
}

// PlayerStats aggregates performances registered under a player name
func (s *Service) PlayerStats(player string) (*models.PlayerStats, error) {
	player = strings.TrimSpace(player)
	if player == "" {
		return nil, ErrMissingPlayer
	}

	return s.database.GetPlayerStats(player)
}
