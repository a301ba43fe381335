package db

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/jingletube/jingletube/models"
)

// Sentinel errors surfaced to services. Compare with errors.Is.
var (
	ErrDuplicateSong  = errors.New("song already exists")
	ErrSongNotFound   = errors.New("song not found")
	ErrDuplicateEmail = errors.New("email already registered")
	ErrDuplicateUser  = errors.New("user already exists")
	ErrUserNotFound   = errors.New("user not found")
)

// DB is a wrapper around sql.DB
type DB struct {
	*sql.DB
}

// New creates a new database connection
func New(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	if err = db.Ping(); err != nil {
		return nil, err
	}

	return &DB{db}, nil
}

// Initialize sets up the database tables
func (db *DB) Initialize() error {
	_, err := db.Exec(`
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL,
		email TEXT UNIQUE,
		password_hash TEXT,
		provider TEXT,
		provider_id TEXT,
		created_at TIMESTAMP,
		updated_at TIMESTAMP,
		last_login_at TIMESTAMP,
		UNIQUE (provider, provider_id)
	)`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
	CREATE TABLE IF NOT EXISTS songs (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		artist TEXT NOT NULL,
		youtube_id TEXT,
		file_path TEXT,
		duration_ms INTEGER,
		added_by INTEGER NOT NULL,
		created_at TIMESTAMP,
		FOREIGN KEY (added_by) REFERENCES users(id)
	)`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
	CREATE TABLE IF NOT EXISTS scores (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		player TEXT NOT NULL,
		song_id TEXT,
		song_title TEXT NOT NULL,
		score INTEGER NOT NULL,
		notes_hit INTEGER NOT NULL,
		notes_total INTEGER NOT NULL,
		accuracy REAL NOT NULL,
		created_at TIMESTAMP,
		FOREIGN KEY (user_id) REFERENCES users(id),
		FOREIGN KEY (song_id) REFERENCES songs(id)
	)`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
	CREATE TABLE IF NOT EXISTS playlists (
		id TEXT PRIMARY KEY,
		user_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		created_at TIMESTAMP,
		updated_at TIMESTAMP,
		FOREIGN KEY (user_id) REFERENCES users(id)
	)`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
	CREATE TABLE IF NOT EXISTS playlist_songs (
		playlist_id TEXT NOT NULL,
		song_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		added_at TIMESTAMP,
		PRIMARY KEY (playlist_id, song_id),
		FOREIGN KEY (playlist_id) REFERENCES playlists(id),
		FOREIGN KEY (song_id) REFERENCES songs(id)
	)`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
	CREATE TABLE IF NOT EXISTS favorites (
		user_id INTEGER NOT NULL,
		song_id TEXT NOT NULL,
		created_at TIMESTAMP,
		PRIMARY KEY (user_id, song_id),
		FOREIGN KEY (user_id) REFERENCES users(id),
		FOREIGN KEY (song_id) REFERENCES songs(id)
	)`)
	if err != nil {
		return err
	}

	return nil
}

// isConstraintErr reports whether err is a sqlite uniqueness violation.
func isConstraintErr(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint
}

// CreateUser adds a new user to the database
func (db *DB) CreateUser(user *models.User) (int64, error) {
	now := time.Now()

	result, err := db.Exec(`
	INSERT INTO users (username, email, password_hash, provider, provider_id, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.Username, user.Email, user.PasswordHash, user.Provider, user.ProviderID, now, now)

	if err != nil {
		if isConstraintErr(err) {
			// the users table has two unique constraints; sqlite names
			// the violated columns in the error message
			if strings.Contains(err.Error(), "users.email") {
				return 0, ErrDuplicateEmail
			}
			return 0, ErrDuplicateUser
		}
		return 0, err
	}

	return result.LastInsertId()
}

const userColumns = `id, username, email, password_hash, provider, provider_id, created_at, updated_at, last_login_at`

func scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}

	err := row.Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&user.Provider, &user.ProviderID,
		&user.CreatedAt, &user.UpdatedAt, &user.LastLoginAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return user, nil
}

// GetUserByID retrieves a user by internal ID
func (db *DB) GetUserByID(id int64) (*models.User, error) {
	return scanUser(db.QueryRow(`
	SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

// GetUserByEmail retrieves a password-account user by email
func (db *DB) GetUserByEmail(email string) (*models.User, error) {
	return scanUser(db.QueryRow(`
	SELECT `+userColumns+` FROM users WHERE email = ?`, email))
}

// GetUserByProvider retrieves an OAuth user by provider name and the
// provider's own user ID.
func (db *DB) GetUserByProvider(provider, providerID string) (*models.User, error) {
	return scanUser(db.QueryRow(`
	SELECT `+userColumns+` FROM users WHERE provider = ? AND provider_id = ?`, provider, providerID))
}

// TouchUserLogin records a successful login
func (db *DB) TouchUserLogin(userID int64) error {
	now := time.Now()

	_, err := db.Exec(`
	UPDATE users SET last_login_at = ?, updated_at = ? WHERE id = ?`,
		now, now, userID)

	return err
}
