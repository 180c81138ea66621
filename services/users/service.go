// Package users manages accounts and credential verification.
package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"
	"github.com/mozillazg/go-unidecode"
	"golang.org/x/crypto/bcrypt"

	"daybook/models"
)

var (
	// ErrUsernameTaken is returned when the normalized username already
	// exists.
	ErrUsernameTaken = errors.New("username already exists")
	// ErrInvalidCredentials is returned on login when the username is
	// unknown or the password does not match; the two cases are
	// indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrMissingCredentials is returned when username or password is blank.
	ErrMissingCredentials = errors.New("username and password are required")
)

// Service manages user accounts.
type Service struct {
	db *sql.DB
}

// NewService returns a users service on the given connection.
func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

// NormalizeUsername folds the username to lowercase ASCII so lookups and
// the uniqueness constraint are accent- and case-insensitive.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(unidecode.Unidecode(username)))
}

// Register creates a new account with a bcrypt password hash and the
// default settings row. Both inserts happen in one transaction: either the
// account exists fully provisioned or not at all.
func (s *Service) Register(ctx context.Context, username, password string) (int64, error) {
	username = NormalizeUsername(username)
	if username == "" || strings.TrimSpace(password) == "" {
		return 0, ErrMissingCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin register transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO users (username, password) VALUES (?, ?)", username, string(hash))
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrUsernameTaken
		}
		return 0, fmt.Errorf("insert user: %w", err)
	}

	userID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read inserted user id: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO settings (user_id, timer_length) VALUES (?, ?)",
		userID, models.DefaultTimerLength); err != nil {
		return 0, fmt.Errorf("insert default settings: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit register transaction: %w", err)
	}
	return userID, nil
}

// Authenticate verifies the credentials and returns the account id.
func (s *Service) Authenticate(ctx context.Context, username, password string) (int64, error) {
	username = NormalizeUsername(username)
	if username == "" || password == "" {
		return 0, ErrInvalidCredentials
	}

	var (
		userID int64
		hash   string
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT id, password FROM users WHERE username = ?", username).Scan(&userID, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrInvalidCredentials
	}
	if err != nil {
		return 0, fmt.Errorf("query user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return 0, ErrInvalidCredentials
	}
	return userID, nil
}

// Get returns the public account record.
func (s *Service) Get(ctx context.Context, userID int64) (*models.User, error) {
	var user models.User
	err := s.db.QueryRowContext(ctx,
		"SELECT id, username, created_at FROM users WHERE id = ?", userID).
		Scan(&user.ID, &user.Username, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	return &user, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}
