package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Varun5711/expense-tracker/internal/database"
	usermodel "github.com/Varun5711/expense-tracker/internal/models/user"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const pgUniqueViolation = "23505"

type UserStorage struct {
	db *database.DBManager
}

func NewUserStorage(db *database.DBManager) *UserStorage {
	return &UserStorage{db: db}
}

func (s *UserStorage) CreateUser(ctx context.Context, username, email, passwordHash string) (*usermodel.User, error) {
	userID := uuid.New().String()
	now := time.Now().UTC().Truncate(time.Microsecond)

	query := `
		INSERT INTO users (id, username, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, username, email, password_hash, created_at, updated_at
	`

	var user usermodel.User
	err := s.db.Write().QueryRow(ctx, query,
		userID,
		username,
		email,
		passwordHash,
		now,
		now,
	).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			switch pgErr.ConstraintName {
			case "users_username_key":
				return nil, ErrDuplicateUsername
			case "users_email_key":
				return nil, ErrDuplicateEmail
			}
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &user, nil
}

func (s *UserStorage) GetUserByUsername(ctx context.Context, username string) (*usermodel.User, error) {
	query := `
		SELECT id, username, email, password_hash, created_at, updated_at
		FROM users
		WHERE username = $1
	`
	return s.getUser(ctx, s.db.Write(), query, username)
}

// GetUserByID reads from the primary so a user can act right after registering,
// whatever the replica lag.
func (s *UserStorage) GetUserByID(ctx context.Context, userID string) (*usermodel.User, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, nil
	}

	query := `
		SELECT id, username, email, password_hash, created_at, updated_at
		FROM users
		WHERE id = $1
	`
	return s.getUser(ctx, s.db.Write(), query, userID)
}

// FindUserByUsernameOrEmail prefers the row whose username matches, so callers
// report the username clash first.
func (s *UserStorage) FindUserByUsernameOrEmail(ctx context.Context, username, email string) (*usermodel.User, error) {
	query := `
		SELECT id, username, email, password_hash, created_at, updated_at
		FROM users
		WHERE username = $1 OR email = $2
		ORDER BY (username = $1) DESC
		LIMIT 1
	`
	return s.getUser(ctx, s.db.Write(), query, username, email)
}

func (s *UserStorage) getUser(ctx context.Context, q pgxQuerier, query string, args ...any) (*usermodel.User, error) {
	var user usermodel.User
	err := q.QueryRow(ctx, query, args...).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

type pgxQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}
