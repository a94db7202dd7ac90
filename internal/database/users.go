package database

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const userColumns = `id, email, name, curriculum_order, current_day, completed_days, created_at, updated_at`

// =============================================================================
// User Queries
// =============================================================================

// CreateUser registers a participant. The pointer starts on the first
// authored item at or after position 1 (1 when nothing is imported yet),
// with current_day 1 and no completed days.
// Returns ErrDuplicate if the email is taken.
func (q queries) CreateUser(ctx context.Context, email, name string) (*User, error) {
	email = strings.TrimSpace(email)

	result, err := q.ext.ExecContext(ctx,
		`INSERT INTO users (email, name, curriculum_order) VALUES (?, ?,
			COALESCE((SELECT MIN(curriculum_order) FROM content_items WHERE curriculum_order >= 1), 1))`,
		email, name)
	if err != nil {
		return nil, duplicate(err, "create user")
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get user id: %w", err)
	}

	return q.GetUserByID(ctx, id)
}

// GetUserByID returns the user with the given ID.
func (q queries) GetUserByID(ctx context.Context, id int64) (*User, error) {
	var u User
	err := sqlx.GetContext(ctx, q.ext, &u,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	if err != nil {
		return nil, notFound(err, "query user by id")
	}
	return &u, nil
}

// GetUserByEmail returns the user with the given email (case-insensitive).
func (q queries) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := sqlx.GetContext(ctx, q.ext, &u,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, strings.TrimSpace(email))
	if err != nil {
		return nil, notFound(err, "query user by email")
	}
	return &u, nil
}

// ListUsers returns all users ordered by ID.
func (q queries) ListUsers(ctx context.Context) ([]User, error) {
	users := []User{}
	if err := sqlx.SelectContext(ctx, q.ext, &users,
		`SELECT `+userColumns+` FROM users ORDER BY id ASC`); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// SaveProgress writes the whole progress triple in one statement.
// Returns ErrNotFound if the user does not exist.
func (q queries) SaveProgress(ctx context.Context, userID int64, p Progress) error {
	result, err := q.ext.ExecContext(ctx, `
		UPDATE users SET
			curriculum_order = ?,
			current_day = ?,
			completed_days = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		p.CurriculumOrder, p.CurrentDay, p.CompletedDays, userID,
	)
	if err != nil {
		return fmt.Errorf("save progress: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// =============================================================================
// API Key Queries
// =============================================================================

// apiKeyPrefix marks keys issued by this service.
const apiKeyPrefix = "d180_"

// CreateAPIKey issues a new key for userID. The plaintext is only
// available on the returned value.
func (q queries) CreateAPIKey(ctx context.Context, userID int64, name string) (*APIKeyWithPlaintext, error) {
	plaintext := apiKeyPrefix + strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")
	prefix := plaintext[:len(apiKeyPrefix)+6]

	result, err := q.ext.ExecContext(ctx,
		`INSERT INTO api_keys (user_id, name, key_prefix, key_hash) VALUES (?, ?, ?, ?)`,
		userID, name, prefix, HashAPIKey(plaintext))
	if err != nil {
		return nil, duplicate(err, "create api key")
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get api key id: %w", err)
	}

	var key APIKey
	if err := sqlx.GetContext(ctx, q.ext, &key,
		`SELECT id, user_id, name, key_prefix, key_hash, last_used_at, created_at
		FROM api_keys WHERE id = ?`, id); err != nil {
		return nil, notFound(err, "read api key")
	}

	return &APIKeyWithPlaintext{APIKey: key, PlaintextKey: plaintext}, nil
}

// ListAPIKeys returns the keys of a user, newest first.
func (q queries) ListAPIKeys(ctx context.Context, userID int64) ([]APIKey, error) {
	keys := []APIKey{}
	if err := sqlx.SelectContext(ctx, q.ext, &keys,
		`SELECT id, user_id, name, key_prefix, key_hash, last_used_at, created_at
		FROM api_keys WHERE user_id = ? ORDER BY id DESC`, userID); err != nil {
		return nil, fmt.Errorf("list api keys: %w", err)
	}
	return keys, nil
}

// GetUserByAPIKey resolves a plaintext key to its owner and records the use.
// Returns ErrNotFound for unknown keys.
func (q queries) GetUserByAPIKey(ctx context.Context, plaintext string) (*User, error) {
	hash := HashAPIKey(plaintext)

	var userID int64
	err := sqlx.GetContext(ctx, q.ext, &userID,
		`SELECT user_id FROM api_keys WHERE key_hash = ?`, hash)
	if err != nil {
		return nil, notFound(err, "query api key")
	}

	if _, err := q.ext.ExecContext(ctx,
		`UPDATE api_keys SET last_used_at = CURRENT_TIMESTAMP WHERE key_hash = ?`, hash); err != nil {
		return nil, fmt.Errorf("touch api key: %w", err)
	}

	return q.GetUserByID(ctx, userID)
}

// HashAPIKey returns the stored form of a plaintext key.
func HashAPIKey(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}
