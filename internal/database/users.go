package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"nestflow/internal/domain"
	"nestflow/internal/models"
)

const userColumns = `id, username, email, password_hash, role, bio, avatar_url, created_at`

func (db *DB) CreateUser(ctx context.Context, user *models.User) error {
	query := db.Rebind(`INSERT INTO users (username, email, password_hash, role, bio, avatar_url, created_at)
              VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`)
	createdAt := utcNow()
	id, err := insertReturningID(ctx, db, query,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.Bio,
		user.AvatarURL,
		createdAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailTaken
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	user.ID = id
	user.CreatedAt = createdAt
	return nil
}

func (db *DB) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return db.queryUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

func (db *DB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return db.queryUser(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
}

func (db *DB) queryUser(ctx context.Context, query string, args ...interface{}) (*models.User, error) {
	var user models.User
	if err := db.GetContext(ctx, &user, db.Rebind(query), args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (db *DB) UpdateUserProfile(ctx context.Context, id int64, username, email string, bio *string) (*models.User, error) {
	query := db.Rebind(`UPDATE users SET username = ?, email = ?, bio = ? WHERE id = ?`)
	result, err := db.ExecContext(ctx, query, username, email, bio, id)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to update user profile: %w", err)
	}
	if err := expectAffected(result, domain.ErrUserNotFound); err != nil {
		return nil, err
	}
	return db.GetUserByID(ctx, id)
}

func (db *DB) UpdateUserAvatar(ctx context.Context, id int64, avatarURL string) (*models.User, error) {
	query := db.Rebind(`UPDATE users SET avatar_url = ? WHERE id = ?`)
	result, err := db.ExecContext(ctx, query, avatarURL, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update avatar: %w", err)
	}
	if err := expectAffected(result, domain.ErrUserNotFound); err != nil {
		return nil, err
	}
	return db.GetUserByID(ctx, id)
}

// expectAffected turns a zero-row update into notFound.
func expectAffected(result sql.Result, notFound error) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
