package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/codecraft/internal/apperror"
	"github.com/sakif/codecraft/internal/model"
	"github.com/sakif/codecraft/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

// Upsert inserts or updates a user based on their external UserID.
//
// A user who already exists keeps their internal ID, CreatedAt and IsPro;
// only email, name and UpdatedAt are refreshed. The caller's struct is filled
// with the canonical values afterwards.
func (db *DB) Upsert(ctx context.Context, user *model.User) error {
	existing, err := db.GetUserByUserID(ctx, user.UserID)
	if err != nil && !isNotFound(err) {
		return fmt.Errorf("sqlite: looking up user %s: %w", user.UserID, err)
	}

	if existing != nil {
		user.ID = existing.ID
		user.CreatedAt = existing.CreatedAt
		user.IsPro = existing.IsPro
		user.UpdatedAt = time.Now()
		_, err = db.conn.ExecContext(ctx,
			`UPDATE users SET email = ?, name = ?, updated_at = ?
			 WHERE id = ?`,
			user.Email,
			user.Name,
			user.UpdatedAt,
			user.ID,
		)
		if err != nil {
			return fmt.Errorf("sqlite: updating user %s: %w", user.ID, err)
		}
		return nil
	}

	now := time.Now()
	user.ID = xid.New().String()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO users (id, user_id, email, name, is_pro, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.UserID,
		user.Email,
		user.Name,
		user.IsPro,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting user (userID=%s): %w", user.UserID, err)
	}

	return nil
}

// GetUserByUserID retrieves a user by the identity provider's subject.
// Returns apperror.ErrNotFound if no user exists with that ID.
func (db *DB) GetUserByUserID(ctx context.Context, userID string) (*model.User, error) {
	var u model.User

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, user_id, email, name, is_pro, created_at, updated_at
		 FROM users WHERE user_id = ?`,
		userID,
	).Scan(
		&u.ID,
		&u.UserID,
		&u.Email,
		&u.Name,
		&u.IsPro,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", userID)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", userID, err)
	}

	return &u, nil
}

// SetPro flips a user's entitlement flag. The identity sync never touches
// is_pro; plan changes arrive through UserService.SetPro.
func (db *DB) SetPro(ctx context.Context, userID string, isPro bool) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE users SET is_pro = ?, updated_at = ? WHERE user_id = ?`,
		isPro, time.Now(), userID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: setting pro flag for %s: %w", userID, err)
	}
	return expectOneRow(result, "user", userID)
}
