package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/kintai-line-go/internal/domain/user"
	"github.com/cmlabs-hris/kintai-line-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type userRepository struct {
	db *database.DB
}

const userColumns = `
	id, line_user_id, display_name, picture_url,
	email, email_verified, email_verification_token,
	created_at, updated_at`

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User
	err := row.Scan(
		&u.ID, &u.LineUserID, &u.DisplayName, &u.PictureURL,
		&u.Email, &u.EmailVerified, &u.EmailVerificationToken,
		&u.CreatedAt, &u.UpdatedAt,
	)
	return u, err
}

func (r *userRepository) one(ctx context.Context, op string, query string, args ...interface{}) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	u, err := scanUser(q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrUserNotFound
		}
		return user.User{}, fmt.Errorf("failed to %s: %w", op, err)
	}
	return u, nil
}

// Create implements user.UserRepository.
func (r *userRepository) Create(ctx context.Context, newUser user.User) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO users (line_user_id, display_name, picture_url)
		VALUES ($1, $2, $3)
		RETURNING ` + userColumns

	created, err := scanUser(q.QueryRow(ctx, query,
		newUser.LineUserID,
		newUser.DisplayName,
		newUser.PictureURL,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return user.User{}, user.ErrLineUserExists
		}
		return user.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	return created, nil
}

// GetByID implements user.UserRepository.
func (r *userRepository) GetByID(ctx context.Context, id string) (user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.one(ctx, "get user by id", query, id)
}

// GetByLineUserID implements user.UserRepository.
func (r *userRepository) GetByLineUserID(ctx context.Context, lineUserID string) (user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE line_user_id = $1`
	return r.one(ctx, "get user by line id", query, lineUserID)
}

// UpdateProfile implements user.UserRepository.
func (r *userRepository) UpdateProfile(ctx context.Context, id string, displayName string, pictureURL *string) (user.User, error) {
	query := `
		UPDATE users
		SET display_name = $2, picture_url = COALESCE($3, picture_url), updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns
	return r.one(ctx, "update user profile", query, id, displayName, pictureURL)
}

// SetEmail implements user.UserRepository.
func (r *userRepository) SetEmail(ctx context.Context, id string, email *string, verificationToken *string) (user.User, error) {
	query := `
		UPDATE users
		SET email = $2, email_verified = FALSE, email_verification_token = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns
	return r.one(ctx, "set user email", query, id, email, verificationToken)
}

// VerifyEmail implements user.UserRepository.
func (r *userRepository) VerifyEmail(ctx context.Context, verificationToken string) (user.User, error) {
	query := `
		UPDATE users
		SET email_verified = TRUE, email_verification_token = NULL, updated_at = NOW()
		WHERE email_verification_token = $1 AND email IS NOT NULL
		RETURNING ` + userColumns

	u, err := r.one(ctx, "verify user email", query, verificationToken)
	if errors.Is(err, user.ErrUserNotFound) {
		return user.User{}, user.ErrInvalidVerificationLink
	}
	return u, err
}

func NewUserRepository(db *database.DB) user.UserRepository {
	return &userRepository{db: db}
}
