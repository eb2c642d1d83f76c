package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/kintai-line-go/internal/domain/share"
	"github.com/cmlabs-hris/kintai-line-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type shareRepository struct {
	db *database.DB
}

const shareColumns = `
	s.id, s.token, s.user_id, s.company_id, s.year_month,
	s.expires_at, s.created_by, s.created_at, u.display_name`

const shareFrom = `
	FROM attendance_shares s
	LEFT JOIN users u ON u.id = s.user_id`

func scanShare(row pgx.Row) (share.Share, error) {
	var s share.Share
	err := row.Scan(
		&s.ID, &s.Token, &s.UserID, &s.CompanyID, &s.YearMonth,
		&s.ExpiresAt, &s.CreatedBy, &s.CreatedAt, &s.UserName,
	)
	return s, err
}

func (r *shareRepository) one(ctx context.Context, where string, arg string) (share.Share, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + shareColumns + shareFrom + ` WHERE ` + where

	s, err := scanShare(q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return share.Share{}, share.ErrShareNotFound
		}
		return share.Share{}, fmt.Errorf("failed to get share: %w", err)
	}
	return s, nil
}

// Create implements share.ShareRepository.
func (r *shareRepository) Create(ctx context.Context, s share.Share) (share.Share, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO attendance_shares (token, user_id, company_id, year_month, expires_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := q.QueryRow(ctx, query,
		s.Token, s.UserID, s.CompanyID, s.YearMonth, s.ExpiresAt, s.CreatedBy,
	).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return share.Share{}, share.ErrShareConflict
		}
		return share.Share{}, fmt.Errorf("failed to create share: %w", err)
	}

	return s, nil
}

// GetByID implements share.ShareRepository.
func (r *shareRepository) GetByID(ctx context.Context, id string) (share.Share, error) {
	return r.one(ctx, "s.id = $1", id)
}

// GetByToken implements share.ShareRepository.
func (r *shareRepository) GetByToken(ctx context.Context, token string) (share.Share, error) {
	return r.one(ctx, "s.token = $1", token)
}

// List implements share.ShareRepository.
func (r *shareRepository) List(ctx context.Context, filter share.ListFilter) ([]share.Share, error) {
	q := GetQuerier(ctx, r.db)

	where := "s.company_id = $1"
	args := []interface{}{filter.CompanyID}
	if filter.UserID != nil && *filter.UserID != "" {
		where += " AND s.user_id = $2"
		args = append(args, *filter.UserID)
	}

	query := `SELECT ` + shareColumns + shareFrom + `
		WHERE ` + where + `
		ORDER BY s.year_month DESC, s.created_at DESC
	`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list shares: %w", err)
	}
	defer rows.Close()

	var shares []share.Share
	for rows.Next() {
		s, err := scanShare(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan share: %w", err)
		}
		shares = append(shares, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating shares: %w", err)
	}

	return shares, nil
}

// DeleteByKey implements share.ShareRepository.
func (r *shareRepository) DeleteByKey(ctx context.Context, userID string, companyID string, yearMonth string) error {
	q := GetQuerier(ctx, r.db)

	_, err := q.Exec(ctx,
		`DELETE FROM attendance_shares WHERE user_id = $1 AND company_id = $2 AND year_month = $3`,
		userID, companyID, yearMonth,
	)
	if err != nil {
		return fmt.Errorf("failed to delete share by key: %w", err)
	}

	return nil
}

// Delete implements share.ShareRepository.
func (r *shareRepository) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM attendance_shares WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete share: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return share.ErrShareNotFound
	}

	return nil
}

func NewShareRepository(db *database.DB) share.ShareRepository {
	return &shareRepository{db: db}
}
