package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/kintai-line-go/internal/domain/company"
	"github.com/cmlabs-hris/kintai-line-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type membershipRepository struct {
	db *database.DB
}

const membershipColumns = `
	m.id, m.user_id, m.company_id, m.is_admin, m.created_at,
	c.name, u.display_name, u.email, COALESCE(u.email_verified, FALSE)`

const membershipFrom = `
	FROM user_company_memberships m
	JOIN companies c ON c.id = m.company_id
	JOIN users u ON u.id = m.user_id`

func scanMembership(row pgx.Row) (company.Membership, error) {
	var m company.Membership
	err := row.Scan(
		&m.ID, &m.UserID, &m.CompanyID, &m.IsAdmin, &m.CreatedAt,
		&m.CompanyName, &m.UserName, &m.UserEmail, &m.EmailVerified,
	)
	return m, err
}

func (r *membershipRepository) list(ctx context.Context, query string, args ...interface{}) ([]company.Membership, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}
	defer rows.Close()

	var memberships []company.Membership
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan membership: %w", err)
		}
		memberships = append(memberships, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating memberships: %w", err)
	}

	return memberships, nil
}

// Create implements company.MembershipRepository.
func (r *membershipRepository) Create(ctx context.Context, m company.Membership) (company.Membership, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO user_company_memberships (user_id, company_id, is_admin)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := q.QueryRow(ctx, query, m.UserID, m.CompanyID, m.IsAdmin).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return company.Membership{}, company.ErrAlreadyLinked
		}
		return company.Membership{}, fmt.Errorf("failed to create membership: %w", err)
	}

	return m, nil
}

// Get implements company.MembershipRepository.
func (r *membershipRepository) Get(ctx context.Context, userID string, companyID string) (*company.Membership, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + membershipColumns + membershipFrom + `
		WHERE m.user_id = $1 AND m.company_id = $2
	`

	m, err := scanMembership(q.QueryRow(ctx, query, userID, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}

	return &m, nil
}

// ListByUser implements company.MembershipRepository.
func (r *membershipRepository) ListByUser(ctx context.Context, userID string) ([]company.Membership, error) {
	query := `SELECT ` + membershipColumns + membershipFrom + `
		WHERE m.user_id = $1
		ORDER BY m.created_at ASC, m.id ASC
	`
	return r.list(ctx, query, userID)
}

// ListByCompany implements company.MembershipRepository.
func (r *membershipRepository) ListByCompany(ctx context.Context, companyID string) ([]company.Membership, error) {
	query := `SELECT ` + membershipColumns + membershipFrom + `
		WHERE m.company_id = $1
		ORDER BY m.is_admin DESC, u.display_name ASC
	`
	return r.list(ctx, query, companyID)
}

// SetAdmin implements company.MembershipRepository.
func (r *membershipRepository) SetAdmin(ctx context.Context, userID string, companyID string, isAdmin bool) (company.Membership, error) {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx,
		`UPDATE user_company_memberships SET is_admin = $3 WHERE user_id = $1 AND company_id = $2`,
		userID, companyID, isAdmin,
	)
	if err != nil {
		return company.Membership{}, fmt.Errorf("failed to set admin flag: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return company.Membership{}, company.ErrMembershipNotFound
	}

	m, err := r.Get(ctx, userID, companyID)
	if err != nil {
		return company.Membership{}, err
	}
	if m == nil {
		return company.Membership{}, company.ErrMembershipNotFound
	}
	return *m, nil
}

// CountAdmins implements company.MembershipRepository.
func (r *membershipRepository) CountAdmins(ctx context.Context, companyID string) (int, error) {
	q := GetQuerier(ctx, r.db)

	var count int
	err := q.QueryRow(ctx,
		`SELECT COUNT(*) FROM user_company_memberships WHERE company_id = $1 AND is_admin`,
		companyID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count admins: %w", err)
	}

	return count, nil
}

// ListAdminEmails implements company.MembershipRepository.
func (r *membershipRepository) ListAdminEmails(ctx context.Context, companyID string) ([]string, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT DISTINCT u.email
		FROM user_company_memberships m
		JOIN users u ON u.id = m.user_id
		WHERE m.company_id = $1
		  AND m.is_admin
		  AND u.email IS NOT NULL
		  AND u.email_verified
		ORDER BY u.email
	`

	rows, err := q.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list admin emails: %w", err)
	}
	defer rows.Close()

	emails, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to collect admin emails: %w", err)
	}

	return emails, nil
}

func NewMembershipRepository(db *database.DB) company.MembershipRepository {
	return &membershipRepository{db: db}
}
