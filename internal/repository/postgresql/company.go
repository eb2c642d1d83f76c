package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/kintai-line-go/internal/domain/company"
	"github.com/cmlabs-hris/kintai-line-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type companyRepository struct {
	db *database.DB
}

const companyColumns = `id, name, join_code, owner_id, created_at, updated_at`

func scanCompany(row pgx.Row) (company.Company, error) {
	var c company.Company
	err := row.Scan(&c.ID, &c.Name, &c.JoinCode, &c.OwnerID, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// Create implements company.CompanyRepository.
func (r *companyRepository) Create(ctx context.Context, newCompany company.Company) (company.Company, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO companies (name, join_code, owner_id)
		VALUES ($1, $2, $3)
		RETURNING ` + companyColumns

	created, err := scanCompany(q.QueryRow(ctx, query, newCompany.Name, newCompany.JoinCode, newCompany.OwnerID))
	if err != nil {
		if isUniqueViolation(err) {
			return company.Company{}, company.ErrJoinCodeTaken
		}
		return company.Company{}, fmt.Errorf("failed to create company: %w", err)
	}

	return created, nil
}

// GetByID implements company.CompanyRepository.
func (r *companyRepository) GetByID(ctx context.Context, id string) (company.Company, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + companyColumns + ` FROM companies WHERE id = $1`

	c, err := scanCompany(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return company.Company{}, company.ErrCompanyNotFound
		}
		return company.Company{}, fmt.Errorf("failed to get company by id: %w", err)
	}

	return c, nil
}

// GetByJoinCode implements company.CompanyRepository.
func (r *companyRepository) GetByJoinCode(ctx context.Context, code string) (company.Company, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + companyColumns + ` FROM companies WHERE join_code = $1`

	c, err := scanCompany(q.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return company.Company{}, company.ErrCompanyNotFound
		}
		return company.Company{}, fmt.Errorf("failed to get company by join code: %w", err)
	}

	return c, nil
}

// SetOwner implements company.CompanyRepository.
func (r *companyRepository) SetOwner(ctx context.Context, companyID string, ownerID string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `UPDATE companies SET owner_id = $2, updated_at = NOW() WHERE id = $1`, companyID, ownerID)
	if err != nil {
		return fmt.Errorf("failed to set company owner: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return company.ErrCompanyNotFound
	}

	return nil
}

// UpdateJoinCode implements company.CompanyRepository.
func (r *companyRepository) UpdateJoinCode(ctx context.Context, companyID string, code string) (company.Company, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE companies SET join_code = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + companyColumns

	c, err := scanCompany(q.QueryRow(ctx, query, companyID, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return company.Company{}, company.ErrCompanyNotFound
		}
		if isUniqueViolation(err) {
			return company.Company{}, company.ErrJoinCodeTaken
		}
		return company.Company{}, fmt.Errorf("failed to update join code: %w", err)
	}

	return c, nil
}

func NewCompanyRepository(db *database.DB) company.CompanyRepository {
	return &companyRepository{db: db}
}
