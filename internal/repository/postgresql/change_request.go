package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/kintai-line-go/internal/domain/changerequest"
	"github.com/cmlabs-hris/kintai-line-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type changeRequestRepository struct {
	db *database.DB
}

const changeRequestColumns = `
	cr.id, cr.user_id, cr.company_id, cr.attendance_record_id, cr.request_date,
	cr.current_clock_in, cr.current_clock_out, cr.current_break_start, cr.current_break_end,
	cr.requested_clock_in, cr.requested_clock_out, cr.requested_break_start, cr.requested_break_end,
	cr.reason, cr.status, cr.reviewer_id, cr.reviewed_at, cr.review_comment,
	cr.created_at, cr.updated_at,
	u.display_name, rv.display_name`

const changeRequestFrom = `
	FROM change_requests cr
	LEFT JOIN users u ON u.id = cr.user_id
	LEFT JOIN users rv ON rv.id = cr.reviewer_id`

func scanChangeRequest(row pgx.Row) (changerequest.ChangeRequest, error) {
	var cr changerequest.ChangeRequest
	err := row.Scan(
		&cr.ID, &cr.UserID, &cr.CompanyID, &cr.AttendanceRecordID, &cr.RequestDate,
		&cr.Current.ClockIn, &cr.Current.ClockOut, &cr.Current.BreakStart, &cr.Current.BreakEnd,
		&cr.Requested.ClockIn, &cr.Requested.ClockOut, &cr.Requested.BreakStart, &cr.Requested.BreakEnd,
		&cr.Reason, &cr.Status, &cr.ReviewerID, &cr.ReviewedAt, &cr.ReviewComment,
		&cr.CreatedAt, &cr.UpdatedAt,
		&cr.UserName, &cr.ReviewerName,
	)
	return cr, err
}

// Create implements changerequest.ChangeRequestRepository.
func (r *changeRequestRepository) Create(ctx context.Context, cr changerequest.ChangeRequest) (changerequest.ChangeRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO change_requests (
			user_id, company_id, attendance_record_id, request_date,
			current_clock_in, current_clock_out, current_break_start, current_break_end,
			requested_clock_in, requested_clock_out, requested_break_start, requested_break_end,
			reason, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, 'pending')
		RETURNING id
	`

	var id string
	err := q.QueryRow(ctx, query,
		cr.UserID, cr.CompanyID, cr.AttendanceRecordID, cr.RequestDate,
		cr.Current.ClockIn, cr.Current.ClockOut, cr.Current.BreakStart, cr.Current.BreakEnd,
		cr.Requested.ClockIn, cr.Requested.ClockOut, cr.Requested.BreakStart, cr.Requested.BreakEnd,
		cr.Reason,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return changerequest.ChangeRequest{}, changerequest.ErrDuplicatePending
		}
		return changerequest.ChangeRequest{}, fmt.Errorf("failed to create change request: %w", err)
	}

	return r.GetByID(ctx, id)
}

// GetByID implements changerequest.ChangeRequestRepository.
func (r *changeRequestRepository) GetByID(ctx context.Context, id string) (changerequest.ChangeRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + changeRequestColumns + changeRequestFrom + ` WHERE cr.id = $1`

	cr, err := scanChangeRequest(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return changerequest.ChangeRequest{}, changerequest.ErrChangeRequestNotFound
		}
		return changerequest.ChangeRequest{}, fmt.Errorf("failed to get change request: %w", err)
	}

	return cr, nil
}

// ExistsPending implements changerequest.ChangeRequestRepository.
func (r *changeRequestRepository) ExistsPending(ctx context.Context, userID string, companyID string, date time.Time) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT EXISTS (
			SELECT 1 FROM change_requests
			WHERE user_id = $1 AND company_id = $2 AND request_date = $3 AND status = 'pending'
		)
	`

	var exists bool
	if err := q.QueryRow(ctx, query, userID, companyID, date).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check pending change request: %w", err)
	}

	return exists, nil
}

// List implements changerequest.ChangeRequestRepository.
func (r *changeRequestRepository) List(ctx context.Context, filter changerequest.ListFilter) ([]changerequest.ChangeRequest, error) {
	q := GetQuerier(ctx, r.db)

	where := "cr.company_id = $1"
	args := []interface{}{filter.CompanyID}
	argIdx := 2

	if filter.UserID != nil && *filter.UserID != "" {
		where += fmt.Sprintf(" AND cr.user_id = $%d", argIdx)
		args = append(args, *filter.UserID)
		argIdx++
	}

	if filter.Status != nil {
		where += fmt.Sprintf(" AND cr.status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)

	query := `SELECT ` + changeRequestColumns + changeRequestFrom + `
		WHERE ` + where + fmt.Sprintf(`
		ORDER BY cr.created_at DESC
		LIMIT $%d`, argIdx)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list change requests: %w", err)
	}
	defer rows.Close()

	var requests []changerequest.ChangeRequest
	for rows.Next() {
		cr, err := scanChangeRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan change request: %w", err)
		}
		requests = append(requests, cr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating change requests: %w", err)
	}

	return requests, nil
}

// MarkReviewed implements changerequest.ChangeRequestRepository.
func (r *changeRequestRepository) MarkReviewed(ctx context.Context, id string, status changerequest.Status, reviewerID string, reviewedAt time.Time, comment *string) (changerequest.ChangeRequest, error) {
	q := GetQuerier(ctx, r.db)

	// Conditional on pending so two reviewers cannot both succeed.
	query := `
		UPDATE change_requests
		SET status = $2, reviewer_id = $3, reviewed_at = $4, review_comment = $5, updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
	`

	tag, err := q.Exec(ctx, query, id, status, reviewerID, reviewedAt, comment)
	if err != nil {
		return changerequest.ChangeRequest{}, fmt.Errorf("failed to review change request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return changerequest.ChangeRequest{}, err
		}
		return changerequest.ChangeRequest{}, changerequest.ErrAlreadyProcessed
	}

	return r.GetByID(ctx, id)
}

// DeletePending implements changerequest.ChangeRequestRepository.
func (r *changeRequestRepository) DeletePending(ctx context.Context, id string, userID string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx,
		`DELETE FROM change_requests WHERE id = $1 AND user_id = $2 AND status = 'pending'`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete change request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return changerequest.ErrChangeRequestNotFound
	}

	return nil
}

func NewChangeRequestRepository(db *database.DB) changerequest.ChangeRequestRepository {
	return &changeRequestRepository{db: db}
}
