package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/kintai-line-go/internal/domain/attendance"
	"github.com/cmlabs-hris/kintai-line-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type attendanceRepository struct {
	db *database.DB
}

const attendanceColumns = `
	a.id, a.user_id, a.company_id, a.date,
	a.clock_in, a.clock_out, a.break_start, a.break_end,
	a.status, a.created_at, a.updated_at,
	u.display_name, u.email`

const attendanceFrom = `
	FROM attendance_records a
	LEFT JOIN users u ON u.id = a.user_id`

func scanAttendance(row pgx.Row) (attendance.Attendance, error) {
	var att attendance.Attendance
	err := row.Scan(
		&att.ID, &att.UserID, &att.CompanyID, &att.Date,
		&att.ClockIn, &att.ClockOut, &att.BreakStart, &att.BreakEnd,
		&att.Status, &att.CreatedAt, &att.UpdatedAt,
		&att.UserName, &att.UserEmail,
	)
	return att, err
}

// Create implements attendance.AttendanceRepository.
func (a *attendanceRepository) Create(ctx context.Context, newAttendance attendance.Attendance) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	// ON CONFLICT keeps a surrounding transaction usable when the day already exists.
	query := `
		INSERT INTO attendance_records (
			user_id, company_id, date, clock_in, clock_out, break_start, break_end, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id, company_id, date) DO NOTHING
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		newAttendance.UserID,
		newAttendance.CompanyID,
		newAttendance.Date,
		newAttendance.ClockIn,
		newAttendance.ClockOut,
		newAttendance.BreakStart,
		newAttendance.BreakEnd,
		newAttendance.Status,
	).Scan(&newAttendance.ID, &newAttendance.CreatedAt, &newAttendance.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrAttendanceExists
		}
		return attendance.Attendance{}, fmt.Errorf("failed to create attendance: %w", err)
	}

	return newAttendance, nil
}

// GetByID implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByID(ctx context.Context, id string, companyID string) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + attendanceFrom + `
		WHERE a.id = $1 AND a.company_id = $2
	`

	att, err := scanAttendance(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to get attendance by id: %w", err)
	}

	return att, nil
}

// GetByUserAndDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByUserAndDate(ctx context.Context, userID string, companyID string, date time.Time) (*attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + attendanceFrom + `
		WHERE a.user_id = $1
		  AND a.company_id = $2
		  AND a.date = $3
	`

	att, err := scanAttendance(q.QueryRow(ctx, query, userID, companyID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // No existing attendance found
		}
		return nil, fmt.Errorf("failed to get attendance by user and date: %w", err)
	}

	return &att, nil
}

// UpdateTimes implements attendance.AttendanceRepository.
func (a *attendanceRepository) UpdateTimes(ctx context.Context, id string, companyID string, times attendance.Times) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendance_records
		SET clock_in = $3, clock_out = $4, break_start = $5, break_end = $6, updated_at = NOW()
		WHERE id = $1 AND company_id = $2
		RETURNING id
	`

	var updatedID string
	err := q.QueryRow(ctx, query, id, companyID,
		times.ClockIn, times.ClockOut, times.BreakStart, times.BreakEnd,
	).Scan(&updatedID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to update attendance times: %w", err)
	}

	return a.GetByID(ctx, updatedID, companyID)
}

// UpdateTimesByUserAndDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) UpdateTimesByUserAndDate(ctx context.Context, userID string, companyID string, date time.Time, times attendance.Times) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendance_records
		SET clock_in = $4, clock_out = $5, break_start = $6, break_end = $7, updated_at = NOW()
		WHERE user_id = $1 AND company_id = $2 AND date = $3
		RETURNING id
	`

	var updatedID string
	err := q.QueryRow(ctx, query, userID, companyID, date,
		times.ClockIn, times.ClockOut, times.BreakStart, times.BreakEnd,
	).Scan(&updatedID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to update attendance by user and date: %w", err)
	}

	return a.GetByID(ctx, updatedID, companyID)
}

// UpdateStatus implements attendance.AttendanceRepository.
func (a *attendanceRepository) UpdateStatus(ctx context.Context, id string, companyID string, status attendance.Status) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendance_records
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND company_id = $2
	`

	tag, err := q.Exec(ctx, query, id, companyID, status)
	if err != nil {
		return attendance.Attendance{}, fmt.Errorf("failed to update attendance status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}

	return a.GetByID(ctx, id, companyID)
}

// List implements attendance.AttendanceRepository.
func (a *attendanceRepository) List(ctx context.Context, filter attendance.ListFilter) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	where := "a.company_id = $1 AND a.date >= $2 AND a.date <= $3"
	args := []interface{}{filter.CompanyID, filter.StartDate, filter.EndDate}

	if filter.UserID != nil && *filter.UserID != "" {
		where += " AND a.user_id = $4"
		args = append(args, *filter.UserID)
	}

	query := `SELECT ` + attendanceColumns + attendanceFrom + `
		WHERE ` + where + `
		ORDER BY a.date ASC, u.display_name ASC, a.user_id ASC
	`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendances: %w", err)
	}
	defer rows.Close()

	var records []attendance.Attendance
	for rows.Next() {
		att, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		records = append(records, att)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating attendances: %w", err)
	}

	return records, nil
}

// MarkUnfinishedPartial implements attendance.AttendanceRepository.
func (a *attendanceRepository) MarkUnfinishedPartial(ctx context.Context, before time.Time) (int64, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendance_records
		SET status = 'partial', updated_at = NOW()
		WHERE date < $1
			AND status = 'present'
			AND clock_in IS NOT NULL
			AND clock_out IS NULL
	`

	tag, err := q.Exec(ctx, query, before)
	if err != nil {
		return 0, fmt.Errorf("failed to mark unfinished attendances: %w", err)
	}

	return tag.RowsAffected(), nil
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}
