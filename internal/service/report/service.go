package report

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/kintai-line-go/internal/domain/attendance"
	"github.com/cmlabs-hris/kintai-line-go/internal/domain/company"
	"github.com/cmlabs-hris/kintai-line-go/internal/domain/report"
	"github.com/cmlabs-hris/kintai-line-go/internal/pkg/timeutil"
)

type ReportServiceImpl struct {
	attendanceRepo attendance.AttendanceRepository
	membershipRepo company.MembershipRepository
	loc            *time.Location
}

func NewReportService(attendanceRepo attendance.AttendanceRepository, membershipRepo company.MembershipRepository, loc *time.Location) report.ReportService {
	return &ReportServiceImpl{
		attendanceRepo: attendanceRepo,
		membershipRepo: membershipRepo,
		loc:            loc,
	}
}

// ExportMonth implements report.ReportService.
func (s *ReportServiceImpl) ExportMonth(ctx context.Context, req report.ExportRequest) (report.ExportFile, error) {
	if err := req.Validate(); err != nil {
		return report.ExportFile{}, err
	}
	if _, err := company.RequireAdmin(ctx, s.membershipRepo, req.RequesterID, req.CompanyID); err != nil {
		return report.ExportFile{}, err
	}

	first, last, err := timeutil.MonthRange(req.YearMonth)
	if err != nil {
		return report.ExportFile{}, err
	}

	filter := attendance.ListFilter{
		CompanyID: req.CompanyID,
		StartDate: first,
		EndDate:   last,
	}
	if req.UserID != "" {
		filter.UserID = &req.UserID
	}

	records, err := s.attendanceRepo.List(ctx, filter)
	if err != nil {
		return report.ExportFile{}, fmt.Errorf("failed to get attendance data: %w", err)
	}

	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, s.row(r))
	}

	var data []byte
	switch req.Format {
	case report.FormatXLSX:
		data, err = renderXLSX(req.YearMonth, rows)
		if err != nil {
			return report.ExportFile{}, err
		}
	default:
		data = renderCSV(rows)
	}

	slog.Info("attendance exported",
		"company_id", req.CompanyID,
		"year_month", req.YearMonth,
		"format", req.Format,
		"rows", len(rows),
	)

	return report.ExportFile{
		Filename:    fmt.Sprintf("attendance-%s.%s", req.YearMonth, req.Format),
		ContentType: req.Format.ContentType(),
		Data:        data,
	}, nil
}

// row renders one record in report.Columns order.
func (s *ReportServiceImpl) row(r attendance.Attendance) []string {
	var name, email string
	if r.UserName != nil {
		name = *r.UserName
	}
	if r.UserEmail != nil {
		email = *r.UserEmail
	}
	return []string{
		name,
		email,
		r.Date.Format(timeutil.DateLayout),
		timeutil.FormatClock(r.ClockIn, s.loc),
		timeutil.FormatClock(r.ClockOut, s.loc),
		timeutil.FormatClock(r.BreakStart, s.loc),
		timeutil.FormatClock(r.BreakEnd, s.loc),
		attendance.FormatWorked(r.Times),
		attendance.FormatBreak(r.Times),
		string(r.Status),
	}
}
