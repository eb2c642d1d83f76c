package report

import (
	"strings"

	"github.com/cmlabs-hris/kintai-line-go/internal/pkg/timeutil"
	"github.com/cmlabs-hris/kintai-line-go/internal/pkg/validator"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// Columns is the fixed header of every monthly export.
var Columns = []string{
	"name", "email", "date", "clock_in", "clock_out",
	"break_start", "break_end", "worked", "break", "status",
}

type ExportRequest struct {
	RequesterID string
	CompanyID   string
	YearMonth   string
	Format      Format
	// UserID narrows the export to one member; empty exports everyone.
	UserID string
}

func (r *ExportRequest) Validate() error {
	var errs validator.ValidationErrors

	if !timeutil.IsYearMonth(r.YearMonth) {
		errs.Add("year_month", "year_month must be YYYY-MM")
	}

	r.Format = Format(strings.ToLower(string(r.Format)))
	if r.Format == "" {
		r.Format = FormatCSV
	}
	if r.Format != FormatCSV && r.Format != FormatXLSX {
		errs.Add("format", ErrUnsupportedFormat.Error())
	}

	if r.UserID != "" && !validator.IsValidUUID(r.UserID) {
		errs.Add("user_id", "user_id must be a valid id")
	}

	return errs.Err()
}

type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}
