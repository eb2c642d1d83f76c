package report

import "context"

type ReportService interface {
	// ExportMonth renders one row per attendance record of the month, admins only
	ExportMonth(ctx context.Context, req ExportRequest) (ExportFile, error)
}
