package report

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/cmlabs-hris/kintai-line-go/internal/domain/attendance"
	"github.com/cmlabs-hris/kintai-line-go/internal/domain/company"
	"github.com/cmlabs-hris/kintai-line-go/internal/domain/report"
	"github.com/cmlabs-hris/kintai-line-go/internal/testutil"
)

const (
	companyID = "c1"
	workerID  = "11111111-1111-1111-1111-111111111111"
	adminID   = "22222222-2222-2222-2222-222222222222"
)

var tokyo = time.FixedZone("JST", 9*60*60)

func TestEscapeCSV(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"", ""},
		{"Suzuki, Ichiro", `"Suzuki, Ichiro"`},
		{`say "hi"`, `"say ""hi"""`},
		{"two\nlines", "\"two\nlines\""},
		{" leading space", " leading space"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, escapeCSV(tt.in), "escapeCSV(%q)", tt.in)
	}
}

func newService() (*ReportServiceImpl, *testutil.AttendanceRepo) {
	members := testutil.NewMemberships()
	members.Add(workerID, companyID, false)
	members.Add(adminID, companyID, true)

	records := testutil.NewAttendanceRepo()
	records.SetUserName(workerID, "Suzuki, Ichiro")

	in := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	out := in.Add(9 * time.Hour)
	bs := in.Add(3 * time.Hour)
	be := bs.Add(30 * time.Minute)
	records.Seed(attendance.Attendance{
		UserID: workerID, CompanyID: companyID, Date: time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC),
		Times: attendance.Times{ClockIn: &in, ClockOut: &out, BreakStart: &bs, BreakEnd: &be},
	})
	records.Seed(attendance.Attendance{
		UserID: workerID, CompanyID: companyID, Date: time.Date(2024, 6, 4, 0, 0, 0, 0, time.UTC),
		Times: attendance.Times{ClockIn: &in}, Status: attendance.StatusPartial,
	})
	records.Seed(attendance.Attendance{
		UserID: workerID, CompanyID: companyID, Date: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
	})

	svc := NewReportService(records, members, tokyo).(*ReportServiceImpl)
	return svc, records
}

func TestExportMonth_CSV(t *testing.T) {
	svc, _ := newService()

	file, err := svc.ExportMonth(context.Background(), report.ExportRequest{
		RequesterID: adminID, CompanyID: companyID, YearMonth: "2024-06",
	})
	require.NoError(t, err)

	assert.Equal(t, "attendance-2024-06.csv", file.Filename)
	assert.Equal(t, "text/csv; charset=utf-8", file.ContentType)

	lines := strings.Split(strings.TrimSuffix(string(file.Data), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "name,email,date,clock_in,clock_out,break_start,break_end,worked,break,status", lines[0])
	assert.Equal(t, `"Suzuki, Ichiro",,2024-06-03,09:00,18:00,12:00,12:30,8:30,0:30,present`, lines[1])
	assert.Equal(t, `"Suzuki, Ichiro",,2024-06-04,09:00,,,,,,partial`, lines[2])
}

func TestExportMonth_XLSX(t *testing.T) {
	svc, _ := newService()

	file, err := svc.ExportMonth(context.Background(), report.ExportRequest{
		RequesterID: adminID, CompanyID: companyID, YearMonth: "2024-06", Format: "XLSX",
	})
	require.NoError(t, err)
	assert.Equal(t, "attendance-2024-06.xlsx", file.Filename)

	f, err := excelize.OpenReader(bytes.NewReader(file.Data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"2024-06"}, f.GetSheetList())
	rows, err := f.GetRows("2024-06")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, report.Columns, rows[0])
	assert.Equal(t, "Suzuki, Ichiro", rows[1][0])
	assert.Equal(t, "8:30", rows[1][7])
}

func TestExportMonth_Errors(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	_, err := svc.ExportMonth(ctx, report.ExportRequest{RequesterID: workerID, CompanyID: companyID, YearMonth: "2024-06"})
	assert.ErrorIs(t, err, company.ErrAdminRequired)

	_, err = svc.ExportMonth(ctx, report.ExportRequest{RequesterID: adminID, CompanyID: companyID, YearMonth: "2024-06", Format: "pdf"})
	assert.Error(t, err)

	_, err = svc.ExportMonth(ctx, report.ExportRequest{RequesterID: adminID, CompanyID: companyID, YearMonth: "June"})
	assert.Error(t, err)
}
