package postgresql_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/kintai-line-go/internal/domain/attendance"
	"github.com/cmlabs-hris/kintai-line-go/internal/domain/changerequest"
	"github.com/cmlabs-hris/kintai-line-go/internal/domain/company"
	"github.com/cmlabs-hris/kintai-line-go/internal/domain/share"
	"github.com/cmlabs-hris/kintai-line-go/internal/domain/user"
	"github.com/cmlabs-hris/kintai-line-go/internal/repository/postgresql"
)

type fixture struct {
	setup     *TestDatabaseSetup
	userID    string
	companyID string
}

func newFixture(t *testing.T) fixture {
	setup := NewTestDatabase(t)
	ctx := context.Background()

	u, err := postgresql.NewUserRepository(setup.DB).Create(ctx, user.User{LineUserID: "U-test", DisplayName: "Taro"})
	require.NoError(t, err)

	c, err := postgresql.NewCompanyRepository(setup.DB).Create(ctx, company.Company{Name: "Acme", JoinCode: "ACME2345"})
	require.NoError(t, err)

	_, err = postgresql.NewMembershipRepository(setup.DB).Create(ctx, company.Membership{UserID: u.ID, CompanyID: c.ID, IsAdmin: true})
	require.NoError(t, err)

	return fixture{setup: setup, userID: u.ID, companyID: c.ID}
}

func at(hour, minute int) *time.Time {
	t := time.Date(2024, 6, 3, hour, minute, 0, 0, time.UTC)
	return &t
}

var day = time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)

func TestUserRepository_DuplicateLineUser(t *testing.T) {
	f := newFixture(t)
	repo := postgresql.NewUserRepository(f.setup.DB)

	_, err := repo.Create(context.Background(), user.User{LineUserID: "U-test", DisplayName: "Dup"})
	assert.ErrorIs(t, err, user.ErrLineUserExists)
}

func TestMembershipRepository_AlreadyLinkedAndAdminEmails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	users := postgresql.NewUserRepository(f.setup.DB)
	members := postgresql.NewMembershipRepository(f.setup.DB)

	_, err := members.Create(ctx, company.Membership{UserID: f.userID, CompanyID: f.companyID})
	assert.ErrorIs(t, err, company.ErrAlreadyLinked)

	email := "taro@example.com"
	tok := "verify-token"
	_, err = users.SetEmail(ctx, f.userID, &email, &tok)
	require.NoError(t, err)

	emails, err := members.ListAdminEmails(ctx, f.companyID)
	require.NoError(t, err)
	assert.Empty(t, emails)

	_, err = users.VerifyEmail(ctx, tok)
	require.NoError(t, err)

	emails, err = members.ListAdminEmails(ctx, f.companyID)
	require.NoError(t, err)
	assert.Equal(t, []string{email}, emails)
}

func TestAttendanceRepository_CreateConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	repo := postgresql.NewAttendanceRepository(f.setup.DB)

	rec := attendance.Attendance{
		UserID:    f.userID,
		CompanyID: f.companyID,
		Date:      day,
		Times:     attendance.Times{ClockIn: at(0, 0)},
		Status:    attendance.StatusPresent,
	}
	created, err := repo.Create(ctx, rec)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	_, err = repo.Create(ctx, rec)
	assert.ErrorIs(t, err, attendance.ErrAttendanceExists)

	updated, err := repo.UpdateTimesByUserAndDate(ctx, f.userID, f.companyID, day, attendance.Times{ClockIn: at(0, 0), ClockOut: at(9, 0)})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	require.NotNil(t, updated.ClockOut)

	got, err := repo.GetByUserAndDate(ctx, f.userID, f.companyID, day)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.ClockOut.Equal(*at(9, 0)))
	assert.Equal(t, "Taro", *got.UserName)
}

func TestAttendanceRepository_MarkUnfinishedPartial(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	repo := postgresql.NewAttendanceRepository(f.setup.DB)

	open, err := repo.Create(ctx, attendance.Attendance{
		UserID:    f.userID,
		CompanyID: f.companyID,
		Date:      day,
		Times:     attendance.Times{ClockIn: at(0, 0)},
		Status:    attendance.StatusPresent,
	})
	require.NoError(t, err)

	n, err := repo.MarkUnfinishedPartial(ctx, day)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = repo.MarkUnfinishedPartial(ctx, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	got, err := repo.GetByID(ctx, open.ID, f.companyID)
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusPartial, got.Status)
	assert.Nil(t, got.ClockOut)
}

func TestAttendanceRepository_ConcurrentCreateKeepsOneRow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	repo := postgresql.NewAttendanceRepository(f.setup.DB)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = repo.Create(ctx, attendance.Attendance{
				UserID: f.userID, CompanyID: f.companyID, Date: day, Status: attendance.StatusPresent,
			})
		}(i)
	}
	wg.Wait()

	conflicts := 0
	for _, err := range errs {
		if errors.Is(err, attendance.ErrAttendanceExists) {
			conflicts++
		} else {
			require.NoError(t, err)
		}
	}
	assert.Equal(t, 1, conflicts)

	records, err := repo.List(ctx, attendance.ListFilter{CompanyID: f.companyID, StartDate: day, EndDate: day})
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestChangeRequestRepository_PendingLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	repo := postgresql.NewChangeRequestRepository(f.setup.DB)

	cr := changerequest.ChangeRequest{
		UserID:      f.userID,
		CompanyID:   f.companyID,
		RequestDate: day,
		Requested:   attendance.Times{ClockIn: at(0, 0), ClockOut: at(9, 0)},
		Reason:      "forgot to clock out",
	}
	created, err := repo.Create(ctx, cr)
	require.NoError(t, err)
	assert.Equal(t, changerequest.StatusPending, created.Status)

	exists, err := repo.ExistsPending(ctx, f.userID, f.companyID, day)
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = repo.Create(ctx, cr)
	assert.ErrorIs(t, err, changerequest.ErrDuplicatePending)

	reviewed, err := repo.MarkReviewed(ctx, created.ID, changerequest.StatusApproved, f.userID, time.Now(), nil)
	require.NoError(t, err)
	assert.Equal(t, changerequest.StatusApproved, reviewed.Status)

	_, err = repo.MarkReviewed(ctx, created.ID, changerequest.StatusRejected, f.userID, time.Now(), nil)
	assert.ErrorIs(t, err, changerequest.ErrAlreadyProcessed)

	err = repo.DeletePending(ctx, created.ID, f.userID)
	assert.ErrorIs(t, err, changerequest.ErrChangeRequestNotFound)

	// A new request for the same day is allowed once the first is settled.
	_, err = repo.Create(ctx, cr)
	assert.NoError(t, err)
}

func TestShareRepository_OverwriteByKey(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	repo := postgresql.NewShareRepository(f.setup.DB)

	first, err := repo.Create(ctx, share.Share{
		Token: "tok-1", UserID: f.userID, CompanyID: f.companyID, YearMonth: "2024-06",
		ExpiresAt: time.Now().Add(time.Hour), CreatedBy: f.userID,
	})
	require.NoError(t, err)

	_, err = repo.Create(ctx, share.Share{
		Token: "tok-2", UserID: f.userID, CompanyID: f.companyID, YearMonth: "2024-06",
		ExpiresAt: time.Now().Add(time.Hour), CreatedBy: f.userID,
	})
	assert.ErrorIs(t, err, share.ErrShareConflict)

	require.NoError(t, repo.DeleteByKey(ctx, f.userID, f.companyID, "2024-06"))

	_, err = repo.GetByToken(ctx, first.Token)
	assert.ErrorIs(t, err, share.ErrShareNotFound)
}
