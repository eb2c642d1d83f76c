package user

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/kintai-line-go/internal/domain/user"
	"github.com/cmlabs-hris/kintai-line-go/internal/pkg/email"
	"github.com/cmlabs-hris/kintai-line-go/internal/pkg/validator"
)

type fakeUserRepo struct {
	users map[string]user.User
	// raceOnCreate simulates another request inserting the same LINE user first.
	raceOnCreate bool
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]user.User{}}
}

func (f *fakeUserRepo) Create(ctx context.Context, u user.User) (user.User, error) {
	for _, existing := range f.users {
		if existing.LineUserID == u.LineUserID {
			return user.User{}, user.ErrLineUserExists
		}
	}
	u.ID = "user-" + u.LineUserID
	f.users[u.ID] = u
	if f.raceOnCreate {
		return user.User{}, user.ErrLineUserExists
	}
	return u, nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	u, ok := f.users[id]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) GetByLineUserID(ctx context.Context, lineUserID string) (user.User, error) {
	for _, u := range f.users {
		if u.LineUserID == lineUserID {
			return u, nil
		}
	}
	return user.User{}, user.ErrUserNotFound
}

func (f *fakeUserRepo) UpdateProfile(ctx context.Context, id string, displayName string, pictureURL *string) (user.User, error) {
	u, err := f.GetByID(ctx, id)
	if err != nil {
		return user.User{}, err
	}
	u.DisplayName = displayName
	f.users[id] = u
	return u, nil
}

func (f *fakeUserRepo) SetEmail(ctx context.Context, id string, address *string, verificationToken *string) (user.User, error) {
	u, err := f.GetByID(ctx, id)
	if err != nil {
		return user.User{}, err
	}
	u.Email = address
	u.EmailVerified = false
	u.EmailVerificationToken = verificationToken
	f.users[id] = u
	return u, nil
}

func (f *fakeUserRepo) VerifyEmail(ctx context.Context, verificationToken string) (user.User, error) {
	for id, u := range f.users {
		if u.EmailVerificationToken != nil && *u.EmailVerificationToken == verificationToken {
			u.EmailVerified = true
			u.EmailVerificationToken = nil
			f.users[id] = u
			return u, nil
		}
	}
	return user.User{}, user.ErrInvalidVerificationLink
}

type fakeEmailService struct {
	verifications []string
	err           error
}

func (f *fakeEmailService) SendAdminNotification(ctx context.Context, to []string, data email.AdminNotification) error {
	return nil
}

func (f *fakeEmailService) SendEmailVerification(ctx context.Context, to, displayName, link string) error {
	f.verifications = append(f.verifications, link)
	return f.err
}

func TestFindOrCreateByLine(t *testing.T) {
	ctx := context.Background()
	repo := newFakeUserRepo()
	svc := NewUserService(repo, &fakeEmailService{}, "https://app.example.com")

	created, err := svc.FindOrCreateByLine(ctx, "U1", "Taro", nil)
	require.NoError(t, err)
	assert.Equal(t, "Taro", created.DisplayName)

	again, err := svc.FindOrCreateByLine(ctx, "U1", "Someone else", nil)
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)
	assert.Len(t, repo.users, 1)
}

func TestFindOrCreateByLine_ConcurrentInsert(t *testing.T) {
	repo := newFakeUserRepo()
	repo.raceOnCreate = true
	svc := NewUserService(repo, &fakeEmailService{}, "")

	u, err := svc.FindOrCreateByLine(context.Background(), "U2", "", nil)
	require.NoError(t, err)
	assert.Equal(t, "user-U2", u.ID)
	assert.Equal(t, "LINE user", u.DisplayName)
}

func TestUpdateProfile_EmailVerificationFlow(t *testing.T) {
	ctx := context.Background()
	repo := newFakeUserRepo()
	mailer := &fakeEmailService{}
	svc := NewUserService(repo, mailer, "https://app.example.com/")

	u, err := svc.FindOrCreateByLine(ctx, "U1", "Taro", nil)
	require.NoError(t, err)

	address := "  Taro@Example.com "
	resp, err := svc.UpdateProfile(ctx, user.UpdateProfileRequest{UserID: u.ID, Email: &address})
	require.NoError(t, err)
	require.NotNil(t, resp.Email)
	assert.Equal(t, "taro@example.com", *resp.Email)
	assert.False(t, resp.EmailVerified)

	require.Len(t, mailer.verifications, 1)
	link := mailer.verifications[0]
	require.True(t, strings.HasPrefix(link, "https://app.example.com/verify-email?token="))

	verified, err := svc.VerifyEmail(ctx, user.VerifyEmailRequest{Token: strings.TrimPrefix(link, "https://app.example.com/verify-email?token=")})
	require.NoError(t, err)
	assert.True(t, verified.EmailVerified)

	_, err = svc.VerifyEmail(ctx, user.VerifyEmailRequest{Token: "used"})
	assert.ErrorIs(t, err, user.ErrInvalidVerificationLink)

	// Saving the same address again keeps it verified.
	resp, err = svc.UpdateProfile(ctx, user.UpdateProfileRequest{UserID: u.ID, Email: &address})
	require.NoError(t, err)
	assert.True(t, resp.EmailVerified)
	assert.Len(t, mailer.verifications, 1)
}

func TestUpdateProfile_SendFailureStillStoresEmail(t *testing.T) {
	ctx := context.Background()
	repo := newFakeUserRepo()
	svc := NewUserService(repo, &fakeEmailService{err: errors.New("smtp down")}, "")

	u, err := svc.FindOrCreateByLine(ctx, "U1", "Taro", nil)
	require.NoError(t, err)

	address := "taro@example.com"
	resp, err := svc.UpdateProfile(ctx, user.UpdateProfileRequest{UserID: u.ID, Email: &address})
	require.NoError(t, err)
	assert.Equal(t, address, *resp.Email)
}

func TestUpdateProfile_Validation(t *testing.T) {
	svc := NewUserService(newFakeUserRepo(), &fakeEmailService{}, "")

	blank := "   "
	_, err := svc.UpdateProfile(context.Background(), user.UpdateProfileRequest{UserID: "x", DisplayName: &blank})

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "display_name")
}
