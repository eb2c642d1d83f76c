package company

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/kintai-line-go/internal/domain/company"
	"github.com/cmlabs-hris/kintai-line-go/internal/domain/user"
)

type fakeTransactor struct{}

func (fakeTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeCompanyRepo struct {
	companies map[string]company.Company
	// takenCodes forces the next N inserts to collide.
	takenCodes int
	seq        int
}

func (f *fakeCompanyRepo) Create(ctx context.Context, c company.Company) (company.Company, error) {
	if f.takenCodes > 0 {
		f.takenCodes--
		return company.Company{}, company.ErrJoinCodeTaken
	}
	f.seq++
	c.ID = fmt.Sprintf("c%d", f.seq)
	c.CreatedAt = time.Now()
	f.companies[c.ID] = c
	return c, nil
}

func (f *fakeCompanyRepo) GetByID(ctx context.Context, id string) (company.Company, error) {
	c, ok := f.companies[id]
	if !ok {
		return company.Company{}, company.ErrCompanyNotFound
	}
	return c, nil
}

func (f *fakeCompanyRepo) GetByJoinCode(ctx context.Context, code string) (company.Company, error) {
	for _, c := range f.companies {
		if c.JoinCode == code {
			return c, nil
		}
	}
	return company.Company{}, company.ErrCompanyNotFound
}

func (f *fakeCompanyRepo) SetOwner(ctx context.Context, companyID, ownerID string) error {
	c := f.companies[companyID]
	c.OwnerID = &ownerID
	f.companies[companyID] = c
	return nil
}

func (f *fakeCompanyRepo) UpdateJoinCode(ctx context.Context, companyID, code string) (company.Company, error) {
	if f.takenCodes > 0 {
		f.takenCodes--
		return company.Company{}, company.ErrJoinCodeTaken
	}
	c := f.companies[companyID]
	c.JoinCode = code
	f.companies[companyID] = c
	return c, nil
}

type fakeMembershipRepo struct {
	members []company.Membership
}

func (f *fakeMembershipRepo) Create(ctx context.Context, m company.Membership) (company.Membership, error) {
	for _, existing := range f.members {
		if existing.UserID == m.UserID && existing.CompanyID == m.CompanyID {
			return company.Membership{}, company.ErrAlreadyLinked
		}
	}
	m.ID = fmt.Sprintf("m%d", len(f.members)+1)
	m.CreatedAt = time.Date(2024, 1, 1, 0, 0, len(f.members), 0, time.UTC)
	f.members = append(f.members, m)
	return m, nil
}

func (f *fakeMembershipRepo) Get(ctx context.Context, userID, companyID string) (*company.Membership, error) {
	for _, m := range f.members {
		if m.UserID == userID && m.CompanyID == companyID {
			found := m
			return &found, nil
		}
	}
	return nil, nil
}

func (f *fakeMembershipRepo) ListByUser(ctx context.Context, userID string) ([]company.Membership, error) {
	var out []company.Membership
	for _, m := range f.members {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeMembershipRepo) ListByCompany(ctx context.Context, companyID string) ([]company.Membership, error) {
	var out []company.Membership
	for _, m := range f.members {
		if m.CompanyID == companyID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMembershipRepo) SetAdmin(ctx context.Context, userID, companyID string, isAdmin bool) (company.Membership, error) {
	for i, m := range f.members {
		if m.UserID == userID && m.CompanyID == companyID {
			f.members[i].IsAdmin = isAdmin
			return f.members[i], nil
		}
	}
	return company.Membership{}, company.ErrMembershipNotFound
}

func (f *fakeMembershipRepo) CountAdmins(ctx context.Context, companyID string) (int, error) {
	n := 0
	for _, m := range f.members {
		if m.CompanyID == companyID && m.IsAdmin {
			n++
		}
	}
	return n, nil
}

func (f *fakeMembershipRepo) ListAdminEmails(ctx context.Context, companyID string) ([]string, error) {
	return nil, nil
}

type fakeUserService struct {
	user.UserService
}

func (fakeUserService) FindOrCreateByLine(ctx context.Context, lineUserID, displayName string, picture *string) (user.User, error) {
	return user.User{ID: "user-" + lineUserID, LineUserID: lineUserID, DisplayName: displayName}, nil
}

func newTestService() (*CompanyServiceImpl, *fakeCompanyRepo, *fakeMembershipRepo) {
	companies := &fakeCompanyRepo{companies: map[string]company.Company{}}
	members := &fakeMembershipRepo{}
	svc := NewCompanyService(fakeTransactor{}, companies, members, fakeUserService{}).(*CompanyServiceImpl)
	return svc, companies, members
}

func TestCreate_MakesCallerAdminAndOwner(t *testing.T) {
	svc, companies, members := newTestService()
	companies.takenCodes = 2

	resp, err := svc.Create(context.Background(), company.CreateCompanyRequest{UserID: "owner", Name: "  Acme  "})
	require.NoError(t, err)

	assert.Equal(t, "Acme", resp.Name)
	assert.True(t, resp.IsAdmin)
	require.NotNil(t, resp.JoinCode)
	assert.Len(t, *resp.JoinCode, 8)
	require.NotNil(t, resp.OwnerID)
	assert.Equal(t, "owner", *resp.OwnerID)

	require.Len(t, members.members, 1)
	assert.True(t, members.members[0].IsAdmin)
	assert.Equal(t, "owner", *companies.companies[resp.ID].OwnerID)
}

func TestCreate_GivesUpAfterRepeatedCodeCollisions(t *testing.T) {
	svc, companies, _ := newTestService()
	companies.takenCodes = joinCodeAttempts

	_, err := svc.Create(context.Background(), company.CreateCompanyRequest{UserID: "owner", Name: "Acme"})
	assert.ErrorIs(t, err, company.ErrJoinCodeTaken)
}

func TestLink(t *testing.T) {
	svc, _, members := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, company.CreateCompanyRequest{UserID: "owner", Name: "Acme"})
	require.NoError(t, err)

	_, err = svc.Link(ctx, company.LinkRequest{LineUserID: "U1", Code: "ZZZZZZZZ"})
	assert.ErrorIs(t, err, company.ErrCompanyNotFound)

	linked, err := svc.Link(ctx, company.LinkRequest{LineUserID: "U1", Code: " " + *created.JoinCode + " "})
	require.NoError(t, err)
	assert.Equal(t, "Acme", linked.CompanyName)
	assert.False(t, linked.IsAdmin)
	assert.Len(t, members.members, 2)

	_, err = svc.Link(ctx, company.LinkRequest{LineUserID: "U1", Code: *created.JoinCode})
	assert.ErrorIs(t, err, company.ErrAlreadyLinked)
}

func TestGet_HidesJoinCodeFromMembers(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, company.CreateCompanyRequest{UserID: "owner", Name: "Acme"})
	require.NoError(t, err)
	_, err = svc.Link(ctx, company.LinkRequest{LineUserID: "U1", Code: *created.JoinCode})
	require.NoError(t, err)

	asMember, err := svc.Get(ctx, "user-U1", created.ID)
	require.NoError(t, err)
	assert.Nil(t, asMember.JoinCode)

	asAdmin, err := svc.Get(ctx, "owner", created.ID)
	require.NoError(t, err)
	assert.NotNil(t, asAdmin.JoinCode)

	_, err = svc.Get(ctx, "stranger", created.ID)
	assert.ErrorIs(t, err, company.ErrNotMember)

	_, err = svc.ListMembers(ctx, "user-U1", created.ID)
	assert.ErrorIs(t, err, company.ErrAdminRequired)
}

func TestSetAdmin_KeepsLastAdmin(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, company.CreateCompanyRequest{UserID: "owner", Name: "Acme"})
	require.NoError(t, err)
	_, err = svc.Link(ctx, company.LinkRequest{LineUserID: "U1", Code: *created.JoinCode})
	require.NoError(t, err)

	no := false
	yes := true

	_, err = svc.SetAdmin(ctx, company.SetAdminRequest{RequesterID: "owner", CompanyID: created.ID, UserID: "owner", IsAdmin: &no})
	assert.ErrorIs(t, err, company.ErrLastAdmin)

	promoted, err := svc.SetAdmin(ctx, company.SetAdminRequest{RequesterID: "owner", CompanyID: created.ID, UserID: "user-U1", IsAdmin: &yes})
	require.NoError(t, err)
	assert.True(t, promoted.IsAdmin)

	demoted, err := svc.SetAdmin(ctx, company.SetAdminRequest{RequesterID: "user-U1", CompanyID: created.ID, UserID: "owner", IsAdmin: &no})
	require.NoError(t, err)
	assert.False(t, demoted.IsAdmin)

	_, err = svc.SetAdmin(ctx, company.SetAdminRequest{RequesterID: "user-U1", CompanyID: created.ID, UserID: "nobody", IsAdmin: &no})
	assert.ErrorIs(t, err, company.ErrMembershipNotFound)
}

func TestRegenerateJoinCode(t *testing.T) {
	svc, companies, _ := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, company.CreateCompanyRequest{UserID: "owner", Name: "Acme"})
	require.NoError(t, err)

	companies.takenCodes = 1
	resp, err := svc.RegenerateJoinCode(ctx, "owner", created.ID)
	require.NoError(t, err)
	require.NotNil(t, resp.JoinCode)
	assert.Equal(t, *resp.JoinCode, companies.companies[created.ID].JoinCode)
}

func TestPrimaryMembership_EarliestJoined(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.PrimaryMembership(ctx, "user-U1")
	assert.ErrorIs(t, err, company.ErrNoMembership)

	first, err := svc.Create(ctx, company.CreateCompanyRequest{UserID: "owner", Name: "First"})
	require.NoError(t, err)
	second, err := svc.Create(ctx, company.CreateCompanyRequest{UserID: "owner2", Name: "Second"})
	require.NoError(t, err)

	_, err = svc.Link(ctx, company.LinkRequest{LineUserID: "U1", Code: *second.JoinCode})
	require.NoError(t, err)
	_, err = svc.Link(ctx, company.LinkRequest{LineUserID: "U1", Code: *first.JoinCode})
	require.NoError(t, err)

	m, err := svc.PrimaryMembership(ctx, "user-U1")
	require.NoError(t, err)
	assert.Equal(t, second.ID, m.CompanyID)
}
