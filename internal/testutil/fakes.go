// Package testutil provides in-memory repositories and collaborators for
// service tests.
package testutil

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cmlabs-hris/kintai-line-go/internal/domain/attendance"
	"github.com/cmlabs-hris/kintai-line-go/internal/domain/changerequest"
	"github.com/cmlabs-hris/kintai-line-go/internal/domain/company"
	"github.com/cmlabs-hris/kintai-line-go/internal/domain/notification"
	"github.com/cmlabs-hris/kintai-line-go/internal/domain/share"
	"github.com/cmlabs-hris/kintai-line-go/internal/domain/user"
)

// Transactor runs fn directly.
type Transactor struct{}

func (Transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// Clock is a settable time source.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(now time.Time) *Clock {
	return &Clock{now: now}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Set(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// Dispatcher records dispatched events.
type Dispatcher struct {
	mu     sync.Mutex
	Events []notification.Event
}

func (d *Dispatcher) Dispatch(event notification.Event) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Events = append(d.Events, event)
}

func (d *Dispatcher) Types() []notification.EventType {
	d.mu.Lock()
	defer d.mu.Unlock()
	types := make([]notification.EventType, 0, len(d.Events))
	for _, e := range d.Events {
		types = append(types, e.Type)
	}
	return types
}

// ========================================
// USERS AND COMPANIES
// ========================================

// Users implements the lookups of user.UserRepository plus Create.
type Users struct {
	user.UserRepository
	mu   sync.Mutex
	ByID map[string]user.User
}

func NewUsers() *Users {
	return &Users{ByID: map[string]user.User{}}
}

func (u *Users) Add(id, lineUserID, name string) user.User {
	u.mu.Lock()
	defer u.mu.Unlock()
	usr := user.User{ID: id, LineUserID: lineUserID, DisplayName: name}
	u.ByID[id] = usr
	return usr
}

func (u *Users) Create(ctx context.Context, usr user.User) (user.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	for _, existing := range u.ByID {
		if existing.LineUserID == usr.LineUserID {
			return user.User{}, user.ErrLineUserExists
		}
	}
	usr.ID = fmt.Sprintf("00000000-0000-0000-0000-%012d", len(u.ByID)+1)
	u.ByID[usr.ID] = usr
	return usr, nil
}

func (u *Users) GetByID(ctx context.Context, id string) (user.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	usr, ok := u.ByID[id]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return usr, nil
}

func (u *Users) GetByLineUserID(ctx context.Context, lineUserID string) (user.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	for _, usr := range u.ByID {
		if usr.LineUserID == lineUserID {
			return usr, nil
		}
	}
	return user.User{}, user.ErrUserNotFound
}

// Companies implements the reads of company.CompanyRepository. Join codes
// are "CODE" followed by the upper-cased company id.
type Companies struct {
	company.CompanyRepository
	mu   sync.Mutex
	ByID map[string]company.Company
}

func NewCompanies() *Companies {
	return &Companies{ByID: map[string]company.Company{}}
}

func (c *Companies) Add(id, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ByID[id] = company.Company{ID: id, Name: name, JoinCode: "CODE" + strings.ToUpper(id)}
}

func (c *Companies) GetByID(ctx context.Context, id string) (company.Company, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	found, ok := c.ByID[id]
	if !ok {
		return company.Company{}, company.ErrCompanyNotFound
	}
	return found, nil
}

func (c *Companies) GetByJoinCode(ctx context.Context, code string) (company.Company, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, found := range c.ByID {
		if found.JoinCode == code {
			return found, nil
		}
	}
	return company.Company{}, company.ErrCompanyNotFound
}

// Memberships is an in-memory company.MembershipRepository.
type Memberships struct {
	mu      sync.Mutex
	members []company.Membership
	emails  map[string]string
}

func NewMemberships() *Memberships {
	return &Memberships{emails: map[string]string{}}
}

// Add registers a membership; joined order follows call order.
func (m *Memberships) Add(userID, companyID string, isAdmin bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.members = append(m.members, company.Membership{
		ID:        fmt.Sprintf("m%d", len(m.members)+1),
		UserID:    userID,
		CompanyID: companyID,
		IsAdmin:   isAdmin,
		CreatedAt: time.Date(2024, 1, 1, 0, 0, len(m.members), 0, time.UTC),
	})
}

// SetVerifiedEmail gives userID a verified address.
func (m *Memberships) SetVerifiedEmail(userID, email string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.emails[userID] = email
}

func (m *Memberships) Create(ctx context.Context, membership company.Membership) (company.Membership, error) {
	if existing, _ := m.Get(ctx, membership.UserID, membership.CompanyID); existing != nil {
		return company.Membership{}, company.ErrAlreadyLinked
	}
	m.Add(membership.UserID, membership.CompanyID, membership.IsAdmin)
	found, _ := m.Get(ctx, membership.UserID, membership.CompanyID)
	return *found, nil
}

func (m *Memberships) Get(ctx context.Context, userID, companyID string) (*company.Membership, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, mem := range m.members {
		if mem.UserID == userID && mem.CompanyID == companyID {
			found := mem
			return &found, nil
		}
	}
	return nil, nil
}

func (m *Memberships) ListByUser(ctx context.Context, userID string) ([]company.Membership, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []company.Membership
	for _, mem := range m.members {
		if mem.UserID == userID {
			out = append(out, mem)
		}
	}
	return out, nil
}

func (m *Memberships) ListByCompany(ctx context.Context, companyID string) ([]company.Membership, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []company.Membership
	for _, mem := range m.members {
		if mem.CompanyID == companyID {
			out = append(out, mem)
		}
	}
	return out, nil
}

func (m *Memberships) SetAdmin(ctx context.Context, userID, companyID string, isAdmin bool) (company.Membership, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, mem := range m.members {
		if mem.UserID == userID && mem.CompanyID == companyID {
			m.members[i].IsAdmin = isAdmin
			return m.members[i], nil
		}
	}
	return company.Membership{}, company.ErrMembershipNotFound
}

func (m *Memberships) CountAdmins(ctx context.Context, companyID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, mem := range m.members {
		if mem.CompanyID == companyID && mem.IsAdmin {
			n++
		}
	}
	return n, nil
}

func (m *Memberships) ListAdminEmails(ctx context.Context, companyID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, mem := range m.members {
		if mem.CompanyID == companyID && mem.IsAdmin {
			if email, ok := m.emails[mem.UserID]; ok {
				out = append(out, email)
			}
		}
	}
	sort.Strings(out)
	return out, nil
}

// ========================================
// ATTENDANCE
// ========================================

// AttendanceRepo is an in-memory attendance.AttendanceRepository keyed by
// (user, company, date) like the database constraint.
type AttendanceRepo struct {
	mu      sync.Mutex
	records map[string]attendance.Attendance
	seq     int
	names   map[string]string

	// BeforeCreate runs before each insert; tests use it to simulate a
	// concurrent insert of the same day.
	BeforeCreate func()
	Creates      int
	Fallbacks    int
}

func NewAttendanceRepo() *AttendanceRepo {
	return &AttendanceRepo{records: map[string]attendance.Attendance{}, names: map[string]string{}}
}

// SetUserName joins name into records of userID.
func (r *AttendanceRepo) SetUserName(userID, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.names[userID] = name
}

func naturalKey(userID, companyID string, date time.Time) string {
	return userID + "/" + companyID + "/" + date.Format("2006-01-02")
}

func (r *AttendanceRepo) withName(a attendance.Attendance) attendance.Attendance {
	if name, ok := r.names[a.UserID]; ok {
		a.UserName = &name
	}
	return a
}

// Seed stores a record directly and returns it with an id.
func (r *AttendanceRepo) Seed(a attendance.Attendance) attendance.Attendance {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	a.ID = fmt.Sprintf("rec-%d", r.seq)
	if a.Status == "" {
		a.Status = attendance.StatusPresent
	}
	r.records[naturalKey(a.UserID, a.CompanyID, a.Date)] = a
	return r.withName(a)
}

func (r *AttendanceRepo) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

func (r *AttendanceRepo) Create(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	if r.BeforeCreate != nil {
		r.BeforeCreate()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	key := naturalKey(a.UserID, a.CompanyID, a.Date)
	if _, ok := r.records[key]; ok {
		return attendance.Attendance{}, attendance.ErrAttendanceExists
	}
	r.seq++
	r.Creates++
	a.ID = fmt.Sprintf("rec-%d", r.seq)
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	r.records[key] = a
	return r.withName(a), nil
}

func (r *AttendanceRepo) find(id, companyID string) (string, attendance.Attendance, bool) {
	for key, a := range r.records {
		if a.ID == id && a.CompanyID == companyID {
			return key, a, true
		}
	}
	return "", attendance.Attendance{}, false
}

func (r *AttendanceRepo) GetByID(ctx context.Context, id, companyID string) (attendance.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, a, ok := r.find(id, companyID)
	if !ok {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}
	return r.withName(a), nil
}

func (r *AttendanceRepo) GetByUserAndDate(ctx context.Context, userID, companyID string, date time.Time) (*attendance.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.records[naturalKey(userID, companyID, date)]
	if !ok {
		return nil, nil
	}
	a = r.withName(a)
	return &a, nil
}

func (r *AttendanceRepo) UpdateTimes(ctx context.Context, id, companyID string, times attendance.Times) (attendance.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key, a, ok := r.find(id, companyID)
	if !ok {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}
	a.Times = times
	a.UpdatedAt = time.Now()
	r.records[key] = a
	return r.withName(a), nil
}

func (r *AttendanceRepo) UpdateTimesByUserAndDate(ctx context.Context, userID, companyID string, date time.Time, times attendance.Times) (attendance.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := naturalKey(userID, companyID, date)
	a, ok := r.records[key]
	if !ok {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}
	r.Fallbacks++
	a.Times = times
	a.UpdatedAt = time.Now()
	r.records[key] = a
	return r.withName(a), nil
}

func (r *AttendanceRepo) UpdateStatus(ctx context.Context, id, companyID string, status attendance.Status) (attendance.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key, a, ok := r.find(id, companyID)
	if !ok {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}
	a.Status = status
	r.records[key] = a
	return r.withName(a), nil
}

func (r *AttendanceRepo) List(ctx context.Context, filter attendance.ListFilter) ([]attendance.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []attendance.Attendance
	for _, a := range r.records {
		if a.CompanyID != filter.CompanyID || a.Date.Before(filter.StartDate) || a.Date.After(filter.EndDate) {
			continue
		}
		if filter.UserID != nil && a.UserID != *filter.UserID {
			continue
		}
		out = append(out, r.withName(a))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].UserID < out[j].UserID
	})
	return out, nil
}

func (r *AttendanceRepo) MarkUnfinishedPartial(ctx context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for key, a := range r.records {
		if !a.Date.Before(before) || a.Status != attendance.StatusPresent {
			continue
		}
		if a.ClockIn == nil || a.ClockOut != nil {
			continue
		}
		a.Status = attendance.StatusPartial
		a.UpdatedAt = time.Now()
		r.records[key] = a
		n++
	}
	return n, nil
}

// ========================================
// CHANGE REQUESTS
// ========================================

type ChangeRequestRepo struct {
	mu       sync.Mutex
	requests map[string]changerequest.ChangeRequest
	seq      int
}

func NewChangeRequestRepo() *ChangeRequestRepo {
	return &ChangeRequestRepo{requests: map[string]changerequest.ChangeRequest{}}
}

func (r *ChangeRequestRepo) Create(ctx context.Context, cr changerequest.ChangeRequest) (changerequest.ChangeRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.requests {
		if existing.Status == changerequest.StatusPending && existing.UserID == cr.UserID &&
			existing.CompanyID == cr.CompanyID && existing.RequestDate.Equal(cr.RequestDate) {
			return changerequest.ChangeRequest{}, changerequest.ErrDuplicatePending
		}
	}
	r.seq++
	cr.ID = fmt.Sprintf("cr-%d", r.seq)
	cr.Status = changerequest.StatusPending
	cr.CreatedAt = time.Now()
	cr.UpdatedAt = cr.CreatedAt
	r.requests[cr.ID] = cr
	return cr, nil
}

func (r *ChangeRequestRepo) GetByID(ctx context.Context, id string) (changerequest.ChangeRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cr, ok := r.requests[id]
	if !ok {
		return changerequest.ChangeRequest{}, changerequest.ErrChangeRequestNotFound
	}
	return cr, nil
}

func (r *ChangeRequestRepo) ExistsPending(ctx context.Context, userID, companyID string, date time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, cr := range r.requests {
		if cr.Status == changerequest.StatusPending && cr.UserID == userID &&
			cr.CompanyID == companyID && cr.RequestDate.Equal(date) {
			return true, nil
		}
	}
	return false, nil
}

func (r *ChangeRequestRepo) List(ctx context.Context, filter changerequest.ListFilter) ([]changerequest.ChangeRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []changerequest.ChangeRequest
	for _, cr := range r.requests {
		if cr.CompanyID != filter.CompanyID {
			continue
		}
		if filter.UserID != nil && cr.UserID != *filter.UserID {
			continue
		}
		if filter.Status != nil && cr.Status != *filter.Status {
			continue
		}
		out = append(out, cr)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *ChangeRequestRepo) MarkReviewed(ctx context.Context, id string, status changerequest.Status, reviewerID string, reviewedAt time.Time, comment *string) (changerequest.ChangeRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cr, ok := r.requests[id]
	if !ok {
		return changerequest.ChangeRequest{}, changerequest.ErrChangeRequestNotFound
	}
	if cr.Status != changerequest.StatusPending {
		return changerequest.ChangeRequest{}, changerequest.ErrAlreadyProcessed
	}
	cr.Status = status
	cr.ReviewerID = &reviewerID
	cr.ReviewedAt = &reviewedAt
	cr.ReviewComment = comment
	r.requests[id] = cr
	return cr, nil
}

func (r *ChangeRequestRepo) DeletePending(ctx context.Context, id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cr, ok := r.requests[id]
	if !ok || cr.UserID != userID || cr.Status != changerequest.StatusPending {
		return changerequest.ErrChangeRequestNotFound
	}
	delete(r.requests, id)
	return nil
}

// ========================================
// SHARES
// ========================================

type ShareRepo struct {
	mu     sync.Mutex
	shares map[string]share.Share
	seq    int
}

func NewShareRepo() *ShareRepo {
	return &ShareRepo{shares: map[string]share.Share{}}
}

func (r *ShareRepo) Create(ctx context.Context, s share.Share) (share.Share, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.shares {
		if existing.Token == s.Token ||
			(existing.UserID == s.UserID && existing.CompanyID == s.CompanyID && existing.YearMonth == s.YearMonth) {
			return share.Share{}, share.ErrShareConflict
		}
	}
	r.seq++
	s.ID = fmt.Sprintf("share-%d", r.seq)
	s.CreatedAt = time.Now()
	r.shares[s.ID] = s
	return s, nil
}

func (r *ShareRepo) GetByID(ctx context.Context, id string) (share.Share, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.shares[id]
	if !ok {
		return share.Share{}, share.ErrShareNotFound
	}
	return s, nil
}

func (r *ShareRepo) GetByToken(ctx context.Context, token string) (share.Share, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.shares {
		if s.Token == token {
			return s, nil
		}
	}
	return share.Share{}, share.ErrShareNotFound
}

func (r *ShareRepo) List(ctx context.Context, filter share.ListFilter) ([]share.Share, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []share.Share
	for _, s := range r.shares {
		if s.CompanyID != filter.CompanyID {
			continue
		}
		if filter.UserID != nil && s.UserID != *filter.UserID {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *ShareRepo) DeleteByKey(ctx context.Context, userID, companyID, yearMonth string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, s := range r.shares {
		if s.UserID == userID && s.CompanyID == companyID && s.YearMonth == yearMonth {
			delete(r.shares, id)
		}
	}
	return nil
}

func (r *ShareRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.shares[id]; !ok {
		return share.ErrShareNotFound
	}
	delete(r.shares, id)
	return nil
}
