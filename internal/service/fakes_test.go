package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"dacsanviet/internal/entity"
	"dacsanviet/internal/repository"

	"github.com/google/uuid"
)

type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFixedClock(now time.Time) *fixedClock {
	return &fixedClock{now: now}
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) {
	return "hashed:" + password, nil
}

func (plainHasher) Verify(hash string, password string) bool {
	return hash == "hashed:"+password
}

type sentMail struct {
	To       string
	Code     string
	Purpose  entity.OTPPurpose
	Payload  map[string]string
	FullName string
}

type fakeEmailSender struct {
	mu       sync.Mutex
	otps     []sentMail
	welcomes []string
	failOTP  bool
}

func (s *fakeEmailSender) SendOTP(_ context.Context, to, code, fullName string, purpose entity.OTPPurpose, payload map[string]string) error {
	if s.failOTP {
		return context.DeadlineExceeded
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.otps = append(s.otps, sentMail{To: to, Code: code, Purpose: purpose, Payload: payload, FullName: fullName})
	return nil
}

func (s *fakeEmailSender) SendWelcome(_ context.Context, to, _, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.welcomes = append(s.welcomes, to)
	return nil
}

func (s *fakeEmailSender) lastOTP() *sentMail {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.otps) == 0 {
		return nil
	}
	return &s.otps[len(s.otps)-1]
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*entity.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = time.Now()
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email && user.IsActive {
			copied := *user
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindByUsername(_ context.Context, username string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Username == username && user.IsActive {
			copied := *user
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) EmailExists(_ context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeUserRepo) UsernameExists(_ context.Context, username string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeUserRepo) UpdateFields(_ context.Context, id uuid.UUID, update repository.UserUpdate) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	if update.Email != nil {
		user.Email = *update.Email
	}
	if update.PasswordHash != nil {
		user.PasswordHash = *update.PasswordHash
	}
	if update.FullName != nil {
		user.FullName = *update.FullName
	}
	if update.PhoneNumber != nil {
		user.PhoneNumber = update.PhoneNumber
	}
	if update.Role != nil {
		user.Role = *update.Role
	}
	if update.IsActive != nil {
		user.IsActive = *update.IsActive
	}
	if update.AvatarURL != nil {
		user.AvatarURL = update.AvatarURL
	}
	user.UpdatedAt = time.Now()
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) Deactivate(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user, ok := r.users[id]; ok {
		user.IsActive = false
	}
	return nil
}

func (r *fakeUserRepo) List(_ context.Context, limit, offset int) ([]entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]entity.User, 0, len(r.users))
	for _, user := range r.users {
		all = append(all, *user)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.Before(all[j].CreatedAt) })
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (r *fakeUserRepo) Search(_ context.Context, query string, limit int) ([]entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	query = strings.ToLower(query)
	var out []entity.User
	for _, user := range r.users {
		if strings.Contains(strings.ToLower(user.Username), query) ||
			strings.Contains(strings.ToLower(user.Email), query) ||
			strings.Contains(strings.ToLower(user.FullName), query) {
			out = append(out, *user)
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *fakeUserRepo) FindByRole(_ context.Context, role entity.UserRole, limit int) ([]entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.User
	for _, user := range r.users {
		if user.Role == role {
			out = append(out, *user)
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *fakeUserRepo) Stats(_ context.Context) (repository.UserStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var stats repository.UserStats
	for _, user := range r.users {
		stats.TotalUsers++
		if user.IsActive {
			stats.ActiveUsers++
		}
		switch user.Role {
		case entity.UserRoleAdmin:
			stats.AdminUsers++
		case entity.UserRoleStaff:
			stats.StaffUsers++
		default:
			stats.RegularUsers++
		}
	}
	return stats, nil
}

type fakeOTPRepo struct {
	mu    sync.Mutex
	codes []*entity.OTPCode
	clock *fixedClock
}

func newFakeOTPRepo(clock *fixedClock) *fakeOTPRepo {
	return &fakeOTPRepo{clock: clock}
}

func (r *fakeOTPRepo) Create(_ context.Context, code *entity.OTPCode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.create(code)
	return nil
}

func (r *fakeOTPRepo) create(code *entity.OTPCode) {
	if code.ID == uuid.Nil {
		code.ID = uuid.New()
	}
	if code.CreatedAt.IsZero() {
		code.CreatedAt = r.clock.Now()
	}
	copied := *code
	r.codes = append(r.codes, &copied)
}

func (r *fakeOTPRepo) IssueExclusive(_ context.Context, code *entity.OTPCode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.codes {
		if existing.Email == code.Email && existing.Purpose == code.Purpose && !existing.IsUsed {
			existing.IsUsed = true
		}
	}
	r.create(code)
	return nil
}

func (r *fakeOTPRepo) FindValid(_ context.Context, email, code string, purpose entity.OTPPurpose, now time.Time) (*entity.OTPCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var newest *entity.OTPCode
	for _, existing := range r.codes {
		if existing.Email != email || existing.Code != code || existing.Purpose != purpose {
			continue
		}
		if existing.IsUsed || !existing.ExpiresAt.After(now) {
			continue
		}
		if newest == nil || existing.CreatedAt.After(newest.CreatedAt) {
			newest = existing
		}
	}
	if newest == nil {
		return nil, nil
	}
	copied := *newest
	return &copied, nil
}

func (r *fakeOTPRepo) MarkUsed(_ context.Context, id uuid.UUID, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.codes {
		if existing.ID == id && existing.UsedAt == nil {
			used := now
			existing.IsUsed = true
			existing.UsedAt = &used
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeOTPRepo) Invalidate(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.codes {
		if existing.ID == id {
			existing.IsUsed = true
		}
	}
	return nil
}

func (r *fakeOTPRepo) InvalidateOutstanding(_ context.Context, email string, purpose entity.OTPPurpose) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, existing := range r.codes {
		if existing.Email == email && existing.Purpose == purpose && !existing.IsUsed {
			existing.IsUsed = true
			count++
		}
	}
	return count, nil
}

func (r *fakeOTPRepo) CountSince(_ context.Context, email string, purpose entity.OTPPurpose, since time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, existing := range r.codes {
		if existing.Email == email && existing.Purpose == purpose && existing.CreatedAt.After(since) {
			count++
		}
	}
	return count, nil
}

func (r *fakeOTPRepo) SweepExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := now.Add(-24 * time.Hour)
	var kept []*entity.OTPCode
	var removed int64
	for _, existing := range r.codes {
		expired := existing.ExpiresAt.Before(now)
		staleConsumed := existing.IsUsed && existing.UsedAt != nil && existing.UsedAt.Before(cutoff)
		if expired || staleConsumed {
			removed++
			continue
		}
		kept = append(kept, existing)
	}
	r.codes = kept
	return removed, nil
}

func (r *fakeOTPRepo) find(id uuid.UUID) *entity.OTPCode {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.codes {
		if existing.ID == id {
			copied := *existing
			return &copied
		}
	}
	return nil
}

func (r *fakeOTPRepo) all() []entity.OTPCode {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]entity.OTPCode, 0, len(r.codes))
	for _, existing := range r.codes {
		out = append(out, *existing)
	}
	return out
}

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions []*entity.Session
	users    *fakeUserRepo
}

func newFakeSessionRepo(users *fakeUserRepo) *fakeSessionRepo {
	return &fakeSessionRepo{users: users}
}

func (r *fakeSessionRepo) Create(_ context.Context, session *entity.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	session.CreatedAt = time.Now()
	copied := *session
	r.sessions = append(r.sessions, &copied)
	return nil
}

func (r *fakeSessionRepo) FindBySessionID(ctx context.Context, sessionID string, now time.Time) (*entity.Session, error) {
	r.mu.Lock()
	var found *entity.Session
	for _, session := range r.sessions {
		if session.SessionID == sessionID && session.IsActive && session.ExpiresAt.After(now) {
			copied := *session
			found = &copied
			break
		}
	}
	r.mu.Unlock()
	if found == nil {
		return nil, nil
	}
	if r.users != nil {
		if user, _ := r.users.FindByID(ctx, found.UserID); user != nil {
			found.User = *user
		}
	}
	return found, nil
}

func (r *fakeSessionRepo) FindByUserID(_ context.Context, userID uuid.UUID, now time.Time) ([]entity.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Session
	for _, session := range r.sessions {
		if session.UserID == userID && session.IsActive && session.ExpiresAt.After(now) {
			out = append(out, *session)
		}
	}
	return out, nil
}

func (r *fakeSessionRepo) FindAll(_ context.Context, limit, offset int) ([]entity.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]entity.Session, 0, len(r.sessions))
	for _, session := range r.sessions {
		out = append(out, *session)
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeSessionRepo) FindByIP(_ context.Context, ip string, limit int) ([]entity.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Session
	for _, session := range r.sessions {
		if session.IPAddress != nil && *session.IPAddress == ip {
			out = append(out, *session)
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *fakeSessionRepo) Revoke(_ context.Context, sessionID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, session := range r.sessions {
		if session.SessionID == sessionID && session.IsActive {
			session.IsActive = false
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeSessionRepo) RevokeAllForUser(_ context.Context, userID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, session := range r.sessions {
		if session.UserID == userID && session.IsActive {
			session.IsActive = false
			count++
		}
	}
	return count, nil
}

func (r *fakeSessionRepo) SweepExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var kept []*entity.Session
	var removed int64
	for _, session := range r.sessions {
		if session.ExpiresAt.Before(now) {
			removed++
			continue
		}
		kept = append(kept, session)
	}
	r.sessions = kept
	return removed, nil
}

func (r *fakeSessionRepo) Stats(_ context.Context, now time.Time) (repository.SessionStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var stats repository.SessionStats
	for _, session := range r.sessions {
		stats.TotalSessions++
		if session.IsActive && session.ExpiresAt.After(now) {
			stats.ActiveSessions++
		} else {
			stats.ExpiredSessions++
		}
	}
	return stats, nil
}

func (r *fakeSessionRepo) activeCount(userID uuid.UUID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, session := range r.sessions {
		if session.UserID == userID && session.IsActive {
			count++
		}
	}
	return count
}

// fakeUnitOfWork hands the same fakes to the callback. There is no rollback;
// tests that need failure isolation assert the error surfaces before any
// mutation happens.
type fakeUnitOfWork struct {
	repos repository.RepositorySet
}

func (u fakeUnitOfWork) Do(_ context.Context, fn func(r repository.RepositorySet) error) error {
	return fn(u.repos)
}
