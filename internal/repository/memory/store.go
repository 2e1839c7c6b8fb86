// Package memory implements every repository in process memory. It backs
// DB_DRIVER=memory for local runs and the HTTP tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"cv-builder/internal/domain/authtoken"
	"cv-builder/internal/domain/profile"
	"cv-builder/internal/domain/section"
	"cv-builder/internal/domain/session"
	"cv-builder/internal/domain/user"

	"github.com/google/uuid"
)

// Store holds all tables behind one lock so that multi-table operations such
// as duplicate and delete are atomic.
type Store struct {
	mu  sync.RWMutex
	now func() time.Time

	users    map[uuid.UUID]user.User
	sessions map[uuid.UUID]session.Session
	tokens   map[string]authtoken.Token
	profiles map[uuid.UUID]profile.Profile

	sections []sectionTable

	experiences    *SectionRepository[section.Experience]
	educations     *SectionRepository[section.Education]
	skills         *SectionRepository[section.Skill]
	languages      *SectionRepository[section.Language]
	certifications *SectionRepository[section.Certification]
	socialNetworks *SectionRepository[section.SocialNetwork]
}

// sectionTable is the type-erased view a Store needs of each section kind.
type sectionTable interface {
	kind() section.Kind
	deleteProfile(profileID uuid.UUID)
	copyProfile(from, to uuid.UUID, now time.Time)
	count(profileID uuid.UUID) int
}

func NewStore() *Store {
	s := &Store{
		now:      time.Now,
		users:    make(map[uuid.UUID]user.User),
		sessions: make(map[uuid.UUID]session.Session),
		tokens:   make(map[string]authtoken.Token),
		profiles: make(map[uuid.UUID]profile.Profile),
	}
	s.experiences = newSectionRepository(s, section.KindExperience, "employment_type",
		func(e *section.Experience) string { return e.EmploymentType })
	s.educations = newSectionRepository(s, section.KindEducation, "degree_level",
		func(e *section.Education) string { return e.DegreeLevel })
	s.skills = newSectionRepository(s, section.KindSkill, "category",
		func(e *section.Skill) string { return e.Category })
	s.languages = newSectionRepository(s, section.KindLanguage, "level",
		func(e *section.Language) string { return e.Level })
	s.certifications = newSectionRepository(s, section.KindCertification, "issuer",
		func(e *section.Certification) string { return e.Issuer })
	s.socialNetworks = newSectionRepository(s, section.KindSocialNetwork, "platform",
		func(e *section.SocialNetwork) string { return e.Platform })
	return s
}

// WithClock replaces the time source; tests use it to order updates.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Users() *UserRepository           { return &UserRepository{s: s} }
func (s *Store) Sessions() *SessionRepository     { return &SessionRepository{s: s} }
func (s *Store) AuthTokens() *AuthTokenRepository { return &AuthTokenRepository{s: s} }
func (s *Store) Profiles() *ProfileRepository     { return &ProfileRepository{s: s} }

func (s *Store) Experiences() *SectionRepository[section.Experience]       { return s.experiences }
func (s *Store) Educations() *SectionRepository[section.Education]         { return s.educations }
func (s *Store) Skills() *SectionRepository[section.Skill]                 { return s.skills }
func (s *Store) Languages() *SectionRepository[section.Language]           { return s.languages }
func (s *Store) Certifications() *SectionRepository[section.Certification] { return s.certifications }
func (s *Store) SocialNetworks() *SectionRepository[section.SocialNetwork] { return s.socialNetworks }

// UserRepository implements user.Repository.
type UserRepository struct{ s *Store }

func (r *UserRepository) Create(_ context.Context, u user.User) (user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u.Email = user.NormalizeEmail(u.Email)
	for _, existing := range r.s.users {
		if existing.Email == u.Email {
			return user.User{}, user.ErrEmailTaken
		}
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	now := r.s.now()
	u.CreatedAt, u.UpdatedAt = now, now
	r.s.users[u.ID] = u
	return u, nil
}

func (r *UserRepository) GetByID(_ context.Context, id uuid.UUID) (user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	email = user.NormalizeEmail(email)
	for _, u := range r.s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (r *UserRepository) update(id uuid.UUID, fn func(u *user.User)) (user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	fn(&u)
	r.s.users[id] = u
	return u, nil
}

func (r *UserRepository) UpdateLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.update(id, func(u *user.User) { u.LastLoginAt = &at })
	return err
}

func (r *UserRepository) UpdatePassword(_ context.Context, id uuid.UUID, passwordHash string) error {
	_, err := r.update(id, func(u *user.User) {
		u.PasswordHash = passwordHash
		u.UpdatedAt = r.s.now()
	})
	return err
}

func (r *UserRepository) UpdateName(_ context.Context, id uuid.UUID, firstName, lastName string) (user.User, error) {
	return r.update(id, func(u *user.User) {
		u.FirstName, u.LastName = firstName, lastName
		u.UpdatedAt = r.s.now()
	})
}

func (r *UserRepository) MarkVerified(_ context.Context, id uuid.UUID) error {
	_, err := r.update(id, func(u *user.User) {
		u.IsVerified = true
		u.UpdatedAt = r.s.now()
	})
	return err
}

// SetPremium is not part of user.Repository; the seeder and tests use it.
func (r *UserRepository) SetPremium(id uuid.UUID, premium bool) error {
	_, err := r.update(id, func(u *user.User) { u.IsPremium = premium })
	return err
}

// SetActive is not part of user.Repository; tests use it to deactivate accounts.
func (r *UserRepository) SetActive(id uuid.UUID, active bool) error {
	_, err := r.update(id, func(u *user.User) { u.IsActive = active })
	return err
}

// SessionRepository implements session.Repository.
type SessionRepository struct{ s *Store }

func (r *SessionRepository) Create(_ context.Context, sess session.Session) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = r.s.now()
	}
	r.s.sessions[sess.ID] = sess
	return nil
}

func (r *SessionRepository) GetByID(_ context.Context, id uuid.UUID) (session.Session, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	sess, ok := r.s.sessions[id]
	if !ok {
		return session.Session{}, session.ErrNotFound
	}
	return sess, nil
}

func (r *SessionRepository) RotateRefreshHash(_ context.Context, id uuid.UUID, oldHash, newHash string, expiresAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sess, ok := r.s.sessions[id]
	if !ok || sess.IsRevoked() || sess.RefreshTokenHash != oldHash {
		return session.ErrRefreshMismatch
	}
	sess.RefreshTokenHash = newHash
	sess.ExpiresAt = expiresAt
	sess.LastActivityAt = r.s.now()
	r.s.sessions[id] = sess
	return nil
}

func (r *SessionRepository) Revoke(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sess, ok := r.s.sessions[id]
	if !ok || sess.IsRevoked() {
		return nil
	}
	now := r.s.now()
	sess.RevokedAt = &now
	r.s.sessions[id] = sess
	return nil
}

func (r *SessionRepository) RevokeAllForUser(_ context.Context, userID uuid.UUID, keep uuid.UUID) ([]uuid.UUID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := r.s.now()
	out := make([]uuid.UUID, 0)
	for id, sess := range r.s.sessions {
		if sess.UserID != userID || id == keep || sess.IsRevoked() {
			continue
		}
		sess.RevokedAt = &now
		r.s.sessions[id] = sess
		out = append(out, id)
	}
	return out, nil
}

func (r *SessionRepository) Touch(_ context.Context, id uuid.UUID, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sess, ok := r.s.sessions[id]
	if !ok {
		return nil
	}
	sess.LastActivityAt = at
	r.s.sessions[id] = sess
	return nil
}

// AuthTokenRepository implements authtoken.Repository.
type AuthTokenRepository struct{ s *Store }

func (r *AuthTokenRepository) Create(_ context.Context, t authtoken.Token) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	t.CreatedAt = r.s.now()
	r.s.tokens[t.TokenHash] = t
	return nil
}

func (r *AuthTokenRepository) Consume(_ context.Context, purpose authtoken.Purpose, tokenHash string, now time.Time) (authtoken.Token, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tokens[tokenHash]
	if !ok || t.Purpose != purpose || t.UsedAt != nil || !t.ExpiresAt.After(now) {
		return authtoken.Token{}, authtoken.ErrInvalid
	}
	t.UsedAt = &now
	r.s.tokens[tokenHash] = t
	return t, nil
}

func (r *AuthTokenRepository) InvalidateForUser(_ context.Context, userID uuid.UUID, purpose authtoken.Purpose, now time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for k, t := range r.s.tokens {
		if t.UserID == userID && t.Purpose == purpose && t.UsedAt == nil {
			t.UsedAt = &now
			r.s.tokens[k] = t
		}
	}
	return nil
}

// ProfileRepository implements profile.Repository.
type ProfileRepository struct{ s *Store }

func (r *ProfileRepository) ListByUser(_ context.Context, userID uuid.UUID) ([]profile.Profile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := r.s.userProfiles(userID)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].IsDefault != out[j].IsDefault {
			return out[i].IsDefault
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

func (s *Store) userProfiles(userID uuid.UUID) []profile.Profile {
	out := make([]profile.Profile, 0)
	for _, p := range s.profiles {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out
}

func (r *ProfileRepository) GetByID(_ context.Context, id uuid.UUID) (profile.Profile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.profiles[id]
	if !ok {
		return profile.Profile{}, profile.ErrNotFound
	}
	return p, nil
}

func (r *ProfileRepository) GetByIDAndUser(_ context.Context, id, userID uuid.UUID) (profile.Profile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.profiles[id]
	if !ok || p.UserID != userID {
		return profile.Profile{}, profile.ErrNotFound
	}
	return p, nil
}

func (r *ProfileRepository) Create(_ context.Context, p profile.Profile) (profile.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.IsDefault = len(r.s.userProfiles(p.UserID)) == 0
	p.CompletionPercentage, p.DownloadCount = 0, 0
	now := r.s.now()
	p.CreatedAt, p.UpdatedAt = now, now
	r.s.profiles[p.ID] = p
	return p, nil
}

func (r *ProfileRepository) mutate(id, userID uuid.UUID, fn func(p *profile.Profile)) (profile.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.profiles[id]
	if !ok || p.UserID != userID {
		return profile.Profile{}, profile.ErrNotFound
	}
	fn(&p)
	p.UpdatedAt = r.s.now()
	r.s.profiles[id] = p
	return p, nil
}

func (r *ProfileRepository) Update(_ context.Context, in profile.Profile) (profile.Profile, error) {
	return r.mutate(in.ID, in.UserID, func(p *profile.Profile) {
		p.Name = in.Name
		p.TemplateID = in.TemplateID
		p.ColorSchemeID = in.ColorSchemeID
		p.Language = in.Language
		p.IsPublic = in.IsPublic
	})
}

func (r *ProfileRepository) UpdatePersonal(_ context.Context, id, userID uuid.UUID, personal profile.Personal) (profile.Profile, error) {
	return r.mutate(id, userID, func(p *profile.Profile) { p.Personal = personal })
}

func (r *ProfileRepository) UpdateAppearance(_ context.Context, id, userID uuid.UUID, templateID, colorSchemeID string) (profile.Profile, error) {
	return r.mutate(id, userID, func(p *profile.Profile) {
		p.TemplateID = templateID
		p.ColorSchemeID = colorSchemeID
	})
}

func (r *ProfileRepository) Delete(_ context.Context, id, userID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.profiles[id]
	if !ok || p.UserID != userID {
		return profile.ErrNotFound
	}
	delete(r.s.profiles, id)
	for _, t := range r.s.sections {
		t.deleteProfile(id)
	}

	if !p.IsDefault {
		return nil
	}
	var next *profile.Profile
	for _, other := range r.s.userProfiles(userID) {
		o := other
		if next == nil || o.UpdatedAt.After(next.UpdatedAt) {
			next = &o
		}
	}
	if next != nil {
		next.IsDefault = true
		r.s.profiles[next.ID] = *next
	}
	return nil
}

func (r *ProfileRepository) SetDefault(_ context.Context, id, userID uuid.UUID) (profile.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	target, ok := r.s.profiles[id]
	if !ok || target.UserID != userID {
		return profile.Profile{}, profile.ErrNotFound
	}
	for pid, p := range r.s.profiles {
		if p.UserID == userID && pid != id && p.IsDefault {
			p.IsDefault = false
			r.s.profiles[pid] = p
		}
	}
	target.IsDefault = true
	target.UpdatedAt = r.s.now()
	r.s.profiles[id] = target
	return target, nil
}

func (r *ProfileRepository) Duplicate(_ context.Context, id, userID uuid.UUID, name string) (profile.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	src, ok := r.s.profiles[id]
	if !ok || src.UserID != userID {
		return profile.Profile{}, profile.ErrNotFound
	}

	now := r.s.now()
	cp := src
	cp.ID = uuid.New()
	cp.Name = name
	cp.IsDefault = false
	cp.IsPublic = false
	cp.DownloadCount = 0
	cp.CreatedAt, cp.UpdatedAt = now, now
	r.s.profiles[cp.ID] = cp

	for _, t := range r.s.sections {
		t.copyProfile(id, cp.ID, now)
	}
	return cp, nil
}

func (r *ProfileRepository) UpdateCompletion(_ context.Context, id uuid.UUID, percentage int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.profiles[id]
	if !ok {
		return profile.ErrNotFound
	}
	p.CompletionPercentage = percentage
	r.s.profiles[id] = p
	return nil
}

func (r *ProfileRepository) IncrementDownloads(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.profiles[id]
	if !ok {
		return profile.ErrNotFound
	}
	p.DownloadCount++
	r.s.profiles[id] = p
	return nil
}

func (r *ProfileRepository) Stats(_ context.Context, userID uuid.UUID) (profile.Stats, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var (
		st  profile.Stats
		sum int
	)
	for _, p := range r.s.userProfiles(userID) {
		st.Total++
		if p.IsPublic {
			st.Public++
		}
		if p.IsDefault {
			id := p.ID
			st.DefaultProfileID = &id
		}
		st.TotalDownloads += p.DownloadCount
		sum += p.CompletionPercentage
	}
	if st.Total > 0 {
		st.AverageCompletion = float64(sum) / float64(st.Total)
	}
	return st, nil
}

func (r *ProfileRepository) SectionCounts(_ context.Context, id uuid.UUID) (profile.SectionCounts, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var c profile.SectionCounts
	for _, t := range r.s.sections {
		n := t.count(id)
		switch t.kind() {
		case section.KindExperience:
			c.Experience = n
		case section.KindEducation:
			c.Education = n
		case section.KindSkill:
			c.Skills = n
		case section.KindLanguage:
			c.Languages = n
		case section.KindCertification:
			c.Certifications = n
		case section.KindSocialNetwork:
			c.SocialNetworks = n
		}
	}
	return c, nil
}
