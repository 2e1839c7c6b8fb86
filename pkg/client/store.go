package client

import (
	"sync"

	"github.com/google/uuid"

	"cv-builder/internal/catalog"
	"cv-builder/internal/domain/profile"
)

// Session is the signed-in user and token pair.
type Session struct {
	User         User
	AccessToken  string
	RefreshToken string
}

// Theme is the presentation of the current profile.
type Theme struct {
	TemplateID  string
	ColorScheme catalog.ColorScheme
}

// Store mirrors server state seen by a Client. Readers get copies and may
// call it from any goroutine.
type Store struct {
	mu        sync.RWMutex
	session   *Session
	profiles  []profile.Profile
	currentID uuid.UUID
	theme     Theme

	listeners []func()
}

func NewStore() *Store {
	s := &Store{}
	s.theme = themeFor(catalog.DefaultTemplateID, catalog.DefaultColorSchemeID)
	return s
}

// OnChange registers fn to run after every mutation, outside the lock.
func (s *Store) OnChange(fn func()) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

func (s *Store) update(fn func()) {
	s.mu.Lock()
	fn()
	listeners := append([]func(){}, s.listeners...)
	s.mu.Unlock()
	for _, l := range listeners {
		l()
	}
}

func (s *Store) Session() (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return Session{}, false
	}
	return *s.session, true
}

func (s *Store) IsAuthenticated() bool {
	_, ok := s.Session()
	return ok
}

func (s *Store) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return ""
	}
	return s.session.AccessToken
}

func (s *Store) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return ""
	}
	return s.session.RefreshToken
}

func (s *Store) SetSession(sess Session) {
	s.update(func() { s.session = &sess })
}

func (s *Store) SetUser(u User) {
	s.update(func() {
		if s.session != nil {
			s.session.User = u
		}
	})
}

// Clear forgets the session and every mirrored profile.
func (s *Store) Clear() {
	s.update(func() {
		s.session = nil
		s.profiles = nil
		s.currentID = uuid.Nil
		s.theme = themeFor(catalog.DefaultTemplateID, catalog.DefaultColorSchemeID)
	})
}

func (s *Store) Profiles() []profile.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]profile.Profile(nil), s.profiles...)
}

func (s *Store) SetProfiles(items []profile.Profile) {
	s.update(func() {
		s.profiles = append([]profile.Profile(nil), items...)
		if s.currentID != uuid.Nil && s.indexOf(s.currentID) < 0 {
			s.currentID = uuid.Nil
		}
	})
}

// UpsertProfile replaces the profile with the same id or appends it. A
// profile that became default clears the flag on the others.
func (s *Store) UpsertProfile(p profile.Profile) {
	s.update(func() {
		if p.IsDefault {
			for i := range s.profiles {
				s.profiles[i].IsDefault = false
			}
		}
		if i := s.indexOf(p.ID); i >= 0 {
			s.profiles[i] = p
		} else {
			s.profiles = append(s.profiles, p)
		}
		if s.currentID == p.ID {
			s.theme = themeFor(p.TemplateID, p.ColorSchemeID)
		}
	})
}

func (s *Store) RemoveProfile(id uuid.UUID) {
	s.update(func() {
		if i := s.indexOf(id); i >= 0 {
			s.profiles = append(s.profiles[:i], s.profiles[i+1:]...)
		}
		if s.currentID == id {
			s.currentID = uuid.Nil
		}
	})
}

// Current returns the selected profile, if it is still mirrored.
func (s *Store) Current() (profile.Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(s.currentID); i >= 0 {
		return s.profiles[i], true
	}
	return profile.Profile{}, false
}

// SetCurrent mirrors p and selects it, switching the theme to its template
// and color scheme.
func (s *Store) SetCurrent(p profile.Profile) {
	s.UpsertProfile(p)
	s.update(func() {
		s.currentID = p.ID
		s.theme = themeFor(p.TemplateID, p.ColorSchemeID)
	})
}

func (s *Store) Theme() Theme {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.theme
}

// SetTheme previews a theme locally. Unknown color schemes are ignored.
func (s *Store) SetTheme(templateID, colorSchemeID string) bool {
	if !catalog.TemplateExists(templateID) || !catalog.ColorSchemeExists(colorSchemeID) {
		return false
	}
	s.update(func() { s.theme = themeFor(templateID, colorSchemeID) })
	return true
}

// indexOf must be called with mu held.
func (s *Store) indexOf(id uuid.UUID) int {
	if id == uuid.Nil {
		return -1
	}
	for i := range s.profiles {
		if s.profiles[i].ID == id {
			return i
		}
	}
	return -1
}

func themeFor(templateID, colorSchemeID string) Theme {
	cs, ok := catalog.ColorSchemeByID(colorSchemeID)
	if !ok {
		cs, _ = catalog.ColorSchemeByID(catalog.DefaultColorSchemeID)
	}
	return Theme{TemplateID: templateID, ColorScheme: cs}
}
