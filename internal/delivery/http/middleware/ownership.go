package middleware

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"cv-builder/internal/domain/profile"
)

const (
	CtxProfileKey = "profile"
	CtxIsOwnerKey = "is_owner"
)

// ProfileFinder is the part of profile.Repository the guard needs.
type ProfileFinder interface {
	GetByID(ctx context.Context, id uuid.UUID) (profile.Profile, error)
	GetByIDAndUser(ctx context.Context, id, userID uuid.UUID) (profile.Profile, error)
}

// OwnershipMiddleware resolves the :profileId (or :id) route parameter. A
// foreign profile is reported exactly like a missing one.
type OwnershipMiddleware struct {
	profiles ProfileFinder
}

func NewOwnershipMiddleware(profiles ProfileFinder) *OwnershipMiddleware {
	return &OwnershipMiddleware{profiles: profiles}
}

func errProfileNotFound(cause error) error {
	return NewAppError(fiber.StatusNotFound, "Profile not found", nil, cause)
}

// Middleware requires the authenticated user to own the profile. It must run
// after AuthMiddleware.
func (m *OwnershipMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		userID, ok := UserID(c)
		if !ok {
			return NewAppError(fiber.StatusUnauthorized, "Access token required", nil, nil)
		}
		id, ok := profileParam(c)
		if !ok {
			return errProfileNotFound(nil)
		}

		p, err := m.profiles.GetByIDAndUser(c.Context(), id, userID)
		if err != nil {
			if errors.Is(err, profile.ErrNotFound) {
				return errProfileNotFound(err)
			}
			return err
		}

		c.Locals(CtxProfileKey, p)
		c.Locals(CtxIsOwnerKey, true)
		return c.Next()
	}
}

// Optional lets anyone read a public profile and its owner read a private
// one. is_owner tells handlers which case applies.
func (m *OwnershipMiddleware) Optional() fiber.Handler {
	return func(c fiber.Ctx) error {
		id, ok := profileParam(c)
		if !ok {
			return errProfileNotFound(nil)
		}

		p, err := m.profiles.GetByID(c.Context(), id)
		if err != nil {
			if errors.Is(err, profile.ErrNotFound) {
				return errProfileNotFound(err)
			}
			return err
		}

		userID, authed := UserID(c)
		owner := authed && p.UserID == userID
		if !owner && !p.IsPublic {
			return errProfileNotFound(nil)
		}

		c.Locals(CtxProfileKey, p)
		c.Locals(CtxIsOwnerKey, owner)
		return c.Next()
	}
}

func profileParam(c fiber.Ctx) (uuid.UUID, bool) {
	raw := c.Params("profileId")
	if raw == "" {
		raw = c.Params("id")
	}
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}

// CurrentProfile returns the profile located by the ownership guard.
func CurrentProfile(c fiber.Ctx) (profile.Profile, bool) {
	p, ok := c.Locals(CtxProfileKey).(profile.Profile)
	return p, ok
}

func IsOwner(c fiber.Ctx) bool {
	owner, _ := c.Locals(CtxIsOwnerKey).(bool)
	return owner
}
