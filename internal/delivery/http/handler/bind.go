package handler

import (
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"cv-builder/internal/delivery/http/middleware"
	"cv-builder/internal/domain/profile"
	"cv-builder/internal/pkg/validator"
)

// bindBody decodes the JSON body into req and validates it.
func bindBody(c fiber.Ctx, req any) error {
	if err := c.Bind().Body(req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", nil, err)
	}
	if err := validator.Validate(req); err != nil {
		return middleware.ValidationError(err)
	}
	return nil
}

// bindOptionalBody is bindBody for endpoints whose body may be empty.
func bindOptionalBody(c fiber.Ctx, req any) error {
	if len(c.Body()) == 0 {
		return nil
	}
	return bindBody(c, req)
}

func uuidParam(c fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, middleware.NewAppError(fiber.StatusBadRequest, "Invalid "+name, nil, err)
	}
	return id, nil
}

func currentUserID(c fiber.Ctx) (uuid.UUID, error) {
	id, ok := middleware.UserID(c)
	if !ok {
		return uuid.Nil, middleware.NewAppError(fiber.StatusUnauthorized, "Access token required", nil, nil)
	}
	return id, nil
}

func currentProfile(c fiber.Ctx) (profile.Profile, error) {
	p, ok := middleware.CurrentProfile(c)
	if !ok {
		return profile.Profile{}, middleware.NewAppError(fiber.StatusNotFound, "Profile not found", nil, nil)
	}
	return p, nil
}

func clientIP(c fiber.Ctx) string {
	if ips := c.IPs(); len(ips) > 0 {
		return ips[0]
	}
	return c.IP()
}
