package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"cv-builder/internal/delivery/http/dto"
	"cv-builder/internal/delivery/http/middleware"
	"cv-builder/internal/pkg/response"
	useruc "cv-builder/internal/usecase/user"
)

type UserHandler struct {
	uc *useruc.Service
}

func NewUserHandler(uc *useruc.Service) *UserHandler {
	return &UserHandler{uc: uc}
}

// RegisterRoutes mounts the account routes under /api/auth.
func (h *UserHandler) RegisterRoutes(r fiber.Router, authRequired fiber.Handler) {
	if r == nil {
		return
	}

	r.Put("/me", authRequired, h.UpdateMe)
	r.Put("/change-password", authRequired, h.ChangePassword)
}

func (h *UserHandler) UpdateMe(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req dto.UpdateMeRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	u, err := h.uc.UpdateMe(c.Context(), userID, useruc.UpdateMeInput{FirstName: req.FirstName, LastName: req.LastName})
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, "Profile updated", dto.NewUserResponse(u))
}

func (h *UserHandler) ChangePassword(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	sess, _ := middleware.CurrentSession(c)

	var req dto.ChangePasswordRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	err = h.uc.ChangePassword(c.Context(), userID, sess.ID, useruc.ChangePasswordInput{
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	switch {
	case errors.Is(err, useruc.ErrWrongPassword):
		return middleware.NewAppError(fiber.StatusBadRequest, "Current password is incorrect", nil, err)
	case errors.Is(err, useruc.ErrSamePassword):
		return middleware.NewAppError(fiber.StatusBadRequest, "New password must differ from the current one", nil, err)
	case err != nil:
		return err
	}
	return response.Success(c, fiber.StatusOK, "Password changed", nil)
}
