package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v3"

	"cv-builder/internal/delivery/http/dto"
	"cv-builder/internal/delivery/http/middleware"
	"cv-builder/internal/pkg/response"
	ucauth "cv-builder/internal/usecase/auth"
)

const forgotPasswordMessage = "If the email is registered, a reset link has been sent"

type AuthHandler struct {
	uc *ucauth.Service
}

func NewAuthHandler(uc *ucauth.Service) *AuthHandler {
	return &AuthHandler{uc: uc}
}

// RegisterRoutes mounts the public auth routes. limited wraps the
// credential endpoints with the rate limiter.
func (h *AuthHandler) RegisterRoutes(r fiber.Router, limited fiber.Handler) {
	if r == nil {
		return
	}

	r.Post("/register", limited, h.Register)
	r.Post("/login", limited, h.Login)
	r.Post("/refresh-token", h.Refresh)
	r.Post("/forgot-password", limited, h.ForgotPassword)
	r.Post("/reset-password", h.ResetPassword)
	r.Get("/verify-email/:token", h.VerifyEmail)
}

// RegisterProtectedRoutes mounts the routes that need an authenticated user.
func (h *AuthHandler) RegisterProtectedRoutes(r fiber.Router, authRequired fiber.Handler) {
	if r == nil {
		return
	}

	r.Post("/logout", authRequired, h.Logout)
	r.Post("/logout-all", authRequired, h.LogoutAll)
	r.Post("/resend-verification", authRequired, h.ResendVerification)
	r.Get("/me", authRequired, h.Me)
}

func clientInfo(c fiber.Ctx) ucauth.ClientInfo {
	return ucauth.ClientInfo{UserAgent: c.Get(fiber.HeaderUserAgent), IPAddress: clientIP(c)}
}

func (h *AuthHandler) Register(c fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	res, err := h.uc.Register(c.Context(), ucauth.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Client:    clientInfo(c),
	})
	if err != nil {
		return mapAuthUsecaseError(err)
	}
	return response.Success(c, fiber.StatusCreated, "Registration successful", dto.NewAuthResponse(res))
}

func (h *AuthHandler) Login(c fiber.Ctx) error {
	var req dto.LoginRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	res, err := h.uc.Login(c.Context(), ucauth.LoginInput{
		Email:    req.Email,
		Password: req.Password,
		Client:   clientInfo(c),
	})
	if err != nil {
		return mapAuthUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, "Login successful", dto.NewAuthResponse(res))
}

// Refresh takes the refresh token from the body, falling back to a bearer
// header.
func (h *AuthHandler) Refresh(c fiber.Ctx) error {
	var req dto.RefreshRequest
	if len(c.Body()) > 0 {
		if err := c.Bind().Body(&req); err != nil {
			return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", nil, err)
		}
	}
	tok := strings.TrimSpace(req.RefreshToken)
	if tok == "" {
		tok, _ = bearerFromAuthorizationHeader(c.Get(fiber.HeaderAuthorization))
	}
	if tok == "" {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Refresh token required", nil, nil)
	}

	res, err := h.uc.Refresh(c.Context(), tok)
	if err != nil {
		return mapAuthUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, "Token refreshed", dto.NewAuthResponse(res))
}

func (h *AuthHandler) Logout(c fiber.Ctx) error {
	sess, ok := middleware.CurrentSession(c)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Access token required", nil, nil)
	}
	if err := h.uc.Logout(c.Context(), sess.ID); err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, "Logged out", nil)
}

func (h *AuthHandler) LogoutAll(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	n, err := h.uc.LogoutAll(c.Context(), userID)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, "Logged out from all devices", fiber.Map{"revoked_sessions": n})
}

func (h *AuthHandler) ForgotPassword(c fiber.Ctx) error {
	var req dto.ForgotPasswordRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	if err := h.uc.ForgotPassword(c.Context(), req.Email); err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, forgotPasswordMessage, nil)
}

func (h *AuthHandler) ResetPassword(c fiber.Ctx) error {
	var req dto.ResetPasswordRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	if err := h.uc.ResetPassword(c.Context(), req.Token, req.Password); err != nil {
		return mapAuthUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, "Password has been reset", nil)
}

func (h *AuthHandler) VerifyEmail(c fiber.Ctx) error {
	u, err := h.uc.VerifyEmail(c.Context(), c.Params("token"))
	if err != nil {
		return mapAuthUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, "Email verified", dto.NewUserResponse(u))
}

func (h *AuthHandler) ResendVerification(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	if err := h.uc.ResendVerification(c.Context(), userID); err != nil {
		return mapAuthUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, "Verification email sent", nil)
}

func (h *AuthHandler) Me(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	u, err := h.uc.Me(c.Context(), userID)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewUserResponse(u))
}

func bearerFromAuthorizationHeader(authHeader string) (string, bool) {
	authHeader = strings.TrimSpace(authHeader)
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		return "", false
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	tok := strings.TrimSpace(parts[1])
	if tok == "" {
		return "", false
	}
	return tok, true
}

func mapAuthUsecaseError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, ucauth.ErrInvalidCredentials):
		return middleware.NewAppError(fiber.StatusUnauthorized, "Invalid credentials", nil, err)
	case errors.Is(err, ucauth.ErrAccountDisabled), errors.Is(err, ucauth.ErrUserInactive):
		return middleware.NewAppError(fiber.StatusUnauthorized, "Account is deactivated", nil, err)
	case errors.Is(err, ucauth.ErrRefreshTokenExpired):
		return middleware.NewAppError(fiber.StatusUnauthorized, "Refresh token expired", nil, err)
	case errors.Is(err, ucauth.ErrRefreshTokenReused):
		return middleware.NewAppError(fiber.StatusUnauthorized, "Refresh token has already been used", nil, err)
	case errors.Is(err, ucauth.ErrInvalidRefreshToken),
		errors.Is(err, ucauth.ErrSessionNotFound),
		errors.Is(err, ucauth.ErrSessionRevoked),
		errors.Is(err, ucauth.ErrSessionExpired),
		errors.Is(err, ucauth.ErrUserNotFound):
		return middleware.NewAppError(fiber.StatusUnauthorized, "Invalid refresh token", nil, err)
	case errors.Is(err, ucauth.ErrInvalidToken):
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid or expired token", nil, err)
	case errors.Is(err, ucauth.ErrAlreadyVerified):
		return middleware.NewAppError(fiber.StatusBadRequest, "Email already verified", nil, err)
	}
	// Domain errors such as a taken email are mapped by the error middleware.
	return err
}
