package middleware

import (
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/gofiber/fiber/v3"

	"cv-builder/internal/database"
	"cv-builder/internal/domain/profile"
	"cv-builder/internal/domain/section"
	"cv-builder/internal/domain/user"
	"cv-builder/internal/pkg/logger"
	"cv-builder/internal/pkg/response"
	"cv-builder/internal/pkg/validator"
)

type AppError struct {
	StatusCode int
	Message    string
	Errors     []string
	Cause      error
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func NewAppError(statusCode int, message string, errs []string, cause error) *AppError {
	return &AppError{StatusCode: statusCode, Message: message, Errors: errs, Cause: cause}
}

// ValidationError wraps a failed validator run as a 400 with its field list.
func ValidationError(err error) *AppError {
	return NewAppError(fiber.StatusBadRequest, response.MessageValidationFailed, validator.Messages(err), err)
}

// ErrorMiddleware is the terminal error handler. It recovers panics and turns
// every returned error into the response envelope. Stacks are only exposed
// outside production, and only on 500s.
type ErrorMiddleware struct {
	log         *logger.Logger
	exposeStack bool
}

func NewErrorMiddleware(log *logger.Logger, exposeStack bool) *ErrorMiddleware {
	if log == nil {
		log = logger.Nop()
	}
	return &ErrorMiddleware{log: log.Named("http"), exposeStack: exposeStack}
}

func (m *ErrorMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				stack := string(debug.Stack())
				m.requestLogger(c).Error("panic recovered", "panic", fmt.Sprint(r), "stack", stack)
				err = m.internal(c, stack)
			}
		}()

		err = c.Next()
		if err == nil {
			return nil
		}

		status, msg, errs := normalizeError(err)
		if status >= fiber.StatusInternalServerError {
			m.requestLogger(c).Error("request failed", "method", c.Method(), "path", c.Path(), "error", err)
			return m.internal(c, err.Error())
		}
		return response.Error(c, status, msg, errs)
	}
}

func (m *ErrorMiddleware) internal(c fiber.Ctx, stack string) error {
	if m.exposeStack {
		return response.ErrorWithStack(c, fiber.StatusInternalServerError, response.MessageInternalServerError, nil, stack)
	}
	return response.Error(c, fiber.StatusInternalServerError, response.MessageInternalServerError, nil)
}

func (m *ErrorMiddleware) requestLogger(c fiber.Ctx) *logger.Logger {
	return logger.FromContextOr(c.Context(), m.log)
}

func normalizeError(err error) (int, string, []string) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		status := appErr.StatusCode
		if status <= 0 || status >= 500 {
			return fiber.StatusInternalServerError, response.MessageInternalServerError, nil
		}
		msg := appErr.Message
		if msg == "" {
			msg = response.DefaultMessageForStatus(status)
		}
		return status, msg, appErr.Errors
	}

	if validator.IsValidationError(err) {
		return fiber.StatusBadRequest, response.MessageValidationFailed, validator.Messages(err)
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		status := fiberErr.Code
		if status <= 0 || status >= 500 {
			return fiber.StatusInternalServerError, response.MessageInternalServerError, nil
		}
		msg := fiberErr.Message
		if msg == "" {
			msg = response.DefaultMessageForStatus(status)
		}
		return status, msg, nil
	}

	switch {
	case errors.Is(err, profile.ErrNotFound):
		return fiber.StatusNotFound, "Profile not found", nil
	case errors.Is(err, section.ErrNotFound):
		return fiber.StatusNotFound, "Entry not found", nil
	case errors.Is(err, user.ErrNotFound):
		return fiber.StatusNotFound, "User not found", nil
	case errors.Is(err, section.ErrReorderMismatch):
		return fiber.StatusBadRequest, "Invalid reorder request", []string{err.Error()}
	case errors.Is(err, user.ErrEmailTaken):
		return fiber.StatusConflict, "Email already registered", nil
	case database.IsUniqueViolation(err):
		return fiber.StatusConflict, response.MessageConflict, nil
	case database.IsForeignKeyViolation(err), database.IsInvalidInput(err):
		return fiber.StatusBadRequest, response.MessageBadRequest, nil
	}

	return fiber.StatusInternalServerError, response.MessageInternalServerError, nil
}
