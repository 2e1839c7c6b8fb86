package response

import "github.com/gofiber/fiber/v3"

// Envelope is the uniform body of every API response.
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Errors  []string    `json:"errors,omitempty"`
	Stack   string      `json:"stack,omitempty"`
}

const (
	MessageOK                  = "OK"
	MessageCreated             = "Created"
	MessageBadRequest          = "Bad request"
	MessageValidationFailed    = "Validation failed"
	MessageUnauthorized        = "Unauthorized"
	MessageForbidden           = "Forbidden"
	MessageNotFound            = "Not found"
	MessageConflict            = "Conflict"
	MessageTooManyRequests     = "Too many requests"
	MessageUnprocessableEntity = "Unprocessable entity"
	MessageInternalServerError = "Internal server error"
	MessageError               = "Error"
)

func Success(c fiber.Ctx, status int, message string, data interface{}) error {
	st := normalizeStatus(status)
	return c.Status(st).JSON(Envelope{
		Success: true,
		Message: normalizeMessage(message, st),
		Data:    data,
	})
}

func Error(c fiber.Ctx, status int, message string, errs []string) error {
	st := normalizeStatus(status)
	return c.Status(st).JSON(Envelope{
		Success: false,
		Message: normalizeMessage(message, st),
		Errors:  errs,
	})
}

// ErrorWithStack is used by the error middleware outside production.
func ErrorWithStack(c fiber.Ctx, status int, message string, errs []string, stack string) error {
	st := normalizeStatus(status)
	return c.Status(st).JSON(Envelope{
		Success: false,
		Message: normalizeMessage(message, st),
		Errors:  errs,
		Stack:   stack,
	})
}

func normalizeStatus(status int) int {
	if status < 100 || status > 599 {
		return fiber.StatusInternalServerError
	}
	return status
}

func normalizeMessage(message string, status int) string {
	if message != "" {
		return message
	}
	return DefaultMessageForStatus(status)
}

func DefaultMessageForStatus(status int) string {
	switch status {
	case fiber.StatusOK:
		return MessageOK
	case fiber.StatusCreated:
		return MessageCreated
	case fiber.StatusBadRequest:
		return MessageBadRequest
	case fiber.StatusUnauthorized:
		return MessageUnauthorized
	case fiber.StatusForbidden:
		return MessageForbidden
	case fiber.StatusNotFound:
		return MessageNotFound
	case fiber.StatusConflict:
		return MessageConflict
	case fiber.StatusTooManyRequests:
		return MessageTooManyRequests
	case fiber.StatusUnprocessableEntity:
		return MessageUnprocessableEntity
	default:
		if status >= 500 {
			return MessageInternalServerError
		}
		if status < 400 {
			return MessageOK
		}
		return MessageError
	}
}
