package ws

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"cv-builder/internal/pkg/logger"
	"cv-builder/internal/pkg/response"
)

// Authenticate resolves an access token to its user.
type Authenticate func(ctx context.Context, token string) (uuid.UUID, error)

type Handler struct {
	hub    *Hub
	auth   Authenticate
	logger *logger.Logger
}

func NewHandler(hub *Hub, auth Authenticate, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	return &Handler{hub: hub, auth: auth, logger: log.Named("ws")}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handle authenticates ?token= before upgrading; browsers cannot set headers
// on websocket requests.
func (h *Handler) Handle(c fiber.Ctx) error {
	if h == nil || h.hub == nil || h.auth == nil {
		return fiber.ErrServiceUnavailable
	}

	token := c.Query("token")
	if token == "" {
		return response.Error(c, fiber.StatusUnauthorized, "Access token required", nil)
	}
	userID, err := h.auth(c.Context(), token)
	if err != nil {
		return response.Error(c, fiber.StatusUnauthorized, "Invalid or expired token", nil)
	}

	fiberHandler := adaptor.HTTPHandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			h.logger.Warn("ws upgrade failed", "error", err)
			return
		}

		client := NewClient(h.hub, conn, userID)
		h.hub.Register(client)
		go client.WritePump()
		go client.ReadPump()
	})

	return fiberHandler(c)
}

func (h *Handler) RegisterRoutes(r fiber.Router) {
	r.Get("/ws", h.Handle)
}
