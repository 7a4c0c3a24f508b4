package handlers

import (
	"context"
	"fmt"

	"github.com/anjiri1684/drive_tutor/middleware"
	"github.com/anjiri1684/drive_tutor/services"
	"github.com/anjiri1684/drive_tutor/websocket"
	websocketcontrib "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type SendMessageRequest struct {
	Content string `json:"content"`
}

// wsMessage is the client frame read by ServeWs.
type wsMessage struct {
	Type      string `json:"type"`
	Token     string `json:"token,omitempty"`
	PackageID string `json:"package_id,omitempty"`
	Content   string `json:"content,omitempty"`
}

func (h *Handlers) ListMessages(c *fiber.Ctx) error {
	id, err := paramID(c, "packageId")
	if err != nil {
		return err
	}
	messages, err := h.Chat.List(c.UserContext(), actor(c), id)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(messages)
}

func (h *Handlers) SendMessage(c *fiber.Ctx) error {
	id, err := paramID(c, "packageId")
	if err != nil {
		return err
	}
	var req SendMessageRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	msg, err := h.Chat.Send(c.UserContext(), actor(c), id, req.Content)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(msg)
}

func (h *Handlers) MarkMessagesRead(c *fiber.Ctx) error {
	id, err := paramID(c, "packageId")
	if err != nil {
		return err
	}
	n, err := h.Chat.MarkRead(c.UserContext(), actor(c), id)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(fiber.Map{"marked": n})
}

func (h *Handlers) UnreadCount(c *fiber.Ctx) error {
	n, err := h.Chat.UnreadCount(c.UserContext(), actor(c))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(fiber.Map{"unread": n})
}

// ServeWs authenticates with the first frame, then relays chat messages sent
// by the client. Events for the user arrive through the hub.
func (h *Handlers) ServeWs(c *websocketcontrib.Conn) {
	conn := websocket.Synchronized(c)
	defer conn.Close()

	var auth wsMessage
	if err := c.ReadJSON(&auth); err != nil || auth.Type != "auth" {
		conn.WriteJSON(fiber.Map{"type": "error", "error": "Authentication required"})
		return
	}
	who, err := h.parseToken(auth.Token)
	if err != nil {
		conn.WriteJSON(fiber.Map{"type": "error", "error": "Invalid token"})
		return
	}

	client := &websocket.Client{UserID: who.ID, Conn: conn}
	if !h.Hub.Register(client) {
		return
	}
	defer h.Hub.Unregister(client)
	conn.WriteJSON(fiber.Map{"type": "ready"})

	for {
		var in wsMessage
		if err := c.ReadJSON(&in); err != nil {
			h.Log.Debug("websocket closed", zap.String("user_id", who.ID.String()), zap.Error(err))
			return
		}
		if in.Type != "message" {
			conn.WriteJSON(fiber.Map{"type": "error", "error": "Unsupported frame type"})
			continue
		}
		packageID, err := uuid.Parse(in.PackageID)
		if err != nil {
			conn.WriteJSON(fiber.Map{"type": "error", "error": "Invalid package_id"})
			continue
		}
		msg, err := h.Chat.Send(context.Background(), who, packageID, in.Content)
		if err != nil {
			conn.WriteJSON(fiber.Map{"type": "error", "error": services.Message(err)})
			continue
		}
		conn.WriteJSON(fiber.Map{"type": "sent", "message": msg})
	}
}

func (h *Handlers) parseToken(raw string) (services.Actor, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(h.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return services.Actor{}, fmt.Errorf("invalid token: %w", err)
	}
	return middleware.ActorFromClaims(token.Claims)
}
