package handler

import (
	"context"
	"net/http"
	"strings"

	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"securehire/internal/adapter/api/middleware"
	"securehire/internal/domain/entity"
	ws "securehire/internal/infrastructure/websocket"
	"securehire/internal/usecase"
	"securehire/pkg/errors"
	"securehire/pkg/logger"
	"securehire/pkg/response"
)

type WebSocketHandler struct {
	root      context.Context
	wsManager *ws.Manager
	upgrader  gorillaws.Upgrader
}

// NewWebSocketHandler accepts connections whose Origin is listed in allowedOrigins. An
// empty list or "*" accepts any origin.
func NewWebSocketHandler(root context.Context, wsManager *ws.Manager, allowedOrigins []string) *WebSocketHandler {
	return &WebSocketHandler{
		root:      root,
		wsManager: wsManager,
		upgrader: gorillaws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(allowed) == 0 {
			return true
		}
		for _, a := range allowed {
			if a == "*" || strings.EqualFold(a, origin) {
				return true
			}
		}
		return false
	}
}

// HandleWebSocket upgrades an authenticated request. The connection outlives the request,
// so the client context hangs off the server's root context.
func (h *WebSocketHandler) HandleWebSocket(c echo.Context) error {
	userID := middleware.UserID(c)
	if userID == "" {
		return response.Error(c, errors.Unauthorized("Authentication required", nil))
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		logger.Warn("WebSocket upgrade failed for %s: %v", userID, err)
		return nil
	}

	client := ws.NewClient(h.root, userID, string(middleware.UserRole(c)), conn)
	h.wsManager.RegisterClient(client)

	go client.WritePump()
	go client.ReadPump(h.wsManager)

	return nil
}

// LiveSession serves the frames of a connected user: sidebar scrolling, contact
// selection and sending chat messages. Selecting and sending require a complete profile.
type LiveSession struct {
	contacts *usecase.ContactSessions
	chat     *usecase.ChatUseCase
	gate     *usecase.ProfileGate
	notifier *usecase.Notifier
	sessions *usecase.SessionUseCase
}

func NewLiveSession(
	contacts *usecase.ContactSessions,
	chat *usecase.ChatUseCase,
	gate *usecase.ProfileGate,
	notifier *usecase.Notifier,
	sessions *usecase.SessionUseCase,
) *LiveSession {
	return &LiveSession{
		contacts: contacts,
		chat:     chat,
		gate:     gate,
		notifier: notifier,
		sessions: sessions,
	}
}

func (s *LiveSession) HandleFrame(ctx context.Context, client *ws.Client, frame ws.WSMessage) error {
	role := entity.Role(client.Role)

	switch frame.Type {
	case ws.MessageTypeScroll:
		var data ws.ScrollData
		if err := frame.Decode(&data); err != nil {
			return err
		}
		res, err := s.contacts.Open(client.UserID, role).OnScroll(ctx, usecase.ScrollPosition{
			ScrollTop:    data.ScrollTop,
			ScrollHeight: data.ScrollHeight,
			ClientHeight: data.ClientHeight,
		})
		if err != nil {
			return err
		}
		if res != nil && !res.Skipped {
			s.notifier.ContactsAppended(client.UserID, res)
		}
		return nil

	case ws.MessageTypeSelectContact:
		var data ws.SelectContactData
		if err := frame.Decode(&data); err != nil {
			return err
		}
		return s.gated(ctx, client.UserID, role, func() error {
			_, err := s.chat.SelectContact(ctx, client.UserID, data.ContactID)
			return err
		})

	case ws.MessageTypeSendMessage:
		var data ws.SendMessageData
		if err := frame.Decode(&data); err != nil {
			return err
		}
		return s.gated(ctx, client.UserID, role, func() error {
			message, err := s.chat.SendMessage(ctx, client.UserID, data.ReceiverID, data.Text)
			if err != nil {
				return err
			}
			// A subscribed sender receives the message through the room watch.
			if s.chat.Channel(client.UserID).RoomID() != message.RoomID {
				s.notifier.Message(client.UserID, message)
			}
			return nil
		})

	case ws.MessageTypeUnsubscribe:
		s.chat.Unsubscribe(client.UserID)
		return nil
	}

	return errors.BadRequest("Unknown message type: "+frame.Type, nil)
}

func (s *LiveSession) gated(ctx context.Context, uid string, role entity.Role, action func() error) error {
	result, err := s.gate.Guard(ctx, uid, role, action)
	if err != nil {
		return err
	}
	if result.ModalShown {
		return errors.ProfileIncomplete(result.Missing)
	}
	return nil
}

func (s *LiveSession) ClientClosed(client *ws.Client) {
	s.sessions.Disconnected(client.UserID)
}
