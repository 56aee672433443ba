package websocket

import (
	"encoding/json"
	"errors"
	"time"

	apperrors "securehire/pkg/errors"
	"securehire/pkg/logger"
)

// Client to server frames.
const (
	MessageTypePing          = "ping"
	MessageTypeSelectContact = "select_contact"
	MessageTypeSendMessage   = "send_message"
	MessageTypeUnsubscribe   = "unsubscribe"
	MessageTypeScroll        = "scroll"
)

// Server to client frames.
const (
	MessageTypePong             = "pong"
	MessageTypeMessage          = "message"
	MessageTypeContactsAppended = "contacts_appended"
	MessageTypeToast            = "toast"
	MessageTypeError            = "error"
)

type WSMessage struct {
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp string          `json:"timestamp"`
}

// NewMessage builds an outgoing frame. A data value that cannot be encoded is sent as null.
func NewMessage(messageType string, data interface{}) WSMessage {
	raw, err := json.Marshal(data)
	if err != nil {
		logger.Error("WebSocket: failed to encode %s payload: %v", messageType, err)
		raw = nil
	}
	return WSMessage{
		Type:      messageType,
		Data:      raw,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// Decode unmarshals the frame's data into v.
func (w WSMessage) Decode(v interface{}) error {
	if len(w.Data) == 0 {
		return apperrors.BadRequest("Missing data", nil)
	}
	if err := json.Unmarshal(w.Data, v); err != nil {
		return apperrors.BadRequest("Invalid "+w.Type+" format", err)
	}
	return nil
}

type SelectContactData struct {
	ContactID string `json:"contact_id"`
}

type SendMessageData struct {
	TempID     string `json:"temp_id,omitempty"`
	ReceiverID string `json:"receiver_id"`
	Text       string `json:"text"`
}

type ScrollData struct {
	ScrollTop    float64 `json:"scroll_top"`
	ScrollHeight float64 `json:"scroll_height"`
	ClientHeight float64 `json:"client_height"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// HandleClientMessage processes incoming WebSocket messages
func (m *Manager) HandleClientMessage(client *Client, messageBytes []byte) {
	var frame WSMessage
	if err := json.Unmarshal(messageBytes, &frame); err != nil {
		logger.Warn("WebSocket: failed to unmarshal frame from %s: %v", client.UserID, err)
		m.sendError(client, apperrors.BadRequest("Invalid message format", err))
		return
	}

	logger.Debug("WebSocket: received '%s' from %s", frame.Type, client.UserID)

	if frame.Type == MessageTypePing {
		m.SendToUser(client.UserID, NewMessage(MessageTypePong, map[string]string{"status": "alive"}))
		return
	}

	if m.handler == nil {
		m.sendError(client, apperrors.BadRequest("Unknown message type", nil))
		return
	}
	if err := m.handler.HandleFrame(client.Context(), client, frame); err != nil {
		m.sendError(client, err)
	}
}

func (m *Manager) sendError(client *Client, err error) {
	data := ErrorData{Code: apperrors.CodeInternal, Message: "An unexpected error occurred"}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		data.Code = appErr.Code
		data.Message = appErr.Message
	} else {
		logger.Error("WebSocket: frame from %s failed: %v", client.UserID, err)
	}
	m.SendToUser(client.UserID, NewMessage(MessageTypeError, data))
}
