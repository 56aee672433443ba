package usecase

import (
	"errors"

	"securehire/internal/domain/entity"
	ws "securehire/internal/infrastructure/websocket"
	apperrors "securehire/pkg/errors"
)

const genericFailure = "Something went wrong, please try again"

// Notifier pushes live frames to a user's websocket. Frames for users without a
// connection are dropped.
type Notifier struct {
	pusher Pusher
}

func NewNotifier(pusher Pusher) *Notifier {
	return &Notifier{pusher: pusher}
}

func (n *Notifier) IsOnline(userID string) bool {
	return n.pusher != nil && n.pusher.IsOnline(userID)
}

func (n *Notifier) push(userID, messageType string, data interface{}) bool {
	if n.pusher == nil {
		return false
	}
	return n.pusher.SendToUser(userID, ws.NewMessage(messageType, data))
}

func (n *Notifier) Toast(userID string, level entity.ToastLevel, message string) bool {
	return n.push(userID, ws.MessageTypeToast, entity.Toast{Level: level, Message: message})
}

// Failure toasts err. Application errors carry their own message, typically the backend's;
// anything else gets the generic fallback.
func (n *Notifier) Failure(userID string, err error) bool {
	return n.Toast(userID, entity.ToastError, ToastMessage(err))
}

func ToastMessage(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return genericFailure
}

func (n *Notifier) Message(userID string, message *entity.Message) bool {
	return n.push(userID, ws.MessageTypeMessage, message)
}

func (n *Notifier) ContactsAppended(userID string, result *BatchResult) bool {
	return n.push(userID, ws.MessageTypeContactsAppended, result)
}
