package usecase

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"securehire/internal/domain/entity"
	ws "securehire/internal/infrastructure/websocket"
	"securehire/pkg/errors"
)

func TestToastMessagePassesBackendMessageThrough(t *testing.T) {
	assert.Equal(t, "Registration number already used", ToastMessage(errors.Upstream(409, "Registration number already used", nil)))
	assert.Equal(t, genericFailure, ToastMessage(errors.Upstream(500, "", nil)))
	assert.Equal(t, genericFailure, ToastMessage(fmt.Errorf("boom")))
}

func TestNotifierDropsFramesForOfflineUsers(t *testing.T) {
	pusher := newFakePusher("online")
	n := NewNotifier(pusher)

	assert.True(t, n.Toast("online", entity.ToastSuccess, "Saved"))
	assert.False(t, n.Toast("offline", entity.ToastSuccess, "Saved"))
	assert.Equal(t, []string{ws.MessageTypeToast}, pusher.types("online"))
}
