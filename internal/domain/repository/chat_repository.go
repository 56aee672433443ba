package repository

import (
	"context"

	"securehire/internal/domain/entity"
)

type ChatRepository interface {
	CreateMessage(ctx context.Context, message *entity.Message) error
	UpsertRoom(ctx context.Context, room *entity.ChatRoom) error
	GetRoom(ctx context.Context, roomID string) (*entity.ChatRoom, error)
	ListMessages(ctx context.Context, roomID string, limit int) ([]*entity.Message, error)

	// WatchMessages calls onMessage for every message of the room in timestamp order, first
	// the existing ones and then each new one as it arrives. It blocks until ctx is done.
	WatchMessages(ctx context.Context, roomID string, onMessage func(*entity.Message)) error
}
