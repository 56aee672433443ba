package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"securehire/internal/domain/entity"
	"securehire/internal/domain/repository"
	"securehire/pkg/errors"
	"securehire/pkg/logger"
)

const (
	chatRoomsCollection = "chatRooms"
	messagesCollection  = "messages"
)

type firestoreChatRepository struct {
	client *firestore.Client
}

func NewFirestoreChatRepository(client *firestore.Client) repository.ChatRepository {
	return &firestoreChatRepository{
		client: client,
	}
}

func (r *firestoreChatRepository) messages(roomID string) *firestore.CollectionRef {
	return r.client.Collection(chatRoomsCollection).Doc(roomID).Collection(messagesCollection)
}

func (r *firestoreChatRepository) CreateMessage(ctx context.Context, message *entity.Message) error {
	if message.ID == "" {
		message.ID = uuid.New().String()
	}

	// Timestamp is left zero so the serverTimestamp tag lets Firestore assign it.
	_, err := r.messages(message.RoomID).Doc(message.ID).Set(ctx, message)
	if err != nil {
		return errors.Internal("Failed to create message", err)
	}

	return nil
}

func (r *firestoreChatRepository) UpsertRoom(ctx context.Context, room *entity.ChatRoom) error {
	_, err := r.client.Collection(chatRoomsCollection).Doc(room.ID).Set(ctx, map[string]interface{}{
		"participants": room.Participants,
		"lastMessage":  room.LastMessage,
		"lastSenderId": room.LastSenderID,
		"updatedAt":    firestore.ServerTimestamp,
	}, firestore.MergeAll)
	if err != nil {
		return errors.Internal("Failed to update chat room", err)
	}

	return nil
}

func (r *firestoreChatRepository) GetRoom(ctx context.Context, roomID string) (*entity.ChatRoom, error) {
	doc, err := r.client.Collection(chatRoomsCollection).Doc(roomID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Chat room", err)
		}
		return nil, errors.Internal("Failed to get chat room", err)
	}

	var room entity.ChatRoom
	if err := doc.DataTo(&room); err != nil {
		return nil, errors.Internal("Failed to parse chat room data", err)
	}
	room.ID = doc.Ref.ID

	return &room, nil
}

func (r *firestoreChatRepository) ListMessages(ctx context.Context, roomID string, limit int) ([]*entity.Message, error) {
	// Newest first so the limit keeps the tail of the conversation, then flipped back.
	query := r.messages(roomID).OrderBy("timestamp", firestore.Desc)
	if limit > 0 {
		query = query.Limit(limit)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	var messages []*entity.Message
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			logger.Error("Firestore error while iterating messages for room %s: %v", roomID, err)
			return nil, errors.Internal("Failed to iterate messages", err)
		}

		message, err := messageFromDoc(roomID, doc)
		if err != nil {
			logger.Warn("Error parsing message %s in room %s: %v", doc.Ref.ID, roomID, err)
			continue
		}
		messages = append(messages, message)
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}

func (r *firestoreChatRepository) WatchMessages(ctx context.Context, roomID string, onMessage func(*entity.Message)) error {
	snapshots := r.messages(roomID).OrderBy("timestamp", firestore.Asc).Snapshots(ctx)
	defer snapshots.Stop()

	for {
		snap, err := snapshots.Next()
		if err != nil {
			if ctx.Err() != nil || status.Code(err) == codes.Canceled {
				return nil
			}
			logger.Error("Firestore listener for room %s failed: %v", roomID, err)
			return errors.Internal("Chat listener failed", err)
		}

		for _, change := range snap.Changes {
			if change.Kind != firestore.DocumentAdded {
				continue
			}
			message, err := messageFromDoc(roomID, change.Doc)
			if err != nil {
				logger.Warn("Error parsing live message %s in room %s: %v", change.Doc.Ref.ID, roomID, err)
				continue
			}
			onMessage(message)
		}
	}
}

func messageFromDoc(roomID string, doc *firestore.DocumentSnapshot) (*entity.Message, error) {
	var message entity.Message
	if err := doc.DataTo(&message); err != nil {
		return nil, err
	}
	message.ID = doc.Ref.ID
	message.RoomID = roomID
	return &message, nil
}
