package usecase

import (
	"context"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"securehire/internal/domain/entity"
	"securehire/internal/domain/repository"
	"securehire/pkg/errors"
	"securehire/pkg/logger"
)

const (
	maxMessageLength   = 2000
	defaultHistorySize = 50
)

type ChannelState int

const (
	ChannelUnsubscribed ChannelState = iota
	ChannelSubscribed
)

func (s ChannelState) String() string {
	if s == ChannelSubscribed {
		return "subscribed"
	}
	return "unsubscribed"
}

type subscription struct {
	roomID    string
	contactID string
	cancel    context.CancelFunc
	active    atomic.Bool
}

// ChatChannel is a user's live view of the one conversation selected in the sidebar.
// Selecting another contact drops the previous subscription before the new one starts
// delivering.
type ChatChannel struct {
	uid  string
	repo repository.ChatRepository
	sink func(*entity.Message)
	root context.Context

	mu  sync.Mutex
	sub *subscription
}

func NewChatChannel(root context.Context, uid string, repo repository.ChatRepository, sink func(*entity.Message)) *ChatChannel {
	return &ChatChannel{uid: uid, repo: repo, sink: sink, root: root}
}

// Select subscribes to the room shared with contactID and returns its id. Selecting the
// contact that is already subscribed keeps the running subscription.
func (ch *ChatChannel) Select(contactID string) (string, error) {
	if contactID == "" {
		return "", errors.BadRequest("Contact is required", nil)
	}
	if contactID == ch.uid {
		return "", errors.BadRequest("You cannot chat with yourself", nil)
	}

	ch.mu.Lock()
	defer ch.mu.Unlock()

	if ch.sub != nil && ch.sub.contactID == contactID && ch.sub.active.Load() {
		return ch.sub.roomID, nil
	}
	ch.stopLocked()

	ctx, cancel := context.WithCancel(ch.root)
	sub := &subscription{
		roomID:    entity.RoomID(ch.uid, contactID),
		contactID: contactID,
		cancel:    cancel,
	}
	sub.active.Store(true)
	ch.sub = sub

	go func() {
		err := ch.repo.WatchMessages(ctx, sub.roomID, func(m *entity.Message) {
			if sub.active.Load() {
				ch.sink(m)
			}
		})
		if err != nil {
			logger.Error("Chat subscription %s for %s ended: %v", sub.roomID, ch.uid, err)
		}
		sub.active.Store(false)
	}()

	logger.Debug("User %s subscribed to room %s", ch.uid, sub.roomID)
	return sub.roomID, nil
}

func (ch *ChatChannel) Unsubscribe() {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	ch.stopLocked()
}

func (ch *ChatChannel) stopLocked() {
	if ch.sub == nil {
		return
	}
	ch.sub.active.Store(false)
	ch.sub.cancel()
	ch.sub = nil
}

func (ch *ChatChannel) State() ChannelState {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	if ch.sub != nil && ch.sub.active.Load() {
		return ChannelSubscribed
	}
	return ChannelUnsubscribed
}

// RoomID is the subscribed room, or "" when unsubscribed.
func (ch *ChatChannel) RoomID() string {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	if ch.sub != nil && ch.sub.active.Load() {
		return ch.sub.roomID
	}
	return ""
}

type ChatUseCase struct {
	chatRepo     repository.ChatRepository
	identityRepo repository.IdentityRepository
	notifier     *Notifier
	rateLimiter  RateLimiter
	root         context.Context

	mu       sync.Mutex
	channels map[string]*ChatChannel
}

func NewChatUseCase(
	root context.Context,
	chatRepo repository.ChatRepository,
	identityRepo repository.IdentityRepository,
	notifier *Notifier,
	rateLimiter RateLimiter,
) *ChatUseCase {
	return &ChatUseCase{
		chatRepo:     chatRepo,
		identityRepo: identityRepo,
		notifier:     notifier,
		rateLimiter:  rateLimiter,
		root:         root,
		channels:     make(map[string]*ChatChannel),
	}
}

// Channel returns uid's chat channel; live messages go to the user's websocket.
func (uc *ChatUseCase) Channel(uid string) *ChatChannel {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	ch, ok := uc.channels[uid]
	if !ok {
		ch = NewChatChannel(uc.root, uid, uc.chatRepo, func(m *entity.Message) {
			uc.notifier.Message(uid, m)
		})
		uc.channels[uid] = ch
	}
	return ch
}

func (uc *ChatUseCase) SelectContact(ctx context.Context, uid, contactID string) (string, error) {
	if _, err := uc.identityRepo.GetByID(ctx, contactID); err != nil {
		return "", err
	}
	return uc.Channel(uid).Select(contactID)
}

func (uc *ChatUseCase) Unsubscribe(uid string) {
	uc.mu.Lock()
	ch, ok := uc.channels[uid]
	uc.mu.Unlock()
	if ok {
		ch.Unsubscribe()
	}
}

// CloseUser drops uid's channel entirely, used on logout and disconnect.
func (uc *ChatUseCase) CloseUser(uid string) {
	uc.mu.Lock()
	ch, ok := uc.channels[uid]
	delete(uc.channels, uid)
	uc.mu.Unlock()
	if ok {
		ch.Unsubscribe()
	}
}

// SendMessage writes the message and then updates the room's metadata. The two writes
// are independent: when the metadata update fails the message stays and the failure is
// only logged.
func (uc *ChatUseCase) SendMessage(ctx context.Context, senderID, receiverID, text string) (*entity.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.BadRequest("Message text is required", nil)
	}
	if utf8.RuneCountInString(text) > maxMessageLength {
		return nil, errors.BadRequest("Message is too long", nil)
	}
	if receiverID == "" {
		return nil, errors.BadRequest("Receiver is required", nil)
	}
	if senderID == receiverID {
		return nil, errors.BadRequest("You cannot chat with yourself", nil)
	}

	if allowed, wait := uc.rateLimiter.Allow(senderID, "send_message"); !allowed {
		logger.Warn("SendMessage rate limited: user %s must wait %v", senderID, wait)
		return nil, errors.TooManyRequests("You are sending messages too quickly, please wait a moment")
	}

	if _, err := uc.identityRepo.GetByID(ctx, receiverID); err != nil {
		return nil, err
	}

	roomID := entity.RoomID(senderID, receiverID)
	message := &entity.Message{
		RoomID:     roomID,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Text:       text,
	}
	if err := uc.chatRepo.CreateMessage(ctx, message); err != nil {
		return nil, err
	}
	if message.Timestamp.IsZero() {
		message.Timestamp = time.Now().UTC()
	}

	participants := []string{senderID, receiverID}
	sort.Strings(participants)
	room := &entity.ChatRoom{
		ID:           roomID,
		Participants: participants,
		LastMessage:  text,
		LastSenderID: senderID,
	}
	if err := uc.chatRepo.UpsertRoom(ctx, room); err != nil {
		logger.Error("Message %s stored but room %s metadata update failed: %v", message.ID, roomID, err)
	}

	uc.notifyReceiver(message)
	return message, nil
}

// notifyReceiver toasts a receiver who is online but looking at another conversation.
func (uc *ChatUseCase) notifyReceiver(message *entity.Message) {
	uc.mu.Lock()
	ch, ok := uc.channels[message.ReceiverID]
	uc.mu.Unlock()
	if ok && ch.RoomID() == message.RoomID {
		return
	}
	uc.notifier.Toast(message.ReceiverID, entity.ToastInfo, "You have a new message")
}

// History returns the latest messages between uid and contactID, oldest first.
func (uc *ChatUseCase) History(ctx context.Context, uid, contactID string, limit int) ([]*entity.Message, error) {
	if contactID == "" || contactID == uid {
		return nil, errors.BadRequest("Invalid contact", nil)
	}
	if limit <= 0 {
		limit = defaultHistorySize
	}
	return uc.chatRepo.ListMessages(ctx, entity.RoomID(uid, contactID), limit)
}
