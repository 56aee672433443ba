package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"securehire/internal/domain/entity"
	"securehire/internal/infrastructure/backend"
	"securehire/internal/infrastructure/localstore"
	ws "securehire/internal/infrastructure/websocket"
	"securehire/pkg/errors"
)

type fakeIdentityRepo struct {
	mu      sync.Mutex
	pages   map[string]*entity.IdentityPage
	records map[string]*entity.IdentityRecord
	err     error
	cursors []string
}

func newFakeIdentityRepo() *fakeIdentityRepo {
	return &fakeIdentityRepo{
		pages:   make(map[string]*entity.IdentityPage),
		records: make(map[string]*entity.IdentityRecord),
	}
}

// addPage registers the page returned after cursor; its NextCursor is its last id.
func (r *fakeIdentityRepo) addPage(cursor string, recs ...*entity.IdentityRecord) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	next := cursor
	if len(recs) > 0 {
		next = recs[len(recs)-1].ID
	}
	r.pages[cursor] = &entity.IdentityPage{Records: recs, NextCursor: next}
	for _, rec := range recs {
		r.records[rec.ID] = rec
	}
	return next
}

func (r *fakeIdentityRepo) GetByID(_ context.Context, id string) (*entity.IdentityRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return nil, errors.NotFound("User", nil)
	}
	return rec, nil
}

// addUnreadablePage registers a page after cursor whose documents all failed to decode.
func (r *fakeIdentityRepo) addUnreadablePage(cursor, next string, scanned int) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pages[cursor] = &entity.IdentityPage{NextCursor: next, Scanned: scanned}
	return next
}

func (r *fakeIdentityRepo) ListByRole(ctx context.Context, _ entity.Role, cursor string, _ int) (*entity.IdentityPage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cursors = append(r.cursors, cursor)
	if err := ctx.Err(); err != nil {
		return nil, errors.Internal("Failed to list users", err)
	}
	if r.err != nil {
		return nil, r.err
	}
	if p, ok := r.pages[cursor]; ok {
		return p, nil
	}
	return &entity.IdentityPage{NextCursor: cursor}, nil
}

func (r *fakeIdentityRepo) requested() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.cursors...)
}

func seeker(id string) *entity.IdentityRecord {
	return &entity.IdentityRecord{ID: id, Role: entity.RoleJobSeeker, DisplayName: "record " + id}
}

type fakeDirectory struct {
	mu       sync.Mutex
	profiles map[string]*entity.Profile
	failing  map[string]bool
	block    chan struct{}
	saved    []*entity.Profile
	uploads  []backend.FilePart
	lookups  int
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{
		profiles: make(map[string]*entity.Profile),
		failing:  make(map[string]bool),
	}
}

func (d *fakeDirectory) GetProfile(ctx context.Context, _ string, role entity.Role, authID string) (*entity.Profile, error) {
	if d.block != nil {
		select {
		case <-d.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.lookups++
	if d.failing[authID] {
		return nil, errors.Upstream(500, "", fmt.Errorf("lookup of %s failed", authID))
	}
	if p, ok := d.profiles[authID]; ok {
		return p, nil
	}
	if role == entity.RoleJobSeeker {
		return &entity.Profile{
			AuthID:    authID,
			BackendID: "js-" + authID,
			Role:      role,
			JobSeeker: &entity.JobSeekerProfile{FullName: "Guard " + authID},
		}, nil
	}
	return nil, errors.NotFound("Profile", nil)
}

func (d *fakeDirectory) SaveProfile(_ context.Context, _ string, p *entity.Profile) (*entity.Profile, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	saved := *p
	if saved.BackendID == "" {
		saved.BackendID = "be-" + p.AuthID
	}
	d.saved = append(d.saved, &saved)
	d.profiles[p.AuthID] = &saved
	return &saved, nil
}

func (d *fakeDirectory) UploadDocument(_ context.Context, _ string, _ entity.Role, backendID, kind string, file backend.FilePart) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.uploads = append(d.uploads, file)
	return "https://files.example/" + backendID + "/" + kind, nil
}

func newTestCache() *localstore.Cache {
	return localstore.NewCache(localstore.NewMemoryStore(), 10*time.Minute)
}

type fakePusher struct {
	mu     sync.Mutex
	online map[string]bool
	sent   map[string][]ws.WSMessage
}

func newFakePusher(online ...string) *fakePusher {
	p := &fakePusher{online: make(map[string]bool), sent: make(map[string][]ws.WSMessage)}
	for _, id := range online {
		p.online[id] = true
	}
	return p
}

func (p *fakePusher) SendToUser(userID string, message ws.WSMessage) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.online[userID] {
		return false
	}
	p.sent[userID] = append(p.sent[userID], message)
	return true
}

func (p *fakePusher) IsOnline(userID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.online[userID]
}

func (p *fakePusher) types(userID string) []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, m := range p.sent[userID] {
		out = append(out, m.Type)
	}
	return out
}

type allowAll struct{}

func (allowAll) Allow(string, string) (bool, time.Duration) { return true, 0 }

type denyAll struct{}

func (denyAll) Allow(string, string) (bool, time.Duration) { return false, time.Second }

type fakeChatRepo struct {
	mu       sync.Mutex
	messages map[string][]*entity.Message
	rooms    map[string]*entity.ChatRoom
	roomErr  error
	watchers map[string]chan *entity.Message
	watching chan string
}

func newFakeChatRepo() *fakeChatRepo {
	return &fakeChatRepo{
		messages: make(map[string][]*entity.Message),
		rooms:    make(map[string]*entity.ChatRoom),
		watchers: make(map[string]chan *entity.Message),
		watching: make(chan string, 8),
	}
}

func (r *fakeChatRepo) CreateMessage(_ context.Context, m *entity.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m.ID = fmt.Sprintf("m%d", len(r.messages[m.RoomID])+1)
	r.messages[m.RoomID] = append(r.messages[m.RoomID], m)
	if ch, ok := r.watchers[m.RoomID]; ok {
		ch <- m
	}
	return nil
}

func (r *fakeChatRepo) UpsertRoom(_ context.Context, room *entity.ChatRoom) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.roomErr != nil {
		return r.roomErr
	}
	r.rooms[room.ID] = room
	return nil
}

func (r *fakeChatRepo) GetRoom(_ context.Context, roomID string) (*entity.ChatRoom, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[roomID]
	if !ok {
		return nil, errors.NotFound("Chat room", nil)
	}
	return room, nil
}

func (r *fakeChatRepo) ListMessages(_ context.Context, roomID string, limit int) ([]*entity.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	msgs := append([]*entity.Message(nil), r.messages[roomID]...)
	sort.SliceStable(msgs, func(i, j int) bool { return msgs[i].Timestamp.Before(msgs[j].Timestamp) })
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return msgs, nil
}

func (r *fakeChatRepo) WatchMessages(ctx context.Context, roomID string, onMessage func(*entity.Message)) error {
	ch := make(chan *entity.Message, 16)
	r.mu.Lock()
	r.watchers[roomID] = ch
	r.mu.Unlock()
	r.watching <- roomID

	defer func() {
		r.mu.Lock()
		if r.watchers[roomID] == ch {
			delete(r.watchers, roomID)
		}
		r.mu.Unlock()
	}()

	for {
		select {
		case m := <-ch:
			onMessage(m)
		case <-ctx.Done():
			return nil
		}
	}
}
