package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"securehire/internal/adapter/api"
	"securehire/internal/adapter/api/middleware"
	"securehire/internal/domain/entity"
	"securehire/internal/infrastructure/backend"
	"securehire/internal/infrastructure/localstore"
	ws "securehire/internal/infrastructure/websocket"
	"securehire/internal/usecase"
	"securehire/pkg/errors"
	"securehire/pkg/response"
)

const (
	companyUID = "co"
	seekerUID  = "js"
)

type stubIdentities struct {
	mu      sync.Mutex
	records map[string]*entity.IdentityRecord
	pages   map[string]*entity.IdentityPage
	calls   int
}

func newStubIdentities() *stubIdentities {
	return &stubIdentities{
		records: map[string]*entity.IdentityRecord{
			companyUID: {ID: companyUID, Role: entity.RoleCompany},
			seekerUID:  {ID: seekerUID, Role: entity.RoleJobSeeker},
		},
		pages: make(map[string]*entity.IdentityPage),
	}
}

func (s *stubIdentities) page(cursor string, ids ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := &entity.IdentityPage{NextCursor: cursor}
	for _, id := range ids {
		rec := &entity.IdentityRecord{ID: id, Role: entity.RoleJobSeeker}
		s.records[id] = rec
		p.Records = append(p.Records, rec)
		p.NextCursor = id
	}
	s.pages[cursor] = p
}

func (s *stubIdentities) GetByID(_ context.Context, id string) (*entity.IdentityRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return nil, errors.NotFound("User", nil)
	}
	return rec, nil
}

func (s *stubIdentities) ListByRole(_ context.Context, _ entity.Role, cursor string, _ int) (*entity.IdentityPage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if p, ok := s.pages[cursor]; ok {
		return p, nil
	}
	return &entity.IdentityPage{NextCursor: cursor}, nil
}

func (s *stubIdentities) listCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type stubBackend struct {
	mu       sync.Mutex
	profiles map[string]*entity.Profile
	jobs     map[string]*entity.Job
	entries  []*entity.LogbookEntry
	uploads  []backend.FilePart
}

func newStubBackend() *stubBackend {
	return &stubBackend{
		profiles: make(map[string]*entity.Profile),
		jobs:     make(map[string]*entity.Job),
	}
}

func (b *stubBackend) GetProfile(_ context.Context, _ string, role entity.Role, authID string) (*entity.Profile, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if p, ok := b.profiles[authID]; ok {
		return p, nil
	}
	if role == entity.RoleJobSeeker && authID != seekerUID {
		return &entity.Profile{
			AuthID:    authID,
			BackendID: "js-" + authID,
			Role:      role,
			JobSeeker: &entity.JobSeekerProfile{FullName: "Guard " + authID},
		}, nil
	}
	return nil, errors.NotFound("Profile", nil)
}

func (b *stubBackend) SaveProfile(_ context.Context, _ string, p *entity.Profile) (*entity.Profile, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	saved := *p
	if saved.BackendID == "" {
		saved.BackendID = "be-" + p.AuthID
	}
	b.profiles[p.AuthID] = &saved
	return &saved, nil
}

func (b *stubBackend) UploadDocument(_ context.Context, _ string, _ entity.Role, backendID, kind string, file backend.FilePart) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.uploads = append(b.uploads, file)
	return "https://files.example/" + backendID + "/" + kind, nil
}

func (b *stubBackend) CreateJob(_ context.Context, _ string, job *entity.Job) (*entity.Job, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	created := *job
	created.ID = fmt.Sprintf("job-%d", len(b.jobs)+1)
	created.Status = "open"
	b.jobs[created.ID] = &created
	return &created, nil
}

func (b *stubBackend) GetJob(_ context.Context, _ string, jobID string) (*entity.Job, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	job, ok := b.jobs[jobID]
	if !ok {
		return nil, errors.NotFound("Job", nil)
	}
	return job, nil
}

func (b *stubBackend) ListJobs(_ context.Context, _ string, companyID string) ([]*entity.Job, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []*entity.Job
	for _, j := range b.jobs {
		if companyID == "" || j.CompanyID == companyID {
			out = append(out, j)
		}
	}
	return out, nil
}

func (b *stubBackend) Apply(_ context.Context, _ string, app *entity.Application) (*entity.Application, error) {
	created := *app
	created.ID = "app-1"
	return &created, nil
}

func (b *stubBackend) CreateLogbookEntry(_ context.Context, _ string, entry *entity.LogbookEntry) (*entity.LogbookEntry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	created := *entry
	created.ID = fmt.Sprintf("log-%d", len(b.entries)+1)
	b.entries = append(b.entries, &created)
	return &created, nil
}

func (b *stubBackend) LatestLogbookEntry(_ context.Context, _ string, jobID, jobSeekerID string) (*entity.LogbookEntry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := len(b.entries) - 1; i >= 0; i-- {
		if e := b.entries[i]; e.JobID == jobID && e.JobSeekerID == jobSeekerID {
			return e, nil
		}
	}
	return nil, nil
}

type stubPusher struct {
	mu   sync.Mutex
	sent map[string][]ws.WSMessage
}

func newStubPusher() *stubPusher {
	return &stubPusher{sent: make(map[string][]ws.WSMessage)}
}

func (p *stubPusher) SendToUser(userID string, message ws.WSMessage) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent[userID] = append(p.sent[userID], message)
	return true
}

func (p *stubPusher) IsOnline(string) bool { return true }

func (p *stubPusher) frames(userID, messageType string) []ws.WSMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []ws.WSMessage
	for _, m := range p.sent[userID] {
		if m.Type == messageType {
			out = append(out, m)
		}
	}
	return out
}

type stubChatRepo struct {
	mu       sync.Mutex
	messages []*entity.Message
}

func (r *stubChatRepo) CreateMessage(_ context.Context, m *entity.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m.ID = fmt.Sprintf("m%d", len(r.messages)+1)
	r.messages = append(r.messages, m)
	return nil
}

func (r *stubChatRepo) UpsertRoom(context.Context, *entity.ChatRoom) error { return nil }

func (r *stubChatRepo) GetRoom(context.Context, string) (*entity.ChatRoom, error) {
	return nil, errors.NotFound("Chat room", nil)
}

func (r *stubChatRepo) ListMessages(_ context.Context, roomID string, _ int) ([]*entity.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Message
	for _, m := range r.messages {
		if m.RoomID == roomID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *stubChatRepo) WatchMessages(ctx context.Context, _ string, _ func(*entity.Message)) error {
	<-ctx.Done()
	return nil
}

type stubAuth struct{}

func (stubAuth) VerifyToken(_ context.Context, token string) (string, error) { return token, nil }
func (stubAuth) RevokeSessions(context.Context, string) error                { return nil }

type allowAll struct{}

func (allowAll) Allow(string, string) (bool, time.Duration) { return true, 0 }

type fixture struct {
	e          *echo.Echo
	identities *stubIdentities
	backend    *stubBackend
	pusher     *stubPusher
	chats      *stubChatRepo

	contacts *ContactHandler
	profile  *ProfileHandler
	job      *JobHandler
	checkIn  *CheckInHandler
	session  *SessionHandler
	live     *LiveSession
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	f := &fixture{
		e:          echo.New(),
		identities: newStubIdentities(),
		backend:    newStubBackend(),
		pusher:     newStubPusher(),
		chats:      &stubChatRepo{},
	}
	f.e.Validator = api.NewValidator()

	cache := localstore.NewCache(localstore.NewMemoryStore(), time.Minute)
	notifier := usecase.NewNotifier(f.pusher)
	gate := usecase.NewProfileGate(f.backend, cache)
	profiles := usecase.NewProfileUseCase(f.backend, cache, gate)
	contactSessions := usecase.NewContactSessions(ctx, usecase.LoaderDeps{
		Identities: f.identities,
		Directory:  f.backend,
		Cache:      cache,
	}, usecase.LoaderConfig{PageSize: 5})
	chat := usecase.NewChatUseCase(ctx, f.chats, f.identities, notifier, allowAll{})
	jobs := usecase.NewJobUseCase(f.backend, profiles)
	checkIns := usecase.NewCheckInUseCase(f.backend, f.backend, profiles, nil, allowAll{})
	sessions := usecase.NewSessionUseCase(f.identities, stubAuth{}, contactSessions, chat)

	f.contacts = NewContactHandler(contactSessions, notifier)
	f.profile = NewProfileHandler(profiles, gate, notifier)
	f.job = NewJobHandler(jobs, checkIns, notifier)
	f.checkIn = NewCheckInHandler(checkIns, notifier)
	f.session = NewSessionHandler(sessions)
	f.live = NewLiveSession(contactSessions, chat, gate, notifier, sessions)
	return f
}

// request builds a context for uid with a JSON body (if any).
func (f *fixture) request(method, target, uid string, role entity.Role, body string) (echo.Context, *httptest.ResponseRecorder) {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := f.e.NewContext(req, rec)
	c.Set(middleware.ContextUID, uid)
	c.Set(middleware.ContextRole, role)
	return c, rec
}

func (f *fixture) completeCompany() {
	f.backend.profiles[companyUID] = &entity.Profile{
		AuthID:    companyUID,
		BackendID: "be-co",
		Role:      entity.RoleCompany,
		Company: &entity.CompanyProfile{
			CompanyName:        "Shield Co",
			RegistrationNumber: "REG-1",
			Address:            "1 Main St",
			ContactPhone:       "555-0100",
			LogoURL:            "https://files.example/logo.png",
			LicenseURL:         "https://files.example/license.pdf",
		},
	}
}

func (f *fixture) completeSeeker() {
	f.backend.profiles[seekerUID] = &entity.Profile{
		AuthID:    seekerUID,
		BackendID: "be-js",
		Role:      entity.RoleJobSeeker,
		JobSeeker: &entity.JobSeekerProfile{
			FullName:       "Sam Guard",
			Phone:          "555-0101",
			Address:        "2 Side St",
			DateOfBirth:    time.Date(1990, 5, 1, 0, 0, 0, 0, time.UTC),
			LicenseNumber:  "LIC-9",
			CertificateURL: "https://files.example/cert.pdf",
		},
	}
}

type envelope struct {
	Success bool                `json:"success"`
	Data    json.RawMessage     `json:"data"`
	Error   *response.ErrorInfo `json:"error"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, data interface{}) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	if data != nil && len(env.Data) > 0 {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}

func assertStatus(t *testing.T, rec *httptest.ResponseRecorder, status int) {
	t.Helper()
	require.Equal(t, status, rec.Code, rec.Body.String())
}
