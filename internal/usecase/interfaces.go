package usecase

import (
	"context"
	"time"

	"securehire/internal/domain/entity"
	"securehire/internal/infrastructure/backend"
	ws "securehire/internal/infrastructure/websocket"
)

type FirebaseAuthClient interface {
	VerifyToken(ctx context.Context, token string) (string, error)
	RevokeSessions(ctx context.Context, uid string) error
}

// ProfileDirectory looks up the backend profile of authID. callerUID identifies the
// caller to the backend.
type ProfileDirectory interface {
	GetProfile(ctx context.Context, callerUID string, role entity.Role, authID string) (*entity.Profile, error)
}

type ProfileBackend interface {
	ProfileDirectory
	SaveProfile(ctx context.Context, callerUID string, p *entity.Profile) (*entity.Profile, error)
	UploadDocument(ctx context.Context, callerUID string, role entity.Role, backendID, kind string, file backend.FilePart) (string, error)
}

type JobBackend interface {
	CreateJob(ctx context.Context, callerUID string, job *entity.Job) (*entity.Job, error)
	GetJob(ctx context.Context, callerUID, jobID string) (*entity.Job, error)
	ListJobs(ctx context.Context, callerUID, companyID string) ([]*entity.Job, error)
	Apply(ctx context.Context, callerUID string, app *entity.Application) (*entity.Application, error)
}

type LogbookBackend interface {
	CreateLogbookEntry(ctx context.Context, callerUID string, entry *entity.LogbookEntry) (*entity.LogbookEntry, error)
	LatestLogbookEntry(ctx context.Context, callerUID, jobID, jobSeekerID string) (*entity.LogbookEntry, error)
}

// Pusher delivers frames to a connected user. *websocket.Manager implements it.
type Pusher interface {
	SendToUser(userID string, message ws.WSMessage) bool
	IsOnline(userID string) bool
}

// RateLimiter is satisfied by *ratelimit.RateLimiter.
type RateLimiter interface {
	Allow(userID, action string) (bool, time.Duration)
}
