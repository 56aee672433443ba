package usecase

import (
	"context"
	"time"

	"securehire/internal/domain/entity"
	"securehire/internal/domain/service"
	"securehire/pkg/errors"
	"securehire/pkg/logger"
)

const checkInPosterFolder = "checkin-qr"

type CheckInUseCase struct {
	jobs        JobBackend
	logbook     LogbookBackend
	profiles    *ProfileUseCase
	store       service.ObjectStore
	rateLimiter RateLimiter
}

// NewCheckInUseCase builds the check-in flow. store may be nil, in which case posters
// are only returned inline.
func NewCheckInUseCase(jobs JobBackend, logbook LogbookBackend, profiles *ProfileUseCase, store service.ObjectStore, rateLimiter RateLimiter) *CheckInUseCase {
	return &CheckInUseCase{
		jobs:        jobs,
		logbook:     logbook,
		profiles:    profiles,
		store:       store,
		rateLimiter: rateLimiter,
	}
}

// CheckInCode renders a fresh QR poster for one of the caller's jobs.
func (uc *CheckInUseCase) CheckInCode(ctx context.Context, uid, jobID string, size int) (*entity.CheckInCode, error) {
	job, err := uc.jobs.GetJob(ctx, uid, jobID)
	if err != nil {
		return nil, err
	}
	companyID, err := uc.profiles.CompanyID(ctx, uid)
	if err != nil {
		return nil, err
	}
	if job.CompanyID != companyID {
		return nil, errors.Forbidden("You can only print check-in codes for your own jobs", nil)
	}

	payload, nonce := service.NewCheckInPayload(job.ID)
	png, err := service.RenderQRCode(payload, size)
	if err != nil {
		return nil, errors.Internal("Failed to render check-in code", err)
	}

	code := &entity.CheckInCode{JobID: job.ID, Nonce: nonce, PNG: png}
	if uc.store != nil {
		url, err := uc.store.Put(ctx, checkInPosterFolder, "image/png", png)
		if err != nil {
			logger.Warn("Failed to store check-in poster for job %s: %v", job.ID, err)
		} else {
			code.URL = url
		}
	}
	return code, nil
}

type ScanInput struct {
	Payload   string
	Latitude  *float64
	Longitude *float64
}

// Scan records a guard scanning a job's QR code. Scans alternate between check-in and
// check-out.
func (uc *CheckInUseCase) Scan(ctx context.Context, uid string, input ScanInput) (*entity.LogbookEntry, error) {
	if allowed, wait := uc.rateLimiter.Allow(uid, "checkin"); !allowed {
		logger.Warn("Check-in rate limited: user %s must wait %v", uid, wait)
		return nil, errors.TooManyRequests("Please wait before scanning again")
	}

	jobID, nonce, err := service.ParseCheckInPayload(input.Payload)
	if err != nil {
		return nil, err
	}

	job, err := uc.jobs.GetJob(ctx, uid, jobID)
	if err != nil {
		return nil, err
	}
	seekerID, err := uc.profiles.JobSeekerID(ctx, uid)
	if err != nil {
		return nil, err
	}

	latest, err := uc.logbook.LatestLogbookEntry(ctx, uid, job.ID, seekerID)
	if err != nil {
		return nil, err
	}
	kind := entity.LogbookCheckIn
	if latest != nil && latest.Kind == entity.LogbookCheckIn {
		kind = entity.LogbookCheckOut
	}

	entry, err := uc.logbook.CreateLogbookEntry(ctx, uid, &entity.LogbookEntry{
		JobID:       job.ID,
		JobSeekerID: seekerID,
		Kind:        kind,
		Nonce:       nonce,
		Latitude:    input.Latitude,
		Longitude:   input.Longitude,
		RecordedAt:  time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Logbook %s recorded for job seeker %s on job %s", kind, seekerID, job.ID)
	return entry, nil
}
