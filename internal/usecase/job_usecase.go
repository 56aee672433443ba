package usecase

import (
	"context"
	"strings"
	"time"

	"securehire/internal/domain/entity"
	"securehire/pkg/errors"
	"securehire/pkg/logger"
)

type JobUseCase struct {
	backend  JobBackend
	profiles *ProfileUseCase
}

func NewJobUseCase(backend JobBackend, profiles *ProfileUseCase) *JobUseCase {
	return &JobUseCase{backend: backend, profiles: profiles}
}

type PostJobInput struct {
	Title       string
	Description string
	Address     string
	Latitude    float64
	Longitude   float64
	PayRate     float64
	ShiftStart  time.Time
	ShiftEnd    time.Time
	Guards      int
}

func (in PostJobInput) validate() error {
	switch {
	case strings.TrimSpace(in.Title) == "":
		return errors.BadRequest("Title is required", nil)
	case strings.TrimSpace(in.Address) == "":
		return errors.BadRequest("Address is required", nil)
	case in.Latitude < -90 || in.Latitude > 90:
		return errors.BadRequest("Latitude must be between -90 and 90", nil)
	case in.Longitude < -180 || in.Longitude > 180:
		return errors.BadRequest("Longitude must be between -180 and 180", nil)
	case in.PayRate < 0:
		return errors.BadRequest("Pay rate cannot be negative", nil)
	case !in.ShiftStart.IsZero() && !in.ShiftEnd.IsZero() && !in.ShiftEnd.After(in.ShiftStart):
		return errors.BadRequest("Shift must end after it starts", nil)
	}
	return nil
}

// PostJob publishes a job for the caller's company at the location picked on the map.
func (uc *JobUseCase) PostJob(ctx context.Context, uid string, input PostJobInput) (*entity.Job, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	companyID, err := uc.profiles.CompanyID(ctx, uid)
	if err != nil {
		return nil, err
	}

	guards := input.Guards
	if guards <= 0 {
		guards = 1
	}

	job, err := uc.backend.CreateJob(ctx, uid, &entity.Job{
		CompanyID:   companyID,
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		Address:     input.Address,
		Latitude:    input.Latitude,
		Longitude:   input.Longitude,
		PayRate:     input.PayRate,
		ShiftStart:  input.ShiftStart,
		ShiftEnd:    input.ShiftEnd,
		Guards:      guards,
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Job %s posted by company %s", job.ID, companyID)
	return job, nil
}

// ListJobs lists open jobs. A company asking for its own jobs gets only those.
func (uc *JobUseCase) ListJobs(ctx context.Context, uid string, role entity.Role, mine bool) ([]*entity.Job, error) {
	companyID := ""
	if mine && role == entity.RoleCompany {
		id, err := uc.profiles.CompanyID(ctx, uid)
		if err != nil {
			return nil, err
		}
		companyID = id
	}
	jobs, err := uc.backend.ListJobs(ctx, uid, companyID)
	if err != nil {
		return nil, err
	}
	if jobs == nil {
		jobs = []*entity.Job{}
	}
	return jobs, nil
}

func (uc *JobUseCase) GetJob(ctx context.Context, uid, jobID string) (*entity.Job, error) {
	if jobID == "" {
		return nil, errors.BadRequest("Job id is required", nil)
	}
	return uc.backend.GetJob(ctx, uid, jobID)
}

func (uc *JobUseCase) Apply(ctx context.Context, uid, jobID, coverNote string) (*entity.Application, error) {
	job, err := uc.GetJob(ctx, uid, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status == "closed" {
		return nil, errors.Conflict("This job is no longer accepting applications")
	}

	seekerID, err := uc.profiles.JobSeekerID(ctx, uid)
	if err != nil {
		return nil, err
	}

	app, err := uc.backend.Apply(ctx, uid, &entity.Application{
		JobID:       job.ID,
		JobSeekerID: seekerID,
		CoverNote:   strings.TrimSpace(coverNote),
		Status:      "pending",
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Job seeker %s applied to job %s", seekerID, job.ID)
	return app, nil
}
