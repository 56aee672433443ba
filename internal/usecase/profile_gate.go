package usecase

import (
	"context"

	"securehire/internal/domain/entity"
	"securehire/internal/domain/repository"
	"securehire/internal/domain/service"
	"securehire/pkg/errors"
	"securehire/pkg/logger"
)

// GateResult tells the caller whether the completion prompt should be shown instead of
// the requested action.
type GateResult struct {
	ModalShown bool     `json:"modal_shown"`
	Missing    []string `json:"missing_fields,omitempty"`
}

// ProfileGate only lets actions through for users whose profile is complete. A positive
// answer is cached; a negative one is always re-checked against the backend.
type ProfileGate struct {
	directory ProfileDirectory
	cache     repository.LocalCache
}

func NewProfileGate(directory ProfileDirectory, cache repository.LocalCache) *ProfileGate {
	return &ProfileGate{directory: directory, cache: cache}
}

// Check reports whether uid's profile for role is complete and, if not, which fields are
// missing. A user without any profile yet is missing every field.
func (g *ProfileGate) Check(ctx context.Context, uid string, role entity.Role) (bool, []string, error) {
	if g.cache != nil {
		if complete, ok := g.cache.ProfileComplete(ctx, role, uid); ok && complete {
			return true, nil, nil
		}
	}

	profile, err := g.directory.GetProfile(ctx, uid, role, uid)
	if err != nil {
		if !errors.Is(err, errors.CodeNotFound) {
			return false, nil, err
		}
		profile = nil
	}

	missing := service.MissingFields(role, profile)
	if len(missing) > 0 {
		return false, missing, nil
	}

	if g.cache != nil {
		if err := g.cache.SetProfileComplete(ctx, role, uid, true); err != nil {
			logger.Warn("Failed to cache profile completion for %s: %v", uid, err)
		}
	}
	return true, nil, nil
}

// Guard runs action only when the profile is complete. Otherwise action is not called
// and the result has ModalShown set.
func (g *ProfileGate) Guard(ctx context.Context, uid string, role entity.Role, action func() error) (GateResult, error) {
	complete, missing, err := g.Check(ctx, uid, role)
	if err != nil {
		return GateResult{}, err
	}
	if !complete {
		return GateResult{ModalShown: true, Missing: missing}, nil
	}
	if action == nil {
		return GateResult{}, nil
	}
	return GateResult{}, action()
}

func (g *ProfileGate) Invalidate(ctx context.Context, uid string, role entity.Role) {
	if g.cache == nil {
		return
	}
	if err := g.cache.InvalidateProfileComplete(ctx, role, uid); err != nil {
		logger.Warn("Failed to invalidate profile completion for %s: %v", uid, err)
	}
}
