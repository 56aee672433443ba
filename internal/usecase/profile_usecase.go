package usecase

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"securehire/internal/domain/entity"
	"securehire/internal/domain/repository"
	"securehire/internal/domain/service"
	"securehire/internal/infrastructure/backend"
	"securehire/pkg/errors"
	"securehire/pkg/logger"
)

const maxDocumentSize = 5 << 20

var documentKinds = map[entity.Role]map[string][]string{
	entity.RoleCompany: {
		"logo":    {"image/png", "image/jpeg"},
		"license": {"image/png", "image/jpeg", "application/pdf"},
	},
	entity.RoleJobSeeker: {
		"avatar":      {"image/png", "image/jpeg"},
		"certificate": {"image/png", "image/jpeg", "application/pdf"},
	},
}

type ProfileUseCase struct {
	backend ProfileBackend
	cache   repository.LocalCache
	gate    *ProfileGate
}

func NewProfileUseCase(backend ProfileBackend, cache repository.LocalCache, gate *ProfileGate) *ProfileUseCase {
	return &ProfileUseCase{backend: backend, cache: cache, gate: gate}
}

type ProfileView struct {
	Profile  *entity.Profile `json:"profile"`
	Complete bool            `json:"complete"`
	Missing  []string        `json:"missing_fields,omitempty"`
}

type UpdateProfileInput struct {
	Company   *entity.CompanyProfile
	JobSeeker *entity.JobSeekerProfile
}

// GetProfile returns the caller's own profile. A user who never saved one gets an empty
// profile listing every field as missing.
func (uc *ProfileUseCase) GetProfile(ctx context.Context, uid string, role entity.Role) (*ProfileView, error) {
	profile, err := uc.load(ctx, uid, role)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		profile = &entity.Profile{AuthID: uid, Role: role}
	}

	missing := service.MissingFields(role, profile)
	return &ProfileView{Profile: profile, Complete: len(missing) == 0, Missing: missing}, nil
}

func (uc *ProfileUseCase) load(ctx context.Context, uid string, role entity.Role) (*entity.Profile, error) {
	profile, err := uc.backend.GetProfile(ctx, uid, role, uid)
	if err != nil {
		if errors.Is(err, errors.CodeNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return profile, nil
}

// UpdateProfile creates or updates the caller's profile. Document URLs are only set by
// UploadDocument, so empty ones in input keep their stored value.
func (uc *ProfileUseCase) UpdateProfile(ctx context.Context, uid string, role entity.Role, input UpdateProfileInput) (*entity.Profile, error) {
	existing, err := uc.load(ctx, uid, role)
	if err != nil {
		return nil, err
	}

	profile := &entity.Profile{AuthID: uid, Role: role}
	if existing != nil {
		profile.BackendID = existing.BackendID
	}

	switch role {
	case entity.RoleCompany:
		if input.Company == nil {
			return nil, errors.BadRequest("Company details are required", nil)
		}
		c := *input.Company
		if existing != nil && existing.Company != nil {
			c.LogoURL = keep(c.LogoURL, existing.Company.LogoURL)
			c.LicenseURL = keep(c.LicenseURL, existing.Company.LicenseURL)
		}
		profile.Company = &c
	case entity.RoleJobSeeker:
		if input.JobSeeker == nil {
			return nil, errors.BadRequest("Job seeker details are required", nil)
		}
		js := *input.JobSeeker
		if existing != nil && existing.JobSeeker != nil {
			js.CertificateURL = keep(js.CertificateURL, existing.JobSeeker.CertificateURL)
			js.AvatarURL = keep(js.AvatarURL, existing.JobSeeker.AvatarURL)
		}
		profile.JobSeeker = &js
	default:
		return nil, errors.BadRequest("Unknown role", nil)
	}

	saved, err := uc.backend.SaveProfile(ctx, uid, profile)
	if err != nil {
		return nil, err
	}

	if role == entity.RoleCompany && saved.BackendID != "" {
		if err := uc.cache.SetCompanyID(ctx, uid, saved.BackendID); err != nil {
			logger.Warn("Failed to cache company id for %s: %v", uid, err)
		}
	}
	uc.gate.Invalidate(ctx, uid, role)

	logger.Info("Profile saved for %s (%s), backend id %s", uid, role, saved.BackendID)
	return saved, nil
}

func keep(value, stored string) string {
	if strings.TrimSpace(value) == "" {
		return stored
	}
	return value
}

type UploadDocumentInput struct {
	Kind     string
	Filename string
	Content  []byte
}

// UploadDocument sniffs the file type, forwards the file to the backend and returns the
// stored URL. The profile must exist first.
func (uc *ProfileUseCase) UploadDocument(ctx context.Context, uid string, role entity.Role, input UploadDocumentInput) (string, error) {
	allowed, ok := documentKinds[role][input.Kind]
	if !ok {
		return "", errors.BadRequest("Unsupported document kind "+input.Kind, nil)
	}
	if len(input.Content) == 0 {
		return "", errors.BadRequest("File is empty", nil)
	}
	if len(input.Content) > maxDocumentSize {
		return "", errors.BadRequest("File must be 5MB or smaller", nil)
	}

	mt := mimetype.Detect(input.Content)
	if !mimetype.EqualsAny(mt.String(), allowed...) {
		return "", errors.BadRequest("File type "+mt.String()+" is not allowed for "+input.Kind, nil)
	}

	backendID, err := uc.backendID(ctx, uid, role)
	if err != nil {
		return "", err
	}

	filename := filepath.Base(input.Filename)
	if filename == "." || filename == "/" || filename == "" {
		filename = input.Kind + mt.Extension()
	}

	url, err := uc.backend.UploadDocument(ctx, uid, role, backendID, input.Kind, backend.FilePart{
		Filename:    filename,
		ContentType: mt.String(),
		Content:     input.Content,
	})
	if err != nil {
		return "", err
	}

	uc.gate.Invalidate(ctx, uid, role)
	return url, nil
}

func (uc *ProfileUseCase) backendID(ctx context.Context, uid string, role entity.Role) (string, error) {
	if role == entity.RoleCompany {
		if id, ok := uc.cache.CompanyID(ctx, uid); ok {
			return id, nil
		}
	}

	profile, err := uc.load(ctx, uid, role)
	if err != nil {
		return "", err
	}
	if profile == nil || profile.BackendID == "" {
		return "", errors.BadRequest("Save your profile before uploading documents", nil)
	}
	if role == entity.RoleCompany {
		if err := uc.cache.SetCompanyID(ctx, uid, profile.BackendID); err != nil {
			logger.Warn("Failed to cache company id for %s: %v", uid, err)
		}
	}
	return profile.BackendID, nil
}

// CompanyID returns the backend id of uid's company.
func (uc *ProfileUseCase) CompanyID(ctx context.Context, uid string) (string, error) {
	return uc.backendID(ctx, uid, entity.RoleCompany)
}

// JobSeekerID returns the backend id of uid's job seeker profile.
func (uc *ProfileUseCase) JobSeekerID(ctx context.Context, uid string) (string, error) {
	return uc.backendID(ctx, uid, entity.RoleJobSeeker)
}
