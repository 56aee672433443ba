package handler

import (
	"io"
	"time"

	"github.com/labstack/echo/v4"

	"securehire/internal/adapter/api/middleware"
	"securehire/internal/domain/entity"
	"securehire/internal/usecase"
	"securehire/pkg/errors"
	"securehire/pkg/response"
)

const maxUploadBytes = 5 << 20

type ProfileHandler struct {
	profileUseCase *usecase.ProfileUseCase
	gate           *usecase.ProfileGate
	notifier       *usecase.Notifier
}

func NewProfileHandler(profileUseCase *usecase.ProfileUseCase, gate *usecase.ProfileGate, notifier *usecase.Notifier) *ProfileHandler {
	return &ProfileHandler{
		profileUseCase: profileUseCase,
		gate:           gate,
		notifier:       notifier,
	}
}

// Fields other than the name may be saved empty; the completion gate reports them.
type companyProfileRequest struct {
	CompanyName        string `json:"company_name" validate:"required,max=200"`
	RegistrationNumber string `json:"registration_number" validate:"max=50"`
	Address            string `json:"address" validate:"max=500"`
	ContactPhone       string `json:"contact_phone" validate:"max=30"`
	Website            string `json:"website" validate:"omitempty,url"`
	About              string `json:"about" validate:"max=2000"`
}

type jobSeekerProfileRequest struct {
	FullName      string `json:"full_name" validate:"required,max=200"`
	Phone         string `json:"phone" validate:"max=30"`
	Address       string `json:"address" validate:"max=500"`
	DateOfBirth   string `json:"date_of_birth" validate:"omitempty,datetime=2006-01-02"` // YYYY-MM-DD
	LicenseNumber string `json:"license_number" validate:"max=50"`
	Bio           string `json:"bio" validate:"max=2000"`
}

func (h *ProfileHandler) GetProfile(c echo.Context) error {
	view, err := h.profileUseCase.GetProfile(c.Request().Context(), middleware.UserID(c), middleware.UserRole(c))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, view)
}

// GetCompletion answers whether gated actions are currently allowed.
func (h *ProfileHandler) GetCompletion(c echo.Context) error {
	complete, missing, err := h.gate.Check(c.Request().Context(), middleware.UserID(c), middleware.UserRole(c))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string]interface{}{
		"complete":       complete,
		"missing_fields": missing,
	})
}

func (h *ProfileHandler) UpdateProfile(c echo.Context) error {
	uid := middleware.UserID(c)
	role := middleware.UserRole(c)

	input, err := h.bindProfile(c, role)
	if err != nil {
		return response.Error(c, err)
	}

	profile, err := h.profileUseCase.UpdateProfile(c.Request().Context(), uid, role, input)
	if err != nil {
		h.notifier.Failure(uid, err)
		return response.Error(c, err)
	}

	h.notifier.Toast(uid, entity.ToastSuccess, "Profile saved")
	return response.Success(c, profile)
}

func (h *ProfileHandler) bindProfile(c echo.Context, role entity.Role) (usecase.UpdateProfileInput, error) {
	switch role {
	case entity.RoleCompany:
		var req companyProfileRequest
		if err := c.Bind(&req); err != nil {
			return usecase.UpdateProfileInput{}, err
		}
		if err := c.Validate(&req); err != nil {
			return usecase.UpdateProfileInput{}, err
		}
		return usecase.UpdateProfileInput{Company: &entity.CompanyProfile{
			CompanyName:        req.CompanyName,
			RegistrationNumber: req.RegistrationNumber,
			Address:            req.Address,
			ContactPhone:       req.ContactPhone,
			Website:            req.Website,
			About:              req.About,
		}}, nil

	case entity.RoleJobSeeker:
		var req jobSeekerProfileRequest
		if err := c.Bind(&req); err != nil {
			return usecase.UpdateProfileInput{}, err
		}
		if err := c.Validate(&req); err != nil {
			return usecase.UpdateProfileInput{}, err
		}
		js := &entity.JobSeekerProfile{
			FullName:      req.FullName,
			Phone:         req.Phone,
			Address:       req.Address,
			LicenseNumber: req.LicenseNumber,
			Bio:           req.Bio,
		}
		if req.DateOfBirth != "" {
			dob, err := time.Parse("2006-01-02", req.DateOfBirth)
			if err != nil {
				return usecase.UpdateProfileInput{}, errors.BadRequest("Invalid date of birth format, use YYYY-MM-DD", err)
			}
			js.DateOfBirth = dob
		}
		return usecase.UpdateProfileInput{JobSeeker: js}, nil
	}

	return usecase.UpdateProfileInput{}, errors.Forbidden("Unknown account type", nil)
}

// UploadDocument accepts multipart form data with a "kind" field and a "file" part.
func (h *ProfileHandler) UploadDocument(c echo.Context) error {
	uid := middleware.UserID(c)

	kind := c.FormValue("kind")
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return response.Error(c, errors.BadRequest("File is required", err))
	}
	if fileHeader.Size > maxUploadBytes {
		return response.Error(c, errors.BadRequest("File must be 5MB or smaller", nil))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return response.Error(c, errors.BadRequest("Failed to read uploaded file", err))
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		return response.Error(c, errors.BadRequest("Failed to read uploaded file", err))
	}

	url, err := h.profileUseCase.UploadDocument(c.Request().Context(), uid, middleware.UserRole(c), usecase.UploadDocumentInput{
		Kind:     kind,
		Filename: fileHeader.Filename,
		Content:  content,
	})
	if err != nil {
		h.notifier.Failure(uid, err)
		return response.Error(c, err)
	}

	h.notifier.Toast(uid, entity.ToastSuccess, "Document uploaded")
	return response.Created(c, map[string]string{"kind": kind, "url": url})
}
