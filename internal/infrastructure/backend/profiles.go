package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"securehire/internal/domain/entity"
)

type companyDTO struct {
	ID                 string `json:"id,omitempty"`
	UserID             string `json:"userId"`
	CompanyName        string `json:"companyName"`
	RegistrationNumber string `json:"registrationNumber"`
	Address            string `json:"address"`
	Phone              string `json:"phone"`
	Website            string `json:"website,omitempty"`
	About              string `json:"about,omitempty"`
	LogoURL            string `json:"logoUrl,omitempty"`
	LicenseURL         string `json:"licenseUrl,omitempty"`
	IsOnline           bool   `json:"isOnline,omitempty"`
}

type jobSeekerDTO struct {
	ID             string `json:"id,omitempty"`
	UserID         string `json:"userId"`
	FullName       string `json:"fullName"`
	Phone          string `json:"phone"`
	Address        string `json:"address"`
	DateOfBirth    string `json:"dateOfBirth,omitempty"`
	LicenseNumber  string `json:"licenseNumber"`
	CertificateURL string `json:"certificateUrl,omitempty"`
	Bio            string `json:"bio,omitempty"`
	AvatarURL      string `json:"avatarUrl,omitempty"`
	IsOnline       bool   `json:"isOnline,omitempty"`
}

const dateLayout = "2006-01-02"

func (d *companyDTO) toProfile() *entity.Profile {
	return &entity.Profile{
		AuthID:    d.UserID,
		BackendID: d.ID,
		Role:      entity.RoleCompany,
		Online:    d.IsOnline,
		Company: &entity.CompanyProfile{
			CompanyName:        d.CompanyName,
			RegistrationNumber: d.RegistrationNumber,
			Address:            d.Address,
			ContactPhone:       d.Phone,
			Website:            d.Website,
			About:              d.About,
			LogoURL:            d.LogoURL,
			LicenseURL:         d.LicenseURL,
		},
	}
}

func (d *jobSeekerDTO) toProfile() *entity.Profile {
	// A malformed date reads as missing, which the completeness check reports.
	dob, _ := time.Parse(dateLayout, d.DateOfBirth)
	return &entity.Profile{
		AuthID:    d.UserID,
		BackendID: d.ID,
		Role:      entity.RoleJobSeeker,
		Online:    d.IsOnline,
		JobSeeker: &entity.JobSeekerProfile{
			FullName:       d.FullName,
			Phone:          d.Phone,
			Address:        d.Address,
			DateOfBirth:    dob,
			LicenseNumber:  d.LicenseNumber,
			CertificateURL: d.CertificateURL,
			Bio:            d.Bio,
			AvatarURL:      d.AvatarURL,
		},
	}
}

func resource(role entity.Role) string {
	if role == entity.RoleCompany {
		return "companies"
	}
	return "jobseekers"
}

// GetProfile fetches the backend profile of authID as seen by callerUID.
func (c *Client) GetProfile(ctx context.Context, callerUID string, role entity.Role, authID string) (*entity.Profile, error) {
	path := fmt.Sprintf("/api/%s/user/%s", resource(role), url.PathEscape(authID))

	if role == entity.RoleCompany {
		var dto companyDTO
		if err := c.doJSON(ctx, http.MethodGet, path, callerUID, nil, &dto); err != nil {
			return nil, err
		}
		return dto.toProfile(), nil
	}

	var dto jobSeekerDTO
	if err := c.doJSON(ctx, http.MethodGet, path, callerUID, nil, &dto); err != nil {
		return nil, err
	}
	return dto.toProfile(), nil
}

// SaveProfile creates the profile when p.BackendID is empty and updates it otherwise.
func (c *Client) SaveProfile(ctx context.Context, callerUID string, p *entity.Profile) (*entity.Profile, error) {
	method := http.MethodPost
	path := "/api/" + resource(p.Role)
	if p.BackendID != "" {
		method = http.MethodPut
		path += "/" + url.PathEscape(p.BackendID)
	}

	switch {
	case p.Role == entity.RoleCompany && p.Company != nil:
		in := companyDTO{
			UserID:             callerUID,
			CompanyName:        p.Company.CompanyName,
			RegistrationNumber: p.Company.RegistrationNumber,
			Address:            p.Company.Address,
			Phone:              p.Company.ContactPhone,
			Website:            p.Company.Website,
			About:              p.Company.About,
			LogoURL:            p.Company.LogoURL,
			LicenseURL:         p.Company.LicenseURL,
		}
		var out companyDTO
		if err := c.doJSON(ctx, method, path, callerUID, in, &out); err != nil {
			return nil, err
		}
		return out.toProfile(), nil

	case p.Role == entity.RoleJobSeeker && p.JobSeeker != nil:
		in := jobSeekerDTO{
			UserID:         callerUID,
			FullName:       p.JobSeeker.FullName,
			Phone:          p.JobSeeker.Phone,
			Address:        p.JobSeeker.Address,
			LicenseNumber:  p.JobSeeker.LicenseNumber,
			CertificateURL: p.JobSeeker.CertificateURL,
			Bio:            p.JobSeeker.Bio,
			AvatarURL:      p.JobSeeker.AvatarURL,
		}
		if !p.JobSeeker.DateOfBirth.IsZero() {
			in.DateOfBirth = p.JobSeeker.DateOfBirth.Format(dateLayout)
		}
		var out jobSeekerDTO
		if err := c.doJSON(ctx, method, path, callerUID, in, &out); err != nil {
			return nil, err
		}
		return out.toProfile(), nil
	}

	return nil, fmt.Errorf("profile for role %q has no matching details", p.Role)
}

type uploadResponse struct {
	URL string `json:"url"`
}

// UploadDocument sends a logo, certificate or license file as multipart form data and
// returns the URL the backend stored it under.
func (c *Client) UploadDocument(ctx context.Context, callerUID string, role entity.Role, backendID, kind string, file FilePart) (string, error) {
	path := fmt.Sprintf("/api/%s/%s/documents", resource(role), url.PathEscape(backendID))
	file.Field = "file"

	var out uploadResponse
	if err := c.doMultipart(ctx, path, callerUID, map[string]string{"kind": kind}, file, &out); err != nil {
		return "", err
	}
	return out.URL, nil
}
