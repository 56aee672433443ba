package entity

import "time"

type CompanyProfile struct {
	CompanyName        string `json:"company_name"`
	RegistrationNumber string `json:"registration_number"`
	Address            string `json:"address"`
	ContactPhone       string `json:"contact_phone"`
	Website            string `json:"website,omitempty"`
	About              string `json:"about,omitempty"`
	LogoURL            string `json:"logo_url"`
	LicenseURL         string `json:"license_url"`
}

type JobSeekerProfile struct {
	FullName       string    `json:"full_name"`
	Phone          string    `json:"phone"`
	Address        string    `json:"address"`
	DateOfBirth    time.Time `json:"date_of_birth"`
	LicenseNumber  string    `json:"license_number"`
	CertificateURL string    `json:"certificate_url"`
	Bio            string    `json:"bio,omitempty"`
	AvatarURL      string    `json:"avatar_url,omitempty"`
}

// Profile is the backend's view of a user. Exactly one of Company or JobSeeker is set,
// matching Role.
type Profile struct {
	AuthID    string            `json:"auth_id"`
	BackendID string            `json:"backend_id"`
	Role      Role              `json:"role"`
	Online    bool              `json:"online"`
	Company   *CompanyProfile   `json:"company,omitempty"`
	JobSeeker *JobSeekerProfile `json:"job_seeker,omitempty"`
}

// DisplayName, Avatar and Snippet feed the contact card.
func (p *Profile) DisplayName() string {
	switch {
	case p.Company != nil:
		return p.Company.CompanyName
	case p.JobSeeker != nil:
		return p.JobSeeker.FullName
	}
	return ""
}

func (p *Profile) Avatar() string {
	switch {
	case p.Company != nil:
		return p.Company.LogoURL
	case p.JobSeeker != nil:
		return p.JobSeeker.AvatarURL
	}
	return ""
}

func (p *Profile) Snippet() string {
	switch {
	case p.Company != nil:
		if p.Company.About != "" {
			return p.Company.About
		}
		return p.Company.Address
	case p.JobSeeker != nil:
		if p.JobSeeker.Bio != "" {
			return p.JobSeeker.Bio
		}
		return p.JobSeeker.Address
	}
	return ""
}
