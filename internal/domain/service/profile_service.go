package service

import (
	"strings"

	"securehire/internal/domain/entity"
)

// MissingFields lists the required profile fields that are empty. It is the single
// definition of a complete profile; a nil profile is missing everything for its role.
func MissingFields(role entity.Role, p *entity.Profile) []string {
	var missing []string
	check := func(name, value string) {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}

	switch role {
	case entity.RoleCompany:
		c := &entity.CompanyProfile{}
		if p != nil && p.Company != nil {
			c = p.Company
		}
		check("company_name", c.CompanyName)
		check("registration_number", c.RegistrationNumber)
		check("address", c.Address)
		check("contact_phone", c.ContactPhone)
		check("logo_url", c.LogoURL)
		check("license_url", c.LicenseURL)

	case entity.RoleJobSeeker:
		js := &entity.JobSeekerProfile{}
		if p != nil && p.JobSeeker != nil {
			js = p.JobSeeker
		}
		check("full_name", js.FullName)
		check("phone", js.Phone)
		check("address", js.Address)
		if js.DateOfBirth.IsZero() {
			missing = append(missing, "date_of_birth")
		}
		check("license_number", js.LicenseNumber)
		check("certificate_url", js.CertificateURL)

	default:
		missing = append(missing, "role")
	}

	return missing
}

func IsProfileComplete(role entity.Role, p *entity.Profile) bool {
	return len(MissingFields(role, p)) == 0
}
