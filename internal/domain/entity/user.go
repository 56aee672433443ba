package entity

import (
	"time"
)

type Role string

const (
	RoleCompany   Role = "company"
	RoleJobSeeker Role = "jobseeker"
)

func (r Role) Valid() bool {
	return r == RoleCompany || r == RoleJobSeeker
}

// Counterpart is the role listed in this role's chat sidebar.
func (r Role) Counterpart() Role {
	if r == RoleCompany {
		return RoleJobSeeker
	}
	return RoleCompany
}

// Identity names one person in both id spaces: the Firebase auth uid and the id the
// REST backend assigned. Either one alone identifies the person.
type Identity struct {
	AuthID    string `json:"auth_id"`
	BackendID string `json:"backend_id,omitempty"`
}

// Keys returns the namespaced lookup keys for the non-empty ids.
func (i Identity) Keys() []string {
	keys := make([]string, 0, 2)
	if i.AuthID != "" {
		keys = append(keys, "auth:"+i.AuthID)
	}
	if i.BackendID != "" {
		keys = append(keys, "backend:"+i.BackendID)
	}
	return keys
}

// IdentityRecord is the per-user document in the users collection. It is created at
// signup by the front end and only read here.
type IdentityRecord struct {
	ID          string    `json:"id" firestore:"-"`
	Role        Role      `json:"role" firestore:"role"`
	Email       string    `json:"email,omitempty" firestore:"email,omitempty"`
	DisplayName string    `json:"display_name,omitempty" firestore:"displayName,omitempty"`
	BackendID   string    `json:"backend_id,omitempty" firestore:"backendId,omitempty"`
	CreatedAt   time.Time `json:"created_at" firestore:"createdAt"`
}

func (r *IdentityRecord) Identity() Identity {
	return Identity{AuthID: r.ID, BackendID: r.BackendID}
}

// IdentityPage is one page of identity records. NextCursor is opaque to callers.
// Scanned counts every document the query returned, including ones that could not
// be decoded into Records.
type IdentityPage struct {
	Records    []*IdentityRecord
	NextCursor string
	Scanned    int
}
