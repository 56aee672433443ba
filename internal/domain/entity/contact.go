package entity

// Contact is an identity record joined with the backend profile, as shown in the chat sidebar.
type Contact struct {
	AuthID    string `json:"auth_id"`
	BackendID string `json:"backend_id,omitempty"`
	Role      Role   `json:"role"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url,omitempty"`
	Bio       string `json:"bio,omitempty"`
	Online    bool   `json:"online"`
	FromCache bool   `json:"from_cache,omitempty"`
}

func (c *Contact) Identity() Identity {
	return Identity{AuthID: c.AuthID, BackendID: c.BackendID}
}
