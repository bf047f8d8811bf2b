package session

import "strings"

// Persisted field keys. The names match what the portal front end has always stored.
const (
	KeyUserID         = "id"
	KeyDisplayName    = "name"
	KeyEmail          = "email"
	KeyAvatarRef      = "image_id"
	KeyOrganizationID = "ORG_ID"
	KeyAccessToken    = "accessToken"
	KeyRefreshToken   = "refreshToken"
	KeySessionID      = "SESSION_ID"
	KeyRole           = "role"
	KeyPositionID     = "positionId"
)

// Session is the authenticated state of one browser profile.
type Session struct {
	// Identity and display
	UserID         string
	DisplayName    string
	Email          string
	AvatarRef      string
	OrganizationID string
	Role           string
	PositionID     string // optional

	// Credential material
	AccessToken  string
	RefreshToken string
	SessionID    string
}

// Missing lists the required keys that are empty.
func (s Session) Missing() []string {
	var missing []string
	for key, value := range s.required() {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, key)
		}
	}
	return missing
}

// Complete reports whether every required field is present. Incomplete sessions are
// treated as no session at all.
func (s Session) Complete() bool {
	for _, value := range s.required() {
		if strings.TrimSpace(value) == "" {
			return false
		}
	}
	return true
}

func (s Session) required() map[string]string {
	return map[string]string{
		KeyUserID:         s.UserID,
		KeyDisplayName:    s.DisplayName,
		KeyEmail:          s.Email,
		KeyAvatarRef:      s.AvatarRef,
		KeyOrganizationID: s.OrganizationID,
		KeyAccessToken:    s.AccessToken,
		KeyRefreshToken:   s.RefreshToken,
		KeySessionID:      s.SessionID,
		KeyRole:           s.Role,
	}
}

// WithTokens returns a copy carrying a rotated token pair
func (s Session) WithTokens(accessToken, refreshToken string) Session {
	s.AccessToken = accessToken
	s.RefreshToken = refreshToken
	return s
}

// Fields flattens the session into its persisted key/value form. Empty optional
// fields are left out.
func (s Session) Fields() map[string]string {
	fields := s.required()
	if s.PositionID != "" {
		fields[KeyPositionID] = s.PositionID
	}
	return fields
}

// FromFields rebuilds a session from its persisted key/value form
func FromFields(fields map[string]string) Session {
	return Session{
		UserID:         fields[KeyUserID],
		DisplayName:    fields[KeyDisplayName],
		Email:          fields[KeyEmail],
		AvatarRef:      fields[KeyAvatarRef],
		OrganizationID: fields[KeyOrganizationID],
		Role:           fields[KeyRole],
		PositionID:     fields[KeyPositionID],
		AccessToken:    fields[KeyAccessToken],
		RefreshToken:   fields[KeyRefreshToken],
		SessionID:      fields[KeySessionID],
	}
}
