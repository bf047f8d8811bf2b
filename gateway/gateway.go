package gateway

import "context"

// AuthGateway is the backend the session lifecycle depends on.
type AuthGateway interface {
	// Verify returns the HTTP status the backend gave the access token (200, 401, 403, ...).
	// An error means no status was obtained at all.
	Verify(ctx context.Context, accessToken string) (int, error)

	// Refresh exchanges a refresh token for a new token pair. Any answer that is not a
	// complete pair is errors.ErrRefreshRejected.
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)

	// LookupBySession returns the authority's record for a session, or nil when it has none.
	LookupBySession(ctx context.Context, sessionID, userID string) (*StoredTokenRecord, error)
}

// TokenPair is a freshly minted access/refresh token pair
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// StoredTokenRecord is the authority's last known token pair for a (session, user)
type StoredTokenRecord struct {
	AccessToken  string `json:"ACCESS_TOKEN"`
	RefreshToken string `json:"REFRESH_TOKEN"`
}

// refreshResponse mirrors the refresh endpoint body. Pointers distinguish absent from empty.
type refreshResponse struct {
	AccessToken  *string `json:"accessToken,omitempty"`
	RefreshToken *string `json:"refreshToken,omitempty"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type roleResponse struct {
	Role *string `json:"role,omitempty"`
}
