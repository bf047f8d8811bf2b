package controller

import (
	"context"

	"github.com/jrsteele09/go-portal-session/session"
	"github.com/jrsteele09/go-portal-session/token"
	"github.com/rs/zerolog/log"
)

func (c *Controller) decodeToken(cyc *cycle) Event {
	claims, err := token.Decode(cyc.params.AccessToken)
	if err != nil {
		cyc.cause = err
		return EventDecodeFailed
	}

	s := c.sessionFromClaims(claims, cyc.params)
	cyc.session = &s
	return EventDecoded
}

// persistSession resolves the role and writes the new session in one go. A session
// that is still incomplete at this point is rejected by the store and nothing is kept.
func (c *Controller) persistSession(ctx context.Context, cyc *cycle) Event {
	role, err := c.roles.ResolveRole(ctx, cyc.session.PositionID)
	if err != nil {
		log.Warn().Err(err).Str("profile", c.profileID).Str("position", cyc.session.PositionID).Msg("role lookup failed")
	}
	cyc.session.Role = role

	if err := c.store.Write(ctx, c.profileID, *cyc.session); err != nil {
		cyc.cause = err
		return EventPersistFailed
	}

	cyc.committed = true
	return EventPersisted
}

// sessionFromClaims maps the token profile onto a session. Tokens without any mail claim
// fall back to the employee id for email, as they do for the avatar reference.
func (c *Controller) sessionFromClaims(claims *token.Claims, params RedirectParams) session.Session {
	profile := claims.Profile
	return session.Session{
		UserID:         profile.EmployeeID,
		DisplayName:    profile.DisplayName(),
		Email:          firstNonEmpty(profile.Email, claims.User, claims.Subject, profile.EmployeeID),
		AvatarRef:      firstNonEmpty(profile.ImageID, profile.EmployeeID),
		OrganizationID: profile.OrganizationID,
		PositionID:     profile.PositionID,
		AccessToken:    params.AccessToken,
		RefreshToken:   params.RefreshToken,
		SessionID:      params.SessionID,
	}
}

// readSession treats a store failure the same as no session
func (c *Controller) readSession(ctx context.Context) *session.Session {
	s, err := c.store.Read(ctx, c.profileID)
	if err != nil {
		log.Warn().Err(err).Str("profile", c.profileID).Msg("session store read failed")
		return nil
	}
	return s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
