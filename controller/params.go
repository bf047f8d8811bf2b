package controller

import (
	"net/url"
	"strings"
)

// Redirect parameter names the authority appends to the entry URL
const (
	ParamAccessToken    = "accessToken"
	ParamRefreshToken   = "refreshToken"
	ParamSessionID      = "sessionId"
	ParamSessionIDAlias = "SESSION_ID"
)

// RedirectParams are the tokens handed over by the authority after login.
type RedirectParams struct {
	AccessToken  string
	RefreshToken string
	SessionID    string
}

// ParseRedirectParams reads the redirect parameters from a query string
func ParseRedirectParams(query url.Values) RedirectParams {
	sessionID := query.Get(ParamSessionID)
	if sessionID == "" {
		sessionID = query.Get(ParamSessionIDAlias)
	}
	return RedirectParams{
		AccessToken:  strings.TrimSpace(query.Get(ParamAccessToken)),
		RefreshToken: strings.TrimSpace(query.Get(ParamRefreshToken)),
		SessionID:    strings.TrimSpace(sessionID),
	}
}

// Present is true only when all three parameters arrived
func (p RedirectParams) Present() bool {
	return p.AccessToken != "" && p.RefreshToken != "" && p.SessionID != ""
}

// Location is the page the browser is currently on.
type Location struct {
	Origin string // scheme://host[:port]
	Path   string
}

func (l Location) URL() string {
	return strings.TrimSuffix(l.Origin, "/") + l.Path
}

// Entry is a navigation to the portal's entry route
type Entry struct {
	Params   RedirectParams
	Location Location
}

// Action tells the HTTP surface what the browser should do next.
type Action int

const (
	ActionNone Action = iota
	ActionNavigateHome
	ActionRedirect
)

func (a Action) String() string {
	switch a {
	case ActionNavigateHome:
		return "navigate_home"
	case ActionRedirect:
		return "redirect"
	default:
		return "none"
	}
}

// Outcome is the result of one controller cycle.
type Outcome struct {
	State    State
	Action   Action
	Location string // absolute URL for ActionRedirect
	Cause    error  // why the cycle terminated, for logging
}
