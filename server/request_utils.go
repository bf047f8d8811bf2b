package server

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-portal-session/controller"
)

const (
	contentTypeJSON = "application/json; charset=utf-8"

	// Request headers HTMX sends with every request it issues
	headerHXRequest    = "HX-Request"
	headerHXCurrentURL = "HX-Current-URL"
	headerHXRedirect   = "HX-Redirect"
)

// profileID returns the browser profile identifier, issuing a new profile cookie when the
// request carries none or an unusable one.
func (s *Server) profileID(w http.ResponseWriter, r *http.Request) string {
	name := s.config.GetProfileCookieName()
	if cookie, err := r.Cookie(name); err == nil {
		if id, err := uuid.Parse(cookie.Value); err == nil {
			return id.String()
		}
	}

	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   getScheme(r) == "https",
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.config.GetProfileCookieMaxAge().Seconds()),
	})
	return id
}

// currentLocation is the page the user is looking at. For POSTs issued from a page that is
// the HTMX current URL or the referrer, when they belong to this host.
func currentLocation(r *http.Request) controller.Location {
	origin := getScheme(r) + "://" + r.Host
	if r.Method == http.MethodGet {
		return controller.Location{Origin: origin, Path: r.URL.Path}
	}

	for _, header := range []string{headerHXCurrentURL, "Referer"} {
		u, err := url.Parse(r.Header.Get(header))
		if err == nil && u.Host == r.Host && u.Path != "" {
			return controller.Location{Origin: origin, Path: u.Path}
		}
	}
	return controller.Location{Origin: origin, Path: RouteHome}
}

// redirectSuccess helper for htmx-aware redirects
func redirectSuccess(w http.ResponseWriter, r *http.Request, path string) {
	if isHTMXRequest(r) {
		w.Header().Set(headerHXRedirect, path)
		w.WriteHeader(http.StatusNoContent) // 204 - no content, just redirect instruction
		return
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// isHTMXRequest checks if the request was initiated by HTMX
func isHTMXRequest(r *http.Request) bool {
	return r.Header.Get(headerHXRequest) == "true"
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeJSONError(w http.ResponseWriter, errorCode, description string, statusCode int) {
	writeJSON(w, statusCode, map[string]string{
		"error":             errorCode,
		"error_description": description,
	})
}
