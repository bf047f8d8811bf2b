package server

import (
	"context"
	"net/http"

	"github.com/jrsteele09/go-portal-session/controller"
	"github.com/jrsteele09/go-portal-session/internal/errors"
	"github.com/rs/zerolog/log"
)

// HomeView is what the portal shell shows about the signed-in user. Tokens never leave
// the server.
type HomeView struct {
	UserID         string `json:"userId"`
	DisplayName    string `json:"displayName"`
	Email          string `json:"email"`
	AvatarRef      string `json:"avatarRef"`
	OrganizationID string `json:"organizationId"`
	Role           string `json:"role"`
	PositionID     string `json:"positionId,omitempty"`
}

type verifyResponse struct {
	State string `json:"state"`
}

// EntryHandler is where the identity authority lands the browser. Redirect parameters
// always start a new lifecycle; otherwise a stored session is picked up or the user is
// sent to log in.
func (s *Server) EntryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profileID := s.profileID(w, r)
		location := currentLocation(r)

		params := controller.ParseRedirectParams(r.URL.Query())
		if params.Present() {
			ctrl := s.controllers.Replace(profileID)
			outcome, err := ctrl.Enter(r.Context(), controller.Entry{Params: params, Location: location})
			if err != nil {
				s.writeControllerError(w, profileID, err)
				return
			}
			s.follow(w, r, profileID, outcome)
			return
		}

		_, outcome, err := s.ensureEntered(r.Context(), profileID, location)
		if err != nil {
			s.writeControllerError(w, profileID, err)
			return
		}
		if outcome.Action == controller.ActionNone {
			outcome.Action = controller.ActionNavigateHome
		}
		s.follow(w, r, profileID, outcome)
	}
}

// HomeHandler returns the signed-in user's display attributes
func (s *Server) HomeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profileID := s.profileID(w, r)
		location := currentLocation(r)

		ctrl, outcome, err := s.ensureEntered(r.Context(), profileID, location)
		if err != nil {
			s.writeControllerError(w, profileID, err)
			return
		}
		if outcome.Action != controller.ActionNone {
			s.follow(w, r, profileID, outcome)
			return
		}

		sess := ctrl.Session(r.Context())
		if sess == nil {
			// The store lost the session behind the controller's back; start over
			outcome, err = s.controllers.Replace(profileID).Enter(r.Context(), controller.Entry{Location: location})
			if err != nil {
				s.writeControllerError(w, profileID, err)
				return
			}
			s.follow(w, r, profileID, outcome)
			return
		}

		writeJSON(w, http.StatusOK, HomeView{
			UserID:         sess.UserID,
			DisplayName:    sess.DisplayName,
			Email:          sess.Email,
			AvatarRef:      sess.AvatarRef,
			OrganizationID: sess.OrganizationID,
			Role:           sess.Role,
			PositionID:     sess.PositionID,
		})
	}
}

// VerifyHandler checks the session with the backend on demand
func (s *Server) VerifyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profileID := s.profileID(w, r)
		location := currentLocation(r)

		ctrl, outcome, err := s.ensureEntered(r.Context(), profileID, location)
		if err == nil && outcome.Action == controller.ActionNone {
			outcome, err = ctrl.Verify(r.Context(), location)
		}
		if err != nil {
			s.writeControllerError(w, profileID, err)
			return
		}
		if outcome.Action != controller.ActionNone {
			s.follow(w, r, profileID, outcome)
			return
		}
		if outcome.Cause != nil {
			// The cycle was abandoned; nothing changed
			writeJSONError(w, "abandoned", outcome.Cause.Error(), http.StatusConflict)
			return
		}

		writeJSON(w, http.StatusOK, verifyResponse{State: outcome.State.String()})
	}
}

// LogoutHandler signs the user out of the portal and the identity authority
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profileID := s.profileID(w, r)
		location := currentLocation(r)

		ctrl, outcome, err := s.ensureEntered(r.Context(), profileID, location)
		if err == nil && outcome.Action == controller.ActionNone {
			outcome, err = ctrl.Logout(r.Context(), location)
		}
		if err != nil {
			s.writeControllerError(w, profileID, err)
			return
		}
		s.follow(w, r, profileID, outcome)
	}
}

// ensureEntered makes sure the profile's controller has been through Enter. A terminated
// controller is replaced, since only a fresh navigation cycle can recover.
func (s *Server) ensureEntered(ctx context.Context, profileID string, location controller.Location) (*controller.Controller, controller.Outcome, error) {
	ctrl := s.controllers.Get(profileID)
	switch ctrl.State() {
	case controller.Terminated:
		ctrl = s.controllers.Replace(profileID)
	case controller.Unauthenticated:
	default:
		return ctrl, controller.Outcome{State: ctrl.State()}, nil
	}

	outcome, err := ctrl.Enter(ctx, controller.Entry{Location: location})
	return ctrl, outcome, err
}

// follow turns a controller outcome into the browser's next navigation
func (s *Server) follow(w http.ResponseWriter, r *http.Request, profileID string, outcome controller.Outcome) {
	if outcome.State == controller.Terminated {
		s.controllers.Drop(profileID)
	}

	switch outcome.Action {
	case controller.ActionNavigateHome:
		redirectSuccess(w, r, RouteHome)
	case controller.ActionRedirect:
		redirectSuccess(w, r, outcome.Location)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) writeControllerError(w http.ResponseWriter, profileID string, err error) {
	switch {
	case errors.Is(err, errors.ErrVerificationInFlight):
		writeJSONError(w, "in_flight", "a session check is already running", http.StatusConflict)
	case errors.Is(err, errors.ErrInvalidTransition):
		writeJSONError(w, "invalid_state", err.Error(), http.StatusConflict)
	default:
		log.Err(err).Str("profile", profileID).Msg("session controller failed")
		writeJSONError(w, "internal_error", "internal server error", http.StatusInternalServerError)
	}
}
