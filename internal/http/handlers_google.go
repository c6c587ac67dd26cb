package http

import (
	"context"
	"crypto/subtle"
	"net/http"
	"time"

	"financaszen/internal/google"
	"financaszen/internal/log"
)

const (
	StateCookie     = "google_auth_state"
	stateMaxAge     = 300
	googleCallLimit = 15 * time.Second
)

// handleGoogleAuth starts the consent flow, or finishes it when Google
// redirects back with a code.
func (s *Server) handleGoogleAuth(w http.ResponseWriter, r *http.Request) {
	if s.oauth == nil || s.calendar == nil {
		s.writeError(w, r, errGoogleDisabled)
		return
	}
	q := r.URL.Query()
	if e := q.Get("error"); e != "" {
		s.logger.WarnContext(r.Context(), "Google consent refused", "oauth_error", sanitizeInput(e))
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "authorization denied: " + sanitizeInput(e)})
		return
	}
	if code := q.Get("code"); code != "" {
		s.finishGoogleAuth(w, r, code, q.Get("state"))
		return
	}

	state, err := google.NewState()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	http.SetCookie(w, s.stateCookie(r, state, stateMaxAge))
	http.Redirect(w, r, google.ConsentURL(s.oauth, state), http.StatusFound)
}

func (s *Server) stateCookie(r *http.Request, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     StateCookie,
		Value:    value,
		Path:     "/api/auth/google",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.cfg.SecureCookies || r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	}
}

func (s *Server) finishGoogleAuth(w http.ResponseWriter, r *http.Request, code, state string) {
	c, err := r.Cookie(StateCookie)
	if err != nil || state == "" || subtle.ConstantTimeCompare([]byte(c.Value), []byte(state)) != 1 {
		s.logger.WarnContext(r.Context(), "OAuth state mismatch",
			log.FieldClientIP, s.detector.ExtractClientIP(r))
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid oauth state"})
		return
	}
	http.SetCookie(w, s.stateCookie(r, "", -1))

	ctx, cancel := context.WithTimeout(r.Context(), googleCallLimit)
	defer cancel()
	tok, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "OAuth code exchange failed", log.FieldError, err)
		writeJSON(w, http.StatusBadGateway, errorBody{Error: "token exchange failed"})
		return
	}
	userID := UserID(r.Context())
	if err := s.calendar.Connect(ctx, userID, tok); err != nil {
		s.logger.ErrorContext(r.Context(), "Persisting Google token failed",
			log.FieldUserID, userID,
			log.FieldError, err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "could not store token"})
		return
	}
	s.logger.InfoContext(r.Context(), "Google Calendar connected", log.FieldUserID, userID)

	if s.cfg.GoogleSuccessURL != "" {
		http.Redirect(w, r, s.cfg.GoogleSuccessURL, http.StatusFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"connected": true})
}

type calendarEventRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
	TimeZone    string `json:"timeZone"`
}

func (s *Server) handleCreateCalendarEvent(w http.ResponseWriter, r *http.Request) {
	if s.calendar == nil {
		s.writeError(w, r, errGoogleDisabled)
		return
	}
	var req calendarEventRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	in := google.EventInput{
		Title:       sanitizeInput(req.Title),
		Description: sanitizeInput(req.Description),
		TimeZone:    sanitizeInput(req.TimeZone),
	}
	if in.Title == "" {
		s.writeError(w, r, google.ErrEventTitle)
		return
	}
	var err error
	if in.Start, err = parseTime("startTime", req.StartTime); err != nil {
		s.writeError(w, r, err)
		return
	}
	if in.End, err = parseTime("endTime", req.EndTime); err != nil {
		s.writeError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), googleCallLimit)
	defer cancel()
	ev, err := s.calendar.Schedule(ctx, UserID(r.Context()), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, ev)
}

func (s *Server) handleGoogleStatus(w http.ResponseWriter, r *http.Request) {
	if s.calendar == nil {
		writeJSON(w, http.StatusOK, map[string]bool{"connected": false, "enabled": false})
		return
	}
	ok, err := s.calendar.Connected(r.Context(), UserID(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"connected": ok, "enabled": true})
}

func (s *Server) handleGoogleDisconnect(w http.ResponseWriter, r *http.Request) {
	if s.calendar == nil {
		s.writeError(w, r, errGoogleDisabled)
		return
	}
	if err := s.calendar.Disconnect(r.Context(), UserID(r.Context())); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
