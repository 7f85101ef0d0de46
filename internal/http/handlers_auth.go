package http

import (
	"errors"
	"net/http"
	"strings"

	"fintrack/internal/auth"
	"fintrack/internal/core"
	"fintrack/internal/log"
)

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		fail(w, r, err, "")
		return
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		fail(w, r, core.ErrValidation, "")
		return
	}

	client := s.detector.ExtractClientIP(r)
	tok, err := s.auth.Login(r.Context(), req.Username, req.Password, client)
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, auth.ErrLockedOut):
		writeError(w, http.StatusTooManyRequests, "Too many failed login attempts, try again later")
	case err != nil:
		fail(w, r, err, "")
	default:
		log.FromContext(r.Context()).InfoContext(r.Context(), "User logged in",
			log.FieldUser, req.Username,
			log.FieldClientIP, client)
		writeJSON(w, http.StatusOK, tok)
	}
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	token, ok := auth.BearerToken(r)
	if !ok {
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeError(w, http.StatusUnauthorized, "Invalid or expired token")
		return
	}
	user, err := s.auth.Validate(token)
	if err != nil {
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeError(w, http.StatusUnauthorized, "Invalid or expired token")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"valid": true, "user": user})
}
