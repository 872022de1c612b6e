package api

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/dunamismax/sitecms/internal/auth"
)

type claimsKey struct{}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (s *Server) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, err := s.auth.FromRequest(r)
		if err != nil {
			if errors.Is(err, auth.ErrMissingToken) {
				writeError(w, http.StatusUnauthorized, "no token, authorization denied")
				return
			}
			writeError(w, http.StatusUnauthorized, "token is not valid")
			return
		}
		ctx := context.WithValue(r.Context(), claimsKey{}, claims)
		next(w, r.WithContext(ctx))
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !s.readInput(w, r, &req) {
		return
	}

	token, err := s.auth.Login(req.Username, req.Password)
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		s.logger.Info("admin login rejected", zap.String("username", req.Username))
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	case errors.Is(err, auth.ErrNotConfigured):
		writeError(w, http.StatusServiceUnavailable, "admin login is not configured")
		return
	case err != nil:
		s.internalError(w, r, "issue token failed", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	claims, _ := r.Context().Value(claimsKey{}).(*auth.Claims)
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "token is not valid")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"username":  claims.Username,
		"role":      claims.Role,
		"expiresAt": claims.ExpiresAt,
	})
}
