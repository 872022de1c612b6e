package api

import (
	"context"
	"net/http"
	"time"

	"github.com/dunamismax/sitecms/internal/domain"
)

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.loadSettings(r.Context())
	if err != nil {
		s.internalError(w, r, "load settings failed", err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var update domain.SettingsUpdate
	if !s.readInput(w, r, &update) {
		return
	}

	current, err := s.loadSettings(r.Context())
	if err != nil {
		s.internalError(w, r, "load settings failed", err)
		return
	}

	fields, err := domain.PatchFields(update)
	if err != nil {
		s.internalError(w, r, "encode settings update failed", err)
		return
	}
	fields["updatedAt"] = time.Now().UTC()

	updated, found, err := s.settings.Update(r.Context(), current.ID, fields)
	if err != nil {
		s.internalError(w, r, "update settings failed", err)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "settings not found")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// loadSettings returns the single settings record, creating it with the
// site defaults on first use.
func (s *Server) loadSettings(ctx context.Context) (*domain.Settings, error) {
	s.settingsMu.Lock()
	defer s.settingsMu.Unlock()

	existing, err := s.settings.List(ctx, nil)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return &existing[0], nil
	}

	defaults := domain.DefaultSettings(time.Now().UTC())
	if err := s.settings.Create(ctx, &defaults); err != nil {
		return nil, err
	}
	return &defaults, nil
}
