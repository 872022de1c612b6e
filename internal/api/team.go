package api

import (
	"net/http"

	"github.com/dunamismax/sitecms/internal/domain"
)

const teamMemberNotFound = "team member not found"

func (s *Server) handleListTeam(w http.ResponseWriter, r *http.Request) {
	listRecords(s, w, r, s.team, nil)
}

func (s *Server) handleGetTeamMember(w http.ResponseWriter, r *http.Request) {
	getRecord(s, w, r, s.team, teamMemberNotFound)
}

func (s *Server) handleCreateTeamMember(w http.ResponseWriter, r *http.Request) {
	var in domain.TeamMemberInput
	if !s.readInput(w, r, &in) {
		return
	}

	image, ok := s.teamImage(r, in.Image)
	if !ok {
		writeError(w, http.StatusBadRequest, "image must be a string or an array of strings")
		return
	}
	record := in.Record(image)
	createRecord(s, w, r, s.team, &record)
}

func (s *Server) handleUpdateTeamMember(w http.ResponseWriter, r *http.Request) {
	recordID, ok := pathID(w, r, teamMemberNotFound)
	if !ok {
		return
	}
	var update domain.TeamMemberUpdate
	if !s.readInput(w, r, &update) {
		return
	}

	if update.Image != nil {
		image, ok := s.teamImage(r, update.Image)
		if !ok {
			writeError(w, http.StatusBadRequest, "image must be a string or an array of strings")
			return
		}
		update.Image = image
		if image == "" {
			update.Image = nil
		}
	}
	patchRecord(s, w, r, s.team, recordID, teamMemberNotFound, update)
}

func (s *Server) handleDeleteTeamMember(w http.ResponseWriter, r *http.Request) {
	deleteRecord(s, w, r, s.team, teamMemberNotFound, "team member deleted")
}

// teamImage normalizes a loosely typed image field. Older admin clients send
// an array; only its first element is kept.
func (s *Server) teamImage(r *http.Request, value any) (string, bool) {
	switch v := s.normalizer.NormalizeValue(r.Context(), value, s.profiles.Team).(type) {
	case nil:
		return "", true
	case string:
		return v, true
	default:
		return "", false
	}
}
