package api

import (
	"net/http"

	"github.com/dunamismax/sitecms/internal/domain"
)

const serviceNotFound = "service not found"

func (s *Server) handleListServices(w http.ResponseWriter, r *http.Request) {
	listRecords(s, w, r, s.services, nil)
}

func (s *Server) handleGetService(w http.ResponseWriter, r *http.Request) {
	getRecord(s, w, r, s.services, serviceNotFound)
}

func (s *Server) handleCreateService(w http.ResponseWriter, r *http.Request) {
	var in domain.ServiceInput
	if !s.readInput(w, r, &in) {
		return
	}

	record := in.Record()
	record.Image = s.normalizer.Normalize(r.Context(), record.Image, s.profiles.Service)
	createRecord(s, w, r, s.services, &record)
}

func (s *Server) handleUpdateService(w http.ResponseWriter, r *http.Request) {
	recordID, ok := pathID(w, r, serviceNotFound)
	if !ok {
		return
	}
	var update domain.ServiceUpdate
	if !s.readInput(w, r, &update) {
		return
	}

	update.Image = s.normalizer.Normalize(r.Context(), update.Image, s.profiles.Service)
	patchRecord(s, w, r, s.services, recordID, serviceNotFound, update)
}

func (s *Server) handleDeleteService(w http.ResponseWriter, r *http.Request) {
	deleteRecord(s, w, r, s.services, serviceNotFound, "service deleted")
}
