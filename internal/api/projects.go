package api

import (
	"net/http"

	"github.com/dunamismax/sitecms/internal/domain"
)

const projectNotFound = "project not found"

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	listRecords(s, w, r, s.projects, nil)
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	getRecord(s, w, r, s.projects, projectNotFound)
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var in domain.ProjectInput
	if !s.readInput(w, r, &in) {
		return
	}

	record := in.Record(s.normalizer.NormalizeEach(r.Context(), in.Images, s.profiles.Project))
	createRecord(s, w, r, s.projects, &record)
}

func (s *Server) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	recordID, ok := pathID(w, r, projectNotFound)
	if !ok {
		return
	}
	var update domain.ProjectUpdate
	if !s.readInput(w, r, &update) {
		return
	}

	update.Images = s.normalizer.NormalizeEach(r.Context(), update.Images, s.profiles.Project)
	patchRecord(s, w, r, s.projects, recordID, projectNotFound, update)
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	deleteRecord(s, w, r, s.projects, projectNotFound, "project deleted")
}
