package api

import (
	"net/http"
	"strings"

	"github.com/dunamismax/sitecms/internal/domain"
	"github.com/dunamismax/sitecms/internal/store"
)

const jobNotFound = "job not found"

// handleListJobs accepts an optional ?status=Open|Closed filter.
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	var filter store.Filter
	if status := strings.TrimSpace(r.URL.Query().Get("status")); status != "" {
		filter = store.Filter{"status": status}
	}
	listRecords(s, w, r, s.jobs, filter)
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	getRecord(s, w, r, s.jobs, jobNotFound)
}

func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var in domain.JobInput
	if !s.readInput(w, r, &in) {
		return
	}

	record := in.Record()
	createRecord(s, w, r, s.jobs, &record)
}

func (s *Server) handleUpdateJob(w http.ResponseWriter, r *http.Request) {
	recordID, ok := pathID(w, r, jobNotFound)
	if !ok {
		return
	}
	var update domain.JobUpdate
	if !s.readInput(w, r, &update) {
		return
	}
	patchRecord(s, w, r, s.jobs, recordID, jobNotFound, update)
}

func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	deleteRecord(s, w, r, s.jobs, jobNotFound, "job deleted")
}
