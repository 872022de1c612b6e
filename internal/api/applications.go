package api

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dunamismax/sitecms/internal/domain"
	"github.com/dunamismax/sitecms/internal/id"
	"github.com/dunamismax/sitecms/internal/queue"
)

const applicationNotFound = "application not found"

func (s *Server) handleCreateApplication(w http.ResponseWriter, r *http.Request) {
	var in domain.JobApplicationInput
	if !s.readInput(w, r, &in) {
		return
	}

	if in.JobID != "" {
		if !id.Valid(in.JobID) {
			writeError(w, http.StatusBadRequest, jobNotFound)
			return
		}
		if _, found, err := s.jobs.Get(r.Context(), in.JobID); err != nil {
			s.internalError(w, r, "lookup job for application failed", err)
			return
		} else if !found {
			writeError(w, http.StatusBadRequest, jobNotFound)
			return
		}
	}

	record := in.Record()
	if !createRecord(s, w, r, s.applications, &record) {
		return
	}

	s.notifySubmission(r, queue.SubmissionPayload{
		Kind:       queue.KindJobApplication,
		Collection: domain.CollectionJobApplications,
		RecordID:   record.ID,
		Summary: map[string]string{
			"fullName": record.FullName,
			"position": record.Position,
		},
	})
	if strings.HasPrefix(record.CV, "data:") {
		err := s.queue.EnqueueArchiveCV(r.Context(), queue.ArchiveCVPayload{
			ApplicationID: record.ID,
			RequestedAt:   time.Now().UTC(),
		})
		s.recordEnqueue(queue.TypeArchiveCV, record.ID, err)
	}
}

// handleListApplications returns applications with jobId replaced by the
// referenced job's id and title.
func (s *Server) handleListApplications(w http.ResponseWriter, r *http.Request) {
	applications, err := s.applications.List(r.Context(), nil)
	if err != nil {
		s.internalError(w, r, "list applications failed", err)
		return
	}
	jobs, err := s.jobs.List(r.Context(), nil)
	if err != nil {
		s.internalError(w, r, "list jobs failed", err)
		return
	}

	titles := make(map[string]string, len(jobs))
	for _, job := range jobs {
		titles[job.ID] = job.Title
	}

	views := make([]domain.JobApplicationView, 0, len(applications))
	for _, application := range applications {
		view := domain.JobApplicationView{JobApplication: application}
		if title, ok := titles[application.JobID]; ok {
			view.Job = &domain.JobRef{ID: application.JobID, Title: title}
		}
		views = append(views, view)
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleUpdateApplicationStatus(w http.ResponseWriter, r *http.Request) {
	recordID, ok := pathID(w, r, applicationNotFound)
	if !ok {
		return
	}
	var update domain.StatusUpdate
	if !s.readInput(w, r, &update) {
		return
	}
	if !domain.ValidApplicationStatus(update.Status) {
		writeError(w, http.StatusBadRequest, "invalid application status")
		return
	}
	patchRecord(s, w, r, s.applications, recordID, applicationNotFound, update)
}

// handleApplicationCV returns a presigned link once the CV has been archived,
// and the stored value otherwise.
func (s *Server) handleApplicationCV(w http.ResponseWriter, r *http.Request) {
	recordID, ok := pathID(w, r, applicationNotFound)
	if !ok {
		return
	}
	application, found, err := s.applications.Get(r.Context(), recordID)
	if err != nil {
		s.internalError(w, r, "get application failed", err)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, applicationNotFound)
		return
	}

	if application.CVObjectKey != "" && s.cvLinks != nil {
		url, err := s.cvLinks.PresignedGetURL(r.Context(), application.CVObjectKey)
		if err == nil {
			writeJSON(w, http.StatusOK, map[string]any{"archived": true, "url": url})
			return
		}
		s.logger.Warn("presign cv failed, serving stored value",
			zap.String("application_id", application.ID),
			zap.Error(err),
		)
	}
	writeJSON(w, http.StatusOK, map[string]any{"archived": false, "cv": application.CV})
}
