package api

import (
	"net/http"

	"github.com/dunamismax/sitecms/internal/domain"
	"github.com/dunamismax/sitecms/internal/queue"
)

const serviceRequestNotFound = "service request not found"

func (s *Server) handleCreateServiceRequest(w http.ResponseWriter, r *http.Request) {
	var in domain.ServiceRequestInput
	if !s.readInput(w, r, &in) {
		return
	}

	record := in.Record()
	if !createRecord(s, w, r, s.serviceRequests, &record) {
		return
	}
	s.notifySubmission(r, queue.SubmissionPayload{
		Kind:       queue.KindServiceRequest,
		Collection: domain.CollectionServiceRequests,
		RecordID:   record.ID,
		Summary: map[string]string{
			"fullName":    record.FullName,
			"serviceType": record.ServiceType,
			"city":        record.City,
		},
	})
}

func (s *Server) handleListServiceRequests(w http.ResponseWriter, r *http.Request) {
	listRecords(s, w, r, s.serviceRequests, nil)
}

// Service request statuses are free text set by the admin UI.
func (s *Server) handleUpdateServiceRequestStatus(w http.ResponseWriter, r *http.Request) {
	recordID, ok := pathID(w, r, serviceRequestNotFound)
	if !ok {
		return
	}
	var update domain.StatusUpdate
	if !s.readInput(w, r, &update) {
		return
	}
	patchRecord(s, w, r, s.serviceRequests, recordID, serviceRequestNotFound, update)
}
