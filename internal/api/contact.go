package api

import (
	"net/http"

	"github.com/dunamismax/sitecms/internal/domain"
	"github.com/dunamismax/sitecms/internal/queue"
)

const contactNotFound = "message not found"

func (s *Server) handleCreateContact(w http.ResponseWriter, r *http.Request) {
	var in domain.ContactMessageInput
	if !s.readInput(w, r, &in) {
		return
	}

	record := in.Record()
	if !createRecord(s, w, r, s.contacts, &record) {
		return
	}
	s.notifySubmission(r, queue.SubmissionPayload{
		Kind:       queue.KindContactMessage,
		Collection: domain.CollectionContactMessages,
		RecordID:   record.ID,
		Summary: map[string]string{
			"fullName": record.FullName,
			"subject":  record.Subject,
		},
	})
}

func (s *Server) handleListContacts(w http.ResponseWriter, r *http.Request) {
	listRecords(s, w, r, s.contacts, nil)
}

func (s *Server) handleUpdateContactStatus(w http.ResponseWriter, r *http.Request) {
	recordID, ok := pathID(w, r, contactNotFound)
	if !ok {
		return
	}
	var update domain.StatusUpdate
	if !s.readInput(w, r, &update) {
		return
	}
	if !domain.ValidContactStatus(update.Status) {
		writeError(w, http.StatusBadRequest, "invalid message status")
		return
	}
	patchRecord(s, w, r, s.contacts, recordID, contactNotFound, update)
}

func (s *Server) handleDeleteContact(w http.ResponseWriter, r *http.Request) {
	deleteRecord(s, w, r, s.contacts, contactNotFound, "message deleted")
}
