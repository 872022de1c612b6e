package api

import (
	"net/http"

	"github.com/dunamismax/sitecms/internal/domain"
	"github.com/dunamismax/sitecms/internal/queue"
	"github.com/dunamismax/sitecms/internal/store"
)

const testimonialNotFound = "testimonial not found"

func (s *Server) handleListApprovedTestimonials(w http.ResponseWriter, r *http.Request) {
	listRecords(s, w, r, s.testimonials, store.Filter{"status": domain.TestimonialApproved})
}

func (s *Server) handleListTestimonials(w http.ResponseWriter, r *http.Request) {
	listRecords(s, w, r, s.testimonials, nil)
}

func (s *Server) handleCreateTestimonial(w http.ResponseWriter, r *http.Request) {
	var in domain.TestimonialInput
	if !s.readInput(w, r, &in) {
		return
	}

	record := in.Record()
	record.Image = s.normalizer.Normalize(r.Context(), record.Image, s.profiles.Testimonial)
	if !createRecord(s, w, r, s.testimonials, &record) {
		return
	}
	s.notifySubmission(r, queue.SubmissionPayload{
		Kind:       queue.KindTestimonial,
		Collection: domain.CollectionTestimonials,
		RecordID:   record.ID,
		Summary: map[string]string{
			"name":   record.Name,
			"source": record.Source,
		},
	})
}

func (s *Server) handleApproveTestimonial(w http.ResponseWriter, r *http.Request) {
	recordID, ok := pathID(w, r, testimonialNotFound)
	if !ok {
		return
	}
	patchRecord(s, w, r, s.testimonials, recordID, testimonialNotFound, domain.TestimonialUpdate{
		Status: domain.TestimonialApproved,
	})
}

func (s *Server) handleUpdateTestimonial(w http.ResponseWriter, r *http.Request) {
	recordID, ok := pathID(w, r, testimonialNotFound)
	if !ok {
		return
	}
	var update domain.TestimonialUpdate
	if !s.readInput(w, r, &update) {
		return
	}

	update.Image = s.normalizer.Normalize(r.Context(), update.Image, s.profiles.Testimonial)
	patchRecord(s, w, r, s.testimonials, recordID, testimonialNotFound, update)
}

func (s *Server) handleDeleteTestimonial(w http.ResponseWriter, r *http.Request) {
	deleteRecord(s, w, r, s.testimonials, testimonialNotFound, "testimonial deleted")
}
