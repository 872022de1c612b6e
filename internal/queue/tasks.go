package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

const (
	TypeSubmissionReceived = "submission:received"
	TypeArchiveCV          = "application:archive_cv"
)

// Submission kinds carried in SubmissionPayload.Kind. They double as the
// webhook event suffix.
const (
	KindContactMessage = "contact_message"
	KindServiceRequest = "service_request"
	KindJobApplication = "job_application"
	KindTestimonial    = "testimonial"
)

type SubmissionPayload struct {
	Kind       string            `json:"kind"`
	Collection string            `json:"collection"`
	RecordID   string            `json:"record_id"`
	Summary    map[string]string `json:"summary,omitempty"`
	ReceivedAt time.Time         `json:"received_at"`
}

type ArchiveCVPayload struct {
	ApplicationID string    `json:"application_id"`
	RequestedAt   time.Time `json:"requested_at"`
}

func NewSubmissionTask(payload SubmissionPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal submission payload: %w", err)
	}
	return asynq.NewTask(TypeSubmissionReceived, body), nil
}

func ParseSubmissionPayload(task *asynq.Task) (SubmissionPayload, error) {
	var payload SubmissionPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return SubmissionPayload{}, fmt.Errorf("unmarshal submission payload: %w", err)
	}
	if payload.RecordID == "" || payload.Kind == "" {
		return SubmissionPayload{}, fmt.Errorf("submission payload requires kind and record_id")
	}
	return payload, nil
}

func NewArchiveCVTask(payload ArchiveCVPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal archive payload: %w", err)
	}
	return asynq.NewTask(TypeArchiveCV, body), nil
}

func ParseArchiveCVPayload(task *asynq.Task) (ArchiveCVPayload, error) {
	var payload ArchiveCVPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return ArchiveCVPayload{}, fmt.Errorf("unmarshal archive payload: %w", err)
	}
	if payload.ApplicationID == "" {
		return ArchiveCVPayload{}, fmt.Errorf("archive payload requires application_id")
	}
	return payload, nil
}
