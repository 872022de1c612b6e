package api

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/dunamismax/sitecms/internal/queue"
)

// notifySubmission queues a notification for a stored public submission.
// Failures are logged and counted; the submission itself already succeeded.
func (s *Server) notifySubmission(r *http.Request, payload queue.SubmissionPayload) {
	payload.ReceivedAt = time.Now().UTC()
	err := s.queue.EnqueueSubmission(r.Context(), payload)
	s.recordEnqueue(queue.TypeSubmissionReceived, payload.RecordID, err)
}

func (s *Server) recordEnqueue(taskType, recordID string, err error) {
	if err != nil {
		s.metrics.queueEnqueued.WithLabelValues(taskType, "failed").Inc()
		s.logger.Warn("enqueue task failed",
			zap.String("task", taskType),
			zap.String("record_id", recordID),
			zap.Error(err),
		)
		return
	}
	s.metrics.queueEnqueued.WithLabelValues(taskType, "enqueued").Inc()
}
