package worker

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/hibiken/asynq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/dunamismax/sitecms/internal/config"
	"github.com/dunamismax/sitecms/internal/domain"
	"github.com/dunamismax/sitecms/internal/imaging"
	"github.com/dunamismax/sitecms/internal/queue"
	"github.com/dunamismax/sitecms/internal/storage"
	"github.com/dunamismax/sitecms/internal/store"
	"github.com/dunamismax/sitecms/internal/webhook"
)

const (
	outcomeSucceeded = "succeeded"
	outcomeSkipped   = "skipped"
	outcomeFailed    = "failed"
)

type webhookSender interface {
	Send(ctx context.Context, event webhook.Event) error
}

// ObjectWriter stores archived attachments.
type ObjectWriter interface {
	WriteObject(ctx context.Context, objectKey string, data []byte, contentType string) error
}

type Server struct {
	logger       *zap.Logger
	server       *asynq.Server
	webhook      webhookSender
	objects      ObjectWriter
	applications *store.Repository[domain.JobApplication, *domain.JobApplication]
	metrics      *metrics
	tracer       trace.Tracer
}

// NewServer builds the task server. objects may be nil when object storage
// is disabled; CV archive tasks are then skipped.
func NewServer(
	logger *zap.Logger,
	queueCfg config.QueueConfig,
	workerCfg config.WorkerConfig,
	webhookClient webhookSender,
	objects ObjectWriter,
	documents store.DocumentStore,
) (*Server, error) {
	if documents == nil {
		return nil, fmt.Errorf("document store is required")
	}

	s := &Server{
		logger:       logger,
		webhook:      webhookClient,
		objects:      objects,
		applications: store.NewRepository[domain.JobApplication](documents, domain.CollectionJobApplications),
		metrics:      newMetrics(),
		tracer:       otel.Tracer("sitecms/worker"),
	}
	s.server = asynq.NewServer(
		queueCfg.RedisClientOpt(),
		asynq.Config{
			Concurrency: max(1, workerCfg.Concurrency),
			Queues: map[string]int{
				queueCfg.Name: 1,
			},
			Logger:   logger.Sugar(),
			LogLevel: asynq.InfoLevel,
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				retried, _ := asynq.GetRetryCount(ctx)
				maxRetry, _ := asynq.GetMaxRetry(ctx)
				logger.Error("task failed",
					zap.String("type", task.Type()),
					zap.Int("retry", retried),
					zap.Int("max_retry", maxRetry),
					zap.Error(err),
				)
			}),
		},
	)
	return s, nil
}

// Run blocks until the process receives a termination signal.
func (s *Server) Run() error {
	return s.server.Run(s.mux())
}

// Start begins processing in the background. Pair it with Shutdown.
func (s *Server) Start() error {
	return s.server.Start(s.mux())
}

func (s *Server) Shutdown() {
	s.server.Shutdown()
}

func (s *Server) MetricsHandler() http.Handler {
	return s.metrics.Handler()
}

func (s *Server) mux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.Use(s.instrument)
	mux.HandleFunc(queue.TypeSubmissionReceived, s.handleSubmission)
	mux.HandleFunc(queue.TypeArchiveCV, s.handleArchiveCV)
	return mux
}

// instrument records metrics and a consumer span around every task.
func (s *Server) instrument(next asynq.Handler) asynq.Handler {
	return asynq.HandlerFunc(func(ctx context.Context, task *asynq.Task) error {
		startedAt := time.Now()
		ctx, span := s.tracer.Start(ctx, "worker."+task.Type(), trace.WithSpanKind(trace.SpanKindConsumer))
		defer span.End()

		s.metrics.activeTasks.Inc()
		defer s.metrics.activeTasks.Dec()

		err := next.ProcessTask(ctx, task)
		outcome := outcomeSucceeded
		if err != nil {
			outcome = outcomeFailed
			span.RecordError(err)
			span.SetStatus(codes.Error, "task failed")
		}
		s.metrics.tasksTotal.WithLabelValues(task.Type(), outcome).Inc()
		s.metrics.taskDuration.WithLabelValues(task.Type(), outcome).Observe(time.Since(startedAt).Seconds())
		return err
	})
}

func (s *Server) handleSubmission(ctx context.Context, task *asynq.Task) error {
	payload, err := queue.ParseSubmissionPayload(task)
	if err != nil {
		return fmt.Errorf("parse payload: %v: %w", err, asynq.SkipRetry)
	}
	trace.SpanFromContext(ctx).SetAttributes(
		attribute.String("submission.kind", payload.Kind),
		attribute.String("submission.record_id", payload.RecordID),
	)

	if s.webhook == nil {
		s.metrics.webhooksDelivered.WithLabelValues(payload.Kind, outcomeSkipped).Inc()
		return nil
	}

	deliveryID, _ := asynq.GetTaskID(ctx)
	if deliveryID == "" {
		deliveryID = payload.RecordID
	}

	err = s.webhook.Send(ctx, webhook.Event{
		Type:       "submission." + payload.Kind,
		DeliveryID: deliveryID,
		Data:       payload,
	})
	if err != nil {
		s.metrics.webhooksDelivered.WithLabelValues(payload.Kind, outcomeFailed).Inc()
		s.logger.Warn("webhook delivery failed",
			zap.String("kind", payload.Kind),
			zap.String("record_id", payload.RecordID),
			zap.Error(err),
		)
		return fmt.Errorf("dispatch webhook: %w", err)
	}

	s.metrics.webhooksDelivered.WithLabelValues(payload.Kind, outcomeSucceeded).Inc()
	s.logger.Info("submission notified",
		zap.String("kind", payload.Kind),
		zap.String("record_id", payload.RecordID),
	)
	return nil
}

func (s *Server) handleArchiveCV(ctx context.Context, task *asynq.Task) error {
	payload, err := queue.ParseArchiveCVPayload(task)
	if err != nil {
		return fmt.Errorf("parse payload: %v: %w", err, asynq.SkipRetry)
	}
	log := s.logger.With(zap.String("application_id", payload.ApplicationID))

	if s.objects == nil {
		log.Warn("object storage disabled, skipping cv archive")
		return nil
	}

	application, ok, err := s.applications.Get(ctx, payload.ApplicationID)
	if err != nil {
		return fmt.Errorf("load application: %w", err)
	}
	if !ok {
		log.Info("application no longer exists, skipping cv archive")
		return nil
	}
	if application.CVObjectKey != "" {
		return nil
	}

	key, size, err := s.archiveCV(ctx, application)
	if errors.Is(err, imaging.ErrNotDataURI) {
		log.Debug("cv is not inline data, nothing to archive")
		return nil
	}
	if errors.Is(err, imaging.ErrMalformedDataURI) {
		log.Warn("cv data uri is malformed, skipping archive", zap.Error(err))
		return fmt.Errorf("archive cv: %v: %w", err, asynq.SkipRetry)
	}
	if err != nil {
		return fmt.Errorf("archive cv: %w", err)
	}

	if _, _, err := s.applications.Update(ctx, application.ID, map[string]any{"cvObjectKey": key}); err != nil {
		return fmt.Errorf("record cv object key: %w", err)
	}

	s.metrics.cvBytesArchived.Add(float64(size))
	log.Info("cv archived", zap.String("object_key", key), zap.Int("bytes", size))
	return nil
}

func (s *Server) archiveCV(ctx context.Context, application *domain.JobApplication) (string, int, error) {
	_, data, err := imaging.ParseDataURI(application.CV)
	if err != nil {
		return "", 0, err
	}

	detected := mimetype.Detect(data)
	key := storage.CVObjectKey(application.ID, detected.Extension())
	if err := s.objects.WriteObject(ctx, key, data, detected.String()); err != nil {
		return "", 0, err
	}
	return key, len(data), nil
}
