package worker

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/dunamismax/sitecms/internal/domain"
	"github.com/dunamismax/sitecms/internal/queue"
	"github.com/dunamismax/sitecms/internal/store"
	"github.com/dunamismax/sitecms/internal/webhook"
)

var pdfHeader = []byte("%PDF-1.4\n%âãÏÓ\n1 0 obj\n<<>>\nendobj\ntrailer\n<<>>\n%%EOF\n")

func newTestServer(t *testing.T, sender webhookSender, objects ObjectWriter) (*Server, *store.Repository[domain.JobApplication, *domain.JobApplication]) {
	t.Helper()
	documents := store.NewMemoryStore()
	s := &Server{
		logger:       zap.NewNop(),
		webhook:      sender,
		objects:      objects,
		applications: store.NewRepository[domain.JobApplication](documents, domain.CollectionJobApplications),
		metrics:      newMetrics(),
		tracer:       noopTracer(),
	}
	return s, s.applications
}

func seedApplication(t *testing.T, repo *store.Repository[domain.JobApplication, *domain.JobApplication], cv string) domain.JobApplication {
	t.Helper()
	app := domain.JobApplicationInput{
		FullName: "Ali",
		Email:    "ali@example.com",
		Mobile:   "0500000000",
		Position: "Engineer",
		CV:       cv,
	}.Record()
	require.NoError(t, repo.Create(context.Background(), &app))
	return app
}

func archiveTask(t *testing.T, applicationID string) *asynq.Task {
	t.Helper()
	task, err := queue.NewArchiveCVTask(queue.ArchiveCVPayload{ApplicationID: applicationID, RequestedAt: time.Now().UTC()})
	require.NoError(t, err)
	return task
}

func TestArchiveCVUploadsDataURI(t *testing.T) {
	objects := &captureObjects{}
	s, repo := newTestServer(t, nil, objects)
	app := seedApplication(t, repo, "data:application/pdf;base64,"+base64.StdEncoding.EncodeToString(pdfHeader))

	require.NoError(t, s.mux().ProcessTask(context.Background(), archiveTask(t, app.ID)))

	require.Len(t, objects.writes, 1)
	want := "cvs/" + app.ID + ".pdf"
	assert.Equal(t, want, objects.writes[0].key)
	assert.Equal(t, "application/pdf", objects.writes[0].contentType)
	assert.Equal(t, pdfHeader, objects.writes[0].data)

	stored, ok, err := repo.Get(context.Background(), app.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, stored.CVObjectKey)
	assert.Equal(t, float64(len(pdfHeader)), testutil.ToFloat64(s.metrics.cvBytesArchived))

	require.NoError(t, s.mux().ProcessTask(context.Background(), archiveTask(t, app.ID)))
	assert.Len(t, objects.writes, 1)
}

func TestArchiveCVSkipsLinks(t *testing.T) {
	objects := &captureObjects{}
	s, repo := newTestServer(t, nil, objects)
	app := seedApplication(t, repo, "https://drive.example.com/cv.pdf")

	require.NoError(t, s.mux().ProcessTask(context.Background(), archiveTask(t, app.ID)))
	assert.Empty(t, objects.writes)
}

func TestArchiveCVMalformedIsNotRetried(t *testing.T) {
	s, repo := newTestServer(t, nil, &captureObjects{})
	app := seedApplication(t, repo, "data:application/pdf;base64,***")

	err := s.mux().ProcessTask(context.Background(), archiveTask(t, app.ID))
	require.Error(t, err)
	assert.True(t, errors.Is(err, asynq.SkipRetry))
}

func TestArchiveCVRetriesStorageFailures(t *testing.T) {
	s, repo := newTestServer(t, nil, &captureObjects{err: errors.New("bucket offline")})
	app := seedApplication(t, repo, "data:application/pdf;base64,"+base64.StdEncoding.EncodeToString(pdfHeader))

	err := s.mux().ProcessTask(context.Background(), archiveTask(t, app.ID))
	require.Error(t, err)
	assert.False(t, errors.Is(err, asynq.SkipRetry))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.tasksTotal.WithLabelValues(queue.TypeArchiveCV, outcomeFailed)))
}

func TestSubmissionSendsWebhook(t *testing.T) {
	sender := &captureSender{}
	s, _ := newTestServer(t, sender, nil)

	task, err := queue.NewSubmissionTask(queue.SubmissionPayload{
		Kind:       queue.KindServiceRequest,
		Collection: domain.CollectionServiceRequests,
		RecordID:   "rec-1",
		ReceivedAt: time.Now().UTC(),
	})
	require.NoError(t, err)

	require.NoError(t, s.mux().ProcessTask(context.Background(), task))
	require.Len(t, sender.events, 1)
	assert.Equal(t, "submission.service_request", sender.events[0].Type)
	assert.Equal(t, "rec-1", sender.events[0].DeliveryID)
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.webhooksDelivered.WithLabelValues(queue.KindServiceRequest, outcomeSucceeded)))
}

func TestSubmissionWebhookFailureIsRetried(t *testing.T) {
	s, _ := newTestServer(t, &captureSender{err: errors.New("502")}, nil)
	task, err := queue.NewSubmissionTask(queue.SubmissionPayload{Kind: queue.KindContactMessage, RecordID: "rec-2"})
	require.NoError(t, err)

	err = s.mux().ProcessTask(context.Background(), task)
	require.Error(t, err)
	assert.False(t, errors.Is(err, asynq.SkipRetry))
}

func TestSubmissionRejectsBadPayload(t *testing.T) {
	s, _ := newTestServer(t, &captureSender{}, nil)
	err := s.mux().ProcessTask(context.Background(), asynq.NewTask(queue.TypeSubmissionReceived, []byte(`{}`)))
	require.Error(t, err)
	assert.True(t, errors.Is(err, asynq.SkipRetry))
}

type objectWrite struct {
	key         string
	data        []byte
	contentType string
}

type captureObjects struct {
	writes []objectWrite
	err    error
}

func (c *captureObjects) WriteObject(_ context.Context, key string, data []byte, contentType string) error {
	if c.err != nil {
		return c.err
	}
	c.writes = append(c.writes, objectWrite{key: key, data: data, contentType: contentType})
	return nil
}

type captureSender struct {
	events []webhook.Event
	err    error
}

func (c *captureSender) Send(_ context.Context, event webhook.Event) error {
	if c.err != nil {
		return c.err
	}
	c.events = append(c.events, event)
	return nil
}

func noopTracer() trace.Tracer {
	return noop.NewTracerProvider().Tracer("test")
}
