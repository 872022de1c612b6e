package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/dunamismax/sitecms/internal/auth"
	"github.com/dunamismax/sitecms/internal/config"
	"github.com/dunamismax/sitecms/internal/domain"
	"github.com/dunamismax/sitecms/internal/id"
	"github.com/dunamismax/sitecms/internal/imaging"
	"github.com/dunamismax/sitecms/internal/queue"
	"github.com/dunamismax/sitecms/internal/store"
)

// CVLinker issues download links for archived CVs.
type CVLinker interface {
	PresignedGetURL(ctx context.Context, objectKey string) (string, error)
}

// Deps are the collaborators a Server is built from. Documents and Auth are
// required; the rest fall back to disabled behaviour when nil.
type Deps struct {
	Logger      *zap.Logger
	API         config.APIConfig
	Image       config.ImageConfig
	Documents   store.DocumentStore
	Auth        *auth.Authenticator
	Queue       queue.Enqueuer
	CVLinks     CVLinker
	RateLimiter RateLimiter

	// ImageOptions are appended to the normalizer options derived from Image.
	ImageOptions []imaging.Option
}

type Server struct {
	logger       *zap.Logger
	maxBodyBytes int64
	origins      []string
	normalizer   *imaging.Normalizer
	profiles     imaging.Profiles
	auth         *auth.Authenticator
	queue        queue.Enqueuer
	cvLinks      CVLinker
	rateLimiter  RateLimiter
	metrics      *metrics
	tracer       trace.Tracer
	mux          *http.ServeMux

	services        *store.Repository[domain.Service, *domain.Service]
	team            *store.Repository[domain.TeamMember, *domain.TeamMember]
	testimonials    *store.Repository[domain.Testimonial, *domain.Testimonial]
	projects        *store.Repository[domain.Project, *domain.Project]
	jobs            *store.Repository[domain.Job, *domain.Job]
	applications    *store.Repository[domain.JobApplication, *domain.JobApplication]
	contacts        *store.Repository[domain.ContactMessage, *domain.ContactMessage]
	serviceRequests *store.Repository[domain.ServiceRequest, *domain.ServiceRequest]
	settings        *store.Repository[domain.Settings, *domain.Settings]
	settingsMu      sync.Mutex
}

func NewServer(deps Deps) (*Server, error) {
	if deps.Documents == nil {
		return nil, errors.New("document store is required")
	}
	if deps.Auth == nil {
		return nil, errors.New("authenticator is required")
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	q := deps.Queue
	if q == nil {
		q = queue.Discard{}
	}
	maxBody := deps.API.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = 32 << 20
	}

	docs := deps.Documents
	s := &Server{
		logger:       logger,
		maxBodyBytes: maxBody,
		origins:      deps.API.AllowedOrigins,
		profiles:     imaging.ProfilesFromConfig(deps.Image),
		auth:         deps.Auth,
		queue:        q,
		cvLinks:      deps.CVLinks,
		rateLimiter:  deps.RateLimiter,
		metrics:      newMetrics(),
		tracer:       otel.Tracer("sitecms/api"),
		mux:          http.NewServeMux(),

		services:        store.NewRepository[domain.Service](docs, domain.CollectionServices),
		team:            store.NewRepository[domain.TeamMember](docs, domain.CollectionTeam),
		testimonials:    store.NewRepository[domain.Testimonial](docs, domain.CollectionTestimonials),
		projects:        store.NewRepository[domain.Project](docs, domain.CollectionProjects),
		jobs:            store.NewRepository[domain.Job](docs, domain.CollectionJobs),
		applications:    store.NewRepository[domain.JobApplication](docs, domain.CollectionJobApplications),
		contacts:        store.NewRepository[domain.ContactMessage](docs, domain.CollectionContactMessages),
		serviceRequests: store.NewRepository[domain.ServiceRequest](docs, domain.CollectionServiceRequests),
		settings:        store.NewRepository[domain.Settings](docs, domain.CollectionSettings),
	}

	opts := []imaging.Option{
		imaging.WithObserver(s.metrics),
		imaging.WithMaxPixels(deps.Image.MaxPixels),
	}
	s.normalizer = imaging.NewNormalizer(logger.Named("imaging"), append(opts, deps.ImageOptions...)...)
	if imaging.ProgressiveIgnored(s.profiles.Service) {
		logger.Warn("progressive JPEG requested but the image backend writes baseline; build with -tags govips",
			zap.String("backend", imaging.Backend()),
		)
	}

	s.routes()
	return s, nil
}

// Handler returns the mux wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	return s.withCORS(s.withTracing(s.metrics.withHTTPMetrics(s.withRateLimit(s.mux))))
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealthz)
	s.mux.Handle("GET /metrics", s.metrics.metricsHandler())

	s.mux.HandleFunc("POST "+LoginRoute, s.handleLogin)
	s.mux.HandleFunc("GET /api/auth/me", s.requireAdmin(s.handleMe))

	s.mux.HandleFunc("GET /api/services", s.handleListServices)
	s.mux.HandleFunc("GET /api/services/{id}", s.handleGetService)
	s.mux.HandleFunc("POST /api/services", s.requireAdmin(s.handleCreateService))
	s.mux.HandleFunc("PUT /api/services/{id}", s.requireAdmin(s.handleUpdateService))
	s.mux.HandleFunc("DELETE /api/services/{id}", s.requireAdmin(s.handleDeleteService))

	s.mux.HandleFunc("GET /api/team", s.handleListTeam)
	s.mux.HandleFunc("GET /api/team/{id}", s.handleGetTeamMember)
	s.mux.HandleFunc("POST /api/team", s.requireAdmin(s.handleCreateTeamMember))
	s.mux.HandleFunc("PUT /api/team/{id}", s.requireAdmin(s.handleUpdateTeamMember))
	s.mux.HandleFunc("DELETE /api/team/{id}", s.requireAdmin(s.handleDeleteTeamMember))

	s.mux.HandleFunc("GET /api/testimonials/approved", s.handleListApprovedTestimonials)
	s.mux.HandleFunc("POST /api/testimonials", s.handleCreateTestimonial)
	s.mux.HandleFunc("GET /api/testimonials", s.requireAdmin(s.handleListTestimonials))
	s.mux.HandleFunc("PUT /api/testimonials/{id}/approve", s.requireAdmin(s.handleApproveTestimonial))
	s.mux.HandleFunc("PUT /api/testimonials/{id}", s.requireAdmin(s.handleUpdateTestimonial))
	s.mux.HandleFunc("DELETE /api/testimonials/{id}", s.requireAdmin(s.handleDeleteTestimonial))

	s.mux.HandleFunc("GET /api/projects", s.handleListProjects)
	s.mux.HandleFunc("GET /api/projects/{id}", s.handleGetProject)
	s.mux.HandleFunc("POST /api/projects", s.requireAdmin(s.handleCreateProject))
	s.mux.HandleFunc("PUT /api/projects/{id}", s.requireAdmin(s.handleUpdateProject))
	s.mux.HandleFunc("DELETE /api/projects/{id}", s.requireAdmin(s.handleDeleteProject))

	s.mux.HandleFunc("GET /api/jobs", s.handleListJobs)
	s.mux.HandleFunc("GET /api/jobs/{id}", s.handleGetJob)
	s.mux.HandleFunc("POST /api/jobs", s.requireAdmin(s.handleCreateJob))
	s.mux.HandleFunc("PUT /api/jobs/{id}", s.requireAdmin(s.handleUpdateJob))
	s.mux.HandleFunc("DELETE /api/jobs/{id}", s.requireAdmin(s.handleDeleteJob))

	s.mux.HandleFunc("POST /api/job-applications", s.handleCreateApplication)
	s.mux.HandleFunc("GET /api/job-applications", s.requireAdmin(s.handleListApplications))
	s.mux.HandleFunc("PUT /api/job-applications/{id}/status", s.requireAdmin(s.handleUpdateApplicationStatus))
	s.mux.HandleFunc("GET /api/job-applications/{id}/cv", s.requireAdmin(s.handleApplicationCV))

	s.mux.HandleFunc("POST /api/contact", s.handleCreateContact)
	s.mux.HandleFunc("GET /api/contact", s.requireAdmin(s.handleListContacts))
	s.mux.HandleFunc("PUT /api/contact/{id}/status", s.requireAdmin(s.handleUpdateContactStatus))
	s.mux.HandleFunc("DELETE /api/contact/{id}", s.requireAdmin(s.handleDeleteContact))

	s.mux.HandleFunc("POST /api/service-requests", s.handleCreateServiceRequest)
	s.mux.HandleFunc("GET /api/service-requests", s.requireAdmin(s.handleListServiceRequests))
	s.mux.HandleFunc("PUT /api/service-requests/{id}/status", s.requireAdmin(s.handleUpdateServiceRequestStatus))

	s.mux.HandleFunc("GET /api/settings", s.handleGetSettings)
	s.mux.HandleFunc("PUT /api/settings", s.requireAdmin(s.handleUpdateSettings))
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"imaging":     imaging.Backend(),
		"progressive": imaging.SupportsProgressive(),
	})
}

// decodeJSON reads a single JSON value. Unknown fields are ignored because
// the admin UI echoes whole records back, including server-owned fields.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, into any) error {
	body := http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	decoder := json.NewDecoder(body)
	if err := decoder.Decode(into); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return errBodyTooLarge
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return errors.New("invalid JSON body: multiple JSON values are not allowed")
	}
	return nil
}

var errBodyTooLarge = errors.New("request body too large")

// readInput decodes and validates a request body, writing the error response
// itself. It reports whether the handler should continue.
func (s *Server) readInput(w http.ResponseWriter, r *http.Request, into any) bool {
	if err := s.decodeJSON(w, r, into); err != nil {
		if errors.Is(err, errBodyTooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, err.Error())
			return false
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	if err := domain.Validate(into); err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"error":   verr.Error(),
				"details": verr.Problems,
			})
			return false
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// pathID returns the {id} path value, answering 404 for ids that cannot
// exist.
func pathID(w http.ResponseWriter, r *http.Request, notFound string) (string, bool) {
	recordID := r.PathValue("id")
	if !id.Valid(recordID) {
		writeError(w, http.StatusNotFound, notFound)
		return "", false
	}
	return recordID, true
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	s.logger.Error(msg,
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	writeError(w, http.StatusInternalServerError, "server error")
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
