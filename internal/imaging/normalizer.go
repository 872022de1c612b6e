package imaging

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const defaultMaxPixels = 40_000_000

var (
	// ErrUnsupportedImage wraps decode failures and payloads that are not images.
	ErrUnsupportedImage = errors.New("unsupported image data")
	// ErrImageTooLarge is returned before decoding when width*height is over
	// the configured pixel limit.
	ErrImageTooLarge = errors.New("image exceeds pixel limit")
)

type Outcome string

const (
	OutcomeNormalized  Outcome = "normalized"
	OutcomePassthrough Outcome = "passthrough"
	OutcomeFallback    Outcome = "fallback"
)

// Observer receives one call per normalization attempt.
type Observer interface {
	ObserveNormalization(profile string, outcome Outcome, elapsed time.Duration)
}

// Normalizer re-encodes inline images into bounded JPEG data URIs. It never
// fails: on any error the original value is returned and the failure is
// logged. A Normalizer holds no per-call state and is safe for concurrent use.
type Normalizer struct {
	logger      *zap.Logger
	transformer Transformer
	observer    Observer
	tracer      trace.Tracer
	maxPixels   int
}

type Option func(*Normalizer)

func WithObserver(observer Observer) Option {
	return func(n *Normalizer) {
		n.observer = observer
	}
}

// WithMaxPixels rejects images whose width*height exceeds limit before they
// are fully decoded. Zero or negative disables the check.
func WithMaxPixels(limit int) Option {
	return func(n *Normalizer) {
		n.maxPixels = limit
	}
}

func WithTransformer(transformer Transformer) Option {
	return func(n *Normalizer) {
		n.transformer = transformer
	}
}

func NewNormalizer(logger *zap.Logger, opts ...Option) *Normalizer {
	if logger == nil {
		logger = zap.NewNop()
	}

	n := &Normalizer{
		logger:      logger,
		transformer: newTransformer(),
		tracer:      otel.Tracer("sitecms/imaging"),
		maxPixels:   defaultMaxPixels,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize returns value re-encoded under profile when it is an image data
// URI, and value unchanged otherwise or when processing fails.
func (n *Normalizer) Normalize(ctx context.Context, value string, profile Profile) string {
	if !IsImageDataURI(value) {
		n.observe(profile, OutcomePassthrough, 0)
		return value
	}

	startedAt := time.Now()
	ctx, span := n.tracer.Start(ctx, "imaging.normalize")
	span.SetAttributes(
		attribute.String("image.profile", profile.Name),
		attribute.Int("image.input_bytes", len(value)),
	)
	defer span.End()

	out, err := n.normalize(ctx, value, profile)
	elapsed := time.Since(startedAt)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "normalization failed")
		n.logger.Warn("image normalization failed, keeping original",
			zap.String("profile", profile.Name),
			zap.Int("input_bytes", len(value)),
			zap.Error(err),
		)
		n.observe(profile, OutcomeFallback, elapsed)
		return value
	}

	span.SetAttributes(attribute.Int("image.output_bytes", len(out)))
	n.logger.Debug("image normalized",
		zap.String("profile", profile.Name),
		zap.Int("input_bytes", len(value)),
		zap.Int("output_bytes", len(out)),
		zap.Bool("progressive", profile.Progressive && !ProgressiveIgnored(profile)),
		zap.Duration("elapsed", elapsed),
	)
	n.observe(profile, OutcomeNormalized, elapsed)
	return out
}

// NormalizeValue is the loosely typed entry point for decoded JSON. nil stays
// nil and non-string scalars pass through. For a sequence only the first
// element is normalized and returned; the rest are dropped. Callers that
// need every element should use NormalizeEach.
func (n *Normalizer) NormalizeValue(ctx context.Context, value any, profile Profile) any {
	switch v := value.(type) {
	case nil:
		return nil
	case string:
		return n.Normalize(ctx, v, profile)
	case []string:
		if len(v) == 0 {
			return nil
		}
		return n.Normalize(ctx, v[0], profile)
	case []any:
		if len(v) == 0 {
			return nil
		}
		if first, ok := v[0].(string); ok {
			return n.Normalize(ctx, first, profile)
		}
		return v[0]
	default:
		return value
	}
}

// NormalizeEach maps Normalize over values, preserving length and order.
func (n *Normalizer) NormalizeEach(ctx context.Context, values []string, profile Profile) []string {
	if values == nil {
		return nil
	}
	out := make([]string, len(values))
	for i, value := range values {
		out[i] = n.Normalize(ctx, value, profile)
	}
	return out
}

func (n *Normalizer) normalize(ctx context.Context, value string, profile Profile) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic during processing: %v", ErrUnsupportedImage, r)
		}
	}()

	profile, err = profile.validate()
	if err != nil {
		return "", err
	}

	_, data, err := ParseDataURI(value)
	if err != nil {
		return "", err
	}

	if detected := mimetype.Detect(data); !strings.HasPrefix(detected.String(), "image/") {
		return "", fmt.Errorf("%w: payload detected as %s", ErrUnsupportedImage, detected.String())
	}

	if n.maxPixels > 0 {
		if cfg, _, cfgErr := image.DecodeConfig(bytes.NewReader(data)); cfgErr == nil && cfg.Width*cfg.Height > n.maxPixels {
			return "", fmt.Errorf("%w: %dx%d", ErrImageTooLarge, cfg.Width, cfg.Height)
		}
	}

	encoded, width, height, err := n.transformer.Transform(ctx, data, profile)
	if err != nil {
		return "", err
	}
	trace.SpanFromContext(ctx).SetAttributes(
		attribute.Int("image.width", width),
		attribute.Int("image.height", height),
	)

	return EncodeDataURI("image/jpeg", encoded), nil
}

// ProgressiveIgnored reports whether profile asks for progressive output that
// the compiled-in backend cannot write.
func ProgressiveIgnored(profile Profile) bool {
	return profile.Progressive && !SupportsProgressive()
}

func (n *Normalizer) observe(profile Profile, outcome Outcome, elapsed time.Duration) {
	if n.observer == nil {
		return
	}
	n.observer.ObserveNormalization(profile.Name, outcome, elapsed)
}
