package imaging

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var testProfile = Profile{Name: "test", MaxWidth: 1000, MaxHeight: 1000, Quality: 80, Progressive: true}

func TestNormalizeLeavesNonImageValuesUntouched(t *testing.T) {
	n := NewNormalizer(zap.NewNop())

	for _, value := range []string{
		"",
		"https://example.com/photo.jpg",
		"plain text",
		"Data:image/png;base64,AAAA",
		"data:application/pdf;base64,JVBERi0=",
		" data:image/png;base64,AAAA",
	} {
		assert.Equal(t, value, n.Normalize(context.Background(), value, testProfile), value)
	}
}

func TestNormalizeShrinksLargePNGIntoBox(t *testing.T) {
	n := NewNormalizer(zap.NewNop())
	input := pngDataURI(t, 2000, 2000)

	out := n.Normalize(context.Background(), input, testProfile)

	require.True(t, strings.HasPrefix(out, CanonicalPrefix), "expected canonical jpeg prefix")
	w, h, format := decodeDataURI(t, out)
	assert.Equal(t, "jpeg", format)
	assert.LessOrEqual(t, w, 1000)
	assert.LessOrEqual(t, h, 1000)
	assert.Equal(t, 1000, w)
	assert.Equal(t, 1000, h)
}

func TestNormalizePreservesAspectRatio(t *testing.T) {
	n := NewNormalizer(zap.NewNop())
	profile := Profile{Name: "team", MaxWidth: 800, MaxHeight: 1000, Quality: 80}

	out := n.Normalize(context.Background(), pngDataURI(t, 2000, 1000), profile)

	w, h, _ := decodeDataURI(t, out)
	assert.Equal(t, 800, w)
	assert.Equal(t, 400, h)
}

func TestNormalizeNeverEnlarges(t *testing.T) {
	n := NewNormalizer(zap.NewNop())

	out := n.Normalize(context.Background(), pngDataURI(t, 300, 200), testProfile)

	require.True(t, strings.HasPrefix(out, CanonicalPrefix))
	w, h, _ := decodeDataURI(t, out)
	assert.Equal(t, 300, w)
	assert.Equal(t, 200, h)
}

func TestNormalizeConvertsGIFToJPEG(t *testing.T) {
	n := NewNormalizer(zap.NewNop())

	img := image.NewPaletted(image.Rect(0, 0, 120, 60), []color.Color{color.Black, color.White})
	var buf bytes.Buffer
	require.NoError(t, gif.Encode(&buf, img, nil))
	input := "data:image/gif;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())

	out := n.Normalize(context.Background(), input, testProfile)

	require.True(t, strings.HasPrefix(out, CanonicalPrefix))
	w, h, _ := decodeDataURI(t, out)
	assert.Equal(t, 120, w)
	assert.Equal(t, 60, h)
}

func TestNormalizeIsStableOnItsOwnOutput(t *testing.T) {
	n := NewNormalizer(zap.NewNop())
	profile := Profile{Name: "testimonial", MaxWidth: 800, MaxHeight: 800, Quality: 80}

	first := n.Normalize(context.Background(), pngDataURI(t, 1600, 1200), profile)
	second := n.Normalize(context.Background(), first, profile)

	w1, h1, _ := decodeDataURI(t, first)
	w2, h2, _ := decodeDataURI(t, second)
	assert.Equal(t, w1, w2)
	assert.Equal(t, h1, h2)

	drift := float64(len(second)-len(first)) / float64(len(first))
	assert.Less(t, drift, 0.25, "re-compression drift too large")
}

func TestNormalizeFallsBackOnMalformedInput(t *testing.T) {
	outcomes := &recordingObserver{}
	n := NewNormalizer(zap.NewNop(), WithObserver(outcomes))

	cases := map[string]string{
		"bad base64":     "data:image/png;base64,!!!not-base64!!!",
		"missing marker": "data:image/png,AAAA",
		"empty payload":  "data:image/png;base64,",
		"not an image":   "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("hello, world")),
		"corrupt png":    "data:image/png;base64," + base64.StdEncoding.EncodeToString(corruptPNG(t)),
	}

	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, input, n.Normalize(context.Background(), input, testProfile))
		})
	}

	assert.Equal(t, len(cases), outcomes.count(OutcomeFallback))
}

func TestNormalizeRejectsImagesOverPixelLimit(t *testing.T) {
	n := NewNormalizer(zap.NewNop(), WithMaxPixels(100))
	input := pngDataURI(t, 20, 20)

	assert.Equal(t, input, n.Normalize(context.Background(), input, testProfile))
}

func TestNormalizeReportsSentinelErrors(t *testing.T) {
	n := NewNormalizer(zap.NewNop(), WithMaxPixels(100))
	ctx := context.Background()

	_, err := n.normalize(ctx, pngDataURI(t, 20, 20), testProfile)
	assert.ErrorIs(t, err, ErrImageTooLarge)

	_, err = n.normalize(ctx, "data:image/png;base64,"+base64.StdEncoding.EncodeToString([]byte("hello, world")), testProfile)
	assert.ErrorIs(t, err, ErrUnsupportedImage)

	_, err = n.normalize(ctx, "data:image/png,AAAA", testProfile)
	assert.ErrorIs(t, err, ErrMalformedDataURI)
}

func TestNormalizeFallsBackOnInvalidProfile(t *testing.T) {
	n := NewNormalizer(zap.NewNop())
	input := pngDataURI(t, 20, 20)

	assert.Equal(t, input, n.Normalize(context.Background(), input, Profile{Name: "broken"}))
}

func TestNormalizeFallsBackOnTransformerError(t *testing.T) {
	n := NewNormalizer(zap.NewNop(), WithTransformer(failingTransformer{err: errors.New("out of memory")}))
	input := pngDataURI(t, 20, 20)

	assert.Equal(t, input, n.Normalize(context.Background(), input, testProfile))
}

func TestNormalizeRecoversFromTransformerPanic(t *testing.T) {
	n := NewNormalizer(zap.NewNop(), WithTransformer(panickingTransformer{}))
	input := pngDataURI(t, 20, 20)

	assert.Equal(t, input, n.Normalize(context.Background(), input, testProfile))
}

func TestNormalizeFallsBackOnCancelledContext(t *testing.T) {
	n := NewNormalizer(zap.NewNop())
	input := pngDataURI(t, 20, 20)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Equal(t, input, n.Normalize(ctx, input, testProfile))
}

func TestNormalizeValue(t *testing.T) {
	n := NewNormalizer(zap.NewNop())
	ctx := context.Background()
	first := pngDataURI(t, 1200, 600)
	second := pngDataURI(t, 50, 50)

	assert.Nil(t, n.NormalizeValue(ctx, nil, testProfile))
	assert.Equal(t, 42.0, n.NormalizeValue(ctx, 42.0, testProfile))
	assert.Equal(t, true, n.NormalizeValue(ctx, true, testProfile))
	assert.Nil(t, n.NormalizeValue(ctx, []any{}, testProfile))
	assert.Nil(t, n.NormalizeValue(ctx, []string{}, testProfile))
	assert.Equal(t, 7.0, n.NormalizeValue(ctx, []any{7.0, "x"}, testProfile))
	assert.Equal(t, "https://example.com/a.png", n.NormalizeValue(ctx, "https://example.com/a.png", testProfile))

	got, ok := n.NormalizeValue(ctx, []any{first, second}, testProfile).(string)
	require.True(t, ok)
	require.True(t, strings.HasPrefix(got, CanonicalPrefix))
	w, h, _ := decodeDataURI(t, got)
	assert.Equal(t, 1000, w)
	assert.Equal(t, 500, h)

	got, ok = n.NormalizeValue(ctx, []string{"https://example.com/a.png", second}, testProfile).(string)
	require.True(t, ok)
	assert.Equal(t, "https://example.com/a.png", got)
}

func TestNormalizeEachKeepsShapeAndOrder(t *testing.T) {
	n := NewNormalizer(zap.NewNop())
	ctx := context.Background()
	values := []string{
		pngDataURI(t, 2000, 500),
		"https://example.com/b.jpg",
		"data:image/png;base64,!!!",
		pngDataURI(t, 10, 40),
	}

	out := n.NormalizeEach(ctx, values, testProfile)

	require.Len(t, out, len(values))
	w, h, _ := decodeDataURI(t, out[0])
	assert.Equal(t, 1000, w)
	assert.Equal(t, 250, h)
	assert.Equal(t, values[1], out[1])
	assert.Equal(t, values[2], out[2])
	w, h, _ = decodeDataURI(t, out[3])
	assert.Equal(t, 10, w)
	assert.Equal(t, 40, h)

	assert.Nil(t, n.NormalizeEach(ctx, nil, testProfile))
	assert.Empty(t, n.NormalizeEach(ctx, []string{}, testProfile))
}

func TestNormalizeConcurrentCalls(t *testing.T) {
	outcomes := &recordingObserver{}
	n := NewNormalizer(zap.NewNop(), WithObserver(outcomes))
	input := pngDataURI(t, 400, 300)
	profile := Profile{Name: "small", MaxWidth: 100, MaxHeight: 100, Quality: 80}

	var wg sync.WaitGroup
	results := make([]string, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = n.Normalize(context.Background(), input, profile)
		}(i)
	}
	wg.Wait()

	for _, out := range results {
		assert.Equal(t, results[0], out)
	}
	assert.Equal(t, len(results), outcomes.count(OutcomeNormalized))
}

func TestProgressiveIgnoredFollowsBackend(t *testing.T) {
	assert.False(t, ProgressiveIgnored(Profile{Progressive: false}))
	assert.Equal(t, !SupportsProgressive(), ProgressiveIgnored(testProfile))
}

func TestNormalizeLogsEffectiveProgressive(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	n := NewNormalizer(zap.New(core))

	n.Normalize(context.Background(), pngDataURI(t, 40, 30), testProfile)

	entries := logs.FilterMessage("image normalized").All()
	require.Len(t, entries, 1)
	assert.Equal(t, SupportsProgressive(), entries[0].ContextMap()["progressive"])
}

func TestFitInside(t *testing.T) {
	cases := []struct {
		w, h, maxW, maxH int
		wantW, wantH     int
	}{
		{2000, 2000, 1000, 1000, 1000, 1000},
		{2000, 1000, 800, 1000, 800, 400},
		{1000, 3000, 800, 1000, 333, 1000},
		{500, 500, 800, 800, 500, 500},
		{800, 800, 800, 800, 800, 800},
		{5000, 1, 100, 100, 100, 1},
	}
	for _, tc := range cases {
		w, h := fitInside(tc.w, tc.h, tc.maxW, tc.maxH)
		assert.Equal(t, tc.wantW, w, "%dx%d in %dx%d", tc.w, tc.h, tc.maxW, tc.maxH)
		assert.Equal(t, tc.wantH, h, "%dx%d in %dx%d", tc.w, tc.h, tc.maxW, tc.maxH)
	}
}

func TestProfilesFromDefaults(t *testing.T) {
	profiles := DefaultProfiles()

	assert.Equal(t, Profile{Name: "service", MaxWidth: 1000, MaxHeight: 1000, Quality: 80, Progressive: true}, profiles.Service)
	assert.Equal(t, Profile{Name: "team", MaxWidth: 800, MaxHeight: 1000, Quality: 80, Progressive: true}, profiles.Team)
	assert.Equal(t, Profile{Name: "testimonial", MaxWidth: 800, MaxHeight: 800, Quality: 80, Progressive: true}, profiles.Testimonial)
	assert.Equal(t, "project", profiles.Project.Name)
}

type recordingObserver struct {
	mu       sync.Mutex
	outcomes []Outcome
}

func (o *recordingObserver) ObserveNormalization(_ string, outcome Outcome, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.outcomes = append(o.outcomes, outcome)
}

func (o *recordingObserver) count(outcome Outcome) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	total := 0
	for _, got := range o.outcomes {
		if got == outcome {
			total++
		}
	}
	return total
}

type failingTransformer struct {
	err error
}

func (f failingTransformer) Transform(context.Context, []byte, Profile) ([]byte, int, int, error) {
	return nil, 0, 0, f.err
}

type panickingTransformer struct{}

func (panickingTransformer) Transform(context.Context, []byte, Profile) ([]byte, int, int, error) {
	panic("decoder blew up")
}

func pngDataURI(t *testing.T, w, h int) string {
	t.Helper()
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buildTestPNG(t, w, h))
}

func buildTestPNG(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8((x * 255) / w),
				G: uint8((y * 255) / h),
				B: 140,
				A: 255,
			})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode source png: %v", err)
	}
	return buf.Bytes()
}

// corruptPNG keeps a valid PNG signature and header but truncates the data.
func corruptPNG(t *testing.T) []byte {
	t.Helper()
	full := buildTestPNG(t, 64, 64)
	return full[:60]
}

func decodeDataURI(t *testing.T, value string) (int, int, string) {
	t.Helper()

	mediaType, data, err := ParseDataURI(value)
	require.NoError(t, err)
	require.Equal(t, "image/jpeg", mediaType)

	img, format, err := image.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return img.Bounds().Dx(), img.Bounds().Dy(), format
}
