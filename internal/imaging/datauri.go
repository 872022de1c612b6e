package imaging

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

const (
	// ImagePrefix marks a value as inline image data. Matching is exact and
	// case-sensitive.
	ImagePrefix = "data:image"

	// CanonicalPrefix heads every normalized image.
	CanonicalPrefix = "data:image/jpeg;base64,"

	dataScheme   = "data:"
	base64Marker = ";base64,"
)

var (
	// ErrNotDataURI is returned for values without the data: scheme.
	ErrNotDataURI = errors.New("value is not a data uri")
	// ErrMalformedDataURI is returned when a data URI lacks a base64 payload
	// or the payload does not decode.
	ErrMalformedDataURI = errors.New("malformed data uri")
)

// IsImageDataURI reports whether value is eligible for normalization.
func IsImageDataURI(value string) bool {
	return strings.HasPrefix(value, ImagePrefix)
}

// ParseDataURI splits a base64 data URI into its media type and decoded
// payload. Everything up to and including the first ";base64," marker is
// treated as header.
func ParseDataURI(value string) (string, []byte, error) {
	if !strings.HasPrefix(value, dataScheme) {
		return "", nil, ErrNotDataURI
	}

	header, payload, ok := strings.Cut(value[len(dataScheme):], base64Marker)
	if !ok {
		return "", nil, fmt.Errorf("%w: missing %q marker", ErrMalformedDataURI, base64Marker)
	}

	data, err := decodeBase64(payload)
	if err != nil {
		return "", nil, err
	}

	mediaType, _, _ := strings.Cut(header, ";")
	return strings.ToLower(strings.TrimSpace(mediaType)), data, nil
}

// EncodeDataURI renders data as a base64 data URI of the given media type.
func EncodeDataURI(mediaType string, data []byte) string {
	var b strings.Builder
	b.Grow(len(dataScheme) + len(mediaType) + len(base64Marker) + base64.StdEncoding.EncodedLen(len(data)))
	b.WriteString(dataScheme)
	b.WriteString(mediaType)
	b.WriteString(base64Marker)
	b.WriteString(base64.StdEncoding.EncodeToString(data))
	return b.String()
}

func decodeBase64(payload string) ([]byte, error) {
	payload = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\r', '\n':
			return -1
		default:
			return r
		}
	}, payload)
	if payload == "" {
		return nil, fmt.Errorf("%w: empty payload", ErrMalformedDataURI)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err == nil {
		return data, nil
	}
	// Browsers occasionally drop the trailing padding.
	if raw, rawErr := base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "=")); rawErr == nil {
		return raw, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrMalformedDataURI, err)
}
