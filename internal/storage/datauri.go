package storage

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

const dataImagePrefix = "data:image"

var ErrInvalidDataURI = errors.New("invalid base64 image format")

// IsInlineImage reports whether v is an inline data:image payload rather than
// a stored key or an external URL.
func IsInlineImage(v string) bool {
	return strings.HasPrefix(v, dataImagePrefix)
}

// InlineImage is a decoded data:image/<ext>;base64,<payload> value.
type InlineImage struct {
	ContentType string
	Extension   string
	Data        []byte
}

func ParseDataURI(v string) (*InlineImage, error) {
	if !IsInlineImage(v) {
		return nil, ErrInvalidDataURI
	}
	header, payload, ok := strings.Cut(v, ",")
	if !ok || payload == "" {
		return nil, fmt.Errorf("%w: missing payload", ErrInvalidDataURI)
	}

	mediaType, params, _ := strings.Cut(strings.TrimPrefix(header, "data:"), ";")
	if !strings.Contains(params, "base64") {
		return nil, fmt.Errorf("%w: payload is not base64", ErrInvalidDataURI)
	}
	_, ext, ok := strings.Cut(mediaType, "/")
	if !ok || ext == "" {
		return nil, fmt.Errorf("%w: missing image subtype", ErrInvalidDataURI)
	}
	ext = strings.ToLower(ext)
	if !validExtension(ext) {
		return nil, fmt.Errorf("%w: bad image subtype %q", ErrInvalidDataURI, ext)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDataURI, err)
	}
	return &InlineImage{ContentType: mediaType, Extension: ext, Data: data}, nil
}

// validExtension accepts subtypes made of [a-z0-9+.-] that cannot walk out of
// the object key ("svg+xml" is fine, "x/../y" and ".." are not).
func validExtension(ext string) bool {
	if strings.HasPrefix(ext, ".") || strings.Contains(ext, "..") {
		return false
	}
	for _, r := range ext {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '+', r == '.', r == '-':
		default:
			return false
		}
	}
	return true
}
