package media

import (
	"encoding/base64"
	"errors"
	"mime"
	"strings"

	"github.com/samber/lo"
)

var (
	ErrUnsupportedType = errors.New("unsupported image type")
	ErrTooLarge        = errors.New("image too large")
	ErrEmpty           = errors.New("image is empty")
	ErrMalformed       = errors.New("image data is not valid base64")
)

// Accepted lists the image types the model is sent, in the order the
// uploader advertises them.
var Accepted = []string{"image/png", "image/jpeg", "image/webp"}

var aliases = map[string]string{
	"image/jpg":   "image/jpeg",
	"image/pjpeg": "image/jpeg",
	"image/x-png": "image/png",
}

// Payload is an image ready for transport: standard base64 text and its
// media type. The zero value has no image.
type Payload struct {
	data      string
	mediaType string
}

func (p Payload) Data() string {
	return p.data
}

func (p Payload) MediaType() string {
	return p.mediaType
}

func (p Payload) IsZero() bool {
	return p.data == ""
}

// Size is the decoded length in bytes.
func (p Payload) Size() int {
	return base64.StdEncoding.DecodedLen(len(p.data)) - strings.Count(p.data[max(0, len(p.data)-2):], "=")
}

func (p Payload) Bytes() ([]byte, error) {
	return base64.StdEncoding.DecodeString(p.data)
}

// DataURL renders the payload for an <img src>.
func (p Payload) DataURL() string {
	return "data:" + p.mediaType + ";base64," + p.data
}

// ReadError means the image itself could not be read.
type ReadError struct {
	Err error
}

func (e *ReadError) Error() string {
	return "reading image: " + e.Err.Error()
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// normalizeType strips parameters and maps aliases. An empty result means the
// caller did not declare a usable type.
func normalizeType(declared string) string {
	declared = strings.TrimSpace(declared)
	if declared == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(declared)
	if err != nil {
		mt = strings.ToLower(declared)
	}
	if alias, ok := aliases[mt]; ok {
		mt = alias
	}
	return lo.Ternary(mt == "application/octet-stream", "", mt)
}

func accepted(mediaType string) bool {
	return lo.Contains(Accepted, mediaType)
}
