package media

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dmorgan81/captionbot/internal/log"
)

// Assembler turns user supplied images into payloads. MaxBytes of zero
// passes images of any size through unchecked.
type Assembler struct {
	MaxBytes int64
}

// Encode reads r fully and base64-encodes it. declared is the type the
// client claimed; when it is empty or generic the type is sniffed from the
// content.
func (a *Assembler) Encode(ctx context.Context, r io.Reader, declared string) (Payload, error) {
	log := log.FromContextOrDiscard(ctx).WithGroup("assembler").With("declared", declared)

	if a.MaxBytes > 0 {
		r = io.LimitReader(r, a.MaxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		log.Warn("image read failed", "error", err.Error())
		return Payload{}, &ReadError{Err: err}
	}

	mediaType, err := a.check(data, declared)
	if err != nil {
		log.Warn("image rejected", "error", err.Error(), "bytes", len(data))
		return Payload{}, err
	}

	log.Debug("image encoded", "media_type", mediaType, "bytes", len(data))
	return Payload{data: base64.StdEncoding.EncodeToString(data), mediaType: mediaType}, nil
}

// Decode accepts an already encoded image, either a data URL as produced by
// a browser FileReader or bare base64. The data URL prefix is stripped; its
// media type is used when declared is empty.
func (a *Assembler) Decode(ctx context.Context, s, declared string) (Payload, error) {
	log := log.FromContextOrDiscard(ctx).WithGroup("assembler").With("declared", declared)

	encoded, prefixType := stripDataURL(strings.TrimSpace(s))
	if normalizeType(declared) == "" {
		declared = prefixType
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		log.Warn("image rejected", "error", err.Error())
		return Payload{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	mediaType, err := a.check(data, declared)
	if err != nil {
		log.Warn("image rejected", "error", err.Error(), "bytes", len(data))
		return Payload{}, err
	}

	log.Debug("image decoded", "media_type", mediaType, "bytes", len(data))
	return Payload{data: base64.StdEncoding.EncodeToString(data), mediaType: mediaType}, nil
}

func (a *Assembler) check(data []byte, declared string) (string, error) {
	if len(data) == 0 {
		return "", ErrEmpty
	}
	if a.MaxBytes > 0 && int64(len(data)) > a.MaxBytes {
		return "", fmt.Errorf("%w: more than %d bytes", ErrTooLarge, a.MaxBytes)
	}

	mediaType := normalizeType(declared)
	if mediaType == "" {
		mediaType = normalizeType(http.DetectContentType(data))
	}
	if !accepted(mediaType) {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, mediaType)
	}
	return mediaType, nil
}

// stripDataURL splits "data:image/png;base64,AAAA" into "AAAA" and
// "image/png". Anything that is not a base64 data URL is returned unchanged.
func stripDataURL(s string) (string, string) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return s, ""
	}
	header, encoded, ok := strings.Cut(rest, ",")
	if !ok {
		return s, ""
	}
	mediaType, ok := strings.CutSuffix(header, ";base64")
	if !ok {
		return s, ""
	}
	return encoded, mediaType
}
