package session

import (
	"errors"

	"github.com/dmorgan81/captionbot/internal/caption"
	"github.com/dmorgan81/captionbot/internal/media"
	"github.com/dmorgan81/captionbot/internal/tone"
)

const generationFailed = "Failed to generate content: Could not generate content. The model may have returned an unexpected response."

// Message turns any error from an attempt into the text shown to the user.
// Model failures and malformed responses read the same; logs keep them apart.
func Message(err error) string {
	var (
		readErr    *media.ReadError
		genErr     *caption.GenerationError
		invalidErr *caption.InvalidResponseError
	)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, caption.ErrNoImage):
		return "Please upload an image first."
	case errors.Is(err, tone.ErrEmptyTone):
		return "Please enter a custom tone."
	case errors.Is(err, ErrBusy):
		return "A generation is already running. Please wait for it to finish."
	case errors.As(err, &readErr):
		return "Could not read the selected image. Please choose the file again."
	case errors.Is(err, media.ErrEmpty):
		return "The selected image is empty. Please choose another file."
	case errors.Is(err, media.ErrUnsupportedType):
		return "Unsupported image type. Please upload a PNG, JPG or WEBP image."
	case errors.Is(err, media.ErrTooLarge):
		return "The selected image is too large. Please choose a smaller file."
	case errors.Is(err, media.ErrMalformed):
		return "The image data could not be decoded."
	case errors.As(err, &genErr), errors.As(err, &invalidErr):
		return generationFailed
	default:
		return "An unknown error occurred."
	}
}
