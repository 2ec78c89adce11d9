package caption

import (
	"context"
	"strings"

	"github.com/dmorgan81/captionbot/internal/media"
	"github.com/dmorgan81/captionbot/internal/tone"
)

// How many of each the model is asked for. Longer lists are truncated.
const (
	Captions = 5
	Hashtags = 15
)

type Request struct {
	Payload  media.Payload
	Keywords string
	Tone     string
}

// Validate runs before anything is sent.
func (r Request) Validate() error {
	if r.Payload.IsZero() {
		return ErrNoImage
	}
	if strings.TrimSpace(r.Tone) == "" {
		return tone.ErrEmptyTone
	}
	return nil
}

// Content is a validated generation result. Hashtags carry no leading '#'.
type Content struct {
	Captions []string `json:"captions"`
	Hashtags []string `json:"hashtags"`
}

// HashtagLine renders the hashtags the way they are pasted into a post.
func (c Content) HashtagLine() string {
	var sb strings.Builder
	for i, h := range c.Hashtags {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteByte('#')
		sb.WriteString(h)
	}
	return sb.String()
}

type Generator interface {
	Generate(context.Context, Request) (Content, error)
}
