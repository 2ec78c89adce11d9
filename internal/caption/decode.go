package caption

import (
	"encoding/json"
	"strings"

	"github.com/samber/lo"
)

type wireContent struct {
	Captions *[]string `json:"captions"`
	Hashtags *[]string `json:"hashtags"`
}

// Decode parses the model's text into Content. Either both lists come back
// usable or an *InvalidResponseError is returned and nothing else.
func Decode(text string) (Content, error) {
	raw := strings.TrimSpace(text)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Content{}, &InvalidResponseError{Reason: "empty response"}
	}

	var wire wireContent
	if err := json.Unmarshal([]byte(raw), &wire); err != nil {
		return Content{}, &InvalidResponseError{Reason: "not a JSON object", Err: err}
	}
	if wire.Captions == nil {
		return Content{}, &InvalidResponseError{Reason: `missing "captions"`}
	}
	if wire.Hashtags == nil {
		return Content{}, &InvalidResponseError{Reason: `missing "hashtags"`}
	}

	captions := clean(*wire.Captions, strings.TrimSpace, Captions)
	if len(captions) == 0 {
		return Content{}, &InvalidResponseError{Reason: `empty "captions"`}
	}
	hashtags := clean(*wire.Hashtags, normalizeHashtag, Hashtags)
	if len(hashtags) == 0 {
		return Content{}, &InvalidResponseError{Reason: `empty "hashtags"`}
	}

	return Content{Captions: captions, Hashtags: hashtags}, nil
}

func clean(items []string, normalize func(string) string, limit int) []string {
	out := lo.FilterMap(items, func(s string, _ int) (string, bool) {
		s = normalize(s)
		return s, s != ""
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func normalizeHashtag(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, "#＃")
	return strings.Join(strings.Fields(s), "")
}
