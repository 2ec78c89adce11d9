package prompt

import (
	"context"
	_ "embed"
	"strings"
	"sync"
	"text/template"

	"github.com/dmorgan81/captionbot/internal/log"
	"github.com/samber/lo"
)

// NoKeywords stands in for keywords the user left blank.
const NoKeywords = "None provided"

//go:embed assets/instruction.tmpl
var instructionTmpl string

type Params struct {
	Tone     string
	Keywords string
	Captions int
	Hashtags int
}

type Builder struct {
	tmpl *template.Template
	once sync.Once
}

func (b *Builder) Build(ctx context.Context, params Params) (string, error) {
	b.once.Do(func() {
		b.tmpl = template.Must(template.New("instruction").Parse(instructionTmpl))
	})

	params.Keywords = strings.TrimSpace(params.Keywords)
	params.Keywords = lo.Ternary(params.Keywords == "", NoKeywords, params.Keywords)

	log := log.FromContextOrDiscard(ctx).WithGroup("prompt")
	log.Debug("building instruction", "tone", params.Tone, "keywords", params.Keywords)

	var sb strings.Builder
	if err := b.tmpl.Execute(&sb, params); err != nil {
		return "", err
	}
	return strings.TrimSpace(sb.String()), nil
}
