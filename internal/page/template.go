package page

import (
	"bytes"
	"context"
	"embed"
	"html/template"
	"sync"

	"github.com/dmorgan81/captionbot/internal/log"
)

//go:embed assets/*.html
var assets embed.FS

type FormParams struct {
	Tones        []string
	CustomOption string
	Accept       string
	Selected     string
	CustomTone   string
	Keywords     string
	Error        string
}

// Custom reports whether the custom tone input should be shown.
func (p FormParams) Custom() bool {
	return p.Selected == p.CustomOption
}

type ResultsParams struct {
	Image    template.URL
	Captions []string
	Hashtags string
}

type Templator struct {
	tmpl *template.Template
	once sync.Once
}

func (g *Templator) Form(ctx context.Context, params FormParams) ([]byte, error) {
	return g.execute(ctx, "form.html", params)
}

func (g *Templator) Results(ctx context.Context, params ResultsParams) ([]byte, error) {
	return g.execute(ctx, "results.html", params)
}

func (g *Templator) execute(ctx context.Context, name string, data any) ([]byte, error) {
	g.once.Do(func() {
		g.tmpl = template.Must(template.New("pages").ParseFS(assets, "assets/*.html"))
	})

	log := log.FromContextOrDiscard(ctx).WithGroup("templator")
	log.Debug("rendering page", "page", name)

	var buf bytes.Buffer
	if err := g.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
