package page

import (
	"context"
	"html/template"
	"strings"
	"testing"
)

func TestTemplator_Form(t *testing.T) {
	var g Templator
	out, err := g.Form(context.Background(), FormParams{
		Tones:        []string{"Casual", "Funny"},
		CustomOption: "custom-tone-option",
		Accept:       "image/png,image/jpeg,image/webp",
		Selected:     "Funny",
		Keywords:     "<b>puppy</b>",
		Error:        "Please enter a custom tone.",
	})
	if err != nil {
		t.Fatal(err)
	}
	html := string(out)
	for _, want := range []string{
		`<option value="Funny" selected>Funny</option>`,
		`<option value="custom-tone-option">Custom...</option>`,
		`accept="image/png,image/jpeg,image/webp"`,
		"&lt;b&gt;puppy&lt;/b&gt;",
		`<div class="error">Please enter a custom tone.</div>`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("form does not contain %q", want)
		}
	}

	// Reset posts its own empty form so the chosen image is not uploaded.
	if strings.Contains(html, "formaction") {
		t.Error("reset still rides on the upload form")
	}
	_, reset, ok := strings.Cut(html, `<form class="actions" method="post" action="/reset">`)
	if !ok {
		t.Fatal("form has no separate reset form")
	}
	reset, _, _ = strings.Cut(reset, "</form>")
	if strings.Contains(reset, "<input") || !strings.Contains(reset, ">Reset</button>") {
		t.Errorf("reset form = %q, want a lone Reset button", reset)
	}
}

func TestTemplator_Results(t *testing.T) {
	var g Templator
	out, err := g.Results(context.Background(), ResultsParams{
		Image:    template.URL("data:image/png;base64,AAAA"),
		Captions: []string{"first", "second"},
		Hashtags: "#sun #sea",
	})
	if err != nil {
		t.Fatal(err)
	}
	html := string(out)
	for _, want := range []string{`src="data:image/png;base64,AAAA"`, "#sun #sea", ">first<", ">second<", "Start New"} {
		if !strings.Contains(html, want) {
			t.Errorf("results do not contain %q", want)
		}
	}
}
