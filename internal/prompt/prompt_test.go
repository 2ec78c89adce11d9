package prompt

import (
	"context"
	"strings"
	"testing"
)

func TestBuild(t *testing.T) {
	var b Builder

	t.Run("embeds tone and keywords", func(t *testing.T) {
		got, err := b.Build(context.Background(), Params{Tone: "Funny", Keywords: " my new puppy ", Captions: 5, Hashtags: 15})
		if err != nil {
			t.Fatal(err)
		}
		for _, want := range []string{"in a Funny tone", `"my new puppy"`, "generate 5 creative", "15 relevant hashtags", "single, valid JSON object"} {
			if !strings.Contains(got, want) {
				t.Errorf("instruction %q does not contain %q", got, want)
			}
		}
	})

	t.Run("blank keywords use the placeholder", func(t *testing.T) {
		got, err := b.Build(context.Background(), Params{Tone: "Casual", Keywords: "  ", Captions: 5, Hashtags: 15})
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(got, `"None provided"`) {
			t.Errorf("instruction %q lacks the keyword placeholder", got)
		}
	})

	t.Run("custom tone is not escaped", func(t *testing.T) {
		got, err := b.Build(context.Background(), Params{Tone: `dry & "witty"`, Captions: 5, Hashtags: 15})
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(got, `in a dry & "witty" tone`) {
			t.Errorf("instruction %q mangled the tone", got)
		}
	})
}
