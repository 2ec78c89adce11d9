package handler

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/png"
	"testing"

	"github.com/dmorgan81/captionbot/internal/caption"
	"github.com/dmorgan81/captionbot/internal/media"
	"github.com/dmorgan81/captionbot/internal/tone"
	"github.com/samber/do"
)

type recordingGenerator struct {
	requests []caption.Request
	err      error
}

func (g *recordingGenerator) Generate(_ context.Context, req caption.Request) (caption.Content, error) {
	g.requests = append(g.requests, req)
	if g.err != nil {
		return caption.Content{}, g.err
	}
	return caption.Content{
		Captions: []string{"one", "two", "three", "four", "five"},
		Hashtags: []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l", "m", "n", "o"},
	}, nil
}

func dataURL(t *testing.T) string {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatal(err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func newTestHandler(t *testing.T, gen caption.Generator) *Handler {
	t.Helper()
	injector := do.New()
	do.ProvideValue(injector, &media.Assembler{})
	do.ProvideValue[caption.Generator](injector, gen)
	h, err := NewHandler(injector)
	if err != nil {
		t.Fatal(err)
	}
	return h
}

func TestHandler_Handle(t *testing.T) {
	img := dataURL(t)

	t.Run("success", func(t *testing.T) {
		gen := &recordingGenerator{}
		out, err := newTestHandler(t, gen).Handle(context.Background(), Input{Image: img, Keywords: "hike", Tone: tone.Custom, CustomTone: "epic"})
		if err != nil {
			t.Fatal(err)
		}
		if len(out.Captions) != 5 || len(out.Hashtags) != 15 {
			t.Errorf("got %d/%d", len(out.Captions), len(out.Hashtags))
		}
		if len(gen.requests) != 1 {
			t.Fatalf("generator called %d times", len(gen.requests))
		}
		req := gen.requests[0]
		if req.Tone != "epic" || req.Keywords != "hike" || req.Payload.MediaType() != "image/png" {
			t.Errorf("unexpected request %+v", req)
		}
	})

	t.Run("default tone", func(t *testing.T) {
		gen := &recordingGenerator{}
		if _, err := newTestHandler(t, gen).Handle(context.Background(), Input{Image: img}); err != nil {
			t.Fatal(err)
		}
		if gen.requests[0].Tone != tone.Default() {
			t.Errorf("tone = %q", gen.requests[0].Tone)
		}
	})

	refused := []struct {
		name  string
		input Input
		err   error
	}{
		{name: "no image", input: Input{Tone: "Funny"}, err: caption.ErrNoImage},
		{name: "blank custom tone", input: Input{Image: img, Tone: tone.Custom}, err: tone.ErrEmptyTone},
		{name: "malformed image", input: Input{Image: "data:image/png;base64,!!"}, err: media.ErrMalformed},
	}
	for _, tt := range refused {
		t.Run(tt.name, func(t *testing.T) {
			gen := &recordingGenerator{}
			_, err := newTestHandler(t, gen).Handle(context.Background(), tt.input)
			if !errors.Is(err, tt.err) {
				t.Errorf("error = %v, want %v", err, tt.err)
			}
			if len(gen.requests) != 0 {
				t.Error("generator called for a refused input")
			}
		})
	}

	t.Run("generation error is returned as is", func(t *testing.T) {
		gen := &recordingGenerator{err: &caption.GenerationError{Err: errors.New("timeout")}}
		out, err := newTestHandler(t, gen).Handle(context.Background(), Input{Image: img})
		var genErr *caption.GenerationError
		if !errors.As(err, &genErr) {
			t.Fatalf("error = %v", err)
		}
		if out.Captions != nil || out.Hashtags != nil {
			t.Error("partial output")
		}
	})
}
