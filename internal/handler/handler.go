package handler

import (
	"context"
	"log/slog"

	"github.com/dmorgan81/captionbot/internal/caption"
	"github.com/dmorgan81/captionbot/internal/log"
	"github.com/dmorgan81/captionbot/internal/media"
	"github.com/dmorgan81/captionbot/internal/tone"
	"github.com/samber/do"
)

// Input is the lambda event. Image is a data URL or bare base64.
type Input struct {
	Image      string `json:"image"`
	MimeType   string `json:"mimeType,omitempty"`
	Keywords   string `json:"keywords,omitempty"`
	Tone       string `json:"tone,omitempty"`
	CustomTone string `json:"customTone,omitempty"`
}

// LogValue keeps the image out of the logs.
func (i Input) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("image_chars", len(i.Image)),
		slog.String("mimeType", i.MimeType),
		slog.String("keywords", i.Keywords),
		slog.String("tone", i.Tone),
		slog.String("customTone", i.CustomTone),
	)
}

type Output struct {
	Captions []string `json:"captions"`
	Hashtags []string `json:"hashtags"`
}

type Handler struct {
	assembler *media.Assembler
	generator caption.Generator
}

func NewHandler(i *do.Injector) (*Handler, error) {
	return &Handler{
		assembler: do.MustInvoke[*media.Assembler](i),
		generator: do.MustInvoke[caption.Generator](i),
	}, nil
}

func (h *Handler) Handle(ctx context.Context, input Input) (Output, error) {
	log := log.FromContextOrDiscard(ctx).WithGroup("Handler").With("input", input)
	log.Info("handling lambda invocation")

	if input.Image == "" {
		return Output{}, caption.ErrNoImage
	}
	resolved, err := tone.Resolve(input.Tone, input.CustomTone)
	if err != nil {
		return Output{}, err
	}
	payload, err := h.assembler.Decode(ctx, input.Image, input.MimeType)
	if err != nil {
		return Output{}, err
	}

	content, err := h.generator.Generate(ctx, caption.Request{
		Payload:  payload,
		Keywords: input.Keywords,
		Tone:     resolved,
	})
	if err != nil {
		log.Error("generation failed", "error", err.Error())
		return Output{}, err
	}
	return Output(content), nil
}
