package caption

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dmorgan81/captionbot/internal/log"
	"github.com/dmorgan81/captionbot/internal/prompt"
	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

type GeminiConfig struct {
	APIKey      string
	Model       string
	BaseURL     string
	HTTPClient  *http.Client
	Temperature float32
	TopP        float32
	// RequestsPerMinute throttles outbound calls; zero disables throttling.
	RequestsPerMinute int
}

// GeminiGenerator asks a Gemini model for captions with a JSON response
// schema. It never retries; callers decide whether to resubmit.
type GeminiGenerator struct {
	models      *genai.Models
	model       string
	temperature float32
	topP        float32
	limiter     *rate.Limiter
	prompts     *prompt.Builder
}

func NewGeminiGenerator(ctx context.Context, cfg GeminiConfig) (*GeminiGenerator, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini: api key is required")
	}
	if cfg.Model == "" {
		return nil, errors.New("gemini: model is required")
	}

	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions.BaseURL = cfg.BaseURL
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("gemini: creating client: %w", err)
	}

	g := &GeminiGenerator{
		models:      client.Models,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		topP:        cfg.TopP,
		prompts:     &prompt.Builder{},
	}
	if cfg.RequestsPerMinute > 0 {
		g.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1)
	}
	return g, nil
}

func (g *GeminiGenerator) Generate(ctx context.Context, req Request) (Content, error) {
	if err := req.Validate(); err != nil {
		return Content{}, err
	}

	log := log.FromContextOrDiscard(ctx).WithGroup("gemini").With(
		"model", g.model,
		"media_type", req.Payload.MediaType(),
		"bytes", req.Payload.Size(),
		"tone", req.Tone,
	)

	data, err := req.Payload.Bytes()
	if err != nil {
		return Content{}, fmt.Errorf("decoding payload: %w", err)
	}
	instruction, err := g.prompts.Build(ctx, prompt.Params{
		Tone:     req.Tone,
		Keywords: req.Keywords,
		Captions: Captions,
		Hashtags: Hashtags,
	})
	if err != nil {
		return Content{}, fmt.Errorf("building instruction: %w", err)
	}

	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			log.Warn("throttled request abandoned", "error", err.Error())
			return Content{}, &GenerationError{Err: err}
		}
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(data, req.Payload.MediaType()),
			genai.NewPartFromText(instruction),
		}, genai.RoleUser),
	}

	log.Info("requesting captions")
	start := time.Now()
	resp, err := g.models.GenerateContent(ctx, g.model, contents, g.config())
	if err != nil {
		log.Error("model call failed", "error", err.Error(), "elapsed", time.Since(start))
		return Content{}, &GenerationError{Err: err}
	}

	content, err := Decode(resp.Text())
	if err != nil {
		log.Error("model returned an unusable response", "error", err.Error(), "elapsed", time.Since(start))
		return Content{}, err
	}

	log.Info("received captions", "captions", len(content.Captions), "hashtags", len(content.Hashtags), "elapsed", time.Since(start))
	return content, nil
}

func (g *GeminiGenerator) config() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   responseSchema,
		Temperature:      genai.Ptr(g.temperature),
		TopP:             genai.Ptr(g.topP),
	}
}

var responseSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"captions": {
			Type:        genai.TypeArray,
			Items:       &genai.Schema{Type: genai.TypeString},
			Description: fmt.Sprintf("An array of %d creative and engaging social media captions.", Captions),
		},
		"hashtags": {
			Type:        genai.TypeArray,
			Items:       &genai.Schema{Type: genai.TypeString},
			Description: fmt.Sprintf("An array of %d relevant hashtags, without the # symbol.", Hashtags),
		},
	},
	Required:         []string{"captions", "hashtags"},
	PropertyOrdering: []string{"captions", "hashtags"},
}
