package inject

import (
	"context"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/dmorgan81/captionbot/internal/caption"
	"github.com/dmorgan81/captionbot/internal/config"
	"github.com/dmorgan81/captionbot/internal/handler"
	"github.com/dmorgan81/captionbot/internal/log"
	"github.com/dmorgan81/captionbot/internal/media"
	"github.com/dmorgan81/captionbot/internal/page"
	"github.com/dmorgan81/captionbot/internal/param"
	"github.com/dmorgan81/captionbot/internal/session"
	"github.com/dmorgan81/captionbot/internal/web"
	"github.com/samber/do"
)

// Setup declares every service lazily; nothing touches AWS or Gemini until a
// service that needs it is invoked.
func Setup(ctx context.Context, cfg config.Config) *do.Injector {
	log := log.FromContextOrDiscard(ctx)

	injector := do.NewWithOpts(&do.InjectorOpts{
		Logf: func(format string, args ...any) {
			log.Debug(fmt.Sprintf(format, args...))
		},
	})
	do.Provide[aws.Config](injector, func(i *do.Injector) (aws.Config, error) {
		return awsconfig.LoadDefaultConfig(ctx)
	})
	do.Provide[*ssm.Client](injector, func(i *do.Injector) (*ssm.Client, error) {
		return ssm.NewFromConfig(do.MustInvoke[aws.Config](i)), nil
	})
	do.ProvideValue[*http.Client](injector, &http.Client{Timeout: cfg.Timeout})

	do.Provide[param.Fetcher](injector, param.NewParameterStoreFetcher)
	do.ProvideNamed[string](injector, "gemini_api_key", func(i *do.Injector) (string, error) {
		var fetcher param.Fetcher
		if cfg.APIKeyParam != "" {
			f, err := do.Invoke[param.Fetcher](i)
			if err != nil {
				return "", err
			}
			fetcher = f
		}
		return cfg.Credential(ctx, fetcher)
	})

	do.Provide[caption.Generator](injector, func(i *do.Injector) (caption.Generator, error) {
		key, err := do.InvokeNamed[string](i, "gemini_api_key")
		if err != nil {
			return nil, err
		}
		return caption.NewGeminiGenerator(ctx, caption.GeminiConfig{
			APIKey:            key,
			Model:             cfg.Model,
			BaseURL:           cfg.BaseURL,
			HTTPClient:        do.MustInvoke[*http.Client](i),
			Temperature:       cfg.Temperature,
			TopP:              cfg.TopP,
			RequestsPerMinute: cfg.RequestsPerMinute,
		})
	})
	do.ProvideValue[*media.Assembler](injector, &media.Assembler{MaxBytes: cfg.MaxImageBytes})
	do.Provide[*session.Registry](injector, func(i *do.Injector) (*session.Registry, error) {
		return session.NewRegistry(do.MustInvoke[*media.Assembler](i), do.MustInvoke[caption.Generator](i), cfg.SessionTTL), nil
	})
	do.ProvideValue[*page.Templator](injector, &page.Templator{})

	do.ProvideNamedValue[string](injector, "addr", cfg.Addr)
	do.ProvideNamedValue[int64](injector, "max_image_bytes", cfg.MaxImageBytes)

	do.Provide[*handler.Handler](injector, handler.NewHandler)
	do.Provide[*web.Server](injector, web.NewServer)

	return injector
}
