package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/dmorgan81/captionbot/internal/caption"
	"github.com/dmorgan81/captionbot/internal/config"
	"github.com/dmorgan81/captionbot/internal/handler"
	"github.com/dmorgan81/captionbot/internal/inject"
	"github.com/dmorgan81/captionbot/internal/log"
	"github.com/dmorgan81/captionbot/internal/web"
	"github.com/samber/do"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := log.New(os.Stderr, cfg.LogLevel)
	ctx := log.NewContext(context.Background(), logger)
	injector := inject.Setup(ctx, cfg)

	// The generator needs the credential; resolve it before serving anything.
	if _, err := do.Invoke[caption.Generator](injector); err != nil {
		logger.Error("startup failed", "error", err.Error())
		os.Exit(1)
	}

	if cfg.Lambda() {
		h := do.MustInvoke[*handler.Handler](injector)
		lambda.StartWithOptions(h.Handle, lambda.WithContext(ctx), lambda.WithEnableSIGTERM(func() {
			_ = injector.Shutdown()
		}))
		return
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := do.MustInvoke[*web.Server](injector)
	err = server.Serve(ctx)
	_ = injector.Shutdown()
	if err != nil {
		logger.Error("server stopped", "error", err.Error())
		os.Exit(1)
	}
}
