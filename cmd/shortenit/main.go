// Command shortenit запускает веб-сервис сокращения ссылок.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/InQaaaaGit/shortenit/internal/app"
	"github.com/InQaaaaGit/shortenit/internal/buildinfo"
	"github.com/InQaaaaGit/shortenit/internal/config"
	"github.com/InQaaaaGit/shortenit/internal/server"
)

// Заполняются при сборке через -ldflags "-X main.buildVersion=..."
var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	err := run(ctx, os.Args[1:], os.Stdout)
	stop()
	if err != nil {
		log.Fatalf("shortenit: %v", err)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	info := buildinfo.New(buildVersion, buildDate, buildCommit)
	info.Print(stdout)

	cfg, err := config.Load(args)
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	logger, err := server.NewLogger(cfg.Debug)
	if err != nil {
		return fmt.Errorf("error initializing logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()
	logger.Info("Starting shortenit", info.Fields()...)

	application, err := app.NewApp(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("error creating application: %w", err)
	}

	if err := application.Run(ctx); err != nil {
		logger.Error("Server stopped with error", zap.Error(err))
		return err
	}
	logger.Info("Server stopped")
	return nil
}
