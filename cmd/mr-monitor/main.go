package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/vilaca/mr-monitor/internal/api"
	"github.com/vilaca/mr-monitor/internal/api/gitlab"
	"github.com/vilaca/mr-monitor/internal/config"
	"github.com/vilaca/mr-monitor/internal/domain"
	"github.com/vilaca/mr-monitor/internal/logger"
	"github.com/vilaca/mr-monitor/internal/report"
	"github.com/vilaca/mr-monitor/internal/service"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "mr-monitor: %v\n", err)
		os.Exit(2)
	}

	log := logger.New(cfg.LogLevel)
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log, os.Stdout); err != nil {
		log.Error("run failed", zap.Error(err))
		fmt.Fprintf(os.Stderr, "mr-monitor: %v\n", err)
		stop()
		log.Sync()
		os.Exit(1)
	}
}

// run wires dependencies, fetches and classifies merge requests and writes
// the report to out. Nothing is written when any step fails.
func run(ctx context.Context, cfg *config.Config, log *zap.Logger, out io.Writer) error {
	renderer, err := report.New(cfg.Format)
	if err != nil {
		return err
	}

	if cfg.ConfigFile != "" {
		log.Debug("loaded config file", zap.String("path", cfg.ConfigFile))
	}

	httpClient := &http.Client{
		Timeout: cfg.RequestTimeout,
	}
	gateway := gitlab.NewClient(api.ClientConfig{
		BaseURL: cfg.GitLabURL,
		Token:   cfg.APIToken,
	}, httpClient)

	svc := service.NewMergeRequestService(gateway, cfg.ProjectID, cfg.MaxConcurrency, log)

	mrs, err := svc.FetchAndEnrich(ctx, cfg.TargetBranch, domain.AuthorFilter(cfg.AuthorIDs))
	if err != nil {
		return err
	}

	ready, blocked := service.ClassifyAndPartition(mrs)
	log.Info("classified merge requests",
		zap.String("branch", cfg.TargetBranch),
		zap.Int("ready", len(ready)),
		zap.Int("blocked", len(blocked)),
	)

	return renderer.Render(out, report.Report{
		TargetBranch: cfg.TargetBranch,
		Ready:        ready,
		Blocked:      blocked,
	})
}
