// Package main runs the agentstep worker.
//
// The worker hosts the agent run workflow on a Temporal task queue and serves
// an HTTP API for starting runs and scraping metrics.
//
// Usage:
//
//	# Start with defaults (Temporal on localhost:7233)
//	agentstep-worker
//
//	# With a config file and API key
//	AGENTSTEP_AGENT_OPENAI_API_KEY=sk-... agentstep-worker --config worker.yaml
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/agentstep/internal/agentrun"
	"github.com/fyrsmithlabs/agentstep/internal/config"
	"github.com/fyrsmithlabs/agentstep/internal/logging"
	"github.com/fyrsmithlabs/agentstep/internal/metrics"
	"github.com/fyrsmithlabs/agentstep/internal/server"
)

var version = "dev"

var configPath string

var rootCmd = &cobra.Command{
	Use:     "agentstep-worker",
	Short:   "Temporal worker for durable agent runs",
	Long:    "agentstep-worker hosts agent run workflows whose tool calls persist\nas durable steps, and serves an HTTP API for starting runs.",
	Version: version,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info(ctx, "worker starting",
		zap.String("temporal", cfg.Temporal.HostPort),
		zap.String("task_queue", cfg.Temporal.TaskQueue),
		zap.String("model", cfg.Agent.Model),
	)

	if !cfg.Agent.OpenAIAPIKey.IsSet() {
		logger.Warn(ctx, "agent.openai_api_key not set, runs will fail unless base_url needs no auth")
	}

	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
	})
	if err != nil {
		return fmt.Errorf("connecting to Temporal: %w", err)
	}
	defer c.Close()

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})
	w.RegisterWorkflow(agentrun.AgentRunWorkflow)

	m := metrics.New()
	srv, err := server.New(c, logger, m, cfg)
	if err != nil {
		return fmt.Errorf("creating http server: %w", err)
	}

	errCh := make(chan error, 2)
	go func() {
		errCh <- w.Run(worker.InterruptCh())
	}()
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		logger.Info(ctx, "shutdown signal received")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn(shutdownCtx, "http server shutdown", zap.Error(err))
	}

	logger.Info(ctx, "worker stopped")
	return nil
}
