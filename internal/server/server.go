// Package server provides the HTTP API for the agentstep worker.
//
// It exposes health and Prometheus metrics endpoints plus a small run API for
// starting agent run workflows and fetching their results.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/agentstep/internal/agentrun"
	"github.com/fyrsmithlabs/agentstep/internal/config"
	"github.com/fyrsmithlabs/agentstep/internal/logging"
	"github.com/fyrsmithlabs/agentstep/internal/metrics"
	"github.com/fyrsmithlabs/agentstep/pkg/stats"
)

// WorkflowClient is the slice of the Temporal client the server needs.
// client.Client satisfies it.
type WorkflowClient interface {
	ExecuteWorkflow(ctx context.Context, options client.StartWorkflowOptions, workflow interface{}, args ...interface{}) (client.WorkflowRun, error)
	GetWorkflow(ctx context.Context, workflowID, runID string) client.WorkflowRun
}

// Server provides HTTP endpoints for the worker.
type Server struct {
	echo     *echo.Echo
	temporal WorkflowClient
	logger   *logging.Logger
	metrics  *metrics.Metrics
	cfg      *config.Config
}

// New creates the HTTP server.
func New(temporal WorkflowClient, logger *logging.Logger, m *metrics.Metrics, cfg *config.Config) (*Server, error) {
	if temporal == nil {
		return nil, fmt.Errorf("temporal client cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if m == nil {
		return nil, fmt.Errorf("metrics cannot be nil")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			logger.Info(c.Request().Context(), "http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)
			return err
		}
	})

	s := &Server{
		echo:     e,
		temporal: temporal,
		logger:   logger,
		metrics:  m,
		cfg:      cfg,
	}
	s.registerRoutes()

	return s, nil
}

func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(s.metrics.Handler()))

	v1 := s.echo.Group("/api/v1")
	v1.POST("/runs", s.handleStartRun)
	v1.GET("/runs/:id", s.handleGetRun)
}

// StartRunRequest is the request body for POST /api/v1/runs.
type StartRunRequest struct {
	Prompt string `json:"prompt"`
	Model  string `json:"model,omitempty"`
	// Wait makes the request block until the run finishes and return its
	// result instead of just the workflow handle.
	Wait bool `json:"wait,omitempty"`
}

// StartRunResponse is the response body for an accepted run.
type StartRunResponse struct {
	WorkflowID string `json:"workflow_id"`
	RunID      string `json:"run_id"`
}

// RunResponse is the response body for a finished run.
type RunResponse struct {
	WorkflowID string              `json:"workflow_id"`
	Result     *stats.FinalizedRun `json:"result"`
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// handleStartRun starts an agent run workflow.
func (s *Server) handleStartRun(c echo.Context) error {
	ctx := c.Request().Context()

	var req StartRunRequest
	if err := c.Bind(&req); err != nil {
		s.metrics.StartRequests.WithLabelValues("invalid").Inc()
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Prompt == "" {
		s.metrics.StartRequests.WithLabelValues("invalid").Inc()
		return echo.NewHTTPError(http.StatusBadRequest, "prompt is required")
	}

	model := req.Model
	if model == "" {
		model = s.cfg.Agent.Model
	}

	input := agentrun.RunInput{
		Prompt:        req.Prompt,
		Model:         model,
		OpenAIAPIKey:  s.cfg.Agent.OpenAIAPIKey.Value(),
		BaseURL:       s.cfg.Agent.BaseURL,
		MaxIterations: s.cfg.Agent.MaxIterations,
		StepTimeout:   s.cfg.Agent.StepTimeout.Duration(),
	}

	workflowID := "agent-run-" + uuid.NewString()
	run, err := s.temporal.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:        workflowID,
		TaskQueue: s.cfg.Temporal.TaskQueue,
	}, agentrun.AgentRunWorkflow, input)
	if err != nil {
		s.metrics.StartRequests.WithLabelValues("error").Inc()
		s.logger.Error(ctx, "starting run workflow", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to start run")
	}

	s.metrics.StartRequests.WithLabelValues("accepted").Inc()
	ctx = logging.WithRunID(ctx, workflowID)
	s.logger.Info(ctx, "run started", zap.String("model", model))

	if !req.Wait {
		return c.JSON(http.StatusAccepted, StartRunResponse{
			WorkflowID: run.GetID(),
			RunID:      run.GetRunID(),
		})
	}

	result, err := s.awaitRun(ctx, run)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "run failed")
	}
	return c.JSON(http.StatusOK, RunResponse{WorkflowID: run.GetID(), Result: result})
}

// handleGetRun blocks until the identified run completes and returns its
// result.
func (s *Server) handleGetRun(c echo.Context) error {
	ctx := c.Request().Context()
	workflowID := c.Param("id")

	ctx = logging.WithRunID(ctx, workflowID)
	run := s.temporal.GetWorkflow(ctx, workflowID, "")

	var result stats.FinalizedRun
	if err := run.Get(ctx, &result); err != nil {
		var notFound *serviceerror.NotFound
		if errors.As(err, &notFound) {
			return echo.NewHTTPError(http.StatusNotFound, "run not found")
		}
		s.logger.Error(ctx, "fetching run result", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "run failed")
	}
	return c.JSON(http.StatusOK, RunResponse{WorkflowID: workflowID, Result: &result})
}

// awaitRun waits for a run to finish and records run-level metrics.
func (s *Server) awaitRun(ctx context.Context, run client.WorkflowRun) (*stats.FinalizedRun, error) {
	s.metrics.RunsInFlight.Inc()
	defer s.metrics.RunsInFlight.Dec()

	start := time.Now()
	var result stats.FinalizedRun
	if err := run.Get(ctx, &result); err != nil {
		s.metrics.RunsTotal.WithLabelValues("failed").Inc()
		s.logger.Error(ctx, "run failed", zap.Error(err))
		return nil, err
	}

	s.metrics.RunsTotal.WithLabelValues("completed").Inc()
	s.metrics.RunDuration.WithLabelValues(result.Stats.FinalAgent).Observe(time.Since(start).Seconds())
	s.metrics.RunTokens.WithLabelValues("input").Add(float64(result.Stats.InputTokens))
	s.metrics.RunTokens.WithLabelValues("output").Add(float64(result.Stats.OutputTokens))
	s.metrics.RunToolCalls.Add(float64(result.Stats.TotalToolCalls))

	return &result, nil
}

// Start begins serving on the configured address. It blocks until the server
// stops.
func (s *Server) Start() error {
	addr := s.cfg.Server.Addr()
	s.logger.Info(context.Background(), "http server starting", zap.String("addr", addr))
	if err := s.echo.Start(addr); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Handler exposes the underlying handler for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}
