// Package cron runs the periodic reconciliation of pending sessions.
package cron

import (
	"context"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"cartpay/internal/config"
	"cartpay/internal/reconcile"
)

// Scheduler manages the background jobs.
type Scheduler struct {
	cron       *cron.Cron
	cfg        config.ReconcileConfig
	logger     *zap.Logger
	reconciler *reconcile.Reconciler
}

// New creates a new cron scheduler.
func New(cfg config.ReconcileConfig, reconciler *reconcile.Reconciler, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:       cron.New(),
		cfg:        cfg,
		logger:     logger,
		reconciler: reconciler,
	}
}

// Start registers and starts all cron jobs.
func (s *Scheduler) Start() {
	s.logger.Info("Starting cron scheduler", zap.String("schedule", s.cfg.Schedule))

	// Webhooks can be lost; polling is the backstop that still moves
	// pending sessions to their gateway-side outcome.
	_, err := s.cron.AddFunc(s.cfg.Schedule, func() {
		s.logger.Debug("Running: reconcile pending sessions")
		s.reconciler.Run(context.Background(), s.cfg.BatchSize)
	})
	if err != nil {
		s.logger.Error("Failed to register reconcile job", zap.Error(err))
		return
	}

	s.cron.Start()
}

// Stop stops the scheduler and returns a context that is done once running
// jobs have finished.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("Stopping cron scheduler...")
	return s.cron.Stop()
}
