package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/hh-vacancy-crawler/internal/metrics"
)

const pushTimeout = 10 * time.Second

func resolveState(ctx context.Context) (*runState, error) {
	state, ok := ctx.Value(appKey).(*runState)
	if !ok || state == nil {
		return nil, errors.New("application not initialized")
	}
	return state, nil
}

func runSweep(cmd *cobra.Command, areaNames []string) error {
	state, err := resolveState(cmd.Context())
	if err != nil {
		return err
	}
	defer func() {
		state.app.Close()
		_ = state.logger.Sync()
	}()

	summary, runErr := state.app.Run(cmd.Context(), areaNames)
	pushMetrics(state)

	if runErr != nil {
		return fmt.Errorf("sweep: %w", runErr)
	}
	state.logger.Info("sweep complete",
		zap.String("run_id", summary.RunID),
		zap.Int("inserted", summary.Inserted),
		zap.Int("duplicates", summary.Duplicates),
		zap.Int("failed", summary.Failed),
	)
	return nil
}

// pushMetrics ships the run's collectors to the Pushgateway when one is
// configured. It uses a fresh context so an interrupted sweep still reports.
func pushMetrics(state *runState) {
	url := state.cfg.Metrics.PushgatewayURL
	if url == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), pushTimeout)
	defer cancel()
	if err := metrics.Push(ctx, url, state.cfg.Metrics.Job); err != nil {
		state.logger.Warn("metrics push failed", zap.Error(err))
	}
}
