// Command sweep runs the onboarding reconciliation once, for schedulers that
// prefer a job over calling the cron endpoint.
package main

import (
	"context"
	"log"
	"os"
	"time"

	"merchantportal/internal/config"
	"merchantportal/internal/logger"
	"merchantportal/internal/repositories"
	"merchantportal/internal/services/onboarding"

	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	zl, err := logger.Init(logger.LogConfig{
		Level:       cfg.App.LogLevel,
		Environment: cfg.App.Environment,
		ServiceName: "merchantportal-sweep",
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	if err := run(cfg, zl); err != nil {
		zl.Error("Onboarding sweep failed", zap.Error(err))
		_ = zl.Sync()
		os.Exit(1)
	}
	_ = zl.Sync()
}

func run(cfg *config.Config, zl *zap.Logger) error {
	if err := repositories.InitDB(cfg); err != nil {
		return err
	}
	defer repositories.Close(zl)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	reconciler := onboarding.NewReconciler(
		repositories.NewMerchantRepository(repositories.DB),
		repositories.NewProgressRepository(repositories.DB),
		onboarding.Config{
			FinalStep:        cfg.Onboarding.FinalStep,
			SweepConcurrency: cfg.Onboarding.SweepConcurrency,
		},
		zl.Named("onboarding"),
	)

	result, err := reconciler.Sweep(ctx)
	if err != nil {
		return err
	}
	zl.Info("✅ Onboarding sweep finished",
		zap.Int("scanned", result.Scanned),
		zap.Int("cleaned", result.Cleaned),
		zap.Int("failed", result.Failed))
	return nil
}
