package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Ashenafi-pixel/gamecrafter-wheel/app"
	"github.com/Ashenafi-pixel/gamecrafter-wheel/config"
	"github.com/Ashenafi-pixel/gamecrafter-wheel/engine"
	"github.com/Ashenafi-pixel/gamecrafter-wheel/logging"
	"github.com/Ashenafi-pixel/gamecrafter-wheel/server"
)

func main() {
	// Load .env so DATABASE_URL and friends are set: cwd .env, or project root .env/.env.local
	_ = godotenv.Load(".env")
	_ = godotenv.Load("../.env")
	_ = godotenv.Load("../.env.local")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger, err := logging.New("wheel", cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("wheel stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eng, st, err := app.NewEngine(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	if cfg.BootstrapFile != "" {
		b, err := config.LoadBootstrap(cfg.BootstrapFile)
		if err != nil {
			return err
		}
		// Funded before initialisation so a vault seed deposit can draw on it.
		if err := app.FundBalances(eng, b, logger); err != nil {
			return err
		}
		if _, err := eng.Treasury(ctx); errors.Is(err, engine.ErrNotInitialized) {
			if err := app.ApplyBootstrap(ctx, eng, b, logger); err != nil {
				return err
			}
		} else if err != nil {
			return err
		}
	}

	logger.Info("wheel starting",
		zap.String("store", cfg.Store),
		zap.String("primaryAsset", string(eng.PrimaryAsset())),
		zap.Bool("legacyClaims", cfg.LegacyClaims),
		zap.Bool("remoteLedger", cfg.PlatformURL != ""),
	)
	srv := server.New(eng, server.Options{
		Logger:    logger,
		SpinRate:  cfg.SpinRate,
		SpinBurst: cfg.SpinBurst,
	})
	return srv.Run(ctx, cfg.Port)
}
