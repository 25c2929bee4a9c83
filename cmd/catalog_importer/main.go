package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/Ashenafi-pixel/gamecrafter-wheel/app"
	"github.com/Ashenafi-pixel/gamecrafter-wheel/config"
	"github.com/Ashenafi-pixel/gamecrafter-wheel/logging"
)

// catalog_importer applies a TOML bootstrap file (treasury, admins and tiers)
// to the configured store. Running it again with the same file is a no-op.
func main() {
	path := flag.String("file", "", "Path to the TOML bootstrap file")
	dryRun := flag.Bool("dry-run", false, "Validate the file without touching the store")
	flag.Parse()

	if *path == "" {
		fmt.Fprintln(os.Stderr, "missing required -file argument")
		os.Exit(1)
	}
	_ = godotenv.Load(".env")

	if err := run(*path, *dryRun); err != nil {
		fmt.Fprintf(os.Stderr, "import failed: %v\n", err)
		os.Exit(1)
	}
}

func run(path string, dryRun bool) error {
	b, err := config.LoadBootstrap(path)
	if err != nil {
		return err
	}
	if dryRun {
		fmt.Printf("%s: super-admin %s, %d admins, %d tiers\n", path, b.SuperAdmin, len(b.Admins), len(b.Tiers))
		return nil
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, err := logging.New("catalog_importer", cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	eng, st, err := app.NewEngine(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := app.ApplyBootstrap(ctx, eng, b, logger); err != nil {
		return err
	}
	cat, err := eng.Catalog(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Imported %d tiers (total weight %d) into the %s store\n", cat.Count, cat.TotalWeight(), cfg.Store)
	return nil
}
