package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/JaimeStill/agent-market/internal/config"
	"github.com/JaimeStill/agent-market/internal/migrations"
	"github.com/JaimeStill/agent-market/pkg/logging"
)

const EnvDatabaseURL = "DATABASE_URL"

func main() {
	var (
		dbURL = flag.String("url", "", "pgx5:// database URL (defaults to config.toml)")
		steps = flag.Int("steps", 1, "Migrations to roll back with down")
	)
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: migrate [-url <pgx5-url>] [-steps n] up|down|version")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	if err := cfg.Finalize(); err != nil {
		log.Fatalf("config finalize failed: %v", err)
	}

	if *dbURL == "" {
		*dbURL = os.Getenv(EnvDatabaseURL)
	}
	if *dbURL == "" {
		*dbURL = cfg.Database.MigrationURL()
	}

	runner, err := migrations.New(*dbURL, logging.New(&cfg.Logging))
	if err != nil {
		log.Fatalf("migrations init failed: %v", err)
	}
	defer runner.Close()

	switch cmd := flag.Arg(0); cmd {
	case "up":
		err = runner.Up()
	case "down":
		err = runner.Down(*steps)
	case "version":
		var (
			v     uint
			dirty bool
		)
		v, dirty, err = runner.Version()
		if err == nil {
			fmt.Printf("version %d (dirty: %t)\n", v, dirty)
		}
	default:
		flag.Usage()
		os.Exit(2)
	}

	if err != nil {
		runner.Close()
		log.Fatalf("migrate %s failed: %v", flag.Arg(0), err)
	}
}
