package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/artpar/solarshop/internal/core/crypto"
	"golang.org/x/crypto/bcrypt"
)

// Version information (set by build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "Path to config file")
	seedPath := flag.String("seed", "", "Load a YAML catalog seed file and exit")
	hashToken := flag.String("hash-token", "", "Print the bcrypt hash of an admin token and exit")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("solarshop %s (built %s)\n", Version, BuildTime)
		return ExitSuccess
	}

	if *hashToken != "" {
		hash, err := crypto.HashToken(*hashToken, bcrypt.DefaultCost)
		if err != nil {
			fmt.Fprintf(os.Stderr, "hash-token: %v\n", err)
			return ExitConfigError
		}
		fmt.Println(hash)
		return ExitSuccess
	}

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		return ExitConfigError
	}

	logger := SetupLogger(cfg)
	ctx := context.Background()

	if *seedPath != "" {
		return runSeed(ctx, cfg, *seedPath)
	}

	logger.Info("starting solarshop",
		"version", Version,
		"config", *configPath,
	)

	server, err := NewServer(ctx, cfg, logger)
	if err != nil {
		var sErr *ServerError
		if errors.As(err, &sErr) {
			logger.Error("failed to create server",
				"error", sErr.Err,
				"operation", sErr.Op,
			)
			return sErr.ExitCode
		}
		logger.Error("failed to create server", "error", err)
		return ExitConfigError
	}

	if err := server.Start(ctx); err != nil {
		var sErr *ServerError
		if errors.As(err, &sErr) {
			logger.Error("server error",
				"error", sErr.Err,
				"operation", sErr.Op,
			)
			return sErr.ExitCode
		}
		logger.Error("server error", "error", err)
		return ExitHTTPServerError
	}

	return ExitSuccess
}

func runSeed(ctx context.Context, cfg *Config, path string) int {
	logger := SetupLogger(cfg).With("component", "seed")

	f, err := os.Open(path)
	if err != nil {
		logger.Error("failed to open seed file", "path", path, "error", err)
		return ExitSeedError
	}
	defer f.Close()

	seed, err := ParseSeed(f)
	if err != nil {
		logger.Error("invalid seed file", "path", path, "error", err)
		return ExitSeedError
	}

	s, err := openStore(cfg)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		return ExitDatabaseError
	}
	defer s.Close()

	if _, err := Seed(ctx, s, seed, logger); err != nil {
		logger.Error("seed failed", "error", err)
		return ExitSeedError
	}
	return ExitSuccess
}
