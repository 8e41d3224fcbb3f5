// Command batch aggregates reviews for many locations and prints one JSON
// line per location to stdout:
//
//	batch --provider serpapi --full ChIJ1 ChIJ2
//	cat ids.txt | batch
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"place_reviews/internal/adapters/observability"
	"place_reviews/internal/shared"
)

func main() {
	cfg := shared.Load()

	// logs go to stderr so stdout stays pure JSON lines
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel).Output(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(cfg).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
