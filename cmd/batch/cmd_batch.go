package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/semaphore"

	"place_reviews/internal/app"
	"place_reviews/internal/domain"
	"place_reviews/internal/shared"
)

type line struct {
	LocationID string                  `json:"locationId"`
	Result     *domain.AggregateResult `json:"result,omitempty"`
	Error      string                  `json:"error,omitempty"`
	Details    string                  `json:"details,omitempty"`
}

func newRootCmd(cfg shared.Config) *cobra.Command {
	var (
		providerName string
		full         bool
		workers      int
	)

	cmd := &cobra.Command{
		Use:   "batch [locationId...]",
		Short: "Aggregate reviews for many locations",
		Long: `Fetches the canonical review summary for every location id given as an
argument (or one per line on stdin, # starts a comment) and prints one JSON
line per location. Exits non-zero when any location failed.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if workers <= 0 {
				return fmt.Errorf("--workers must be positive, got %d", workers)
			}
			svc, err := shared.NewAggregationService(cfg, strings.ToLower(providerName), nil)
			if err != nil {
				return err
			}

			ids := args
			if len(ids) == 0 {
				ids = readIDs(cmd.InOrStdin())
			}
			if len(ids) == 0 {
				return errors.New("no location ids given")
			}

			log.Info().
				Str("provider", svc.ProviderName()).
				Int("workers", workers).
				Int("locations", len(ids)).
				Msg("batch starting")
			return runBatch(cmd.Context(), svc, ids, app.Options{Full: full}, workers, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&providerName, "provider", "p", cfg.SimulateProvider, "outscraper or serpapi")
	cmd.Flags().BoolVar(&full, "full", false, "enumerate every review page")
	cmd.Flags().IntVarP(&workers, "workers", "w", cfg.BatchWorkers, "locations processed concurrently")
	return cmd
}

// runBatch aggregates ids with at most workers in flight. Each location is
// written as soon as it finishes, so output order follows completion.
func runBatch(ctx context.Context, svc *app.AggregationService, ids []string, opt app.Options, workers int, w io.Writer) error {
	var (
		mu     sync.Mutex
		enc    = json.NewEncoder(w)
		wg     sync.WaitGroup
		sem    = semaphore.NewWeighted(int64(workers))
		failed int
	)

	var interrupted error
	for _, id := range ids {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			interrupted = err
			break
		}

		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			defer sem.Release(1)

			out := line{LocationID: id}
			res, err := svc.Aggregate(ctx, domain.Query{LocationID: id}, opt)
			if err != nil {
				out.Error, out.Details = domain.Message(err), domain.Details(err)
				log.Warn().Str("id", id).Err(err).Msg("aggregation failed")
			} else {
				out.Result = &res
			}

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed++
			}
			if err := enc.Encode(out); err != nil {
				log.Error().Err(err).Msg("write result failed")
			}
		}(id)
	}
	wg.Wait()

	if interrupted != nil {
		return fmt.Errorf("batch interrupted: %w", interrupted)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d locations failed", failed, len(ids))
	}
	log.Info().Int("locations", len(ids)).Msg("batch completed")
	return nil
}

func readIDs(r io.Reader) []string {
	var ids []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if id := strings.TrimSpace(sc.Text()); id != "" && !strings.HasPrefix(id, "#") {
			ids = append(ids, id)
		}
	}
	if err := sc.Err(); err != nil {
		log.Warn().Err(err).Msg("reading ids from stdin")
	}
	return ids
}
