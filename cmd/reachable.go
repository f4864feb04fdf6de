package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tidbyt.dev/journeys"
	"tidbyt.dev/journeys/model"
)

var reachableCmd = &cobra.Command{
	Use:   "reachable <origin>",
	Short: "Shows the best journeys from a stop to every other stop",
	Args:  cobra.ExactArgs(1),
	RunE:  reachable,
}

var (
	reachableAt    []string
	reachableStats bool
)

func init() {
	reachableCmd.Flags().StringSliceVarP(
		&reachableAt,
		"at",
		"a",
		[]string{"14:30", "8:30", "6:30"},
		"Earliest departures, H:MM; each is a separate batch",
	)
	reachableCmd.Flags().BoolVarP(&reachableStats, "stats", "s", false, "Print query timings instead of journeys")
	rootCmd.AddCommand(reachableCmd)
}

func reachable(cmd *cobra.Command, args []string) error {
	origin := args[0]

	departures := []model.Clock{}
	for _, at := range reachableAt {
		d, err := ParseDeparture(at)
		if err != nil {
			return err
		}
		departures = append(departures, d)
	}

	planner, day, err := LoadPlanner(cmd.Context())
	if err != nil {
		return err
	}

	// One cache serves all destinations of a batch, and is reset
	// between batches.
	cache := planner.NewCache()

	for _, departure := range departures {
		fmt.Printf("----- %s -----\n", departure)

		batch, err := planner.BestPathsFrom(cmd.Context(), origin, departure, day, cache)
		if err != nil {
			return err
		}

		for _, r := range batch.Results {
			if reachableStats {
				if errors.Is(r.Err, journeys.ErrNoPath) {
					fmt.Printf("no journey from \"%s\" to \"%s\"\n", origin, r.Destination)
				} else {
					fmt.Printf("journeys from \"%s\" to \"%s\" (%d) in %.2fs\n", origin, r.Destination, r.Selection.Count, r.Elapsed.Seconds())
				}
				continue
			}

			if errors.Is(r.Err, journeys.ErrNoPath) {
				printNoPath(os.Stdout, origin, r.Destination, departure)
			} else {
				printSelection(os.Stdout, origin, r.Destination, r.Selection)
			}
			fmt.Println()
		}

		fmt.Printf("cache: %d entries, %d subqueries answered from cache, %.2fs total\n", batch.CacheLen, batch.CacheHits, batch.Elapsed.Seconds())
		cache.Reset()
	}

	return nil
}
