package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"tidbyt.dev/journeys"
)

var cacheCmd = &cobra.Command{
	Use:   "cache <origin> <terminus>",
	Short: "Runs a query and dumps the path cache it leaves behind",
	Args:  cobra.ExactArgs(2),
	RunE:  dumpCache,
}

var cacheAt string

func init() {
	cacheCmd.Flags().StringVarP(&cacheAt, "at", "a", "now", "Earliest departure, H:MM")
	rootCmd.AddCommand(cacheCmd)
}

func dumpCache(cmd *cobra.Command, args []string) error {
	origin, terminus := args[0], args[1]

	departure, err := ParseDeparture(cacheAt)
	if err != nil {
		return err
	}

	planner, day, err := LoadPlanner(cmd.Context())
	if err != nil {
		return err
	}

	from, err := planner.Network.Stop(origin)
	if err != nil {
		return err
	}
	if _, err := planner.Network.Stop(terminus); err != nil {
		return err
	}

	cache := planner.NewCache()
	paths, err := journeys.Enumerate(cmd.Context(), from, terminus, departure, day, nil, cache)
	if err != nil {
		return err
	}

	_, err = journeys.Select(paths)
	if errors.Is(err, journeys.ErrNoPath) {
		printNoPath(os.Stderr, origin, terminus, departure)
	}

	return cache.Dump(os.Stdout)
}
