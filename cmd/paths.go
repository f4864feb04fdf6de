package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"tidbyt.dev/journeys"
)

var pathsCmd = &cobra.Command{
	Use:   "paths <origin> <terminus>",
	Short: "Shows the best journeys between two stops",
	Args:  cobra.ExactArgs(2),
	RunE:  paths,
}

var pathsAt string

func init() {
	pathsCmd.Flags().StringVarP(&pathsAt, "at", "a", "now", "Earliest departure, H:MM")
	rootCmd.AddCommand(pathsCmd)
}

func paths(cmd *cobra.Command, args []string) error {
	origin, terminus := args[0], args[1]

	departure, err := ParseDeparture(pathsAt)
	if err != nil {
		return err
	}

	planner, day, err := LoadPlanner(cmd.Context())
	if err != nil {
		return err
	}

	selection, err := planner.BestPaths(cmd.Context(), origin, terminus, departure, day)
	if errors.Is(err, journeys.ErrNoPath) {
		printNoPath(os.Stdout, origin, terminus, departure)
		return nil
	}
	if err != nil {
		return err
	}

	printSelection(os.Stdout, origin, terminus, selection)

	return nil
}
