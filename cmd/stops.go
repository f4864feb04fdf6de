package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var stopsCmd = &cobra.Command{
	Use:   "stops",
	Short: "Lists stops and their number of departures",
	Args:  cobra.NoArgs,
	RunE:  stops,
}

var sortByName bool

func init() {
	stopsCmd.Flags().BoolVarP(&sortByName, "sort", "", false, "Sort by name instead of timetable order")
	rootCmd.AddCommand(stopsCmd)
}

func stops(cmd *cobra.Command, args []string) error {
	planner, day, err := LoadPlanner(cmd.Context())
	if err != nil {
		return err
	}

	stops := planner.Network.Stops()
	if sortByName {
		sort.Slice(stops, func(i, j int) bool {
			return stops[i].Name < stops[j].Name
		})
	}

	for _, stop := range stops {
		fmt.Printf("%s: %d departures (%s)\n", stop.Name, len(stop.EdgesFor(day)), day)
	}

	return nil
}
