package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tidbyt.dev/journeys/parse"
)

var exportCmd = &cobra.Command{
	Use:   "export <timetable>",
	Short: "Writes a timetable as stop times CSV",
	Args:  cobra.ExactArgs(1),
	RunE:  export,
}

func init() {
	rootCmd.AddCommand(exportCmd)
}

func export(cmd *cobra.Command, args []string) error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}

	manager, err := BuildManager(cfg)
	if err != nil {
		return err
	}

	metadata, err := manager.Refresh(cmd.Context(), cfg.Source(args[0]))
	if err != nil {
		return err
	}

	reader, err := manager.Reader(metadata)
	if err != nil {
		return err
	}

	err = parse.ExportStopTimes(reader, os.Stdout)
	if err != nil {
		return fmt.Errorf("exporting %s: %w", metadata.Name, err)
	}

	return nil
}
