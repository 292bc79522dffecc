package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"kartvid/internal/logging"
	"kartvid/internal/logs"
)

const followWait = 5 * time.Second

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var lines int
	var follow bool
	var level string
	var runID string
	var source string
	var raw bool

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the kartvid log file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			var minLevel slog.Level
			if err := minLevel.UnmarshalText([]byte(level)); err != nil {
				return fmt.Errorf("invalid level %q", level)
			}
			filter := logs.Filter{MinLevel: minLevel, RunID: runID, Source: source}
			path := filepath.Join(cfg.Paths.LogDir, logging.LogFileName)
			out := cmd.OutOrStdout()

			show := func(batch []string) {
				for _, line := range batch {
					entry, ok := logs.ParseEntry(line)
					if !ok || !filter.Match(entry) {
						continue
					}
					if raw {
						fmt.Fprintln(out, entry.Raw)
					} else {
						fmt.Fprintln(out, entry.Format())
					}
				}
			}

			res, err := logs.Tail(cmd.Context(), path, logs.TailOptions{Offset: -1, Limit: lines})
			if err != nil {
				return err
			}
			show(res.Lines)
			for follow {
				res, err = logs.Tail(cmd.Context(), path, logs.TailOptions{Offset: res.Offset, Follow: true, Wait: followWait})
				if err != nil {
					if cmd.Context().Err() != nil {
						return nil
					}
					return err
				}
				show(res.Lines)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of trailing log lines to read")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing new log lines")
	cmd.Flags().StringVar(&level, "level", "info", "Minimum level to show (debug, info, warn, error)")
	cmd.Flags().StringVar(&runID, "run", "", "Only show entries for this run id prefix")
	cmd.Flags().StringVar(&source, "source", "", "Only show entries for this source")
	cmd.Flags().BoolVar(&raw, "raw", false, "Print the JSON lines unchanged")
	return cmd
}
