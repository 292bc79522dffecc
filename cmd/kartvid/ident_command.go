package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"kartvid/internal/emit"
	"kartvid/internal/img"
	"kartvid/internal/kv"
	"kartvid/internal/pipeline"
)

func newIdentCommand(ctx *commandContext) *cobra.Command {
	var all bool
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "ident <image>",
		Short: "Identify the race state shown in a single frame",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.loggerFor(cmd)
			if err != nil {
				return err
			}
			catalog, err := ctx.loadCatalog(logger)
			if err != nil {
				return fmt.Errorf("load masks: %w", err)
			}
			frame, err := img.Read(args[0])
			if err != nil {
				return err
			}

			which := kv.IdentStart | kv.IdentChars | kv.IdentItems
			if all {
				which = kv.IdentAll
			}
			screen, err := kv.Identify(frame, catalog, which, pipeline.ParamsFromConfig(cfg))
			if err != nil {
				return fmt.Errorf("identify %s: %w", args[0], err)
			}

			if ctx.useJSON(jsonOut) {
				return writeJSON(cmd, emit.NewRecord(filepath.Base(args[0]), 0, 0, screen, nil))
			}
			fmt.Fprint(cmd.OutOrStdout(), emit.FormatScreen(screen, nil))
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Also identify the track")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output JSON")
	return cmd
}
