package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"kartvid/internal/deps"
	"kartvid/internal/emit"
	"kartvid/internal/kv"
	"kartvid/internal/pipeline"
	"kartvid/internal/video"
)

func newFramesCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool
	var rate float64

	cmd := &cobra.Command{
		Use:   "frames <dir>",
		Short: "Process a directory of extracted frames",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			opts, cleanup, err := ctx.runOptions(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			if rate <= 0 {
				rate = cfg.Detection.Framerate
			}
			dir, err := video.OpenDir(args[0], rate, opts.Logger)
			if err != nil {
				return err
			}
			if dir.FrameCount() == 0 {
				return fmt.Errorf("no frames found in %s", args[0])
			}

			out := cmd.OutOrStdout()
			opts.Emitter = newEmitter(out, ctx.useJSON(jsonOut), shouldColorize(out))
			res, err := pipeline.Run(cmd.Context(), filepath.Base(filepath.Clean(args[0])), dir, opts)
			fmt.Fprintln(cmd.ErrOrStderr(), res.Summary())
			return err
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Write records as JSON lines")
	cmd.Flags().Float64Var(&rate, "rate", 0, "Frame rate used for timestamps (default detection.framerate)")
	return cmd
}

func newVideoCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool
	var workers int

	cmd := &cobra.Command{
		Use:   "video <file>...",
		Short: "Decode and process one or more race videos",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := requireBinaries(cmd.Context(), cfg.FFmpegBinary(), cfg.FFprobeBinary()); err != nil {
				return err
			}
			opts, cleanup, err := ctx.runOptions(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			decoder := video.Decoder{
				FFmpeg:  cfg.FFmpegBinary(),
				FFprobe: cfg.FFprobeBinary(),
				Logger:  opts.Logger,
			}
			jobs := make([]pipeline.Job, 0, len(args))
			for _, path := range args {
				jobs = append(jobs, pipeline.Job{
					Name: filepath.Base(path),
					Open: func(ctx context.Context) (pipeline.Source, error) {
						v, err := decoder.Open(ctx, path)
						if err != nil {
							return nil, err
						}
						return v, nil
					},
				})
			}

			if workers <= 0 {
				workers = cfg.Video.Workers
			}
			out := cmd.OutOrStdout()
			batch := pipeline.Batch{
				Workers: workers,
				Options: opts,
				Output:  videoOutput(ctx.useJSON(jsonOut), shouldColorize(out)),
				Writer:  out,
			}
			results, err := batch.Run(cmd.Context(), jobs)
			errOut := cmd.ErrOrStderr()
			for _, res := range results {
				if res.Stats.Frames > 0 || res.Decoded > 0 {
					fmt.Fprintln(errOut, res.Summary())
				}
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Write records as JSON lines")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Videos processed in parallel (default video.workers)")
	return cmd
}

// videoOutput builds per-video emitters. JSON output starts each video with
// a header carrying its frame count and creation time.
func videoOutput(asJSON, color bool) pipeline.OutputFunc {
	return func(w io.Writer, src pipeline.Source) (kv.Emitter, error) {
		if !asJSON {
			return emit.NewTextEmitter(w, color), nil
		}
		e := emit.NewJSONEmitter(w)
		header := emit.Header{NFrames: src.FrameCount()}
		if v, ok := src.(*video.Video); ok {
			header.CrTime = v.Probe.CreationTime()
		}
		if err := e.WriteHeader(header); err != nil {
			return nil, err
		}
		return e, nil
	}
}

// requireBinaries fails when ffmpeg or ffprobe cannot be found.
func requireBinaries(ctx context.Context, ffmpeg, ffprobe string) error {
	var missing []string
	for _, status := range deps.CheckBinaries(ctx, deps.FFmpegRequirements(ffmpeg, ffprobe)) {
		if !status.Available && !status.Optional {
			missing = append(missing, fmt.Sprintf("%s (%s)", status.Name, status.Detail))
		}
	}
	if len(missing) > 0 {
		return errors.New("missing required tools: " + strings.Join(missing, ", "))
	}
	return nil
}
