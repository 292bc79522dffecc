package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"kartvid/internal/img"
)

var skipConfig = map[string]string{"skipConfigLoad": "true"}

func newCompareCommand() *cobra.Command {
	var overlayPath string

	cmd := &cobra.Command{
		Use:         "compare <image> <mask>",
		Short:       "Score an image against a mask",
		Args:        cobra.ExactArgs(2),
		Annotations: skipConfig,
		RunE: func(cmd *cobra.Command, args []string) error {
			frame, err := img.Read(args[0])
			if err != nil {
				return err
			}
			mask, err := img.Read(args[1])
			if err != nil {
				return err
			}

			var res img.Comparison
			if overlayPath != "" {
				var overlay *img.Image
				res, overlay, err = img.CompareOverlay(frame, mask)
				if err != nil {
					return err
				}
				if err := img.Write(overlayPath, overlay); err != nil {
					return err
				}
			} else if res, err = img.Compare(frame, mask); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "total pixels:     %d\n", res.Total)
			fmt.Fprintf(out, "ignored pixels:   %d\n", res.Ignored)
			fmt.Fprintf(out, "compared pixels:  %d\n", res.Compared)
			fmt.Fprintf(out, "different pixels: %d\n", res.Different)
			fmt.Fprintf(out, "score:            %f\n", res.Score)
			return nil
		},
	}
	cmd.Flags().StringVar(&overlayPath, "overlay", "", "Write a difference overlay image to this path")
	return cmd
}

func newAndCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "and <image> <mask> <output>",
		Short:       "Apply a mask to an image with a per-channel AND",
		Args:        cobra.ExactArgs(3),
		Annotations: skipConfig,
		RunE: func(cmd *cobra.Command, args []string) error {
			im, err := img.Read(args[0])
			if err != nil {
				return err
			}
			mask, err := img.Read(args[1])
			if err != nil {
				return err
			}
			if err := img.And(im, mask); err != nil {
				return err
			}
			return img.Write(args[2], im)
		},
	}
}

func newTranslateCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "translate <image> <dx> <dy> <output>",
		Short:       "Shift an image, filling uncovered pixels with black",
		Args:        cobra.ExactArgs(4),
		Annotations: skipConfig,
		RunE: func(cmd *cobra.Command, args []string) error {
			dx, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid dx %q: %w", args[1], err)
			}
			dy, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid dy %q: %w", args[2], err)
			}
			im, err := img.Read(args[0])
			if err != nil {
				return err
			}
			return img.Write(args[3], img.TranslateXY(im, dx, dy))
		},
	}
}
