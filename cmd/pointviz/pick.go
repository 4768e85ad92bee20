package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newPickCmd(f *flags) *cobra.Command {
	var (
		output string
		cam    cameraFlags
	)
	cmd := &cobra.Command{
		Use:   "pick X Y",
		Short: "Report the point under a screen coordinate",
		Long:  "pick renders a frame, resolves the point drawn at (X, Y) and prints its index and label. With --output the frame is written with the hover tooltip drawn next to the coordinate.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			x, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid X %q: %w", args[0], err)
			}
			y, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid Y %q: %w", args[1], err)
			}

			cfg, err := f.load(cmd)
			if err != nil {
				return err
			}
			s, err := openSession(cfg)
			if err != nil {
				return err
			}
			defer s.close()

			cam.apply(s)
			pt, err := s.viewer.PickAt(x, y)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "point %d\tLabel: %d\n", pt.Index, pt.Label)

			if output == "" {
				return nil
			}
			thumb, err := thumbnailOf(s.store, pt)
			if err != nil {
				return err
			}
			dc := s.scene.ColorTarget().Context()
			if err := drawTooltip(dc, x, y, pt.Label, thumb); err != nil {
				return err
			}
			return writePNG(output, s)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the frame with the tooltip to this PNG file")
	cam.register(cmd)
	return cmd
}
