package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

func newInspectCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect",
		Short: "Print labels, projected positions and distance statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := f.load(cmd)
			if err != nil {
				return err
			}
			s, err := openSession(cfg)
			if err != nil {
				return err
			}
			defer s.close()

			positions := s.viewer.Positions()
			files, _ := cfg.Files()
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "dataset %s: %d points of %d pixels, projection %s\n",
				files.Name, s.store.Len(), s.store.Dims(), s.viewer.Projection().Name())

			tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "POINT\tLABEL\tX\tY\tZ")
			for i, label := range s.store.Labels() {
				p := positions[i]
				fmt.Fprintf(tw, "%d\t%d\t%.3f\t%.3f\t%.3f\n", i, label, p.X, p.Y, p.Z)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			return writeDistanceStats(w, s.store.Distances())
		},
	}
}

// writeDistanceStats prints the range of the distance matrix and of its
// diagonal.
func writeDistanceStats(w io.Writer, d mat.Matrix) error {
	n, _ := d.Dims()
	all := make([]float64, 0, n*n)
	diag := make([]float64, n)
	for i := range n {
		for j := range n {
			all = append(all, d.At(i, j))
		}
		diag[i] = d.At(i, i)
	}
	if n == 0 {
		_, err := fmt.Fprintln(w, "distances: empty")
		return err
	}
	_, err := fmt.Fprintf(w, "distances: min %.4f max %.4f mean %.4f; diagonal min %.4f max %.4f\n",
		floats.Min(all), floats.Max(all), floats.Sum(all)/float64(len(all)),
		floats.Min(diag), floats.Max(diag))
	return err
}
