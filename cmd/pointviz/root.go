package main

import (
	"github.com/spf13/cobra"

	"github.com/gogpu/pointviz/config"
)

// flags are the settings shared by every subcommand. Set flags override the
// configuration file.
type flags struct {
	configPath string
	dataDir    string
	dataset    string
	mode       string
	axes       []int
	width      int
	height     int
}

func newRootCmd() *cobra.Command {
	f := &flags{}
	root := &cobra.Command{
		Use:          "pointviz",
		Short:        "3D point-cloud viewer for labeled image datasets",
		Long:         "pointviz projects MNIST-style datasets to 3D and renders, picks and inspects the resulting point cloud.",
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&f.configPath, "config", "c", "", "TOML configuration file")
	pf.StringVar(&f.dataDir, "data-dir", "", "directory holding the dataset files")
	pf.StringVarP(&f.dataset, "dataset", "d", "", "dataset name (MNIST, Fashion-MNIST)")
	pf.StringVarP(&f.mode, "mode", "m", "", "projection mode: axis, stress or tsne")
	pf.IntSliceVar(&f.axes, "axes", nil, "pixel indices for axis mode, as x,y,z")
	pf.IntVar(&f.width, "width", 0, "viewport width in pixels")
	pf.IntVar(&f.height, "height", 0, "viewport height in pixels")

	root.AddCommand(newRenderCmd(f), newPickCmd(f), newInspectCmd(f))
	return root
}

// load reads the configuration file, if any, and applies set flags.
func (f *flags) load(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if f.configPath != "" {
		var err error
		if cfg, err = config.Load(f.configPath); err != nil {
			return config.Config{}, err
		}
	}

	set := cmd.Flags().Changed
	if set("data-dir") {
		cfg.DataDir = f.dataDir
	}
	if set("dataset") {
		cfg.Dataset = f.dataset
	}
	if set("mode") {
		cfg.Mode = f.mode
	}
	if set("axes") {
		copy(cfg.Axes[:], f.axes)
	}
	if set("width") {
		cfg.Window.Width = f.width
	}
	if set("height") {
		cfg.Window.Height = f.height
	}
	return cfg, cfg.Validate()
}
