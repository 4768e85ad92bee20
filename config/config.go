// Package config holds the viewer settings and their TOML file form.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/gogpu/gg"
	"github.com/pelletier/go-toml/v2"

	"github.com/gogpu/pointviz/dataset"
	"github.com/gogpu/pointviz/projection"
	"github.com/gogpu/pointviz/scene"
)

// ErrInvalid is returned by Validate for settings that cannot be used.
var ErrInvalid = errors.New("config: invalid")

// Projection mode names.
const (
	ModeAxis   = "axis"
	ModeStress = "stress"
	ModeTSNE   = "tsne"
)

// Config is the full viewer configuration.
type Config struct {
	// DataDir is prepended to relative dataset file names.
	DataDir string `toml:"data_dir"`

	// Dataset selects an entry of Datasets by name.
	Dataset  string          `toml:"dataset"`
	Datasets []dataset.Files `toml:"datasets"`

	Points      int `toml:"points"`
	ImageWidth  int `toml:"image_width"`
	ImageHeight int `toml:"image_height"`
	Workers     int `toml:"workers"`

	Window Window `toml:"window"`

	// Mode is one of "axis", "stress" or "tsne".
	Mode   string `toml:"mode"`
	Axes   [3]int `toml:"axes"`
	Stress Stress `toml:"stress"`
	TSNE   TSNE   `toml:"tsne"`

	Scene Scene `toml:"scene"`
}

// Window is the initial viewport size.
type Window struct {
	Width  int `toml:"width"`
	Height int `toml:"height"`
}

// Stress configures the Sammon optimizer.
type Stress struct {
	MaxIterations     int     `toml:"max_iterations"`
	GradientThreshold float64 `toml:"gradient_threshold"`
}

// TSNE configures the t-SNE projection. Zero values take the projection
// defaults.
type TSNE struct {
	Perplexity   float64 `toml:"perplexity"`
	LearningRate float64 `toml:"learning_rate"`
	Iterations   int     `toml:"iterations"`
	Scale        float32 `toml:"scale"`
}

// Scene configures marker rendering.
type Scene struct {
	MarkerSize float32 `toml:"marker_size"`
	// Background is a hex color such as "#1a1a1f".
	Background string `toml:"background"`
}

// Default returns the built-in configuration.
func Default() Config {
	shape := dataset.DefaultShape()
	return Config{
		Dataset:     dataset.Builtin[0].Name,
		Datasets:    append([]dataset.Files(nil), dataset.Builtin...),
		Points:      shape.Points,
		ImageWidth:  shape.Width,
		ImageHeight: shape.Height,
		Window:      Window{Width: 1280, Height: 720},
		Mode:        ModeAxis,
		Axes:        [3]int{405, 406, 407},
		Stress: Stress{
			MaxIterations:     projection.DefaultMaxIterations,
			GradientThreshold: projection.DefaultGradientThreshold,
		},
		Scene: Scene{
			MarkerSize: scene.DefaultMarkerSize,
			Background: "#1a1a1f",
		},
	}
}

// Load reads a TOML file over Default. Unknown keys are an error.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return Parse(data)
}

// Parse decodes TOML over Default and validates the result.
func Parse(data []byte) (Config, error) {
	c := Default()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		var missing *toml.StrictMissingError
		if errors.As(err, &missing) {
			return Config{}, fmt.Errorf("config: unknown keys:\n%s", missing.String())
		}
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Marshal encodes c as TOML.
func (c Config) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}

// Validate reports the first unusable setting.
func (c Config) Validate() error {
	if err := c.Shape().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("%w: window %dx%d", ErrInvalid, c.Window.Width, c.Window.Height)
	}
	if _, err := c.Files(); err != nil {
		return err
	}
	if _, err := c.Projection(); err != nil {
		return err
	}
	if _, err := c.Background(); err != nil {
		return err
	}
	if c.Scene.MarkerSize < 0 {
		return fmt.Errorf("%w: marker size %v", ErrInvalid, c.Scene.MarkerSize)
	}
	return nil
}

// Shape returns the batch shape.
func (c Config) Shape() dataset.Shape {
	return dataset.Shape{Points: c.Points, Width: c.ImageWidth, Height: c.ImageHeight}
}

// Files returns the selected dataset with paths resolved against DataDir.
func (c Config) Files() (dataset.Files, error) {
	return c.FilesByName(c.Dataset)
}

// FilesByName returns the named dataset, matched case-insensitively.
func (c Config) FilesByName(name string) (dataset.Files, error) {
	for _, f := range c.Datasets {
		if strings.EqualFold(f.Name, name) {
			return f.In(c.DataDir), nil
		}
	}
	return dataset.Files{}, fmt.Errorf("%w: unknown dataset %q", ErrInvalid, name)
}

// Projection builds the projection selected by Mode. Axis indices are
// clamped to the pixel vector.
func (c Config) Projection() (projection.Projection, error) {
	return c.ProjectionFor(c.Mode)
}

// ProjectionFor builds the projection for mode using the rest of c.
func (c Config) ProjectionFor(mode string) (projection.Projection, error) {
	switch strings.ToLower(mode) {
	case ModeAxis:
		p := c.Shape().Pixels()
		return projection.Axis{
			X: projection.ClampAxis(c.Axes[0], p),
			Y: projection.ClampAxis(c.Axes[1], p),
			Z: projection.ClampAxis(c.Axes[2], p),
		}, nil
	case ModeStress:
		return projection.Stress{Optimizer: projection.NewSammon(
			projection.WithMaxIterations(c.Stress.MaxIterations),
			projection.WithGradientThreshold(c.Stress.GradientThreshold),
		)}, nil
	case ModeTSNE, "t-sne":
		return projection.TSNE{
			Perplexity:   c.TSNE.Perplexity,
			LearningRate: c.TSNE.LearningRate,
			Iterations:   c.TSNE.Iterations,
			Scale:        c.TSNE.Scale,
		}, nil
	}
	return nil, fmt.Errorf("%w: unknown mode %q", ErrInvalid, mode)
}

// Background parses the scene background color.
func (c Config) Background() (gg.RGBA, error) {
	bg, err := gg.ParseHex(c.Scene.Background)
	if err != nil {
		return gg.RGBA{}, fmt.Errorf("%w: background: %w", ErrInvalid, err)
	}
	return bg, nil
}

// SceneOptions returns the scene options described by c.
func (c Config) SceneOptions() []scene.Option {
	opts := []scene.Option{scene.WithMarkerSize(c.Scene.MarkerSize)}
	if bg, err := c.Background(); err == nil {
		opts = append(opts, scene.WithBackground(bg))
	}
	return opts
}
