// Command pointviz renders and inspects 3D projections of labeled image
// datasets.
//
// Usage:
//
//	pointviz render -o cloud.png --mode stress
//	pointviz pick 640 360 -o tooltip.png
//	pointviz inspect --dataset fashion-mnist
//
// Set POINTVIZ_LOG_LEVEL to debug, info, warn or error to enable logging.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/gogpu/pointviz"
)

func main() {
	setupLogger(os.Getenv("POINTVIZ_LOG_LEVEL"))
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// setupLogger installs a text logger at level. An empty level leaves
// logging disabled.
func setupLogger(level string) {
	if level == "" {
		return
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		fmt.Fprintf(os.Stderr, "pointviz: invalid POINTVIZ_LOG_LEVEL %q, using info\n", level)
		lvl = slog.LevelInfo
	}
	pointviz.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
}
