package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// camera overrides shared by render and pick.
type cameraFlags struct {
	yaw, pitch, radius, fov float32
}

func (c *cameraFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float32Var(&c.yaw, "yaw", 45, "camera yaw in degrees")
	cmd.Flags().Float32Var(&c.pitch, "pitch", 30, "camera pitch in degrees")
	cmd.Flags().Float32Var(&c.radius, "radius", 8, "camera distance from the target")
	cmd.Flags().Float32Var(&c.fov, "fov", 60, "vertical field of view in degrees")
}

func (c *cameraFlags) apply(s *session) {
	cam := s.viewer.Camera()
	cam.Yaw, cam.Pitch, cam.Fov = c.yaw, c.pitch, c.fov
	cam.Radius = max(c.radius, 0.5)
}

func newRenderCmd(f *flags) *cobra.Command {
	var (
		output string
		cam    cameraFlags
	)
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the projected point cloud to a PNG file",
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

			cam.apply(s)
			if err := s.viewer.Frame(); err != nil {
				return err
			}
			if err := writePNG(output, s); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "rendered %d points (%s) to %s\n",
				s.store.Len(), s.viewer.Projection().Name(), output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "pointviz.png", "output PNG file")
	cam.register(cmd)
	return cmd
}

func writePNG(path string, s *session) (err error) {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
	}()
	return s.scene.ColorTarget().EncodePNG(out)
}
