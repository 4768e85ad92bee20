package main

import (
	"github.com/gogpu/pointviz"
	"github.com/gogpu/pointviz/config"
	"github.com/gogpu/pointviz/dataset"
	"github.com/gogpu/pointviz/render"
	"github.com/gogpu/pointviz/scene"
	"github.com/gogpu/pointviz/viewer"
)

// session is one headless viewer with the configured dataset applied.
type session struct {
	cfg    config.Config
	dev    render.Device
	store  *dataset.Store
	scene  *scene.Scene
	viewer *viewer.Viewer
}

// openSession creates the store, scene and viewer and applies the
// configured dataset and projection. Everything created is released on
// error.
func openSession(cfg config.Config) (_ *session, err error) {
	s := &session{cfg: cfg, dev: render.Open(render.NullDeviceHandle{})}
	defer func() {
		if err != nil {
			s.close()
		}
	}()

	if s.store, err = dataset.New(s.dev, cfg.Shape(), dataset.WithWorkers(cfg.Workers)); err != nil {
		return nil, err
	}
	if s.scene, err = scene.New(cfg.Window.Width, cfg.Window.Height, cfg.SceneOptions()...); err != nil {
		return nil, err
	}
	s.viewer = viewer.New(s.store, s.scene)

	files, err := cfg.Files()
	if err != nil {
		return nil, err
	}
	proj, err := cfg.Projection()
	if err != nil {
		return nil, err
	}
	if err := s.viewer.Apply(files, proj); err != nil {
		return nil, err
	}

	info := s.dev.Info()
	pointviz.Logger().Info("pointviz: session ready",
		"adapter", info.Name, "dataset", files.Name, "mode", proj.Name())
	return s, nil
}

func (s *session) close() {
	if s.scene != nil {
		s.scene.Destroy()
	}
	if s.store != nil {
		s.store.Destroy()
	}
}
