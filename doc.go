// Package pointviz is the core of an interactive 3D point-cloud viewer for
// small labeled image datasets such as MNIST digits.
//
// # Overview
//
// A fixed-size batch of labeled images is loaded into a dataset.Store,
// projected into 3D by a projection.Projection and drawn as colored
// markers by a scene.Scene. Every marker also carries an integer pick id
// that the scene writes into an exact off-screen ID buffer, so a screen
// coordinate resolves back to the data point under the cursor.
//
// # Quick Start
//
//	dev := render.NewSoftwareDevice()
//	store, err := dataset.New(dev, dataset.DefaultShape())
//	if err != nil {
//	    return err
//	}
//	defer store.Destroy()
//	if err := store.Load("images.dat", "labels.dat"); err != nil {
//	    return err
//	}
//
//	sc, err := scene.New(1280, 720)
//	if err != nil {
//	    return err
//	}
//	defer sc.Destroy()
//
//	positions, err := projection.Axis{X: 405, Y: 406, Z: 407}.Project(store)
//	...
//
// # Packages
//
//   - dataset: label/pixel loading, distance matrix, thumbnail textures
//   - projection: axis, Sammon stress and t-SNE projections
//   - scene: color and ID targets, marker rendering, picking
//   - camera, geom: orbit camera and float32 matrix math
//   - render: the explicit render context (software and wgpu devices)
//   - viewer: host-agnostic application state machine
//   - config: TOML configuration
//
// # Logging
//
// pointviz is silent by default. Call [SetLogger] to route diagnostics to
// any [log/slog] handler.
//
// # Errors
//
// Failures wrap one of [ErrIO], [ErrOptimizer], [ErrIndexOutOfRange] or
// [ErrGPUResource].
package pointviz
