package pointviz

import "errors"

// Error categories shared by all pointviz packages. Errors returned by the
// sub-packages wrap one of these, so callers classify failures with
// [errors.Is].
var (
	// ErrIO reports a missing, unreadable or truncated dataset file.
	// A failed load leaves the previously loaded dataset in place.
	ErrIO = errors.New("pointviz: dataset I/O error")

	// ErrOptimizer reports that the stress optimizer did not converge or
	// returned weights of the wrong shape or with non-finite values.
	ErrOptimizer = errors.New("pointviz: optimizer failure")

	// ErrIndexOutOfRange reports an axis or point index outside its valid
	// range. It signals a caller bug; user-facing code clamps before calling.
	ErrIndexOutOfRange = errors.New("pointviz: index out of range")

	// ErrGPUResource reports that a texture or render target could not be
	// allocated. No partially created resources are kept.
	ErrGPUResource = errors.New("pointviz: GPU resource error")
)
