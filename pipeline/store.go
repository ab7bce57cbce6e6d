package pipeline

import "sync/atomic"

// live counts pipelines that have valid capture targets and a valid camera and
// have not been disposed. Hosts poll Ready to decide whether the render loop
// may start.
var live atomic.Int32

// Ready reports whether at least one pipeline is set up and not yet disposed.
func Ready() bool {
	return live.Load() > 0
}
