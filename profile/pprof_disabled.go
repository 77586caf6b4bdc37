//go:build !pprof

package profile

// Enabled reports whether the binary was built with profiling support.
const Enabled = false

// Modes returns nil when the binary is built without profiling support.
func Modes() []string { return nil }

func start(Profiler) Stopper { return ignore{} }
