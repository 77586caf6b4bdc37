// Package profile provides optional runtime profiling for tup.
//
// Profiling is backed by [github.com/pkg/profile] and must be enabled at
// build time with the "pprof" build tag:
//
//	go build -tags pprof .
//
// Without the tag, [Profiler.Start] is a no-op and [Modes] is empty, so the
// command line exposes no profiling flags.
//
// # Modes
//
//   - allocs:    memory allocation profiling (all allocations)
//   - block:     block (synchronization) profiling
//   - clock:     wall-clock profiling
//   - cpu:       CPU profiling
//   - goroutine: goroutine profiling
//   - heap:      heap profiling (live allocations)
//   - mem:       general memory profiling
//   - mutex:     mutex contention profiling
//   - thread:    thread creation profiling
//   - trace:     execution trace
//
// # Usage
//
//	p := profile.Profiler{Mode: "cpu", Path: "/tmp/tup"}
//	defer p.Start().Stop()
//
// Large matrices are where profiling pays off: a source whose block count
// runs into the millions spends its time in expression evaluation, which
// shows up under a cpu profile as expr-lang VM frames.
//
// Profile data is analyzed with go tool pprof:
//
//	go tool pprof -http=: /tmp/tup/cpu.pprof
package profile

// Tag is the build tag required to enable profiling.
const Tag = `pprof`
