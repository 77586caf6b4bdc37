package lang

import (
	"strings"

	"github.com/ardnew/tup/log"
	"github.com/ardnew/tup/pkg"
)

// DefaultMaxPasses is the default bound on substitution passes applied to a
// single code line before expansion is reported as non-terminating.
// Users may modify this before compiling to change the default.
var DefaultMaxPasses = 64

// DefaultMaxLineSize is the longest source line accepted by the parser.
const DefaultMaxLineSize = 1 << 20

// options holds compiler configuration.
type options struct {
	maxPasses    int
	maxSnapshots uint64
	maxLineSize  int
	evaluator    Evaluator
	processEnv   []string
	banner       string
	logger       log.Logger
}

// Option configures parsing, expansion, or compilation behavior.
type Option func(*options)

// makeOptions returns the defaults overridden by opts.
func makeOptions(opts ...Option) options {
	o := options{
		maxPasses:   DefaultMaxPasses,
		maxLineSize: DefaultMaxLineSize,
		banner:      DefaultBanner(),
	}

	for _, opt := range opts {
		opt(&o)
	}

	return o
}

// eval returns the configured evaluator, creating the default on first use.
func (o *options) eval() Evaluator {
	if o.evaluator == nil {
		o.evaluator = NewExprEvaluator(o.processEnv)
	}

	return o.evaluator
}

// DefaultBanner returns the comment line that opens every compiled output.
func DefaultBanner() string {
	return "// Compiled with " + pkg.Name + " " + strings.TrimSpace(pkg.Version)
}

// WithMaxPasses sets the maximum number of substitution passes per line.
// Values below 1 restore [DefaultMaxPasses].
func WithMaxPasses(n int) Option {
	return func(o *options) {
		if n < 1 {
			n = DefaultMaxPasses
		}

		o.maxPasses = n
	}
}

// WithMaxSnapshots caps the number of snapshot blocks emitted by a single
// compilation. Zero means unlimited.
func WithMaxSnapshots(n uint64) Option {
	return func(o *options) {
		o.maxSnapshots = n
	}
}

// WithMaxLineSize sets the longest accepted source line in bytes.
func WithMaxLineSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxLineSize = n
		}
	}
}

// WithEvaluator replaces the expression evaluator.
// The default is an [ExprEvaluator].
func WithEvaluator(e Evaluator) Option {
	return func(o *options) {
		o.evaluator = e
	}
}

// WithProcessEnv sets the environment variables visible through the env()
// builtin of the default evaluator.
// The format is []string{"KEY=VALUE", ...}. If nil, os.Environ() is used.
func WithProcessEnv(env []string) Option {
	return func(o *options) {
		o.processEnv = env
	}
}

// WithBanner replaces the first line of compiled output.
func WithBanner(banner string) Option {
	return func(o *options) {
		o.banner = banner
	}
}

// WithLogger sets the logger used for trace and debug records.
// The zero Logger discards everything.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}
