package forest

import "runtime"

// Default hyperparameters.
const (
	DefaultTrees           = 100
	DefaultSeed            = 42
	DefaultMinSamplesSplit = 2
)

type config struct {
	trees           int
	maxDepth        int
	minSamplesSplit int
	maxFeatures     int
	seed            int64
	workers         int
}

func defaultConfig() config {
	return config{
		trees:           DefaultTrees,
		minSamplesSplit: DefaultMinSamplesSplit,
		seed:            DefaultSeed,
		workers:         runtime.NumCPU(),
	}
}

// Option configures Fit.
type Option func(*config)

// WithTrees sets the ensemble size.
func WithTrees(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.trees = n
		}
	}
}

// WithMaxDepth bounds tree depth. Zero means unbounded.
func WithMaxDepth(depth int) Option {
	return func(c *config) {
		if depth >= 0 {
			c.maxDepth = depth
		}
	}
}

// WithMinSamplesSplit sets the smallest node that may be split.
func WithMinSamplesSplit(n int) Option {
	return func(c *config) {
		if n >= 2 {
			c.minSamplesSplit = n
		}
	}
}

// WithMaxFeatures sets how many features each split considers.
// Zero selects sqrt(n_features).
func WithMaxFeatures(n int) Option {
	return func(c *config) {
		if n >= 0 {
			c.maxFeatures = n
		}
	}
}

// WithSeed sets the base random seed.
func WithSeed(seed int64) Option {
	return func(c *config) { c.seed = seed }
}

// WithWorkers sets how many goroutines grow trees.
func WithWorkers(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.workers = n
		}
	}
}
