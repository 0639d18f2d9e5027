package assetpipe

import "time"

// BuildOption configures a single Build call.
//
// Example:
//
//	report, err := assetpipe.Build(cfg, c, assetpipe.WithWorkers(1))
type BuildOption func(*buildOptions)

type buildOptions struct {
	workers int
	now     func() time.Time
}

func defaultBuildOptions(cfg *Config) buildOptions {
	return buildOptions{
		workers: cfg.workers(),
		now:     time.Now,
	}
}

// WithWorkers overrides Config.Workers for this build.
// Values below 1 are ignored.
func WithWorkers(n int) BuildOption {
	return func(o *buildOptions) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithClock sets the clock used for the report's timing.
func WithClock(now func() time.Time) BuildOption {
	return func(o *buildOptions) {
		if now != nil {
			o.now = now
		}
	}
}
