package reportflow

import (
	"log/slog"
	"time"

	"github.com/lvillar/reportflow/assets"
	"github.com/lvillar/reportflow/layout"
	"github.com/lvillar/reportflow/logging"
)

// Option is a functional option for configuring a Generator via NewGenerator.
type Option func(*generatorConfig)

type generatorConfig struct {
	layout layout.Config
	logger *slog.Logger
}

// WithLogger routes engine logs to the given slog logger. Without it, logs
// are discarded.
func WithLogger(l *slog.Logger) Option {
	return func(c *generatorConfig) {
		c.logger = l
	}
}

// WithIterationCap bounds the number of pages one generation run may
// produce before aborting with ErrIterationCap. The default is 1000.
func WithIterationCap(n int) Option {
	return func(c *generatorConfig) {
		c.layout.IterationCap = n
	}
}

// WithClock supplies the time source for date and time fields. Fix it in
// tests for deterministic output.
func WithClock(fn func() time.Time) Option {
	return func(c *generatorConfig) {
		c.layout.Clock = fn
	}
}

// WithAssetLoader supplies the loader that resolves image field sources.
func WithAssetLoader(l *assets.Loader) Option {
	return func(c *generatorConfig) {
		c.layout.Assets = l
	}
}

// WithFooterSpacing sets the gap between the lowest body content and the
// document footer, in template units. The default is 4.
func WithFooterSpacing(v float64) Option {
	return func(c *generatorConfig) {
		c.layout.FooterSpacing = v
	}
}

// WithContainerPadding pads the top of the body band on every page, in
// template units, on top of any padding the template body declares.
func WithContainerPadding(v float64) Option {
	return func(c *generatorConfig) {
		c.layout.ContainerPadding = v
	}
}

// NewGenerator creates a Generator using functional options. With no
// options it uses the defaults above with discarded logs.
//
// Example:
//
//	gen := reportflow.NewGenerator(
//	    reportflow.WithIterationCap(200),
//	    reportflow.WithLogger(slog.Default()),
//	)
func NewGenerator(opts ...Option) *Generator {
	cfg := &generatorConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger != nil {
		logging.SetLogger(cfg.logger)
	}
	return &Generator{cfg: cfg.layout}
}
