package service

import (
	"time"

	"github.com/okian/certify/internal/adapters/roster"
	"github.com/okian/certify/pkg/logger"
	"github.com/okian/certify/pkg/metrics"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithInput sets the roster file path.
func WithInput(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.inputPath = path
		}
	}
}

// WithTemplate sets the template reference handed to the renderer.
func WithTemplate(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.templatePath = path
		}
	}
}

// WithOutputDir sets the directory documents are written to.
func WithOutputDir(dir string) Option {
	return func(s *Service) {
		if dir != "" {
			s.outputDir = dir
		}
	}
}

// WithParserOptions sets the roster parsing policy.
func WithParserOptions(opts ...roster.Option) Option {
	return func(s *Service) {
		s.parserOpts = append(s.parserOpts, opts...)
	}
}

// WithResolver sets the merge field resolver.
func WithResolver(r Resolver) Option {
	return func(s *Service) {
		if r != nil {
			s.resolver = r
		}
	}
}

// WithLogger sets the activity log.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics sets the metrics manager.
func WithMetrics(m *metrics.Manager) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithMetricsFile writes metrics to path at the end of every run.
func WithMetricsFile(path string) Option {
	return func(s *Service) {
		s.metricsFile = path
	}
}

// WithRunID sets the run id generator.
func WithRunID(gen func() string) Option {
	return func(s *Service) {
		if gen != nil {
			s.newRunID = gen
		}
	}
}

// WithClock sets the clock used for run timing.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}
