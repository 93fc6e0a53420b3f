// Package service runs the certificate pipeline: it reads the roster,
// builds the qualifying set and drives one document per employee through
// the renderer.
package service

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"os"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/okian/certify/internal/adapters/render"
	"github.com/okian/certify/internal/adapters/roster"
	"github.com/okian/certify/internal/domain/dedupe"
	"github.com/okian/certify/internal/domain/merge"
	"github.com/okian/certify/internal/domain/model"
	"github.com/okian/certify/internal/domain/scoring"
	"github.com/okian/certify/pkg/logger"
	"github.com/okian/certify/pkg/metrics"
)

// Run outcome labels reported to metrics.
const (
	outcomeCompleted    = "completed"
	outcomeInputMissing = "input_missing"
	outcomeFatal        = "fatal"

	outputDirPerm = 0o755
)

// Service wires the pipeline stages together for one or more runs.
type Service struct {
	inputPath    string
	templatePath string
	outputDir    string
	metricsFile  string

	parserOpts []roster.Option
	resolver   Resolver
	opener     render.Opener

	logger   logger.Logger
	metrics  *metrics.Manager
	newRunID func() string
	now      func() time.Time
}

// New constructs a Service that renders through opener.
func New(opener render.Opener, opts ...Option) *Service {
	s := &Service{
		inputPath:    "Data.csv",
		templatePath: "Template.tmpl",
		outputDir:    "Output",
		opener:       opener,
		resolver:     merge.NewResolver(),
		newRunID:     uuid.NewString,
		now:          time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.New()
	}
	if s.metrics == nil {
		s.metrics = metrics.NewManager()
	}

	return s
}

// Run performs one complete run. It returns ErrInputMissing when the
// roster or template is absent, and ErrFatalRun when the run had to stop
// outside a single record. Individual render failures are only counted
// in the Outcome.
func (s *Service) Run(ctx context.Context) (Outcome, error) {
	start := s.now()
	out := Outcome{RunID: s.newRunID()}
	log := s.logger.With(logger.String("run_id", out.RunID))

	log.Info(ctx, "run started",
		logger.String("input", s.inputPath),
		logger.String("template", s.templatePath),
		logger.String("output", s.outputDir),
	)

	for _, path := range []string{s.inputPath, s.templatePath} {
		if !isFile(path) {
			log.Error(ctx, "required input file is missing", logger.String("path", path))
			s.finish(ctx, log, outcomeInputMissing, start)
			return out, fmt.Errorf("%w: %s", ErrInputMissing, path)
		}
	}

	if err := os.MkdirAll(s.outputDir, outputDirPerm); err != nil {
		return out, s.fatal(ctx, log, start, fmt.Errorf("create output directory: %w", err))
	}

	log.Info(ctx, "loading data")
	records, intake, err := s.qualify(ctx)
	if err != nil {
		return out, s.fatal(ctx, log, start, err)
	}
	s.metrics.RecordIntake(intake)
	out.Qualifying = len(records)

	log.Info(ctx, fmt.Sprintf("Found %d qualified employees. Starting renderer...", len(records)),
		logger.Int("lines", intake.Lines),
		logger.Int("rejected", intake.Rejected),
		logger.Int("duplicates", intake.Duplicates),
		logger.Int("below_threshold", intake.Below),
	)

	session, err := s.opener.Open(ctx)
	if err != nil {
		return out, s.fatal(ctx, log, start, fmt.Errorf("open renderer: %w", err))
	}

	batch, err := s.runBatch(ctx, log, session, records)
	batch.RunID = out.RunID
	if err != nil {
		log.Error(ctx, "run aborted",
			logger.Int("succeeded", batch.Succeeded),
			logger.Int("failed", batch.Failed),
		)
		return batch, s.fatal(ctx, log, start, err)
	}

	// Metrics go first so any warning they raise precedes the summary,
	// which stays the last entry of the run.
	s.finish(ctx, log, outcomeCompleted, start)
	log.Info(ctx, fmt.Sprintf("Job done. Success: %d, Failed: %d", batch.Succeeded, batch.Failed),
		logger.Int("succeeded", batch.Succeeded),
		logger.Int("failed", batch.Failed),
		logger.Int("qualifying", batch.Qualifying),
	)
	return batch, nil
}

// runBatch owns the session for the duration of the batch and releases
// it on every path out.
func (s *Service) runBatch(ctx context.Context, log logger.Logger, session render.Session, records []model.Record) (Outcome, error) {
	defer func() {
		if err := session.Close(); err != nil {
			log.Warn(ctx, "renderer close failed", logger.Error(err))
			return
		}
		log.Info(ctx, "renderer closed")
	}()

	runner := NewRunner(s.resolver, s.templatePath, log.Named("batch"), s.metrics)
	return runner.Run(ctx, session, records)
}

// qualify reads the roster and returns the qualifying set: parsed,
// deduplicated by identity (first row wins) and filtered by score.
func (s *Service) qualify(ctx context.Context) ([]model.Record, metrics.Intake, error) {
	f, err := os.Open(s.inputPath)
	if err != nil {
		return nil, metrics.Intake{}, fmt.Errorf("open roster: %w", err)
	}
	defer func() { _ = f.Close() }()

	parser := roster.NewParser(f, s.parserOpts...)
	deduper := dedupe.NewInMemoryDeduper()

	unique := 0
	distinct := counted(dedupe.First(ctx, deduper, parser.Records(), model.Record.IdentityKey), &unique)
	records := slices.Collect(scoring.Qualifying(distinct, scoring.QualifyingThreshold))

	if err := parser.Err(); err != nil {
		return nil, metrics.Intake{}, fmt.Errorf("read roster: %w", err)
	}

	stats := parser.Stats()
	return records, metrics.Intake{
		Lines:      stats.Lines,
		Rejected:   stats.Rejected,
		Duplicates: int(deduper.Duplicates()),
		Below:      unique - len(records),
		Qualifying: len(records),
	}, nil
}

func (s *Service) fatal(ctx context.Context, log logger.Logger, start time.Time, err error) error {
	log.Error(ctx, "FATAL ERROR", logger.Error(err))
	s.finish(ctx, log, outcomeFatal, start)
	if !errors.Is(err, ErrFatalRun) {
		err = fmt.Errorf("%w: %w", ErrFatalRun, err)
	}
	return err
}

func (s *Service) finish(ctx context.Context, log logger.Logger, outcome string, start time.Time) {
	end := s.now()
	s.metrics.RecordRun(outcome, end.Sub(start), end)
	if s.metricsFile == "" {
		return
	}
	if err := s.metrics.WriteTextfile(s.metricsFile); err != nil {
		log.Warn(ctx, "metrics not written", logger.String("path", s.metricsFile), logger.Error(err))
	}
}

// counted passes seq through, counting the elements that go by.
func counted[T any](seq iter.Seq[T], n *int) iter.Seq[T] {
	return func(yield func(T) bool) {
		for v := range seq {
			*n++
			if !yield(v) {
				return
			}
		}
	}
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
