package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okian/certify/internal/adapters/render"
	"github.com/okian/certify/internal/domain/merge"
	"github.com/okian/certify/internal/domain/model"
	"github.com/okian/certify/pkg/logger"
	"github.com/okian/certify/pkg/metrics"
)

// Resolver maps a record to its merge fields.
type Resolver interface {
	Resolve(rec model.Record) merge.Fields
}

// Outcome tallies one batch.
type Outcome struct {
	RunID      string
	Qualifying int
	Succeeded  int
	Failed     int
}

// Runner renders one document per qualifying record against a single
// renderer session. A failing record is logged and counted and never
// stops the batch.
type Runner struct {
	resolver Resolver
	template string
	logger   logger.Logger
	metrics  *metrics.Manager
	now      func() time.Time
}

// NewRunner creates a Runner for one template.
func NewRunner(resolver Resolver, template string, log logger.Logger, m *metrics.Manager) *Runner {
	return &Runner{
		resolver: resolver,
		template: template,
		logger:   log,
		metrics:  m,
		now:      time.Now,
	}
}

// Run drives the batch in order. Every record is attempted unless ctx is
// cancelled, which aborts the remaining batch with ErrFatalRun; the
// outcome then covers the records attempted so far. The session is
// borrowed: Run never closes it.
func (r *Runner) Run(ctx context.Context, session render.Session, records []model.Record) (Outcome, error) {
	out := Outcome{Qualifying: len(records)}

	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return out, fmt.Errorf("%w: batch interrupted after %d of %d: %w",
				ErrFatalRun, out.Succeeded+out.Failed, len(records), err)
		}

		r.logger.Info(ctx, "processing",
			logger.String("name", rec.IdentityKey()),
			logger.Float64("final_score", rec.FinalScore()),
		)

		start := r.now()
		err := r.renderOne(ctx, session, rec)
		r.metrics.RecordRender(r.now().Sub(start), err)

		if err != nil {
			out.Failed++
			r.logger.Error(ctx, "render failed",
				logger.String("name", rec.IdentityKey()),
				logger.Int("line", rec.Line()),
				logger.Error(err),
			)
			continue
		}
		out.Succeeded++
		r.logger.Info(ctx, "document rendered", logger.String("name", rec.IdentityKey()))
	}

	return out, nil
}

// errRenderPanic wraps a panic raised inside the renderer.
var errRenderPanic = errors.New("renderer panicked")

// renderOne is the per-record failure boundary: errors and panics from
// the renderer both come back as an error.
func (r *Runner) renderOne(ctx context.Context, session render.Session, rec model.Record) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: %v", errRenderPanic, p)
		}
	}()

	job := render.Job{
		Template: r.template,
		OutputID: OutputID(rec),
		Fields:   r.resolver.Resolve(rec),
	}
	return session.Render(ctx, job)
}

// OutputID is the file-safe document name of a record: Given_Family.
func OutputID(rec model.Record) string {
	return render.SanitizeName(rec.GivenName() + "_" + rec.FamilyName())
}
