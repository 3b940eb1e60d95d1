package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/groundwater-etl/internal/domain"
	"github.com/couchcryptid/groundwater-etl/internal/observability"
	"github.com/jonboulle/clockwork"
)

// Fetcher retrieves one full USGS response.
type Fetcher interface {
	Fetch(ctx context.Context) (domain.RawResponse, error)
}

// Loader writes the sorted records of a run to a destination.
type Loader interface {
	Name() string
	Load(ctx context.Context, records []domain.FlatRecord) error
}

// Status summarizes the most recent run.
type Status struct {
	Runs        int       `json:"runs"`
	Records     int       `json:"records"`
	LastRun     time.Time `json:"last_run,omitzero"`
	LastSuccess time.Time `json:"last_success,omitzero"`
	LastError   string    `json:"last_error,omitempty"`
}

// Pipeline orchestrates fetch → extract → sort → load.
type Pipeline struct {
	fetcher Fetcher
	loaders []Loader
	logger  *slog.Logger
	metrics *observability.Metrics
	clock   clockwork.Clock
	ready   atomic.Bool

	mu     sync.Mutex
	status Status
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithClock swaps the time source, letting tests drive the schedule.
func WithClock(c clockwork.Clock) Option {
	return func(p *Pipeline) {
		p.clock = c
	}
}

// New creates a Pipeline. Loaders run in the given order on every run.
func New(f Fetcher, loaders []Loader, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Pipeline {
	p := &Pipeline{
		fetcher: f,
		loaders: loaders,
		logger:  logger,
		metrics: metrics,
		clock:   clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// CheckReadiness returns nil once a run has completed successfully.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not completed a successful run yet")
	}
	return nil
}

// Status returns a snapshot of the latest run.
func (p *Pipeline) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// RunOnce executes a single all-or-nothing pass. A failure in any stage
// aborts the run; loaders after a failed one are not called.
func (p *Pipeline) RunOnce(ctx context.Context) error {
	start := p.clock.Now()
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	n, err := p.run(ctx)
	elapsed := p.clock.Since(start)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.status.Runs++
	p.status.LastRun = start

	if err != nil {
		var stageErr *StageError
		if errors.As(err, &stageErr) {
			p.metrics.RunErrors.WithLabelValues(stageErr.Stage).Inc()
		}
		p.metrics.Runs.WithLabelValues("error").Inc()
		p.status.LastError = err.Error()
		return err
	}

	p.metrics.Runs.WithLabelValues("success").Inc()
	p.metrics.RunDuration.Observe(elapsed.Seconds())
	p.metrics.LastSuccess.Set(float64(start.Unix()))
	p.status.Records = n
	p.status.LastSuccess = start
	p.status.LastError = ""
	p.ready.Store(true)

	p.logger.Info("pipeline run complete", "records", n, "duration", elapsed)
	return nil
}

func (p *Pipeline) run(ctx context.Context) (int, error) {
	fetchStart := p.clock.Now()
	resp, err := p.fetcher.Fetch(ctx)
	if err != nil {
		return 0, &StageError{Stage: StageFetch, Err: err}
	}
	p.metrics.FetchDuration.Observe(p.clock.Since(fetchStart).Seconds())

	records, err := domain.ExtractAllData(resp)
	if err != nil {
		return 0, &StageError{Stage: StageExtract, Err: err}
	}
	p.metrics.RecordsExtracted.Add(float64(len(records)))
	p.logger.Debug("records extracted", "count", len(records))

	sorted := domain.SortRecords(records)

	for _, l := range p.loaders {
		if err := l.Load(ctx, sorted); err != nil {
			return 0, &StageError{Stage: StageLoad, Sink: l.Name(), Err: err}
		}
		p.metrics.RecordsLoaded.WithLabelValues(l.Name()).Add(float64(len(sorted)))
	}
	return len(sorted), nil
}

// Run executes a run immediately and then once per interval until the
// context is cancelled. Failed runs are logged and the next tick starts a
// fresh run. A non-positive interval performs a single run.
func (p *Pipeline) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return p.RunOnce(ctx)
	}

	p.logger.Info("scheduler started", "interval", interval)
	ticker := p.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := p.RunOnce(ctx); err != nil {
			if ctx.Err() != nil {
				p.logger.Info("scheduler stopping", "reason", ctx.Err())
				return nil
			}
			p.logger.Error("pipeline run failed", "error", err)
		}

		select {
		case <-ctx.Done():
			p.logger.Info("scheduler stopping", "reason", ctx.Err())
			return nil
		case <-ticker.Chan():
		}
	}
}
