// Package pipeline sequences the harvest, analyze, and summarize stages of
// one reporting run and owns the context threaded between them.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/avelira/devpulse/internal/report"
	"github.com/avelira/devpulse/pkg/analyzer/forecast"
	"github.com/avelira/devpulse/pkg/analyzer/metrics"
	"github.com/avelira/devpulse/pkg/analyzer/risk"
	"github.com/avelira/devpulse/pkg/config"
	"github.com/avelira/devpulse/pkg/models"
)

// State is a pipeline run state.
type State string

const (
	StateIdle        State = "idle"
	StateHarvesting  State = "harvesting"
	StateAnalyzing   State = "analyzing"
	StateSummarizing State = "summarizing"
	StateDone        State = "done"
	StateFailed      State = "failed"
)

// transitions maps each state to its legal successors. Failed is absorbing
// and reachable from every non-terminal state.
var transitions = map[State][]State{
	StateIdle:        {StateHarvesting, StateFailed},
	StateHarvesting:  {StateAnalyzing, StateFailed},
	StateAnalyzing:   {StateSummarizing, StateFailed},
	StateSummarizing: {StateDone, StateFailed},
}

// StageError reports a stage failure. The zero retry policy is deliberate:
// the orchestrator never re-invokes a stage, and downstream stages are not
// reached once a run has failed.
type StageError struct {
	Stage State
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("pipeline stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Batch is the harvest collaborator's materialized output for one period.
// Skipped counts events the collaborator dropped for malformed fields.
type Batch struct {
	Commits []models.CommitEvent
	PRs     []models.PullRequestEvent
	Skipped int
}

// EventSource supplies already-materialized events for a period. Reaching
// the underlying store or API is the caller's responsibility; the pipeline
// performs no network or disk I/O of its own.
type EventSource interface {
	Events(ctx context.Context, period models.Period) (*Batch, error)
}

// HistorySource supplies up to n stored PeriodMetrics for periods strictly
// before the given one, oldest first. Lookups must be read-only and
// idempotent from the run's perspective.
type HistorySource interface {
	Metrics(ctx context.Context, before models.Period, n int) ([]models.PeriodMetrics, error)
}

// Context is the accumulator threaded through one run's stages. It is
// exclusively owned by that run for its entire lifetime and is never
// shared across concurrent runs.
type Context struct {
	Period  models.Period
	Commits []models.CommitEvent
	PRs     []models.PullRequestEvent
	// Skipped counts events dropped at harvest, whether malformed at the
	// source or outside the period.
	Skipped int

	History   []models.PeriodMetrics
	Authors   map[string]models.AuthorStats
	Metrics   models.PeriodMetrics
	Risk      *risk.Analysis
	Forecasts []models.ForecastResult
}

// Pipeline holds the run-independent configuration. A single Pipeline may
// drive many runs, concurrently or not; all per-run state lives in the run
// struct created by Run.
type Pipeline struct {
	workday  models.WorkdayWindow
	riskOpts []risk.Option
	fcOpts   []forecast.Option
	window   int
	history  HistorySource
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithConfig applies thresholds and windows from a loaded config.
func WithConfig(cfg *config.Config) Option {
	return func(p *Pipeline) {
		p.workday = models.WorkdayWindow{
			StartHour: cfg.Workday.StartHour,
			EndHour:   cfg.Workday.EndHour,
		}
		p.riskOpts = []risk.Option{
			risk.WithRiskyChurn(cfg.Risk.RiskyChurn),
			risk.WithSpikeSigma(cfg.Risk.SpikeSigma),
			risk.WithSpikeMinCommits(cfg.Risk.SpikeMinCommits),
			risk.WithOutlierSigma(cfg.Risk.OutlierSigma),
		}
		p.fcOpts = []forecast.Option{
			forecast.WithWindow(cfg.Forecast.Window),
			forecast.WithMinHistory(cfg.Forecast.MinHistory),
			forecast.WithDirectionBand(cfg.Forecast.DirectionBand),
		}
		p.window = cfg.Forecast.Window
	}
}

// WithHistory sets the read-only source of prior period metrics. Without
// one, forecasts fall back to the insufficient-history path.
func WithHistory(h HistorySource) Option {
	return func(p *Pipeline) {
		p.history = h
	}
}

// WithWorkday sets the working window used for after-hours stamping.
func WithWorkday(w models.WorkdayWindow) Option {
	return func(p *Pipeline) {
		p.workday = w
	}
}

// New creates a pipeline.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		workday: models.DefaultWorkday,
		window:  forecast.DefaultWindow,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// run owns the per-run state machine and context.
type run struct {
	p     *Pipeline
	state State
	pc    *Context
}

// to advances the state machine, rejecting transitions the machine does
// not define.
func (r *run) to(next State) error {
	for _, s := range transitions[r.state] {
		if s == next {
			r.state = next
			return nil
		}
	}
	return fmt.Errorf("invalid transition %s -> %s", r.state, next)
}

// fail moves the run to the absorbing Failed state and wraps the cause
// with the originating stage.
func (r *run) fail(stage State, err error) *StageError {
	r.state = StateFailed
	return &StageError{Stage: stage, Err: err}
}

// Run executes one reporting run for the period. On success the returned
// report satisfies the author/period reconciliation invariant and carries
// non-null period metrics; zero events is a valid, empty report. On
// failure the returned error is a *StageError naming the stage, and no
// downstream stage was invoked. The pipeline writes nothing anywhere:
// persisting or delivering the report is the caller's job.
func (p *Pipeline) Run(ctx context.Context, period models.Period, source EventSource) (*models.Report, error) {
	r := &run{p: p, state: StateIdle, pc: &Context{Period: period}}

	if err := r.to(StateHarvesting); err != nil {
		return nil, r.fail(StateIdle, err)
	}
	if err := r.harvest(ctx, source); err != nil {
		return nil, r.fail(StateHarvesting, err)
	}

	if err := r.to(StateAnalyzing); err != nil {
		return nil, r.fail(StateHarvesting, err)
	}
	if err := r.analyze(ctx); err != nil {
		return nil, r.fail(StateAnalyzing, err)
	}

	if err := r.to(StateSummarizing); err != nil {
		return nil, r.fail(StateAnalyzing, err)
	}
	rep, err := r.summarize(ctx)
	if err != nil {
		return nil, r.fail(StateSummarizing, err)
	}

	if err := r.to(StateDone); err != nil {
		return nil, r.fail(StateSummarizing, err)
	}
	return rep, nil
}

// harvest pulls the period's events from the source, drops events whose
// timestamps fall outside the period (counted, not raised), and stamps the
// derived commit fields.
func (r *run) harvest(ctx context.Context, source EventSource) error {
	batch, err := source.Events(ctx, r.pc.Period)
	if err != nil {
		return err
	}
	r.pc.Skipped = batch.Skipped

	for _, c := range batch.Commits {
		if !r.pc.Period.Contains(c.Timestamp) {
			r.pc.Skipped++
			continue
		}
		if c.Kind == "" {
			c.Kind = models.ClassifyMessage(c.Message)
		}
		c.AfterHours = !r.p.workday.Contains(c.Timestamp)
		r.pc.Commits = append(r.pc.Commits, c)
	}

	for _, pr := range batch.PRs {
		if !r.pc.Period.Contains(pr.CreatedAt) {
			r.pc.Skipped++
			continue
		}
		r.pc.PRs = append(r.pc.PRs, pr)
	}
	return nil
}

// analyze runs the metrics engine and risk detector over the harvested
// events and merges risky-commit counts into the author stats.
func (r *run) analyze(ctx context.Context) error {
	if r.p.history != nil {
		hist, err := r.p.history.Metrics(ctx, r.pc.Period, r.p.window)
		if err != nil {
			return err
		}
		r.pc.History = hist
	}

	var mOpts []metrics.Option
	if n := len(r.pc.History); n > 0 {
		prior := r.pc.History[n-1]
		mOpts = append(mOpts, metrics.WithPrior(&prior))
	}

	mAnalyzer := metrics.New(mOpts...)
	defer mAnalyzer.Close()
	mAnalysis, err := mAnalyzer.Analyze(ctx, r.pc.Period, r.pc.Commits, r.pc.PRs)
	if err != nil {
		return err
	}

	rAnalyzer := risk.New(r.p.riskOpts...)
	defer rAnalyzer.Close()
	rAnalysis, err := rAnalyzer.Analyze(ctx, r.pc.Period, r.pc.Commits, r.pc.PRs)
	if err != nil {
		return err
	}

	// Author stats are replaced wholesale each run, so backfilling the
	// risky counts here mutates nothing shared.
	for author, n := range rAnalysis.RiskyByAuthor {
		st := mAnalysis.Authors[author]
		st.RiskyCommits = n
		mAnalysis.Authors[author] = st
	}

	r.pc.Authors = mAnalysis.Authors
	r.pc.Metrics = mAnalysis.Metrics
	r.pc.Risk = rAnalysis
	return nil
}

// summarize forecasts the target series and assembles the final report.
// The assembler's reconciliation failure surfaces as a stage error.
func (r *run) summarize(ctx context.Context) (*models.Report, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	fc := forecast.New(r.p.fcOpts...)
	target := r.pc.Period.Next()

	series := append(append([]models.PeriodMetrics{}, r.pc.History...), r.pc.Metrics)

	churn := make([]float64, 0, len(series))
	leadTime := make([]float64, 0, len(series))
	for _, m := range series {
		churn = append(churn, float64(m.TotalChurn))
		if m.LeadTimeHours != nil {
			leadTime = append(leadTime, *m.LeadTimeHours)
		}
	}

	r.pc.Forecasts = []models.ForecastResult{
		fc.Forecast(models.SeriesChurn, churn, target),
		fc.Forecast(models.SeriesLeadTime, leadTime, target),
	}

	rep, err := report.Assemble(report.Inputs{
		Period:    r.pc.Period,
		Authors:   r.pc.Authors,
		Metrics:   r.pc.Metrics,
		Risk:      r.pc.Risk.Summary,
		Forecasts: r.pc.Forecasts,
		Skipped:   r.pc.Skipped,
		Now:       time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	return rep, nil
}
