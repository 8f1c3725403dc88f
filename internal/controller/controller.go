package controller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/studiowebux/policyctl/internal/buffer"
	"github.com/studiowebux/policyctl/internal/executor"
	"github.com/studiowebux/policyctl/internal/ingest"
	"github.com/studiowebux/policyctl/internal/render"
	"github.com/studiowebux/policyctl/internal/sample"
	"github.com/studiowebux/policyctl/internal/selector"
	"github.com/studiowebux/policyctl/internal/types"
)

// Analyzer performs one analysis round trip
type Analyzer interface {
	Analyze(ctx context.Context, mode types.Mode, req types.AnalysisRequest) (*executor.Result, error)
}

// AnalyzerFunc adapts a function to Analyzer
type AnalyzerFunc func(ctx context.Context, mode types.Mode, req types.AnalysisRequest) (*executor.Result, error)

// Analyze calls f
func (f AnalyzerFunc) Analyze(ctx context.Context, mode types.Mode, req types.AnalysisRequest) (*executor.Result, error) {
	return f(ctx, mode, req)
}

// Options configures a Controller
type Options struct {
	Analyzer  Analyzer
	Renderer  render.Renderer     // nil always uses Fallback
	Fallback  func(string) string // defaults to render.Preformatted
	Notifier  Notifier            // nil discards notices
	Clipboard Clipboard           // nil disables CopyResult
	Reader    *ingest.Reader      // nil uses ingest defaults
	Logger    *logrus.Entry
}

// Pending is a submission that passed validation and awaits dispatch
type Pending struct {
	Mode    types.Mode
	Request types.AnalysisRequest
	Started time.Time
}

// Controller owns the input buffer, mode selector, and request state.
// Every mutation goes through it; the request state is guarded so that at
// most one request is in flight.
type Controller struct {
	mu    sync.Mutex
	state State

	buf      *buffer.Buffer
	sel      *selector.Selector
	pipeline *ingest.Pipeline

	analyzer  Analyzer
	renderer  render.Renderer
	fallback  func(string) string
	notifier  Notifier
	clipboard Clipboard
	logger    *logrus.Entry
}

// New creates a controller
func New(opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.WithField("component", "controller")
	}
	fallback := opts.Fallback
	if fallback == nil {
		fallback = render.Preformatted
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = NotifierFunc(func(Notice) {})
	}

	buf := buffer.New()
	return &Controller{
		state:     InitialState(),
		buf:       buf,
		sel:       selector.New(),
		pipeline:  ingest.NewPipeline(opts.Reader, buf, logger.WithField("component", "ingest")),
		analyzer:  opts.Analyzer,
		renderer:  opts.Renderer,
		fallback:  fallback,
		notifier:  notifier,
		clipboard: opts.Clipboard,
		logger:    logger,
	}
}

// State returns a copy of the current state
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Buffer exposes the input buffer for reading
func (c *Controller) Buffer() *buffer.Buffer {
	return c.buf
}

// Selector exposes the mode selector for reading
func (c *Controller) Selector() *selector.Selector {
	return c.sel
}

func (c *Controller) notify(level Level, msg string) {
	c.notifier.Notify(Notice{Level: level, Message: msg})
}

// Begin validates the current input and enters Loading. User-input errors
// are reported through the notifier and returned.
func (c *Controller) Begin() (Pending, error) {
	mode, query := c.sel.Snapshot()
	policy := c.buf.Text()

	c.mu.Lock()
	next, req, err := Begin(c.state, policy, mode, query)
	if err == nil {
		c.state = next
	}
	c.mu.Unlock()

	if err != nil {
		c.notifier.Notify(inputNotice(err))
		return Pending{}, err
	}

	c.logger.WithFields(logrus.Fields{
		"mode":   mode,
		"policy": len(req.Policy),
	}).Debug("submission accepted")
	return Pending{Mode: mode, Request: req, Started: time.Now()}, nil
}

// Dispatch sends a pending submission. It does not touch controller state
// and is safe to run off the owning goroutine.
func (c *Controller) Dispatch(ctx context.Context, p Pending) (*executor.Result, error) {
	if c.analyzer == nil {
		return nil, &executor.TransportError{Endpoint: p.Mode.Endpoint(), Err: errors.New("no analysis service configured")}
	}
	return c.analyzer.Analyze(ctx, p.Mode, p.Request)
}

// Finish resolves the in-flight request with the round-trip result.
// The trigger is re-enabled on every path.
func (c *Controller) Finish(p Pending, res *executor.Result, err error) Outcome {
	outcome := Classify(res, err)

	c.mu.Lock()
	c.state = Resolve(c.state, p.Mode, outcome, c.render)
	c.mu.Unlock()

	logger := c.logger.WithFields(logrus.Fields{
		"mode":     p.Mode,
		"outcome":  outcome.Kind,
		"duration": time.Since(p.Started).Round(time.Millisecond),
	})
	if notice, failed := outcome.Notice(); failed {
		logger.WithField("reason", outcome.Message).Warn("analysis failed")
		c.notifier.Notify(notice)
	} else {
		logger.WithField("size", len(outcome.Result)).Info("analysis complete")
	}
	return outcome
}

// Submit runs Begin, Dispatch, and Finish in sequence
func (c *Controller) Submit(ctx context.Context) (Outcome, error) {
	p, err := c.Begin()
	if err != nil {
		return Outcome{}, err
	}
	res, err := c.Dispatch(ctx, p)
	return c.Finish(p, res, err), nil
}

func (c *Controller) render(markdown string) (string, bool) {
	return render.Or(c.renderer, markdown, c.fallback)
}

// Clear empties the buffer and returns the panel to its empty state.
// A request in flight keeps running.
func (c *Controller) Clear() {
	c.buf.Clear()
	c.mu.Lock()
	c.state = ClearDisplay(c.state)
	c.mu.Unlock()
}

// Format re-indents JSON input. Unstructured input is left untouched and
// reported as informational.
func (c *Controller) Format() error {
	if err := c.buf.Format(); err != nil {
		if errors.Is(err, buffer.ErrUnstructured) {
			c.notify(LevelInfo, msgUnstructured)
		}
		return err
	}
	c.notify(LevelSuccess, msgFormatted)
	return nil
}

// SetPolicy records a manual edit of the buffer
func (c *Controller) SetPolicy(text string) {
	c.buf.SetFromManualEdit(text)
}

// SelectMode activates mode; unknown modes are ignored
func (c *Controller) SelectMode(mode types.Mode) bool {
	return c.sel.Select(mode)
}

// CycleMode moves the selection by delta and returns the new mode
func (c *Controller) CycleMode(delta int) types.Mode {
	return c.sel.Cycle(delta)
}

// SetQuery records the simulation query
func (c *Controller) SetQuery(query string) {
	c.sel.SetQuery(query)
}

// ReadFiles reads a batch without touching the buffer
func (c *Controller) ReadFiles(ctx context.Context, sources []ingest.Source) []types.FileReadResult {
	return c.pipeline.Read(ctx, sources)
}

// ApplyIngest appends a completed batch to the buffer and emits one notice
func (c *Controller) ApplyIngest(results []types.FileReadResult) ingest.Report {
	report := c.pipeline.Commit(results)
	if len(results) == 0 {
		return report
	}
	level := LevelSuccess
	if len(report.Failed) > 0 {
		level = LevelWarning
	}
	c.notify(level, report.Notice())
	return report
}

// Ingest reads a batch and applies it
func (c *Controller) Ingest(ctx context.Context, sources []ingest.Source) ingest.Report {
	return c.ApplyIngest(c.ReadFiles(ctx, sources))
}

// CopyResult writes the raw narrative of the last successful analysis to
// the clipboard
func (c *Controller) CopyResult() error {
	c.mu.Lock()
	last := c.state.Last
	c.mu.Unlock()

	if last == nil {
		return ErrNoResult
	}
	if c.clipboard == nil {
		return ErrNoClipboard
	}
	if err := c.clipboard.WriteAll(last.Raw); err != nil {
		c.notify(LevelError, fmt.Sprintf("Copy failed: %v", err))
		return fmt.Errorf("failed to copy result: %w", err)
	}
	c.notify(LevelSuccess, msgCopied)
	return nil
}

// LoadSample replaces the buffer with the integrated sample policy
func (c *Controller) LoadSample() {
	c.buf.SetFromManualEdit(sample.Formatted())
	c.notify(LevelSuccess, msgSampleLoaded)
}
