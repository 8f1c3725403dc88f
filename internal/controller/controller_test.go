package controller

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studiowebux/policyctl/internal/executor"
	"github.com/studiowebux/policyctl/internal/ingest"
	"github.com/studiowebux/policyctl/internal/render"
	"github.com/studiowebux/policyctl/internal/types"
)

type recorder struct {
	mu      sync.Mutex
	notices []Notice
}

func (r *recorder) Notify(n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

func (r *recorder) all() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notice, len(r.notices))
	copy(out, r.notices)
	return out
}

func (r *recorder) last() Notice {
	all := r.all()
	if len(all) == 0 {
		return Notice{}
	}
	return all[len(all)-1]
}

type call struct {
	mode types.Mode
	req  types.AnalysisRequest
}

type fakeAnalyzer struct {
	mu    sync.Mutex
	calls []call
	res   *executor.Result
	err   error
}

func (f *fakeAnalyzer) Analyze(_ context.Context, mode types.Mode, req types.AnalysisRequest) (*executor.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{mode: mode, req: req})
	return f.res, f.err
}

func (f *fakeAnalyzer) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func success(result string) *executor.Result {
	return &executor.Result{
		Response: types.AnalysisResponse{Success: true, Result: result},
		Status:   200,
	}
}

func failure(reason string) *executor.Result {
	return &executor.Result{
		Response: types.AnalysisResponse{Success: false, Error: reason},
		Status:   500,
	}
}

func upper(markdown string) (string, error) {
	return strings.ToUpper(markdown), nil
}

func newController(t *testing.T, analyzer Analyzer) (*Controller, *recorder) {
	t.Helper()
	rec := &recorder{}
	c := New(Options{
		Analyzer: analyzer,
		Renderer: render.Func(upper),
		Notifier: rec,
	})
	return c, rec
}

func TestInitialState(t *testing.T) {
	c, _ := newController(t, &fakeAnalyzer{})
	s := c.State()

	assert.Equal(t, types.StateIdle, s.Request)
	assert.Equal(t, types.DisplayEmpty, s.Display)
	assert.True(t, s.TriggerEnabled)
	assert.Nil(t, s.Last)
	assert.Equal(t, types.ModeTranslate, c.Selector().Active())
}

func TestSubmitEmptyPolicy(t *testing.T) {
	for _, policy := range []string{"", "   ", "\n\t\n"} {
		an := &fakeAnalyzer{res: success("x")}
		c, rec := newController(t, an)
		c.SetPolicy(policy)

		_, err := c.Submit(context.Background())
		require.ErrorIs(t, err, ErrEmptyPolicy)

		assert.Equal(t, 0, an.count(), "no request for %q", policy)
		assert.Equal(t, InitialState(), c.State())
		assert.Equal(t, msgEmptyPolicy, rec.last().Message)
	}
}

func TestSubmitSimulateRequiresQuery(t *testing.T) {
	an := &fakeAnalyzer{res: success("x")}
	c, rec := newController(t, an)
	c.SetPolicy(`{"a":1}`)
	c.SelectMode(types.ModeSimulate)
	c.SetQuery("   ")

	_, err := c.Submit(context.Background())
	require.ErrorIs(t, err, ErrEmptyQuery)

	assert.Equal(t, 0, an.count())
	s := c.State()
	assert.Equal(t, types.DisplayEmpty, s.Display)
	assert.True(t, s.TriggerEnabled)
	assert.False(t, s.Loading())
	assert.Equal(t, msgEmptyQuery, rec.last().Message)
}

func TestSubmitSuccess(t *testing.T) {
	an := &fakeAnalyzer{res: success("## Summary\nok")}
	c, rec := newController(t, an)
	c.SetPolicy("  {\"a\":1}  ")

	out, err := c.Submit(context.Background())
	require.NoError(t, err)
	assert.True(t, out.Succeeded())

	require.Equal(t, 1, an.count())
	assert.Equal(t, types.ModeTranslate, an.calls[0].mode)
	assert.Equal(t, `{"a":1}`, an.calls[0].req.Policy)
	assert.Empty(t, an.calls[0].req.Query)

	s := c.State()
	assert.Equal(t, types.StateSuccess, s.Request)
	assert.Equal(t, types.DisplayResult, s.Display)
	assert.True(t, s.TriggerEnabled)
	assert.Equal(t, "Translation complete", s.Caption)
	require.NotNil(t, s.Last)
	assert.Equal(t, "## Summary\nok", s.Last.Raw)
	assert.Equal(t, "## SUMMARY\nOK", s.Rendered)
	assert.True(t, s.Highlighted)
	assert.Empty(t, rec.all())
}

func TestSubmitSimulateSendsTrimmedQuery(t *testing.T) {
	an := &fakeAnalyzer{res: success("allowed")}
	c, _ := newController(t, an)
	c.SetPolicy("policy")
	c.SelectMode(types.ModeSimulate)
	c.SetQuery("  can usb write?  ")

	_, err := c.Submit(context.Background())
	require.NoError(t, err)

	require.Equal(t, 1, an.count())
	assert.Equal(t, types.ModeSimulate, an.calls[0].mode)
	assert.Equal(t, "can usb write?", an.calls[0].req.Query)
	assert.Equal(t, "Simulation complete", c.State().Caption)
}

func TestQueryIgnoredOutsideSimulate(t *testing.T) {
	an := &fakeAnalyzer{res: success("x")}
	c, _ := newController(t, an)
	c.SetPolicy("policy")
	c.SelectMode(types.ModeSimulate)
	c.SetQuery("question")
	c.SelectMode(types.ModeDiagnose)

	_, err := c.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, types.ModeDiagnose, an.calls[0].mode)
	assert.Empty(t, an.calls[0].req.Query)

	// the query survives the switch
	assert.Equal(t, "question", c.Selector().Query())
}

func TestSubmitServerFailure(t *testing.T) {
	cases := []struct {
		reason string
		want   string
	}{
		{"parse error", "Analysis failed: parse error"},
		{"", "Analysis failed: unknown error"},
	}

	for _, tc := range cases {
		an := &fakeAnalyzer{res: failure(tc.reason)}
		c, rec := newController(t, an)
		c.SetPolicy("policy")

		out, err := c.Submit(context.Background())
		require.NoError(t, err)
		assert.Equal(t, OutcomeServerFailure, out.Kind)

		s := c.State()
		assert.Equal(t, types.StateFailed, s.Request)
		assert.Equal(t, types.DisplayEmpty, s.Display)
		assert.True(t, s.TriggerEnabled)
		assert.Equal(t, tc.want, rec.last().Message)
		assert.Equal(t, LevelError, rec.last().Level)
	}
}

func TestSubmitTransportFailure(t *testing.T) {
	an := &fakeAnalyzer{err: &executor.TransportError{Endpoint: "/api/translate", Err: errors.New("connection refused")}}
	c, rec := newController(t, an)
	c.SetPolicy("policy")

	out, err := c.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeTransportFailure, out.Kind)

	s := c.State()
	assert.Equal(t, types.DisplayEmpty, s.Display)
	assert.True(t, s.TriggerEnabled)
	assert.Equal(t, "Server connection failed: connection refused", rec.last().Message)
}

func TestSubmitDecodeFailure(t *testing.T) {
	an := &fakeAnalyzer{err: &executor.DecodeError{Status: 502, Err: errors.New("bad gateway")}}
	c, rec := newController(t, an)
	c.SetPolicy("policy")

	out, err := c.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeDecodeFailure, out.Kind)
	assert.Equal(t, 502, out.Status)
	assert.True(t, strings.HasPrefix(rec.last().Message, "Server connection failed: "))
	assert.True(t, c.State().TriggerEnabled)
}

func TestFailureKeepsLastResult(t *testing.T) {
	an := &fakeAnalyzer{res: success("first")}
	c, _ := newController(t, an)
	c.SetPolicy("policy")
	_, err := c.Submit(context.Background())
	require.NoError(t, err)

	an.res = failure("boom")
	_, err = c.Submit(context.Background())
	require.NoError(t, err)

	s := c.State()
	assert.Equal(t, types.DisplayEmpty, s.Display)
	require.NotNil(t, s.Last)
	assert.Equal(t, "first", s.Last.Raw)
}

func TestRendererFallback(t *testing.T) {
	an := &fakeAnalyzer{res: success("a < b")}
	rec := &recorder{}
	c := New(Options{
		Analyzer: an,
		Renderer: render.Func(func(string) (string, error) { return "", errors.New("renderer down") }),
		Notifier: rec,
	})
	c.SetPolicy("policy")

	_, err := c.Submit(context.Background())
	require.NoError(t, err)

	s := c.State()
	assert.Equal(t, types.DisplayResult, s.Display)
	assert.False(t, s.Highlighted)
	assert.Equal(t, render.Preformatted("a < b"), s.Rendered)
	assert.Equal(t, "a < b", s.Last.Raw)
}

func TestNoRendererUsesFallback(t *testing.T) {
	an := &fakeAnalyzer{res: success("plain")}
	c := New(Options{Analyzer: an, Fallback: render.PreformattedHTML})
	c.SetPolicy("policy")

	_, err := c.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, render.PreformattedHTML("plain"), c.State().Rendered)
}

func TestBeginWhileLoading(t *testing.T) {
	c, rec := newController(t, &fakeAnalyzer{res: success("x")})
	c.SetPolicy("policy")

	p, err := c.Begin()
	require.NoError(t, err)

	s := c.State()
	assert.Equal(t, types.StateLoading, s.Request)
	assert.Equal(t, types.DisplayLoading, s.Display)
	assert.False(t, s.TriggerEnabled)
	assert.Equal(t, "Translating policy into natural language...", s.Caption)

	_, err = c.Begin()
	assert.ErrorIs(t, err, ErrRequestInFlight)
	assert.Equal(t, msgInFlight, rec.last().Message)

	c.Finish(p, success("done"), nil)
	assert.True(t, c.State().TriggerEnabled)

	_, err = c.Begin()
	assert.NoError(t, err)
}

func TestConcurrentSubmitSingleFlight(t *testing.T) {
	release := make(chan struct{})
	var calls int
	var mu sync.Mutex
	an := AnalyzerFunc(func(ctx context.Context, mode types.Mode, req types.AnalysisRequest) (*executor.Result, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		<-release
		return success("ok"), nil
	})
	c, _ := newController(t, an)
	c.SetPolicy("policy")

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Submit(context.Background())
			errs <- err
		}()
	}

	// exactly one submission is accepted; the others fail fast
	rejected := 0
	for rejected < 9 {
		err := <-errs
		require.ErrorIs(t, err, ErrRequestInFlight)
		rejected++
	}
	close(release)
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, 1, calls)
	assert.True(t, c.State().TriggerEnabled)
}

func TestClearDuringLoading(t *testing.T) {
	c, _ := newController(t, &fakeAnalyzer{})
	c.SetPolicy("policy")

	p, err := c.Begin()
	require.NoError(t, err)

	c.Clear()
	s := c.State()
	assert.Equal(t, types.DisplayEmpty, s.Display)
	assert.True(t, s.Loading())
	assert.False(t, s.TriggerEnabled)
	assert.Empty(t, c.Buffer().Text())

	c.Finish(p, success("late"), nil)
	s = c.State()
	assert.Equal(t, types.DisplayResult, s.Display)
	assert.True(t, s.TriggerEnabled)
	assert.Equal(t, "late", s.Last.Raw)
}

func TestClearResetsBufferAndDisplay(t *testing.T) {
	c, _ := newController(t, &fakeAnalyzer{res: success("x")})
	results := []types.FileReadResult{{Index: 0, Name: "a.json", Content: "{}"}}
	c.ApplyIngest(results)
	_, err := c.Submit(context.Background())
	require.NoError(t, err)

	c.Clear()
	assert.Empty(t, c.Buffer().Text())
	assert.Equal(t, 0, c.Buffer().SourceFileCount())
	assert.Equal(t, types.DisplayEmpty, c.State().Display)
	assert.NotNil(t, c.State().Last)
}

func TestFormat(t *testing.T) {
	c, rec := newController(t, &fakeAnalyzer{})

	c.SetPolicy(`{"b":1,"a":[1,2]}`)
	require.NoError(t, c.Format())
	assert.Equal(t, "{\n  \"b\": 1,\n  \"a\": [\n    1,\n    2\n  ]\n}", c.Buffer().Text())
	assert.Equal(t, Notice{Level: LevelSuccess, Message: msgFormatted}, rec.last())

	log := "2024-01-01 agent started\nrule=block"
	c.SetPolicy(log)
	err := c.Format()
	assert.Error(t, err)
	assert.Equal(t, log, c.Buffer().Text())
	assert.Equal(t, LevelInfo, rec.last().Level)
	assert.Equal(t, msgUnstructured, rec.last().Message)
}

func TestApplyIngest(t *testing.T) {
	c, rec := newController(t, &fakeAnalyzer{})

	c.ApplyIngest([]types.FileReadResult{
		{Index: 1, Name: "b.json", Content: "B"},
		{Index: 0, Name: "a.json", Content: " A "},
	})
	assert.Equal(t, "A\n\nB", c.Buffer().Text())
	assert.Equal(t, 2, c.Buffer().SourceFileCount())
	assert.Equal(t, "Files added: a.json, b.json (2 total)", rec.last().Message)

	report := c.ApplyIngest([]types.FileReadResult{
		{Index: 0, Name: "c.log", Content: "C"},
		{Index: 1, Name: "d.log", Err: errors.New("permission denied")},
	})
	assert.Equal(t, "A\n\nB\n\nC", c.Buffer().Text())
	assert.Equal(t, 3, report.Total)
	assert.Equal(t, LevelWarning, rec.last().Level)
	assert.Contains(t, rec.last().Message, "could not read: d.log")
}

func TestApplyIngestEmptyBatch(t *testing.T) {
	c, rec := newController(t, &fakeAnalyzer{})
	c.ApplyIngest(nil)
	assert.Empty(t, rec.all())
}

func TestIngestSources(t *testing.T) {
	c, _ := newController(t, &fakeAnalyzer{})
	sources := []ingest.Source{
		ingest.NewReaderSource("one.json", strings.NewReader(`{"one":1}`)),
		ingest.NewReaderSource("two.json", strings.NewReader(`{"two":2}`)),
	}

	report := c.Ingest(context.Background(), sources)
	assert.Equal(t, []string{"one.json", "two.json"}, report.Accepted)
	assert.Equal(t, "{\"one\":1}\n\n{\"two\":2}", c.Buffer().Text())
}

func TestManualEditKeepsFileCount(t *testing.T) {
	c, _ := newController(t, &fakeAnalyzer{})
	c.ApplyIngest([]types.FileReadResult{{Index: 0, Name: "a", Content: "A"}})
	c.SetPolicy("edited")
	assert.Equal(t, 1, c.Buffer().SourceFileCount())
	assert.Equal(t, "edited", c.Buffer().Text())
}

func TestCopyResult(t *testing.T) {
	var copied string
	rec := &recorder{}
	c := New(Options{
		Analyzer: &fakeAnalyzer{res: success("**raw** narrative")},
		Renderer: render.Func(upper),
		Notifier: rec,
		Clipboard: ClipboardFunc(func(text string) error {
			copied = text
			return nil
		}),
	})

	assert.ErrorIs(t, c.CopyResult(), ErrNoResult)
	assert.Empty(t, copied)

	c.SetPolicy("policy")
	_, err := c.Submit(context.Background())
	require.NoError(t, err)

	require.NoError(t, c.CopyResult())
	assert.Equal(t, "**raw** narrative", copied)
	assert.Equal(t, msgCopied, rec.last().Message)
}

func TestCopyResultClipboardError(t *testing.T) {
	rec := &recorder{}
	c := New(Options{
		Analyzer:  &fakeAnalyzer{res: success("x")},
		Notifier:  rec,
		Clipboard: ClipboardFunc(func(string) error { return errors.New("no display") }),
	})
	c.SetPolicy("policy")
	_, err := c.Submit(context.Background())
	require.NoError(t, err)

	assert.Error(t, c.CopyResult())
	assert.Equal(t, LevelError, rec.last().Level)
}

func TestCopyResultWithoutClipboard(t *testing.T) {
	c := New(Options{Analyzer: &fakeAnalyzer{res: success("x")}})
	c.SetPolicy("policy")
	_, err := c.Submit(context.Background())
	require.NoError(t, err)
	assert.ErrorIs(t, c.CopyResult(), ErrNoClipboard)
}

func TestLoadSample(t *testing.T) {
	c, rec := newController(t, &fakeAnalyzer{})
	c.LoadSample()

	text := c.Buffer().Text()
	assert.True(t, strings.HasPrefix(text, "{\n  \""))
	assert.Equal(t, 0, c.Buffer().SourceFileCount())
	assert.Equal(t, msgSampleLoaded, rec.last().Message)
}

func TestDispatchWithoutAnalyzer(t *testing.T) {
	c := New(Options{})
	c.SetPolicy("policy")
	out, err := c.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeTransportFailure, out.Kind)
	assert.True(t, c.State().TriggerEnabled)
}

func TestCycleMode(t *testing.T) {
	c, _ := newController(t, &fakeAnalyzer{})
	assert.Equal(t, types.ModeSimulate, c.CycleMode(1))
	assert.True(t, c.Selector().QueryVisible())
	assert.Equal(t, types.ModeTranslate, c.CycleMode(-1))
	assert.False(t, c.SelectMode(types.Mode("unknown")))
	assert.Equal(t, types.ModeTranslate, c.Selector().Active())
}
