package ingest

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/studiowebux/policyctl/internal/buffer"
	"github.com/studiowebux/policyctl/internal/types"
)

// FileError records a file whose read failed
type FileError struct {
	Name string
	Err  error
}

// Report summarizes one committed batch
type Report struct {
	Accepted []string    // files that contributed content, in batch order
	Skipped  []string    // files that were empty after trimming
	Failed   []FileError // files that could not be read
	Total    int         // cumulative file count after the commit
}

// Notice is the single user-visible message for the batch
func (r Report) Notice() string {
	names := "none"
	if len(r.Accepted) > 0 {
		names = strings.Join(r.Accepted, ", ")
	}
	msg := fmt.Sprintf("Files added: %s (%d total)", names, r.Total)
	if len(r.Failed) > 0 {
		failed := make([]string, len(r.Failed))
		for i, f := range r.Failed {
			failed[i] = f.Name
		}
		msg += fmt.Sprintf("; could not read: %s", strings.Join(failed, ", "))
	}
	return msg
}

// Merge joins the trimmed, non-empty contents in batch order, separated by a
// blank line. Failed reads contribute nothing. The input may be in any order.
func Merge(results []types.FileReadResult) (string, []string) {
	var parts []string
	var names []string
	for _, res := range byIndex(results) {
		if res.Failed() {
			continue
		}
		text := strings.TrimSpace(res.Content)
		if text == "" {
			continue
		}
		parts = append(parts, text)
		names = append(names, res.Name)
	}

	return strings.Join(parts, buffer.Separator), names
}

// Pipeline reads batches and merges them into a buffer
type Pipeline struct {
	reader *Reader
	buf    *buffer.Buffer
	logger *logrus.Entry
}

// NewPipeline creates a pipeline writing into buf
func NewPipeline(reader *Reader, buf *buffer.Buffer, logger *logrus.Entry) *Pipeline {
	if reader == nil {
		reader = NewReader(Options{Logger: logger})
	}
	if logger == nil {
		logger = logrus.WithField("component", "ingest")
	}
	return &Pipeline{reader: reader, buf: buf, logger: logger}
}

// Read performs the concurrent reads without touching the buffer
func (p *Pipeline) Read(ctx context.Context, sources []Source) []types.FileReadResult {
	return p.reader.Read(ctx, sources)
}

// Commit merges a completed batch into the buffer
func (p *Pipeline) Commit(results []types.FileReadResult) Report {
	merged, names := Merge(results)

	var report Report
	report.Accepted = names
	for _, res := range byIndex(results) {
		switch {
		case res.Failed():
			report.Failed = append(report.Failed, FileError{Name: res.Name, Err: res.Err})
		case res.Empty():
			report.Skipped = append(report.Skipped, res.Name)
		}
	}

	report.Total = p.buf.Append(merged, names)

	p.logger.WithFields(logrus.Fields{
		"accepted": len(report.Accepted),
		"skipped":  len(report.Skipped),
		"failed":   len(report.Failed),
		"total":    report.Total,
	}).Info("batch merged")

	return report
}

// Ingest reads a batch and merges it into the buffer
func (p *Pipeline) Ingest(ctx context.Context, sources []Source) Report {
	return p.Commit(p.Read(ctx, sources))
}

// byIndex returns a copy of results sorted by batch index
func byIndex(results []types.FileReadResult) []types.FileReadResult {
	ordered := make([]types.FileReadResult, len(results))
	copy(ordered, results)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Index < ordered[j].Index
	})
	return ordered
}
