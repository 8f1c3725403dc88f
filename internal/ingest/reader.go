package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync/atomic"

	"github.com/sirupsen/logrus"
	"github.com/studiowebux/policyctl/internal/types"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultConcurrency bounds simultaneous file reads
	DefaultConcurrency = 8
	// DefaultMaxFileSize is the largest file accepted (10 MiB)
	DefaultMaxFileSize int64 = 10 << 20
)

// ErrFileTooLarge is returned for a file above the configured size limit
var ErrFileTooLarge = errors.New("file exceeds size limit")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Options configures a Reader
type Options struct {
	Concurrency int
	MaxFileSize int64
	Logger      *logrus.Entry
}

// Reader reads the files of a batch concurrently
type Reader struct {
	concurrency int
	maxFileSize int64
	logger      *logrus.Entry
}

// NewReader creates a Reader, filling unset options with defaults
func NewReader(opts Options) *Reader {
	r := &Reader{
		concurrency: opts.Concurrency,
		maxFileSize: opts.MaxFileSize,
		logger:      opts.Logger,
	}
	if r.concurrency <= 0 {
		r.concurrency = DefaultConcurrency
	}
	if r.maxFileSize <= 0 {
		r.maxFileSize = DefaultMaxFileSize
	}
	if r.logger == nil {
		r.logger = logrus.WithField("component", "ingest")
	}
	return r
}

// Read reads every source and returns one result per source at its batch
// index. It returns only after all reads have completed; a failed read is
// reported in its result and never stops the others.
func (r *Reader) Read(ctx context.Context, sources []Source) []types.FileReadResult {
	results := make([]types.FileReadResult, len(sources))
	if len(sources) == 0 {
		return results
	}

	var completed atomic.Int64
	total := int64(len(sources))

	var g errgroup.Group
	g.SetLimit(r.concurrency)
	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			content, err := r.readOne(ctx, src)
			results[i] = types.FileReadResult{
				Index:   i,
				Name:    src.Name(),
				Content: content,
				Err:     err,
			}

			done := completed.Add(1)
			entry := r.logger.WithFields(logrus.Fields{
				"file":      src.Name(),
				"index":     i,
				"completed": done,
				"total":     total,
			})
			if err != nil {
				entry.WithError(err).Warn("file read failed")
			} else {
				entry.Debug("file read")
			}
			// never abort the batch
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// readOne reads and decodes a single source as text
func (r *Reader) readOne(ctx context.Context, src Source) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	rc, err := src.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", src.Name(), err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, r.maxFileSize+1))
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", src.Name(), err)
	}
	if int64(len(data)) > r.maxFileSize {
		return "", fmt.Errorf("%s: %w (%d bytes)", src.Name(), ErrFileTooLarge, r.maxFileSize)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	return decodeText(data), nil
}

// decodeText drops a UTF-8 byte order mark and replaces invalid sequences
func decodeText(data []byte) string {
	data = bytes.TrimPrefix(data, utf8BOM)
	return strings.ToValidUTF8(string(data), "�")
}
