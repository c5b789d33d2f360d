package file

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/crimson-sun/phishlens/internal/model"
	"github.com/crimson-sun/phishlens/internal/output"
)

const (
	defaultBufSize    = 64 * 1024
	defaultMaxBackups = 5
)

// Option configures a file Output.
type Option func(*Output)

// WithMaxSize sets the file size (bytes) at which the file is rotated.
// 0 (default) disables rotation.
func WithMaxSize(bytes int64) Option {
	return func(o *Output) { o.maxSize = bytes }
}

// WithMaxBackups sets how many rotated files ({path}.1 … {path}.n) are kept.
func WithMaxBackups(n int) Option {
	return func(o *Output) { o.maxBackups = n }
}

// WithTruncate starts from an empty file instead of appending.
func WithTruncate() Option {
	return func(o *Output) { o.truncate = true }
}

// Output appends predictions as NDJSON to a file.
type Output struct {
	mu         sync.Mutex
	w          *bufio.Writer
	f          *os.File
	path       string
	verbosity  output.Verbosity
	maxSize    int64
	maxBackups int
	truncate   bool
	written    int64
}

// New opens path for NDJSON output.
func New(path string, verbosity output.Verbosity, opts ...Option) (*Output, error) {
	o := &Output{
		path:       path,
		verbosity:  verbosity,
		maxBackups: defaultMaxBackups,
	}
	for _, opt := range opts {
		opt(o)
	}
	flags := os.O_CREATE | os.O_WRONLY | os.O_APPEND
	if o.truncate {
		flags |= os.O_TRUNC
	}
	if err := o.open(flags); err != nil {
		return nil, err
	}
	return o, nil
}

// Write appends one prediction line.
func (o *Output) Write(_ context.Context, p model.Prediction) error {
	data, err := json.Marshal(output.FormatPrediction(p, o.verbosity))
	if err != nil {
		return fmt.Errorf("file output: marshal: %w", err)
	}
	data = append(data, '\n')

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.maxSize > 0 && o.written > 0 && o.written+int64(len(data)) > o.maxSize {
		if err := o.rotate(); err != nil {
			return fmt.Errorf("file output: rotate: %w", err)
		}
	}

	n, err := o.w.Write(data)
	o.written += int64(n)
	if err != nil {
		return fmt.Errorf("file output: write: %w", err)
	}
	return nil
}

// Close flushes buffered lines and closes the file.
func (o *Output) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err := o.w.Flush(); err != nil {
		o.f.Close()
		return fmt.Errorf("file output: flush: %w", err)
	}
	return o.f.Close()
}

func (o *Output) open(flags int) error {
	f, err := os.OpenFile(o.path, flags, 0o644)
	if err != nil {
		return fmt.Errorf("file output: open %s: %w", o.path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("file output: stat %s: %w", o.path, err)
	}
	o.f = f
	o.w = bufio.NewWriterSize(f, defaultBufSize)
	o.written = info.Size()
	return nil
}

// rotate moves the current file to {path}.1, shifting older backups up and
// dropping the oldest, then reopens an empty file.
func (o *Output) rotate() error {
	if err := o.w.Flush(); err != nil {
		return err
	}
	if err := o.f.Close(); err != nil {
		return err
	}

	if o.maxBackups > 0 {
		os.Remove(fmt.Sprintf("%s.%d", o.path, o.maxBackups))
		for i := o.maxBackups - 1; i >= 1; i-- {
			// Missing backups are expected until the set fills up.
			os.Rename(fmt.Sprintf("%s.%d", o.path, i), fmt.Sprintf("%s.%d", o.path, i+1))
		}
		if err := os.Rename(o.path, o.path+".1"); err != nil {
			return err
		}
	}

	return o.open(os.O_CREATE | os.O_WRONLY | os.O_TRUNC)
}
