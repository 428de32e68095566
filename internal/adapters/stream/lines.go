// Package stream cleans newline-delimited text streams, one tweet per line.
package stream

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/baditaflorin/go_cyberbullying/internal/core/cleaning"
	"github.com/baditaflorin/go_cyberbullying/internal/ports"
)

const (
	// DefaultBatchSize is the number of lines handed to a worker at once.
	DefaultBatchSize = 100

	// DefaultMaxLineSize bounds a single input line.
	DefaultMaxLineSize = 1024 * 1024

	// ContextCheckFrequency is how often, in lines, the sequential path checks for cancellation.
	ContextCheckFrequency = 500

	// MaxJobQueueSize limits the number of pending batches.
	MaxJobQueueSize = 32
)

// Config controls line processing.
type Config struct {
	BatchSize   int
	Workers     int
	Parallel    bool
	MaxLineSize int
}

// Stats summarizes a processed stream.
type Stats struct {
	Lines        int
	Placeholders int
	BytesRead    int64
	Duration     time.Duration
}

// LineCleaner reads text line by line, cleans each line and writes one output
// line per input line, in input order.
type LineCleaner struct {
	normalizer ports.Normalizer
	logger     ports.Logger
	config     Config
}

// NewLineCleaner creates a line cleaner.
func NewLineCleaner(normalizer ports.Normalizer, logger ports.Logger, config Config) (*LineCleaner, error) {
	if normalizer == nil {
		return nil, errors.New("normalizer is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultBatchSize
	}
	if config.Workers <= 0 {
		config.Workers = runtime.NumCPU()
	}
	if config.MaxLineSize <= 0 {
		config.MaxLineSize = DefaultMaxLineSize
	}
	return &LineCleaner{normalizer: normalizer, logger: logger, config: config}, nil
}

// cleanLine cleans one line and reports whether it became the placeholder.
func (c *LineCleaner) cleanLine(line string) (string, bool) {
	cleaned := c.normalizer.Normalize(line)
	if cleaned == "" {
		return cleaning.Placeholder, true
	}
	return cleaned, false
}

// countingReader counts the bytes read through it.
type countingReader struct {
	r io.Reader
	n int64
}

func (cr *countingReader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	cr.n += int64(n)
	return n, err
}

func (c *LineCleaner) newScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	initial := 64 * 1024
	if c.config.MaxLineSize < initial {
		initial = c.config.MaxLineSize
	}
	scanner.Buffer(make([]byte, 0, initial), c.config.MaxLineSize)
	return scanner
}

// CleanLines cleans every line of r and writes the results to w.
func (c *LineCleaner) CleanLines(ctx context.Context, r io.Reader, w io.Writer) (Stats, error) {
	start := time.Now()
	counter := &countingReader{r: r}
	out := bufio.NewWriter(w)

	var (
		stats Stats
		err   error
	)
	if c.config.Parallel && c.config.Workers > 1 {
		stats, err = c.cleanParallel(ctx, counter, out)
	} else {
		stats, err = c.cleanSequential(ctx, counter, out)
	}
	if flushErr := out.Flush(); err == nil && flushErr != nil {
		err = fmt.Errorf("flush output: %w", flushErr)
	}

	stats.BytesRead = counter.n
	stats.Duration = time.Since(start)
	if err != nil {
		c.logger.Error("Line cleaning failed", "lines", stats.Lines, "error", err)
		return stats, err
	}

	c.logger.Debug("Line cleaning completed",
		"lines", stats.Lines,
		"placeholders", stats.Placeholders,
		"bytes_read", stats.BytesRead,
		"parallel", c.config.Parallel,
		"duration", stats.Duration,
	)
	return stats, nil
}

func (c *LineCleaner) cleanSequential(ctx context.Context, r io.Reader, w *bufio.Writer) (Stats, error) {
	var stats Stats
	scanner := c.newScanner(r)

	for scanner.Scan() {
		if stats.Lines%ContextCheckFrequency == 0 {
			if err := ctx.Err(); err != nil {
				c.logger.Warn("Processing cancelled by context", "error", err)
				return stats, err
			}
		}

		cleaned, placeholder := c.cleanLine(strings.TrimSuffix(scanner.Text(), "\r"))
		if placeholder {
			stats.Placeholders++
		}
		if _, err := w.WriteString(cleaned + "\n"); err != nil {
			return stats, fmt.Errorf("write line %d: %w", stats.Lines+1, err)
		}
		stats.Lines++
	}
	if err := scanner.Err(); err != nil {
		return stats, fmt.Errorf("read input: %w", err)
	}
	return stats, nil
}

// lineJob is a batch of consecutive lines.
type lineJob struct {
	id    int
	lines []string
}

// lineJobResult is a cleaned batch.
type lineJobResult struct {
	id           int
	lines        []string
	placeholders int
}

func (c *LineCleaner) cleanParallel(parent context.Context, r io.Reader, w *bufio.Writer) (Stats, error) {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	jobs := make(chan lineJob, MaxJobQueueSize)
	results := make(chan lineJobResult, c.config.Workers)
	readErr := make(chan error, 1)

	var wg sync.WaitGroup
	for i := 0; i < c.config.Workers; i++ {
		wg.Add(1)
		go c.lineWorker(ctx, jobs, results, &wg)
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	go func() {
		defer close(jobs)
		readErr <- c.readBatches(ctx, r, jobs)
	}()

	// Results arrive out of order; buffer them until the next expected batch is present.
	var (
		stats    Stats
		writeErr error
	)
	pending := make(map[int]lineJobResult)
	next := 0
	for result := range results {
		if writeErr != nil {
			continue
		}
		pending[result.id] = result
		for {
			ready, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			next++

			for _, line := range ready.lines {
				if _, err := w.WriteString(line + "\n"); err != nil {
					writeErr = fmt.Errorf("write line %d: %w", stats.Lines+1, err)
					cancel()
					break
				}
				stats.Lines++
			}
			stats.Placeholders += ready.placeholders
			if writeErr != nil {
				break
			}
		}
	}

	if writeErr != nil {
		return stats, writeErr
	}
	if err := <-readErr; err != nil {
		return stats, err
	}
	return stats, parent.Err()
}

// readBatches splits r into batches of lines and sends them to jobs.
func (c *LineCleaner) readBatches(ctx context.Context, r io.Reader, jobs chan<- lineJob) error {
	scanner := c.newScanner(r)
	batch := make([]string, 0, c.config.BatchSize)
	id := 0

	send := func() error {
		if len(batch) == 0 {
			return nil
		}
		select {
		case jobs <- lineJob{id: id, lines: batch}:
			id++
			batch = make([]string, 0, c.config.BatchSize)
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	for scanner.Scan() {
		batch = append(batch, strings.TrimSuffix(scanner.Text(), "\r"))
		if len(batch) >= c.config.BatchSize {
			if err := send(); err != nil {
				return err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	return send()
}

func (c *LineCleaner) lineWorker(ctx context.Context, jobs <-chan lineJob, results chan<- lineJobResult, wg *sync.WaitGroup) {
	defer wg.Done()

	for job := range jobs {
		if ctx.Err() != nil {
			continue
		}
		result := lineJobResult{id: job.id, lines: make([]string, len(job.lines))}
		for i, line := range job.lines {
			cleaned, placeholder := c.cleanLine(line)
			if placeholder {
				result.placeholders++
			}
			result.lines[i] = cleaned
		}
		results <- result
	}
}
