package stream

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baditaflorin/go_cyberbullying/internal/adapters/logger"
	"github.com/baditaflorin/go_cyberbullying/internal/adapters/normalizer"
	"github.com/baditaflorin/go_cyberbullying/internal/core/cleaning"
)

func newCleaner(t *testing.T, config Config) *LineCleaner {
	t.Helper()
	pipeline, err := normalizer.NewPipeline(cleaning.DefaultOptions(), logger.NewNopLogger())
	require.NoError(t, err)
	c, err := NewLineCleaner(pipeline, logger.NewNopLogger(), config)
	require.NoError(t, err)
	return c
}

func TestCleanLinesSequential(t *testing.T) {
	c := newCleaner(t, Config{})
	input := "RT @user1 I HATE you!!! 123\r\n\nstop stop please please please\n!!!"

	var out bytes.Buffer
	stats, err := c.CleanLines(context.Background(), strings.NewReader(input), &out)
	require.NoError(t, err)

	assert.Equal(t, "user hate\na\nstop please\na\n", out.String())
	assert.Equal(t, 4, stats.Lines)
	assert.Equal(t, 2, stats.Placeholders)
	assert.Equal(t, int64(len(input)), stats.BytesRead)
}

func TestCleanLinesParallelKeepsOrder(t *testing.T) {
	var input, want strings.Builder
	for i := 0; i < 1000; i++ {
		fmt.Fprintf(&input, "tweet %d number %d\n", i, i)
		want.WriteString("tweet number\n")
		if i%7 == 0 {
			input.WriteString("@someone 42\n")
			want.WriteString("a\n")
		}
	}

	sequential := newCleaner(t, Config{})
	parallel := newCleaner(t, Config{Parallel: true, Workers: 4, BatchSize: 9})

	var seqOut, parOut bytes.Buffer
	seqStats, err := sequential.CleanLines(context.Background(), strings.NewReader(input.String()), &seqOut)
	require.NoError(t, err)
	parStats, err := parallel.CleanLines(context.Background(), strings.NewReader(input.String()), &parOut)
	require.NoError(t, err)

	assert.Equal(t, want.String(), seqOut.String())
	assert.Equal(t, seqOut.String(), parOut.String())
	assert.Equal(t, seqStats.Lines, parStats.Lines)
	assert.Equal(t, seqStats.Placeholders, parStats.Placeholders)
}

func TestCleanLinesEmptyInput(t *testing.T) {
	for _, parallel := range []bool{false, true} {
		c := newCleaner(t, Config{Parallel: parallel, Workers: 2})
		var out bytes.Buffer
		stats, err := c.CleanLines(context.Background(), strings.NewReader(""), &out)
		require.NoError(t, err)
		assert.Zero(t, stats.Lines)
		assert.Empty(t, out.String())
	}
}

func TestCleanLinesCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, parallel := range []bool{false, true} {
		c := newCleaner(t, Config{Parallel: parallel, Workers: 2})
		_, err := c.CleanLines(ctx, strings.NewReader("one\ntwo\n"), &bytes.Buffer{})
		assert.ErrorIs(t, err, context.Canceled)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestCleanLinesWriteError(t *testing.T) {
	input := strings.Repeat("hello there\n", 10000)
	for _, parallel := range []bool{false, true} {
		c := newCleaner(t, Config{Parallel: parallel, Workers: 2})
		_, err := c.CleanLines(context.Background(), strings.NewReader(input), failingWriter{})
		assert.Error(t, err)
	}
}

func TestCleanLinesLineTooLong(t *testing.T) {
	c := newCleaner(t, Config{MaxLineSize: 16})
	_, err := c.CleanLines(context.Background(), strings.NewReader(strings.Repeat("x", 64)), &bytes.Buffer{})
	assert.Error(t, err)
}

func TestNewLineCleanerValidation(t *testing.T) {
	_, err := NewLineCleaner(nil, logger.NewNopLogger(), Config{})
	assert.Error(t, err)

	pipeline, err := normalizer.NewPipeline(cleaning.DefaultOptions(), logger.NewNopLogger())
	require.NoError(t, err)
	_, err = NewLineCleaner(pipeline, nil, Config{})
	assert.Error(t, err)
}
