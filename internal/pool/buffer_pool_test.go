package pool

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBufferPoolReset(t *testing.T) {
	bp := NewBufferPool(16)

	buf := bp.Get()
	*buf = append(*buf, "hello"...)
	bp.Put(buf)

	assert.Empty(t, *bp.Get())
}

func TestBufferPoolDropsOversized(t *testing.T) {
	bp := NewBufferPool(1)

	buf := bp.Get()
	*buf = append(*buf, make([]byte, 1000)...)
	bp.Put(buf)

	assert.LessOrEqual(t, cap(*bp.Get()), maxRetainFactor)
}

func TestTextBuilder(t *testing.T) {
	tp := NewTextBuilderPool(8)

	tb := tp.Get()
	tb.WriteString("ab")
	tb.WriteRune('c')
	tb.WriteRune('é')
	assert.Equal(t, "abcé", tb.String())
	assert.Equal(t, 5, tb.Len())

	grown := cap(tb.buf)
	tb.Reset()
	assert.Equal(t, "", tb.String())
	assert.Equal(t, grown, cap(tb.buf), "reset keeps capacity")

	tp.Put(tb)
	assert.Equal(t, 0, tp.Get().Len())
}
