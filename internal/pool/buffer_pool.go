// Package pool recycles the scratch buffers the cleaning stages build their
// output in.
package pool

import (
	"sync"
	"unicode/utf8"
)

// maxRetainFactor bounds how far past its initial size a buffer may grow and
// still be returned to a pool.
const maxRetainFactor = 64

// BufferPool hands out byte slices of at least size capacity.
type BufferPool struct {
	pool sync.Pool
	size int
}

// NewBufferPool creates a pool of byte slices with the given initial capacity.
func NewBufferPool(size int) *BufferPool {
	bp := &BufferPool{size: size}
	bp.pool.New = func() interface{} {
		buf := make([]byte, 0, size)
		return &buf
	}
	return bp
}

// Get returns an empty buffer.
func (bp *BufferPool) Get() *[]byte {
	return bp.pool.Get().(*[]byte)
}

// Put truncates buffer and recycles it. Buffers grown past
// maxRetainFactor times the pool size are dropped so one huge line does not
// pin memory.
func (bp *BufferPool) Put(buffer *[]byte) {
	if cap(*buffer) > maxRetainFactor*bp.size {
		return
	}
	*buffer = (*buffer)[:0]
	bp.pool.Put(buffer)
}

// TextBuilder accumulates text in a byte slice whose capacity survives Reset,
// unlike strings.Builder.
type TextBuilder struct {
	buf []byte
}

// WriteRune appends the UTF-8 encoding of r.
func (tb *TextBuilder) WriteRune(r rune) {
	tb.buf = utf8.AppendRune(tb.buf, r)
}

// WriteString appends s.
func (tb *TextBuilder) WriteString(s string) {
	tb.buf = append(tb.buf, s...)
}

// Len returns the number of bytes written.
func (tb *TextBuilder) Len() int {
	return len(tb.buf)
}

// String returns a copy of the accumulated text.
func (tb *TextBuilder) String() string {
	return string(tb.buf)
}

// Reset empties the builder and keeps its capacity.
func (tb *TextBuilder) Reset() {
	tb.buf = tb.buf[:0]
}

// TextBuilderPool recycles TextBuilders.
type TextBuilderPool struct {
	pool sync.Pool
	size int
}

// NewTextBuilderPool creates a pool of builders with the given initial capacity.
func NewTextBuilderPool(size int) *TextBuilderPool {
	tp := &TextBuilderPool{size: size}
	tp.pool.New = func() interface{} {
		return &TextBuilder{buf: make([]byte, 0, size)}
	}
	return tp
}

// Get returns an empty builder.
func (tp *TextBuilderPool) Get() *TextBuilder {
	return tp.pool.Get().(*TextBuilder)
}

// Put resets tb and recycles it, dropping oversized builders.
func (tp *TextBuilderPool) Put(tb *TextBuilder) {
	if cap(tb.buf) > maxRetainFactor*tp.size {
		return
	}
	tb.Reset()
	tp.pool.Put(tb)
}
