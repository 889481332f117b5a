// Package mempool keeps sized pools of encode buffers so repeated image
// encoding does not grow a fresh buffer for every picture. Callers keep a
// buffer for as long as its bytes are referenced and return it afterwards.
package mempool

import (
	"bytes"
	"sync"
)

const (
	// step is the size class granularity.
	step = 64 * 1024
	// maxPooled caps what is kept; larger buffers are left to the GC.
	maxPooled = 16 * 1024 * 1024
)

var bufferPools sync.Map // key: size class (int), value: *sync.Pool

// sizeClass rounds n up to the next multiple of step, with step as the minimum.
func sizeClass(n int) int {
	if n <= step {
		return step
	}
	r := (n + step - 1) / step
	return r * step
}

func poolFor(cls int) *sync.Pool {
	pAny, _ := bufferPools.LoadOrStore(cls, &sync.Pool{New: func() any {
		return bytes.NewBuffer(make([]byte, 0, cls))
	}})
	p, ok := pAny.(*sync.Pool)
	if !ok {
		return nil
	}
	return p
}

// GetBuffer returns an empty buffer with room for at least sizeHint bytes.
// The caller must return it via PutBuffer and must not keep references to
// its bytes afterwards.
func GetBuffer(sizeHint int) *bytes.Buffer {
	cls := sizeClass(sizeHint)
	p := poolFor(cls)
	if p == nil {
		return bytes.NewBuffer(make([]byte, 0, cls))
	}
	buf, ok := p.Get().(*bytes.Buffer)
	if !ok {
		buf = bytes.NewBuffer(make([]byte, 0, cls))
	}
	buf.Reset()
	if buf.Cap() < cls {
		buf.Grow(cls)
	}
	return buf
}

// PutBuffer returns a buffer to the pool. It is safe to pass nil.
func PutBuffer(buf *bytes.Buffer) {
	if buf == nil || buf.Cap() > maxPooled {
		return
	}
	// Pool by the class the capacity fully covers so GetBuffer never hands
	// out less than it promised.
	cls := (buf.Cap() / step) * step
	if cls < step {
		return
	}
	p := poolFor(cls)
	if p == nil {
		return
	}
	buf.Reset()
	p.Put(buf)
}
