// File: pipe/pipe.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Blocking in-process pipe over a mirrored ring. The ring is single-producer
// single-consumer, so the halves copy in and out of it without holding the
// pipe lock; the lock only guards the close state and the wakeups.

package pipe

import (
	"io"
	"sync"

	"github.com/momentics/hioload-ring/ring"
)

var (
	_ io.ReadCloser   = (*Reader)(nil)
	_ io.WriterTo     = (*Reader)(nil)
	_ io.WriteCloser  = (*Writer)(nil)
	_ io.ReaderFrom   = (*Writer)(nil)
	_ io.StringWriter = (*Writer)(nil)
)

type pipe struct {
	rb *ring.Buffer

	mu       sync.Mutex
	readable sync.Cond
	writable sync.Cond

	rdMu sync.Mutex // serializes the reader half
	wrMu sync.Mutex // serializes the writer half

	readerClosed bool
	writerClosed bool
	rerr         error // returned to readers once the ring is drained
	werr         error // returned to writers
}

// New returns the two halves of a pipe buffered by rb. The pipe does not
// take ownership of rb; close it after both halves are done.
func New(rb *ring.Buffer) (*Reader, *Writer) {
	p := &pipe{rb: rb}
	p.readable.L = &p.mu
	p.writable.L = &p.mu
	return &Reader{p}, &Writer{p}
}

// waitReadable blocks until there is data or the pipe is closed and
// returns the buffered span.
func (p *pipe) waitReadable() ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for {
		if p.readerClosed {
			return nil, io.ErrClosedPipe
		}
		if span := p.rb.ReadHead(); len(span) > 0 {
			return span, nil
		}
		if p.writerClosed {
			return nil, p.rerr
		}
		p.readable.Wait()
	}
}

// waitWritable blocks until there is room or the pipe is closed and
// returns the free span.
func (p *pipe) waitWritable() ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for {
		if p.writerClosed {
			return nil, io.ErrClosedPipe
		}
		if p.readerClosed {
			return nil, p.werr
		}
		if span := p.rb.WriteHead(); len(span) > 0 {
			return span, nil
		}
		p.writable.Wait()
	}
}

func (p *pipe) consume(n int) {
	if n == 0 {
		return
	}
	p.mu.Lock()
	p.rb.Consume(n)
	p.writable.Signal()
	p.mu.Unlock()
}

func (p *pipe) commit(n int) {
	if n == 0 {
		return
	}
	p.mu.Lock()
	p.rb.Commit(n)
	p.readable.Signal()
	p.mu.Unlock()
}

func (p *pipe) read(b []byte) (int, error) {
	if len(b) == 0 {
		return 0, nil
	}
	p.rdMu.Lock()
	defer p.rdMu.Unlock()
	span, err := p.waitReadable()
	if err != nil {
		return 0, err
	}
	n := copy(b, span)
	p.consume(n)
	return n, nil
}

func (p *pipe) write(b []byte) (int, error) {
	p.wrMu.Lock()
	defer p.wrMu.Unlock()
	n := 0
	for len(b) > 0 {
		span, err := p.waitWritable()
		if err != nil {
			return n, err
		}
		m := copy(span, b)
		p.commit(m)
		b = b[m:]
		n += m
	}
	return n, nil
}

func (p *pipe) closeRead(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.readerClosed {
		return
	}
	if err == nil {
		err = io.ErrClosedPipe
	}
	p.readerClosed = true
	p.werr = err
	p.readable.Broadcast()
	p.writable.Broadcast()
}

func (p *pipe) closeWrite(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.writerClosed {
		return
	}
	if err == nil {
		err = io.EOF
	}
	p.writerClosed = true
	p.rerr = err
	p.readable.Broadcast()
	p.writable.Broadcast()
}

// Reader is the read half of a pipe.
type Reader struct {
	p *pipe
}

// Read blocks until data is buffered or the writer closes. Data written
// before the writer closed is always delivered first.
func (r *Reader) Read(b []byte) (int, error) {
	return r.p.read(b)
}

// WriteTo hands buffered spans straight to w until the writer closes.
// A clean close ends the copy with a nil error.
func (r *Reader) WriteTo(w io.Writer) (int64, error) {
	p := r.p
	p.rdMu.Lock()
	defer p.rdMu.Unlock()
	var total int64
	for {
		span, err := p.waitReadable()
		if err == io.EOF {
			return total, nil
		}
		if err != nil {
			return total, err
		}
		n, err := w.Write(span)
		if n < 0 || n > len(span) {
			n = 0
			if err == nil {
				err = io.ErrShortWrite
			}
		}
		p.consume(n)
		total += int64(n)
		if err == nil && n < len(span) {
			err = io.ErrShortWrite
		}
		if err != nil {
			return total, err
		}
	}
}

// Close closes the reader. Pending and later writes fail with
// io.ErrClosedPipe.
func (r *Reader) Close() error {
	r.p.closeRead(nil)
	return nil
}

// CloseWithError closes the reader; writes return err, or io.ErrClosedPipe
// when err is nil. Only the first close sets the error.
func (r *Reader) CloseWithError(err error) error {
	r.p.closeRead(err)
	return nil
}

// Writer is the write half of a pipe.
type Writer struct {
	p *pipe
}

// Write blocks until all of b is buffered or the reader closes.
func (w *Writer) Write(b []byte) (int, error) {
	return w.p.write(b)
}

// WriteString is like Write for strings.
func (w *Writer) WriteString(s string) (int, error) {
	return w.p.write([]byte(s))
}

// ReadFrom reads from src directly into the free span of the ring until
// io.EOF, which is not reported as an error.
func (w *Writer) ReadFrom(src io.Reader) (int64, error) {
	p := w.p
	p.wrMu.Lock()
	defer p.wrMu.Unlock()
	var total int64
	for {
		span, err := p.waitWritable()
		if err != nil {
			return total, err
		}
		n, err := src.Read(span)
		if n < 0 || n > len(span) {
			n = 0
			if err == nil {
				err = io.ErrUnexpectedEOF
			}
		}
		p.commit(n)
		total += int64(n)
		if err == io.EOF {
			return total, nil
		}
		if err != nil {
			return total, err
		}
	}
}

// Close closes the writer. The reader drains what is buffered and then
// gets io.EOF.
func (w *Writer) Close() error {
	w.p.closeWrite(nil)
	return nil
}

// CloseWithError closes the writer; once the buffer is drained reads return
// err, or io.EOF when err is nil. Only the first close sets the error.
func (w *Writer) CloseWithError(err error) error {
	w.p.closeWrite(err)
	return nil
}
