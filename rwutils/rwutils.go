package rwutils

import (
	"encoding/binary"
	"io"

	"github.com/zeebo/errs/v2"

	"github.com/qrtrack/qrtrack/varint"
)

var le = binary.LittleEndian

type RW interface {
	AppendTo(w *W)
	ReadFrom(r *R)
}

//
// writer
//

type W struct {
	buf []byte
	err error
	w   io.Writer
	n   int64
}

func (w *W) Init(wr io.Writer, buf []byte) {
	if cap(buf) < 64 {
		buf = make([]byte, 0, 4096)
	}
	*w = W{
		buf: buf[:0],
		w:   wr,
	}
}

// Done flushes any buffered bytes and returns the first error encountered.
func (w *W) Done() error {
	w.flush()
	return w.err
}

// Written returns the number of bytes handed to W so far.
func (w *W) Written() int64 { return w.n }

func (w *W) reserve(n int) {
	if len(w.buf)+n > cap(w.buf) {
		w.flush()
	}
	w.n += int64(n)
}

func (w *W) Uint64(x uint64) {
	w.reserve(8)
	w.buf = le.AppendUint64(w.buf, x)
}

func (w *W) Uint32(x uint32) {
	w.reserve(4)
	w.buf = le.AppendUint32(w.buf, x)
}

func (w *W) Uint16(x uint16) {
	w.reserve(2)
	w.buf = le.AppendUint16(w.buf, x)
}

func (w *W) Uint8(x uint8) {
	w.reserve(1)
	w.buf = append(w.buf, x)
}

func (w *W) Varint(x uint64) {
	w.reserve(varint.Len(x))
	w.buf = varint.Append(w.buf, x)
}

func (w *W) Bytes(buf []byte) {
	if len(w.buf)+len(buf) > cap(w.buf) {
		w.flush()
		if len(buf) > cap(w.buf) {
			if w.err == nil {
				_, w.err = w.w.Write(buf)
				w.err = errs.Wrap(w.err)
			}
			w.n += int64(len(buf))
			return
		}
	}
	w.n += int64(len(buf))
	w.buf = append(w.buf, buf...)
}

// Str writes a varint length followed by the bytes of s.
func (w *W) Str(s string) {
	w.Varint(uint64(len(s)))
	w.Bytes([]byte(s))
}

//go:noinline
func (w *W) flush() {
	if w.err == nil && len(w.buf) > 0 {
		_, w.err = w.w.Write(w.buf)
		w.err = errs.Wrap(w.err)
	}
	w.buf = w.buf[:0]
}

//
// reader
//

type R struct {
	buf []byte
	err error
}

func (r *R) Init(buf []byte) {
	*r = R{
		buf: buf,
	}
}

// Done returns the unread suffix and the first error encountered.
func (r *R) Done() ([]byte, error) {
	return r.buf, r.err
}

func (r *R) Err() error { return r.err }

func (r *R) Remaining() int { return len(r.buf) }

func (r *R) Uint64() (x uint64) {
	if r.err == nil {
		if len(r.buf) >= 8 {
			x = le.Uint64(r.buf)
			r.buf = r.buf[8:]
		} else {
			r.bad(8)
		}
	}
	return
}

func (r *R) Uint32() (x uint32) {
	if r.err == nil {
		if len(r.buf) >= 4 {
			x = le.Uint32(r.buf)
			r.buf = r.buf[4:]
		} else {
			r.bad(4)
		}
	}
	return
}

func (r *R) Uint16() (x uint16) {
	if r.err == nil {
		if len(r.buf) >= 2 {
			x = le.Uint16(r.buf)
			r.buf = r.buf[2:]
		} else {
			r.bad(2)
		}
	}
	return
}

func (r *R) Uint8() (x uint8) {
	if r.err == nil {
		if len(r.buf) >= 1 {
			x = r.buf[0]
			r.buf = r.buf[1:]
		} else {
			r.bad(1)
		}
	}
	return
}

func (r *R) Varint() (x uint64) {
	if r.err == nil {
		var ok bool
		x, r.buf, ok = varint.Consume(r.buf)
		if !ok {
			r.bad(varint.MaxLen)
		}
	}
	return
}

// Bytes returns the next n bytes. The result aliases the input buffer.
func (r *R) Bytes(n int) (x []byte) {
	if r.err == nil {
		if n >= 0 && len(r.buf) >= n {
			x = r.buf[:n:n]
			r.buf = r.buf[n:]
		} else {
			r.bad(n)
		}
	}
	return
}

func (r *R) Str() string {
	n := r.Varint()
	if r.err != nil {
		return ""
	}
	if n > uint64(len(r.buf)) {
		r.bad(int(min(n, 1<<31)))
		return ""
	}
	return string(r.Bytes(int(n)))
}

// Invalid records a decoding error found by a caller, such as an
// unexpected tag value. Only the first error is kept.
func (r *R) Invalid(format string, args ...any) {
	if r.err == nil {
		r.err = errs.Errorf(format, args...)
		r.buf = nil
	}
}

func (r *R) bad(n int) {
	r.err = errs.Errorf("short buffer: needed %d bytes", n)
	r.buf = nil
}
