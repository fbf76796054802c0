package filesystem

import (
	"io"
	"os"

	"github.com/zeebo/errs/v2"
)

// H is an open file. Every error it returns is wrapped, except io.EOF.
type H struct {
	_ [0]func() // no equality

	fh *os.File
}

func wrap(err error) error {
	if err != nil && err != io.EOF {
		return errs.Wrap(err)
	}
	return err
}

func (h H) Valid() bool { return h.fh != nil }

func (h H) Close() (err error) {
	if !h.Valid() {
		return nil
	}
	return wrap(h.fh.Close())
}

func (h H) Read(p []byte) (n int, err error) {
	n, err = h.fh.Read(p)
	return n, wrap(err)
}

func (h H) Write(p []byte) (n int, err error) {
	n, err = h.fh.Write(p)
	return n, wrap(err)
}

// Commit writes data, flushes it to stable storage when sync is set, and
// closes the handle. The handle is closed even if a step fails, and every
// failure is reported.
func (h H) Commit(data []byte, sync bool) (err error) {
	if _, err = h.Write(data); err == nil && sync {
		err = wrap(h.fh.Sync())
	}
	return errs.Combine(err, h.Close())
}
