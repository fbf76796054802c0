package filesystem

import (
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/zeebo/errs/v2"
)

// T resolves every path relative to Base.
type T struct {
	_ [0]func() // no equality

	Base string
}

func (t *T) Child(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(t.Base, path)
}

func (t *T) Create(path string) (fh H, err error) {
	path = t.Child(path)

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return H{}, errs.Wrap(err)
	}
	return H{fh: f}, nil
}

func (t *T) OpenRead(path string) (fh H, err error) {
	path = t.Child(path)

	f, err := os.Open(path)
	if err != nil {
		return H{}, errs.Wrap(err)
	}
	return H{fh: f}, nil
}

// ReadFile returns the full contents of path. A missing file is reported
// with an error matching os.ErrNotExist.
func (t *T) ReadFile(path string) (data []byte, err error) {
	fh, err := t.OpenRead(path)
	if err != nil {
		return nil, err
	}
	defer func() { err = errs.Combine(err, fh.Close()) }()

	data, err = io.ReadAll(fh)
	return data, errs.Wrap(err)
}

// WriteFile truncates path and writes data in place. A crash part way
// through can leave the file short.
func (t *T) WriteFile(path string, data []byte) error {
	fh, err := t.Create(path)
	if err != nil {
		return err
	}
	return fh.Commit(data, false)
}

// Replace writes data to a temporary file next to path, syncs it, and
// renames it over path, so path holds either the old or the new contents.
// The temporary file is removed if any step fails.
func (t *T) Replace(path string, data []byte) (err error) {
	tmp := path + ".tmp"

	fh, err := t.Create(tmp)
	if err != nil {
		return err
	}
	if err = fh.Commit(data, true); err == nil {
		err = t.Rename(tmp, path)
	}
	if err != nil {
		err = errs.Combine(err, t.Remove(tmp))
	}
	return err
}

func (t *T) Exists(path string) (bool, error) {
	_, err := os.Stat(t.Child(path))
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	} else if err != nil {
		return false, errs.Wrap(err)
	}
	return true, nil
}

func (t *T) Rename(old, new string) error {
	old = t.Child(old)
	new = t.Child(new)

	return errs.Wrap(os.Rename(old, new))
}

func (t *T) Remove(path string) error {
	path = t.Child(path)

	return errs.Wrap(os.Remove(path))
}

func (t *T) Mkdir(path string) (err error) {
	path = t.Child(path)

	return errs.Wrap(os.MkdirAll(path, 0755))
}
