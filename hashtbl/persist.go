package hashtbl

import (
	"encoding/binary"
	"errors"
	"os"

	"github.com/zeebo/errs/v2"

	"github.com/qrtrack/qrtrack/filesystem"
	"github.com/qrtrack/qrtrack/rwutils"
)

var le = binary.LittleEndian

// Open loads the table stored at opts.Path, or returns an empty table if no
// file exists there yet. Nothing is written until the first mutation.
func Open[K Item[K], RWK RWItem[K]](fs *filesystem.T, opts Options) (*T[K, RWK], error) {
	if opts.Capacity <= 0 {
		return nil, errs.Errorf("invalid capacity: %d", opts.Capacity)
	} else if opts.Path == "" {
		return nil, errs.Errorf("empty path")
	}

	t := &T[K, RWK]{
		fs:   fs,
		opts: opts,
	}

	// slots are allocated only after the file's header agrees with opts
	data, err := fs.ReadFile(opts.Path)
	if errors.Is(err, os.ErrNotExist) {
		t.slots = make([]slot[K], opts.Capacity)
		return t, nil
	} else if err != nil {
		return nil, &IOError{Op: "load", Path: fs.Child(opts.Path), Err: err}
	}

	if err := t.decode(data); err != nil {
		return nil, &CodecError{Path: fs.Child(opts.Path), Err: err}
	}

	return t, nil
}

// Stat reads the header of the snapshot at path after verifying its
// checksum.
func Stat(fs *filesystem.T, path string) (Info, error) {
	data, err := fs.ReadFile(path)
	if err != nil {
		return Info{}, &IOError{Op: "stat", Path: fs.Child(path), Err: err}
	}

	body, err := checkSum(data)
	if err != nil {
		return Info{}, &CodecError{Path: fs.Child(path), Err: err}
	}

	var r rwutils.R
	r.Init(body)
	info := readHeader(&r)
	if err := r.Err(); err != nil {
		return Info{}, &CodecError{Path: fs.Child(path), Err: err}
	}
	info.Size = len(data)

	return info, nil
}

// save rewrites the whole backing file.
func (t *T[K, RWK]) save() error {
	data, err := t.encode()
	if err != nil {
		return &CodecError{Path: t.fs.Child(t.opts.Path), Err: err}
	}

	if t.opts.AtomicSave {
		err = t.fs.Replace(t.opts.Path, data)
	} else {
		err = t.fs.WriteFile(t.opts.Path, data)
	}
	if err != nil {
		return &IOError{Op: "save", Path: t.fs.Child(t.opts.Path), Err: err}
	}

	t.saves++
	return nil
}
