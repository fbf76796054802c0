package hashtbl

import (
	"bytes"

	"github.com/zeebo/errs/v2"
	"github.com/zeebo/xxh3"

	"github.com/qrtrack/qrtrack/rwutils"
)

const (
	magic   = 0x42545251 // "QRTB"
	version = 1

	flagTombstones = 1 << 0

	headerSize = 4 + 4 + 4 + 8
	sumSize    = 8
)

// Info describes a snapshot file without decoding its items.
type Info struct {
	Version    uint32
	Capacity   int
	Tombstones bool
	Size       int
}

func (t *T[K, RWK]) flags() (flags uint32) {
	if t.opts.Tombstones {
		flags |= flagTombstones
	}
	return flags
}

// AppendTo writes the header and every slot in index order.
func (t *T[K, RWK]) AppendTo(w *rwutils.W) {
	w.Uint32(magic)
	w.Uint32(version)
	w.Uint32(t.flags())
	w.Uint64(uint64(len(t.slots)))

	for i := range t.slots {
		s := &t.slots[i]
		w.Uint8(s.s)
		if s.s == stateFull {
			RWK(&s.k).AppendTo(w)
		}
	}
}

// ReadFrom replaces the slots with the ones in r. The header must match the
// table's capacity and variant.
func (t *T[K, RWK]) ReadFrom(r *rwutils.R) {
	info := readHeader(r)
	if r.Err() != nil {
		return
	}
	if info.Capacity != t.opts.Capacity {
		r.Invalid("capacity mismatch: file has %d slots, table has %d", info.Capacity, t.opts.Capacity)
		return
	}
	if info.Tombstones != t.opts.Tombstones {
		r.Invalid("variant mismatch: file tombstones=%v, table tombstones=%v", info.Tombstones, t.opts.Tombstones)
		return
	}

	slots := make([]slot[K], info.Capacity)
	eles := 0
	for i := range slots {
		s := &slots[i]
		switch s.s = r.Uint8(); s.s {
		case stateEmpty:
		case stateFull:
			RWK(&s.k).ReadFrom(r)
			eles++
		case stateTomb:
			if !t.opts.Tombstones {
				r.Invalid("tombstone in slot %d", i)
			}
		default:
			r.Invalid("invalid slot state %d in slot %d", s.s, i)
		}
		if r.Err() != nil {
			return
		}
	}

	t.slots, t.eles = slots, eles
}

func readHeader(r *rwutils.R) (info Info) {
	if m := r.Uint32(); r.Err() == nil && m != magic {
		r.Invalid("invalid magic: %08x", m)
	}
	if info.Version = r.Uint32(); r.Err() == nil && info.Version != version {
		r.Invalid("unsupported version: %d", info.Version)
	}
	flags := r.Uint32()
	info.Tombstones = flags&flagTombstones != 0
	n := r.Uint64()
	if r.Err() != nil {
		return info
	}
	// every slot takes at least its state byte
	if rem := uint64(r.Remaining()); n == 0 || n > rem {
		r.Invalid("invalid capacity: %d slots in %d bytes", n, rem)
		return info
	}
	info.Capacity = int(n)
	return info
}

// encode returns the snapshot bytes: AppendTo output followed by its xxh3
// sum.
func (t *T[K, RWK]) encode() ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(headerSize + sumSize + 16*len(t.slots))

	var w rwutils.W
	w.Init(&buf, nil)
	t.AppendTo(&w)
	w.Uint64(0) // sum placeholder
	if err := w.Done(); err != nil {
		return nil, err
	}

	data := buf.Bytes()
	body := data[:len(data)-sumSize]
	le.PutUint64(data[len(body):], xxh3.Hash(body))
	return data, nil
}

func checkSum(data []byte) ([]byte, error) {
	if len(data) < headerSize+sumSize {
		return nil, errs.Errorf("short file: %d bytes", len(data))
	}
	body := data[:len(data)-sumSize]
	if got, exp := xxh3.Hash(body), le.Uint64(data[len(body):]); got != exp {
		return nil, errs.Errorf("checksum mismatch: %016x != %016x", got, exp)
	}
	return body, nil
}

func (t *T[K, RWK]) decode(data []byte) error {
	body, err := checkSum(data)
	if err != nil {
		return err
	}

	var r rwutils.R
	r.Init(body)
	t.ReadFrom(&r)

	rem, err := r.Done()
	if err != nil {
		return err
	} else if len(rem) > 0 {
		return errs.Errorf("%d trailing bytes", len(rem))
	}
	return nil
}
