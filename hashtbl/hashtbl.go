// Package hashtbl implements a fixed capacity, linear probing hash table
// whose whole slot array is written to a single file after every mutation.
//
// The table never grows. By default deletion clears slots outright, which
// can cut the probe chain of an item that was displaced past the cleared
// slot: later searches for that item stop early and report it missing even
// though it is still stored. Options.Tombstones selects a variant that marks
// deleted slots instead and keeps those chains intact.
package hashtbl

import (
	"github.com/RoaringBitmap/roaring/v2"

	"github.com/qrtrack/qrtrack/filesystem"
	"github.com/qrtrack/qrtrack/rwutils"
)

// Item is the contract for values stored in a table. Digest must be
// deterministic across process restarts since home slots are recomputed
// from it after a load.
type Item[K any] interface {
	Digest() uint64
	Equal(K) bool
}

type RWItem[K any] interface {
	*K
	rwutils.RW
}

const (
	stateEmpty = 0
	stateFull  = 1
	stateTomb  = 2
)

type slot[K any] struct {
	k K
	s uint8
}

// Status is the outcome of an Insert.
type Status uint8

const (
	_ Status = iota

	// Stored means the item was written to Result.Pos.
	Stored

	// Exists means an equal item is already in the table.
	Exists

	// NoSpace means a full pass over the table found no free slot.
	NoSpace
)

func (s Status) String() string {
	switch s {
	case Stored:
		return "stored"
	case Exists:
		return "exists"
	case NoSpace:
		return "no space"
	default:
		return "invalid"
	}
}

// Result reports where Insert put an item. Pos is -1 unless Status is
// Stored.
type Result struct {
	Status Status
	Pos    int
}

type Options struct {
	// Capacity is the fixed number of slots.
	Capacity int

	// Path is the backing file, relative to the filesystem root.
	Path string

	// Tombstones makes Delete leave a marker so that probe chains running
	// through the deleted slot stay searchable. Files written by one variant
	// cannot be opened by the other.
	Tombstones bool

	// AtomicSave writes snapshots to a temporary file and renames it over
	// Path, so a crash mid save leaves the previous snapshot intact.
	AtomicSave bool
}

// T is a fixed capacity hash table backed by a snapshot file.
//
// T is not safe for concurrent use. Callers sharing a table must hold one
// lock across every call, since each mutation and its snapshot write have
// to happen together.
type T[K Item[K], RWK RWItem[K]] struct {
	_ [0]func() // no equality

	fs    *filesystem.T
	opts  Options
	slots []slot[K]
	eles  int
	saves uint64
}

func (t *T[K, RWK]) Cap() int     { return len(t.slots) }
func (t *T[K, RWK]) Len() int     { return t.eles }
func (t *T[K, RWK]) Path() string { return t.opts.Path }

// Saves returns how many snapshots this table has written since Open.
func (t *T[K, RWK]) Saves() uint64 { return t.saves }

func (t *T[K, RWK]) Tombstones() bool { return t.opts.Tombstones }

func (t *T[K, RWK]) Load() float64 {
	return float64(t.eles) / float64(len(t.slots))
}

// At returns the item stored in slot i, if any.
func (t *T[K, RWK]) At(i int) (k K, ok bool) {
	if i < 0 || i >= len(t.slots) || t.slots[i].s != stateFull {
		return k, false
	}
	return t.slots[i].k, true
}

// Items returns the stored items in slot order.
func (t *T[K, RWK]) Items() []K {
	out := make([]K, 0, t.eles)
	for i := range t.slots {
		if t.slots[i].s == stateFull {
			out = append(out, t.slots[i].k)
		}
	}
	return out
}

// Occupied returns the positions of every stored item.
func (t *T[K, RWK]) Occupied() *roaring.Bitmap {
	bm := roaring.New()
	for i := range t.slots {
		if t.slots[i].s == stateFull {
			bm.Add(uint32(i))
		}
	}
	return bm
}

//
// probing
//

func (t *T[K, RWK]) home(k K) int {
	return int(k.Digest() % uint64(len(t.slots)))
}

func (t *T[K, RWK]) next(i int) int {
	if i++; i == len(t.slots) {
		i = 0
	}
	return i
}

// find returns the slot holding an item equal to k, or -1. The scan stops at
// the first empty slot and never covers more than one pass.
func (t *T[K, RWK]) find(k K) int {
	pos := t.home(k)
	for range len(t.slots) {
		s := &t.slots[pos]
		switch s.s {
		case stateEmpty:
			return -1
		case stateFull:
			if s.k.Equal(k) {
				return pos
			}
		}
		pos = t.next(pos)
	}
	return -1
}

// findFree returns the slot an insert of k would use. With dedupe set it
// reports Exists when an equal item is met first. Without it, the first
// reusable slot wins and Exists is never returned.
func (t *T[K, RWK]) findFree(k K, dedupe bool) (int, Status) {
	pos, free := t.home(k), -1
	for load := 1; load <= len(t.slots); load++ {
		s := &t.slots[pos]
		switch s.s {
		case stateEmpty:
			if free < 0 {
				free = pos
			}
			return free, Stored

		case stateTomb:
			if free < 0 {
				free = pos
			}
			if !dedupe {
				return free, Stored
			}

		case stateFull:
			if dedupe && s.k.Equal(k) {
				return -1, Exists
			}
		}
		pos = t.next(pos)
	}
	if free >= 0 {
		return free, Stored
	}
	return -1, NoSpace
}

func (t *T[K, RWK]) set(pos int, k K) {
	t.slots[pos] = slot[K]{k: k, s: stateFull}
	t.eles++
}

func (t *T[K, RWK]) clear(pos int) {
	state := uint8(stateEmpty)
	if t.opts.Tombstones {
		state = stateTomb
	}
	t.slots[pos] = slot[K]{s: state}
	t.eles--
}

//
// operations
//

// Insert stores k unless an equal item is present or no slot is free. The
// table is saved only when k is stored. If that save fails the slot is
// emptied again and the error is returned.
func (t *T[K, RWK]) Insert(k K) (Result, error) {
	pos, status := t.findFree(k, true)
	if status != Stored {
		return Result{Status: status, Pos: -1}, nil
	}

	prev := t.slots[pos]
	t.set(pos, k)

	if err := t.save(); err != nil {
		t.slots[pos] = prev
		t.eles--
		return Result{Pos: -1}, err
	}

	return Result{Status: Stored, Pos: pos}, nil
}

// Search reports whether an item equal to k is reachable from its home
// slot. It does not touch the backing file.
func (t *T[K, RWK]) Search(k K) bool {
	return t.find(k) >= 0
}

// Delete removes the item equal to k and saves the table. Deleting an
// absent item does nothing. If the save fails the item is restored.
func (t *T[K, RWK]) Delete(k K) error {
	pos := t.find(k)
	if pos < 0 {
		return nil
	}

	prev := t.slots[pos]
	t.clear(pos)

	if err := t.save(); err != nil {
		t.slots[pos] = prev
		t.eles++
		return err
	}

	return nil
}

// Fill places every item with the same probing as Insert but without
// checking for duplicates, then saves once. Items that find no free slot
// are skipped and counted in dropped. If the save fails the table is
// returned to its state before the call.
func (t *T[K, RWK]) Fill(ks []K) (dropped int, err error) {
	prev := make([]slot[K], len(t.slots))
	copy(prev, t.slots)
	prevEles := t.eles

	for _, k := range ks {
		pos, _ := t.findFree(k, false)
		if pos < 0 {
			dropped++
			continue
		}
		t.set(pos, k)
	}

	if err := t.save(); err != nil {
		t.slots, t.eles = prev, prevEles
		return dropped, err
	}

	return dropped, nil
}
