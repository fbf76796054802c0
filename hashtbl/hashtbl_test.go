package hashtbl

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/zeebo/assert"

	"github.com/qrtrack/qrtrack"
	"github.com/qrtrack/qrtrack/filesystem"
	"github.com/qrtrack/qrtrack/num"
	"github.com/qrtrack/qrtrack/testhelp"
)

type pinned = T[testhelp.Pinned, *testhelp.Pinned]

func openPinned(t *testing.T, fs *filesystem.T, opts Options) *pinned {
	t.Helper()
	tb, err := Open[testhelp.Pinned, *testhelp.Pinned](fs, opts)
	assert.NoError(t, err)
	return tb
}

func insert[K Item[K], RWK RWItem[K]](t *testing.T, tb *T[K, RWK], k K) Result {
	t.Helper()
	res, err := tb.Insert(k)
	assert.NoError(t, err)
	return res
}

func TestInsertSearch(t *testing.T) {
	const n = 100

	fs := testhelp.FS(t)
	tb, err := Open[qrtrack.Attribute, *qrtrack.Attribute](fs, Options{
		Capacity: 2*n + 57,
		Path:     "attrs.bin",
	})
	assert.NoError(t, err)

	attrs := testhelp.Attributes(n)
	seen := make(map[int]bool)
	for _, a := range attrs {
		res := insert(t, tb, a)
		assert.Equal(t, res.Status, Stored)
		assert.That(t, !seen[res.Pos])
		seen[res.Pos] = true

		got, ok := tb.At(res.Pos)
		assert.That(t, ok)
		assert.That(t, got.Equal(a))
	}

	for _, a := range attrs {
		assert.That(t, tb.Search(a))
	}
	for _, a := range testhelp.Attributes(20) {
		if !containsAttr(attrs, a) {
			assert.That(t, !tb.Search(a))
		}
	}

	assert.Equal(t, tb.Len(), n)
	assert.Equal(t, tb.Saves(), uint64(n))
	assert.Equal(t, tb.Occupied().GetCardinality(), uint64(n))
}

func containsAttr(attrs []qrtrack.Attribute, a qrtrack.Attribute) bool {
	for _, b := range attrs {
		if a.Equal(b) {
			return true
		}
	}
	return false
}

func TestInsertHomeSlot(t *testing.T) {
	tb, err := Open[num.U64, *num.U64](testhelp.FS(t), Options{Capacity: 10, Path: "u64.bin"})
	assert.NoError(t, err)

	assert.Equal(t, insert(t, tb, 13), Result{Status: Stored, Pos: 3})
	assert.Equal(t, insert(t, tb, 23), Result{Status: Stored, Pos: 4})
	assert.Equal(t, insert(t, tb, 9), Result{Status: Stored, Pos: 9})
	assert.Equal(t, insert(t, tb, 19), Result{Status: Stored, Pos: 0})
}

func TestInsertDuplicate(t *testing.T) {
	fs := testhelp.FS(t)
	tb := openPinned(t, fs, Options{Capacity: 7, Path: "t.bin"})

	a := testhelp.Pin("a", 4)
	assert.Equal(t, insert(t, tb, a), Result{Status: Stored, Pos: 4})
	assert.Equal(t, insert(t, tb, a), Result{Status: Exists, Pos: -1})

	assert.Equal(t, tb.Len(), 1)
	assert.Equal(t, tb.Saves(), uint64(1))
}

func TestInsertNoSpace(t *testing.T) {
	const capacity = 8

	tb := openPinned(t, testhelp.FS(t), Options{Capacity: capacity, Path: "t.bin"})

	for i := 0; i < capacity; i++ {
		res := insert(t, tb, testhelp.Pin(testhelp.Name(8)+string(rune('a'+i)), 3))
		assert.Equal(t, res, Result{Status: Stored, Pos: (3 + i) % capacity})
	}

	assert.Equal(t, insert(t, tb, testhelp.Pin("next", 3)), Result{Status: NoSpace, Pos: -1})
	assert.Equal(t, insert(t, tb, testhelp.Pin("other", 6)), Result{Status: NoSpace, Pos: -1})
	assert.Equal(t, tb.Len(), capacity)
	assert.Equal(t, tb.Saves(), uint64(capacity))

	// a full table still terminates searches for absent items
	assert.That(t, !tb.Search(testhelp.Pin("next", 3)))
	assert.NoError(t, tb.Delete(testhelp.Pin("next", 3)))
	assert.Equal(t, tb.Saves(), uint64(capacity))
}

func TestDeleteBreaksProbeChain(t *testing.T) {
	// Without tombstones, clearing a slot ends the probe chain there. B is
	// still stored in slot 3 but a search from its home slot 2 stops at the
	// now empty slot 2.
	tb := openPinned(t, testhelp.FS(t), Options{Capacity: 5, Path: "t.bin"})

	a, b, c := testhelp.Pin("A", 2), testhelp.Pin("B", 2), testhelp.Pin("C", 4)
	assert.Equal(t, insert(t, tb, a), Result{Status: Stored, Pos: 2})
	assert.Equal(t, insert(t, tb, b), Result{Status: Stored, Pos: 3})
	assert.Equal(t, insert(t, tb, c), Result{Status: Stored, Pos: 4})

	assert.NoError(t, tb.Delete(a))
	assert.That(t, !tb.Search(a))
	assert.That(t, !tb.Search(b))
	assert.That(t, tb.Search(c))

	got, ok := tb.At(3)
	assert.That(t, ok)
	assert.Equal(t, got, b)

	// the stranded copy also defeats duplicate detection
	assert.Equal(t, insert(t, tb, b), Result{Status: Stored, Pos: 2})
	assert.Equal(t, tb.Len(), 3)
}

func TestTombstonesKeepProbeChain(t *testing.T) {
	// The tombstone variant is a corrected design: the same sequence as
	// TestDeleteBreaksProbeChain keeps B reachable.
	tb := openPinned(t, testhelp.FS(t), Options{Capacity: 5, Path: "t.bin", Tombstones: true})

	a, b, c := testhelp.Pin("A", 2), testhelp.Pin("B", 2), testhelp.Pin("C", 4)
	insert(t, tb, a)
	insert(t, tb, b)
	insert(t, tb, c)

	assert.NoError(t, tb.Delete(a))
	assert.That(t, !tb.Search(a))
	assert.That(t, tb.Search(b))
	assert.That(t, tb.Search(c))
	assert.Equal(t, tb.Len(), 2)

	// duplicates are found past the tombstone, and the tombstone is reused
	assert.Equal(t, insert(t, tb, b), Result{Status: Exists, Pos: -1})
	assert.Equal(t, insert(t, tb, testhelp.Pin("D", 2)), Result{Status: Stored, Pos: 2})
	assert.That(t, tb.Search(testhelp.Pin("D", 2)))
}

func TestTombstonesNoSpace(t *testing.T) {
	tb := openPinned(t, testhelp.FS(t), Options{Capacity: 3, Path: "t.bin", Tombstones: true})

	x, y, z := testhelp.Pin("x", 0), testhelp.Pin("y", 0), testhelp.Pin("z", 0)
	insert(t, tb, x)
	insert(t, tb, y)
	insert(t, tb, z)
	assert.Equal(t, insert(t, tb, testhelp.Pin("w", 1)), Result{Status: NoSpace, Pos: -1})

	assert.NoError(t, tb.Delete(y))
	assert.Equal(t, insert(t, tb, testhelp.Pin("w", 1)), Result{Status: Stored, Pos: 1})
	assert.That(t, tb.Search(z))
}

func TestDeleteAbsent(t *testing.T) {
	fs := testhelp.FS(t)
	tb := openPinned(t, fs, Options{Capacity: 5, Path: "t.bin"})

	assert.NoError(t, tb.Delete(testhelp.Pin("nope", 1)))
	assert.Equal(t, tb.Saves(), uint64(0))

	ok, err := fs.Exists("t.bin")
	assert.NoError(t, err)
	assert.That(t, !ok)
}

func TestFill(t *testing.T) {
	t.Run("OneSave", func(t *testing.T) {
		const capacity = 16

		fs := testhelp.FS(t)
		tb := openPinned(t, fs, Options{Capacity: capacity, Path: "t.bin"})

		items := make([]testhelp.Pinned, capacity)
		for i := range items {
			items[i] = testhelp.Pin(testhelp.Name(6)+string(rune('A'+i)), uint64(i))
		}

		// seed the file, then backdate it so any write is visible
		_, err := tb.Fill(items[:1])
		assert.NoError(t, err)
		stale := time.Unix(1, 0)
		assert.NoError(t, os.Chtimes(fs.Child("t.bin"), stale, stale))
		assert.Equal(t, testhelp.ModTime(t, fs, "t.bin"), stale.UnixNano())

		// searches and rejected inserts leave the file alone
		assert.That(t, tb.Search(items[0]))
		assert.Equal(t, insert(t, tb, items[0]).Status, Exists)
		assert.Equal(t, testhelp.ModTime(t, fs, "t.bin"), stale.UnixNano())

		dropped, err := tb.Fill(items[1:])
		assert.NoError(t, err)
		assert.Equal(t, dropped, 0)
		assert.Equal(t, tb.Saves(), uint64(2))
		assert.Equal(t, tb.Len(), capacity)
		assert.That(t, testhelp.ModTime(t, fs, "t.bin") != stale.UnixNano())

		// the single write holds the whole batch
		re := openPinned(t, fs, Options{Capacity: capacity, Path: "t.bin"})
		for i, it := range items {
			got, ok := re.At(i)
			assert.That(t, ok)
			assert.Equal(t, got, it)
		}
	})

	t.Run("Dropped", func(t *testing.T) {
		tb := openPinned(t, testhelp.FS(t), Options{Capacity: 4, Path: "t.bin"})

		var items []testhelp.Pinned
		for _, name := range []string{"a", "b", "c", "d", "e", "f"} {
			items = append(items, testhelp.Pin(name, 1))
		}

		dropped, err := tb.Fill(items)
		assert.NoError(t, err)
		assert.Equal(t, dropped, 2)
		assert.Equal(t, tb.Len(), 4)
		assert.Equal(t, tb.Saves(), uint64(1))
		assert.That(t, !tb.Search(testhelp.Pin("e", 1)))
	})

	t.Run("NoDuplicateCheck", func(t *testing.T) {
		tb := openPinned(t, testhelp.FS(t), Options{Capacity: 4, Path: "t.bin"})

		a := testhelp.Pin("a", 0)
		dropped, err := tb.Fill([]testhelp.Pinned{a, a})
		assert.NoError(t, err)
		assert.Equal(t, dropped, 0)
		assert.Equal(t, tb.Len(), 2)
		assert.Equal(t, tb.Occupied().ToArray(), []uint32{0, 1})
	})

	t.Run("EmptyBatchStillSaves", func(t *testing.T) {
		fs := testhelp.FS(t)
		tb := openPinned(t, fs, Options{Capacity: 4, Path: "t.bin"})

		dropped, err := tb.Fill(nil)
		assert.NoError(t, err)
		assert.Equal(t, dropped, 0)
		assert.Equal(t, tb.Saves(), uint64(1))

		ok, err := fs.Exists("t.bin")
		assert.NoError(t, err)
		assert.That(t, ok)
	})
}

func TestSaveFailureRollsBack(t *testing.T) {
	fs := testhelp.FS(t)
	tb := openPinned(t, fs, Options{Capacity: 5, Path: "t.bin"})

	a, b := testhelp.Pin("a", 1), testhelp.Pin("b", 1)
	insert(t, tb, a)

	// a directory where the snapshot lives makes every save fail
	assert.NoError(t, fs.Remove("t.bin"))
	assert.NoError(t, fs.Mkdir("t.bin"))

	var ioErr *IOError

	_, err := tb.Insert(b)
	assert.That(t, errors.As(err, &ioErr))
	assert.Equal(t, ioErr.Op, "save")
	assert.That(t, !tb.Search(b))
	assert.Equal(t, tb.Len(), 1)

	err = tb.Delete(a)
	assert.That(t, errors.As(err, &ioErr))
	assert.That(t, tb.Search(a))
	assert.Equal(t, tb.Len(), 1)

	dropped, err := tb.Fill([]testhelp.Pinned{b, testhelp.Pin("c", 3)})
	assert.That(t, errors.As(err, &ioErr))
	assert.Equal(t, dropped, 0)
	assert.That(t, !tb.Search(b))
	assert.Equal(t, tb.Items(), []testhelp.Pinned{a})

	assert.Equal(t, tb.Saves(), uint64(1))
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, Stored.String(), "stored")
	assert.Equal(t, Exists.String(), "exists")
	assert.Equal(t, NoSpace.String(), "no space")
	assert.Equal(t, Status(0).String(), "invalid")
}

func TestOpenOptions(t *testing.T) {
	fs := testhelp.FS(t)

	_, err := Open[num.U64, *num.U64](fs, Options{Capacity: 0, Path: "x"})
	assert.Error(t, err)

	_, err = Open[num.U64, *num.U64](fs, Options{Capacity: 3})
	assert.Error(t, err)
}
