package testhelp

import (
	"os"
	"testing"

	"github.com/zeebo/assert"

	"github.com/qrtrack/qrtrack/filesystem"
)

// FS returns a filesystem rooted in a fresh temporary directory that is
// removed when the test ends.
func FS(tb testing.TB) *filesystem.T {
	return &filesystem.T{Base: tb.TempDir()}
}

// ReadFile returns the contents of path under fs, failing the test if it
// cannot be read.
func ReadFile(tb testing.TB, fs *filesystem.T, path string) []byte {
	data, err := fs.ReadFile(path)
	assert.NoError(tb, err)
	return data
}

// ModTime returns the modification time of path under fs in nanoseconds.
func ModTime(tb testing.TB, fs *filesystem.T, path string) int64 {
	fi, err := os.Stat(fs.Child(path))
	assert.NoError(tb, err)
	return fi.ModTime().UnixNano()
}
