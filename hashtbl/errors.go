package hashtbl

import "fmt"

// IOError is returned when the backing file cannot be read at load time or
// written at save time.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("hashtbl: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// CodecError is returned when a backing file does not decode into the
// table's slots: truncation, corruption, or a capacity or variant that does
// not match the options.
type CodecError struct {
	Path string
	Err  error
}

func (e *CodecError) Error() string {
	return fmt.Sprintf("hashtbl: decode %s: %v", e.Path, e.Err)
}

func (e *CodecError) Unwrap() error { return e.Err }
