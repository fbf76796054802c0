// Package num has fixed width integer items usable as hashtbl keys. Their
// digest is the value itself, so the home slot of n is n mod capacity.
package num

import "github.com/qrtrack/qrtrack/rwutils"

type U64 uint64

func (u U64) Digest() uint64         { return uint64(u) }
func (u U64) Equal(v U64) bool       { return u == v }
func (u *U64) ReadFrom(r *rwutils.R) { *u = U64(r.Uint64()) }
func (u *U64) AppendTo(w *rwutils.W) { w.Uint64(uint64(*u)) }

type U32 uint32

func (u U32) Digest() uint64         { return uint64(u) }
func (u U32) Equal(v U32) bool       { return u == v }
func (u *U32) ReadFrom(r *rwutils.R) { *u = U32(r.Uint32()) }
func (u *U32) AppendTo(w *rwutils.W) { w.Uint32(uint32(*u)) }
