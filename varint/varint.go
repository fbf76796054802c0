package varint

import (
	"encoding/binary"
	"math/bits"
)

var le = binary.LittleEndian

// MaxLen is the largest number of bytes an encoded value occupies.
const MaxLen = 9

//
// prefix varint: the count of trailing one bits in the first byte, plus
// one, is the encoded length. nine byte values store the raw uint64 after
// a 0xff marker.
//

func Len(val uint64) int {
	return 575*bits.Len64(val)/4096 + 1
}

func Put(dst *[MaxLen]byte, val uint64) (nbytes int) {
	nbytes = Len(val)

	if nbytes < 9 {
		enc := val<<nbytes + 1<<((nbytes-1)&63) - 1
		le.PutUint64(dst[:], enc)
		return
	}

	dst[0] = 0xff
	le.PutUint64(dst[1:], val)
	return
}

func Append(buf []byte, val uint64) []byte {
	var tmp [MaxLen]byte
	n := Put(&tmp, val)
	return append(buf, tmp[:n]...)
}

func FastConsume(src *[MaxLen]byte) (nbytes int, dec uint64) {
	nbytes = bits.TrailingZeros8(^src[0]) + 1

	if nbytes < 9 {
		dec = le.Uint64(src[:]) >> nbytes
		dec &= 1<<((8*nbytes-nbytes)&63) - 1
		return
	}

	dec = le.Uint64(src[1:])
	return
}

// Consume decodes a value from the front of buf and returns the rest of it.
// It never reads past the end of buf.
func Consume(buf []byte) (uint64, []byte, bool) {
	if len(buf) >= MaxLen {
		nbytes, dec := FastConsume((*[MaxLen]byte)(buf))
		return dec, buf[nbytes:], true
	} else if len(buf) == 0 {
		return 0, buf, false
	}

	nbytes := bits.TrailingZeros8(^buf[0]) + 1
	if nbytes > len(buf) {
		return 0, buf, false
	}

	var tmp [MaxLen]byte
	copy(tmp[:], buf[:nbytes])
	_, dec := FastConsume(&tmp)
	return dec, buf[nbytes:], true
}
