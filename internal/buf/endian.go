// Package buf contains helpers for decoding kernel records and doing page arithmetic.
package buf

import "encoding/binary"

// U64NE reads a native-endian uint64 from b. Returns 0 when b is too short.
// Kernel pseudo-files such as /proc/self/pagemap are written in host byte order.
func U64NE(b []byte) uint64 {
	if len(b) < 8 {
		return 0
	}
	return binary.NativeEndian.Uint64(b)
}

// PutU64NE writes v into b in host byte order. It is a no-op when b is too short.
func PutU64NE(b []byte, v uint64) {
	if len(b) < 8 {
		return
	}
	binary.NativeEndian.PutUint64(b, v)
}
