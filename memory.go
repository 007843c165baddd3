package gfx

import (
	"encoding/binary"
	"math"
	"unsafe"
)

// Memory is a block of raw bytes handed to the device, typically vertex data.
type Memory []byte

var nativeEndian = binary.NativeEndian

// Copy returns a copy of the raw bytes backing src. T must be plain old
// data (no pointers, slices, strings or maps); the bytes are in host order.
func Copy[T any](src []T) Memory {
	if len(src) == 0 {
		return nil
	}
	ref := MakeRef(src)
	out := make(Memory, len(ref))
	copy(out, ref)
	return out
}

// MakeRef returns a Memory that aliases the bytes backing src. The caller
// must not modify src until the device has consumed the memory (the end of
// the call it was passed to).
func MakeRef[T any](src []T) Memory {
	if len(src) == 0 {
		return nil
	}
	size := len(src) * int(unsafe.Sizeof(src[0]))
	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(src))), size)
}

func float32frombytes(b []byte) float32 {
	return math.Float32frombits(nativeEndian.Uint32(b))
}
