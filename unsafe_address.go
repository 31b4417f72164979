package fdt

import "unsafe"

// unsafeSliceAt constructs a []byte of length n over memory already mapped
// at addr. It is the one place in this module that converts a raw address
// into a slice; OpenFromAddress exists for early-boot-style callers that
// receive a device tree pointer with no surrounding Go slice to borrow, the
// same shape of problem u-root-style bootloaders solve by wrapping a known
// physical region.
//
// n must not exceed the size of the memory actually mapped at addr, and that
// memory must remain valid for as long as the resulting slice, and anything
// derived from it, is reachable.
func unsafeSliceAt(addr uintptr, n int) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(addr)), n)
}
