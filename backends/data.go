// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package backends

import "github.com/gomlx/exceptions"

// DevicePointer is an address in the device memory space of a backend.
type DevicePointer uintptr

// NullPointer is used where no memory is bound, e.g. the workspace of a plan that doesn't need one.
const NullPointer DevicePointer = 0

//go:generate go tool enumer -type=MemoryKind -trimprefix=Memory -transform=snake -output=gen_memorykind_enumer.go data.go

// MemoryKind tells where the memory of a Buffer lives.
type MemoryKind int

const (
	MemoryDevice MemoryKind = iota
	MemoryHost
	MemoryHostPinned
)

// Buffer is a range of memory owned by the caller (or by the runtime hosting this library).
// Only MemoryDevice buffers can be bound to an execution.
type Buffer interface {
	MemoryKind() MemoryKind

	// BasePointer of the underlying allocation.
	BasePointer() DevicePointer

	// ByteOffset of the buffer in the underlying allocation.
	ByteOffset() int64

	ByteLength() int64
}

// Allocator is optionally implemented by a Backend that can allocate and transfer memory itself.
// Tests and tools use it, the graph/executable layer never allocates.
type Allocator interface {
	// Allocate a buffer of the given kind and size for the handle's device.
	Allocate(handle Handle, kind MemoryKind, numBytes int64) (Buffer, Status)

	// Free a buffer returned by Allocate. Views returned by Slice must not be freed.
	Free(buffer Buffer) Status

	// CopyToDevice copies data (host memory) to the start of buffer. len(data) must be <= buffer.ByteLength().
	CopyToDevice(buffer Buffer, data []byte) Status

	// CopyFromDevice copies the start of buffer to data. len(data) must be <= buffer.ByteLength().
	CopyFromDevice(buffer Buffer, data []byte) Status
}

// bufferView implements Buffer as a sub-range of another buffer.
type bufferView struct {
	parent Buffer
	offset int64
	length int64
}

// Slice returns a view of buffer starting at byteOffset (relative to buffer) with byteLength bytes.
// It panics if the range is out of the buffer.
func Slice(buffer Buffer, byteOffset, byteLength int64) Buffer {
	if byteOffset < 0 || byteLength < 0 || byteOffset+byteLength > buffer.ByteLength() {
		exceptions.Panicf("backends.Slice(offset=%d, length=%d) out of bounds for buffer of %d bytes",
			byteOffset, byteLength, buffer.ByteLength())
	}
	return &bufferView{parent: buffer, offset: byteOffset, length: byteLength}
}

func (v *bufferView) MemoryKind() MemoryKind     { return v.parent.MemoryKind() }
func (v *bufferView) BasePointer() DevicePointer { return v.parent.BasePointer() }
func (v *bufferView) ByteOffset() int64          { return v.parent.ByteOffset() + v.offset }
func (v *bufferView) ByteLength() int64          { return v.length }
