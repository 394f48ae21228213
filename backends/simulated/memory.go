// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package simulated

import (
	"github.com/dustin/go-humanize"
	"github.com/gomlx/dnngraph/backends"
	"k8s.io/klog/v2"
)

const (
	// firstPointer is the address of the first allocation: address 0 is backends.NullPointer.
	firstPointer backends.DevicePointer = 0x1000_0000

	// allocationAlignment of the base pointer of every allocation.
	allocationAlignment = 256
)

// allocation is a range of synthetic device (or host) memory, backed by a Go slice.
type allocation struct {
	kind backends.MemoryKind
	base backends.DevicePointer
	data []byte
}

// Buffer implements backends.Buffer for memory allocated by the simulated backend.
type Buffer struct {
	alloc *allocation
}

func (buf *Buffer) MemoryKind() backends.MemoryKind     { return buf.alloc.kind }
func (buf *Buffer) BasePointer() backends.DevicePointer { return buf.alloc.base }
func (buf *Buffer) ByteOffset() int64                   { return 0 }
func (buf *Buffer) ByteLength() int64                   { return int64(len(buf.alloc.data)) }

// Allocate implements backends.Allocator.
func (b *Backend) Allocate(handle backends.Handle, kind backends.MemoryKind, numBytes int64) (backends.Buffer, backends.Status) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.usable() {
		return nil, backends.StatusNotInitialized
	}
	if h, _ := handle.(*Handle); h == nil || !h.alive(b) {
		klog.Errorf("simulated backend: allocation requires a live handle")
		return nil, backends.StatusBadParam
	}
	if numBytes <= 0 {
		klog.Errorf("simulated backend: invalid allocation size %d", numBytes)
		return nil, backends.StatusBadParam
	}
	alloc := &allocation{kind: kind, base: b.nextPointer, data: make([]byte, numBytes)}
	b.allocations[alloc.base] = alloc

	// Leave a gap after every allocation, so overruns are not silently resolved to the next one.
	stride := (numBytes + 2*allocationAlignment - 1) / allocationAlignment * allocationAlignment
	b.nextPointer += backends.DevicePointer(stride)
	klog.V(2).Infof("simulated backend: allocated %s of %s memory at 0x%x", humanize.Bytes(uint64(numBytes)), kind, alloc.base)
	return &Buffer{alloc: alloc}, backends.StatusSuccess
}

// Free implements backends.Allocator.
func (b *Backend) Free(buffer backends.Buffer) backends.Status {
	b.mu.Lock()
	defer b.mu.Unlock()
	buf, _ := buffer.(*Buffer)
	if buf == nil || b.allocations[buf.alloc.base] != buf.alloc {
		klog.Errorf("simulated backend: freeing a buffer not allocated by the backend, or already freed")
		return backends.StatusBadParam
	}
	delete(b.allocations, buf.alloc.base)
	return backends.StatusSuccess
}

// bytesOf returns the bytes of the buffer range, or nil if the buffer is not live.
// Must be called with the lock held.
func (b *Backend) bytesOf(buffer backends.Buffer) []byte {
	alloc, found := b.allocations[buffer.BasePointer()]
	if !found {
		return nil
	}
	start, end := buffer.ByteOffset(), buffer.ByteOffset()+buffer.ByteLength()
	if start < 0 || end > int64(len(alloc.data)) {
		return nil
	}
	return alloc.data[start:end]
}

// CopyToDevice implements backends.Allocator.
func (b *Backend) CopyToDevice(buffer backends.Buffer, data []byte) backends.Status {
	b.mu.Lock()
	defer b.mu.Unlock()
	dst := b.bytesOf(buffer)
	if dst == nil || len(data) > len(dst) {
		klog.Errorf("simulated backend: copy of %d bytes to an invalid or too small buffer", len(data))
		return backends.StatusBadParam
	}
	copy(dst, data)
	return backends.StatusSuccess
}

// CopyFromDevice implements backends.Allocator.
func (b *Backend) CopyFromDevice(buffer backends.Buffer, data []byte) backends.Status {
	b.mu.Lock()
	defer b.mu.Unlock()
	src := b.bytesOf(buffer)
	if src == nil || len(data) > len(src) {
		klog.Errorf("simulated backend: copy of %d bytes from an invalid or too small buffer", len(data))
		return backends.StatusBadParam
	}
	copy(data, src)
	return backends.StatusSuccess
}

// resolve returns the device memory starting at ptr with numBytes bytes, or nil if the range is not within a
// live device allocation. Must be called with the lock held.
func (b *Backend) resolve(ptr backends.DevicePointer, numBytes int64) []byte {
	for base, alloc := range b.allocations {
		if ptr < base || ptr >= base+backends.DevicePointer(len(alloc.data)) {
			continue
		}
		if alloc.kind != backends.MemoryDevice {
			return nil
		}
		offset := int64(ptr - base)
		if offset+numBytes > int64(len(alloc.data)) {
			return nil
		}
		return alloc.data[offset : offset+numBytes]
	}
	return nil
}
