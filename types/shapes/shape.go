// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package shapes defines the geometry of a tensor as the backend sees it: DType, dimensions and
// strides, plus helpers to compute the standard stride layouts.
//
// Dimensions and strides are int64, the width backend descriptors use. Strides are counted in
// elements, not bytes.
//
// ## Glossary
//
//   - Rank: number of axes of a tensor.
//   - Axis: index of a dimension. Axis 0 is the batch axis and axis 1 the channel axis for the
//     image-like (rank 4 and 5) tensors used by convolutions.
//   - Stride: distance, in elements, between two consecutive indices of an axis.
//   - Row-major: last axis is contiguous (stride 1). For rank 4 that is the NCHW layout.
//   - Channels-last: channel axis is contiguous. For rank 4 that is the NHWC layout.
package shapes

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"
)

// Shape of a tensor: its DType, its dimensions and how it is laid out in memory (strides).
//
// Use Make or MakeRowMajor to create a new shape.
type Shape struct {
	DType      dtypes.DType
	Dimensions []int64
	Strides    []int64
}

// Make returns a Shape with copies of the dimensions and strides given.
//
// It doesn't validate them: backends do that when a descriptor is built, and they report
// the problem as an error.
func Make(dtype dtypes.DType, dimensions, strides []int64) Shape {
	return Shape{DType: dtype, Dimensions: slices.Clone(dimensions), Strides: slices.Clone(strides)}
}

// MakeRowMajor returns a Shape with the given dimensions and row-major strides.
// It panics if a dimension is not positive.
func MakeRowMajor(dtype dtypes.DType, dimensions ...int64) Shape {
	for _, dim := range dimensions {
		if dim <= 0 {
			exceptions.Panicf("shapes.MakeRowMajor(%s, %v): cannot create a shape with an axis with dimension <= 0", dtype, dimensions)
		}
	}
	return Shape{DType: dtype, Dimensions: slices.Clone(dimensions), Strides: RowMajorStrides(dimensions)}
}

// Ok returns whether the shape has a valid DType. A zero Shape{} is not Ok.
func (s Shape) Ok() bool { return s.DType != dtypes.InvalidDType }

// Rank of the shape, that is, the number of axes.
func (s Shape) Rank() int { return len(s.Dimensions) }

// Dim returns the dimension of the given axis. Negative axes count from the end, so -1 is the last axis.
// It panics for an out-of-bound axis.
func (s Shape) Dim(axis int) int64 {
	adjusted := axis
	if adjusted < 0 {
		adjusted += s.Rank()
	}
	if adjusted < 0 || adjusted >= s.Rank() {
		exceptions.Panicf("Shape.Dim(%d) out-of-bounds for rank %d (shape=%s)", axis, s.Rank(), s)
	}
	return s.Dimensions[adjusted]
}

// Size returns the number of elements of the shape: the product of its dimensions.
// A rank 0 shape has size 1.
func (s Shape) Size() int64 {
	size := int64(1)
	for _, dim := range s.Dimensions {
		size *= dim
	}
	return size
}

// Span returns the number of elements between the first and the last element of the tensor (inclusive),
// that is, how many elements of memory the layout touches. For a dense layout it equals Size.
func (s Shape) Span() int64 {
	if s.Size() == 0 {
		return 0
	}
	span := int64(1)
	for axis, dim := range s.Dimensions {
		span += (dim - 1) * s.Strides[axis]
	}
	return span
}

// Memory returns the number of bytes spanned by the tensor in memory, taking the strides into account.
func (s Shape) Memory() uintptr {
	return uintptr(s.Span()) * s.DType.Memory()
}

// IsDense returns whether the layout touches exactly Size elements, i.e. there are no gaps or overlaps.
func (s Shape) IsDense() bool {
	return s.Span() == s.Size()
}

// Offset returns the position, in elements, of the element at the given indices.
func (s Shape) Offset(indices []int64) int64 {
	var offset int64
	for axis, idx := range indices {
		offset += idx * s.Strides[axis]
	}
	return offset
}

// Equal compares DType, dimensions and strides.
func (s Shape) Equal(s2 Shape) bool {
	return s.DType == s2.DType && slices.Equal(s.Dimensions, s2.Dimensions) && slices.Equal(s.Strides, s2.Strides)
}

// EqualDimensions compares only the dimensions of the shapes, ignoring DType and strides.
func (s Shape) EqualDimensions(s2 Shape) bool {
	return slices.Equal(s.Dimensions, s2.Dimensions)
}

// Clone returns a deep copy of the shape.
func (s Shape) Clone() Shape {
	return Make(s.DType, s.Dimensions, s.Strides)
}

// BroadcastsTo returns whether s can be broadcast to target: same rank and every dimension of s
// is either equal to target's or 1.
func (s Shape) BroadcastsTo(target Shape) bool {
	if s.Rank() != target.Rank() {
		return false
	}
	for axis, dim := range s.Dimensions {
		if dim != 1 && dim != target.Dimensions[axis] {
			return false
		}
	}
	return true
}

// String implements fmt.Stringer, e.g.: "(Float32)[1 3 8 8]" for a row-major shape or
// "(Float32)[1 3 8 8]{192 1 24 3}" when strides are not row-major.
func (s Shape) String() string {
	var sb strings.Builder
	_, _ = fmt.Fprintf(&sb, "(%s)", s.DType)
	sb.WriteString(formatInts(s.Dimensions))
	if !slices.Equal(s.Strides, RowMajorStrides(s.Dimensions)) {
		sb.WriteString("{")
		sb.WriteString(strings.Trim(formatInts(s.Strides), "[]"))
		sb.WriteString("}")
	}
	return sb.String()
}

func formatInts(values []int64) string {
	parts := make([]string, len(values))
	for ii, v := range values {
		parts[ii] = fmt.Sprintf("%d", v)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
