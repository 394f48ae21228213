// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package shapes

import (
	"github.com/gomlx/dnngraph/types/status"
	"golang.org/x/exp/constraints"
)

//go:generate go tool enumer -type=Layout -transform=snake -output=gen_layout_enumer.go strides.go

// Layout of an image-like tensor, as inferred from (or used to build) its strides.
type Layout int

const (
	// RowMajor layout: last axis contiguous (NCHW for rank 4).
	RowMajor Layout = iota

	// ChannelsLast layout: channel axis (1) contiguous (NHWC for rank 4).
	ChannelsLast
)

// RowMajorStrides returns the contiguous strides for dims: the last axis has stride 1 and every
// other axis has the dimension times the stride of the axis to its right.
//
// Example: RowMajorStrides([]int64{2, 3, 4}) == []int64{12, 4, 1}.
func RowMajorStrides[T constraints.Integer](dims []T) []T {
	strides := make([]T, len(dims))
	if len(dims) == 0 {
		return strides
	}
	strides[len(dims)-1] = 1
	for axis := len(dims) - 2; axis >= 0; axis-- {
		strides[axis] = dims[axis+1] * strides[axis+1]
	}
	return strides
}

// ChannelsLastStrides returns the strides for dims where the channel axis (1) is contiguous, followed
// by the spatial axes from right to left, and the batch axis (0) has the largest stride.
//
// It is only defined for rank 4 and 5, other ranks return a status.KindPrecondition error.
//
// Example: ChannelsLastStrides([]int64{1, 4, 6, 6}) == []int64{144, 1, 24, 4}.
func ChannelsLastStrides[T constraints.Integer](dims []T) ([]T, error) {
	rank := len(dims)
	if rank != 4 && rank != 5 {
		return nil, status.Errorf(status.KindPrecondition, status.InvalidArgument,
			"channels-last strides are only defined for rank 4 or 5, got dims %v (rank %d)", dims, rank)
	}
	strides := make([]T, rank)
	strides[1] = 1
	strides[rank-1] = dims[1]
	for axis := rank - 2; axis >= 2; axis-- {
		strides[axis] = strides[axis+1] * dims[axis+1]
	}
	strides[0] = strides[2] * dims[2]
	return strides, nil
}

// StridesFor returns the strides of dims for the given layout.
func StridesFor[T constraints.Integer](layout Layout, dims []T) ([]T, error) {
	if layout == ChannelsLast {
		return ChannelsLastStrides(dims)
	}
	return RowMajorStrides(dims), nil
}

// IsChannelsLast reports whether strides describe a channels-last tensor, by checking that the channel
// axis (1) has stride 1.
//
// Notice this is only an inspection of one stride: a tensor with a channel dimension of 1, or a
// rank 2 row-major tensor, will also be reported as channels-last.
func IsChannelsLast[T constraints.Integer](strides []T) bool {
	return len(strides) > 1 && strides[1] == 1
}

// InferLayout returns ChannelsLast if IsChannelsLast(strides), RowMajor otherwise.
func InferLayout[T constraints.Integer](strides []T) Layout {
	if IsChannelsLast(strides) {
		return ChannelsLast
	}
	return RowMajor
}
