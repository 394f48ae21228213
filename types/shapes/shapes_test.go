// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package shapes

import (
	"testing"

	"github.com/gomlx/dnngraph/types/status"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShape(t *testing.T) {
	require.False(t, Shape{}.Ok())

	s := MakeRowMajor(dtypes.Float32, 4, 3, 2)
	require.True(t, s.Ok())
	require.Equal(t, 3, s.Rank())
	require.Equal(t, []int64{6, 2, 1}, s.Strides)
	require.Equal(t, int64(24), s.Size())
	require.Equal(t, int64(24), s.Span())
	require.True(t, s.IsDense())
	require.Equal(t, 4*24, int(s.Memory()))
	require.Equal(t, "(Float32)[4 3 2]", s.String())

	require.Equal(t, int64(4), s.Dim(0))
	require.Equal(t, int64(2), s.Dim(-1))
	require.Panics(t, func() { _ = s.Dim(3) })
	require.Panics(t, func() { _ = s.Dim(-4) })
	require.Panics(t, func() { _ = MakeRowMajor(dtypes.Float32, 2, 0) })

	// Strided (gapped) layout spans more memory than its size.
	gapped := Make(dtypes.Float16, []int64{2, 2}, []int64{4, 1})
	require.Equal(t, int64(4), gapped.Size())
	require.Equal(t, int64(6), gapped.Span())
	require.False(t, gapped.IsDense())
	require.Equal(t, 12, int(gapped.Memory()))
	require.Equal(t, "(Float16)[2 2]{4 1}", gapped.String())

	clone := s.Clone()
	require.True(t, clone.Equal(s))
	clone.Dimensions[0] = 5
	require.False(t, clone.Equal(s))
	require.Equal(t, int64(4), s.Dimensions[0])
}

func TestBroadcastsTo(t *testing.T) {
	target := MakeRowMajor(dtypes.Float32, 1, 4, 6, 6)
	assert.True(t, MakeRowMajor(dtypes.Float32, 1, 4, 6, 6).BroadcastsTo(target))
	assert.True(t, MakeRowMajor(dtypes.Float32, 1, 4, 1, 1).BroadcastsTo(target))
	assert.True(t, MakeRowMajor(dtypes.Float32, 1, 1, 1, 1).BroadcastsTo(target))
	assert.False(t, MakeRowMajor(dtypes.Float32, 1, 3, 6, 6).BroadcastsTo(target))
	assert.False(t, MakeRowMajor(dtypes.Float32, 4, 6, 6).BroadcastsTo(target))
}

func TestRowMajorStrides(t *testing.T) {
	require.Equal(t, []int64{12, 4, 1}, RowMajorStrides([]int64{2, 3, 4}))
	require.Equal(t, []int{1}, RowMajorStrides([]int{7}))
	require.Empty(t, RowMajorStrides([]int64{}))
	require.Equal(t, []int32{192, 64, 8, 1}, RowMajorStrides([]int32{1, 3, 8, 8}))
}

func TestChannelsLastStrides(t *testing.T) {
	strides, err := ChannelsLastStrides([]int64{1, 4, 6, 6})
	require.NoError(t, err)
	require.Equal(t, []int64{144, 1, 24, 4}, strides)

	// Rank 5: [N, C, D, H, W].
	strides5, err := ChannelsLastStrides([]int{2, 3, 4, 5, 6})
	require.NoError(t, err)
	require.Equal(t, []int{360, 1, 90, 18, 3}, strides5)

	for _, dims := range [][]int64{{2, 3, 4}, {1, 2, 3, 4, 5, 6}, {}} {
		_, err = ChannelsLastStrides(dims)
		require.Error(t, err, "dims=%v", dims)
		require.True(t, status.IsKind(err, status.KindPrecondition))
	}

	viaLayout, err := StridesFor(ChannelsLast, []int64{1, 4, 6, 6})
	require.NoError(t, err)
	require.Equal(t, []int64{144, 1, 24, 4}, viaLayout)
	viaLayout, err = StridesFor(RowMajor, []int64{1, 4, 6, 6})
	require.NoError(t, err)
	require.Equal(t, []int64{144, 36, 6, 1}, viaLayout)
}

func TestIsChannelsLast(t *testing.T) {
	require.True(t, IsChannelsLast([]int64{144, 1, 24, 4}))
	require.False(t, IsChannelsLast([]int64{144, 36, 6, 1}))
	require.False(t, IsChannelsLast([]int64{1}))
	require.Equal(t, ChannelsLast, InferLayout([]int64{144, 1, 24, 4}))

	// Row-major tensors with 1x1 spatial dimensions are misidentified as channels-last.
	require.True(t, IsChannelsLast(RowMajorStrides([]int64{1, 4, 1, 1})))
}

func TestIter(t *testing.T) {
	s := Make(dtypes.Float32, []int64{2, 3}, []int64{1, 2}) // Column-major.
	var gotIndices [][]int64
	var gotOffsets []int64
	for indices, offset := range s.Iter() {
		gotIndices = append(gotIndices, []int64{indices[0], indices[1]})
		gotOffsets = append(gotOffsets, offset)
	}
	require.Equal(t, [][]int64{{0, 0}, {0, 1}, {0, 2}, {1, 0}, {1, 1}, {1, 2}}, gotIndices)
	require.Equal(t, []int64{0, 2, 4, 1, 3, 5}, gotOffsets)
	for ii, indices := range gotIndices {
		require.Equal(t, gotOffsets[ii], s.Offset(indices))
	}

	// Axes with dimension 1 are skipped.
	count := 0
	for range MakeRowMajor(dtypes.Float32, 1, 4, 1).Iter() {
		count++
	}
	require.Equal(t, 4, count)

	// Early break.
	count = 0
	for range MakeRowMajor(dtypes.Float32, 10, 10).Iter() {
		count++
		if count == 3 {
			break
		}
	}
	require.Equal(t, 3, count)

	// Scalar yields once.
	count = 0
	for _, offset := range MakeRowMajor(dtypes.Float32).Iter() {
		require.Zero(t, offset)
		count++
	}
	require.Equal(t, 1, count)
}

func TestFloatElements(t *testing.T) {
	for _, dtype := range []dtypes.DType{dtypes.Float16, dtypes.Float32, dtypes.Float64} {
		require.True(t, IsFloat(dtype))
		data := make([]byte, 3*dtype.Memory())
		PutFloat(dtype, data, 2, -2.5)
		PutFloat(dtype, data, 0, 0.25)
		assert.Equal(t, 0.25, GetFloat(dtype, data, 0), "dtype %s", dtype)
		assert.Equal(t, 0.0, GetFloat(dtype, data, 1), "dtype %s", dtype)
		assert.Equal(t, -2.5, GetFloat(dtype, data, 2), "dtype %s", dtype)
	}

	// Little-endian float32: 1.0 is 0x3F800000.
	data := make([]byte, 4)
	PutFloat(dtypes.Float32, data, 0, 1)
	assert.Equal(t, []byte{0x00, 0x00, 0x80, 0x3F}, data)

	assert.False(t, IsFloat(dtypes.Int32))
	require.Panics(t, func() { GetFloat(dtypes.Int32, data, 0) })
	require.Panics(t, func() { PutFloat(dtypes.Int8, data, 0, 1) })
}
