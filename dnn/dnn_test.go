// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package dnn

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/gomlx/dnngraph/backends"
	"github.com/gomlx/dnngraph/backends/simulated"
	"github.com/gomlx/dnngraph/types/shapes"
	"github.com/gomlx/dnngraph/types/status"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/require"
)

// testBackend creates a simulated backend and a handle. At the end of the test it checks that all tensors and
// descriptors were released exactly once and in a safe order.
func testBackend(t *testing.T, config string) (*simulated.Backend, backends.Handle) {
	t.Helper()
	backend := must.M1(simulated.New(config))
	handle, st := backend.NewHandle(0)
	require.True(t, st.Ok())
	liveAtStart := LiveTensors()
	t.Cleanup(func() {
		require.True(t, handle.Destroy().Ok())
		stats := backend.Stats()
		require.Zerof(t, stats.LiveDescriptors(), "live descriptors: %v", stats.Live)
		require.Zero(t, stats.DoubleDestroys)
		require.Zero(t, stats.OrderViolations)
		require.Equal(t, liveAtStart, LiveTensors())
		backend.Finalize()
	})
	return backend, handle
}

// rowMajor creates a float32 argument tensor with row-major strides.
func rowMajor(t *testing.T, backend backends.Backend, uid int64, dims ...int64) *ArgTensor {
	t.Helper()
	x, err := CreateTensor(backend, dims, shapes.RowMajorStrides(dims), uid, dtypes.Float32, 16)
	require.NoError(t, err)
	return x
}

// channelsLast creates a float32 argument tensor with channels-last strides.
func channelsLast(t *testing.T, backend backends.Backend, uid int64, dims ...int64) *ArgTensor {
	t.Helper()
	strides, err := shapes.ChannelsLastStrides(dims)
	require.NoError(t, err)
	x, err := CreateTensor(backend, dims, strides, uid, dtypes.Float32, 16)
	require.NoError(t, err)
	return x
}

func releaseAll(tensors ...Tensor) {
	for _, t := range tensors {
		t.Release()
	}
}

func uidsOf(tensors []Tensor) []int64 {
	uids := make([]int64, len(tensors))
	for ii, t := range tensors {
		uids[ii] = t.UID()
	}
	return uids
}

// requireKind checks that err is a *status.Error of the given kind.
func requireKind(t *testing.T, err error, kind status.Kind) {
	t.Helper()
	require.Error(t, err)
	require.Equalf(t, kind, status.KindOf(err), "unexpected error: %+v", err)
}

// deviceBuffer allocates a device buffer for the tensor and fills it with values, if given.
func deviceBuffer(t *testing.T, backend *simulated.Backend, handle backends.Handle, tensor Tensor, values []float32) backends.Buffer {
	t.Helper()
	buf, st := backend.Allocate(handle, backends.MemoryDevice, int64(tensor.Shape().Memory()))
	require.True(t, st.Ok())
	t.Cleanup(func() { require.True(t, backend.Free(buf).Ok()) })
	if values != nil {
		data := make([]byte, 4*len(values))
		for ii, v := range values {
			binary.LittleEndian.PutUint32(data[4*ii:], math.Float32bits(v))
		}
		require.True(t, backend.CopyToDevice(buf, data).Ok())
	}
	return buf
}

// readBuffer reads n float32 values from the device buffer.
func readBuffer(t *testing.T, backend *simulated.Backend, buf backends.Buffer, n int) []float32 {
	t.Helper()
	data := make([]byte, 4*n)
	require.True(t, backend.CopyFromDevice(buf, data).Ok())
	values := make([]float32, n)
	for ii := range values {
		values[ii] = math.Float32frombits(binary.LittleEndian.Uint32(data[4*ii:]))
	}
	return values
}
