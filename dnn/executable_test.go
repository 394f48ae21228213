// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package dnn

import (
	"math"
	"testing"

	"github.com/gomlx/dnngraph/backends"
	"github.com/gomlx/dnngraph/backends/simulated"
	"github.com/gomlx/dnngraph/types/status"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// addGraph builds the graph y = x + b, with x, b and y of shape [2, 4] and uids 1, 2 and 3.
// The returned graph is the only owner of the tensors.
func addGraph(t *testing.T, backend backends.Backend, handle backends.Handle, opts ...GraphOption) *OperationGraph {
	t.Helper()
	x := rowMajor(t, backend, 1, 2, 4)
	b := rowMajor(t, backend, 2, 2, 4)
	y, err := CreatePointwiseBinary(backend, backends.PointwiseAdd, x, 1, b, 1, 3, 16, false)
	require.NoError(t, err)
	defer releaseAll(x, b, y)
	g, err := CreateOperationGraph(backend, handle, []Tensor{y}, opts...)
	require.NoError(t, err)
	return g
}

func TestEngineSelection(t *testing.T) {
	t.Run("FirstViable", func(t *testing.T) {
		backend, handle := testBackend(t, "engines=3,unsupported=0;2")
		g := addGraph(t, backend, handle)
		defer g.Release()
		e, err := CreateExecutable(backend, handle, g)
		require.NoError(t, err)
		defer e.Release()
		assert.Equal(t, 1, e.NumPlans())
		assert.Equal(t, g.Tag()+"@eng1", e.Plan().Tag())

		// eng0 failed, eng1 succeeded and eng2 was never tried.
		stats := backend.Stats()
		assert.Equal(t, 2, stats.PlanAttempts)
		assert.Equal(t, 1, stats.PlansBuilt)
		assert.Equal(t, 3, stats.Created[simulated.KindEngineConfig])
		assert.Zero(t, stats.Live[simulated.KindEngineConfig])
		assert.Equal(t, 1, stats.Live[simulated.KindPlan])
	})

	t.Run("HeuristicMode", func(t *testing.T) {
		backend, handle := testBackend(t, "engines=3")
		g := addGraph(t, backend, handle)
		defer g.Release()
		for mode, want := range map[backends.HeuristicMode]string{
			backends.HeuristicModeA:        "eng0",
			backends.HeuristicModeB:        "eng2",
			backends.HeuristicModeFallback: "eng0",
		} {
			e, err := CreateExecutable(backend, handle, g, WithHeuristicMode(mode))
			require.NoError(t, err)
			assert.Equalf(t, g.Tag()+"@"+want, e.Plan().Tag(), "heuristic mode %s", mode)
			e.Release()
		}
	})

	t.Run("Filter", func(t *testing.T) {
		backend, handle := testBackend(t, "engines=3")
		g := addGraph(t, backend, handle)
		defer g.Release()
		var seen []string
		e, err := CreateExecutable(backend, handle, g, WithEngineConfigFilter(func(config backends.EngineConfig) bool {
			seen = append(seen, config.Name())
			return config.Name() == "eng0"
		}))
		require.NoError(t, err)
		defer e.Release()
		assert.Equal(t, []string{"eng0", "eng1", "eng2"}, seen)
		assert.Equal(t, g.Tag()+"@eng1", e.Plan().Tag())
		assert.Equal(t, 1, backend.Stats().PlanAttempts)

		// Rejecting everything leaves no candidates.
		_, err = CreateExecutable(backend, handle, g, WithEngineConfigFilter(func(backends.EngineConfig) bool { return true }))
		requireKind(t, err, status.KindUnsupportedGraph)
	})

	t.Run("NoEngines", func(t *testing.T) {
		backend, handle := testBackend(t, "engines=0")
		g := addGraph(t, backend, handle)
		defer g.Release()
		_, err := CreateExecutable(backend, handle, g)
		requireKind(t, err, status.KindUnsupportedGraph)
		assert.Equal(t, int32(1), g.refs.Load())
	})

	t.Run("UnknownHeuristic", func(t *testing.T) {
		backend, handle := testBackend(t, "")
		g := addGraph(t, backend, handle)
		defer g.Release()
		_, err := CreateExecutable(backend, handle, g, WithHeuristicMode("heuristics_instant"))
		requireKind(t, err, status.KindUnsupportedGraph)
	})

	t.Run("NoViableEngine", func(t *testing.T) {
		backend, handle := testBackend(t, "engines=2,unsupported=0;1")
		g := addGraph(t, backend, handle)
		defer g.Release()
		_, err := CreateExecutable(backend, handle, g)
		requireKind(t, err, status.KindNoViableEngineConfig)
		assert.Equal(t, status.Unimplemented, status.CodeOf(err))
		assert.Equal(t, 2, backend.Stats().PlanAttempts)
		assert.Zero(t, backend.Stats().Live[simulated.KindEngineConfig])
	})

	t.Run("NilGraph", func(t *testing.T) {
		backend, handle := testBackend(t, "")
		_, err := CreateExecutable(backend, handle, nil)
		requireKind(t, err, status.KindPrecondition)
	})
}

func TestExecutableOwnsGraph(t *testing.T) {
	backend, handle := testBackend(t, "")
	baseline := LiveTensors()
	g := addGraph(t, backend, handle)
	e, err := CreateExecutable(backend, handle, g)
	require.NoError(t, err)
	g.Release()
	assert.Equal(t, baseline+3, LiveTensors())
	assert.Equal(t, 1, backend.Stats().Live[simulated.KindGraph])

	// The executable is still usable with only its own reference to the graph.
	x := deviceBuffer(t, backend, handle, g.Arguments()[0], []float32{1, 2, 3, 4, 5, 6, 7, 8})
	b := deviceBuffer(t, backend, handle, g.Arguments()[1], []float32{10, 20, 30, 40, 50, 60, 70, 80})
	y := deviceBuffer(t, backend, handle, g.Results()[0], nil)
	require.NoError(t, e.Execute(handle, []backends.Buffer{x, b, y}))
	assert.Equal(t, []float32{11, 22, 33, 44, 55, 66, 77, 88}, readBuffer(t, backend, y, 8))

	e.Release()
	assert.Equal(t, baseline, LiveTensors())
	assert.Equal(t, "Executable(<no plan>)", e.String())
}

func TestExecuteErrors(t *testing.T) {
	t.Run("NoPlan", func(t *testing.T) {
		err := (&Executable{}).Execute(nil, nil)
		requireKind(t, err, status.KindInternal)
	})

	t.Run("Arity", func(t *testing.T) {
		backend, handle := testBackend(t, "")
		g := addGraph(t, backend, handle)
		defer g.Release()
		e, err := CreateExecutable(backend, handle, g)
		require.NoError(t, err)
		defer e.Release()
		x := deviceBuffer(t, backend, handle, g.Arguments()[0], nil)
		requireKind(t, e.Execute(handle, []backends.Buffer{x, x}), status.KindArityMismatch)
		requireKind(t, e.Execute(handle, []backends.Buffer{x, x, x, x}), status.KindArityMismatch)
		stats := backend.Stats()
		assert.Zero(t, stats.Executions)
		assert.Zero(t, stats.Created[simulated.KindVariantPack])
	})

	t.Run("BufferKind", func(t *testing.T) {
		backend, handle := testBackend(t, "")
		g := addGraph(t, backend, handle)
		defer g.Release()
		e, err := CreateExecutable(backend, handle, g)
		require.NoError(t, err)
		defer e.Release()
		x := deviceBuffer(t, backend, handle, g.Arguments()[0], nil)
		host, st := backend.Allocate(handle, backends.MemoryHost, 32)
		require.True(t, st.Ok())
		defer func() { require.True(t, backend.Free(host).Ok()) }()
		requireKind(t, e.Execute(handle, []backends.Buffer{x, host, x}), status.KindInvalidBufferKind)
		requireKind(t, e.Execute(handle, []backends.Buffer{x, nil, x}), status.KindInvalidBufferKind)
		assert.Zero(t, backend.Stats().Executions)
	})

	t.Run("Workspace", func(t *testing.T) {
		backend, handle := testBackend(t, "workspace=0:1024")
		g := addGraph(t, backend, handle)
		defer g.Release()
		e, err := CreateExecutable(backend, handle, g)
		require.NoError(t, err)
		defer e.Release()
		assert.Equal(t, int64(1024), e.WorkspaceSize())
		x := deviceBuffer(t, backend, handle, g.Arguments()[0], nil)
		b := deviceBuffer(t, backend, handle, g.Arguments()[1], nil)
		y := deviceBuffer(t, backend, handle, g.Results()[0], nil)
		requireKind(t, e.Execute(handle, []backends.Buffer{x, b, y}), status.KindWorkspaceUnsupported)
		assert.Zero(t, backend.Stats().Executions)
	})

	t.Run("RepeatedOutput", func(t *testing.T) {
		backend, handle := testBackend(t, "")
		x := rowMajor(t, backend, 1, 2, 4)
		y, err := CreatePointwiseUnary(backend, backends.PointwiseNeg, x, 1, 2, 16, false)
		require.NoError(t, err)
		g, err := CreateOperationGraph(backend, handle, []Tensor{y, y})
		require.NoError(t, err)
		releaseAll(x, y)
		defer g.Release()
		assert.Equal(t, []int64{1, 2, 2}, g.UIDs())
		e, err := CreateExecutable(backend, handle, g)
		require.NoError(t, err)
		defer e.Release()
		xBuf := deviceBuffer(t, backend, handle, x, nil)
		yBuf := deviceBuffer(t, backend, handle, y, nil)
		requireKind(t, e.Execute(handle, []backends.Buffer{xBuf, yBuf, yBuf}), status.KindBackendDescriptor)
		assert.Zero(t, backend.Stats().Executions)
	})

	t.Run("BufferTooSmall", func(t *testing.T) {
		backend, handle := testBackend(t, "")
		g := addGraph(t, backend, handle)
		defer g.Release()
		e, err := CreateExecutable(backend, handle, g)
		require.NoError(t, err)
		defer e.Release()
		x := deviceBuffer(t, backend, handle, g.Arguments()[0], nil)
		b := deviceBuffer(t, backend, handle, g.Arguments()[1], nil)
		small, st := backend.Allocate(handle, backends.MemoryDevice, 4)
		require.True(t, st.Ok())
		defer func() { require.True(t, backend.Free(small).Ok()) }()
		err = e.Execute(handle, []backends.Buffer{x, b, small})
		requireKind(t, err, status.KindBackendExecution)
		assert.Equal(t, status.InvalidArgument, status.CodeOf(err))
		stats := backend.Stats()
		assert.Equal(t, 1, stats.Executions)
		assert.Equal(t, 1, stats.FailedExecutions)
		assert.Equal(t, 1, stats.Created[simulated.KindVariantPack])
		assert.Zero(t, stats.Live[simulated.KindVariantPack])
	})
}

// TestConvBiasRelu runs relu(conv(x, w) + bias) on a channels-last input, and compares with a direct
// computation on the host.
func TestConvBiasRelu(t *testing.T) {
	backend, handle := testBackend(t, "")
	const (
		batch, channels, height, width = 1, 3, 4, 5
		outChannels, kh, kw            = 2, 3, 2
	)
	x := channelsLast(t, backend, 1, batch, channels, height, width)
	w := rowMajor(t, backend, 2, outChannels, channels, kh, kw)
	bias := rowMajor(t, backend, 3, 1, outChannels, 1, 1)
	conv, err := CreateConvolution(backend, x, w, 10, 16, true, backends.CrossCorrelation)
	require.NoError(t, err)
	biased, err := CreatePointwiseBinary(backend, backends.PointwiseAdd, conv, 1, bias, 1, 11, 16, true)
	require.NoError(t, err)
	y, err := CreatePointwiseRelu(backend, biased, 0, math.Inf(1), 12, 16, false)
	require.NoError(t, err)
	g, err := CreateOperationGraph(backend, handle, []Tensor{y})
	require.NoError(t, err)
	defer g.Release()
	releaseAll(x, w, bias, conv, biased, y)
	assert.Equal(t, []int64{1, 2, 3, 12}, g.UIDs())
	assert.Equal(t, []int64{batch, outChannels, height - kh + 1, width - kw + 1}, y.Shape().Dimensions)
	assert.True(t, y.Shape().Strides[1] == 1, "output should be channels-last")

	e, err := CreateExecutable(backend, handle, g)
	require.NoError(t, err)
	defer e.Release()

	rawValues := func(n int64, fn func(ii int64) float32) []float32 {
		values := make([]float32, n)
		for ii := range values {
			values[ii] = fn(int64(ii))
		}
		return values
	}
	xShape, wShape, yShape := x.Shape(), w.Shape(), y.Shape()
	xRaw := rawValues(xShape.Span(), func(ii int64) float32 { return float32(ii%7-3) * 0.5 })
	wRaw := rawValues(wShape.Span(), func(ii int64) float32 { return float32(ii%5-2) * 0.25 })
	biasRaw := []float32{-1, 0.5}
	xBuf := deviceBuffer(t, backend, handle, x, xRaw)
	wBuf := deviceBuffer(t, backend, handle, w, wRaw)
	biasBuf := deviceBuffer(t, backend, handle, bias, biasRaw)
	yBuf := deviceBuffer(t, backend, handle, y, nil)
	require.NoError(t, e.Execute(handle, []backends.Buffer{xBuf, wBuf, biasBuf, yBuf}))
	got := readBuffer(t, backend, yBuf, int(yShape.Span()))

	want := make([]float32, yShape.Span())
	var numPositive int
	for indices, offset := range yShape.Iter() {
		n, co, h, ww := indices[0], indices[1], indices[2], indices[3]
		sum := biasRaw[co]
		for c := int64(0); c < channels; c++ {
			for dh := int64(0); dh < kh; dh++ {
				for dw := int64(0); dw < kw; dw++ {
					sum += xRaw[xShape.Offset([]int64{n, c, h + dh, ww + dw})] * wRaw[wShape.Offset([]int64{co, c, dh, dw})]
				}
			}
		}
		if sum > 0 {
			numPositive++
		}
		want[offset] = max(sum, 0)
	}
	require.Greater(t, numPositive, 0)
	require.Less(t, numPositive, len(want))
	assert.InDeltaSlice(t, want, got, 1e-4)
	assert.Equal(t, 1, backend.Stats().Executions)
}
