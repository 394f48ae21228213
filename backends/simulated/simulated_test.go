// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package simulated

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/gomlx/dnngraph/backends"
	"github.com/gomlx/dnngraph/types/shapes"
	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/x448/float16"
)

// mustOK panics if st is not StatusSuccess, otherwise it returns value.
func mustOK[T any](value T, st backends.Status) T {
	if !st.Ok() {
		exceptions.Panicf("unexpected backend status %s", st)
	}
	return value
}

func newTensor(t *testing.T, b *Backend, uid int64, dtype dtypes.DType, virtual bool, dims ...int64) backends.TensorDescriptor {
	t.Helper()
	return mustOK(b.TensorDescriptor(backends.TensorSpec{
		ID: uid, Dimensions: dims, Strides: shapes.RowMajorStrides(dims), DType: dtype, Alignment: 16, Virtual: virtual,
	}))
}

func TestParseConfig(t *testing.T) {
	c := must.M1(ParseConfig(""))
	assert.Equal(t, 3, c.NumEngines)
	assert.Equal(t, 1, c.NumDevices)
	assert.False(t, c.StrictDuplicates)
	assert.Len(t, c.Heuristics, 3)

	c = must.M1(ParseConfig("engines=5, unsupported=0;3, workspace=1:4096;2:16, devices=2, strict_duplicates=true, heuristics=heuristics_mode_b"))
	assert.Equal(t, 5, c.NumEngines)
	assert.Equal(t, []int{0, 3}, c.Unsupported)
	assert.Equal(t, map[int]int64{1: 4096, 2: 16}, c.Workspace)
	assert.Equal(t, 2, c.NumDevices)
	assert.True(t, c.StrictDuplicates)
	assert.Equal(t, []backends.HeuristicMode{backends.HeuristicModeB}, c.Heuristics)

	for _, invalid := range []string{"engines", "engines=-1", "devices=0", "workspace=1", "foo=bar", "strict_duplicates=maybe"} {
		_, err := ParseConfig(invalid)
		assert.Error(t, err, "config %q", invalid)
	}

	backend, err := backends.NewWithConfig("sim:engines=2")
	require.NoError(t, err)
	assert.Equal(t, BackendName, backend.Name())
	assert.Equal(t, 2, backend.(*Backend).Config().NumEngines)
}

func TestTensorDescriptor(t *testing.T) {
	b := must.M1(New(""))
	defer b.Finalize()
	valid := backends.TensorSpec{ID: 1, Dimensions: []int64{1, 3, 8, 8}, Strides: []int64{192, 64, 8, 1}, DType: dtypes.Float32, Alignment: 16}
	desc := mustOK(b.TensorDescriptor(valid))
	assert.Equal(t, int64(1), desc.ID())
	assert.Equal(t, []int64{1, 3, 8, 8}, desc.Dimensions())
	assert.Equal(t, []int64{192, 64, 8, 1}, desc.Strides())
	assert.Equal(t, dtypes.Float32, desc.DType())
	assert.Equal(t, int64(16), desc.Alignment())
	assert.False(t, desc.IsVirtual())

	invalid := map[string]func(spec *backends.TensorSpec){
		"zero alignment":    func(spec *backends.TensorSpec) { spec.Alignment = 0 },
		"non power of 2":    func(spec *backends.TensorSpec) { spec.Alignment = 12 },
		"rank mismatch":     func(spec *backends.TensorSpec) { spec.Strides = []int64{64, 8, 1} },
		"zero dimension":    func(spec *backends.TensorSpec) { spec.Dimensions = []int64{1, 0, 8, 8} },
		"negative stride":   func(spec *backends.TensorSpec) { spec.Strides = []int64{192, -64, 8, 1} },
		"rank 0":            func(spec *backends.TensorSpec) { spec.Dimensions, spec.Strides = nil, nil },
		"unsupported dtype": func(spec *backends.TensorSpec) { spec.DType = dtypes.Complex64 },
		"negative uid":      func(spec *backends.TensorSpec) { spec.ID = -1 },
	}
	for name, modify := range invalid {
		spec := valid
		modify(&spec)
		_, st := b.TensorDescriptor(spec)
		assert.False(t, st.Ok(), "case %q", name)
	}
	require.Equal(t, backends.StatusSuccess, desc.Destroy())
	require.Zero(t, b.Stats().LiveDescriptors())
}

func TestAccounting(t *testing.T) {
	b := must.M1(New(""))
	defer b.Finalize()
	x := newTensor(t, b, 1, dtypes.Float32, false, 2, 2)
	y := newTensor(t, b, 2, dtypes.Float32, false, 2, 2)
	pw := mustOK(b.PointwiseDescriptor(backends.PointwiseSpec{Mode: backends.PointwiseNeg}))
	op := mustOK(b.Operation(backends.OperationSpec{Kind: backends.OperationPointwise, X: x, Y: y, Pointwise: pw, Alpha: 1}))

	// Pointwise descriptor can be destroyed right after the operation is built.
	require.True(t, pw.Destroy().Ok())
	stats := b.Stats()
	assert.Equal(t, 1, stats.Live[KindOperation])
	assert.Equal(t, 2, stats.Live[KindTensor])
	assert.Equal(t, 0, stats.OrderViolations)

	// Destroying a tensor still referenced by the operation is an order violation.
	require.True(t, x.Destroy().Ok())
	assert.Equal(t, 1, b.Stats().OrderViolations)

	require.True(t, op.Destroy().Ok())
	require.True(t, y.Destroy().Ok())
	assert.Equal(t, 1, b.Stats().OrderViolations)

	assert.Equal(t, backends.StatusBadParam, y.Destroy())
	stats = b.Stats()
	assert.Equal(t, 1, stats.DoubleDestroys)
	assert.Zero(t, stats.LiveDescriptors())
	assert.Equal(t, 2, stats.Created[KindTensor])
}

func TestOperationValidation(t *testing.T) {
	b := must.M1(New(""))
	defer b.Finalize()
	x := newTensor(t, b, 1, dtypes.Float32, false, 1, 3, 8, 8)
	w := newTensor(t, b, 2, dtypes.Float32, false, 4, 3, 3, 3)
	y := newTensor(t, b, 3, dtypes.Float32, false, 1, 4, 6, 6)
	wrongY := newTensor(t, b, 4, dtypes.Float32, false, 1, 4, 8, 8)
	bias := newTensor(t, b, 5, dtypes.Float32, false, 1, 4, 1, 1)
	badBias := newTensor(t, b, 6, dtypes.Float32, false, 1, 3, 1, 1)
	conv := mustOK(b.ConvolutionDescriptor(backends.ConvolutionSpec{
		ComputeType: dtypes.Float32, SpatialDims: 2,
		Strides: []int64{1, 1}, PrePadding: []int64{0, 0}, PostPadding: []int64{0, 0}, Dilations: []int64{1, 1},
	}))
	add := mustOK(b.PointwiseDescriptor(backends.PointwiseSpec{Mode: backends.PointwiseAdd, ComputeType: dtypes.Float32}))

	_, st := b.Operation(backends.OperationSpec{Kind: backends.OperationConvolutionForward, X: x, W: w, Y: y, Convolution: conv, Alpha: 1})
	assert.True(t, st.Ok())
	_, st = b.Operation(backends.OperationSpec{Kind: backends.OperationConvolutionForward, X: x, W: w, Y: wrongY, Convolution: conv})
	assert.Equal(t, backends.StatusBadParam, st)
	_, st = b.Operation(backends.OperationSpec{Kind: backends.OperationConvolutionForward, X: x, Y: y, Convolution: conv})
	assert.Equal(t, backends.StatusBadParam, st)

	_, st = b.Operation(backends.OperationSpec{Kind: backends.OperationPointwise, X: y, B: bias, Y: y, Pointwise: add})
	assert.True(t, st.Ok())
	_, st = b.Operation(backends.OperationSpec{Kind: backends.OperationPointwise, X: y, B: badBias, Y: y, Pointwise: add})
	assert.Equal(t, backends.StatusBadParam, st)
	_, st = b.Operation(backends.OperationSpec{Kind: backends.OperationPointwise, X: y, Y: y, Pointwise: add})
	assert.Equal(t, backends.StatusBadParam, st)
	_, st = b.Operation(backends.OperationSpec{Kind: backends.OperationPointwise, X: x, B: bias, Y: y, Pointwise: add})
	assert.Equal(t, backends.StatusBadParam, st)

	// 3D convolutions are not supported.
	_, st = b.ConvolutionDescriptor(backends.ConvolutionSpec{
		SpatialDims: 3, Strides: []int64{1, 1, 1}, PrePadding: []int64{0, 0, 0}, PostPadding: []int64{0, 0, 0}, Dilations: []int64{1, 1, 1},
	})
	assert.Equal(t, backends.StatusNotSupported, st)
	_, st = b.PointwiseDescriptor(backends.PointwiseSpec{Mode: backends.PointwiseReluFwd, ReluLowerClip: 1, ReluUpperClip: 0})
	assert.Equal(t, backends.StatusBadParam, st)

	assert.Equal(t, []int64{2, 5, 4, 2}, ConvolutionOutputDims([]int64{2, 3, 8, 8}, []int64{5, 3, 3, 3}, backends.ConvolutionSpec{
		SpatialDims: 2, Strides: []int64{2, 3}, PrePadding: []int64{1, 0}, PostPadding: []int64{1, 0}, Dilations: []int64{1, 1},
	}))
}

// chain builds x -> neg -> y(virtual) -> abs -> z and returns the operations in forward order.
func chain(t *testing.T, b *Backend) (ops []backends.OperationDescriptor) {
	x := newTensor(t, b, 1, dtypes.Float32, false, 2, 3)
	y := newTensor(t, b, 2, dtypes.Float32, true, 2, 3)
	z := newTensor(t, b, 3, dtypes.Float32, false, 2, 3)
	neg := mustOK(b.PointwiseDescriptor(backends.PointwiseSpec{Mode: backends.PointwiseNeg}))
	abs := mustOK(b.PointwiseDescriptor(backends.PointwiseSpec{Mode: backends.PointwiseAbs}))
	ops = append(ops, mustOK(b.Operation(backends.OperationSpec{Kind: backends.OperationPointwise, X: x, Y: y, Pointwise: neg, Alpha: 2})))
	ops = append(ops, mustOK(b.Operation(backends.OperationSpec{Kind: backends.OperationPointwise, X: y, Y: z, Pointwise: abs, Alpha: 1})))
	return ops
}

func TestOperationGraph(t *testing.T) {
	b := must.M1(New("strict_duplicates=true"))
	defer b.Finalize()
	handle := mustOK(b.NewHandle(0))
	ops := chain(t, b)

	graph := mustOK(b.OperationGraph(handle, ops))
	assert.Equal(t, 2, graph.NumOperations())
	assert.Equal(t, "pointwise:neg#2|pointwise:abs#3", graph.Tag())

	// Virtual tensor read before produced.
	_, st := b.OperationGraph(handle, []backends.OperationDescriptor{ops[1], ops[0]})
	assert.Equal(t, backends.StatusBadParam, st)

	// Duplicates rejected in strict mode.
	_, st = b.OperationGraph(handle, []backends.OperationDescriptor{ops[0], ops[0], ops[1]})
	assert.Equal(t, backends.StatusBadParam, st)

	_, st = b.OperationGraph(handle, nil)
	assert.Equal(t, backends.StatusBadParam, st)

	_, st = b.NewHandle(1)
	assert.Equal(t, backends.StatusBadParam, st)
}

func TestEngineSelection(t *testing.T) {
	b := must.M1(New("engines=3,unsupported=0;2,workspace=1:1024"))
	defer b.Finalize()
	handle := mustOK(b.NewHandle(0))
	graph := mustOK(b.OperationGraph(handle, chain(t, b)))

	configs := mustOK(b.EngineConfigs(graph, backends.HeuristicModeA, nil))
	require.Len(t, configs, 3)
	assert.Equal(t, []string{"eng0", "eng1", "eng2"}, []string{configs[0].Name(), configs[1].Name(), configs[2].Name()})

	_, st := b.ExecutionPlan(handle, configs[0], graph.Tag())
	assert.Equal(t, backends.StatusNotSupported, st)
	_, st = b.ExecutionPlan(handle, configs[1], "wrong tag")
	assert.Equal(t, backends.StatusBadParam, st)
	plan := mustOK(b.ExecutionPlan(handle, configs[1], graph.Tag()))
	assert.Equal(t, int64(1024), plan.WorkspaceSize())
	assert.Equal(t, graph.Tag()+"@eng1", plan.Tag())
	stats := b.Stats()
	assert.Equal(t, 3, stats.PlanAttempts)
	assert.Equal(t, 1, stats.PlansBuilt)

	// Mode B reverses the ranking; the filter drops (and destroys) rejected configs.
	liveConfigs := b.Stats().Live[KindEngineConfig]
	configsB := mustOK(b.EngineConfigs(graph, backends.HeuristicModeB, func(c backends.EngineConfig) bool {
		return c.Name() == "eng1"
	}))
	require.Len(t, configsB, 2)
	assert.Equal(t, "eng2", configsB[0].Name())
	assert.Equal(t, "eng0", configsB[1].Name())
	assert.Equal(t, liveConfigs+2, b.Stats().Live[KindEngineConfig])

	fallback := mustOK(b.EngineConfigs(graph, backends.HeuristicModeFallback, nil))
	require.Len(t, fallback, 1)
	_, st = b.EngineConfigs(graph, "heuristics_unknown", nil)
	assert.Equal(t, backends.StatusNotSupported, st)

	// Graph with no engines.
	b0 := must.M1(New("engines=0"))
	defer b0.Finalize()
	handle0 := mustOK(b0.NewHandle(0))
	graph0 := mustOK(b0.OperationGraph(handle0, chain(t, b0)))
	assert.Empty(t, mustOK(b0.EngineConfigs(graph0, backends.HeuristicModeA, nil)))
}

func float32Bytes(values ...float32) []byte {
	data := make([]byte, 4*len(values))
	for ii, v := range values {
		binary.LittleEndian.PutUint32(data[4*ii:], math.Float32bits(v))
	}
	return data
}

func bytesFloat32(data []byte) []float32 {
	values := make([]float32, len(data)/4)
	for ii := range values {
		values[ii] = math.Float32frombits(binary.LittleEndian.Uint32(data[4*ii:]))
	}
	return values
}

func TestExecute(t *testing.T) {
	b := must.M1(New(""))
	defer b.Finalize()
	handle := mustOK(b.NewHandle(0))
	graph := mustOK(b.OperationGraph(handle, chain(t, b)))
	configs := mustOK(b.EngineConfigs(graph, backends.HeuristicModeA, nil))
	plan := mustOK(b.ExecutionPlan(handle, configs[0], graph.Tag()))

	xBuf := mustOK(b.Allocate(handle, backends.MemoryDevice, 6*4))
	zBuf := mustOK(b.Allocate(handle, backends.MemoryDevice, 6*4))
	require.True(t, b.CopyToDevice(xBuf, float32Bytes(1, -2, 3, -4, 5, -6)).Ok())

	pack := mustOK(b.VariantPack(backends.NullPointer,
		[]backends.DevicePointer{xBuf.BasePointer(), zBuf.BasePointer()}, []int64{1, 3}))
	require.Equal(t, backends.StatusSuccess, b.Execute(handle, plan, pack))
	out := make([]byte, 6*4)
	require.True(t, b.CopyFromDevice(zBuf, out).Ok())
	assert.Equal(t, []float32{2, 4, 6, 8, 10, 12}, bytesFloat32(out))

	// Binding the virtual tensor, or missing a tensor, fails.
	badPack := mustOK(b.VariantPack(backends.NullPointer,
		[]backends.DevicePointer{xBuf.BasePointer(), zBuf.BasePointer()}, []int64{1, 2}))
	assert.Equal(t, backends.StatusBadParam, b.Execute(handle, plan, badPack))
	shortPack := mustOK(b.VariantPack(backends.NullPointer, []backends.DevicePointer{xBuf.BasePointer()}, []int64{1}))
	assert.Equal(t, backends.StatusBadParam, b.Execute(handle, plan, shortPack))

	// Host memory can't be bound.
	hostBuf := mustOK(b.Allocate(handle, backends.MemoryHost, 6*4))
	hostPack := mustOK(b.VariantPack(backends.NullPointer,
		[]backends.DevicePointer{hostBuf.BasePointer(), zBuf.BasePointer()}, []int64{1, 3}))
	assert.Equal(t, backends.StatusBadParam, b.Execute(handle, plan, hostPack))

	_, st := b.VariantPack(backends.NullPointer, []backends.DevicePointer{xBuf.BasePointer()}, []int64{1, 3})
	assert.Equal(t, backends.StatusBadParam, st)

	stats := b.Stats()
	assert.Equal(t, 4, stats.Executions)
	assert.Equal(t, 3, stats.FailedExecutions)
	assert.Equal(t, 3, stats.Allocations)
	for _, buf := range []backends.Buffer{xBuf, zBuf, hostBuf} {
		require.True(t, b.Free(buf).Ok())
	}
	assert.Equal(t, backends.StatusBadParam, b.Free(xBuf))
}

func TestKernels(t *testing.T) {
	// Convolution in NCHW and NHWC layouts must agree, for float32 and float16.
	for _, dtype := range []dtypes.DType{dtypes.Float32, dtypes.Float16} {
		for _, layout := range []shapes.Layout{shapes.RowMajor, shapes.ChannelsLast} {
			xShape := shapes.Make(dtype, []int64{1, 2, 3, 3}, must.M1(shapes.StridesFor(layout, []int64{1, 2, 3, 3})))
			wShape := shapes.MakeRowMajor(dtype, 1, 2, 2, 2)
			yShape := shapes.Make(dtype, []int64{1, 1, 2, 2}, must.M1(shapes.StridesFor(layout, []int64{1, 1, 2, 2})))
			x := tensorMemory{shape: xShape, data: make([]byte, xShape.Memory())}
			w := tensorMemory{shape: wShape, data: make([]byte, wShape.Memory())}
			y := tensorMemory{shape: yShape, data: make([]byte, yShape.Memory())}
			for indices, offset := range xShape.Iter() {
				// x[0, c, h, w] = 10*c + 3*h + w
				x.set(offset, float64(10*indices[1]+3*indices[2]+indices[3]))
			}
			for _, offset := range wShape.Iter() {
				w.set(offset, 1)
			}
			op := &Operation{
				kind: backends.OperationConvolutionForward,
				x:    &TensorDesc{id: 1}, w: &TensorDesc{id: 2}, y: &TensorDesc{id: 3},
				conv: backends.ConvolutionSpec{SpatialDims: 2, Strides: []int64{1, 1}, PrePadding: []int64{0, 0},
					PostPadding: []int64{0, 0}, Dilations: []int64{1, 1}},
				alpha: 1,
			}
			runOperation(op, map[int64]tensorMemory{1: x, 2: w, 3: y})
			var got []float64
			for indices := range yShape.Iter() {
				got = append(got, y.get(yShape.Offset(indices)))
			}
			// All-ones 2x2 filter: sum of the window over both channels.
			want := make([]float64, 0, 4)
			for oh := range 2 {
				for ow := range 2 {
					var sum float64
					for c := range 2 {
						for fh := range 2 {
							for fw := range 2 {
								sum += float64(10*c + 3*(oh+fh) + (ow + fw))
							}
						}
					}
					want = append(want, sum)
				}
			}
			assert.Equal(t, want, got, "dtype=%s, layout=%s", dtype, layout)
		}
	}

	// Binary add with broadcast b and relu with clipping.
	xShape := shapes.MakeRowMajor(dtypes.Float32, 1, 2, 1, 2)
	bShape := shapes.MakeRowMajor(dtypes.Float32, 1, 2, 1, 1)
	x := tensorMemory{shape: xShape, data: float32Bytes(-3, 1, 2, 7)}
	bias := tensorMemory{shape: bShape, data: float32Bytes(1, -1)}
	y := tensorMemory{shape: xShape, data: make([]byte, 16)}
	relu := tensorMemory{shape: xShape, data: make([]byte, 16)}
	memory := map[int64]tensorMemory{1: x, 2: bias, 3: y, 4: relu}
	runOperation(&Operation{
		kind: backends.OperationPointwise, x: &TensorDesc{id: 1}, b: &TensorDesc{id: 2}, y: &TensorDesc{id: 3},
		pointwise: backends.PointwiseSpec{Mode: backends.PointwiseAdd}, alpha: 1, alpha2: 2,
	}, memory)
	assert.Equal(t, []float32{-1, 3, 0, 5}, bytesFloat32(y.data))
	runOperation(&Operation{
		kind: backends.OperationPointwise, x: &TensorDesc{id: 3}, y: &TensorDesc{id: 4},
		pointwise: backends.PointwiseSpec{Mode: backends.PointwiseReluFwd, ReluLowerClip: 0, ReluUpperClip: 4}, alpha: 1,
	}, memory)
	assert.Equal(t, []float32{0, 3, 0, 4}, bytesFloat32(relu.data))

	// Float16 round trip.
	h := tensorMemory{shape: shapes.MakeRowMajor(dtypes.Float16, 2), data: make([]byte, 4)}
	h.set(1, 1.5)
	assert.Equal(t, 1.5, h.get(1))
	assert.Equal(t, float16.Fromfloat32(1.5).Bits(), binary.LittleEndian.Uint16(h.data[2:]))
}
