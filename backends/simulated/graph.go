// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package simulated

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gomlx/dnngraph/backends"
	"github.com/gomlx/dnngraph/types/sets"
	"k8s.io/klog/v2"
)

// Operation implements backends.OperationDescriptor.
//
// It copies the parameters of its PointwiseDesc or ConvolutionDesc, which can be destroyed right after,
// and references its tensor descriptors, which must outlive it.
type Operation struct {
	object
	kind      backends.OperationKind
	x, b, w   *TensorDesc
	y         *TensorDesc
	pointwise backends.PointwiseSpec
	conv      backends.ConvolutionSpec
	alpha     float64
	alpha2    float64
	beta      float64
}

func (op *Operation) Kind() backends.OperationKind { return op.kind }

// inputs returns the tensors read by the operation.
func (op *Operation) inputs() []*TensorDesc {
	inputs := make([]*TensorDesc, 0, 2)
	for _, t := range []*TensorDesc{op.x, op.b, op.w} {
		if t != nil {
			inputs = append(inputs, t)
		}
	}
	return inputs
}

// String returns a short description of the operation, used in graph tags.
func (op *Operation) String() string {
	if op.kind == backends.OperationPointwise {
		return fmt.Sprintf("%s:%s#%d", op.kind, op.pointwise.Mode, op.y.id)
	}
	return fmt.Sprintf("%s#%d", op.kind, op.y.id)
}

// asTensorDesc converts a backends.TensorDescriptor to this backend's implementation, nil if it is nil or
// of another backend.
func asTensorDesc(desc backends.TensorDescriptor) *TensorDesc {
	t, _ := desc.(*TensorDesc)
	return t
}

// Operation implements backends.Backend.
func (b *Backend) Operation(spec backends.OperationSpec) (backends.OperationDescriptor, backends.Status) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.usable() {
		return nil, backends.StatusNotInitialized
	}
	op := &Operation{
		kind:   spec.Kind,
		x:      asTensorDesc(spec.X),
		b:      asTensorDesc(spec.B),
		w:      asTensorDesc(spec.W),
		y:      asTensorDesc(spec.Y),
		alpha:  spec.Alpha,
		alpha2: spec.Alpha2,
		beta:   spec.Beta,
	}
	var st backends.Status
	switch spec.Kind {
	case backends.OperationPointwise:
		st = b.validatePointwise(op, spec)
	case backends.OperationConvolutionForward:
		st = b.validateConvolution(op, spec)
	default:
		klog.Errorf("simulated backend: unknown operation kind %s", spec.Kind)
		st = backends.StatusBadParam
	}
	if !st.Ok() {
		return nil, st
	}

	op.object = b.newObject(KindOperation)
	referenced := op.inputs()
	referenced = append(referenced, op.y)
	for _, t := range referenced {
		t.refs++
	}
	op.onDestroy = func() {
		for _, t := range referenced {
			t.refs--
		}
	}
	klog.V(2).Infof("simulated backend: operation %s", op)
	return op, backends.StatusSuccess
}

func (b *Backend) validatePointwise(op *Operation, spec backends.OperationSpec) backends.Status {
	pw, _ := spec.Pointwise.(*PointwiseDesc)
	if pw == nil || !pw.alive(b) {
		klog.Errorf("simulated backend: pointwise operation requires a live pointwise descriptor")
		return backends.StatusBadParam
	}
	op.pointwise = pw.spec
	if !op.x.live(b) || !op.y.live(b) || op.w != nil {
		klog.Errorf("simulated backend: pointwise operation requires live x and y tensors, and no w")
		return backends.StatusBadParam
	}
	if !op.x.shape.EqualDimensions(op.y.shape) {
		klog.Errorf("simulated backend: pointwise x %s and y %s dimensions differ", op.x.shape, op.y.shape)
		return backends.StatusBadParam
	}
	if pw.spec.Mode.IsBinary() {
		if !op.b.live(b) {
			klog.Errorf("simulated backend: binary pointwise %s requires a live b tensor", pw.spec.Mode)
			return backends.StatusBadParam
		}
		if !op.b.shape.BroadcastsTo(op.y.shape) {
			klog.Errorf("simulated backend: pointwise b %s can't be broadcast to y %s", op.b.shape, op.y.shape)
			return backends.StatusBadParam
		}
	} else if op.b != nil {
		klog.Errorf("simulated backend: unary pointwise %s given a b tensor", pw.spec.Mode)
		return backends.StatusBadParam
	}
	return backends.StatusSuccess
}

// ConvolutionOutputDims returns the output dimensions of a forward convolution of an input with dims
// [N, C, spatial...] and a filter with dims [Co, C, kernel...].
func ConvolutionOutputDims(input, filter []int64, spec backends.ConvolutionSpec) []int64 {
	output := []int64{input[0], filter[0]}
	for axis := range spec.SpatialDims {
		padded := input[axis+2] + spec.PrePadding[axis] + spec.PostPadding[axis]
		dilated := (filter[axis+2]-1)*spec.Dilations[axis] + 1
		output = append(output, (padded-dilated)/spec.Strides[axis]+1)
	}
	return output
}

func (b *Backend) validateConvolution(op *Operation, spec backends.OperationSpec) backends.Status {
	conv, _ := spec.Convolution.(*ConvolutionDesc)
	if conv == nil || !conv.alive(b) {
		klog.Errorf("simulated backend: convolution operation requires a live convolution descriptor")
		return backends.StatusBadParam
	}
	op.conv = conv.spec
	if !op.x.live(b) || !op.w.live(b) || !op.y.live(b) || op.b != nil {
		klog.Errorf("simulated backend: convolution operation requires live x, w and y tensors, and no b")
		return backends.StatusBadParam
	}
	rank := conv.spec.SpatialDims + 2
	if op.x.shape.Rank() != rank || op.w.shape.Rank() != rank || op.y.shape.Rank() != rank {
		klog.Errorf("simulated backend: convolution with %d spatial dims requires rank %d x %s, w %s and y %s",
			conv.spec.SpatialDims, rank, op.x.shape, op.w.shape, op.y.shape)
		return backends.StatusBadParam
	}
	if op.x.shape.Dimensions[1] != op.w.shape.Dimensions[1] {
		klog.Errorf("simulated backend: convolution x %s and w %s have different input channels", op.x.shape, op.w.shape)
		return backends.StatusBadParam
	}
	want := ConvolutionOutputDims(op.x.shape.Dimensions, op.w.shape.Dimensions, conv.spec)
	if !slices.Equal(want, op.y.shape.Dimensions) {
		klog.Errorf("simulated backend: convolution y %s should have dimensions %v", op.y.shape, want)
		return backends.StatusBadParam
	}
	for _, d := range want {
		if d <= 0 {
			klog.Errorf("simulated backend: convolution filter %s larger than input %s", op.w.shape, op.x.shape)
			return backends.StatusBadParam
		}
	}
	return backends.StatusSuccess
}

// Graph implements backends.GraphDescriptor.
type Graph struct {
	object
	id  int
	tag string
	ops []*Operation

	// tensors indexed by uid, and the uids in order of first appearance.
	tensors map[int64]*TensorDesc
	uids    []int64
}

func (g *Graph) Tag() string        { return g.tag }
func (g *Graph) NumOperations() int { return len(g.ops) }

// OperationGraph implements backends.Backend.
func (b *Backend) OperationGraph(handle backends.Handle, ops []backends.OperationDescriptor) (backends.GraphDescriptor, backends.Status) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.usable() {
		return nil, backends.StatusNotInitialized
	}
	h, _ := handle.(*Handle)
	if h == nil || !h.alive(b) {
		klog.Errorf("simulated backend: operation graph requires a live handle")
		return nil, backends.StatusBadParam
	}
	if len(ops) == 0 {
		klog.Errorf("simulated backend: operation graph with no operations")
		return nil, backends.StatusBadParam
	}
	g := &Graph{tensors: make(map[int64]*TensorDesc)}
	produced := sets.Make[int64]()
	seen := sets.Make[*Operation](len(ops))
	tagParts := make([]string, 0, len(ops))
	for ii, desc := range ops {
		op, _ := desc.(*Operation)
		if op == nil || !op.alive(b) {
			klog.Errorf("simulated backend: operation #%d of graph is not a live operation", ii)
			return nil, backends.StatusBadParam
		}
		if !seen.InsertNew(op) && b.config.StrictDuplicates {
			klog.Errorf("simulated backend: operation %s appears more than once in graph", op)
			return nil, backends.StatusBadParam
		}
		for _, t := range op.inputs() {
			if t.virtual && !produced.Has(t.id) {
				klog.Errorf("simulated backend: operation #%d (%s) reads virtual tensor #%d before it is produced", ii, op, t.id)
				return nil, backends.StatusBadParam
			}
		}
		for _, t := range append(op.inputs(), op.y) {
			if !g.addTensor(t) {
				return nil, backends.StatusBadParam
			}
		}
		produced.Insert(op.y.id)
		g.ops = append(g.ops, op)
		tagParts = append(tagParts, op.String())
	}

	b.nextGraphID++
	g.id = b.nextGraphID
	g.tag = strings.Join(tagParts, "|")
	g.object = b.newObject(KindGraph)
	for _, op := range g.ops {
		op.refs++
	}
	g.onDestroy = func() {
		for _, op := range g.ops {
			op.refs--
		}
	}
	klog.V(1).Infof("simulated backend: graph #%d with %d operations, tag %q", g.id, len(g.ops), g.tag)
	return g, backends.StatusSuccess
}

// addTensor registers t in the graph, checking uid consistency.
func (g *Graph) addTensor(t *TensorDesc) bool {
	if prev, found := g.tensors[t.id]; found {
		if prev != t && !prev.sameGeometry(t) {
			klog.Errorf("simulated backend: uid %d used by two tensors with different geometry: %s and %s",
				t.id, prev.shape, t.shape)
			return false
		}
		return true
	}
	g.tensors[t.id] = t
	g.uids = append(g.uids, t.id)
	return true
}

// EngineConfig implements backends.EngineConfig.
type EngineConfig struct {
	object
	index int
	graph *Graph
}

func (e *EngineConfig) Name() string { return fmt.Sprintf("eng%d", e.index) }

// engineOrder returns the engine indices in the order the heuristic ranks them.
func (b *Backend) engineOrder(mode backends.HeuristicMode) ([]int, bool) {
	if !slices.Contains(b.config.Heuristics, mode) {
		return nil, false
	}
	n := b.config.NumEngines
	order := make([]int, 0, n)
	switch mode {
	case backends.HeuristicModeA:
		for ii := range n {
			order = append(order, ii)
		}
	case backends.HeuristicModeB:
		for ii := n - 1; ii >= 0; ii-- {
			order = append(order, ii)
		}
	case backends.HeuristicModeFallback:
		if n > 0 {
			order = append(order, 0)
		}
	default:
		return nil, false
	}
	return order, true
}

// EngineConfigs implements backends.Backend.
func (b *Backend) EngineConfigs(graph backends.GraphDescriptor, mode backends.HeuristicMode,
	reject func(backends.EngineConfig) bool) ([]backends.EngineConfig, backends.Status) {
	b.mu.Lock()
	if !b.usable() {
		b.mu.Unlock()
		return nil, backends.StatusNotInitialized
	}
	g, _ := graph.(*Graph)
	if g == nil || !g.alive(b) {
		b.mu.Unlock()
		klog.Errorf("simulated backend: engine configs requested for a graph that is not live")
		return nil, backends.StatusBadParam
	}
	order, ok := b.engineOrder(mode)
	if !ok {
		b.mu.Unlock()
		klog.Errorf("simulated backend: heuristic mode %q not supported (supported: %v)", mode, b.config.Heuristics)
		return nil, backends.StatusNotSupported
	}
	candidates := make([]*EngineConfig, 0, len(order))
	for _, idx := range order {
		e := &EngineConfig{object: b.newObject(KindEngineConfig), index: idx, graph: g}
		g.refs++
		e.onDestroy = func() { g.refs-- }
		candidates = append(candidates, e)
	}
	b.mu.Unlock()

	// The reject predicate is user code: call it without holding the lock.
	configs := make([]backends.EngineConfig, 0, len(candidates))
	for _, e := range candidates {
		if reject != nil && reject(e) {
			klog.V(1).Infof("simulated backend: engine config %s rejected by filter", e.Name())
			_ = e.Destroy()
			continue
		}
		configs = append(configs, e)
	}
	return configs, backends.StatusSuccess
}

// Plan implements backends.ExecutionPlan.
type Plan struct {
	object
	engine    int
	graph     *Graph
	workspace int64
	tag       string
}

func (p *Plan) Tag() string          { return p.tag }
func (p *Plan) WorkspaceSize() int64 { return p.workspace }

// ExecutionPlan implements backends.Backend.
func (b *Backend) ExecutionPlan(handle backends.Handle, config backends.EngineConfig, graphTag string) (backends.ExecutionPlan, backends.Status) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.usable() {
		return nil, backends.StatusNotInitialized
	}
	b.stats.PlanAttempts++
	h, _ := handle.(*Handle)
	e, _ := config.(*EngineConfig)
	if h == nil || !h.alive(b) || e == nil || !e.alive(b) || !e.graph.alive(b) {
		klog.Errorf("simulated backend: execution plan requires a live handle, engine config and graph")
		return nil, backends.StatusBadParam
	}
	if graphTag != e.graph.tag {
		klog.Errorf("simulated backend: graph tag %q doesn't match engine config's graph %q", graphTag, e.graph.tag)
		return nil, backends.StatusBadParam
	}
	if b.config.isUnsupported(e.index) {
		klog.V(1).Infof("simulated backend: engine %s not supported by this backend version", e.Name())
		return nil, backends.StatusNotSupported
	}
	for _, t := range e.graph.tensors {
		if !slices.Contains(executableDTypes, t.shape.DType) {
			klog.Errorf("simulated backend: no engine can execute tensor #%d with dtype %s", t.id, t.shape.DType)
			return nil, backends.StatusNotSupported
		}
	}
	p := &Plan{
		object:    b.newObject(KindPlan),
		engine:    e.index,
		graph:     e.graph,
		workspace: b.config.Workspace[e.index],
		tag:       fmt.Sprintf("%s@%s", e.graph.tag, e.Name()),
	}
	p.graph.refs++
	p.onDestroy = func() { p.graph.refs-- }
	b.stats.PlansBuilt++
	return p, backends.StatusSuccess
}
