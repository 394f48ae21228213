// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package dnn

import (
	"cmp"
	"fmt"
	"slices"
	"sync/atomic"

	"github.com/gomlx/dnngraph/backends"
	"github.com/gomlx/dnngraph/types/sets"
	"github.com/gomlx/dnngraph/types/status"
	"k8s.io/klog/v2"
)

// OperationGraph is the backend graph of the operations needed to compute a list of outputs, along with its
// arguments (sorted by uid) and results (in the order requested).
//
// Buffers are bound at execution in the order of UIDs: arguments first, then results.
type OperationGraph struct {
	refs    atomic.Int32
	graph   backends.GraphDescriptor
	args    []Tensor
	results []Tensor
	uids    []int64
}

// GraphOption configures CreateOperationGraph.
type GraphOption func(*graphConfig)

type graphConfig struct {
	dedup bool
}

// WithOperationDedup removes repeated operations from the graph before it is submitted to the backend.
//
// By default, an operation reachable from the outputs through more than one path (fan-out) is submitted
// once per path, which some backends reject.
func WithOperationDedup() GraphOption {
	return func(c *graphConfig) { c.dedup = true }
}

// CreateOperationGraph builds the graph of operations needed to compute outputs.
//
// It walks the graph backwards from the outputs, collecting each argument tensor reached once, and each
// operation every time it is reached. The operations are submitted in reverse visiting order, so every
// operation comes after the operations producing its inputs. Arguments are sorted by uid.
//
// Returned errors: status.KindPrecondition if outputs is empty, status.KindBackendDescriptor if the backend
// rejects the graph.
func CreateOperationGraph(backend backends.Backend, handle backends.Handle, outputs []Tensor, opts ...GraphOption) (*OperationGraph, error) {
	var config graphConfig
	for _, opt := range opts {
		opt(&config)
	}
	if len(outputs) == 0 {
		return nil, status.Errorf(status.KindPrecondition, status.InvalidArgument,
			"an operation graph requires at least one output")
	}
	if err := checkNotNil("operation graph", outputs...); err != nil {
		return nil, err
	}

	args, ops := traverse(outputs)
	if config.dedup {
		ops = dedupOperations(ops)
	}
	slices.SortStableFunc(args, func(a, b Tensor) int { return cmp.Compare(a.UID(), b.UID()) })

	opDescs := make([]backends.OperationDescriptor, len(ops))
	for ii, op := range ops {
		opDescs[ii] = op.operation
	}
	graphDesc, st := backend.OperationGraph(handle, opDescs)
	if !st.Ok() {
		return nil, st.ToError(status.KindBackendDescriptor,
			"failed to create operation graph with %d operations for outputs %v", len(opDescs), outputs)
	}

	g := &OperationGraph{
		graph:   graphDesc,
		args:    args,
		results: slices.Clone(outputs),
		uids:    make([]int64, 0, len(args)+len(outputs)),
	}
	g.refs.Store(1)
	for _, t := range g.args {
		t.Retain()
		g.uids = append(g.uids, t.UID())
	}
	for _, t := range g.results {
		t.Retain()
		g.uids = append(g.uids, t.UID())
	}
	klog.V(1).Infof("dnn: created operation graph %q: %d operations, arguments %v, results %v",
		graphDesc.Tag(), len(opDescs), g.args, g.results)
	return g, nil
}

// traverse walks the graph from outputs, depth-first with an explicit stack. It returns the set of argument
// tensors reached (in discovery order), and the operations in execution order, with repetitions.
func traverse(outputs []Tensor) (args []Tensor, ops []*OpResultTensor) {
	seenArgs := sets.Make[*ArgTensor]()
	stack := slices.Clone(outputs)
	for len(stack) > 0 {
		t := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		switch node := t.(type) {
		case *ArgTensor:
			if seenArgs.InsertNew(node) {
				args = append(args, node)
			}
		case *OpResultTensor:
			klog.V(2).Infof("dnn: graph traversal visits %s", node)
			ops = append(ops, node)
			stack = append(stack, node.inputs...)
		}
	}
	// Consumers were visited before producers.
	slices.Reverse(ops)
	return args, ops
}

// dedupOperations keeps only the first occurrence of each operation. In execution order the first occurrence
// of an operation always comes after the first occurrence of its producers, so the order stays valid.
func dedupOperations(ops []*OpResultTensor) []*OpResultTensor {
	seen := sets.Make[*OpResultTensor](len(ops))
	unique := make([]*OpResultTensor, 0, len(ops))
	for _, op := range ops {
		if seen.InsertNew(op) {
			unique = append(unique, op)
		}
	}
	if len(unique) < len(ops) {
		klog.V(1).Infof("dnn: removed %d repeated operations from graph", len(ops)-len(unique))
	}
	return unique
}

// Arguments returns the argument tensors of the graph, sorted by uid.
func (g *OperationGraph) Arguments() []Tensor { return slices.Clone(g.args) }

// Results returns the result tensors of the graph, in the order they were requested.
func (g *OperationGraph) Results() []Tensor { return slices.Clone(g.results) }

// UIDs returns the uids of the arguments followed by the uids of the results. Buffers given to
// Executable.Execute are bound in this order.
func (g *OperationGraph) UIDs() []int64 { return slices.Clone(g.uids) }

// NumOperations returns the number of operations submitted to the backend, counting repetitions.
func (g *OperationGraph) NumOperations() int { return g.graph.NumOperations() }

// Tag returns the backend tag of the graph.
func (g *OperationGraph) Tag() string { return g.graph.Tag() }

// Descriptor returns the backend graph descriptor. It is owned by the OperationGraph.
func (g *OperationGraph) Descriptor() backends.GraphDescriptor { return g.graph }

// String implements fmt.Stringer.
func (g *OperationGraph) String() string {
	return fmt.Sprintf("OperationGraph(%q, args=%v, results=%v)", g.graph.Tag(), g.args, g.results)
}

// Retain adds a reference to the graph.
func (g *OperationGraph) Retain() {
	g.refs.Add(1)
}

// Release drops a reference to the graph. The last one destroys the backend graph, and then releases the
// argument and result tensors.
func (g *OperationGraph) Release() {
	refs := g.refs.Add(-1)
	if refs < 0 {
		klog.Warningf("dnn: operation graph %q released more times than it was retained", g.graph.Tag())
		return
	}
	if refs > 0 {
		return
	}
	destroyDescriptor(fmt.Sprintf("operation graph %q", g.graph.Tag()), g.graph)
	for _, t := range g.args {
		t.Release()
	}
	for _, t := range g.results {
		t.Release()
	}
	g.args, g.results = nil, nil
}
