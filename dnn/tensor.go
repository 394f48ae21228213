// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package dnn builds small dataflow graphs of tensor operations (pointwise, activations and convolutions) against
// an accelerator backend, compiles them into an execution plan and executes them on device buffers.
//
// The flow is:
//
//  1. Create argument tensors with CreateTensor.
//  2. Chain operation builders (CreatePointwiseUnary, CreatePointwiseBinary, CreatePointwiseRelu,
//     CreateConvolution) to get operation-result tensors.
//  3. Build an OperationGraph from the list of outputs wanted with CreateOperationGraph. Its arguments are
//     sorted by uid: buffers are bound in the order of OperationGraph.UIDs, arguments first then results.
//  4. Select an execution plan with CreateExecutable.
//  5. Call Executable.Execute with one device buffer per argument and result.
//
// Tensors, graphs and executables are reference counted: the creator holds one reference, and must call Release
// when done. Result tensors retain their inputs, graphs retain their arguments and results, and executables retain
// their graph, so backend objects are destroyed exactly once, when the last reference is released, and always
// before the objects they depend on.
//
// All errors returned are *status.Error (wrapped with a stack), see package types/status.
package dnn

import (
	"fmt"
	"sync/atomic"

	"github.com/gomlx/dnngraph/backends"
	"github.com/gomlx/dnngraph/types/shapes"
	"k8s.io/klog/v2"
)

// Tensor is a node of the dataflow graph. It is either an *ArgTensor or an *OpResultTensor.
//
// Tensors are immutable, and identity is by object, not by uid.
type Tensor interface {
	// UID is the caller-assigned identifier of the tensor, used to bind buffers at execution.
	UID() int64

	// Shape returns the dtype, dimensions and strides of the tensor.
	Shape() shapes.Shape

	// Descriptor returns the backend tensor descriptor. It is owned by the tensor.
	Descriptor() backends.TensorDescriptor

	// IsVirtual returns whether the tensor is an intermediate value, not bound to a buffer.
	IsVirtual() bool

	// Retain adds a reference to the tensor.
	Retain()

	// Release drops a reference to the tensor. When the last one is dropped the backend resources are destroyed.
	Release()

	// RefCount returns the current number of references.
	RefCount() int

	String() string

	// isTensor seals the interface: only *ArgTensor and *OpResultTensor implement it.
	isTensor()
}

// liveTensors counts tensors created and not yet destroyed.
var liveTensors atomic.Int64

// LiveTensors returns the number of tensors created and not yet destroyed. Used to check for leaks.
func LiveTensors() int64 {
	return liveTensors.Load()
}

// tensorBase holds what is common to both kinds of tensors.
type tensorBase struct {
	refs  atomic.Int32
	shape shapes.Shape
	desc  backends.TensorDescriptor
}

// init sets the descriptor and the first reference, held by the creator.
func (t *tensorBase) init(desc backends.TensorDescriptor) {
	t.shape = shapes.Make(desc.DType(), desc.Dimensions(), desc.Strides())
	t.desc = desc
	t.refs.Store(1)
	liveTensors.Add(1)
}

func (t *tensorBase) UID() int64                            { return t.desc.ID() }
func (t *tensorBase) Shape() shapes.Shape                   { return t.shape.Clone() }
func (t *tensorBase) Descriptor() backends.TensorDescriptor { return t.desc }
func (t *tensorBase) IsVirtual() bool                       { return t.desc.IsVirtual() }
func (t *tensorBase) RefCount() int                         { return int(t.refs.Load()) }
func (t *tensorBase) isTensor()                             {}

// Retain implements Tensor. A tensor already destroyed is not revived: the call is only logged.
func (t *tensorBase) Retain() {
	for {
		refs := t.refs.Load()
		if refs <= 0 {
			klog.Warningf("dnn: tensor #%d retained after it was destroyed", t.desc.ID())
			return
		}
		if t.refs.CompareAndSwap(refs, refs+1) {
			return
		}
	}
}

// dropRef decrements the reference count and returns true if it was the last reference.
func (t *tensorBase) dropRef() bool {
	refs := t.refs.Add(-1)
	if refs < 0 {
		klog.Warningf("dnn: tensor #%d released more times than it was retained", t.desc.ID())
		return false
	}
	return refs == 0
}

// destroyDescriptor destroys a backend descriptor, logging failures: there is nothing else a release can do about it.
func destroyDescriptor(what string, desc backends.Descriptor) {
	if st := desc.Destroy(); !st.Ok() {
		klog.Warningf("dnn: failed to destroy %s: backend status %s", what, st)
	}
}

// ArgTensor is a tensor created directly by the caller, bound to a buffer at execution. It has no inputs.
type ArgTensor struct {
	tensorBase
}

// Release implements Tensor.
func (t *ArgTensor) Release() {
	if !t.dropRef() {
		return
	}
	klog.V(2).Infof("dnn: destroying %s", t)
	destroyDescriptor(fmt.Sprintf("descriptor of tensor #%d", t.UID()), t.desc)
	liveTensors.Add(-1)
}

// String implements fmt.Stringer.
func (t *ArgTensor) String() string {
	return fmt.Sprintf("Arg#%d%s", t.UID(), t.shape)
}

// OpResultTensor is the output of an operation. It owns the backend operation and its output tensor descriptor,
// and holds a reference to each of its inputs.
type OpResultTensor struct {
	tensorBase
	opName    string
	operation backends.OperationDescriptor
	inputs    []Tensor
}

// Operation returns the backend operation descriptor producing the tensor. It is owned by the tensor.
func (t *OpResultTensor) Operation() backends.OperationDescriptor { return t.operation }

// OpName returns the name of the operation producing the tensor, e.g. "add" or "convolution".
func (t *OpResultTensor) OpName() string { return t.opName }

// Inputs returns the direct inputs of the operation, in order.
func (t *OpResultTensor) Inputs() []Tensor {
	return append([]Tensor(nil), t.inputs...)
}

// Release implements Tensor.
//
// When the last reference is dropped it destroys the operation, then its output tensor descriptor, and only then
// releases its inputs, so the backend never sees an operation referencing a destroyed tensor.
func (t *OpResultTensor) Release() {
	if !t.dropRef() {
		return
	}
	klog.V(2).Infof("dnn: destroying %s", t)
	destroyDescriptor(fmt.Sprintf("operation %s producing tensor #%d", t.opName, t.UID()), t.operation)
	destroyDescriptor(fmt.Sprintf("descriptor of tensor #%d", t.UID()), t.desc)
	for _, input := range t.inputs {
		input.Release()
	}
	t.inputs = nil
	liveTensors.Add(-1)
}

// String implements fmt.Stringer.
func (t *OpResultTensor) String() string {
	virtual := ""
	if t.IsVirtual() {
		virtual = "(virtual)"
	}
	return fmt.Sprintf("%s#%d%s%s", t.opName, t.UID(), t.shape, virtual)
}
