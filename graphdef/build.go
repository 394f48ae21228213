// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package graphdef

import (
	"github.com/gomlx/dnngraph/backends"
	"github.com/gomlx/dnngraph/dnn"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Built holds the tensors and the operation graph built from a File.
type Built struct {
	File  *File
	Graph *dnn.OperationGraph

	// Tensors by node name.
	Tensors map[string]dnn.Tensor
}

// Build creates the tensors of every node of the file, and the operation graph computing its outputs.
//
// Nodes not reachable from the outputs are built as well, but are not part of the graph. Options given
// are passed to dnn.CreateOperationGraph, and dnn.WithOperationDedup is added if the file sets dedup.
//
// Errors returned by package dnn are wrapped with the position of the node that failed, and their
// status.Kind is preserved. On error all tensors built so far are released.
func (f *File) Build(backend backends.Backend, handle backends.Handle, opts ...dnn.GraphOption) (built *Built, err error) {
	built = &Built{File: f, Tensors: make(map[string]dnn.Tensor, len(f.Nodes))}
	defer func() {
		if err != nil {
			built.Release()
			built = nil
		}
	}()
	for _, n := range f.Nodes {
		if _, err = built.node(backend, n); err != nil {
			return
		}
	}

	outputs := make([]dnn.Tensor, len(f.Outputs))
	for ii, name := range f.Outputs {
		outputs[ii] = built.Tensors[name]
	}
	if f.Dedup {
		opts = append(opts, dnn.WithOperationDedup())
	}
	built.Graph, err = dnn.CreateOperationGraph(backend, handle, outputs, opts...)
	if err != nil {
		err = errors.WithMessagef(err, "failed to build graph for outputs %v", f.Outputs)
		return
	}
	klog.V(1).Infof("graphdef: built %s", built.Graph)
	return
}

// node returns the tensor of the node, building it (and its inputs) on first use.
// The file was validated to be acyclic.
func (b *Built) node(backend backends.Backend, n *Node) (dnn.Tensor, error) {
	if t, found := b.Tensors[n.Name]; found {
		return t, nil
	}
	inputs := make([]dnn.Tensor, len(n.Inputs))
	for ii, name := range n.Inputs {
		var err error
		inputs[ii], err = b.node(backend, b.File.Node(name))
		if err != nil {
			return nil, err
		}
	}

	var (
		t   dnn.Tensor
		err error
	)
	switch n.Kind {
	case NodeTensor:
		t, err = dnn.CreateTensor(backend, n.Shape.Dimensions, n.Shape.Strides, n.UID, n.Shape.DType, n.Alignment)
	case NodePointwise:
		if n.PointwiseMode.IsBinary() {
			t, err = dnn.CreatePointwiseBinary(backend, n.PointwiseMode, inputs[0], n.Alpha, inputs[1], n.Alpha2,
				n.UID, n.Alignment, n.Virtual)
		} else {
			t, err = dnn.CreatePointwiseUnary(backend, n.PointwiseMode, inputs[0], n.Alpha, n.UID, n.Alignment, n.Virtual)
		}
	case NodeRelu:
		t, err = dnn.CreatePointwiseRelu(backend, inputs[0], n.LowerClip, n.UpperClip, n.UID, n.Alignment, n.Virtual)
	case NodeConvolution:
		t, err = dnn.CreateConvolution(backend, inputs[0], inputs[1], n.UID, n.Alignment, n.Virtual, n.ConvolutionMode)
	default:
		err = errors.Errorf("unknown node kind %s", n.Kind)
	}
	if err != nil {
		return nil, errors.WithMessagef(err, "%s: failed to build %s", n.Range, n)
	}
	b.Tensors[n.Name] = t
	return t, nil
}

// Release releases the graph and every tensor built. It is safe to call on a partially built result.
func (b *Built) Release() {
	if b.Graph != nil {
		b.Graph.Release()
		b.Graph = nil
	}
	for name, t := range b.Tensors {
		t.Release()
		delete(b.Tensors, name)
	}
}
