// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package backends

import (
	"github.com/gomlx/gopjrt/dtypes"
)

// Descriptor is an opaque object owned by the backend. It must be destroyed exactly once.
type Descriptor interface {
	// Destroy releases the backend resources of the descriptor. Using it afterwards is an error.
	Destroy() Status
}

// Handle is a backend context bound to one device.
type Handle interface {
	Descriptor

	// Device the handle is bound to.
	Device() DeviceNum

	// ID is a printable unique identifier of the handle, used in logs.
	ID() string
}

// TensorDescriptor describes the geometry of a tensor, identified by a caller-assigned uid.
type TensorDescriptor interface {
	Descriptor
	ID() int64
	Dimensions() []int64
	Strides() []int64
	DType() dtypes.DType
	Alignment() int64

	// IsVirtual returns whether the tensor is an intermediate value not materialized in
	// caller-provided memory.
	IsVirtual() bool
}

// PointwiseDescriptor describes an elementwise computation.
type PointwiseDescriptor interface {
	Descriptor
	Mode() PointwiseMode
}

// ConvolutionDescriptor describes a convolution computation.
type ConvolutionDescriptor interface {
	Descriptor
	Mode() ConvolutionMode
	SpatialDims() int
}

// OperationDescriptor is one node of an operation graph, linking tensor descriptors through a computation.
type OperationDescriptor interface {
	Descriptor
	Kind() OperationKind
}

// GraphDescriptor is an operation graph materialized by the backend.
type GraphDescriptor interface {
	Descriptor

	// Tag is a stable identification of the graph, used to build execution plans.
	Tag() string

	NumOperations() int
}

// EngineConfig is a candidate implementation strategy for a graph.
type EngineConfig interface {
	Descriptor

	// Name of the engine configuration, for logging.
	Name() string
}

// ExecutionPlan is an engine configuration resolved against a handle and a graph, ready to run.
type ExecutionPlan interface {
	Descriptor
	Tag() string

	// WorkspaceSize is the number of bytes of scratch device memory the plan requires.
	WorkspaceSize() int64
}

// VariantPack binds device pointers to tensor uids for one execution.
type VariantPack interface {
	Descriptor
}

// TensorSpec holds the parameters of a tensor descriptor.
type TensorSpec struct {
	ID         int64
	Dimensions []int64
	Strides    []int64
	DType      dtypes.DType

	// Alignment in bytes of the memory that will be bound to the tensor.
	Alignment int64
	Virtual   bool
}

// PointwiseSpec holds the parameters of a pointwise descriptor.
type PointwiseSpec struct {
	Mode        PointwiseMode
	ComputeType dtypes.DType

	// ReluLowerClip and ReluUpperClip are only used by PointwiseReluFwd.
	ReluLowerClip, ReluUpperClip float64
}

// ConvolutionSpec holds the parameters of a convolution descriptor.
// The per-axis slices must have SpatialDims elements.
type ConvolutionSpec struct {
	ComputeType dtypes.DType
	Mode        ConvolutionMode
	SpatialDims int
	Strides     []int64
	PrePadding  []int64
	PostPadding []int64
	Dilations   []int64
}

// OperationSpec holds the parameters of an operation. Which fields are used depend on Kind:
//
//   - OperationPointwise: X, Y and Pointwise, plus B for binary modes. Alpha scales x and Alpha2 scales b.
//   - OperationConvolutionForward: X, W, Y and Convolution. Alpha scales the result and Beta the previous
//     value of y.
type OperationSpec struct {
	Kind        OperationKind
	X, B, W, Y  TensorDescriptor
	Pointwise   PointwiseDescriptor
	Convolution ConvolutionDescriptor

	Alpha, Alpha2, Beta float64
}
