// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package dnn

import (
	"github.com/gomlx/dnngraph/backends"
	"github.com/gomlx/dnngraph/types/shapes"
	"github.com/gomlx/dnngraph/types/status"
	"github.com/gomlx/gopjrt/dtypes"
	"k8s.io/klog/v2"
)

// ComputeType used by pointwise and convolution operations.
const ComputeType = dtypes.Float32

// Convolution parameters supported: no stride, dilation or padding.
const (
	convSpatialDims = 2
	convStride      = 1
	convDilation    = 1
	convPadding     = 0
)

// CreateTensor creates an argument tensor with the given geometry.
//
// It returns a status.KindBackendDescriptor error if the backend rejects the combination, e.g. for a
// non-positive alignment or a different number of dims and strides.
func CreateTensor(backend backends.Backend, dims, strides []int64, uid int64, dtype dtypes.DType, alignment int64) (*ArgTensor, error) {
	desc, st := backend.TensorDescriptor(backends.TensorSpec{
		ID:         uid,
		Dimensions: dims,
		Strides:    strides,
		DType:      dtype,
		Alignment:  alignment,
	})
	if !st.Ok() {
		return nil, st.ToError(status.KindBackendDescriptor,
			"failed to create tensor #%d with dims %v, strides %v, dtype %s and alignment %d", uid, dims, strides, dtype, alignment)
	}
	t := &ArgTensor{}
	t.init(desc)
	return t, nil
}

// outputDescriptor builds the descriptor of an operation's output: the geometry of from, except for dims and
// strides when given, under a new uid.
func outputDescriptor(backend backends.Backend, opName string, from Tensor, dims, strides []int64,
	uid, alignment int64, virtual bool) (backends.TensorDescriptor, error) {
	shape := from.Shape()
	if dims == nil {
		dims, strides = shape.Dimensions, shape.Strides
	}
	desc, st := backend.TensorDescriptor(backends.TensorSpec{
		ID:         uid,
		Dimensions: dims,
		Strides:    strides,
		DType:      shape.DType,
		Alignment:  alignment,
		Virtual:    virtual,
	})
	if !st.Ok() {
		return nil, st.ToError(status.KindBackendDescriptor,
			"%s: failed to create output tensor #%d with dims %v and strides %v", opName, uid, dims, strides)
	}
	return desc, nil
}

// newOpResult builds the operation from spec, whose Y is set to a new output descriptor, and returns
// the result tensor. The sub-descriptor (pointwise or convolution descriptor) is destroyed in any case.
func newOpResult(backend backends.Backend, opName string, spec backends.OperationSpec, sub backends.Descriptor,
	output backends.TensorDescriptor, inputs ...Tensor) (*OpResultTensor, error) {
	defer destroyDescriptor(opName+" descriptor", sub)
	spec.Y = output
	op, st := backend.Operation(spec)
	if !st.Ok() {
		destroyDescriptor("output tensor descriptor", output)
		return nil, st.ToError(status.KindBackendDescriptor, "%s: failed to create operation for output tensor #%d",
			opName, output.ID())
	}
	for _, input := range inputs {
		input.Retain()
	}
	t := &OpResultTensor{opName: opName, operation: op, inputs: inputs}
	t.init(output)
	klog.V(2).Infof("dnn: created %s from %v", t, inputs)
	return t, nil
}

func checkNotNil(opName string, tensors ...Tensor) error {
	for ii, t := range tensors {
		if t == nil {
			return status.Errorf(status.KindPrecondition, status.InvalidArgument, "%s: input #%d is nil", opName, ii)
		}
	}
	return nil
}

// CreatePointwiseUnary creates a tensor with y = mode(alpha*x), with the same geometry as x.
//
// The mode must be one of the unary modes (see backends.PointwiseMode.IsUnary), except backends.PointwiseReluFwd,
// which is created with CreatePointwiseRelu.
func CreatePointwiseUnary(backend backends.Backend, mode backends.PointwiseMode, x Tensor, alpha float64,
	uid, alignment int64, virtual bool) (*OpResultTensor, error) {
	opName := mode.String()
	if !mode.IsUnary() || mode == backends.PointwiseReluFwd {
		return nil, status.Errorf(status.KindPrecondition, status.InvalidArgument,
			"pointwise mode %s is not a unary mode supported by CreatePointwiseUnary", mode)
	}
	if err := checkNotNil(opName, x); err != nil {
		return nil, err
	}
	output, err := outputDescriptor(backend, opName, x, nil, nil, uid, alignment, virtual)
	if err != nil {
		return nil, err
	}
	pw, st := backend.PointwiseDescriptor(backends.PointwiseSpec{Mode: mode, ComputeType: ComputeType})
	if !st.Ok() {
		destroyDescriptor("output tensor descriptor", output)
		return nil, st.ToError(status.KindBackendDescriptor, "%s: failed to create pointwise descriptor", opName)
	}
	return newOpResult(backend, opName, backends.OperationSpec{
		Kind:      backends.OperationPointwise,
		X:         x.Descriptor(),
		Pointwise: pw,
		Alpha:     alpha,
	}, pw, output, x)
}

// CreatePointwiseBinary creates a tensor with y = mode(alpha*x, alpha2*b), with the same geometry as x.
//
// The output takes the shape of x, so b must be broadcastable to x: same rank, and each of its dimensions
// either equal to x's or 1. Otherwise, a status.KindShapeMismatch error is returned.
func CreatePointwiseBinary(backend backends.Backend, mode backends.PointwiseMode, x Tensor, alpha float64, b Tensor, alpha2 float64,
	uid, alignment int64, virtual bool) (*OpResultTensor, error) {
	opName := mode.String()
	if !mode.IsBinary() {
		return nil, status.Errorf(status.KindPrecondition, status.InvalidArgument,
			"pointwise mode %s is not a binary mode", mode)
	}
	if err := checkNotNil(opName, x, b); err != nil {
		return nil, err
	}
	if xShape, bShape := x.Shape(), b.Shape(); !bShape.BroadcastsTo(xShape) {
		return nil, status.Errorf(status.KindShapeMismatch, status.InvalidArgument,
			"%s: operand b %s can't be broadcast to x %s", opName, bShape, xShape)
	}
	output, err := outputDescriptor(backend, opName, x, nil, nil, uid, alignment, virtual)
	if err != nil {
		return nil, err
	}
	pw, st := backend.PointwiseDescriptor(backends.PointwiseSpec{Mode: mode, ComputeType: ComputeType})
	if !st.Ok() {
		destroyDescriptor("output tensor descriptor", output)
		return nil, st.ToError(status.KindBackendDescriptor, "%s: failed to create pointwise descriptor", opName)
	}
	return newOpResult(backend, opName, backends.OperationSpec{
		Kind:      backends.OperationPointwise,
		X:         x.Descriptor(),
		B:         b.Descriptor(),
		Pointwise: pw,
		Alpha:     alpha,
		Alpha2:    alpha2,
	}, pw, output, x, b)
}

// CreatePointwiseRelu creates a tensor with y = min(max(x, lowerClip), upperClip), with the same geometry as x.
func CreatePointwiseRelu(backend backends.Backend, x Tensor, lowerClip, upperClip float64,
	uid, alignment int64, virtual bool) (*OpResultTensor, error) {
	const opName = "relu"
	if err := checkNotNil(opName, x); err != nil {
		return nil, err
	}
	output, err := outputDescriptor(backend, opName, x, nil, nil, uid, alignment, virtual)
	if err != nil {
		return nil, err
	}
	activation, st := backend.PointwiseDescriptor(backends.PointwiseSpec{
		Mode:          backends.PointwiseReluFwd,
		ComputeType:   ComputeType,
		ReluLowerClip: lowerClip,
		ReluUpperClip: upperClip,
	})
	if !st.Ok() {
		destroyDescriptor("output tensor descriptor", output)
		return nil, st.ToError(status.KindBackendDescriptor, "%s: failed to create activation descriptor with clipping [%g, %g]",
			opName, lowerClip, upperClip)
	}
	return newOpResult(backend, opName, backends.OperationSpec{
		Kind:      backends.OperationPointwise,
		X:         x.Descriptor(),
		Pointwise: activation,
		Alpha:     1,
	}, activation, output, x)
}

// convOutputDim returns the output dimension of one spatial axis of a forward convolution.
func convOutputDim(dim, padding, filter, stride, dilation int64) int64 {
	padded := dim + 2*padding
	dilatedFilter := (filter-1)*dilation + 1
	return (padded-dilatedFilter)/stride + 1
}

// ConvolutionOutputShape returns the dimensions and strides of the output of CreateConvolution for the given
// input and filter shapes.
//
// Input is [N, C, H, W] and filter is [Co, Ci, Kh, Kw]: the output is [N, Co, H-Kh+1, W-Kw+1]. The output
// layout follows the input's: if the input's channel axis has stride 1 the output is channels-last, otherwise
// it is row-major.
func ConvolutionOutputShape(input, filter shapes.Shape) (dims, strides []int64, err error) {
	if input.Rank() != convSpatialDims+2 {
		return nil, nil, status.Errorf(status.KindShapeMismatch, status.InvalidArgument,
			"convolution input must have rank 4, 3d convolution is not supported: got input %s", input)
	}
	if filter.Rank() != input.Rank() {
		return nil, nil, status.Errorf(status.KindShapeMismatch, status.InvalidArgument,
			"convolution input %s and filter %s must have the same rank", input, filter)
	}
	dims = []int64{input.Dimensions[0], filter.Dimensions[0]}
	for axis := range convSpatialDims {
		dim := convOutputDim(input.Dimensions[axis+2], convPadding, filter.Dimensions[axis+2], convStride, convDilation)
		if dim <= 0 {
			return nil, nil, status.Errorf(status.KindShapeMismatch, status.InvalidArgument,
				"convolution filter %s is larger than input %s on spatial axis %d", filter, input, axis+2)
		}
		dims = append(dims, dim)
	}
	if shapes.IsChannelsLast(input.Strides) {
		strides, err = shapes.ChannelsLastStrides(dims)
		if err != nil {
			return nil, nil, err
		}
	} else {
		strides = shapes.RowMajorStrides(dims)
	}
	return dims, strides, nil
}

// CreateConvolution creates the forward convolution of x [N, C, H, W] with filter w [Co, C, Kh, Kw], with
// output [N, Co, H-Kh+1, W-Kw+1]. See ConvolutionOutputShape for the output layout.
//
// Only 2D convolutions with stride 1, no dilation and no padding are supported. Inputs of rank other than 4,
// a filter rank different from the input's, or a filter spatially larger than the input return a
// status.KindShapeMismatch error.
func CreateConvolution(backend backends.Backend, x, w Tensor, uid, alignment int64, virtual bool,
	mode backends.ConvolutionMode) (*OpResultTensor, error) {
	const opName = "convolution"
	if err := checkNotNil(opName, x, w); err != nil {
		return nil, err
	}
	dims, strides, err := ConvolutionOutputShape(x.Shape(), w.Shape())
	if err != nil {
		return nil, err
	}
	output, err := outputDescriptor(backend, opName, x, dims, strides, uid, alignment, virtual)
	if err != nil {
		return nil, err
	}
	perAxis := func(value int64) []int64 {
		values := make([]int64, convSpatialDims)
		for ii := range values {
			values[ii] = value
		}
		return values
	}
	conv, st := backend.ConvolutionDescriptor(backends.ConvolutionSpec{
		ComputeType: ComputeType,
		Mode:        mode,
		SpatialDims: convSpatialDims,
		Strides:     perAxis(convStride),
		PrePadding:  perAxis(convPadding),
		PostPadding: perAxis(convPadding),
		Dilations:   perAxis(convDilation),
	})
	if !st.Ok() {
		destroyDescriptor("output tensor descriptor", output)
		return nil, st.ToError(status.KindBackendDescriptor, "%s: failed to create convolution descriptor", opName)
	}
	return newOpResult(backend, opName, backends.OperationSpec{
		Kind:        backends.OperationConvolutionForward,
		X:           x.Descriptor(),
		W:           w.Descriptor(),
		Convolution: conv,
		Alpha:       1,
		Beta:        0,
	}, conv, output, x, w)
}
