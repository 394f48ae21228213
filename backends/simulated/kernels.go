// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package simulated

import (
	"math"

	"github.com/gomlx/dnngraph/backends"
	"github.com/gomlx/dnngraph/types/shapes"
	"github.com/gomlx/exceptions"
)

// tensorMemory is the memory bound to a tensor during an execution. Elements are stored little-endian.
type tensorMemory struct {
	shape shapes.Shape
	data  []byte
}

// get the element at the given offset (in elements) converted to float64.
func (m tensorMemory) get(offset int64) float64 {
	return shapes.GetFloat(m.shape.DType, m.data, offset)
}

// set the element at the given offset (in elements), converting from float64.
func (m tensorMemory) set(offset int64, value float64) {
	shapes.PutFloat(m.shape.DType, m.data, offset, value)
}

// runOperation computes op, reading and writing the tensors in memory. It panics on failure.
func runOperation(op *Operation, memory map[int64]tensorMemory) {
	switch op.kind {
	case backends.OperationPointwise:
		runPointwise(op, memory)
	case backends.OperationConvolutionForward:
		runConvolution(op, memory)
	default:
		exceptions.Panicf("simulated backend: can't execute operation kind %s", op.kind)
	}
}

func runPointwise(op *Operation, memory map[int64]tensorMemory) {
	x, y := memory[op.x.id], memory[op.y.id]
	mode := op.pointwise.Mode
	if mode.IsBinary() {
		b := memory[op.b.id]
		fn := binaryFunctions[mode]
		if fn == nil {
			exceptions.Panicf("simulated backend: pointwise mode %s not implemented", mode)
		}
		for indices, yOffset := range y.shape.Iter() {
			bOffset := broadcastOffset(b.shape, indices)
			y.set(yOffset, fn(op.alpha*x.get(x.shape.Offset(indices)), op.alpha2*b.get(bOffset)))
		}
		return
	}

	fn := unaryFunctions[mode]
	if mode == backends.PointwiseReluFwd {
		lower, upper := op.pointwise.ReluLowerClip, op.pointwise.ReluUpperClip
		fn = func(v float64) float64 { return min(max(v, lower), upper) }
	}
	if fn == nil {
		exceptions.Panicf("simulated backend: pointwise mode %s not implemented", mode)
	}
	for indices, yOffset := range y.shape.Iter() {
		y.set(yOffset, fn(op.alpha*x.get(x.shape.Offset(indices))))
	}
}

// broadcastOffset returns the offset of the element of a tensor with shape s that is broadcast to indices:
// axes with dimension 1 always read index 0.
func broadcastOffset(s shapes.Shape, indices []int64) int64 {
	var offset int64
	for axis, idx := range indices {
		if s.Dimensions[axis] != 1 {
			offset += idx * s.Strides[axis]
		}
	}
	return offset
}

var binaryFunctions = map[backends.PointwiseMode]func(a, b float64) float64{
	backends.PointwiseAdd: func(a, b float64) float64 { return a + b },
	backends.PointwiseSub: func(a, b float64) float64 { return a - b },
	backends.PointwiseMul: func(a, b float64) float64 { return a * b },
	backends.PointwiseDiv: func(a, b float64) float64 { return a / b },
	backends.PointwiseMax: math.Max,
	backends.PointwiseMin: math.Min,
	backends.PointwisePow: math.Pow,
}

var unaryFunctions = map[backends.PointwiseMode]func(v float64) float64{
	backends.PointwiseIdentity: func(v float64) float64 { return v },
	backends.PointwiseNeg:      func(v float64) float64 { return -v },
	backends.PointwiseAbs:      math.Abs,
	backends.PointwiseExp:      math.Exp,
	backends.PointwiseLog:      math.Log,
	backends.PointwiseSqrt:     math.Sqrt,
	backends.PointwiseRsqrt:    func(v float64) float64 { return 1 / math.Sqrt(v) },
	backends.PointwiseTanh:     math.Tanh,
	backends.PointwiseSigmoid:  func(v float64) float64 { return 1 / (1 + math.Exp(-v)) },
}

// runConvolution computes y = alpha * conv(x, w) + beta * y for 2 spatial dimensions, with x [N, C, H, W],
// w [Co, C, Kh, Kw] and y [N, Co, Ho, Wo], in whatever layout their strides describe.
func runConvolution(op *Operation, memory map[int64]tensorMemory) {
	x, w, y := memory[op.x.id], memory[op.w.id], memory[op.y.id]
	spec := op.conv
	if spec.SpatialDims != 2 {
		exceptions.Panicf("simulated backend: convolution with %d spatial dims not implemented", spec.SpatialDims)
	}
	channels := x.shape.Dimensions[1]
	kh, kw := w.shape.Dimensions[2], w.shape.Dimensions[3]
	height, width := x.shape.Dimensions[2], x.shape.Dimensions[3]
	xIdx := make([]int64, 4)
	wIdx := make([]int64, 4)
	for yIndices, yOffset := range y.shape.Iter() {
		n, co, oh, ow := yIndices[0], yIndices[1], yIndices[2], yIndices[3]
		var sum float64
		for c := range channels {
			for fh := range kh {
				ih := oh*spec.Strides[0] + fh*spec.Dilations[0] - spec.PrePadding[0]
				if ih < 0 || ih >= height {
					continue
				}
				for fw := range kw {
					iw := ow*spec.Strides[1] + fw*spec.Dilations[1] - spec.PrePadding[1]
					if iw < 0 || iw >= width {
						continue
					}
					xIdx[0], xIdx[1], xIdx[2], xIdx[3] = n, c, ih, iw
					wIdx[0], wIdx[1], wIdx[2], wIdx[3] = co, c, fh, fw
					if spec.Mode == backends.Convolution {
						// True convolution flips the filter spatially.
						wIdx[2], wIdx[3] = kh-1-fh, kw-1-fw
					}
					sum += x.get(x.shape.Offset(xIdx)) * w.get(w.shape.Offset(wIdx))
				}
			}
		}
		result := op.alpha * sum
		if op.beta != 0 {
			result += op.beta * y.get(yOffset)
		}
		y.set(yOffset, result)
	}
}
