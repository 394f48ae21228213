// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package backends

//go:generate go tool enumer -type=PointwiseMode -trimprefix=Pointwise -transform=snake -output=gen_pointwisemode_enumer.go modes.go

// PointwiseMode enumerates the elementwise computations a pointwise operation can perform.
type PointwiseMode int

const (
	PointwiseInvalid PointwiseMode = iota

	// Binary modes: y = op(alpha*x, alpha2*b).
	PointwiseAdd
	PointwiseSub
	PointwiseMul
	PointwiseDiv
	PointwiseMax
	PointwiseMin
	PointwisePow

	// Unary modes: y = op(alpha*x).
	PointwiseIdentity
	PointwiseNeg
	PointwiseAbs
	PointwiseExp
	PointwiseLog
	PointwiseSqrt
	PointwiseRsqrt
	PointwiseTanh
	PointwiseSigmoid
	PointwiseReluFwd
)

// IsValid returns whether m is one of the defined modes, other than PointwiseInvalid.
func (m PointwiseMode) IsValid() bool { return m != PointwiseInvalid && m.IsAPointwiseMode() }

// IsBinary returns whether the mode takes two operands (x and b).
func (m PointwiseMode) IsBinary() bool { return m >= PointwiseAdd && m <= PointwisePow }

// IsUnary returns whether the mode takes one operand (x).
func (m PointwiseMode) IsUnary() bool { return m >= PointwiseIdentity && m <= PointwiseReluFwd }

//go:generate go tool enumer -type=ConvolutionMode -transform=snake -output=gen_convolutionmode_enumer.go modes.go

// ConvolutionMode selects between a true convolution (flipped filter) and a cross-correlation.
type ConvolutionMode int

const (
	// CrossCorrelation is what machine learning frameworks usually call "convolution".
	CrossCorrelation ConvolutionMode = iota
	Convolution
)

//go:generate go tool enumer -type=OperationKind -linecomment -output=gen_operationkind_enumer.go modes.go

// OperationKind is the kind of operation descriptor.
type OperationKind int

const (
	OperationPointwise          OperationKind = iota // pointwise
	OperationConvolutionForward                      // convolution_fwd
)

// HeuristicMode names the heuristic used to rank engine configurations.
type HeuristicMode string

const (
	HeuristicModeA        HeuristicMode = "heuristics_mode_a"
	HeuristicModeB        HeuristicMode = "heuristics_mode_b"
	HeuristicModeFallback HeuristicMode = "heuristics_fallback"

	// DefaultHeuristicMode is used when none is specified.
	DefaultHeuristicMode = HeuristicModeA
)
