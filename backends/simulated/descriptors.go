// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package simulated

import (
	"math/bits"
	"slices"

	"github.com/gomlx/dnngraph/backends"
	"github.com/gomlx/dnngraph/types/shapes"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/google/uuid"
	"k8s.io/klog/v2"
)

// MaxRank of tensor descriptors.
const MaxRank = 8

// supportedDTypes can be used in tensor descriptors. Only the float ones can be executed.
var supportedDTypes = []dtypes.DType{
	dtypes.Float16, dtypes.BFloat16, dtypes.Float32, dtypes.Float64,
	dtypes.Int8, dtypes.Uint8, dtypes.Int32, dtypes.Int64,
}

// executableDTypes are the dtypes the simulated kernels can compute on.
var executableDTypes = []dtypes.DType{dtypes.Float16, dtypes.Float32, dtypes.Float64}

// Handle implements backends.Handle.
type Handle struct {
	object
	device backends.DeviceNum
	id     string
}

func (h *Handle) Device() backends.DeviceNum { return h.device }
func (h *Handle) ID() string                 { return h.id }

// NewHandle implements backends.Backend.
func (b *Backend) NewHandle(device backends.DeviceNum) (backends.Handle, backends.Status) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.usable() {
		return nil, backends.StatusNotInitialized
	}
	if device < 0 || int(device) >= b.config.NumDevices {
		klog.Errorf("simulated backend: invalid device #%d, only %d device(s) available", device, b.config.NumDevices)
		return nil, backends.StatusBadParam
	}
	h := &Handle{object: b.newObject(KindHandle), device: device, id: uuid.NewString()}
	klog.V(1).Infof("simulated backend: new handle %s on device #%d", h.id, device)
	return h, backends.StatusSuccess
}

// TensorDesc implements backends.TensorDescriptor.
type TensorDesc struct {
	object
	shape     shapes.Shape
	id        int64
	alignment int64
	virtual   bool
}

func (t *TensorDesc) ID() int64           { return t.id }
func (t *TensorDesc) Dimensions() []int64 { return slices.Clone(t.shape.Dimensions) }
func (t *TensorDesc) Strides() []int64    { return slices.Clone(t.shape.Strides) }
func (t *TensorDesc) DType() dtypes.DType { return t.shape.DType }
func (t *TensorDesc) Alignment() int64    { return t.alignment }
func (t *TensorDesc) IsVirtual() bool     { return t.virtual }
func (t *TensorDesc) Shape() shapes.Shape { return t.shape.Clone() }

// live is a nil-safe version of alive.
func (t *TensorDesc) live(b *Backend) bool { return t != nil && t.alive(b) }

func (t *TensorDesc) sameGeometry(o *TensorDesc) bool {
	return t.shape.Equal(o.shape) && t.virtual == o.virtual
}

// TensorDescriptor implements backends.Backend.
func (b *Backend) TensorDescriptor(spec backends.TensorSpec) (backends.TensorDescriptor, backends.Status) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.usable() {
		return nil, backends.StatusNotInitialized
	}
	if st := validateTensorSpec(spec); !st.Ok() {
		return nil, st
	}
	t := &TensorDesc{
		object:    b.newObject(KindTensor),
		shape:     shapes.Make(spec.DType, spec.Dimensions, spec.Strides),
		id:        spec.ID,
		alignment: spec.Alignment,
		virtual:   spec.Virtual,
	}
	klog.V(2).Infof("simulated backend: tensor #%d %s (alignment=%d, virtual=%v)", t.id, t.shape, t.alignment, t.virtual)
	return t, backends.StatusSuccess
}

func validateTensorSpec(spec backends.TensorSpec) backends.Status {
	rank := len(spec.Dimensions)
	switch {
	case rank == 0 || rank > MaxRank:
		klog.Errorf("simulated backend: tensor #%d rank %d not in [1, %d]", spec.ID, rank, MaxRank)
		return backends.StatusBadParam
	case len(spec.Strides) != rank:
		klog.Errorf("simulated backend: tensor #%d has %d dimensions but %d strides", spec.ID, rank, len(spec.Strides))
		return backends.StatusBadParam
	case spec.ID < 0:
		klog.Errorf("simulated backend: tensor uid %d must be non-negative", spec.ID)
		return backends.StatusBadParam
	case spec.Alignment <= 0 || bits.OnesCount64(uint64(spec.Alignment)) != 1:
		klog.Errorf("simulated backend: tensor #%d alignment %d must be a positive power of 2", spec.ID, spec.Alignment)
		return backends.StatusBadParam
	case !slices.Contains(supportedDTypes, spec.DType):
		klog.Errorf("simulated backend: tensor #%d dtype %s not supported", spec.ID, spec.DType)
		return backends.StatusNotSupported
	}
	for axis := range rank {
		if spec.Dimensions[axis] <= 0 || spec.Strides[axis] <= 0 {
			klog.Errorf("simulated backend: tensor #%d axis %d has dimension %d and stride %d, both must be positive",
				spec.ID, axis, spec.Dimensions[axis], spec.Strides[axis])
			return backends.StatusBadParam
		}
	}
	return backends.StatusSuccess
}

// PointwiseDesc implements backends.PointwiseDescriptor.
type PointwiseDesc struct {
	object
	spec backends.PointwiseSpec
}

func (p *PointwiseDesc) Mode() backends.PointwiseMode { return p.spec.Mode }

// PointwiseDescriptor implements backends.Backend.
func (b *Backend) PointwiseDescriptor(spec backends.PointwiseSpec) (backends.PointwiseDescriptor, backends.Status) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.usable() {
		return nil, backends.StatusNotInitialized
	}
	if !spec.Mode.IsValid() {
		klog.Errorf("simulated backend: invalid pointwise mode %s", spec.Mode)
		return nil, backends.StatusBadParam
	}
	if spec.ComputeType != dtypes.InvalidDType && !slices.Contains(executableDTypes, spec.ComputeType) {
		klog.Errorf("simulated backend: pointwise compute type %s not supported", spec.ComputeType)
		return nil, backends.StatusNotSupported
	}
	if spec.Mode == backends.PointwiseReluFwd && spec.ReluLowerClip > spec.ReluUpperClip {
		klog.Errorf("simulated backend: relu lower clip %g > upper clip %g", spec.ReluLowerClip, spec.ReluUpperClip)
		return nil, backends.StatusBadParam
	}
	return &PointwiseDesc{object: b.newObject(KindPointwise), spec: spec}, backends.StatusSuccess
}

// ConvolutionDesc implements backends.ConvolutionDescriptor.
type ConvolutionDesc struct {
	object
	spec backends.ConvolutionSpec
}

func (c *ConvolutionDesc) Mode() backends.ConvolutionMode { return c.spec.Mode }
func (c *ConvolutionDesc) SpatialDims() int               { return c.spec.SpatialDims }

// ConvolutionDescriptor implements backends.Backend.
func (b *Backend) ConvolutionDescriptor(spec backends.ConvolutionSpec) (backends.ConvolutionDescriptor, backends.Status) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.usable() {
		return nil, backends.StatusNotInitialized
	}
	n := spec.SpatialDims
	if n != 2 {
		klog.Errorf("simulated backend: convolution with %d spatial dimensions not supported", n)
		return nil, backends.StatusNotSupported
	}
	if len(spec.Strides) != n || len(spec.PrePadding) != n || len(spec.PostPadding) != n || len(spec.Dilations) != n {
		klog.Errorf("simulated backend: convolution strides, paddings and dilations must have %d elements", n)
		return nil, backends.StatusBadParam
	}
	for axis := range n {
		if spec.Strides[axis] <= 0 || spec.Dilations[axis] <= 0 || spec.PrePadding[axis] < 0 || spec.PostPadding[axis] < 0 {
			klog.Errorf("simulated backend: invalid convolution parameters for spatial axis %d", axis)
			return nil, backends.StatusBadParam
		}
	}
	if spec.ComputeType != dtypes.InvalidDType && !slices.Contains(executableDTypes, spec.ComputeType) {
		klog.Errorf("simulated backend: convolution compute type %s not supported", spec.ComputeType)
		return nil, backends.StatusNotSupported
	}
	spec.Strides = slices.Clone(spec.Strides)
	spec.PrePadding = slices.Clone(spec.PrePadding)
	spec.PostPadding = slices.Clone(spec.PostPadding)
	spec.Dilations = slices.Clone(spec.Dilations)
	return &ConvolutionDesc{object: b.newObject(KindConvolution), spec: spec}, backends.StatusSuccess
}
