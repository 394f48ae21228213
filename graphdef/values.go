// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package graphdef

import (
	"github.com/gomlx/dnngraph/types/shapes"
	"github.com/pkg/errors"
)

// EncodeValues returns the memory contents (shape.Memory() bytes, little-endian) of a tensor of the given
// shape, with values repeated over its elements in row-major order and placed according to the strides.
// Memory not addressed by any element is zero.
//
// Only float dtypes are supported. If values is empty the tensor is all zeros.
func EncodeValues(shape shapes.Shape, values []float64) ([]byte, error) {
	if err := checkFloat(shape); err != nil {
		return nil, err
	}
	data := make([]byte, shape.Memory())
	if len(values) == 0 {
		return data, nil
	}
	var ii int
	for _, offset := range shape.Iter() {
		shapes.PutFloat(shape.DType, data, offset, values[ii%len(values)])
		ii++
	}
	return data, nil
}

// DecodeValues is the inverse of EncodeValues: it returns the values of the tensor elements in row-major order.
func DecodeValues(shape shapes.Shape, data []byte) ([]float64, error) {
	if err := checkFloat(shape); err != nil {
		return nil, err
	}
	if uintptr(len(data)) < shape.Memory() {
		return nil, errors.Errorf("%d bytes given, but shape %s requires %d", len(data), shape, shape.Memory())
	}
	values := make([]float64, 0, shape.Size())
	for _, offset := range shape.Iter() {
		values = append(values, shapes.GetFloat(shape.DType, data, offset))
	}
	return values, nil
}

func checkFloat(shape shapes.Shape) error {
	if !shapes.IsFloat(shape.DType) {
		return errors.Errorf("only float tensors can be encoded, got shape %s", shape)
	}
	return nil
}
