// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package shapes

import (
	"encoding/binary"
	"math"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/x448/float16"
)

// IsFloat returns whether dtype is one of the float dtypes supported by GetFloat and PutFloat.
func IsFloat(dtype dtypes.DType) bool {
	switch dtype {
	case dtypes.Float16, dtypes.Float32, dtypes.Float64:
		return true
	}
	return false
}

// GetFloat returns the element of data at offset (counted in elements, not bytes), converted to float64.
// Elements are stored little-endian.
//
// It panics if dtype is not a float (see IsFloat).
func GetFloat(dtype dtypes.DType, data []byte, offset int64) float64 {
	switch dtype {
	case dtypes.Float16:
		return float64(float16.Frombits(binary.LittleEndian.Uint16(data[offset*2:])).Float32())
	case dtypes.Float32:
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(data[offset*4:])))
	case dtypes.Float64:
		return math.Float64frombits(binary.LittleEndian.Uint64(data[offset*8:]))
	default:
		exceptions.Panicf("shapes.GetFloat: dtype %s is not a float", dtype)
	}
	return 0
}

// PutFloat stores value, converted to dtype, as the element of data at offset (counted in elements).
//
// It panics if dtype is not a float (see IsFloat).
func PutFloat(dtype dtypes.DType, data []byte, offset int64, value float64) {
	switch dtype {
	case dtypes.Float16:
		binary.LittleEndian.PutUint16(data[offset*2:], float16.Fromfloat32(float32(value)).Bits())
	case dtypes.Float32:
		binary.LittleEndian.PutUint32(data[offset*4:], math.Float32bits(float32(value)))
	case dtypes.Float64:
		binary.LittleEndian.PutUint64(data[offset*8:], math.Float64bits(value))
	default:
		exceptions.Panicf("shapes.PutFloat: dtype %s is not a float", dtype)
	}
}
