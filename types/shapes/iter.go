// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package shapes

import "iter"

// Iter iterates over all indices of the shape in row-major order (last index changes fastest),
// yielding the indices and the memory offset (in elements) given by the strides.
//
// The yielded indices slice is owned by Iter: don't change it inside the loop.
func (s Shape) Iter() iter.Seq2[[]int64, int64] {
	return func(yield func([]int64, int64) bool) {
		rank := s.Rank()
		if rank == 0 {
			_ = yield(make([]int64, 0), 0)
			return
		}
		for _, dim := range s.Dimensions {
			if dim <= 0 {
				return
			}
		}

		indices := make([]int64, rank)
		var offset int64
		for {
			if !yield(indices, offset) {
				return
			}

			// Increment indices as an N-dimensional counter, keeping offset in sync.
			axis := rank - 1
			for ; axis >= 0; axis-- {
				if s.Dimensions[axis] == 1 {
					continue
				}
				indices[axis]++
				offset += s.Strides[axis]
				if indices[axis] < s.Dimensions[axis] {
					break
				}
				offset -= indices[axis] * s.Strides[axis]
				indices[axis] = 0
			}
			if axis < 0 {
				return
			}
		}
	}
}
