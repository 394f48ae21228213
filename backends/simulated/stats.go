// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package simulated

import "maps"

//go:generate go tool enumer -type=DescriptorKind -trimprefix=Kind -transform=snake -output=gen_descriptorkind_enumer.go stats.go

// DescriptorKind enumerates the kinds of objects the backend creates.
type DescriptorKind int

const (
	KindHandle DescriptorKind = iota
	KindTensor
	KindPointwise
	KindConvolution
	KindOperation
	KindGraph
	KindEngineConfig
	KindPlan
	KindVariantPack
)

// Stats is an account of the objects created by the backend and of how they were used.
type Stats struct {
	// Created and Live count descriptors per kind.
	Created, Live map[DescriptorKind]int

	// DoubleDestroys counts calls to Destroy on an already destroyed descriptor.
	DoubleDestroys int

	// OrderViolations counts descriptors destroyed while still referenced by another live descriptor,
	// e.g. a tensor descriptor destroyed before the operation using it.
	OrderViolations int

	// PlanAttempts counts calls to ExecutionPlan, and PlansBuilt the successful ones.
	PlanAttempts, PlansBuilt int

	// Executions counts calls to Execute, and FailedExecutions the ones that didn't return StatusSuccess.
	Executions, FailedExecutions int

	// Allocations is the number of live allocations, and AllocatedBytes their total size.
	Allocations    int
	AllocatedBytes int64
}

func (s *Stats) created(kind DescriptorKind) {
	if s.Created == nil {
		s.Created = make(map[DescriptorKind]int)
		s.Live = make(map[DescriptorKind]int)
	}
	s.Created[kind]++
	s.Live[kind]++
}

func (s *Stats) destroyed(kind DescriptorKind) {
	s.Live[kind]--
}

func (s *Stats) liveTotal() int {
	var total int
	for _, count := range s.Live {
		total += count
	}
	return total
}

// LiveDescriptors returns the total number of live descriptors, of all kinds.
func (s Stats) LiveDescriptors() int { return s.liveTotal() }

// Stats returns a snapshot of the backend accounting.
func (b *Backend) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := b.stats
	s.Created = maps.Clone(b.stats.Created)
	s.Live = maps.Clone(b.stats.Live)
	if s.Created == nil {
		s.Created = make(map[DescriptorKind]int)
		s.Live = make(map[DescriptorKind]int)
	}
	s.Allocations = len(b.allocations)
	for _, alloc := range b.allocations {
		s.AllocatedBytes += int64(len(alloc.data))
	}
	return s
}
