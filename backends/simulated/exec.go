// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package simulated

import (
	"slices"

	"github.com/dustin/go-humanize"
	"github.com/gomlx/dnngraph/backends"
	"github.com/gomlx/dnngraph/types/sets"
	"github.com/gomlx/exceptions"
	"k8s.io/klog/v2"
)

// VariantPack implements backends.VariantPack.
type VariantPack struct {
	object
	workspace backends.DevicePointer
	pointers  []backends.DevicePointer
	uids      []int64
}

// VariantPack implements backends.Backend.
func (b *Backend) VariantPack(workspace backends.DevicePointer, pointers []backends.DevicePointer, uids []int64) (backends.VariantPack, backends.Status) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.usable() {
		return nil, backends.StatusNotInitialized
	}
	if len(pointers) != len(uids) {
		klog.Errorf("simulated backend: variant pack with %d pointers and %d uids", len(pointers), len(uids))
		return nil, backends.StatusBadParam
	}
	seen := sets.Make[int64](len(uids))
	for ii, uid := range uids {
		if !seen.InsertNew(uid) {
			klog.Errorf("simulated backend: variant pack binds uid %d twice", uid)
			return nil, backends.StatusBadParam
		}
		if pointers[ii] == backends.NullPointer {
			klog.Errorf("simulated backend: variant pack binds uid %d to a null pointer", uid)
			return nil, backends.StatusBadParam
		}
	}
	return &VariantPack{
		object:    b.newObject(KindVariantPack),
		workspace: workspace,
		pointers:  slices.Clone(pointers),
		uids:      slices.Clone(uids),
	}, backends.StatusSuccess
}

// Execute implements backends.Backend.
func (b *Backend) Execute(handle backends.Handle, plan backends.ExecutionPlan, pack backends.VariantPack) backends.Status {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.usable() {
		return backends.StatusNotInitialized
	}
	b.stats.Executions++
	st := b.execute(handle, plan, pack)
	if !st.Ok() {
		b.stats.FailedExecutions++
	}
	return st
}

// execute must be called with the lock held.
func (b *Backend) execute(handle backends.Handle, plan backends.ExecutionPlan, pack backends.VariantPack) backends.Status {
	h, _ := handle.(*Handle)
	p, _ := plan.(*Plan)
	vp, _ := pack.(*VariantPack)
	if h == nil || !h.alive(b) || p == nil || !p.alive(b) || vp == nil || !vp.alive(b) || !p.graph.alive(b) {
		klog.Errorf("simulated backend: execute requires a live handle, plan (and graph) and variant pack")
		return backends.StatusBadParam
	}
	g := p.graph
	if p.workspace > 0 && b.resolve(vp.workspace, p.workspace) == nil {
		klog.Errorf("simulated backend: plan %s requires %s of workspace, none given",
			p.tag, humanize.Bytes(uint64(p.workspace)))
		return backends.StatusBadParam
	}

	// Bind memory to every tensor of the graph: device memory from the pack, scratch memory for virtual tensors.
	memory := make(map[int64]tensorMemory, len(g.tensors))
	for ii, uid := range vp.uids {
		t, found := g.tensors[uid]
		if !found || t.virtual {
			klog.Errorf("simulated backend: variant pack binds uid %d, which is not a non-virtual tensor of the graph", uid)
			return backends.StatusBadParam
		}
		ptr := vp.pointers[ii]
		if int64(ptr)%t.alignment != 0 {
			klog.Errorf("simulated backend: pointer 0x%x for tensor #%d not aligned to %d bytes", ptr, uid, t.alignment)
			return backends.StatusBadParam
		}
		data := b.resolve(ptr, int64(t.shape.Memory()))
		if data == nil {
			klog.Errorf("simulated backend: pointer 0x%x for tensor #%d (%s) is not within a device allocation large enough",
				ptr, uid, humanize.Bytes(uint64(t.shape.Memory())))
			return backends.StatusBadParam
		}
		memory[uid] = tensorMemory{shape: t.shape, data: data}
	}
	for _, uid := range g.uids {
		t := g.tensors[uid]
		if t.virtual {
			memory[uid] = tensorMemory{shape: t.shape, data: make([]byte, t.shape.Memory())}
		} else if _, found := memory[uid]; !found {
			klog.Errorf("simulated backend: tensor #%d of graph not bound in variant pack", uid)
			return backends.StatusBadParam
		}
	}

	err := exceptions.TryCatch[error](func() {
		for _, op := range g.ops {
			runOperation(op, memory)
		}
	})
	if err != nil {
		klog.Errorf("simulated backend: execution of plan %s failed: %+v", p.tag, err)
		return backends.StatusExecutionFailed
	}
	klog.V(2).Infof("simulated backend: executed plan %s on handle %s", p.tag, h.id)
	return backends.StatusSuccess
}
