// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package simulated implements an in-process accelerator backend.
//
// It validates descriptors and graphs the way a real backend does, offers a configurable number of engine
// configurations (some of which may fail to build a plan, or require workspace), and executes plans on
// host memory addressed through synthetic device pointers. Only float dtypes (Float16, Float32 and Float64)
// can be executed.
//
// It also keeps an account of every descriptor created and destroyed (see Backend.Stats), so one can check
// that every backend object is destroyed exactly once, and in a safe order.
//
// It registers itself as "sim". See Config for the configuration string accepted.
package simulated

import (
	"fmt"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/gomlx/dnngraph/backends"
	"k8s.io/klog/v2"
)

// BackendName to be used in DNNGRAPH_BACKEND to specify this backend.
const BackendName = "sim"

// Registers New() as the constructor for the "sim" backend.
func init() {
	backends.Register(BackendName, func(config string) (backends.Backend, error) {
		return New(config)
	})
}

// New constructs a new simulated Backend with the given configuration. See Config for the format.
func New(config string) (*Backend, error) {
	c, err := ParseConfig(config)
	if err != nil {
		return nil, err
	}
	return NewWithConfig(c), nil
}

// NewWithConfig constructs a new simulated Backend from a parsed Config.
func NewWithConfig(config Config) *Backend {
	if config.Workspace == nil {
		config.Workspace = make(map[int]int64)
	}
	return &Backend{
		config:      config,
		allocations: make(map[backends.DevicePointer]*allocation),
		nextPointer: firstPointer,
	}
}

// Backend implements backends.Backend and backends.Allocator.
type Backend struct {
	config Config

	// mu protects everything below, including the destroyed/refs fields of every object created by the backend.
	mu          sync.Mutex
	stats       Stats
	allocations map[backends.DevicePointer]*allocation
	nextPointer backends.DevicePointer
	nextGraphID int
	finalized   bool
}

// Compile-time check that simulated.Backend implements backends.Backend and backends.Allocator.
var (
	_ backends.Backend   = (*Backend)(nil)
	_ backends.Allocator = (*Backend)(nil)
)

// Name returns the short name of the backend.
func (b *Backend) Name() string { return BackendName }

// String implements fmt.Stringer.
func (b *Backend) String() string { return BackendName }

// Description is a longer description of the Backend that can be used to pretty-print.
func (b *Backend) Description() string {
	return fmt.Sprintf("Simulated accelerator (%d device(s), %d engine(s))", b.config.NumDevices, b.config.NumEngines)
}

// NumDevices return the number of devices available for this Backend.
func (b *Backend) NumDevices() backends.DeviceNum {
	return backends.DeviceNum(b.config.NumDevices)
}

// Config returns the configuration of the backend.
func (b *Backend) Config() Config { return b.config }

// Finalize releases all the associated resources immediately, and makes the backend invalid.
// Descriptors still alive are reported as leaks in the logs.
func (b *Backend) Finalize() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.finalized {
		return
	}
	b.finalized = true
	if live := b.stats.liveTotal(); live > 0 {
		klog.Warningf("simulated backend finalized with %d live descriptors: %v", live, b.stats.Live)
	}
	var leaked int64
	for _, alloc := range b.allocations {
		leaked += int64(len(alloc.data))
	}
	if len(b.allocations) > 0 {
		klog.Warningf("simulated backend finalized with %d live allocations (%s)",
			len(b.allocations), humanize.Bytes(uint64(leaked)))
	}
	b.allocations = nil
}

// object is the common part of every descriptor created by the Backend.
type object struct {
	backend   *Backend
	kind      DescriptorKind
	destroyed bool

	// refs counts live descriptors referencing this one.
	refs int

	// onDestroy is called, with the backend lock held, when the object is destroyed. It releases the references
	// held by the object.
	onDestroy func()
}

// newObject registers the creation of a descriptor of the given kind. Must be called with the lock held.
func (b *Backend) newObject(kind DescriptorKind) object {
	b.stats.created(kind)
	return object{backend: b, kind: kind}
}

// Destroy implements backends.Descriptor.
func (o *object) Destroy() backends.Status {
	b := o.backend
	b.mu.Lock()
	defer b.mu.Unlock()
	if o.destroyed {
		b.stats.DoubleDestroys++
		klog.Warningf("simulated backend: %s destroyed twice", o.kind)
		return backends.StatusBadParam
	}
	if o.refs > 0 {
		b.stats.OrderViolations++
		klog.Warningf("simulated backend: %s destroyed while still referenced by %d live descriptor(s)", o.kind, o.refs)
	}
	o.destroyed = true
	b.stats.destroyed(o.kind)
	if o.onDestroy != nil {
		o.onDestroy()
		o.onDestroy = nil
	}
	return backends.StatusSuccess
}

// alive returns whether the object was created by this backend and not destroyed. Must be called with the lock held.
func (o *object) alive(b *Backend) bool {
	return o != nil && o.backend == b && !o.destroyed
}

// usable reports whether the backend can still be used. Must be called with the lock held.
func (b *Backend) usable() bool {
	if b.finalized {
		klog.Errorf("simulated backend used after Finalize()")
		return false
	}
	return true
}
