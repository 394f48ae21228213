// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package dnn

import (
	"fmt"
	"sync/atomic"

	"github.com/dustin/go-humanize"
	"github.com/gomlx/dnngraph/backends"
	"github.com/gomlx/dnngraph/types/status"
	"k8s.io/klog/v2"
)

// Executable is an OperationGraph paired with the execution plan selected for it, ready to be executed
// any number of times.
type Executable struct {
	refs    atomic.Int32
	backend backends.Backend
	graph   *OperationGraph

	// plans holds exactly one plan: the first viable one.
	plans []backends.ExecutionPlan
}

// ExecutableOption configures CreateExecutable.
type ExecutableOption func(*executableConfig)

type executableConfig struct {
	mode   backends.HeuristicMode
	reject func(backends.EngineConfig) bool
}

// WithHeuristicMode sets the heuristic used by the backend to rank engine configurations.
// The default is backends.DefaultHeuristicMode.
func WithHeuristicMode(mode backends.HeuristicMode) ExecutableOption {
	return func(c *executableConfig) { c.mode = mode }
}

// WithEngineConfigFilter sets a predicate to reject engine configurations before any plan is built:
// configurations for which reject returns true are not considered.
// The default, RejectNone, considers every configuration returned by the heuristic.
func WithEngineConfigFilter(reject func(backends.EngineConfig) bool) ExecutableOption {
	return func(c *executableConfig) { c.reject = reject }
}

// RejectNone is the default engine configuration filter: it rejects nothing.
func RejectNone(backends.EngineConfig) bool { return false }

// CreateExecutable selects an execution plan for the graph.
//
// The candidate engine configurations are tried in the order ranked by the backend heuristic, and the first
// one the backend can build a plan for is selected. Candidates failing to build (e.g. not supported by the
// installed backend version) are skipped. There is no auto-tuning: later candidates are never tried once one
// succeeds.
//
// Returned errors: status.KindUnsupportedGraph if there are no candidates, status.KindNoViableEngineConfig if no
// candidate could build a plan.
func CreateExecutable(backend backends.Backend, handle backends.Handle, graph *OperationGraph, opts ...ExecutableOption) (*Executable, error) {
	config := executableConfig{mode: backends.DefaultHeuristicMode, reject: RejectNone}
	for _, opt := range opts {
		opt(&config)
	}
	if graph == nil {
		return nil, status.Errorf(status.KindPrecondition, status.InvalidArgument, "CreateExecutable requires a graph")
	}

	configs, st := backend.EngineConfigs(graph.graph, config.mode, config.reject)
	if !st.Ok() {
		return nil, st.ToError(status.KindUnsupportedGraph, "failed to find engine configurations for graph %q with %s",
			graph.Tag(), config.mode)
	}
	defer func() {
		// The plan doesn't depend on its engine configuration, all of them can be destroyed.
		for _, engineConfig := range configs {
			destroyDescriptor("engine config "+engineConfig.Name(), engineConfig)
		}
	}()
	if len(configs) == 0 {
		return nil, status.Errorf(status.KindUnsupportedGraph, status.Unimplemented,
			"no engine configurations found for graph %q with %s", graph.Tag(), config.mode)
	}

	var plan backends.ExecutionPlan
	lastStatus := backends.StatusSuccess
	for _, engineConfig := range configs {
		plan, st = backend.ExecutionPlan(handle, engineConfig, graph.Tag())
		if st.Ok() {
			klog.V(1).Infof("dnn: selected engine config %s for graph %q: plan %q, workspace %s",
				engineConfig.Name(), graph.Tag(), plan.Tag(), humanize.Bytes(uint64(max(plan.WorkspaceSize(), 0))))
			break
		}
		klog.V(1).Infof("dnn: engine config %s for graph %q skipped: backend status %s", engineConfig.Name(), graph.Tag(), st)
		plan, lastStatus = nil, st
	}
	if plan == nil {
		return nil, status.FromNative(status.KindNoViableEngineConfig, lastStatus.Code(), lastStatus.String(),
			"none of the %d engine configurations for graph %q could build an execution plan", len(configs), graph.Tag())
	}

	graph.Retain()
	e := &Executable{backend: backend, graph: graph, plans: []backends.ExecutionPlan{plan}}
	e.refs.Store(1)
	return e, nil
}

// Graph returns the graph the executable was compiled from.
func (e *Executable) Graph() *OperationGraph { return e.graph }

// NumPlans returns the number of execution plans held: 1 for a valid executable.
func (e *Executable) NumPlans() int { return len(e.plans) }

// Plan returns the selected execution plan, or nil if there is none.
func (e *Executable) Plan() backends.ExecutionPlan {
	if len(e.plans) == 0 {
		return nil
	}
	return e.plans[0]
}

// WorkspaceSize returns the number of workspace bytes required by the selected plan.
func (e *Executable) WorkspaceSize() int64 {
	if len(e.plans) == 0 {
		return 0
	}
	return e.plans[0].WorkspaceSize()
}

// String implements fmt.Stringer.
func (e *Executable) String() string {
	if len(e.plans) == 0 {
		return "Executable(<no plan>)"
	}
	return fmt.Sprintf("Executable(%q)", e.plans[0].Tag())
}

// Retain adds a reference to the executable.
func (e *Executable) Retain() {
	e.refs.Add(1)
}

// Release drops a reference to the executable. The last one destroys the execution plan, and then releases
// the graph.
func (e *Executable) Release() {
	refs := e.refs.Add(-1)
	if refs < 0 {
		klog.Warningf("dnn: %s released more times than it was retained", e)
		return
	}
	if refs > 0 {
		return
	}
	for _, plan := range e.plans {
		destroyDescriptor(fmt.Sprintf("execution plan %q", plan.Tag()), plan)
	}
	e.plans = nil
	e.graph.Release()
}

// Execute runs the executable on the given device buffers, blocking until the backend finishes.
//
// There must be one buffer per tensor in Graph().UIDs(), in the same order: arguments sorted by uid, then
// results in the order requested when building the graph.
//
// Returned errors: status.KindArityMismatch for the wrong number of buffers (the backend is not called),
// status.KindInvalidBufferKind for buffers not in device memory, status.KindWorkspaceUnsupported if the
// plan requires workspace memory, status.KindBackendDescriptor if the backend can't bind the buffers and
// status.KindBackendExecution if the execution fails.
func (e *Executable) Execute(handle backends.Handle, buffers []backends.Buffer) error {
	if len(e.plans) == 0 {
		return status.Errorf(status.KindInternal, status.Internal, "executable has no execution plan")
	}
	uids := e.graph.uids
	if len(buffers) != len(uids) {
		return status.Errorf(status.KindArityMismatch, status.InvalidArgument,
			"%d buffers given, but graph has %d arguments and %d results", len(buffers), len(e.graph.args), len(e.graph.results))
	}

	pointers := make([]backends.DevicePointer, len(buffers))
	for ii, buffer := range buffers {
		if buffer == nil || buffer.MemoryKind() != backends.MemoryDevice {
			kind := "nil"
			if buffer != nil {
				kind = buffer.MemoryKind().String()
			}
			return status.Errorf(status.KindInvalidBufferKind, status.InvalidArgument,
				"buffer #%d (tensor #%d) must be in device memory, got %s", ii, uids[ii], kind)
		}
		pointers[ii] = buffer.BasePointer() + backends.DevicePointer(buffer.ByteOffset())
	}

	plan := e.plans[0]
	if workspace := plan.WorkspaceSize(); workspace != 0 {
		return status.Errorf(status.KindWorkspaceUnsupported, status.Unimplemented,
			"execution plan %q requires %s of workspace, which is not supported", plan.Tag(), humanize.Bytes(uint64(workspace)))
	}

	pack, st := e.backend.VariantPack(backends.NullPointer, pointers, uids)
	if !st.Ok() {
		return st.ToError(status.KindBackendDescriptor, "failed to bind %d buffers to plan %q", len(buffers), plan.Tag())
	}
	defer destroyDescriptor("variant pack", pack)

	if st = e.backend.Execute(handle, plan, pack); !st.Ok() {
		return st.ToError(status.KindBackendExecution, "execution of plan %q failed", plan.Tag())
	}
	return nil
}
