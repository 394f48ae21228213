// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package backends defines the narrow binding to an accelerator library that builds tensor and operation
// descriptors, assembles them into operation graphs, selects engine configurations, builds execution plans
// and executes them.
//
// The backend is an opaque service: this package only describes the contract, implementations live in
// sub-packages (see backends/simulated) and register themselves with Register.
//
// Every builder returns the descriptor built and the backend's native Status. Callers translate a
// non-successful Status into an error (see Status.Code and package types/status). Descriptors are owned
// by whoever built them and must be destroyed exactly once with Descriptor.Destroy.
package backends

import (
	"os"
	"slices"
	"strings"

	"github.com/gomlx/dnngraph/types/status"
	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// DeviceNum represents which device a handle is bound to.
// It's up to the backend to interpret it, but it should be between 0 and Backend.NumDevices.
type DeviceNum int

// Backend is the API that needs to be implemented by an accelerator backend.
type Backend interface {
	// Name returns the short name of the backend. E.g.: "sim" for the simulated backend.
	Name() string

	// Description is a longer description of the Backend that can be used to pretty-print.
	Description() string

	// NumDevices return the number of devices available for this Backend.
	NumDevices() DeviceNum

	// NewHandle creates a context bound to the given device. Descriptors and plans are built against a
	// handle, and execution happens on it.
	NewHandle(device DeviceNum) (Handle, Status)

	// TensorDescriptor builds a tensor descriptor. It validates the combination of dimensions, strides,
	// dtype and alignment.
	TensorDescriptor(spec TensorSpec) (TensorDescriptor, Status)

	// PointwiseDescriptor builds the descriptor of a pointwise (elementwise) computation.
	PointwiseDescriptor(spec PointwiseSpec) (PointwiseDescriptor, Status)

	// ConvolutionDescriptor builds the descriptor of a convolution computation.
	ConvolutionDescriptor(spec ConvolutionSpec) (ConvolutionDescriptor, Status)

	// Operation builds an operation from the typed sub-descriptors in spec.
	// The operation doesn't take ownership of the sub-descriptors: the PointwiseDescriptor or ConvolutionDescriptor
	// can be destroyed right after the operation is built, but the tensor descriptors must outlive it.
	Operation(spec OperationSpec) (OperationDescriptor, Status)

	// OperationGraph builds a graph from the ordered list of operations: an operation consuming a virtual
	// tensor must come after the operation producing it.
	OperationGraph(handle Handle, ops []OperationDescriptor) (GraphDescriptor, Status)

	// EngineConfigs enumerates the engine configurations able to run graph, ranked by the given heuristic mode.
	//
	// The reject predicate is called for each candidate: configurations for which it returns true are dropped
	// (and destroyed by the backend). The caller owns the returned configurations.
	EngineConfigs(graph GraphDescriptor, mode HeuristicMode, reject func(EngineConfig) bool) ([]EngineConfig, Status)

	// ExecutionPlan builds a runnable plan for the engine configuration. The graphTag must be the
	// GraphDescriptor.Tag of the graph the configuration was enumerated for.
	ExecutionPlan(handle Handle, config EngineConfig, graphTag string) (ExecutionPlan, Status)

	// VariantPack binds device pointers to tensor uids, position by position, plus an optional workspace
	// pointer (NullPointer for none).
	VariantPack(workspace DevicePointer, pointers []DevicePointer, uids []int64) (VariantPack, Status)

	// Execute runs the plan on the handle, blocking until it finishes.
	Execute(handle Handle, plan ExecutionPlan, pack VariantPack) Status

	// Finalize releases all the associated resources immediately, and makes the backend invalid.
	Finalize()
}

// Constructor takes a config string (optionally empty) and returns a Backend.
type Constructor func(config string) (Backend, error)

var (
	registeredConstructors = make(map[string]Constructor)
	firstRegistered        string
)

// Register backend with the given name, and a default constructor that takes as input a configuration string that is
// passed along to the backend constructor.
//
// To be safe, call Register during initialization of a package.
func Register(name string, constructor Constructor) {
	if len(registeredConstructors) == 0 {
		firstRegistered = name
	}
	registeredConstructors[name] = constructor
}

// List the names of the registered backends, sorted.
func List() []string {
	names := make([]string, 0, len(registeredConstructors))
	for name := range registeredConstructors {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// DefaultConfig is the name of the default backend configuration to use if specified.
//
// See NewWithConfig for the format of the configuration string.
var DefaultConfig string

// ConfigEnvVar is the environment variable with the default backend configuration to use.
// It takes precedence over DefaultConfig.
//
// The format of the configuration is "<backend_name>:<backend_configuration>".
// The "<backend_name>" is the name of a registered backend (e.g.: "sim") and
// "<backend_configuration>" is backend specific.
const ConfigEnvVar = "DNNGRAPH_BACKEND"

// New returns a new default Backend.
//
// The default is:
//
// 1. The environment $DNNGRAPH_BACKEND (ConfigEnvVar) is used as a configuration if defined.
// 2. Next the variable DefaultConfig is used as a configuration if defined.
// 3. The first registered backend is used with an empty configuration.
func New() (Backend, error) {
	config, found := os.LookupEnv(ConfigEnvVar)
	if found {
		return NewWithConfig(config)
	}
	if DefaultConfig != "" {
		return NewWithConfig(DefaultConfig)
	}
	return NewWithConfig("")
}

// MustNew is like New, but panics on error.
func MustNew() Backend {
	backend, err := New()
	if err != nil {
		exceptions.Panicf("backends.MustNew(): %+v", err)
	}
	return backend
}

// NewWithConfig creates a backend from a configuration string.
//
// The format of config is "<backend_name>:<backend_configuration>".
// The "<backend_name>" is the name of a registered backend (e.g.: "sim") and
// "<backend_configuration>" is backend specific. If the ":" is missing, config
// is taken as the name of the backend, with an empty configuration. An empty
// config selects the first registered backend.
func NewWithConfig(config string) (Backend, error) {
	if len(registeredConstructors) == 0 {
		return nil, status.Errorf(status.KindPrecondition, status.FailedPrecondition,
			`no registered backends -- maybe import the simulated one with import _ "github.com/gomlx/dnngraph/backends/simulated"?`)
	}
	backendName := config
	var backendConfig string
	if idx := strings.Index(config, ":"); idx != -1 {
		backendName = config[:idx]
		backendConfig = config[idx+1:]
	}
	if backendName == "" {
		backendName = firstRegistered
	}
	constructor, found := registeredConstructors[backendName]
	if !found {
		return nil, status.Errorf(status.KindPrecondition, status.NotFound,
			"can't find backend %q for configuration %q given, registered backends: %v", backendName, config, List())
	}
	backend, err := constructor(backendConfig)
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to create backend %q with configuration %q", backendName, backendConfig)
	}
	klog.V(1).Infof("backends: created %q (%s)", backend.Name(), backend.Description())
	return backend, nil
}
