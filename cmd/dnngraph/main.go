// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// dnngraph builds the operation graph declared in an HCL graph file (see package graphdef), selects an
// execution plan for it and executes it, reporting the plan, the tensors and, optionally, the outputs.
//
// Usage:
//
//	dnngraph [flags] <graph.hcl>
//
// The backend is selected with -backend, or with $DNNGRAPH_BACKEND, e.g. "sim:engines=3,unsupported=0".
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/gomlx/dnngraph/backends"
	_ "github.com/gomlx/dnngraph/backends/simulated"
	"github.com/gomlx/dnngraph/dnn"
	"github.com/gomlx/dnngraph/graphdef"
	"github.com/gomlx/dnngraph/types/status"
	"github.com/janpfeifer/must"
	"github.com/muesli/termenv"
	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"k8s.io/klog/v2"
)

var (
	flagBackend = flag.String("backend", "",
		fmt.Sprintf("Backend configuration, as \"<name>:<config>\". If empty, $%s or the first registered backend is used.",
			backends.ConfigEnvVar))
	flagHeuristics   = flag.String("heuristics", string(backends.DefaultHeuristicMode), "Heuristic used to rank engine configurations.")
	flagDedup        = flag.Bool("dedup", false, "Remove repeated operations from the graph, even if the graph file doesn't ask for it.")
	flagRepeat       = flag.Int("repeat", 1, "Number of times to execute the graph.")
	flagPrintOutputs = flag.Int("print_outputs", 0, "Print up to this many values of each output.")
	flagNoColor      = flag.Bool("no_color", false, "Disable colors in the output.")
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()
	if flag.NArg() != 1 {
		klog.Errorf("Expected exactly one graph file. See 'dnngraph -help'.")
		os.Exit(1)
	}
	if *flagNoColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
	if err := run(flag.Arg(0)); err != nil {
		klog.Errorf("Failed: %+v", err)
		os.Exit(1)
	}
}

func run(graphPath string) error {
	f, err := graphdef.ParseFile(graphPath)
	if err != nil {
		return err
	}

	var backend backends.Backend
	if *flagBackend != "" {
		backend, err = backends.NewWithConfig(*flagBackend)
	} else {
		backend, err = backends.New()
	}
	if err != nil {
		return err
	}
	defer backend.Finalize()
	allocator, ok := backend.(backends.Allocator)
	if !ok {
		return errors.Errorf("backend %q doesn't allocate device memory", backend.Name())
	}
	handle, st := backend.NewHandle(0)
	if err = st.ToError(status.KindBackendDescriptor, "failed to create handle for backend %q", backend.Name()); err != nil {
		return err
	}
	defer func() { _ = handle.Destroy() }()

	var graphOpts []dnn.GraphOption
	if *flagDedup {
		graphOpts = append(graphOpts, dnn.WithOperationDedup())
	}
	built, err := f.Build(backend, handle, graphOpts...)
	if err != nil {
		return err
	}
	defer built.Release()

	exec, err := dnn.CreateExecutable(backend, handle, built.Graph,
		dnn.WithHeuristicMode(backends.HeuristicMode(*flagHeuristics)))
	if err != nil {
		return err
	}
	defer exec.Release()

	buffers, err := uploadBuffers(allocator, handle, built)
	defer func() {
		for _, buf := range buffers {
			if st := allocator.Free(buf); !st.Ok() {
				klog.Warningf("failed to free buffer: %s", st)
			}
		}
	}()
	if err != nil {
		return err
	}

	elapsed, err := execute(exec, handle, buffers, *flagRepeat)
	if err != nil {
		return err
	}

	fmt.Println(titleStyle.Render("Execution"))
	fmt.Println(summaryTable(backend, built, exec, *flagRepeat, elapsed))
	fmt.Println(titleStyle.Render("Tensors"))
	fmt.Println(tensorsTable(built))
	if *flagPrintOutputs > 0 {
		fmt.Println(titleStyle.Render("Outputs"))
		table, err := outputsTable(allocator, built, buffers, *flagPrintOutputs)
		if err != nil {
			return err
		}
		fmt.Println(table)
	}
	return nil
}

// uploadBuffers allocates one device buffer per graph tensor, in the order expected by Executable.Execute,
// and uploads the fill values of the arguments. Buffers are returned even on error, so they can be freed.
func uploadBuffers(allocator backends.Allocator, handle backends.Handle, built *graphdef.Built) ([]backends.Buffer, error) {
	graph := built.Graph
	tensors := append(graph.Arguments(), graph.Results()...)
	names := nodeNames(built)
	buffers := make([]backends.Buffer, 0, len(tensors))
	for ii, t := range tensors {
		shape := t.Shape()
		buf, st := allocator.Allocate(handle, backends.MemoryDevice, int64(shape.Memory()))
		if err := st.ToError(status.KindUnknown, "failed to allocate buffer for tensor %s", t); err != nil {
			return buffers, err
		}
		buffers = append(buffers, buf)
		if ii >= len(graph.Arguments()) {
			continue
		}
		data, err := graphdef.EncodeValues(shape, built.File.Node(names[t.UID()]).Fill)
		if err != nil {
			return buffers, errors.WithMessagef(err, "tensor %q", names[t.UID()])
		}
		if err := allocator.CopyToDevice(buf, data).ToError(status.KindUnknown, "failed to upload tensor %q", names[t.UID()]); err != nil {
			return buffers, err
		}
	}
	return buffers, nil
}

// execute runs the executable repeat times, with a progress bar, and returns the total time spent.
func execute(exec *dnn.Executable, handle backends.Handle, buffers []backends.Buffer, repeat int) (time.Duration, error) {
	bar := progressbar.NewOptions(repeat,
		progressbar.OptionSetDescription("executing"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("runs"),
		progressbar.OptionSetTheme(progressbar.ThemeASCII),
		progressbar.OptionClearOnFinish(),
	)
	start := time.Now()
	for ii := range repeat {
		if err := exec.Execute(handle, buffers); err != nil {
			_ = bar.Exit()
			return 0, errors.WithMessagef(err, "execution #%d", ii)
		}
		must.M(bar.Add(1))
	}
	elapsed := time.Since(start)
	_ = bar.Finish()
	return elapsed, nil
}

// nodeNames maps tensor uids to the names of the nodes declaring them.
func nodeNames(built *graphdef.Built) map[int64]string {
	names := make(map[int64]string, len(built.Tensors))
	for name, t := range built.Tensors {
		names[t.UID()] = name
	}
	return names
}
