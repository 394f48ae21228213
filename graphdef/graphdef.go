// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package graphdef defines operation graphs in HCL files, and builds them with package dnn.
//
// A graph file declares argument tensors and operations as named blocks. Operations refer to their inputs
// with node.<name>, and the top-level outputs attribute lists the tensors to compute:
//
//	tensor "x" {
//	  uid    = 1
//	  dims   = [1, 3, 8, 8]
//	  layout = layouts.channels_last
//	  fill   = range(0, 1, 0.125)
//	}
//
//	tensor "w" {
//	  uid  = 2
//	  dims = [4, 3, 3, 3]
//	}
//
//	convolution "conv" {
//	  uid     = 10
//	  input   = node.x
//	  filter  = node.w
//	  virtual = true
//	}
//
//	relu "y" {
//	  uid        = 11
//	  x          = node.conv
//	  upper_clip = 6
//	}
//
//	outputs = [node.y]
//
// Block types:
//
//   - tensor: an argument tensor. Attributes: uid, dims, and optionally strides or layout (layouts.row_major,
//     the default, or layouts.channels_last), dtype (e.g. dtypes.float32, the default), alignment (16 bytes by
//     default) and fill, values repeated over the tensor elements in row-major order when the tensor is
//     uploaded.
//   - pointwise: attributes uid, mode (e.g. modes.add), x, and b for binary modes; optionally alpha, alpha2,
//     alignment and virtual.
//   - relu: attributes uid and x; optionally lower_clip (0 by default), upper_clip (unbounded by default),
//     alignment and virtual.
//   - convolution: attributes uid, input and filter; optionally mode (conv_modes.cross_correlation, the default,
//     or conv_modes.convolution), alignment and virtual.
//
// The top-level attribute dedup = true builds the graph with dnn.WithOperationDedup.
//
// Expressions can use the functions range, concat, reverse, abs, min and max.
package graphdef

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"sort"
	"strings"

	"github.com/gomlx/dnngraph/backends"
	"github.com/gomlx/dnngraph/types/shapes"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/pkg/errors"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
	"k8s.io/klog/v2"
)

// DefaultAlignment of tensors, in bytes, if not specified.
const DefaultAlignment = 16

//go:generate go tool enumer -type=NodeKind -trimprefix=Node -transform=lower -output=gen_nodekind_enumer.go graphdef.go

// NodeKind is the kind of block declaring a node. Its String is the block type.
type NodeKind int

const (
	NodeTensor NodeKind = iota
	NodePointwise
	NodeRelu
	NodeConvolution
)

// Node is a tensor or an operation declared in a graph file.
type Node struct {
	Kind NodeKind
	Name string
	UID  int64

	// Alignment in bytes of the tensor.
	Alignment int64

	// Virtual is set for intermediate operation results that are never materialized.
	Virtual bool

	// Inputs are the names of the input nodes of operations: x (and b) for pointwise and relu, input and
	// filter for convolution.
	Inputs []string

	// Shape of an argument tensor.
	Shape shapes.Shape

	// Fill values of an argument tensor, repeated over its elements in row-major order.
	Fill []float64

	PointwiseMode        backends.PointwiseMode
	Alpha, Alpha2        float64
	LowerClip, UpperClip float64
	ConvolutionMode      backends.ConvolutionMode

	// Range of the block in the source file.
	Range hcl.Range
}

// String implements fmt.Stringer.
func (n *Node) String() string {
	return fmt.Sprintf("%s %q (#%d)", n.Kind, n.Name, n.UID)
}

// File is a parsed graph file.
type File struct {
	// Nodes in the order they are declared.
	Nodes []*Node

	// Outputs are the names of the nodes to compute.
	Outputs []string

	// Dedup requests operation deduplication when building the graph.
	Dedup bool

	byName map[string]*Node
}

// Node returns the node with the given name, or nil.
func (f *File) Node(name string) *Node {
	return f.byName[name]
}

// Blocks as decoded by gohcl.
type (
	fileBlock struct {
		Tensors      []*tensorBlock      `hcl:"tensor,block"`
		Pointwise    []*pointwiseBlock   `hcl:"pointwise,block"`
		Relus        []*reluBlock        `hcl:"relu,block"`
		Convolutions []*convolutionBlock `hcl:"convolution,block"`
		Outputs      []string            `hcl:"outputs"`
		Dedup        *bool               `hcl:"dedup,optional"`
	}

	tensorBlock struct {
		Name      string    `hcl:"name,label"`
		UID       int64     `hcl:"uid"`
		Dims      []int64   `hcl:"dims"`
		Strides   []int64   `hcl:"strides,optional"`
		Layout    *string   `hcl:"layout,optional"`
		DType     *string   `hcl:"dtype,optional"`
		Alignment *int64    `hcl:"alignment,optional"`
		Fill      []float64 `hcl:"fill,optional"`
		DeclRange hcl.Range `hcl:",def_range"`
	}

	pointwiseBlock struct {
		Name      string    `hcl:"name,label"`
		UID       int64     `hcl:"uid"`
		Mode      string    `hcl:"mode"`
		X         string    `hcl:"x"`
		B         *string   `hcl:"b,optional"`
		Alpha     *float64  `hcl:"alpha,optional"`
		Alpha2    *float64  `hcl:"alpha2,optional"`
		Alignment *int64    `hcl:"alignment,optional"`
		Virtual   *bool     `hcl:"virtual,optional"`
		DeclRange hcl.Range `hcl:",def_range"`
	}

	reluBlock struct {
		Name      string    `hcl:"name,label"`
		UID       int64     `hcl:"uid"`
		X         string    `hcl:"x"`
		LowerClip *float64  `hcl:"lower_clip,optional"`
		UpperClip *float64  `hcl:"upper_clip,optional"`
		Alignment *int64    `hcl:"alignment,optional"`
		Virtual   *bool     `hcl:"virtual,optional"`
		DeclRange hcl.Range `hcl:",def_range"`
	}

	convolutionBlock struct {
		Name      string    `hcl:"name,label"`
		UID       int64     `hcl:"uid"`
		Input     string    `hcl:"input"`
		Filter    string    `hcl:"filter"`
		Mode      *string   `hcl:"mode,optional"`
		Alignment *int64    `hcl:"alignment,optional"`
		Virtual   *bool     `hcl:"virtual,optional"`
		DeclRange hcl.Range `hcl:",def_range"`
	}
)

// dtypeNames are the dtypes that can be named in a graph file.
var dtypeNames = map[string]dtypes.DType{
	"float16": dtypes.Float16,
	"float32": dtypes.Float32,
	"float64": dtypes.Float64,
	"int8":    dtypes.Int8,
	"int32":   dtypes.Int32,
	"int64":   dtypes.Int64,
	"uint8":   dtypes.Uint8,
}

// stringsObject returns an object mapping each name to itself, so that e.g. layouts.channels_last
// evaluates to "channels_last".
func stringsObject(names []string) cty.Value {
	attrs := make(map[string]cty.Value, len(names))
	for _, name := range names {
		attrs[name] = cty.StringVal(name)
	}
	return cty.ObjectVal(attrs)
}

// evalContext returns the variables and functions available to graph file expressions.
func evalContext(nodeNames []string) *hcl.EvalContext {
	nodes := make(map[string]cty.Value, len(nodeNames))
	for _, name := range nodeNames {
		nodes[name] = cty.StringVal(name)
	}
	var modes []string
	for _, mode := range backends.PointwiseModeValues() {
		if mode.IsValid() {
			modes = append(modes, mode.String())
		}
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"node":       cty.ObjectVal(nodes),
			"dtypes":     stringsObject(slices.Collect(maps.Keys(dtypeNames))),
			"layouts":    stringsObject(shapes.LayoutStrings()),
			"conv_modes": stringsObject(backends.ConvolutionModeStrings()),
			"modes":      stringsObject(modes),
		},
		Functions: map[string]function.Function{
			"range":   stdlib.RangeFunc,
			"concat":  stdlib.ConcatFunc,
			"reverse": stdlib.ReverseListFunc,
			"abs":     stdlib.AbsoluteFunc,
			"min":     stdlib.MinFunc,
			"max":     stdlib.MaxFunc,
		},
	}
}

// headerSchema only lists the blocks, to collect node names before decoding the expressions.
var headerSchema = func() *hcl.BodySchema {
	schema := &hcl.BodySchema{}
	for _, blockType := range NodeKindStrings() {
		schema.Blocks = append(schema.Blocks, hcl.BlockHeaderSchema{Type: blockType, LabelNames: []string{"name"}})
	}
	return schema
}()

// ParseFile parses the graph file at filePath.
func ParseFile(filePath string) (*File, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCLFile(filePath)
	if diags.HasErrors() {
		return nil, errors.Errorf("failed to parse graph file %s: %s", filePath, diags.Error())
	}
	return decode(hclFile, filePath)
}

// Parse parses the contents of a graph file. fileName is only used in error messages.
func Parse(src []byte, fileName string) (*File, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(src, fileName)
	if diags.HasErrors() {
		return nil, errors.Errorf("failed to parse graph file %s: %s", fileName, diags.Error())
	}
	return decode(hclFile, fileName)
}

func decode(hclFile *hcl.File, fileName string) (*File, error) {
	headers, _, diags := hclFile.Body.PartialContent(headerSchema)
	if diags.HasErrors() {
		return nil, errors.Errorf("failed to decode graph file %s: %s", fileName, diags.Error())
	}
	names := make([]string, 0, len(headers.Blocks))
	for _, block := range headers.Blocks {
		names = append(names, block.Labels[0])
	}

	var decoded fileBlock
	diags = gohcl.DecodeBody(hclFile.Body, evalContext(names), &decoded)
	if diags.HasErrors() {
		return nil, errors.Errorf("failed to decode graph file %s: %s", fileName, diags.Error())
	}

	f := &File{Outputs: decoded.Outputs, byName: make(map[string]*Node)}
	if decoded.Dedup != nil {
		f.Dedup = *decoded.Dedup
	}
	var err error
	for _, block := range decoded.Tensors {
		if err = f.add(block.tensor()); err != nil {
			return nil, err
		}
	}
	for _, block := range decoded.Pointwise {
		if err = f.add(block.node()); err != nil {
			return nil, err
		}
	}
	for _, block := range decoded.Relus {
		if err = f.add(block.node()); err != nil {
			return nil, err
		}
	}
	for _, block := range decoded.Convolutions {
		if err = f.add(block.node()); err != nil {
			return nil, err
		}
	}
	// gohcl groups blocks by type: restore the declaration order.
	sort.SliceStable(f.Nodes, func(i, j int) bool {
		ri, rj := f.Nodes[i].Range.Start, f.Nodes[j].Range.Start
		return ri.Byte < rj.Byte
	})
	if err = f.validate(); err != nil {
		return nil, errors.WithMessagef(err, "invalid graph file %s", fileName)
	}
	klog.V(1).Infof("graphdef: parsed %s: %d nodes, outputs %v", fileName, len(f.Nodes), f.Outputs)
	return f, nil
}

// nodeOrError is returned by the block converters: the error is reported with the block position.
type nodeOrError struct {
	node *Node
	err  error
}

func (f *File) add(result nodeOrError) error {
	if result.err != nil {
		return result.err
	}
	n := result.node
	if prev, found := f.byName[n.Name]; found {
		return errors.Errorf("%s: %s redeclares %s, declared at %s", n.Range, n, prev, prev.Range)
	}
	f.byName[n.Name] = n
	f.Nodes = append(f.Nodes, n)
	return nil
}

func alignmentOrDefault(alignment *int64) int64 {
	if alignment == nil {
		return DefaultAlignment
	}
	return *alignment
}

func valueOr[T any](value *T, defaultValue T) T {
	if value == nil {
		return defaultValue
	}
	return *value
}

func (b *tensorBlock) tensor() nodeOrError {
	n := &Node{
		Kind:      NodeTensor,
		Name:      b.Name,
		UID:       b.UID,
		Alignment: alignmentOrDefault(b.Alignment),
		Fill:      b.Fill,
		Range:     b.DeclRange,
	}
	dtype := dtypes.Float32
	if b.DType != nil {
		var found bool
		dtype, found = dtypeNames[strings.ToLower(*b.DType)]
		if !found {
			return nodeOrError{err: errors.Errorf("%s: tensor %q has unknown dtype %q", b.DeclRange, b.Name, *b.DType)}
		}
	}
	strides := b.Strides
	if b.Layout != nil {
		if strides != nil {
			return nodeOrError{err: errors.Errorf("%s: tensor %q can't set both strides and layout", b.DeclRange, b.Name)}
		}
		layout, err := shapes.LayoutString(*b.Layout)
		if err != nil {
			return nodeOrError{err: errors.Errorf("%s: tensor %q has unknown layout %q", b.DeclRange, b.Name, *b.Layout)}
		}
		strides, err = shapes.StridesFor(layout, b.Dims)
		if err != nil {
			return nodeOrError{err: errors.WithMessagef(err, "%s: tensor %q", b.DeclRange, b.Name)}
		}
	} else if strides == nil {
		strides = shapes.RowMajorStrides(b.Dims)
	}
	n.Shape = shapes.Make(dtype, slices.Clone(b.Dims), strides)
	return nodeOrError{node: n}
}

func (b *pointwiseBlock) node() nodeOrError {
	mode, err := backends.PointwiseModeString(b.Mode)
	if err != nil {
		return nodeOrError{err: errors.WithMessagef(err, "%s: pointwise %q", b.DeclRange, b.Name)}
	}
	if !mode.IsValid() {
		return nodeOrError{err: errors.Errorf("%s: pointwise %q has invalid mode %q", b.DeclRange, b.Name, b.Mode)}
	}
	n := &Node{
		Kind:          NodePointwise,
		Name:          b.Name,
		UID:           b.UID,
		Alignment:     alignmentOrDefault(b.Alignment),
		Virtual:       valueOr(b.Virtual, false),
		Inputs:        []string{b.X},
		PointwiseMode: mode,
		Alpha:         valueOr(b.Alpha, 1),
		Alpha2:        valueOr(b.Alpha2, 1),
		Range:         b.DeclRange,
	}
	switch {
	case mode.IsBinary() && b.B == nil:
		return nodeOrError{err: errors.Errorf("%s: pointwise %q with binary mode %s requires attribute b", b.DeclRange, b.Name, mode)}
	case !mode.IsBinary() && b.B != nil:
		return nodeOrError{err: errors.Errorf("%s: pointwise %q with unary mode %s can't have attribute b", b.DeclRange, b.Name, mode)}
	case b.B != nil:
		n.Inputs = append(n.Inputs, *b.B)
	}
	return nodeOrError{node: n}
}

func (b *reluBlock) node() nodeOrError {
	return nodeOrError{node: &Node{
		Kind:          NodeRelu,
		Name:          b.Name,
		UID:           b.UID,
		Alignment:     alignmentOrDefault(b.Alignment),
		Virtual:       valueOr(b.Virtual, false),
		Inputs:        []string{b.X},
		PointwiseMode: backends.PointwiseReluFwd,
		LowerClip:     valueOr(b.LowerClip, 0),
		UpperClip:     valueOr(b.UpperClip, math.MaxFloat64),
		Range:         b.DeclRange,
	}}
}

func (b *convolutionBlock) node() nodeOrError {
	mode := backends.CrossCorrelation
	if b.Mode != nil {
		var err error
		mode, err = backends.ConvolutionModeString(*b.Mode)
		if err != nil {
			return nodeOrError{err: errors.Errorf("%s: convolution %q has unknown mode %q", b.DeclRange, b.Name, *b.Mode)}
		}
	}
	return nodeOrError{node: &Node{
		Kind:            NodeConvolution,
		Name:            b.Name,
		UID:             b.UID,
		Alignment:       alignmentOrDefault(b.Alignment),
		Virtual:         valueOr(b.Virtual, false),
		Inputs:          []string{b.Input, b.Filter},
		ConvolutionMode: mode,
		Range:           b.DeclRange,
	}}
}

// validate checks uids are unique, and that the graph is acyclic and only refers to declared nodes.
func (f *File) validate() error {
	uids := make(map[int64]*Node, len(f.Nodes))
	for _, n := range f.Nodes {
		if prev, found := uids[n.UID]; found {
			return errors.Errorf("%s: %s reuses the uid of %s", n.Range, n, prev)
		}
		uids[n.UID] = n
	}
	if len(f.Outputs) == 0 {
		return errors.New("no outputs given")
	}
	for _, name := range f.Outputs {
		if f.byName[name] == nil {
			return errors.Errorf("output %q is not declared", name)
		}
	}

	const (
		unvisited = iota
		visiting
		visited
	)
	state := make(map[string]int, len(f.Nodes))
	var visit func(n *Node, path []string) error
	visit = func(n *Node, path []string) error {
		switch state[n.Name] {
		case visited:
			return nil
		case visiting:
			return errors.Errorf("%s: cycle in graph: %s", n.Range, strings.Join(append(path, n.Name), " -> "))
		}
		state[n.Name] = visiting
		for _, input := range n.Inputs {
			inputNode := f.byName[input]
			if inputNode == nil {
				return errors.Errorf("%s: %s refers to undeclared node %q", n.Range, n, input)
			}
			if err := visit(inputNode, append(path, n.Name)); err != nil {
				return err
			}
		}
		state[n.Name] = visited
		return nil
	}
	for _, n := range f.Nodes {
		if err := visit(n, nil); err != nil {
			return err
		}
	}
	return nil
}
