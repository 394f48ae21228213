// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/gomlx/dnngraph/backends"
	"github.com/gomlx/dnngraph/dnn"
	"github.com/gomlx/dnngraph/graphdef"
	"github.com/gomlx/dnngraph/types/shapes"
	"github.com/gomlx/dnngraph/types/status"
	"github.com/pkg/errors"
)

var (
	headerRowStyle = lipgloss.NewStyle().Reverse(true).
			Padding(0, 2, 0, 2).Align(lipgloss.Center)
	oddRowStyle = lipgloss.NewStyle().Faint(false).
			PaddingLeft(1).PaddingRight(1)
	evenRowStyle = lipgloss.NewStyle().Faint(true).
			PaddingLeft(1).PaddingRight(1)

	titleStyle = lipgloss.NewStyle().Bold(true).Padding(1, 4, 0, 4)
)

func newPlainTable(alignments ...lipgloss.Position) *lgtable.Table {
	return lgtable.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("99"))).
		StyleFunc(func(row, col int) (s lipgloss.Style) {
			switch {
			case row < 0:
				s = headerRowStyle
			case row%2 == 0:
				s = oddRowStyle
			default:
				s = evenRowStyle
			}
			alignment := lipgloss.Left
			if col < len(alignments) {
				alignment = alignments[col]
			}
			return s.Align(alignment)
		})
}

func summaryTable(backend backends.Backend, built *graphdef.Built, exec *dnn.Executable, repeat int, elapsed time.Duration) *lgtable.Table {
	table := newPlainTable(lipgloss.Right, lipgloss.Left)
	table.Row("backend", backend.Description())
	table.Row("# operations", humanize.Comma(int64(built.Graph.NumOperations())))
	table.Row("graph", built.Graph.Tag())
	table.Row("plan", exec.Plan().Tag())
	table.Row("workspace", humanize.Bytes(uint64(exec.WorkspaceSize())))
	table.Row("# executions", humanize.Comma(int64(repeat)))
	if repeat > 0 {
		table.Row("time per execution", (elapsed / time.Duration(repeat)).String())
	}
	return table
}

func tensorsTable(built *graphdef.Built) *lgtable.Table {
	table := newPlainTable(lipgloss.Left, lipgloss.Right, lipgloss.Left).
		Headers("role", "uid", "name", "shape", "layout", "memory")
	names := nodeNames(built)
	addRows := func(role string, tensors []dnn.Tensor) {
		for _, t := range tensors {
			shape := t.Shape()
			layout := "-"
			if shape.Rank() >= 4 {
				layout = shapes.InferLayout(shape.Strides).String()
			}
			table.Row(role, fmt.Sprint(t.UID()), names[t.UID()], shape.String(), layout, humanize.Bytes(uint64(shape.Memory())))
		}
	}
	addRows("argument", built.Graph.Arguments())
	addRows("result", built.Graph.Results())
	return table
}

func outputsTable(allocator backends.Allocator, built *graphdef.Built, buffers []backends.Buffer, maxValues int) (*lgtable.Table, error) {
	table := newPlainTable(lipgloss.Left, lipgloss.Left).Headers("output", "values")
	names := nodeNames(built)
	numArgs := len(built.Graph.Arguments())
	for ii, t := range built.Graph.Results() {
		shape := t.Shape()
		data := make([]byte, shape.Memory())
		if err := allocator.CopyFromDevice(buffers[numArgs+ii], data).ToError(status.KindUnknown, "failed to download %s", t); err != nil {
			return nil, err
		}
		values, err := graphdef.DecodeValues(shape, data)
		if err != nil {
			return nil, errors.WithMessagef(err, "output %q", names[t.UID()])
		}
		parts := make([]string, 0, maxValues+1)
		for _, v := range values[:min(maxValues, len(values))] {
			parts = append(parts, fmt.Sprintf("%.4g", v))
		}
		if len(values) > maxValues {
			parts = append(parts, fmt.Sprintf("... (%s more)", humanize.Comma(int64(len(values)-maxValues))))
		}
		table.Row(names[t.UID()], strings.Join(parts, " "))
	}
	return table, nil
}
