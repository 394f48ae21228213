// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package simulated

import (
	"slices"
	"strconv"
	"strings"

	"github.com/gomlx/dnngraph/backends"
	"github.com/pkg/errors"
)

// Config of the simulated backend. It is parsed from the configuration string given to New, a comma-separated
// list of "key=value" pairs:
//
//   - engines=<n>: number of engine configurations offered for every graph (default 3). 0 makes every graph
//     unsupported.
//   - unsupported=<i>;<j>...: engine indices that fail to build an execution plan with StatusNotSupported.
//   - workspace=<i>:<bytes>;...: workspace bytes required by the plans of the given engine indices.
//   - devices=<n>: number of devices (default 1).
//   - strict_duplicates=true: reject graphs where the same operation appears more than once.
//   - heuristics=<mode>;...: heuristic modes accepted (default all of them).
type Config struct {
	NumEngines       int
	Unsupported      []int
	Workspace        map[int]int64
	NumDevices       int
	StrictDuplicates bool
	Heuristics       []backends.HeuristicMode
}

// DefaultConfig returns the configuration used for an empty configuration string.
func DefaultConfig() Config {
	return Config{
		NumEngines: 3,
		Workspace:  make(map[int]int64),
		NumDevices: 1,
		Heuristics: []backends.HeuristicMode{
			backends.HeuristicModeA, backends.HeuristicModeB, backends.HeuristicModeFallback},
	}
}

// ParseConfig parses the configuration string. See Config for the format.
func ParseConfig(config string) (Config, error) {
	c := DefaultConfig()
	for _, part := range strings.Split(config, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, found := strings.Cut(part, "=")
		if !found {
			return c, errors.Errorf("simulated backend: invalid configuration %q, expected key=value", part)
		}
		var err error
		switch key {
		case "engines":
			c.NumEngines, err = parseNonNegative(value)
		case "devices":
			c.NumDevices, err = parseNonNegative(value)
			if err == nil && c.NumDevices == 0 {
				err = errors.New("at least one device is required")
			}
		case "unsupported":
			for _, item := range splitList(value) {
				var idx int
				idx, err = parseNonNegative(item)
				if err != nil {
					break
				}
				c.Unsupported = append(c.Unsupported, idx)
			}
		case "workspace":
			for _, item := range splitList(value) {
				idxStr, sizeStr, ok := strings.Cut(item, ":")
				if !ok {
					err = errors.Errorf("workspace entry %q must be <engine_index>:<bytes>", item)
					break
				}
				var idx int
				var size int64
				idx, err = parseNonNegative(idxStr)
				if err == nil {
					size, err = strconv.ParseInt(sizeStr, 10, 64)
				}
				if err != nil {
					break
				}
				c.Workspace[idx] = size
			}
		case "strict_duplicates":
			c.StrictDuplicates, err = strconv.ParseBool(value)
		case "heuristics":
			c.Heuristics = nil
			for _, item := range splitList(value) {
				c.Heuristics = append(c.Heuristics, backends.HeuristicMode(item))
			}
		default:
			err = errors.New("unknown key")
		}
		if err != nil {
			return c, errors.WithMessagef(err, "simulated backend: invalid configuration %q", part)
		}
	}
	return c, nil
}

func (c Config) isUnsupported(engine int) bool {
	return slices.Contains(c.Unsupported, engine)
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ";") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func parseNonNegative(value string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, errors.Wrapf(err, "invalid integer %q", value)
	}
	if n < 0 {
		return 0, errors.Errorf("value %d must be non-negative", n)
	}
	return n, nil
}
