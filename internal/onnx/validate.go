package onnx

import (
	"fmt"
	"strings"
)

// Validate performs the structural checks downstream consumers rely on:
// the graph has at least one node, declares named inputs and outputs, and
// every node edge resolves to a graph input, an initializer, or an earlier
// node output. It does not type-check operator semantics.
func Validate(m *Model) error {
	if m == nil {
		return fmt.Errorf("onnx: nil model")
	}
	if m.OpsetVersion < 1 {
		return fmt.Errorf("onnx: model declares no operator-set version")
	}

	g := &m.Graph
	if len(g.Nodes) == 0 {
		return fmt.Errorf("onnx: graph %q has no nodes", g.Name)
	}
	if len(g.Inputs) == 0 {
		return fmt.Errorf("onnx: graph %q declares no inputs", g.Name)
	}
	if len(g.Outputs) == 0 {
		return fmt.Errorf("onnx: graph %q declares no outputs", g.Name)
	}

	known := make(map[string]struct{}, len(g.Inputs)+len(g.Initializers))
	for _, in := range g.Inputs {
		if strings.TrimSpace(in.Name) == "" {
			return fmt.Errorf("onnx: graph input with empty name")
		}
		known[in.Name] = struct{}{}
	}
	for _, init := range g.Initializers {
		if strings.TrimSpace(init.Name) == "" {
			return fmt.Errorf("onnx: initializer with empty name")
		}
		known[init.Name] = struct{}{}
	}

	for i, node := range g.Nodes {
		if strings.TrimSpace(node.OpType) == "" {
			return fmt.Errorf("onnx: node %d has no op type", i)
		}
		if len(node.Outputs) == 0 {
			return fmt.Errorf("onnx: node %d (%s) produces no outputs", i, node.OpType)
		}
		for _, in := range node.Inputs {
			if _, ok := known[in]; !ok {
				return fmt.Errorf("onnx: node %d (%s) reads undeclared tensor %q", i, node.OpType, in)
			}
		}
		for _, out := range node.Outputs {
			known[out] = struct{}{}
		}
	}

	for _, out := range g.Outputs {
		if strings.TrimSpace(out.Name) == "" {
			return fmt.Errorf("onnx: graph output with empty name")
		}
		if _, ok := known[out.Name]; !ok {
			return fmt.Errorf("onnx: graph output %q is not produced by any node", out.Name)
		}
	}

	return nil
}
