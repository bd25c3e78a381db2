package pytorch

import (
	"fmt"

	"onnxgate/internal/modelfile"
	"onnxgate/internal/onnx"
)

var activationOps = map[string]string{
	modelfile.LayerReLU:    "Relu",
	modelfile.LayerSigmoid: "Sigmoid",
	modelfile.LayerTanh:    "Tanh",
}

// export lowers the layer chain into an interchange graph. The input and
// final output tensors are named "input" and "output" with a dynamic
// batch axis; weights become initializers and linear layers become Gemm
// nodes with transB set, so the [out, in] weight layout is preserved.
func export(net *modelfile.Network, inWidth, outWidth, opset int) (*onnx.Model, error) {
	graph := onnx.Graph{
		Name:    "network",
		Inputs:  []onnx.ValueInfo{onnx.BatchVector("input", int64(inWidth))},
		Outputs: []onnx.ValueInfo{onnx.BatchVector("output", int64(outWidth))},
	}

	current := "input"
	for i, layer := range net.Layers {
		outName := fmt.Sprintf("act_%d", i)
		if i == len(net.Layers)-1 {
			outName = "output"
		}

		switch layer.Op {
		case modelfile.LayerLinear:
			w := layer.Weight
			weightName := fmt.Sprintf("layer_%d_weight", i)
			graph.Initializers = append(graph.Initializers, onnx.Tensor{
				Name:   weightName,
				Dims:   []int64{int64(w.Rows), int64(w.Cols)},
				Floats: w.Data,
			})
			inputs := []string{current, weightName}
			if len(layer.Bias) != 0 {
				biasName := fmt.Sprintf("layer_%d_bias", i)
				graph.Initializers = append(graph.Initializers, onnx.Tensor{
					Name:   biasName,
					Dims:   []int64{int64(w.Rows)},
					Floats: layer.Bias,
				})
				inputs = append(inputs, biasName)
			}
			graph.Nodes = append(graph.Nodes, onnx.Node{
				Name:    fmt.Sprintf("gemm_%d", i),
				OpType:  "Gemm",
				Inputs:  inputs,
				Outputs: []string{outName},
				Attrs: []onnx.Attr{
					onnx.FloatAttr("alpha", 1),
					onnx.FloatAttr("beta", 1),
					onnx.IntAttr("transB", 1),
				},
			})
		default:
			op, ok := activationOps[layer.Op]
			if !ok {
				return nil, fmt.Errorf("unsupported layer op %q at position %d", layer.Op, i)
			}
			graph.Nodes = append(graph.Nodes, onnx.Node{
				Name:    fmt.Sprintf("%s_%d", layer.Op, i),
				OpType:  op,
				Inputs:  []string{current},
				Outputs: []string{outName},
			})
		}
		current = outName
	}

	if len(graph.Nodes) == 0 {
		return nil, fmt.Errorf("network has no layers to export")
	}

	model := &onnx.Model{
		IRVersion:    8,
		OpsetVersion: int64(opset),
		ProducerName: "onnxgate",
		Graph:        graph,
	}
	if err := onnx.Validate(model); err != nil {
		return nil, err
	}
	return model, nil
}
