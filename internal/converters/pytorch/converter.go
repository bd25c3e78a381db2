package pytorch

import (
	"context"
	"fmt"
	"log/slog"

	"onnxgate/internal/convert"
	"onnxgate/internal/logging"
	"onnxgate/internal/modelfile"
)

const fullModelHint = "save the full model, not a weights-only snapshot"

// Converter is the PyTorch-analog conversion strategy.
type Converter struct {
	logger *slog.Logger
}

// New constructs the strategy.
func New(logger *slog.Logger) *Converter {
	return &Converter{logger: logging.WithComponent(logger, "pytorch-converter")}
}

// Convert deserializes a full network artifact, infers the input width
// from the first learnable parameter's trailing dimension, runs a
// single-batch dummy input through the layer chain as an export sanity
// check, and emits a graph with named input/output tensors and a dynamic
// batch dimension.
func (c *Converter) Convert(ctx context.Context, payload []byte, opset int) ([]byte, error) {
	saved, err := modelfile.DecodeSavedNetwork(payload)
	if err != nil {
		return nil, convert.Unprocessable(convert.BackendPyTorch,
			fmt.Sprintf("failed to load model: %v", err), fullModelHint, err)
	}
	if saved.Kind != modelfile.KindModule || saved.Net == nil {
		return nil, convert.Unprocessable(convert.BackendPyTorch,
			"the uploaded artifact is a weights-only snapshot, not a complete model",
			fullModelHint, nil)
	}
	net := saved.Net

	first, ok := net.FirstParameter()
	if !ok {
		return nil, convert.Unprocessable(convert.BackendPyTorch,
			"model has no learnable parameters; cannot infer input shape", "", nil)
	}
	inWidth := first.Cols

	// Trace a single-batch dummy input through the chain; this catches
	// inter-layer dimension mismatches before anything is emitted.
	dummy := make([]float32, inWidth)
	outWidth, err := forward(net, dummy)
	if err != nil {
		return nil, convert.Unprocessable(convert.BackendPyTorch, err.Error(), "", err)
	}

	logging.WithContext(ctx, c.logger).Debug("network traced",
		logging.Int("input_width", inWidth),
		logging.Int("output_width", outWidth),
		logging.Int("layers", len(net.Layers)),
	)

	model, err := export(net, inWidth, outWidth, opset)
	if err != nil {
		return nil, convert.Unprocessable(convert.BackendPyTorch,
			fmt.Sprintf("graph export failed: %v", err), "", err)
	}
	return model.Marshal()
}

// forward applies the layer chain to a single input vector and returns
// the output width.
func forward(net *modelfile.Network, input []float32) (int, error) {
	current := input
	for i, layer := range net.Layers {
		switch layer.Op {
		case modelfile.LayerLinear:
			w := layer.Weight
			if w.IsZero() {
				return 0, fmt.Errorf("linear layer %d has no weights", i)
			}
			if w.Cols != len(current) {
				return 0, fmt.Errorf("linear layer %d expects %d features, got %d", i, w.Cols, len(current))
			}
			if len(layer.Bias) != 0 && len(layer.Bias) != w.Rows {
				return 0, fmt.Errorf("linear layer %d bias length %d does not match %d outputs", i, len(layer.Bias), w.Rows)
			}
			next := make([]float32, w.Rows)
			for row := 0; row < w.Rows; row++ {
				var sum float32
				for col := 0; col < w.Cols; col++ {
					sum += w.At(row, col) * current[col]
				}
				if len(layer.Bias) != 0 {
					sum += layer.Bias[row]
				}
				next[row] = sum
			}
			current = next
		case modelfile.LayerReLU, modelfile.LayerSigmoid, modelfile.LayerTanh:
			// Element-wise; width is unchanged and values are irrelevant
			// for shape tracing.
		default:
			return 0, fmt.Errorf("unsupported layer op %q at position %d", layer.Op, i)
		}
	}
	return len(current), nil
}
