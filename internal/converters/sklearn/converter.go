package sklearn

import (
	"context"
	"fmt"
	"log/slog"

	"onnxgate/internal/convert"
	"onnxgate/internal/logging"
	"onnxgate/internal/modelfile"
	"onnxgate/internal/onnx"
)

const unfittedHint = "fit the estimator before saving it"

// Converter is the scikit-learn-analog conversion strategy.
type Converter struct {
	logger *slog.Logger
}

// New constructs the strategy.
func New(logger *slog.Logger) *Converter {
	return &Converter{logger: logging.WithComponent(logger, "sklearn-converter")}
}

// Convert decodes the estimator object graph, infers the input feature
// width, and lowers supported estimator families to a graph. Estimators
// that decode but cannot be lowered are rejected as unprocessable with
// the estimator kind in the message.
func (c *Converter) Convert(ctx context.Context, payload []byte, opset int) ([]byte, error) {
	est, err := modelfile.DecodeEstimator(payload)
	if err != nil {
		return nil, convert.Unprocessable(convert.BackendSKLearn,
			fmt.Sprintf("failed to decode estimator: %v", err), "", err)
	}

	width, source, ok := inferFeatureCount(est)
	if !ok {
		return nil, convert.Unprocessable(convert.BackendSKLearn,
			"could not infer the estimator's input feature count; it does not appear to be fitted",
			unfittedHint, nil)
	}

	logging.WithContext(ctx, c.logger).Debug("feature width inferred",
		logging.String("estimator", est.Kind()),
		logging.Int("features", width),
		logging.String("probe", source),
	)

	var model *onnx.Model
	switch e := est.(type) {
	case *modelfile.LogisticRegression:
		model, err = exportLinear(e.Coef, e.Intercept, width, opset, true)
	case *modelfile.LinearRegression:
		model, err = exportLinear(e.Coef, e.Intercept, width, opset, false)
	default:
		return nil, convert.Unprocessable(convert.BackendSKLearn,
			fmt.Sprintf("unsupported estimator kind %q; only linear estimator families can be converted", est.Kind()),
			"", nil)
	}
	if err != nil {
		return nil, convert.Unprocessable(convert.BackendSKLearn,
			fmt.Sprintf("graph export failed: %v", err), "", err)
	}
	return model.Marshal()
}

// exportLinear lowers a linear estimator to a Gemm node, followed by a
// Sigmoid for classifiers. Coef is shaped [targets, features] and is
// attached transposed via transB.
func exportLinear(coef modelfile.Matrix, intercept []float32, width, opset int, sigmoid bool) (*onnx.Model, error) {
	if coef.IsZero() {
		return nil, fmt.Errorf("estimator has no coefficients")
	}
	if coef.Cols != width {
		return nil, fmt.Errorf("coefficient matrix has %d features, expected %d", coef.Cols, width)
	}
	targets := coef.Rows
	if len(intercept) != 0 && len(intercept) != targets {
		return nil, fmt.Errorf("intercept length %d does not match %d targets", len(intercept), targets)
	}

	graph := onnx.Graph{
		Name:    "estimator",
		Inputs:  []onnx.ValueInfo{onnx.BatchVector("input", int64(width))},
		Outputs: []onnx.ValueInfo{onnx.BatchVector("output", int64(targets))},
		Initializers: []onnx.Tensor{{
			Name:   "coefficient",
			Dims:   []int64{int64(targets), int64(width)},
			Floats: coef.Data,
		}},
	}

	gemmInputs := []string{"input", "coefficient"}
	if len(intercept) != 0 {
		graph.Initializers = append(graph.Initializers, onnx.Tensor{
			Name:   "intercept",
			Dims:   []int64{int64(targets)},
			Floats: intercept,
		})
		gemmInputs = append(gemmInputs, "intercept")
	}

	gemmOut := "output"
	if sigmoid {
		gemmOut = "score"
	}
	graph.Nodes = append(graph.Nodes, onnx.Node{
		Name:    "gemm",
		OpType:  "Gemm",
		Inputs:  gemmInputs,
		Outputs: []string{gemmOut},
		Attrs: []onnx.Attr{
			onnx.FloatAttr("alpha", 1),
			onnx.FloatAttr("beta", 1),
			onnx.IntAttr("transB", 1),
		},
	})
	if sigmoid {
		graph.Nodes = append(graph.Nodes, onnx.Node{
			Name:    "sigmoid",
			OpType:  "Sigmoid",
			Inputs:  []string{"score"},
			Outputs: []string{"output"},
		})
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
