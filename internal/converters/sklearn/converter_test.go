package sklearn

import (
	"context"
	"errors"
	"strings"
	"testing"

	"onnxgate/internal/convert"
	"onnxgate/internal/modelfile"
	"onnxgate/internal/onnx"
)

func fittedLogistic(features int) *modelfile.LogisticRegression {
	coef := modelfile.NewMatrix(1, features)
	for c := 0; c < features; c++ {
		coef.Set(0, c, 0.1*float32(c+1))
	}
	return &modelfile.LogisticRegression{
		NumFeatures: features,
		Coef:        coef,
		Intercept:   []float32{-0.5},
		Classes:     []int64{0, 1},
	}
}

func TestConvert_LogisticRegression(t *testing.T) {
	payload, err := modelfile.EncodeEstimator(fittedLogistic(8))
	if err != nil {
		t.Fatal(err)
	}

	data, err := New(nil).Convert(context.Background(), payload, 13)
	if err != nil {
		t.Fatal(err)
	}

	model, err := onnx.Unmarshal(data)
	if err != nil {
		t.Fatal(err)
	}
	if width, ok := model.Graph.Inputs[0].TrailingDim(); !ok || width != 8 {
		t.Fatalf("input width = %d", width)
	}
	if model.Graph.Inputs[0].Dims[0].Param != onnx.DynamicBatch {
		t.Fatal("batch dim not dynamic")
	}
	// Classifier lowers to Gemm followed by Sigmoid.
	if len(model.Graph.Nodes) != 2 || model.Graph.Nodes[1].OpType != "Sigmoid" {
		t.Fatalf("nodes = %+v", model.Graph.Nodes)
	}
	if err := onnx.Validate(model); err != nil {
		t.Fatalf("exported model invalid: %v", err)
	}
}

func TestConvert_LinearRegression(t *testing.T) {
	coef := modelfile.NewMatrix(1, 5)
	for c := 0; c < 5; c++ {
		coef.Set(0, c, float32(c))
	}
	payload, err := modelfile.EncodeEstimator(&modelfile.LinearRegression{
		Coef:      coef,
		Intercept: []float32{1.5},
	})
	if err != nil {
		t.Fatal(err)
	}

	data, err := New(nil).Convert(context.Background(), payload, 13)
	if err != nil {
		t.Fatal(err)
	}
	model, err := onnx.Unmarshal(data)
	if err != nil {
		t.Fatal(err)
	}
	// Regressor is a single Gemm, no activation.
	if len(model.Graph.Nodes) != 1 || model.Graph.Nodes[0].OpType != "Gemm" {
		t.Fatalf("nodes = %+v", model.Graph.Nodes)
	}
}

func TestInferFeatureCount_ProbeOrder(t *testing.T) {
	// Explicit attribute wins over the coefficient matrix.
	est := fittedLogistic(8)
	width, source, ok := inferFeatureCount(est)
	if !ok || width != 8 || source != "fitted_feature_count" {
		t.Fatalf("probe = %d, %q, %v", width, source, ok)
	}

	// Without the attribute the coefficient trailing dim is used.
	est.NumFeatures = 0
	width, source, ok = inferFeatureCount(est)
	if !ok || width != 8 || source != "coefficient_matrix" {
		t.Fatalf("probe = %d, %q, %v", width, source, ok)
	}

	// Importances are the last resort.
	forest := &modelfile.RandomForestClassifier{
		FeatureImportances: []float32{0.2, 0.3, 0.5},
		NumTrees:           50,
	}
	width, source, ok = inferFeatureCount(forest)
	if !ok || width != 3 || source != "feature_importances" {
		t.Fatalf("probe = %d, %q, %v", width, source, ok)
	}
}

func TestConvert_UnfittedEstimator(t *testing.T) {
	payload, err := modelfile.EncodeEstimator(&modelfile.LogisticRegression{})
	if err != nil {
		t.Fatal(err)
	}
	_, err = New(nil).Convert(context.Background(), payload, 13)
	if !errors.Is(err, convert.ErrUnprocessable) {
		t.Fatalf("expected unprocessable, got %v", err)
	}
	msg, hint := convert.Details(err)
	if !strings.Contains(msg, "does not appear to be fitted") {
		t.Fatalf("message = %q", msg)
	}
	if !strings.Contains(hint, "fit the estimator") {
		t.Fatalf("hint = %q", hint)
	}
}

func TestConvert_UnsupportedEstimator(t *testing.T) {
	payload, err := modelfile.EncodeEstimator(&modelfile.RandomForestClassifier{
		FeatureImportances: []float32{0.5, 0.5},
		NumTrees:           10,
	})
	if err != nil {
		t.Fatal(err)
	}
	_, err = New(nil).Convert(context.Background(), payload, 13)
	if !errors.Is(err, convert.ErrUnprocessable) {
		t.Fatalf("expected unprocessable, got %v", err)
	}
	msg, _ := convert.Details(err)
	if !strings.Contains(msg, "random_forest_classifier") {
		t.Fatalf("message should name the estimator kind: %q", msg)
	}
}

func TestConvert_Garbage(t *testing.T) {
	_, err := New(nil).Convert(context.Background(), []byte("pickle? no."), 13)
	if !errors.Is(err, convert.ErrUnprocessable) {
		t.Fatalf("expected unprocessable, got %v", err)
	}
	msg, _ := convert.Details(err)
	if !strings.Contains(msg, "failed to decode estimator") {
		t.Fatalf("message = %q", msg)
	}
}
