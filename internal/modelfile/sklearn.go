package modelfile

import (
	"bytes"
	"encoding/gob"
	"fmt"
)

// Estimator is the common interface of serialized fitted-model object
// graphs. Concrete estimator types live in this package's gob registry;
// anything outside it fails to decode.
type Estimator interface {
	// Kind names the estimator family for diagnostics.
	Kind() string
}

// LogisticRegression is a fitted linear classifier. Coef is shaped
// [targets, features]; NumFeatures is the explicit fitted feature count
// recorded at training time.
type LogisticRegression struct {
	NumFeatures int
	Coef        Matrix
	Intercept   []float32
	Classes     []int64
}

func (m *LogisticRegression) Kind() string { return "logistic_regression" }

// FittedFeatureCount reports the explicit feature count, 0 when unfitted.
func (m *LogisticRegression) FittedFeatureCount() int { return m.NumFeatures }

// CoefficientMatrix exposes the learned coefficients.
func (m *LogisticRegression) CoefficientMatrix() Matrix { return m.Coef }

// LinearRegression is a fitted linear regressor without an explicit
// feature-count attribute; the coefficient matrix carries the width.
type LinearRegression struct {
	Coef      Matrix
	Intercept []float32
}

func (m *LinearRegression) Kind() string { return "linear_regression" }

// CoefficientMatrix exposes the learned coefficients.
func (m *LinearRegression) CoefficientMatrix() Matrix { return m.Coef }

// RandomForestClassifier is a fitted ensemble. Only the aggregate
// feature-importance vector survives serialization here, which is enough
// for width inference but not for graph export.
type RandomForestClassifier struct {
	FeatureImportances []float32
	NumTrees           int
}

func (m *RandomForestClassifier) Kind() string { return "random_forest_classifier" }

// ImportanceVector exposes the per-feature importances.
func (m *RandomForestClassifier) ImportanceVector() []float32 { return m.FeatureImportances }

func init() {
	gob.Register(&LogisticRegression{})
	gob.Register(&LinearRegression{})
	gob.Register(&RandomForestClassifier{})
}

// EncodeEstimator serializes a fitted estimator as a gob object graph.
func EncodeEstimator(est Estimator) ([]byte, error) {
	if est == nil {
		return nil, fmt.Errorf("modelfile: nil estimator")
	}
	var buf bytes.Buffer
	iface := est
	if err := gob.NewEncoder(&buf).Encode(&iface); err != nil {
		return nil, fmt.Errorf("modelfile: encode estimator: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeEstimator deserializes an estimator object graph. The gob type
// registry bounds which concrete types can be constructed.
func DecodeEstimator(data []byte) (Estimator, error) {
	var est Estimator
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&est); err != nil {
		return nil, fmt.Errorf("modelfile: decode estimator: %w", err)
	}
	if est == nil {
		return nil, fmt.Errorf("modelfile: artifact contains no estimator")
	}
	return est, nil
}
