package sklearn

import "onnxgate/internal/modelfile"

// Optional estimator capabilities, probed in priority order.
type fittedFeatureCounter interface {
	FittedFeatureCount() int
}

type coefficientCarrier interface {
	CoefficientMatrix() modelfile.Matrix
}

type importanceCarrier interface {
	ImportanceVector() []float32
}

// inferFeatureCount determines the estimator's input width. The probes
// run in a fixed order and the first one that yields a positive width
// wins; the returned source names the probe for logging.
func inferFeatureCount(est modelfile.Estimator) (int, string, bool) {
	if c, ok := est.(fittedFeatureCounter); ok {
		if n := c.FittedFeatureCount(); n > 0 {
			return n, "fitted_feature_count", true
		}
	}
	if c, ok := est.(coefficientCarrier); ok {
		if coef := c.CoefficientMatrix(); !coef.IsZero() {
			return coef.Cols, "coefficient_matrix", true
		}
	}
	if c, ok := est.(importanceCarrier); ok {
		if imp := c.ImportanceVector(); len(imp) > 0 {
			return len(imp), "feature_importances", true
		}
	}
	return 0, "", false
}
