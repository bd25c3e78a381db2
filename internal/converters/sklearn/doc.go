// Package sklearn converts serialized fitted-estimator object graphs.
// The input feature width is inferred from the estimator itself, trying
// the explicit fitted-feature-count attribute first, then the trailing
// dimension of the coefficient matrix, then the length of the
// feature-importance vector. Estimators exposing none of these are
// treated as unfitted.
package sklearn
