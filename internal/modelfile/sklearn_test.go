package modelfile

import "testing"

func TestEncodeDecodeEstimator(t *testing.T) {
	coef := NewMatrix(1, 8)
	for c := 0; c < 8; c++ {
		coef.Set(0, c, float32(c)*0.5)
	}
	est := &LogisticRegression{
		NumFeatures: 8,
		Coef:        coef,
		Intercept:   []float32{-0.25},
		Classes:     []int64{0, 1},
	}

	data, err := EncodeEstimator(est)
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := DecodeEstimator(data)
	if err != nil {
		t.Fatal(err)
	}

	lr, ok := decoded.(*LogisticRegression)
	if !ok {
		t.Fatalf("decoded type = %T", decoded)
	}
	if lr.FittedFeatureCount() != 8 {
		t.Fatalf("feature count = %d", lr.FittedFeatureCount())
	}
	if got := lr.Coef.At(0, 4); got != 2 {
		t.Fatalf("coef[0][4] = %v", got)
	}
}

func TestDecodeEstimator_AllRegisteredKinds(t *testing.T) {
	ests := []Estimator{
		&LogisticRegression{NumFeatures: 3, Coef: NewMatrix(1, 3)},
		&LinearRegression{Coef: NewMatrix(1, 5)},
		&RandomForestClassifier{FeatureImportances: []float32{0.5, 0.5}, NumTrees: 10},
	}
	for _, est := range ests {
		data, err := EncodeEstimator(est)
		if err != nil {
			t.Fatalf("%s: %v", est.Kind(), err)
		}
		decoded, err := DecodeEstimator(data)
		if err != nil {
			t.Fatalf("%s: %v", est.Kind(), err)
		}
		if decoded.Kind() != est.Kind() {
			t.Fatalf("kind = %q, want %q", decoded.Kind(), est.Kind())
		}
	}
}

func TestDecodeEstimator_Garbage(t *testing.T) {
	if _, err := DecodeEstimator([]byte{0x01, 0x02, 0x03}); err == nil {
		t.Fatal("expected decode error")
	}
}
