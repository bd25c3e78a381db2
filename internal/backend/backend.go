package backend

import (
	"errors"
	"log/slog"
	"os/exec"

	"onnxgate/internal/config"
	"onnxgate/internal/convert"
	"onnxgate/internal/logging"
	"onnxgate/internal/modelfile"
	"onnxgate/internal/onnx"
)

// Status is the probe outcome for one backend.
type Status struct {
	Name      string `json:"name"`
	Available bool   `json:"available"`
	Detail    string `json:"detail,omitempty"`
}

// Probe checks one backend. Check returns a human-readable detail string
// on failure.
type Probe struct {
	Name  string
	Check func() error
}

// Detect runs every probe once and returns the results in probe order.
// Failures are logged and recorded, never fatal.
func Detect(probes []Probe, logger *slog.Logger) []Status {
	log := logging.WithComponent(logger, "backend")
	statuses := make([]Status, 0, len(probes))
	for _, p := range probes {
		st := Status{Name: p.Name, Available: true}
		if err := p.Check(); err != nil {
			st.Available = false
			st.Detail = err.Error()
			log.Warn("backend unavailable",
				logging.String(logging.FieldBackend, p.Name),
				logging.Error(err),
			)
		} else {
			log.Info("backend available", logging.String(logging.FieldBackend, p.Name))
		}
		statuses = append(statuses, st)
	}
	return statuses
}

// ToAvailability flattens probe results into the name -> available map
// used for dispatch and health reporting.
func ToAvailability(statuses []Status) map[string]bool {
	m := make(map[string]bool, len(statuses))
	for _, st := range statuses {
		m[st.Name] = st.Available
	}
	return m
}

// DefaultProbes returns the standard probe set. The in-process backends
// verify their codec and graph machinery with a round trip; the
// TensorFlow backend requires its external converter command on PATH.
func DefaultProbes(cfg *config.Config) []Probe {
	return []Probe{
		{Name: convert.BackendPyTorch, Check: probePyTorch},
		{Name: convert.BackendTensorFlow, Check: probeTensorFlow(cfg.TensorFlowConverterArgv())},
		{Name: convert.BackendSKLearn, Check: probeSKLearn},
	}
}

func probePyTorch() error {
	w := modelfile.NewMatrix(1, 2)
	w.Set(0, 0, 1)
	w.Set(0, 1, 1)
	net := &modelfile.Network{Layers: []modelfile.Layer{
		{Op: modelfile.LayerLinear, Weight: w, Bias: []float32{0}},
	}}
	data, err := modelfile.EncodeNetwork(net)
	if err != nil {
		return err
	}
	saved, err := modelfile.DecodeSavedNetwork(data)
	if err != nil {
		return err
	}
	model := &onnx.Model{
		IRVersion:    8,
		OpsetVersion: convert.DefaultOpset,
		Graph: onnx.Graph{
			Name:    "probe",
			Inputs:  []onnx.ValueInfo{onnx.BatchVector("input", 2)},
			Outputs: []onnx.ValueInfo{onnx.BatchVector("output", 1)},
			Initializers: []onnx.Tensor{{
				Name:   "weight",
				Dims:   []int64{1, 2},
				Floats: saved.Net.Layers[0].Weight.Data,
			}},
			Nodes: []onnx.Node{{
				Name:    "gemm",
				OpType:  "Gemm",
				Inputs:  []string{"input", "weight"},
				Outputs: []string{"output"},
				Attrs:   []onnx.Attr{onnx.IntAttr("transB", 1)},
			}},
		},
	}
	data, err = model.Marshal()
	if err != nil {
		return err
	}
	_, err = onnx.Unmarshal(data)
	return err
}

func probeSKLearn() error {
	est := &modelfile.LinearRegression{
		Coef:      modelfile.NewMatrix(1, 2),
		Intercept: []float32{0},
	}
	data, err := modelfile.EncodeEstimator(est)
	if err != nil {
		return err
	}
	_, err = modelfile.DecodeEstimator(data)
	return err
}

func probeTensorFlow(argv []string) func() error {
	return func() error {
		if len(argv) == 0 {
			return errors.New("no converter command configured")
		}
		_, err := exec.LookPath(argv[0])
		return err
	}
}
