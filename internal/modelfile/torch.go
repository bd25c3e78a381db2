package modelfile

import (
	"bytes"
	"encoding/gob"
	"fmt"
)

// Artifact kinds for saved networks.
const (
	// KindModule marks a complete network: architecture plus parameters.
	KindModule = "module"
	// KindStateDict marks a weights-only snapshot without architecture.
	KindStateDict = "state_dict"
)

// Layer operations.
const (
	LayerLinear  = "linear"
	LayerReLU    = "relu"
	LayerSigmoid = "sigmoid"
	LayerTanh    = "tanh"
)

// Matrix is a dense row-major float32 matrix.
type Matrix struct {
	Rows int
	Cols int
	Data []float32
}

// NewMatrix allocates a zeroed Rows x Cols matrix.
func NewMatrix(rows, cols int) Matrix {
	return Matrix{Rows: rows, Cols: cols, Data: make([]float32, rows*cols)}
}

// At returns the element at (row, col).
func (m Matrix) At(row, col int) float32 {
	return m.Data[row*m.Cols+col]
}

// Set assigns the element at (row, col).
func (m *Matrix) Set(row, col int, v float32) {
	m.Data[row*m.Cols+col] = v
}

// IsZero reports whether the matrix carries no data.
func (m Matrix) IsZero() bool {
	return m.Rows == 0 || m.Cols == 0 || len(m.Data) == 0
}

// Layer is one step of a feed-forward network. Linear layers carry a
// weight matrix shaped [out, in] and an optional bias of length out;
// activation layers carry no parameters.
type Layer struct {
	Op     string
	Weight Matrix
	Bias   []float32
}

// Network is an ordered feed-forward layer chain.
type Network struct {
	Layers []Layer
}

// FirstParameter returns the first learnable weight matrix in layer
// order, or false when the network has no parameters.
func (n *Network) FirstParameter() (Matrix, bool) {
	for _, layer := range n.Layers {
		if layer.Op == LayerLinear && !layer.Weight.IsZero() {
			return layer.Weight, true
		}
	}
	return Matrix{}, false
}

// SavedNetwork is the on-disk envelope for network artifacts. Kind
// distinguishes a full model from a weights-only snapshot, mirroring the
// difference between saving a model object and saving only its tensors.
type SavedNetwork struct {
	Kind    string
	Net     *Network
	Tensors map[string]Matrix
}

// EncodeNetwork serializes a complete network artifact.
func EncodeNetwork(net *Network) ([]byte, error) {
	if net == nil {
		return nil, fmt.Errorf("modelfile: nil network")
	}
	return encodeSaved(&SavedNetwork{Kind: KindModule, Net: net})
}

// EncodeStateDict serializes a weights-only snapshot.
func EncodeStateDict(tensors map[string]Matrix) ([]byte, error) {
	return encodeSaved(&SavedNetwork{Kind: KindStateDict, Tensors: tensors})
}

func encodeSaved(saved *SavedNetwork) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(saved); err != nil {
		return nil, fmt.Errorf("modelfile: encode network artifact: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeSavedNetwork deserializes a network artifact envelope.
func DecodeSavedNetwork(data []byte) (*SavedNetwork, error) {
	var saved SavedNetwork
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&saved); err != nil {
		return nil, fmt.Errorf("modelfile: decode network artifact: %w", err)
	}
	switch saved.Kind {
	case KindModule, KindStateDict:
	default:
		return nil, fmt.Errorf("modelfile: unknown artifact kind %q", saved.Kind)
	}
	return &saved, nil
}
