package onnx

// Tensor element types (TensorProto.DataType).
const (
	ElemFloat int64 = 1
)

// Attribute types (AttributeProto.AttributeType).
const (
	AttrFloat  int64 = 1
	AttrInt    int64 = 2
	AttrFloats int64 = 6
	AttrInts   int64 = 7
)

// Model mirrors ModelProto.
type Model struct {
	IRVersion       int64
	OpsetVersion    int64
	ProducerName    string
	ProducerVersion string
	Domain          string
	ModelVersion    int64
	Graph           Graph
}

// Graph mirrors GraphProto.
type Graph struct {
	Name         string
	Nodes        []Node
	Initializers []Tensor
	Inputs       []ValueInfo
	Outputs      []ValueInfo
}

// Node mirrors NodeProto.
type Node struct {
	Name    string
	OpType  string
	Inputs  []string
	Outputs []string
	Attrs   []Attr
}

// Attr mirrors the scalar subset of AttributeProto.
type Attr struct {
	Name  string
	Type  int64
	I     int64
	F     float32
	Ints  []int64
	Float []float32
}

// ValueInfo mirrors ValueInfoProto for float tensors.
type ValueInfo struct {
	Name     string
	ElemType int64
	Dims     []Dim
}

// Dim is one dimension of a tensor shape: either a fixed value or a
// symbolic parameter such as a dynamic batch axis.
type Dim struct {
	Value int64
	Param string
}

// Tensor mirrors the float subset of TensorProto used for initializers.
type Tensor struct {
	Name   string
	Dims   []int64
	Floats []float32
}

// IntAttr builds an integer node attribute.
func IntAttr(name string, value int64) Attr {
	return Attr{Name: name, Type: AttrInt, I: value}
}

// FloatAttr builds a float node attribute.
func FloatAttr(name string, value float32) Attr {
	return Attr{Name: name, Type: AttrFloat, F: value}
}

// DynamicBatch is the symbolic dimension used for the variable batch axis.
const DynamicBatch = "batch"

// BatchVector describes a float tensor of shape [batch, width] with a
// dynamic leading dimension.
func BatchVector(name string, width int64) ValueInfo {
	return ValueInfo{
		Name:     name,
		ElemType: ElemFloat,
		Dims: []Dim{
			{Param: DynamicBatch},
			{Value: width},
		},
	}
}

// TrailingDim returns the last fixed dimension of a value's shape, or false
// when the shape is empty or the trailing dimension is symbolic.
func (v ValueInfo) TrailingDim() (int64, bool) {
	if len(v.Dims) == 0 {
		return 0, false
	}
	last := v.Dims[len(v.Dims)-1]
	if last.Param != "" {
		return 0, false
	}
	return last.Value, true
}
