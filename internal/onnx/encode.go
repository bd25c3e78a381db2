package onnx

import (
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// ModelProto field numbers (onnx.proto).
const (
	fieldModelIRVersion       = 1
	fieldModelProducerName    = 2
	fieldModelProducerVersion = 3
	fieldModelDomain          = 4
	fieldModelVersion         = 5
	fieldModelGraph           = 7
	fieldModelOpsetImport     = 8
)

// OperatorSetIdProto field numbers.
const (
	fieldOpsetDomain  = 1
	fieldOpsetVersion = 2
)

// GraphProto field numbers.
const (
	fieldGraphNode        = 1
	fieldGraphName        = 2
	fieldGraphInitializer = 5
	fieldGraphInput       = 11
	fieldGraphOutput      = 12
)

// NodeProto field numbers.
const (
	fieldNodeInput     = 1
	fieldNodeOutput    = 2
	fieldNodeName      = 3
	fieldNodeOpType    = 4
	fieldNodeAttribute = 5
)

// AttributeProto field numbers.
const (
	fieldAttrName   = 1
	fieldAttrF      = 2
	fieldAttrI      = 3
	fieldAttrFloats = 7
	fieldAttrInts   = 8
	fieldAttrType   = 20
)

// ValueInfoProto / TypeProto field numbers.
const (
	fieldValueInfoName = 1
	fieldValueInfoType = 2

	fieldTypeTensor = 1

	fieldTensorTypeElem  = 1
	fieldTensorTypeShape = 2

	fieldShapeDim = 1

	fieldDimValue = 1
	fieldDimParam = 2
)

// TensorProto field numbers.
const (
	fieldTensorDims      = 1
	fieldTensorDataType  = 2
	fieldTensorFloatData = 4
	fieldTensorName      = 8
)

// Marshal serializes the model to ONNX protobuf wire format.
func (m *Model) Marshal() ([]byte, error) {
	var b []byte
	if m.IRVersion != 0 {
		b = protowire.AppendTag(b, fieldModelIRVersion, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(m.IRVersion))
	}
	b = appendString(b, fieldModelProducerName, m.ProducerName)
	b = appendString(b, fieldModelProducerVersion, m.ProducerVersion)
	b = appendString(b, fieldModelDomain, m.Domain)
	if m.ModelVersion != 0 {
		b = protowire.AppendTag(b, fieldModelVersion, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(m.ModelVersion))
	}
	b = appendMessage(b, fieldModelGraph, marshalGraph(&m.Graph))
	b = appendMessage(b, fieldModelOpsetImport, marshalOpset("", m.OpsetVersion))
	return b, nil
}

func marshalOpset(domain string, version int64) []byte {
	var b []byte
	b = appendString(b, fieldOpsetDomain, domain)
	b = protowire.AppendTag(b, fieldOpsetVersion, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(version))
	return b
}

func marshalGraph(g *Graph) []byte {
	var b []byte
	for i := range g.Nodes {
		b = appendMessage(b, fieldGraphNode, marshalNode(&g.Nodes[i]))
	}
	b = appendString(b, fieldGraphName, g.Name)
	for i := range g.Initializers {
		b = appendMessage(b, fieldGraphInitializer, marshalTensor(&g.Initializers[i]))
	}
	for i := range g.Inputs {
		b = appendMessage(b, fieldGraphInput, marshalValueInfo(&g.Inputs[i]))
	}
	for i := range g.Outputs {
		b = appendMessage(b, fieldGraphOutput, marshalValueInfo(&g.Outputs[i]))
	}
	return b
}

func marshalNode(n *Node) []byte {
	var b []byte
	for _, in := range n.Inputs {
		b = appendString(b, fieldNodeInput, in)
	}
	for _, out := range n.Outputs {
		b = appendString(b, fieldNodeOutput, out)
	}
	b = appendString(b, fieldNodeName, n.Name)
	b = appendString(b, fieldNodeOpType, n.OpType)
	for i := range n.Attrs {
		b = appendMessage(b, fieldNodeAttribute, marshalAttr(&n.Attrs[i]))
	}
	return b
}

func marshalAttr(a *Attr) []byte {
	var b []byte
	b = appendString(b, fieldAttrName, a.Name)
	switch a.Type {
	case AttrFloat:
		b = protowire.AppendTag(b, fieldAttrF, protowire.Fixed32Type)
		b = protowire.AppendFixed32(b, math.Float32bits(a.F))
	case AttrInt:
		b = protowire.AppendTag(b, fieldAttrI, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(a.I))
	case AttrFloats:
		b = appendMessage(b, fieldAttrFloats, packFloats(a.Float))
	case AttrInts:
		b = appendMessage(b, fieldAttrInts, packVarints(a.Ints))
	}
	b = protowire.AppendTag(b, fieldAttrType, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(a.Type))
	return b
}

func marshalValueInfo(v *ValueInfo) []byte {
	var shape []byte
	for _, d := range v.Dims {
		var dim []byte
		if d.Param != "" {
			dim = appendString(dim, fieldDimParam, d.Param)
		} else {
			dim = protowire.AppendTag(dim, fieldDimValue, protowire.VarintType)
			dim = protowire.AppendVarint(dim, uint64(d.Value))
		}
		shape = appendMessage(shape, fieldShapeDim, dim)
	}

	elem := v.ElemType
	if elem == 0 {
		elem = ElemFloat
	}
	var tensorType []byte
	tensorType = protowire.AppendTag(tensorType, fieldTensorTypeElem, protowire.VarintType)
	tensorType = protowire.AppendVarint(tensorType, uint64(elem))
	tensorType = appendMessage(tensorType, fieldTensorTypeShape, shape)

	var typ []byte
	typ = appendMessage(typ, fieldTypeTensor, tensorType)

	var b []byte
	b = appendString(b, fieldValueInfoName, v.Name)
	b = appendMessage(b, fieldValueInfoType, typ)
	return b
}

func marshalTensor(t *Tensor) []byte {
	var b []byte
	b = appendMessage(b, fieldTensorDims, packVarints(t.Dims))
	b = protowire.AppendTag(b, fieldTensorDataType, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(ElemFloat))
	b = appendMessage(b, fieldTensorFloatData, packFloats(t.Floats))
	b = appendString(b, fieldTensorName, t.Name)
	return b
}

func packVarints(values []int64) []byte {
	var b []byte
	for _, v := range values {
		b = protowire.AppendVarint(b, uint64(v))
	}
	return b
}

func packFloats(values []float32) []byte {
	var b []byte
	for _, v := range values {
		b = protowire.AppendFixed32(b, math.Float32bits(v))
	}
	return b
}

func appendString(b []byte, field protowire.Number, value string) []byte {
	if value == "" {
		return b
	}
	b = protowire.AppendTag(b, field, protowire.BytesType)
	return protowire.AppendString(b, value)
}

func appendMessage(b []byte, field protowire.Number, payload []byte) []byte {
	b = protowire.AppendTag(b, field, protowire.BytesType)
	return protowire.AppendBytes(b, payload)
}
