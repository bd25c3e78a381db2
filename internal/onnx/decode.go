package onnx

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// Unmarshal parses ONNX protobuf wire format into the supported subset.
// Fields outside the subset are skipped, so models produced by external
// converters (which populate doc strings, raw tensor data, and so on)
// still parse for structural validation.
func Unmarshal(data []byte) (*Model, error) {
	m := &Model{}
	err := walkFields(data, func(num protowire.Number, typ protowire.Type, value []byte, varint uint64) error {
		switch num {
		case fieldModelIRVersion:
			m.IRVersion = int64(varint)
		case fieldModelProducerName:
			m.ProducerName = string(value)
		case fieldModelProducerVersion:
			m.ProducerVersion = string(value)
		case fieldModelDomain:
			m.Domain = string(value)
		case fieldModelVersion:
			m.ModelVersion = int64(varint)
		case fieldModelGraph:
			return unmarshalGraph(value, &m.Graph)
		case fieldModelOpsetImport:
			version, err := unmarshalOpset(value)
			if err != nil {
				return err
			}
			// The default-domain opset version wins; keep the highest
			// otherwise so multi-domain models still report something.
			if version > m.OpsetVersion {
				m.OpsetVersion = version
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

func unmarshalOpset(data []byte) (int64, error) {
	var version int64
	err := walkFields(data, func(num protowire.Number, _ protowire.Type, _ []byte, varint uint64) error {
		if num == fieldOpsetVersion {
			version = int64(varint)
		}
		return nil
	})
	return version, err
}

func unmarshalGraph(data []byte, g *Graph) error {
	return walkFields(data, func(num protowire.Number, _ protowire.Type, value []byte, _ uint64) error {
		switch num {
		case fieldGraphNode:
			node, err := unmarshalNode(value)
			if err != nil {
				return err
			}
			g.Nodes = append(g.Nodes, node)
		case fieldGraphName:
			g.Name = string(value)
		case fieldGraphInitializer:
			tensor, err := unmarshalTensor(value)
			if err != nil {
				return err
			}
			g.Initializers = append(g.Initializers, tensor)
		case fieldGraphInput:
			vi, err := unmarshalValueInfo(value)
			if err != nil {
				return err
			}
			g.Inputs = append(g.Inputs, vi)
		case fieldGraphOutput:
			vi, err := unmarshalValueInfo(value)
			if err != nil {
				return err
			}
			g.Outputs = append(g.Outputs, vi)
		}
		return nil
	})
}

func unmarshalNode(data []byte) (Node, error) {
	var n Node
	err := walkFields(data, func(num protowire.Number, _ protowire.Type, value []byte, _ uint64) error {
		switch num {
		case fieldNodeInput:
			n.Inputs = append(n.Inputs, string(value))
		case fieldNodeOutput:
			n.Outputs = append(n.Outputs, string(value))
		case fieldNodeName:
			n.Name = string(value)
		case fieldNodeOpType:
			n.OpType = string(value)
		case fieldNodeAttribute:
			attr, err := unmarshalAttr(value)
			if err != nil {
				return err
			}
			n.Attrs = append(n.Attrs, attr)
		}
		return nil
	})
	return n, err
}

func unmarshalAttr(data []byte) (Attr, error) {
	var a Attr
	err := walkFields(data, func(num protowire.Number, typ protowire.Type, value []byte, varint uint64) error {
		switch num {
		case fieldAttrName:
			a.Name = string(value)
		case fieldAttrF:
			a.F = math.Float32frombits(uint32(varint))
		case fieldAttrI:
			a.I = int64(varint)
		case fieldAttrFloats:
			if typ == protowire.BytesType {
				a.Float = append(a.Float, unpackFloats(value)...)
			} else {
				a.Float = append(a.Float, math.Float32frombits(uint32(varint)))
			}
		case fieldAttrInts:
			if typ == protowire.BytesType {
				ints, err := unpackVarints(value)
				if err != nil {
					return err
				}
				a.Ints = append(a.Ints, ints...)
			} else {
				a.Ints = append(a.Ints, int64(varint))
			}
		case fieldAttrType:
			a.Type = int64(varint)
		}
		return nil
	})
	return a, err
}

func unmarshalValueInfo(data []byte) (ValueInfo, error) {
	var v ValueInfo
	err := walkFields(data, func(num protowire.Number, _ protowire.Type, value []byte, _ uint64) error {
		switch num {
		case fieldValueInfoName:
			v.Name = string(value)
		case fieldValueInfoType:
			return walkFields(value, func(num protowire.Number, _ protowire.Type, value []byte, _ uint64) error {
				if num != fieldTypeTensor {
					return nil
				}
				return walkFields(value, func(num protowire.Number, _ protowire.Type, value []byte, varint uint64) error {
					switch num {
					case fieldTensorTypeElem:
						v.ElemType = int64(varint)
					case fieldTensorTypeShape:
						return unmarshalShape(value, &v.Dims)
					}
					return nil
				})
			})
		}
		return nil
	})
	return v, err
}

func unmarshalShape(data []byte, dims *[]Dim) error {
	return walkFields(data, func(num protowire.Number, _ protowire.Type, value []byte, _ uint64) error {
		if num != fieldShapeDim {
			return nil
		}
		var d Dim
		err := walkFields(value, func(num protowire.Number, _ protowire.Type, value []byte, varint uint64) error {
			switch num {
			case fieldDimValue:
				d.Value = int64(varint)
			case fieldDimParam:
				d.Param = string(value)
			}
			return nil
		})
		if err != nil {
			return err
		}
		*dims = append(*dims, d)
		return nil
	})
}

func unmarshalTensor(data []byte) (Tensor, error) {
	var t Tensor
	err := walkFields(data, func(num protowire.Number, typ protowire.Type, value []byte, varint uint64) error {
		switch num {
		case fieldTensorDims:
			if typ == protowire.BytesType {
				dims, err := unpackVarints(value)
				if err != nil {
					return err
				}
				t.Dims = append(t.Dims, dims...)
			} else {
				t.Dims = append(t.Dims, int64(varint))
			}
		case fieldTensorFloatData:
			if typ == protowire.BytesType {
				t.Floats = append(t.Floats, unpackFloats(value)...)
			} else {
				t.Floats = append(t.Floats, math.Float32frombits(uint32(varint)))
			}
		case fieldTensorName:
			t.Name = string(value)
		}
		return nil
	})
	return t, err
}

// walkFields iterates a serialized message, handing each field to visit.
// For varint and fixed32 fields the decoded scalar arrives in varint; for
// length-delimited fields the payload arrives in value.
func walkFields(data []byte, visit func(num protowire.Number, typ protowire.Type, value []byte, varint uint64) error) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return fmt.Errorf("onnx: malformed tag: %w", protowire.ParseError(n))
		}
		data = data[n:]

		var (
			value  []byte
			scalar uint64
		)
		switch typ {
		case protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return fmt.Errorf("onnx: malformed varint: %w", protowire.ParseError(n))
			}
			scalar = v
			data = data[n:]
		case protowire.Fixed32Type:
			v, n := protowire.ConsumeFixed32(data)
			if n < 0 {
				return fmt.Errorf("onnx: malformed fixed32: %w", protowire.ParseError(n))
			}
			scalar = uint64(v)
			data = data[n:]
		case protowire.Fixed64Type:
			v, n := protowire.ConsumeFixed64(data)
			if n < 0 {
				return fmt.Errorf("onnx: malformed fixed64: %w", protowire.ParseError(n))
			}
			scalar = v
			data = data[n:]
		case protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return fmt.Errorf("onnx: malformed length-delimited field: %w", protowire.ParseError(n))
			}
			value = v
			data = data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return fmt.Errorf("onnx: malformed field %d: %w", num, protowire.ParseError(n))
			}
			data = data[n:]
			continue
		}

		if err := visit(num, typ, value, scalar); err != nil {
			return err
		}
	}
	return nil
}

func unpackVarints(data []byte) ([]int64, error) {
	var out []int64
	for len(data) > 0 {
		v, n := protowire.ConsumeVarint(data)
		if n < 0 {
			return nil, fmt.Errorf("onnx: malformed packed varint: %w", protowire.ParseError(n))
		}
		out = append(out, int64(v))
		data = data[n:]
	}
	return out, nil
}

func unpackFloats(data []byte) []float32 {
	out := make([]float32, 0, len(data)/4)
	for len(data) >= 4 {
		v, n := protowire.ConsumeFixed32(data)
		if n < 0 {
			break
		}
		out = append(out, math.Float32frombits(v))
		data = data[n:]
	}
	return out
}
