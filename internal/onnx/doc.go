// Package onnx implements the subset of the ONNX protobuf schema the
// gateway emits and inspects: ModelProto, GraphProto, NodeProto,
// TensorProto, and the value-info/shape family.
//
// Marshal and Unmarshal speak the standard protobuf wire format directly
// (field numbers match onnx.proto), so output files load in any ONNX
// runtime and files produced by external converters can be structurally
// validated here without a generated binding for the full schema.
package onnx
