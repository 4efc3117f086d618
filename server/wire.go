package server

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/chazu/basil/vm"
)

// cborEncMode uses canonical encoding so equal requests produce equal
// bytes.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("server: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// MarshalRequest serializes a CompileRequest to CBOR bytes.
func MarshalRequest(r *vm.CompileRequest) ([]byte, error) {
	return cborEncMode.Marshal(r)
}

// UnmarshalRequest deserializes a CompileRequest from CBOR bytes.
func UnmarshalRequest(data []byte) (*vm.CompileRequest, error) {
	var r vm.CompileRequest
	if err := cbor.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("server: unmarshal compile request: %w", err)
	}
	return &r, nil
}

// MarshalResponse serializes a CompileResponse to CBOR bytes.
func MarshalResponse(r *vm.CompileResponse) ([]byte, error) {
	return cborEncMode.Marshal(r)
}

// UnmarshalResponse deserializes a CompileResponse from CBOR bytes.
func UnmarshalResponse(data []byte) (*vm.CompileResponse, error) {
	var r vm.CompileResponse
	if err := cbor.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("server: unmarshal compile response: %w", err)
	}
	return &r, nil
}

// Codec carries compile messages as CBOR. It satisfies both the gRPC
// encoding.Codec and connect.Codec interfaces.
type Codec struct{}

// CodecName is the content subtype on the wire.
const CodecName = "cbor"

// Name implements the codec interfaces.
func (Codec) Name() string { return CodecName }

// Marshal implements the codec interfaces.
func (Codec) Marshal(v any) ([]byte, error) {
	return cborEncMode.Marshal(v)
}

// Unmarshal implements the codec interfaces.
func (Codec) Unmarshal(data []byte, v any) error {
	if err := cbor.Unmarshal(data, v); err != nil {
		return fmt.Errorf("server: unmarshal %T: %w", v, err)
	}
	return nil
}
