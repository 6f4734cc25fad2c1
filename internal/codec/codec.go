// Package codec provides the byte-exact serialized form of data items.
//
// Items are encoded as CBOR using the core deterministic encoding options,
// so the same value always yields the same bytes. The encoded length is what
// the pickle-size filter measures, and transformers use the same encoding to
// persist items.
package codec

import (
	"fmt"
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error

	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("codec: building CBOR encoder: %v", err))
	}

	decMode, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("codec: building CBOR decoder: %v", err))
	}
}

// Marshal returns the serialized form of v.
func Marshal(v any) ([]byte, error) {
	data, err := encMode.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding item: %w", err)
	}

	return data, nil
}

// Unmarshal decodes data into v. Maps without a concrete target type decode
// as map[string]any.
func Unmarshal(data []byte, v any) error {
	if err := decMode.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding item: %w", err)
	}

	return nil
}
