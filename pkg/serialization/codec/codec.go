package codec

import "errors"

// ErrTrailingData is returned when bytes remain after a value was decoded.
var ErrTrailingData = errors.New("trailing data after encoded value")

// Codec turns records into bytes and back. Unmarshal must fail rather than
// guess when the bytes were not produced for the target type.
type Codec interface {
	Name() string
	Marshal(v interface{}) ([]byte, error)
	Unmarshal(data []byte, v interface{}) error
}

// ByName returns the codec registered under name, or false.
func ByName(name string) (Codec, bool) {
	switch name {
	case "", MsgpackName:
		return &MsgpackCodec{}, true
	case JSONName:
		return &JSONCodec{}, true
	}
	return nil, false
}
