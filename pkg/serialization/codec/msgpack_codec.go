package codec

import (
	"bytes"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

const MsgpackName = "msgpack"

// MsgpackCodec implements the Codec interface with MessagePack, the default record format.
type MsgpackCodec struct{}

func (m *MsgpackCodec) Name() string {
	return MsgpackName
}

func (m *MsgpackCodec) Marshal(v interface{}) ([]byte, error) {
	return msgpack.Marshal(v)
}

func (m *MsgpackCodec) Unmarshal(data []byte, v interface{}) error {
	r := bytes.NewReader(data)
	dec := msgpack.NewDecoder(r)
	dec.DisallowUnknownFields(true)
	if err := dec.Decode(v); err != nil {
		return err
	}
	if r.Len() > 0 {
		return fmt.Errorf("%w: %d bytes", ErrTrailingData, r.Len())
	}
	return nil
}
