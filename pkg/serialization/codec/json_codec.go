package codec

import (
	"bytes"
	"encoding/json"
)

const JSONName = "json"

// JSONCodec implements the Codec interface for JSON encoding and decoding.
type JSONCodec struct{}

func (j *JSONCodec) Name() string {
	return JSONName
}

func (j *JSONCodec) Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func (j *JSONCodec) Unmarshal(data []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return ErrTrailingData
	}
	return nil
}
