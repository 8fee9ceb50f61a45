package codec

import (
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type PayloadExample struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Data []byte `json:"data"`
}

type OtherPayload struct {
	Height uint64 `json:"height"`
}

func codecs() []Codec {
	return []Codec{&MsgpackCodec{}, &JSONCodec{}}
}

func TestRoundTrip(t *testing.T) {
	for _, c := range codecs() {
		t.Run(c.Name(), func(t *testing.T) {
			for i := 0; i < 10; i++ {
				var example PayloadExample
				require.NoError(t, gofakeit.Struct(&example))

				encoded, err := c.Marshal(&example)
				require.NoError(t, err)

				var decoded PayloadExample
				require.NoError(t, c.Unmarshal(encoded, &decoded))
				assert.Equal(t, example, decoded)
			}
		})
	}
}

func TestUnmarshalRejectsMismatchedData(t *testing.T) {
	for _, c := range codecs() {
		t.Run(c.Name(), func(t *testing.T) {
			encoded, err := c.Marshal(PayloadExample{ID: 1, Name: "x"})
			require.NoError(t, err)

			var other OtherPayload
			assert.Error(t, c.Unmarshal(encoded, &other))

			var decoded PayloadExample
			assert.Error(t, c.Unmarshal([]byte{0xc1, 0xff, 0x00}, &decoded))
			assert.Error(t, c.Unmarshal(append(encoded, encoded...), &decoded))
		})
	}
}

func TestByName(t *testing.T) {
	c, ok := ByName("")
	require.True(t, ok)
	assert.Equal(t, MsgpackName, c.Name())

	c, ok = ByName(JSONName)
	require.True(t, ok)
	assert.Equal(t, JSONName, c.Name())

	_, ok = ByName("scale")
	assert.False(t, ok)
}
