package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type header struct {
	N      int      `json:"n" msgpack:"n"`
	Metric string   `json:"metric" msgpack:"metric"`
	IDs    []string `json:"ids" msgpack:"ids"`
}

func TestByName(t *testing.T) {
	for _, name := range Names() {
		c, ok := ByName(name)
		require.True(t, ok, name)
		assert.Equal(t, name, c.Name())
	}

	c, ok := ByName("json")
	require.True(t, ok)
	assert.Equal(t, "go-json", c.Name())

	_, ok = ByName("protobuf")
	assert.False(t, ok)
}

func TestCodecs_Header(t *testing.T) {
	in := header{N: 3, Metric: "kmer cosine k=11", IDs: []string{"s1", "s2", "s3"}}

	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			c, _ := ByName(name)
			var out header
			require.NoError(t, c.Unmarshal(MustMarshal(c, in), &out))
			assert.Equal(t, in, out)
		})
	}
}

func TestCodecs_UnmarshalGarbage(t *testing.T) {
	var out header
	assert.Error(t, GoJSON{}.Unmarshal([]byte("{"), &out))
	assert.Error(t, MsgPack{}.Unmarshal([]byte{0xc1}, &out))
}

func TestMustMarshal_DefaultCodec(t *testing.T) {
	b := MustMarshal(nil, header{N: 1})
	var out header
	require.NoError(t, Default.Unmarshal(b, &out))
	assert.Equal(t, 1, out.N)
}
