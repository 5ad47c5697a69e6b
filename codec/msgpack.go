package codec

import "github.com/vmihailenco/msgpack/v5"

// MsgPack is a compact binary codec backed by github.com/vmihailenco/msgpack/v5.
//
// Struct fields are encoded using their `msgpack` tags, falling back to the
// field name.
type MsgPack struct{}

// Marshal encodes the value to msgpack.
func (MsgPack) Marshal(v any) ([]byte, error) { return msgpack.Marshal(v) }

// Unmarshal decodes the msgpack data into v.
func (MsgPack) Unmarshal(data []byte, v any) error { return msgpack.Unmarshal(data, v) }

// Name returns the unique name of the codec ("msgpack").
func (MsgPack) Name() string { return "msgpack" }
