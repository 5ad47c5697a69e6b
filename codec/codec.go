// Package codec centralizes archive header encoding.
//
// Archives store the codec name in their preamble, so changing the default
// codec never breaks reading older files.
package codec

import "fmt"

// Codec encodes/decodes values.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// Default is the codec used for newly written archives.
var Default Codec = MsgPack{}

// ByName returns a built-in codec by its stable name.
func ByName(name string) (Codec, bool) {
	switch name {
	case "msgpack":
		return MsgPack{}, true
	case "go-json", "json":
		return GoJSON{}, true
	default:
		return nil, false
	}
}

// Names lists the stable names accepted by ByName.
func Names() []string {
	return []string{"msgpack", "go-json"}
}

// MustMarshal is a helper for tests.
func MustMarshal(c Codec, v any) []byte {
	if c == nil {
		c = Default
	}
	b, err := c.Marshal(v)
	if err != nil {
		panic(fmt.Errorf("codec %s marshal failed: %w", c.Name(), err))
	}
	return b
}
