package props

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Decode maps an object value onto a tagged Go struct. Components use it to
// read a typed view of the props they were rendered with.
//
//	type CardProps struct {
//		Text  string `mapstructure:"text"`
//		Count int    `mapstructure:"count"`
//	}
func (v Value) Decode(dst any) error {
	if v.kind != KindObject {
		return fmt.Errorf("props: decode requires an object, got %s", v.kind)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           dst,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("props: decoder setup: %w", err)
	}

	if err := decoder.Decode(v.Interface()); err != nil {
		return fmt.Errorf("props: decode: %w", err)
	}
	return nil
}
