// Package convert translates a record file from one representation to
// another. The in-memory record sequence is the only intermediate; no field
// transformation happens between decode and encode.
package convert

import (
	"fmt"

	"github.com/bankrec-dev/bankrec/internal/format"
)

// Convert decodes data with the source codec and re-encodes it with the
// target codec, both looked up in reg by name.
func Convert(data []byte, source, target string, reg *format.Registry) ([]byte, error) {
	src := reg.Get(source)
	if src == nil {
		return nil, fmt.Errorf("unknown source format %q (supported: %v)", source, reg.Names())
	}
	dst := reg.Get(target)
	if dst == nil {
		return nil, fmt.Errorf("unknown target format %q (supported: %v)", target, reg.Names())
	}

	records, err := src.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s input: %w", src.Name(), err)
	}
	out, err := dst.Encode(records)
	if err != nil {
		return nil, fmt.Errorf("encoding %s output: %w", dst.Name(), err)
	}
	return out, nil
}
