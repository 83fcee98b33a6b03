// Package format holds the codecs for the three on-disk representations of a
// record sequence (csv, txt, bin) and the registry the tools use to look them
// up by name. Adding a format means implementing Codec and registering it;
// nothing outside this package dispatches on format names.
package format

import (
	"strings"

	"github.com/bankrec-dev/bankrec/internal/model"
)

// Codec decodes and encodes one on-disk representation.
type Codec interface {
	// Name returns the format identifier used on the command line.
	Name() string

	// Match reports whether data looks like this format. Used for
	// content-based detection when no format flag is given.
	Match(data []byte) bool

	// Decode parses a fully-resident input buffer into an ordered record
	// sequence, failing fast on the first error.
	Decode(data []byte) ([]model.Record, error)

	// Encode serializes records in sequence order.
	Encode(records []model.Record) ([]byte, error)
}

// Registry holds named codecs.
type Registry struct {
	codecs map[string]Codec
	order  []string
}

// NewRegistry creates an empty codec registry.
func NewRegistry() *Registry {
	return &Registry{codecs: make(map[string]Codec)}
}

// Register adds a codec. Panics on duplicate name.
func (r *Registry) Register(c Codec) {
	key := strings.ToLower(c.Name())
	if _, ok := r.codecs[key]; ok {
		panic("duplicate codec name: " + key)
	}
	r.codecs[key] = c
	r.order = append(r.order, key)
}

// Get returns the codec for name, or nil.
func (r *Registry) Get(name string) Codec {
	return r.codecs[strings.ToLower(name)]
}

// Names returns the registered format names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// Detect identifies the codec for a buffer by content, or nil if no codec
// recognizes it. Codecs are tried in registration order.
func (r *Registry) Detect(data []byte) Codec {
	for _, key := range r.order {
		if c := r.codecs[key]; c.Match(data) {
			return c
		}
	}
	return nil
}
