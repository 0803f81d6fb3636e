// Package variant implements closed, tag-discriminated polymorphic families.
//
// Every family (inputs, outputs, addresses, signatures, unlocks) is a
// Registry populated once in a package-level var. Encoding always writes
// the tag first; decoding reads the tag, looks up the variant and only
// then decodes the body. JSON and binary share the same registry so
// the two paths cannot disagree about which tags exist.
package variant

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
)

// Entity is one variant of a polymorphic family.
//
// Implementations are pointer types whose Kind is a constant.
type Entity interface {
	Kind() uint8
	PackBody(p *Packer)
	UnpackBody(u *Unpacker)
}

// Validator is implemented by variants with invariants beyond their shape.
// Decoders call Validate after the body has been read.
type Validator interface {
	Validate() error
}

// Registry maps tags to variant constructors for a single family.
type Registry[T Entity] struct {
	family string
	ctors  map[uint8]func() T
}

// NewRegistry returns an empty registry for the named family.
func NewRegistry[T Entity](family string) *Registry[T] {
	return &Registry[T]{family: family, ctors: make(map[uint8]func() T)}
}

// Register adds a variant. It panics on a duplicate tag or when the
// constructed value reports a different tag, since both are programming
// errors in a package-level table.
func (r *Registry[T]) Register(kind uint8, ctor func() T) *Registry[T] {
	if _, dup := r.ctors[kind]; dup {
		panic(fmt.Sprintf("variant: %s type %d registered twice", r.family, kind))
	}
	if got := ctor().Kind(); got != kind {
		panic(fmt.Sprintf("variant: %s type %d constructor reports type %d", r.family, kind, got))
	}
	r.ctors[kind] = ctor
	return r
}

// Family returns the family name used in error messages.
func (r *Registry[T]) Family() string { return r.family }

// Kinds returns the registered tags in ascending order.
func (r *Registry[T]) Kinds() []uint8 {
	kinds := make([]uint8, 0, len(r.ctors))
	for k := range r.ctors {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	return kinds
}

// New returns a zero value of the variant registered under kind.
func (r *Registry[T]) New(kind uint8) (T, error) {
	ctor, ok := r.ctors[kind]
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: %s type %d", ErrUnknownVariant, r.family, kind)
	}
	return ctor(), nil
}

type tagHeader struct {
	Type *int64 `json:"type"`
}

// DecodeJSON reads the "type" field of data, then decodes the rest of
// the object into the matching variant.
func (r *Registry[T]) DecodeJSON(data []byte) (T, error) {
	var zero T
	var head tagHeader
	if err := json.Unmarshal(data, &head); err != nil {
		return zero, fmt.Errorf("%w: %s: %w", ErrMalformed, r.family, err)
	}
	if head.Type == nil {
		return zero, fmt.Errorf("%w: %s", ErrMissingTag, r.family)
	}
	if *head.Type < 0 || *head.Type > 0xff {
		return zero, fmt.Errorf("%w: %s type %d", ErrUnknownVariant, r.family, *head.Type)
	}
	kind := uint8(*head.Type)

	v, err := r.New(kind)
	if err != nil {
		return zero, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return zero, fmt.Errorf("%w: %s type %d: %w", ErrMalformed, r.family, kind, err)
	}
	if err := validate(v); err != nil {
		return zero, fmt.Errorf("%s type %d: %w", r.family, kind, err)
	}
	return v, nil
}

// EncodeJSON writes v as a JSON object whose first member is "type".
func (r *Registry[T]) EncodeJSON(v T) ([]byte, error) {
	if any(v) == nil {
		return nil, fmt.Errorf("%w: %s: nil value", ErrMalformed, r.family)
	}
	kind := v.Kind()
	if _, ok := r.ctors[kind]; !ok {
		return nil, fmt.Errorf("%w: %s type %d", ErrUnknownVariant, r.family, kind)
	}

	body, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%s type %d: %w", r.family, kind, err)
	}
	body = bytes.TrimSpace(body)
	if len(body) < 2 || body[0] != '{' {
		return nil, fmt.Errorf("%w: %s type %d does not encode as an object", ErrMalformed, r.family, kind)
	}

	out := make([]byte, 0, len(body)+12)
	out = append(out, `{"type":`...)
	out = strconv.AppendUint(out, uint64(kind), 10)
	if len(body) > 2 {
		out = append(out, ',')
	}
	return append(out, body[1:]...), nil
}

// EncodeJSONList encodes vs as a JSON array of tagged objects.
func (r *Registry[T]) EncodeJSONList(vs []T) (json.RawMessage, error) {
	items := make([]json.RawMessage, len(vs))
	for i, v := range vs {
		b, err := r.EncodeJSON(v)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", r.family, i, err)
		}
		items[i] = b
	}
	return json.Marshal(items)
}

// DecodeJSONList decodes a JSON array of tagged objects. A JSON null
// decodes to a nil slice.
func (r *Registry[T]) DecodeJSONList(data []byte) ([]T, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("%w: %s list: %w", ErrMalformed, r.family, err)
	}
	if items == nil {
		return nil, nil
	}
	out := make([]T, len(items))
	for i, item := range items {
		v, err := r.DecodeJSON(item)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", r.family, i, err)
		}
		out[i] = v
	}
	return out, nil
}

// Pack writes the tag byte followed by the body.
func (r *Registry[T]) Pack(p *Packer, v T) {
	p.U8(v.Kind())
	v.PackBody(p)
}

// Unpack reads a tag byte and the matching body. Failures are recorded
// on u and the zero value is returned.
func (r *Registry[T]) Unpack(u *Unpacker) T {
	var zero T
	kind := u.U8()
	if u.Err() != nil {
		return zero
	}
	v, err := r.New(kind)
	if err != nil {
		u.Fail(err)
		return zero
	}
	v.UnpackBody(u)
	if u.Err() != nil {
		return zero
	}
	if err := validate(v); err != nil {
		u.Fail(fmt.Errorf("%s type %d: %w", r.family, kind, err))
		return zero
	}
	return v
}

// PackList writes a uint16 count followed by each tagged value.
func (r *Registry[T]) PackList(p *Packer, vs []T) {
	p.U16(uint16(len(vs)))
	for _, v := range vs {
		r.Pack(p, v)
	}
}

// UnpackList reads a list written by PackList.
func (r *Registry[T]) UnpackList(u *Unpacker) []T {
	n := int(u.U16())
	if u.Err() != nil {
		return nil
	}
	out := make([]T, 0, n)
	for i := 0; i < n; i++ {
		v := r.Unpack(u)
		if u.Err() != nil {
			return nil
		}
		out = append(out, v)
	}
	return out
}

// Bytes returns the tagged binary form of v.
func (r *Registry[T]) Bytes(v T) []byte {
	p := NewPacker()
	r.Pack(p, v)
	return p.Bytes()
}

// FromBytes decodes exactly one tagged value from b.
func (r *Registry[T]) FromBytes(b []byte) (T, error) {
	u := NewUnpacker(b)
	v := r.Unpack(u)
	if err := u.Done(); err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}

// Equal reports whether a and b carry the same tag and the same packed body.
func Equal[T Entity](a, b T) bool {
	if any(a) == nil || any(b) == nil {
		return any(a) == nil && any(b) == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	pa, pb := NewPacker(), NewPacker()
	a.PackBody(pa)
	b.PackBody(pb)
	return bytes.Equal(pa.Bytes(), pb.Bytes())
}

func validate(v any) error {
	if val, ok := v.(Validator); ok {
		return val.Validate()
	}
	return nil
}
