package wallet

import (
	"fmt"
	"strconv"
	"strings"
)

// MaxChainDepth is the deepest path a Chain can describe. BIP32 stores
// depth in a single byte.
const MaxChainDepth = 255

// Segment is one step of a derivation path. Index is always below
// Hardened; the hardened offset is applied by ChildIndex.
type Segment struct {
	Hardened bool   `json:"hardened"`
	Index    uint32 `json:"index"`
}

// H returns a hardened segment.
func H(index uint32) Segment { return Segment{Hardened: true, Index: index} }

// N returns a non-hardened segment.
func N(index uint32) Segment { return Segment{Index: index} }

// ChildIndex returns the BIP32 child number for the segment.
func (s Segment) ChildIndex() uint32 {
	if s.Hardened {
		return s.Index + Hardened
	}
	return s.Index
}

func (s Segment) String() string {
	if s.Hardened {
		return strconv.FormatUint(uint64(s.Index), 10) + "'"
	}
	return strconv.FormatUint(uint64(s.Index), 10)
}

// Chain identifies a key by its derivation path without holding key
// material. A Chain is immutable; the zero value is the master path "m".
type Chain struct {
	segs []Segment
}

// NewChain builds a chain from segments.
func NewChain(segs ...Segment) (Chain, error) {
	if len(segs) > MaxChainDepth {
		return Chain{}, fmt.Errorf("%w: depth %d exceeds %d", ErrInvalidPath, len(segs), MaxChainDepth)
	}
	for i, s := range segs {
		if s.Index >= Hardened {
			return Chain{}, fmt.Errorf("%w: segment %d index %d out of range", ErrInvalidPath, i, s.Index)
		}
	}
	if len(segs) == 0 {
		return Chain{}, nil
	}
	return Chain{segs: append([]Segment(nil), segs...)}, nil
}

// Bip44Chain returns m/44'/coinType'/account'/change'/index', every
// segment hardened.
func Bip44Chain(coinType, account, change, index uint32) (Chain, error) {
	return NewChain(H(PurposeBIP44), H(coinType), H(account), H(change), H(index))
}

// ParseChain parses a path such as "m/44'/4218'/0'/0'/1'". The leading
// "m/" is optional, and "h" or "H" may be used instead of "'". The bare
// string "m" is the empty chain.
func ParseChain(s string) (Chain, error) {
	s = strings.TrimSpace(s)
	if s == "m" || s == "M" {
		return Chain{}, nil
	}
	rest := s
	if strings.HasPrefix(s, "m/") || strings.HasPrefix(s, "M/") {
		rest = s[2:]
	}
	if rest == "" {
		return Chain{}, fmt.Errorf("%w: empty path %q", ErrInvalidPath, s)
	}

	parts := strings.Split(rest, "/")
	if len(parts) > MaxChainDepth {
		return Chain{}, fmt.Errorf("%w: depth %d exceeds %d", ErrInvalidPath, len(parts), MaxChainDepth)
	}

	segs := make([]Segment, len(parts))
	for i, part := range parts {
		hardened := false
		if n := len(part); n > 0 && (part[n-1] == '\'' || part[n-1] == 'h' || part[n-1] == 'H') {
			hardened = true
			part = part[:n-1]
		}
		if part == "" {
			return Chain{}, fmt.Errorf("%w: segment %d is empty", ErrInvalidPath, i)
		}
		idx, err := strconv.ParseUint(part, 10, 32)
		if err != nil {
			return Chain{}, fmt.Errorf("%w: segment %d %q: %w", ErrInvalidPath, i, parts[i], err)
		}
		if idx >= Hardened {
			return Chain{}, fmt.Errorf("%w: segment %d index %d out of range", ErrInvalidPath, i, idx)
		}
		segs[i] = Segment{Hardened: hardened, Index: uint32(idx)}
	}
	return Chain{segs: segs}, nil
}

// String renders the canonical path: "m" followed by "/index" or
// "/index'" per segment.
func (c Chain) String() string {
	var b strings.Builder
	b.WriteByte('m')
	for _, s := range c.segs {
		b.WriteByte('/')
		b.WriteString(s.String())
	}
	return b.String()
}

// Equal reports whether both chains have the same segments and hardened flags.
func (c Chain) Equal(o Chain) bool {
	if len(c.segs) != len(o.segs) {
		return false
	}
	for i := range c.segs {
		if c.segs[i] != o.segs[i] {
			return false
		}
	}
	return true
}

// Len returns the number of segments.
func (c Chain) Len() int { return len(c.segs) }

// Segments returns a copy of the segments.
func (c Chain) Segments() []Segment {
	return append([]Segment(nil), c.segs...)
}

// Indices returns the BIP32 child numbers with the hardened offset applied.
func (c Chain) Indices() []uint32 {
	out := make([]uint32, len(c.segs))
	for i, s := range c.segs {
		out[i] = s.ChildIndex()
	}
	return out
}

// CoinType returns the coin type of a BIP44 chain.
func (c Chain) CoinType() (uint32, bool) {
	if len(c.segs) < 2 || c.segs[0] != H(PurposeBIP44) || !c.segs[1].Hardened {
		return 0, false
	}
	return c.segs[1].Index, true
}

func (c Chain) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *Chain) UnmarshalText(b []byte) error {
	parsed, err := ParseChain(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
