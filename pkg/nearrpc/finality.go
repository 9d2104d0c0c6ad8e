package nearrpc

import (
	"fmt"

	"github.com/nspcc-dev/near-go/pkg/crypto/hash"
)

// Finality selects the block a request is evaluated against. The zero value
// is FinalityFinal.
type Finality byte

// Finality levels.
const (
	// FinalityFinal is the latest block that is final.
	FinalityFinal Finality = iota
	// FinalityDoomSlug is the latest block with doomslug finality.
	FinalityDoomSlug
	// FinalityNone is the latest block, optimistic.
	FinalityNone
)

var finalityNames = map[Finality]string{
	FinalityFinal:    "final",
	FinalityDoomSlug: "near-final",
	FinalityNone:     "optimistic",
}

// ParseFinality parses the wire name of a finality level.
func ParseFinality(s string) (Finality, error) {
	for f, n := range finalityNames {
		if n == s {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown finality %q", s)
}

// String implements the fmt.Stringer interface.
func (f Finality) String() string {
	if n, ok := finalityNames[f]; ok {
		return n
	}
	return fmt.Sprintf("unknown(%d)", byte(f))
}

// MarshalText implements the encoding.TextMarshaler interface.
func (f Finality) MarshalText() ([]byte, error) {
	n, ok := finalityNames[f]
	if !ok {
		return nil, fmt.Errorf("unknown finality %d", byte(f))
	}
	return []byte(n), nil
}

// UnmarshalText implements the encoding.TextUnmarshaler interface.
func (f *Finality) UnmarshalText(data []byte) error {
	v, err := ParseFinality(string(data))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// BlockReference points to a block either by finality or by its height or
// hash. Height takes precedence over hash, hash over finality.
type BlockReference struct {
	Finality Finality
	Height   *uint64
	Hash     *hash.CryptoHash
}

// AtFinality references the latest block of the given finality.
func AtFinality(f Finality) BlockReference {
	return BlockReference{Finality: f}
}

// AtHeight references the block at the given height.
func AtHeight(h uint64) BlockReference {
	return BlockReference{Height: &h}
}

// AtHash references the block with the given hash.
func AtHash(h hash.CryptoHash) BlockReference {
	return BlockReference{Hash: &h}
}

// Params adds the reference to request parameters.
func (b BlockReference) Params(p map[string]any) map[string]any {
	if p == nil {
		p = make(map[string]any)
	}
	switch {
	case b.Height != nil:
		p["block_id"] = *b.Height
	case b.Hash != nil:
		p["block_id"] = b.Hash.String()
	default:
		p["finality"] = b.Finality
	}
	return p
}

// String implements the fmt.Stringer interface.
func (b BlockReference) String() string {
	switch {
	case b.Height != nil:
		return fmt.Sprintf("height %d", *b.Height)
	case b.Hash != nil:
		return "block " + b.Hash.String()
	default:
		return b.Finality.String()
	}
}
