/*
Package util contains the numeric types used for amounts.
*/
package util

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
	"github.com/nspcc-dev/near-go/pkg/io"
)

// ErrBalanceOverflow is returned for amounts that don't fit into 128 bits.
var ErrBalanceOverflow = errors.New("balance exceeds 128 bits")

// Balance is an unsigned 128-bit amount of yoctoNEAR. It is encoded as a
// decimal string in JSON and as 16 little-endian bytes in binary.
type Balance struct {
	v uint256.Int
}

// NewBalance creates a Balance from an uint64 amount.
func NewBalance(u uint64) Balance {
	var b Balance
	b.v.SetUint64(u)
	return b
}

// BalanceFromBig creates a Balance from a big.Int, it fails for negative
// numbers and numbers over 128 bits.
func BalanceFromBig(i *big.Int) (Balance, error) {
	var b Balance
	if i.Sign() < 0 {
		return b, fmt.Errorf("negative balance %s", i)
	}
	v, overflow := uint256.FromBig(i)
	if overflow || v[2] != 0 || v[3] != 0 {
		return b, fmt.Errorf("%w: %s", ErrBalanceOverflow, i)
	}
	b.v = *v
	return b, nil
}

// ParseBalance parses a decimal yoctoNEAR amount.
func ParseBalance(s string) (Balance, error) {
	i, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return Balance{}, fmt.Errorf("invalid balance %q", s)
	}
	return BalanceFromBig(i)
}

// Big returns the amount as a big.Int.
func (b Balance) Big() *big.Int {
	return b.v.ToBig()
}

// String implements the fmt.Stringer interface.
func (b Balance) String() string {
	return b.v.ToBig().String()
}

// IsZero returns true for a zero amount.
func (b Balance) IsZero() bool {
	return b.v.IsZero()
}

// Cmp compares b and other and returns -1, 0 or 1.
func (b Balance) Cmp(other Balance) int {
	return b.v.Cmp(&other.v)
}

// Add returns b + other, it fails on 128-bit overflow.
func (b Balance) Add(other Balance) (Balance, error) {
	var res Balance
	res.v.Add(&b.v, &other.v)
	if res.v[2] != 0 || res.v[3] != 0 {
		return Balance{}, ErrBalanceOverflow
	}
	return res, nil
}

// MarshalJSON implements the json.Marshaler interface.
func (b Balance) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (b *Balance) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := ParseBalance(s)
	if err != nil {
		return err
	}
	*b = v
	return nil
}

// EncodeBinary implements the io.Serializable interface.
func (b *Balance) EncodeBinary(w *io.BinWriter) {
	if b.v[2] != 0 || b.v[3] != 0 {
		w.Err = ErrBalanceOverflow
		return
	}
	w.WriteU128LE(b.v[0], b.v[1])
}

// DecodeBinary implements the io.Serializable interface.
func (b *Balance) DecodeBinary(r *io.BinReader) {
	lo, hi := r.ReadU128LE()
	b.v = uint256.Int{lo, hi, 0, 0}
}
