/*
Package units parses and formats NEAR and gas amounts written for humans,
like "1.5 N" or "300 Tgas".
*/
package units

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/nspcc-dev/near-go/pkg/util"
)

// NearDecimals is the number of yoctoNEAR digits in one NEAR.
const NearDecimals = 24

var errInvalidFormat = errors.New("invalid number format")

type unit struct {
	names     []string
	precision int
}

var nearUnits = []unit{
	{names: []string{"n", "near"}, precision: NearDecimals},
	{names: []string{"mn", "millinear"}, precision: NearDecimals - 3},
	{names: []string{"yn", "yocto", "yoctonear"}, precision: 0},
}

var gasUnits = []unit{
	{names: []string{"pgas", "p"}, precision: 15},
	{names: []string{"tgas", "t"}, precision: 12},
	{names: []string{"ggas", "g"}, precision: 9},
	{names: []string{"mgas", "m"}, precision: 6},
	{names: []string{"kgas", "k"}, precision: 3},
	{names: []string{"gas"}, precision: 0},
}

// FromString converts a decimal string into an integer scaled by
// 10^precision. Underscores and commas are ignored.
func FromString(s string, precision int) (*big.Int, error) {
	s = strings.NewReplacer("_", "", ",", "").Replace(s)
	parts := strings.SplitN(s, ".", 2)
	ip := parts[0]
	if ip == "" || strings.HasPrefix(ip, "-") || strings.HasPrefix(ip, "+") {
		return nil, fmt.Errorf("%w: %q", errInvalidFormat, s)
	}
	res, ok := new(big.Int).SetString(ip, 10)
	if !ok {
		return nil, fmt.Errorf("%w: %q", errInvalidFormat, s)
	}
	res.Mul(res, pow10(precision))
	if len(parts) == 1 {
		return res, nil
	}

	fp := strings.TrimRight(parts[1], "0")
	if len(fp) > precision {
		return nil, fmt.Errorf("%w: %q has more than %d decimals", errInvalidFormat, s, precision)
	}
	if fp == "" {
		return res, nil
	}
	if strings.ContainsAny(fp, "+-") {
		return nil, fmt.Errorf("%w: %q", errInvalidFormat, s)
	}
	frac, ok := new(big.Int).SetString(fp, 10)
	if !ok {
		return nil, fmt.Errorf("%w: %q", errInvalidFormat, s)
	}
	frac.Mul(frac, pow10(precision-len(fp)))
	return res.Add(res, frac), nil
}

// ToString formats an integer scaled by 10^precision as a decimal string
// without trailing zeroes.
func ToString(i *big.Int, precision int) string {
	q, r := new(big.Int).QuoRem(i, pow10(precision), new(big.Int))
	s := q.String()
	if r.Sign() == 0 {
		return s
	}
	frac := r.String()
	frac = strings.Repeat("0", precision-len(frac)) + frac
	return s + "." + strings.TrimRight(frac, "0")
}

func pow10(n int) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}

// splitUnit separates the numeric part of s from the unit name.
func splitUnit(s string, units []unit, def int) (string, int, error) {
	s = strings.TrimSpace(s)
	i := strings.IndexFunc(s, func(r rune) bool {
		return (r < '0' || r > '9') && r != '.' && r != '_' && r != ',' && r != '-' && r != '+'
	})
	if i < 0 {
		return s, def, nil
	}
	num, name := strings.TrimSpace(s[:i]), strings.ToLower(strings.TrimSpace(s[i:]))
	for _, u := range units {
		for _, n := range u.names {
			if n == name {
				return num, u.precision, nil
			}
		}
	}
	return "", 0, fmt.Errorf("unknown unit %q", s[i:])
}

// ParseNear parses an amount of NEAR into yoctoNEAR. A number without a
// unit is treated as NEAR.
func ParseNear(s string) (util.Balance, error) {
	num, prec, err := splitUnit(s, nearUnits, NearDecimals)
	if err != nil {
		return util.Balance{}, err
	}
	i, err := FromString(num, prec)
	if err != nil {
		return util.Balance{}, err
	}
	return util.BalanceFromBig(i)
}

// ParseGas parses an amount of gas. A number without a unit is treated as
// raw gas.
func ParseGas(s string) (util.Gas, error) {
	num, prec, err := splitUnit(s, gasUnits, 0)
	if err != nil {
		return 0, err
	}
	i, err := FromString(num, prec)
	if err != nil {
		return 0, err
	}
	if !i.IsUint64() {
		return 0, fmt.Errorf("gas amount %q overflows uint64", s)
	}
	return util.Gas(i.Uint64()), nil
}

// NearToHuman formats a yoctoNEAR amount in NEAR with thousands separators,
// like "123,456.789 N".
func NearToHuman(b util.Balance) string {
	return group(ToString(b.Big(), NearDecimals)) + " N"
}

var gasNames = []string{"Pgas", "Tgas", "Ggas", "Mgas", "Kgas"}

// GasToHuman formats a gas amount in the largest unit not exceeding it,
// like "123.456789 Mgas".
func GasToHuman(g util.Gas) string {
	for i, u := range gasUnits[:len(gasNames)] {
		if g >= util.Gas(pow10(u.precision).Uint64()) {
			s := ToString(new(big.Int).SetUint64(uint64(g)), u.precision)
			return group(s) + " " + gasNames[i]
		}
	}
	return group(ToString(new(big.Int).SetUint64(uint64(g)), 0)) + " gas"
}

// group inserts thousands separators into the integral part of s.
func group(s string) string {
	ip, fp, hasFrac := strings.Cut(s, ".")
	var sb strings.Builder
	for i, c := range ip {
		if i > 0 && (len(ip)-i)%3 == 0 {
			sb.WriteByte(',')
		}
		sb.WriteRune(c)
	}
	if hasFrac {
		sb.WriteByte('.')
		sb.WriteString(fp)
	}
	return sb.String()
}
