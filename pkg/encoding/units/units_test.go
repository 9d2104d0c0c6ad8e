package units

import (
	"math/big"
	"testing"

	"github.com/nspcc-dev/near-go/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromString(t *testing.T) {
	testCases := []struct {
		in   string
		prec int
		out  string
	}{
		{"1", 3, "1000"},
		{"1.5", 3, "1500"},
		{"0.001", 3, "1"},
		{"1_000", 0, "1000"},
		{"1,000.10", 2, "100010"},
		{"2.000", 0, "2"},
	}
	for _, tc := range testCases {
		i, err := FromString(tc.in, tc.prec)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.out, i.String(), tc.in)
	}

	for _, bad := range []string{"", "-1", "1.0001x", "abc", "1.2345", ".5", "1.-5"} {
		_, err := FromString(bad, 3)
		assert.Error(t, err, bad)
	}
}

func TestToString(t *testing.T) {
	assert.Equal(t, "1.5", ToString(big.NewInt(1500), 3))
	assert.Equal(t, "0.001", ToString(big.NewInt(1), 3))
	assert.Equal(t, "12", ToString(big.NewInt(12000), 3))
}

func TestParseNear(t *testing.T) {
	testCases := map[string]string{
		"1 N":          "1000000000000000000000000",
		"1.5 NEAR":     "1500000000000000000000000",
		"2":            "2000000000000000000000000",
		"3 mN":         "3000000000000000000000",
		"10 yoctoNEAR": "10",
		"0.000001N":    "1000000000000000000",
	}
	for in, out := range testCases {
		b, err := ParseNear(in)
		require.NoError(t, err, in)
		assert.Equal(t, out, b.String(), in)
	}

	_, err := ParseNear("1 BTC")
	require.Error(t, err)
	_, err = ParseNear("1 yN extra")
	require.Error(t, err)
	_, err = ParseNear("0.5 yN")
	require.Error(t, err)
}

func TestParseGas(t *testing.T) {
	testCases := map[string]util.Gas{
		"300 Tgas":        300 * util.Tgas,
		"300 T":           300 * util.Tgas,
		"1.5 Ggas":        1_500_000_000,
		"300000000000000": 300_000_000_000_000,
		"5 gas":           5,
		"2 Pgas":          2 * util.Pgas,
	}
	for in, out := range testCases {
		g, err := ParseGas(in)
		require.NoError(t, err, in)
		assert.Equal(t, out, g, in)
	}

	_, err := ParseGas("100000000 Pgas")
	require.Error(t, err)
	_, err = ParseGas("1 joule")
	require.Error(t, err)
}

func TestNearToHuman(t *testing.T) {
	b, err := util.ParseBalance("123456789000000000000000000000")
	require.NoError(t, err)
	assert.Equal(t, "123,456.789 N", NearToHuman(b))
	assert.Equal(t, "0 N", NearToHuman(util.NewBalance(0)))
	assert.Equal(t, "0.000000000000000000000001 N", NearToHuman(util.NewBalance(1)))
}

func TestGasToHuman(t *testing.T) {
	assert.Equal(t, "123.456789 Mgas", GasToHuman(123456789))
	assert.Equal(t, "300 Tgas", GasToHuman(300*util.Tgas))
	assert.Equal(t, "999 gas", GasToHuman(999))
	assert.Equal(t, "1 Kgas", GasToHuman(1000))
	assert.Equal(t, "1,200 Pgas", GasToHuman(1200*util.Pgas))
}
