package nearrpc

import (
	"encoding/json"
	"testing"

	"github.com/nspcc-dev/near-go/pkg/crypto/hash"
	"github.com/stretchr/testify/require"
)

func TestFinality(t *testing.T) {
	var f Finality
	require.Equal(t, FinalityFinal, f)

	for _, s := range []string{"final", "near-final", "optimistic"} {
		require.NoError(t, json.Unmarshal([]byte(`"`+s+`"`), &f))
		data, err := json.Marshal(f)
		require.NoError(t, err)
		require.Equal(t, `"`+s+`"`, string(data))
	}
	require.Equal(t, FinalityNone, f)
	require.Error(t, json.Unmarshal([]byte(`"soon"`), &f))
	_, err := json.Marshal(Finality(9))
	require.Error(t, err)
}

func TestBlockReferenceParams(t *testing.T) {
	p := AtFinality(FinalityDoomSlug).Params(map[string]any{"account_id": "alice.testnet"})
	data, err := json.Marshal(p)
	require.NoError(t, err)
	require.JSONEq(t, `{"account_id":"alice.testnet","finality":"near-final"}`, string(data))

	data, err = json.Marshal(AtHeight(100).Params(nil))
	require.NoError(t, err)
	require.JSONEq(t, `{"block_id":100}`, string(data))

	h := hash.Sha256([]byte("b"))
	data, err = json.Marshal(AtHash(h).Params(nil))
	require.NoError(t, err)
	require.JSONEq(t, `{"block_id":"`+h.String()+`"}`, string(data))
	require.Equal(t, "height 100", AtHeight(100).String())
}
