/*
Package result contains result types for NEAR RPC calls.
*/
package result

import (
	"encoding/json"
	"fmt"

	"github.com/nspcc-dev/near-go/pkg/core/account"
	"github.com/nspcc-dev/near-go/pkg/crypto/hash"
	"github.com/nspcc-dev/near-go/pkg/crypto/keys"
	"github.com/nspcc-dev/near-go/pkg/util"
)

// QueryInfo is the block a query was evaluated at. Error is set by nodes that
// report query failures inside the result instead of an RPC error.
type QueryInfo struct {
	BlockHeight uint64          `json:"block_height"`
	BlockHash   hash.CryptoHash `json:"block_hash"`
	Error       string          `json:"error,omitempty"`
}

// QueryError is a failure reported inside a query result.
type QueryError struct {
	Message string
	Logs    []string
}

// Error implements the error interface.
func (e *QueryError) Error() string {
	return "query failed: " + e.Message
}

// Err returns a QueryError if the result carries an error.
func (q QueryInfo) Err() error {
	if q.Error == "" {
		return nil
	}
	return &QueryError{Message: q.Error}
}

// AccessKey is a view_access_key result.
type AccessKey struct {
	account.AccessKey
	QueryInfo
}

// AccessKeyInfo is a public key with its access key.
type AccessKeyInfo struct {
	PublicKey *keys.PublicKey   `json:"public_key"`
	AccessKey account.AccessKey `json:"access_key"`
}

// AccessKeyList is a view_access_key_list result.
type AccessKeyList struct {
	Keys []AccessKeyInfo `json:"keys"`
	QueryInfo
}

// Account is a view_account result.
type Account struct {
	Amount        util.Balance    `json:"amount"`
	Locked        util.Balance    `json:"locked"`
	CodeHash      hash.CryptoHash `json:"code_hash"`
	StorageUsage  uint64          `json:"storage_usage"`
	StoragePaidAt uint64          `json:"storage_paid_at"`
	QueryInfo
}

// HasContract returns true if the account has code deployed.
func (a *Account) HasContract() bool {
	return !a.CodeHash.IsZero()
}

// StateItem is a contract storage entry.
type StateItem struct {
	Key   []byte `json:"key"`
	Value []byte `json:"value"`
}

// ViewState is a view_state result.
type ViewState struct {
	Values []StateItem `json:"values"`
	QueryInfo
}

// ByteArray is a byte slice encoded as an array of numbers in JSON.
type ByteArray []byte

// MarshalJSON implements the json.Marshaler interface.
func (b ByteArray) MarshalJSON() ([]byte, error) {
	res := make([]uint16, len(b))
	for i := range b {
		res[i] = uint16(b[i])
	}
	return json.Marshal(res)
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (b *ByteArray) UnmarshalJSON(data []byte) error {
	var arr []uint16
	if err := json.Unmarshal(data, &arr); err != nil {
		return err
	}
	res := make([]byte, len(arr))
	for i, v := range arr {
		if v > 255 {
			return fmt.Errorf("byte value %d at %d is out of range", v, i)
		}
		res[i] = byte(v)
	}
	*b = res
	return nil
}

// CallResult is a call_function result: the raw bytes returned by the
// contract method and its logs.
type CallResult struct {
	Result ByteArray `json:"result"`
	Logs   []string  `json:"logs"`
	QueryInfo
}

// Err returns a QueryError if the call failed.
func (c *CallResult) Err() error {
	if c.Error == "" {
		return nil
	}
	return &QueryError{Message: c.Error, Logs: c.Logs}
}
