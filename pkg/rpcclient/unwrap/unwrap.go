/*
Package unwrap provides a set of proxy methods to process view call results.

Functions implemented there are intended to be used as wrappers for other
functions that return (*result.CallResult, error) pair, like invoker's Call.
These functions will check for error, decode the returned bytes into the
appropriate type (if everything is OK) and then return a result or error.
Most NEAR contracts return JSON, so decoding is JSON-based, Bytes returns
raw data for other formats.
*/
package unwrap

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/nspcc-dev/near-go/pkg/nearrpc/result"
	"github.com/nspcc-dev/near-go/pkg/util"
)

// ErrDeserialization is returned when the result can't be decoded into the
// requested type.
var ErrDeserialization = errors.New("result deserialization failed")

// ErrNoResult is returned for a nil result with no error.
var ErrNoResult = errors.New("no result")

func checkResOK(r *result.CallResult, err error) error {
	if err != nil {
		return err
	}
	if r == nil {
		return ErrNoResult
	}
	return r.Err()
}

// Bytes expects correct execution and returns the raw result.
func Bytes(r *result.CallResult, err error) ([]byte, error) {
	if err := checkResOK(r, err); err != nil {
		return nil, err
	}
	return r.Result, nil
}

// JSON expects correct execution with a JSON result and decodes it into v.
func JSON(r *result.CallResult, err error, v any) error {
	data, err := Bytes(r, err)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", ErrDeserialization, err)
	}
	return nil
}

// Value is a generic version of JSON returning the decoded value.
func Value[T any](r *result.CallResult, err error) (T, error) {
	var v T
	err = JSON(r, err, &v)
	return v, err
}

// String expects a JSON string result.
func String(r *result.CallResult, err error) (string, error) {
	s, err := Value[string](r, err)
	if err != nil {
		return "", err
	}
	if !utf8.ValidString(s) {
		return "", fmt.Errorf("%w: not a UTF-8 string", ErrDeserialization)
	}
	return s, nil
}

// Bool expects a JSON boolean result.
func Bool(r *result.CallResult, err error) (bool, error) {
	return Value[bool](r, err)
}

// Uint64 expects a JSON number or a decimal string (the way contracts usually
// return 64-bit values) result.
func Uint64(r *result.CallResult, err error) (uint64, error) {
	raw, err := Value[json.RawMessage](r, err)
	if err != nil {
		return 0, err
	}
	var s string
	if json.Unmarshal(raw, &s) != nil {
		s = string(raw)
	}
	u, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDeserialization, err)
	}
	return u, nil
}

// Balance expects a decimal string result and returns it as a token amount.
func Balance(r *result.CallResult, err error) (util.Balance, error) {
	b, err := Value[util.Balance](r, err)
	if err != nil {
		return util.Balance{}, err
	}
	return b, nil
}
