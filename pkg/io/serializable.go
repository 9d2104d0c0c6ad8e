/*
Package io implements the binary layout used by the network for transactions
and their parts. All integers are little-endian, strings and byte slices are
prefixed with a u32 length, sequences with a u32 item count, optional values
with a 0/1 byte and enum-like values with a u8 tag.

BinWriter and BinReader keep the first error that happened and turn all
subsequent operations into no-ops, so a structure with many fields can be
written or read without checking every step.
*/
package io

// Serializable defines the binary encoding/decoding interface.
type Serializable interface {
	EncodeBinary(*BinWriter)
	DecodeBinary(*BinReader)
}

type decodable interface {
	DecodeBinary(*BinReader)
}

type encodable interface {
	EncodeBinary(*BinWriter)
}
