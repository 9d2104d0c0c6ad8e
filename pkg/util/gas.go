package util

// Gas is an amount of gas.
type Gas uint64

// Gas units.
const (
	Kgas Gas = 1_000
	Mgas     = 1_000 * Kgas
	Ggas     = 1_000 * Mgas
	Tgas     = 1_000 * Ggas
	Pgas     = 1_000 * Tgas
)
