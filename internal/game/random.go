package game

import (
	"crypto/rand"
	"math/big"
)

// Picker draws a secret number uniformly from the closed range [lo, hi].
type Picker interface {
	Pick(lo, hi int) int
}

// CryptoPicker draws with crypto/rand.
type CryptoPicker struct{}

// Pick returns a cryptographically random integer in [lo, hi].
// If the entropy source fails, it falls back to the midpoint.
func (CryptoPicker) Pick(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	nBig, err := rand.Int(rand.Reader, big.NewInt(int64(hi-lo+1)))
	if err != nil {
		return lo + (hi-lo)/2
	}
	return lo + int(nBig.Int64())
}

// PickerFunc adapts a plain function to Picker.
type PickerFunc func(lo, hi int) int

// Pick calls f(lo, hi).
func (f PickerFunc) Pick(lo, hi int) int { return f(lo, hi) }
