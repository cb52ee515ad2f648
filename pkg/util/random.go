package util

import (
	"crypto/rand"
	"math/big"
)

// Base36Upper is the alphabet used for human-typed codes.
const Base36Upper = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// RandomCode returns n characters drawn uniformly from alphabet.
func RandomCode(n int, alphabet string) (string, error) {
	max := big.NewInt(int64(len(alphabet)))
	out := make([]byte, n)
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = alphabet[idx.Int64()]
	}
	return string(out), nil
}
