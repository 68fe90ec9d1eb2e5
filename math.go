package faultsig

import (
	"crypto/rand"
	"io"
	"math/big"
)

var (
	bigZero = big.NewInt(0)
	bigOne  = big.NewInt(1)
	bigTwo  = big.NewInt(2)
)

// returns a uniformly random number of exactly bits bits (the top bit is always set)
func randomBits(random io.Reader, bits int) (*big.Int, error) {
	if bits < 1 {
		return big.NewInt(0), nil
	}

	// r <- [0, 2^(bits-1)), then lift it into [2^(bits-1), 2^bits)
	top := new(big.Int).Lsh(bigOne, uint(bits-1))
	r, err := rand.Int(random, top)
	if err != nil {
		return nil, err
	}
	return r.Or(r, top), nil
}

// returns a uniformly random number in [lo, hi]
func randomInRange(random io.Reader, lo *big.Int, hi *big.Int) (*big.Int, error) {
	// width <- hi - lo + 1
	width := new(big.Int).Sub(hi, lo)
	width.Add(width, bigOne)

	r, err := rand.Int(random, width)
	if err != nil {
		return nil, err
	}
	return r.Add(r, lo), nil
}
