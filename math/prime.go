package math

import (
	"math/big"
)

// NextPrime returns the smallest probable prime strictly greater than n.
// rounds is handed to [big.Int.ProbablyPrime]; each round bounds the error by 1/4.
func NextPrime(n *big.Int, rounds int) *big.Int {
	if n.Cmp(bigTwo) < 0 {
		return big.NewInt(2)
	}

	// first odd number above n
	candidate := new(big.Int).Add(n, bigOne)
	if candidate.Bit(0) == 0 {
		candidate.Add(candidate, bigOne)
	}

	for !candidate.ProbablyPrime(rounds) {
		candidate.Add(candidate, bigTwo)
	}

	return candidate
}
