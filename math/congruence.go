package math

import (
	"math/big"
)

var (
	bigOne = big.NewInt(1)
	bigTwo = big.NewInt(2)
)

// check that n divides (a - b)
func CongruentModN(a *big.Int, b *big.Int, N *big.Int) bool {
	aModN := new(big.Int).Mod(a, N)
	bModN := new(big.Int).Mod(b, N)

	return aModN.Cmp(bModN) == 0
}

// EulerTotient calculates phi(n) from the prime factors of n, however many there are
func EulerTotient(primes []*big.Int) *big.Int {
	phi := big.NewInt(1)
	for _, p := range primes {
		// phi[i] <- phi[i-1] * (p[i] - 1)
		pm1 := new(big.Int).Sub(p, bigOne)
		phi.Mul(phi, pm1)
	}

	return phi
}
