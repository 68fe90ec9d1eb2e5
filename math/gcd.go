package math

import (
	"math/big"
)

// GCD returns the non-negative greatest common divisor of a and b following
// Euclid: gcd(a, 0) = a, otherwise gcd(a, b) = gcd(b, a mod b).
//
// The recursion is unrolled into a loop so adversarial inputs cannot grow the stack.
func GCD(a *big.Int, b *big.Int) *big.Int {
	x := new(big.Int).Abs(a)
	y := new(big.Int).Abs(b)

	for y.Sign() != 0 {
		m := new(big.Int).Mod(x, y)
		x, y = y, m
	}

	return x
}

// Coprime reports whether gcd(a, b) = 1
func Coprime(a *big.Int, b *big.Int) bool {
	return GCD(a, b).Cmp(bigOne) == 0
}
