package math

import (
	"math/big"

	"github.com/pkg/errors"
)

var (
	// ErrNotInvertible is returned when a modular inverse is requested for a non-unit
	ErrNotInvertible = errors.New("value is not invertible modulo the given modulus")
	// ErrInvalidModulus is returned for a zero or negative modulus
	ErrInvalidModulus = errors.New("modulus must be positive")
)

// Modpow returns g^k mod p using square-and-multiply.
//
// A negative k is handled by inverting g modulo p first, which fails with [ErrNotInvertible]
// if gcd(g, p) != 1. None of the arguments are modified.
func Modpow(g *big.Int, k *big.Int, p *big.Int) (*big.Int, error) {
	if p.Sign() <= 0 {
		return nil, ErrInvalidModulus
	}

	// private copies, the caller keeps ownership of g and k
	base := new(big.Int).Mod(g, p)
	exp := new(big.Int).Set(k)

	if exp.Sign() < 0 {
		inv, err := Invert(base, p)
		if err != nil {
			return nil, err
		}
		base = inv
		exp.Neg(exp)
	}

	if exp.Sign() == 0 {
		return big.NewInt(1), nil
	}

	// y accumulates the odd powers while base is squared down the ladder
	y := big.NewInt(1)
	for exp.Cmp(bigOne) > 0 {
		if exp.Bit(0) == 1 {
			y.Mul(y, base)
			y.Mod(y, p)
			exp.Sub(exp, bigOne)
		}
		base.Mul(base, base)
		base.Mod(base, p)
		exp.Rsh(exp, 1)
	}

	result := new(big.Int).Mul(base, y)
	return result.Mod(result, p), nil
}

// Invert returns a^-1 mod n, or ErrNotInvertible
func Invert(a *big.Int, n *big.Int) (*big.Int, error) {
	if n.Sign() <= 0 {
		return nil, ErrInvalidModulus
	}

	inv := new(big.Int).ModInverse(new(big.Int).Mod(a, n), n)
	if inv == nil {
		return nil, errors.Wrapf(ErrNotInvertible, "%v mod %v", a, n)
	}
	return inv, nil
}
