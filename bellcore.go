package faultsig

import (
	"math/big"

	"github.com/pkg/errors"

	fsmath "github.com/bastionzero/faultsig/math"
)

// Factor recovers the prime factors of n from a genuine CRT signature and one whose residue
// mod p was faulted, both over the same message and key.
//
// Since only the mod-p branch changed, good - faulty ≡ 0 (mod q) but not mod p, so
// gcd(good - faulty, n) = q. The result is returned as (p, q) with q the untouched prime.
//
// If the difference is a multiple of n (identical signatures, or a fault that hit both branches)
// the gcd collapses to n and ErrAttackInconclusive is returned instead of the trivial split.
func Factor(n *big.Int, good *big.Int, faulty *big.Int, cfg *Config) (p *big.Int, q *big.Int, err error) {
	cfg = configOrDefault(cfg)
	if n == nil || good == nil || faulty == nil || n.Cmp(bigOne) <= 0 {
		return nil, nil, errors.Wrap(ErrInvalidParameters, "modulus and both signatures are required")
	}

	// delta <- good - faulty
	delta := new(big.Int).Sub(good, faulty)
	if new(big.Int).Mod(delta, n).Sign() == 0 {
		cfg.Logger.Warn("signatures are congruent mod n, no fault to exploit")
		return nil, nil, errors.Wrap(ErrAttackInconclusive, "signatures are congruent modulo n")
	}

	q = new(big.Int).GCD(nil, nil, new(big.Int).Abs(delta), n)
	if q.Cmp(bigOne) == 0 || q.Cmp(n) == 0 {
		cfg.Logger.Warn("gcd did not split the modulus", "gcd", q)
		return nil, nil, errors.Wrapf(ErrAttackInconclusive, "gcd(delta, n) = %v", q)
	}

	p, rem := new(big.Int).QuoRem(n, q, new(big.Int))
	if rem.Sign() != 0 {
		return nil, nil, errors.Wrap(ErrAttackInconclusive, "gcd does not divide n")
	}

	// diagnostic: a proper split has coprime halves unless n is a square
	if !fsmath.Coprime(p, q) {
		cfg.Logger.Warn("recovered factors share a divisor", "p", p, "q", q)
	}

	cfg.Logger.Info("bellcore attack factored the modulus", "bits", n.BitLen())
	return p, q, nil
}
