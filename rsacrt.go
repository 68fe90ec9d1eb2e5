package faultsig

import (
	"io"
	"math/big"

	"github.com/pkg/errors"

	fsmath "github.com/bastionzero/faultsig/math"
)

// RSAPublicKey is the verification half of an RSA key. E is a big.Int because it is drawn
// uniformly below phi(N) rather than fixed at 65537
type RSAPublicKey struct {
	N *big.Int
	E *big.Int
}

// RSAPrivateKey holds everything needed to produce CRT signatures
type RSAPrivateKey struct {
	RSAPublicKey
	D   *big.Int // private exponent, E * D ≡ 1 (mod Phi)
	P   *big.Int
	Q   *big.Int
	Phi *big.Int // (P - 1) * (Q - 1)
}

// Validate checks the key invariants: distinct factors, N = P * Q and E * D ≡ 1 (mod Phi)
func (priv *RSAPrivateKey) Validate() error {
	if priv == nil || priv.N == nil || priv.E == nil || priv.D == nil || priv.P == nil || priv.Q == nil {
		return errors.Wrap(ErrInvalidKey, "missing key component")
	}
	if priv.P.Cmp(priv.Q) == 0 {
		return errors.Wrap(ErrInvalidKey, "p and q must be distinct")
	}
	if new(big.Int).Mul(priv.P, priv.Q).Cmp(priv.N) != 0 {
		return errors.Wrap(ErrInvalidKey, "n != p * q")
	}

	phi := fsmath.EulerTotient([]*big.Int{priv.P, priv.Q})
	ed := new(big.Int).Mul(priv.E, priv.D)
	if !fsmath.CongruentModN(ed, bigOne, phi) {
		return errors.Wrap(ErrInvalidKey, "e * d ≢ 1 (mod phi)")
	}
	return nil
}

// GenerateRSAKey builds a key whose modulus is roughly bits long.
//
// Each prime is the next prime after a random (bits/2)-bit number. The public exponent is drawn
// uniformly from [2, phi) until it is coprime to phi, and D is its inverse mod phi.
func GenerateRSAKey(random io.Reader, bits int, cfg *Config) (*RSAPrivateKey, error) {
	cfg = configOrDefault(cfg)
	if bits < 8 {
		return nil, errors.Wrapf(ErrInvalidParameters, "cannot generate a %d-bit modulus", bits)
	}
	primeBits := bits / 2

	var p, q *big.Int
	for attempt := 1; ; attempt++ {
		if cfg.exhausted(attempt) {
			return nil, errors.Wrap(ErrKeyGenExhausted, "searching for distinct primes")
		}

		randP, err := randomBits(random, primeBits)
		if err != nil {
			return nil, errors.Wrap(err, "failed to draw prime candidate")
		}
		randQ, err := randomBits(random, primeBits)
		if err != nil {
			return nil, errors.Wrap(err, "failed to draw prime candidate")
		}

		p = fsmath.NextPrime(randP, cfg.PrimalityRounds)
		q = fsmath.NextPrime(randQ, cfg.PrimalityRounds)

		// with small moduli the two draws can land on the same prime
		if p.Cmp(q) != 0 {
			break
		}
	}

	n := new(big.Int).Mul(p, q)
	phi := fsmath.EulerTotient([]*big.Int{p, q})

	// e <- [2, phi - 1] until gcd(e, phi) = 1
	phiMinusOne := new(big.Int).Sub(phi, bigOne)
	var e *big.Int
	for attempt := 1; ; attempt++ {
		if cfg.exhausted(attempt) {
			return nil, errors.Wrap(ErrKeyGenExhausted, "searching for a public exponent")
		}

		candidate, err := randomInRange(random, bigTwo, phiMinusOne)
		if err != nil {
			return nil, errors.Wrap(err, "failed to draw public exponent")
		}

		if fsmath.Coprime(candidate, phi) {
			e = candidate
			cfg.Logger.Debug("found public exponent", "attempts", attempt)
			break
		}
	}

	d, err := fsmath.Invert(e, phi)
	if err != nil {
		return nil, err
	}

	cfg.Logger.Debug("generated rsa key", "bits", n.BitLen())
	return &RSAPrivateKey{
		RSAPublicKey: RSAPublicKey{N: n, E: e},
		D:            d,
		P:            p,
		Q:            q,
		Phi:          phi,
	}, nil
}

// CRTValues returns the recombination coefficients for n = p * q:
//
//	A = q * (q^-1 mod p), so A ≡ 1 (mod p) and A ≡ 0 (mod q)
//	B = p * (p^-1 mod q), so B ≡ 0 (mod p) and B ≡ 1 (mod q)
func CRTValues(p *big.Int, q *big.Int) (A *big.Int, B *big.Int, err error) {
	qInv, err := fsmath.Invert(q, p)
	if err != nil {
		return nil, nil, err
	}
	pInv, err := fsmath.Invert(p, q)
	if err != nil {
		return nil, nil, err
	}

	A = new(big.Int).Mul(q, qInv)
	B = new(big.Int).Mul(p, pInv)
	return A, B, nil
}

// Sign computes sigma = m^D mod N through the Chinese Remainder Theorem
func Sign(priv *RSAPrivateKey, m *big.Int) (*big.Int, error) {
	return signCRT(priv, m, false)
}

// SignWithFault computes a CRT signature in which the residue mod P has been hit by a single
// transient fault (sigma_p + 1) before recombination. The residue mod Q is left intact, which
// is what [Factor] exploits.
func SignWithFault(priv *RSAPrivateKey, m *big.Int) (*big.Int, error) {
	return signCRT(priv, m, true)
}

func signCRT(priv *RSAPrivateKey, m *big.Int, injectFault bool) (*big.Int, error) {
	if priv == nil || priv.P == nil || priv.Q == nil || priv.D == nil {
		return nil, errors.Wrap(ErrInvalidKey, "missing key component")
	}

	n := new(big.Int).Mul(priv.P, priv.Q)
	if m.Sign() < 0 || m.Cmp(n) >= 0 {
		return nil, ErrMessageOutOfRange
	}

	A, B, err := CRTValues(priv.P, priv.Q)
	if err != nil {
		return nil, errors.Wrap(err, "failed to compute CRT coefficients")
	}

	// sigmaP <- (m mod p)^d mod p
	mp := new(big.Int).Mod(m, priv.P)
	sigmaP, err := fsmath.Modpow(mp, priv.D, priv.P)
	if err != nil {
		return nil, err
	}

	// sigmaQ <- (m mod q)^d mod q
	mq := new(big.Int).Mod(m, priv.Q)
	sigmaQ, err := fsmath.Modpow(mq, priv.D, priv.Q)
	if err != nil {
		return nil, err
	}

	if injectFault {
		injectBranchFault(sigmaP)
	}

	// sigma <- A * sigmaP + B * sigmaQ mod n
	sigma := new(big.Int).Mul(A, sigmaP)
	sigma.Add(sigma, new(big.Int).Mul(B, sigmaQ))
	return sigma.Mod(sigma, n), nil
}

// flips the residue of one CRT branch, modelling a glitch in that half of the computation only
func injectBranchFault(residue *big.Int) {
	residue.Add(residue, bigOne)
}

// VerifyRSA reports whether sigma^E mod N == m
func VerifyRSA(pub *RSAPublicKey, m *big.Int, sigma *big.Int) bool {
	if pub == nil || pub.N == nil || pub.E == nil || pub.N.Sign() <= 0 {
		return false
	}
	if sigma.Sign() < 0 || sigma.Cmp(pub.N) >= 0 {
		return false
	}

	if m.Sign() < 0 || m.Cmp(pub.N) >= 0 {
		return false
	}

	recovered, err := fsmath.Modpow(sigma, pub.E, pub.N)
	if err != nil {
		return false
	}
	return recovered.Cmp(m) == 0
}
