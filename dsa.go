package faultsig

import (
	"io"
	"math/big"

	"github.com/pkg/errors"

	fsmath "github.com/bastionzero/faultsig/math"
)

// DSAParameters are the domain parameters shared by every key in one instantiation
type DSAParameters struct {
	P, Q, G *big.Int
}

type DSAPublicKey struct {
	DSAParameters
	Y *big.Int // G^X mod P
}

type DSAPrivateKey struct {
	DSAPublicKey
	X *big.Int // in [1, Q-1]
}

type DSASignature struct {
	R, S *big.Int
}

// Public returns the public half of the key
func (priv *DSAPrivateKey) Public() *DSAPublicKey {
	pub := priv.DSAPublicKey
	return &pub
}

// Validate checks that Q and P are prime, Q | P-1, G has order Q and G != 1
func (params *DSAParameters) Validate(cfg *Config) error {
	cfg = configOrDefault(cfg)
	if params == nil || params.P == nil || params.Q == nil || params.G == nil {
		return errors.Wrap(ErrInvalidParameters, "missing parameter")
	}
	if !params.Q.ProbablyPrime(cfg.PrimalityRounds) {
		return errors.Wrap(ErrInvalidParameters, "q is not prime")
	}
	if !params.P.ProbablyPrime(cfg.PrimalityRounds) {
		return errors.Wrap(ErrInvalidParameters, "p is not prime")
	}

	pm1 := new(big.Int).Sub(params.P, bigOne)
	if !fsmath.CongruentModN(pm1, bigZero, params.Q) {
		return errors.Wrap(ErrInvalidParameters, "q does not divide p - 1")
	}
	if params.G.Cmp(bigOne) <= 0 || params.G.Cmp(params.P) >= 0 {
		return errors.Wrap(ErrInvalidParameters, "g out of range")
	}

	gq, err := fsmath.Modpow(params.G, params.Q, params.P)
	if err != nil {
		return err
	}
	if gq.Cmp(bigOne) != 0 {
		return errors.Wrap(ErrInvalidParameters, "g^q ≢ 1 (mod p)")
	}
	return nil
}

// GenerateParameters builds (P, Q, G) with a bitsN-bit Q and P = Q * z + 1 for a random
// (bitsL - bitsN)-bit z. G = h^z mod P for the first random h in [1, P-2] giving G > 1.
// Q is redrawn after 4 * bitsL cofactors fail, so narrow z ranges still terminate.
func GenerateParameters(random io.Reader, bitsL int, bitsN int, cfg *Config) (*DSAParameters, error) {
	cfg = configOrDefault(cfg)
	// the cofactor z needs room to be even, or every p = q * z + 1 is even
	if bitsN < 2 || bitsL-bitsN < 2 {
		return nil, errors.Wrapf(ErrInvalidParameters, "unusable sizes L=%d N=%d", bitsL, bitsN)
	}

	var q, z *big.Int
	p := new(big.Int)
	perQ := 4 * bitsL
	for attempt := 1; ; attempt++ {
		if cfg.exhausted(attempt) {
			return nil, errors.Wrap(ErrKeyGenExhausted, "searching for p")
		}

		if attempt%perQ == 1 {
			qCandidate, err := randomBits(random, bitsN)
			if err != nil {
				return nil, errors.Wrap(err, "failed to draw q candidate")
			}
			q = fsmath.NextPrime(qCandidate, cfg.PrimalityRounds)
		}

		var err error
		z, err = randomBits(random, bitsL-bitsN)
		if err != nil {
			return nil, errors.Wrap(err, "failed to draw cofactor")
		}

		// p <- q * z + 1
		p.Mul(q, z)
		p.Add(p, bigOne)
		if p.ProbablyPrime(cfg.PrimalityRounds) {
			cfg.Logger.Debug("found dsa modulus", "attempts", attempt, "bits", p.BitLen())
			break
		}
	}

	// h <- [1, p - 2], g <- h^z mod p; g^q = h^(p-1) = 1 by Fermat
	pm2 := new(big.Int).Sub(p, bigTwo)
	var g *big.Int
	for attempt := 1; ; attempt++ {
		if cfg.exhausted(attempt) {
			return nil, errors.Wrap(ErrKeyGenExhausted, "searching for a generator")
		}

		h, err := randomInRange(random, bigOne, pm2)
		if err != nil {
			return nil, errors.Wrap(err, "failed to draw generator seed")
		}

		g, err = fsmath.Modpow(h, z, p)
		if err != nil {
			return nil, err
		}
		if g.Cmp(bigOne) > 0 {
			break
		}
	}

	return &DSAParameters{P: p, Q: q, G: g}, nil
}

// GenerateDSAKey picks X uniformly from [1, Q-1] and sets Y = G^X mod P
func GenerateDSAKey(random io.Reader, params *DSAParameters) (*DSAPrivateKey, error) {
	if params == nil || params.P == nil || params.Q == nil || params.G == nil {
		return nil, errors.Wrap(ErrInvalidParameters, "parameters not set up before generating key")
	}
	if params.Q.Cmp(bigTwo) < 0 {
		return nil, errors.Wrap(ErrInvalidParameters, "q too small")
	}

	qm1 := new(big.Int).Sub(params.Q, bigOne)
	x, err := randomInRange(random, bigOne, qm1)
	if err != nil {
		return nil, errors.Wrap(err, "failed to draw private key")
	}

	y, err := fsmath.Modpow(params.G, x, params.P)
	if err != nil {
		return nil, err
	}

	return &DSAPrivateKey{
		DSAPublicKey: DSAPublicKey{
			DSAParameters: *params,
			Y:             y,
		},
		X: x,
	}, nil
}

// KeyGen generates fresh domain parameters and a key pair under them
func KeyGen(random io.Reader, bitsL int, bitsN int, cfg *Config) (*DSAPrivateKey, error) {
	params, err := GenerateParameters(random, bitsL, bitsN, cfg)
	if err != nil {
		return nil, err
	}
	return GenerateDSAKey(random, params)
}

// HashMessage digests msg with the configured hash and reduces the big-endian result mod q
func HashMessage(msg []byte, q *big.Int, cfg *Config) (*big.Int, error) {
	cfg = configOrDefault(cfg)
	if q == nil || q.Sign() <= 0 {
		return nil, errors.Wrap(ErrInvalidParameters, "digest modulus must be positive")
	}
	h, err := cfg.NewHash()
	if err != nil {
		return nil, err
	}
	h.Write(msg)

	digest := new(big.Int).SetBytes(h.Sum(nil))
	return digest.Mod(digest, q), nil
}

// SignDigest signs an already reduced digest with a fresh random nonce
func SignDigest(random io.Reader, priv *DSAPrivateKey, digest *big.Int, cfg *Config) (*DSASignature, error) {
	sig, _, err := signDigest(random, priv, digest, cfg)
	return sig, err
}

// SignDigestLeakNonce behaves like SignDigest but also hands back the nonce k. Anyone holding k
// and the signature can recover the private key with [RecoverKey]; this exists for that demonstration.
func SignDigestLeakNonce(random io.Reader, priv *DSAPrivateKey, digest *big.Int, cfg *Config) (*DSASignature, *big.Int, error) {
	return signDigest(random, priv, digest, cfg)
}

func signDigest(random io.Reader, priv *DSAPrivateKey, digest *big.Int, cfg *Config) (*DSASignature, *big.Int, error) {
	cfg = configOrDefault(cfg)
	if err := checkPrivateKey(priv); err != nil {
		return nil, nil, err
	}

	qm1 := new(big.Int).Sub(priv.Q, bigOne)
	for attempt := 1; ; attempt++ {
		if cfg.exhausted(attempt) {
			return nil, nil, ErrNonceExhausted
		}

		k, err := randomInRange(random, bigOne, qm1)
		if err != nil {
			return nil, nil, errors.Wrap(err, "failed to draw nonce")
		}

		sig, err := SignDigestWithNonce(priv, digest, k)
		switch {
		case err == nil:
			return sig, k, nil
		case errors.Is(err, ErrDegenerateSignature), errors.Is(err, ErrNotInvertible):
			// never surfaced, just draw another nonce
			cfg.Logger.Debug("discarding nonce", "attempt", attempt, "reason", err)
			continue
		default:
			return nil, nil, err
		}
	}
}

// SignDigestWithNonce computes
//
//	r = (G^k mod P) mod Q
//	s = k^-1 * (digest + X * r) mod Q
//
// for a caller-chosen k. It returns ErrDegenerateSignature when r or s is zero, since it cannot retry.
func SignDigestWithNonce(priv *DSAPrivateKey, digest *big.Int, k *big.Int) (*DSASignature, error) {
	if err := checkPrivateKey(priv); err != nil {
		return nil, err
	}
	if k == nil || digest == nil {
		return nil, errors.Wrap(ErrInvalidParameters, "missing nonce or digest")
	}
	if k.Sign() <= 0 || k.Cmp(priv.Q) >= 0 {
		return nil, errors.Wrap(ErrDegenerateSignature, "nonce out of range")
	}

	r, err := fsmath.Modpow(priv.G, k, priv.P)
	if err != nil {
		return nil, err
	}
	r.Mod(r, priv.Q)
	if r.Sign() == 0 {
		return nil, errors.Wrap(ErrDegenerateSignature, "r = 0")
	}

	kInv, err := fsmath.Invert(k, priv.Q)
	if err != nil {
		return nil, err
	}

	// s <- kInv * (digest + x * r) mod q
	s := new(big.Int).Mul(priv.X, r)
	s.Add(s, digest)
	s.Mul(s, kInv)
	s.Mod(s, priv.Q)
	if s.Sign() == 0 {
		return nil, errors.Wrap(ErrDegenerateSignature, "s = 0")
	}

	return &DSASignature{R: r, S: s}, nil
}

// SignMessage hashes msg with the configured digest and signs it
func SignMessage(random io.Reader, priv *DSAPrivateKey, msg []byte, cfg *Config) (*DSASignature, error) {
	if err := checkPrivateKey(priv); err != nil {
		return nil, err
	}
	digest, err := HashMessage(msg, priv.Q, cfg)
	if err != nil {
		return nil, err
	}
	return SignDigest(random, priv, digest, cfg)
}

// VerifyDigest reports whether sig is a valid signature of digest under pub.
// r and s outside (0, Q) are rejected before any inverse is computed.
func VerifyDigest(pub *DSAPublicKey, digest *big.Int, sig *DSASignature) bool {
	if pub == nil || pub.P == nil || pub.Q == nil || pub.G == nil || pub.Y == nil {
		return false
	}
	if pub.P.Sign() <= 0 || pub.Q.Sign() <= 0 || digest == nil {
		return false
	}
	if sig == nil || sig.R == nil || sig.S == nil {
		return false
	}

	if sig.R.Sign() < 1 || sig.R.Cmp(pub.Q) >= 0 {
		return false
	}
	if sig.S.Sign() < 1 || sig.S.Cmp(pub.Q) >= 0 {
		return false
	}

	w, err := fsmath.Invert(sig.S, pub.Q)
	if err != nil {
		return false
	}

	// u1 <- digest * w mod q, u2 <- r * w mod q
	u1 := new(big.Int).Mul(digest, w)
	u1.Mod(u1, pub.Q)
	u2 := new(big.Int).Mul(sig.R, w)
	u2.Mod(u2, pub.Q)

	// v <- (g^u1 * y^u2 mod p) mod q
	gu1, err := fsmath.Modpow(pub.G, u1, pub.P)
	if err != nil {
		return false
	}
	yu2, err := fsmath.Modpow(pub.Y, u2, pub.P)
	if err != nil {
		return false
	}
	v := new(big.Int).Mul(gu1, yu2)
	v.Mod(v, pub.P)
	v.Mod(v, pub.Q)

	return v.Cmp(sig.R) == 0
}

// VerifyMessage hashes msg with the configured digest and verifies sig against it
func VerifyMessage(pub *DSAPublicKey, msg []byte, sig *DSASignature, cfg *Config) bool {
	if pub == nil || pub.Q == nil || pub.Q.Sign() <= 0 {
		return false
	}
	digest, err := HashMessage(msg, pub.Q, cfg)
	if err != nil {
		return false
	}
	return VerifyDigest(pub, digest, sig)
}

func checkPrivateKey(priv *DSAPrivateKey) error {
	if priv == nil || priv.P == nil || priv.Q == nil || priv.G == nil || priv.X == nil {
		return errors.Wrap(ErrInvalidKey, "missing dsa key component")
	}
	if priv.Q.Sign() <= 0 || priv.P.Sign() <= 0 || priv.G.Sign() <= 0 || priv.X.Sign() <= 0 {
		return errors.Wrap(ErrInvalidKey, "dsa key components must be positive")
	}
	return nil
}
