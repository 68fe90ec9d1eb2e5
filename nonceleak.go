package faultsig

import (
	"math/big"

	"github.com/pkg/errors"

	fsmath "github.com/bastionzero/faultsig/math"
)

// RecoverKey recovers the DSA private key from one signature and the nonce k that produced it.
// Rearranging s * k ≡ digest + x * r (mod q) gives
//
//	x = (s * k - digest) * r^-1 mod q
func RecoverKey(q *big.Int, sig *DSASignature, k *big.Int, digest *big.Int) (*big.Int, error) {
	if q == nil || q.Sign() <= 0 || !complete(sig) || k == nil || digest == nil {
		return nil, errors.Wrap(ErrInvalidParameters, "q, signature, nonce and digest are required")
	}

	rInv, err := fsmath.Invert(sig.R, q)
	if err != nil {
		return nil, err
	}

	x := new(big.Int).Mul(sig.S, k)
	x.Sub(x, digest)
	x.Mul(x, rInv)
	return x.Mod(x, q), nil
}

// RecoverNonce finds the nonce shared by two signatures made with the same k over different digests.
// Both signatures then have the same r, and
//
//	k = (digest1 - digest2) * (s1 - s2)^-1 mod q
func RecoverNonce(q *big.Int, sig1 *DSASignature, digest1 *big.Int, sig2 *DSASignature, digest2 *big.Int) (*big.Int, error) {
	if q == nil || q.Sign() <= 0 || digest1 == nil || digest2 == nil || !complete(sig1) || !complete(sig2) {
		return nil, errors.Wrap(ErrInvalidParameters, "q, both signatures and both digests are required")
	}
	if sig1.R.Cmp(sig2.R) != 0 {
		return nil, errors.Wrap(ErrAttackInconclusive, "signatures do not share a nonce")
	}

	ds := new(big.Int).Sub(sig1.S, sig2.S)
	ds.Mod(ds, q)
	if ds.Sign() == 0 {
		return nil, errors.Wrap(ErrAttackInconclusive, "signatures are identical")
	}
	dsInv, err := fsmath.Invert(ds, q)
	if err != nil {
		return nil, err
	}

	k := new(big.Int).Sub(digest1, digest2)
	k.Mul(k, dsInv)
	return k.Mod(k, q), nil
}

// RecoverKeyFromRepeatedNonce chains RecoverNonce and RecoverKey
func RecoverKeyFromRepeatedNonce(q *big.Int, sig1 *DSASignature, digest1 *big.Int, sig2 *DSASignature, digest2 *big.Int, cfg *Config) (*big.Int, error) {
	cfg = configOrDefault(cfg)

	k, err := RecoverNonce(q, sig1, digest1, sig2, digest2)
	if err != nil {
		cfg.Logger.Warn("could not recover repeated nonce", "err", err)
		return nil, err
	}

	x, err := RecoverKey(q, sig1, k, digest1)
	if err != nil {
		return nil, err
	}

	cfg.Logger.Info("recovered dsa private key from a repeated nonce")
	return x, nil
}

func complete(sig *DSASignature) bool {
	return sig != nil && sig.R != nil && sig.S != nil
}
