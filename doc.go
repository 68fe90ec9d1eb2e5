/*
Package faultsig implements RSA-CRT signatures and DSA over math/big, together with two classic attacks
on careless implementations of them

# Overview

Both schemes are written out by hand so that the points where real implementations go wrong are exposed:
the mod-p half of a CRT signature can be faulted on purpose, and a DSA signer can be asked to hand back
its ephemeral nonce. Neither of these should ever be done with a real key.

Randomness is never global. Every routine that needs it takes an io.Reader, so a session creates one
source and passes it down:

	random := rand.Reader
	priv, err := faultsig.GenerateRSAKey(random, 1024, nil)

# The Bellcore attack on RSA-CRT

A CRT signer computes sigma_p = m^d mod p and sigma_q = m^d mod q separately and recombines them as

	sigma = A * sigma_p + B * sigma_q (mod n)

where A ≡ 1 (mod p), A ≡ 0 (mod q) and B the other way around. If a single fault corrupts sigma_p only,
the faulty signature still agrees with the genuine one modulo q, so one gcd splits the modulus:

	good, _ := faultsig.Sign(priv, m)
	faulty, _ := faultsig.SignWithFault(priv, m)
	p, q, err := faultsig.Factor(priv.N, good, faulty, nil)

If the two signatures agree modulo n there is nothing to exploit and Factor reports [ErrAttackInconclusive]
rather than the trivial factorization.

# Nonce leakage in DSA

A DSA signature satisfies s * k ≡ H(m) + x * r (mod q). The nonce k is the only unknown besides x, so
anyone who learns it learns the private key:

	sig, k, _ := faultsig.SignDigestLeakNonce(random, priv, digest, nil)
	x, err := faultsig.RecoverKey(priv.Q, sig, k, digest)

Two signatures that reuse a nonce leak it as well, see [RecoverKeyFromRepeatedNonce].

# Sources

	[1] Boneh, DeMillo, Lipton, "On the Importance of Checking Cryptographic Protocols for Faults"
	[2] FIPS 186-4, Digital Signature Standard
*/
package faultsig
