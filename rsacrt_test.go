package faultsig

import (
	"fmt"
	"math/big"

	"github.com/pkg/errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	fsmath "github.com/bastionzero/faultsig/math"
)

// draws a message representative in [0, n)
func randomMessage(n *big.Int) *big.Int {
	return new(big.Int).Rand(testRand, n)
}

var _ = Describe("RSA-CRT", func() {

	Context("Key generation", func() {
		for _, bits := range []int{14, 32, 64, 256} {
			bits := bits

			It(fmt.Sprintf("Produces a consistent %d-bit key", bits), func() {
				priv, err := GenerateRSAKey(testRand, bits, testConfig)
				Expect(err).To(BeNil(), fmt.Sprintf("failed to generate %d-bit key: %s", bits, err))
				Expect(priv.Validate()).To(Succeed())

				Expect(priv.P.ProbablyPrime(25)).To(BeTrue())
				Expect(priv.Q.ProbablyPrime(25)).To(BeTrue())
				Expect(priv.P.Cmp(priv.Q)).NotTo(BeZero(), "primes must be distinct")
				Expect(fsmath.GCD(priv.E, priv.Phi).Cmp(bigOne)).To(BeZero(), "e must be coprime to phi")
				Expect(priv.E.Cmp(bigOne)).To(BeNumerically(">", 0), "e must be greater than 1")
			})
		}

		It("Rejects tiny moduli", func() {
			_, err := GenerateRSAKey(testRand, 4, testConfig)
			Expect(errors.Is(err, ErrInvalidParameters)).To(BeTrue())
		})

		It("Gives up with ErrKeyGenExhausted when the retry cap is hit", func() {
			// a zero reader makes both prime draws identical forever
			cfg := &Config{MaxAttempts: 3}
			_, err := GenerateRSAKey(zeroReader{}, 32, cfg)
			Expect(errors.Is(err, ErrKeyGenExhausted)).To(BeTrue(), fmt.Sprintf("unexpected error: %v", err))
		})
	})

	Context("CRT coefficients", func() {
		It("Satisfy A + B ≡ 1 (mod n), A ≡ 0 (mod q), B ≡ 0 (mod p)", func() {
			for i := 0; i < 10; i++ {
				priv, err := GenerateRSAKey(testRand, 64, testConfig)
				Expect(err).To(BeNil())

				A, B, err := CRTValues(priv.P, priv.Q)
				Expect(err).To(BeNil())

				sum := new(big.Int).Add(A, B)
				Expect(fsmath.CongruentModN(sum, bigOne, priv.N)).To(BeTrue())
				Expect(fsmath.CongruentModN(A, bigZero, priv.Q)).To(BeTrue())
				Expect(fsmath.CongruentModN(B, bigZero, priv.P)).To(BeTrue())
				Expect(fsmath.CongruentModN(A, bigOne, priv.P)).To(BeTrue())
				Expect(fsmath.CongruentModN(B, bigOne, priv.Q)).To(BeTrue())
			}
		})

		It("Fails for a repeated prime", func() {
			_, _, err := CRTValues(big.NewInt(11), big.NewInt(11))
			Expect(errors.Is(err, ErrNotInvertible)).To(BeTrue())
		})
	})

	Context("Signing", Ordered, func() {
		var priv *RSAPrivateKey

		BeforeAll(func() {
			var err error
			priv, err = GenerateRSAKey(testRand, 128, testConfig)
			Expect(err).To(BeNil())
		})

		It("Produces signatures that verify", func() {
			for i := 0; i < 50; i++ {
				m := randomMessage(priv.N)
				sigma, err := Sign(priv, m)
				Expect(err).To(BeNil())

				Expect(sigma.Cmp(priv.N)).To(BeNumerically("<", 0))
				Expect(VerifyRSA(&priv.RSAPublicKey, m, sigma)).To(BeTrue(), fmt.Sprintf("signature of %v did not verify", m))

				// sigma^e mod n recovers m exactly
				recovered, err := fsmath.Modpow(sigma, priv.E, priv.N)
				Expect(err).To(BeNil())
				Expect(recovered.Cmp(m)).To(BeZero())

				// and matches plain m^d mod n
				Expect(sigma.Cmp(new(big.Int).Exp(m, priv.D, priv.N))).To(BeZero())
			}
		})

		It("Produces faulty signatures that do not verify", func() {
			for i := 0; i < 50; i++ {
				m := randomMessage(priv.N)
				faulty, err := SignWithFault(priv, m)
				Expect(err).To(BeNil())
				Expect(VerifyRSA(&priv.RSAPublicKey, m, faulty)).To(BeFalse(), "faulty signature must not verify")
			}
		})

		It("Confines the fault to the mod-p branch", func() {
			for i := 0; i < 50; i++ {
				m := randomMessage(priv.N)
				good, err := Sign(priv, m)
				Expect(err).To(BeNil())
				faulty, err := SignWithFault(priv, m)
				Expect(err).To(BeNil())

				Expect(good.Cmp(faulty)).NotTo(BeZero())
				Expect(fsmath.CongruentModN(good, faulty, priv.Q)).To(BeTrue(), "difference must be divisible by q")
				Expect(fsmath.CongruentModN(good, faulty, priv.P)).To(BeFalse(), "difference must not be divisible by p")
			}
		})

		It("Rejects messages outside [0, n)", func() {
			_, err := Sign(priv, priv.N)
			Expect(errors.Is(err, ErrMessageOutOfRange)).To(BeTrue())

			_, err = Sign(priv, big.NewInt(-1))
			Expect(errors.Is(err, ErrMessageOutOfRange)).To(BeTrue())

			Expect(VerifyRSA(&priv.RSAPublicKey, priv.N, bigZero)).To(BeFalse())
		})

		It("Rejects an incomplete key", func() {
			_, err := Sign(&RSAPrivateKey{}, bigOne)
			Expect(errors.Is(err, ErrInvalidKey)).To(BeTrue())
			Expect((&RSAPrivateKey{}).Validate()).NotTo(Succeed())
		})
	})
})
