package faultsig

import (
	"fmt"
	"math/big"

	"github.com/pkg/errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Transcripts", func() {

	It("Carries a fault transcript through PEM to a successful factorization", func() {
		priv, err := GenerateRSAKey(testRand, 128, testConfig)
		Expect(err).To(BeNil())

		m := randomMessage(priv.N)
		good, err := Sign(priv, m)
		Expect(err).To(BeNil())
		faulty, err := SignWithFault(priv, m)
		Expect(err).To(BeNil())

		encoded, err := (&FaultTranscript{N: priv.N, Good: good, Faulty: faulty}).EncodePEM()
		Expect(err).To(BeNil(), fmt.Sprintf("failed to encode transcript: %s", err))
		Expect(encoded).To(HavePrefix("-----BEGIN RSA FAULT TRANSCRIPT-----"))

		decoded, err := DecodeFaultTranscript(encoded)
		Expect(err).To(BeNil(), fmt.Sprintf("failed to decode transcript: %s", err))

		p, q, err := decoded.Factor(testConfig)
		Expect(err).To(BeNil())
		Expect(sameFactors(p, q, priv.P, priv.Q)).To(BeTrue())
	})

	It("Carries a nonce transcript through PEM to the private key", func() {
		priv, err := KeyGen(testRand, testL, testN, testConfig)
		Expect(err).To(BeNil())

		digest, err := HashMessage([]byte("TEST MESSAGE"), priv.Q, testConfig)
		Expect(err).To(BeNil())
		sig, k, err := SignDigestLeakNonce(testRand, priv, digest, testConfig)
		Expect(err).To(BeNil())

		encoded, err := (&NonceTranscript{Q: priv.Q, R: sig.R, S: sig.S, K: k, Digest: digest}).EncodePEM()
		Expect(err).To(BeNil())

		decoded, err := DecodeNonceTranscript(encoded)
		Expect(err).To(BeNil())

		x, err := decoded.RecoverKey(testConfig)
		Expect(err).To(BeNil())
		Expect(x.Cmp(priv.X)).To(BeZero())
	})

	It("Surfaces a transcript whose r has no inverse", func() {
		nt := &NonceTranscript{Q: big.NewInt(7), R: big.NewInt(14), S: big.NewInt(3), K: big.NewInt(2), Digest: big.NewInt(5)}
		_, err := nt.RecoverKey(nil)
		Expect(errors.Is(err, ErrNotInvertible)).To(BeTrue(), fmt.Sprintf("unexpected error: %v", err))
	})

	It("Refuses to encode an incomplete transcript", func() {
		_, err := (&FaultTranscript{N: big.NewInt(15)}).EncodePEM()
		Expect(errors.Is(err, ErrInvalidTranscript)).To(BeTrue())

		_, err = (&NonceTranscript{}).EncodePEM()
		Expect(errors.Is(err, ErrInvalidTranscript)).To(BeTrue())
	})

	It("Rejects a transcript of the wrong kind", func() {
		encoded, err := (&FaultTranscript{N: big.NewInt(15), Good: big.NewInt(4), Faulty: big.NewInt(7)}).EncodePEM()
		Expect(err).To(BeNil())

		_, err = DecodeNonceTranscript(encoded)
		Expect(errors.Is(err, ErrInvalidTranscript)).To(BeTrue())
	})

	It("Rejects garbage", func() {
		_, err := DecodeFaultTranscript("not a transcript")
		Expect(errors.Is(err, ErrInvalidTranscript)).To(BeTrue())

		garbled := "-----BEGIN RSA FAULT TRANSCRIPT-----\nAAAA\n-----END RSA FAULT TRANSCRIPT-----\n"
		_, err = DecodeFaultTranscript(garbled)
		Expect(errors.Is(err, ErrInvalidTranscript)).To(BeTrue())
	})

	It("Rejects trailing data", func() {
		encoded, err := (&FaultTranscript{N: big.NewInt(15), Good: big.NewInt(4), Faulty: big.NewInt(7)}).EncodePEM()
		Expect(err).To(BeNil())

		_, err = DecodeFaultTranscript(encoded + encoded)
		Expect(errors.Is(err, ErrInvalidTranscript)).To(BeTrue())
	})
})
