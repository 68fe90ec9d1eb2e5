package faultsig

import (
	"bytes"
	"encoding/asn1"
	"encoding/pem"
	"fmt"
	"math/big"

	"github.com/pkg/errors"
)

const (
	faultPEMType = "RSA FAULT TRANSCRIPT"
	noncePEMType = "DSA NONCE TRANSCRIPT"
)

// A FaultTranscript is everything a Bellcore attacker observes: the public modulus and a genuine
// and a faulty signature over the same message
type FaultTranscript struct {
	N      *big.Int
	Good   *big.Int
	Faulty *big.Int
}

// A NonceTranscript is what leaks when a DSA signer exposes its nonce
type NonceTranscript struct {
	Q      *big.Int
	R      *big.Int
	S      *big.Int
	K      *big.Int // leaked nonce
	Digest *big.Int // H(m) mod Q
}

// Factor runs the Bellcore attack on the transcript
func (ft *FaultTranscript) Factor(cfg *Config) (p *big.Int, q *big.Int, err error) {
	return Factor(ft.N, ft.Good, ft.Faulty, cfg)
}

// RecoverKey runs the nonce-leak attack on the transcript
func (nt *NonceTranscript) RecoverKey(cfg *Config) (*big.Int, error) {
	cfg = configOrDefault(cfg)
	x, err := RecoverKey(nt.Q, &DSASignature{R: nt.R, S: nt.S}, nt.K, nt.Digest)
	if err != nil {
		cfg.Logger.Warn("nonce transcript did not yield a key", "err", err)
		return nil, err
	}
	cfg.Logger.Info("recovered dsa private key from leaked nonce", "bits", nt.Q.BitLen())
	return x, nil
}

// returns a PEM encoding of the transcript
func (ft *FaultTranscript) EncodePEM() (string, error) {
	if ft.N == nil || ft.Good == nil || ft.Faulty == nil {
		return "", errors.Wrap(ErrInvalidTranscript, "missing field")
	}
	return encodePEM(faultPEMType, *ft)
}

// returns a PEM encoding of the transcript
func (nt *NonceTranscript) EncodePEM() (string, error) {
	if nt.Q == nil || nt.R == nil || nt.S == nil || nt.K == nil || nt.Digest == nil {
		return "", errors.Wrap(ErrInvalidTranscript, "missing field")
	}
	return encodePEM(noncePEMType, *nt)
}

// DecodeFaultTranscript returns transcript data from a PEM encoding
func DecodeFaultTranscript(encoded string) (*FaultTranscript, error) {
	var ft FaultTranscript
	if err := decodePEM(encoded, faultPEMType, &ft); err != nil {
		return nil, err
	}
	if ft.N.Sign() <= 0 {
		return nil, errors.Wrap(ErrInvalidTranscript, "modulus must be positive")
	}
	return &ft, nil
}

// DecodeNonceTranscript returns transcript data from a PEM encoding
func DecodeNonceTranscript(encoded string) (*NonceTranscript, error) {
	var nt NonceTranscript
	if err := decodePEM(encoded, noncePEMType, &nt); err != nil {
		return nil, err
	}
	if nt.Q.Sign() <= 0 {
		return nil, errors.Wrap(ErrInvalidTranscript, "group order must be positive")
	}
	return &nt, nil
}

func encodePEM(pemType string, v interface{}) (string, error) {
	b, err := asn1.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to DER-encode: %s", err)
	}

	buf := new(bytes.Buffer)
	err = pem.Encode(buf, &pem.Block{
		Type:  pemType,
		Bytes: b,
	})
	if err != nil {
		return "", fmt.Errorf("failed to PEM-encode: %s", err)
	}

	return buf.String(), nil
}

func decodePEM(encoded string, pemType string, v interface{}) error {
	block, rest := pem.Decode([]byte(encoded))
	if block == nil || block.Type != pemType || len(bytes.TrimSpace(rest)) > 0 {
		return errors.Wrapf(ErrInvalidTranscript, "failed to decode PEM block containing %s", pemType)
	}

	rest, err := asn1.Unmarshal(block.Bytes, v)
	if err != nil {
		return errors.Wrap(ErrInvalidTranscript, err.Error())
	}
	if len(rest) > 0 {
		return errors.Wrap(ErrInvalidTranscript, "trailing data after transcript")
	}
	return nil
}
