package faultsig

import (
	"github.com/pkg/errors"

	fsmath "github.com/bastionzero/faultsig/math"
)

var (
	// ErrNotInvertible is returned when a modular inverse is requested for a non-unit
	ErrNotInvertible = fsmath.ErrNotInvertible

	// ErrAttackInconclusive means an attack's precondition did not hold, e.g. the two signatures
	// handed to Factor are equal modulo N, so nothing was recovered
	ErrAttackInconclusive = errors.New("attack inconclusive")

	// ErrKeyGenExhausted is returned when Config.MaxAttempts is set and a key generation loop hits it
	ErrKeyGenExhausted = errors.New("key generation exceeded the maximum number of attempts")

	// ErrNonceExhausted is returned when Config.MaxAttempts is set and no usable DSA nonce was found
	ErrNonceExhausted = errors.New("signing exceeded the maximum number of nonce attempts")

	// ErrDegenerateSignature is returned only when a caller-supplied nonce produces r = 0 or s = 0
	ErrDegenerateSignature = errors.New("signature component is zero")

	ErrMessageOutOfRange = errors.New("message representative out of range")
	ErrInvalidKey        = errors.New("invalid key")
	ErrInvalidParameters = errors.New("invalid domain parameters")
	ErrInvalidTranscript = errors.New("invalid transcript")
)
