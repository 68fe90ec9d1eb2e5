package faultsig

import (
	"crypto/sha256"
	"hash"

	log "github.com/xuperchain/log15"
	"golang.org/x/crypto/sha3"

	"github.com/pkg/errors"
)

const (
	DigestSHA256   = "sha256"
	DigestSHA3_256 = "sha3-256"

	// 25 Miller-Rabin rounds bound the error probability by 2^-50
	defaultPrimalityRounds = 25
)

// Config carries the tunables shared by key generation, signing and the attacks.
// A nil *Config anywhere in this package means DefaultConfig().
type Config struct {
	// PrimalityRounds is the number of Miller-Rabin rounds for every primality test
	PrimalityRounds int
	// MaxAttempts caps every retry loop. Zero keeps them unbounded
	MaxAttempts int
	// Digest names the hash used by SignMessage and VerifyMessage
	Digest string
	Logger log.Logger
}

// DefaultConfig returns a config with unbounded retries, SHA-256 digests and a silent logger
func DefaultConfig() *Config {
	logger := log.Root().New("module", "faultsig")
	logger.SetHandler(log.DiscardHandler())

	return &Config{
		PrimalityRounds: defaultPrimalityRounds,
		MaxAttempts:     0,
		Digest:          DigestSHA256,
		Logger:          logger,
	}
}

func configOrDefault(cfg *Config) *Config {
	if cfg == nil {
		return DefaultConfig()
	}

	// fill in anything the caller left zero
	c := *cfg
	if c.PrimalityRounds <= 0 {
		c.PrimalityRounds = defaultPrimalityRounds
	}
	if c.Digest == "" {
		c.Digest = DigestSHA256
	}
	if c.Logger == nil {
		c.Logger = DefaultConfig().Logger
	}
	return &c
}

// exhausted reports whether attempt has passed the configured cap
func (c *Config) exhausted(attempt int) bool {
	return c.MaxAttempts > 0 && attempt > c.MaxAttempts
}

// NewHash returns a fresh hash for the configured digest
func (c *Config) NewHash() (hash.Hash, error) {
	switch c.Digest {
	case DigestSHA256, "":
		return sha256.New(), nil
	case DigestSHA3_256:
		return sha3.New256(), nil
	default:
		return nil, errors.Errorf("unrecognized digest: %q", c.Digest)
	}
}
