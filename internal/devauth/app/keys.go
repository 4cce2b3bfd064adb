package app

import (
	"fmt"
	"log/slog"

	"github.com/safescrow/dashboard/pkg/cryptox"
	"github.com/safescrow/dashboard/pkg/jwtx"
)

// InitAuthKeys loads (or creates) the Ed25519 signing key and returns a
// signer and a verifier trusting it. Without a key file every restart
// invalidates outstanding access tokens.
func InitAuthKeys(cfg Config, logger *slog.Logger) (*jwtx.EdDSASigner, jwtx.Verifier, error) {
	pemKey, created, err := cryptox.LoadOrCreateEd25519Key(cfg.KeyFile)
	if err != nil {
		return nil, nil, err
	}

	signer, err := jwtx.NewSignerEdDSA(cfg.KeyID, pemKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load signing key: %w", err)
	}

	keys := jwtx.NewKeySet()
	keys.AddSigner(signer)

	switch {
	case cfg.KeyFile == "":
		logger.Warn("using ephemeral signing key; tokens will not survive a restart", "kid", cfg.KeyID)
	case created:
		logger.Info("generated signing key", "kid", cfg.KeyID, "path", cfg.KeyFile)
	default:
		logger.Info("loaded signing key", "kid", cfg.KeyID, "path", cfg.KeyFile)
	}

	return signer, jwtx.NewVerifierEdDSA(keys, cfg.Issuer, 0), nil
}
