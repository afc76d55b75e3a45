package app

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sitecms/sitecms/pkg/crypto"
)

const sessionSecretBytes = 48

// ErrSharedRealmSecret is returned when both realms are configured with the same secret.
var ErrSharedRealmSecret = errors.New("config: user and admin session secrets must differ")

// ApplyRuntimeDefaults ensures realm secrets are populated even when no configuration file is supplied.
// It returns the keys that were generated so callers can log the event without exposing values.
// Generated secrets do not survive a restart, so every session is invalidated on reboot.
func ApplyRuntimeDefaults(cfg *Config) (map[string]bool, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	generated := make(map[string]bool)

	for key, secret := range map[string]*string{
		"auth.user.secret":  &cfg.Auth.User.Secret,
		"auth.admin.secret": &cfg.Auth.Admin.Secret,
	} {
		if strings.TrimSpace(*secret) != "" {
			continue
		}
		value, err := crypto.GenerateToken(sessionSecretBytes)
		if err != nil {
			return nil, fmt.Errorf("generate %s: %w", key, err)
		}
		*secret = value
		generated[key] = true
	}

	if cfg.Auth.User.Secret == cfg.Auth.Admin.Secret {
		return nil, ErrSharedRealmSecret
	}

	return generated, nil
}
