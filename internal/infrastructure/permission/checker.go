package permission

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/execution-hub/wifictl/internal/domain/lock"
)

// Checker grants the device-stats permission to callers presenting the
// privileged token. It implements lock.PermissionChecker.
type Checker struct {
	hash   []byte
	logger zerolog.Logger
}

// NewChecker takes the bcrypt hash of the privileged token. An empty hash
// denies every caller.
func NewChecker(hash string, logger zerolog.Logger) *Checker {
	return &Checker{
		hash:   []byte(strings.TrimSpace(hash)),
		logger: logger.With().Str("component", "permission").Logger(),
	}
}

// IsPrivileged reports whether token matches the privileged token.
func (c *Checker) IsPrivileged(token string) bool {
	if len(c.hash) == 0 || token == "" {
		return false
	}
	if err := bcrypt.CompareHashAndPassword(c.hash, []byte(token)); err != nil {
		if err != bcrypt.ErrMismatchedHashAndPassword {
			c.logger.Warn().Err(err).Msg("privileged token hash unusable")
		}
		return false
	}
	return true
}

func (c *Checker) CanUpdateDeviceStats(ctx context.Context, caller lock.Caller) bool {
	ok := c.IsPrivileged(caller.Credential)
	if !ok {
		c.logger.Debug().Int("uid", caller.UID).Msg("device stats permission denied")
	}
	return ok
}

// HashToken produces a hash suitable for PRIVILEGED_TOKEN_HASH.
func HashToken(token string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
