package ports

import (
	"context"

	"github.com/bnema/obsidian-launcher/internal/domain"
)

// IdentityProvider exchanges a user sign-in for a playable account
// credential. One call is one sign-in attempt.
type IdentityProvider interface {
	Authenticate(ctx context.Context) (domain.Credential, error)
}
