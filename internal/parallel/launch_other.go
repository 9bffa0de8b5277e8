//go:build !unix

package parallel

import (
	"context"

	"github.com/nicholasbl/amrex/internal/errors"
)

// Launch is unavailable without unix process groups.
func Launch(ctx context.Context, cfg LaunchConfig) error {
	return errors.ErrLaunchUnsupported
}
