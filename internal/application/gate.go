package application

import (
	"context"

	"siren-node/internal/domain"
)

// ConnectivityGate decides whether a command may proceed given its required
// connection type. Implementations probe network interfaces; the "any" type
// must pass without probing.
type ConnectivityGate interface {
	Allowed(ctx context.Context, ct domain.ConnectionType) bool
}

// AckEmitter sends a named acknowledgement event carrying this device's
// identifier back to the controller. Failures are logged by callers, never
// treated as fatal to the playback pipeline.
type AckEmitter interface {
	Emit(ctx context.Context, event string) error
}
