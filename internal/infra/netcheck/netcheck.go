// Package netcheck decides whether the uplink a command requires is actually
// up, by pinging a probe target through specific network interfaces.
package netcheck

import (
	"context"
	"log/slog"
	"os/exec"
	"strconv"

	"siren-node/internal/domain"
)

// probeFunc reports whether the probe target answers through iface.
type probeFunc func(ctx context.Context, iface string) bool

// Gate checks connection-type requirements against live interfaces. A wired
// requirement passes when any of the wired interfaces reaches the target; a
// cellular requirement checks the cellular interface only. "any" skips
// probing entirely.
type Gate struct {
	wiredIfaces   []string
	cellularIface string
	logger        *slog.Logger
	probe         probeFunc
}

func NewGate(target string, timeoutSec int, wiredIfaces []string, cellularIface string, logger *slog.Logger) *Gate {
	return &Gate{
		wiredIfaces:   wiredIfaces,
		cellularIface: cellularIface,
		logger:        logger,
		probe: func(ctx context.Context, iface string) bool {
			return pingProbe(ctx, iface, target, timeoutSec)
		},
	}
}

// Allowed reports whether the required connection type is available. An
// unrecognized type is allowed with a warning, so a fleet protocol extension
// never silences sirens running older firmware.
func (g *Gate) Allowed(ctx context.Context, required domain.ConnectionType) bool {
	switch required {
	case domain.ConnectionAny, "":
		return true
	case domain.ConnectionWired:
		for _, iface := range g.wiredIfaces {
			if g.probe(ctx, iface) {
				return true
			}
		}
		return false
	case domain.ConnectionCellular:
		return g.probe(ctx, g.cellularIface)
	default:
		g.logger.Warn("unknown connection type, allowing", "connectionType", required)
		return true
	}
}

// pingProbe sends a single ICMP echo through iface. Interface binding needs
// the system ping binary; raw sockets would require extra capabilities.
func pingProbe(ctx context.Context, iface, target string, timeoutSec int) bool {
	path, err := exec.LookPath("ping")
	if err != nil {
		return false
	}
	cmd := exec.CommandContext(ctx, path,
		"-I", iface,
		"-c", "1",
		"-W", strconv.Itoa(timeoutSec),
		target,
	)
	return cmd.Run() == nil
}
