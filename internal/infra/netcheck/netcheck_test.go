package netcheck

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"siren-node/internal/domain"
)

func testGate(up map[string]bool, probed *[]string) *Gate {
	return &Gate{
		wiredIfaces:   []string{"eth0", "wlan0"},
		cellularIface: "ppp0",
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		probe: func(_ context.Context, iface string) bool {
			*probed = append(*probed, iface)
			return up[iface]
		},
	}
}

func TestGate_AnySkipsProbing(t *testing.T) {
	var probed []string
	g := testGate(nil, &probed)

	if !g.Allowed(context.Background(), domain.ConnectionAny) {
		t.Error("any must always be allowed")
	}
	if !g.Allowed(context.Background(), "") {
		t.Error("missing type must be treated as any")
	}
	if len(probed) != 0 {
		t.Errorf("probed %v, want no probes for any", probed)
	}
}

func TestGate_Wired(t *testing.T) {
	var probed []string
	g := testGate(map[string]bool{"wlan0": true}, &probed)

	if !g.Allowed(context.Background(), domain.ConnectionWired) {
		t.Error("wired must pass when one wired interface is up")
	}
	if len(probed) != 2 || probed[0] != "eth0" || probed[1] != "wlan0" {
		t.Errorf("probed %v, want [eth0 wlan0]", probed)
	}

	probed = nil
	down := testGate(nil, &probed)
	if down.Allowed(context.Background(), domain.ConnectionWired) {
		t.Error("wired must fail with all wired interfaces down")
	}
}

func TestGate_Cellular(t *testing.T) {
	var probed []string
	g := testGate(map[string]bool{"ppp0": true}, &probed)

	if !g.Allowed(context.Background(), domain.ConnectionCellular) {
		t.Error("cellular must pass when the cellular interface is up")
	}
	if len(probed) != 1 || probed[0] != "ppp0" {
		t.Errorf("probed %v, want [ppp0]", probed)
	}

	probed = nil
	down := testGate(map[string]bool{"eth0": true}, &probed)
	if down.Allowed(context.Background(), domain.ConnectionCellular) {
		t.Error("cellular must not pass on a wired-only uplink")
	}
}

func TestGate_UnknownTypeIsPermissive(t *testing.T) {
	var probed []string
	g := testGate(nil, &probed)

	if !g.Allowed(context.Background(), "satellite") {
		t.Error("unknown connection type must be allowed")
	}
	if len(probed) != 0 {
		t.Errorf("probed %v, want no probes for unknown type", probed)
	}
}
