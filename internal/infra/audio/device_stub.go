//go:build !portaudio
// +build !portaudio

package audio

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"siren-node/internal/domain"
	"siren-node/internal/observe"
)

// Device stub when portaudio is not available
type Device struct {
	logger *slog.Logger
}

func NewDevice(hint string, attempts int, delay time.Duration, metrics *observe.Metrics, logger *slog.Logger) *Device {
	return &Device{logger: logger}
}

func (d *Device) Ready() bool {
	return false
}

func (d *Device) Initialize(_ context.Context) error {
	return fmt.Errorf("audio device not available: rebuild with -tags portaudio")
}

func (d *Device) Play(_ context.Context, _ []byte, _ int) error {
	return domain.ErrDeviceUnavailable
}

func (d *Device) Stop() error {
	return nil
}

func (d *Device) Close() error {
	return nil
}
