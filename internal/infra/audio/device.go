//go:build portaudio
// +build portaudio

package audio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gordonklaus/portaudio"

	"siren-node/internal/domain"
	"siren-node/internal/infra"
	"siren-node/internal/observe"
)

// Device is the physical audio output. Initialize retries device discovery
// with a fixed delay, preferring an output whose name matches the configured
// hint (typically "usb") and falling back to the system default. A short
// silent self-test confirms the chosen device actually accepts samples.
type Device struct {
	hint     string
	attempts int
	delay    time.Duration
	metrics  *observe.Metrics
	logger   *slog.Logger

	mu     sync.Mutex
	output *portaudio.DeviceInfo

	// initFn is the single-attempt initializer Play uses to recover a
	// device that never came up. Overridable in tests.
	initFn func() error

	ready atomic.Bool
	stop  atomic.Bool
}

func NewDevice(hint string, attempts int, delay time.Duration, metrics *observe.Metrics, logger *slog.Logger) *Device {
	d := &Device{
		hint:     hint,
		attempts: attempts,
		delay:    delay,
		metrics:  metrics,
		logger:   logger,
	}
	d.initFn = d.initOnce
	return d
}

// Ready reports whether the device survived initialization.
func (d *Device) Ready() bool {
	return d.ready.Load()
}

// Initialize discovers and self-tests the output device, retrying on failure.
func (d *Device) Initialize(ctx context.Context) error {
	cfg := infra.FixedRetryConfig(d.attempts, d.delay)
	if err := infra.WithRetry(ctx, cfg, d.initOnce); err != nil {
		d.ready.Store(false)
		return fmt.Errorf("initializing audio device: %w", err)
	}
	return nil
}

func (d *Device) initOnce() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	// Tear down any half-initialized state from a previous attempt.
	portaudio.Terminate()
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("initializing portaudio: %w", err)
	}

	devices, err := portaudio.Devices()
	if err != nil {
		return fmt.Errorf("enumerating devices: %w", err)
	}

	var output *portaudio.DeviceInfo
	for _, dev := range devices {
		if dev.MaxOutputChannels > 0 && strings.Contains(strings.ToLower(dev.Name), strings.ToLower(d.hint)) {
			output = dev
			break
		}
	}
	if output != nil {
		d.logger.Info("using matched audio device", "device", output.Name, "hint", d.hint)
	} else {
		output, err = portaudio.DefaultOutputDevice()
		if err != nil {
			return fmt.Errorf("no output device: %w", err)
		}
		d.logger.Warn("no device matched hint, using default output",
			"hint", d.hint, "device", output.Name)
	}
	d.output = output

	if err := d.selfTest(); err != nil {
		return fmt.Errorf("device self-test: %w", err)
	}

	d.ready.Store(true)
	d.logger.Info("audio device initialized", "device", output.Name)
	return nil
}

// selfTest plays ~50ms of silence through the chosen device.
func (d *Device) selfTest() error {
	rate := int(d.output.DefaultSampleRate)
	if rate <= 0 {
		rate = 44100
	}

	buf := make([]int16, rate/20)
	params := portaudio.HighLatencyParameters(nil, d.output)
	params.Output.Channels = 1
	params.SampleRate = float64(rate)
	params.FramesPerBuffer = len(buf)

	stream, err := portaudio.OpenStream(params, &buf)
	if err != nil {
		return fmt.Errorf("opening stream: %w", err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return fmt.Errorf("starting stream: %w", err)
	}
	if err := stream.Write(); err != nil && !errors.Is(err, portaudio.OutputUnderflowed) {
		return fmt.Errorf("writing samples: %w", err)
	}
	return stream.Stop()
}

// Play decodes wav and writes it to the device, looping loops times.
// domain.LoopForever loops until Stop. It blocks until playback completes,
// Stop is called, or ctx is cancelled; a stream error triggers one
// best-effort reinitialization before the error is returned.
func (d *Device) Play(ctx context.Context, wav []byte, loops int) error {
	if !d.ready.Load() {
		// Startup init may have failed; each command gets one recovery
		// attempt so a degraded siren is not stuck that way forever.
		d.logger.Warn("audio device not ready, attempting recovery")
		d.metrics.DeviceReinits.Add(ctx, 1)
		if err := d.initFn(); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrDeviceUnavailable, err)
		}
		if !d.ready.Load() {
			return domain.ErrDeviceUnavailable
		}
	}

	clip, err := DecodeWAV(wav)
	if err != nil {
		return fmt.Errorf("decoding clip: %w", err)
	}

	d.stop.Store(false)
	if err := d.playClip(ctx, clip, loops); err != nil {
		d.logger.Error("playback failed, reinitializing device", "error", err)
		d.metrics.DeviceReinits.Add(ctx, 1)
		if rerr := d.Initialize(ctx); rerr != nil {
			d.logger.Error("device reinitialization failed", "error", rerr)
		}
		return fmt.Errorf("playing clip: %w", err)
	}
	return nil
}

func (d *Device) playClip(ctx context.Context, clip Clip, loops int) error {
	samples := bytesToSamples(clip.PCM)
	if len(samples) == 0 {
		return nil
	}

	const framesPerBuffer = 1024
	buf := make([]int16, framesPerBuffer*clip.Channels)

	d.mu.Lock()
	output := d.output
	d.mu.Unlock()

	params := portaudio.HighLatencyParameters(nil, output)
	params.Output.Channels = clip.Channels
	params.SampleRate = float64(clip.SampleRate)
	params.FramesPerBuffer = framesPerBuffer

	stream, err := portaudio.OpenStream(params, &buf)
	if err != nil {
		return fmt.Errorf("opening stream: %w", err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return fmt.Errorf("starting stream: %w", err)
	}
	defer stream.Stop()

	for iter := 0; loops < 0 || iter < loops; iter++ {
		for pos := 0; pos < len(samples); pos += len(buf) {
			if d.stop.Load() {
				return nil
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			n := copy(buf, samples[pos:])
			for i := n; i < len(buf); i++ {
				buf[i] = 0
			}
			if err := stream.Write(); err != nil && !errors.Is(err, portaudio.OutputUnderflowed) {
				return fmt.Errorf("writing samples: %w", err)
			}
		}
	}
	return nil
}

// Stop interrupts an in-flight Play. Safe to call from any goroutine and
// when nothing is playing.
func (d *Device) Stop() error {
	d.stop.Store(true)
	return nil
}

// Close releases portaudio. The device is unusable afterwards.
func (d *Device) Close() error {
	d.ready.Store(false)
	return portaudio.Terminate()
}
