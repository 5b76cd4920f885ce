package application

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"siren-node/internal/domain"
	"siren-node/internal/observe"
)

// Controller is the siren state machine. At most one playback sequence runs
// at a time; a playback command arriving while one is active is rejected
// with domain.ErrBusy, never queued. Every exit path, success or failure,
// returns the controller to idle.
type Controller struct {
	assetDir   string
	speller    Speller
	translator Translator
	mixer      Mixer
	player     Player
	acks       AckEmitter
	metrics    *observe.Metrics
	logger     *slog.Logger

	playing atomic.Bool
}

// PlayOptions carries the per-command playback parameters.
type PlayOptions struct {
	AlertType  string
	Language   string
	GapSeconds int
	Frequency  int
}

func NewController(
	assetDir string,
	speller Speller,
	translator Translator,
	mixer Mixer,
	player Player,
	acks AckEmitter,
	metrics *observe.Metrics,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		assetDir:   assetDir,
		speller:    speller,
		translator: translator,
		mixer:      mixer,
		player:     player,
		acks:       acks,
		metrics:    metrics,
		logger:     logger,
	}
}

// Playing reports whether a playback sequence is currently active.
func (c *Controller) Playing() bool {
	return c.playing.Load()
}

// PlayMessage runs one full playback cycle: ack-on, alarm tone, then for a
// non-empty message the normalize → translate → synthesize → merge pipeline
// and playback of the merged stream. An empty message plays the alarm only.
func (c *Controller) PlayMessage(ctx context.Context, message string, opts PlayOptions) error {
	if !c.playing.CompareAndSwap(false, true) {
		c.logger.Info("already playing audio, ignoring new request")
		c.metrics.CommandsRejected.Add(ctx, 1,
			metric.WithAttributes(attribute.String("reason", "busy")))
		return domain.ErrBusy
	}
	defer c.playing.Store(false)

	start := time.Now()
	outcome := "ok"
	defer func() {
		c.metrics.PlaybackCycles.Add(ctx, 1,
			metric.WithAttributes(attribute.String("outcome", outcome)))
		c.metrics.PlaybackDuration.Record(ctx, time.Since(start).Seconds())
	}()

	c.emit(ctx, domain.EventAckOn)

	alarmPath := filepath.Join(c.assetDir, opts.AlertType+"-alarm.wav")
	alarm, err := os.ReadFile(alarmPath)
	if err != nil {
		outcome = "asset_missing"
		c.logger.Error("alarm asset not found", "path", alarmPath, "error", err)
		return fmt.Errorf("%w: %s", domain.ErrAssetMissing, alarmPath)
	}

	c.logger.Info("playing alarm", "alertType", opts.AlertType, "frequency", opts.Frequency)
	if err := c.player.Play(ctx, alarm, opts.Frequency); err != nil {
		// The device attempts self-healing internally; the cycle proceeds
		// so the spoken message still goes out if the device recovers.
		c.logger.Error("alarm playback failed", "error", err)
	}

	if strings.TrimSpace(message) == "" {
		return nil
	}

	text := NormalizeText(message)
	lang := domain.ResolveLanguage(opts.Language)

	primary, perr := c.speller.Synthesize(ctx, text, domain.DefaultLanguage)
	if perr != nil {
		c.logger.Warn("primary-language synthesis failed", "error", perr)
		c.metrics.SynthesisFallbacks.Add(ctx, 1,
			metric.WithAttributes(attribute.String("language", domain.DefaultLanguage)))
	}

	// When the target language equals the primary, the primary segment
	// serves both roles and no second message segment is merged.
	var target []byte
	if lang != domain.DefaultLanguage {
		translated := c.translator.Translate(ctx, text, lang)
		var terr error
		target, terr = c.speller.Synthesize(ctx, NormalizeText(translated), lang)
		if terr != nil {
			c.logger.Warn("target-language synthesis failed", "language", lang, "error", terr)
			c.metrics.SynthesisFallbacks.Add(ctx, 1,
				metric.WithAttributes(attribute.String("language", lang)))
			target = nil
		}
	}

	if len(primary) == 0 && len(target) == 0 {
		outcome = "synthesis_failed"
		c.logger.Error("failed to generate any speech audio, aborting cycle")
		return fmt.Errorf("synthesizing message: %w", perr)
	}

	segments := []domain.AudioSegment{{Role: domain.SegmentAlarm, Path: alarmPath}}
	if len(primary) > 0 {
		segments = append(segments, domain.AudioSegment{Role: domain.SegmentPrimary, WAV: primary})
	}
	if len(target) > 0 {
		segments = append(segments, domain.AudioSegment{Role: domain.SegmentTarget, WAV: target})
	}

	merged, err := c.mixer.Merge(segments, time.Duration(opts.GapSeconds)*time.Second)
	if err != nil {
		outcome = "merge_failed"
		return fmt.Errorf("merging segments: %w", err)
	}

	c.logger.Info("playing merged stream", "segments", len(segments), "frequency", opts.Frequency)
	if err := c.player.Play(ctx, merged, opts.Frequency); err != nil {
		outcome = "play_failed"
		return fmt.Errorf("playing merged stream: %w", err)
	}

	return nil
}

// StopAudio halts playback unconditionally, emits ack-off, and returns the
// controller to idle. Idempotent from any state.
func (c *Controller) StopAudio(ctx context.Context) error {
	if err := c.player.Stop(); err != nil {
		c.logger.Error("stopping playback", "error", err)
	}
	c.emit(ctx, domain.EventAckOff)
	c.playing.Store(false)
	return nil
}

func (c *Controller) emit(ctx context.Context, event string) {
	if err := c.acks.Emit(ctx, event); err != nil {
		c.logger.Warn("emitting acknowledgement", "event", event, "error", err)
	}
}
