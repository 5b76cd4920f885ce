// Package observe provides OpenTelemetry metrics for the siren node, bridged
// to Prometheus so the fleet scraper can collect them from /metrics.
//
// Every best-effort fallback in the playback pipeline (translation falling
// back to source text, one-language synthesis failure) increments a counter
// here in addition to being logged, so degradation is visible per device.
package observe

import (
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name for all siren metrics.
const meterName = "siren-node"

// Metrics holds the metric instruments for the siren node. The underlying
// OTel types are safe for concurrent use.
type Metrics struct {
	// PlaybackCycles counts completed playback sequences. Attributes:
	//   outcome = ok | asset_missing | synthesis_failed | merge_failed | play_failed
	PlaybackCycles metric.Int64Counter

	// CommandsRejected counts commands dropped before playback. Attributes:
	//   reason = busy | connectivity
	CommandsRejected metric.Int64Counter

	// SynthesisFallbacks counts per-language synthesis failures that the
	// pipeline tolerated. Attribute: language.
	SynthesisFallbacks metric.Int64Counter

	// TranslationFallbacks counts translations that fell back to the source
	// text. Attribute: language.
	TranslationFallbacks metric.Int64Counter

	// DeviceReinits counts best-effort device reinitializations triggered by
	// playback errors.
	DeviceReinits metric.Int64Counter

	// PlaybackDuration tracks wall-clock time of complete playback cycles.
	PlaybackDuration metric.Float64Histogram
}

// durationBuckets covers alert playback times: a bare tone is a few seconds,
// a bilingual announcement with gaps can run over a minute.
var durationBuckets = []float64{1, 2.5, 5, 10, 20, 30, 60, 120, 300}

// NewMetrics creates a fully initialised [Metrics] using the given provider.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.PlaybackCycles, err = m.Int64Counter("siren.playback.cycles",
		metric.WithDescription("Completed playback sequences by outcome."),
	); err != nil {
		return nil, err
	}
	if met.CommandsRejected, err = m.Int64Counter("siren.commands.rejected",
		metric.WithDescription("Commands dropped before playback by reason."),
	); err != nil {
		return nil, err
	}
	if met.SynthesisFallbacks, err = m.Int64Counter("siren.synthesis.fallbacks",
		metric.WithDescription("Tolerated per-language synthesis failures."),
	); err != nil {
		return nil, err
	}
	if met.TranslationFallbacks, err = m.Int64Counter("siren.translation.fallbacks",
		metric.WithDescription("Translations that fell back to the source text."),
	); err != nil {
		return nil, err
	}
	if met.DeviceReinits, err = m.Int64Counter("siren.device.reinits",
		metric.WithDescription("Device reinitializations triggered by playback errors."),
	); err != nil {
		return nil, err
	}
	if met.PlaybackDuration, err = m.Float64Histogram("siren.playback.duration",
		metric.WithDescription("Wall-clock duration of playback cycles."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	); err != nil {
		return nil, err
	}

	return met, nil
}
