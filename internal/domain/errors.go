package domain

import "errors"

var (
	// ErrBusy is returned when a playback command arrives while a sequence
	// is already running. Commands are rejected, never queued.
	ErrBusy = errors.New("playback already in progress")

	// ErrAssetMissing means the alarm tone for the requested alert type is
	// not provisioned on this device.
	ErrAssetMissing = errors.New("alarm asset not found")

	// ErrNoSegments means the merge step was left with zero usable audio
	// segments.
	ErrNoSegments = errors.New("no usable audio segments")

	// ErrEmptyText rejects synthesis of empty input.
	ErrEmptyText = errors.New("empty text for synthesis")

	// ErrEmptyAudio means the synthesis engine produced a zero-length
	// artifact, distinct from a transport or engine error.
	ErrEmptyAudio = errors.New("synthesis produced empty audio")

	// ErrDeviceUnavailable means the audio output device is not initialized;
	// the siren keeps running in degraded mode and playback calls fail
	// individually.
	ErrDeviceUnavailable = errors.New("audio device unavailable")
)
