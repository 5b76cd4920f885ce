package audio_test

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"siren-node/internal/domain"
	"siren-node/internal/infra/audio"
)

func makeWAV(frames, sampleRate, channels int) []byte {
	samples := make([]int16, frames*channels)
	for i := range samples {
		samples[i] = int16(i%200 - 100)
	}
	pcm := make([]byte, 2*len(samples))
	for i, s := range samples {
		pcm[2*i] = byte(s)
		pcm[2*i+1] = byte(s >> 8)
	}
	return audio.EncodeWAV(audio.Clip{SampleRate: sampleRate, Channels: channels, PCM: pcm})
}

func newMixer(t *testing.T, workDir string) *audio.Mixer {
	t.Helper()
	return audio.NewMixer(workDir, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestMixer_MergeWithGap(t *testing.T) {
	m := newMixer(t, "")

	segments := []domain.AudioSegment{
		{Role: domain.SegmentAlarm, WAV: makeWAV(8000, 8000, 1)},
		{Role: domain.SegmentPrimary, WAV: makeWAV(4000, 8000, 1)},
	}
	merged, err := m.Merge(segments, time.Second)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}

	clip, err := audio.DecodeWAV(merged)
	if err != nil {
		t.Fatalf("decoding merged stream: %v", err)
	}
	// 8000 frames + 8000 frames of gap + 4000 frames, 2 bytes each.
	if want := (8000 + 8000 + 4000) * 2; len(clip.PCM) != want {
		t.Errorf("merged PCM: got %d bytes, want %d", len(clip.PCM), want)
	}
	if clip.SampleRate != 8000 || clip.Channels != 1 {
		t.Errorf("merged format: got %d/%d, want 8000/1", clip.SampleRate, clip.Channels)
	}
}

func TestMixer_ConformsFormats(t *testing.T) {
	m := newMixer(t, "")

	// 16kHz stereo second segment must land as 8kHz mono.
	segments := []domain.AudioSegment{
		{Role: domain.SegmentAlarm, WAV: makeWAV(8000, 8000, 1)},
		{Role: domain.SegmentPrimary, WAV: makeWAV(16000, 16000, 2)},
	}
	merged, err := m.Merge(segments, 0)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}

	clip, err := audio.DecodeWAV(merged)
	if err != nil {
		t.Fatalf("decoding merged stream: %v", err)
	}
	if want := (8000 + 8000) * 2; len(clip.PCM) != want {
		t.Errorf("merged PCM: got %d bytes, want %d", len(clip.PCM), want)
	}
}

func TestMixer_SkipsUnusableSegments(t *testing.T) {
	m := newMixer(t, "")

	segments := []domain.AudioSegment{
		{Role: domain.SegmentAlarm, Path: filepath.Join(t.TempDir(), "missing.wav")},
		{Role: domain.SegmentPrimary, WAV: []byte("garbage")},
		{Role: domain.SegmentTarget, WAV: makeWAV(4000, 8000, 1)},
	}
	merged, err := m.Merge(segments, time.Second)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}

	clip, err := audio.DecodeWAV(merged)
	if err != nil {
		t.Fatalf("decoding merged stream: %v", err)
	}
	// Only the usable segment survives, no stray gaps.
	if want := 4000 * 2; len(clip.PCM) != want {
		t.Errorf("merged PCM: got %d bytes, want %d", len(clip.PCM), want)
	}
}

func TestMixer_NoUsableSegments(t *testing.T) {
	m := newMixer(t, "")

	_, err := m.Merge([]domain.AudioSegment{
		{Role: domain.SegmentAlarm, WAV: []byte("garbage")},
	}, 0)
	if !errors.Is(err, domain.ErrNoSegments) {
		t.Errorf("error: got %v, want ErrNoSegments", err)
	}
}

func TestMixer_ReadsFileBackedSegments(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "warning-alarm.wav")
	if err := os.WriteFile(path, makeWAV(2000, 8000, 1), 0o644); err != nil {
		t.Fatalf("writing asset: %v", err)
	}
	m := newMixer(t, "")

	merged, err := m.Merge([]domain.AudioSegment{{Role: domain.SegmentAlarm, Path: path}}, 0)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	clip, err := audio.DecodeWAV(merged)
	if err != nil {
		t.Fatalf("decoding merged stream: %v", err)
	}
	if want := 2000 * 2; len(clip.PCM) != want {
		t.Errorf("merged PCM: got %d bytes, want %d", len(clip.PCM), want)
	}
}

func TestMixer_ExportsCombinedStream(t *testing.T) {
	workDir := t.TempDir()
	m := newMixer(t, workDir)

	if _, err := m.Merge([]domain.AudioSegment{
		{Role: domain.SegmentAlarm, WAV: makeWAV(1000, 8000, 1)},
	}, 0); err != nil {
		t.Fatalf("Merge: %v", err)
	}

	if _, err := os.Stat(filepath.Join(workDir, "combined.wav")); err != nil {
		t.Errorf("combined.wav not exported: %v", err)
	}
}
