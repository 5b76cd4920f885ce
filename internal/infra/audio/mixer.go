package audio

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"siren-node/internal/domain"
)

// Mixer concatenates WAV segments into a single stream. The first usable
// segment fixes the output format; later segments are resampled and
// up/downmixed to match. A segment that cannot be read or decoded is
// skipped so a partially degraded pipeline still produces output.
type Mixer struct {
	workDir string
	logger  *slog.Logger
}

func NewMixer(workDir string, logger *slog.Logger) *Mixer {
	return &Mixer{workDir: workDir, logger: logger}
}

// Merge joins the segments in order with gap of silence between consecutive
// kept segments. It returns domain.ErrNoSegments when nothing was usable.
func (m *Mixer) Merge(segments []domain.AudioSegment, gap time.Duration) ([]byte, error) {
	var clips []Clip
	for _, seg := range segments {
		data := seg.WAV
		if seg.Path != "" {
			var err error
			data, err = os.ReadFile(seg.Path)
			if err != nil {
				m.logger.Warn("skipping unreadable segment", "role", seg.Role, "error", err)
				continue
			}
		}
		clip, err := DecodeWAV(data)
		if err != nil {
			m.logger.Warn("skipping undecodable segment", "role", seg.Role, "error", err)
			continue
		}
		clips = append(clips, clip)
	}
	if len(clips) == 0 {
		return nil, domain.ErrNoSegments
	}

	out := Clip{SampleRate: clips[0].SampleRate, Channels: clips[0].Channels}
	silence := Silence(gap, out.SampleRate, out.Channels)

	var pcm bytes.Buffer
	pcm.Write(clips[0].PCM)
	for _, c := range clips[1:] {
		pcm.Write(silence)
		pcm.Write(conform(c, out.SampleRate, out.Channels))
	}
	out.PCM = pcm.Bytes()

	merged := EncodeWAV(out)
	m.export(merged)
	return merged, nil
}

// conform adapts a clip's PCM to the target format.
func conform(c Clip, sampleRate, channels int) []byte {
	pcm := c.PCM
	if c.Channels == 2 {
		pcm = downmixToMono(pcm)
	}
	pcm = resampleMono16(pcm, c.SampleRate, sampleRate)
	if channels == 2 {
		pcm = upmixToStereo(pcm)
	}
	return pcm
}

// export writes the merged stream to the work directory for post-incident
// inspection. Failures are logged, never fatal.
func (m *Mixer) export(wav []byte) {
	if m.workDir == "" {
		return
	}
	if err := os.MkdirAll(m.workDir, 0o755); err != nil {
		m.logger.Warn("creating work directory", "dir", m.workDir, "error", err)
		return
	}
	path := filepath.Join(m.workDir, "combined.wav")
	if err := os.WriteFile(path, wav, 0o644); err != nil {
		m.logger.Warn("exporting merged stream", "path", path, "error", err)
	}
}
