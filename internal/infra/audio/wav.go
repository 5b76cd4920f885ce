// Package audio implements the playback side of the siren: WAV decoding and
// encoding, segment merging, and the physical output device.
package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"time"
)

// Clip is decoded audio: 16-bit little-endian PCM plus its format.
type Clip struct {
	SampleRate int
	Channels   int
	PCM        []byte
}

// Duration returns the playback length of the clip.
func (c Clip) Duration() time.Duration {
	if c.SampleRate <= 0 || c.Channels <= 0 {
		return 0
	}
	frames := len(c.PCM) / (2 * c.Channels)
	return time.Duration(frames) * time.Second / time.Duration(c.SampleRate)
}

// DecodeWAV parses a RIFF/WAVE container and returns its PCM payload. Only
// 16-bit PCM is accepted; alarm assets and synthesis output are both stored
// in that format.
func DecodeWAV(data []byte) (Clip, error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return Clip{}, fmt.Errorf("not a RIFF/WAVE stream")
	}

	var clip Clip
	var bitsPerSample int
	pos := 12
	for pos+8 <= len(data) {
		id := string(data[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(data[pos+4 : pos+8]))
		body := pos + 8
		if size < 0 || body > len(data) {
			break
		}
		end := body + size
		if end > len(data) {
			end = len(data)
		}

		switch id {
		case "fmt ":
			if end-body < 16 {
				return Clip{}, fmt.Errorf("truncated fmt chunk")
			}
			format := binary.LittleEndian.Uint16(data[body : body+2])
			if format != 1 {
				return Clip{}, fmt.Errorf("unsupported WAV format code %d", format)
			}
			clip.Channels = int(binary.LittleEndian.Uint16(data[body+2 : body+4]))
			clip.SampleRate = int(binary.LittleEndian.Uint32(data[body+4 : body+8]))
			bitsPerSample = int(binary.LittleEndian.Uint16(data[body+14 : body+16]))
		case "data":
			clip.PCM = data[body:end]
		}

		pos = body + size
		if size%2 == 1 {
			pos++ // chunks are word-aligned
		}
	}

	if clip.SampleRate == 0 || clip.Channels == 0 {
		return Clip{}, fmt.Errorf("missing fmt chunk")
	}
	if bitsPerSample != 16 {
		return Clip{}, fmt.Errorf("unsupported bit depth %d", bitsPerSample)
	}
	if len(clip.PCM) == 0 {
		return Clip{}, fmt.Errorf("missing data chunk")
	}
	return clip, nil
}

// EncodeWAV wraps the clip's PCM in a RIFF/WAVE container.
func EncodeWAV(c Clip) []byte {
	var buf bytes.Buffer
	blockAlign := c.Channels * 2

	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+len(c.PCM)))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(c.Channels))
	binary.Write(&buf, binary.LittleEndian, uint32(c.SampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(c.SampleRate*blockAlign))
	binary.Write(&buf, binary.LittleEndian, uint16(blockAlign))
	binary.Write(&buf, binary.LittleEndian, uint16(16))

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(len(c.PCM)))
	buf.Write(c.PCM)

	return buf.Bytes()
}

// Silence returns d worth of silent PCM in the given format.
func Silence(d time.Duration, sampleRate, channels int) []byte {
	if d <= 0 {
		return nil
	}
	frames := int(d.Seconds() * float64(sampleRate))
	return make([]byte, frames*channels*2)
}

// resampleMono16 converts mono 16-bit PCM between sample rates by linear
// interpolation. Good enough for spoken announcements.
func resampleMono16(pcm []byte, srcRate, dstRate int) []byte {
	if srcRate == dstRate || srcRate <= 0 || dstRate <= 0 {
		return pcm
	}
	src := bytesToSamples(pcm)
	if len(src) == 0 {
		return nil
	}
	outLen := int(float64(len(src)) * float64(dstRate) / float64(srcRate))
	out := make([]int16, outLen)
	ratio := float64(srcRate) / float64(dstRate)
	for i := range out {
		pos := float64(i) * ratio
		j := int(pos)
		if j >= len(src)-1 {
			out[i] = src[len(src)-1]
			continue
		}
		frac := pos - float64(j)
		out[i] = int16(float64(src[j])*(1-frac) + float64(src[j+1])*frac)
	}
	return samplesToBytes(out)
}

// downmixToMono averages interleaved stereo 16-bit PCM into mono.
func downmixToMono(pcm []byte) []byte {
	src := bytesToSamples(pcm)
	out := make([]int16, len(src)/2)
	for i := range out {
		out[i] = int16((int32(src[2*i]) + int32(src[2*i+1])) / 2)
	}
	return samplesToBytes(out)
}

// upmixToStereo duplicates mono 16-bit PCM into both channels.
func upmixToStereo(pcm []byte) []byte {
	src := bytesToSamples(pcm)
	out := make([]int16, 2*len(src))
	for i, s := range src {
		out[2*i] = s
		out[2*i+1] = s
	}
	return samplesToBytes(out)
}

func bytesToSamples(pcm []byte) []int16 {
	out := make([]int16, len(pcm)/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(pcm[2*i:]))
	}
	return out
}

func samplesToBytes(samples []int16) []byte {
	out := make([]byte, 2*len(samples))
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[2*i:], uint16(s))
	}
	return out
}
