package speech

import (
	"context"
	"encoding/binary"
	"fmt"
)

// silenceThreshold is the int16 amplitude below which a sample counts as
// silence for pause detection.
const silenceThreshold = 1000

// PCMAnalyzer derives a delivery score from 16-bit PCM WAV audio using
// pause-ratio and energy heuristics. A fluent answer has few long pauses
// and sustained speech energy.
type PCMAnalyzer struct{}

// NewPCMAnalyzer creates the heuristic analyzer
func NewPCMAnalyzer() *PCMAnalyzer {
	return &PCMAnalyzer{}
}

// DeliveryScore parses the WAV payload and scores fluency in [0,1].
func (a *PCMAnalyzer) DeliveryScore(_ context.Context, audio []byte) (float64, error) {
	samples, sampleRate, err := decodeWAV(audio)
	if err != nil {
		return 0, err
	}
	if len(samples) == 0 {
		return 0, nil
	}

	// Count silent frames in ~100ms windows
	frameLen := sampleRate / 10
	if frameLen == 0 {
		frameLen = 1
	}
	var silentFrames, totalFrames int
	for start := 0; start < len(samples); start += frameLen {
		end := start + frameLen
		if end > len(samples) {
			end = len(samples)
		}
		totalFrames++
		if frameIsSilent(samples[start:end]) {
			silentFrames++
		}
	}

	pauseRatio := float64(silentFrames) / float64(totalFrames)
	fluency := 1 - pauseRatio
	if fluency < 0 {
		fluency = 0
	}
	return fluency, nil
}

// frameIsSilent reports whether every sample magnitude stays below the
// silence threshold.
func frameIsSilent(frame []int16) bool {
	for _, s := range frame {
		if s >= silenceThreshold || s <= -silenceThreshold {
			return false
		}
	}
	return true
}

// decodeWAV extracts 16-bit PCM samples and the sample rate from a RIFF/WAVE
// payload. Only the subset this analyzer needs is supported.
func decodeWAV(data []byte) ([]int16, int, error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, 0, fmt.Errorf("not a RIFF/WAVE payload")
	}

	var (
		sampleRate    int
		bitsPerSample int
		pcm           []byte
	)
	offset := 12
	for offset+8 <= len(data) {
		chunkID := string(data[offset : offset+4])
		chunkSize := int(binary.LittleEndian.Uint32(data[offset+4 : offset+8]))
		body := offset + 8
		if body+chunkSize > len(data) {
			return nil, 0, fmt.Errorf("truncated %s chunk", chunkID)
		}
		switch chunkID {
		case "fmt ":
			if chunkSize < 16 {
				return nil, 0, fmt.Errorf("fmt chunk too short")
			}
			sampleRate = int(binary.LittleEndian.Uint32(data[body+4 : body+8]))
			bitsPerSample = int(binary.LittleEndian.Uint16(data[body+14 : body+16]))
		case "data":
			pcm = data[body : body+chunkSize]
		}
		// Chunks are word-aligned
		offset = body + chunkSize + chunkSize%2
	}

	if sampleRate == 0 || pcm == nil {
		return nil, 0, fmt.Errorf("missing fmt or data chunk")
	}
	if bitsPerSample != 16 {
		return nil, 0, fmt.Errorf("unsupported bit depth %d, want 16-bit PCM", bitsPerSample)
	}

	samples := make([]int16, len(pcm)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(pcm[i*2 : i*2+2]))
	}
	return samples, sampleRate, nil
}
