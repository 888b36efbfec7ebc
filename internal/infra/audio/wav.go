package audio

import (
	"bytes"
	"encoding/binary"
)

const (
	// FramesPerBuffer is the number of samples read from the device per chunk.
	FramesPerBuffer = 1024

	silenceThreshold = int16(500)
)

// EncodeWAV wraps mono 16-bit PCM samples in a RIFF/WAVE container.
func EncodeWAV(samples []int16, sampleRate int) []byte {
	var buf bytes.Buffer

	dataSize := len(samples) * 2
	fileSize := 36 + dataSize

	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, int32(fileSize))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, int32(16))
	binary.Write(&buf, binary.LittleEndian, int16(1))
	binary.Write(&buf, binary.LittleEndian, int16(1))
	binary.Write(&buf, binary.LittleEndian, int32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, int32(sampleRate*2))
	binary.Write(&buf, binary.LittleEndian, int16(2))
	binary.Write(&buf, binary.LittleEndian, int16(16))

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, int32(dataSize))
	binary.Write(&buf, binary.LittleEndian, samples)

	return buf.Bytes()
}

// Capture accumulates microphone chunks and decides when an utterance is over:
// after one second of trailing silence once at least a second was recorded, or
// at maxSeconds.
type Capture struct {
	sampleRate int
	maxSamples int
	samples    []int16
	silent     int
}

func NewCapture(sampleRate, maxSeconds int) *Capture {
	return &Capture{
		sampleRate: sampleRate,
		maxSamples: sampleRate * maxSeconds,
		samples:    make([]int16, 0, sampleRate*5),
	}
}

// Add appends one chunk and reports whether recording should stop.
func (c *Capture) Add(chunk []int16) bool {
	c.samples = append(c.samples, chunk...)

	if isSilent(chunk) {
		c.silent += len(chunk)
	} else {
		c.silent = 0
	}

	if c.silent > c.sampleRate && len(c.samples) > c.sampleRate {
		return true
	}
	return len(c.samples) >= c.maxSamples
}

func (c *Capture) WAV() []byte {
	return EncodeWAV(c.samples, c.sampleRate)
}

func isSilent(chunk []int16) bool {
	for _, sample := range chunk {
		if sample > silenceThreshold || sample < -silenceThreshold {
			return false
		}
	}
	return true
}
