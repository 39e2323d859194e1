package recording

import (
	"encoding/binary"
	"math"
)

// EncodePCM16 converts normalized samples to little-endian signed 16-bit PCM.
// Samples outside [-1, 1] are clamped. Negative samples scale by 32768 and
// non-negative ones by 32767, so both ends of the int16 range are reachable.
// The result is always exactly 2*len(samples) bytes.
func EncodePCM16(samples []float32) []byte {
	out := make([]byte, 2*len(samples))
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[2*i:], uint16(quantize(s)))
	}
	return out
}

func quantize(s float32) int16 {
	v := float64(s)
	switch {
	case math.IsNaN(v):
		return 0
	case v > 1:
		v = 1
	case v < -1:
		v = -1
	}
	if v < 0 {
		return int16(v * 32768)
	}
	return int16(v * 32767)
}

// DecodePCM16 is the inverse of EncodePCM16. A trailing odd byte is ignored.
func DecodePCM16(frame []byte) []float32 {
	out := make([]float32, len(frame)/2)
	for i := range out {
		v := int16(binary.LittleEndian.Uint16(frame[2*i:]))
		if v < 0 {
			out[i] = float32(v) / 32768
		} else {
			out[i] = float32(v) / 32767
		}
	}
	return out
}

// Level returns the RMS loudness of samples scaled by gain and clamped to [0, 1].
func Level(samples []float32, gain float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += float64(s) * float64(s)
	}
	level := math.Sqrt(sum/float64(len(samples))) * gain
	if level > 1 {
		return 1
	}
	if level < 0 || math.IsNaN(level) {
		return 0
	}
	return level
}
