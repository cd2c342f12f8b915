package pcmwav

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/go-audio/audio"
)

const (
	// negative samples scale by 2^31, positive ones by 2^31-1
	scalePCMNegative = 2147483648.0
	scalePCMPositive = 2147483647.0
	pcmSignBit       = 0x80000000
	maxByteWidth     = 4
)

var errUnhandledByteWidth = errors.New("unhandled byte width")

// RangePolicy controls what happens to samples outside of [-1, 1].
type RangePolicy int

const (
	// RangeKeep passes out of range samples through untouched.
	RangeKeep RangePolicy = iota
	// RangeClamp clamps samples to [-1, 1].
	RangeClamp
	// RangeReject fails with ErrSampleOutOfRange.
	RangeReject
)

var rangePolicyNames = map[RangePolicy]string{
	RangeKeep:   "keep",
	RangeClamp:  "clamp",
	RangeReject: "reject",
}

func (p RangePolicy) String() string {
	if name, ok := rangePolicyNames[p]; ok {
		return name
	}

	return fmt.Sprintf("RangePolicy(%d)", int(p))
}

// ParseRangePolicy maps "keep", "clamp" or "reject" to a RangePolicy.
func ParseRangePolicy(s string) (RangePolicy, error) {
	for policy, name := range rangePolicyNames {
		if strings.EqualFold(s, name) {
			return policy, nil
		}
	}

	return RangeKeep, fmt.Errorf("unknown range policy %q", s)
}

func (p RangePolicy) apply(v float32) (float32, error) {
	if v >= -1 && v <= 1 {
		return v, nil
	}

	switch p {
	case RangeClamp:
		return clampFloat32(v, -1, 1), nil
	case RangeReject:
		return v, fmt.Errorf("%w: %f", ErrSampleOutOfRange, v)
	default:
		return v, nil
	}
}

func clampFloat32(value, min, max float32) float32 {
	if value < min {
		return min
	}

	if value > max {
		return max
	}

	return value
}

// scaleSample maps a normalized sample onto the 32-bit PCM range, truncating
// toward zero. Values outside of [-1, 1] wrap around.
func scaleSample(v float32) uint32 {
	if v < 0 {
		return uint32(int64(float64(v) * scalePCMNegative))
	}

	return uint32(int64(float64(v) * scalePCMPositive))
}

// putPCM encodes v into dst using the len(dst) most significant bytes of the
// 32-bit scaled value. len(dst) must be within 1 and 4.
func putPCM(dst []byte, v float32) {
	word := scaleSample(v)

	switch len(dst) {
	case 4:
		binary.LittleEndian.PutUint32(dst, word)
	case 3:
		b := audio.Int32toInt24LEBytes(int32(word) >> 8)
		copy(dst, b[:])
	case 2:
		binary.LittleEndian.PutUint16(dst, uint16(word>>16))
	case 1:
		dst[0] = byte(word >> 24)
	}
}

// pcmToFloat is the inverse of putPCM. The bytes of src land in the most
// significant positions of a 32-bit word, lower bytes are zero.
func pcmToFloat(src []byte) float32 {
	var word uint32

	switch len(src) {
	case 4:
		word = binary.LittleEndian.Uint32(src)
	case 3:
		word = uint32(audio.Int24LETo32(src)) << 8
	case 2:
		word = uint32(binary.LittleEndian.Uint16(src)) << 16
	case 1:
		word = uint32(src[0]) << 24
	}

	if word&pcmSignBit != 0 {
		return float32(float64(int32(word)) / scalePCMNegative)
	}

	return float32(float64(word) / scalePCMPositive)
}

func checkByteWidth(byteWidth int) error {
	if byteWidth < 1 || byteWidth > maxByteWidth {
		return fmt.Errorf("%w: %d", errUnhandledByteWidth, byteWidth)
	}

	return nil
}

// FloatToPCM converts a normalized sample to byteWidth bytes of little endian
// signed PCM. Widths below 4 truncate the low order bytes.
func FloatToPCM(v float32, byteWidth int) ([]byte, error) {
	if err := checkByteWidth(byteWidth); err != nil {
		return nil, err
	}

	out := make([]byte, byteWidth)
	putPCM(out, v)

	return out, nil
}

// PCMToFloat converts len(b) bytes of little endian signed PCM to a
// normalized sample.
func PCMToFloat(b []byte) (float32, error) {
	if err := checkByteWidth(len(b)); err != nil {
		return 0, err
	}

	return pcmToFloat(b), nil
}

// FloatsToPCM32 encodes every sample as 32-bit PCM, preserving order.
func FloatsToPCM32(samples []float32) []byte {
	out := make([]byte, len(samples)*maxByteWidth)
	for i, v := range samples {
		putPCM(out[i*maxByteWidth:(i+1)*maxByteWidth], v)
	}

	return out
}

// PCMToFloats decodes a run of byteWidth-wide PCM samples.
func PCMToFloats(data []byte, byteWidth int) ([]float32, error) {
	if err := checkByteWidth(byteWidth); err != nil {
		return nil, err
	}

	if len(data)%byteWidth != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a multiple of %d", ErrTruncated, len(data), byteWidth)
	}

	out := make([]float32, len(data)/byteWidth)
	for i := range out {
		out[i] = pcmToFloat(data[i*byteWidth : (i+1)*byteWidth])
	}

	return out, nil
}

// Peak returns the largest absolute sample value, 0 for no samples.
func Peak(samples []float32) float64 {
	var p float64
	for _, s := range samples {
		p = math.Max(p, math.Abs(float64(s)))
	}

	return p
}
