package pcmwav

import (
	"errors"
	"math"
	"time"
)

var (
	// ErrFormatMismatch indicates a missing RIFF/WAVE tag or a non integer PCM
	// audio format.
	ErrFormatMismatch = errors.New("not an integer PCM wave file")
	// ErrUnsupportedLayout indicates a channel count, bit depth or block
	// alignment outside of what this package handles.
	ErrUnsupportedLayout = errors.New("unsupported sample layout")
	// ErrTruncated is returned when a fixed-size read comes up short.
	ErrTruncated = errors.New("truncated wave data")
	// ErrMissingChunk is returned when the stream ends before both the fmt and
	// data chunks were found. Errors carrying it also match ErrTruncated.
	ErrMissingChunk = errors.New("fmt or data chunk not found")
	// ErrSampleOutOfRange is returned under RangeReject for a sample outside of
	// [-1, 1].
	ErrSampleOutOfRange = errors.New("sample out of range")
	// ErrDataTooLarge is returned when the PCM data does not fit a 32-bit
	// chunk size.
	ErrDataTooLarge = errors.New("data exceeds wav length limit of 4 GiB")
)

// framesDuration returns the playback time of numFrames at sampleRate.
func framesDuration(numFrames, sampleRate int) time.Duration {
	if sampleRate == 0 {
		return 0
	}

	return time.Duration(math.Round(float64(numFrames) / math.Abs(float64(sampleRate)) * float64(time.Second)))
}
