package pcmwav

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/go-audio/audio"
)

// writeBitDepth is the only bit depth the encoder produces.
const writeBitDepth = 32

var (
	errNilBuffer       = errors.New("can't add a nil buffer")
	errAlreadyWroteHdr = errors.New("already wrote header")
	errNilEncoder      = errors.New("can't write a nil encoder")
	errNilWriter       = errors.New("can't write to a nil writer")
)

// Encoder encodes normalized samples into a minimal 32-bit PCM wav container.
// The header carries the final sizes, so all samples go through a single
// Write call.
type Encoder struct {
	w io.Writer

	SampleRate int
	NumChans   int
	// RangePolicy is applied to every sample before encoding. The zero value
	// lets out of range samples wrap.
	RangePolicy RangePolicy

	WrittenBytes int
	wroteHeader  bool
}

// NewEncoder creates a new encoder writing to w.
func NewEncoder(w io.Writer, sampleRate, numChans int) *Encoder {
	return &Encoder{
		w:          w,
		SampleRate: sampleRate,
		NumChans:   numChans,
	}
}

// Write encodes the buffer and writes header and PCM data to the underlying
// writer. The buffer format, when set, overrides the encoder's channel count
// and sample rate.
func (e *Encoder) Write(buf *audio.Float32Buffer) error {
	if e == nil {
		return errNilEncoder
	}

	if e.w == nil {
		return errNilWriter
	}

	if buf == nil {
		return errNilBuffer
	}

	if e.wroteHeader {
		return errAlreadyWroteHdr
	}

	if buf.Format != nil {
		e.NumChans = buf.Format.NumChannels
		e.SampleRate = buf.Format.SampleRate
	}

	if err := validateLayout(e.NumChans, e.SampleRate, len(buf.Data)); err != nil {
		return err
	}

	dataSize := len(buf.Data) * (writeBitDepth / 8)

	samples := buf.Data
	if e.RangePolicy != RangeKeep {
		samples = make([]float32, len(buf.Data))

		for i, v := range buf.Data {
			var err error

			samples[i], err = e.RangePolicy.apply(v)
			if err != nil {
				return fmt.Errorf("sample %d: %w", i, err)
			}
		}
	}

	pcm := FloatsToPCM32(samples)

	e.wroteHeader = true

	hdr := NewHeader(uint16(e.NumChans), uint32(e.SampleRate), writeBitDepth, uint32(dataSize))

	n, err := hdr.WriteTo(e.w)
	e.WrittenBytes += int(n)

	if err != nil {
		return err
	}

	m, err := e.w.Write(pcm)
	e.WrittenBytes += m

	if err != nil {
		return fmt.Errorf("failed to write PCM data: %w", err)
	}

	return nil
}

// validateLayout checks that numSamples samples can be written as a 32-bit
// PCM file with the given channel count and sample rate.
func validateLayout(numChans, sampleRate, numSamples int) error {
	if numChans < 1 || numChans > maxChannels {
		return fmt.Errorf("%w: %d channels", ErrUnsupportedLayout, numChans)
	}

	if sampleRate < 0 || int64(sampleRate) > math.MaxUint32 {
		return fmt.Errorf("%w: sample rate %d", ErrUnsupportedLayout, sampleRate)
	}

	dataSize := int64(numSamples) * (writeBitDepth / 8)
	if dataSize > math.MaxUint32-riffSizeOverhead {
		return fmt.Errorf("%w: %d bytes", ErrDataTooLarge, dataSize)
	}

	return nil
}
