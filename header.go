package pcmwav

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/go-audio/riff"
)

const (
	wavFormatPCM = 1

	// headerSize is the size of the minimal RIFF/WAVE header.
	headerSize = 44
	// riffSizeOverhead is what the RIFF chunk size adds on top of the data
	// size in the minimal layout: "WAVE" + fmt chunk + data chunk header.
	riffSizeOverhead = 36
	fmtChunkBodySize = 16
	chunkHeaderSize  = 8

	maxChannels   = 2
	maxBitDepth   = 32
	maxBlockAlign = 8
)

// Header is the minimal 44-byte RIFF/WAVE header written in front of the PCM
// data.
type Header struct {
	ChunkID   [4]byte
	ChunkSize uint32
	Format    [4]byte

	FmtChunkID    [4]byte
	FmtChunkSize  uint32
	AudioFormat   uint16
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16

	DataChunkID   [4]byte
	DataChunkSize uint32
}

// NewHeader builds a PCM header for dataSize bytes of samples, deriving the
// sizes, byte rate and block alignment.
func NewHeader(numChans uint16, sampleRate uint32, bitDepth uint16, dataSize uint32) *Header {
	blockAlign := numChans * bitDepth / 8

	return &Header{
		ChunkID:       riff.RiffID,
		ChunkSize:     dataSize + riffSizeOverhead,
		Format:        riff.WavFormatID,
		FmtChunkID:    riff.FmtID,
		FmtChunkSize:  fmtChunkBodySize,
		AudioFormat:   wavFormatPCM,
		NumChannels:   numChans,
		SampleRate:    sampleRate,
		ByteRate:      sampleRate * uint32(blockAlign),
		BlockAlign:    blockAlign,
		BitsPerSample: bitDepth,
		DataChunkID:   riff.DataFormatID,
		DataChunkSize: dataSize,
	}
}

// WriteTo serializes the header field by field in little endian order.
func (h *Header) WriteTo(w io.Writer) (int64, error) {
	buf := make([]byte, headerSize)

	copy(buf[0:4], h.ChunkID[:])
	binary.LittleEndian.PutUint32(buf[4:8], h.ChunkSize)
	copy(buf[8:12], h.Format[:])

	copy(buf[12:16], h.FmtChunkID[:])
	binary.LittleEndian.PutUint32(buf[16:20], h.FmtChunkSize)
	binary.LittleEndian.PutUint16(buf[20:22], h.AudioFormat)
	binary.LittleEndian.PutUint16(buf[22:24], h.NumChannels)
	binary.LittleEndian.PutUint32(buf[24:28], h.SampleRate)
	binary.LittleEndian.PutUint32(buf[28:32], h.ByteRate)
	binary.LittleEndian.PutUint16(buf[32:34], h.BlockAlign)
	binary.LittleEndian.PutUint16(buf[34:36], h.BitsPerSample)

	copy(buf[36:40], h.DataChunkID[:])
	binary.LittleEndian.PutUint32(buf[40:44], h.DataChunkSize)

	n, err := w.Write(buf)
	if err != nil {
		return int64(n), fmt.Errorf("failed to write wav header: %w", err)
	}

	return int64(n), nil
}

// FmtChunk holds the fixed 16-byte body of a PCM fmt chunk.
type FmtChunk struct {
	FormatTag      uint16
	NumChannels    uint16
	SampleRate     uint32
	AvgBytesPerSec uint32
	BlockAlign     uint16
	BitsPerSample  uint16
}

// DataChunkHeader holds the id and size preceding the PCM samples.
type DataChunkHeader struct {
	ID   [4]byte
	Size uint32
}

// BytesPerSample is the width of a single channel sample.
func (f *FmtChunk) BytesPerSample() int {
	if f == nil || f.NumChannels == 0 {
		return 0
	}

	return int(f.BlockAlign) / int(f.NumChannels)
}

// Validate checks the fmt fields against the layouts the reader supports.
func (f *FmtChunk) Validate() error {
	if f == nil {
		return fmt.Errorf("%w: missing fmt chunk", ErrMissingChunk)
	}

	if f.FormatTag != wavFormatPCM {
		return fmt.Errorf("%w: audio format %d", ErrFormatMismatch, f.FormatTag)
	}

	if f.NumChannels < 1 || f.NumChannels > maxChannels {
		return fmt.Errorf("%w: %d channels", ErrUnsupportedLayout, f.NumChannels)
	}

	if f.BitsPerSample == 0 || f.BitsPerSample > maxBitDepth || f.BitsPerSample%8 != 0 {
		return fmt.Errorf("%w: %d bits per sample", ErrUnsupportedLayout, f.BitsPerSample)
	}

	if f.BlockAlign > maxBlockAlign {
		return fmt.Errorf("%w: block align %d", ErrUnsupportedLayout, f.BlockAlign)
	}

	if f.BlockAlign != f.NumChannels*f.BitsPerSample/8 {
		return fmt.Errorf("%w: block align %d for %d channels at %d bits",
			ErrUnsupportedLayout, f.BlockAlign, f.NumChannels, f.BitsPerSample)
	}

	return nil
}

// decodeFmtChunk reads the fmt body fields in file order.
func decodeFmtChunk(chunk *riff.Chunk) (*FmtChunk, error) {
	fmtChunk := &FmtChunk{}

	err := chunk.ReadLE(&fmtChunk.FormatTag)
	if err != nil {
		return nil, fmt.Errorf("failed to read wav format: %w", err)
	}

	err = chunk.ReadLE(&fmtChunk.NumChannels)
	if err != nil {
		return nil, fmt.Errorf("failed to read channels: %w", err)
	}

	err = chunk.ReadLE(&fmtChunk.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("failed to read sample rate: %w", err)
	}

	err = chunk.ReadLE(&fmtChunk.AvgBytesPerSec)
	if err != nil {
		return nil, fmt.Errorf("failed to read avg bytes/sec: %w", err)
	}

	err = chunk.ReadLE(&fmtChunk.BlockAlign)
	if err != nil {
		return nil, fmt.Errorf("failed to read block align: %w", err)
	}

	err = chunk.ReadLE(&fmtChunk.BitsPerSample)
	if err != nil {
		return nil, fmt.Errorf("failed to read bit depth: %w", err)
	}

	return fmtChunk, nil
}
