package pcmwav

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/riff"
)

var errNilDecoder = errors.New("nil decoder")

// Decoder handles the decoding of wav files.
type Decoder struct {
	r      io.ReadSeeker
	parser *riff.Parser
	chunks *ChunkRegistry

	NumChans   uint16
	BitDepth   uint16
	SampleRate uint32

	FmtChunk  *FmtChunk
	DataChunk *DataChunkHeader

	// absolute offsets of chunk headers, -1 until found
	chunkPos int64
	fmtPos   int64
	dataPos  int64

	infoRead bool
	err      error
}

// NewDecoder creates a decoder for the passed wav reader. Chunk offsets are
// taken from the reader itself, so it doesn't need to be positioned at 0.
func NewDecoder(r io.ReadSeeker) *Decoder {
	return &Decoder{
		r:       r,
		parser:  riff.New(r),
		chunks:  newDefaultChunkRegistry(),
		fmtPos:  -1,
		dataPos: -1,
	}
}

// RegisterChunkHandler adds a handler consulted for every chunk met while
// looking for the fmt and data chunks.
func (d *Decoder) RegisterChunkHandler(h ChunkHandler) {
	if d == nil {
		return
	}

	if d.chunks == nil {
		d.chunks = newDefaultChunkRegistry()
	}

	d.chunks.Register(h)
}

// Err returns the error met by the last ReadInfo call.
func (d *Decoder) Err() error {
	if d == nil {
		return errNilDecoder
	}

	return d.err
}

// IsValidFile verifies that the file headers are readable and supported.
func (d *Decoder) IsValidFile() bool {
	return d.ReadInfo() == nil
}

// ReadInfo locates the fmt and data chunks, decodes and validates them.
// This method is safe to call multiple times.
func (d *Decoder) ReadInfo() error {
	if d == nil {
		return errNilDecoder
	}

	if d.infoRead {
		return d.err
	}

	d.infoRead = true
	d.err = d.readHeaders()

	return d.err
}

// Format returns the audio format of the decoded content.
func (d *Decoder) Format() *audio.Format {
	if d == nil {
		return nil
	}

	return &audio.Format{
		NumChannels: int(d.NumChans),
		SampleRate:  int(d.SampleRate),
	}
}

// NumFrames returns the number of complete blocks in the data chunk.
func (d *Decoder) NumFrames() (int, error) {
	if err := d.ReadInfo(); err != nil {
		return 0, err
	}

	return int(d.DataChunk.Size) / int(d.FmtChunk.BlockAlign), nil
}

// Duration returns the time duration for the current audio container.
func (d *Decoder) Duration() (time.Duration, error) {
	frames, err := d.NumFrames()
	if err != nil {
		return 0, err
	}

	return framesDuration(frames, int(d.SampleRate)), nil
}

// String implements the Stringer interface.
func (d *Decoder) String() string {
	if d == nil || d.FmtChunk == nil {
		return "invalid wav file"
	}

	dur, _ := d.Duration()

	return fmt.Sprintf("%d Hz @ %d bits, %d channel(s), %d avg bytes/sec, duration: %s",
		d.SampleRate, d.BitDepth, d.NumChans, d.FmtChunk.AvgBytesPerSec, dur)
}

// FullPCMBuffer decodes the whole data chunk into normalized samples,
// interleaved by channel. Decoded samples always lie within [-1, 1]. Trailing
// bytes that don't fill a block are ignored.
func (d *Decoder) FullPCMBuffer() (*audio.Float32Buffer, error) {
	numBlocks, err := d.NumFrames()
	if err != nil {
		return nil, err
	}

	numChans := int(d.NumChans)
	blockAlign := int(d.FmtChunk.BlockAlign)
	bPerSample := d.FmtChunk.BytesPerSample()
	start := d.dataPos + chunkHeaderSize

	// catch oversized data chunks before allocating for them
	end, err := d.r.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to seek to end of file: %w", err)
	}

	if want := start + int64(numBlocks*blockAlign); want > end {
		return nil, fmt.Errorf("%w: data chunk needs %d bytes, %d available",
			ErrTruncated, want-start, max(end-start, 0))
	}

	if _, err := d.r.Seek(start, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to seek to the PCM data: %w", err)
	}

	buf := &audio.Float32Buffer{
		Data:           make([]float32, numBlocks*numChans),
		Format:         d.Format(),
		SourceBitDepth: int(d.BitDepth),
	}

	br := bufio.NewReader(d.r)

	var block [maxBlockAlign]byte

	for i := 0; i < len(buf.Data); i += numChans {
		_, err := io.ReadFull(br, block[:blockAlign])
		if err != nil {
			return nil, fmt.Errorf("%w: block %d: %w", ErrTruncated, i/numChans, err)
		}

		for c := 0; c < numChans; c++ {
			buf.Data[i+c] = pcmToFloat(block[c*bPerSample : (c+1)*bPerSample])
		}
	}

	return buf, nil
}

func (d *Decoder) readHeaders() error {
	err := d.readRiffHeader()
	if err != nil {
		return err
	}

	err = d.scanChunks()
	if err != nil {
		return err
	}

	if _, err := d.r.Seek(d.fmtPos+chunkHeaderSize, io.SeekStart); err != nil {
		return fmt.Errorf("failed to seek to the fmt chunk: %w", err)
	}

	fmtChunk, err := decodeFmtChunk(&riff.Chunk{ID: riff.FmtID, Size: fmtChunkBodySize, R: d.r})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTruncated, err)
	}

	if _, err := d.r.Seek(d.dataPos, io.SeekStart); err != nil {
		return fmt.Errorf("failed to seek to the data chunk: %w", err)
	}

	id, size, err := d.parser.IDnSize()
	if err != nil {
		return fmt.Errorf("%w: failed to read data chunk header: %w", ErrTruncated, err)
	}

	if err := fmtChunk.Validate(); err != nil {
		return err
	}

	d.FmtChunk = fmtChunk
	d.DataChunk = &DataChunkHeader{ID: id, Size: size}
	d.NumChans = fmtChunk.NumChannels
	d.BitDepth = fmtChunk.BitsPerSample
	d.SampleRate = fmtChunk.SampleRate

	return nil
}

func (d *Decoder) readRiffHeader() error {
	id, size, err := d.parser.IDnSize()
	if err != nil {
		return fmt.Errorf("%w: failed to read RIFF header: %w", ErrTruncated, err)
	}

	if id != riff.RiffID {
		return fmt.Errorf("%w: %q - %w", ErrFormatMismatch, id[:], riff.ErrFmtNotSupported)
	}

	d.parser.ID = id
	d.parser.Size = size

	err = binary.Read(d.r, binary.BigEndian, &d.parser.Format)
	if err != nil {
		return fmt.Errorf("%w: failed to read format: %w", ErrTruncated, err)
	}

	if d.parser.Format != riff.WavFormatID {
		return fmt.Errorf("%w: %q - %w", ErrFormatMismatch, d.parser.Format[:], riff.ErrFmtNotSupported)
	}

	return nil
}

// scanChunks walks chunk headers until both the fmt and data chunks were
// seen, skipping each chunk by its declared size.
func (d *Decoder) scanChunks() error {
	if d.chunks == nil {
		d.chunks = newDefaultChunkRegistry()
	}

	d.fmtPos, d.dataPos = -1, -1

	for d.fmtPos < 0 || d.dataPos < 0 {
		pos, err := d.r.Seek(0, io.SeekCurrent)
		if err != nil {
			return fmt.Errorf("failed to get the chunk position: %w", err)
		}

		id, size, err := d.parser.IDnSize()
		if err != nil {
			return fmt.Errorf("%w: %w: %w", ErrMissingChunk, ErrTruncated, err)
		}

		d.chunkPos = pos
		chunk := &riff.Chunk{
			ID:   id,
			Size: int(size),
			R:    io.LimitReader(d.r, int64(size)),
		}

		if _, err := d.chunks.Decode(d, chunk); err != nil {
			return fmt.Errorf("chunk %q: %w", id[:], err)
		}

		next := pos + chunkHeaderSize + int64(size)
		if _, err := d.r.Seek(next, io.SeekStart); err != nil {
			return fmt.Errorf("failed to skip chunk %q: %w", id[:], err)
		}
	}

	return nil
}
