package pcmwav

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

type testChunk struct {
	id   string
	size uint32
	data []byte
}

var (
	errFileTooSmall         = errors.New("file too small")
	errInvalidRiffWaveHdr   = errors.New("invalid riff/wave header")
	errChunkExceedsFileSize = errors.New("chunk exceeds file size")
)

// parseWavChunks splits a RIFF/WAVE byte stream into its top level chunks.
func parseWavChunks(data []byte) ([]testChunk, error) {
	if len(data) < 12 {
		return nil, errFileTooSmall
	}

	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, errInvalidRiffWaveHdr
	}

	chunks := make([]testChunk, 0)

	offset := 12
	for offset+8 <= len(data) {
		id := string(data[offset : offset+4])
		size := binary.LittleEndian.Uint32(data[offset+4 : offset+8])
		offset += 8

		end := offset + int(size)
		if end > len(data) {
			return nil, fmt.Errorf("%w: %q", errChunkExceedsFileSize, id)
		}

		payload := append([]byte(nil), data[offset:end]...)
		chunks = append(chunks, testChunk{id: id, size: size, data: payload})

		offset = end
	}

	return chunks, nil
}

func findChunk(chunks []testChunk, id string) (*testChunk, int) {
	for i := range chunks {
		if chunks[i].id == id {
			return &chunks[i], i
		}
	}

	return nil, -1
}

// newChunk builds a chunk whose declared size matches its payload.
func newChunk(id string, data []byte) testChunk {
	return testChunk{id: id, size: uint32(len(data)), data: data}
}

// fmtBody encodes a 16-byte fmt chunk payload. The byte rate and block align
// are derived from the other fields.
func fmtBody(formatTag, numChans uint16, sampleRate uint32, bitDepth uint16) []byte {
	blockAlign := numChans * bitDepth / 8

	return fmtBodyRaw(formatTag, numChans, sampleRate, sampleRate*uint32(blockAlign), blockAlign, bitDepth)
}

func fmtBodyRaw(formatTag, numChans uint16, sampleRate, byteRate uint32, blockAlign, bitDepth uint16) []byte {
	body := make([]byte, fmtChunkBodySize)
	binary.LittleEndian.PutUint16(body[0:2], formatTag)
	binary.LittleEndian.PutUint16(body[2:4], numChans)
	binary.LittleEndian.PutUint32(body[4:8], sampleRate)
	binary.LittleEndian.PutUint32(body[8:12], byteRate)
	binary.LittleEndian.PutUint16(body[12:14], blockAlign)
	binary.LittleEndian.PutUint16(body[14:16], bitDepth)

	return body
}

// buildWav assembles a RIFF/WAVE stream from chunks in the given order. The
// declared chunk size is written as is, so a chunk may lie about its length.
func buildWav(chunks ...testChunk) []byte {
	var body bytes.Buffer

	body.WriteString("WAVE")

	for _, c := range chunks {
		body.WriteString(c.id)
		binary.Write(&body, binary.LittleEndian, c.size)
		body.Write(c.data)
	}

	var out bytes.Buffer

	out.WriteString("RIFF")
	binary.Write(&out, binary.LittleEndian, uint32(body.Len()))
	out.Write(body.Bytes())

	return out.Bytes()
}

// writeTestFile stores data in a fresh temp dir and returns its path.
func writeTestFile(t *testing.T, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)

	err := os.WriteFile(path, data, 0o644)
	if err != nil {
		t.Fatalf("write %s: %v", path, err)
	}

	return path
}

func float32ApproxEqual(value, expected, epsilon float32) bool {
	diff := value - expected
	if diff < 0 {
		diff = -diff
	}

	return diff <= epsilon
}

func assertFloat32SlicesClose(t *testing.T, got, expected []float32, epsilon float32) {
	t.Helper()

	if len(got) != len(expected) {
		t.Fatalf("length mismatch: got %d, want %d", len(got), len(expected))
	}

	for i := range got {
		if !float32ApproxEqual(got[i], expected[i], epsilon) {
			t.Fatalf("sample %d: got %v, want %v", i, got[i], expected[i])
		}
	}
}
