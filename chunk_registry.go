package pcmwav

import (
	"fmt"

	"github.com/go-audio/riff"
)

// ChunkHandler is a typed handler for RIFF/WAV chunks met while scanning for
// the fmt and data chunks. Decode receives the chunk positioned at the start
// of its body; the scanner moves on to the next chunk whatever Decode
// consumed.
type ChunkHandler interface {
	CanHandle(chunkID [4]byte) bool
	Decode(d *Decoder, ch *riff.Chunk) error
}

// ChunkRegistry resolves chunks to handlers.
type ChunkRegistry struct {
	handlers []ChunkHandler
}

func newDefaultChunkRegistry() *ChunkRegistry {
	return &ChunkRegistry{
		handlers: []ChunkHandler{
			&fmtChunkHandler{},
			&dataChunkHandler{},
		},
	}
}

// Register appends a handler to the registry. Built-in handlers take
// precedence for the fmt and data chunks.
func (r *ChunkRegistry) Register(handler ChunkHandler) {
	if r == nil || handler == nil {
		return
	}

	r.handlers = append(r.handlers, handler)
}

// Decode dispatches a chunk to the first matching handler.
func (r *ChunkRegistry) Decode(dec *Decoder, chnk *riff.Chunk) (bool, error) {
	if r == nil || chnk == nil {
		return false, nil
	}

	for _, handler := range r.handlers {
		if handler.CanHandle(chnk.ID) {
			err := handler.Decode(dec, chnk)
			if err != nil {
				return true, fmt.Errorf("chunk handler decode failed: %w", err)
			}

			return true, nil
		}
	}

	return false, nil
}

// fmtChunkHandler records where the fmt chunk header starts.
type fmtChunkHandler struct{}

func (h *fmtChunkHandler) CanHandle(chunkID [4]byte) bool {
	return chunkID == riff.FmtID
}

func (h *fmtChunkHandler) Decode(d *Decoder, _ *riff.Chunk) error {
	d.fmtPos = d.chunkPos

	return nil
}

// dataChunkHandler records where the data chunk header starts.
type dataChunkHandler struct{}

func (h *dataChunkHandler) CanHandle(chunkID [4]byte) bool {
	return chunkID == riff.DataFormatID
}

func (h *dataChunkHandler) Decode(d *Decoder, _ *riff.Chunk) error {
	d.dataPos = d.chunkPos

	return nil
}
