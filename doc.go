// Package pcmwav reads and writes uncompressed integer PCM audio stored in a
// minimal RIFF/WAVE container.
//
// Samples are exchanged as normalized float32 values held in an
// audio.Float32Buffer, interleaved by channel. Files with 8, 16, 24 or 32-bit
// integer PCM and one or two channels can be read; files are always written
// as 32-bit PCM with the 44-byte minimal header.
//
// Decoded samples always lie within [-1, 1]. Samples handed to the writer
// may not; a RangePolicy on the Encoder or WriteFileWithPolicy decides
// whether they wrap, get clamped or are rejected.
//
// The reader locates the "fmt " and "data" chunks regardless of their order
// and skips any other chunk found in between. Additional chunk handlers can
// be registered on a Decoder through its ChunkRegistry.
package pcmwav
