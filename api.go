package pcmwav

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-audio/audio"
)

// ReadFile decodes the wav file at path.
func ReadFile(path string) (*audio.Float32Buffer, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	buf, err := NewDecoder(file).FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	return buf, nil
}

// WriteFile writes buf as a 32-bit PCM wav file, creating or truncating
// path. The channel count and sample rate come from buf.Format. Out of range
// samples wrap; see WriteFileWithPolicy.
func WriteFile(path string, buf *audio.Float32Buffer) error {
	return WriteFileWithPolicy(path, buf, RangeKeep)
}

// WriteFileWithPolicy is like WriteFile but applies policy to every sample
// before encoding. An invalid layout or a rejected sample is reported before
// path is touched. If the write fails after the file was created, the partial
// file is removed.
func WriteFileWithPolicy(path string, buf *audio.Float32Buffer, policy RangePolicy) (err error) {
	if buf == nil {
		return errNilBuffer
	}

	if buf.Format == nil {
		return fmt.Errorf("%w: missing buffer format", ErrUnsupportedLayout)
	}

	err = validateLayout(buf.Format.NumChannels, buf.Format.SampleRate, len(buf.Data))
	if err != nil {
		return err
	}

	if policy == RangeReject {
		for i, v := range buf.Data {
			if _, err := policy.apply(v); err != nil {
				return fmt.Errorf("sample %d: %w", i, err)
			}
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	defer func() {
		closeErr := file.Close()
		if err == nil && closeErr != nil {
			err = fmt.Errorf("failed to close %s: %w", path, closeErr)
		}

		if err != nil {
			err = errors.Join(err, removePartial(path))
		}
	}()

	enc := NewEncoder(file, buf.Format.SampleRate, buf.Format.NumChannels)
	enc.RangePolicy = policy

	err = enc.Write(buf)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}

	err = file.Sync()
	if err != nil {
		return fmt.Errorf("failed to sync %s: %w", path, err)
	}

	return nil
}

func removePartial(path string) error {
	err := os.Remove(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove partial file %s: %w", path, err)
	}

	return nil
}
