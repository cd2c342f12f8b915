// This tool converts a wav file into an aiff file with the same sample rate,
// channel count and bit depth, stored next to the source by default.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/cwbudde/pcmwav"
	"github.com/go-audio/aiff"
	"github.com/go-audio/audio"
)

func main() {
	err := run(os.Args[1:], os.Stdout)
	if err == nil {
		return
	}

	if errors.Is(err, errMissingPath) {
		fmt.Println("You must set the -path flag")
		os.Exit(1)
	}

	log.Fatal(err)
}

var errMissingPath = errors.New("missing -path flag")

func run(args []string, out io.Writer) (err error) {
	flagSet := flag.NewFlagSet("wavtoaiff", flag.ContinueOnError)

	sourcePath := flagSet.String("path", "", "The path to the wav file to convert to aiff")
	outPath := flagSet.String("out", "", "The aiff file to write, defaults to the source path with an .aif extension")

	err = flagSet.Parse(args)
	if err != nil {
		return err
	}

	if *sourcePath == "" {
		return errMissingPath
	}

	src, err := expandHome(*sourcePath)
	if err != nil {
		return err
	}

	buf, err := pcmwav.ReadFile(src)
	if err != nil {
		return err
	}

	dst := *outPath
	if dst == "" {
		dst = strings.TrimSuffix(src, filepath.Ext(src)) + ".aif"
	}

	intBuf, err := float32ToIntBuffer(buf.Data, buf.Format, buf.SourceBitDepth)
	if err != nil {
		return err
	}

	outFile, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}

	defer func() {
		err = errors.Join(err, outFile.Close())
	}()

	encoder := aiff.NewEncoder(outFile, buf.Format.SampleRate, buf.SourceBitDepth, buf.Format.NumChannels)

	err = encoder.Write(intBuf)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", dst, err)
	}

	err = encoder.Close()
	if err != nil {
		return fmt.Errorf("failed to finalize %s: %w", dst, err)
	}

	fmt.Fprintf(out, "Wav file converted to %s\n", dst)

	return nil
}

func expandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get the user home directory: %w", err)
	}

	return filepath.Join(home, path[2:]), nil
}

func float32ToIntBuffer(data []float32, format *audio.Format, bitDepth int) (*audio.IntBuffer, error) {
	intBuf := &audio.IntBuffer{
		Format:         format,
		SourceBitDepth: bitDepth,
		Data:           make([]int, len(data)),
	}

	for i, v := range data {
		s, err := float32ToPCMInt(v, bitDepth)
		if err != nil {
			return nil, err
		}

		intBuf.Data[i] = s
	}

	return intBuf, nil
}

// float32ToPCMInt returns the signed integer stored for v at bitDepth, i.e.
// the wav encoding of v read back as a sign extended integer.
func float32ToPCMInt(v float32, bitDepth int) (int, error) {
	b, err := pcmwav.FloatToPCM(v, bitDepth/8)
	if err != nil {
		return 0, fmt.Errorf("bit depth %d: %w", bitDepth, err)
	}

	shift := uint(8 * (4 - len(b)))

	var word uint32
	for i, x := range b {
		word |= uint32(x) << (shift + uint(8*i))
	}

	return int(int32(word) >> shift), nil
}
