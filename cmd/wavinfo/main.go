// This tool prints the format of the passed wav file along with its
// duration and peak sample value.
package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/cwbudde/pcmwav"
)

const missingPathMessage = "You must pass the path of the file to inspect"

func main() {
	err := run(os.Args[1:], os.Stdout)
	if err == nil {
		return
	}

	if errors.Is(err, errMissingPath) {
		fmt.Println(missingPathMessage)
		os.Exit(1)
	}

	log.Fatal(err)
}

var errMissingPath = errors.New("missing path argument")

func run(args []string, out io.Writer) error {
	if len(args) < 1 {
		return errMissingPath
	}

	file, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer file.Close()

	dec := pcmwav.NewDecoder(file)

	err = dec.ReadInfo()
	if err != nil {
		return err
	}

	numFrames, err := dec.NumFrames()
	if err != nil {
		return err
	}

	duration, err := dec.Duration()
	if err != nil {
		return err
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Format: %s\n", dec)
	fmt.Fprintf(out, "Channels: %d\n", dec.NumChans)
	fmt.Fprintf(out, "SampleRate: %d\n", dec.SampleRate)
	fmt.Fprintf(out, "BitDepth: %d\n", dec.BitDepth)
	fmt.Fprintf(out, "BlockAlign: %d\n", dec.FmtChunk.BlockAlign)
	fmt.Fprintf(out, "DataSize: %d\n", dec.DataChunk.Size)
	fmt.Fprintf(out, "Frames: %d\n", numFrames)
	fmt.Fprintf(out, "Duration: %s\n", duration)
	fmt.Fprintf(out, "Peak: %.6f\n", pcmwav.Peak(buf.Data))

	return nil
}
