// This tool reads an integer PCM wav file, reports its peak sample value and
// writes the audio back out as 32-bit PCM, optionally scaled by -gain. The
// -range policy decides what happens to samples the gain pushes outside of
// [-1, 1].
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/cwbudde/pcmwav"
)

func main() {
	err := run(os.Args[1:], os.Stdout)
	if err == nil {
		return
	}

	if errors.Is(err, errUsage) {
		fmt.Println("usage: wav32 [-gain x] [-range keep|clamp|reject] <input.wav> <output.wav>")
		os.Exit(2)
	}

	log.Fatal(err)
}

var errUsage = errors.New("expected an input and an output path")

func run(args []string, out io.Writer) error {
	flagSet := flag.NewFlagSet("wav32", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)

	gain := flagSet.Float64("gain", 1, "factor applied to every sample before writing")
	rangeFlag := flagSet.String("range", pcmwav.RangeKeep.String(), "out of range sample policy: keep, clamp or reject")

	err := flagSet.Parse(args)
	if err != nil {
		return err
	}

	if flagSet.NArg() != 2 {
		return errUsage
	}

	policy, err := pcmwav.ParseRangePolicy(*rangeFlag)
	if err != nil {
		return err
	}

	inPath, outPath := flagSet.Arg(0), flagSet.Arg(1)

	buf, err := pcmwav.ReadFile(inPath)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%s: %d Hz, %d channel(s), %d bits, %d samples\n",
		inPath, buf.Format.SampleRate, buf.Format.NumChannels, buf.SourceBitDepth, len(buf.Data))
	fmt.Fprintf(out, "peak: %.6f\n", pcmwav.Peak(buf.Data))

	if *gain != 1 {
		for i, v := range buf.Data {
			buf.Data[i] = float32(float64(v) * *gain)
		}

		fmt.Fprintf(out, "peak after gain %g: %.6f\n", *gain, pcmwav.Peak(buf.Data))
	}

	err = pcmwav.WriteFileWithPolicy(outPath, buf, policy)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "wrote %s as 32-bit PCM\n", outPath)

	return nil
}
